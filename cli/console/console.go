// Package console implements an interactive shell over the same
// urfave/cli/v2 command tree cli/app composes, grounded on the
// readline-driven REPL loop in teacher's cli/vm package: read a line,
// split it shellquote-style, dispatch it through the *cli.App, repeat
// until EOF or interrupt.
package console

import (
	"errors"
	"fmt"
	"io"

	"github.com/chzyer/readline"
	shellquote "github.com/kballard/go-shellquote"
	"github.com/urfave/cli/v2"
)

// Console wraps app, feeding it lines read from an interactive prompt
// instead of os.Args.
type Console struct {
	app    *cli.App
	prefix string
}

// New constructs a Console over app. prefix names the program as it
// should appear in the prompt and in argv[0] of each dispatched line.
func New(app *cli.App, prefix string) *Console {
	return &Console{app: app, prefix: prefix}
}

// Run reads lines from stdin until EOF or interrupt, dispatching each
// through the wrapped app.
func (c *Console) Run() error {
	l, err := readline.NewEx(&readline.Config{
		Prompt:          c.prefix + "> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("console: open readline: %w", err)
	}
	defer l.Close() //nolint:errcheck

	for {
		line, err := l.Readline()
		if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("console: read input: %w", err)
		}
		if line == "" {
			continue
		}

		args, err := shellquote.Split(line)
		if err != nil {
			fmt.Fprintln(l.Stderr(), err)
			continue
		}
		if len(args) == 1 && (args[0] == "exit" || args[0] == "quit") {
			return nil
		}

		if err := c.app.Run(append([]string{c.prefix}, args...)); err != nil {
			fmt.Fprintln(l.Stderr(), err)
		}
	}
}
