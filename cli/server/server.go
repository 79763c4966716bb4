// Package server implements the `server start` command: load
// configuration, open the configured storage backend, wire the registry/
// resolver/registrar/RSVP core, and serve pkg/rpcsrv over HTTP plus a
// Prometheus /metrics endpoint, grounded on the shape of teacher's
// cli/server package (one command that boots the node and blocks on the
// HTTP listener).
package server

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/NautilusOSS/envoi/pkg/addr"
	"github.com/NautilusOSS/envoi/pkg/config"
	"github.com/NautilusOSS/envoi/pkg/events"
	"github.com/NautilusOSS/envoi/pkg/registrar"
	"github.com/NautilusOSS/envoi/pkg/registry"
	"github.com/NautilusOSS/envoi/pkg/resolver"
	"github.com/NautilusOSS/envoi/pkg/rpcsrv"
	"github.com/NautilusOSS/envoi/pkg/rsvp"
	"github.com/NautilusOSS/envoi/pkg/store"
	"github.com/NautilusOSS/envoi/pkg/token"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

var (
	profileFlag  = &cli.StringFlag{Name: "profile", Value: config.ProfileMainNet, Usage: "built-in network profile (mainnet, testnet)"}
	configFlag   = &cli.StringFlag{Name: "config", Usage: "path to a YAML config file, overriding --profile"}
	selfAddrFlag = &cli.StringFlag{Name: "self", Required: true, Usage: "base58 address this daemon's registrar/RSVP contracts act as"}
	treasuryFlag = &cli.StringFlag{Name: "treasury", Usage: "base58 fee-collection address (defaults to --self)"}
)

// NewCommands returns the `server` command group.
func NewCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "run the envoi naming daemon",
			Subcommands: []*cli.Command{
				{
					Name:   "start",
					Usage:  "start the RPC/WebSocket daemon and block until terminated",
					Flags:  []cli.Flag{profileFlag, configFlag, selfAddrFlag, treasuryFlag},
					Action: start,
				},
			},
		},
	}
}

func start(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg.ApplicationConfiguration.LogLevel, cfg.ApplicationConfiguration.LogEncoding, cfg.ApplicationConfiguration.LogPath)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	s, err := openStore(cfg.ApplicationConfiguration.DBConfiguration)
	if err != nil {
		return fmt.Errorf("server: open store: %w", err)
	}
	defer s.Close() //nolint:errcheck

	var self, treasury addr.Address
	if err := parseAddressInto(&self, c.String("self")); err != nil {
		return err
	}
	treasury = self
	if c.String("treasury") != "" {
		if err := parseAddressInto(&treasury, c.String("treasury")); err != nil {
			return err
		}
	}

	bus := events.NewBus()
	reg, err := registry.New(s, bus, log, self)
	if err != nil {
		return fmt.Errorf("server: init registry: %w", err)
	}
	res := resolver.New(s, bus, log, reg)

	basePeriod := cfg.ProtocolConfiguration.BasePeriod
	if basePeriod == 0 {
		basePeriod = registrar.BasePeriod
	}
	pay := token.NewStubClient(self)
	dom := registrar.NewDomain(s, bus, log, reg, pay, self, treasury, addr.Root, cfg.ProtocolConfiguration.GracePeriod, cfg.ProtocolConfiguration.BaseUnitPrice)
	dom.BasePeriodSecs = basePeriod
	rev := registrar.NewReverse(s, bus, log, reg, self, addr.Root)
	rv := rsvp.New(s, bus, log, self)

	srv := rpcsrv.New(reg, res, dom, rev, rv, bus, log, func() uint64 { return uint64(time.Now().Unix()) })

	addrStr := fmt.Sprintf("%s:%d", cfg.ApplicationConfiguration.RPC.Address, cfg.ApplicationConfiguration.RPC.Port)
	httpSrv := &http.Server{Addr: addrStr, Handler: srv.Handler()}

	go func() {
		log.Infow("rpc server listening", "addr", addrStr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorw("rpc server stopped", "error", err)
		}
	}()

	if cfg.ApplicationConfiguration.Metrics.Enabled {
		metricsAddr := fmt.Sprintf("%s:%d", cfg.ApplicationConfiguration.Metrics.Address, cfg.ApplicationConfiguration.Metrics.Port)
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		metricsSrv := &http.Server{Addr: metricsAddr, Handler: metricsMux}
		go func() {
			log.Infow("metrics server listening", "addr", metricsAddr)
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Errorw("metrics server stopped", "error", err)
			}
		}()
	}

	waitForSignal()
	log.Info("shutting down")
	return nil
}

func waitForSignal() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	<-ch
}

func loadConfig(c *cli.Context) (config.Config, error) {
	if path := c.String("config"); path != "" {
		return config.LoadFile(path)
	}
	return config.LoadProfile(c.String("profile"))
}

func openStore(dbc config.DBConfiguration) (store.Store, error) {
	switch dbc.Type {
	case "bolt":
		return store.NewBoltStore(store.BoltOptions{FilePath: dbc.BoltDBOptions.FilePath})
	case "leveldb":
		return store.NewLevelDBStore(store.LevelDBOptions{DataDirectoryPath: dbc.LevelDBOptions.DataDirectoryPath})
	case "memory", "":
		return store.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("server: unknown DBConfiguration.Type %q", dbc.Type)
	}
}

func newLogger(level, encoding, path string) (*zap.SugaredLogger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = encoding
	if cfg.Encoding == "" {
		cfg.Encoding = "console"
	}
	if path != "" {
		cfg.OutputPaths = []string{path}
	}
	var lvl zap.AtomicLevel
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	cfg.Level = lvl
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("server: build logger: %w", err)
	}
	return logger.Sugar(), nil
}

func parseAddressInto(a *addr.Address, b58 string) error {
	parsed, err := addr.AddressFromString(b58)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
