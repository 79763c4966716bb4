// Package metrics exposes Prometheus counters and gauges for the envoi
// daemon, grounded on teacher's cli/server/metrics.go (a package-level
// prometheus.MustRegister of a handful of labeled gauges/counters) and
// pkg/consensus/prometheus.go's per-concern metric grouping.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Registrations counts register() calls, labeled by registrar
	// variant; a failed call is counted under the variant name with an
	// "_error" suffix (rpcsrv uses "domain" and "domain_error").
	Registrations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "envoi",
			Subsystem: "registrar",
			Name:      "registrations_total",
			Help:      "Total name registration calls, failures under an _error variant.",
		},
		[]string{"variant"},
	)

	// Renewals counts renew() calls, labeled the same way as
	// Registrations.
	Renewals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "envoi",
			Subsystem: "registrar",
			Name:      "renewals_total",
			Help:      "Total lease renewal calls, failures under an _error variant.",
		},
		[]string{"variant"},
	)

	// RSVPBids counts RSVP reserve() calls, labeled by result
	// ("accepted" or "rejected").
	RSVPBids = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "envoi",
			Subsystem: "rsvp",
			Name:      "bids_total",
			Help:      "Total RSVP reservation bids, by result.",
		},
		[]string{"result"},
	)

	// ResolverWrites counts resolver setAddr/setAddress/setText/setName
	// calls, labeled by record kind.
	ResolverWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "envoi",
			Subsystem: "resolver",
			Name:      "writes_total",
			Help:      "Total resolver record writes.",
		},
		[]string{"kind"},
	)

	// LiveSupply gauges the current live NFT count (totalSupply, spec
	// §3), labeled by registrar variant.
	LiveSupply = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "envoi",
			Subsystem: "registrar",
			Name:      "live_supply",
			Help:      "Current count of live (unburned) minted names.",
		},
		[]string{"variant"},
	)
)

func init() {
	prometheus.MustRegister(Registrations, Renewals, RSVPBids, ResolverWrites, LiveSupply)
}
