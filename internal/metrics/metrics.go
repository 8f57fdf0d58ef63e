// Package metrics exposes the host's Prometheus counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Update contexts.
const (
	ContextMaster = "master"
	ContextClone  = "clone"
)

// Delivery results.
const (
	DeliverySent      = "sent"
	DeliveryDenied    = "denied"
	DeliveryNotFound  = "not_found"
	DeliveryMalformed = "malformed"
	DeliveryFailed    = "failed"
)

// Metrics holds all counters. Handlers increment; the gateway serves
// them on /metrics.
type Metrics struct {
	Updates           *prometheus.CounterVec
	IgnoredUpdates    prometheus.Counter
	Commands          *prometheus.CounterVec
	FilesStored       prometheus.Counter
	Deliveries        *prometheus.CounterVec
	BroadcastSends    *prometheus.CounterVec
	TenantsRegistered prometheus.Counter
}

// New creates the counters and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Updates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clonehost_updates_total",
			Help: "Inbound webhook updates by context.",
		}, []string{"context"}),
		IgnoredUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clonehost_ignored_updates_total",
			Help: "Updates dropped for lacking a usable message.",
		}),
		Commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clonehost_commands_total",
			Help: "Dispatched commands by verb.",
		}, []string{"verb"}),
		FilesStored: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clonehost_files_stored_total",
			Help: "File records created by the upload flow.",
		}),
		Deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clonehost_deliveries_total",
			Help: "Share-link delivery attempts by result.",
		}, []string{"result"}),
		BroadcastSends: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clonehost_broadcast_sends_total",
			Help: "Broadcast fan-out sends by result.",
		}, []string{"result"}),
		TenantsRegistered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clonehost_tenants_registered_total",
			Help: "Successful clone bot registrations.",
		}),
	}

	reg.MustRegister(
		m.Updates,
		m.IgnoredUpdates,
		m.Commands,
		m.FilesStored,
		m.Deliveries,
		m.BroadcastSends,
		m.TenantsRegistered,
	)
	return m
}
