package store

import (
	"github.com/cuemby/silo/pkg/events"
	"github.com/cuemby/silo/pkg/metrics"
)

// WireMetrics subscribes the package-level Prometheus collectors in
// pkg/metrics to bus, so every store built against bus reports through
// the same /metrics endpoint without each call site instrumenting
// itself by hand. Callers that don't want metrics simply never call
// this.
func WireMetrics(bus *events.Bus) {
	bus.Subscribe(events.CacheHit, func(ctx *events.Context) {
		metrics.CacheHitsTotal.WithLabelValues("object").Inc()
	})
	bus.Subscribe(events.CacheEntryAdded, func(ctx *events.Context) {
		kind := "object"
		if ctx != nil {
			if k, ok := ctx.Fields["kind"].(string); ok {
				kind = k
			}
		}
		metrics.CacheEntries.WithLabelValues(kind).Inc()
	})
	bus.Subscribe(events.CacheEntryRemoved, func(ctx *events.Context) {
		metrics.CacheEntries.WithLabelValues("object").Dec()
	})
	bus.Subscribe(events.CacheCleared, func(ctx *events.Context) {
		metrics.CacheEntries.WithLabelValues("object").Set(0)
		metrics.CacheEntries.WithLabelValues("metadata").Set(0)
	})

	bus.Subscribe(events.FailureChecksum, func(ctx *events.Context) {
		metrics.ChecksumFailuresTotal.Inc()
	})
	bus.Subscribe(events.ObjectExpired, func(ctx *events.Context) {
		metrics.ExpiredReadsTotal.Inc()
	})
	bus.Subscribe(events.ClassAliasCreated, func(ctx *events.Context) {
		metrics.ClassAliasesCreatedTotal.Inc()
	})

	bus.Subscribe(events.SafeModeOn, func(ctx *events.Context) {
		metrics.SafeModeActive.Set(1)
		metrics.SafeModeEntriesTotal.Inc()
	})
	bus.Subscribe(events.SafeModeOff, func(ctx *events.Context) {
		metrics.SafeModeActive.Set(0)
	})

	bus.Subscribe(events.StoreAfter, func(ctx *events.Context) {
		metrics.OperationsTotal.WithLabelValues("store", "ok").Inc()
	})
	bus.Subscribe(events.LoadAfter, func(ctx *events.Context) {
		metrics.OperationsTotal.WithLabelValues("load", "ok").Inc()
	})
	bus.Subscribe(events.DeleteAfter, func(ctx *events.Context) {
		metrics.OperationsTotal.WithLabelValues("delete", "ok").Inc()
	})
}
