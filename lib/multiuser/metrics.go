// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package multiuser

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Dispatch outcomes recorded by the routers.
const (
	outcomeOK           = "ok"
	outcomeError        = "error"
	outcomeUnregistered = "unregistered"
)

// Construction results recorded by the registry.
const (
	constructionStarted      = "started"
	constructionFactoryError = "factory_error"
	constructionStartError   = "start_error"
)

// Metrics holds the router's Prometheus collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	Dispatches        *prometheus.CounterVec
	LifecycleEvents   *prometheus.CounterVec
	LifecycleFailures *prometheus.CounterVec
	LifecycleQueue    prometheus.Gauge
	RegisteredUsers   prometheus.Gauge
	Constructions     *prometheus.CounterVec
}

// NewMetrics creates the router collectors and registers them with
// registerer. A nil registerer creates unregistered collectors.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		Dispatches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "imrouter",
				Name:      "dispatches_total",
				Help:      "Routed calls by surface, operation and outcome",
			},
			[]string{"surface", "operation", "outcome"},
		),
		LifecycleEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "imrouter",
				Name:      "lifecycle_events_total",
				Help:      "Host lifecycle notifications processed, by event and disposition",
			},
			[]string{"event", "disposition"},
		),
		LifecycleFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "imrouter",
				Name:      "lifecycle_failures_total",
				Help:      "Lifecycle tasks that returned an error, by event",
			},
			[]string{"event"},
		),
		LifecycleQueue: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "imrouter",
				Name:      "lifecycle_queue_depth",
				Help:      "Lifecycle tasks waiting for the worker",
			},
		),
		RegisteredUsers: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "imrouter",
				Name:      "registered_users",
				Help:      "Users with a registered input method instance",
			},
		),
		Constructions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "imrouter",
				Name:      "instance_constructions_total",
				Help:      "Per-user instance constructions by result",
			},
			[]string{"result"},
		),
	}
}

func (m *Metrics) dispatch(surface, operation, outcome string) {
	if m == nil {
		return
	}
	m.Dispatches.WithLabelValues(surface, operation, outcome).Inc()
}

func (m *Metrics) lifecycle(event, disposition string) {
	if m == nil {
		return
	}
	m.LifecycleEvents.WithLabelValues(event, disposition).Inc()
}

func (m *Metrics) lifecycleFailure(event string) {
	if m == nil {
		return
	}
	m.LifecycleFailures.WithLabelValues(event).Inc()
}

func (m *Metrics) queueDepth(depth int) {
	if m == nil {
		return
	}
	m.LifecycleQueue.Set(float64(depth))
}

func (m *Metrics) registered(count int) {
	if m == nil {
		return
	}
	m.RegisteredUsers.Set(float64(count))
}

func (m *Metrics) construction(result string) {
	if m == nil {
		return
	}
	m.Constructions.WithLabelValues(result).Inc()
}
