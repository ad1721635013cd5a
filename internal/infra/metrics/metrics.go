package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics — счётчики трёх внешних операций движка.
type Metrics struct {
	ResolveTotal prometheus.Counter
	PriceTotal   *prometheus.CounterVec // outcome: ok|incomplete|not_found|error
	ImportTotal  *prometheus.CounterVec // mode x outcome: clean|conflict|error
	ImportRows   prometheus.Counter
}

// New регистрирует счётчики в переданном реестре
// (в проде — prometheus.DefaultRegisterer).
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ResolveTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "configurator_resolve_total",
			Help: "Option resolve calls.",
		}),
		PriceTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "configurator_price_total",
			Help: "Price calls by outcome.",
		}, []string{"outcome"}),
		ImportTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "configurator_import_total",
			Help: "Price list imports by mode and outcome.",
		}, []string{"mode", "outcome"}),
		ImportRows: f.NewCounter(prometheus.CounterOpts{
			Name: "configurator_import_rows_total",
			Help: "Price list rows processed.",
		}),
	}
}
