// Package metrics считает действия пользователей оболочки и выгружает их
// в файл для textfile-коллектора node_exporter.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics счётчики трекера в собственном реестре.
type Metrics struct {
	registry *prometheus.Registry
	actions  *prometheus.CounterVec
}

// New создаёт реестр и регистрирует в нём счётчики.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "subscription_tracker",
			Name:      "actions_total",
			Help:      "Menu actions chosen in the interactive shell.",
		}, []string{"action"}),
	}
	m.registry.MustRegister(m.actions)
	return m
}

// Observe увеличивает счётчик действия.
func (m *Metrics) Observe(action string) {
	m.actions.WithLabelValues(action).Inc()
}

// Registry возвращает реестр для чтения собранных значений.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile атомарно записывает текущие значения в path.
func (m *Metrics) WriteTextfile(path string) error {
	const op = "lib.metrics.WriteTextfile"
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
