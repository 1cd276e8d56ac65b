package metrics

import "github.com/prometheus/client_golang/prometheus"

type Observer interface {
	Observe(val float64, labels ...string)

	prometheus.Collector
}

// Metrics holds the observers updated by the dispatcher and the webhook.
// Nil observers are skipped, so the zero value records nothing.
type Metrics struct {
	// Commands counts dispatches, labelled by command and outcome kind.
	Commands Observer
	// CommandLatency observes handler execution time in seconds, by command.
	CommandLatency Observer
	// Responses counts webhook responses, labelled by operation and status code.
	Responses Observer
}

// New creates the prometheus-backed metric set.
func New() Metrics {
	return Metrics{
		Commands: NewPromCounterVec(prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ares",
			Name:      "commands_total",
			Help:      "Dispatched commands by command name and outcome.",
		}, []string{"command", "outcome"})),
		CommandLatency: NewPromObserverVec(prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ares",
			Name:      "command_duration_seconds",
			Help:      "Handler execution time by command name.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"command"})),
		Responses: NewPromCounterVec(prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ares",
			Name:      "webhook_responses_total",
			Help:      "Webhook responses by operation and status code.",
		}, []string{"operation", "status"})),
	}
}

func (m Metrics) Collectors() []prometheus.Collector {
	var cs []prometheus.Collector
	for _, o := range []Observer{m.Commands, m.CommandLatency, m.Responses} {
		if o != nil {
			cs = append(cs, o)
		}
	}
	return cs
}

// Register adds every collector to reg.
func (m Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Observe records val on o unless o is nil.
func Observe(o Observer, val float64, labels ...string) {
	if o == nil {
		return
	}
	o.Observe(val, labels...)
}
