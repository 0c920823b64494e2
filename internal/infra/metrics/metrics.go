package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus implements application.Metrics on its own registry so several
// instances can coexist in one process.
type Prometheus struct {
	registry      *prometheus.Registry
	deviceResults *prometheus.CounterVec
	toolCalls     *prometheus.CounterVec
	plannerTurns  prometheus.Counter
}

func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		deviceResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lights_device_commands_total",
				Help: "Device command deliveries by outcome.",
			},
			[]string{"outcome"},
		),
		toolCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lights_tool_calls_total",
				Help: "Tool invocations requested by the model, by tool and result.",
			},
			[]string{"tool", "result"},
		),
		plannerTurns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lights_planner_model_turns_total",
			Help: "Model requests issued by the planner.",
		}),
	}

	p.registry.MustRegister(
		p.deviceResults,
		p.toolCalls,
		p.plannerTurns,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return p
}

func (p *Prometheus) DeviceOutcome(outcome string) {
	p.deviceResults.WithLabelValues(outcome).Inc()
}

func (p *Prometheus) ToolCall(tool, result string) {
	p.toolCalls.WithLabelValues(tool, result).Inc()
}

func (p *Prometheus) PlannerTurn() {
	p.plannerTurns.Inc()
}

func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
