package application

const (
	OutcomeSucceeded  = "succeeded"
	OutcomeFailed     = "failed"
	OutcomeUnresolved = "unresolved"
)

type Metrics interface {
	DeviceOutcome(outcome string)
	ToolCall(tool, result string)
	PlannerTurn()
}

type NoopMetrics struct{}

func (NoopMetrics) DeviceOutcome(string)    {}
func (NoopMetrics) ToolCall(string, string) {}
func (NoopMetrics) PlannerTurn()            {}
