package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

const DefaultSystemPrompt = "You're a personal assistant, helping me run my smart home"

var ErrTurnLimit = errors.New("planner turn limit reached")

type ToolExecutor interface {
	Definitions() []ToolDefinition
	Call(ctx context.Context, call ToolCall) string
}

type PlannerConfig struct {
	SystemPrompt string
	// MaxTurns caps the number of model queries per command. Zero or less
	// means no limit.
	MaxTurns int
}

// Answer is the result of a planner run.
type Answer struct {
	Text         string
	Conversation *Conversation
	ToolCalls    int
}

type Planner struct {
	model   ModelClient
	tools   ToolExecutor
	cfg     PlannerConfig
	metrics Metrics
	logger  *slog.Logger
}

func NewPlanner(model ModelClient, tools ToolExecutor, cfg PlannerConfig, metrics Metrics, logger *slog.Logger) *Planner {
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = DefaultSystemPrompt
	}
	return &Planner{
		model:   model,
		tools:   tools,
		cfg:     cfg,
		metrics: metrics,
		logger:  logger,
	}
}

// Run drives the conversation for one command: it queries the model, runs
// any tool it asks for, feeds the output back and repeats until the model
// answers in plain text.
func (p *Planner) Run(ctx context.Context, command string) (*Answer, error) {
	logger := p.logger.With("run_id", uuid.NewString())
	logger.Info("planning command", "command", command)

	conv := NewConversation(p.cfg.SystemPrompt, command)
	defs := p.tools.Definitions()
	calls := 0

	for turn := 1; ; turn++ {
		if p.cfg.MaxTurns > 0 && turn > p.cfg.MaxTurns {
			return nil, fmt.Errorf("%w: %d model queries without an answer", ErrTurnLimit, p.cfg.MaxTurns)
		}

		p.metrics.PlannerTurn()
		resp, err := p.model.Respond(ctx, conv.Turns(), defs)
		if err != nil {
			return nil, fmt.Errorf("querying model (turn %d): %w", turn, err)
		}

		if resp.ToolCall == nil {
			logger.Info("model answered", "turn", turn, "tool_calls", calls)
			return &Answer{Text: resp.Content, Conversation: conv, ToolCalls: calls}, nil
		}

		call := *resp.ToolCall
		logger.Debug("model requested tool", "turn", turn, "tool", call.Name, "arguments", string(call.Arguments))

		output := p.tools.Call(ctx, call)
		calls++

		conv.Append(Turn{Kind: TurnToolCall, ToolCall: &call})
		conv.Append(Turn{Kind: TurnToolOutput, CallID: call.CallID, Content: output})
	}
}
