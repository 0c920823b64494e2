package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

type CommandPlanner interface {
	Run(ctx context.Context, command string) (*Answer, error)
}

type Assistant struct {
	source   CommandSource
	planner  CommandPlanner
	notifier Notifier
	logger   *slog.Logger
}

func NewAssistant(
	source CommandSource,
	planner CommandPlanner,
	notifier Notifier,
	logger *slog.Logger,
) *Assistant {
	return &Assistant{
		source:   source,
		planner:  planner,
		notifier: notifier,
		logger:   logger,
	}
}

// Run processes commands from the source until it is exhausted or ctx is
// cancelled. Commands are handled strictly one after another.
func (a *Assistant) Run(ctx context.Context) error {
	a.logger.Info("starting command source", "source", a.source.Name())
	if err := a.source.Start(ctx); err != nil {
		return fmt.Errorf("starting source: %w", err)
	}
	defer a.source.Stop()

	a.logger.Info("assistant ready, waiting for commands")

	for {
		req, err := a.source.NextCommand(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				a.logger.Info("command source exhausted")
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			a.logger.Error("reading command", "error", err)
			continue
		}

		answer, err := a.Handle(ctx, req.Text)
		if req.Reply != nil {
			req.Reply(answer, err)
		}
		if err != nil {
			a.logger.Error("processing command", "error", err)
		}
	}
}

// Handle runs a single command through the planner and notifies the result.
func (a *Assistant) Handle(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil
	}

	ans, err := a.planner.Run(ctx, text)
	if err != nil {
		if notifyErr := a.notifier.Notify(ctx, fmt.Sprintf("Error: %s", err.Error())); notifyErr != nil {
			a.logger.Error("notifying error", "error", notifyErr)
		}
		return "", fmt.Errorf("running planner: %w", err)
	}

	a.logger.Info("command answered", "tool_calls", ans.ToolCalls, "answer", ans.Text)

	if err := a.notifier.Notify(ctx, ans.Text); err != nil {
		a.logger.Error("notifying answer", "error", err)
	}

	return ans.Text, nil
}
