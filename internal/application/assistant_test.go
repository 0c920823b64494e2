package application_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-lights/internal/application"
)

type queuedSource struct {
	commands []string
	index    int
	replies  []string
	errs     []error
	started  bool
	stopped  bool
}

func (q *queuedSource) Start(_ context.Context) error { q.started = true; return nil }
func (q *queuedSource) Stop() error                   { q.stopped = true; return nil }
func (q *queuedSource) Name() string                  { return "queue" }

func (q *queuedSource) NextCommand(_ context.Context) (*application.CommandRequest, error) {
	if q.index >= len(q.commands) {
		return nil, io.EOF
	}
	text := q.commands[q.index]
	q.index++
	return &application.CommandRequest{
		Text: text,
		Reply: func(answer string, err error) {
			q.replies = append(q.replies, answer)
			q.errs = append(q.errs, err)
		},
	}, nil
}

type mapPlanner struct {
	answers map[string]string
	seen    []string
}

func (p *mapPlanner) Run(_ context.Context, command string) (*application.Answer, error) {
	p.seen = append(p.seen, command)
	text, ok := p.answers[command]
	if !ok {
		return nil, errors.New("model unavailable")
	}
	return &application.Answer{Text: text}, nil
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Notify(_ context.Context, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
	return nil
}

func TestAssistant_ProcessesCommandsInOrder(t *testing.T) {
	source := &queuedSource{commands: []string{"lights on", "  ", "lights red", "sing"}}
	planner := &mapPlanner{answers: map[string]string{
		"lights on":  "All lights are on.",
		"lights red": "Done, everything is red.",
	}}
	notifier := &recordingNotifier{}

	assistant := application.NewAssistant(source, planner, notifier, discardLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, assistant.Run(ctx))

	assert.True(t, source.started)
	assert.True(t, source.stopped)
	assert.Equal(t, []string{"lights on", "lights red", "sing"}, planner.seen)
	assert.Equal(t, []string{"All lights are on.", "", "Done, everything is red.", ""}, source.replies)
	require.Len(t, source.errs, 4)
	assert.Error(t, source.errs[3])
	assert.Equal(t, []string{
		"All lights are on.",
		"Done, everything is red.",
		"Error: model unavailable",
	}, notifier.messages)
}

func TestAssistant_HandleWithNoopNotifier(t *testing.T) {
	planner := &mapPlanner{answers: map[string]string{"turn off I1": "I1 is off."}}
	assistant := application.NewAssistant(&queuedSource{}, planner, &application.NoopNotifier{}, discardLogger())

	answer, err := assistant.Handle(context.Background(), "turn off I1")
	require.NoError(t, err)
	assert.Equal(t, "I1 is off.", answer)

	_, err = assistant.Handle(context.Background(), "unknown")
	assert.Error(t, err)
}
