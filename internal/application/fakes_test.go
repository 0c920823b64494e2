package application_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"

	"smart-lights/internal/application"
	"smart-lights/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type sentCommands struct {
	deviceID string
	commands []domain.DeviceCommand
}

type fakeDevices struct {
	mu      sync.Mutex
	failing map[string]bool
	sent    []sentCommands
	opened  int
	closed  int
}

func (f *fakeDevices) Open() application.DeviceSession {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opened++
	return &fakeSession{devices: f}
}

func (f *fakeDevices) sentTo(deviceID string) ([]domain.DeviceCommand, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sent {
		if s.deviceID == deviceID {
			return s.commands, true
		}
	}
	return nil, false
}

type fakeSession struct {
	devices *fakeDevices
}

func (s *fakeSession) SendCommands(_ context.Context, deviceID string, commands []domain.DeviceCommand) ([]byte, error) {
	s.devices.mu.Lock()
	defer s.devices.mu.Unlock()
	s.devices.sent = append(s.devices.sent, sentCommands{deviceID: deviceID, commands: commands})
	if s.devices.failing[deviceID] {
		return nil, errors.New("device unreachable")
	}
	return []byte(`{"results":[]}`), nil
}

func (s *fakeSession) Close() {
	s.devices.mu.Lock()
	defer s.devices.mu.Unlock()
	s.devices.closed++
}

// scriptedModel replies with the queued responses in order and records the
// turns it was given.
type scriptedModel struct {
	responses []*application.ModelResponse
	err       error
	calls     [][]application.Turn
}

func (m *scriptedModel) Respond(_ context.Context, turns []application.Turn, _ []application.ToolDefinition) (*application.ModelResponse, error) {
	m.calls = append(m.calls, turns)
	if m.err != nil {
		return nil, m.err
	}
	if len(m.calls) > len(m.responses) {
		return m.responses[len(m.responses)-1], nil
	}
	return m.responses[len(m.calls)-1], nil
}

func toolCallResponse(callID, name string, args any) *application.ModelResponse {
	raw, _ := json.Marshal(args)
	return &application.ModelResponse{
		ToolCall: &application.ToolCall{CallID: callID, Name: name, Arguments: raw},
	}
}

type recordingMetrics struct {
	mu       sync.Mutex
	outcomes map[string]int
	tools    map[string]int
	turns    int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{outcomes: map[string]int{}, tools: map[string]int{}}
}

func (m *recordingMetrics) DeviceOutcome(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes[outcome]++
}

func (m *recordingMetrics) ToolCall(tool, result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tools[tool+"/"+result]++
}

func (m *recordingMetrics) PlannerTurn() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns++
}

func gridTopology() *domain.Topology {
	return domain.NewTopology(map[string]string{
		"I1": "dev-1",
		"I2": "dev-2",
		"I3": "dev-3",
		"I4": "dev-4",
		"I5": "dev-5",
		"I6": "dev-6",
	})
}

func intPtr(v int) *int { return &v }

func switchPtr(s domain.SwitchState) *domain.SwitchState { return &s }
