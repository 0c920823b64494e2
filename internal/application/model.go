package application

import "context"

// ToolDefinition declares a callable tool to the model. Parameters is a JSON
// schema object.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ModelResponse is the model's reply to one turn: either a tool call or plain
// content.
type ModelResponse struct {
	ToolCall *ToolCall
	Content  string
}

type ModelClient interface {
	Respond(ctx context.Context, turns []Turn, tools []ToolDefinition) (*ModelResponse, error)
}
