package application

import "encoding/json"

type TurnKind string

const (
	TurnSystem     TurnKind = "system"
	TurnUser       TurnKind = "user"
	TurnAssistant  TurnKind = "assistant"
	TurnToolCall   TurnKind = "tool_call"
	TurnToolOutput TurnKind = "tool_output"
)

// ToolCall is a tool invocation requested by the model. CallID correlates the
// call with the output fed back on the next turn; ID is the provider's item id
// when it has one.
type ToolCall struct {
	ID        string
	CallID    string
	Name      string
	Arguments json.RawMessage
}

// Turn is one entry of a conversation. Content holds the text for system,
// user and assistant turns and the tool output for tool_output turns.
type Turn struct {
	Kind     TurnKind
	Content  string
	ToolCall *ToolCall
	CallID   string
}

// Conversation is an append-only list of turns for a single planner run.
type Conversation struct {
	turns []Turn
}

func NewConversation(systemPrompt, command string) *Conversation {
	return &Conversation{
		turns: []Turn{
			{Kind: TurnSystem, Content: systemPrompt},
			{Kind: TurnUser, Content: command},
		},
	}
}

func (c *Conversation) Append(turn Turn) {
	c.turns = append(c.turns, turn)
}

// Turns returns a copy of the turns in order.
func (c *Conversation) Turns() []Turn {
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

func (c *Conversation) Len() int {
	return len(c.turns)
}
