package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"smart-lights/internal/application"
	"smart-lights/internal/infra"
)

const (
	DefaultBaseURL = "https://api.anthropic.com/v1"
	DefaultModel   = "claude-sonnet-4-20250514"
	apiVersion     = "2023-06-01"
)

// ClaudeClient implements application.ModelClient with the Messages API
// tool_use / tool_result blocks.
type ClaudeClient struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	model      string
	maxTokens  int
	retry      infra.RetryConfig
}

func NewClaudeClient(apiKey, model string, maxAttempts int) *ClaudeClient {
	return NewClaudeClientWithURL(apiKey, model, DefaultBaseURL, maxAttempts)
}

func NewClaudeClientWithURL(apiKey, model, baseURL string, maxAttempts int) *ClaudeClient {
	if model == "" {
		model = DefaultModel
	}
	retry := infra.DefaultRetryConfig()
	retry.MaxAttempts = maxAttempts

	return &ClaudeClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		model:      model,
		maxTokens:  1024,
		retry:      retry,
	}
}

type block struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	ToolUseID string          `json:"tool_use_id,omitempty"`
	Content   string          `json:"content,omitempty"`
}

type message struct {
	Role    string  `json:"role"`
	Content []block `json:"content"`
}

type tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

type request struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []message `json:"messages"`
	Tools     []tool    `json:"tools,omitempty"`
}

type response struct {
	Content    []block `json:"content"`
	StopReason string  `json:"stop_reason"`
}

func (c *ClaudeClient) Respond(ctx context.Context, turns []application.Turn, tools []application.ToolDefinition) (*application.ModelResponse, error) {
	system, messages := toMessages(turns)

	reqBody := request{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    system,
		Messages:  messages,
		Tools:     toTools(tools),
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	var result response
	retryErr := infra.WithRetry(ctx, c.retry, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(bodyBytes))
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-api-key", c.apiKey)
		req.Header.Set("anthropic-version", apiVersion)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("sending request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(resp.Body)
			apiErr := fmt.Errorf("claude API error %d: %s", resp.StatusCode, string(respBody))
			if infra.IsRetryableHTTPStatus(resp.StatusCode) {
				return infra.Retryable(apiErr)
			}
			return apiErr
		}

		if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}

		return nil
	})

	if retryErr != nil {
		return nil, retryErr
	}

	if len(result.Content) == 0 {
		return nil, fmt.Errorf("empty response from claude")
	}

	return fromContent(result.Content), nil
}

// toMessages splits out the system prompt and folds the remaining turns into
// alternating user/assistant messages.
func toMessages(turns []application.Turn) (string, []message) {
	var (
		system   []string
		messages []message
	)

	add := func(role string, b block) {
		if n := len(messages); n > 0 && messages[n-1].Role == role {
			messages[n-1].Content = append(messages[n-1].Content, b)
			return
		}
		messages = append(messages, message{Role: role, Content: []block{b}})
	}

	for _, t := range turns {
		switch t.Kind {
		case application.TurnSystem:
			system = append(system, t.Content)
		case application.TurnUser:
			add("user", block{Type: "text", Text: t.Content})
		case application.TurnAssistant:
			add("assistant", block{Type: "text", Text: t.Content})
		case application.TurnToolCall:
			input := t.ToolCall.Arguments
			if len(bytes.TrimSpace(input)) == 0 || !json.Valid(input) {
				input = json.RawMessage("{}")
			}
			add("assistant", block{
				Type:  "tool_use",
				ID:    t.ToolCall.CallID,
				Name:  t.ToolCall.Name,
				Input: input,
			})
		case application.TurnToolOutput:
			add("user", block{Type: "tool_result", ToolUseID: t.CallID, Content: t.Content})
		}
	}

	return strings.Join(system, "\n\n"), messages
}

func toTools(defs []application.ToolDefinition) []tool {
	tools := make([]tool, 0, len(defs))
	for _, d := range defs {
		tools = append(tools, tool{Name: d.Name, Description: d.Description, InputSchema: d.Parameters})
	}
	return tools
}

// fromContent prefers a tool_use block; Claude often writes a short text
// block before it.
func fromContent(content []block) *application.ModelResponse {
	var text []string
	for _, b := range content {
		switch b.Type {
		case "tool_use":
			return &application.ModelResponse{
				ToolCall: &application.ToolCall{
					CallID:    b.ID,
					Name:      b.Name,
					Arguments: b.Input,
				},
			}
		case "text":
			text = append(text, b.Text)
		}
	}
	return &application.ModelResponse{Content: strings.TrimSpace(strings.Join(text, "\n"))}
}
