package openai

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
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
)

// ResponsesClient implements application.ModelClient on top of the
// Responses API with function tools.
type ResponsesClient struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	model      string
	retry      infra.RetryConfig
}

func NewResponsesClient(apiKey, model string, maxAttempts int) *ResponsesClient {
	return NewResponsesClientWithURL(apiKey, model, DefaultBaseURL, maxAttempts)
}

func NewResponsesClientWithURL(apiKey, model, baseURL string, maxAttempts int) *ResponsesClient {
	if model == "" {
		model = DefaultModel
	}
	retry := infra.DefaultRetryConfig()
	retry.MaxAttempts = maxAttempts

	return &ResponsesClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		model:      model,
		retry:      retry,
	}
}

type inputItem struct {
	Type      string  `json:"type,omitempty"`
	Role      string  `json:"role,omitempty"`
	Content   string  `json:"content,omitempty"`
	ID        string  `json:"id,omitempty"`
	CallID    string  `json:"call_id,omitempty"`
	Name      string  `json:"name,omitempty"`
	Arguments string  `json:"arguments,omitempty"`
	Output    *string `json:"output,omitempty"`
}

type functionTool struct {
	Type        string         `json:"type"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
	Strict      bool           `json:"strict"`
}

type request struct {
	Model string         `json:"model"`
	Input []inputItem    `json:"input"`
	Tools []functionTool `json:"tools,omitempty"`
}

type outputItem struct {
	Type      string `json:"type"`
	ID        string `json:"id"`
	CallID    string `json:"call_id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
	Content   []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

type response struct {
	Output []outputItem `json:"output"`
	Error  *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *ResponsesClient) Respond(ctx context.Context, turns []application.Turn, tools []application.ToolDefinition) (*application.ModelResponse, error) {
	reqBody := request{
		Model: c.model,
		Input: toInput(turns),
		Tools: toTools(tools),
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	var result response
	retryErr := infra.WithRetry(ctx, c.retry, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/responses", bytes.NewReader(bodyBytes))
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("sending request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(resp.Body)
			apiErr := fmt.Errorf("openai API error %d: %s", resp.StatusCode, string(respBody))
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

	if result.Error != nil {
		return nil, fmt.Errorf("openai error: %s", result.Error.Message)
	}

	return fromOutput(result.Output)
}

func toInput(turns []application.Turn) []inputItem {
	items := make([]inputItem, 0, len(turns))
	for _, t := range turns {
		switch t.Kind {
		case application.TurnSystem, application.TurnUser, application.TurnAssistant:
			items = append(items, inputItem{Role: string(t.Kind), Content: t.Content})
		case application.TurnToolCall:
			args := string(t.ToolCall.Arguments)
			if args == "" {
				args = "{}"
			}
			items = append(items, inputItem{
				Type:      "function_call",
				ID:        t.ToolCall.ID,
				CallID:    t.ToolCall.CallID,
				Name:      t.ToolCall.Name,
				Arguments: args,
			})
		case application.TurnToolOutput:
			output := t.Content
			items = append(items, inputItem{
				Type:   "function_call_output",
				CallID: t.CallID,
				Output: &output,
			})
		}
	}
	return items
}

func toTools(defs []application.ToolDefinition) []functionTool {
	tools := make([]functionTool, 0, len(defs))
	for _, d := range defs {
		tools = append(tools, functionTool{
			Type:        "function",
			Name:        d.Name,
			Description: d.Description,
			Parameters:  d.Parameters,
		})
	}
	return tools
}

// fromOutput looks at the first function call or message item; reasoning
// items in front of it are skipped.
func fromOutput(output []outputItem) (*application.ModelResponse, error) {
	for _, item := range output {
		switch item.Type {
		case "function_call":
			return &application.ModelResponse{
				ToolCall: &application.ToolCall{
					ID:        item.ID,
					CallID:    item.CallID,
					Name:      item.Name,
					Arguments: json.RawMessage(item.Arguments),
				},
			}, nil
		case "message":
			var sb strings.Builder
			for _, part := range item.Content {
				if part.Type == "output_text" {
					sb.WriteString(part.Text)
				}
			}
			return &application.ModelResponse{Content: sb.String()}, nil
		}
	}
	return nil, fmt.Errorf("empty response from openai")
}
