package anthropic_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-lights/internal/application"
	"smart-lights/internal/infra/anthropic"
)

func TestClaudeClient_ToolUse(t *testing.T) {
	var got map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.NotEmpty(t, r.Header.Get("anthropic-version"))
		json.NewDecoder(r.Body).Decode(&got)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"stop_reason": "tool_use",
			"content": []map[string]any{
				{"type": "text", "text": "Turning the light on."},
				{"type": "tool_use", "id": "toolu_1", "name": "update_lights", "input": map[string]any{"I1": map[string]any{"switch": "on"}}},
			},
		})
	}))
	defer server.Close()

	client := anthropic.NewClaudeClientWithURL("test-key", "claude-test", server.URL, 1)
	defs := []application.ToolDefinition{application.LightsToolDefinition(application.DefaultLayout)}

	resp, err := client.Respond(context.Background(), application.NewConversation("be helpful", "turn on I1").Turns(), defs)
	require.NoError(t, err)
	require.NotNil(t, resp.ToolCall)

	assert.Equal(t, "toolu_1", resp.ToolCall.CallID)
	assert.Equal(t, "update_lights", resp.ToolCall.Name)
	assert.JSONEq(t, `{"I1":{"switch":"on"}}`, string(resp.ToolCall.Arguments))

	assert.Equal(t, "be helpful", got["system"])
	messages := got["messages"].([]any)
	require.Len(t, messages, 1)
	assert.Equal(t, "user", messages[0].(map[string]any)["role"])

	tools := got["tools"].([]any)
	require.Len(t, tools, 1)
	assert.Contains(t, tools[0].(map[string]any), "input_schema")
}

func TestClaudeClient_ToolResultHistoryAndText(t *testing.T) {
	var got map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(map[string]any{
			"stop_reason": "end_turn",
			"content":     []map[string]any{{"type": "text", "text": "I1 is on now."}},
		})
	}))
	defer server.Close()

	conv := application.NewConversation("sys", "turn on I1")
	conv.Append(application.Turn{
		Kind:     application.TurnToolCall,
		ToolCall: &application.ToolCall{CallID: "toolu_1", Name: "update_lights", Arguments: json.RawMessage(`{"I1":{"switch":"on"}}`)},
	})
	conv.Append(application.Turn{Kind: application.TurnToolOutput, CallID: "toolu_1", Content: "1 LIGHTS UPDATED"})

	client := anthropic.NewClaudeClientWithURL("k", "", server.URL, 1)
	resp, err := client.Respond(context.Background(), conv.Turns(), nil)
	require.NoError(t, err)

	assert.Nil(t, resp.ToolCall)
	assert.Equal(t, "I1 is on now.", resp.Content)

	assert.Equal(t, anthropic.DefaultModel, got["model"])
	messages := got["messages"].([]any)
	require.Len(t, messages, 3)

	assistant := messages[1].(map[string]any)
	assert.Equal(t, "assistant", assistant["role"])
	use := assistant["content"].([]any)[0].(map[string]any)
	assert.Equal(t, "tool_use", use["type"])
	assert.Equal(t, "toolu_1", use["id"])

	result := messages[2].(map[string]any)
	assert.Equal(t, "user", result["role"])
	res := result["content"].([]any)[0].(map[string]any)
	assert.Equal(t, "tool_result", res["type"])
	assert.Equal(t, "toolu_1", res["tool_use_id"])
	assert.Equal(t, "1 LIGHTS UPDATED", res["content"])
}

func TestClaudeClient_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"type":"error"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	client := anthropic.NewClaudeClientWithURL("k", "m", server.URL, 1)
	_, err := client.Respond(context.Background(), application.NewConversation("s", "u").Turns(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}
