package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emergency-dispatch-backend/config"
)

func newTestClient(serverURL string) *Client {
	return NewClient(&config.LLMConfig{
		BaseURL: serverURL,
		APIKey:  "test-key",
		Model:   "test-model",
		Timeout: 5 * time.Second,
	})
}

func TestChat(t *testing.T) {
	t.Run("plain answer", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/chat/completions", r.URL.Path)
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

			var req chatRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.NotEmpty(t, req.Messages)
			assert.Equal(t, RoleSystem, req.Messages[0].Role)

			json.NewEncoder(w).Encode(map[string]any{
				"choices": []map[string]any{
					{"message": map[string]any{"role": "assistant", "content": "Help is on the way."}},
				},
			})
		}))
		defer server.Close()

		msg, err := newTestClient(server.URL).Chat(context.Background(), "system", []ChatMessage{{Role: RoleUser, Content: "fire!"}}, nil)
		require.NoError(t, err)
		assert.Equal(t, "Help is on the way.", msg.Content)
		assert.Empty(t, msg.ToolCalls)
	})

	t.Run("tool call round trip", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req chatRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "auto", req.ToolChoice)
			require.Len(t, req.Tools, 1)

			json.NewEncoder(w).Encode(map[string]any{
				"choices": []map[string]any{
					{"message": map[string]any{
						"role": "assistant",
						"tool_calls": []map[string]any{
							{"id": "call_1", "type": "function", "function": map[string]any{
								"name":      "classify_emergency",
								"arguments": `{"emergency_type":"fire"}`,
							}},
						},
					}},
				},
			})
		}))
		defer server.Close()

		tools := []Tool{{Type: "function", Function: Function{Name: "classify_emergency"}}}
		msg, err := newTestClient(server.URL).Chat(context.Background(), "system", []ChatMessage{{Role: RoleUser, Content: "smoke everywhere"}}, tools)
		require.NoError(t, err)
		require.Len(t, msg.ToolCalls, 1)
		assert.Equal(t, "classify_emergency", msg.ToolCalls[0].Function.Name)
	})

	t.Run("backend failure surfaces status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
		}))
		defer server.Close()

		_, err := newTestClient(server.URL).Chat(context.Background(), "system", nil, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "429")
	})

	t.Run("empty choices rejected", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
		}))
		defer server.Close()

		_, err := newTestClient(server.URL).Chat(context.Background(), "system", nil, nil)
		assert.Error(t, err)
	})
}
