package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"emergency-dispatch-backend/internal/llm"
	"emergency-dispatch-backend/internal/session"
	"emergency-dispatch-backend/internal/tools"
)

// fallbackResponse goes out when the model keeps calling tools until
// the iteration cap without producing an answer.
const fallbackResponse = "I'm working on your emergency right now. Please stay on the line."

// ChatClient is the slice of the LLM client the orchestrator needs.
type ChatClient interface {
	Chat(ctx context.Context, systemPrompt string, messages []llm.ChatMessage, toolset []llm.Tool) (*llm.ChatMessage, error)
}

// Reply is the outcome of one processed user message.
type Reply struct {
	Response    string
	ToolsCalled int
}

// Orchestrator runs the tool-calling loop for emergency conversations.
type Orchestrator struct {
	client        ChatClient
	executor      *tools.Executor
	maxIterations int
}

// New wires an orchestrator. maxIterations caps tool-calling rounds per
// user message so a confused model cannot loop forever.
func New(client ChatClient, executor *tools.Executor, maxIterations int) *Orchestrator {
	if maxIterations <= 0 {
		maxIterations = 5
	}
	return &Orchestrator{
		client:        client,
		executor:      executor,
		maxIterations: maxIterations,
	}
}

// ProcessMessage runs one conversational turn: the user's message goes
// into the history, the model is prompted with the current context, and
// any tools it calls are executed with their results fed back until it
// produces a plain answer or the iteration cap is hit. The system
// prompt is rebuilt every round so mid-turn state changes, such as a
// fresh classification, reach the model immediately.
func (o *Orchestrator) ProcessMessage(ctx context.Context, st *session.State, userMessage string) (*Reply, error) {
	st.Lock()
	defer st.Unlock()

	st.AddMessage(llm.ChatMessage{Role: llm.RoleUser, Content: userMessage})

	toolsCalled := 0
	for i := 0; i < o.maxIterations; i++ {
		reply, err := o.client.Chat(ctx, BuildSystemPrompt(st), st.Messages, ToolsFor(st))
		if err != nil {
			return nil, fmt.Errorf("chat completion: %w", err)
		}

		if len(reply.ToolCalls) == 0 {
			st.AddMessage(*reply)
			return &Reply{Response: reply.Content, ToolsCalled: toolsCalled}, nil
		}

		st.AddMessage(*reply)
		for _, call := range reply.ToolCalls {
			result := o.executor.Execute(ctx, st, call.Function.Name, call.Function.Arguments)
			toolsCalled++

			payload, err := json.Marshal(result)
			if err != nil {
				payload = []byte(`{"success":false,"error":"internal serialization failure"}`)
			}
			ok := tools.Succeeded(result)
			if !ok {
				log.Printf("session %s: tool %s failed: %v", st.SessionID, call.Function.Name, result["error"])
			}
			st.AddToolResult(call.ID, call.Function.Name, string(payload), ok)
		}
	}

	st.AddMessage(llm.ChatMessage{Role: llm.RoleAssistant, Content: fallbackResponse})
	return &Reply{Response: fallbackResponse, ToolsCalled: toolsCalled}, nil
}
