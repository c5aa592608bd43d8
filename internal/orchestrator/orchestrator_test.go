package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"emergency-dispatch-backend/internal/db"
	"emergency-dispatch-backend/internal/fleet"
	"emergency-dispatch-backend/internal/llm"
	"emergency-dispatch-backend/internal/session"
	"emergency-dispatch-backend/internal/tools"
)

// scriptedClient plays back canned model turns and records what it was
// prompted with.
type scriptedClient struct {
	turns   []llm.ChatMessage
	calls   int
	systems []string
}

func (c *scriptedClient) Chat(_ context.Context, systemPrompt string, _ []llm.ChatMessage, _ []llm.Tool) (*llm.ChatMessage, error) {
	c.systems = append(c.systems, systemPrompt)
	if c.calls >= len(c.turns) {
		last := c.turns[len(c.turns)-1]
		c.calls++
		return &last, nil
	}
	turn := c.turns[c.calls]
	c.calls++
	return &turn, nil
}

func newTestExecutor(t *testing.T) *tools.Executor {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(gdb))
	require.NoError(t, db.Seed(gdb))
	return tools.NewExecutor(fleet.NewRegistry(gdb), nil)
}

func assistantToolCalls(calls ...llm.ToolCall) llm.ChatMessage {
	return llm.ChatMessage{Role: llm.RoleAssistant, ToolCalls: calls}
}

func toolCall(id, name, args string) llm.ToolCall {
	return llm.ToolCall{
		ID:       id,
		Type:     "function",
		Function: llm.FunctionCall{Name: name, Arguments: args},
	}
}

func TestProcessMessagePlainAnswer(t *testing.T) {
	client := &scriptedClient{turns: []llm.ChatMessage{
		{Role: llm.RoleAssistant, Content: "What is your location?"},
	}}
	o := New(client, newTestExecutor(t), 5)
	st := session.NewState("s1")

	reply, err := o.ProcessMessage(context.Background(), st, "help, my father collapsed")
	require.NoError(t, err)

	assert.Equal(t, "What is your location?", reply.Response)
	assert.Zero(t, reply.ToolsCalled)
	require.Len(t, st.Messages, 2)
	assert.Equal(t, llm.RoleUser, st.Messages[0].Role)
	assert.Equal(t, llm.RoleAssistant, st.Messages[1].Role)
}

func TestProcessMessageDispatchFlow(t *testing.T) {
	client := &scriptedClient{turns: []llm.ChatMessage{
		assistantToolCalls(
			toolCall("call_1", "classify_emergency", `{"emergency_type":"medical","confidence":"high"}`),
			toolCall("call_2", "lookup_location_by_area", `{"area_name":"Koramangala"}`),
		),
		assistantToolCalls(
			toolCall("call_3", "dispatch_nearest_ambulance", `{"user_lat":12.9352,"user_lon":77.6245,"emergency_type":"collapse","patient_count":1}`),
		),
		{Role: llm.RoleAssistant, Content: "An ambulance is on the way."},
	}}
	o := New(client, newTestExecutor(t), 5)
	st := session.NewState("s1")

	reply, err := o.ProcessMessage(context.Background(), st, "my father collapsed in Koramangala")
	require.NoError(t, err)

	assert.Equal(t, "An ambulance is on the way.", reply.Response)
	assert.Equal(t, 3, reply.ToolsCalled)

	assert.Equal(t, session.EmergencyMedical, st.EmergencyType)
	assert.True(t, st.Location.Known)
	assert.True(t, st.ServicesDispatched)
	assert.Equal(t, session.PhaseProvidingGuidance, st.Phase)
	require.NotNil(t, st.ActiveDispatch)
	assert.Greater(t, st.ActiveDispatch.ETAMinutes, 0)

	// The prompt is rebuilt between rounds, so the second round already
	// sees the classification and the last one sees the dispatch.
	require.Len(t, client.systems, 3)
	assert.Contains(t, client.systems[0], "CURRENT PHASE: INITIAL")
	assert.Contains(t, client.systems[1], "MEDICAL EMERGENCY FOCUS")
	assert.Contains(t, client.systems[2], "[DISPATCHED] SERVICES DISPATCHED - ETA:")

	// History keeps the full turn: user, two assistant tool rounds with
	// their results, final answer.
	var toolMessages int
	for _, m := range st.Messages {
		if m.Role == llm.RoleTool {
			toolMessages++
		}
	}
	assert.Equal(t, 3, toolMessages)
}

func TestProcessMessageIterationCap(t *testing.T) {
	client := &scriptedClient{turns: []llm.ChatMessage{
		assistantToolCalls(toolCall("call_1", "get_available_ambulances", "{}")),
	}}
	o := New(client, newTestExecutor(t), 3)
	st := session.NewState("s1")

	reply, err := o.ProcessMessage(context.Background(), st, "hello")
	require.NoError(t, err)

	assert.Equal(t, 3, client.calls)
	assert.Equal(t, 3, reply.ToolsCalled)
	assert.Equal(t, fallbackResponse, reply.Response)
}

func TestBuildSystemPrompt(t *testing.T) {
	st := session.NewState("s1")

	t.Run("initial phase asks for classification", func(t *testing.T) {
		st.Lock()
		defer st.Unlock()
		got := BuildSystemPrompt(st)
		assert.Contains(t, got, "Emergency Contact Agent")
		assert.Contains(t, got, "CURRENT PHASE: INITIAL")
		assert.Contains(t, got, "[NEEDED] STILL NEEDED: location, emergency_type")
		assert.NotContains(t, got, "[DISPATCHED]")
	})

	t.Run("classification adds type guidance", func(t *testing.T) {
		st.Lock()
		defer st.Unlock()
		st.SetEmergencyType(session.EmergencyFire)
		got := BuildSystemPrompt(st)
		assert.Contains(t, got, "CURRENT PHASE: GATHERING INFO")
		assert.Contains(t, got, "FIRE EMERGENCY FOCUS")
		assert.Contains(t, got, "building_type")
	})

	t.Run("dispatch adds the eta banner and drops the needed list", func(t *testing.T) {
		st.Lock()
		defer st.Unlock()
		st.AddDispatch(session.DispatchRecord{DispatchID: 1, ServiceType: "fire", ETAMinutes: 7, Status: "active"})
		got := BuildSystemPrompt(st)
		assert.Contains(t, got, "[DISPATCHED] SERVICES DISPATCHED - ETA: 7 minutes")
		assert.NotContains(t, got, "[NEEDED]")
	})
}

func TestToolsFor(t *testing.T) {
	st := session.NewState("s1")

	names := func(ts []llm.Tool) []string {
		out := make([]string, 0, len(ts))
		for _, x := range ts {
			out = append(out, x.Function.Name)
		}
		return out
	}

	t.Run("unclassified sessions see everything", func(t *testing.T) {
		assert.Len(t, ToolsFor(st), len(tools.Catalog()))
	})

	t.Run("classified sessions see only their service", func(t *testing.T) {
		st.SetEmergencyType(session.EmergencyPolice)
		got := names(ToolsFor(st))
		assert.Contains(t, got, "dispatch_nearest_patrol_unit")
		assert.Contains(t, got, "classify_emergency")
		assert.NotContains(t, got, "dispatch_nearest_ambulance")
		assert.NotContains(t, got, "dispatch_nearest_fire_truck")
	})
}
