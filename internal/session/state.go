// Package session holds per-conversation emergency context: what kind
// of emergency it is, what we know so far, what was dispatched, and
// which phase the conversation is in.
package session

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"emergency-dispatch-backend/internal/llm"
)

// Phase of an emergency conversation. Phases only move forward.
type Phase string

const (
	PhaseInitial           Phase = "initial"
	PhaseGatheringInfo     Phase = "gathering_info"
	PhaseAssessing         Phase = "assessing"
	PhaseDispatching       Phase = "dispatching"
	PhaseProvidingGuidance Phase = "providing_guidance"
	PhaseMonitoring        Phase = "monitoring"
	PhaseResolved          Phase = "resolved"
)

var phaseOrder = map[Phase]int{
	PhaseInitial:           0,
	PhaseGatheringInfo:     1,
	PhaseAssessing:         2,
	PhaseDispatching:       3,
	PhaseProvidingGuidance: 4,
	PhaseMonitoring:        5,
	PhaseResolved:          6,
}

// EmergencyType as classified from the conversation.
type EmergencyType string

const (
	EmergencyUnknown EmergencyType = "unknown"
	EmergencyMedical EmergencyType = "medical"
	EmergencyFire    EmergencyType = "fire"
	EmergencyPolice  EmergencyType = "police"
)

// ParseEmergencyType validates a classification string.
func ParseEmergencyType(s string) (EmergencyType, bool) {
	switch EmergencyType(strings.ToLower(s)) {
	case EmergencyMedical:
		return EmergencyMedical, true
	case EmergencyFire:
		return EmergencyFire, true
	case EmergencyPolice:
		return EmergencyPolice, true
	}
	return EmergencyUnknown, false
}

// Location is where the caller is, and how sure we are about it.
type Location struct {
	Known      bool    `json:"known"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Address    string  `json:"address,omitempty"`
	Source     string  `json:"obtained_from,omitempty"` // device, user_input, estimated
	Confidence string  `json:"confidence"`              // high, medium, low, unknown
}

// MedicalInfo accumulates details of a medical emergency. Pointer
// fields distinguish "not asked yet" from a reported false.
type MedicalInfo struct {
	PatientCount  int      `json:"patient_count"`
	Symptoms      []string `json:"symptoms"`
	Conscious     *bool    `json:"patient_conscious"`
	Breathing     *bool    `json:"patient_breathing"`
	SeverityLevel string   `json:"severity_level,omitempty"`
	AmbulanceType string   `json:"ambulance_type_needed,omitempty"`
	Notes         string   `json:"additional_notes,omitempty"`
}

// FireInfo accumulates details of a fire emergency.
type FireInfo struct {
	SmokeVisible     *bool  `json:"smoke_visible"`
	FlamesVisible    *bool  `json:"flames_visible"`
	BuildingType     string `json:"building_type,omitempty"`
	PeopleTrapped    int    `json:"people_trapped"`
	FloorCount       int    `json:"floor_count"`
	SpreadRate       string `json:"spread_rate"`
	SeverityLevel    string `json:"severity_level,omitempty"`
	UnitsRecommended int    `json:"units_recommended"`
	Notes            string `json:"additional_notes,omitempty"`
}

// PoliceInfo accumulates details of a police emergency.
type PoliceInfo struct {
	Subtype        string `json:"emergency_subtype,omitempty"`
	Weapons        *bool  `json:"weapons_involved"`
	Hostage        *bool  `json:"hostage_situation"`
	SuspectCount   int    `json:"suspect_count"`
	VictimCount    int    `json:"victim_count"`
	SuspectPresent *bool  `json:"suspect_present"`
	Violence       *bool  `json:"violence_occurred"`
	VictimSafe     *bool  `json:"victim_safe"`
	ThreatLevel    string `json:"threat_level,omitempty"`
	CaseNumber     string `json:"case_number,omitempty"`
	Notes          string `json:"additional_notes,omitempty"`
}

// DispatchRecord tracks one unit sent during this conversation.
type DispatchRecord struct {
	DispatchID   int64     `json:"dispatch_id"`
	ServiceType  string    `json:"service_type"`
	UnitID       int64     `json:"unit_id"`
	UnitCallSign string    `json:"unit_identifier"`
	ETAMinutes   int       `json:"eta_minutes"`
	CaseNumber   string    `json:"case_number,omitempty"`
	Status       string    `json:"status"`
	DispatchedAt time.Time `json:"dispatched_at"`
}

// ToolCallRecord logs one executed tool for the session audit trail.
type ToolCallRecord struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Success   bool      `json:"success"`
	Timestamp time.Time `json:"timestamp"`
}

// State is the complete context of one emergency conversation.
type State struct {
	mu sync.Mutex

	SessionID string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Phase         Phase         `json:"phase"`
	EmergencyType EmergencyType `json:"emergency_type"`
	Location      Location      `json:"location"`

	Medical MedicalInfo `json:"medical_info"`
	Fire    FireInfo    `json:"fire_info"`
	Police  PoliceInfo  `json:"police_info"`

	Dispatches     []DispatchRecord `json:"dispatches"`
	ActiveDispatch *DispatchRecord  `json:"active_dispatch,omitempty"`

	Messages  []llm.ChatMessage `json:"-"`
	ToolCalls []ToolCallRecord  `json:"-"`

	LocationRequested       bool `json:"location_requested"`
	ServicesDispatched      bool `json:"emergency_services_dispatched"`
	SafetyInstructionsGiven bool `json:"safety_instructions_given"`
}

// NewState starts a fresh conversation in the initial phase.
func NewState(sessionID string) *State {
	now := time.Now().UTC()
	return &State{
		SessionID:     sessionID,
		CreatedAt:     now,
		UpdatedAt:     now,
		Phase:         PhaseInitial,
		EmergencyType: EmergencyUnknown,
		Location:      Location{Confidence: "unknown"},
		Fire:          FireInfo{FloorCount: 1, SpreadRate: "unknown", UnitsRecommended: 1},
		Police:        PoliceInfo{VictimCount: 1},
	}
}

// Lock serializes access for callers that span several reads and
// writes, such as one full orchestrator turn.
func (s *State) Lock() { s.mu.Lock() }

// Unlock releases the session.
func (s *State) Unlock() { s.mu.Unlock() }

func (s *State) touch() {
	s.UpdatedAt = time.Now().UTC()
}

// AddMessage appends a conversation turn to the history.
func (s *State) AddMessage(msg llm.ChatMessage) {
	s.Messages = append(s.Messages, msg)
	s.touch()
}

// AddToolResult appends a tool response message and logs the call.
func (s *State) AddToolResult(callID, name, content string, success bool) {
	s.Messages = append(s.Messages, llm.ChatMessage{
		Role:       llm.RoleTool,
		ToolCallID: callID,
		Name:       name,
		Content:    content,
	})
	s.ToolCalls = append(s.ToolCalls, ToolCallRecord{
		ID:        callID,
		Name:      name,
		Success:   success,
		Timestamp: time.Now().UTC(),
	})
	s.touch()
}

// SetEmergencyType records the classification and moves the
// conversation out of the initial phase.
func (s *State) SetEmergencyType(t EmergencyType) {
	s.EmergencyType = t
	s.AdvancePhase(PhaseGatheringInfo)
}

// SetLocation records the caller's position. Device-sourced locations
// are trusted more than spoken ones.
func (s *State) SetLocation(lat, lon float64, source, address string) {
	confidence := "medium"
	if source == "device" {
		confidence = "high"
	}
	s.Location = Location{
		Known:      true,
		Latitude:   lat,
		Longitude:  lon,
		Address:    address,
		Source:     source,
		Confidence: confidence,
	}
	s.touch()
}

// AddDispatch records a confirmed dispatch and moves the conversation
// into the dispatching phase.
func (s *State) AddDispatch(rec DispatchRecord) {
	s.Dispatches = append(s.Dispatches, rec)
	s.ActiveDispatch = &s.Dispatches[len(s.Dispatches)-1]
	s.ServicesDispatched = true
	if s.Phase == PhaseGatheringInfo || s.Phase == PhaseAssessing {
		s.Phase = PhaseDispatching
	}
	s.touch()
}

// AdvancePhase moves to a later phase. Requests to move backwards are
// ignored so a stale tool result cannot rewind the conversation.
func (s *State) AdvancePhase(p Phase) {
	if phaseOrder[p] > phaseOrder[s.Phase] {
		s.Phase = p
	}
	s.touch()
}

// ContextSummary renders the state as one line for prompt injection.
func (s *State) ContextSummary() string {
	parts := []string{
		fmt.Sprintf("Session: %s", s.SessionID),
		fmt.Sprintf("Phase: %s", s.Phase),
		fmt.Sprintf("Emergency Type: %s", s.EmergencyType),
	}

	if s.Location.Known {
		parts = append(parts, fmt.Sprintf("Location: (%g, %g)", s.Location.Latitude, s.Location.Longitude))
	} else {
		parts = append(parts, "Location: NOT OBTAINED")
	}

	switch s.EmergencyType {
	case EmergencyMedical:
		if s.Medical.PatientCount > 0 {
			parts = append(parts, fmt.Sprintf("Patients: %d", s.Medical.PatientCount))
		}
		if len(s.Medical.Symptoms) > 0 {
			parts = append(parts, fmt.Sprintf("Symptoms: %s", strings.Join(s.Medical.Symptoms, ", ")))
		}
		if s.Medical.SeverityLevel != "" {
			parts = append(parts, fmt.Sprintf("Severity: %s", s.Medical.SeverityLevel))
		}
	case EmergencyFire:
		if s.Fire.BuildingType != "" {
			parts = append(parts, fmt.Sprintf("Building: %s", s.Fire.BuildingType))
		}
		if s.Fire.PeopleTrapped > 0 {
			parts = append(parts, fmt.Sprintf("People trapped: %d", s.Fire.PeopleTrapped))
		}
		if s.Fire.SeverityLevel != "" {
			parts = append(parts, fmt.Sprintf("Severity: %s", s.Fire.SeverityLevel))
		}
	case EmergencyPolice:
		if s.Police.Subtype != "" {
			parts = append(parts, fmt.Sprintf("Type: %s", s.Police.Subtype))
		}
		if s.Police.ThreatLevel != "" {
			parts = append(parts, fmt.Sprintf("Threat: %s", s.Police.ThreatLevel))
		}
		if s.Police.CaseNumber != "" {
			parts = append(parts, fmt.Sprintf("Case: %s", s.Police.CaseNumber))
		}
	}

	if s.ServicesDispatched {
		parts = append(parts, fmt.Sprintf("Services dispatched: %d", len(s.Dispatches)))
		if s.ActiveDispatch != nil && s.ActiveDispatch.ETAMinutes > 0 {
			parts = append(parts, fmt.Sprintf("ETA: %d minutes", s.ActiveDispatch.ETAMinutes))
		}
	}
	return strings.Join(parts, " | ")
}

// MissingCriticalInfo lists what still blocks a confident dispatch.
func (s *State) MissingCriticalInfo() []string {
	var missing []string

	if !s.Location.Known {
		missing = append(missing, "location")
	}
	if s.EmergencyType == EmergencyUnknown {
		missing = append(missing, "emergency_type")
	}

	switch s.EmergencyType {
	case EmergencyMedical:
		if s.Medical.PatientCount == 0 {
			missing = append(missing, "patient_count")
		}
		if s.Medical.Conscious == nil {
			missing = append(missing, "patient_conscious_status")
		}
		if s.Medical.Breathing == nil {
			missing = append(missing, "patient_breathing_status")
		}
	case EmergencyFire:
		if s.Fire.BuildingType == "" {
			missing = append(missing, "building_type")
		}
		if s.Fire.SmokeVisible == nil && s.Fire.FlamesVisible == nil {
			missing = append(missing, "fire_visibility")
		}
	case EmergencyPolice:
		if s.Police.Subtype == "" {
			missing = append(missing, "emergency_subtype")
		}
		if s.Police.VictimSafe == nil {
			missing = append(missing, "victim_safety_status")
		}
	}
	return missing
}

// ShouldDispatch reports whether the conversation has enough context to
// send a unit: known location, known type, nothing already on the way.
func (s *State) ShouldDispatch() bool {
	if !s.Location.Known {
		return false
	}
	if s.EmergencyType == EmergencyUnknown {
		return false
	}
	if s.ServicesDispatched {
		return false
	}
	return true
}

// Snapshot serializes the public view of the state for API responses.
func (s *State) Snapshot() map[string]any {
	flags := map[string]bool{
		"location_requested":            s.LocationRequested,
		"emergency_services_dispatched": s.ServicesDispatched,
		"safety_instructions_given":     s.SafetyInstructionsGiven,
	}
	return map[string]any{
		"session_id":      s.SessionID,
		"created_at":      s.CreatedAt,
		"updated_at":      s.UpdatedAt,
		"phase":           s.Phase,
		"emergency_type":  s.EmergencyType,
		"location":        s.Location,
		"medical_info":    s.Medical,
		"fire_info":       s.Fire,
		"police_info":     s.Police,
		"dispatches":      s.Dispatches,
		"flags":           flags,
		"message_count":   len(s.Messages),
		"tool_call_count": len(s.ToolCalls),
	}
}
