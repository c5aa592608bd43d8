package assess

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAmbulanceNeed(t *testing.T) {
	tests := []struct {
		name      string
		symptoms  []string
		patients  int
		conscious bool
		breathing bool
		wantLevel string
		wantType  string
	}{
		{"chest pain is critical", []string{"chest pain", "sweating"}, 1, true, true, "CRITICAL", "icu"},
		{"not breathing overrides mild symptoms", []string{"dizzy"}, 1, true, false, "CRITICAL", "icu"},
		{"unconscious overrides mild symptoms", []string{"dizzy"}, 1, false, true, "CRITICAL", "icu"},
		{"fracture is high", []string{"suspected fracture"}, 1, true, true, "HIGH", "advanced"},
		{"many patients escalate to high", []string{"nausea"}, 3, true, true, "HIGH", "advanced"},
		{"minor complaint is moderate", []string{"nausea"}, 1, true, true, "MODERATE", "basic"},
		{"matching is case-insensitive", []string{"Severe Bleeding from arm"}, 1, true, true, "CRITICAL", "icu"},
		{"no symptoms defaults to moderate", nil, 1, true, true, "MODERATE", "basic"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AmbulanceNeed(tt.symptoms, tt.patients, tt.conscious, tt.breathing)
			assert.Equal(t, tt.wantLevel, got.UrgencyLevel)
			assert.Equal(t, tt.wantType, got.AmbulanceType)
			assert.NotEmpty(t, got.Recommendation)
		})
	}
}

func TestFireSeverity(t *testing.T) {
	t.Run("reference scenario scores eleven", func(t *testing.T) {
		got := FireSeverity(FireInput{
			SmokeVisible:  true,
			FlamesVisible: true,
			BuildingType:  "commercial",
			PeopleTrapped: 3,
			FloorCount:    5,
			SpreadRate:    "moderate",
		})
		assert.Equal(t, 11, got.SeverityScore)
		assert.Equal(t, "CRITICAL", got.SeverityLevel)
		assert.Equal(t, 4, got.UnitsRecommended)
		assert.Equal(t, []string{"water_tender", "ladder", "rescue"}, got.TruckTypes)
		assert.Equal(t, "HIGH", got.EvacuationPriority)
	})

	t.Run("quiet scene is low", func(t *testing.T) {
		got := FireSeverity(FireInput{BuildingType: "residential", FloorCount: 1})
		assert.Equal(t, 0, got.SeverityScore)
		assert.Equal(t, "LOW", got.SeverityLevel)
		assert.Equal(t, 1, got.UnitsRecommended)
		assert.Equal(t, "NORMAL", got.EvacuationPriority)
	})

	t.Run("adding factors never lowers the score", func(t *testing.T) {
		base := FireSeverity(FireInput{BuildingType: "residential", FloorCount: 2})
		withFlames := FireSeverity(FireInput{BuildingType: "residential", FloorCount: 2, FlamesVisible: true})
		assert.GreaterOrEqual(t, withFlames.SeverityScore, base.SeverityScore)
	})

	t.Run("trapped people force high evacuation priority", func(t *testing.T) {
		got := FireSeverity(FireInput{PeopleTrapped: 1})
		assert.Equal(t, "HIGH", got.EvacuationPriority)
	})

	t.Run("always issues five safety instructions", func(t *testing.T) {
		assert.Len(t, FireSafetyInstructions, 5)
	})
}

func TestThreatLevel(t *testing.T) {
	t.Run("armed hostage kidnap is critical", func(t *testing.T) {
		got := ThreatLevel(ThreatInput{
			EmergencyType:    "kidnap",
			WeaponsInvolved:  true,
			HostageSituation: true,
			SuspectCount:     2,
			VictimCount:      1,
		})
		// 4 base + 4 weapons + 5 hostage; two suspects add nothing.
		assert.Equal(t, 13, got.ThreatScore)
		assert.Equal(t, "CRITICAL", got.ThreatLevel)
		assert.True(t, got.RequireRapidResponse)
		assert.Equal(t, 4, got.UnitsRecommended)
		assert.Contains(t, got.UserInstructions, "DO NOT confront the suspects")
	})

	t.Run("unknown crime gets default base score", func(t *testing.T) {
		got := ThreatLevel(ThreatInput{EmergencyType: "vandalism"})
		assert.Equal(t, 2, got.ThreatScore)
		assert.Equal(t, "LOW", got.ThreatLevel)
		assert.False(t, got.RequireRapidResponse)
	})

	t.Run("suspicious activity with suspect present is medium", func(t *testing.T) {
		got := ThreatLevel(ThreatInput{EmergencyType: "suspicious_activity", SuspectPresent: true, ViolenceOccurred: false, VictimCount: 2})
		// 1 base + 2 present + 1 victims.
		assert.Equal(t, 4, got.ThreatScore)
		assert.Equal(t, "MEDIUM", got.ThreatLevel)
	})

	t.Run("robbery with violence stays medium", func(t *testing.T) {
		got := ThreatLevel(ThreatInput{EmergencyType: "robbery", ViolenceOccurred: true, VictimCount: 1})
		assert.Equal(t, 6, got.ThreatScore)
		assert.Equal(t, "MEDIUM", got.ThreatLevel)
	})
}

func TestSafetyInstructions(t *testing.T) {
	t.Run("known types return staged guidance", func(t *testing.T) {
		got := SafetyInstructions("kidnap")
		assert.Contains(t, got, "immediate")
		assert.Contains(t, got, "for_family")
	})

	t.Run("lookup is case-insensitive", func(t *testing.T) {
		assert.Contains(t, SafetyInstructions("Robbery"), "during")
	})

	t.Run("unknown type falls back to general guidance", func(t *testing.T) {
		got := SafetyInstructions("arson")
		assert.Contains(t, got, "general")
	})
}
