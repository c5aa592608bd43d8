package assess

import "strings"

var highRiskBuildings = map[string]bool{
	"industrial": true,
	"commercial": true,
	"forest":     true,
}

// FireSafetyInstructions are issued with every fire assessment.
var FireSafetyInstructions = []string{
	"Stay low to avoid smoke inhalation",
	"Do not use elevators",
	"Close doors behind you to slow fire spread",
	"Feel doors before opening - if hot, use another exit",
	"If trapped, seal door gaps and signal from window",
}

// FireInput describes the observable situation at a fire scene.
type FireInput struct {
	SmokeVisible  bool   `json:"smoke_visible"`
	FlamesVisible bool   `json:"flames_visible"`
	BuildingType  string `json:"building_type"`
	PeopleTrapped int    `json:"people_trapped"`
	FloorCount    int    `json:"floor_count"`
	SpreadRate    string `json:"spread_rate"`
}

// FireAssessment is a scored fire severity grading.
type FireAssessment struct {
	SeverityLevel      string    `json:"severity_level"`
	SeverityScore      int       `json:"severity_score"`
	UnitsRecommended   int       `json:"units_recommended"`
	TruckTypes         []string  `json:"recommended_truck_types"`
	Recommendation     string    `json:"recommendation"`
	EvacuationPriority string    `json:"evacuation_priority"`
	Factors            FireInput `json:"factors"`
}

// FireSeverity scores the scene and maps the score to a response tier.
func FireSeverity(in FireInput) FireAssessment {
	score := 0
	if in.SmokeVisible {
		score++
	}
	if in.FlamesVisible {
		score += 2
	}
	if in.PeopleTrapped > 0 {
		score += 3
	}
	if in.PeopleTrapped > 5 {
		score += 2
	}
	if highRiskBuildings[strings.ToLower(in.BuildingType)] {
		score += 2
	}
	if in.FloorCount > 3 {
		score += 2
	} else if in.FloorCount > 1 {
		score++
	}
	switch in.SpreadRate {
	case "fast":
		score += 3
	case "moderate":
		score++
	}

	a := FireAssessment{SeverityScore: score, Factors: in, EvacuationPriority: "NORMAL"}
	if in.PeopleTrapped > 0 {
		a.EvacuationPriority = "HIGH"
	}

	switch {
	case score >= 8:
		a.SeverityLevel = "CRITICAL"
		a.UnitsRecommended = 4
		a.TruckTypes = []string{"water_tender", "ladder", "rescue"}
		a.Recommendation = "Multiple units with rescue capability needed. Evacuate immediately."
	case score >= 5:
		a.SeverityLevel = "HIGH"
		a.UnitsRecommended = 2
		a.TruckTypes = []string{"water_tender", "rescue"}
		a.Recommendation = "Multiple fire units recommended. Begin evacuation."
	case score >= 3:
		a.SeverityLevel = "MEDIUM"
		a.UnitsRecommended = 1
		a.TruckTypes = []string{"water_tender"}
		a.Recommendation = "Standard fire response. Stay low and evacuate."
	default:
		a.SeverityLevel = "LOW"
		a.UnitsRecommended = 1
		a.TruckTypes = []string{"standard"}
		a.Recommendation = "Single unit response. Monitor for changes."
	}
	return a
}
