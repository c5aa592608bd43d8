package assess

import "strings"

var crimeBaseScores = map[string]int{
	"kidnap":              4,
	"extortion":           2,
	"robbery":             3,
	"assault":             3,
	"threat":              1,
	"suspicious_activity": 1,
}

// ThreatInput describes a reported crime in progress.
type ThreatInput struct {
	EmergencyType    string `json:"emergency_type"`
	WeaponsInvolved  bool   `json:"weapons_involved"`
	HostageSituation bool   `json:"hostage_situation"`
	SuspectCount     int    `json:"suspect_count"`
	VictimCount      int    `json:"victim_count"`
	SuspectPresent   bool   `json:"suspect_present"`
	ViolenceOccurred bool   `json:"violence_occurred"`
}

// ThreatAssessment is a scored police threat grading.
type ThreatAssessment struct {
	ThreatLevel          string      `json:"threat_level"`
	ThreatScore          int         `json:"threat_score"`
	UnitsRecommended     int         `json:"units_recommended"`
	RequireRapidResponse bool        `json:"require_rapid_response"`
	Recommendation       string      `json:"recommendation"`
	Factors              ThreatInput `json:"factors_analyzed"`
	UserInstructions     []string    `json:"user_instructions"`
}

// ThreatLevel scores the situation and maps the score to a response tier
// with instructions for the caller.
func ThreatLevel(in ThreatInput) ThreatAssessment {
	score, ok := crimeBaseScores[strings.ToLower(in.EmergencyType)]
	if !ok {
		score = 2
	}
	if in.WeaponsInvolved {
		score += 4
	}
	if in.HostageSituation {
		score += 5
	}
	if in.SuspectPresent {
		score += 2
	}
	if in.ViolenceOccurred {
		score += 3
	}
	if in.SuspectCount > 2 {
		score += 2
	}
	if in.VictimCount > 1 {
		score++
	}

	a := ThreatAssessment{ThreatScore: score, Factors: in}
	switch {
	case score >= 10:
		a.ThreatLevel = "CRITICAL"
		a.UnitsRecommended = 4
		a.RequireRapidResponse = true
		a.Recommendation = "Armed response team required. Multiple units needed immediately."
		a.UserInstructions = []string{
			"DO NOT confront the suspects",
			"Find a safe hiding place if possible",
			"Stay silent and do not draw attention",
			"Keep phone on silent but stay connected",
			"Wait for police to arrive",
		}
	case score >= 7:
		a.ThreatLevel = "HIGH"
		a.UnitsRecommended = 2
		a.RequireRapidResponse = true
		a.Recommendation = "Rapid response unit recommended. Priority dispatch."
		a.UserInstructions = []string{
			"Move to a safe location if possible",
			"Stay calm and do not provoke",
			"Note descriptions of suspects if safe to do so",
			"Keep communication open with emergency services",
		}
	case score >= 4:
		a.ThreatLevel = "MEDIUM"
		a.UnitsRecommended = 1
		a.Recommendation = "Standard patrol response. Exercise caution."
		a.UserInstructions = []string{
			"Stay alert and aware of surroundings",
			"Move to a well-lit, public area if possible",
			"Wait for police to arrive",
		}
	default:
		a.ThreatLevel = "LOW"
		a.UnitsRecommended = 1
		a.Recommendation = "Standard patrol response appropriate."
		a.UserInstructions = []string{
			"Stay calm and observe",
			"Note any useful details",
			"Wait for police to arrive",
		}
	}
	return a
}

// SafetyInstructions returns situation-specific guidance for the caller,
// grouped by stage. Unknown emergency types get generic guidance.
func SafetyInstructions(emergencyType string) map[string][]string {
	instructions := map[string]map[string][]string{
		"kidnap": {
			"immediate": {
				"If you can communicate safely, share your location",
				"Try to stay calm and do not resist violently",
				"Observe and remember details about captors and location",
				"Look for opportunities to escape only if safe",
				"If possible, leave small clues for rescuers",
			},
			"for_family": {
				"Contact police immediately",
				"Do not pay ransom without police guidance",
				"Keep communication lines open",
				"Document all communications from kidnappers",
			},
		},
		"extortion": {
			"immediate": {
				"Do not make immediate payments",
				"Document all threats and communications",
				"Report to police before responding to demands",
				"Do not delete any messages or evidence",
				"Inform trusted family members or friends",
			},
			"ongoing": {
				"Keep police informed of all developments",
				"Follow police guidance on responses",
				"Maintain records of all incidents",
			},
		},
		"robbery": {
			"during": {
				"Do not resist - your safety is priority",
				"Follow instructions calmly",
				"Avoid sudden movements",
				"Do not make eye contact with weapons",
				"Note physical descriptions if possible",
			},
			"after": {
				"Call police immediately",
				"Do not touch anything at the scene",
				"Note direction suspects fled",
				"Get witness contact information",
			},
		},
		"assault": {
			"during": {
				"Try to escape to safety if possible",
				"Protect vital areas (head, neck)",
				"Call for help loudly",
				"Fight back only as last resort",
			},
			"after": {
				"Get to a safe location",
				"Call emergency services",
				"Seek medical attention",
				"Do not wash or change clothes (evidence)",
			},
		},
		"threat": {
			"immediate": {
				"Move to a safe, public location if possible",
				"Do not engage with the person making threats",
				"Try to note their appearance and any vehicle details",
				"Contact trusted friends or family",
			},
			"ongoing": {
				"Document all threats (save messages, record times)",
				"Report to police immediately",
				"Consider changing your routine temporarily",
				"Stay in well-lit, populated areas",
			},
		},
	}

	if got, ok := instructions[strings.ToLower(emergencyType)]; ok {
		return got
	}
	return map[string][]string{
		"general": {
			"Contact emergency services immediately",
			"Move to a safe location",
			"Stay calm and follow police instructions",
		},
	}
}
