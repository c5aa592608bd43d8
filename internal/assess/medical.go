// Package assess turns caller-reported emergency details into severity
// gradings and response recommendations. The functions are pure so the
// orchestrator can call them without touching the fleet store.
package assess

import "strings"

var criticalSymptoms = []string{
	"chest pain", "heart attack", "stroke", "severe bleeding",
	"not breathing", "unconscious", "seizure", "severe burn",
	"head injury", "spinal injury", "drowning", "poisoning",
}

var moderateSymptoms = []string{
	"broken bone", "fracture", "deep cut", "difficulty breathing",
	"allergic reaction", "high fever", "severe pain", "fainting",
}

// MedicalAssessment is the result of triaging reported symptoms.
type MedicalAssessment struct {
	UrgencyLevel     string   `json:"urgency_level"`
	AmbulanceType    string   `json:"recommended_ambulance_type"`
	Recommendation   string   `json:"recommendation"`
	PatientCount     int      `json:"patient_count"`
	Conscious        bool     `json:"patient_conscious"`
	Breathing        bool     `json:"patient_breathing"`
	SymptomsAnalyzed []string `json:"symptoms_analyzed"`
}

// AmbulanceNeed grades reported symptoms into an urgency level and the
// ambulance type to send. Symptom matching is a case-insensitive
// substring check against the joined symptom list.
func AmbulanceNeed(symptoms []string, patientCount int, conscious, breathing bool) MedicalAssessment {
	joined := strings.ToLower(strings.Join(symptoms, " "))

	hasCritical := false
	for _, s := range criticalSymptoms {
		if strings.Contains(joined, s) {
			hasCritical = true
			break
		}
	}
	hasModerate := false
	for _, s := range moderateSymptoms {
		if strings.Contains(joined, s) {
			hasModerate = true
			break
		}
	}

	a := MedicalAssessment{
		PatientCount:     patientCount,
		Conscious:        conscious,
		Breathing:        breathing,
		SymptomsAnalyzed: symptoms,
	}

	switch {
	case !breathing || !conscious || hasCritical:
		a.UrgencyLevel = "CRITICAL"
		a.AmbulanceType = "icu"
		a.Recommendation = "ICU ambulance with advanced life support needed immediately"
	case hasModerate || patientCount > 2:
		a.UrgencyLevel = "HIGH"
		a.AmbulanceType = "advanced"
		a.Recommendation = "Advanced ambulance with paramedics recommended"
	default:
		a.UrgencyLevel = "MODERATE"
		a.AmbulanceType = "basic"
		a.Recommendation = "Basic ambulance suitable for this situation"
	}
	return a
}
