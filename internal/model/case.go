package model

import "time"

// Police case statuses.
const (
	CaseOpen          = "open"
	CaseInvestigating = "investigating"
	CaseResolved      = "resolved"
	CaseClosed        = "closed"
)

// ValidCaseStatus reports whether s is an accepted case status.
func ValidCaseStatus(s string) bool {
	switch s {
	case CaseOpen, CaseInvestigating, CaseResolved, CaseClosed:
		return true
	}
	return false
}

// Case is a police incident record with a human-readable case number.
type Case struct {
	ID          int64   `gorm:"primaryKey" json:"id"`
	CaseNumber  string  `gorm:"uniqueIndex;size:32;not null" json:"case_number"`
	CrimeType   string  `gorm:"size:64;not null" json:"crime_type"`
	Description string  `json:"description"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Status      string  `gorm:"index;size:16;not null" json:"status"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
