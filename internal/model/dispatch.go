package model

import "time"

// Dispatch statuses.
const (
	DispatchActive   = "active"
	DispatchResolved = "resolved"
)

// Dispatch records one unit being sent to one emergency location.
type Dispatch struct {
	ID         int64   `gorm:"primaryKey" json:"id"`
	Service    Service `gorm:"index;size:16;not null" json:"service"`
	UnitID     int64   `gorm:"index;not null" json:"unit_id"`
	Latitude   float64 `gorm:"not null" json:"latitude"`
	Longitude  float64 `gorm:"not null" json:"longitude"`
	DistanceKm float64 `gorm:"not null" json:"distance_km"`
	ETAMinutes int     `gorm:"not null" json:"eta_minutes"`
	Status     string  `gorm:"index;size:16;not null" json:"status"`

	// Incident details as reported by the caller.
	EmergencyType string `gorm:"size:64" json:"emergency_type,omitempty"`
	Severity      string `gorm:"size:16" json:"severity,omitempty"`
	PeopleCount   int    `json:"people_count,omitempty"`
	CaseNumber    string `gorm:"size:32" json:"case_number,omitempty"`
	Notes         string `json:"notes,omitempty"`

	DispatchedAt time.Time  `gorm:"not null" json:"dispatched_at"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty"`

	// Associations
	Unit Unit `gorm:"constraint:OnDelete:CASCADE" json:"unit"`
}
