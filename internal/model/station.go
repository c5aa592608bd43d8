package model

import "time"

// Station represents a fire station or a police station. Ambulances in
// the fleet carry their home station as a free-text name instead.
type Station struct {
	ID           int64   `gorm:"primaryKey" json:"id"`
	Service      Service `gorm:"index;size:16;not null" json:"service"`
	Code         string  `gorm:"uniqueIndex;size:16;not null" json:"code"`
	Name         string  `gorm:"size:128;not null" json:"name"`
	Latitude     float64 `gorm:"not null" json:"latitude"`
	Longitude    float64 `gorm:"not null" json:"longitude"`
	ContactPhone string  `gorm:"size:32" json:"contact_phone,omitempty"`

	// Fire stations track how many of their units are free.
	AvailableUnits int `json:"available_units,omitempty"`
	TotalUnits     int `json:"total_units,omitempty"`

	// Police stations cover a named jurisdiction.
	Jurisdiction string `gorm:"size:128" json:"jurisdiction,omitempty"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	// Associations
	Units []Unit `gorm:"foreignKey:StationID" json:"-"`
}
