package model

import "time"

// Service identifies which emergency service a unit or station belongs to.
type Service string

const (
	ServiceAmbulance Service = "ambulance"
	ServiceFire      Service = "fire"
	ServicePolice    Service = "police"
)

// Valid reports whether s is one of the known services.
func (s Service) Valid() bool {
	switch s {
	case ServiceAmbulance, ServiceFire, ServicePolice:
		return true
	}
	return false
}

// Unit operational statuses.
const (
	StatusAvailable   = "available"
	StatusBusy        = "busy"
	StatusDispatched  = "dispatched"
	StatusMaintenance = "maintenance"
)

// Unit represents a dispatchable vehicle: an ambulance, a fire truck
// or a police patrol unit, discriminated by Service.
type Unit struct {
	ID           int64   `gorm:"primaryKey" json:"id"`
	Service      Service `gorm:"index:idx_units_service_status;size:16;not null" json:"service"`
	CallSign     string  `gorm:"uniqueIndex;size:32;not null" json:"call_sign"`
	Type         string  `gorm:"size:32;not null" json:"type"`
	Status       string  `gorm:"index:idx_units_service_status;size:16;not null" json:"status"`
	Latitude     float64 `gorm:"not null" json:"latitude"`
	Longitude    float64 `gorm:"not null" json:"longitude"`
	StationName  string  `gorm:"size:128" json:"station_name,omitempty"`
	StationID    *int64  `gorm:"index" json:"station_id,omitempty"`
	ContactPhone string  `gorm:"size:32" json:"contact_phone,omitempty"`

	// Service-specific attributes. Zero values mean not applicable.
	WaterCapacityLiters int `json:"water_capacity_liters,omitempty"` // fire trucks
	OfficersCount       int `json:"officers_count,omitempty"`        // patrol units

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
