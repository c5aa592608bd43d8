// Package fleet manages the simulated emergency fleet: querying units
// and stations, dispatching, releasing and tracking them in the store.
// One Registry serves all three services; behavior that differs between
// them lives in a per-service Profile.
package fleet

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"emergency-dispatch-backend/internal/geo"
	"emergency-dispatch-backend/internal/model"
)

var (
	ErrUnknownService   = errors.New("unknown service")
	ErrUnitNotFound     = errors.New("unit not found")
	ErrUnitUnavailable  = errors.New("unit is not available")
	ErrDispatchNotFound = errors.New("dispatch not found")
	ErrDispatchResolved = errors.New("dispatch already resolved")
	ErrNoCandidates     = errors.New("no available units found nearby")
	ErrInvalidStatus    = errors.New("invalid status")
	ErrCaseNotFound     = errors.New("case not found")
)

// UnavailableError reports the status that blocked a dispatch. It
// matches ErrUnitUnavailable under errors.Is.
type UnavailableError struct {
	Status string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("unit is currently %s", e.Status)
}

func (e *UnavailableError) Is(target error) bool {
	return target == ErrUnitUnavailable
}

// Profile captures how one emergency service searches and dispatches.
// Radii come from the operational defaults of each service.
type Profile struct {
	Service           model.Service
	SpeedKmh          float64
	NearbyRadiusKm    float64
	NearestRadiusKm   float64
	MultiRadiusKm     float64
	StationRadiusKm   float64
	Statuses          []string
	TracksStationLoad bool
	IssuesCaseNumbers bool
	FallbackNumber    string
	Suggestion        string
}

// ValidStatus reports whether s is accepted for this service's units.
func (p Profile) ValidStatus(s string) bool {
	for _, v := range p.Statuses {
		if v == s {
			return true
		}
	}
	return false
}

func defaultProfiles() map[model.Service]Profile {
	allStatuses := []string{model.StatusAvailable, model.StatusBusy, model.StatusDispatched, model.StatusMaintenance}
	return map[model.Service]Profile{
		model.ServiceAmbulance: {
			Service:         model.ServiceAmbulance,
			SpeedKmh:        geo.SpeedAmbulance,
			NearbyRadiusKm:  10,
			NearestRadiusKm: 50,
			MultiRadiusKm:   50,
			Statuses:        allStatuses,
			FallbackNumber:  "108",
			Suggestion:      "Try expanding search or contact emergency services directly",
		},
		model.ServiceFire: {
			Service:           model.ServiceFire,
			SpeedKmh:          geo.SpeedFireTruck,
			NearbyRadiusKm:    15,
			NearestRadiusKm:   30,
			MultiRadiusKm:     50,
			StationRadiusKm:   15,
			Statuses:          allStatuses,
			TracksStationLoad: true,
			FallbackNumber:    "101",
			Suggestion:        "Call emergency services directly at 101",
		},
		model.ServicePolice: {
			Service:           model.ServicePolice,
			SpeedKmh:          geo.SpeedPatrol,
			NearbyRadiusKm:    10,
			NearestRadiusKm:   20,
			MultiRadiusKm:     30,
			StationRadiusKm:   15,
			Statuses:          []string{model.StatusAvailable, model.StatusBusy, model.StatusDispatched},
			IssuesCaseNumbers: true,
			FallbackNumber:    "100",
			Suggestion:        "Call emergency services directly at 100",
		},
	}
}

// Registry is the fleet store facade used by the dispatch tools and the
// HTTP handlers.
type Registry struct {
	db       *gorm.DB
	profiles map[model.Service]Profile
}

// NewRegistry wires a Registry over an initialized database.
func NewRegistry(db *gorm.DB) *Registry {
	return &Registry{db: db, profiles: defaultProfiles()}
}

// Profile returns the service's dispatch profile.
func (r *Registry) Profile(service model.Service) (Profile, error) {
	p, ok := r.profiles[service]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownService, service)
	}
	return p, nil
}
