package fleet

import (
	"context"
	"math"
	"sort"

	"emergency-dispatch-backend/internal/geo"
	"emergency-dispatch-backend/internal/model"
)

// Candidate is a unit annotated with its distance from the caller.
type Candidate struct {
	model.Unit
	DistanceKm       float64 `json:"distance_km"`
	EstimatedArrival int     `json:"estimated_arrival_minutes"`
}

// StationCandidate is a station annotated with its distance from the caller.
type StationCandidate struct {
	model.Station
	DistanceKm       float64 `json:"distance_km"`
	EstimatedArrival int     `json:"estimated_arrival_minutes"`
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ListUnits returns every unit of a service regardless of status.
func (r *Registry) ListUnits(ctx context.Context, service model.Service) ([]model.Unit, error) {
	if _, err := r.Profile(service); err != nil {
		return nil, err
	}
	var units []model.Unit
	err := r.db.WithContext(ctx).
		Where("service = ?", service).
		Order("id").
		Find(&units).Error
	return units, err
}

// AvailableUnits returns only units that can be dispatched right now.
func (r *Registry) AvailableUnits(ctx context.Context, service model.Service) ([]model.Unit, error) {
	if _, err := r.Profile(service); err != nil {
		return nil, err
	}
	var units []model.Unit
	err := r.db.WithContext(ctx).
		Where("service = ? AND status = ?", service, model.StatusAvailable).
		Order("id").
		Find(&units).Error
	return units, err
}

// Nearby finds available units within radiusKm of the caller, sorted by
// ascending distance with unit id as tie-break. A non-positive radius
// uses the service default; unitType narrows to one unit type.
func (r *Registry) Nearby(ctx context.Context, service model.Service, lat, lon, radiusKm float64, unitType string) ([]Candidate, error) {
	p, err := r.Profile(service)
	if err != nil {
		return nil, err
	}
	if radiusKm <= 0 {
		radiusKm = p.NearbyRadiusKm
	}

	q := r.db.WithContext(ctx).
		Where("service = ? AND status = ?", service, model.StatusAvailable)
	if unitType != "" {
		q = q.Where("type = ?", unitType)
	}
	var units []model.Unit
	if err := q.Find(&units).Error; err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(units))
	for _, u := range units {
		d := geo.DistanceKm(lat, lon, u.Latitude, u.Longitude)
		if d > radiusKm {
			continue
		}
		candidates = append(candidates, Candidate{
			Unit:             u,
			DistanceKm:       round2(d),
			EstimatedArrival: geo.ETAMinutes(d, p.SpeedKmh),
		})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].DistanceKm != candidates[j].DistanceKm {
			return candidates[i].DistanceKm < candidates[j].DistanceKm
		}
		return candidates[i].ID < candidates[j].ID
	})
	return candidates, nil
}

// Nearest returns the single closest available unit within the
// service's nearest-search radius, or ErrNoCandidates.
func (r *Registry) Nearest(ctx context.Context, service model.Service, lat, lon float64, unitType string) (*Candidate, error) {
	p, err := r.Profile(service)
	if err != nil {
		return nil, err
	}
	candidates, err := r.Nearby(ctx, service, lat, lon, p.NearestRadiusKm, unitType)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}
	return &candidates[0], nil
}

// ListStations returns every station of a service.
func (r *Registry) ListStations(ctx context.Context, service model.Service) ([]model.Station, error) {
	if _, err := r.Profile(service); err != nil {
		return nil, err
	}
	var stations []model.Station
	err := r.db.WithContext(ctx).
		Where("service = ?", service).
		Order("id").
		Find(&stations).Error
	return stations, err
}

// NearbyStations finds stations within radiusKm of the caller, sorted
// by ascending distance. Fire station search only returns stations that
// still have free units.
func (r *Registry) NearbyStations(ctx context.Context, service model.Service, lat, lon, radiusKm float64) ([]StationCandidate, error) {
	p, err := r.Profile(service)
	if err != nil {
		return nil, err
	}
	if radiusKm <= 0 {
		radiusKm = p.StationRadiusKm
	}

	q := r.db.WithContext(ctx).Where("service = ?", service)
	if p.TracksStationLoad {
		q = q.Where("available_units > 0")
	}
	var stations []model.Station
	if err := q.Find(&stations).Error; err != nil {
		return nil, err
	}

	nearby := make([]StationCandidate, 0, len(stations))
	for _, s := range stations {
		d := geo.DistanceKm(lat, lon, s.Latitude, s.Longitude)
		if d > radiusKm {
			continue
		}
		nearby = append(nearby, StationCandidate{
			Station:          s,
			DistanceKm:       round2(d),
			EstimatedArrival: geo.ETAMinutes(d, p.SpeedKmh),
		})
	}
	sort.Slice(nearby, func(i, j int) bool {
		if nearby[i].DistanceKm != nearby[j].DistanceKm {
			return nearby[i].DistanceKm < nearby[j].DistanceKm
		}
		return nearby[i].ID < nearby[j].ID
	})
	return nearby, nil
}

// RecentDispatches lists the most recent dispatches of a service,
// newest first, with their units preloaded.
func (r *Registry) RecentDispatches(ctx context.Context, service model.Service, limit int) ([]model.Dispatch, error) {
	if _, err := r.Profile(service); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}
	var dispatches []model.Dispatch
	err := r.db.WithContext(ctx).
		Preload("Unit").
		Where("service = ?", service).
		Order("dispatched_at DESC, id DESC").
		Limit(limit).
		Find(&dispatches).Error
	return dispatches, err
}
