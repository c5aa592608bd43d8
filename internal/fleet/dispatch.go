package fleet

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"emergency-dispatch-backend/internal/geo"
	"emergency-dispatch-backend/internal/model"
)

// Detail carries the incident description attached to a dispatch record.
type Detail struct {
	EmergencyType string
	Severity      string
	PeopleCount   int
	Notes         string
}

// Result is a confirmed dispatch with its travel estimate.
type Result struct {
	Dispatch   model.Dispatch `json:"dispatch"`
	Unit       model.Unit     `json:"unit"`
	DistanceKm float64        `json:"distance_km"`
	ETAMinutes int            `json:"estimated_arrival_minutes"`
	CaseNumber string         `json:"case_number,omitempty"`
	Message    string         `json:"message"`
}

// MultiResult reports the outcome of a multi-unit dispatch. Success
// requires at least one unit on the way; shortfalls are reported, not
// treated as errors.
type MultiResult struct {
	UnitsRequested  int          `json:"units_requested"`
	UnitsDispatched int          `json:"units_dispatched"`
	Dispatches      []Result     `json:"dispatches"`
	Failed          []FailedUnit `json:"failed,omitempty"`
}

// FailedUnit records a unit that could not be dispatched mid-batch.
type FailedUnit struct {
	UnitID int64  `json:"unit_id"`
	Error  string `json:"error"`
}

// Dispatch sends one specific unit to the caller's location. The unit
// must be available; the status flip is a conditional update so two
// concurrent dispatches of the same unit cannot both win.
func (r *Registry) Dispatch(ctx context.Context, service model.Service, unitID int64, lat, lon float64, detail Detail) (*Result, error) {
	p, err := r.Profile(service)
	if err != nil {
		return nil, err
	}

	var result Result
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var unit model.Unit
		if err := tx.Where("service = ? AND id = ?", service, unitID).First(&unit).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrUnitNotFound
			}
			return err
		}

		res := tx.Model(&model.Unit{}).
			Where("id = ? AND status = ?", unitID, model.StatusAvailable).
			Update("status", model.StatusDispatched)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &UnavailableError{Status: unit.Status}
		}
		unit.Status = model.StatusDispatched

		if p.TracksStationLoad && unit.StationID != nil {
			if err := tx.Model(&model.Station{}).
				Where("id = ?", *unit.StationID).
				Update("available_units", gorm.Expr("available_units - 1")).Error; err != nil {
				return err
			}
		}

		distance := geo.DistanceKm(lat, lon, unit.Latitude, unit.Longitude)
		eta := geo.ETAMinutes(distance, p.SpeedKmh)

		dispatch := model.Dispatch{
			Service:       service,
			UnitID:        unit.ID,
			Latitude:      lat,
			Longitude:     lon,
			DistanceKm:    round2(distance),
			ETAMinutes:    eta,
			Status:        model.DispatchActive,
			EmergencyType: detail.EmergencyType,
			Severity:      detail.Severity,
			PeopleCount:   detail.PeopleCount,
			Notes:         detail.Notes,
			DispatchedAt:  time.Now().UTC(),
		}
		if p.IssuesCaseNumbers {
			dispatch.CaseNumber = newCaseNumber()
		}
		if err := tx.Create(&dispatch).Error; err != nil {
			return err
		}

		result = Result{
			Dispatch:   dispatch,
			Unit:       unit,
			DistanceKm: dispatch.DistanceKm,
			ETAMinutes: eta,
			CaseNumber: dispatch.CaseNumber,
			Message:    fmt.Sprintf("Unit %s dispatched. ETA: %d minutes", unit.CallSign, eta),
		}
		if dispatch.CaseNumber != "" {
			result.Message += fmt.Sprintf(". Case #: %s", dispatch.CaseNumber)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// DispatchNearest finds the closest matching available unit and sends
// it. For police, requireRapid prefers rapid response units but falls
// back to any unit type when none is in range.
func (r *Registry) DispatchNearest(ctx context.Context, service model.Service, lat, lon float64, unitType string, requireRapid bool, detail Detail) (*Result, error) {
	p, err := r.Profile(service)
	if err != nil {
		return nil, err
	}
	if requireRapid && unitType == "" {
		unitType = "rapid_response"
	}

	candidates, err := r.Nearby(ctx, service, lat, lon, p.NearestRadiusKm, unitType)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 && requireRapid {
		candidates, err = r.Nearby(ctx, service, lat, lon, p.NearestRadiusKm, "")
		if err != nil {
			return nil, err
		}
	}
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}
	return r.Dispatch(ctx, service, candidates[0].ID, lat, lon, detail)
}

// DispatchMultiple sends up to unitsNeeded of the closest available
// units for large-scale incidents, searching a wider radius than a
// single-unit dispatch.
func (r *Registry) DispatchMultiple(ctx context.Context, service model.Service, lat, lon float64, unitsNeeded int, detail Detail) (*MultiResult, error) {
	p, err := r.Profile(service)
	if err != nil {
		return nil, err
	}
	if unitsNeeded <= 0 {
		unitsNeeded = 2
	}

	candidates, err := r.Nearby(ctx, service, lat, lon, p.MultiRadiusKm, "")
	if err != nil {
		return nil, err
	}
	if len(candidates) > unitsNeeded {
		candidates = candidates[:unitsNeeded]
	}

	out := &MultiResult{UnitsRequested: unitsNeeded}
	for i, c := range candidates {
		d := detail
		d.Notes = fmt.Sprintf("Multi-unit dispatch #%d. %s", i+1, detail.Notes)
		res, err := r.Dispatch(ctx, service, c.ID, lat, lon, d)
		if err != nil {
			out.Failed = append(out.Failed, FailedUnit{UnitID: c.ID, Error: err.Error()})
			continue
		}
		out.Dispatches = append(out.Dispatches, *res)
	}
	out.UnitsDispatched = len(out.Dispatches)
	return out, nil
}

// Complete resolves an active dispatch and returns its unit to service.
// The resolve is a conditional update like the dispatch itself, so two
// racing completions cannot both free the unit or bump the station
// counter.
func (r *Registry) Complete(ctx context.Context, service model.Service, dispatchID int64, notes string) (*model.Dispatch, error) {
	p, err := r.Profile(service)
	if err != nil {
		return nil, err
	}

	var dispatch model.Dispatch
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("service = ? AND id = ?", service, dispatchID).First(&dispatch).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrDispatchNotFound
			}
			return err
		}

		now := time.Now().UTC()
		updates := map[string]any{
			"status":      model.DispatchResolved,
			"resolved_at": now,
		}
		if notes != "" {
			updates["notes"] = notes
		}
		res := tx.Model(&model.Dispatch{}).
			Where("id = ? AND status = ?", dispatch.ID, model.DispatchActive).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrDispatchResolved
		}
		dispatch.Status = model.DispatchResolved
		dispatch.ResolvedAt = &now
		if notes != "" {
			dispatch.Notes = notes
		}

		var unit model.Unit
		if err := tx.First(&unit, dispatch.UnitID).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Unit{}).
			Where("id = ?", unit.ID).
			Update("status", model.StatusAvailable).Error; err != nil {
			return err
		}
		if p.TracksStationLoad && unit.StationID != nil && unit.Status != model.StatusAvailable {
			if err := tx.Model(&model.Station{}).
				Where("id = ?", *unit.StationID).
				Update("available_units", gorm.Expr("available_units + 1")).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dispatch, nil
}

// UpdateUnitStatus sets a unit's status directly, keeping fire station
// availability counters in step when a unit crosses the available
// boundary in either direction.
func (r *Registry) UpdateUnitStatus(ctx context.Context, service model.Service, unitID int64, newStatus string) (oldStatus string, err error) {
	p, err := r.Profile(service)
	if err != nil {
		return "", err
	}
	if !p.ValidStatus(newStatus) {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, newStatus)
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var unit model.Unit
		if err := tx.Where("service = ? AND id = ?", service, unitID).First(&unit).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrUnitNotFound
			}
			return err
		}
		oldStatus = unit.Status

		if err := tx.Model(&model.Unit{}).
			Where("id = ?", unitID).
			Update("status", newStatus).Error; err != nil {
			return err
		}

		if p.TracksStationLoad && unit.StationID != nil {
			switch {
			case oldStatus != model.StatusAvailable && newStatus == model.StatusAvailable:
				return tx.Model(&model.Station{}).
					Where("id = ?", *unit.StationID).
					Update("available_units", gorm.Expr("available_units + 1")).Error
			case oldStatus == model.StatusAvailable && newStatus != model.StatusAvailable:
				return tx.Model(&model.Station{}).
					Where("id = ?", *unit.StationID).
					Update("available_units", gorm.Expr("available_units - 1")).Error
			}
		}
		return nil
	})
	return oldStatus, err
}
