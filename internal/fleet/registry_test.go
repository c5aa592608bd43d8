package fleet

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"emergency-dispatch-backend/internal/db"
	"emergency-dispatch-backend/internal/model"
)

// Koramangala, close to several seeded units.
const (
	testLat = 12.9352
	testLon = 77.6245
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	// Serialize writers so transactions contend on row state, not on
	// sqlite connection locks.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(gdb))
	require.NoError(t, db.Seed(gdb))
	return NewRegistry(gdb)
}

func TestNearby(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	t.Run("sorted ascending and available only", func(t *testing.T) {
		got, err := r.Nearby(ctx, model.ServiceAmbulance, testLat, testLon, 10, "")
		require.NoError(t, err)
		require.NotEmpty(t, got)

		for i := 1; i < len(got); i++ {
			assert.LessOrEqual(t, got[i-1].DistanceKm, got[i].DistanceKm)
		}
		for _, c := range got {
			assert.Equal(t, model.StatusAvailable, c.Status)
			assert.LessOrEqual(t, c.DistanceKm, 10.0)
			assert.GreaterOrEqual(t, c.EstimatedArrival, 1)
		}
		// The Apollo unit is parked at the search origin.
		assert.Equal(t, "KA-01-AM-1002", got[0].CallSign)
	})

	t.Run("type filter", func(t *testing.T) {
		got, err := r.Nearby(ctx, model.ServiceAmbulance, testLat, testLon, 50, "icu")
		require.NoError(t, err)
		require.NotEmpty(t, got)
		for _, c := range got {
			assert.Equal(t, "icu", c.Type)
		}
	})

	t.Run("tiny radius excludes everything", func(t *testing.T) {
		got, err := r.Nearby(ctx, model.ServiceAmbulance, 13.5, 78.5, 0.5, "")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("unknown service rejected", func(t *testing.T) {
		_, err := r.Nearby(ctx, model.Service("coastguard"), testLat, testLon, 10, "")
		assert.ErrorIs(t, err, ErrUnknownService)
	})
}

func TestNearest(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	t.Run("closest unit wins", func(t *testing.T) {
		got, err := r.Nearest(ctx, model.ServiceAmbulance, testLat, testLon, "")
		require.NoError(t, err)
		assert.Equal(t, "KA-01-AM-1002", got.CallSign)
	})

	t.Run("no candidates far away", func(t *testing.T) {
		_, err := r.Nearest(ctx, model.ServiceAmbulance, 28.6139, 77.2090, "")
		assert.ErrorIs(t, err, ErrNoCandidates)
	})
}

func TestDispatch(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path creates one active record", func(t *testing.T) {
		r := newTestRegistry(t)
		nearest, err := r.Nearest(ctx, model.ServiceAmbulance, testLat, testLon, "")
		require.NoError(t, err)

		res, err := r.Dispatch(ctx, model.ServiceAmbulance, nearest.ID, testLat, testLon, Detail{EmergencyType: "medical", PeopleCount: 1})
		require.NoError(t, err)
		assert.Equal(t, model.StatusDispatched, res.Unit.Status)
		assert.GreaterOrEqual(t, res.ETAMinutes, 1)
		assert.Contains(t, res.Message, "dispatched")

		dispatches, err := r.RecentDispatches(ctx, model.ServiceAmbulance, 10)
		require.NoError(t, err)
		require.Len(t, dispatches, 1)
		assert.Equal(t, model.DispatchActive, dispatches[0].Status)
		assert.Equal(t, res.Unit.ID, dispatches[0].UnitID)
	})

	t.Run("busy unit rejected with its status", func(t *testing.T) {
		r := newTestRegistry(t)
		var busy model.Unit
		require.NoError(t, r.db.Where("service = ? AND status = ?", model.ServiceAmbulance, model.StatusBusy).First(&busy).Error)

		_, err := r.Dispatch(ctx, model.ServiceAmbulance, busy.ID, testLat, testLon, Detail{})
		assert.ErrorIs(t, err, ErrUnitUnavailable)
		assert.Contains(t, err.Error(), "busy")
	})

	t.Run("unknown unit", func(t *testing.T) {
		r := newTestRegistry(t)
		_, err := r.Dispatch(ctx, model.ServiceAmbulance, 9999, testLat, testLon, Detail{})
		assert.ErrorIs(t, err, ErrUnitNotFound)
	})

	t.Run("concurrent dispatch of one unit has a single winner", func(t *testing.T) {
		r := newTestRegistry(t)
		nearest, err := r.Nearest(ctx, model.ServiceAmbulance, testLat, testLon, "")
		require.NoError(t, err)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = r.Dispatch(ctx, model.ServiceAmbulance, nearest.ID, testLat, testLon, Detail{})
			}(i)
		}
		wg.Wait()

		winners := 0
		for _, err := range errs {
			if err == nil {
				winners++
			} else {
				assert.ErrorIs(t, err, ErrUnitUnavailable)
			}
		}
		assert.Equal(t, 1, winners)

		var active int64
		require.NoError(t, r.db.Model(&model.Dispatch{}).
			Where("unit_id = ? AND status = ?", nearest.ID, model.DispatchActive).
			Count(&active).Error)
		assert.EqualValues(t, 1, active)
	})

	t.Run("police dispatch issues a case number", func(t *testing.T) {
		r := newTestRegistry(t)
		res, err := r.DispatchNearest(ctx, model.ServicePolice, testLat, testLon, "", false, Detail{EmergencyType: "robbery"})
		require.NoError(t, err)
		assert.Regexp(t, `^CASE-\d{12}-[A-Z0-9]{4}$`, res.CaseNumber)
	})

	t.Run("fire dispatch decrements the station counter", func(t *testing.T) {
		r := newTestRegistry(t)
		res, err := r.DispatchNearest(ctx, model.ServiceFire, testLat, testLon, "", false, Detail{EmergencyType: "building"})
		require.NoError(t, err)
		require.NotNil(t, res.Unit.StationID)

		var station model.Station
		require.NoError(t, r.db.First(&station, *res.Unit.StationID).Error)
		// Koramangala fire station is seeded with two free units.
		assert.Equal(t, 1, station.AvailableUnits)
	})
}

func TestDispatchNearestRapidResponseFallback(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	// Take every rapid response unit out of service, then require one.
	require.NoError(t, r.db.Model(&model.Unit{}).
		Where("service = ? AND type = ?", model.ServicePolice, "rapid_response").
		Update("status", model.StatusBusy).Error)

	res, err := r.DispatchNearest(ctx, model.ServicePolice, testLat, testLon, "", true, Detail{EmergencyType: "kidnap"})
	require.NoError(t, err)
	assert.Equal(t, "patrol", res.Unit.Type)
}

func TestDispatchMultiple(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	t.Run("dispatches up to the requested count", func(t *testing.T) {
		res, err := r.DispatchMultiple(ctx, model.ServiceFire, testLat, testLon, 2, Detail{EmergencyType: "building", Severity: "high"})
		require.NoError(t, err)
		assert.Equal(t, 2, res.UnitsRequested)
		assert.Equal(t, 2, res.UnitsDispatched)
		for i, d := range res.Dispatches {
			assert.Contains(t, d.Dispatch.Notes, fmt.Sprintf("Multi-unit dispatch #%d", i+1))
		}
	})

	t.Run("shortfall is reported, not an error", func(t *testing.T) {
		res, err := r.DispatchMultiple(ctx, model.ServiceFire, testLat, testLon, 50, Detail{EmergencyType: "building", Severity: "critical"})
		require.NoError(t, err)
		assert.Less(t, res.UnitsDispatched, res.UnitsRequested)
		assert.Greater(t, res.UnitsDispatched, 0)
	})
}

func TestComplete(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	res, err := r.DispatchNearest(ctx, model.ServiceFire, testLat, testLon, "", false, Detail{EmergencyType: "building"})
	require.NoError(t, err)

	var before model.Station
	require.NoError(t, r.db.First(&before, *res.Unit.StationID).Error)

	done, err := r.Complete(ctx, model.ServiceFire, res.Dispatch.ID, "fire out")
	require.NoError(t, err)
	assert.Equal(t, model.DispatchResolved, done.Status)
	assert.NotNil(t, done.ResolvedAt)

	var unit model.Unit
	require.NoError(t, r.db.First(&unit, res.Unit.ID).Error)
	assert.Equal(t, model.StatusAvailable, unit.Status)

	var after model.Station
	require.NoError(t, r.db.First(&after, *res.Unit.StationID).Error)
	assert.Equal(t, before.AvailableUnits+1, after.AvailableUnits)

	t.Run("completing twice fails", func(t *testing.T) {
		_, err := r.Complete(ctx, model.ServiceFire, res.Dispatch.ID, "")
		assert.ErrorIs(t, err, ErrDispatchResolved)
	})

	t.Run("unknown dispatch", func(t *testing.T) {
		_, err := r.Complete(ctx, model.ServiceFire, 9999, "")
		assert.ErrorIs(t, err, ErrDispatchNotFound)
	})

	t.Run("concurrent completion has a single winner", func(t *testing.T) {
		r := newTestRegistry(t)
		res, err := r.DispatchNearest(ctx, model.ServiceFire, testLat, testLon, "", false, Detail{EmergencyType: "building"})
		require.NoError(t, err)

		var before model.Station
		require.NoError(t, r.db.First(&before, *res.Unit.StationID).Error)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = r.Complete(ctx, model.ServiceFire, res.Dispatch.ID, "")
			}(i)
		}
		wg.Wait()

		winners := 0
		for _, err := range errs {
			if err == nil {
				winners++
			} else {
				assert.ErrorIs(t, err, ErrDispatchResolved)
			}
		}
		assert.Equal(t, 1, winners)

		// The station counter moved back up exactly once.
		var after model.Station
		require.NoError(t, r.db.First(&after, *res.Unit.StationID).Error)
		assert.Equal(t, before.AvailableUnits+1, after.AvailableUnits)
	})
}

func TestUpdateUnitStatus(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	t.Run("fire counters follow the available boundary", func(t *testing.T) {
		var truck model.Unit
		require.NoError(t, r.db.Where("service = ? AND status = ?", model.ServiceFire, model.StatusAvailable).First(&truck).Error)
		var before model.Station
		require.NoError(t, r.db.First(&before, *truck.StationID).Error)

		old, err := r.UpdateUnitStatus(ctx, model.ServiceFire, truck.ID, model.StatusMaintenance)
		require.NoError(t, err)
		assert.Equal(t, model.StatusAvailable, old)

		var mid model.Station
		require.NoError(t, r.db.First(&mid, *truck.StationID).Error)
		assert.Equal(t, before.AvailableUnits-1, mid.AvailableUnits)

		_, err = r.UpdateUnitStatus(ctx, model.ServiceFire, truck.ID, model.StatusAvailable)
		require.NoError(t, err)

		var after model.Station
		require.NoError(t, r.db.First(&after, *truck.StationID).Error)
		assert.Equal(t, before.AvailableUnits, after.AvailableUnits)
	})

	t.Run("patrol units cannot enter maintenance", func(t *testing.T) {
		var patrol model.Unit
		require.NoError(t, r.db.Where("service = ?", model.ServicePolice).First(&patrol).Error)
		_, err := r.UpdateUnitStatus(ctx, model.ServicePolice, patrol.ID, model.StatusMaintenance)
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})
}

func TestNearbyStations(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	t.Run("fire search skips exhausted stations", func(t *testing.T) {
		require.NoError(t, r.db.Model(&model.Station{}).
			Where("code = ?", "FS-002").
			Update("available_units", 0).Error)

		got, err := r.NearbyStations(ctx, model.ServiceFire, testLat, testLon, 15)
		require.NoError(t, err)
		for _, s := range got {
			assert.NotEqual(t, "FS-002", s.Code)
			assert.Greater(t, s.AvailableUnits, 0)
		}
	})

	t.Run("police stations sorted by distance", func(t *testing.T) {
		got, err := r.NearbyStations(ctx, model.ServicePolice, testLat, testLon, 15)
		require.NoError(t, err)
		require.NotEmpty(t, got)
		for i := 1; i < len(got); i++ {
			assert.LessOrEqual(t, got[i-1].DistanceKm, got[i].DistanceKm)
		}
		assert.Equal(t, "PS-002", got[0].Code)
	})
}

func TestCases(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	c, err := r.CreateCase(ctx, "extortion", testLat, testLon, "threatening phone calls")
	require.NoError(t, err)
	assert.Regexp(t, `^CASE-\d{12}-[A-Z0-9]{4}$`, c.CaseNumber)
	assert.Equal(t, model.CaseOpen, c.Status)

	t.Run("status update appends notes", func(t *testing.T) {
		got, err := r.UpdateCaseStatus(ctx, c.CaseNumber, model.CaseInvestigating, "assigned to cyber cell")
		require.NoError(t, err)
		assert.Equal(t, model.CaseInvestigating, got.Status)
		assert.Equal(t, "threatening phone calls | assigned to cyber cell", got.Description)
	})

	t.Run("invalid status rejected", func(t *testing.T) {
		_, err := r.UpdateCaseStatus(ctx, c.CaseNumber, "archived", "")
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("unknown case", func(t *testing.T) {
		_, err := r.UpdateCaseStatus(ctx, "CASE-000000000000-ZZZZ", model.CaseClosed, "")
		assert.ErrorIs(t, err, ErrCaseNotFound)
	})
}
