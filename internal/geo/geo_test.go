package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKm(t *testing.T) {
	t.Run("zero at identical points", func(t *testing.T) {
		assert.Zero(t, DistanceKm(12.9716, 77.5946, 12.9716, 77.5946))
	})

	t.Run("symmetric", func(t *testing.T) {
		d1 := DistanceKm(12.9352, 77.6245, 12.9698, 77.7500)
		d2 := DistanceKm(12.9698, 77.7500, 12.9352, 77.6245)
		assert.InDelta(t, d1, d2, 1e-9)
	})

	t.Run("known city pair", func(t *testing.T) {
		// Koramangala to Whitefield is roughly 14 km as the crow flies.
		d := DistanceKm(12.9352, 77.6245, 12.9698, 77.7500)
		assert.InDelta(t, 14.1, d, 0.5)
	})
}

func TestETAMinutes(t *testing.T) {
	tests := []struct {
		name     string
		distance float64
		speed    float64
		want     int
	}{
		{"truncates fractional minutes", 10, SpeedAmbulance, 15},
		{"floors at one minute", 0.1, SpeedFireTruck, 1},
		{"zero distance still one minute", 0, SpeedPatrol, 1},
		{"fire truck speed", 25, SpeedFireTruck, 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ETAMinutes(tt.distance, tt.speed))
		})
	}
}
