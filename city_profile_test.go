package walkcover

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeriveBufferAnchors(t *testing.T) {
	tests := []struct {
		density float64
		buffer  float64
	}{
		{0.0001, 12},
		{0.001, 12},
		{0.0015, 10},
		{0.002, 8},
		{0.0035, 6.5},
		{0.005, 5},
		{0.008, 3},
		{0.05, 3},
	}
	for _, tt := range tests {
		params := DeriveParameters(Characteristics{StreetDensity: tt.density})
		assert.InDelta(t, tt.buffer, params.BufferDistance, 1e-9, "density %f", tt.density)
	}
}

func TestDeriveBufferMonotone(t *testing.T) {
	prev := DeriveParameters(Characteristics{StreetDensity: 0}).BufferDistance
	for density := 0.0; density <= 0.012; density += 0.0001 {
		buffer := DeriveParameters(Characteristics{StreetDensity: density}).BufferDistance
		if buffer > prev+1e-12 {
			t.Errorf("Buffer must not grow with density: %f at %f after %f", buffer, density, prev)
		}
		prev = buffer
	}
}

func TestDeriveGridParameters(t *testing.T) {
	organic := DeriveParameters(Characteristics{GridScore: 0})
	grid := DeriveParameters(Characteristics{GridScore: 1})
	assert.Equal(t, 3.0, organic.MaxWalkingSpeed)
	assert.Equal(t, 5.0, organic.SinuosityThreshold)
	assert.Equal(t, 3.5, grid.MaxWalkingSpeed)
	assert.Equal(t, 3.5, grid.SinuosityThreshold)
	assert.Greater(t, grid.MinWalkingSpeed, organic.MinWalkingSpeed)

	half := DeriveParameters(Characteristics{GridScore: 0.5})
	assert.InDelta(t, 3.25, half.MaxWalkingSpeed, 1e-9)
	assert.InDelta(t, 4.25, half.SinuosityThreshold, 1e-9)

	assert.Equal(t, grid, DeriveParameters(Characteristics{GridScore: 7}), "grid score is clamped")
	assert.Equal(t, organic, DeriveParameters(Characteristics{GridScore: -1}))
}

func TestDefaultProfile(t *testing.T) {
	profile := DefaultProfile("nowhere", testStart)
	assert.True(t, profile.Fallback)
	assert.Equal(t, "nowhere", profile.CityKey)
	assert.Equal(t, DefaultParameters(), profile.Parameters())
	assert.True(t, profile.ComputedAt.Equal(testStart))
}

func TestProfileExpired(t *testing.T) {
	profile := newCityProfile("oslo", Characteristics{StreetDensity: 0.003, GridScore: 0.2}, testStart)
	assert.False(t, profile.Fallback)
	assert.False(t, profile.Expired(testStart.Add(29*24*time.Hour), DefaultProfileTTL))
	assert.True(t, profile.Expired(testStart.Add(31*24*time.Hour), DefaultProfileTTL))
	assert.False(t, profile.Expired(testStart.Add(10*365*24*time.Hour), 0), "non-positive TTL never expires")
}
