package walkcover

import (
	"time"

	"github.com/paulmach/orb"
)

// Characteristics are measurable properties of a city's street network
type Characteristics struct {
	StreetDensity     float64 // meters of street per square meter
	GridScore         float64 // [0, 1]
	TotalStreetLength float64 // meters
	Area              float64 // square meters
	Intersections     int
	Bound             orb.Bound
}

// Parameters are the tuned values derived from Characteristics
type Parameters struct {
	BufferDistance     float64 // meters
	MaxWalkingSpeed    float64 // m/s
	MinWalkingSpeed    float64 // m/s
	SinuosityThreshold float64
}

// CityProfile is cached result of city analysis
type CityProfile struct {
	CityKey            string    `json:"city_key"`
	StreetDensity      float64   `json:"street_density"`
	GridScore          float64   `json:"grid_score"`
	TotalStreetLength  float64   `json:"total_street_length"`
	Area               float64   `json:"area"`
	Intersections      int       `json:"intersections"`
	Bound              orb.Bound `json:"bbox"`
	BufferDistance     float64   `json:"buffer_distance"`
	MaxWalkingSpeed    float64   `json:"max_walking_speed"`
	MinWalkingSpeed    float64   `json:"min_walking_speed"`
	SinuosityThreshold float64   `json:"sinuosity_threshold"`
	ComputedAt         time.Time `json:"computed_at"`
	// Fallback is set when the profile is the conservative default rather than a result of analysis
	Fallback bool `json:"fallback"`
}

// Parameters returns tuned values of the profile
func (profile *CityProfile) Parameters() Parameters {
	return Parameters{
		BufferDistance:     profile.BufferDistance,
		MaxWalkingSpeed:    profile.MaxWalkingSpeed,
		MinWalkingSpeed:    profile.MinWalkingSpeed,
		SinuosityThreshold: profile.SinuosityThreshold,
	}
}

// ClassifierParams overlays profile thresholds on top of base run configuration
func (profile *CityProfile) ClassifierParams(base ClassifierParams) ClassifierParams {
	base.MaxWalkingSpeed = profile.MaxWalkingSpeed
	base.MinWalkingSpeed = profile.MinWalkingSpeed
	base.SinuosityThreshold = profile.SinuosityThreshold
	return base
}

// Expired checks profile age against TTL. Non-positive TTL means entries never expire.
func (profile *CityProfile) Expired(now time.Time, ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	return now.Sub(profile.ComputedAt) > ttl
}

// DefaultParameters are used when the city can't be analyzed
func DefaultParameters() Parameters {
	return Parameters{
		BufferDistance:     8,
		MaxWalkingSpeed:    3.0,
		MinWalkingSpeed:    0.1,
		SinuosityThreshold: 4.0,
	}
}

// DefaultProfile returns conservative profile for the city
func DefaultProfile(cityKey string, now time.Time) *CityProfile {
	params := DefaultParameters()
	return &CityProfile{
		CityKey:            cityKey,
		BufferDistance:     params.BufferDistance,
		MaxWalkingSpeed:    params.MaxWalkingSpeed,
		MinWalkingSpeed:    params.MinWalkingSpeed,
		SinuosityThreshold: params.SinuosityThreshold,
		ComputedAt:         now,
		Fallback:           true,
	}
}

// newCityProfile combines characteristics and derived parameters
func newCityProfile(cityKey string, chars Characteristics, now time.Time) *CityProfile {
	params := DeriveParameters(chars)
	return &CityProfile{
		CityKey:            cityKey,
		StreetDensity:      chars.StreetDensity,
		GridScore:          chars.GridScore,
		TotalStreetLength:  chars.TotalStreetLength,
		Area:               chars.Area,
		Intersections:      chars.Intersections,
		Bound:              chars.Bound,
		BufferDistance:     params.BufferDistance,
		MaxWalkingSpeed:    params.MaxWalkingSpeed,
		MinWalkingSpeed:    params.MinWalkingSpeed,
		SinuosityThreshold: params.SinuosityThreshold,
		ComputedAt:         now,
	}
}

// densityAnchor is a point of buffer distance lookup table
type densityAnchor struct {
	density float64 // m/m²
	buffer  float64 // meters
}

// bufferByDensity must be sorted by density and non-increasing by buffer
var bufferByDensity = []densityAnchor{
	{0.001, 12}, // suburban
	{0.002, 8},  // moderate
	{0.005, 5},  // dense urban
	{0.008, 3},  // Manhattan-like
}

const (
	organicMaxWalkingSpeed = 3.0
	gridMaxWalkingSpeed    = 3.5
	organicMinWalkingSpeed = 0.1
	gridMinWalkingSpeed    = 0.2
	organicSinuosity       = 5.0
	gridSinuosity          = 3.5
)

// DeriveParameters maps network characteristics to tuned parameters.
//
// Buffer distance is piecewise-linear over bufferByDensity and clamped to its ends, so denser networks never get a wider
// buffer. Speed limits and sinuosity threshold are linear in grid score: grids allow slightly faster walking (fewer
// forced detours), organic layouts allow curvier paths.
func DeriveParameters(chars Characteristics) Parameters {
	grid := clamp01(chars.GridScore)
	return Parameters{
		BufferDistance:     interpolateBuffer(chars.StreetDensity),
		MaxWalkingSpeed:    lerp(organicMaxWalkingSpeed, gridMaxWalkingSpeed, grid),
		MinWalkingSpeed:    lerp(organicMinWalkingSpeed, gridMinWalkingSpeed, grid),
		SinuosityThreshold: lerp(organicSinuosity, gridSinuosity, grid),
	}
}

func interpolateBuffer(density float64) float64 {
	first := bufferByDensity[0]
	last := bufferByDensity[len(bufferByDensity)-1]
	if density <= first.density {
		return first.buffer
	}
	if density >= last.density {
		return last.buffer
	}
	for i := 1; i < len(bufferByDensity); i++ {
		lo := bufferByDensity[i-1]
		hi := bufferByDensity[i]
		if density <= hi.density {
			t := (density - lo.density) / (hi.density - lo.density)
			return lerp(lo.buffer, hi.buffer, t)
		}
	}
	return last.buffer
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
