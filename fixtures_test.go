package walkcover

import (
	"math"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/require"
)

// testOrigin is a point in central Moscow
var testOrigin = orb.Point{37.6173, 55.7558}

var testStart = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

const metersPerDegreeLat = earthRadius * math.Pi / 180.0

// offset moves the point by given meters to the east and to the north
func offset(pt orb.Point, east, north float64) orb.Point {
	return orb.Point{
		pt.Lon() + east/(metersPerDegreeLat*math.Cos(degreesToRadians(pt.Lat()))),
		pt.Lat() + north/metersPerDegreeLat,
	}
}

// straightPoints returns n fixes going east from the start, one every step, at given speed
func straightPoints(start orb.Point, at time.Time, n int, step time.Duration, speed float64) []GpsPoint {
	points := make([]GpsPoint, n)
	for i := 0; i < n; i++ {
		pt := offset(start, speed*step.Seconds()*float64(i), 0)
		points[i] = GpsPoint{Lat: pt.Lat(), Lon: pt.Lon(), Time: at.Add(time.Duration(i) * step)}
	}
	return points
}

// newWalk builds walk segment over the points the same way classifier does
func newWalk(trackID string, points []GpsPoint) WalkSegment {
	stats := ComputeSegmentStats(points, 0)
	return WalkSegment{
		ID:        walkID(trackID, 0),
		TrackID:   trackID,
		Points:    points,
		Distance:  stats.Distance,
		Duration:  stats.Duration,
		AvgSpeed:  stats.AvgSpeed,
		Sinuosity: stats.Sinuosity,
		Start:     points[0].Time,
		End:       points[len(points)-1].Time,
	}
}

// parallelStreets returns network of two 100 meters long streets going east: the first starts at the origin,
// the second one is 50 meters to the north
func parallelStreets(t *testing.T) *StreetNetwork {
	t.Helper()
	first := NewStreetSegment(1, orb.LineString{testOrigin, offset(testOrigin, 100, 0)})
	first.Highway = "residential"
	first.SourceNode, first.TargetNode = 1, 2
	second := NewStreetSegment(2, orb.LineString{offset(testOrigin, 0, 50), offset(testOrigin, 100, 50)})
	second.Highway = "residential"
	second.SourceNode, second.TargetNode = 3, 4
	net, err := NewStreetNetwork("test_city", []*StreetSegment{first, second})
	require.NoError(t, err)
	return net
}

// gridStreets returns rows x cols grid of blocks with given spacing (meters) split at every intersection.
// Node identifiers are row*(cols+1)+col+1.
func gridStreets(t *testing.T, rows, cols int, spacing float64) *StreetNetwork {
	t.Helper()
	node := func(r, c int) (int64, orb.Point) {
		return int64(r*(cols+1) + c + 1), offset(testOrigin, float64(c)*spacing, float64(r)*spacing)
	}
	segments := []*StreetSegment{}
	nextID := StreetID(1)
	add := func(r1, c1, r2, c2 int) {
		src, a := node(r1, c1)
		dst, b := node(r2, c2)
		segment := NewStreetSegment(nextID, orb.LineString{a, b})
		segment.SourceNode = src
		segment.TargetNode = dst
		segment.Highway = "residential"
		segments = append(segments, segment)
		nextID++
	}
	for r := 0; r <= rows; r++ {
		for c := 0; c <= cols; c++ {
			if c < cols {
				add(r, c, r, c+1)
			}
			if r < rows {
				add(r, c, r+1, c)
			}
		}
	}
	net, err := NewStreetNetwork("grid_city", segments)
	require.NoError(t, err)
	return net
}
