package walkcover

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// walkNamespace seeds name-based walk identifiers so that re-runs over the same input produce the same ids
var walkNamespace = uuid.MustParse("4a1c6f0e-51d7-4c8e-9a53-0f3f4c2b7d19")

// WalkSegment is a contiguous part of a track which has been classified as walking.
// Never modified after construction.
type WalkSegment struct {
	ID        string
	TrackID   string
	Ordinal   int
	Points    []GpsPoint
	Distance  float64       // meters
	Duration  time.Duration //
	AvgSpeed  float64       // meters per second
	Sinuosity float64
	Start     time.Time
	End       time.Time
}

// Line returns geometry of the walk
func (walk *WalkSegment) Line() orb.LineString {
	return pointsToLine(walk.Points)
}

// Bound returns bounding box of the walk
func (walk *WalkSegment) Bound() orb.Bound {
	return walk.Line().Bound()
}

// walkID returns deterministic identifier of the segment
func walkID(trackID string, ordinal int) string {
	return uuid.NewSHA1(walkNamespace, []byte(fmt.Sprintf("%s#%d", trackID, ordinal))).String()
}

// SegmentStats holds kinematic characteristics of a sequence of fixes
type SegmentStats struct {
	Distance         float64
	StraightDistance float64
	Duration         time.Duration
	AvgSpeed         float64
	Sinuosity        float64
}

// ComputeSegmentStats evaluates distance, duration, average speed and sinuosity for given fixes.
// Sinuosity is reported as 1 when the endpoints (almost) coincide: the caller decides what to do with such segments.
func ComputeSegmentStats(points []GpsPoint, stationaryDistance float64) SegmentStats {
	stats := SegmentStats{Sinuosity: 1}
	if len(points) < 2 {
		return stats
	}
	for i := 1; i < len(points); i++ {
		stats.Distance += greatCircleDistance(points[i-1].Point(), points[i].Point())
	}
	stats.StraightDistance = greatCircleDistance(points[0].Point(), points[len(points)-1].Point())
	stats.Duration = points[len(points)-1].Time.Sub(points[0].Time)
	if stats.Duration > 0 {
		stats.AvgSpeed = stats.Distance / stats.Duration.Seconds()
	}
	if stats.StraightDistance > stationaryDistance && stats.StraightDistance > 0 {
		stats.Sinuosity = stats.Distance / stats.StraightDistance
	}
	return stats
}
