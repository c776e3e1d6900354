package walkcover

import (
	"time"
)

// ClassifierParams are thresholds used to decide whether a candidate segment is a walk.
// Speed and sinuosity limits come from a CityProfile, the rest is run configuration.
type ClassifierParams struct {
	MaxWalkingSpeed    float64       // m/s, inclusive upper bound
	MinWalkingSpeed    float64       // m/s, inclusive lower bound
	SinuosityThreshold float64       // inclusive upper bound
	GapThreshold       time.Duration // time gap which splits a track
	GPSErrorSpeed      float64       // m/s, instantaneous speed treated as positional jump
	MinDistance        float64       // meters
	MinDuration        time.Duration //
	StationaryDistance float64       // meters, endpoints closer than this make segment stationary noise
}

// DefaultClassifierParams returns conservative thresholds (matching the default city profile)
func DefaultClassifierParams() ClassifierParams {
	return ClassifierParams{
		MaxWalkingSpeed:    3.0,
		MinWalkingSpeed:    0.1,
		SinuosityThreshold: 4.0,
		GapThreshold:       2 * time.Minute,
		GPSErrorSpeed:      50.0,
		MinDistance:        5.0,
		MinDuration:        5 * time.Second,
		StationaryDistance: 2.0,
	}
}

// Classification is the outcome of evaluating one candidate segment
type Classification struct {
	Verdict Verdict
	Reason  DiscardReason
	Stats   SegmentStats
	// Walk is filled for VERDICT_WALK only
	Walk *WalkSegment
}

// Classify splits the track into candidate segments and returns those classified as walks (source order is kept).
//
// Empty and single-point tracks produce no segments. Track without any valid timestamp returns *InvalidTrackError.
func Classify(track Track, params ClassifierParams) ([]WalkSegment, error) {
	outcomes, err := ClassifyTrack(track, params)
	if err != nil {
		return nil, err
	}
	walks := make([]WalkSegment, 0, len(outcomes))
	for _, outcome := range outcomes {
		if outcome.Verdict == VERDICT_WALK {
			walks = append(walks, *outcome.Walk)
		}
	}
	return walks, nil
}

// ClassifyTrack returns outcome for every candidate segment of the track, discarded ones included
func ClassifyTrack(track Track, params ClassifierParams) ([]Classification, error) {
	if len(track.Points) < 2 {
		return nil, nil
	}
	candidates, err := splitCandidates(track, params)
	if err != nil {
		return nil, err
	}
	outcomes := make([]Classification, 0, len(candidates))
	for ordinal, candidate := range candidates {
		outcomes = append(outcomes, Evaluate(track.ID, ordinal, candidate, params))
	}
	return outcomes, nil
}

// Evaluate classifies single candidate segment. It is a pure function of its input.
func Evaluate(trackID string, ordinal int, points []GpsPoint, params ClassifierParams) Classification {
	stats := ComputeSegmentStats(points, params.StationaryDistance)
	result := Classification{
		Verdict: VERDICT_DISCARDED,
		Stats:   stats,
	}
	switch {
	case len(points) < 2 || stats.StraightDistance <= params.StationaryDistance:
		result.Reason = DISCARD_STATIONARY
	case stats.Distance < params.MinDistance || stats.Duration < params.MinDuration || stats.Duration <= 0:
		result.Reason = DISCARD_TOO_SHORT
	case stats.AvgSpeed > params.MaxWalkingSpeed:
		result.Reason = DISCARD_TOO_FAST
	case stats.AvgSpeed < params.MinWalkingSpeed:
		result.Reason = DISCARD_TOO_SLOW
	case stats.Sinuosity > params.SinuosityThreshold:
		result.Reason = DISCARD_TOO_SINUOUS
	default:
		result.Verdict = VERDICT_WALK
		result.Reason = DISCARD_NONE
		pts := make([]GpsPoint, len(points))
		copy(pts, points)
		result.Walk = &WalkSegment{
			ID:        walkID(trackID, ordinal),
			TrackID:   trackID,
			Ordinal:   ordinal,
			Points:    pts,
			Distance:  stats.Distance,
			Duration:  stats.Duration,
			AvgSpeed:  stats.AvgSpeed,
			Sinuosity: stats.Sinuosity,
			Start:     pts[0].Time,
			End:       pts[len(pts)-1].Time,
		}
	}
	return result
}

// splitCandidates cuts the track wherever time gap is too big or instantaneous speed is impossible
func splitCandidates(track Track, params ClassifierParams) ([][]GpsPoint, error) {
	timed := make([]GpsPoint, 0, len(track.Points))
	for _, pt := range track.Points {
		if pt.HasTime() {
			timed = append(timed, pt)
		}
	}
	if len(timed) == 0 {
		return nil, &InvalidTrackError{TrackID: track.ID, Reason: "no valid timestamps"}
	}
	if len(timed) < 2 {
		return nil, nil
	}

	candidates := [][]GpsPoint{}
	current := []GpsPoint{timed[0]}
	flush := func() {
		if len(current) >= 2 {
			candidates = append(candidates, current)
		}
	}
	for i := 1; i < len(timed); i++ {
		prev := current[len(current)-1]
		pt := timed[i]
		dt := pt.Time.Sub(prev.Time)
		dist := greatCircleDistance(prev.Point(), pt.Point())
		if dt == 0 && dist == 0 {
			// Duplicated fix
			continue
		}
		if dt <= 0 || dt > params.GapThreshold {
			flush()
			current = []GpsPoint{pt}
			continue
		}
		if params.GPSErrorSpeed > 0 && dist/dt.Seconds() > params.GPSErrorSpeed {
			flush()
			current = []GpsPoint{pt}
			continue
		}
		current = append(current, pt)
	}
	flush()
	return candidates, nil
}
