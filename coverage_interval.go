package walkcover

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
)

// CoverageInterval is a part of street geometry given as fractions of its length: 0 <= From <= To <= 1
type CoverageInterval struct {
	From float64 `json:"from"`
	To   float64 `json:"to"`
}

const (
	intervalSearchSteps = 60
	// intervalEpsilon absorbs rounding between distance computations
	intervalEpsilon = 1e-9
)

// coveredIntervals returns parts of the line lying within radius (meters) of the path [a, b]
func coveredIntervals(a, b orb.Point, line orb.LineString, radius float64) []CoverageInterval {
	if len(line) < 2 {
		return nil
	}
	radius += intervalEpsilon
	frame := newPlanarFrame(a)
	pa := frame.project(a)
	pb := frame.project(b)
	pts := make([][2]float64, len(line))
	for i := range line {
		pts[i] = frame.project(line[i])
	}
	lengths := make([]float64, len(pts)-1)
	total := 0.0
	for i := 1; i < len(pts); i++ {
		lengths[i-1] = math.Hypot(pts[i][0]-pts[i-1][0], pts[i][1]-pts[i-1][1])
		total += lengths[i-1]
	}
	if total == 0 {
		if pointSegmentDistance(pts[0], pa, pb) <= radius {
			return []CoverageInterval{{From: 0, To: 1}}
		}
		return nil
	}

	intervals := []CoverageInterval{}
	offset := 0.0
	for i := 1; i < len(pts); i++ {
		length := lengths[i-1]
		if from, to, ok := withinRadius(pts[i-1], pts[i], pa, pb, radius); ok {
			intervals = append(intervals, CoverageInterval{
				From: (offset + from*length) / total,
				To:   math.Min(1, (offset+to*length)/total),
			})
		}
		offset += length
	}
	return intervals
}

// withinRadius returns parameter range of [p, q] lying within radius of the segment [a, b].
// Distance to a segment is convex along a straight line, so the range is a single interval.
func withinRadius(p, q, a, b [2]float64, radius float64) (float64, float64, bool) {
	at := func(t float64) float64 {
		return pointSegmentDistance([2]float64{p[0] + t*(q[0]-p[0]), p[1] + t*(q[1]-p[1])}, a, b)
	}
	lo, hi := 0.0, 1.0
	for i := 0; i < intervalSearchSteps; i++ {
		m1 := lo + (hi-lo)/3
		m2 := hi - (hi-lo)/3
		if at(m1) <= at(m2) {
			hi = m2
		} else {
			lo = m1
		}
	}
	nearest := (lo + hi) / 2
	if at(nearest) > radius {
		return 0, 0, false
	}
	from := 0.0
	if at(0) > radius {
		outside, inside := 0.0, nearest
		for i := 0; i < intervalSearchSteps; i++ {
			m := (outside + inside) / 2
			if at(m) <= radius {
				inside = m
			} else {
				outside = m
			}
		}
		from = inside
	}
	to := 1.0
	if at(1) > radius {
		inside, outside := nearest, 1.0
		for i := 0; i < intervalSearchSteps; i++ {
			m := (outside + inside) / 2
			if at(m) <= radius {
				inside = m
			} else {
				outside = m
			}
		}
		to = inside
	}
	return from, to, true
}

// mergeIntervals returns sorted disjoint union of the intervals. Input is not modified.
func mergeIntervals(intervals []CoverageInterval) []CoverageInterval {
	if len(intervals) == 0 {
		return nil
	}
	sorted := make([]CoverageInterval, len(intervals))
	copy(sorted, intervals)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].From == sorted[j].From {
			return sorted[i].To < sorted[j].To
		}
		return sorted[i].From < sorted[j].From
	})
	merged := []CoverageInterval{sorted[0]}
	for _, interval := range sorted[1:] {
		last := &merged[len(merged)-1]
		if interval.From <= last.To {
			last.To = math.Max(last.To, interval.To)
			continue
		}
		merged = append(merged, interval)
	}
	return merged
}

// unionIntervals merges two interval lists into a new one
func unionIntervals(a, b []CoverageInterval) []CoverageInterval {
	all := make([]CoverageInterval, 0, len(a)+len(b))
	all = append(all, a...)
	all = append(all, b...)
	return mergeIntervals(all)
}

// intervalsFraction returns total length of disjoint intervals, capped at 1
func intervalsFraction(intervals []CoverageInterval) float64 {
	sum := 0.0
	for _, interval := range intervals {
		sum += interval.To - interval.From
	}
	return math.Min(1, sum)
}
