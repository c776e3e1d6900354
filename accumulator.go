package walkcover

import (
	"sort"
)

// Statistics summarizes coverage of a street network
type Statistics struct {
	TotalStreets   int     `json:"total_streets"`
	CoveredStreets int     `json:"covered_streets"`
	TotalLength    float64 `json:"total_length_meters"`
	CoveredLength  float64 `json:"covered_length_meters"`
	// WalkedLength is length of covered streets actually lying within the buffer of walks
	WalkedLength float64 `json:"walked_length_meters"`
	// CoverageRatio is covered length divided by total length
	CoverageRatio float64 `json:"coverage_ratio"`
	// WalkContributions is number of streets credited to every walk
	WalkContributions map[string]int `json:"walk_contributions"`
	NeverCovered      []StreetID     `json:"never_covered"`
	// ByClass breaks coverage down by street class (see HighwayType.Class)
	ByClass map[string]ClassCoverage `json:"by_class"`
}

// ClassCoverage is coverage of streets of a single class
type ClassCoverage struct {
	Streets        int     `json:"streets"`
	CoveredStreets int     `json:"covered_streets"`
	Length         float64 `json:"length_meters"`
	CoveredLength  float64 `json:"covered_length_meters"`
}

// CoveragePercent returns coverage ratio in percents
func (stats Statistics) CoveragePercent() float64 {
	return stats.CoverageRatio * 100
}

// CoverageAccumulator merges match results. Union is commutative, so order of Add calls does not matter.
type CoverageAccumulator struct {
	contributors map[StreetID]map[string]struct{}
	parts        map[StreetID][]CoverageInterval
	walks        map[string]struct{}
}

// NewCoverageAccumulator creates empty accumulator
func NewCoverageAccumulator() *CoverageAccumulator {
	return &CoverageAccumulator{
		contributors: make(map[StreetID]map[string]struct{}),
		parts:        make(map[StreetID][]CoverageInterval),
		walks:        make(map[string]struct{}),
	}
}

// Add merges results into accumulated coverage
func (acc *CoverageAccumulator) Add(results ...MatchResult) {
	for _, result := range results {
		acc.walks[result.WalkID] = struct{}{}
		for _, id := range result.Streets {
			walks, ok := acc.contributors[id]
			if !ok {
				walks = make(map[string]struct{})
				acc.contributors[id] = walks
			}
			walks[result.WalkID] = struct{}{}
			if parts := result.Parts[id]; len(parts) > 0 {
				acc.parts[id] = unionIntervals(acc.parts[id], parts)
			}
		}
	}
}

// Covered returns sorted identifiers of streets covered so far
func (acc *CoverageAccumulator) Covered() []StreetID {
	ids := make([]StreetID, 0, len(acc.contributors))
	for id := range acc.contributors {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Apply marks accumulated coverage on the network and returns statistics.
// It only ever sets streets as covered, so applying twice changes nothing.
func (acc *CoverageAccumulator) Apply(net *StreetNetwork) Statistics {
	for id, walks := range acc.contributors {
		street, ok := net.Segment(id)
		if !ok {
			continue
		}
		for walkID := range walks {
			street.markCovered(walkID)
		}
		street.addCoveredParts(acc.parts[id])
	}

	stats := Statistics{
		WalkContributions: make(map[string]int, len(acc.walks)),
		NeverCovered:      []StreetID{},
		ByClass:           make(map[string]ClassCoverage),
	}
	for walkID := range acc.walks {
		stats.WalkContributions[walkID] = 0
	}
	for _, street := range net.Segments() {
		class := getHighwayType(street.Highway).Class().String()
		byClass := stats.ByClass[class]
		byClass.Streets++
		byClass.Length += street.Length
		stats.TotalStreets++
		stats.TotalLength += street.Length
		if !street.Covered {
			stats.ByClass[class] = byClass
			stats.NeverCovered = append(stats.NeverCovered, street.ID)
			continue
		}
		byClass.CoveredStreets++
		byClass.CoveredLength += street.Length
		stats.ByClass[class] = byClass
		stats.CoveredStreets++
		stats.CoveredLength += street.Length
		stats.WalkedLength += street.Length * intervalsFraction(street.CoveredParts)
		for walkID := range street.Contributors {
			stats.WalkContributions[walkID]++
		}
	}
	if stats.TotalLength > 0 {
		stats.CoverageRatio = stats.CoveredLength / stats.TotalLength
	}
	return stats
}
