package walkcover

import (
	"sort"

	"github.com/paulmach/orb"
)

// StreetID is identifier of street segment inside a network
type StreetID int64

// StreetSegment is a part of a street between two intersections (or way ends)
type StreetSegment struct {
	ID         StreetID
	OSMWayID   int64
	Name       string
	Highway    string
	Geom       orb.LineString
	Length     float64 // meters
	SourceNode int64
	TargetNode int64

	// Covered never goes back to false within a run
	Covered      bool
	Contributors map[string]struct{}
	// CoveredParts are disjoint parts of the geometry lying within the buffer of some walk
	CoveredParts []CoverageInterval
}

// NewStreetSegment creates segment and evaluates its length
func NewStreetSegment(id StreetID, geom orb.LineString) *StreetSegment {
	return &StreetSegment{
		ID:           id,
		Geom:         geom,
		Length:       getSphericalLength(geom),
		Contributors: make(map[string]struct{}),
	}
}

// markCovered records walk contribution. Coverage is monotone: nothing here can reset it.
func (street *StreetSegment) markCovered(walkID string) {
	street.Covered = true
	if street.Contributors == nil {
		street.Contributors = make(map[string]struct{})
	}
	street.Contributors[walkID] = struct{}{}
}

// addCoveredParts unions parts into covered ones
func (street *StreetSegment) addCoveredParts(parts []CoverageInterval) {
	if len(parts) == 0 {
		return
	}
	street.CoveredParts = unionIntervals(street.CoveredParts, parts)
}

// CoveragePercent returns share of the street length walked along, 0..100
func (street *StreetSegment) CoveragePercent() float64 {
	return intervalsFraction(street.CoveredParts) * 100
}

// ContributorIDs returns sorted identifiers of walks covering the segment
func (street *StreetSegment) ContributorIDs() []string {
	ids := make([]string, 0, len(street.Contributors))
	for id := range street.Contributors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
