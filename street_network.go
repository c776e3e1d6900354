package walkcover

import (
	"sort"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"github.com/tidwall/rtree"
)

// StreetNetwork is a set of street segments of a city with a spatial index over their bounds.
// It is built once and only read while matching; coverage flags are changed by CoverageAccumulator only.
type StreetNetwork struct {
	City  string
	Bound orb.Bound

	segments map[StreetID]*StreetSegment
	index    rtree.RTreeG[StreetID]
}

// NewStreetNetwork builds network and its spatial index
func NewStreetNetwork(city string, segments []*StreetSegment) (*StreetNetwork, error) {
	net := &StreetNetwork{
		City:     city,
		segments: make(map[StreetID]*StreetSegment, len(segments)),
	}
	first := true
	for _, segment := range segments {
		if len(segment.Geom) < 2 {
			continue
		}
		if _, ok := net.segments[segment.ID]; ok {
			return nil, errors.Errorf("Duplicated street segment ID: %d", segment.ID)
		}
		if segment.Contributors == nil {
			segment.Contributors = make(map[string]struct{})
		}
		if segment.Length == 0 {
			segment.Length = getSphericalLength(segment.Geom)
		}
		net.segments[segment.ID] = segment
		bound := segment.Geom.Bound()
		min, max := boundCorners(bound)
		net.index.Insert(min, max, segment.ID)
		if first {
			net.Bound = bound
			first = false
		} else {
			net.Bound = net.Bound.Union(bound)
		}
	}
	return net, nil
}

// Len returns number of street segments
func (net *StreetNetwork) Len() int {
	return len(net.segments)
}

// Segment returns street segment by its identifier
func (net *StreetNetwork) Segment(id StreetID) (*StreetSegment, bool) {
	s, ok := net.segments[id]
	return s, ok
}

// IDs returns sorted identifiers of every segment
func (net *StreetNetwork) IDs() []StreetID {
	ids := make([]StreetID, 0, len(net.segments))
	for id := range net.segments {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Segments returns every segment ordered by identifier
func (net *StreetNetwork) Segments() []*StreetSegment {
	ids := net.IDs()
	out := make([]*StreetSegment, len(ids))
	for i, id := range ids {
		out[i] = net.segments[id]
	}
	return out
}

// Search returns identifiers of segments whose bounding box intersects given bound
func (net *StreetNetwork) Search(bound orb.Bound) []StreetID {
	min, max := boundCorners(bound)
	found := []StreetID{}
	net.index.Search(min, max, func(_, _ [2]float64, id StreetID) bool {
		found = append(found, id)
		return true
	})
	return found
}

// TotalLength returns summary length of all segments (meters)
func (net *StreetNetwork) TotalLength() float64 {
	total := 0.0
	for _, s := range net.segments {
		total += s.Length
	}
	return total
}
