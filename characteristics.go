package walkcover

import (
	"math"

	"github.com/paulmach/orb"
)

const (
	// DefaultGridAngleTolerance is max deviation (degrees) from the right angle for an intersection to count as orthogonal
	DefaultGridAngleTolerance = 10.0
	// minIntersectionDegree is number of incident segments which makes a node an intersection
	minIntersectionDegree = 3
)

// AnalyzeCharacteristics measures street density and grid score of the network
func AnalyzeCharacteristics(net *StreetNetwork, gridAngleTolerance float64) Characteristics {
	chars := Characteristics{
		TotalStreetLength: net.TotalLength(),
		Bound:             net.Bound,
	}
	chars.Area = boundArea(net.Bound)
	if chars.Area > 0 {
		chars.StreetDensity = chars.TotalStreetLength / chars.Area
	}
	chars.GridScore, chars.Intersections = gridScore(net, gridAngleTolerance)
	return chars
}

// endpointKey identifies street network node. Segments without node identifiers are joined by endpoint coordinates.
type endpointKey struct {
	node int64
	pt   orb.Point
}

func newEndpointKey(node int64, pt orb.Point) endpointKey {
	if node != 0 {
		return endpointKey{node: node}
	}
	return endpointKey{pt: pt}
}

// gridScore returns fraction of intersections having a pair of incident segments close to perpendicular
func gridScore(net *StreetNetwork, tolerance float64) (float64, int) {
	bearings := make(map[endpointKey][]float64)
	for _, segment := range net.segments {
		if len(segment.Geom) < 2 {
			continue
		}
		source := newEndpointKey(segment.SourceNode, segment.Geom[0])
		target := newEndpointKey(segment.TargetNode, segment.Geom[len(segment.Geom)-1])
		bearings[source] = append(bearings[source], bearingFrom(segment.Geom))
		bearings[target] = append(bearings[target], bearingFrom(reverseLine(segment.Geom)))
	}
	intersections := 0
	orthogonal := 0
	for _, nodeBearings := range bearings {
		if len(nodeBearings) < minIntersectionDegree {
			continue
		}
		intersections++
		if nearestToRightAngle(nodeBearings) <= tolerance {
			orthogonal++
		}
	}
	if intersections == 0 {
		return 0, 0
	}
	return float64(orthogonal) / float64(intersections), intersections
}

// nearestToRightAngle returns smallest deviation from 90 degrees among pairwise angles of given bearings
func nearestToRightAngle(bearings []float64) float64 {
	best := math.Inf(1)
	for i := 0; i < len(bearings); i++ {
		for j := i + 1; j < len(bearings); j++ {
			deviation := math.Abs(angleBetweenBearings(bearings[i], bearings[j]) - 90)
			if deviation < best {
				best = deviation
			}
		}
	}
	return best
}
