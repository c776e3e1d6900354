package walkcover

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// padBound expands the bound by given distance (meters) on every side
func padBound(b orb.Bound, meters float64) orb.Bound {
	if meters <= 0 {
		return b
	}
	return geo.BoundPad(b, meters)
}

// boundArea returns geodesic area of the bound (square meters)
func boundArea(b orb.Bound) float64 {
	if b.IsEmpty() {
		return 0
	}
	return geo.Area(b.ToPolygon())
}

// pairBound returns bound of the two-point path [a, b]
func pairBound(a, b orb.Point) orb.Bound {
	return orb.Bound{Min: a, Max: a}.Extend(b)
}

// boundCorners converts bound to the min/max pair layout used by the R-tree
func boundCorners(b orb.Bound) ([2]float64, [2]float64) {
	return [2]float64{b.Min.Lon(), b.Min.Lat()}, [2]float64{b.Max.Lon(), b.Max.Lat()}
}
