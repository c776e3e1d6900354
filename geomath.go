package walkcover

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

const (
	earthRadius = 6370986.884258304 // meters
	pi180       = math.Pi / 180.0
	pi180Rev    = 180.0 / math.Pi
)

// degreesToRadians deg = r * pi / 180
func degreesToRadians(d float64) float64 {
	return d * pi180
}

// radiansTodegrees r = deg  * 180 / pi
func radiansTodegrees(d float64) float64 {
	return d * pi180Rev
}

// greatCircleDistance returns distance between two geo-points (meters)
func greatCircleDistance(p, q orb.Point) float64 {
	lat1 := degreesToRadians(p.Lat())
	lon1 := degreesToRadians(p.Lon())
	lat2 := degreesToRadians(q.Lat())
	lon2 := degreesToRadians(q.Lon())
	diffLat := lat2 - lat1
	diffLon := lon2 - lon1
	a := math.Pow(math.Sin(diffLat/2), 2) + math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(diffLon/2), 2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return c * earthRadius
}

// getSphericalLength returns length for given line (meters)
func getSphericalLength(line orb.LineString) float64 {
	totalLength := 0.0
	if len(line) < 2 {
		return totalLength
	}
	for i := 1; i < len(line); i++ {
		totalLength += greatCircleDistance(line[i-1], line[i])
	}
	return totalLength
}

// planarFrame is an equirectangular projection centered at some origin.
// Good enough for distances of a few hundred meters, which is all the matcher ever compares.
type planarFrame struct {
	lon0   float64
	lat0   float64
	cosLat float64
}

func newPlanarFrame(origin orb.Point) planarFrame {
	return planarFrame{
		lon0:   origin.Lon(),
		lat0:   origin.Lat(),
		cosLat: math.Cos(degreesToRadians(origin.Lat())),
	}
}

// project returns X/Y offsets (meters) of the point from the frame origin
func (f planarFrame) project(pt orb.Point) [2]float64 {
	return [2]float64{
		degreesToRadians(pt.Lon()-f.lon0) * earthRadius * f.cosLat,
		degreesToRadians(pt.Lat()-f.lat0) * earthRadius,
	}
}

// pointSegmentDistance returns distance from p to segment [a, b] (Euclidean space)
func pointSegmentDistance(p, a, b [2]float64) float64 {
	dx := b[0] - a[0]
	dy := b[1] - a[1]
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(p[0]-a[0], p[1]-a[1])
	}
	t := ((p[0]-a[0])*dx + (p[1]-a[1])*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return math.Hypot(p[0]-(a[0]+t*dx), p[1]-(a[1]+t*dy))
}

// cross returns z-component of (b - a) x (c - a)
func cross(a, b, c [2]float64) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}

// segmentsIntersect checks if segments [p1, p2] and [p3, p4] share at least one point (Euclidean space)
func segmentsIntersect(p1, p2, p3, p4 [2]float64) bool {
	d1 := cross(p3, p4, p1)
	d2 := cross(p3, p4, p2)
	d3 := cross(p1, p2, p3)
	d4 := cross(p1, p2, p4)
	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) && ((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	// Collinear and touching cases are caught by the endpoint distances being zero
	return false
}

// segmentSegmentDistance returns minimum distance between segments [p1, p2] and [p3, p4] (Euclidean space)
func segmentSegmentDistance(p1, p2, p3, p4 [2]float64) float64 {
	if segmentsIntersect(p1, p2, p3, p4) {
		return 0
	}
	return math.Min(
		math.Min(pointSegmentDistance(p1, p3, p4), pointSegmentDistance(p2, p3, p4)),
		math.Min(pointSegmentDistance(p3, p1, p2), pointSegmentDistance(p4, p1, p2)),
	)
}

// pathLineDistance returns minimum distance (meters) between the path [a, b] and the polyline,
// minimized over every sub-edge of the polyline
func pathLineDistance(a, b orb.Point, line orb.LineString) float64 {
	if len(line) == 0 {
		return math.Inf(1)
	}
	frame := newPlanarFrame(a)
	pa := frame.project(a)
	pb := frame.project(b)
	if len(line) == 1 {
		return pointSegmentDistance(frame.project(line[0]), pa, pb)
	}
	best := math.Inf(1)
	prev := frame.project(line[0])
	for i := 1; i < len(line); i++ {
		cur := frame.project(line[i])
		d := segmentSegmentDistance(pa, pb, prev, cur)
		if d < best {
			best = d
			if best == 0 {
				return 0
			}
		}
		prev = cur
	}
	return best
}

// bearingFrom returns initial bearing (degrees, [0, 360)) of the polyline as it leaves its first point
func bearingFrom(line orb.LineString) float64 {
	if len(line) < 2 {
		return 0
	}
	// Skip duplicated vertices which carry no direction
	for i := 1; i < len(line); i++ {
		if line[i] != line[0] {
			return math.Mod(geo.Bearing(line[0], line[i])+360, 360)
		}
	}
	return 0
}

// angleBetweenBearings returns the unsigned angle between two bearings folded into [0, 180]
func angleBetweenBearings(b1, b2 float64) float64 {
	angle := math.Abs(math.Mod(b2-b1, 360))
	if angle > 180 {
		angle = 360 - angle
	}
	return angle
}

// reverseLine reverses order of points in given line. Returns new slice
func reverseLine(pts orb.LineString) orb.LineString {
	inputLen := len(pts)
	output := make(orb.LineString, inputLen)
	for i, n := range pts {
		j := inputLen - i - 1
		output[j] = n
	}
	return output
}
