package walkcover

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
)

func TestGreatCircleDistance(t *testing.T) {
	p1 := orb.Point{37.6417350769043, 55.751849391735284}
	p2 := orb.Point{37.668514251708984, 55.73261980350401}
	res := 2716.93096539 // meters
	gcd := greatCircleDistance(p1, p2)
	if Round(gcd, 0.5) != Round(res, 0.5) {
		t.Errorf("Great circle dist must be %f, but got %f", res, gcd)
	}
}

func Round(x, unit float64) float64 {
	if x > 0 {
		return float64(int64(x/unit+0.5)) * unit
	}
	return float64(int64(x/unit-0.5)) * unit
}

func TestSphericalLength(t *testing.T) {
	lineWKT := "LINESTRING (37.56319128200903 55.78357465483572, 37.565235359279626 55.78497472894253, 37.565822487858156 55.785421030200496, 37.567355545810614 55.784711836767826)"
	line, err := wkt.UnmarshalLineString(lineWKT)
	if err != nil {
		t.Error(err)
		return
	}
	total := 0.0
	for i := 1; i < len(line); i++ {
		total += greatCircleDistance(line[i-1], line[i])
	}
	if length := getSphericalLength(line); length != total {
		t.Errorf("Length should be %f, but got %f", total, length)
	}
	if length := getSphericalLength(line[:1]); length != 0 {
		t.Errorf("Length of single point line should be 0, but got %f", length)
	}
}

func TestPathLineDistance(t *testing.T) {
	street := orb.LineString{testOrigin, offset(testOrigin, 100, 0)}

	// Parallel path 4 meters to the north
	d := pathLineDistance(offset(testOrigin, 10, 4), offset(testOrigin, 20, 4), street)
	if math.Abs(d-4) > 0.01 {
		t.Errorf("Distance to parallel path should be 4, but got %f", d)
	}

	// Crossing path
	d = pathLineDistance(offset(testOrigin, 50, -10), offset(testOrigin, 50, 10), street)
	if d != 0 {
		t.Errorf("Distance to crossing path should be 0, but got %f", d)
	}

	// Path beyond the street end
	d = pathLineDistance(offset(testOrigin, 103, 0), offset(testOrigin, 110, 0), street)
	if math.Abs(d-3) > 0.01 {
		t.Errorf("Distance to the street end should be 3, but got %f", d)
	}
}

func TestBearings(t *testing.T) {
	east := orb.LineString{testOrigin, offset(testOrigin, 100, 0)}
	north := orb.LineString{testOrigin, offset(testOrigin, 0, 100)}
	if b := bearingFrom(east); math.Abs(b-90) > 0.1 {
		t.Errorf("Bearing to the east should be 90, but got %f", b)
	}
	if b := bearingFrom(reverseLine(east)); math.Abs(b-270) > 0.1 {
		t.Errorf("Bearing to the west should be 270, but got %f", b)
	}
	angle := angleBetweenBearings(bearingFrom(east), bearingFrom(north))
	if math.Abs(angle-90) > 0.1 {
		t.Errorf("Angle between east and north should be 90, but got %f", angle)
	}
	if angle := angleBetweenBearings(350, 10); angle != 20 {
		t.Errorf("Angle between 350 and 10 should be 20, but got %f", angle)
	}
}

func TestPadBound(t *testing.T) {
	b := pairBound(testOrigin, offset(testOrigin, 10, 10))
	padded := padBound(b, 5)
	if !padded.Contains(offset(testOrigin, -4.5, -4.5)) {
		t.Errorf("Padded bound should contain point 4.5 meters outside of the original one")
	}
	if padded.Contains(offset(testOrigin, -6, 0)) {
		t.Errorf("Padded bound should not contain point 6 meters outside of the original one")
	}
	if padBound(b, 0) != b {
		t.Errorf("Zero padding should keep the bound")
	}
}
