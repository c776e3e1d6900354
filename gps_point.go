package walkcover

import (
	"fmt"
	"time"

	"github.com/paulmach/orb"
)

// GpsPoint is a single fix of a GPS track
type GpsPoint struct {
	Lat       float64
	Lon       float64
	Time      time.Time
	Elevation *float64
}

// String returns pretty printed value for for GpsPoint
func (gp GpsPoint) String() string {
	return fmt.Sprintf("Lon: %f | Lat: %f | Time: %s", gp.Lon, gp.Lat, gp.Time.Format(time.RFC3339))
}

// Point returns the fix as orb.Point (lon, lat order)
func (gp GpsPoint) Point() orb.Point {
	return orb.Point{gp.Lon, gp.Lat}
}

// HasTime reports whether the fix carries a usable timestamp
func (gp GpsPoint) HasTime() bool {
	return !gp.Time.IsZero()
}

// validCoordinates checks WGS84 ranges
func validCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// Track is an ordered sequence of fixes coming from a single export file (or a single track inside it)
type Track struct {
	ID       string
	Source   string
	Activity string
	Points   []GpsPoint
}

// Line returns geometry of the track
func (track *Track) Line() orb.LineString {
	return pointsToLine(track.Points)
}

func pointsToLine(points []GpsPoint) orb.LineString {
	line := make(orb.LineString, len(points))
	for i := range points {
		line[i] = points[i].Point()
	}
	return line
}
