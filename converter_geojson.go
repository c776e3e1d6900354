package walkcover

import (
	"fmt"
	"os"
	"time"

	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// Kepler.gl style properties
const (
	walkStroke            = "#3182CE"
	coveredStreetStroke   = "#E53E3E"
	uncoveredStreetStroke = "#A0AEC0"
)

func lineToCoordinates(line orb.LineString) [][]float64 {
	pts2d := make([][]float64, len(line))
	for i := range line {
		pts2d[i] = []float64{line[i].Lon(), line[i].Lat()}
	}
	return pts2d
}

func coordinatesToLine(pts2d [][]float64) orb.LineString {
	line := make(orb.LineString, 0, len(pts2d))
	for _, pt := range pts2d {
		if len(pt) < 2 {
			continue
		}
		line = append(line, orb.Point{pt[0], pt[1]})
	}
	return line
}

func setStyle(feature *geojson.Feature, stroke string, width int, opacity float64) {
	feature.SetProperty("stroke", stroke)
	feature.SetProperty("stroke-width", width)
	feature.SetProperty("stroke-opacity", opacity)
	feature.SetProperty("stroke-dasharray", "")
}

// WalksFeatureCollection returns walk segments as GeoJSON LineString features
func WalksFeatureCollection(walks []WalkSegment) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i := range walks {
		walk := &walks[i]
		feature := geojson.NewLineStringFeature(lineToCoordinates(walk.Line()))
		feature.ID = walk.ID
		feature.SetProperty("walk_id", walk.ID)
		feature.SetProperty("track_id", walk.TrackID)
		feature.SetProperty("start_time", walk.Start.UTC().Format(time.RFC3339))
		feature.SetProperty("end_time", walk.End.UTC().Format(time.RFC3339))
		feature.SetProperty("distance_meters", walk.Distance)
		feature.SetProperty("duration_seconds", walk.Duration.Seconds())
		feature.SetProperty("avg_speed", walk.AvgSpeed)
		feature.SetProperty("sinuosity", walk.Sinuosity)
		setStyle(feature, walkStroke, 2, 0.8)
		fc.AddFeature(feature)
	}
	return fc
}

// StreetsFeatureCollection returns every street segment with its coverage state
func StreetsFeatureCollection(net *StreetNetwork) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, street := range net.Segments() {
		fc.AddFeature(streetFeature(street, true))
	}
	return fc
}

func streetFeature(street *StreetSegment, styled bool) *geojson.Feature {
	feature := geojson.NewLineStringFeature(lineToCoordinates(street.Geom))
	feature.ID = int64(street.ID)
	feature.SetProperty("id", int64(street.ID))
	feature.SetProperty("osm_way_id", street.OSMWayID)
	feature.SetProperty("name", street.Name)
	feature.SetProperty("highway", street.Highway)
	feature.SetProperty("source_node", street.SourceNode)
	feature.SetProperty("target_node", street.TargetNode)
	feature.SetProperty("length_meters", street.Length)
	if !styled {
		return feature
	}
	feature.SetProperty("street_class", getHighwayType(street.Highway).Class().String())
	feature.SetProperty("covered", street.Covered)
	feature.SetProperty("walk_count", len(street.Contributors))
	feature.SetProperty("coverage_percent", street.CoveragePercent())
	if street.Covered {
		setStyle(feature, coveredStreetStroke, 3, 0.8)
	} else {
		setStyle(feature, uncoveredStreetStroke, 1, 0.5)
	}
	return feature
}

// writeFeatureCollection marshals collection into the file
func writeFeatureCollection(fname string, fc *geojson.FeatureCollection) error {
	b, err := fc.MarshalJSON()
	if err != nil {
		return errors.Wrap(err, "Can't marshal feature collection")
	}
	err = os.WriteFile(fname, b, 0o644)
	if err != nil {
		return errors.Wrapf(err, "Can't write file '%s'", fname)
	}
	return nil
}

// networkToGeoJSON serializes street network for the disk cache (geometry and OSM attributes only)
func networkToGeoJSON(net *StreetNetwork) ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	for _, street := range net.Segments() {
		fc.AddFeature(streetFeature(street, false))
	}
	return fc.MarshalJSON()
}

// networkFromGeoJSON restores street network written by networkToGeoJSON
func networkFromGeoJSON(city string, data []byte) (*StreetNetwork, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, errors.Wrap(err, "Can't unmarshal feature collection")
	}
	segments := make([]*StreetSegment, 0, len(fc.Features))
	for i, feature := range fc.Features {
		if feature.Geometry == nil || !feature.Geometry.IsLineString() {
			return nil, fmt.Errorf("Feature #%d is not a LineString", i)
		}
		id, err := feature.PropertyFloat64("id")
		if err != nil {
			return nil, errors.Wrapf(err, "Can't read identifier of feature #%d", i)
		}
		segment := NewStreetSegment(StreetID(id), coordinatesToLine(feature.Geometry.LineString))
		segment.OSMWayID = int64(feature.PropertyMustFloat64("osm_way_id", 0))
		segment.Name = feature.PropertyMustString("name", "")
		segment.Highway = feature.PropertyMustString("highway", "")
		segment.SourceNode = int64(feature.PropertyMustFloat64("source_node", 0))
		segment.TargetNode = int64(feature.PropertyMustFloat64("target_node", 0))
		if length, err := feature.PropertyFloat64("length_meters"); err == nil {
			segment.Length = length
		}
		segments = append(segments, segment)
	}
	return NewStreetNetwork(city, segments)
}
