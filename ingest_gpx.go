package walkcover

import (
	"context"
	"encoding/xml"
	"io"
	"os"

	"github.com/pkg/errors"
)

type gpxDocument struct {
	XMLName xml.Name   `xml:"gpx"`
	Tracks  []gpxTrack `xml:"trk"`
}

type gpxTrack struct {
	Name     string       `xml:"name"`
	Type     string       `xml:"type"`
	Segments []gpxSegment `xml:"trkseg"`
}

type gpxSegment struct {
	Points []gpxPoint `xml:"trkpt"`
}

type gpxPoint struct {
	Lat  float64  `xml:"lat,attr"`
	Lon  float64  `xml:"lon,attr"`
	Ele  *float64 `xml:"ele"`
	Time string   `xml:"time"`
}

func parseGPXFile(ctx context.Context, path, trackID string, activities map[string]struct{}, _ IngestOptions) (parsedFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return parsedFile{}, errors.Wrap(err, "Can't open file")
	}
	defer file.Close()
	return parseGPX(ctx, trackID, file, activities)
}

// parseGPX reads GPX 1.1 tracks. Track without `type` is accepted, typed ones must be walking.
// Segments of a track are concatenated: gaps between them split the track during classification anyway.
func parseGPX(ctx context.Context, baseID string, r io.Reader, activities map[string]struct{}) (parsedFile, error) {
	doc := gpxDocument{}
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return parsedFile{}, errors.Wrap(err, "Can't decode GPX")
	}
	result := parsedFile{}
	for idx, trk := range doc.Tracks {
		if err := ctx.Err(); err != nil {
			return parsedFile{}, err
		}
		if trk.Type != "" && !isWalkingActivity(trk.Type, activities) {
			result.filtered++
			continue
		}
		track := Track{
			ID:       numberedTrackID(baseID, idx),
			Source:   "gpx",
			Activity: trk.Type,
		}
		for _, seg := range trk.Segments {
			for _, pt := range seg.Points {
				if !validCoordinates(pt.Lat, pt.Lon) {
					result.invalidPoints++
					continue
				}
				track.Points = append(track.Points, GpsPoint{
					Lat:       pt.Lat,
					Lon:       pt.Lon,
					Time:      parseTimestamp(pt.Time),
					Elevation: pt.Ele,
				})
			}
		}
		result.tracks = append(result.tracks, track)
	}
	return result, nil
}
