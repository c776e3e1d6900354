package walkcover

import (
	"context"
	"encoding/xml"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

type tcxDatabase struct {
	XMLName    xml.Name      `xml:"TrainingCenterDatabase"`
	Activities []tcxActivity `xml:"Activities>Activity"`
}

type tcxActivity struct {
	Sport string   `xml:"Sport,attr"`
	ID    string   `xml:"Id"`
	Laps  []tcxLap `xml:"Lap"`
}

type tcxLap struct {
	Trackpoints []tcxTrackpoint `xml:"Track>Trackpoint"`
}

type tcxTrackpoint struct {
	Time     string       `xml:"Time"`
	Position *tcxPosition `xml:"Position"`
	Altitude *float64     `xml:"AltitudeMeters"`
}

type tcxPosition struct {
	Lat string `xml:"LatitudeDegrees"`
	Lon string `xml:"LongitudeDegrees"`
}

func parseTCXFile(ctx context.Context, path, trackID string, activities map[string]struct{}, _ IngestOptions) (parsedFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return parsedFile{}, errors.Wrap(err, "Can't open file")
	}
	defer file.Close()
	return parseTCX(ctx, trackID, file, activities)
}

// parseTCX reads Garmin Training Center file. Every walking activity becomes a track.
func parseTCX(ctx context.Context, baseID string, r io.Reader, activities map[string]struct{}) (parsedFile, error) {
	db := tcxDatabase{}
	if err := xml.NewDecoder(r).Decode(&db); err != nil {
		return parsedFile{}, errors.Wrap(err, "Can't decode TCX")
	}
	result := parsedFile{}
	for idx, activity := range db.Activities {
		if err := ctx.Err(); err != nil {
			return parsedFile{}, err
		}
		if !isWalkingActivity(activity.Sport, activities) {
			result.filtered++
			continue
		}
		track := Track{
			ID:       numberedTrackID(baseID, idx),
			Source:   "tcx",
			Activity: activity.Sport,
		}
		for _, lap := range activity.Laps {
			for _, tp := range lap.Trackpoints {
				if tp.Position == nil {
					// Trackpoints without position carry heart rate and similar only
					continue
				}
				lat, errLat := strconv.ParseFloat(strings.TrimSpace(tp.Position.Lat), 64)
				lon, errLon := strconv.ParseFloat(strings.TrimSpace(tp.Position.Lon), 64)
				if errLat != nil || errLon != nil || !validCoordinates(lat, lon) {
					result.invalidPoints++
					continue
				}
				track.Points = append(track.Points, GpsPoint{
					Lat:       lat,
					Lon:       lon,
					Time:      parseTimestamp(tp.Time),
					Elevation: tp.Altitude,
				})
			}
		}
		result.tracks = append(result.tracks, track)
	}
	return result, nil
}
