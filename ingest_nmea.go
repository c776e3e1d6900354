package walkcover

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"
	"strings"

	"github.com/adrianmo/go-nmea"
	"github.com/pkg/errors"
)

func parseNMEAFile(ctx context.Context, path, trackID string, _ map[string]struct{}, opts IngestOptions) (parsedFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return parsedFile{}, errors.Wrap(err, "Can't open file")
	}
	defer file.Close()
	return parseNMEA(ctx, trackID, file, opts.ReferenceYear)
}

// parseNMEA reads NMEA 0183 log as a single track.
// RMC sentences give position and date, GGA sentences give altitude (they carry no date, so the last RMC date is used).
// Unparseable lines and fixes flagged invalid are skipped.
func parseNMEA(ctx context.Context, trackID string, r io.Reader, refYear int) (parsedFile, error) {
	scanner := bufio.NewScanner(r)
	scanner.Split(scanLines)
	result := parsedFile{}
	track := Track{ID: trackID, Source: "nmea"}
	var lastDate nmea.Date
	parsedLines := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return parsedFile{}, err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		sentence, err := nmea.Parse(line)
		if err != nil {
			result.invalidPoints++
			continue
		}
		parsedLines++
		switch s := sentence.(type) {
		case nmea.RMC:
			lastDate = s.Date
			if s.Validity != nmea.ValidRMC || !s.Date.Valid || !s.Time.Valid {
				continue
			}
			if !validCoordinates(s.Latitude, s.Longitude) {
				result.invalidPoints++
				continue
			}
			pt := GpsPoint{
				Lat:  s.Latitude,
				Lon:  s.Longitude,
				Time: nmea.DateTime(refYear, s.Date, s.Time).UTC(),
			}
			if n := len(track.Points); n > 0 && track.Points[n-1].Time.Equal(pt.Time) {
				// GGA of the same fix came first
				continue
			}
			track.Points = append(track.Points, pt)
		case nmea.GGA:
			if !lastDate.Valid || !s.Time.Valid || s.FixQuality == nmea.Invalid {
				continue
			}
			if !validCoordinates(s.Latitude, s.Longitude) {
				result.invalidPoints++
				continue
			}
			altitude := s.Altitude
			ts := nmea.DateTime(refYear, lastDate, s.Time).UTC()
			if n := len(track.Points); n > 0 && track.Points[n-1].Time.Equal(ts) {
				track.Points[n-1].Elevation = &altitude
				continue
			}
			track.Points = append(track.Points, GpsPoint{
				Lat:       s.Latitude,
				Lon:       s.Longitude,
				Time:      ts,
				Elevation: &altitude,
			})
		}
	}
	if err := scanner.Err(); err != nil {
		return parsedFile{}, errors.Wrap(err, "Scanner error")
	}
	if parsedLines == 0 {
		return parsedFile{}, &InvalidTrackError{TrackID: trackID, Reason: "no NMEA sentences"}
	}
	result.tracks = append(result.tracks, track)
	return result, nil
}

// scanLines is a bufio.SplitFunc which tolerates \n, \r\n and bare \r line endings
func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[0:i], nil
		}
		if !atEOF && len(data) == i+1 {
			return 0, nil, nil
		}
		advance = i + 1
		if len(data) > i+1 && data[i+1] == '\n' {
			advance++
		}
		return advance, data[0:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
