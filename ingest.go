package walkcover

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// TrackSet is result of tracks ingestion
type TrackSet struct {
	Tracks []Track
	// Skipped holds per-file failures (*InvalidTrackError)
	Skipped []error
	// Filtered is number of activities dropped because they are not walks
	Filtered int
	// InvalidPoints is number of points dropped because of malformed coordinates
	InvalidPoints int
	Files         int
}

// IngestOptions configures LoadTracks
type IngestOptions struct {
	Workers int
	Logger  zerolog.Logger
	// ReferenceYear gives century for two-digit NMEA years. Zero means current year.
	ReferenceYear int
	// Activities are accepted activity types (case insensitive). Empty means DefaultWalkingActivities.
	Activities []string
}

// DefaultWalkingActivities are TCX sports and GPX track types treated as walking
var DefaultWalkingActivities = []string{"walking", "walk", "hiking", "hike", "on_foot"}

// parsedFile is output of a single file parser
type parsedFile struct {
	tracks        []Track
	filtered      int
	invalidPoints int
}

type trackParser func(ctx context.Context, path, trackID string, activities map[string]struct{}, opts IngestOptions) (parsedFile, error)

var trackParsers = map[string]trackParser{
	".tcx":  parseTCXFile,
	".gpx":  parseGPXFile,
	".nmea": parseNMEAFile,
	".nme":  parseNMEAFile,
}

// LoadTracks reads every supported track file of the directory (recursively) in parallel.
//
// Malformed files are logged and reported in TrackSet.Skipped. Returns ErrNoTracksFound when no usable track exists.
func LoadTracks(ctx context.Context, dir string, opts IngestOptions) (TrackSet, error) {
	st := time.Now()
	files := []string{}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if strings.HasPrefix(d.Name(), ".") && path != dir {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := trackParsers[strings.ToLower(filepath.Ext(path))]; ok {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return TrackSet{}, errors.Wrapf(ErrNoTracksFound, "directory '%s' does not exist", dir)
		}
		return TrackSet{}, errors.Wrapf(err, "Can't list directory '%s'", dir)
	}
	sort.Strings(files)

	activities := make(map[string]struct{})
	if len(opts.Activities) == 0 {
		opts.Activities = DefaultWalkingActivities
	}
	for _, activity := range opts.Activities {
		activities[strings.ToLower(activity)] = struct{}{}
	}
	if opts.ReferenceYear <= 0 {
		opts.ReferenceYear = time.Now().UTC().Year()
	}

	parsed := make([]parsedFile, len(files))
	failures := make([]error, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(normalizeWorkers(opts.Workers))
	for i := range files {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			parse := trackParsers[strings.ToLower(filepath.Ext(files[i]))]
			trackID := trackIDFromPath(dir, files[i])
			result, err := parse(gctx, files[i], trackID, activities, opts)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				failures[i] = asInvalidTrack(trackID, err)
				return nil
			}
			parsed[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return TrackSet{}, err
	}

	set := TrackSet{Files: len(files)}
	seen := make(map[string]struct{})
	for i := range files {
		if failures[i] != nil {
			opts.Logger.Warn().Err(failures[i]).Str("file", files[i]).Msg("Skipping track file")
			set.Skipped = append(set.Skipped, failures[i])
			continue
		}
		set.Filtered += parsed[i].filtered
		set.InvalidPoints += parsed[i].invalidPoints
		for _, track := range parsed[i].tracks {
			if len(track.Points) == 0 {
				set.Skipped = append(set.Skipped, &InvalidTrackError{TrackID: track.ID, Reason: "no valid points"})
				continue
			}
			if _, ok := seen[track.ID]; ok {
				set.Skipped = append(set.Skipped, &InvalidTrackError{TrackID: track.ID, Reason: "duplicated track id"})
				continue
			}
			seen[track.ID] = struct{}{}
			set.Tracks = append(set.Tracks, track)
		}
	}
	opts.Logger.Info().
		Int("files", set.Files).
		Int("tracks", len(set.Tracks)).
		Int("skipped", len(set.Skipped)).
		Int("filtered", set.Filtered).
		Int("invalid_points", set.InvalidPoints).
		Dur("elapsed", time.Since(st)).
		Msg("Tracks loaded")
	if len(set.Tracks) == 0 {
		return set, errors.Wrapf(ErrNoTracksFound, "directory '%s'", dir)
	}
	return set, nil
}

func asInvalidTrack(trackID string, err error) error {
	var invalid *InvalidTrackError
	if errors.As(err, &invalid) {
		return err
	}
	return &InvalidTrackError{TrackID: trackID, Reason: "can't parse file", Err: err}
}

// trackIDFromPath returns slash separated path of the file relative to the tracks directory, extension included.
// "2023/walk.gpx" and "2024/walk.gpx" are different tracks.
func trackIDFromPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	return filepath.ToSlash(rel)
}

// numberedTrackID keeps file based id for the first track of a file and adds "#ordinal" for the rest.
// File based ids end with the file extension, so numbered ones never clash with them.
func numberedTrackID(base string, idx int) string {
	if idx == 0 {
		return base
	}
	return base + "#" + strconv.Itoa(idx)
}

func isWalkingActivity(activity string, activities map[string]struct{}) bool {
	_, ok := activities[strings.ToLower(strings.TrimSpace(activity))]
	return ok
}

// parseTimestamp parses RFC 3339 timestamp into UTC. Zero time is returned for empty or malformed values.
func parseTimestamp(text string) time.Time {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}
	}
	ts, err := time.Parse(time.RFC3339, text)
	if err != nil {
		return time.Time{}
	}
	return ts.UTC()
}
