package walkcover

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Output file names
const (
	WalksFileName   = "walks.geojson"
	StreetsFileName = "streets.geojson"
	CoverageCSVName = "streets_coverage.csv"
	SummaryFileName = "summary.json"
)

// RunOptions are per-run inputs of the pipeline
type RunOptions struct {
	City            string
	TracksDir       string
	OutputDir       string
	ValidateOnly    bool
	ForceReanalysis bool
}

// Report describes pipeline run
type Report struct {
	City         string         `json:"city"`
	Profile      *CityProfile   `json:"profile"`
	Warnings     []string       `json:"warnings"`
	Files        int            `json:"files"`
	Tracks       int            `json:"tracks"`
	Skipped      int            `json:"skipped_tracks"`
	Filtered     int            `json:"filtered_activities"`
	Candidates   int            `json:"candidate_segments"`
	Walks        []WalkSegment  `json:"-"`
	WalkCount    int            `json:"walks"`
	WalkDistance float64        `json:"total_walk_distance_meters"`
	Discarded    map[string]int `json:"discarded"`
	ValidateOnly bool           `json:"validate_only"`
	Statistics   *Statistics    `json:"statistics,omitempty"`
	Outputs      []string       `json:"-"`
	Elapsed      time.Duration  `json:"-"`
}

// Pipeline runs analysis, classification, matching and dataset writing for a city
type Pipeline struct {
	analyzer *Analyzer
	cfg      Config
	logger   zerolog.Logger
}

// NewPipeline creates pipeline over the analyzer with given configuration
func NewPipeline(analyzer *Analyzer, cfg Config, options ...func(*Pipeline)) *Pipeline {
	pipeline := &Pipeline{
		analyzer: analyzer,
		cfg:      cfg,
		logger:   zerolog.Nop(),
	}
	for _, option := range options {
		option(pipeline)
	}
	return pipeline
}

func WithPipelineLogger(logger zerolog.Logger) func(*Pipeline) {
	return func(pipeline *Pipeline) {
		pipeline.logger = logger
	}
}

// Run executes the pipeline. With ValidateOnly it stops after classification and writes nothing.
func (pipeline *Pipeline) Run(ctx context.Context, opts RunOptions) (*Report, error) {
	st := time.Now()
	if opts.TracksDir == "" {
		opts.TracksDir = pipeline.cfg.Data.TracksDir
	}
	if opts.OutputDir == "" {
		opts.OutputDir = pipeline.cfg.Data.OutputDir
	}
	log := pipeline.logger.With().Str("city", NormalizeCityKey(opts.City)).Logger()

	analysis, err := pipeline.analyzer.Analyze(ctx, opts.City, opts.ForceReanalysis)
	if err != nil {
		return nil, errors.Wrap(err, "Can't analyze city")
	}
	profile := analysis.Profile
	report := &Report{
		City:         profile.CityKey,
		Profile:      profile,
		Warnings:     analysis.Warnings,
		Discarded:    make(map[string]int),
		ValidateOnly: opts.ValidateOnly,
	}
	log.Info().
		Bool("from_cache", analysis.FromCache).
		Bool("fallback", profile.Fallback).
		Float64("buffer_distance", profile.BufferDistance).
		Float64("max_walking_speed", profile.MaxWalkingSpeed).
		Float64("sinuosity_threshold", profile.SinuosityThreshold).
		Msg("City profile ready")

	trackSet, err := LoadTracks(ctx, opts.TracksDir, IngestOptions{
		Workers: pipeline.cfg.Matcher.Workers,
		Logger:  pipeline.logger,
	})
	report.Files = trackSet.Files
	report.Filtered = trackSet.Filtered
	report.Skipped = len(trackSet.Skipped)
	if err != nil {
		return report, err
	}
	report.Tracks = len(trackSet.Tracks)

	params := profile.ClassifierParams(pipeline.cfg.ClassifierParams())
	classified := 0
	for _, track := range trackSet.Tracks {
		outcomes, err := ClassifyTrack(track, params)
		if err != nil {
			log.Warn().Err(err).Str("track", track.ID).Msg("Skipping track")
			report.Skipped++
			continue
		}
		classified++
		for _, outcome := range outcomes {
			report.Candidates++
			if outcome.Verdict != VERDICT_WALK {
				report.Discarded[outcome.Reason.String()]++
				continue
			}
			report.Walks = append(report.Walks, *outcome.Walk)
			report.WalkDistance += outcome.Walk.Distance
		}
	}
	report.WalkCount = len(report.Walks)
	if classified == 0 {
		return report, errors.Wrap(ErrNoTracksFound, "every track is invalid")
	}
	log.Info().
		Int("tracks", report.Tracks).
		Int("candidates", report.Candidates).
		Int("walks", report.WalkCount).
		Interface("discarded", report.Discarded).
		Msg("Tracks classified")

	if opts.ValidateOnly {
		report.Elapsed = time.Since(st)
		return report, nil
	}

	net, err := pipeline.analyzer.Network(ctx, opts.City)
	if err != nil {
		return report, errors.Wrap(err, "No street network available")
	}

	matcherOptions := []func(*Matcher){WithTieTolerance(pipeline.cfg.Matcher.TieTolerance), WithMatcherLogger(pipeline.logger)}
	if policy, err := ParseAttributionPolicy(pipeline.cfg.Matcher.Attribution); err == nil {
		matcherOptions = append(matcherOptions, WithAttribution(policy))
	}
	matcher := NewMatcher(net, profile.BufferDistance, matcherOptions...)
	var results []MatchResult
	matchStart := time.Now()
	if pipeline.cfg.Matcher.Tiling {
		results, err = matcher.MatchTiled(ctx, report.Walks, pipeline.cfg.Matcher.TileLevel, pipeline.cfg.Matcher.Workers)
	} else {
		results, err = matcher.MatchAll(ctx, report.Walks, pipeline.cfg.Matcher.Workers)
	}
	if err != nil {
		return report, errors.Wrap(err, "Matching interrupted")
	}
	acc := NewCoverageAccumulator()
	acc.Add(results...)
	stats := acc.Apply(net)
	report.Statistics = &stats
	log.Info().
		Int("covered_streets", stats.CoveredStreets).
		Int("total_streets", stats.TotalStreets).
		Float64("coverage_percent", stats.CoveragePercent()).
		Dur("elapsed", time.Since(matchStart)).
		Msg("Walks matched")

	outputs, err := writeDataset(opts.OutputDir, net, report)
	if err != nil {
		return report, errors.Wrap(err, "Can't write dataset")
	}
	report.Outputs = outputs
	report.Elapsed = time.Since(st)
	return report, nil
}

// writeDataset writes GeoJSON collections, CSV table and JSON summary into the directory
func writeDataset(dir string, net *StreetNetwork, report *Report) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "Can't create output directory")
	}
	walksPath := filepath.Join(dir, WalksFileName)
	if err := writeFeatureCollection(walksPath, WalksFeatureCollection(report.Walks)); err != nil {
		return nil, errors.Wrap(err, "Can't export walks")
	}
	streetsPath := filepath.Join(dir, StreetsFileName)
	if err := writeFeatureCollection(streetsPath, StreetsFeatureCollection(net)); err != nil {
		return nil, errors.Wrap(err, "Can't export streets")
	}
	csvPath := filepath.Join(dir, CoverageCSVName)
	if err := ExportStreetsToCSV(net, csvPath); err != nil {
		return nil, errors.Wrap(err, "Can't export street coverage")
	}
	summaryPath := filepath.Join(dir, SummaryFileName)
	if err := writeSummary(summaryPath, report); err != nil {
		return nil, errors.Wrap(err, "Can't export summary")
	}
	return []string{walksPath, streetsPath, csvPath, summaryPath}, nil
}

type summary struct {
	*Report
	GeneratedAt time.Time `json:"generated_at"`
	WalkIDs     []string  `json:"walk_ids"`
}

func writeSummary(fname string, report *Report) error {
	ids := make([]string, 0, len(report.Walks))
	for _, walk := range report.Walks {
		ids = append(ids, walk.ID)
	}
	sort.Strings(ids)
	b, err := json.MarshalIndent(summary{Report: report, GeneratedAt: time.Now().UTC(), WalkIDs: ids}, "", "  ")
	if err != nil {
		return errors.Wrap(err, "Can't marshal summary")
	}
	return os.WriteFile(fname, b, 0o644)
}
