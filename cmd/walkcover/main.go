package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/LdDl/walkcover"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

var (
	city            = flag.String("city", "", "Name of the city to analyze (required). E.g.: 'new_york' or 'San Francisco'")
	validateOnly    = flag.Bool("validate-only", false, "Analyze city and classify tracks without matching and writing the dataset")
	forceReanalysis = flag.Bool("force-reanalysis", false, "Bypass cached city profile and analyze street network again")
	configPath      = flag.String("config", "", "Path to YAML configuration file. Defaults are used when omitted")
	tracksDir       = flag.String("tracks", "", "Directory with *.tcx / *.gpx / *.nmea files. Overrides 'data.tracks' of configuration")
	outDir          = flag.String("out", "", "Output directory for the dataset. Overrides 'data.output' of configuration")
	verbose         = flag.Bool("verbose", false, "Human readable debug logging")
)

func main() {
	flag.Parse()
	os.Exit(run())
}

func run() int {
	if *city == "" {
		fmt.Fprintln(os.Stderr, "Flag --city is required")
		flag.Usage()
		return 1
	}
	cfg, err := walkcover.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *verbose {
		cfg.Logging.Level = "debug"
		cfg.Logging.Pretty = true
	}
	logger := walkcover.NewLogger(os.Stderr, cfg.Logging.Level, cfg.Logging.Pretty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	analyzer, closeCache, err := prepareAnalyzer(ctx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Can't prepare city analyzer")
		return 1
	}
	defer closeCache()

	pipeline := walkcover.NewPipeline(analyzer, cfg, walkcover.WithPipelineLogger(logger))
	report, err := pipeline.Run(ctx, walkcover.RunOptions{
		City:            *city,
		TracksDir:       *tracksDir,
		OutputDir:       *outDir,
		ValidateOnly:    *validateOnly,
		ForceReanalysis: *forceReanalysis,
	})
	if err != nil {
		var resolutionErr *walkcover.CityResolutionError
		switch {
		case errors.As(err, &resolutionErr):
			logger.Error().Strs("suggestions", resolutionErr.Suggestions).Msg(resolutionErr.Error())
		case errors.Is(err, walkcover.ErrNoTracksFound):
			logger.Error().Err(err).Msg("No walking tracks to process")
		default:
			logger.Error().Err(err).Msg("Run failed")
		}
		return 1
	}
	printSummary(report)
	return 0
}

// prepareAnalyzer wires providers and profile cache described by configuration
func prepareAnalyzer(ctx context.Context, cfg walkcover.Config, logger zerolog.Logger) (*walkcover.Analyzer, func(), error) {
	registry := cfg.Registry()
	networkType, err := walkcover.ParseNetworkType(cfg.Network.Type)
	if err != nil {
		return nil, nil, err
	}
	var upstream walkcover.NetworkProvider = walkcover.NewOSMFileProvider(registry, networkType, logger)
	if cfg.Overpass.Enabled {
		overpass := walkcover.NewOverpassProvider(registry,
			walkcover.WithOverpassEndpoint(cfg.Overpass.URL),
			walkcover.WithOverpassTimeout(cfg.Overpass.Timeout),
			walkcover.WithOverpassNetworkType(networkType),
			walkcover.WithOverpassLogger(logger),
		)
		upstream = walkcover.NewFallbackProvider(upstream, overpass)
	}
	provider := walkcover.NewCachedProvider(upstream, filepath.Join(cfg.Data.CacheDir, "networks"),
		walkcover.WithPreferCache(cfg.Network.PreferCache),
		walkcover.WithCacheLogger(logger),
	)

	var cache walkcover.ProfileCache = walkcover.NewMemoryProfileCache()
	closeCache := func() {}
	if cfg.Cache.SQLitePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Cache.SQLitePath), 0o755); err != nil {
			return nil, nil, errors.Wrap(err, "Can't create cache directory")
		}
		sqliteCache, err := walkcover.OpenSQLiteProfileCache(ctx, cfg.Cache.SQLitePath)
		if err != nil {
			return nil, nil, errors.Wrap(err, "Can't open profile cache")
		}
		cache = sqliteCache
		closeCache = func() { _ = sqliteCache.Close() }
	}

	analyzer := walkcover.NewAnalyzer(provider, cache,
		walkcover.WithAnalyzerLogger(logger),
		walkcover.WithTTL(cfg.Cache.TTL),
		walkcover.WithGridTolerance(cfg.Analysis.GridAngleTolerance),
	)
	return analyzer, closeCache, nil
}

func printSummary(report *walkcover.Report) {
	fmt.Printf("City: %s\n", report.City)
	if report.Profile.Fallback {
		fmt.Println("\tProfile: default (street network is unavailable)")
	}
	fmt.Printf("\tBuffer distance: %.1f m | Max walking speed: %.2f m/s | Sinuosity threshold: %.2f\n",
		report.Profile.BufferDistance, report.Profile.MaxWalkingSpeed, report.Profile.SinuosityThreshold)
	fmt.Printf("\tTracks: %s (skipped %s) | Walks: %s | Walked: %s\n",
		humanize.Comma(int64(report.Tracks)),
		humanize.Comma(int64(report.Skipped)),
		humanize.Comma(int64(report.WalkCount)),
		humanize.SIWithDigits(report.WalkDistance, 2, "m"),
	)
	for _, warning := range report.Warnings {
		fmt.Printf("\tWarning: %s\n", warning)
	}
	if report.ValidateOnly {
		fmt.Println("Validation done, dataset is not written")
		return
	}
	stats := report.Statistics
	fmt.Printf("\tStreets covered: %s of %s (%s of %s, %.2f%%)\n",
		humanize.Comma(int64(stats.CoveredStreets)),
		humanize.Comma(int64(stats.TotalStreets)),
		humanize.SIWithDigits(stats.CoveredLength, 2, "m"),
		humanize.SIWithDigits(stats.TotalLength, 2, "m"),
		stats.CoveragePercent(),
	)
	for _, path := range report.Outputs {
		fmt.Printf("\tWritten: %s\n", path)
	}
	fmt.Printf("Done in %v\n", report.Elapsed)
}
