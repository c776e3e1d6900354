package walkcover

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// DefaultProfileTTL is how long cached city profile stays fresh
const DefaultProfileTTL = 30 * 24 * time.Hour

// AnalysisResult is outcome of city analysis
type AnalysisResult struct {
	Profile *CityProfile
	// Characteristics are nil when the profile is served from cache or is a fallback
	Characteristics *Characteristics
	FromCache       bool
	Warnings        []string
}

type networkCall struct {
	done chan struct{}
	net  *StreetNetwork
	err  error
}

// Analyzer derives city profiles from street networks and caches them
type Analyzer struct {
	provider      NetworkProvider
	cache         ProfileCache
	logger        zerolog.Logger
	clock         func() time.Time
	ttl           time.Duration
	gridTolerance float64

	mu       sync.Mutex
	networks map[string]*networkCall
}

// NewAnalyzer creates analyzer. Nil cache is replaced with in-memory one.
func NewAnalyzer(provider NetworkProvider, cache ProfileCache, options ...func(*Analyzer)) *Analyzer {
	analyzer := &Analyzer{
		provider:      provider,
		cache:         cache,
		logger:        zerolog.Nop(),
		clock:         time.Now,
		ttl:           DefaultProfileTTL,
		gridTolerance: DefaultGridAngleTolerance,
		networks:      make(map[string]*networkCall),
	}
	if analyzer.cache == nil {
		analyzer.cache = NewMemoryProfileCache()
	}
	for _, option := range options {
		option(analyzer)
	}
	return analyzer
}

func WithAnalyzerLogger(logger zerolog.Logger) func(*Analyzer) {
	return func(analyzer *Analyzer) {
		analyzer.logger = logger
	}
}

func WithClock(clock func() time.Time) func(*Analyzer) {
	return func(analyzer *Analyzer) {
		analyzer.clock = clock
	}
}

// WithTTL sets profile time-to-live. Non-positive value disables expiry.
func WithTTL(ttl time.Duration) func(*Analyzer) {
	return func(analyzer *Analyzer) {
		analyzer.ttl = ttl
	}
}

func WithGridTolerance(degrees float64) func(*Analyzer) {
	return func(analyzer *Analyzer) {
		analyzer.gridTolerance = degrees
	}
}

// Analyze returns tuned profile for the city.
//
// Fresh cached profile is returned unless force is set. When street network can't be fetched the last cached profile
// (even expired) or the default profile is returned together with a warning. Only unknown city is an error.
func (analyzer *Analyzer) Analyze(ctx context.Context, cityKey string, force bool) (AnalysisResult, error) {
	key := NormalizeCityKey(cityKey)
	if key == "" {
		return AnalysisResult{}, &CityResolutionError{Query: cityKey, Normalized: key}
	}
	result := AnalysisResult{}
	log := analyzer.logger.With().Str("city", key).Logger()
	now := analyzer.clock()

	cached, err := analyzer.cache.Get(ctx, key)
	var corrupted *CacheCorruptionError
	switch {
	case err == nil:
	case errors.Is(err, ErrCacheMiss):
		cached = nil
	case errors.As(err, &corrupted):
		cached = nil
		result.addWarning(log, "Cached profile is corrupted, recomputing: %s", corrupted.Err.Error())
		if delErr := analyzer.cache.Delete(ctx, key); delErr != nil {
			result.addWarning(log, "Can't purge corrupted profile: %s", delErr.Error())
		}
	default:
		cached = nil
		result.addWarning(log, "Profile cache is unavailable: %s", err.Error())
	}

	if cached != nil && !force && !cached.Expired(now, analyzer.ttl) {
		log.Debug().Time("computed_at", cached.ComputedAt).Msg("Using cached city profile")
		result.Profile = cached
		result.FromCache = true
		return result, nil
	}

	net, err := analyzer.Network(ctx, cityKey)
	if err == nil && net.Len() == 0 {
		err = &NetworkError{City: key, Err: errors.New("street network is empty")}
	}
	if err != nil {
		var resolutionErr *CityResolutionError
		if errors.As(err, &resolutionErr) {
			return AnalysisResult{}, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return AnalysisResult{}, ctxErr
		}
		if cached != nil {
			result.addWarning(log, "Can't analyze street network, using cached profile from %s: %s", cached.ComputedAt.Format(time.RFC3339), err.Error())
			result.Profile = cached
			result.FromCache = true
			return result, nil
		}
		result.addWarning(log, "Can't analyze street network, using default profile: %s", err.Error())
		result.Profile = DefaultProfile(key, now)
		return result, nil
	}

	st := time.Now()
	chars := AnalyzeCharacteristics(net, analyzer.gridTolerance)
	profile := newCityProfile(key, chars, now)
	log.Info().
		Int("segments", net.Len()).
		Float64("street_density", chars.StreetDensity).
		Float64("grid_score", chars.GridScore).
		Int("intersections", chars.Intersections).
		Float64("buffer_distance", profile.BufferDistance).
		Dur("elapsed", time.Since(st)).
		Msg("City analyzed")
	if err := analyzer.cache.Put(ctx, profile); err != nil {
		result.addWarning(log, "Can't store city profile: %s", err.Error())
	}
	result.Profile = profile
	result.Characteristics = &chars
	return result, nil
}

// Invalidate drops cached profile and memoized street network of the city
func (analyzer *Analyzer) Invalidate(ctx context.Context, cityKey string) error {
	key := NormalizeCityKey(cityKey)
	analyzer.mu.Lock()
	delete(analyzer.networks, key)
	analyzer.mu.Unlock()
	if err := analyzer.cache.Delete(ctx, key); err != nil {
		return errors.Wrapf(err, "Can't invalidate profile of '%s'", key)
	}
	return nil
}

// Network returns street network of the city. Provider is asked once per normalized key with the query as given,
// concurrent callers share the result.
func (analyzer *Analyzer) Network(ctx context.Context, cityKey string) (*StreetNetwork, error) {
	key := NormalizeCityKey(cityKey)
	analyzer.mu.Lock()
	call, ok := analyzer.networks[key]
	if !ok {
		call = &networkCall{done: make(chan struct{})}
		analyzer.networks[key] = call
		analyzer.mu.Unlock()
		st := time.Now()
		call.net, call.err = analyzer.provider.FetchNetwork(ctx, cityKey)
		if call.err != nil && ctx.Err() != nil {
			// Cancelled fetch must not be memoized
			analyzer.mu.Lock()
			delete(analyzer.networks, key)
			analyzer.mu.Unlock()
		}
		close(call.done)
		if call.err == nil {
			analyzer.logger.Info().Str("city", key).Int("segments", call.net.Len()).Dur("elapsed", time.Since(st)).Msg("Street network fetched")
		}
		return call.net, call.err
	}
	analyzer.mu.Unlock()
	select {
	case <-call.done:
		return call.net, call.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (result *AnalysisResult) addWarning(log zerolog.Logger, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	result.Warnings = append(result.Warnings, msg)
	log.Warn().Msg(msg)
}
