package walkcover

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// NetworkProvider fetches street network of a city
type NetworkProvider interface {
	// FetchNetwork returns street network for the city name, key or alias.
	// Fails with *CityResolutionError for unknown cities and *NetworkError when data can't be obtained.
	FetchNetwork(ctx context.Context, cityKey string) (*StreetNetwork, error)
}

// OSMFileProvider reads street networks from local OSM extracts listed in the registry
type OSMFileProvider struct {
	registry    *CityRegistry
	networkType NetworkType
	logger      zerolog.Logger
}

// NewOSMFileProvider creates provider. Network type defaults to NETWORK_DRIVE.
func NewOSMFileProvider(registry *CityRegistry, networkType NetworkType, logger zerolog.Logger) *OSMFileProvider {
	if networkType == NETWORK_UNDEFINED {
		networkType = NETWORK_DRIVE
	}
	return &OSMFileProvider{
		registry:    registry,
		networkType: networkType,
		logger:      logger,
	}
}

func (provider *OSMFileProvider) FetchNetwork(ctx context.Context, cityKey string) (*StreetNetwork, error) {
	source, err := provider.registry.Resolve(cityKey)
	if err != nil {
		return nil, err
	}
	if source.OSMFile == "" {
		return nil, &NetworkError{City: source.Key, Err: errors.New("no OSM file configured")}
	}
	kind, err := osmExtension(source.OSMFile)
	if err != nil {
		return nil, &NetworkError{City: source.Key, Err: err}
	}
	provider.logger.Info().Str("city", source.Key).Str("file", source.OSMFile).Msg("Opening OSM file")
	file, err := os.Open(source.OSMFile)
	if err != nil {
		return nil, &NetworkError{City: source.Key, Err: errors.Wrap(err, "Can't open OSM file")}
	}
	defer file.Close()
	net, err := readStreetsOSM(ctx, source.Key, file, kind, provider.networkType, provider.logger)
	if err != nil {
		return nil, &NetworkError{City: source.Key, Err: err}
	}
	return net, nil
}

// DefaultOverpassURL is public Overpass API interpreter endpoint
const DefaultOverpassURL = "https://overpass-api.de/api/interpreter"

// OverpassProvider downloads street networks from Overpass API by administrative area name
type OverpassProvider struct {
	registry    *CityRegistry
	endpoint    string
	httpClient  *http.Client
	timeout     time.Duration
	networkType NetworkType
	logger      zerolog.Logger
}

// NewOverpassProvider creates provider with given options
func NewOverpassProvider(registry *CityRegistry, options ...func(*OverpassProvider)) *OverpassProvider {
	provider := &OverpassProvider{
		registry:    registry,
		endpoint:    DefaultOverpassURL,
		timeout:     180 * time.Second,
		networkType: NETWORK_DRIVE,
		logger:      zerolog.Nop(),
	}
	for _, option := range options {
		option(provider)
	}
	if provider.httpClient == nil {
		provider.httpClient = &http.Client{Timeout: provider.timeout + 10*time.Second}
	}
	return provider
}

func WithOverpassEndpoint(endpoint string) func(*OverpassProvider) {
	return func(provider *OverpassProvider) {
		provider.endpoint = endpoint
	}
}

func WithOverpassHTTPClient(client *http.Client) func(*OverpassProvider) {
	return func(provider *OverpassProvider) {
		provider.httpClient = client
	}
}

func WithOverpassTimeout(timeout time.Duration) func(*OverpassProvider) {
	return func(provider *OverpassProvider) {
		provider.timeout = timeout
	}
}

func WithOverpassNetworkType(networkType NetworkType) func(*OverpassProvider) {
	return func(provider *OverpassProvider) {
		provider.networkType = networkType
	}
}

func WithOverpassLogger(logger zerolog.Logger) func(*OverpassProvider) {
	return func(provider *OverpassProvider) {
		provider.logger = logger
	}
}

// overpassQuery returns Overpass QL query for every highway way inside the named administrative area
func overpassQuery(areaName string, timeout time.Duration) string {
	escaped := strings.ReplaceAll(areaName, `"`, `\"`)
	return fmt.Sprintf(`[out:xml][timeout:%d];
area["name"="%s"]["boundary"="administrative"]->.searchArea;
way["highway"](area.searchArea);
(._;>;);
out body;`, int(timeout.Seconds()), escaped)
}

// FetchNetwork queries area of the registered city. Unregistered city is queried by the name as given:
// when Overpass knows no streets there the registry resolution error is returned.
func (provider *OverpassProvider) FetchNetwork(ctx context.Context, cityKey string) (*StreetNetwork, error) {
	source, err := provider.registry.Resolve(cityKey)
	var resolutionErr *CityResolutionError
	if err != nil {
		if !errors.As(err, &resolutionErr) || resolutionErr.Normalized == "" {
			return nil, err
		}
		source = CitySource{Key: resolutionErr.Normalized, OverpassArea: overpassAreaName(cityKey)}
		provider.logger.Debug().Str("city", source.Key).Str("area", source.OverpassArea).Msg("City is not registered, querying Overpass by name")
	}
	area := source.OverpassArea
	if area == "" {
		area = source.Name
	}
	st := time.Now()
	data, err := provider.download(ctx, overpassQuery(area, provider.timeout))
	if err != nil {
		return nil, &NetworkError{City: source.Key, Err: err}
	}
	provider.logger.Info().Str("city", source.Key).Int("bytes", len(data)).Dur("elapsed", time.Since(st)).Msg("Overpass response received")
	net, err := readStreetsOSM(ctx, source.Key, bytes.NewReader(data), "xml", provider.networkType, provider.logger)
	if err != nil {
		return nil, &NetworkError{City: source.Key, Err: errors.Wrap(err, "Can't parse Overpass response")}
	}
	if net.Len() == 0 {
		if resolutionErr != nil {
			return nil, resolutionErr
		}
		return nil, &NetworkError{City: source.Key, Err: fmt.Errorf("no streets found for area '%s'", area)}
	}
	return net, nil
}

func (provider *OverpassProvider) download(ctx context.Context, query string) ([]byte, error) {
	form := url.Values{}
	form.Set("data", query)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, provider.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errors.Wrap(err, "Can't prepare request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := provider.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't fetch %s", provider.endpoint)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, provider.endpoint)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "Can't read response body")
	}
	return data, nil
}

// CachedProvider keeps street networks on disk as GeoJSON and serves them when upstream fails
type CachedProvider struct {
	upstream    NetworkProvider
	dir         string
	preferCache bool
	logger      zerolog.Logger
}

// NewCachedProvider wraps upstream provider with GeoJSON disk cache in the given directory
func NewCachedProvider(upstream NetworkProvider, dir string, options ...func(*CachedProvider)) *CachedProvider {
	provider := &CachedProvider{
		upstream: upstream,
		dir:      dir,
		logger:   zerolog.Nop(),
	}
	for _, option := range options {
		option(provider)
	}
	return provider
}

// WithPreferCache makes provider return cached network without asking upstream
func WithPreferCache(preferCache bool) func(*CachedProvider) {
	return func(provider *CachedProvider) {
		provider.preferCache = preferCache
	}
}

func WithCacheLogger(logger zerolog.Logger) func(*CachedProvider) {
	return func(provider *CachedProvider) {
		provider.logger = logger
	}
}

func (provider *CachedProvider) cachePath(cityKey string) string {
	return filepath.Join(provider.dir, NormalizeCityKey(cityKey)+"_streets.geojson")
}

func (provider *CachedProvider) FetchNetwork(ctx context.Context, cityKey string) (*StreetNetwork, error) {
	key := NormalizeCityKey(cityKey)
	if provider.preferCache {
		net, err := provider.load(key)
		if err == nil {
			provider.logger.Debug().Str("city", key).Msg("Street network served from disk cache")
			return net, nil
		}
		if !os.IsNotExist(errors.Cause(err)) {
			provider.logger.Warn().Err(err).Str("city", key).Msg("Can't read cached street network")
		}
	}
	net, err := provider.upstream.FetchNetwork(ctx, cityKey)
	if err != nil {
		var resolutionErr *CityResolutionError
		if errors.As(err, &resolutionErr) {
			return nil, err
		}
		cached, cacheErr := provider.load(key)
		if cacheErr != nil {
			return nil, err
		}
		provider.logger.Warn().Err(err).Str("city", key).Msg("Upstream fetch failed, using street network from disk cache")
		return cached, nil
	}
	if storeErr := provider.store(key, net); storeErr != nil {
		provider.logger.Warn().Err(storeErr).Str("city", key).Msg("Can't write street network to disk cache")
	}
	return net, nil
}

func (provider *CachedProvider) load(key string) (*StreetNetwork, error) {
	data, err := os.ReadFile(provider.cachePath(key))
	if err != nil {
		return nil, errors.Wrap(err, "Can't read cache file")
	}
	return networkFromGeoJSON(key, data)
}

func (provider *CachedProvider) store(key string, net *StreetNetwork) error {
	if err := os.MkdirAll(provider.dir, 0o755); err != nil {
		return errors.Wrap(err, "Can't create cache directory")
	}
	data, err := networkToGeoJSON(net)
	if err != nil {
		return errors.Wrap(err, "Can't marshal street network")
	}
	tmp := provider.cachePath(key) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrap(err, "Can't write cache file")
	}
	return os.Rename(tmp, provider.cachePath(key))
}

// FallbackProvider asks providers in order and returns the first network obtained.
// City unknown to one provider is passed to the next one; resolution error is returned only when no provider knows the city.
type FallbackProvider struct {
	providers []NetworkProvider
}

func NewFallbackProvider(providers ...NetworkProvider) *FallbackProvider {
	return &FallbackProvider{providers: providers}
}

func (provider *FallbackProvider) FetchNetwork(ctx context.Context, cityKey string) (*StreetNetwork, error) {
	var lastErr, resolutionErr error
	for _, p := range provider.providers {
		net, err := p.FetchNetwork(ctx, cityKey)
		if err == nil {
			return net, nil
		}
		if ctx.Err() != nil {
			return nil, err
		}
		var unknown *CityResolutionError
		if errors.As(err, &unknown) {
			if resolutionErr == nil {
				resolutionErr = err
			}
			continue
		}
		lastErr = err
	}
	switch {
	case lastErr != nil:
		return nil, lastErr
	case resolutionErr != nil:
		return nil, resolutionErr
	}
	return nil, &NetworkError{City: cityKey, Err: errors.New("no street network providers")}
}
