package walkcover

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry(osmFile string) *CityRegistry {
	return NewCityRegistry(
		CitySource{Key: "test_city", Name: "Test City", Aliases: []string{"testville"}, OSMFile: osmFile, OverpassArea: "Testville"},
	)
}

func TestOSMFileProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.osm")
	writeFile(t, path, sampleOSM)
	provider := NewOSMFileProvider(testRegistry(path), NETWORK_UNDEFINED, zerolog.Nop())

	net, err := provider.FetchNetwork(context.Background(), "Testville")
	require.NoError(t, err)
	assert.Equal(t, "test_city", net.City)
	assert.Equal(t, 4, net.Len(), "drive network is the default")

	_, err = provider.FetchNetwork(context.Background(), "atlantis")
	var resolutionErr *CityResolutionError
	assert.True(t, errors.As(err, &resolutionErr))

	missing := NewOSMFileProvider(testRegistry(filepath.Join(t.TempDir(), "missing.osm")), NETWORK_DRIVE, zerolog.Nop())
	_, err = missing.FetchNetwork(context.Background(), "test_city")
	var networkErr *NetworkError
	assert.True(t, errors.As(err, &networkErr))
}

func TestOverpassProvider(t *testing.T) {
	queries := make(chan string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		queries <- r.FormValue("data")
		w.Header().Set("Content-Type", "application/osm3s+xml")
		_, _ = w.Write([]byte(sampleOSM))
	}))
	defer server.Close()

	provider := NewOverpassProvider(testRegistry(""),
		WithOverpassEndpoint(server.URL),
		WithOverpassTimeout(25*time.Second),
		WithOverpassNetworkType(NETWORK_WALK),
	)
	net, err := provider.FetchNetwork(context.Background(), "test_city")
	require.NoError(t, err)
	assert.Equal(t, 5, net.Len())
	query := <-queries
	assert.Contains(t, query, `area["name"="Testville"]`)
	assert.Contains(t, query, "[timeout:25]")
}

func TestOverpassProviderFailures(t *testing.T) {
	busy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer busy.Close()
	_, err := NewOverpassProvider(testRegistry(""), WithOverpassEndpoint(busy.URL)).FetchNetwork(context.Background(), "test_city")
	var networkErr *NetworkError
	require.True(t, errors.As(err, &networkErr))
	assert.Contains(t, err.Error(), "429")

	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><osm version="0.6"></osm>`))
	}))
	defer empty.Close()
	_, err = NewOverpassProvider(testRegistry(""), WithOverpassEndpoint(empty.URL)).FetchNetwork(context.Background(), "test_city")
	require.True(t, errors.As(err, &networkErr), "empty response is a network error")
}

func TestOverpassProviderUnregisteredCity(t *testing.T) {
	queries := make(chan string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries <- r.FormValue("data")
		_, _ = w.Write([]byte(sampleOSM))
	}))
	defer server.Close()

	provider := NewOverpassProvider(NewCityRegistry(), WithOverpassEndpoint(server.URL))
	net, err := provider.FetchNetwork(context.Background(), "Berlin")
	require.NoError(t, err)
	assert.Equal(t, "berlin", net.City)
	assert.Equal(t, 4, net.Len())
	assert.Contains(t, <-queries, `area["name"="Berlin"]`)

	_, err = provider.FetchNetwork(context.Background(), "new_york")
	require.NoError(t, err)
	assert.Contains(t, <-queries, `area["name"="New York"]`)
}

func TestOverpassProviderUnknownArea(t *testing.T) {
	var requests int32
	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><osm version="0.6"></osm>`))
	}))
	defer empty.Close()

	_, err := NewOverpassProvider(testRegistry(""), WithOverpassEndpoint(empty.URL)).FetchNetwork(context.Background(), "Test Cty")
	var resolutionErr *CityResolutionError
	require.True(t, errors.As(err, &resolutionErr))
	assert.Equal(t, "test_cty", resolutionErr.Normalized)
	assert.Equal(t, []string{"test_city"}, resolutionErr.Suggestions)
	assert.Equal(t, int32(1), atomic.LoadInt32(&requests))
}

func TestOverpassQueryEscapes(t *testing.T) {
	query := overpassQuery(`Saint "Quoted" City`, time.Minute)
	assert.Contains(t, query, `"name"="Saint \"Quoted\" City"`)
	assert.True(t, strings.HasPrefix(query, "[out:xml][timeout:60];"))
}

func TestCachedProvider(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	upstream := &fakeProvider{net: parallelStreets(t)}
	provider := NewCachedProvider(upstream, dir)

	net, err := provider.FetchNetwork(ctx, "Test City")
	require.NoError(t, err)
	assert.Equal(t, 2, net.Len())
	_, err = os.Stat(filepath.Join(dir, "test_city_streets.geojson"))
	require.NoError(t, err)

	// Upstream goes down: network is served from disk
	upstream.err = &NetworkError{City: "test_city", Err: errors.New("offline")}
	cached, err := provider.FetchNetwork(ctx, "test_city")
	require.NoError(t, err)
	require.Equal(t, 2, cached.Len())
	original, _ := net.Segment(1)
	restored, _ := cached.Segment(1)
	assert.Equal(t, original.Geom, restored.Geom)
	assert.Equal(t, original.Highway, restored.Highway)
	assert.InDelta(t, original.Length, restored.Length, 1e-9)

	// Unknown city is never masked by the cache
	_, err = provider.FetchNetwork(ctx, "atlantis")
	var resolutionErr *CityResolutionError
	assert.True(t, errors.As(err, &resolutionErr))

	// Nothing cached and upstream is down
	_, err = provider.FetchNetwork(ctx, "oslo")
	var networkErr *NetworkError
	assert.True(t, errors.As(err, &networkErr))

	// Prefer cache skips upstream
	calls := upstream.Calls()
	preferred := NewCachedProvider(upstream, dir, WithPreferCache(true))
	_, err = preferred.FetchNetwork(ctx, "test_city")
	require.NoError(t, err)
	assert.Equal(t, calls, upstream.Calls())
}

func TestFallbackProvider(t *testing.T) {
	ctx := context.Background()
	failing := &fakeProvider{err: &NetworkError{City: "test_city", Err: errors.New("no file")}}
	working := &fakeProvider{net: parallelStreets(t)}

	net, err := NewFallbackProvider(failing, working).FetchNetwork(ctx, "test_city")
	require.NoError(t, err)
	assert.Equal(t, 2, net.Len())
	assert.Equal(t, 1, failing.Calls())

	_, err = NewFallbackProvider(failing, failing).FetchNetwork(ctx, "test_city")
	var networkErr *NetworkError
	assert.True(t, errors.As(err, &networkErr))

	// City unknown to the first provider is asked from the next one
	unknown := &fakeProvider{err: &CityResolutionError{Query: "test_city", Normalized: "test_city"}}
	net, err = NewFallbackProvider(unknown, working).FetchNetwork(ctx, "test_city")
	require.NoError(t, err)
	assert.Equal(t, 2, net.Len())

	// Known city that can't be fetched is a network error, not an unknown one
	_, err = NewFallbackProvider(unknown, failing).FetchNetwork(ctx, "test_city")
	assert.True(t, errors.As(err, &networkErr))

	calls := working.Calls()
	_, err = NewFallbackProvider(failing, working).FetchNetwork(ctx, "atlantis")
	var resolutionErr *CityResolutionError
	assert.True(t, errors.As(err, &resolutionErr))
	assert.Equal(t, calls+1, working.Calls())

	_, err = NewFallbackProvider().FetchNetwork(ctx, "test_city")
	assert.True(t, errors.As(err, &networkErr))
}
