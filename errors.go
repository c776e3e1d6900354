package walkcover

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrNoTracksFound is returned when ingestion produced no usable track at all
	ErrNoTracksFound = errors.New("no valid walking tracks found")
	// ErrCacheMiss is returned by ProfileCache implementations when there is no entry for the key
	ErrCacheMiss = errors.New("profile cache miss")
)

// InvalidTrackError describes track which can't be classified: malformed file, missing timestamps or coordinates
type InvalidTrackError struct {
	TrackID string
	Reason  string
	Err     error
}

func (e *InvalidTrackError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid track '%s': %s: %s", e.TrackID, e.Reason, e.Err.Error())
	}
	return fmt.Sprintf("invalid track '%s': %s", e.TrackID, e.Reason)
}

func (e *InvalidTrackError) Unwrap() error {
	return e.Err
}

// CityResolutionError is returned when city key does not match any known street network source
type CityResolutionError struct {
	Query       string
	Normalized  string
	Suggestions []string
}

func (e *CityResolutionError) Error() string {
	msg := fmt.Sprintf("can't resolve city '%s' (normalized: '%s')", e.Query, e.Normalized)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(". Did you mean: %s?", strings.Join(e.Suggestions, ", "))
	}
	return msg
}

// NetworkError wraps failures of fetching street data for a city
type NetworkError struct {
	City string
	Err  error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("can't fetch street network for '%s': %s", e.City, e.Err.Error())
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// CacheCorruptionError is returned when a cache entry exists but can't be decoded
type CacheCorruptionError struct {
	Key string
	Err error
}

func (e *CacheCorruptionError) Error() string {
	return fmt.Sprintf("corrupted cache entry '%s': %s", e.Key, e.Err.Error())
}

func (e *CacheCorruptionError) Unwrap() error {
	return e.Err
}
