package walkcover

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

const profilesSchema = `CREATE TABLE IF NOT EXISTS city_profiles (
	city_key    TEXT PRIMARY KEY,
	profile     TEXT NOT NULL,
	computed_at INTEGER NOT NULL
)`

// SQLiteProfileCache keeps city profiles in SQLite database, one row per city
type SQLiteProfileCache struct {
	db *sql.DB
}

// OpenSQLiteProfileCache opens (or creates) database file and prepares schema
func OpenSQLiteProfileCache(ctx context.Context, path string) (*SQLiteProfileCache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "Can't open database")
	}
	db.SetMaxOpenConns(1)
	if _, err = db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "Can't enable WAL")
	}
	if _, err = db.ExecContext(ctx, profilesSchema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "Can't prepare schema")
	}
	return &SQLiteProfileCache{db: db}, nil
}

func (cache *SQLiteProfileCache) Get(ctx context.Context, cityKey string) (*CityProfile, error) {
	var blob string
	err := cache.db.QueryRowContext(ctx, "SELECT profile FROM city_profiles WHERE city_key = ?", cityKey).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, errors.Wrap(err, "Can't query profile")
	}
	profile := CityProfile{}
	if err := json.Unmarshal([]byte(blob), &profile); err != nil {
		return nil, &CacheCorruptionError{Key: cityKey, Err: err}
	}
	if profile.CityKey != cityKey {
		return nil, &CacheCorruptionError{Key: cityKey, Err: errors.Errorf("entry belongs to '%s'", profile.CityKey)}
	}
	return &profile, nil
}

func (cache *SQLiteProfileCache) Put(ctx context.Context, profile *CityProfile) error {
	blob, err := json.Marshal(profile)
	if err != nil {
		return errors.Wrap(err, "Can't marshal profile")
	}
	computedAt := profile.ComputedAt
	if computedAt.IsZero() {
		computedAt = time.Now()
	}
	_, err = cache.db.ExecContext(ctx,
		`INSERT INTO city_profiles (city_key, profile, computed_at) VALUES (?, ?, ?)
		ON CONFLICT(city_key) DO UPDATE SET profile = excluded.profile, computed_at = excluded.computed_at`,
		profile.CityKey, string(blob), computedAt.Unix(),
	)
	if err != nil {
		return errors.Wrap(err, "Can't store profile")
	}
	return nil
}

func (cache *SQLiteProfileCache) Delete(ctx context.Context, cityKey string) error {
	_, err := cache.db.ExecContext(ctx, "DELETE FROM city_profiles WHERE city_key = ?", cityKey)
	if err != nil {
		return errors.Wrap(err, "Can't delete profile")
	}
	return nil
}

// Close closes underlying database
func (cache *SQLiteProfileCache) Close() error {
	return cache.db.Close()
}
