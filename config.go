package walkcover

import (
	"os"
	"runtime"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type DataConfig struct {
	TracksDir string `yaml:"tracks" validate:"required"`
	OutputDir string `yaml:"output" validate:"required"`
	CacheDir  string `yaml:"cache" validate:"required"`
}

type CityConfig struct {
	Key          string   `yaml:"key" validate:"required"`
	Name         string   `yaml:"name"`
	Aliases      []string `yaml:"aliases"`
	OSMFile      string   `yaml:"osm_file"`
	OverpassArea string   `yaml:"overpass_area"`
}

type OverpassConfig struct {
	Enabled bool          `yaml:"enabled"`
	URL     string        `yaml:"url" validate:"omitempty,url"`
	Timeout time.Duration `yaml:"timeout" validate:"gte=0"`
}

type NetworkConfig struct {
	// Type is "drive" or "walk"
	Type string `yaml:"type" validate:"omitempty,oneof=drive auto walk foot"`
	// PreferCache serves disk cached street networks without asking upstream
	PreferCache bool `yaml:"prefer_cache"`
}

type ClassifierConfig struct {
	GapThreshold       time.Duration `yaml:"gap_threshold" validate:"gt=0"`
	GPSErrorSpeed      float64       `yaml:"gps_error_speed" validate:"gt=0"`
	MinDistance        float64       `yaml:"min_distance" validate:"gte=0"`
	MinDuration        time.Duration `yaml:"min_duration" validate:"gte=0"`
	StationaryDistance float64       `yaml:"stationary_distance" validate:"gte=0"`
}

type MatcherConfig struct {
	Attribution  string  `yaml:"attribution" validate:"omitempty,oneof=inclusive nearest"`
	TieTolerance float64 `yaml:"tie_tolerance" validate:"gte=0"`
	Tiling       bool    `yaml:"tiling"`
	TileLevel    int     `yaml:"tile_level" validate:"gte=0,lte=30"`
	Workers      int     `yaml:"workers" validate:"gte=0"`
}

type AnalysisConfig struct {
	GridAngleTolerance float64 `yaml:"grid_angle_tolerance" validate:"gt=0,lt=90"`
}

type CacheConfig struct {
	TTL        time.Duration `yaml:"ttl" validate:"gte=0"`
	SQLitePath string        `yaml:"sqlite_path"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=trace debug info warn error"`
	Pretty bool   `yaml:"pretty"`
}

// Config is run configuration of the pipeline and the command line tool
type Config struct {
	Data       DataConfig       `yaml:"data"`
	Cities     []CityConfig     `yaml:"cities" validate:"dive"`
	Overpass   OverpassConfig   `yaml:"overpass"`
	Network    NetworkConfig    `yaml:"network"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Matcher    MatcherConfig    `yaml:"matcher"`
	Analysis   AnalysisConfig   `yaml:"analysis"`
	Cache      CacheConfig      `yaml:"cache"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// DefaultConfig returns configuration used for every omitted field
func DefaultConfig() Config {
	classifier := DefaultClassifierParams()
	return Config{
		Data: DataConfig{
			TracksDir: "data/tracks",
			OutputDir: "data/processed",
			CacheDir:  "data/cache",
		},
		Overpass: OverpassConfig{
			Enabled: true,
			URL:     DefaultOverpassURL,
			Timeout: 180 * time.Second,
		},
		Network: NetworkConfig{
			Type: "drive",
		},
		Classifier: ClassifierConfig{
			GapThreshold:       classifier.GapThreshold,
			GPSErrorSpeed:      classifier.GPSErrorSpeed,
			MinDistance:        classifier.MinDistance,
			MinDuration:        classifier.MinDuration,
			StationaryDistance: classifier.StationaryDistance,
		},
		Matcher: MatcherConfig{
			Attribution:  ATTRIBUTION_INCLUSIVE.String(),
			TieTolerance: DefaultTieTolerance,
			Tiling:       true,
			TileLevel:    DefaultTileLevel,
			Workers:      runtime.NumCPU(),
		},
		Analysis: AnalysisConfig{
			GridAngleTolerance: DefaultGridAngleTolerance,
		},
		Cache: CacheConfig{
			TTL:        DefaultProfileTTL,
			SQLitePath: "data/cache/profiles.db",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig reads YAML file on top of DefaultConfig and validates the result.
// Empty path gives validated defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrapf(err, "Can't read config file '%s'", path)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, errors.Wrapf(err, "Can't parse config file '%s'", path)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks struct constraints of every section
func (cfg *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return errors.Wrap(err, "Invalid configuration")
	}
	return nil
}

// ClassifierParams returns base classifier thresholds. Speed and sinuosity limits are overridden by a CityProfile.
func (cfg *Config) ClassifierParams() ClassifierParams {
	params := DefaultClassifierParams()
	params.GapThreshold = cfg.Classifier.GapThreshold
	params.GPSErrorSpeed = cfg.Classifier.GPSErrorSpeed
	params.MinDistance = cfg.Classifier.MinDistance
	params.MinDuration = cfg.Classifier.MinDuration
	params.StationaryDistance = cfg.Classifier.StationaryDistance
	return params
}

// Registry builds city registry from configured cities
func (cfg *Config) Registry() *CityRegistry {
	registry := NewCityRegistry()
	for _, city := range cfg.Cities {
		registry.Add(CitySource{
			Key:          city.Key,
			Name:         city.Name,
			Aliases:      city.Aliases,
			OSMFile:      city.OSMFile,
			OverpassArea: city.OverpassArea,
		})
	}
	return registry
}
