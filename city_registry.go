package walkcover

import (
	"sort"
)

// CitySource tells where street data of a city comes from
type CitySource struct {
	// Key is normalized city key
	Key     string
	Name    string
	Aliases []string
	// OSMFile is path to *.osm / *.osm.pbf extract. Has priority over OverpassArea
	OSMFile string
	// OverpassArea is value of `name` tag of the administrative boundary to query
	OverpassArea string
}

// CityRegistry resolves user provided city names to known street data sources
type CityRegistry struct {
	sources map[string]CitySource
	aliases map[string]string
}

// NewCityRegistry creates registry. Keys and aliases are normalized on insertion.
func NewCityRegistry(sources ...CitySource) *CityRegistry {
	registry := &CityRegistry{
		sources: make(map[string]CitySource, len(sources)),
		aliases: make(map[string]string),
	}
	for _, source := range sources {
		registry.Add(source)
	}
	return registry
}

// Add registers (or replaces) city source
func (registry *CityRegistry) Add(source CitySource) {
	if source.Key == "" {
		source.Key = source.Name
	}
	source.Key = NormalizeCityKey(source.Key)
	if source.Name == "" {
		source.Name = source.Key
	}
	registry.sources[source.Key] = source
	for _, alias := range source.Aliases {
		registry.aliases[NormalizeCityKey(alias)] = source.Key
	}
}

// Resolve finds city source by name, key or alias. Returns *CityResolutionError with suggestions when nothing matches.
func (registry *CityRegistry) Resolve(query string) (CitySource, error) {
	normalized := NormalizeCityKey(query)
	if source, ok := registry.sources[normalized]; ok {
		return source, nil
	}
	if key, ok := registry.aliases[normalized]; ok {
		return registry.sources[key], nil
	}
	return CitySource{}, &CityResolutionError{
		Query:       query,
		Normalized:  normalized,
		Suggestions: suggestCityKeys(normalized, registry.Keys()),
	}
}

// Keys returns sorted normalized keys of registered cities
func (registry *CityRegistry) Keys() []string {
	keys := make([]string, 0, len(registry.sources))
	for key := range registry.sources {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
