package walkcover

import (
	"fmt"
	"strings"
)

// NetworkType selects which OSM ways are treated as streets
type NetworkType uint16

const (
	NETWORK_DRIVE = NetworkType(iota + 1)
	NETWORK_WALK
	NETWORK_UNDEFINED = NetworkType(0)
)

func (iotaIdx NetworkType) String() string {
	return [...]string{"undefined", "drive", "walk"}[iotaIdx]
}

// ParseNetworkType parses network type name
func ParseNetworkType(str string) (NetworkType, error) {
	switch strings.ToLower(strings.TrimSpace(str)) {
	case "", "drive", "auto":
		return NETWORK_DRIVE, nil
	case "walk", "foot":
		return NETWORK_WALK, nil
	default:
		return NETWORK_UNDEFINED, fmt.Errorf("Unknown network type '%s'. Expected values: drive / walk", str)
	}
}

// AccessType is OSM tag which restricts access for an agent
type AccessType uint16

const (
	ACCESS_HIGHWAY = AccessType(iota + 1)
	ACCESS_MOTOR_VEHICLE
	ACCESS_MOTORCAR
	ACCESS_OSM_ACCESS
	ACCESS_SERVICE
	ACCESS_FOOT
)

func (iotaIdx AccessType) String() string {
	return [...]string{"highway", "motor_vehicle", "motorcar", "access", "service", "foot"}[iotaIdx-1]
}

var (
	networkAccessIncludeValues = map[NetworkType]map[AccessType]map[string]struct{}{
		NETWORK_DRIVE: {
			ACCESS_MOTOR_VEHICLE: {
				"yes": struct{}{},
			},
			ACCESS_MOTORCAR: {
				"yes": struct{}{},
			},
		},
		NETWORK_WALK: {
			ACCESS_FOOT: {
				"yes":        struct{}{},
				"designated": struct{}{},
			},
		},
	}

	networkAccessExcludeValues = map[NetworkType]map[AccessType]map[string]struct{}{
		NETWORK_DRIVE: {
			ACCESS_HIGHWAY: {
				"cycleway":      struct{}{},
				"footway":       struct{}{},
				"pedestrian":    struct{}{},
				"steps":         struct{}{},
				"track":         struct{}{},
				"corridor":      struct{}{},
				"elevator":      struct{}{},
				"escalator":     struct{}{},
				"path":          struct{}{},
				"bridleway":     struct{}{},
				"service":       struct{}{},
				"living_street": struct{}{},
			},
			ACCESS_MOTOR_VEHICLE: {
				"no": struct{}{},
			},
			ACCESS_MOTORCAR: {
				"no": struct{}{},
			},
			ACCESS_OSM_ACCESS: {
				"private": struct{}{},
				"no":      struct{}{},
			},
			ACCESS_SERVICE: {
				"parking":          struct{}{},
				"parking_aisle":    struct{}{},
				"driveway":         struct{}{},
				"private":          struct{}{},
				"emergency_access": struct{}{},
			},
		},
		NETWORK_WALK: {
			ACCESS_HIGHWAY: {
				"cycleway":      struct{}{},
				"motor":         struct{}{},
				"motorway":      struct{}{},
				"motorway_link": struct{}{},
				"trunk":         struct{}{},
				"trunk_link":    struct{}{},
			},
			ACCESS_FOOT: {
				"no": struct{}{},
			},
			ACCESS_SERVICE: {
				"private": struct{}{},
			},
			ACCESS_OSM_ACCESS: {
				"private": struct{}{},
				"no":      struct{}{},
			},
		},
	}
)
