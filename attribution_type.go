package walkcover

import (
	"fmt"
	"strings"
)

// AttributionPolicy decides which of the streets within buffer are credited for a walk point pair
type AttributionPolicy uint16

const (
	// ATTRIBUTION_INCLUSIVE credits every street within buffer distance
	ATTRIBUTION_INCLUSIVE = AttributionPolicy(iota + 1)
	// ATTRIBUTION_NEAREST credits the nearest street and those within tie tolerance of it
	ATTRIBUTION_NEAREST
	ATTRIBUTION_UNDEFINED = AttributionPolicy(0)
)

func (iotaIdx AttributionPolicy) String() string {
	return [...]string{"undefined", "inclusive", "nearest"}[iotaIdx]
}

// ParseAttributionPolicy parses policy name. Empty string gives ATTRIBUTION_INCLUSIVE.
func ParseAttributionPolicy(str string) (AttributionPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(str)) {
	case "", "inclusive":
		return ATTRIBUTION_INCLUSIVE, nil
	case "nearest":
		return ATTRIBUTION_NEAREST, nil
	default:
		return ATTRIBUTION_UNDEFINED, fmt.Errorf("Unknown attribution policy '%s'. Expected values: inclusive / nearest", str)
	}
}
