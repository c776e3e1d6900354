package walkcover

import (
	"github.com/paulmach/osm"
)

// wayData is flattened OSM way with tags needed for street filtering
type wayData struct {
	ID           osm.WayID
	Nodes        []osm.NodeID
	TagMap       osm.Tags
	name         string
	highway      string
	area         string
	motorVehicle string
	motorcar     string
	access       string
	service      string
	foot         string
}

var (
	// Ways having these `highway` values are never streets
	negligibleHighwayTags = map[string]struct{}{
		"construction": {},
		"proposed":     {},
		"raceway":      {},
		"rest_area":    {},
		"su":           {},
		"road":         {},
		"abandoned":    {},
		"planned":      {},
		"trailhead":    {},
		"stairs":       {},
		"dismantled":   {},
		"disused":      {},
		"razed":        {},
		"access":       {},
		"stop":         {},
		"bus_stop":     {},
		"platform":     {},
	}
)

func (way *wayData) processTags() {
	way.name = way.TagMap.Find("name")
	way.highway = way.TagMap.Find("highway")
	way.area = way.TagMap.Find("area")
	way.motorVehicle = way.TagMap.Find("motor_vehicle")
	way.motorcar = way.TagMap.Find("motorcar")
	way.access = way.TagMap.Find("access")
	way.service = way.TagMap.Find("service")
	way.foot = way.TagMap.Find("foot")
}

func (way *wayData) isHighway() bool {
	return way.highway != ""
}

func (way *wayData) isHighwayNegligible() bool {
	_, ok := negligibleHighwayTags[way.highway]
	return ok
}

// isArea is true for closed pedestrian squares and similar polygons tagged as highway
func (way *wayData) isArea() bool {
	return way.area == "yes"
}

func (way *wayData) findIncluded(networkType NetworkType) bool {
	accessType, ok := networkAccessIncludeValues[networkType]
	if !ok {
		return false
	}
	switch networkType {
	case NETWORK_DRIVE:
		if _, ok := accessType[ACCESS_MOTOR_VEHICLE][way.motorVehicle]; ok {
			return true
		}
		if _, ok := accessType[ACCESS_MOTORCAR][way.motorcar]; ok {
			return true
		}
	case NETWORK_WALK:
		if _, ok := accessType[ACCESS_FOOT][way.foot]; ok {
			return true
		}
	default:
		return false
	}
	return false
}

// findExcluded returns false when some tag forbids the network type
func (way *wayData) findExcluded(networkType NetworkType) bool {
	accessType, ok := networkAccessExcludeValues[networkType]
	if !ok {
		return true
	}
	switch networkType {
	case NETWORK_DRIVE:
		if _, ok := accessType[ACCESS_HIGHWAY][way.highway]; ok {
			return false
		}
		if _, ok := accessType[ACCESS_MOTOR_VEHICLE][way.motorVehicle]; ok {
			return false
		}
		if _, ok := accessType[ACCESS_MOTORCAR][way.motorcar]; ok {
			return false
		}
		if _, ok := accessType[ACCESS_OSM_ACCESS][way.access]; ok {
			return false
		}
		if _, ok := accessType[ACCESS_SERVICE][way.service]; ok {
			return false
		}
	case NETWORK_WALK:
		if _, ok := accessType[ACCESS_HIGHWAY][way.highway]; ok {
			return false
		}
		if _, ok := accessType[ACCESS_FOOT][way.foot]; ok {
			return false
		}
		if _, ok := accessType[ACCESS_SERVICE][way.service]; ok {
			return false
		}
		if _, ok := accessType[ACCESS_OSM_ACCESS][way.access]; ok {
			return false
		}
	default:
		return true
	}
	return true
}

// isStreet tells whether the way belongs to the street network of given type
func (way *wayData) isStreet(networkType NetworkType) bool {
	if !way.isHighway() || way.isHighwayNegligible() || way.isArea() {
		return false
	}
	if len(way.Nodes) < 2 {
		return false
	}
	if way.findIncluded(networkType) {
		return true
	}
	return way.findExcluded(networkType)
}
