package walkcover

type HighwayType uint16

const (
	HIGHWAY_MOTORWAY = HighwayType(iota + 1)
	HIGHWAY_MOTORWAY_LINK
	HIGHWAY_TRUNK
	HIGHWAY_TRUNK_LINK
	HIGHWAY_PRIMARY
	HIGHWAY_PRIMARY_LINK
	HIGHWAY_SECONDARY
	HIGHWAY_SECONDARY_LINK
	HIGHWAY_TERTIARY
	HIGHWAY_TERTIARY_LINK
	HIGHWAY_RESIDENTIAL
	HIGHWAY_LIVING_STREET
	HIGHWAY_SERVICE
	HIGHWAY_CYCLEWAY
	HIGHWAY_FOOTWAY
	HIGHWAY_PEDESTRIAN
	HIGHWAY_PATH
	HIGHWAY_STEPS
	HIGHWAY_TRACK
	HIGHWAY_UNCLASSIFIED
	HIGHWAY_UNDEFINED = HighwayType(0)
)

func (iotaIdx HighwayType) String() string {
	return [...]string{"undefined", "motorway", "motorway_link", "trunk", "trunk_link", "primary", "primary_link", "secondary", "secondary_link", "tertiary", "tertiary_link", "residential", "living_street", "service", "cycleway", "footway", "pedestrian", "path", "steps", "track", "unclassified"}[iotaIdx]
}

func getHighwayType(str string) HighwayType {
	if found, ok := highwaysTypes[str]; ok {
		return found
	}
	return HIGHWAY_UNDEFINED
}

// StreetClass groups highway types for coverage reporting
type StreetClass uint16

const (
	STREET_CLASS_ARTERIAL = StreetClass(iota + 1)
	STREET_CLASS_COLLECTOR
	STREET_CLASS_LOCAL
	STREET_CLASS_PEDESTRIAN
	STREET_CLASS_OTHER
)

func (iotaIdx StreetClass) String() string {
	return [...]string{"arterial", "collector", "local", "pedestrian", "other"}[iotaIdx-1]
}

// Class returns reporting group of the highway type. Unknown values go to STREET_CLASS_OTHER.
func (iotaIdx HighwayType) Class() StreetClass {
	if class, ok := streetClassByHighway[iotaIdx]; ok {
		return class
	}
	return STREET_CLASS_OTHER
}

var (
	streetClassByHighway = map[HighwayType]StreetClass{
		HIGHWAY_MOTORWAY:       STREET_CLASS_ARTERIAL,
		HIGHWAY_MOTORWAY_LINK:  STREET_CLASS_ARTERIAL,
		HIGHWAY_TRUNK:          STREET_CLASS_ARTERIAL,
		HIGHWAY_TRUNK_LINK:     STREET_CLASS_ARTERIAL,
		HIGHWAY_PRIMARY:        STREET_CLASS_ARTERIAL,
		HIGHWAY_PRIMARY_LINK:   STREET_CLASS_ARTERIAL,
		HIGHWAY_SECONDARY:      STREET_CLASS_COLLECTOR,
		HIGHWAY_SECONDARY_LINK: STREET_CLASS_COLLECTOR,
		HIGHWAY_TERTIARY:       STREET_CLASS_COLLECTOR,
		HIGHWAY_TERTIARY_LINK:  STREET_CLASS_COLLECTOR,
		HIGHWAY_RESIDENTIAL:    STREET_CLASS_LOCAL,
		HIGHWAY_LIVING_STREET:  STREET_CLASS_LOCAL,
		HIGHWAY_SERVICE:        STREET_CLASS_LOCAL,
		HIGHWAY_UNCLASSIFIED:   STREET_CLASS_LOCAL,
		HIGHWAY_FOOTWAY:        STREET_CLASS_PEDESTRIAN,
		HIGHWAY_PEDESTRIAN:     STREET_CLASS_PEDESTRIAN,
		HIGHWAY_PATH:           STREET_CLASS_PEDESTRIAN,
		HIGHWAY_STEPS:          STREET_CLASS_PEDESTRIAN,
		HIGHWAY_CYCLEWAY:       STREET_CLASS_OTHER,
		HIGHWAY_TRACK:          STREET_CLASS_OTHER,
	}

	highwaysTypes = map[string]HighwayType{
		"motorway":       HIGHWAY_MOTORWAY,
		"motorway_link":  HIGHWAY_MOTORWAY_LINK,
		"trunk":          HIGHWAY_TRUNK,
		"trunk_link":     HIGHWAY_TRUNK_LINK,
		"primary":        HIGHWAY_PRIMARY,
		"primary_link":   HIGHWAY_PRIMARY_LINK,
		"secondary":      HIGHWAY_SECONDARY,
		"secondary_link": HIGHWAY_SECONDARY_LINK,
		"tertiary":       HIGHWAY_TERTIARY,
		"tertiary_link":  HIGHWAY_TERTIARY_LINK,
		"residential":    HIGHWAY_RESIDENTIAL,
		"living_street":  HIGHWAY_LIVING_STREET,
		"service":        HIGHWAY_SERVICE,
		"cycleway":       HIGHWAY_CYCLEWAY,
		"footway":        HIGHWAY_FOOTWAY,
		"pedestrian":     HIGHWAY_PEDESTRIAN,
		"path":           HIGHWAY_PATH,
		"steps":          HIGHWAY_STEPS,
		"track":          HIGHWAY_TRACK,
		"unclassified":   HIGHWAY_UNCLASSIFIED,
	}
)
