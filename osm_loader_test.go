package walkcover

import (
	"context"
	"strings"
	"testing"

	"github.com/paulmach/osm"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Two residential streets crossing at node 2, a footway attached to node 3,
// a private service road and a building outline
const sampleOSM = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6" generator="test">
  <node id="1" lat="55.7558" lon="37.6160"/>
  <node id="2" lat="55.7558" lon="37.6170"/>
  <node id="3" lat="55.7558" lon="37.6180"/>
  <node id="4" lat="55.7568" lon="37.6170"/>
  <node id="5" lat="55.7548" lon="37.6170"/>
  <node id="6" lat="55.7548" lon="37.6180"/>
  <node id="7" lat="55.7550" lon="37.6190"/>
  <node id="8" lat="55.7552" lon="37.6190"/>
  <node id="9" lat="55.7552" lon="37.6192"/>
  <way id="100">
    <nd ref="1"/>
    <nd ref="2"/>
    <nd ref="3"/>
    <tag k="highway" v="residential"/>
    <tag k="name" v="Main Street"/>
  </way>
  <way id="101">
    <nd ref="4"/>
    <nd ref="2"/>
    <nd ref="5"/>
    <tag k="highway" v="residential"/>
    <tag k="name" v="Cross Street"/>
  </way>
  <way id="102">
    <nd ref="3"/>
    <nd ref="6"/>
    <nd ref="404"/>
    <tag k="highway" v="footway"/>
  </way>
  <way id="103">
    <nd ref="6"/>
    <nd ref="7"/>
    <tag k="highway" v="service"/>
    <tag k="access" v="private"/>
  </way>
  <way id="104">
    <nd ref="7"/>
    <nd ref="8"/>
    <nd ref="9"/>
    <nd ref="7"/>
    <tag k="building" v="yes"/>
  </way>
</osm>`

func TestReadStreetsDrive(t *testing.T) {
	net, err := readStreetsOSM(context.Background(), "test_city", strings.NewReader(sampleOSM), "xml", NETWORK_DRIVE, zerolog.Nop())
	require.NoError(t, err)
	// Both residential ways are split at the shared node
	require.Equal(t, 4, net.Len())
	streets := net.Segments()
	assert.Equal(t, StreetID(1), streets[0].ID)
	assert.Equal(t, int64(100), streets[0].OSMWayID)
	assert.Equal(t, "Main Street", streets[0].Name)
	assert.Equal(t, "residential", streets[0].Highway)
	assert.Equal(t, int64(1), streets[0].SourceNode)
	assert.Equal(t, int64(2), streets[0].TargetNode)
	assert.Equal(t, int64(2), streets[1].SourceNode)
	assert.Equal(t, int64(3), streets[1].TargetNode)
	assert.Equal(t, int64(101), streets[2].OSMWayID)
	assert.Equal(t, int64(4), streets[2].SourceNode)
	assert.Equal(t, int64(2), streets[2].TargetNode)
	for _, street := range streets {
		assert.Len(t, street.Geom, 2)
		assert.Greater(t, street.Length, 0.0)
		assert.False(t, street.Covered)
	}
}

func TestReadStreetsWalk(t *testing.T) {
	net, err := readStreetsOSM(context.Background(), "test_city", strings.NewReader(sampleOSM), "xml", NETWORK_WALK, zerolog.Nop())
	require.NoError(t, err)
	// Residential ways and the footway; missing node 404 is dropped, private service road is excluded
	require.Equal(t, 5, net.Len())
	footway := net.Segments()[4]
	assert.Equal(t, int64(102), footway.OSMWayID)
	assert.Equal(t, "footway", footway.Highway)
	assert.Equal(t, int64(3), footway.SourceNode)
	assert.Equal(t, int64(6), footway.TargetNode)
}

func TestWayIsStreet(t *testing.T) {
	tests := []struct {
		tags        map[string]string
		networkType NetworkType
		expected    bool
	}{
		{map[string]string{"highway": "primary"}, NETWORK_DRIVE, true},
		{map[string]string{"highway": "footway"}, NETWORK_DRIVE, false},
		{map[string]string{"highway": "footway"}, NETWORK_WALK, true},
		{map[string]string{"highway": "motorway"}, NETWORK_WALK, false},
		{map[string]string{"highway": "cycleway", "foot": "designated"}, NETWORK_WALK, true},
		{map[string]string{"highway": "residential", "foot": "no"}, NETWORK_WALK, false},
		{map[string]string{"highway": "residential", "access": "private"}, NETWORK_DRIVE, false},
		{map[string]string{"highway": "pedestrian", "area": "yes"}, NETWORK_WALK, false},
		{map[string]string{"highway": "construction"}, NETWORK_DRIVE, false},
		{map[string]string{"building": "yes"}, NETWORK_WALK, false},
	}
	for i, tt := range tests {
		way := &wayData{Nodes: make([]osm.NodeID, 2)}
		for k, v := range tt.tags {
			way.TagMap = append(way.TagMap, osm.Tag{Key: k, Value: v})
		}
		way.processTags()
		assert.Equal(t, tt.expected, way.isStreet(tt.networkType), "case #%d: %v", i, tt.tags)
	}
}

func TestOSMExtension(t *testing.T) {
	kind, err := osmExtension("city.osm")
	require.NoError(t, err)
	assert.Equal(t, "xml", kind)
	kind, err = osmExtension("CITY.OSM.PBF")
	require.NoError(t, err)
	assert.Equal(t, "pbf", kind)
	_, err = osmExtension("city.geojson")
	assert.Error(t, err)
}

func TestParseNetworkType(t *testing.T) {
	networkType, err := ParseNetworkType("")
	require.NoError(t, err)
	assert.Equal(t, NETWORK_DRIVE, networkType)
	networkType, err = ParseNetworkType("Foot")
	require.NoError(t, err)
	assert.Equal(t, NETWORK_WALK, networkType)
	assert.Equal(t, "walk", networkType.String())
	_, err = ParseNetworkType("bike")
	assert.Error(t, err)
}
