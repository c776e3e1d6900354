package walkcover

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// OSMScanner is common interface of osmxml and osmpbf scanners
type OSMScanner interface {
	Scan() bool
	Close() error
	Err() error
	Object() osm.Object
}

type osmNode struct {
	ID       osm.NodeID
	Point    orb.Point
	useCount int
}

// osmExtension returns scanner kind for file name: "xml" or "pbf"
func osmExtension(filename string) (string, error) {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".osm"), strings.HasSuffix(lower, ".xml"):
		return "xml", nil
	case strings.HasSuffix(lower, ".pbf"):
		return "pbf", nil
	default:
		return "", fmt.Errorf("File extension for file '%s' is not handled yet", filename)
	}
}

func newOSMScanner(ctx context.Context, kind string, r io.Reader) (OSMScanner, error) {
	switch kind {
	case "xml":
		return osmxml.New(ctx, r), nil
	case "pbf":
		return osmpbf.New(ctx, r, 4), nil
	default:
		return nil, fmt.Errorf("Unknown OSM scanner kind '%s'", kind)
	}
}

// readStreetsOSM builds street network from OSM data: ways are scanned first, then nodes referenced by kept ways.
// Ways are split into street segments at nodes shared by several ways.
func readStreetsOSM(ctx context.Context, city string, file io.ReadSeeker, kind string, networkType NetworkType, logger zerolog.Logger) (*StreetNetwork, error) {
	/* Process ways */
	st := time.Now()
	ways := []*wayData{}
	nodesSeen := make(map[osm.NodeID]struct{})
	{
		scannerWays, err := newOSMScanner(ctx, kind, file)
		if err != nil {
			return nil, err
		}
		defer scannerWays.Close()
		for scannerWays.Scan() {
			obj := scannerWays.Object()
			if obj.ObjectID().Type() != "way" {
				continue
			}
			way := obj.(*osm.Way)
			preparedWay := &wayData{
				ID:     way.ID,
				Nodes:  make([]osm.NodeID, 0, len(way.Nodes)),
				TagMap: make(osm.Tags, len(way.Tags)),
			}
			copy(preparedWay.TagMap, way.Tags)
			for _, node := range way.Nodes {
				preparedWay.Nodes = append(preparedWay.Nodes, node.ID)
			}
			preparedWay.processTags()
			if !preparedWay.isStreet(networkType) {
				continue
			}
			for _, nodeID := range preparedWay.Nodes {
				nodesSeen[nodeID] = struct{}{}
			}
			ways = append(ways, preparedWay)
		}
		if err := scannerWays.Err(); err != nil {
			return nil, errors.Wrap(err, "Scanner error on ways")
		}
	}
	logger.Debug().Str("city", city).Int("ways", len(ways)).Dur("elapsed", time.Since(st)).Msg("Ways scanned")

	// Seek file to start
	_, err := file.Seek(0, io.SeekStart)
	if err != nil {
		return nil, errors.Wrap(err, "Can't repeat seeking after ways scanning")
	}

	/* Process nodes */
	st = time.Now()
	nodes := make(map[osm.NodeID]*osmNode, len(nodesSeen))
	{
		scannerNodes, err := newOSMScanner(ctx, kind, file)
		if err != nil {
			return nil, err
		}
		defer scannerNodes.Close()
		for scannerNodes.Scan() {
			obj := scannerNodes.Object()
			if obj.ObjectID().Type() != "node" {
				continue
			}
			node := obj.(*osm.Node)
			if _, ok := nodesSeen[node.ID]; ok {
				delete(nodesSeen, node.ID)
				nodes[node.ID] = &osmNode{
					ID:    node.ID,
					Point: orb.Point{node.Lon, node.Lat},
				}
			}
		}
		if err := scannerNodes.Err(); err != nil {
			return nil, errors.Wrap(err, "Scanner error on nodes")
		}
	}
	logger.Debug().Str("city", city).Int("nodes", len(nodes)).Dur("elapsed", time.Since(st)).Msg("Nodes scanned")
	if len(nodesSeen) > 0 {
		logger.Warn().Str("city", city).Int("missing_nodes", len(nodesSeen)).Msg("Some way nodes are absent in the extract, skipping them")
	}

	segments := prepareStreetSegments(ways, nodes)
	logger.Debug().Str("city", city).Int("segments", len(segments)).Msg("Street segments prepared")
	return NewStreetNetwork(city, segments)
}

// prepareStreetSegments splits ways at intersections. Identifiers are sequential in ways order.
func prepareStreetSegments(ways []*wayData, nodes map[osm.NodeID]*osmNode) []*StreetSegment {
	// Drop references to missing nodes
	for _, way := range ways {
		kept := way.Nodes[:0]
		for _, nodeID := range way.Nodes {
			if _, ok := nodes[nodeID]; ok {
				kept = append(kept, nodeID)
			}
		}
		way.Nodes = kept
	}

	// Counting node use cases
	for _, way := range ways {
		for i, nodeID := range way.Nodes {
			node := nodes[nodeID]
			if i == 0 || i == len(way.Nodes)-1 {
				node.useCount += 2
			} else {
				node.useCount++
			}
		}
	}

	segments := []*StreetSegment{}
	nextID := StreetID(1)
	for _, way := range ways {
		if len(way.Nodes) < 2 {
			continue
		}
		source := way.Nodes[0]
		geometry := orb.LineString{nodes[source].Point}
		for i := 1; i < len(way.Nodes); i++ {
			node := nodes[way.Nodes[i]]
			geometry = append(geometry, node.Point)
			if node.useCount > 1 || i == len(way.Nodes)-1 {
				segment := NewStreetSegment(nextID, geometry)
				segment.OSMWayID = int64(way.ID)
				segment.Name = way.name
				segment.Highway = way.highway
				segment.SourceNode = int64(source)
				segment.TargetNode = int64(node.ID)
				segments = append(segments, segment)
				nextID++
				source = node.ID
				geometry = orb.LineString{node.Point}
			}
		}
	}
	return segments
}
