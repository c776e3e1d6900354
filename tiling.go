package walkcover

import (
	"sort"

	"github.com/golang/geo/s2"
	"github.com/paulmach/orb"
)

const (
	// DefaultTileLevel is S2 cell level of matching tiles (about a kilometer across)
	DefaultTileLevel = 13
	// tileMargin is extra padding (meters) of a tile bound on top of buffer distance
	tileMargin = 1.0
)

// WalkPair is two consecutive points of a walk
type WalkPair struct {
	WalkID string
	A      orb.Point
	B      orb.Point
}

// Tile is a unit of parallel matching: walk pairs starting inside one S2 cell and the streets around them
type Tile struct {
	CellID s2.CellID
	// Bound is cell bound extended by member pairs and padded by buffer distance
	Bound      orb.Bound
	Pairs      []WalkPair
	Candidates []StreetID
}

// Token returns S2 token of the tile cell
func (tile *Tile) Token() string {
	return tile.CellID.ToToken()
}

func cellIDOf(pt orb.Point, level int) s2.CellID {
	return s2.CellIDFromLatLng(s2.LatLngFromDegrees(pt.Lat(), pt.Lon())).Parent(level)
}

func cellBound(id s2.CellID) orb.Bound {
	rect := s2.CellFromCellID(id).RectBound()
	return orb.Bound{
		Min: orb.Point{rect.Lo().Lng.Degrees(), rect.Lo().Lat.Degrees()},
		Max: orb.Point{rect.Hi().Lng.Degrees(), rect.Hi().Lat.Degrees()},
	}
}

// Tiles assigns every walk pair to the tile of its first point. Tiles are ordered by cell id.
func (matcher *Matcher) Tiles(walks []WalkSegment, level int) []Tile {
	if level < 0 || level > s2.MaxLevel {
		level = DefaultTileLevel
	}
	byCell := make(map[s2.CellID]*Tile)
	for i := range walks {
		line := walks[i].Line()
		for j := 1; j < len(line); j++ {
			a, b := line[j-1], line[j]
			id := cellIDOf(a, level)
			tile, ok := byCell[id]
			if !ok {
				tile = &Tile{CellID: id, Bound: cellBound(id)}
				byCell[id] = tile
			}
			tile.Pairs = append(tile.Pairs, WalkPair{WalkID: walks[i].ID, A: a, B: b})
			tile.Bound = tile.Bound.Union(pairBound(a, b))
		}
	}
	tiles := make([]Tile, 0, len(byCell))
	for _, tile := range byCell {
		tile.Bound = padBound(tile.Bound, matcher.bufferDistance+tileMargin)
		tile.Candidates = matcher.network.Search(tile.Bound)
		tiles = append(tiles, *tile)
	}
	sort.Slice(tiles, func(i, j int) bool { return tiles[i].CellID < tiles[j].CellID })
	return tiles
}
