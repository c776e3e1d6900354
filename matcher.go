package walkcover

import (
	"context"
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/rs/zerolog"
	"github.com/tidwall/rtree"
	"golang.org/x/sync/errgroup"
)

// DefaultTieTolerance is max distance difference (meters) between nearest street and another one to count them as tied
const DefaultTieTolerance = 1.0

// MatchResult is set of streets covered by a walk (or by part of it when produced by a tile)
type MatchResult struct {
	WalkID  string
	Streets []StreetID // sorted, unique
	// Parts are merged intervals of every credited street lying within the buffer
	Parts map[StreetID][]CoverageInterval
}

// Matcher matches walk geometry against street network.
// Network is only read, so one matcher can serve many goroutines.
type Matcher struct {
	network        *StreetNetwork
	bufferDistance float64
	policy         AttributionPolicy
	tieTolerance   float64
	logger         zerolog.Logger
}

// NewMatcher creates matcher for the network with given buffer distance (meters)
func NewMatcher(network *StreetNetwork, bufferDistance float64, options ...func(*Matcher)) *Matcher {
	matcher := &Matcher{
		network:        network,
		bufferDistance: bufferDistance,
		policy:         ATTRIBUTION_INCLUSIVE,
		tieTolerance:   DefaultTieTolerance,
		logger:         zerolog.Nop(),
	}
	for _, option := range options {
		option(matcher)
	}
	if matcher.policy == ATTRIBUTION_UNDEFINED {
		matcher.policy = ATTRIBUTION_INCLUSIVE
	}
	return matcher
}

func WithAttribution(policy AttributionPolicy) func(*Matcher) {
	return func(matcher *Matcher) {
		matcher.policy = policy
	}
}

func WithTieTolerance(meters float64) func(*Matcher) {
	return func(matcher *Matcher) {
		matcher.tieTolerance = meters
	}
}

func WithMatcherLogger(logger zerolog.Logger) func(*Matcher) {
	return func(matcher *Matcher) {
		matcher.logger = logger
	}
}

// BufferDistance returns matching tolerance (meters)
func (matcher *Matcher) BufferDistance() float64 {
	return matcher.bufferDistance
}

// Match returns streets covered by the walk. Calling it again for the same walk gives the same result.
func (matcher *Matcher) Match(walk WalkSegment) MatchResult {
	covered := make(map[StreetID][]CoverageInterval)
	line := walk.Line()
	for i := 1; i < len(line); i++ {
		matcher.matchPair(line[i-1], line[i], matcher.network.Search, covered)
	}
	return newMatchResult(walk.ID, covered)
}

func newMatchResult(walkID string, covered map[StreetID][]CoverageInterval) MatchResult {
	result := MatchResult{
		WalkID:  walkID,
		Streets: sortedStreetIDs(covered),
		Parts:   make(map[StreetID][]CoverageInterval, len(covered)),
	}
	for id, parts := range covered {
		result.Parts[id] = mergeIntervals(parts)
	}
	return result
}

type candidate struct {
	street   *StreetSegment
	distance float64
}

// matchPair adds streets credited for the path [a, b] into covered together with their parts within the buffer.
// Candidates come from search over padded path bound.
func (matcher *Matcher) matchPair(a, b orb.Point, search func(orb.Bound) []StreetID, covered map[StreetID][]CoverageInterval) {
	bound := padBound(pairBound(a, b), matcher.bufferDistance)
	found := search(bound)
	if len(found) == 0 {
		return
	}
	candidates := make([]candidate, 0, len(found))
	nearest := math.Inf(1)
	for _, id := range found {
		street, ok := matcher.network.Segment(id)
		if !ok {
			continue
		}
		d := pathLineDistance(a, b, street.Geom)
		if d > matcher.bufferDistance {
			continue
		}
		candidates = append(candidates, candidate{street: street, distance: d})
		if d < nearest {
			nearest = d
		}
	}
	for _, c := range candidates {
		if matcher.policy == ATTRIBUTION_NEAREST && c.distance > nearest+matcher.tieTolerance {
			continue
		}
		covered[c.street.ID] = append(covered[c.street.ID], coveredIntervals(a, b, c.street.Geom, matcher.bufferDistance)...)
	}
}

// MatchAll matches walks in parallel. Results keep walks order.
func (matcher *Matcher) MatchAll(ctx context.Context, walks []WalkSegment, workers int) ([]MatchResult, error) {
	results := make([]MatchResult, len(walks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(normalizeWorkers(workers))
	for i := range walks {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = matcher.Match(walks[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// MatchTiled partitions walks into S2 tiles of given level and matches tiles in parallel.
// Produces the same coverage as MatchAll.
func (matcher *Matcher) MatchTiled(ctx context.Context, walks []WalkSegment, level int, workers int) ([]MatchResult, error) {
	tiles := matcher.Tiles(walks, level)
	matcher.logger.Debug().Int("tiles", len(tiles)).Int("level", level).Msg("Walks partitioned into tiles")
	perTile := make([][]MatchResult, len(tiles))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(normalizeWorkers(workers))
	for i := range tiles {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			perTile[i] = matcher.MatchTile(tiles[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	results := []MatchResult{}
	for _, tileResults := range perTile {
		results = append(results, tileResults...)
	}
	return results, nil
}

// MatchTile matches every walk pair of the tile against streets intersecting the tile bound
func (matcher *Matcher) MatchTile(tile Tile) []MatchResult {
	var local rtree.RTreeG[StreetID]
	for _, id := range tile.Candidates {
		street, ok := matcher.network.Segment(id)
		if !ok {
			continue
		}
		min, max := boundCorners(street.Geom.Bound())
		local.Insert(min, max, id)
	}
	search := func(bound orb.Bound) []StreetID {
		min, max := boundCorners(bound)
		found := []StreetID{}
		local.Search(min, max, func(_, _ [2]float64, id StreetID) bool {
			found = append(found, id)
			return true
		})
		return found
	}

	byWalk := make(map[string]map[StreetID][]CoverageInterval)
	order := []string{}
	for _, pair := range tile.Pairs {
		covered, ok := byWalk[pair.WalkID]
		if !ok {
			covered = make(map[StreetID][]CoverageInterval)
			byWalk[pair.WalkID] = covered
			order = append(order, pair.WalkID)
		}
		matcher.matchPair(pair.A, pair.B, search, covered)
	}
	results := make([]MatchResult, 0, len(order))
	for _, walkID := range order {
		results = append(results, newMatchResult(walkID, byWalk[walkID]))
	}
	return results
}

func sortedStreetIDs(set map[StreetID][]CoverageInterval) []StreetID {
	ids := make([]StreetID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func normalizeWorkers(workers int) int {
	if workers < 1 {
		return 1
	}
	return workers
}
