package walkcover

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyWalk(t *testing.T) {
	params := DefaultClassifierParams()
	track := Track{ID: "morning", Points: straightPoints(testOrigin, testStart, 30, 2*time.Second, 1.4)}

	walks, err := Classify(track, params)
	require.NoError(t, err)
	require.Len(t, walks, 1)
	walk := walks[0]
	assert.Equal(t, "morning", walk.TrackID)
	assert.Len(t, walk.Points, 30)
	assert.InDelta(t, 1.4, walk.AvgSpeed, 0.01)
	assert.InDelta(t, 1.4*58, walk.Distance, 0.5)
	assert.Equal(t, 58*time.Second, walk.Duration)
	assert.InDelta(t, 1.0, walk.Sinuosity, 1e-6)
	assert.True(t, walk.Start.Equal(testStart))

	again, err := Classify(track, params)
	require.NoError(t, err)
	assert.Equal(t, walk.ID, again[0].ID, "walk identifiers must be deterministic")
}

func TestClassifyEmptyTracks(t *testing.T) {
	params := DefaultClassifierParams()

	walks, err := Classify(Track{ID: "empty"}, params)
	require.NoError(t, err)
	assert.Empty(t, walks)

	single := Track{ID: "single", Points: straightPoints(testOrigin, testStart, 1, time.Second, 1)}
	walks, err = Classify(single, params)
	require.NoError(t, err)
	assert.Empty(t, walks)
}

func TestClassifyNoTimestamps(t *testing.T) {
	points := straightPoints(testOrigin, testStart, 10, time.Second, 1.2)
	for i := range points {
		points[i].Time = time.Time{}
	}
	_, err := Classify(Track{ID: "timeless", Points: points}, DefaultClassifierParams())
	require.Error(t, err)
	var invalid *InvalidTrackError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "timeless", invalid.TrackID)
}

func TestClassifySplitsOnGap(t *testing.T) {
	params := DefaultClassifierParams()
	first := straightPoints(testOrigin, testStart, 10, 2*time.Second, 1.2)
	second := straightPoints(offset(testOrigin, 0, 200), testStart.Add(time.Hour), 10, 2*time.Second, 1.2)
	track := Track{ID: "gap", Points: append(first, second...)}

	outcomes, err := ClassifyTrack(track, params)
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	for i, outcome := range outcomes {
		assert.Equal(t, VERDICT_WALK, outcome.Verdict)
		assert.Equal(t, i, outcome.Walk.Ordinal)
	}
	assert.NotEqual(t, outcomes[0].Walk.ID, outcomes[1].Walk.ID)
	assert.True(t, outcomes[0].Walk.End.Before(outcomes[1].Walk.Start), "source order must be kept")
}

func TestClassifySplitsOnTeleport(t *testing.T) {
	params := DefaultClassifierParams()
	first := straightPoints(testOrigin, testStart, 10, 2*time.Second, 1.2)
	// 2 kilometers in 2 seconds
	second := straightPoints(offset(testOrigin, 2000, 0), testStart.Add(20*time.Second), 10, 2*time.Second, 1.2)
	track := Track{ID: "teleport", Points: append(first, second...)}

	outcomes, err := ClassifyTrack(track, params)
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	for _, outcome := range outcomes {
		assert.Equal(t, VERDICT_WALK, outcome.Verdict)
		assert.Len(t, outcome.Walk.Points, 10)
	}
}

func TestClassifyDiscardReasons(t *testing.T) {
	params := DefaultClassifierParams()
	jitter := make([]GpsPoint, 20)
	for i := range jitter {
		pt := offset(testOrigin, float64(i%2)*0.5, float64(i%3)*0.3)
		jitter[i] = GpsPoint{Lat: pt.Lat(), Lon: pt.Lon(), Time: testStart.Add(time.Duration(i) * 10 * time.Second)}
	}
	tests := []struct {
		name   string
		points []GpsPoint
		reason DiscardReason
	}{
		{"stationary", jitter, DISCARD_STATIONARY},
		{"too short", straightPoints(testOrigin, testStart, 3, time.Second, 1.5), DISCARD_TOO_SHORT},
		{"transit", straightPoints(testOrigin, testStart, 50, time.Second, 8), DISCARD_TOO_FAST},
		{"too slow", straightPoints(testOrigin, testStart, 10, time.Minute, 0.05), DISCARD_TOO_SLOW},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := Evaluate("track", 0, tt.points, params)
			assert.Equal(t, VERDICT_DISCARDED, outcome.Verdict)
			assert.Equal(t, tt.reason, outcome.Reason)
			assert.Nil(t, outcome.Walk)
		})
	}
}

func TestClassifySpeedBoundary(t *testing.T) {
	points := straightPoints(testOrigin, testStart, 20, 2*time.Second, 1.3)
	params := DefaultClassifierParams()
	stats := ComputeSegmentStats(points, params.StationaryDistance)

	params.MaxWalkingSpeed = stats.AvgSpeed
	assert.Equal(t, VERDICT_WALK, Evaluate("track", 0, points, params).Verdict, "speed equal to the limit is walking")

	params.MaxWalkingSpeed = stats.AvgSpeed - 1e-9
	outcome := Evaluate("track", 0, points, params)
	assert.Equal(t, VERDICT_DISCARDED, outcome.Verdict)
	assert.Equal(t, DISCARD_TOO_FAST, outcome.Reason)

	params = DefaultClassifierParams()
	params.MinWalkingSpeed = stats.AvgSpeed
	assert.Equal(t, VERDICT_WALK, Evaluate("track", 0, points, params).Verdict)
	params.MinWalkingSpeed = stats.AvgSpeed + 1e-9
	assert.Equal(t, DISCARD_TOO_SLOW, Evaluate("track", 0, points, params).Reason)
}

func TestClassifySinuosity(t *testing.T) {
	// Zig-zag: 10 meters north, 10 meters east, 10 meters south, 10 meters east and so on
	points := []GpsPoint{}
	cur := testOrigin
	moves := [][2]float64{{0, 10}, {10, 0}, {0, -10}, {10, 0}}
	for i := 0; i < 13; i++ {
		points = append(points, GpsPoint{Lat: cur.Lat(), Lon: cur.Lon(), Time: testStart.Add(time.Duration(i) * 8 * time.Second)})
		move := moves[i%len(moves)]
		cur = offset(cur, move[0], move[1])
	}
	params := DefaultClassifierParams()
	stats := ComputeSegmentStats(points, params.StationaryDistance)
	require.Greater(t, stats.Sinuosity, 1.5)

	params.SinuosityThreshold = stats.Sinuosity
	assert.Equal(t, VERDICT_WALK, Evaluate("track", 0, points, params).Verdict, "sinuosity equal to the threshold is walking")

	params.SinuosityThreshold = stats.Sinuosity - 1e-9
	outcome := Evaluate("track", 0, points, params)
	assert.Equal(t, VERDICT_DISCARDED, outcome.Verdict)
	assert.Equal(t, DISCARD_TOO_SINUOUS, outcome.Reason)
}

func TestClassifyClosedLoopIsStationary(t *testing.T) {
	points := []GpsPoint{}
	corners := [][2]float64{{0, 0}, {50, 0}, {50, 50}, {0, 50}, {0, 0}}
	for i, c := range corners {
		pt := offset(testOrigin, c[0], c[1])
		points = append(points, GpsPoint{Lat: pt.Lat(), Lon: pt.Lon(), Time: testStart.Add(time.Duration(i) * 40 * time.Second)})
	}
	outcome := Evaluate("loop", 0, points, DefaultClassifierParams())
	assert.Equal(t, DISCARD_STATIONARY, outcome.Reason)
	assert.Equal(t, 1.0, outcome.Stats.Sinuosity)
}

func TestClassifierParamsFromProfile(t *testing.T) {
	profile := DefaultProfile("oslo", testStart)
	profile.MaxWalkingSpeed = 3.3
	profile.SinuosityThreshold = 4.4
	base := DefaultClassifierParams()
	base.GapThreshold = time.Minute
	params := profile.ClassifierParams(base)
	assert.Equal(t, 3.3, params.MaxWalkingSpeed)
	assert.Equal(t, 4.4, params.SinuosityThreshold)
	assert.Equal(t, time.Minute, params.GapThreshold)
}

func TestVerdictStrings(t *testing.T) {
	assert.Equal(t, "undefined", Verdict(0).String())
	assert.Equal(t, "walk", VERDICT_WALK.String())
	assert.Equal(t, "discarded", VERDICT_DISCARDED.String())
	assert.Equal(t, "undefined", DiscardReason(0).String())
	assert.Equal(t, "none", DISCARD_NONE.String())
	assert.Equal(t, "transit_speed", DISCARD_TOO_FAST.String())
	assert.Equal(t, "too_sinuous", DISCARD_TOO_SINUOUS.String())
}
