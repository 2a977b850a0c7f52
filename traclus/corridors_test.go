// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package traclus

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jcodagnone/corredores/spatial"
	"github.com/jcodagnone/corredores/trajectory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunSingleCorridor(t *testing.T) {
	set := newSet(t, 10,
		line{"a", 1, 0, 0, 8, 0},
		line{"b", 1, 0, 1, 8, 1},
		line{"c", 1, 0, 2, 8, 2},
		line{"far", 1, 0, 100, 8, 100},
	)

	res, err := Run(set, Params{MaxDist: 5, MinWeight: 2.5, MaxAngle: 5, SegmentSize: 10})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Clusters)
	require.Len(t, res.Corridors, 1)

	corr := res.Corridors[0]
	assert.Equal(t, 0, corr.ID)
	assert.InDelta(t, 3.0, corr.Weight, 1e-9)
	assert.InDelta(t, 0.0, corr.Start.X, 1e-9)
	assert.InDelta(t, 1.0, corr.Start.Y, 1e-9)
	assert.InDelta(t, 8.0, corr.End.X, 1e-9)
	assert.InDelta(t, 1.0, corr.End.Y, 1e-9)

	for _, name := range []string{"a", "b", "c"} {
		traj, _ := set.ByName(name)
		assert.Equal(t, 0, traj.Segments[0].Corridor, name)
	}

	far, _ := set.ByName("far")
	assert.Equal(t, -1, far.Segments[0].Corridor)
}

func TestRunOrdersByWeight(t *testing.T) {
	set := newSet(t, 10,
		line{"light_a", 1, 0, 50, 8, 50},
		line{"light_b", 1, 0, 51, 8, 51},
		line{"light_c", 1, 0, 52, 8, 52},
		line{"heavy_a", 2, 0, 0, 8, 0},
		line{"heavy_b", 2, 0, 1, 8, 1},
		line{"heavy_c", 2, 0, 2, 8, 2},
	)

	res, err := Run(set, Params{MaxDist: 5, MinWeight: 2.5, MaxAngle: 5, SegmentSize: 10})
	require.NoError(t, err)
	require.Len(t, res.Corridors, 2)

	assert.InDelta(t, 6.0, res.Corridors[0].Weight, 1e-9)
	assert.InDelta(t, 3.0, res.Corridors[1].Weight, 1e-9)

	heavy, _ := set.ByName("heavy_b")
	light, _ := set.ByName("light_b")
	assert.Equal(t, 0, heavy.Segments[0].Corridor)
	assert.Equal(t, 1, light.Segments[0].Corridor)
}

func TestRunPartition(t *testing.T) {
	set := randomSet(t, 80, 3)
	p := Params{MaxDist: 15, MinWeight: 2.5, MaxAngle: 6, SegmentSize: 10}

	res, err := Run(set, p)
	require.NoError(t, err)
	require.NotEmpty(t, res.Corridors)

	owner := make(map[int]int)
	prev := res.Corridors[0].Weight

	for i, corr := range res.Corridors {
		assert.Equal(t, i, corr.ID)
		assert.GreaterOrEqual(t, corr.Weight, p.MinWeight)
		assert.LessOrEqual(t, corr.Weight, prev, "corridors come out heaviest first")

		prev = corr.Weight
		trajs := make(map[int]bool)

		var sum float64

		for _, s := range corr.Members {
			_, dup := owner[s.Index]
			assert.False(t, dup, "segment %s in two corridors", s.ID)
			assert.False(t, trajs[s.Traj], "trajectory repeated in corridor %d", i)
			assert.Equal(t, i, s.Corridor)

			owner[s.Index] = i
			trajs[s.Traj] = true
			sum += s.Weight
		}

		assert.InDelta(t, sum, corr.Weight, 1e-9)
	}

	for s := range set.Segments() {
		if id, ok := owner[s.Index]; ok {
			assert.Equal(t, id, s.Corridor)
		} else {
			assert.Equal(t, -1, s.Corridor)
		}
	}
}

type runSummary struct {
	Clusters   int
	Weights    []float64
	Lines      []spatial.LineString
	Assignment []int
}

func summarizeRun(t *testing.T, set *trajectory.Set, params Params) runSummary {
	t.Helper()

	res, err := Run(set, params)
	require.NoError(t, err)

	sum := runSummary{Clusters: res.Clusters}
	for _, c := range res.Corridors {
		sum.Weights = append(sum.Weights, c.Weight)
		sum.Lines = append(sum.Lines, c.Line())
	}

	for s := range set.Segments() {
		sum.Assignment = append(sum.Assignment, s.Corridor)
	}

	return sum
}

func summarize(t *testing.T, workers int) runSummary {
	t.Helper()

	return summarizeRun(t, randomSet(t, 80, 5),
		Params{MaxDist: 15, MinWeight: 2.5, MaxAngle: 6, SegmentSize: 10, Workers: workers})
}

func TestRunParallelMatchesSerial(t *testing.T) {
	serial := summarize(t, 1)
	parallel := summarize(t, 4)

	if diff := cmp.Diff(serial, parallel); diff != "" {
		t.Errorf("parallel sweep differs from serial (-serial +parallel):\n%s", diff)
	}
}

func TestRunIgnoresAnglePrecision(t *testing.T) {
	for seed := uint64(1); seed <= 6; seed++ {
		params := Params{MaxDist: 12, MinWeight: 2.2, MaxAngle: 4, SegmentSize: 10, AnglePrecision: 0.01}
		want := summarizeRun(t, randomSet(t, 70, seed), params)

		for _, precision := range []float64{0.5, 7} {
			params.AnglePrecision = precision
			got := summarizeRun(t, randomSet(t, 70, seed), params)

			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("seed %d, precision %v differs from 0.01 (-want +got):\n%s", seed, precision, diff)
			}
		}
	}
}

func TestRunAssignsOnlyCorridorMembers(t *testing.T) {
	set := randomSet(t, 60, 3)

	for seg := range set.Segments() {
		require.Equal(t, -1, seg.Corridor)
	}

	res, err := Run(set, Params{MaxDist: 12, MinWeight: 2.2, MaxAngle: 4, SegmentSize: 10})
	require.NoError(t, err)

	owner := make(map[int]int)
	for _, c := range res.Corridors {
		for _, m := range c.Members {
			owner[m.Index] = c.ID
		}
	}

	for seg := range set.Segments() {
		id, ok := owner[seg.Index]
		if !ok {
			id = -1
		}

		assert.Equal(t, id, seg.Corridor, "segment %s", seg.ID)
	}
}

func TestRunRejectsInvalidParams(t *testing.T) {
	set := newSet(t, 10, line{"a", 1, 0, 0, 8, 0})

	_, err := Run(set, Params{MaxDist: 5, MinWeight: 1, MaxAngle: 200, SegmentSize: 10})
	require.Error(t, err)
}
