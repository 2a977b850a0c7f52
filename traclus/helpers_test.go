// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package traclus

import (
	"fmt"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/jcodagnone/corredores/spatial"
	"github.com/jcodagnone/corredores/trajectory"
	"github.com/stretchr/testify/require"
)

type line struct {
	name           string
	weight         float64
	sx, sy, ex, ey float64
}

func newSet(t *testing.T, segmentSize float64, lines ...line) *trajectory.Set {
	t.Helper()

	set, err := trajectory.NewSet(segmentSize)
	require.NoError(t, err)

	for _, l := range lines {
		traj, err := trajectory.New(l.name, l.weight, spatial.Pt(l.sx, l.sy), spatial.Pt(l.ex, l.ey))
		require.NoError(t, err)
		require.NoError(t, set.Add(traj))
	}

	return set
}

// polar builds a line of the given length and heading starting at (sx, sy).
func polar(name string, weight, sx, sy, angle, length float64) line {
	rad := angle * math.Pi / 180

	return line{name, weight, sx, sy, sx + length*math.Cos(rad), sy + length*math.Sin(rad)}
}

// randomLines scatters trajectories around a few dominant headings.
func randomLines(n int, seed uint64) []line {
	r := rand.New(rand.NewPCG(seed, seed^0x5eed))
	headings := []float64{0, 5, 30, 90, -120, 175}

	lines := make([]line, n)
	for i := range lines {
		heading := headings[r.IntN(len(headings))] + r.Float64()*6 - 3
		lines[i] = polar(
			fmt.Sprintf("t%02d", i),
			0.5+r.Float64()*1.5,
			r.Float64()*100,
			r.Float64()*100,
			heading,
			20+r.Float64()*60,
		)
	}

	return lines
}

func randomSet(t *testing.T, n int, seed uint64) *trajectory.Set {
	t.Helper()

	return newSet(t, 10, randomLines(n, seed)...)
}

func mustClusterer(t *testing.T, set *trajectory.Set, p Params) *Clusterer {
	t.Helper()

	c, err := NewClusterer(set, p)
	require.NoError(t, err)

	return c
}

// bruteReachable is the reachable weight from seed computed without index
// or cache.
func bruteReachable(set *trajectory.Set, p Params, seed *trajectory.Segment, axis float64) float64 {
	var sum float64

	mid := seed.Midpoint()
	for _, t := range set.Trajectories() {
		if math.Abs(t.Angle-axis) > p.MaxAngle {
			continue
		}

		if d, _ := spatial.PointSegmentDistance(mid, t.Start, t.End); d <= p.MaxDist {
			sum += t.Weight
		}
	}

	return sum
}
