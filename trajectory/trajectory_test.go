// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package trajectory

import (
	"math"
	"testing"

	"github.com/jcodagnone/corredores/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustNew(t *testing.T, name string, weight, sx, sy, ex, ey float64) *Trajectory {
	t.Helper()

	traj, err := New(name, weight, spatial.Pt(sx, sy), spatial.Pt(ex, ey))
	require.NoError(t, err)

	return traj
}

func TestAngle(t *testing.T) {
	tests := []struct {
		name  string
		end   spatial.Point
		angle float64
	}{
		{"horizontal", spatial.Pt(300, 300), 0},
		{"negative horizontal", spatial.Pt(100, 300), 180},
		{"vertical", spatial.Pt(200, 400), 90},
		{"negative vertical", spatial.Pt(200, 200), -90},
		{"20 degrees", spatial.Pt(293.969262092233, 334.202014295086), 20},
		{"-20 degrees", spatial.Pt(293.969262092233, 265.797985704914), -20},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			traj, err := New(tc.name, 1, spatial.Pt(200, 300), tc.end)
			require.NoError(t, err)
			assert.InDelta(t, tc.angle, traj.Angle, 1e-7)
		})
	}
}

func TestReversedAngle(t *testing.T) {
	fwd := mustNew(t, "fwd", 1, 0, 0, 30, 40)
	rev := mustNew(t, "rev", 1, 30, 40, 0, 0)

	diff := math.Abs(fwd.Angle - rev.Angle)
	assert.InDelta(t, 180, diff, 1e-9)
	assert.InDelta(t, 50, fwd.Length, 1e-9)
	assert.InDelta(t, 4.0/3.0, fwd.Slope, 1e-9)

	vertical := mustNew(t, "v", 1, 0, 0, 0, 5)
	assert.True(t, math.IsInf(vertical.Slope, 1))
}

func TestNewInvalid(t *testing.T) {
	tests := []struct {
		name       string
		weight     float64
		start, end spatial.Point
	}{
		{"zero weight", 0, spatial.Pt(0, 0), spatial.Pt(1, 1)},
		{"negative weight", -1, spatial.Pt(0, 0), spatial.Pt(1, 1)},
		{"nan weight", math.NaN(), spatial.Pt(0, 0), spatial.Pt(1, 1)},
		{"zero length", 1, spatial.Pt(3, 3), spatial.Pt(3, 3)},
		{"infinite coordinate", 1, spatial.Pt(math.Inf(1), 0), spatial.Pt(1, 1)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.name, tc.weight, tc.start, tc.end)
			require.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestMakeSegments(t *testing.T) {
	ends := map[string]spatial.Point{
		"hor":         spatial.Pt(300, 300),
		"neg_hor":     spatial.Pt(100, 300),
		"ver":         spatial.Pt(200, 400),
		"neg_ver":     spatial.Pt(200, 200),
		"ang20":       spatial.Pt(293.969262092233, 334.202014295086),
		"ang_minus20": spatial.Pt(293.969262092233, 265.797985704914),
	}

	for name, end := range ends {
		t.Run(name, func(t *testing.T) {
			traj, err := New(name, 1, spatial.Pt(200, 300), end)
			require.NoError(t, err)
			require.NoError(t, traj.MakeSegments(12))
			require.Len(t, traj.Segments, 9)

			rad := traj.Angle * math.Pi / 180
			for i, seg := range traj.Segments {
				assert.InDelta(t, 200+math.Cos(rad)*float64(i)*12, seg.Start.X, 1e-7)
				assert.InDelta(t, 300+math.Sin(rad)*float64(i)*12, seg.Start.Y, 1e-7)
				assert.Equal(t, -1, seg.Corridor)
				assert.Equal(t, i, seg.Seq)
				assert.InDelta(t, 1.0, seg.Weight, 0)
			}
		})
	}
}

func TestMakeSegmentsCoversSpan(t *testing.T) {
	tests := []struct {
		name          string
		sx, sy        float64
		ex, ey        float64
		segmentLength float64
	}{
		{"shorter than a segment", 0, 0, 3, 4, 10},
		{"fractional", 1.5, -2.25, 77.7, 13.1, 7.3},
		{"diagonal", 0, 0, -123.4, 456.7, 25},
		{"exact multiple", 0, 0, 100, 0, 10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			traj := mustNew(t, tc.name, 2, tc.sx, tc.sy, tc.ex, tc.ey)
			require.NoError(t, traj.MakeSegments(tc.segmentLength))

			want := int(math.Ceil(traj.Length/tc.segmentLength + segmentEpsilon))
			require.Len(t, traj.Segments, want)

			assert.Equal(t, traj.Start, traj.Segments[0].Start)
			assert.Equal(t, traj.End, traj.Segments[len(traj.Segments)-1].End)

			var total float64
			for i := range traj.Segments {
				total += traj.Segments[i].Length()
				if i > 0 {
					assert.InDelta(t, traj.Segments[i-1].End.X, traj.Segments[i].Start.X, 1e-9)
					assert.InDelta(t, traj.Segments[i-1].End.Y, traj.Segments[i].Start.Y, 1e-9)
				}
			}

			assert.InDelta(t, traj.Length, total, 1e-6)
		})
	}
}

func TestMakeSegmentsInvalid(t *testing.T) {
	traj := mustNew(t, "a", 1, 0, 0, 10, 0)

	for _, l := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		require.ErrorIs(t, traj.MakeSegments(l), ErrInvalidArgument)
	}
}

func TestSegmentAt(t *testing.T) {
	traj := mustNew(t, "a", 1, 0, 0, 35, 0)
	require.NoError(t, traj.MakeSegments(10))
	require.Len(t, traj.Segments, 4)

	tests := []struct {
		name  string
		p     spatial.Point
		seq   int
		found bool
	}{
		{"start", spatial.Pt(0, 0), 0, true},
		{"inside first", spatial.Pt(9.99, 0), 0, true},
		{"second", spatial.Pt(10, 0), 1, true},
		{"end", spatial.Pt(35, 0), 3, true},
		{"past end", spatial.Pt(45, 0), 0, false},
		{"before start", spatial.Pt(-12, 0), 0, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			seg, ok := traj.SegmentAt(tc.p)
			require.Equal(t, tc.found, ok)

			if ok {
				assert.Equal(t, tc.seq, seg.Seq)
			}
		})
	}

	steep := mustNew(t, "steep", 1, 0, 0, 0.001, 50)
	require.NoError(t, steep.MakeSegments(10))

	seg, ok := steep.SegmentAt(spatial.Pt(0.0005, 25))
	require.True(t, ok)
	assert.Equal(t, 2, seg.Seq)

	exact := mustNew(t, "exact", 1, 0, 0, 100, 0)
	require.NoError(t, exact.MakeSegments(10))

	seg, ok = exact.SegmentAt(exact.End)
	require.True(t, ok, "the end point must always be located")
	assert.Equal(t, len(exact.Segments)-1, seg.Seq)
}

func TestSegmentAtWithoutSegments(t *testing.T) {
	traj := mustNew(t, "a", 1, 0, 0, 10, 0)

	_, ok := traj.SegmentAt(spatial.Pt(1, 0))
	assert.False(t, ok)
}
