// Copyright 2025 The ChapaUY Authors
//
// SPDX-License-Identifier: Apache-2.0
package spatial

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointSegmentDistance(t *testing.T) {
	tests := []struct {
		name     string
		p, a, b  Point
		wantDist float64
		wantNear Point
	}{
		{"projects inside", Pt(5, 3), Pt(0, 0), Pt(10, 0), 3, Pt(5, 0)},
		{"clamped to start", Pt(-4, 3), Pt(0, 0), Pt(10, 0), 5, Pt(0, 0)},
		{"clamped to end", Pt(13, 4), Pt(0, 0), Pt(10, 0), 5, Pt(10, 0)},
		{"point on segment", Pt(2, 2), Pt(0, 0), Pt(4, 4), 0, Pt(2, 2)},
		{"zero length segment", Pt(3, 4), Pt(0, 0), Pt(0, 0), 5, Pt(0, 0)},
		{"vertical segment", Pt(1, 5), Pt(0, 0), Pt(0, 10), 1, Pt(0, 5)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dist, near := PointSegmentDistance(tc.p, tc.a, tc.b)
			assert.InDelta(t, tc.wantDist, dist, 1e-9)
			assert.InDelta(t, tc.wantNear.X, near.X, 1e-9)
			assert.InDelta(t, tc.wantNear.Y, near.Y, 1e-9)
		})
	}
}

func TestWeightedCentroid(t *testing.T) {
	c, err := WeightedCentroid([]Point{Pt(0, 0), Pt(10, 0)}, []float64{1, 3})
	require.NoError(t, err)
	assert.InDelta(t, 7.5, c.X, 1e-9)
	assert.InDelta(t, 0, c.Y, 1e-9)

	_, err = WeightedCentroid(nil, nil)
	require.Error(t, err)

	_, err = WeightedCentroid([]Point{Pt(0, 0)}, []float64{1, 2})
	require.Error(t, err)

	_, err = WeightedCentroid([]Point{Pt(0, 0)}, []float64{0})
	require.Error(t, err)
}

func TestWKT(t *testing.T) {
	assert.Equal(t, "POINT(1.5 -2)", Pt(1.5, -2).String())
	assert.Equal(t, "LINESTRING(0 0, 10 20.25)", LineString{A: Pt(0, 0), B: Pt(10, 20.25)}.String())

	v, err := Pt(3, 4).Value()
	require.NoError(t, err)
	assert.Equal(t, "POINT(3 4)", v)

	var p Point
	require.NoError(t, p.Scan(map[string]interface{}{"x": 7.0, "y": 8.0}))
	assert.Equal(t, Pt(7, 8), p)

	require.NoError(t, p.Scan(nil))
	assert.Equal(t, Pt(0, 0), p)

	require.Error(t, p.Scan(map[string]interface{}{"x": 7.0}))
	require.Error(t, p.Scan(42))
	require.Error(t, p.Scan("POINT (3 4)"))

	var l LineString
	require.NoError(t, l.Scan("LINESTRING (1 2, 3 4)"))
	assert.Equal(t, LineString{A: Pt(1, 2), B: Pt(3, 4)}, l)
	assert.InDelta(t, math.Sqrt(8), l.Length(), 1e-9)

	require.Error(t, l.Scan("LINESTRING (1 2)"))
}

func TestHaversineDistance(t *testing.T) {
	// Montevideo to Buenos Aires, roughly 200km.
	mvd := Pt(-56.1645, -34.9011)
	bsas := Pt(-58.3816, -34.6037)

	d := mvd.HaversineDistance(&bsas)
	assert.InDelta(t, 205_000, d, 10_000)
}
