// Copyright 2025 The ChapaUY Authors
//
// SPDX-License-Identifier: Apache-2.0
package spatial

import (
	"errors"

	"gonum.org/v1/gonum/stat"
)

// PointSegmentDistance returns the distance from p to the segment a-b and the
// point of the segment closest to p.
//
// p is projected onto the line through a and b with
// t = dot(p-a, b-a) / |b-a|², and t is clamped to [0, 1] so the result stays
// on the segment. A zero length segment degenerates to the distance to a.
func PointSegmentDistance(p, a, b Point) (float64, Point) {
	d := b.Sub(a)

	den := d.Dot(d)
	if den == 0 {
		return p.Distance(a), a
	}

	t := p.Sub(a).Dot(d) / den

	var near Point

	switch {
	case t < 0:
		near = a
	case t > 1:
		near = b
	default:
		near = a.Add(d.Scale(t))
	}

	return p.Distance(near), near
}

// WeightedCentroid returns the weighted mean of pts.
func WeightedCentroid(pts []Point, weights []float64) (Point, error) {
	if len(pts) == 0 {
		return Point{}, errors.New("spatial: no points")
	}

	if len(pts) != len(weights) {
		return Point{}, errors.New("spatial: points and weights differ in length")
	}

	var sum float64
	for _, w := range weights {
		sum += w
	}

	if sum <= 0 {
		return Point{}, errors.New("spatial: weights must add up to a positive value")
	}

	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))

	for i, p := range pts {
		xs[i], ys[i] = p.X, p.Y
	}

	return Point{X: stat.Mean(xs, weights), Y: stat.Mean(ys, weights)}, nil
}
