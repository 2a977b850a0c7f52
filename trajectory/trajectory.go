// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package trajectory models desire lines and their fixed length subdivision
// into segments.
package trajectory

import (
	"errors"
	"fmt"
	"math"

	"github.com/jcodagnone/corredores/spatial"
)

// ErrInvalidArgument is returned for non positive weights, lengths and
// segment sizes.
var ErrInvalidArgument = errors.New("invalid argument")

// segmentEpsilon keeps the segment count from coming up short when
// length/segmentLength lands just under an integer.
const segmentEpsilon = 1e-5

// Segment is a piece of a Trajectory. It refers to its parent through the
// Traj index of the owning Set and never outlives it.
type Segment struct {
	ID       string        `json:"id"`
	Start    spatial.Point `json:"start"`
	End      spatial.Point `json:"end"`
	Weight   float64       `json:"weight"`
	Corridor int           `json:"corridor"`

	Traj  int `json:"-"` // index of the parent in its Set
	Seq   int `json:"-"` // position within the parent
	Index int `json:"-"` // dense index across the whole Set
}

// Midpoint returns the point halfway along the segment.
func (s *Segment) Midpoint() spatial.Point {
	return s.Start.Midpoint(s.End)
}

// Length returns the segment length.
func (s *Segment) Length() float64 {
	return s.Start.Distance(s.End)
}

// Line returns the segment as a WKT friendly line.
func (s *Segment) Line() spatial.LineString {
	return spatial.LineString{A: s.Start, B: s.End}
}

// Trajectory is a weighted, directed straight line.
type Trajectory struct {
	Name   string        `json:"name"`
	Weight float64       `json:"weight"`
	Start  spatial.Point `json:"start"`
	End    spatial.Point `json:"end"`

	Angle  float64 `json:"angle"` // degrees, (-180, 180]
	Length float64 `json:"length"`
	Slope  float64 `json:"-"` // +Inf when vertical

	Segments []Segment `json:"segments,omitempty"`

	index int
	step  spatial.Point
}

// New validates the attributes and derives angle, length and slope.
func New(name string, weight float64, start, end spatial.Point) (*Trajectory, error) {
	if !(weight > 0) || math.IsInf(weight, 0) {
		return nil, fmt.Errorf("trajectory %q: weight must be positive, got %v: %w", name, weight, ErrInvalidArgument)
	}

	if !start.IsFinite() || !end.IsFinite() {
		return nil, fmt.Errorf("trajectory %q: coordinates must be finite: %w", name, ErrInvalidArgument)
	}

	dx := end.X - start.X
	dy := end.Y - start.Y

	length := math.Hypot(dx, dy)
	if length <= 0 {
		return nil, fmt.Errorf("trajectory %q: must have non-zero length: %w", name, ErrInvalidArgument)
	}

	slope := math.Inf(1)
	if dx != 0 {
		slope = dy / dx
	}

	return &Trajectory{
		Name:   name,
		Weight: weight,
		Start:  start,
		End:    end,
		Angle:  math.Atan2(dy, dx) * 180 / math.Pi,
		Length: length,
		Slope:  slope,
	}, nil
}

// Index returns the position of the trajectory in its Set.
func (t *Trajectory) Index() int {
	return t.index
}

// Line returns the whole trajectory as a line.
func (t *Trajectory) Line() spatial.LineString {
	return spatial.LineString{A: t.Start, B: t.End}
}

// MakeSegments replaces the segments with a uniform subdivision of
// segmentLength. The last segment ends exactly at End.
func (t *Trajectory) MakeSegments(segmentLength float64) error {
	if !(segmentLength > 0) || math.IsInf(segmentLength, 0) {
		return fmt.Errorf("segment length must be positive, got %v: %w", segmentLength, ErrInvalidArgument)
	}

	rad := t.Angle * math.Pi / 180
	t.step = spatial.Pt(segmentLength*math.Cos(rad), segmentLength*math.Sin(rad))

	n := int(math.Ceil(t.Length/segmentLength + segmentEpsilon))
	if n < 1 {
		n = 1
	}

	t.Segments = make([]Segment, n)

	for i := range n {
		start := t.Start.Add(t.step.Scale(float64(i)))
		end := t.Start.Add(t.step.Scale(float64(i + 1)))

		if i == n-1 {
			end = t.End
		}

		t.Segments[i] = Segment{
			ID:       fmt.Sprintf("%s:%s:%s", t.Name, spatial.FormatFloat(start.X), spatial.FormatFloat(start.Y)),
			Start:    start,
			End:      end,
			Weight:   t.Weight,
			Corridor: -1,
			Traj:     t.index,
			Seq:      i,
		}
	}

	return nil
}

// SegmentAt returns the segment containing p, a point on the trajectory. The
// index is computed along whichever axis has the larger step so a near zero
// step is never divided by.
func (t *Trajectory) SegmentAt(p spatial.Point) (*Segment, bool) {
	var idx float64

	switch {
	case math.Abs(t.step.X) > math.Abs(t.step.Y) && t.step.X != 0:
		idx = (p.X - t.Start.X) / t.step.X
	case t.step.Y != 0:
		idx = (p.Y - t.Start.Y) / t.step.Y
	default:
		return nil, false
	}

	if math.IsNaN(idx) || idx <= -1 || idx >= float64(len(t.Segments)) {
		return nil, false
	}

	i := int(idx)

	return &t.Segments[i], true
}
