// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package trajectory

import (
	"errors"
	"fmt"
	"iter"
)

// ErrDuplicateName is returned when two trajectories share a name.
var ErrDuplicateName = errors.New("duplicate trajectory name")

// Set owns a batch of trajectories and their segments. Segments refer back to
// their parent by index into the set.
type Set struct {
	segmentLength float64
	trajectories  []*Trajectory
	byName        map[string]int
	segments      int
}

// NewSet creates an empty set that subdivides every added trajectory with
// segmentLength.
func NewSet(segmentLength float64, trajs ...*Trajectory) (*Set, error) {
	if !(segmentLength > 0) {
		return nil, fmt.Errorf("segment length must be positive, got %v: %w", segmentLength, ErrInvalidArgument)
	}

	s := &Set{
		segmentLength: segmentLength,
		byName:        make(map[string]int),
	}

	for _, t := range trajs {
		if err := s.Add(t); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Add appends t to the set and subdivides it.
func (s *Set) Add(t *Trajectory) error {
	if _, ok := s.byName[t.Name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateName, t.Name)
	}

	t.index = len(s.trajectories)
	if err := t.MakeSegments(s.segmentLength); err != nil {
		return fmt.Errorf("trajectory %q: %w", t.Name, err)
	}

	for i := range t.Segments {
		t.Segments[i].Index = s.segments
		s.segments++
	}

	s.byName[t.Name] = t.index
	s.trajectories = append(s.trajectories, t)

	return nil
}

// SegmentLength returns the subdivision length.
func (s *Set) SegmentLength() float64 {
	return s.segmentLength
}

// Len returns the number of trajectories.
func (s *Set) Len() int {
	return len(s.trajectories)
}

// NumSegments returns the number of segments across all trajectories.
func (s *Set) NumSegments() int {
	return s.segments
}

// Trajectories returns the trajectories in insertion order.
func (s *Set) Trajectories() []*Trajectory {
	return s.trajectories
}

// At returns the i-th trajectory.
func (s *Set) At(i int) *Trajectory {
	return s.trajectories[i]
}

// ByName looks a trajectory up by name.
func (s *Set) ByName(name string) (*Trajectory, bool) {
	i, ok := s.byName[name]
	if !ok {
		return nil, false
	}

	return s.trajectories[i], true
}

// Parent returns the trajectory seg belongs to.
func (s *Set) Parent(seg *Segment) *Trajectory {
	return s.trajectories[seg.Traj]
}

// Segments iterates over every segment, trajectory by trajectory.
func (s *Set) Segments() iter.Seq[*Segment] {
	return func(yield func(*Segment) bool) {
		for _, t := range s.trajectories {
			for i := range t.Segments {
				if !yield(&t.Segments[i]) {
					return
				}
			}
		}
	}
}
