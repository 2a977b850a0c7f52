// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package traclus finds movement corridors in a set of desire lines with an
// angle constrained DBSCAN, then resolves the overlapping candidates into a
// disjoint partition through a priority queue.
package traclus

import (
	"fmt"

	"github.com/jcodagnone/corredores/spatial"
	"github.com/jcodagnone/corredores/trajectory"
	"github.com/willf/bitset"
)

// NotDense is the weight DBScan reports for a seed that is not a core
// segment.
const NotDense = -1.0

// Clusterer runs the angle constrained DBSCAN over one trajectory set. It is
// not safe for concurrent use; BuildQueue forks one per worker.
type Clusterer struct {
	set    *trajectory.Set
	params Params
	index  *AngleIndex
	cache  *Cache
}

// NewClusterer validates params and builds the angle index of set.
func NewClusterer(set *trajectory.Set, params Params) (*Clusterer, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	if set.SegmentLength() != params.SegmentSize {
		return nil, fmt.Errorf("trajectories were segmented with %v, params ask for %v: %w",
			set.SegmentLength(), params.SegmentSize, trajectory.ErrInvalidArgument)
	}

	return &Clusterer{
		set:    set,
		params: params,
		index:  NewAngleIndex(set, params.anglePrecision()),
		cache:  NewCache(),
	}, nil
}

// fork returns a clusterer sharing the read only state with a private cache.
func (c *Clusterer) fork() *Clusterer {
	return &Clusterer{
		set:    c.set,
		params: c.params,
		index:  c.index,
		cache:  NewCache(),
	}
}

// Reachable returns the total weight and the closest segment of every
// trajectory whose heading is within MaxAngle of axisAngle and whose extent is
// within MaxDist of the seed midpoint.
func (c *Clusterer) Reachable(seed *trajectory.Segment, axisAngle float64) (float64, []*trajectory.Segment) {
	var (
		sum       float64
		reachable []*trajectory.Segment
	)

	mid := seed.Midpoint()

	c.index.Candidates(axisAngle, c.params.MaxAngle, func(ti int) {
		t := c.set.At(ti)
		if angleDiff(t.Angle, axisAngle) > c.params.MaxAngle {
			return
		}

		d, ok := c.cache.Distance(seed.Index, ti)
		if ok {
			c.cache.stats.Hits++
		} else {
			c.cache.stats.Misses++
			d = c.measure(seed.Index, mid, t)
		}

		if d > c.params.MaxDist {
			return
		}

		closest, _ := c.cache.Closest(seed.Index, ti)
		reachable = append(reachable, closest)
		sum += t.Weight
	})

	return sum, reachable
}

// measure computes and caches the distance from mid to t. Pairs that are too
// far, or whose closest segment cannot be located, are stored above MaxDist so
// they are never computed or admitted again.
func (c *Clusterer) measure(seg int, mid spatial.Point, t *trajectory.Trajectory) float64 {
	d, near := spatial.PointSegmentDistance(mid, t.Start, t.End)
	if d > c.params.MaxDist {
		d = c.params.MaxDist + 1
		c.cache.store(seg, t.Index(), d, nil)

		return d
	}

	closest, ok := t.SegmentAt(near)
	if !ok {
		d = c.params.MaxDist + 1
		c.cache.store(seg, t.Index(), d, nil)

		return d
	}

	c.cache.store(seg, t.Index(), d, closest)

	return d
}

// DBScan returns the cluster seeded at seed, or (NotDense, nil) when the
// weight reachable from it is below MinWeight.
func (c *Clusterer) DBScan(seed *trajectory.Segment) (float64, []*trajectory.Segment) {
	axis := c.set.Parent(seed).Angle

	weight, reachable := c.Reachable(seed, axis)
	if weight < c.params.MinWeight {
		return NotDense, nil
	}

	return c.ExpandCluster(seed, reachable)
}

// ExpandCluster grows a cluster breadth first from seed. Every query keeps the
// seed trajectory's heading as axis so the cluster cannot rotate, and each
// trajectory is represented by at most one segment.
func (c *Clusterer) ExpandCluster(seed *trajectory.Segment, reachable []*trajectory.Segment) (float64, []*trajectory.Segment) {
	axis := c.set.Parent(seed).Angle

	represented := bitset.New(uint(c.set.Len()))
	queued := bitset.New(uint(c.set.NumSegments()))

	represented.Set(uint(seed.Traj))

	members := []*trajectory.Segment{seed}
	weight := c.set.Parent(seed).Weight

	frontier := reachable
	for _, s := range frontier {
		queued.Set(uint(s.Index))
	}

	for len(frontier) > 0 {
		var next []*trajectory.Segment

		for _, s := range frontier {
			if represented.Test(uint(s.Traj)) {
				continue
			}

			represented.Set(uint(s.Traj))
			members = append(members, s)
			weight += c.set.Parent(s).Weight

			w, found := c.Reachable(s, axis)
			if w < c.params.MinWeight {
				continue
			}

			for _, n := range found {
				if queued.Test(uint(n.Index)) || represented.Test(uint(n.Traj)) {
					continue
				}

				queued.Set(uint(n.Index))
				next = append(next, n)
			}
		}

		frontier = next
	}

	return weight, members
}
