// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package traclus

import (
	"math"
	"sort"

	"github.com/jcodagnone/corredores/trajectory"
	"github.com/jcodagnone/corredores/utils"
)

// bucket groups the trajectories sharing a quantized heading.
type bucket struct {
	angle float64
	trajs []int
}

// AngleIndex groups trajectories by heading. Buckets are sorted so a query
// only visits the headings that can pass the max angle test.
type AngleIndex struct {
	precision float64
	buckets   []bucket
}

// NewAngleIndex buckets every trajectory of set by its heading rounded to
// precision degrees.
func NewAngleIndex(set *trajectory.Set, precision float64) *AngleIndex {
	byAngle := make(map[float64][]int)

	for _, t := range set.Trajectories() {
		a := utils.RoundTo(t.Angle, precision)
		byAngle[a] = append(byAngle[a], t.Index())
	}

	idx := &AngleIndex{
		precision: precision,
		buckets:   make([]bucket, 0, len(byAngle)),
	}

	for a, trajs := range byAngle {
		// Rounding is monotone, so ordering each bucket by exact heading makes
		// the visit order independent of the precision.
		sort.Slice(trajs, func(i, j int) bool {
			ai, aj := set.At(trajs[i]).Angle, set.At(trajs[j]).Angle
			if ai != aj {
				return ai < aj
			}

			return trajs[i] < trajs[j]
		})

		idx.buckets = append(idx.buckets, bucket{angle: a, trajs: trajs})
	}

	sort.Slice(idx.buckets, func(i, j int) bool {
		return idx.buckets[i].angle < idx.buckets[j].angle
	})

	return idx
}

// Len returns the number of buckets.
func (idx *AngleIndex) Len() int {
	return len(idx.buckets)
}

// Candidates calls fn, in ascending exact heading order with ties by index,
// for every trajectory whose bucket may lie within maxAngle of axis. Rounding
// can move a heading by up to half the precision, so callers must still apply
// the exact angle test.
func (idx *AngleIndex) Candidates(axis, maxAngle float64, fn func(traj int)) {
	slack := maxAngle + idx.precision/2
	lo := axis - slack
	hi := axis + slack

	i := sort.Search(len(idx.buckets), func(i int) bool {
		return idx.buckets[i].angle >= lo
	})

	for ; i < len(idx.buckets) && idx.buckets[i].angle <= hi; i++ {
		for _, t := range idx.buckets[i].trajs {
			fn(t)
		}
	}
}

// angleDiff is the plain absolute difference between headings, without
// wrapping around ±180.
func angleDiff(a, b float64) float64 {
	return math.Abs(a - b)
}
