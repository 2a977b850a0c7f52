// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package traclus

import (
	"container/heap"
	"errors"
	"fmt"

	"github.com/jcodagnone/corredores/trajectory"
	"github.com/willf/bitset"
)

// ErrEmptyCluster is returned when adding a cluster without members.
var ErrEmptyCluster = errors.New("cannot add an empty cluster")

// Cluster is a candidate corridor: a seed, its members and their weight.
type Cluster struct {
	Seed      *trajectory.Segment
	Members   []*trajectory.Segment
	Weight    float64
	Tightness float64 // sum of pairwise start point distances
}

// Tightness returns the sum of the distances between the start points of
// every pair of segments. Lower means a more compact cluster.
func Tightness(segs []*trajectory.Segment) float64 {
	var sum float64

	for i := range segs {
		for j := i + 1; j < len(segs); j++ {
			sum += segs[i].Start.Distance(segs[j].Start)
		}
	}

	return sum
}

type entry struct {
	Cluster
	removed bool
	pos     int
}

// entryHeap orders entries by weight descending, then tightness ascending,
// then seed index so equal clusters pop in a stable order.
type entryHeap []*entry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	a, b := h[i], h[j]
	if a.Weight != b.Weight {
		return a.Weight > b.Weight
	}

	if a.Tightness != b.Tightness {
		return a.Tightness < b.Tightness
	}

	return a.Seed.Index < b.Seed.Index
}

func (h entryHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].pos = i
	h[j].pos = j
}

func (h *entryHeap) Push(x any) {
	e := x.(*entry)
	e.pos = len(*h)
	*h = append(*h, e)
}

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.pos = -1
	*h = old[:n-1]

	return e
}

// Queue selects a disjoint set of clusters in priority order. Replaced
// entries are tombstoned and dropped lazily when they reach the top; a popped
// cluster that lost members to an earlier one is shrunk and reinserted while
// it still meets the density floor.
type Queue struct {
	minWeight float64
	heap      entryHeap
	bySeed    map[int]*entry
	claimed   *bitset.BitSet
}

// NewQueue returns an empty queue with the given density floor.
func NewQueue(minWeight float64) (*Queue, error) {
	if err := positive("min weight", minWeight); err != nil {
		return nil, err
	}

	return &Queue{
		minWeight: minWeight,
		bySeed:    make(map[int]*entry),
		claimed:   bitset.New(0),
	}, nil
}

// Len returns the number of live entries.
func (q *Queue) Len() int {
	return len(q.bySeed)
}

// Add queues the cluster seeded at seed. An existing entry for the same seed
// is replaced, not merged.
func (q *Queue) Add(seed *trajectory.Segment, members []*trajectory.Segment, weight float64) error {
	if len(members) == 0 {
		return fmt.Errorf("seed %s: %w", seed.ID, ErrEmptyCluster)
	}

	if old, ok := q.bySeed[seed.Index]; ok {
		old.removed = true
		delete(q.bySeed, seed.Index)
	}

	e := &entry{
		Cluster: Cluster{
			Seed:      seed,
			Members:   members,
			Weight:    weight,
			Tightness: Tightness(members),
		},
	}

	q.bySeed[seed.Index] = e
	heap.Push(&q.heap, e)

	return nil
}

// Pop returns the next cluster whose members are all unclaimed and claims
// them. It returns false once no live entry can meet the density floor.
func (q *Queue) Pop() (*Cluster, bool) {
	for q.heap.Len() > 0 {
		e := heap.Pop(&q.heap).(*entry)
		if e.removed {
			continue
		}

		var (
			free   []*trajectory.Segment
			weight float64
		)

		for _, s := range e.Members {
			if !q.claimed.Test(uint(s.Index)) {
				free = append(free, s)
				weight += s.Weight
			}
		}

		if len(free) == len(e.Members) {
			for _, s := range e.Members {
				q.claimed.Set(uint(s.Index))
			}

			delete(q.bySeed, e.Seed.Index)
			c := e.Cluster

			return &c, true
		}

		if weight >= q.minWeight {
			e.Members = free
			e.Weight = weight
			e.Tightness = Tightness(free)
			heap.Push(&q.heap, e)

			continue
		}

		delete(q.bySeed, e.Seed.Index)
	}

	return nil, false
}
