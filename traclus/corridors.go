// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package traclus

import (
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"

	"github.com/jcodagnone/corredores/spatial"
	"github.com/jcodagnone/corredores/trajectory"
	"github.com/jcodagnone/corredores/utils"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// logEvery is how often the sweep logs when there is no progress bar.
const logEvery = 100

// Corridor is a final, disjoint cluster of segments.
type Corridor struct {
	ID      int                   `json:"id"`
	Weight  float64               `json:"weight"`
	Members []*trajectory.Segment `json:"-"`
	Start   spatial.Point         `json:"start"` // weighted average of member starts
	End     spatial.Point         `json:"end"`   // weighted average of member ends
}

// Line returns the weighted average line of the corridor.
func (c *Corridor) Line() spatial.LineString {
	return spatial.LineString{A: c.Start, B: c.End}
}

// Result is the outcome of a clustering run.
type Result struct {
	Params    Params      `json:"params"`
	Clusters  int         `json:"clusters"` // dense clusters queued
	Corridors []*Corridor `json:"corridors"`
	Cache     CacheStats  `json:"cache"`
}

type sweepResult struct {
	weight  float64
	members []*trajectory.Segment
}

type progress struct {
	bar   *progressbar.ProgressBar
	total int
	done  atomic.Int64
}

func newProgress(total int) *progress {
	p := &progress{total: total}
	if isatty.IsTerminal(os.Stderr.Fd()) {
		p.bar = progressbar.NewOptions(total,
			progressbar.OptionSetDescription("Clustering segments"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	return p
}

func (p *progress) add() {
	n := p.done.Add(1)

	if p.bar != nil {
		_ = p.bar.Add(1)

		return
	}

	if n%logEvery == 0 {
		log.Printf("Processed %s/%s segments", utils.FormatInt(n), utils.FormatInt(int64(p.total)))
	}
}

// BuildQueue runs DBScan with every segment as seed and queues the clusters
// that meet the density floor, in segment order.
func (c *Clusterer) BuildQueue() (*Queue, error) {
	q, err := NewQueue(c.params.MinWeight)
	if err != nil {
		return nil, err
	}

	n := c.set.NumSegments()
	log.Printf("Building clusters from %s segments...", utils.FormatInt(int64(n)))

	results := make([]sweepResult, n)
	prog := newProgress(n)

	if c.params.Workers > 1 {
		c.sweepParallel(results, prog)
	} else {
		for seg := range c.set.Segments() {
			w, members := c.DBScan(seg)
			results[seg.Index] = sweepResult{weight: w, members: members}
			prog.add()
		}
	}

	for seg := range c.set.Segments() {
		r := results[seg.Index]
		if r.weight < c.params.MinWeight {
			continue
		}

		if err := q.Add(seg, r.members, r.weight); err != nil {
			return nil, fmt.Errorf("queueing cluster: %w", err)
		}
	}

	log.Printf("Added %s clusters to priority queue", utils.FormatInt(int64(q.Len())))

	return q, nil
}

// sweepParallel spreads trajectories over Workers goroutines, each with its
// own cache, and merges their statistics into c's cache when done.
func (c *Clusterer) sweepParallel(results []sweepResult, prog *progress) {
	jobs := make(chan *trajectory.Trajectory)
	stats := make(chan CacheStats, c.params.Workers)

	var wg sync.WaitGroup

	for range c.params.Workers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			w := c.fork()
			for t := range jobs {
				for i := range t.Segments {
					seg := &t.Segments[i]
					weight, members := w.DBScan(seg)
					results[seg.Index] = sweepResult{weight: weight, members: members}
					prog.add()
				}
			}

			stats <- w.cache.Stats()
		}()
	}

	for _, t := range c.set.Trajectories() {
		jobs <- t
	}

	close(jobs)
	wg.Wait()
	close(stats)

	for s := range stats {
		c.cache.stats.Merge(s)
	}
}

// PopCorridors drains q, numbering corridors from zero in extraction order and
// recording the number on every member segment.
func PopCorridors(q *Queue) ([]*Corridor, error) {
	var corridors []*Corridor

	log.Println("Extracting corridors from priority queue...")

	for {
		cluster, ok := q.Pop()
		if !ok {
			break
		}

		id := len(corridors)

		corr, err := newCorridor(id, cluster.Members)
		if err != nil {
			return nil, fmt.Errorf("corridor %d: %w", id, err)
		}

		for _, s := range cluster.Members {
			s.Corridor = id
		}

		corridors = append(corridors, corr)
		log.Printf("Extracted corridor %d with %d segments", id, len(cluster.Members))
	}

	log.Printf("Total corridors found: %d", len(corridors))

	return corridors, nil
}

func newCorridor(id int, members []*trajectory.Segment) (*Corridor, error) {
	starts := make([]spatial.Point, len(members))
	ends := make([]spatial.Point, len(members))
	weights := make([]float64, len(members))

	var total float64

	for i, s := range members {
		starts[i], ends[i], weights[i] = s.Start, s.End, s.Weight
		total += s.Weight
	}

	start, err := spatial.WeightedCentroid(starts, weights)
	if err != nil {
		return nil, err
	}

	end, err := spatial.WeightedCentroid(ends, weights)
	if err != nil {
		return nil, err
	}

	return &Corridor{
		ID:      id,
		Weight:  total,
		Members: members,
		Start:   start,
		End:     end,
	}, nil
}

// Run clusters set with params and assigns every segment its corridor. The
// set must not have been clustered before: segments start unassigned when
// they are created and only PopCorridors assigns them.
func Run(set *trajectory.Set, params Params) (*Result, error) {
	c, err := NewClusterer(set, params)
	if err != nil {
		return nil, err
	}

	q, err := c.BuildQueue()
	if err != nil {
		return nil, err
	}

	clusters := q.Len()

	corridors, err := PopCorridors(q)
	if err != nil {
		return nil, err
	}

	return &Result{
		Params:    c.params,
		Clusters:  clusters,
		Corridors: corridors,
		Cache:     c.cache.Stats(),
	}, nil
}
