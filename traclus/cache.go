// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package traclus

import "github.com/jcodagnone/corredores/trajectory"

// cacheKey identifies a (seed segment, candidate trajectory) pair by their
// indices in the trajectory set.
type cacheKey struct {
	seg  int
	traj int
}

// CacheStats counts how reachability lookups were served and how many
// distances were memoized.
type CacheStats struct {
	Hits    int `json:"hits"`
	Misses  int `json:"misses"`
	Entries int `json:"entries"`
}

// Merge adds other into s.
func (s *CacheStats) Merge(other CacheStats) {
	s.Hits += other.Hits
	s.Misses += other.Misses
	s.Entries += other.Entries
}

// Cache memoizes segment to trajectory distances and the closest segment on
// the trajectory. Entries are written once and never invalidated; a cache
// lives as long as one clustering run.
type Cache struct {
	dist    map[cacheKey]float64
	closest map[cacheKey]*trajectory.Segment
	stats   CacheStats
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{
		dist:    make(map[cacheKey]float64),
		closest: make(map[cacheKey]*trajectory.Segment),
	}
}

// Stats returns the hit and miss counts so far and the cache size.
func (c *Cache) Stats() CacheStats {
	s := c.stats
	s.Entries = len(c.dist)

	return s
}

// Distance returns the cached distance from the seed to the trajectory.
func (c *Cache) Distance(seg, traj int) (float64, bool) {
	d, ok := c.dist[cacheKey{seg, traj}]

	return d, ok
}

// Closest returns the cached closest segment on the trajectory.
func (c *Cache) Closest(seg, traj int) (*trajectory.Segment, bool) {
	s, ok := c.closest[cacheKey{seg, traj}]

	return s, ok
}

func (c *Cache) store(seg, traj int, d float64, closest *trajectory.Segment) {
	k := cacheKey{seg, traj}
	if _, ok := c.dist[k]; ok {
		return
	}

	c.dist[k] = d
	if closest != nil {
		c.closest[k] = closest
	}
}
