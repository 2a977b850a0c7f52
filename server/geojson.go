// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"github.com/jcodagnone/corredores/spatial"
	"github.com/jcodagnone/corredores/store"
)

// FeatureCollection is a GeoJSON feature collection.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature is a GeoJSON feature.
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// Geometry is a GeoJSON LineString geometry.
type Geometry struct {
	Type        string       `json:"type"`
	Coordinates [][2]float64 `json:"coordinates"`
}

func lineGeometry(l spatial.LineString) Geometry {
	return Geometry{
		Type:        "LineString",
		Coordinates: [][2]float64{{l.A.X, l.A.Y}, {l.B.X, l.B.Y}},
	}
}

func corridorFeatures(corridors []*store.CorridorRecord) *FeatureCollection {
	features := make([]Feature, len(corridors))

	for i, c := range corridors {
		props := map[string]any{
			"id":       c.ID,
			"weight":   c.Weight,
			"segments": c.Segments,
			"length":   c.Length,
		}
		if c.H3Cell != "" {
			props["h3_cell"] = c.H3Cell
		}

		features[i] = Feature{
			Type:       "Feature",
			Geometry:   lineGeometry(c.Line),
			Properties: props,
		}
	}

	return &FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
	}
}
