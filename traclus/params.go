// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package traclus

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/jcodagnone/corredores/trajectory"
)

// DefaultAnglePrecision is the heading quantization of the angle index, in
// degrees.
const DefaultAnglePrecision = 0.01

// Params holds the tunables of a clustering run.
type Params struct {
	MaxDist     float64 `json:"max_dist"`     // reachability distance, in coordinate units
	MinWeight   float64 `json:"min_density"`  // density floor
	MaxAngle    float64 `json:"max_angle"`    // degrees
	SegmentSize float64 `json:"segment_size"` // subdivision length

	// AnglePrecision only affects how many buckets a query visits.
	AnglePrecision float64 `json:"angle_precision,omitempty"`
	// Workers > 1 runs the DBSCAN sweep in parallel.
	Workers int `json:"workers,omitempty"`
}

func positive(name string, v float64) error {
	if !(v > 0) || math.IsInf(v, 0) {
		return fmt.Errorf("%s must be positive, got %v: %w", name, v, trajectory.ErrInvalidArgument)
	}

	return nil
}

// Validate checks that every tunable is usable.
func (p *Params) Validate() error {
	if err := positive("max_dist", p.MaxDist); err != nil {
		return err
	}

	if err := positive("min_density", p.MinWeight); err != nil {
		return err
	}

	if err := positive("max_angle", p.MaxAngle); err != nil {
		return err
	}

	if p.MaxAngle > 180 {
		return fmt.Errorf("max_angle must be at most 180, got %v: %w", p.MaxAngle, trajectory.ErrInvalidArgument)
	}

	if err := positive("segment_size", p.SegmentSize); err != nil {
		return err
	}

	if p.AnglePrecision < 0 || math.IsNaN(p.AnglePrecision) {
		return fmt.Errorf("angle_precision must not be negative, got %v: %w", p.AnglePrecision, trajectory.ErrInvalidArgument)
	}

	if p.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d: %w", p.Workers, trajectory.ErrInvalidArgument)
	}

	return nil
}

func (p *Params) anglePrecision() float64 {
	if p.AnglePrecision == 0 {
		return DefaultAnglePrecision
	}

	return p.AnglePrecision
}

// LoadParams reads Params from a JSON file. Fields missing from the file are
// left at zero so flags can fill them in; the result is not validated.
func LoadParams(path string) (*Params, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("params file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat params file: %w", err)
	}

	const maxFileSize = 1 << 20
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("params file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read params file: %w", err)
	}

	var p Params
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse params JSON: %w", err)
	}

	return &p, nil
}
