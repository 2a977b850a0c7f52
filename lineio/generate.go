// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package lineio

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"math/rand/v2"

	"github.com/jcodagnone/corredores/spatial"
	"github.com/jcodagnone/corredores/trajectory"
)

// angleMargin keeps jittered headings strictly inside MaxAngle.
const angleMargin = 1e-6

// GenerateOptions controls synthetic data generation.
type GenerateOptions struct {
	LineLength    float64
	Clusters      int
	Rounds        int     // reference lines per cluster, MaxDistance apart
	LinesPerRound int     // lines per reference line, the reference included
	MaxAngle      float64 // heading jitter of the extra lines
	MaxDistance   float64 // start point jitter of the extra lines
	Seed          uint64
}

// GeneratedLine is one synthetic desire line.
type GeneratedLine struct {
	Start spatial.Point
	End   spatial.Point
	Angle float64
}

func (o GenerateOptions) validate() error {
	switch {
	case !(o.LineLength > 0):
		return fmt.Errorf("line length must be positive, got %v: %w", o.LineLength, trajectory.ErrInvalidArgument)
	case o.Clusters < 1, o.Rounds < 1, o.LinesPerRound < 1:
		return fmt.Errorf("clusters, rounds and lines per round must be at least 1: %w", trajectory.ErrInvalidArgument)
	case o.MaxAngle < 0, o.MaxDistance < 0:
		return fmt.Errorf("max angle and max distance must not be negative: %w", trajectory.ErrInvalidArgument)
	}

	return nil
}

// GenerateLines builds Clusters groups of lines whose headings are
// 2*MaxAngle+1 degrees apart, so lines of different groups never fall within
// MaxAngle of each other. Each group has Rounds reference lines laid side by
// side, each followed by LinesPerRound-1 lines starting near it with a
// heading jittered within MaxAngle.
func GenerateLines(opts GenerateOptions) ([]GeneratedLine, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	r := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	lines := make([]GeneratedLine, 0, opts.Clusters*opts.Rounds*opts.LinesPerRound)

	for c := range opts.Clusters {
		angle := float64(c) * (2*opts.MaxAngle + 1)

		for round := range opts.Rounds {
			start := spatial.Pt(float64(round)*opts.MaxDistance, 0)
			ref := GeneratedLine{Start: start, End: lineEnd(start, angle, opts.LineLength), Angle: angle}
			lines = append(lines, ref)

			for range opts.LinesPerRound - 1 {
				a := angle
				if opts.MaxAngle > angleMargin {
					a = uniform(r, angle-opts.MaxAngle+angleMargin, angle+opts.MaxAngle-angleMargin)
				}

				s := nearLine(r, ref, opts.MaxDistance, opts.LineLength)
				lines = append(lines, GeneratedLine{Start: s, End: lineEnd(s, a, opts.LineLength), Angle: a})
			}
		}
	}

	return lines, nil
}

// Generate writes GenerateLines in the input format read by Read, naming each
// line after its position and heading.
func Generate(w io.Writer, opts GenerateOptions) (int, error) {
	lines, err := GenerateLines(opts)
	if err != nil {
		return 0, err
	}

	bw := bufio.NewWriter(w)
	for i, l := range lines {
		_, err := fmt.Fprintf(bw, "%d_%s 1 %s %s %s %s\n",
			i, spatial.FormatFloat(l.Angle),
			spatial.FormatFloat(l.Start.X), spatial.FormatFloat(l.Start.Y),
			spatial.FormatFloat(l.End.X), spatial.FormatFloat(l.End.Y),
		)
		if err != nil {
			return i, fmt.Errorf("writing line %d: %w", i, err)
		}
	}

	if err := bw.Flush(); err != nil {
		return len(lines), fmt.Errorf("flushing output: %w", err)
	}

	return len(lines), nil
}

func lineEnd(start spatial.Point, angle, length float64) spatial.Point {
	rad := angle * math.Pi / 180

	return spatial.Pt(start.X+length*math.Cos(rad), start.Y+length*math.Sin(rad))
}

func uniform(r *rand.Rand, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

// nearLine picks a point along ref and moves it up to maxDist in a random
// direction.
func nearLine(r *rand.Rand, ref GeneratedLine, maxDist, length float64) spatial.Point {
	theta := math.Atan2(ref.End.Y-ref.Start.Y, ref.End.X-ref.Start.X)
	along := uniform(r, 0, length)
	offsetAngle := uniform(r, 0, 2*math.Pi)
	offset := uniform(r, 0, maxDist)

	return spatial.Pt(
		ref.Start.X+along*math.Cos(theta)+offset*math.Cos(offsetAngle),
		ref.Start.Y+along*math.Sin(theta)+offset*math.Sin(offsetAngle),
	)
}
