// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package lineio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/jcodagnone/corredores/spatial"
	"github.com/jcodagnone/corredores/traclus"
	"github.com/jcodagnone/corredores/trajectory"
)

var (
	segmentHeader  = []string{"id", "weight", "angle", "corridor_id", "coordinates"}
	corridorHeader = []string{"name", "weight", "coordinates"}
)

func newTSVWriter(w io.Writer) *csv.Writer {
	tw := csv.NewWriter(w)
	tw.Comma = '\t'

	return tw
}

// WriteSegments lists every segment of set with its parent's weight and
// heading and the corridor it was assigned to, -1 when none.
func WriteSegments(w io.Writer, set *trajectory.Set) error {
	tw := newTSVWriter(w)

	if err := tw.Write(segmentHeader); err != nil {
		return fmt.Errorf("writing segment header: %w", err)
	}

	for seg := range set.Segments() {
		parent := set.Parent(seg)

		row := []string{
			seg.ID,
			spatial.FormatFloat(parent.Weight),
			spatial.FormatFloat(parent.Angle),
			strconv.Itoa(seg.Corridor),
			seg.Line().String(),
		}

		if err := tw.Write(row); err != nil {
			return fmt.Errorf("writing segment %s: %w", seg.ID, err)
		}
	}

	tw.Flush()

	return tw.Error()
}

// WriteCorridors lists every corridor, by number, with its total weight and
// its weighted average line.
func WriteCorridors(w io.Writer, corridors []*traclus.Corridor) error {
	tw := newTSVWriter(w)

	if err := tw.Write(corridorHeader); err != nil {
		return fmt.Errorf("writing corridor header: %w", err)
	}

	for _, c := range corridors {
		row := []string{
			strconv.Itoa(c.ID),
			spatial.FormatFloat(c.Weight),
			c.Line().String(),
		}

		if err := tw.Write(row); err != nil {
			return fmt.Errorf("writing corridor %d: %w", c.ID, err)
		}
	}

	tw.Flush()

	return tw.Error()
}

// OutputNames returns the segment and corridor listing paths for infile,
// tagged with the run parameters.
func OutputNames(infile string, p traclus.Params) (string, string) {
	base := fmt.Sprintf("%s.%s.%s.%s.%s",
		infile,
		spatial.FormatFloat(p.MaxDist),
		spatial.FormatFloat(p.MinWeight),
		spatial.FormatFloat(p.MaxAngle),
		spatial.FormatFloat(p.SegmentSize),
	)

	return base + ".segmentlist.txt", base + ".corridorlist.txt"
}
