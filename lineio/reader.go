// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package lineio reads desire lines from text files and writes the
// clustering results as tab separated listings.
package lineio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jcodagnone/corredores/spatial"
	"github.com/jcodagnone/corredores/trajectory"
)

// ErrNoTrajectories is returned when the input has no data lines.
var ErrNoTrajectories = errors.New("no trajectories in input")

const fieldsPerLine = 6

// ParseError reports a malformed input line.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v: %q", e.Line, e.Err, e.Text)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Read parses lines of the form
//
//	name weight start_x start_y end_x end_y
//
// separated by any whitespace, and subdivides every trajectory with
// segmentSize. Blank lines and lines starting with # are skipped.
func Read(r io.Reader, segmentSize float64) (*trajectory.Set, error) {
	set, err := trajectory.NewSet(segmentSize)
	if err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++

		text := scanner.Text()
		trimmed := strings.TrimSpace(text)

		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		t, err := parseLine(trimmed)
		if err != nil {
			return nil, &ParseError{Line: lineNo, Text: text, Err: err}
		}

		if err := set.Add(t); err != nil {
			return nil, &ParseError{Line: lineNo, Text: text, Err: err}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}

	if set.Len() == 0 {
		return nil, ErrNoTrajectories
	}

	return set, nil
}

func parseLine(line string) (*trajectory.Trajectory, error) {
	fields := strings.Fields(line)
	if len(fields) < fieldsPerLine {
		return nil, fmt.Errorf("expected %d fields, got %d", fieldsPerLine, len(fields))
	}

	var nums [fieldsPerLine - 1]float64

	for i := range nums {
		v, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", i+2, err)
		}

		nums[i] = v
	}

	return trajectory.New(fields[0], nums[0], spatial.Pt(nums[1], nums[2]), spatial.Pt(nums[3], nums[4]))
}

// ReadFile opens path and reads it with Read.
func ReadFile(path string, segmentSize float64) (*trajectory.Set, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	set, err := Read(f, segmentSize)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return set, nil
}
