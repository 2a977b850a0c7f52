// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package store persists clustering runs, their segments and corridors in
// DuckDB.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jcodagnone/corredores/spatial"
	"github.com/jcodagnone/corredores/traclus"
	"github.com/jcodagnone/corredores/trajectory"
	"github.com/uber/h3-go/v4"
)

// ErrRunNotFound is returned when looking up an unknown run id.
var ErrRunNotFound = errors.New("run not found")

// DefaultH3Resolution is the cell size used for geographic runs when none is
// given, roughly 0.7 km² per cell.
const DefaultH3Resolution = 8

// Run describes one clustering invocation.
type Run struct {
	ID           string         `json:"id"`
	Input        string         `json:"input"`
	Params       traclus.Params `json:"params"`
	Geographic   bool           `json:"geographic"`
	H3Resolution int            `json:"h3_resolution,omitempty"`
	Trajectories int            `json:"trajectories"`
	Segments     int            `json:"segments"`
	Corridors    int            `json:"corridors"`
	Clusters     int            `json:"clusters"`
	CacheHits    int            `json:"cache_hits"`
	CacheMisses  int            `json:"cache_misses"`
	CreatedAt    time.Time      `json:"created_at"`
}

// NewRun describes a finished clustering of input.
func NewRun(input string, res *traclus.Result) *Run {
	return &Run{
		Input:       input,
		Params:      res.Params,
		Clusters:    res.Clusters,
		CacheHits:   res.Cache.Hits,
		CacheMisses: res.Cache.Misses,
	}
}

// CorridorRecord is a stored corridor.
type CorridorRecord struct {
	RunID    string             `json:"run_id"`
	ID       int                `json:"id"`
	Weight   float64            `json:"weight"`
	Segments int                `json:"segments"`
	Length   float64            `json:"length"` // meters for geographic runs
	H3Cell   string             `json:"h3_cell,omitempty"`
	Midpoint spatial.Point      `json:"midpoint"`
	Line     spatial.LineString `json:"line"`
}

// SegmentRecord is a stored segment.
type SegmentRecord struct {
	RunID      string             `json:"run_id"`
	ID         string             `json:"id"`
	Trajectory string             `json:"trajectory"`
	Seq        int                `json:"seq"`
	Weight     float64            `json:"weight"`
	Angle      float64            `json:"angle"`
	Corridor   int                `json:"corridor_id"`
	Line       spatial.LineString `json:"line"`
}

// RunRepository handles persistence of clustering runs.
type RunRepository interface {
	// CreateSchema creates the runs, segments and corridors tables
	CreateSchema() error

	// SaveRun stores run with every segment of set and the corridors
	SaveRun(run *Run, set *trajectory.Set, corridors []*traclus.Corridor) error

	// ListRuns returns every run, newest first
	ListRuns() ([]*Run, error)

	// GetRun returns a single run
	GetRun(id string) (*Run, error)

	// ListCorridors returns the corridors of a run in extraction order
	ListCorridors(runID string) ([]*CorridorRecord, error)

	// ListSegments returns the segments of a run in input order, optionally
	// only those of one corridor
	ListSegments(runID string, corridor *int) ([]*SegmentRecord, error)
}

type sqlRunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new run repository.
func NewRunRepository(db *sql.DB) RunRepository {
	return &sqlRunRepository{db: db}
}

func (r *sqlRunRepository) CreateSchema() error {
	// DuckDB needs to load the spatial extension
	_, err := r.db.Exec(`INSTALL spatial; LOAD spatial;`)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id VARCHAR PRIMARY KEY,
			input VARCHAR NOT NULL,
			max_dist DOUBLE NOT NULL,
			min_density DOUBLE NOT NULL,
			max_angle DOUBLE NOT NULL,
			segment_size DOUBLE NOT NULL,
			geographic BOOLEAN DEFAULT FALSE,
			h3_resolution INTEGER,
			trajectories INTEGER NOT NULL,
			segments INTEGER NOT NULL,
			corridors INTEGER NOT NULL,
			clusters INTEGER NOT NULL,
			cache_hits BIGINT NOT NULL,
			cache_misses BIGINT NOT NULL,
			created_at TIMESTAMP NOT NULL
		);

		CREATE TABLE IF NOT EXISTS segments (
			run_id VARCHAR NOT NULL,
			ordinal INTEGER NOT NULL,
			id VARCHAR NOT NULL,
			trajectory VARCHAR NOT NULL,
			seq INTEGER NOT NULL,
			weight DOUBLE NOT NULL,
			angle DOUBLE NOT NULL,
			corridor_id INTEGER NOT NULL,
			geom GEOMETRY NOT NULL,
			PRIMARY KEY (run_id, ordinal)
		);

		CREATE TABLE IF NOT EXISTS corridors (
			run_id VARCHAR NOT NULL,
			id INTEGER NOT NULL,
			weight DOUBLE NOT NULL,
			segments INTEGER NOT NULL,
			length DOUBLE NOT NULL,
			h3_cell UBIGINT,
			mid POINT_2D NOT NULL,
			geom GEOMETRY NOT NULL,
			PRIMARY KEY (run_id, id)
		);
	`)

	return err
}

func (r *sqlRunRepository) SaveRun(run *Run, set *trajectory.Set, corridors []*traclus.Corridor) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}

	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	if run.Geographic && run.H3Resolution == 0 {
		run.H3Resolution = DefaultH3Resolution
	}

	run.Trajectories = set.Len()
	run.Segments = set.NumSegments()
	run.Corridors = len(corridors)

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction for run %s: %w", run.ID, err)
	}

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			log.Printf("failed to rollback transaction for run %s: %v", run.ID, err)
		}
	}()

	var h3Res any
	if run.Geographic {
		h3Res = run.H3Resolution
	}

	_, err = tx.Exec(`
		INSERT INTO runs (
			id, input, max_dist, min_density, max_angle, segment_size,
			geographic, h3_resolution, trajectories, segments, corridors, clusters,
			cache_hits, cache_misses, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Input, run.Params.MaxDist, run.Params.MinWeight, run.Params.MaxAngle, run.Params.SegmentSize,
		run.Geographic, h3Res, run.Trajectories, run.Segments, run.Corridors, run.Clusters,
		run.CacheHits, run.CacheMisses, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", run.ID, err)
	}

	if err := insertSegments(tx, run.ID, set); err != nil {
		return err
	}

	if err := insertCorridors(tx, run, corridors); err != nil {
		return err
	}

	return tx.Commit()
}

func insertSegments(tx *sql.Tx, runID string, set *trajectory.Set) error {
	stmt, err := tx.Prepare(`
		INSERT INTO segments (run_id, ordinal, id, trajectory, seq, weight, angle, corridor_id, geom)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ST_GeomFromText(?))
	`)
	if err != nil {
		return fmt.Errorf("preparing segment statement: %w", err)
	}
	defer stmt.Close()

	for seg := range set.Segments() {
		parent := set.Parent(seg)

		_, err := stmt.Exec(
			runID,
			seg.Index,
			seg.ID,
			parent.Name,
			seg.Seq,
			parent.Weight,
			parent.Angle,
			seg.Corridor,
			seg.Line(),
		)
		if err != nil {
			return fmt.Errorf("inserting segment %s: %w", seg.ID, err)
		}
	}

	return nil
}

func insertCorridors(tx *sql.Tx, run *Run, corridors []*traclus.Corridor) error {
	stmt, err := tx.Prepare(`
		INSERT INTO corridors (run_id, id, weight, segments, length, h3_cell, mid, geom)
		VALUES (?, ?, ?, ?, ?, ?, ST_GeomFromText(?), ST_GeomFromText(?))
	`)
	if err != nil {
		return fmt.Errorf("preparing corridor statement: %w", err)
	}
	defer stmt.Close()

	for _, c := range corridors {
		line := c.Line()
		mid := line.A.Midpoint(line.B)
		length := line.Length()

		var cell any

		if run.Geographic {
			length = line.A.HaversineDistance(&line.B)

			h, err := cellAt(mid, run.H3Resolution)
			if err != nil {
				return fmt.Errorf("corridor %d: %w", c.ID, err)
			}

			cell = int64(h)
		}

		if _, err := stmt.Exec(run.ID, c.ID, c.Weight, len(c.Members), length, cell, mid, line); err != nil {
			return fmt.Errorf("inserting corridor %d: %w", c.ID, err)
		}
	}

	return nil
}

func cellAt(p spatial.Point, res int) (h3.Cell, error) {
	lat, lng := p.LatLng()

	cell, err := h3.LatLngToCell(h3.NewLatLng(lat, lng), res)
	if err != nil {
		return 0, fmt.Errorf("error converting to h3 cell at res %d: %w", res, err)
	}

	return cell, nil
}

const runColumns = `
	id, input, max_dist, min_density, max_angle, segment_size,
	geographic, h3_resolution, trajectories, segments, corridors, clusters,
	cache_hits, cache_misses, created_at`

func scanRun(row interface{ Scan(...any) error }) (*Run, error) {
	run := &Run{}

	var h3Res sql.NullInt64

	err := row.Scan(
		&run.ID, &run.Input,
		&run.Params.MaxDist, &run.Params.MinWeight, &run.Params.MaxAngle, &run.Params.SegmentSize,
		&run.Geographic, &h3Res,
		&run.Trajectories, &run.Segments, &run.Corridors, &run.Clusters,
		&run.CacheHits, &run.CacheMisses, &run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if h3Res.Valid {
		run.H3Resolution = int(h3Res.Int64)
	}

	return run, nil
}

func (r *sqlRunRepository) ListRuns() ([]*Run, error) {
	rows, err := r.db.Query(`SELECT` + runColumns + ` FROM runs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run

	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}

		runs = append(runs, run)
	}

	return runs, rows.Err()
}

func (r *sqlRunRepository) GetRun(id string) (*Run, error) {
	run, err := scanRun(r.db.QueryRow(`SELECT`+runColumns+` FROM runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}

	if err != nil {
		return nil, err
	}

	return run, nil
}

func (r *sqlRunRepository) ListCorridors(runID string) ([]*CorridorRecord, error) {
	rows, err := r.db.Query(`
		SELECT run_id, id, weight, segments, length, h3_cell, mid, ST_AsText(geom)
		FROM corridors
		WHERE run_id = ?
		ORDER BY id
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var corridors []*CorridorRecord

	for rows.Next() {
		c := &CorridorRecord{}

		var cell sql.NullInt64

		if err := rows.Scan(&c.RunID, &c.ID, &c.Weight, &c.Segments, &c.Length, &cell, &c.Midpoint, &c.Line); err != nil {
			return nil, err
		}

		if cell.Valid {
			c.H3Cell = h3.Cell(cell.Int64).String()
		}

		corridors = append(corridors, c)
	}

	return corridors, rows.Err()
}

func (r *sqlRunRepository) ListSegments(runID string, corridor *int) ([]*SegmentRecord, error) {
	query := `
		SELECT run_id, id, trajectory, seq, weight, angle, corridor_id, ST_AsText(geom)
		FROM segments
		WHERE run_id = ?`
	args := []any{runID}

	if corridor != nil {
		query += " AND corridor_id = ?"

		args = append(args, *corridor)
	}

	query += " ORDER BY ordinal"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var segments []*SegmentRecord

	for rows.Next() {
		s := &SegmentRecord{}
		if err := rows.Scan(&s.RunID, &s.ID, &s.Trajectory, &s.Seq, &s.Weight, &s.Angle, &s.Corridor, &s.Line); err != nil {
			return nil, err
		}

		segments = append(segments, s)
	}

	return segments, rows.Err()
}
