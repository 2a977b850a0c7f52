// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/jcodagnone/corredores/store"
)

const dbFile = "corredores.duckdb"

// openRunRepository opens the run database under dir, creating the schema.
// When mustExist is set a missing database is an error instead of being
// created.
func openRunRepository(dir string, mustExist bool) (*sql.DB, store.RunRepository, error) {
	dbpath := filepath.Join(dir, dbFile)

	if mustExist {
		if _, err := os.Stat(dbpath); errors.Is(err, os.ErrNotExist) {
			return nil, nil, fmt.Errorf("database not found at %s - run 'cluster --db-path %s' first", dbpath, dir)
		}
	} else if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, nil, fmt.Errorf("creating db directory: %w", err)
	}

	db, err := sql.Open("duckdb", dbpath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}

	repo := store.NewRunRepository(db)
	if err := repo.CreateSchema(); err != nil {
		db.Close()

		return nil, nil, fmt.Errorf("creating schema: %w", err)
	}

	return db, repo, nil
}
