// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package server exposes stored clustering runs over HTTP.
package server

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jcodagnone/corredores/store"
)

type Server struct {
	repo store.RunRepository
}

func NewServer(repo store.RunRepository) *Server {
	return &Server{repo: repo}
}

// Router registers every route on a new gin engine.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()

	r.GET("/api/runs", s.listRuns)
	r.GET("/api/runs/:run_id", s.getRun)
	r.GET("/api/runs/:run_id/corridors", s.listCorridors)
	r.GET("/api/runs/:run_id/corridors.geojson", s.corridorsGeoJSON)
	r.GET("/api/runs/:run_id/segments", s.listSegments)

	return r
}

func (s *Server) Run(addr string) error {
	log.Printf("Serving runs on %s", addr)

	return s.Router().Run(addr)
}

func (s *Server) listRuns(ctx *gin.Context) {
	runs, err := s.repo.ListRuns()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	if runs == nil {
		runs = []*store.Run{}
	}

	ctx.JSON(http.StatusOK, runs)
}

// lookupRun writes the error response and returns nil when the run in the
// path cannot be loaded.
func (s *Server) lookupRun(ctx *gin.Context) *store.Run {
	run, err := s.repo.GetRun(ctx.Param("run_id"))
	if errors.Is(err, store.ErrRunNotFound) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

		return nil
	}

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return nil
	}

	return run
}

func (s *Server) getRun(ctx *gin.Context) {
	run := s.lookupRun(ctx)
	if run == nil {
		return
	}

	ctx.JSON(http.StatusOK, run)
}

func (s *Server) listCorridors(ctx *gin.Context) {
	run := s.lookupRun(ctx)
	if run == nil {
		return
	}

	corridors, err := s.repo.ListCorridors(run.ID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	if corridors == nil {
		corridors = []*store.CorridorRecord{}
	}

	ctx.JSON(http.StatusOK, corridors)
}

func (s *Server) corridorsGeoJSON(ctx *gin.Context) {
	run := s.lookupRun(ctx)
	if run == nil {
		return
	}

	corridors, err := s.repo.ListCorridors(run.ID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	ctx.Header("Content-Type", "application/geo+json")
	ctx.JSON(http.StatusOK, corridorFeatures(corridors))
}

func (s *Server) listSegments(ctx *gin.Context) {
	var corridor *int

	if c := ctx.Query("corridor"); c != "" {
		id, err := strconv.Atoi(c)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "corridor must be an integer"})

			return
		}

		corridor = &id
	}

	run := s.lookupRun(ctx)
	if run == nil {
		return
	}

	segments, err := s.repo.ListSegments(run.ID, corridor)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	if segments == nil {
		segments = []*store.SegmentRecord{}
	}

	ctx.JSON(http.StatusOK, gin.H{
		"run_id":   run.ID,
		"corridor": corridor,
		"segments": segments,
		"total":    len(segments),
	})
}
