package handler

import (
	"bytes"
	"fmt"
	"math/big"
	"net/http"

	"go.uber.org/zap"

	"collatzgraph/internal/dispatch"
	"collatzgraph/internal/domain"
	"collatzgraph/internal/repository"
	"collatzgraph/internal/service"
)

// RunHandler handles run, sweep and worker job requests
type RunHandler struct {
	svc    *service.StatsService
	logger *zap.Logger
}

// NewRunHandler creates a new run handler
func NewRunHandler(svc *service.StatsService, logger *zap.Logger) *RunHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RunHandler{svc: svc, logger: logger.Named("runs")}
}

// SeedSet names the seeds of a request, either one seed or a list
type SeedSet struct {
	Seed  string   `json:"seed,omitempty" validate:"omitempty,numeric"`
	Seeds []string `json:"seeds,omitempty" validate:"omitempty,dive,numeric"`
}

func (s SeedSet) values() ([]*big.Int, error) {
	strs := s.Seeds
	if s.Seed != "" {
		strs = append([]string{s.Seed}, strs...)
	}
	if len(strs) == 0 {
		return nil, fmt.Errorf("%w: seed or seeds is required", domain.ErrInvalidArgument)
	}
	return domain.ParseValues(strs)
}

// RunRequest asks for one run
type RunRequest struct {
	SeedSet
	BitBound int `json:"bit_bound" validate:"gte=0"`
}

// SweepRequest asks for a background sweep over a range of bit bounds
type SweepRequest struct {
	SeedSet
	MinBound int `json:"min_bound" validate:"gte=0"`
	MaxBound int `json:"max_bound" validate:"gtefield=MinBound"`
}

// SweepResponse acknowledges a started sweep
type SweepResponse struct {
	SweepID  string `json:"sweep_id"`
	Status   string `json:"status"`
	MinBound int    `json:"min_bound"`
	MaxBound int    `json:"max_bound"`
}

// CreateRun computes, stores and returns one run
func (h *RunHandler) CreateRun(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := decodeBody(r, w, &req); err != nil {
		writeServiceError(w, h.logger, "Invalid request body", err)
		return
	}
	seeds, err := req.values()
	if err != nil {
		writeServiceError(w, h.logger, "Invalid seeds", err)
		return
	}

	run, err := h.svc.ComputeRun(r.Context(), seeds, req.BitBound)
	if err != nil {
		writeServiceError(w, h.logger, "Failed to compute run", err)
		return
	}

	writeJSON(w, h.logger, run, http.StatusCreated)
}

// StartSweep starts a sweep in the background; progress goes to /events
func (h *RunHandler) StartSweep(w http.ResponseWriter, r *http.Request) {
	var req SweepRequest
	if err := decodeBody(r, w, &req); err != nil {
		writeServiceError(w, h.logger, "Invalid request body", err)
		return
	}
	seeds, err := req.values()
	if err != nil {
		writeServiceError(w, h.logger, "Invalid seeds", err)
		return
	}

	id, err := h.svc.StartSweep(service.SweepRequest{
		Seeds:    seeds,
		MinBound: req.MinBound,
		MaxBound: req.MaxBound,
	})
	if err != nil {
		writeServiceError(w, h.logger, "Failed to start sweep", err)
		return
	}

	writeJSON(w, h.logger, SweepResponse{
		SweepID:  id,
		Status:   "sweep_started",
		MinBound: req.MinBound,
		MaxBound: req.MaxBound,
	}, http.StatusAccepted)
}

// ListRuns returns stored run headers, newest first, optionally filtered by
// ?seed= (a comma separated seed list) and capped by ?limit=
func (h *RunHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeServiceError(w, h.logger, "Invalid limit", err)
		return
	}

	runs, err := h.svc.ListRuns(r.Context(), repository.RunFilter{
		Seeds: r.URL.Query().Get("seed"),
		Limit: limit,
	})
	if err != nil {
		writeServiceError(w, h.logger, "Failed to list runs", err)
		return
	}

	writeJSON(w, h.logger, runs, http.StatusOK)
}

// GetRun returns a stored run with its table
func (h *RunHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.svc.GetRun(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, h.logger, "Failed to get run", err)
		return
	}

	writeJSON(w, h.logger, run, http.StatusOK)
}

// DeleteRun removes a stored run
func (h *RunHandler) DeleteRun(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteRun(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, h.logger, "Failed to delete run", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ExportRun writes a stored run as ?format=json|yaml|text
func (h *RunHandler) ExportRun(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	id := r.PathValue("id")

	var buf bytes.Buffer
	exp, err := h.svc.ExportRun(r.Context(), id, format, &buf)
	if err != nil {
		writeServiceError(w, h.logger, "Failed to export run", err)
		return
	}

	w.Header().Set("Content-Type", exp.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=run-%s.%s", id, exp.Format()))
	w.Write(buf.Bytes())
}

// ImportRun stores a run file posted as ?format=json|yaml
func (h *RunHandler) ImportRun(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}

	data, err := readBody(r, w)
	if err != nil {
		writeServiceError(w, h.logger, "Failed to read request body", err)
		return
	}

	run, err := h.svc.ImportRun(r.Context(), data, format)
	if err != nil {
		writeServiceError(w, h.logger, "Failed to import run", err)
		return
	}

	writeJSON(w, h.logger, run, http.StatusCreated)
}

// ExecuteJob is the worker endpoint: it tabulates one partition for a
// remote coordinator and answers with the partial table
func (h *RunHandler) ExecuteJob(w http.ResponseWriter, r *http.Request) {
	var job dispatch.Job
	if err := decodeBody(r, w, &job); err != nil {
		writeServiceError(w, h.logger, "Invalid job", err)
		return
	}

	result, err := h.svc.ExecuteJob(r.Context(), job)
	if err != nil {
		writeServiceError(w, h.logger, "Failed to execute job", err)
		return
	}

	writeJSON(w, h.logger, result, http.StatusOK)
}
