package handler

import (
	"net/http"

	"go.uber.org/zap"

	"collatzgraph/internal/codec"
	"collatzgraph/internal/domain"
	"collatzgraph/internal/service"
)

// LevelHandler handles per-value query requests
type LevelHandler struct {
	svc    *service.LevelService
	logger *zap.Logger
}

// NewLevelHandler creates a new level handler
func NewLevelHandler(svc *service.LevelService, logger *zap.Logger) *LevelHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LevelHandler{svc: svc, logger: logger.Named("levels")}
}

// PredecessorsResponse lists the first predecessors of a target
type PredecessorsResponse struct {
	Target       string   `json:"target"`
	Count        int      `json:"count"`
	Predecessors []string `json:"predecessors"`
}

// ClassifyResponse is the classification tuple of a value
type ClassifyResponse struct {
	Value string `json:"value"`
	domain.Tuple
	ColorName  string `json:"color_name"`
	ParityName string `json:"parity_name"`
}

// SequenceResponse is the forward trajectory of a value
type SequenceResponse struct {
	Start string   `json:"start"`
	Steps int      `json:"steps"`
	Odd   []string `json:"odd"`
	Level int      `json:"level"`
}

// LevelsResponse is the level dictionary rooted at 1
type LevelsResponse struct {
	BitBound int        `json:"bit_bound"`
	Levels   [][]string `json:"levels"`
}

// Predecessors returns the first count predecessors of the target
func (h *LevelHandler) Predecessors(w http.ResponseWriter, r *http.Request) {
	target, err := pathValue(r, "target")
	if err != nil {
		writeServiceError(w, h.logger, "Invalid target", err)
		return
	}
	count, err := queryInt(r, "count", 10)
	if err != nil {
		writeServiceError(w, h.logger, "Invalid count", err)
		return
	}

	preds, err := h.svc.Predecessors(target, count)
	if err != nil {
		writeServiceError(w, h.logger, "Failed to list predecessors", err)
		return
	}

	writeJSON(w, h.logger, PredecessorsResponse{
		Target:       target.String(),
		Count:        len(preds),
		Predecessors: domain.FormatValues(preds),
	}, http.StatusOK)
}

// Classify returns the classification tuple of a value
func (h *LevelHandler) Classify(w http.ResponseWriter, r *http.Request) {
	n, err := pathValue(r, "n")
	if err != nil {
		writeServiceError(w, h.logger, "Invalid value", err)
		return
	}

	tuple, err := h.svc.Classify(n)
	if err != nil {
		writeServiceError(w, h.logger, "Failed to classify", err)
		return
	}

	writeJSON(w, h.logger, ClassifyResponse{
		Value:      n.String(),
		Tuple:      tuple,
		ColorName:  tuple.Color.String(),
		ParityName: tuple.Parity.String(),
	}, http.StatusOK)
}

// Sequence returns the forward odd trajectory of a value and its level
func (h *LevelHandler) Sequence(w http.ResponseWriter, r *http.Request) {
	n, err := pathValue(r, "n")
	if err != nil {
		writeServiceError(w, h.logger, "Invalid value", err)
		return
	}

	traj, err := h.svc.Sequence(n)
	if err != nil {
		writeServiceError(w, h.logger, "Failed to follow sequence", err)
		return
	}

	writeJSON(w, h.logger, SequenceResponse{
		Start: n.String(),
		Steps: len(traj.Steps) - 1,
		Odd:   domain.FormatValues(traj.Odd),
		Level: traj.Level(),
	}, http.StatusOK)
}

// Levels returns the level dictionary for ?levels=L&bound=B
func (h *LevelHandler) Levels(w http.ResponseWriter, r *http.Request) {
	numLevels, err := queryInt(r, "levels", 5)
	if err != nil {
		writeServiceError(w, h.logger, "Invalid levels", err)
		return
	}
	bound, err := queryInt(r, "bound", 20)
	if err != nil {
		writeServiceError(w, h.logger, "Invalid bound", err)
		return
	}

	levels, err := h.svc.Levels(numLevels, bound)
	if err != nil {
		writeServiceError(w, h.logger, "Failed to build levels", err)
		return
	}

	resp := LevelsResponse{BitBound: bound, Levels: make([][]string, len(levels))}
	for i, level := range levels {
		resp.Levels[i] = domain.FormatValues(level)
	}
	writeJSON(w, h.logger, resp, http.StatusOK)
}

// Graph returns the bounded expansion tree of ?seed=S&bound=B, as
// vis-network JSON or, with format=dot, as Graphviz text
func (h *LevelHandler) Graph(w http.ResponseWriter, r *http.Request) {
	seed, err := querySeed(r)
	if err != nil {
		writeServiceError(w, h.logger, "Invalid seed", err)
		return
	}
	bound, err := queryInt(r, "bound", 10)
	if err != nil {
		writeServiceError(w, h.logger, "Invalid bound", err)
		return
	}
	maxNodes, err := queryInt(r, "max_nodes", 0)
	if err != nil {
		writeServiceError(w, h.logger, "Invalid max_nodes", err)
		return
	}

	g, err := h.svc.Graph(r.Context(), seed, bound, maxNodes)
	if err != nil {
		writeServiceError(w, h.logger, "Failed to build graph", err)
		return
	}

	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		writeJSON(w, h.logger, g, http.StatusOK)
	case "dot":
		dot := codec.NewDOTCodec()
		w.Header().Set("Content-Type", dot.ContentType())
		if err := dot.ExportGraph(g, w); err != nil {
			h.logger.Warn("failed to write DOT graph", zap.Error(err))
		}
	default:
		writeError(w, h.logger, "Invalid format", "format must be json or dot, got "+format, http.StatusBadRequest)
	}
}
