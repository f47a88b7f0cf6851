package handler

import (
	"net/http"

	"collatzgraph/internal/dispatch"
)

// Register mounts the API routes on mux. events and metrics may be nil.
func Register(mux *http.ServeMux, levels *LevelHandler, runs *RunHandler, events, metrics http.Handler) {
	// Per-value queries
	mux.HandleFunc("GET /api/predecessors/{target}", levels.Predecessors)
	mux.HandleFunc("GET /api/classify/{n}", levels.Classify)
	mux.HandleFunc("GET /api/sequence/{n}", levels.Sequence)
	mux.HandleFunc("GET /api/levels", levels.Levels)
	mux.HandleFunc("GET /api/graph", levels.Graph)

	// Runs and sweeps
	mux.HandleFunc("POST /api/runs", runs.CreateRun)
	mux.HandleFunc("GET /api/runs", runs.ListRuns)
	mux.HandleFunc("POST /api/runs/import", runs.ImportRun)
	mux.HandleFunc("GET /api/runs/{id}", runs.GetRun)
	mux.HandleFunc("DELETE /api/runs/{id}", runs.DeleteRun)
	mux.HandleFunc("GET /api/runs/{id}/export", runs.ExportRun)
	mux.HandleFunc("POST /api/sweeps", runs.StartSweep)

	// Worker endpoint for remote dispatch
	mux.HandleFunc("POST "+dispatch.JobsPath, runs.ExecuteJob)

	if events != nil {
		mux.Handle("GET /events", events)
	}
	if metrics != nil {
		mux.Handle("GET /metrics", metrics)
	}
	mux.HandleFunc("GET /healthz", Health)
}
