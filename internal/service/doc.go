// Package service implements business logic for the collatzgraph server.
//
// LevelService answers per-value queries (predecessors, classification,
// forward trajectories, level dictionaries, expansion graphs) under
// configurable request limits. StatsService computes runs through a
// dispatch.Runner, persists them, runs statistics sweeps in the background
// and imports and exports run files.
//
// All services publish events via EventBus for real-time updates to
// connected clients via Server-Sent Events (SSE), and record Prometheus
// metrics for the /metrics endpoint.
package service
