// Package handler implements HTTP request handlers for the collatzgraph API.
//
// # Handlers
//
// LevelHandler answers per-value queries: predecessors, classification,
// forward sequences, level dictionaries and expansion graphs.
//
// RunHandler computes, lists, exports, imports and deletes runs, starts
// background sweeps and serves the worker endpoint used by remote
// dispatch.
//
// Middleware provides panic recovery, CORS and structured request logging.
//
// # Response Format
//
// Success responses return JSON data with appropriate status codes (200, 201,
// 202). Error responses return JSON with {error, details} structure; invalid
// arguments map to 400, missing runs to 404, exceeded limits to 413.
//
// # Server-Sent Events
//
// The /events endpoint streams run and sweep progress, so clients can follow
// long computations started with POST /api/sweeps.
package handler
