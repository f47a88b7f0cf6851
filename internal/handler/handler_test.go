package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collatzgraph/internal/core/collatz"
	"collatzgraph/internal/dispatch"
	"collatzgraph/internal/domain"
	"collatzgraph/internal/repository/sqlite"
	"collatzgraph/internal/service"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	repo, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	limits := service.Limits{MaxPredecessors: 100, MaxLevels: 10, MaxGraphNodes: 500, BoundLimit: 16}
	settings := dispatch.Settings{Workers: 2, MaxBoundOnMachine: 12, BreakPoint: 4}
	runner := dispatch.NewRunner(dispatch.NewLocalSubmitter(settings.Workers, nil), settings, nil)
	stats := service.NewStatsService(repo, runner, service.NewEventBus(), limits, nil)
	t.Cleanup(stats.Close)

	mux := http.NewServeMux()
	Register(mux,
		NewLevelHandler(service.NewLevelService(limits, nil), nil),
		NewRunHandler(stats, nil),
		nil, nil)

	srv := httptest.NewServer(Chain(mux, CORS))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url string, body string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, r)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestStatusCodes(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"predecessors", "GET", "/api/predecessors/7?count=3", "", http.StatusOK},
		{"zero target", "GET", "/api/predecessors/0", "", http.StatusBadRequest},
		{"non numeric target", "GET", "/api/predecessors/abc", "", http.StatusBadRequest},
		{"bad count", "GET", "/api/predecessors/1?count=many", "", http.StatusBadRequest},
		{"count above limit", "GET", "/api/predecessors/1?count=101", "", http.StatusRequestEntityTooLarge},
		{"classify zero", "GET", "/api/classify/0", "", http.StatusBadRequest},
		{"levels above limit", "GET", "/api/levels?levels=11&bound=10", "", http.StatusRequestEntityTooLarge},
		{"bound above limit", "GET", "/api/levels?levels=2&bound=17", "", http.StatusRequestEntityTooLarge},
		{"levels above node cap", "GET", "/api/levels?levels=10&bound=16", "", http.StatusRequestEntityTooLarge},
		{"graph bad format", "GET", "/api/graph?seed=1&bound=4&format=xml", "", http.StatusBadRequest},
		{"graph too large", "GET", "/api/graph?seed=1&bound=16&max_nodes=10", "", http.StatusRequestEntityTooLarge},
		{"missing run", "GET", "/api/runs/nope", "", http.StatusNotFound},
		{"delete missing run", "DELETE", "/api/runs/nope", "", http.StatusNotFound},
		{"run without seeds", "POST", "/api/runs", `{"bit_bound":5}`, http.StatusBadRequest},
		{"run with unknown field", "POST", "/api/runs", `{"seed":"1","bound":5}`, http.StatusBadRequest},
		{"run negative bound", "POST", "/api/runs", `{"seed":"1","bit_bound":-1}`, http.StatusBadRequest},
		{"run bound above limit", "POST", "/api/runs", `{"seed":"1","bit_bound":40}`, http.StatusRequestEntityTooLarge},
		{"sweep inverted", "POST", "/api/sweeps", `{"seed":"1","min_bound":8,"max_bound":4}`, http.StatusBadRequest},
		{"job without seeds", "POST", "/api/jobs", `{"id":"j","bit_bound":5}`, http.StatusBadRequest},
		{"health", "GET", "/healthz", "", http.StatusOK},
		{"preflight", "OPTIONS", "/api/runs", "", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, tt.method, srv.URL+tt.path, tt.body)
			assert.Equal(t, tt.want, resp.StatusCode)
			if tt.want >= 400 {
				e := decode[ErrorResponse](t, resp)
				assert.NotEmpty(t, e.Error)
			}
		})
	}
}

func TestLevelEndpoints(t *testing.T) {
	srv := newTestServer(t)

	t.Run("predecessors", func(t *testing.T) {
		resp := do(t, "GET", srv.URL+"/api/predecessors/1?count=3", "")
		got := decode[PredecessorsResponse](t, resp)
		assert.Equal(t, []string{"1", "5", "21"}, got.Predecessors)
		assert.Equal(t, 3, got.Count)
	})

	t.Run("classify", func(t *testing.T) {
		resp := do(t, "GET", srv.URL+"/api/classify/17", "")
		got := decode[ClassifyResponse](t, resp)
		assert.Equal(t, 2, got.Mod3)
		assert.Equal(t, 4, got.Length)
		assert.Equal(t, "red", got.ColorName)
		assert.Equal(t, "odd", got.ParityName)
	})

	t.Run("sequence", func(t *testing.T) {
		resp := do(t, "GET", srv.URL+"/api/sequence/3", "")
		got := decode[SequenceResponse](t, resp)
		assert.Equal(t, []string{"3", "5", "1"}, got.Odd)
		assert.Equal(t, 2, got.Level)
		assert.Equal(t, 7, got.Steps)
	})

	t.Run("levels", func(t *testing.T) {
		resp := do(t, "GET", srv.URL+"/api/levels?levels=2&bound=10", "")
		got := decode[LevelsResponse](t, resp)
		require.Len(t, got.Levels, 3)
		assert.Equal(t, []string{"1"}, got.Levels[0])
		assert.Equal(t, []string{"5", "21", "85", "341"}, got.Levels[1])
	})

	t.Run("graph json", func(t *testing.T) {
		resp := do(t, "GET", srv.URL+"/api/graph?seed=1&bound=4", "")
		got := decode[domain.Graph](t, resp)
		assert.Len(t, got.Nodes, 4)
		assert.Len(t, got.Edges, 3)
	})

	t.Run("graph dot", func(t *testing.T) {
		resp := do(t, "GET", srv.URL+"/api/graph?seed=1&bound=4&format=dot", "")
		assert.Equal(t, "text/vnd.graphviz", resp.Header.Get("Content-Type"))
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "digraph")
		assert.Contains(t, string(body), `"5" -> "13";`)
	})
}

func TestRunLifecycle(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, "POST", srv.URL+"/api/runs", `{"seed":"1","bit_bound":10}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	run := decode[domain.Run](t, resp)

	want, err := collatz.TabulateExpansion(context.Background(), []*big.Int{big.NewInt(1)}, 10)
	require.NoError(t, err)
	assert.True(t, run.Table.Equal(want))

	resp = do(t, "GET", srv.URL+"/api/runs?seed=1", "")
	list := decode[[]domain.Run](t, resp)
	require.Len(t, list, 1)
	assert.Equal(t, run.ID, list[0].ID)

	resp = do(t, "GET", srv.URL+"/api/runs/"+run.ID+"/export?format=text", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	report, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(report), "BIT BOUND")

	resp = do(t, "GET", srv.URL+"/api/runs/"+run.ID+"/export?format=yaml", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/yaml", resp.Header.Get("Content-Type"))
	exported, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	resp = do(t, "GET", srv.URL+"/api/runs/"+run.ID+"/export?format=xml", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, "DELETE", srv.URL+"/api/runs/"+run.ID, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = do(t, "GET", srv.URL+"/api/runs/"+run.ID, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	req, err := http.NewRequest("POST", srv.URL+"/api/runs/import?format=yaml", bytes.NewReader(exported))
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	imported := decode[domain.Run](t, resp)
	assert.Equal(t, run.ID, imported.ID)
	assert.True(t, imported.Table.Equal(want))

	resp = do(t, "POST", srv.URL+"/api/runs/import?format=json", `{"seeds":["1"],"bit_bound":3,"total":99,"table":[]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStartSweep(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, "POST", srv.URL+"/api/sweeps", `{"seed":"1","min_bound":2,"max_bound":4}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	got := decode[SweepResponse](t, resp)
	assert.NotEmpty(t, got.SweepID)
	assert.Equal(t, "sweep_started", got.Status)
}

func TestRemoteDispatchThroughJobsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	submitter, err := dispatch.NewHTTPSubmitter([]string{srv.URL})
	require.NoError(t, err)
	runner := dispatch.NewRunner(submitter, dispatch.Settings{Workers: 2, MaxBoundOnMachine: 8, BreakPoint: 5}, nil)

	seeds := []*big.Int{big.NewInt(1)}
	outcome, err := runner.Run(context.Background(), seeds, 12, nil)
	require.NoError(t, err)

	want, err := collatz.TabulateExpansion(context.Background(), seeds, 12)
	require.NoError(t, err)
	assert.True(t, outcome.Table.Equal(want))
	assert.Greater(t, outcome.Partitions, 0)
}

func TestRecover(t *testing.T) {
	panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	h := Chain(panicking, Recover(zapNop()), Logger(zapNop()))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var e ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&e))
	assert.Equal(t, "boom", e.Details)
}

func TestChainOrder(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}), mw("outer"), mw("inner"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}

func TestStatusRecorderFlushes(t *testing.T) {
	rec := httptest.NewRecorder()
	var w http.ResponseWriter = &statusRecorder{ResponseWriter: rec}
	f, ok := w.(http.Flusher)
	require.True(t, ok)
	f.Flush()
	assert.True(t, rec.Flushed)
}
