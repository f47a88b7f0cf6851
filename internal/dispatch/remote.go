package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// JobsPath is the worker endpoint that executes a single job
const JobsPath = "/api/jobs"

// ErrWorker wraps failures reported by a remote worker
var ErrWorker = errors.New("worker error")

// HTTPSubmitter posts jobs to remote workers, cycling through endpoints
type HTTPSubmitter struct {
	endpoints []string
	client    *http.Client
	timeout   time.Duration
	next      atomic.Uint64
	logger    *zap.Logger
}

// HTTPOption configures an HTTPSubmitter
type HTTPOption func(*HTTPSubmitter)

// WithHTTPClient replaces the default client
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(s *HTTPSubmitter) { s.client = c }
}

// WithRequestTimeout bounds every job request
func WithRequestTimeout(d time.Duration) HTTPOption {
	return func(s *HTTPSubmitter) { s.timeout = d }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) HTTPOption {
	return func(s *HTTPSubmitter) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewHTTPSubmitter creates a submitter for the given worker base URLs
func NewHTTPSubmitter(endpoints []string, opts ...HTTPOption) (*HTTPSubmitter, error) {
	if len(endpoints) == 0 {
		return nil, fmt.Errorf("remote submitter needs at least one endpoint")
	}
	s := &HTTPSubmitter{
		endpoints: make([]string, len(endpoints)),
		client:    http.DefaultClient,
		logger:    zap.NewNop(),
	}
	for i, e := range endpoints {
		s.endpoints[i] = strings.TrimRight(e, "/")
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("remote")
	return s, nil
}

// Name implements Submitter
func (s *HTTPSubmitter) Name() string {
	return "remote"
}

// Submit implements Submitter
func (s *HTTPSubmitter) Submit(ctx context.Context, job Job) *Future {
	body, err := json.Marshal(job)
	if err != nil {
		return failedFuture(fmt.Errorf("encode job %s: %w", job.ID, err))
	}

	endpoint := s.endpoints[(s.next.Add(1)-1)%uint64(len(s.endpoints))]
	f := newFuture()
	go func() {
		result, err := s.post(ctx, endpoint, body)
		if err != nil {
			s.logger.Warn("remote job failed",
				zap.String("job", job.ID), zap.String("endpoint", endpoint), zap.Error(err))
			err = fmt.Errorf("job %s on %s: %w", job.ID, endpoint, err)
		}
		f.resolve(result, err)
	}()
	return f
}

func (s *HTTPSubmitter) post(ctx context.Context, endpoint string, body []byte) (JobResult, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+JobsPath, bytes.NewReader(body))
	if err != nil {
		return JobResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return JobResult{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e struct {
			Error   string `json:"error"`
			Details string `json:"details"`
		}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			return JobResult{}, fmt.Errorf("%w: %s: %s (status %d)", ErrWorker, e.Error, e.Details, resp.StatusCode)
		}
		return JobResult{}, fmt.Errorf("%w: status %d", ErrWorker, resp.StatusCode)
	}

	var result JobResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return JobResult{}, fmt.Errorf("decode result: %w", err)
	}
	return result, nil
}
