package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/chipp-ai/dispatch/engine/core"
	"github.com/chipp-ai/dispatch/pkg/logger"
	"github.com/go-resty/resty/v2"
)

// DefaultMaxBodyBytes caps how much of an upstream response is read and
// retained, bounding memory on pathological endpoints.
const DefaultMaxBodyBytes = 1 << 20

// Outcome is the raw classified result of one outbound call.
type Outcome struct {
	StatusCode int
	Body       []byte
	Truncated  bool
	Duration   time.Duration
}

// Executor issues outbound HTTP calls under a hard per-call deadline.
type Executor struct {
	client       *resty.Client
	maxBodyBytes int64
}

type ExecutorOption func(*Executor)

// WithMaxBodyBytes overrides the response body cap.
func WithMaxBodyBytes(n int64) ExecutorOption {
	return func(e *Executor) {
		if n > 0 {
			e.maxBodyBytes = n
		}
	}
}

// WithClient replaces the underlying resty client.
func WithClient(client *resty.Client) ExecutorOption {
	return func(e *Executor) {
		if client != nil {
			e.client = client.SetDoNotParseResponse(true)
		}
	}
}

func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{
		client:       resty.New().SetDoNotParseResponse(true),
		maxBodyBytes: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Do executes the request under the given deadline and classifies the
// outcome:
//
//   - deadline exceeded      -> timeout (no partial body capture)
//   - no response received   -> network_error
//   - non-2xx response       -> upstream_error, outcome still returned
//   - 2xx                    -> outcome, nil error
//
// The engine never retries: idempotency of arbitrary third-party endpoints
// cannot be assumed.
func (e *Executor) Do(ctx context.Context, req *HTTPRequest, timeout time.Duration) (*Outcome, error) {
	log := logger.FromContext(ctx)
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	r := e.client.R().
		SetContext(callCtx).
		SetHeaders(req.Headers).
		SetQueryParams(req.Query)
	if req.Body != nil {
		r.SetBody(req.Body)
	}
	resp, err := r.Execute(req.Method.String(), req.URL)
	if err != nil {
		return nil, classifyTransportError(callCtx, err, time.Since(start))
	}

	body, truncated, readErr := e.readBody(resp)
	if readErr != nil {
		return nil, classifyTransportError(callCtx, readErr, time.Since(start))
	}
	outcome := &Outcome{
		StatusCode: resp.StatusCode(),
		Body:       body,
		Truncated:  truncated,
		Duration:   time.Since(start),
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		log.Debug("upstream returned non-2xx", "status", resp.StatusCode(), "method", req.Method)
		return outcome, core.NewError(nil, core.ErrCodeUpstream,
			fmt.Sprintf("upstream responded with status %d", resp.StatusCode()),
			map[string]any{"http_status": resp.StatusCode()})
	}
	return outcome, nil
}

// readBody drains up to the configured cap and reports truncation.
func (e *Executor) readBody(resp *resty.Response) ([]byte, bool, error) {
	raw := resp.RawBody()
	if raw == nil {
		return nil, false, nil
	}
	defer raw.Close()
	body, err := io.ReadAll(io.LimitReader(raw, e.maxBodyBytes+1))
	if err != nil {
		return nil, false, err
	}
	if int64(len(body)) > e.maxBodyBytes {
		return trimToRuneBoundary(body[:e.maxBodyBytes]), true, nil
	}
	return body, false, nil
}

func classifyTransportError(ctx context.Context, err error, elapsed time.Duration) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return core.NewError(err, core.ErrCodeTimeout,
			fmt.Sprintf("call exceeded deadline after %s", elapsed.Round(time.Millisecond)),
			map[string]any{"elapsed_ms": elapsed.Milliseconds()})
	}
	if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
		return core.NewError(err, core.ErrCodeNetwork, "call canceled", nil)
	}
	return core.NewError(err, core.ErrCodeNetwork, "", nil)
}
