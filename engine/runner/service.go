package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chipp-ai/dispatch/engine/action"
	"github.com/chipp-ai/dispatch/engine/core"
	"github.com/chipp-ai/dispatch/pkg/logger"
	"golang.org/x/sync/semaphore"
)

const (
	// DefaultMaxConcurrency bounds parallel outbound calls per graph run.
	DefaultMaxConcurrency = 4
	// DefaultMaxGraphNodes bounds graph size per execution request.
	DefaultMaxGraphNodes = 32
)

// ExecutionRequest asks the engine to execute one action, resolving its
// dependency graph first.
type ExecutionRequest struct {
	ActionID core.ID            `json:"action_id"`
	Inputs   core.Input         `json:"inputs,omitempty"`
	Mode     core.ExecutionMode `json:"mode,omitempty"`
	// TimeoutCeilingMs optionally tightens the target action's deadline.
	// It must not exceed the action's configured timeout.
	TimeoutCeilingMs int `json:"timeout_ceiling_ms,omitempty"`
}

// Service resolves, schedules and executes action graphs. The only shared
// mutable state is the per-run node table; action configuration is read as
// a consistent snapshot when a run starts and never re-read mid-execution.
type Service struct {
	repo           action.Repository
	executor       *Executor
	maxConcurrency int64
	maxTimeout     time.Duration
	maxGraphNodes  int
}

type ServiceOption func(*Service)

// WithExecutor replaces the HTTP executor (tests inject capped or fake ones).
func WithExecutor(executor *Executor) ServiceOption {
	return func(s *Service) {
		if executor != nil {
			s.executor = executor
		}
	}
}

// WithMaxConcurrency bounds the worker pool issuing parallel outbound calls.
func WithMaxConcurrency(n int64) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.maxConcurrency = n
		}
	}
}

// WithMaxTimeout caps every per-call deadline regardless of configuration.
func WithMaxTimeout(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.maxTimeout = d
		}
	}
}

// WithMaxGraphNodes bounds how many actions one execution may resolve.
func WithMaxGraphNodes(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.maxGraphNodes = n
		}
	}
}

func NewService(repo action.Repository, opts ...ServiceOption) *Service {
	s := &Service{
		repo:           repo,
		executor:       NewExecutor(),
		maxConcurrency: DefaultMaxConcurrency,
		maxTimeout:     action.MaxTimeout,
		maxGraphNodes:  DefaultMaxGraphNodes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Execute resolves the dependency graph for the requested action and runs
// it to completion. Taxonomy failures (validation, auth, network, timeout,
// upstream) are returned as data on the Result; the error return is
// reserved for infrastructure faults such as repository unavailability.
func (s *Service) Execute(ctx context.Context, req ExecutionRequest) (*Result, error) {
	log := logger.FromContext(ctx)
	execID := core.MustNewID()
	if req.ActionID.IsZero() {
		return newErrorResult(req.ActionID, execID, nil,
			core.NewErrorf(core.ErrCodeValidation, "action id is required")), nil
	}
	target, err := s.repo.Get(ctx, req.ActionID)
	if err != nil {
		if errors.Is(err, action.ErrNotFound) {
			return newErrorResult(req.ActionID, execID, nil,
				core.NewError(err, core.ErrCodeValidation,
					fmt.Sprintf("unknown action %s", req.ActionID),
					map[string]any{"action_id": req.ActionID.String()})), nil
		}
		return nil, fmt.Errorf("failed to load action %s: %w", req.ActionID, err)
	}
	if req.TimeoutCeilingMs > 0 {
		ceiling := time.Duration(req.TimeoutCeilingMs) * time.Millisecond
		if ceiling > target.Timeout() {
			return newErrorResult(req.ActionID, execID, nil,
				core.NewErrorf(core.ErrCodeValidation,
					"timeout ceiling %dms exceeds the action's configured timeout %s",
					req.TimeoutCeilingMs, target.Timeout())), nil
		}
	}
	snapshot, err := s.snapshotApp(ctx, target.AppID)
	if err != nil {
		return nil, err
	}
	graph, err := BuildGraph(target.ID, snapshot)
	if err != nil {
		return newErrorResult(req.ActionID, execID, nil, err), nil
	}
	if graph.Len() > s.maxGraphNodes {
		return newErrorResult(req.ActionID, execID, nil,
			core.NewErrorf(core.ErrCodeValidation,
				"execution graph has %d actions, limit is %d", graph.Len(), s.maxGraphNodes)), nil
	}
	log.Info("action execution starting",
		"action_id", target.ID, "exec_id", execID, "mode", req.Mode, "graph_size", graph.Len())
	result := s.runGraph(ctx, graph, req, execID)
	log.Info("action execution finished",
		"action_id", target.ID, "exec_id", execID,
		"status", result.Status, "duration_ms", result.DurationMs)
	return result, nil
}

// snapshotApp reads the application's actions once and deep-copies them so
// a concurrent configuration edit cannot tear an in-flight run.
func (s *Service) snapshotApp(ctx context.Context, appID core.ID) ([]action.Config, error) {
	configs, err := s.repo.ListByApp(ctx, appID)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot actions for app %s: %w", appID, err)
	}
	snapshot, err := core.DeepCopy(configs)
	if err != nil {
		return nil, fmt.Errorf("failed to copy action snapshot: %w", err)
	}
	return snapshot, nil
}

// nodeExec tracks one graph node through a run. done closes when the node
// finishes successfully; a failed node cancels the run context instead, so
// waiters never observe a half-written result.
type nodeExec struct {
	cfg     *action.Config
	done    chan struct{}
	request *HTTPRequest
	result  *Result
	rawBody []byte
}

// mappingDocument returns the JSON document dependents evaluate their path
// expressions against: extracted outputs when declared, raw body otherwise.
func (n *nodeExec) mappingDocument() []byte {
	if n.result != nil && n.result.Outputs != nil {
		doc, err := json.Marshal(n.result.Outputs)
		if err == nil {
			return doc
		}
	}
	return n.rawBody
}

// runGraph executes every node of the graph under a bounded worker pool
// gated by the topological partial order. Independent branches run
// concurrently; the first failure of any node cancels the run and becomes
// the overall result, with completed upstream outputs discarded.
func (s *Service) runGraph(ctx context.Context, graph *Graph, req ExecutionRequest, execID core.ID) *Result {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	nodes := make(map[core.ID]*nodeExec, graph.Len())
	for _, id := range graph.Order() {
		nodes[id] = &nodeExec{cfg: graph.Node(id), done: make(chan struct{})}
	}

	var (
		failOnce   sync.Once
		failResult *Result
	)
	fail := func(node *nodeExec, outcome *Outcome, err error) {
		failOnce.Do(func() {
			failResult = newErrorResult(node.cfg.ID, execID, outcome, err)
			if req.Mode == core.ModeTest {
				failResult.Request = buildRequestPreview(node.request)
			}
			cancel()
		})
	}

	sem := semaphore.NewWeighted(s.maxConcurrency)
	var wg sync.WaitGroup
	for _, id := range graph.Order() {
		node := nodes[id]
		wg.Go(func() {
			s.runNode(runCtx, node, nodes, req, execID, graph.Target(), sem, fail)
		})
	}
	wg.Wait()

	if failResult != nil {
		return failResult
	}
	targetNode := nodes[graph.Target()]
	if targetNode.result == nil {
		// every node exited without failing or finishing, which only happens
		// when the caller's context ended before the target could run
		result := newErrorResult(graph.Target(), execID, nil, cancellationError(runCtx))
		if req.Mode == core.ModeTest {
			result.Request = buildRequestPreview(targetNode.request)
		}
		return result
	}
	result := targetNode.result
	if req.Mode == core.ModeTest {
		result.Request = buildRequestPreview(targetNode.request)
	}
	return result
}

// cancellationError classifies a run that ended before its target executed.
func cancellationError(ctx context.Context) error {
	err := ctx.Err()
	if errors.Is(err, context.DeadlineExceeded) {
		return core.NewError(err, core.ErrCodeTimeout, "execution deadline exceeded before completion", nil)
	}
	return core.NewError(err, core.ErrCodeNetwork, "execution cancelled before completion", nil)
}

// runNode waits for the node's upstream dependencies, assembles its
// effective inputs, and executes the call. No lock is held across network
// I/O; the semaphore only gates how many calls are in flight.
func (s *Service) runNode(
	ctx context.Context,
	node *nodeExec,
	nodes map[core.ID]*nodeExec,
	req ExecutionRequest,
	execID core.ID,
	target core.ID,
	sem *semaphore.Weighted,
	fail func(*nodeExec, *Outcome, error),
) {
	log := logger.FromContext(ctx)
	for i := range node.cfg.Dependencies {
		source := nodes[node.cfg.Dependencies[i].Source]
		select {
		case <-source.done:
		case <-ctx.Done():
			return
		}
	}

	inputs, err := s.effectiveInputs(node, nodes, req, target)
	if err != nil {
		fail(node, nil, err)
		return
	}
	validated, err := ValidateInputs(ctx, node.cfg, inputs)
	if err != nil {
		fail(node, nil, err)
		return
	}
	// Secrets are resolved here, immediately before the request is built.
	injection, err := ResolveAuth(node.cfg.Auth)
	if err != nil {
		fail(node, nil, err)
		return
	}
	httpReq, err := BuildRequest(node.cfg, validated, injection)
	if err != nil {
		fail(node, nil, err)
		return
	}
	node.request = httpReq

	if err := sem.Acquire(ctx, 1); err != nil {
		return
	}
	timeout := s.effectiveTimeout(node.cfg, req, target)
	log.Debug("executing action node",
		"action_id", node.cfg.ID, "exec_id", execID, "timeout", timeout)
	outcome, err := s.executor.Do(ctx, httpReq, timeout)
	sem.Release(1)
	if err != nil {
		fail(node, outcome, err)
		return
	}

	node.result = newSuccessResult(node.cfg.ID, execID, outcome, ExtractOutputs(node.cfg.OutputMapping, outcome.Body))
	node.rawBody = outcome.Body
	close(node.done)
}

// effectiveInputs layers values for a node: dependency-mapped values first,
// then caller-supplied inputs for the requested action, which win over
// mapped values so callers can override at any level.
func (s *Service) effectiveInputs(
	node *nodeExec,
	nodes map[core.ID]*nodeExec,
	req ExecutionRequest,
	target core.ID,
) (core.Input, error) {
	mapped := core.Input{}
	for i := range node.cfg.Dependencies {
		dep := &node.cfg.Dependencies[i]
		source := nodes[dep.Source]
		doc := source.mappingDocument()
		for param, path := range dep.Mapping {
			value := ExtractPath(doc, path)
			// a missing path degrades to absence so declared defaults still apply
			if value == nil {
				continue
			}
			mapped[param] = value
		}
	}
	if node.cfg.ID != target {
		return mapped, nil
	}
	caller, err := req.Inputs.DeepCopy()
	if err != nil {
		return nil, core.NewError(err, core.ErrCodeValidation, "failed to copy caller inputs", nil)
	}
	// explicit caller input wins over a mapped value for the same parameter
	return caller.Merge(mapped), nil
}

// effectiveTimeout derives the per-call deadline: the action's configured
// timeout, capped by the global maximum, tightened by the caller's ceiling
// for the requested action.
func (s *Service) effectiveTimeout(cfg *action.Config, req ExecutionRequest, target core.ID) time.Duration {
	timeout := cfg.Timeout()
	if timeout > s.maxTimeout {
		timeout = s.maxTimeout
	}
	if cfg.ID == target && req.TimeoutCeilingMs > 0 {
		ceiling := time.Duration(req.TimeoutCeilingMs) * time.Millisecond
		if ceiling < timeout {
			timeout = ceiling
		}
	}
	return timeout
}
