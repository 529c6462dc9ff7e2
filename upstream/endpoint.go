// Package upstream talks to one or more upstream Ethereum JSON-RPC node
// endpoints: it forwards batches of requests the archive cannot (or
// should not) answer, tracks each endpoint's health and rate-limit
// budget, and picks the first endpoint able to serve a given batch.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/0xsequence/hyperrpc-gateway/util"
	"github.com/go-chi/traceid"
	"github.com/goware/breaker"
	"github.com/goware/logger"
	"github.com/goware/superr"
)

// Endpoint owns one upstream node URL: a single goroutine processes its
// job queue, so queued batches are sent one at a time, and a sibling
// goroutine polls eth_blockNumber to maintain the endpoint's last known
// height. The rate-limit window is a mutex-guarded counter that Send
// checks on the caller's goroutine before a job is queued.
type Endpoint struct {
	cfg        EndpointConfig
	log        logger.Logger
	httpClient *http.Client
	br         breaker.Breaker

	mu        sync.RWMutex
	lastBlock *uint64

	windowMu    sync.Mutex
	windowStart time.Time
	windowUsed  int

	jobs     chan job
	nextID   uint64
	nextIDMu sync.Mutex
}

type job struct {
	ctx    context.Context
	msgs   []Message
	result chan jobResult
}

type jobResult struct {
	responses map[uint64]Message
	err       error
}

func NewEndpoint(cfg EndpointConfig, log logger.Logger) *Endpoint {
	cfg = cfg.withDefaults()
	if log == nil {
		log = logger.NewLogger(logger.LogLevel_INFO)
	}
	return &Endpoint{
		cfg:        cfg,
		log:        log,
		httpClient: &http.Client{Timeout: 20 * time.Second, Transport: traceid.Transport(http.DefaultTransport)},
		jobs:       make(chan job, cfg.JobQueueSize),
	}
}

func (e *Endpoint) URL() string { return e.cfg.URL }

// Run starts the endpoint's health-probe and job-processing goroutines.
// It returns once ctx is done.
func (e *Endpoint) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		e.healthLoop(ctx)
	}()
	go func() {
		defer wg.Done()
		e.jobLoop(ctx)
	}()
	wg.Wait()
}

// LastBlock returns the endpoint's most recently probed height. ok is
// false when the endpoint has never answered a health probe, or its
// last probe failed after exhausting retries.
func (e *Endpoint) LastBlock() (height uint64, ok bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.lastBlock == nil {
		return 0, false
	}
	return *e.lastBlock, true
}

func (e *Endpoint) healthLoop(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.HealthPollPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.probeHeight(ctx)
		}
	}
}

// probeHeight wraps a single eth_blockNumber call in breaker.Do, giving
// the probe bounded retries with backoff before the endpoint is marked
// unhealthy, the same resilience pattern ethmonitor applies to its own
// chain-id probe.
func (e *Endpoint) probeHeight(ctx context.Context) {
	var height uint64
	err := breaker.Do(ctx, func() error {
		h, err := e.callBlockNumber(ctx)
		if err != nil {
			return err
		}
		height = h
		return nil
	}, util.NoopAlerter(), 1*time.Second, 2, 3)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.log.Warnf("upstream %s: health probe failed: %v", e.cfg.URL, err)
		e.lastBlock = nil
		return
	}
	e.lastBlock = &height
}

func (e *Endpoint) callBlockNumber(ctx context.Context) (uint64, error) {
	resp, err := e.sendRaw(ctx, []Message{NewRequest(0, "eth_blockNumber", nil)})
	if err != nil {
		return 0, err
	}
	msg, ok := resp[0]
	if !ok || msg.Error != nil {
		return 0, superr.Wrap(ErrInvalidRPCResponse, fmt.Errorf("eth_blockNumber"))
	}
	var hexHeight string
	if err := json.Unmarshal(msg.Result, &hexHeight); err != nil {
		return 0, superr.Wrap(ErrInvalidRPCResponse, fmt.Errorf("eth_blockNumber result: %w", err))
	}
	var height uint64
	if _, err := fmt.Sscanf(hexHeight, "0x%x", &height); err != nil {
		return 0, superr.Wrap(ErrInvalidRPCResponse, fmt.Errorf("eth_blockNumber result %q", hexHeight))
	}
	return height, nil
}

func (e *Endpoint) jobLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-e.jobs:
			responses, err := e.process(j.ctx, j.msgs)
			select {
			case j.result <- jobResult{responses: responses, err: err}:
			case <-j.ctx.Done():
			}
		}
	}
}

// Send submits msgs as one logical request and blocks until the
// endpoint's job goroutine has processed it (chunked into
// BatchSizeLimit-sized HTTP calls) or ctx is done. It returns
// ErrEndpointLimitTooLow immediately, without touching the job queue,
// when the endpoint's rate-limit window has no room for msgs.
func (e *Endpoint) Send(ctx context.Context, msgs []Message) (map[uint64]Message, error) {
	if !e.admit(len(msgs)) {
		return nil, ErrEndpointLimitTooLow
	}

	j := job{ctx: ctx, msgs: msgs, result: make(chan jobResult, 1)}
	select {
	case e.jobs <- j:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case r := <-j.result:
		return r.responses, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// admit applies a fixed-window rate limiter: the window resets once
// ReqLimitWindow has elapsed since it was opened, and a request of the
// given cost is admitted only if it fits under ReqLimit within the
// current window.
func (e *Endpoint) admit(cost int) bool {
	e.windowMu.Lock()
	defer e.windowMu.Unlock()

	now := time.Now()
	if now.Sub(e.windowStart) >= e.cfg.ReqLimitWindow {
		e.windowStart = now
		e.windowUsed = 0
	}
	if e.windowUsed+cost >= e.cfg.ReqLimit {
		return false
	}
	e.windowUsed += cost
	return true
}

// process chunks msgs into BatchSizeLimit-sized HTTP calls and merges
// their responses. The first chunk that fails aborts the whole send:
// callers never see a partially-forwarded batch.
func (e *Endpoint) process(ctx context.Context, msgs []Message) (map[uint64]Message, error) {
	out := make(map[uint64]Message, len(msgs))
	for start := 0; start < len(msgs); start += e.cfg.BatchSizeLimit {
		end := min(start+e.cfg.BatchSizeLimit, len(msgs))
		chunk, err := e.sendRaw(ctx, msgs[start:end])
		if err != nil {
			return nil, err
		}
		for id, msg := range chunk {
			out[id] = msg
		}
	}
	return out, nil
}

func (e *Endpoint) sendRaw(ctx context.Context, msgs []Message) (map[uint64]Message, error) {
	body, err := Batch(msgs).MarshalJSON()
	if err != nil {
		return nil, superr.Wrap(ErrInvalidRPCResponse, fmt.Errorf("marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return nil, superr.Wrap(ErrEndpointUnavailable, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, superr.Wrap(ErrEndpointUnavailable, fmt.Errorf("do request: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, superr.Wrap(ErrEndpointUnavailable, fmt.Errorf("reading response: %w", err))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, superr.Wrap(ErrEndpointUnavailable, fmt.Errorf("status %d", resp.StatusCode))
	}

	parsed, err := ParseBatchResponse(respBody)
	if err != nil {
		return nil, superr.Wrap(ErrInvalidRPCResponse, fmt.Errorf("%w", err))
	}
	return parsed, nil
}
