package upstream

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/goware/logger"
	"github.com/goware/superr"
)

// Dispatcher holds an ordered list of endpoints and forwards a batch to
// the first one able to serve it. Order matters: it is the operator's
// preference ranking (e.g. primary then fallback providers), not load
// balanced.
type Dispatcher struct {
	log       logger.Logger
	endpoints []*Endpoint
	maxRetry  int
}

func NewDispatcher(log logger.Logger, endpoints []*Endpoint) *Dispatcher {
	if log == nil {
		log = logger.NewLogger(logger.LogLevel_INFO)
	}
	return &Dispatcher{log: log, endpoints: endpoints, maxRetry: 3}
}

// Run starts every endpoint's background goroutines and blocks until
// ctx is done.
func (d *Dispatcher) Run(ctx context.Context) {
	for _, ep := range d.endpoints {
		go ep.Run(ctx)
	}
	<-ctx.Done()
}

// Send tries each endpoint in order and returns the first success. If
// every endpoint failed with ErrEndpointLimitTooLow, it waits out a
// jittered backoff and retries the whole pass, up to maxRetry times;
// any other failure mode returns immediately since retrying would not
// help.
func (d *Dispatcher) Send(ctx context.Context, msgs []Message) (map[uint64]Message, error) {
	return d.send(ctx, msgs, 0, false)
}

// SendAtHeight is Send, but skips any endpoint whose last known block
// height is below minHeight, failing it with ErrEndpointTooBehind
// instead of forwarding the batch. Used for requests that need a
// specific recency guarantee (e.g. serving "latest" consistently with
// what the archive has already indexed) rather than just "any endpoint
// that answers".
func (d *Dispatcher) SendAtHeight(ctx context.Context, msgs []Message, minHeight uint64) (map[uint64]Message, error) {
	return d.send(ctx, msgs, minHeight, true)
}

func (d *Dispatcher) send(ctx context.Context, msgs []Message, minHeight uint64, checkHeight bool) (map[uint64]Message, error) {
	if len(d.endpoints) == 0 {
		return nil, ErrNoHealthyEndpoints
	}

	var lastErrs []error
	for attempt := 0; attempt <= d.maxRetry; attempt++ {
		if attempt > 0 {
			delay := backoffDelay(attempt)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		errs := make([]error, 0, len(d.endpoints))
		for _, ep := range d.endpoints {
			if checkHeight {
				if height, ok := ep.LastBlock(); !ok || height < minHeight {
					errs = append(errs, fmt.Errorf("%s: %w", ep.URL(), ErrEndpointTooBehind))
					continue
				}
			}
			resp, err := ep.Send(ctx, msgs)
			if err == nil {
				return resp, nil
			}
			errs = append(errs, fmt.Errorf("%s: %w", ep.URL(), err))
		}
		lastErrs = errs

		if !allLimitTooLow(errs) {
			return nil, joinErrors(errs)
		}
	}

	return nil, superr.Wrap(ErrRetriesFailed, joinErrors(lastErrs))
}

// BestKnownHeight returns the highest last-probed height across every
// configured endpoint. ok is false when no endpoint has ever answered
// a health probe successfully.
func (d *Dispatcher) BestKnownHeight() (height uint64, ok bool) {
	for _, ep := range d.endpoints {
		if h, known := ep.LastBlock(); known && (!ok || h > height) {
			height = h
			ok = true
		}
	}
	return height, ok
}

func allLimitTooLow(errs []error) bool {
	if len(errs) == 0 {
		return false
	}
	for _, err := range errs {
		if !errors.Is(err, ErrEndpointLimitTooLow) {
			return false
		}
	}
	return true
}

func joinErrors(errs []error) error {
	return errors.Join(errs...)
}

// backoffDelay grows the deterministic base delay by one second per
// attempt (1s, 2s, 3s, ... up to 5s) and adds up to a second of jitter,
// so endpoints recovering from a shared rate-limit window don't all get
// hit by every retrying client at the exact same instant.
func backoffDelay(attempt int) time.Duration {
	base := attempt
	if base > 5 {
		base = 5
	}
	jitter := time.Duration(rand.Intn(1000)) * time.Millisecond
	return time.Duration(base)*time.Second + jitter
}
