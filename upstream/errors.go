package upstream

import "errors"

// These sentinels classify why an endpoint could not serve a batch.
// The dispatcher's retry rule inspects which of these every failed
// endpoint returned: it only retries when every one of them is
// ErrEndpointLimitTooLow, since that is the only condition where
// waiting and asking again is expected to help.
var (
	ErrEndpointTooBehind    = errors.New("upstream: endpoint is behind the required block height")
	ErrEndpointUnavailable  = errors.New("upstream: endpoint is unavailable")
	ErrEndpointLimitTooLow  = errors.New("upstream: endpoint rate limit window has no capacity left")
	ErrNoHealthyEndpoints   = errors.New("upstream: no healthy endpoints configured")
	ErrInvalidRPCResponse   = errors.New("upstream: invalid rpc response")
	ErrRetriesFailed        = errors.New("upstream: retries exhausted")
)
