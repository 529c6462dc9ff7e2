// Package rpctypes holds the wire-facing JSON-RPC envelope and the request
// parameter types every method handler parses out of it: block tags and
// ranges, log filters, and filter ids.
package rpctypes

import (
	"encoding/json"
	"strconv"

	"github.com/0xsequence/hyperrpc-gateway/rpcerr"
)

// Request is one element of an inbound JSON-RPC envelope, single or
// batched. ID is kept as a raw JSON value (number, string, or null) and
// copied verbatim into the matching Response: this gateway never
// interprets it.
type Request struct {
	Version string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is one element of the outbound envelope. Exactly one of
// Result/Error is set.
type Response struct {
	Version string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcerr.Error   `json:"error,omitempty"`
}

func NewResult(id json.RawMessage, result json.RawMessage) Response {
	return Response{Version: "2.0", ID: id, Result: result}
}

func NewError(id json.RawMessage, err *rpcerr.Error) Response {
	return Response{Version: "2.0", ID: id, Error: err}
}

// IDKey returns a comparable representation of a request id suitable for
// use as a map key (duplicate-id detection within one batch). Two
// requests with textually identical id JSON compare equal, so 1 and
// "1" are treated as distinct ids even though a client confusing the
// two is a likely source of bugs.
func IDKey(id json.RawMessage) string {
	return string(id)
}

// IDLess orders two raw request ids for the response-ordering invariant
// every batch must satisfy: non-decreasing id sequence. Ids are
// compared numerically when both parse as an integer, the form every
// id in this gateway's own traffic takes; anything else falls back to
// a byte comparison of the raw JSON so a stray string id still sorts
// deterministically instead of panicking or reordering arbitrarily.
func IDLess(a, b json.RawMessage) bool {
	an, aok := idAsInt(a)
	bn, bok := idAsInt(b)
	if aok && bok {
		return an < bn
	}
	return string(a) < string(b)
}

func idAsInt(id json.RawMessage) (int64, bool) {
	n, err := strconv.ParseInt(string(id), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// IsBatch classifies a raw HTTP body as a single envelope or a batch
// purely by its first non-whitespace byte, before any further parsing is
// attempted. This is deliberately syntactic: an array of length one is
// still a batch, and a body that fails to parse as valid JSON is treated
// as a single envelope so the resulting ParseError response is itself
// framed as a single object rather than an array.
func IsBatch(body []byte) bool {
	for _, c := range body {
		switch c {
		case ' ', '\t', '\r', '\n':
			continue
		case '[':
			return true
		default:
			return false
		}
	}
	return false
}
