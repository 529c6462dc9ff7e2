package methods

import (
	"encoding/json"
	"errors"

	"github.com/0xsequence/hyperrpc-gateway/archive"
	"github.com/0xsequence/hyperrpc-gateway/querycache"
	"github.com/0xsequence/hyperrpc-gateway/rpcerr"
	"github.com/0xsequence/hyperrpc-gateway/rpctypes"
)

// resultResponse marshals v as the "result" field of a success
// response. A marshal failure here is always a programmer error (v is
// always one of our own domain types), so it degrades to InternalError
// rather than panicking.
func resultResponse(id json.RawMessage, v any) rpctypes.Response {
	raw, err := json.Marshal(v)
	if err != nil {
		return errResponse(id, rpcerr.Internal(err.Error()))
	}
	return rpctypes.NewResult(id, raw)
}

// rawResultResponse wraps an already-serialized JSON fragment (as
// produced by the serializer package) directly, without a second
// marshal pass.
func rawResultResponse(id json.RawMessage, raw []byte) rpctypes.Response {
	return rpctypes.NewResult(id, json.RawMessage(raw))
}

func errResponse(id json.RawMessage, e *rpcerr.Error) rpctypes.Response {
	return rpctypes.NewError(id, e)
}

// classifyErr turns an internal error into the right rpcerr.Error kind.
// Row-limit errors map to LimitExceeded, and the pending-tag and
// beyond-head errors to InvalidParams; archive timeouts and everything
// else collapse to InternalError, never leaking internal detail to the
// client beyond its message text.
func classifyErr(err error) *rpcerr.Error {
	switch {
	case errors.Is(err, querycache.ErrArchiveTimeout):
		return rpcerr.Internal("archive query timed out")
	case errors.Is(err, archive.ErrRowLimitExceeded):
		return rpcerr.LimitExceededf(err.Error())
	case errors.Is(err, errPendingUnsupported):
		return rpcerr.InvalidParamsErr(err.Error())
	case errors.Is(err, errBlockBeyondHead):
		return rpcerr.InvalidParamsErr(err.Error())
	default:
		return rpcerr.Internal(err.Error())
	}
}
