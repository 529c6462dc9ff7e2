// Package httpapi is the gateway's single HTTP entry point: one POST
// route that accepts a JSON-RPC envelope, single or batched, validates
// it, dispatches through a gateway.Gateway, and writes back a body
// framed to match whatever shape the request came in.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/0xsequence/hyperrpc-gateway/bytesbuilder"
	"github.com/0xsequence/hyperrpc-gateway/gateway"
	"github.com/0xsequence/hyperrpc-gateway/rpcerr"
	"github.com/0xsequence/hyperrpc-gateway/rpctypes"
	"github.com/0xsequence/hyperrpc-gateway/serializer"
	"github.com/go-chi/traceid"
	"github.com/goware/logger"
)

// Config holds the envelope-level limits the HTTP front end enforces
// before a request ever reaches a method handler.
type Config struct {
	MaxRequestsInBatch   int
	MaxPayloadSizeBytes  int64
	JSONRPCVersion       string
	SerializeConcurrency int
}

// Server wires a gateway.Gateway to net/http.
type Server struct {
	gw  *gateway.Gateway
	cfg Config
	log logger.Logger
}

func New(gw *gateway.Gateway, cfg Config, log logger.Logger) *Server {
	if log == nil {
		log = logger.NewLogger(logger.LogLevel_INFO)
	}
	if cfg.SerializeConcurrency <= 0 {
		cfg.SerializeConcurrency = 8
	}
	return &Server{gw: gw, cfg: cfg, log: log}
}

// Handler returns the complete http.Handler, wrapped with trace-id
// propagation so a log line for one request can be correlated with the
// matching outbound call an upstream endpoint makes on its behalf.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.serveRPC)
	return traceid.Middleware(mux)
}

func (s *Server) serveRPC(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		http.Error(w, "Something went wrong: only POST is supported", http.StatusInternalServerError)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, s.cfg.MaxPayloadSizeBytes+1))
	if err != nil {
		http.Error(w, "Something went wrong: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if int64(len(body)) > s.cfg.MaxPayloadSizeBytes {
		s.writeLimitExceeded(w, "request body exceeds the configured size limit")
		return
	}

	isBatch := rpctypes.IsBatch(body)
	results, parseErr := decodeEnvelope(body, isBatch)
	if parseErr != nil {
		s.writeSingle(w, rpctypes.NewError(nil, rpcerr.Parse(parseErr.Error())))
		return
	}
	if isBatch && s.cfg.MaxRequestsInBatch > 0 && len(results) > s.cfg.MaxRequestsInBatch {
		s.writeLimitExceeded(w, fmt.Sprintf("batch of %d requests exceeds the configured limit of %d", len(results), s.cfg.MaxRequestsInBatch))
		return
	}

	responses := s.dispatch(r.Context(), results)
	s.writeEnvelope(w, responses, isBatch)
}

// decodedRequest pairs one envelope element with the parse error that
// occurred decoding it, if any. Keeping a malformed element around
// (instead of dropping it) lets it surface as its own per-id
// ParseError response without disturbing the rest of the batch.
type decodedRequest struct {
	req rpctypes.Request
	err error
}

// dispatch validates every request's envelope fields (parse failure,
// duplicate id, jsonrpc version, method presence) before handing the
// survivors to the gateway, so a malformed request never reaches a
// method handler at all, then sorts the assembled responses by id:
// every response, whatever stage rejected or answered it, must come
// back in non-decreasing id order.
func (s *Server) dispatch(ctx context.Context, results []decodedRequest) []rpctypes.Response {
	out := make([]rpctypes.Response, len(results))

	seen := make(map[string]bool, len(results))
	var toRun []rpctypes.Request
	var toRunIdx []int
	for i, r := range results {
		if r.err != nil {
			out[i] = rpctypes.NewError(r.req.ID, rpcerr.Parse(r.err.Error()))
			continue
		}
		req := r.req
		key := rpctypes.IDKey(req.ID)
		if seen[key] {
			out[i] = rpctypes.NewError(req.ID, rpcerr.InvalidParamsErr(fmt.Sprintf("duplicate Id: %s", req.ID)))
			continue
		}
		seen[key] = true
		if req.Version != s.cfg.JSONRPCVersion {
			out[i] = rpctypes.NewError(req.ID, rpcerr.VersionNotSupported(req.Version))
			continue
		}
		if req.Method == "" {
			out[i] = rpctypes.NewError(req.ID, rpcerr.BadRequest("method is required"))
			continue
		}
		toRun = append(toRun, req)
		toRunIdx = append(toRunIdx, i)
	}

	if len(toRun) > 0 {
		responses, _ := s.gw.Execute(ctx, toRun)
		for j, idx := range toRunIdx {
			out[idx] = responses[j]
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return rpctypes.IDLess(out[i].ID, out[j].ID) })

	return out
}

// decodeEnvelope splits a batch body into its individual elements and
// decodes each independently, so one malformed element becomes a
// per-id parse error instead of failing every request in the batch.
// Only a body that isn't even syntactically a JSON array (for a batch)
// or object (for a single request) is a genuine top-level parse
// failure, reported as the function's error return.
func decodeEnvelope(body []byte, isBatch bool) ([]decodedRequest, error) {
	if isBatch {
		var raws []json.RawMessage
		if err := json.Unmarshal(body, &raws); err != nil {
			return nil, fmt.Errorf("invalid batch envelope: %w", err)
		}
		out := make([]decodedRequest, len(raws))
		for i, raw := range raws {
			out[i] = decodeOne(raw)
		}
		return out, nil
	}
	return []decodedRequest{decodeOne(body)}, nil
}

// decodeOne decodes a single envelope element. If the element's shape
// doesn't match Request, its id is still recovered when the element is
// at least a well-formed JSON object carrying one, so the resulting
// per-id error response has a usable id instead of null.
func decodeOne(raw json.RawMessage) decodedRequest {
	var req rpctypes.Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return decodedRequest{req: rpctypes.Request{ID: peekID(raw)}, err: err}
	}
	return decodedRequest{req: req}
}

func peekID(raw json.RawMessage) json.RawMessage {
	var holder struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(raw, &holder); err != nil {
		return nil
	}
	return holder.ID
}

// writeEnvelope serializes responses the same shape the request came
// in (single object or array) and, if the resulting body would exceed
// the configured size cap, replaces the whole thing with a single
// LimitExceeded envelope instead of truncating it.
func (s *Server) writeEnvelope(w http.ResponseWriter, responses []rpctypes.Response, isBatch bool) {
	raws, _ := serializer.ParallelSerialize(len(responses), s.cfg.SerializeConcurrency, func(i int) []byte {
		raw, err := json.Marshal(responses[i])
		if err != nil {
			raw, _ = json.Marshal(rpctypes.NewError(responses[i].ID, rpcerr.Internal(err.Error())))
		}
		return raw
	})

	b := bytesbuilder.New(len(raws))
	if isBatch {
		b.PushJSONList(len(raws), func(i int) []byte { return raws[i] })
	} else if len(raws) > 0 {
		b.Push(raws[0])
	}

	if s.cfg.MaxPayloadSizeBytes > 0 && int64(b.TotalLen()) > s.cfg.MaxPayloadSizeBytes {
		s.writeLimitExceeded(w, "response body exceeds the configured size limit")
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = b.WriteTo(w)
}

func (s *Server) writeSingle(w http.ResponseWriter, resp rpctypes.Response) {
	raw, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Something went wrong: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

func (s *Server) writeLimitExceeded(w http.ResponseWriter, detail string) {
	s.writeSingle(w, rpctypes.NewError(nil, rpcerr.LimitExceededf(detail)))
}
