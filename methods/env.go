// Package methods implements one handler per supported Ethereum
// JSON-RPC method: each parses its params, resolves any block tags
// against the archive's height, fans out to the query handler or the
// upstream dispatcher, and assembles per-id responses. A handler never
// fails its whole call group for one bad id; it always returns one
// response per request.
package methods

import (
	"github.com/0xsequence/hyperrpc-gateway/archive"
	"github.com/0xsequence/hyperrpc-gateway/filterstore"
	"github.com/0xsequence/hyperrpc-gateway/querycache"
	"github.com/0xsequence/hyperrpc-gateway/upstream"
)

// Config holds the operator-tunable limits every handler consults.
// Defaults match the values an operator would otherwise have to repeat
// in every deployment's TOML file.
type Config struct {
	ChainID                   uint64
	JSONRPCVersion            string
	MaxGetLogsBlockRange      uint64
	MaxBlockGap               uint64
	MaxLogsReturnedPerRequest int
	ArchiveFanoutConcurrency  int
}

// DefaultConfig mirrors the defaults named for the HTTP front end and
// method handlers.
func DefaultConfig() Config {
	return Config{
		JSONRPCVersion:            "2.0",
		MaxGetLogsBlockRange:      69_000_000_000,
		MaxBlockGap:               100,
		MaxLogsReturnedPerRequest: 50_000,
		ArchiveFanoutConcurrency:  4,
	}
}

// Env is every collaborator a method handler needs. It is built once
// at startup and shared (read-only after construction) across every
// concurrently executing request.
type Env struct {
	Archive    archive.Client
	Query      *querycache.Handler
	Dispatcher *upstream.Dispatcher
	Filters    filterstore.Store
	Config     Config
}
