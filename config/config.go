// Package config loads the gateway's TOML configuration file into the
// per-package Config structs the rest of the module consumes directly,
// the same [section] layout ethproviders.Config borrows toml struct
// tags for, decoded here with BurntSushi/toml.
package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/0xsequence/hyperrpc-gateway/httpapi"
	"github.com/0xsequence/hyperrpc-gateway/methods"
	"github.com/0xsequence/hyperrpc-gateway/upstream"
)

// Config is the root of hyperrpc.toml.
type Config struct {
	RPCChainID uint64 `toml:"rpc_chain_id"`
	LogLevel   string `toml:"log_level"`

	HTTPServer HTTPServerConfig `toml:"http_server"`
	Archive    ArchiveConfig    `toml:"archive"`
	Upstream   UpstreamConfig   `toml:"upstream"`
	Filters    FiltersConfig    `toml:"filters"`
}

type HTTPServerConfig struct {
	Listen                string `toml:"listen"`
	MaxRequestsInBatch     int    `toml:"max_requests_in_batch"`
	MaxPayloadSizeInMB     int    `toml:"max_payload_size_in_mb"`
	JSONRPCVersion         string `toml:"json_rpc_version"`
	MaxGetLogsBlockRange   uint64 `toml:"max_get_logs_block_range"`
	MaxBlockGap            uint64 `toml:"max_block_gap"`
	MaxLogsReturnedPerReq  int    `toml:"max_logs_returned_per_request"`
	ArchiveFanoutConcurrency int  `toml:"archive_fanout_concurrency"`
}

type ArchiveConfig struct {
	URL            string `toml:"url"`
	CacheCapacity  int    `toml:"cache_capacity"`
	ReadAheadBlocks uint64 `toml:"read_ahead_blocks"`
}

type EndpointTOML struct {
	URL              string `toml:"url"`
	ReqLimit         int    `toml:"req_limit"`
	ReqLimitWindowMS int    `toml:"req_limit_window_ms"`
	BatchSizeLimit   int    `toml:"batch_size_limit"`
	JobQueueSize     int    `toml:"job_queue_size"`
	HealthPollMS     int    `toml:"health_poll_ms"`
}

type UpstreamConfig struct {
	Endpoints []EndpointTOML `toml:"endpoints"`
}

type FiltersConfig struct {
	Backend   string `toml:"backend"` // "memory" or "redis"
	RedisHost string `toml:"redis_host"`
	RedisPort int    `toml:"redis_port"`
}

// Load decodes the TOML file at path and fills in every default named
// for an unset field.
func Load(path string) (Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	cfg.applyDefaults()
	if cfg.RPCChainID == 0 {
		return Config{}, fmt.Errorf("rpc_chain_id is required")
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.HTTPServer.Listen == "" {
		c.HTTPServer.Listen = ":8080"
	}
	if c.HTTPServer.MaxRequestsInBatch == 0 {
		c.HTTPServer.MaxRequestsInBatch = 500
	}
	if c.HTTPServer.MaxPayloadSizeInMB == 0 {
		c.HTTPServer.MaxPayloadSizeInMB = 150
	}
	if c.HTTPServer.JSONRPCVersion == "" {
		c.HTTPServer.JSONRPCVersion = "2.0"
	}
	if c.HTTPServer.MaxGetLogsBlockRange == 0 {
		c.HTTPServer.MaxGetLogsBlockRange = 69_000_000_000
	}
	if c.HTTPServer.MaxBlockGap == 0 {
		c.HTTPServer.MaxBlockGap = 100
	}
	if c.HTTPServer.MaxLogsReturnedPerReq == 0 {
		c.HTTPServer.MaxLogsReturnedPerReq = 50_000
	}
	if c.HTTPServer.ArchiveFanoutConcurrency == 0 {
		c.HTTPServer.ArchiveFanoutConcurrency = 4
	}
	if c.Archive.CacheCapacity == 0 {
		c.Archive.CacheCapacity = 100_000
	}
	if c.Filters.Backend == "" {
		c.Filters.Backend = "memory"
	}
	if c.Filters.RedisPort == 0 {
		c.Filters.RedisPort = 6379
	}
	for i := range c.Upstream.Endpoints {
		ep := &c.Upstream.Endpoints[i]
		if ep.ReqLimit == 0 {
			ep.ReqLimit = 10
		}
		if ep.ReqLimitWindowMS == 0 {
			ep.ReqLimitWindowMS = 1000
		}
		if ep.BatchSizeLimit == 0 {
			ep.BatchSizeLimit = 50
		}
		if ep.JobQueueSize == 0 {
			ep.JobQueueSize = 64
		}
		if ep.HealthPollMS == 0 {
			ep.HealthPollMS = 5000
		}
	}
}

// MethodsConfig translates the decoded HTTP server section into the
// Config methods.Env consumes.
func (c Config) MethodsConfig() methods.Config {
	return methods.Config{
		ChainID:                   c.RPCChainID,
		JSONRPCVersion:            c.HTTPServer.JSONRPCVersion,
		MaxGetLogsBlockRange:      c.HTTPServer.MaxGetLogsBlockRange,
		MaxBlockGap:               c.HTTPServer.MaxBlockGap,
		MaxLogsReturnedPerRequest: c.HTTPServer.MaxLogsReturnedPerReq,
		ArchiveFanoutConcurrency:  c.HTTPServer.ArchiveFanoutConcurrency,
	}
}

// HTTPConfig translates the decoded HTTP server section into the
// Config httpapi.Server consumes.
func (c Config) HTTPConfig() httpapi.Config {
	return httpapi.Config{
		MaxRequestsInBatch:  c.HTTPServer.MaxRequestsInBatch,
		MaxPayloadSizeBytes: int64(c.HTTPServer.MaxPayloadSizeInMB) * 1024 * 1024,
		JSONRPCVersion:      c.HTTPServer.JSONRPCVersion,
	}
}

// EndpointConfigs translates every configured upstream endpoint into an
// upstream.EndpointConfig.
func (c Config) EndpointConfigs() []upstream.EndpointConfig {
	out := make([]upstream.EndpointConfig, len(c.Upstream.Endpoints))
	for i, ep := range c.Upstream.Endpoints {
		out[i] = upstream.EndpointConfig{
			URL:              ep.URL,
			ReqLimit:         ep.ReqLimit,
			ReqLimitWindow:   time.Duration(ep.ReqLimitWindowMS) * time.Millisecond,
			BatchSizeLimit:   ep.BatchSizeLimit,
			JobQueueSize:     ep.JobQueueSize,
			HealthPollPeriod: time.Duration(ep.HealthPollMS) * time.Millisecond,
		}
	}
	return out
}
