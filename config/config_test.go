package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/0xsequence/hyperrpc-gateway/config"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "hyperrpc.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadRequiresChainID(t *testing.T) {
	path := writeConfig(t, `log_level = "info"`)
	_, err := config.Load(path)
	require.Error(t, err)
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `rpc_chain_id = 1`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.HTTPServer.Listen)
	require.Equal(t, 500, cfg.HTTPServer.MaxRequestsInBatch)
	require.Equal(t, 150, cfg.HTTPServer.MaxPayloadSizeInMB)
	require.Equal(t, "2.0", cfg.HTTPServer.JSONRPCVersion)
	require.Equal(t, uint64(69_000_000_000), cfg.HTTPServer.MaxGetLogsBlockRange)
	require.Equal(t, uint64(100), cfg.HTTPServer.MaxBlockGap)
	require.Equal(t, 50_000, cfg.HTTPServer.MaxLogsReturnedPerReq)
	require.Equal(t, 4, cfg.HTTPServer.ArchiveFanoutConcurrency)
	require.Equal(t, 100_000, cfg.Archive.CacheCapacity)
	require.Equal(t, "memory", cfg.Filters.Backend)
	require.Equal(t, 6379, cfg.Filters.RedisPort)
}

func TestLoadRespectsExplicitValues(t *testing.T) {
	path := writeConfig(t, `
rpc_chain_id = 137

[http_server]
listen = ":9090"
max_requests_in_batch = 10

[filters]
backend = "redis"
redis_host = "cache.internal"
redis_port = 6380
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	require.Equal(t, uint64(137), cfg.RPCChainID)
	require.Equal(t, ":9090", cfg.HTTPServer.Listen)
	require.Equal(t, 10, cfg.HTTPServer.MaxRequestsInBatch)
	require.Equal(t, "redis", cfg.Filters.Backend)
	require.Equal(t, "cache.internal", cfg.Filters.RedisHost)
	require.Equal(t, 6380, cfg.Filters.RedisPort)
}

func TestEndpointConfigsFillPerEndpointDefaults(t *testing.T) {
	path := writeConfig(t, `
rpc_chain_id = 1

[[upstream.endpoints]]
url = "https://node.example/rpc"
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	endpoints := cfg.EndpointConfigs()
	require.Len(t, endpoints, 1)
	require.Equal(t, "https://node.example/rpc", endpoints[0].URL)
	require.Equal(t, 10, endpoints[0].ReqLimit)
	require.Equal(t, 50, endpoints[0].BatchSizeLimit)
}

func TestMethodsConfigTranslation(t *testing.T) {
	path := writeConfig(t, `rpc_chain_id = 42`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	mc := cfg.MethodsConfig()
	require.Equal(t, uint64(42), mc.ChainID)
	require.Equal(t, cfg.HTTPServer.MaxBlockGap, mc.MaxBlockGap)
}

func TestHTTPConfigTranslatesPayloadSizeToBytes(t *testing.T) {
	path := writeConfig(t, `
rpc_chain_id = 1

[http_server]
max_payload_size_in_mb = 2
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	hc := cfg.HTTPConfig()
	require.Equal(t, int64(2*1024*1024), hc.MaxPayloadSizeBytes)
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}
