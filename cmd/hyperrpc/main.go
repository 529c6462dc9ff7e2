package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/0xsequence/hyperrpc-gateway/archive"
	"github.com/0xsequence/hyperrpc-gateway/config"
	"github.com/0xsequence/hyperrpc-gateway/filterstore"
	"github.com/0xsequence/hyperrpc-gateway/gateway"
	"github.com/0xsequence/hyperrpc-gateway/httpapi"
	"github.com/0xsequence/hyperrpc-gateway/methods"
	"github.com/0xsequence/hyperrpc-gateway/querycache"
	"github.com/0xsequence/hyperrpc-gateway/upstream"
	rediscache "github.com/goware/cachestore-redis"
	"github.com/goware/logger"
)

const shutdownTimeout = 10 * time.Second

var configPath string

var rootCmd = &cobra.Command{
	Use:   "hyperrpc",
	Short: "hyperrpc-gateway - archive-backed JSON-RPC gateway for Ethereum execution-layer reads",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config-path", "hyperrpc.toml", "path to the gateway's TOML config file")
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	log := logger.NewLogger(logger.LogLevel_INFO)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	archiveClient := archive.NewHTTPClient(cfg.Archive.URL)
	query := querycache.NewWithCapacity(archiveClient, cfg.Archive.CacheCapacity, cfg.Archive.ReadAheadBlocks)

	endpoints := make([]*upstream.Endpoint, 0, len(cfg.Upstream.Endpoints))
	for _, ec := range cfg.EndpointConfigs() {
		endpoints = append(endpoints, upstream.NewEndpoint(ec, log))
	}
	dispatcher := upstream.NewDispatcher(log, endpoints)

	filters, err := buildFilterStore(cfg.Filters)
	if err != nil {
		return fmt.Errorf("build filter store: %w", err)
	}

	env := &methods.Env{
		Archive:    archiveClient,
		Query:      query,
		Dispatcher: dispatcher,
		Filters:    filters,
		Config:     cfg.MethodsConfig(),
	}
	gw := gateway.New(env)
	server := httpapi.New(gw, cfg.HTTPConfig(), log)

	httpServer := &http.Server{
		Addr:    cfg.HTTPServer.Listen,
		Handler: server.Handler(),
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	for _, ep := range endpoints {
		ep := ep
		go ep.Run(runCtx)
	}

	errc := make(chan error, 1)
	go func() {
		log.Infof("hyperrpc-gateway listening on %s", cfg.HTTPServer.Listen)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errc:
		return fmt.Errorf("http server: %w", err)
	}
}

func buildFilterStore(cfg config.FiltersConfig) (filterstore.Store, error) {
	switch cfg.Backend {
	case "", "memory":
		return filterstore.NewMem(100_000)
	case "redis":
		backend, err := rediscache.NewBackend(&rediscache.Config{
			Enabled: true,
			Host:    cfg.RedisHost,
			Port:    cfg.RedisPort,
		})
		if err != nil {
			return nil, fmt.Errorf("new redis backend: %w", err)
		}
		return filterstore.NewRedis(backend), nil
	default:
		return nil, fmt.Errorf("unknown filters backend %q", cfg.Backend)
	}
}
