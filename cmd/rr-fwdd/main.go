package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/haukened/rr-fwd/internal/dns/common/clock"
	"github.com/haukened/rr-fwd/internal/dns/common/log"
	"github.com/haukened/rr-fwd/internal/dns/config"
	"github.com/haukened/rr-fwd/internal/dns/gateways/transport"
	"github.com/haukened/rr-fwd/internal/dns/gateways/upstream"
	"github.com/haukened/rr-fwd/internal/dns/gateways/wire"
	"github.com/haukened/rr-fwd/internal/dns/metrics"
	"github.com/haukened/rr-fwd/internal/dns/repos/recordcache"
	"github.com/haukened/rr-fwd/internal/dns/repos/zone"
	"github.com/haukened/rr-fwd/internal/dns/repos/zonecache"
	"github.com/haukened/rr-fwd/internal/dns/services/resolver"
)

const (
	// Version information
	version = "0.1.0-dev"
	appName = "rr-fwdd"

	// Default timeouts
	defaultUpstreamTimeout = 5 * time.Second
	defaultShutdownTimeout = 10 * time.Second
)

// Application holds all the components of the DNS server
type Application struct {
	config    *config.AppConfig
	transport *transport.UDPTransport
	resolver  *resolver.Resolver
	metrics   *metrics.Collector

	// metricsServer is nil when metrics are disabled
	metricsServer   *http.Server
	metricsListener net.Listener
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Info(map[string]any{"signal": sig.String()}, "Shutdown signal received")
		cancel()
	}()

	err := newRootCmd().ExecuteContext(ctx)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   appName + " <zone-file>",
		Short: "Caching, forwarding DNS resolver",
		Long: `rr-fwdd answers DNS queries over UDP.

Names in the zone file are answered authoritatively. Everything else is
answered from cache or forwarded unchanged to a single upstream resolver.
Operational settings are read from DNS_* environment variables.`,
		Version:      version,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), args[0])
		},
	}
}

// run loads configuration, builds the application and serves until ctx is done.
func run(ctx context.Context, zonePath string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	if err := log.Configure(cfg.Env, cfg.Log.Level); err != nil {
		return fmt.Errorf("logging configuration error: %w", err)
	}

	log.Info(map[string]any{
		"version":    version,
		"env":        cfg.Env,
		"log_level":  cfg.Log.Level,
		"listen":     cfg.Resolver.Listen,
		"upstream":   cfg.Resolver.Upstream,
		"cache_size": cfg.Resolver.Cache.Size,
		"zone_file":  zonePath,
	}, "Starting rr-fwd server")

	app, err := buildApplication(ctx, cfg, zonePath)
	if err != nil {
		return fmt.Errorf("failed to build application: %w", err)
	}

	if err := app.Run(ctx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	log.Info(nil, "rr-fwd server stopped gracefully")
	return nil
}

// buildApplication constructs all components and wires them together
func buildApplication(ctx context.Context, cfg *config.AppConfig, zonePath string) (*Application, error) {
	clk := clock.RealClock{}
	logger := log.GetLogger()

	z, err := zone.LoadZoneFile(zonePath, time.Duration(cfg.Zone.TTL)*time.Second)
	if err != nil {
		return nil, err
	}
	zoneCache := zonecache.New(z.Root, z.Records)
	log.Info(map[string]any{
		"zone_root": zoneCache.Root(),
		"records":   zoneCache.Count(),
	}, "Zone loaded")

	cache, err := recordcache.New(cfg.Resolver.Cache.Size, clk)
	if err != nil {
		return nil, fmt.Errorf("failed to create record cache: %w", err)
	}

	up, err := upstream.NewEndpoint(ctx, upstream.Options{
		Address: cfg.Resolver.Upstream,
		Timeout: defaultUpstreamTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to configure upstream: %w", err)
	}
	log.Info(map[string]any{"upstream": up.String()}, "Upstream configured")

	collector := metrics.New()
	res, err := resolver.NewResolver(resolver.ResolverOptions{
		Codec:    wire.NewUDPCodec(log.WithComponent(logger, "wire")),
		Zone:     zoneCache,
		Cache:    cache,
		Upstream: up,
		Clock:    clk,
		Logger:   log.WithComponent(logger, "resolver"),
		Metrics:  collector,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create resolver: %w", err)
	}

	app := &Application{
		config:    cfg,
		transport: transport.NewUDPTransport(cfg.Resolver.Listen, log.WithComponent(logger, "transport")),
		resolver:  res,
		metrics:   collector,
	}
	if cfg.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", collector.Handler())
		app.metricsServer = &http.Server{
			Addr:              cfg.Metrics.Addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
	}
	return app, nil
}

// Run starts the DNS server and blocks until context is cancelled
func (app *Application) Run(ctx context.Context) error {
	if app.metricsServer != nil {
		ln, err := net.Listen("tcp", app.metricsServer.Addr)
		if err != nil {
			return fmt.Errorf("failed to bind metrics listener: %w", err)
		}
		app.metricsListener = ln
		go func() {
			if err := app.metricsServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error(map[string]any{"error": err.Error()}, "Metrics server failed")
			}
		}()
		log.Info(map[string]any{"address": ln.Addr().String()}, "Metrics endpoint started")
	}

	if err := app.transport.Start(ctx, app.resolver); err != nil {
		app.shutdownMetrics()
		return fmt.Errorf("failed to start UDP transport: %w", err)
	}

	log.Info(map[string]any{
		"address":   app.transport.Address(),
		"transport": "UDP",
	}, "DNS server started")

	<-ctx.Done()
	log.Info(nil, "Shutdown initiated")

	if err := app.transport.Stop(); err != nil {
		log.Warn(map[string]any{"error": err.Error()}, "Error during transport shutdown")
	}
	if n := app.resolver.PendingCount(); n > 0 {
		log.Info(map[string]any{"pending": n}, "Abandoned queries still awaiting an upstream reply")
	}
	app.shutdownMetrics()
	return nil
}

func (app *Application) shutdownMetrics() {
	if app.metricsServer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()
	if err := app.metricsServer.Shutdown(ctx); err != nil {
		log.Warn(map[string]any{"error": err.Error()}, "Error during metrics shutdown")
	}
}
