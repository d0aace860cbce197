// Command claudefsd is the node daemon: it mounts one object-store-backed
// export and serves it over FUSE, assembling the full stack - metadata
// shard, consensus, cache, write buffer, and health monitoring - through
// internal/adapter, and exposes an operational HTTP surface for status
// and health polling.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/claudefs/claudefs/internal/adapter"
	"github.com/claudefs/claudefs/internal/config"
	"github.com/claudefs/claudefs/pkg/api"
	"github.com/claudefs/claudefs/pkg/health"
	"github.com/claudefs/claudefs/pkg/profiling"
	"github.com/claudefs/claudefs/pkg/status"
)

func main() {
	var (
		storageURI  = flag.String("storage", "", "object store URI to mount (e.g. s3://bucket/prefix)")
		mountPoint  = flag.String("mount", "", "local mount point for the export")
		configPath  = flag.String("config", "", "path to a YAML configuration file (optional, falls back to defaults + env)")
		apiAddr     = flag.String("api-addr", "localhost:8090", "address for the operational status/health HTTP API")
		pprofPort   = flag.Int("pprof-port", 0, "port for the memory profiling/pprof server (0 disables it)")
		shutdownTTL = flag.Duration("shutdown-timeout", 30*time.Second, "grace period for draining in-flight operations on shutdown")
	)
	flag.Parse()

	if *storageURI == "" || *mountPoint == "" {
		fmt.Fprintln(os.Stderr, "usage: claudefsd -storage <uri> -mount <path> [-config <file>]")
		os.Exit(2)
	}

	if err := run(*storageURI, *mountPoint, *configPath, *apiAddr, *shutdownTTL, *pprofPort); err != nil {
		log.Fatalf("claudefsd: %v", err)
	}
}

func run(storageURI, mountPoint, configPath, apiAddr string, shutdownTTL time.Duration, pprofPort int) error {
	cfg := config.NewDefault()
	if configPath != "" {
		if err := cfg.LoadFromFile(configPath); err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return fmt.Errorf("apply env overrides: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	node, err := adapter.New(ctx, storageURI, mountPoint, cfg)
	if err != nil {
		return fmt.Errorf("create adapter: %w", err)
	}

	if err := node.Start(ctx); err != nil {
		return fmt.Errorf("start adapter: %w", err)
	}
	log.Printf("claudefsd: mounted %s at %s", storageURI, mountPoint)

	apiServer := newOpsServer(apiAddr)
	apiServer.StartBackground()
	log.Printf("claudefsd: operational API listening on %s", apiAddr)

	memMonitor := newMemoryMonitor(pprofPort)
	if memMonitor != nil {
		if err := memMonitor.Start(ctx); err != nil {
			return fmt.Errorf("start memory monitor: %w", err)
		}
		memMonitor.AddAlertCallback(func(alert profiling.Alert) {
			log.Printf("claudefsd: memory alert [%s]: %s", alert.Level, alert.Message)
		})
	}

	<-ctx.Done()
	log.Printf("claudefsd: shutdown signal received, draining")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTTL)
	defer shutdownCancel()

	if memMonitor != nil {
		if err := memMonitor.Stop(shutdownCtx); err != nil {
			log.Printf("claudefsd: memory monitor shutdown: %v", err)
		}
	}
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("claudefsd: api server shutdown: %v", err)
	}
	if err := node.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("stop adapter: %w", err)
	}
	return nil
}

// newMemoryMonitor returns nil when pprofPort is 0, so profiling stays
// opt-in: it opens an HTTP listener and mutates GOGC, neither of which a
// production node should get without an explicit flag.
func newMemoryMonitor(pprofPort int) *profiling.MemoryMonitor {
	if pprofPort == 0 {
		return nil
	}
	return profiling.NewMemoryMonitor(
		profiling.MonitorConfig{
			Enabled:        true,
			Port:           pprofPort,
			SampleInterval: 30 * time.Second,
			EnablePprof:    true,
			EnableMetrics:  false,
		},
		profiling.AlertThresholds{
			HeapSizeMB:        4096,
			HeapGrowthPercent: 50,
		},
	)
}

// newOpsServer wires the long-running-operation tracker and component
// health tracker (distinct from the per-shard consensus health check
// internal/adapter registers with internal/health.Monitor) behind the
// daemon's own status/health HTTP endpoints - separate from the
// Prometheus-oriented metrics endpoint internal/metrics.Collector
// already serves.
func newOpsServer(addr string) *api.Server {
	healthTracker := health.NewTracker(health.TrackerConfig{
		ErrorThreshold:       3,
		UnavailableThreshold: 6,
		RecoveryThreshold:    2,
		HealthCheckInterval:  30 * time.Second,
	})
	healthTracker.RegisterComponent("metadata")
	healthTracker.RegisterComponent("storage")
	healthTracker.RegisterComponent("cache")

	statusTracker := status.NewTracker(status.TrackerConfig{
		MaxHistorySize: 1000,
		HealthTracker:  healthTracker,
	})

	serverCfg := api.DefaultServerConfig()
	serverCfg.Address = addr
	return api.NewServer(serverCfg, statusTracker, healthTracker)
}
