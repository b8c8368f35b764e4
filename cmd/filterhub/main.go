package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goran-ethernal/FilterHub/internal/chainstore"
	"github.com/goran-ethernal/FilterHub/internal/common"
	"github.com/goran-ethernal/FilterHub/internal/config"
	"github.com/goran-ethernal/FilterHub/internal/filters"
	"github.com/goran-ethernal/FilterHub/internal/follower"
	"github.com/goran-ethernal/FilterHub/internal/jsonrpc"
	"github.com/goran-ethernal/FilterHub/internal/logger"
	"github.com/goran-ethernal/FilterHub/internal/metrics"
	"github.com/goran-ethernal/FilterHub/internal/reorg"
	"github.com/goran-ethernal/FilterHub/internal/rpc"
	"github.com/goran-ethernal/FilterHub/pkg/chain"
	pkgconfig "github.com/goran-ethernal/FilterHub/pkg/config"
	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const (
	version = "1.0.0"
	banner  = `
╔═══════════════════════════════════════════╗
║             FilterHub v%s              ║
║   Ethereum JSON-RPC Filter Subscriptions  ║
╚═══════════════════════════════════════════╝
`
	shutdownTimeout = 10 * time.Second
)

var (
	configPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "filterhub",
	Short: "FilterHub - Ethereum JSON-RPC filter node",
	Long: `FilterHub serves the Ethereum filter API (eth_newFilter, eth_newBlockFilter,
eth_getFilterChanges, eth_getFilterLogs, eth_uninstallFilter) on top of an upstream
node, either reading it directly or through a local SQLite chain store.`,
	Version: version,
	RunE:    runFilterHub,
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the configuration JSON schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		schema := jsonschema.Reflect(&pkgconfig.Config{})

		out, err := json.MarshalIndent(schema, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode schema: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to configuration file")
	rootCmd.AddCommand(schemaCmd)
}

func runFilterHub(cmd *cobra.Command, args []string) error {
	fmt.Printf(banner, version)

	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var logCfg logger.LoggingConfig
	if cfg.Logging != nil {
		logCfg = cfg.Logging
	}
	componentLogger := func(component string) *logger.Logger {
		return logger.NewComponentLoggerFromConfig(component, logCfg)
	}
	log := componentLogger(common.ComponentFilterHub)
	defer func() { _ = log.Close() }()

	if cfg.Metrics != nil {
		metricsServer := metrics.NewServer(*cfg.Metrics, componentLogger(common.ComponentMetrics))
		if err := metricsServer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := metricsServer.Stop(shutdownCtx); err != nil {
				log.Warnf("Failed to stop metrics server: %v", err)
			}
		}()
	}

	log.Info("Connecting to Ethereum node...")
	upstream, err := rpc.NewClient(ctx, cfg.Chain.RPCURL, cfg.Chain.Retry, componentLogger(common.ComponentRPCClient))
	if err != nil {
		return fmt.Errorf("failed to create RPC client: %w", err)
	}
	defer upstream.Close()
	log.Infof("Connected to Ethereum node: %s", cfg.Chain.RPCURL)

	g, gctx := errgroup.WithContext(ctx)

	var reader chain.Reader = upstream
	if cfg.Chain.Backend == pkgconfig.BackendSQLite {
		store, err := chainstore.Open(cfg.Chain.DB, cfg.Chain.Maintenance, componentLogger(common.ComponentChainStore))
		if err != nil {
			return fmt.Errorf("failed to open chain store: %w", err)
		}
		defer store.Close()

		if err := store.Start(gctx); err != nil {
			return fmt.Errorf("failed to start chain store maintenance: %w", err)
		}

		followerLog := componentLogger(common.ComponentFollower)
		detector := reorg.NewReorgDetector(store, upstream, cfg.Chain.Follower.MaxReorgDepth, followerLog)
		f := follower.New(upstream, store, detector, cfg.Chain.Follower, cfg.Chain.RetentionPolicy, followerLog)

		g.Go(func() error {
			metrics.ComponentHealthSet(common.ComponentFollower, true)
			err := f.Run(gctx)
			metrics.ComponentHealthSet(common.ComponentFollower, false)
			if err != nil {
				metrics.ErrorsInc(common.ComponentFollower, "fatal")
			}
			return err
		})

		reader = store
		log.Infof("Serving filters from local chain store %s", cfg.Chain.DB.Path)
	}

	hub := filters.NewHub(reader, cfg.Filters, componentLogger(common.ComponentFilterHub))
	hub.Start(gctx)
	defer hub.Stop()
	metrics.ComponentHealthSet(common.ComponentFilterHub, true)

	server, err := jsonrpc.NewServer(cfg.Server, hub, reader, componentLogger(common.ComponentJSONRPC))
	if err != nil {
		return fmt.Errorf("failed to create JSON-RPC server: %w", err)
	}

	g.Go(func() error {
		metrics.ComponentHealthSet(common.ComponentJSONRPC, true)
		defer metrics.ComponentHealthSet(common.ComponentJSONRPC, false)
		if err := server.Start(gctx); err != nil {
			metrics.ErrorsInc(common.ComponentJSONRPC, "fatal")
			return err
		}
		return nil
	})

	log.Info("FilterHub started")

	if err := g.Wait(); err != nil {
		return fmt.Errorf("filterhub failed: %w", err)
	}

	log.Info("FilterHub stopped successfully")
	return nil
}
