package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/typesense-mcp/internal/config"
	logpkg "github.com/kailas-cloud/typesense-mcp/internal/logger"
	"github.com/kailas-cloud/typesense-mcp/internal/typesense"
	"github.com/kailas-cloud/typesense-mcp/internal/version"
)

var (
	envName   string
	envFile   string
	transport string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "typesense-mcp",
		Short: "Typesense MCP server for search and RAG",
		Long: `typesense-mcp exposes a Typesense cluster to AI agents over the
Model Context Protocol: hybrid, keyword and natural-language search,
RAG chunk retrieval, and collection, document and NL model management.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&envName, "env", config.GetEnv(), "Config environment (config/<env>.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", config.DefaultDotEnvFile, "Dotenv file read before the config")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
	serveCmd.Flags().StringVar(&transport, "transport", "", "Override mcp.transport (stdio, http)")
	rootCmd.AddCommand(serveCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "health",
		Short: "Check the Typesense cluster and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHealth(cmd.Context())
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version info",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("typesense-mcp %s (%s, %s)\n", version.Version, version.Commit, version.Date)
		},
	})

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (config.Config, *zap.Logger, error) {
	dotenv, err := config.LoadDotEnv(envFile)
	if err != nil {
		return config.Config{}, nil, err
	}

	cfg, err := config.Load(envName)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	if transport != "" {
		cfg.MCP.Transport = transport
		if err := cfg.Validate(); err != nil {
			return config.Config{}, nil, fmt.Errorf("load config: %w", err)
		}
	}

	logger, err := logpkg.NewLogger(envName, logpkg.Options{
		Level:     cfg.Logging.Level,
		Transport: cfg.MCP.Transport,
	})
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("create logger: %w", err)
	}
	if dotenv {
		logger.Debug("Loaded dotenv file", zap.String("path", envFile))
	}
	return cfg, logger, nil
}

func newEngine(cfg config.TypesenseConfig, logger *zap.Logger) (*typesense.Client, error) {
	client, err := typesense.New(typesense.Config{
		Host:          cfg.Host,
		Port:          cfg.Port,
		Protocol:      cfg.Protocol,
		APIKey:        cfg.APIKey,
		Timeout:       cfg.Timeout(),
		NumRetries:    cfg.NumRetries,
		RetryInterval: cfg.RetryInterval(),
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create typesense client: %w", err)
	}
	return client, nil
}

var errUnhealthy = errors.New("typesense is unhealthy")

func runHealth(ctx context.Context) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	engine, err := newEngine(cfg.Typesense, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Typesense.Timeout()+5*time.Second)
	defer cancel()

	out, err := engine.Health(ctx)
	if err != nil {
		logger.Error("health check failed", zap.Error(err))
		return fmt.Errorf("health: %w", err)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(out)

	if ok, _ := out["ok"].(bool); !ok {
		return errUnhealthy
	}
	return nil
}
