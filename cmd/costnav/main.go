package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/bluehawk13/cost-ai-navigator/internal/agent"
	"github.com/bluehawk13/cost-ai-navigator/internal/chat"
	"github.com/bluehawk13/cost-ai-navigator/internal/estimate"
	"github.com/bluehawk13/cost-ai-navigator/internal/logging"
	"github.com/bluehawk13/cost-ai-navigator/internal/server"
	"github.com/bluehawk13/cost-ai-navigator/internal/store"
	"github.com/bluehawk13/cost-ai-navigator/internal/validation"
	"github.com/bluehawk13/cost-ai-navigator/pkg/mcp"
)

var version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "costnav",
		Short: "costnav - AI workflow cost navigator",
		Long: `Costnav manages AI workflow graphs, renders them into structured
descriptions, and produces cost estimates through a remote estimation agent
(with a local fallback when the agent is unreachable).`,
	}
	root.AddCommand(serveCmd())
	root.AddCommand(mcpCmd())
	root.AddCommand(migrateCmd())
	root.AddCommand(versionCmd())
	return root
}

func serveCmd() *cobra.Command {
	var listenAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			if listenAddr != "" {
				cfg.ListenAddr = listenAddr
			}
			return runServe(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&listenAddr, "listen", "", "listen address (overrides config)")
	return cmd
}

func mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP server on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			logger := newLogger(cfg.LogLevel)

			st, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			nav := mcp.NewNavServer(mcp.NavServerDeps{
				Store:     st,
				Estimator: newEstimator(cfg, logger),
				Logger:    logger,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return nav.Serve(ctx)
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			st, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer st.Close()
			fmt.Println("migrations applied")
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the costnav version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("costnav %s\n", version)
		},
	}
}

func runServe(ctx context.Context, cfg Config) error {
	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	validator, err := validation.NewDocumentValidator()
	if err != nil {
		return fmt.Errorf("compile document validator: %w", err)
	}

	var agentClient *agent.Client
	if cfg.AgentEndpoint != "" {
		agentClient = agent.New(cfg.AgentEndpoint, cfg.AgentAPIKey, cfg.AgentID)
	} else {
		logger.Warn("no agent endpoint configured, estimation uses local mock only")
	}

	estimator := estimate.New(clientOrNil(agentClient), logger)

	srv := server.New(server.Deps{
		Store:     st,
		Chat:      chat.New(st, chatAgent(agentClient), logger),
		Estimator: estimator,
		Validator: validator,
		Logger:    logger,
	})

	scheduler := startRetention(ctx, st, cfg, logger)
	if scheduler != nil {
		defer scheduler.Stop()
	}

	httpSrv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      srv.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
	}

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("costnav API listening", slog.String("addr", cfg.ListenAddr))
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case <-runCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// startRetention schedules periodic pruning of stale chat sessions. Returns
// nil when retention is disabled (RetentionDays <= 0).
func startRetention(ctx context.Context, st store.Store, cfg Config, logger *slog.Logger) *cron.Cron {
	if cfg.RetentionDays <= 0 {
		return nil
	}

	c := cron.New()
	_, err := c.AddFunc(cfg.RetentionCron, func() {
		cutoff := time.Now().UTC().AddDate(0, 0, -cfg.RetentionDays)
		n, err := st.PruneSessions(ctx, cutoff)
		if err != nil {
			logger.Error("session retention pruning failed", slog.String("error", err.Error()))
			return
		}
		if n > 0 {
			logger.Info("pruned stale chat sessions", slog.Int64("removed", n))
			if err := st.Vacuum(ctx); err != nil {
				logger.Error("vacuum after pruning failed", slog.String("error", err.Error()))
			}
		}
	})
	if err != nil {
		logger.Error("invalid retention cron expression, retention disabled",
			slog.String("cron", cfg.RetentionCron), slog.String("error", err.Error()))
		return nil
	}
	c.Start()
	return c
}

func openStore(ctx context.Context, cfg Config) (*store.LibSQLStore, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	st, err := store.NewLibSQLStore("file:" + cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return st, nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	inner := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	return slog.New(logging.NewCorrelationHandler(inner))
}

// newEstimator builds the estimator the same way runServe does: a remote
// agent client when an endpoint is configured, otherwise the local mock only.
func newEstimator(cfg Config, logger *slog.Logger) *estimate.Estimator {
	var agentClient *agent.Client
	if cfg.AgentEndpoint != "" {
		agentClient = agent.New(cfg.AgentEndpoint, cfg.AgentAPIKey, cfg.AgentID)
	} else {
		logger.Warn("no agent endpoint configured, estimation uses local mock only")
	}
	return estimate.New(clientOrNil(agentClient), logger)
}

// clientOrNil keeps a typed nil *agent.Client from leaking into the
// estimator's interface value.
func clientOrNil(c *agent.Client) estimate.AgentClient {
	if c == nil {
		return nil
	}
	return c
}

// chatAgent returns the chat service's agent, substituting an offline stub
// when no endpoint is configured so chat still degrades gracefully.
func chatAgent(c *agent.Client) chat.AgentClient {
	if c == nil {
		return offlineAgent{}
	}
	return c
}

// offlineAgent answers every message with a fixed notice.
type offlineAgent struct{}

func (offlineAgent) Send(context.Context, string, string, string) (string, error) {
	return "The cost assistant is not configured. Set COSTNAV_AGENT_ENDPOINT to enable live replies.", nil
}
