package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/langtools/langcodes/internal/audit"
	"github.com/langtools/langcodes/internal/config"
	"github.com/langtools/langcodes/internal/detect"
	"github.com/langtools/langcodes/internal/langdata"
	"github.com/langtools/langcodes/internal/logging"
	"github.com/langtools/langcodes/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"table_path", cfg.Detect.TablePath,
		"audit_enabled", cfg.AuditEnabled(),
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	// Load the generated language table; the service cannot run
	// without it.
	table, err := langdata.Load(cfg.Detect.TablePath)
	if err != nil {
		slog.Error("failed to load language table", "error", err, "path", cfg.Detect.TablePath)
		os.Exit(1)
	}
	slog.Info("language table loaded", "languages", table.Len())

	ctx := context.Background()

	// Connect the optional detection audit store
	var auditLog *audit.Store
	var pool *pgxpool.Pool
	if cfg.AuditEnabled() {
		poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
		if err != nil {
			slog.Error("failed to parse database URL", "error", err)
			os.Exit(1)
		}
		poolConfig.MaxConns = int32(cfg.Database.MaxConns)
		poolConfig.MinConns = int32(cfg.Database.MinConns)
		poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
		poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

		pool, err = pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := pool.Ping(ctx); err != nil {
			slog.Error("failed to ping database", "error", err)
			os.Exit(1)
		}

		auditLog = audit.NewStore(pool, audit.Config{
			BufferSize:    cfg.Audit.BufferSize,
			FlushInterval: cfg.Audit.FlushInterval,
			QueryLimit:    cfg.Audit.QueryLimit,
		})
		if err := auditLog.EnsureSchema(ctx); err != nil {
			slog.Error("failed to ensure audit schema", "error", err)
			os.Exit(1)
		}
		slog.Info("detection audit store connected")
	}

	// Create server
	server := web.NewServer(table, detect.NewWithPrefixes(cfg.Detect.StripPrefixes), auditLog, cfg)

	// Cancellable context for the audit flusher
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	defer cancelJobs()
	auditDone := make(chan struct{})
	if auditLog != nil {
		go func() {
			auditLog.Run(jobCtx)
			close(auditDone)
		}()
	} else {
		close(auditDone)
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		// Stop the audit flusher; its final flush drains the buffer
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	// Start server (uses addr from config internally)
	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}

	// Wait for the flusher's final flush before the deferred pool.Close
	cancelJobs()
	<-auditDone
}
