package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	emailPkg "fieldops/internal/adapters/email"
	web "fieldops/internal/adapters/http"
	"fieldops/internal/adapters/http/perf"
	"fieldops/internal/adapters/storage"
	accountStore "fieldops/internal/adapters/storage/account"
	auditStore "fieldops/internal/adapters/storage/audit"
	clientStore "fieldops/internal/adapters/storage/client"
	contractStore "fieldops/internal/adapters/storage/contract"
	outboxStore "fieldops/internal/adapters/storage/outbox"
	teamStore "fieldops/internal/adapters/storage/team"
	technicianStore "fieldops/internal/adapters/storage/technician"
	"fieldops/internal/application/orchestrators"
	"fieldops/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

// shutdownTimeout bounds how long in-flight requests get after a signal.
const shutdownTimeout = 15 * time.Second

const (
	outboxInterval  = time.Minute
	outboxRetention = 30 * 24 * time.Hour // delivered notices are purged at startup after this
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	setupLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// WAL mode, foreign keys and a busy timeout for concurrent writers
	dsn := cfg.DBPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}
	if err := storage.MigrateDB(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Performance instrumentation: wrap DB with timing, create collector
	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector, cfg.SlowQuery)

	acctStore := accountStore.NewSQLiteStore(timedDB)
	stores := &web.Stores{
		AccountStore:    acctStore,
		AuditStore:      auditStore.NewSQLiteStore(timedDB),
		TeamStore:       teamStore.NewSQLiteStore(timedDB),
		TechnicianStore: technicianStore.NewSQLiteStore(timedDB),
		ClientStore:     clientStore.NewSQLiteStore(timedDB),
		ContractStore:   contractStore.NewSQLiteStore(timedDB),
		OutboxStore:     outboxStore.NewSQLiteStore(timedDB),
	}

	// Seed default admin account if no accounts exist
	seedDeps := orchestrators.CreateAccountDeps{AccountStore: acctStore}
	if err := orchestrators.ExecuteSeedAdmin(ctx, seedDeps, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}

	var sender emailPkg.Sender
	if cfg.ResendKey != "" {
		sender = emailPkg.NewResendSender(cfg.ResendKey, cfg.ResendFrom, cfg.ReplyTo)
		slog.Info("email_sender_configured", "provider", "resend")
	} else {
		sender = emailPkg.NewNoopSender()
		if cfg.IsProduction() {
			slog.Warn("email_sender_configured", "provider", "noop", "note", "FIELDOPS_RESEND_KEY unset, notices are not delivered")
		} else {
			slog.Info("email_sender_configured", "provider", "noop")
		}
	}
	web.SetEmailSender(sender)

	if n, err := stores.OutboxStore.PurgeDone(ctx, time.Now().Add(-outboxRetention)); err != nil {
		slog.Error("outbox_event", "event", "purge_failed", "error", err.Error())
	} else if n > 0 {
		slog.Info("outbox_event", "event", "purged", "removed", n)
	}
	stopOutbox := orchestrators.StartOutboxWorker(ctx, orchestrators.NewOutboxProcessor(stores.OutboxStore, sender), outboxInterval)
	defer stopOutbox()
	if cfg.CSRFKeyGenerated {
		slog.Warn("csrf_key_generated", "note", "sessions and tokens reset on restart; set FIELDOPS_CSRF_KEY")
	}

	registry := orchestrators.NewTagEditorRegistry(cfg.EditorTTL)
	stopSweeper := orchestrators.StartTagEditorSweeper(ctx, registry, sweepInterval(cfg.EditorTTL))
	defer stopSweeper()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           web.NewMux(ctx, cfg, stores, registry, collector),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server_shutdown_failed", "error", err.Error())
		}
	}()

	slog.Info("server_starting", "version", version, "addr", cfg.Addr, "env", cfg.Env, "schema", storage.LatestSchemaVersion())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server failed: %v", err)
	}
	slog.Info("server_stopped")
}

// setupLogging installs a JSON handler in production and a text handler elsewhere.
func setupLogging(cfg config.Config) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	var h slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if cfg.IsProduction() {
		h = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h))
}

// sweepInterval checks for expired editors a few times per TTL, at most once a minute.
func sweepInterval(ttl time.Duration) time.Duration {
	interval := ttl / 4
	if interval <= 0 || interval > time.Minute {
		interval = time.Minute
	}
	return interval
}
