package web

import (
	"context"
	"net/http"
	"time"

	"fieldops/internal/adapters/email"
	"fieldops/internal/adapters/http/middleware"
	"fieldops/internal/adapters/http/perf"
	accountStore "fieldops/internal/adapters/storage/account"
	auditStore "fieldops/internal/adapters/storage/audit"
	clientStore "fieldops/internal/adapters/storage/client"
	contractStore "fieldops/internal/adapters/storage/contract"
	outboxStore "fieldops/internal/adapters/storage/outbox"
	teamStore "fieldops/internal/adapters/storage/team"
	technicianStore "fieldops/internal/adapters/storage/technician"
	"fieldops/internal/application/orchestrators"
	"fieldops/internal/config"
	"fieldops/internal/domain/taglist"
)

// Stores holds all storage dependencies.
type Stores struct {
	AccountStore    accountStore.Store
	AuditStore      auditStore.Store
	TeamStore       teamStore.Store
	TechnicianStore technicianStore.Store
	ClientStore     clientStore.Store
	ContractStore   contractStore.Store
	OutboxStore     outboxStore.Store // optional; failed notices are dropped without it
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global session store instance
var sessions *middleware.SessionStore

// Global tag editor registry (set by NewMux)
var tagEditors *orchestrators.TagEditorRegistry

// Tag comparison policies (set by NewMux)
var skillPolicy, expertisePolicy taglist.Policy

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// Global email sender instance (set by SetEmailSender); nil disables notifications.
var emailSender email.Sender

// timeNow is a variable for testability.
var timeNow = time.Now

// SetEmailSender sets the global email sender for the application.
func SetEmailSender(sender email.Sender) {
	emailSender = sender
}

// NewMux wires HTTP handlers for the app.
// ctx bounds background work started for the mux, such as rate limiter cleanup.
func NewMux(ctx context.Context, cfg config.Config, s *Stores, registry *orchestrators.TagEditorRegistry, collector *perf.Collector) http.Handler {
	stores = s
	tagEditors = registry
	perfCollector = collector
	skillPolicy = cfg.SkillPolicy
	expertisePolicy = cfg.ExpertisePolicy
	sessions = middleware.NewSessionStore()
	middleware.SecureCookies = cfg.IsProduction()

	mux := http.NewServeMux()
	registerRoutes(mux)

	limiter := middleware.NewRateLimiter(ctx, RateLimitPerSecond, time.Second)

	// Outermost first: Timing -> RateLimit -> Auth -> CSRF -> SecurityHeaders -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(cfg.CSRFKey, cfg.IsProduction()),
		middleware.Auth(sessions),
		middleware.RateLimit(limiter),
		middleware.Timing(collector, cfg.SlowRequest),
	)
}
