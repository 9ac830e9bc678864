//go:build browser

package browser_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"

	_ "modernc.org/sqlite"

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
	"fieldops/internal/domain/account"
	"fieldops/internal/domain/taglist"
)

const (
	adminEmail    = "admin@test.com"
	adminPassword = "TestPass123!long"
)

// testApp holds the running test server and Playwright handles.
type testApp struct {
	BaseURL string
	DB      *sql.DB
	Server  *http.Server
	PW      *playwright.Playwright
	Stores  *web.Stores
}

// newTestApp creates a fully wired app with a temp SQLite DB and starts an HTTP server.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("failed to open test DB: %v", err)
	}
	if err := storage.MigrateDB(db); err != nil {
		t.Fatalf("failed to migrate test DB: %v", err)
	}

	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector, 0)
	stores := &web.Stores{
		AccountStore:    accountStore.NewSQLiteStore(timedDB),
		AuditStore:      auditStore.NewSQLiteStore(timedDB),
		TeamStore:       teamStore.NewSQLiteStore(timedDB),
		TechnicianStore: technicianStore.NewSQLiteStore(timedDB),
		ClientStore:     clientStore.NewSQLiteStore(timedDB),
		ContractStore:   contractStore.NewSQLiteStore(timedDB),
		OutboxStore:     outboxStore.NewSQLiteStore(timedDB),
	}

	ctx, cancel := context.WithCancel(context.Background())
	if _, err := orchestrators.ExecuteCreateAccount(ctx, orchestrators.CreateAccountInput{
		Email:    adminEmail,
		Password: adminPassword,
		Role:     account.RoleAdmin,
	}, orchestrators.CreateAccountDeps{AccountStore: stores.AccountStore}); err != nil {
		t.Fatalf("failed to create admin: %v", err)
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	baseURL := "http://" + listener.Addr().String()

	cfg := config.Config{
		Env:             config.EnvDevelopment,
		CSRFKey:         make([]byte, 32),
		SkillPolicy:     taglist.CaseInsensitive,
		ExpertisePolicy: taglist.CaseInsensitive,
	}
	registry := orchestrators.NewTagEditorRegistry(time.Minute)
	srv := &http.Server{Handler: web.NewMux(ctx, cfg, stores, registry, collector)}
	go func() {
		if err := srv.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
			log.Printf("test server error: %v", err)
		}
	}()

	pw, err := playwright.Run()
	if err != nil {
		t.Fatalf("failed to start Playwright: %v", err)
	}

	app := &testApp{BaseURL: baseURL, DB: db, Server: srv, PW: pw, Stores: stores}
	t.Cleanup(func() {
		pw.Stop()
		srv.Close()
		cancel()
		db.Close()
	})
	return app
}

// newAPI creates a request context that keeps cookies between calls.
func (a *testApp) newAPI(t *testing.T) playwright.APIRequestContext {
	t.Helper()
	api, err := a.PW.Request.NewContext(playwright.APIRequestNewContextOptions{
		BaseURL:          playwright.String(a.BaseURL),
		ExtraHttpHeaders: map[string]string{"Content-Type": "application/json"},
	})
	if err != nil {
		t.Fatalf("failed to create request context: %v", err)
	}
	t.Cleanup(func() { api.Dispose() })
	return api
}

// login signs in through the API and leaves the session cookie in api.
func (a *testApp) login(t *testing.T, api playwright.APIRequestContext, email, password string) {
	t.Helper()
	resp, err := api.Post("/login", playwright.APIRequestContextPostOptions{
		Data: map[string]string{"email": email, "password": password},
	})
	if err != nil {
		t.Fatalf("login request failed: %v", err)
	}
	if resp.Status() != http.StatusOK {
		t.Fatalf("login %s: got status %d", email, resp.Status())
	}
}

// expectStatus fails the test unless resp has the wanted status, then decodes JSON into out.
func expectStatus(t *testing.T, resp playwright.APIResponse, err error, want int, out any) {
	t.Helper()
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.Status() != want {
		body, _ := resp.Text()
		t.Fatalf("%s: got status %d, want %d: %s", resp.URL(), resp.Status(), want, body)
	}
	if out != nil {
		if err := resp.JSON(out); err != nil {
			t.Fatalf("decode %s: %v", resp.URL(), err)
		}
	}
}

func path(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}
