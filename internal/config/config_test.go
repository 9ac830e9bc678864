package config

import (
	"errors"
	"strings"
	"testing"
	"time"

	"fieldops/internal/domain/taglist"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

// TestLoadFrom_Defaults tests the development defaults.
func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(envMap(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr != DefaultAddr || cfg.DBPath != DefaultDBPath || cfg.IsProduction() {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if len(cfg.CSRFKey) != 32 || !cfg.CSRFKeyGenerated {
		t.Error("expected a generated 32-byte CSRF key")
	}
	if cfg.SkillPolicy != taglist.CaseInsensitive || cfg.ExpertisePolicy != taglist.CaseInsensitive {
		t.Error("expected case-insensitive policies by default")
	}
	if cfg.EditorTTL != DefaultEditorTTL {
		t.Errorf("EditorTTL = %v", cfg.EditorTTL)
	}
}

// TestLoadFrom_Overrides tests that every variable is honoured.
func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(envMap(map[string]string{
		"FIELDOPS_ENV":             "production",
		"FIELDOPS_ADDR":            ":9000",
		"FIELDOPS_ADMIN_PASSWORD":  "a long enough password",
		"FIELDOPS_CSRF_KEY":        strings.Repeat("ab", 32),
		"FIELDOPS_SLOW_QUERY_MS":   "10",
		"FIELDOPS_SLOW_REQUEST_MS": "250",
		"FIELDOPS_SKILL_MATCH":     "exact",
		"FIELDOPS_EDITOR_TTL":      "5m",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.IsProduction() || cfg.Addr != ":9000" || cfg.CSRFKeyGenerated {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.SlowQuery != 10*time.Millisecond || cfg.SlowRequest != 250*time.Millisecond {
		t.Errorf("thresholds = %v, %v", cfg.SlowQuery, cfg.SlowRequest)
	}
	if cfg.SkillPolicy != taglist.Exact || cfg.ExpertisePolicy != taglist.CaseInsensitive {
		t.Errorf("policies = %v, %v", cfg.SkillPolicy, cfg.ExpertisePolicy)
	}
	if cfg.EditorTTL != 5*time.Minute {
		t.Errorf("EditorTTL = %v", cfg.EditorTTL)
	}
}

// TestLoadFrom_Errors tests rejected settings.
func TestLoadFrom_Errors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr error
	}{
		{"production without csrf key", map[string]string{"FIELDOPS_ENV": "production", "FIELDOPS_ADMIN_PASSWORD": "x"}, ErrCSRFKeyRequired},
		{"production without admin password", map[string]string{"FIELDOPS_ENV": "production"}, ErrAdminPassword},
		{"short csrf key", map[string]string{"FIELDOPS_CSRF_KEY": "abcd"}, ErrCSRFKeyFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadFrom(envMap(tt.env)); !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}

	for _, env := range []map[string]string{
		{"FIELDOPS_SKILL_MATCH": "fuzzy"},
		{"FIELDOPS_EDITOR_TTL": "soon"},
		{"FIELDOPS_SLOW_QUERY_MS": "-1"},
	} {
		if _, err := LoadFrom(envMap(env)); err == nil {
			t.Errorf("expected error for %v", env)
		}
	}
}
