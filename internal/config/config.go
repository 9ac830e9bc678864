// Package config reads server settings from FIELDOPS_* environment variables.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"fieldops/internal/domain/taglist"
)

// Environment names.
const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
)

// Defaults applied when a variable is unset.
const (
	DefaultAddr        = ":8080"
	DefaultDBPath      = "fieldops.db"
	DefaultAdminEmail  = "admin@fieldops.example"
	DefaultResendFrom  = "FieldOps <noreply@fieldops.example>"
	DefaultEditorTTL   = 30 * time.Minute
	DefaultSlowRequest = 500 * time.Millisecond
	DefaultSlowQuery   = 50 * time.Millisecond
)

var (
	ErrCSRFKeyRequired = errors.New("FIELDOPS_CSRF_KEY is required in production")
	ErrCSRFKeyFormat   = errors.New("FIELDOPS_CSRF_KEY must be 64 hex characters (32 bytes)")
	ErrAdminPassword   = errors.New("FIELDOPS_ADMIN_PASSWORD is required in production")
)

// Config is the resolved server configuration.
type Config struct {
	Env           string
	Addr          string
	DBPath        string
	AdminEmail    string
	AdminPassword string
	CSRFKey       []byte
	// CSRFKeyGenerated is true when no key was configured and a random one was made.
	CSRFKeyGenerated bool
	ResendKey        string
	ResendFrom       string
	ReplyTo          string
	SlowQuery        time.Duration
	SlowRequest      time.Duration
	SkillPolicy      taglist.Policy
	ExpertisePolicy  taglist.Policy
	EditorTTL        time.Duration
}

// IsProduction reports whether the server runs with production safeguards.
func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom reads the configuration through getenv.
// PRE: getenv is non-nil
// POST: returns a complete Config, or the first invalid setting
func LoadFrom(getenv func(string) string) (Config, error) {
	env := func(key, fallback string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return fallback
	}

	cfg := Config{
		Env:           env("FIELDOPS_ENV", EnvDevelopment),
		Addr:          env("FIELDOPS_ADDR", DefaultAddr),
		DBPath:        env("FIELDOPS_DB_PATH", DefaultDBPath),
		AdminEmail:    env("FIELDOPS_ADMIN_EMAIL", DefaultAdminEmail),
		AdminPassword: getenv("FIELDOPS_ADMIN_PASSWORD"),
		ResendKey:     getenv("FIELDOPS_RESEND_KEY"),
		ResendFrom:    env("FIELDOPS_RESEND_FROM", DefaultResendFrom),
		ReplyTo:       getenv("FIELDOPS_REPLY_TO"),
	}

	if cfg.AdminPassword == "" {
		if cfg.IsProduction() {
			return Config{}, ErrAdminPassword
		}
		cfg.AdminPassword = "fieldops-dev-password"
	}

	var err error
	if cfg.CSRFKey, cfg.CSRFKeyGenerated, err = csrfKey(getenv("FIELDOPS_CSRF_KEY"), cfg.IsProduction()); err != nil {
		return Config{}, err
	}
	if cfg.SlowQuery, err = millis(getenv, "FIELDOPS_SLOW_QUERY_MS", DefaultSlowQuery); err != nil {
		return Config{}, err
	}
	if cfg.SlowRequest, err = millis(getenv, "FIELDOPS_SLOW_REQUEST_MS", DefaultSlowRequest); err != nil {
		return Config{}, err
	}
	if cfg.SkillPolicy, err = taglist.ParsePolicy(getenv("FIELDOPS_SKILL_MATCH")); err != nil {
		return Config{}, fmt.Errorf("FIELDOPS_SKILL_MATCH: %w", err)
	}
	if cfg.ExpertisePolicy, err = taglist.ParsePolicy(getenv("FIELDOPS_EXPERTISE_MATCH")); err != nil {
		return Config{}, fmt.Errorf("FIELDOPS_EXPERTISE_MATCH: %w", err)
	}

	cfg.EditorTTL = DefaultEditorTTL
	if v := getenv("FIELDOPS_EDITOR_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil || ttl <= 0 {
			return Config{}, fmt.Errorf("FIELDOPS_EDITOR_TTL must be a positive duration, got %q", v)
		}
		cfg.EditorTTL = ttl
	}
	return cfg, nil
}

// csrfKey decodes the configured key. Outside production a random key is generated when unset.
func csrfKey(keyHex string, production bool) ([]byte, bool, error) {
	if keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			return nil, false, ErrCSRFKeyFormat
		}
		return key, false, nil
	}
	if production {
		return nil, false, ErrCSRFKeyRequired
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, false, fmt.Errorf("failed to generate CSRF key: %w", err)
	}
	return key, true, nil
}

func millis(getenv func(string) string, key string, fallback time.Duration) (time.Duration, error) {
	v := getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, v)
	}
	return time.Duration(n) * time.Millisecond, nil
}
