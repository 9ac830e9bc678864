package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"fieldops/internal/domain/account"
	"fieldops/internal/domain/technician"

	"github.com/google/uuid"
)

// AccountStoreForCreate defines the store interface needed by CreateAccount.
type AccountStoreForCreate interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
	Count(ctx context.Context) (int, error)
}

// CreateAccountInput carries input for the orchestrator.
type CreateAccountInput struct {
	Email        string
	Password     string
	Role         string
	TechnicianID string
}

// CreateAccountDeps holds dependencies for CreateAccount.
type CreateAccountDeps struct {
	AccountStore AccountStoreForCreate
	Technicians  TechnicianLookup // optional; when set, technician links must resolve
}

// TechnicianLookup resolves technician references.
type TechnicianLookup interface {
	GetByID(ctx context.Context, id string) (technician.Technician, error)
}

var ErrEmailAlreadyExists = errors.New("an account with this email already exists")

// ExecuteCreateAccount coordinates account creation.
// PRE: Valid email, password >= 12 chars, valid role
// POST: Account created with hashed password
// INVARIANT: Email must be unique
func ExecuteCreateAccount(ctx context.Context, input CreateAccountInput, deps CreateAccountDeps) (string, error) {
	acct := account.Account{
		ID:           uuid.New().String(),
		Email:        strings.TrimSpace(input.Email),
		Role:         input.Role,
		TechnicianID: input.TechnicianID,
		CreatedAt:    time.Now(),
	}
	if err := acct.Validate(); err != nil {
		return "", invalid(err)
	}
	if acct.TechnicianID != "" && deps.Technicians != nil {
		if _, err := deps.Technicians.GetByID(ctx, acct.TechnicianID); err != nil {
			return "", err
		}
	}
	if _, err := deps.AccountStore.GetByEmail(ctx, acct.Email); err == nil {
		return "", ErrEmailAlreadyExists
	}
	if err := acct.SetPassword(input.Password); err != nil {
		return "", invalid(err)
	}
	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return "", err
	}

	slog.Info("auth_event", "event", "account_created", "email", acct.Email, "role", acct.Role)
	return acct.ID, nil
}

// ExecuteSeedAdmin creates a default admin account if no accounts exist.
// PRE: Database is initialized
// POST: Admin account created if count == 0
func ExecuteSeedAdmin(ctx context.Context, deps CreateAccountDeps, email, password string) error {
	count, err := deps.AccountStore.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if _, err := ExecuteCreateAccount(ctx, CreateAccountInput{
		Email:    email,
		Password: password,
		Role:     account.RoleAdmin,
	}, deps); err != nil {
		return err
	}

	slog.Info("auth_event", "event", "admin_seeded", "email", email)
	return nil
}
