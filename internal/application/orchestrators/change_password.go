package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fieldops/internal/domain/account"
)

// AccountStoreForChangePassword defines the store interface needed by ChangePassword.
type AccountStoreForChangePassword interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// ChangePasswordDeps holds dependencies for ChangePassword.
type ChangePasswordDeps struct {
	AccountStore AccountStoreForChangePassword
}

var (
	ErrCurrentPasswordWrong = errors.New("current password is incorrect")
	ErrNewPasswordSame      = errors.New("new password must be different from current password")
)

// ExecuteChangePassword replaces the actor's own password.
// PRE: actor is signed in
// POST: Password is rehashed; wrong or unchanged passwords are input errors
func ExecuteChangePassword(ctx context.Context, current, next string, actor Actor, deps ChangePasswordDeps) error {
	if current == "" || next == "" {
		return invalid(account.ErrEmptyPassword)
	}

	acct, err := deps.AccountStore.GetByID(ctx, actor.AccountID)
	if err != nil {
		return fmt.Errorf("load account: %w", err)
	}
	if err := acct.CheckPassword(current); err != nil {
		slog.Warn("auth_event", "event", "password_change_rejected", "account_id", actor.AccountID)
		return invalid(ErrCurrentPasswordWrong)
	}
	if current == next {
		return invalid(ErrNewPasswordSame)
	}
	if err := acct.SetPassword(next); err != nil {
		return invalid(err)
	}
	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return err
	}

	slog.Info("auth_event", "event", "password_changed", "account_id", actor.AccountID)
	return nil
}
