package account

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Max length constants for user-editable fields.
const (
	MaxEmailLength    = 254
	MinPasswordLength = 12
)

// Lockout policy.
const (
	MaxFailedLogins = 5
	LockoutDuration = 15 * time.Minute
)

// bcryptCost is a variable so tests can lower it.
var bcryptCost = 12

// Role constants
const (
	RoleAdmin      = "admin"
	RoleDispatcher = "dispatcher"
	RoleTechnician = "technician"
)

// ValidRoles contains all valid role values.
var ValidRoles = []string{RoleAdmin, RoleDispatcher, RoleTechnician}

// Domain errors
var (
	ErrInvalidEmail         = errors.New("email must contain '@'")
	ErrEmptyEmail           = errors.New("email cannot be empty")
	ErrInvalidRole          = errors.New("role must be one of: admin, dispatcher, technician")
	ErrEmptyPassword        = errors.New("password cannot be empty")
	ErrPasswordTooShort     = errors.New("password must be at least 12 characters")
	ErrWrongPassword        = errors.New("incorrect password")
	ErrLocked               = errors.New("account is temporarily locked")
	ErrTechnicianIDRequired = errors.New("technician accounts must be linked to a technician")
)

// Account is a dashboard login.
// INVARIANT: technician accounts carry the ID of the technician they act as.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	Role         string
	TechnicianID string // set only for RoleTechnician
	CreatedAt    time.Time
	FailedLogins int
	LockedUntil  time.Time
}

// Validate checks if the Account has valid data.
// PRE: Account struct is populated
// POST: Returns nil if valid, error otherwise
func (a *Account) Validate() error {
	if strings.TrimSpace(a.Email) == "" {
		return ErrEmptyEmail
	}
	if len(a.Email) > MaxEmailLength {
		return errors.New("email cannot exceed 254 characters")
	}
	if !strings.Contains(a.Email, "@") {
		return ErrInvalidEmail
	}
	if !isValidRole(a.Role) {
		return ErrInvalidRole
	}
	if a.Role == RoleTechnician && a.TechnicianID == "" {
		return ErrTechnicianIDRequired
	}
	return nil
}

// SetPassword hashes and stores a password using bcrypt.
// PRE: plaintext is at least MinPasswordLength characters
// POST: PasswordHash is set to bcrypt hash
func (a *Account) SetPassword(plaintext string) error {
	if plaintext == "" {
		return ErrEmptyPassword
	}
	if len(plaintext) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcryptCost)
	if err != nil {
		return err
	}
	a.PasswordHash = string(hash)
	return nil
}

// CheckPassword verifies a plaintext password against the stored hash.
// INVARIANT: Account fields are not mutated
func (a *Account) CheckPassword(plaintext string) error {
	if a.PasswordHash == "" {
		return ErrWrongPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(plaintext)); err != nil {
		return ErrWrongPassword
	}
	return nil
}

// IsLocked reports whether the account is locked out at now.
func (a *Account) IsLocked(now time.Time) bool {
	return !a.LockedUntil.IsZero() && now.Before(a.LockedUntil)
}

// RecordFailedLogin increments the failure counter and locks the account after MaxFailedLogins.
// POST: LockedUntil set to now+LockoutDuration once the threshold is reached
func (a *Account) RecordFailedLogin(now time.Time) {
	a.FailedLogins++
	if a.FailedLogins >= MaxFailedLogins {
		a.LockedUntil = now.Add(LockoutDuration)
	}
}

// ResetFailedLogins clears the failure counter and lock.
func (a *Account) ResetFailedLogins() {
	a.FailedLogins = 0
	a.LockedUntil = time.Time{}
}

// CanManage reports whether the account may change teams, clients and contracts.
func (a *Account) CanManage() bool {
	return a.Role == RoleAdmin || a.Role == RoleDispatcher
}

func isValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
