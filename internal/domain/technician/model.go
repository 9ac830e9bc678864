package technician

import (
	"errors"
	"strings"
	"time"

	"fieldops/internal/domain/taglist"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength  = 100
	MaxEmailLength = 254
	MaxSkills      = 50
)

// Domain errors
var (
	ErrEmptyName     = errors.New("technician name cannot be empty")
	ErrNameTooLong   = errors.New("technician name cannot exceed 100 characters")
	ErrInvalidEmail  = errors.New("technician email must contain '@'")
	ErrTooManySkills = errors.New("a technician cannot list more than 50 skills")
	ErrInvalidSkills = errors.New("technician skills must be unique and non-empty")
)

// Technician is a field engineer who can be assigned to maintenance visits.
// INVARIANT: Skills holds no blank or duplicate entries under the configured policy.
type Technician struct {
	ID        string
	Name      string
	Email     string // optional; used for skill change notifications
	TeamID    string // optional; empty when unassigned
	Skills    []string
	Active    bool
	CreatedAt time.Time
}

// Validate checks the technician's invariants under the given skill policy.
// PRE: none
// POST: returns nil if valid, error describing the first violation otherwise
func (t *Technician) Validate(policy taglist.Policy) error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	if len(t.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if t.Email != "" && (!strings.Contains(t.Email, "@") || len(t.Email) > MaxEmailLength) {
		return ErrInvalidEmail
	}
	if len(t.Skills) > MaxSkills {
		return ErrTooManySkills
	}
	if !taglist.Valid(t.Skills, policy) {
		return ErrInvalidSkills
	}
	return nil
}

// HasSkill reports whether the technician lists skill under policy.
func (t *Technician) HasSkill(skill string, policy taglist.Policy) bool {
	return taglist.New(t.Skills, policy).Contains(skill)
}
