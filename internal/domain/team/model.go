package team

import (
	"errors"
	"time"

	"fieldops/internal/domain/taglist"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength        = 100
	MaxDescriptionLength = 2000
	MaxExpertise         = 50
)

// Domain errors
var (
	ErrEmptyName        = errors.New("team name cannot be empty")
	ErrNameTooLong      = errors.New("team name cannot exceed 100 characters")
	ErrDescriptionLong  = errors.New("team description cannot exceed 2000 characters")
	ErrTooManyExpertise = errors.New("a team cannot list more than 50 areas of expertise")
	ErrInvalidExpertise = errors.New("team expertise must be unique and non-empty")
)

// Team is a crew of technicians dispatched together.
// Description is markdown. Expertise is an ordered tag list.
// INVARIANT: Expertise holds no blank or duplicate entries under the configured policy.
type Team struct {
	ID          string
	Name        string
	Description string
	Expertise   []string
	CreatedAt   time.Time
}

// Validate checks the team's invariants under the given expertise policy.
// PRE: none
// POST: returns nil if valid, error describing the first violation otherwise
func (t *Team) Validate(policy taglist.Policy) error {
	if t.Name == "" {
		return ErrEmptyName
	}
	if len(t.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if len(t.Description) > MaxDescriptionLength {
		return ErrDescriptionLong
	}
	if len(t.Expertise) > MaxExpertise {
		return ErrTooManyExpertise
	}
	if !taglist.Valid(t.Expertise, policy) {
		return ErrInvalidExpertise
	}
	return nil
}

// HasExpertise reports whether the team lists area under policy.
func (t *Team) HasExpertise(area string, policy taglist.Policy) bool {
	return taglist.New(t.Expertise, policy).Contains(area)
}
