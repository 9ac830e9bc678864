package contract

import (
	"errors"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxTitleLength = 200
)

// ExpiringWindow is how close to its end date a contract counts as expiring.
const ExpiringWindow = 30 * 24 * time.Hour

// Visit frequencies.
const (
	FrequencyWeekly    = "weekly"
	FrequencyMonthly   = "monthly"
	FrequencyQuarterly = "quarterly"
	FrequencyYearly    = "yearly"
)

// Contract statuses, derived from dates.
const (
	StatusUpcoming = "upcoming"
	StatusActive   = "active"
	StatusExpiring = "expiring"
	StatusExpired  = "expired"
)

// Statuses lists every status in display order.
var Statuses = []string{StatusActive, StatusExpiring, StatusUpcoming, StatusExpired}

// Domain errors
var (
	ErrEmptyClientID    = errors.New("contract client ID cannot be empty")
	ErrEmptyTitle       = errors.New("contract title cannot be empty")
	ErrInvalidFrequency = errors.New("visit frequency must be weekly, monthly, quarterly or yearly")
	ErrMissingDates     = errors.New("contract start and end dates are required")
	ErrEndBeforeStart   = errors.New("contract end date cannot be before start date")
)

// Contract is a maintenance agreement between a client and a team.
// INVARIANT: StartDate is not after EndDate.
type Contract struct {
	ID             string
	ClientID       string
	TeamID         string // optional; empty until a team is assigned
	Title          string
	StartDate      time.Time
	EndDate        time.Time
	VisitFrequency string
	CreatedAt      time.Time
}

// Validate checks the contract's invariants.
// PRE: none
// POST: returns nil if valid, error describing the first violation otherwise
func (c *Contract) Validate() error {
	if c.ClientID == "" {
		return ErrEmptyClientID
	}
	if c.Title == "" {
		return ErrEmptyTitle
	}
	if len(c.Title) > MaxTitleLength {
		return errors.New("contract title cannot exceed 200 characters")
	}
	switch c.VisitFrequency {
	case FrequencyWeekly, FrequencyMonthly, FrequencyQuarterly, FrequencyYearly:
	default:
		return ErrInvalidFrequency
	}
	if c.StartDate.IsZero() || c.EndDate.IsZero() {
		return ErrMissingDates
	}
	if c.EndDate.Before(c.StartDate) {
		return ErrEndBeforeStart
	}
	return nil
}

// Status returns the contract's status relative to now.
// PRE: now is a valid time
// POST: returns one of the Status constants
func (c *Contract) Status(now time.Time) string {
	switch {
	case now.Before(c.StartDate):
		return StatusUpcoming
	case now.After(c.EndDate):
		return StatusExpired
	case c.EndDate.Sub(now) <= ExpiringWindow:
		return StatusExpiring
	}
	return StatusActive
}

// NextVisit returns the first scheduled visit on or after now.
// Visits fall on StartDate and every frequency step after it.
// PRE: contract is valid
// POST: returns zero time and false when no visit remains before EndDate
func (c *Contract) NextVisit(now time.Time) (time.Time, bool) {
	visit := c.StartDate
	for visit.Before(now) {
		visit = c.step(visit)
	}
	if visit.After(c.EndDate) {
		return time.Time{}, false
	}
	return visit, true
}

func (c *Contract) step(t time.Time) time.Time {
	switch c.VisitFrequency {
	case FrequencyWeekly:
		return t.AddDate(0, 0, 7)
	case FrequencyQuarterly:
		return t.AddDate(0, 3, 0)
	case FrequencyYearly:
		return t.AddDate(1, 0, 0)
	}
	return t.AddDate(0, 1, 0)
}
