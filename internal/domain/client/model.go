package client

import (
	"errors"
	"strings"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength    = 200
	MaxAddressLength = 500
)

// Domain errors
var (
	ErrEmptyName    = errors.New("client name cannot be empty")
	ErrInvalidEmail = errors.New("client contact email must contain '@'")
)

// Client is a customer site owner holding maintenance contracts.
type Client struct {
	ID           string
	Name         string
	ContactName  string
	ContactEmail string
	Address      string
	CreatedAt    time.Time
}

// Validate checks the client's invariants.
// PRE: none
// POST: returns nil if valid, error describing the first violation otherwise
func (c *Client) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > MaxNameLength {
		return errors.New("client name cannot exceed 200 characters")
	}
	if c.ContactEmail != "" && !strings.Contains(c.ContactEmail, "@") {
		return ErrInvalidEmail
	}
	if len(c.Address) > MaxAddressLength {
		return errors.New("client address cannot exceed 500 characters")
	}
	return nil
}
