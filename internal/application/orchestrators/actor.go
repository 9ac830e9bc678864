package orchestrators

import (
	"errors"

	"fieldops/internal/domain/account"
)

// ErrForbidden is returned when the actor's role does not allow the operation.
var ErrForbidden = errors.New("not permitted for this account")

// Actor identifies the signed-in account performing an operation.
type Actor struct {
	AccountID    string
	Email        string
	Role         string
	TechnicianID string // set for technician accounts
}

// CanManage reports whether the actor may change teams, technicians, clients and contracts.
func (a Actor) CanManage() bool {
	return a.Role == account.RoleAdmin || a.Role == account.RoleDispatcher
}

// canEditTags reports whether the actor may edit the given tag list.
// Technicians may edit only their own skills.
func (a Actor) canEditTags(kind TagListKind, ownerID string) bool {
	if a.CanManage() {
		return true
	}
	return kind == KindSkills && a.Role == account.RoleTechnician && a.TechnicianID != "" && a.TechnicianID == ownerID
}

// InputError marks a rejection caused by the caller's input rather than by storage.
type InputError struct {
	Err error
}

func (e *InputError) Error() string { return e.Err.Error() }

func (e *InputError) Unwrap() error { return e.Err }

// invalid wraps a validation failure as an InputError.
func invalid(err error) error {
	return &InputError{Err: err}
}

// IsInputError reports whether err was caused by invalid input.
func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}
