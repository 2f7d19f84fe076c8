package domain

import "errors"

// Expected rule violations. Services wrap these with context; callers match
// them with errors.Is and may show err.Error() as-is.
var (
	ErrNoCompany          = errors.New("no company context")
	ErrNotFound           = errors.New("not found")
	ErrDuplicateID        = errors.New("duplicate id")
	ErrAlreadyMember      = errors.New("already a member")
	ErrAlreadyAssigned    = errors.New("group already assigned")
	ErrCapacityExceeded   = errors.New("capacity exceeded")
	ErrOwnerCannotLeave   = errors.New("owner cannot leave the company")
	ErrValidation         = errors.New("validation failed")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotAuthenticated   = errors.New("not authenticated")
)
