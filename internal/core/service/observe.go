package service

import (
	"errors"

	"github.com/fincatec/domain-store/internal/core/domain"
	"github.com/fincatec/domain-store/internal/metrics"
)

// resultLabels maps domain errors to the "result" label of OperationsTotal.
var resultLabels = []struct {
	err   error
	label string
}{
	{domain.ErrNoCompany, "no_company"},
	{domain.ErrNotFound, "not_found"},
	{domain.ErrDuplicateID, "duplicate_id"},
	{domain.ErrAlreadyMember, "already_member"},
	{domain.ErrAlreadyAssigned, "already_assigned"},
	{domain.ErrCapacityExceeded, "capacity_exceeded"},
	{domain.ErrOwnerCannotLeave, "owner_cannot_leave"},
	{domain.ErrValidation, "validation"},
	{domain.ErrInvalidTransition, "invalid_transition"},
	{domain.ErrUserExists, "user_exists"},
	{domain.ErrInvalidCredentials, "invalid_credentials"},
	{domain.ErrNotAuthenticated, "not_authenticated"},
}

func observe(operation string, err error) {
	metrics.OperationsTotal.WithLabelValues(operation, resultLabel(err)).Inc()
}

func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	for _, rl := range resultLabels {
		if errors.Is(err, rl.err) {
			return rl.label
		}
	}
	return "error"
}
