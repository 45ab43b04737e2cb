package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"dumpster-backoffice/internal/domain"
)

const (
	codeUniqueViolation    = "23505"
	codeExclusionViolation = "23P01"

	constraintInternalReference = "payments_internal_reference_key"
	constraintBookingOverlap    = "bookings_no_overlap"
)

// mapError translates driver errors into domain errors, keeping the original wrapped.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code == codeUniqueViolation && pqErr.Constraint == constraintInternalReference:
			return fmt.Errorf("%s: %w: %v", op, domain.ErrReferenceCollision, pqErr.Detail)
		case pqErr.Code == codeExclusionViolation && pqErr.Constraint == constraintBookingOverlap:
			return fmt.Errorf("%s: %w", op, domain.ErrBookingConflict)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// balanceStatuses lists the payment statuses that reduce an invoice balance.
func balanceStatuses() pq.StringArray {
	var out pq.StringArray
	for _, st := range domain.PaymentStatuses {
		if st.CountsTowardBalance() {
			out = append(out, string(st))
		}
	}
	return out
}
