package domain

import (
	"fmt"
	"time"
)

type PaymentStatus string

const (
	PaymentStatusActive    PaymentStatus = "active"
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCancelled PaymentStatus = "cancelled"
	PaymentStatusOverpaid  PaymentStatus = "overpaid"
)

// PaymentStatuses lists every status in display order.
var PaymentStatuses = []PaymentStatus{
	PaymentStatusActive,
	PaymentStatusPending,
	PaymentStatusCancelled,
	PaymentStatusOverpaid,
}

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	for _, st := range PaymentStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown payment status %q", s)
}

// CountsTowardBalance reports whether a payment in this status reduces its invoice balance.
// Overpaid records hold the excess above the balance and are tracked as credit.
func (s PaymentStatus) CountsTowardBalance() bool {
	switch s {
	case PaymentStatusActive, PaymentStatusPending:
		return true
	case PaymentStatusCancelled, PaymentStatusOverpaid:
		return false
	default:
		panic(fmt.Sprintf("unhandled payment status %q", string(s)))
	}
}

// Cancellable reports whether a payment may move to cancelled from this status.
func (s PaymentStatus) Cancellable() bool {
	switch s {
	case PaymentStatusActive, PaymentStatusPending, PaymentStatusOverpaid:
		return true
	case PaymentStatusCancelled:
		return false
	default:
		panic(fmt.Sprintf("unhandled payment status %q", string(s)))
	}
}

type Payment struct {
	ID                string        `json:"id"`
	InvoiceID         string        `json:"invoice_id"`
	AmountCents       int64         `json:"amount_cents"`
	Status            PaymentStatus `json:"status"`
	InternalReference string        `json:"internal_reference"`
	PaymentReference  string        `json:"payment_reference"`
	PaidOn            Date          `json:"paid_on"`
	CreatedOn         time.Time     `json:"created_on"`
	CancelledOn       *time.Time    `json:"cancelled_on,omitempty"`
}
