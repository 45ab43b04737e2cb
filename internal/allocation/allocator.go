// Package allocation splits one payment submission across invoices and
// separates any amount above an invoice's balance into an overpaid portion.
package allocation

import (
	"fmt"

	"dumpster-backoffice/internal/domain"
)

// Line is one invoice in a payment batch with the amount the user wants to apply to it.
type Line struct {
	Invoice       domain.Invoice
	ProposedCents int64
}

type Batch struct {
	Lines []Line
	// ExternalReference is the bank/cheque reference shared by every payment in the batch.
	ExternalReference string
}

type Split struct {
	InvoiceID     string `json:"invoice_id"`
	InvoiceNumber string `json:"invoice_number"`
	BalanceCents  int64  `json:"balance_cents"`
	ProposedCents int64  `json:"proposed_cents"`
	RegularCents  int64  `json:"regular_cents"`
	OverpaidCents int64  `json:"overpaid_cents"`
}

type Allocation struct {
	Splits             []Split `json:"splits"`
	TotalRegularCents  int64   `json:"total_regular_cents"`
	TotalOverpaidCents int64   `json:"total_overpaid_cents"`
	HasAnyOverpayment  bool    `json:"has_any_overpayment"`
	ExternalReference  string  `json:"external_reference"`
}

// Validate checks the batch preconditions: at least one line, every amount
// positive, and a shared external reference when more than one invoice is paid.
func Validate(b Batch) error {
	if len(b.Lines) == 0 {
		return domain.NewValidationError("invoices", "select at least one invoice")
	}
	for _, l := range b.Lines {
		if l.ProposedCents <= 0 {
			return domain.NewValidationError("amount",
				"amount for invoice %s must be greater than zero", invoiceLabel(l.Invoice))
		}
	}
	if len(b.Lines) > 1 && b.ExternalReference == "" {
		return domain.NewValidationError("payment_reference",
			"a payment reference is required when paying several invoices")
	}
	return nil
}

// Allocate validates b and computes the regular/overpaid split of every line.
// Lines repeating an invoice draw down the balance left by the earlier ones.
func Allocate(b Batch) (Allocation, error) {
	if err := Validate(b); err != nil {
		return Allocation{}, err
	}

	remaining := make(map[string]int64, len(b.Lines))
	a := Allocation{
		Splits:            make([]Split, 0, len(b.Lines)),
		ExternalReference: b.ExternalReference,
	}

	for _, l := range b.Lines {
		balance, seen := remaining[l.Invoice.ID]
		if !seen {
			balance = l.Invoice.CurrentBalanceCents
		}
		payable := balance
		if payable < 0 {
			payable = 0
		}

		s := Split{
			InvoiceID:     l.Invoice.ID,
			InvoiceNumber: l.Invoice.Number,
			BalanceCents:  balance,
			ProposedCents: l.ProposedCents,
			RegularCents:  min(l.ProposedCents, payable),
		}
		s.OverpaidCents = l.ProposedCents - s.RegularCents
		remaining[l.Invoice.ID] = balance - s.RegularCents

		a.Splits = append(a.Splits, s)
		a.TotalRegularCents += s.RegularCents
		a.TotalOverpaidCents += s.OverpaidCents
	}
	a.HasAnyOverpayment = a.TotalOverpaidCents > 0
	return a, nil
}

// ConfirmationError carries the computed split the user has to approve.
type ConfirmationError struct {
	Allocation Allocation
}

func (e *ConfirmationError) Error() string {
	return fmt.Sprintf("%s: %d cents above the outstanding balance",
		domain.ErrConfirmationRequired, e.Allocation.TotalOverpaidCents)
}

func (e *ConfirmationError) Unwrap() error { return domain.ErrConfirmationRequired }

func (e *ConfirmationError) Expected() bool { return true }

// RequireConfirmation refuses to let an overpaying allocation through unconfirmed.
func (a Allocation) RequireConfirmation(confirmed bool) error {
	if a.HasAnyOverpayment && !confirmed {
		return &ConfirmationError{Allocation: a}
	}
	return nil
}

// RecordCount is the number of payment records Records will produce.
func (a Allocation) RecordCount() int {
	n := 0
	for _, s := range a.Splits {
		if s.RegularCents > 0 {
			n++
		}
		if s.OverpaidCents > 0 {
			n++
		}
	}
	return n
}

// Records builds the payments to persist: one active payment for each regular
// portion and a separate overpaid payment for each overpaid portion.
// references must hold RecordCount distinct internal references, used in order.
func (a Allocation) Records(paidOn domain.Date, references []string) ([]domain.Payment, error) {
	if len(references) != a.RecordCount() {
		return nil, fmt.Errorf("need %d references, got %d", a.RecordCount(), len(references))
	}

	out := make([]domain.Payment, 0, len(references))
	next := 0
	emit := func(s Split, amount int64, status domain.PaymentStatus) {
		out = append(out, domain.Payment{
			InvoiceID:         s.InvoiceID,
			AmountCents:       amount,
			Status:            status,
			InternalReference: references[next],
			PaymentReference:  a.ExternalReference,
			PaidOn:            paidOn,
		})
		next++
	}

	for _, s := range a.Splits {
		if s.RegularCents > 0 {
			emit(s, s.RegularCents, domain.PaymentStatusActive)
		}
		if s.OverpaidCents > 0 {
			emit(s, s.OverpaidCents, domain.PaymentStatusOverpaid)
		}
	}
	return out, nil
}

func invoiceLabel(inv domain.Invoice) string {
	if inv.Number != "" {
		return inv.Number
	}
	return inv.ID
}
