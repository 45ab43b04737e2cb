package domain

import "time"

type Invoice struct {
	ID                  string    `json:"id"`
	Number              string    `json:"number"`
	CustomerID          string    `json:"customer_id"`
	BookingID           *string   `json:"booking_id,omitempty"`
	IssueDate           Date      `json:"issue_date"`
	TotalCents          int64     `json:"total_cents"`
	CurrentBalanceCents int64     `json:"current_balance_cents"`
	CreatedOn           time.Time `json:"created_on"`
}

// BalanceFrom computes Total minus every payment that counts toward the balance.
// The result may be negative; no floor is applied.
func (inv Invoice) BalanceFrom(payments []Payment) int64 {
	balance := inv.TotalCents
	for _, p := range payments {
		if p.InvoiceID != inv.ID {
			continue
		}
		if p.Status.CountsTowardBalance() {
			balance -= p.AmountCents
		}
	}
	return balance
}
