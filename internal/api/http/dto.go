package http

import (
	"time"

	"dumpster-backoffice/internal/allocation"
	"dumpster-backoffice/internal/domain"
	"dumpster-backoffice/internal/utils"
)

type bookingRequest struct {
	AssetID       string           `json:"asset_id"`
	CustomerID    string           `json:"customer_id"`
	PlacementDate domain.Date      `json:"placement_date"`
	PickupDate    domain.RentalEnd `json:"pickup_date"`
	Address       string           `json:"address"`
	Notes         string           `json:"notes"`
}

func (r bookingRequest) toBooking(id string) *domain.Booking {
	return &domain.Booking{
		ID:            id,
		AssetID:       r.AssetID,
		CustomerID:    r.CustomerID,
		PlacementDate: r.PlacementDate,
		End:           r.PickupDate,
		Address:       r.Address,
		Notes:         r.Notes,
	}
}

type pickupRequest struct {
	PickupDate domain.Date `json:"pickup_date"`
}

type customerRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// Amounts cross the API as decimal strings ("50.00") and become cents here.
type paymentLineRequest struct {
	InvoiceID string `json:"invoice_id"`
	Amount    string `json:"amount"`
}

type paymentRequest struct {
	Lines            []paymentLineRequest `json:"lines"`
	PaymentReference string               `json:"payment_reference"`
	PaidOn           domain.Date          `json:"paid_on"`
	Confirmed        bool                 `json:"confirmed"`
}

type splitResponse struct {
	InvoiceID     string `json:"invoice_id"`
	InvoiceNumber string `json:"invoice_number"`
	Balance       string `json:"balance"`
	Proposed      string `json:"proposed"`
	Regular       string `json:"regular"`
	Overpaid      string `json:"overpaid"`
}

type allocationResponse struct {
	Splits            []splitResponse `json:"splits"`
	TotalRegular      string          `json:"total_regular"`
	TotalOverpaid     string          `json:"total_overpaid"`
	HasAnyOverpayment bool            `json:"has_any_overpayment"`
	PaymentReference  string          `json:"payment_reference"`
}

func allocationResponseFrom(a allocation.Allocation) allocationResponse {
	out := allocationResponse{
		Splits:            make([]splitResponse, 0, len(a.Splits)),
		TotalRegular:      utils.FormatCents(a.TotalRegularCents),
		TotalOverpaid:     utils.FormatCents(a.TotalOverpaidCents),
		HasAnyOverpayment: a.HasAnyOverpayment,
		PaymentReference:  a.ExternalReference,
	}
	for _, s := range a.Splits {
		out.Splits = append(out.Splits, splitResponse{
			InvoiceID:     s.InvoiceID,
			InvoiceNumber: s.InvoiceNumber,
			Balance:       utils.FormatCents(s.BalanceCents),
			Proposed:      utils.FormatCents(s.ProposedCents),
			Regular:       utils.FormatCents(s.RegularCents),
			Overpaid:      utils.FormatCents(s.OverpaidCents),
		})
	}
	return out
}

type paymentResponse struct {
	ID                string     `json:"id"`
	InvoiceID         string     `json:"invoice_id"`
	Amount            string     `json:"amount"`
	Status            string     `json:"status"`
	InternalReference string     `json:"internal_reference"`
	PaymentReference  string     `json:"payment_reference"`
	PaidOn            string     `json:"paid_on"`
	CreatedOn         time.Time  `json:"created_on"`
	CancelledOn       *time.Time `json:"cancelled_on,omitempty"`
}

func paymentResponseFrom(p domain.Payment) paymentResponse {
	return paymentResponse{
		ID:                p.ID,
		InvoiceID:         p.InvoiceID,
		Amount:            utils.FormatCents(p.AmountCents),
		Status:            string(p.Status),
		InternalReference: p.InternalReference,
		PaymentReference:  p.PaymentReference,
		PaidOn:            p.PaidOn.String(),
		CreatedOn:         p.CreatedOn,
		CancelledOn:       p.CancelledOn,
	}
}

type submitResponse struct {
	Allocation allocationResponse `json:"allocation"`
	Payments   []paymentResponse  `json:"payments"`
}
