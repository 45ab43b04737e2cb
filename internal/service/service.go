package service

import (
	"context"
	"time"

	"dumpster-backoffice/internal/allocation"
	"dumpster-backoffice/internal/availability"
	"dumpster-backoffice/internal/domain"
	"dumpster-backoffice/internal/reference"
	"dumpster-backoffice/internal/utils"
)

// Clock supplies "today" for reference scopes and default payment dates.
type Clock interface {
	Now() time.Time
}

type RentalService interface {
	CheckAvailability(ctx context.Context, q availability.Query) (*availability.Result, error)
	GetBooking(ctx context.Context, id string) (*domain.Booking, error)
	CreateBooking(ctx context.Context, booking *domain.Booking) error
	UpdateBooking(ctx context.Context, booking *domain.Booking) error
	MarkPickedUp(ctx context.Context, bookingID string, pickup domain.Date) (*domain.Booking, error)
	DeleteBooking(ctx context.Context, bookingID string) error
	QuoteRental(ctx context.Context, bookingID string, asOf domain.Date) (*utils.RentalQuote, error)
}

type CustomerService interface {
	ListCustomers(ctx context.Context) ([]domain.Customer, error)
	CreateCustomer(ctx context.Context, customer *domain.Customer) error
	UpdateCustomer(ctx context.Context, customer *domain.Customer) error
}

// PaymentLine asks for AmountCents to be applied to one invoice.
type PaymentLine struct {
	InvoiceID   string
	AmountCents int64
}

type PaymentRequest struct {
	Lines             []PaymentLine
	ExternalReference string
	// PaidOn defaults to today when zero.
	PaidOn    domain.Date
	Confirmed bool
}

type PaymentResult struct {
	Allocation allocation.Allocation `json:"allocation"`
	Payments   []domain.Payment      `json:"payments"`
}

type PaymentService interface {
	PreviewPayment(ctx context.Context, req PaymentRequest) (*allocation.Allocation, error)
	SubmitPayment(ctx context.Context, req PaymentRequest) (*PaymentResult, error)
	CancelPayment(ctx context.Context, paymentID string) (*domain.Payment, error)
	NextReference(ctx context.Context, policy reference.Policy, day domain.Date) (string, error)
}
