package repository

import (
	"context"

	"dumpster-backoffice/internal/domain"
)

// Every List method returns the complete, de-duplicated set; there is no pagination.

type AssetRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Asset, error)
	List(ctx context.Context) ([]domain.Asset, error)
}

type BookingRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	List(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error)
	// Create and Update re-check the asset's stored bookings inside the write
	// transaction and return domain.ErrBookingConflict on an overlap.
	Create(ctx context.Context, booking *domain.Booking) error
	Update(ctx context.Context, booking *domain.Booking) error
	Delete(ctx context.Context, id string) error
}

type CustomerRepository interface {
	List(ctx context.Context) ([]domain.Customer, error)
	Create(ctx context.Context, customer *domain.Customer) error
	Update(ctx context.Context, customer *domain.Customer) error
}

type InvoiceRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Invoice, error)
	List(ctx context.Context) ([]domain.Invoice, error)
	CountByBooking(ctx context.Context, bookingID string) (int, error)
	// RecomputeBalance rewrites the cached balance from the payments table in one statement and returns it.
	RecomputeBalance(ctx context.Context, id string) (int64, error)
}

// BuildPayments receives every reference already issued in a scope (cancelled
// ones included) and returns the payments to insert.
type BuildPayments func(existingReferences []string) ([]domain.Payment, error)

type PaymentRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Payment, error)
	ListByInvoice(ctx context.Context, invoiceID string) ([]domain.Payment, error)
	ListAll(ctx context.Context) ([]domain.Payment, error)
	// ListReferences returns every internal reference starting with scopeKey, whatever its status.
	ListReferences(ctx context.Context, scopeKey string) ([]string, error)
	// CreateBatch locks the reference scope, hands its issued references to build,
	// inserts what build returns and recomputes the touched invoice balances, all in one transaction.
	// A duplicate internal reference surfaces as domain.ErrReferenceCollision.
	CreateBatch(ctx context.Context, scopeKey string, build BuildPayments) ([]domain.Payment, error)
	// Cancel soft-cancels a payment and recomputes its invoice balance.
	Cancel(ctx context.Context, id string) (*domain.Payment, error)
}
