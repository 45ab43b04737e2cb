package postgres

import (
	"database/sql"

	"dumpster-backoffice/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.AssetRepository
	repository.BookingRepository
	repository.CustomerRepository
	repository.InvoiceRepository
	repository.PaymentRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                 db,
		AssetRepository:    NewAssetRepository(db),
		BookingRepository:  NewBookingRepository(db),
		CustomerRepository: NewCustomerRepository(db),
		InvoiceRepository:  NewInvoiceRepository(db),
		PaymentRepository:  NewPaymentRepository(db),
	}
}

// DB exposes the pool for health checks.
func (s *Store) DB() *sql.DB {
	return s.db
}
