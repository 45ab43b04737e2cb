package postgres

import (
	"context"
	"database/sql"

	"dumpster-backoffice/internal/domain"
	"dumpster-backoffice/internal/logger"
	"dumpster-backoffice/internal/repository"
)

type invoiceRepository struct {
	db *sql.DB
}

func NewInvoiceRepository(db *sql.DB) repository.InvoiceRepository {
	return &invoiceRepository{db: db}
}

const invoiceColumns = `id, number, customer_id, booking_id, issue_date, total_cents, current_balance_cents, created_on`

func scanInvoice(row interface{ Scan(...any) error }) (domain.Invoice, error) {
	var inv domain.Invoice
	var bookingID sql.NullString
	err := row.Scan(&inv.ID, &inv.Number, &inv.CustomerID, &bookingID, &inv.IssueDate, &inv.TotalCents, &inv.CurrentBalanceCents, &inv.CreatedOn)
	if err != nil {
		return inv, err
	}
	if bookingID.Valid {
		inv.BookingID = &bookingID.String
	}
	return inv, nil
}

func (r *invoiceRepository) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	logger.DatabaseCall("invoices.GetByID", query, "id", id)
	inv, err := scanInvoice(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError("get invoice", err)
	}
	return &inv, nil
}

func (r *invoiceRepository) List(ctx context.Context) ([]domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices ORDER BY issue_date, number`
	logger.DatabaseCall("invoices.List", query)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, mapError("list invoices", err)
	}
	defer rows.Close()

	invoices := []domain.Invoice{}
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, mapError("scan invoice", err)
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list invoices", err)
	}
	logger.DatabaseResult("invoices.List", int64(len(invoices)), nil)
	return invoices, nil
}

func (r *invoiceRepository) CountByBooking(ctx context.Context, bookingID string) (int, error) {
	query := `SELECT COUNT(*) FROM invoices WHERE booking_id = $1`
	logger.DatabaseCall("invoices.CountByBooking", query, "booking_id", bookingID)
	var n int
	if err := r.db.QueryRowContext(ctx, query, bookingID).Scan(&n); err != nil {
		return 0, mapError("count invoices", err)
	}
	return n, nil
}

// balanceRecompute sets an invoice's cached balance from its payments; $1 is the invoice id
// and $2 the statuses that count toward the balance.
const balanceRecompute = `UPDATE invoices SET current_balance_cents = total_cents - COALESCE(
	              (SELECT SUM(amount_cents) FROM payments WHERE invoice_id = $1 AND status = ANY($2)), 0)
	          WHERE id = $1`

func (r *invoiceRepository) RecomputeBalance(ctx context.Context, id string) (int64, error) {
	query := balanceRecompute + ` RETURNING current_balance_cents`
	logger.DatabaseCall("invoices.RecomputeBalance", query, "id", id)
	var balance int64
	if err := r.db.QueryRowContext(ctx, query, id, balanceStatuses()).Scan(&balance); err != nil {
		return 0, mapError("recompute invoice balance", err)
	}
	return balance, nil
}
