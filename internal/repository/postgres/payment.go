package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"dumpster-backoffice/internal/domain"
	"dumpster-backoffice/internal/logger"
	"dumpster-backoffice/internal/repository"
)

type paymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) repository.PaymentRepository {
	return &paymentRepository{db: db}
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const paymentColumns = `id, invoice_id, amount_cents, status, internal_reference, payment_reference, paid_on, created_on, cancelled_on`

func scanPayment(row interface{ Scan(...any) error }) (domain.Payment, error) {
	var p domain.Payment
	var cancelledOn sql.NullTime
	err := row.Scan(&p.ID, &p.InvoiceID, &p.AmountCents, &p.Status, &p.InternalReference, &p.PaymentReference, &p.PaidOn, &p.CreatedOn, &cancelledOn)
	if err != nil {
		return p, err
	}
	if cancelledOn.Valid {
		p.CancelledOn = &cancelledOn.Time
	}
	return p, nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	logger.DatabaseCall("payments.GetByID", query, "id", id)
	p, err := scanPayment(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError("get payment", err)
	}
	return &p, nil
}

func (r *paymentRepository) ListByInvoice(ctx context.Context, invoiceID string) ([]domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE invoice_id = $1 ORDER BY created_on, internal_reference`
	logger.DatabaseCall("payments.ListByInvoice", query, "invoice_id", invoiceID)
	return r.list(ctx, query, invoiceID)
}

func (r *paymentRepository) ListAll(ctx context.Context) ([]domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments ORDER BY created_on, internal_reference`
	logger.DatabaseCall("payments.ListAll", query)
	return r.list(ctx, query)
}

func (r *paymentRepository) list(ctx context.Context, query string, args ...any) ([]domain.Payment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError("list payments", err)
	}
	defer rows.Close()

	payments := []domain.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, mapError("scan payment", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list payments", err)
	}
	return payments, nil
}

func (r *paymentRepository) ListReferences(ctx context.Context, scopeKey string) ([]string, error) {
	return listReferences(ctx, r.db, scopeKey)
}

func listReferences(ctx context.Context, q querier, scopeKey string) ([]string, error) {
	query := `SELECT internal_reference FROM payments WHERE internal_reference LIKE $1 ORDER BY internal_reference`
	logger.DatabaseCall("payments.ListReferences", query, "scope", scopeKey)
	rows, err := q.QueryContext(ctx, query, likePrefix(scopeKey))
	if err != nil {
		return nil, mapError("list references", err)
	}
	defer rows.Close()

	refs := []string{}
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return nil, mapError("scan reference", err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list references", err)
	}
	return refs, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePrefix(prefix string) string {
	return likeEscaper.Replace(prefix) + "%"
}

func (r *paymentRepository) CreateBatch(ctx context.Context, scopeKey string, build repository.BuildPayments) ([]domain.Payment, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, mapError("begin payment batch", err)
	}
	defer tx.Rollback()

	// Serializes allocators working on the same reference scope.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, scopeKey); err != nil {
		return nil, mapError("lock reference scope", err)
	}

	refs, err := listReferences(ctx, tx, scopeKey)
	if err != nil {
		return nil, err
	}
	payments, err := build(refs)
	if err != nil {
		return nil, err
	}

	query := `INSERT INTO payments (id, invoice_id, amount_cents, status, internal_reference, payment_reference, paid_on, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	now := time.Now().UTC()
	var touched []string
	seen := map[string]bool{}
	for i := range payments {
		p := &payments[i]
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		p.CreatedOn = now
		logger.DatabaseCall("payments.CreateBatch", query, "invoice_id", p.InvoiceID, "reference", p.InternalReference)
		if _, err := tx.ExecContext(ctx, query, p.ID, p.InvoiceID, p.AmountCents, p.Status, p.InternalReference, p.PaymentReference, p.PaidOn, now); err != nil {
			logger.DatabaseResult("payments.CreateBatch", 0, err)
			return nil, mapError("insert payment", err)
		}
		if !seen[p.InvoiceID] {
			seen[p.InvoiceID] = true
			touched = append(touched, p.InvoiceID)
		}
	}

	for _, invoiceID := range touched {
		if err := recomputeBalance(ctx, tx, invoiceID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, mapError("commit payment batch", err)
	}
	logger.DatabaseResult("payments.CreateBatch", int64(len(payments)), nil)
	return payments, nil
}

func (r *paymentRepository) Cancel(ctx context.Context, id string) (*domain.Payment, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, mapError("begin cancel", err)
	}
	defer tx.Rollback()

	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1 FOR UPDATE`
	logger.DatabaseCall("payments.Cancel", query, "id", id)
	p, err := scanPayment(tx.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError("get payment", err)
	}
	if !p.Status.Cancellable() {
		return nil, domain.NewValidationError("status", "payment %s is already %s", p.InternalReference, p.Status)
	}

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx, `UPDATE payments SET status = $1, cancelled_on = $2 WHERE id = $3`, domain.PaymentStatusCancelled, now, id); err != nil {
		return nil, mapError("cancel payment", err)
	}
	if err := recomputeBalance(ctx, tx, p.InvoiceID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, mapError("commit cancel", err)
	}

	p.Status = domain.PaymentStatusCancelled
	p.CancelledOn = &now
	return &p, nil
}

// recomputeBalance rewrites the cached balance from the payments table.
func recomputeBalance(ctx context.Context, q querier, invoiceID string) error {
	query := balanceRecompute
	logger.DatabaseCall("invoices.RecomputeBalance", query, "invoice_id", invoiceID)
	res, err := q.ExecContext(ctx, query, invoiceID, balanceStatuses())
	if err != nil {
		return mapError("recompute balance", err)
	}
	return requireRow(res, "recompute balance")
}
