package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"dumpster-backoffice/internal/domain"
	"dumpster-backoffice/internal/logger"
	"dumpster-backoffice/internal/repository"
)

type bookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) repository.BookingRepository {
	return &bookingRepository{db: db}
}

const bookingColumns = `id, asset_id, customer_id, placement_date, pickup_date, address, notes, created_on, updated_on`

func scanBooking(row interface{ Scan(...any) error }) (domain.Booking, error) {
	var b domain.Booking
	var pickup domain.Date
	err := row.Scan(&b.ID, &b.AssetID, &b.CustomerID, &b.PlacementDate, &pickup, &b.Address, &b.Notes, &b.CreatedOn, &b.UpdatedOn)
	if err != nil {
		return b, err
	}
	b.End = domain.EndFromPointer(&pickup)
	return b, nil
}

func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	query := `INSERT INTO bookings (id, asset_id, customer_id, placement_date, pickup_date, address, notes, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	err := r.write(ctx, b, "create booking", func(tx *sql.Tx) error {
		logger.DatabaseCall("bookings.Create", query, "asset_id", b.AssetID, "placement_date", b.PlacementDate)
		_, err := tx.ExecContext(ctx, query, b.ID, b.AssetID, b.CustomerID, b.PlacementDate, b.End.Pointer(), b.Address, b.Notes, now, now)
		if err != nil {
			logger.DatabaseResult("bookings.Create", 0, err)
			return mapError("create booking", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	b.CreatedOn, b.UpdatedOn = now, now
	return nil
}

// write runs stmt after checking b against the other bookings of its asset.
// The asset lock serializes writers, so the check and the write see the same bookings.
func (r *bookingRepository) write(ctx context.Context, b *domain.Booking, op string, stmt func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return mapError("begin "+op, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, "bookings:"+b.AssetID); err != nil {
		return mapError("lock asset bookings", err)
	}
	if err := checkOverlap(ctx, tx, b, op); err != nil {
		return err
	}
	if err := stmt(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return mapError("commit "+op, err)
	}
	return nil
}

// checkOverlap also covers same-day bookings, whose empty daterange the exclusion constraint cannot see.
func checkOverlap(ctx context.Context, tx *sql.Tx, b *domain.Booking, op string) error {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE asset_id = $1 AND id <> $2`
	logger.DatabaseCall("bookings.CheckOverlap", query, "asset_id", b.AssetID, "id", b.ID)
	rows, err := tx.QueryContext(ctx, query, b.AssetID, b.ID)
	if err != nil {
		return mapError("list asset bookings", err)
	}
	defer rows.Close()

	want := b.Interval()
	for rows.Next() {
		other, err := scanBooking(rows)
		if err != nil {
			return mapError("scan booking", err)
		}
		if domain.Overlaps(want, other.Interval()) {
			return fmt.Errorf("%s: %w: overlaps booking %s (%s to %s)",
				op, domain.ErrBookingConflict, other.ID, other.PlacementDate, other.End)
		}
	}
	if err := rows.Err(); err != nil {
		return mapError("list asset bookings", err)
	}
	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	logger.DatabaseCall("bookings.GetByID", query, "id", id)
	b, err := scanBooking(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError("get booking", err)
	}
	return &b, nil
}

func (r *bookingRepository) Update(ctx context.Context, b *domain.Booking) error {
	now := time.Now().UTC()
	query := `UPDATE bookings SET asset_id=$1, customer_id=$2, placement_date=$3, pickup_date=$4, address=$5, notes=$6, updated_on=$7 WHERE id=$8`
	err := r.write(ctx, b, "update booking", func(tx *sql.Tx) error {
		logger.DatabaseCall("bookings.Update", query, "id", b.ID)
		res, err := tx.ExecContext(ctx, query, b.AssetID, b.CustomerID, b.PlacementDate, b.End.Pointer(), b.Address, b.Notes, now, b.ID)
		if err != nil {
			logger.DatabaseResult("bookings.Update", 0, err)
			return mapError("update booking", err)
		}
		return requireRow(res, "update booking")
	})
	if err != nil {
		return err
	}
	b.UpdatedOn = now
	return nil
}

func (r *bookingRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM bookings WHERE id = $1`
	logger.DatabaseCall("bookings.Delete", query, "id", id)
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return mapError("delete booking", err)
	}
	return requireRow(res, "delete booking")
}

func (r *bookingRepository) List(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE 1=1`
	var args []interface{}
	argIdx := 1
	if filter.AssetID != "" {
		query += fmt.Sprintf(" AND asset_id = $%d", argIdx)
		args = append(args, filter.AssetID)
		argIdx++
	}
	if filter.CustomerID != "" {
		query += fmt.Sprintf(" AND customer_id = $%d", argIdx)
		args = append(args, filter.CustomerID)
		argIdx++
	}
	if filter.ActiveOn != nil {
		query += fmt.Sprintf(" AND (pickup_date IS NULL OR pickup_date >= $%d)", argIdx)
		args = append(args, *filter.ActiveOn)
	}
	query += " ORDER BY asset_id, placement_date"

	logger.DatabaseCall("bookings.List", query, "args", len(args))
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError("list bookings", err)
	}
	defer rows.Close()

	bookings := []domain.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, mapError("scan booking", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list bookings", err)
	}
	logger.DatabaseResult("bookings.List", int64(len(bookings)), nil)
	return bookings, nil
}

func requireRow(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return mapError(op, err)
	}
	if n == 0 {
		return mapError(op, sql.ErrNoRows)
	}
	return nil
}
