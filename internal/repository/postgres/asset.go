package postgres

import (
	"context"
	"database/sql"

	"dumpster-backoffice/internal/domain"
	"dumpster-backoffice/internal/logger"
	"dumpster-backoffice/internal/repository"
)

type assetRepository struct {
	db *sql.DB
}

func NewAssetRepository(db *sql.DB) repository.AssetRepository {
	return &assetRepository{db: db}
}

const assetColumns = `id, label, size_yards, status, daily_rate_cents, weekly_rate_cents, monthly_rate_cents, created_on`

func scanAsset(row interface{ Scan(...any) error }) (domain.Asset, error) {
	var a domain.Asset
	err := row.Scan(&a.ID, &a.Label, &a.SizeYards, &a.Status, &a.DailyRateCents, &a.WeeklyRateCents, &a.MonthlyRateCents, &a.CreatedOn)
	return a, err
}

func (r *assetRepository) GetByID(ctx context.Context, id string) (*domain.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE id = $1`
	logger.DatabaseCall("assets.GetByID", query, "id", id)
	a, err := scanAsset(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError("get asset", err)
	}
	return &a, nil
}

func (r *assetRepository) List(ctx context.Context) ([]domain.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets ORDER BY id`
	logger.DatabaseCall("assets.List", query)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, mapError("list assets", err)
	}
	defer rows.Close()

	assets := []domain.Asset{}
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, mapError("scan asset", err)
		}
		assets = append(assets, a)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list assets", err)
	}
	logger.DatabaseResult("assets.List", int64(len(assets)), nil)
	return assets, nil
}
