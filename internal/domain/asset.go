package domain

import "time"

type AssetStatus string

const (
	AssetStatusAvailable   AssetStatus = "AVAILABLE"
	AssetStatusRented      AssetStatus = "RENTED"
	AssetStatusMaintenance AssetStatus = "MAINTENANCE"
)

func (s AssetStatus) Valid() bool {
	switch s {
	case AssetStatusAvailable, AssetStatusRented, AssetStatusMaintenance:
		return true
	}
	return false
}

// Asset is a physical dumpster. Status is set by staff and is independent of bookings.
type Asset struct {
	ID               string      `json:"id"`
	Label            string      `json:"label"`
	SizeYards        int32       `json:"size_yards"`
	Status           AssetStatus `json:"status"`
	DailyRateCents   int64       `json:"daily_rate_cents"`
	WeeklyRateCents  int64       `json:"weekly_rate_cents"`
	MonthlyRateCents int64       `json:"monthly_rate_cents"`
	CreatedOn        time.Time   `json:"created_on"`
}
