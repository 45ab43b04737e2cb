package jobs

import (
	"context"
	"sort"

	"dumpster-backoffice/internal/availability"
	"dumpster-backoffice/internal/domain"
	"dumpster-backoffice/internal/logger"
)

// Digest lists the yard moves scheduled for one day.
type Digest struct {
	Date       domain.Date
	Pickups    []string
	Placements []string
	// Redeploys are assets picked up and placed again on the same day.
	Redeploys []string
}

// BuildDigest collects asset IDs with a pickup or a placement on day.
func BuildDigest(day domain.Date, bookings []domain.Booking) Digest {
	picked := map[string]bool{}
	placed := map[string]bool{}
	for _, b := range bookings {
		if pickup, ok := b.End.PickupDate(); ok && pickup.Equal(day) {
			picked[b.AssetID] = true
		}
		if b.PlacementDate.Equal(day) {
			placed[b.AssetID] = true
		}
	}

	dg := Digest{Date: day}
	for id := range picked {
		dg.Pickups = append(dg.Pickups, id)
		if placed[id] {
			dg.Redeploys = append(dg.Redeploys, id)
		}
	}
	for id := range placed {
		dg.Placements = append(dg.Placements, id)
	}
	sort.Strings(dg.Pickups)
	sort.Strings(dg.Placements)
	sort.Strings(dg.Redeploys)
	return dg
}

// TransitionDayDigest logs today's pickups, placements and same-day redeploys.
func (jr *JobRunner) TransitionDayDigest() {
	jr.runWithRecovery("TransitionDayDigest", func() {
		ctx := context.Background()
		today := domain.DateOf(jr.clock.Now())

		assets, err := jr.repos.Assets.List(ctx)
		if err != nil {
			logger.Error("Failed to list assets", "error", err)
			return
		}
		bookings, err := jr.repos.Bookings.List(ctx, domain.BookingFilter{ActiveOn: &today})
		if err != nil {
			logger.Error("Failed to list bookings", "error", err)
			return
		}

		dg := BuildDigest(today, bookings)
		res := availability.Resolve(availability.Query{Date: today}, assets, bookings)
		logger.Info("Transition day digest",
			"date", today,
			"pickups", dg.Pickups,
			"placements", dg.Placements,
			"redeploys", dg.Redeploys,
			"available", len(res.Available),
			"upcoming", len(res.Upcoming),
			"unavailable", len(res.Unavailable))
	})
}
