package availability

import (
	"dumpster-backoffice/internal/domain"
)

// Proposal is a booking about to be created or edited.
type Proposal struct {
	AssetID       string
	PlacementDate domain.Date
	End           domain.RentalEnd
	// Editing holds the stored booking when this is an edit; nil on create.
	Editing *domain.Booking
}

func (p Proposal) unchanged() bool {
	e := p.Editing
	return e.AssetID == p.AssetID &&
		e.PlacementDate.Equal(p.PlacementDate) &&
		e.End.Equal(p.End)
}

// Validate decides whether p can be admitted next to the existing bookings.
// A rejection is a *domain.ValidationError; nil means admissible.
func Validate(p Proposal, assets []domain.Asset, bookings []domain.Booking) error {
	if p.Editing != nil {
		if p.unchanged() {
			return nil
		}
		// The asset is already assigned to this booking, so date edits are not re-checked here.
		if p.Editing.AssetID == p.AssetID {
			return nil
		}
	}

	snapshot := bookings
	if p.Editing != nil {
		snapshot = without(bookings, p.Editing.ID)
	}

	res := Resolve(Query{Date: p.PlacementDate, End: p.End}, assets, snapshot)
	available, upcoming, unavailable := res.Find(p.AssetID)

	switch {
	case upcoming != nil:
		return domain.NewValidationError("asset_id",
			"dumpster %s is rented on %s and only frees up on %s",
			p.AssetID, p.PlacementDate, upcoming.AvailableAfter)
	case unavailable != nil && unavailable.Reason == ReasonMaintenance:
		return domain.NewValidationError("asset_id", "dumpster %s is under maintenance", p.AssetID)
	case unavailable != nil:
		return domain.NewValidationError("asset_id",
			"dumpster %s is on an ongoing rental with no pickup date", p.AssetID)
	case available == nil:
		return domain.NewValidationError("asset_id", "dumpster %s does not exist", p.AssetID)
	}

	next := available.NextBooking
	if next == nil {
		return nil
	}

	pickup, completed := p.End.PickupDate()
	if !completed {
		return domain.NewValidationError("pickup_date",
			"dumpster %s is already booked from %s; an ongoing rental cannot be opened before it",
			p.AssetID, next.PlacementDate)
	}
	if next.PlacementDate.Before(pickup) {
		return domain.NewValidationError("pickup_date",
			"dumpster %s is booked again from %s; pickup must be on or before that day",
			p.AssetID, next.PlacementDate)
	}
	return nil
}

func without(bookings []domain.Booking, id string) []domain.Booking {
	out := make([]domain.Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.ID != id {
			out = append(out, b)
		}
	}
	return out
}
