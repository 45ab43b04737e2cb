// Package availability classifies dumpsters for a date and decides whether a
// proposed booking fits around the existing ones.
//
// Everything here is pure: callers pass in a freshly fetched snapshot of
// assets and bookings and get a deterministic answer back.
package availability

import (
	"sort"

	"dumpster-backoffice/internal/domain"
)

type UnavailableReason string

const (
	ReasonMaintenance UnavailableReason = "maintenance"
	ReasonOngoing     UnavailableReason = "ongoing"
)

// Query is a candidate placement date plus the optional pickup of the rental being planned.
type Query struct {
	Date domain.Date
	End  domain.RentalEnd
}

// AvailableAsset is free on the query date.
type AvailableAsset struct {
	Asset domain.Asset `json:"asset"`
	// AvailableUntil is the placement date of the next future booking, if any.
	AvailableUntil *domain.Date    `json:"available_until,omitempty"`
	NextBooking    *domain.Booking `json:"next_booking,omitempty"`
	// IsTransitionDay is set when another booking is picked up on the query date.
	IsTransitionDay bool `json:"is_transition_day"`
	// ConflictsWithPickup flags that the planned rental would run into NextBooking.
	ConflictsWithPickup bool `json:"conflicts_with_pickup"`
}

// UpcomingAsset is busy on the query date but frees up on a known day.
type UpcomingAsset struct {
	Asset domain.Asset `json:"asset"`
	// AvailableAfter is the pickup day of the current booking; a new placement may start that day.
	AvailableAfter domain.Date     `json:"available_after"`
	CurrentBooking domain.Booking  `json:"current_booking"`
	NextBooking    *domain.Booking `json:"next_booking,omitempty"`
}

// UnavailableAsset is blocked with no known free date.
type UnavailableAsset struct {
	Asset          domain.Asset      `json:"asset"`
	Reason         UnavailableReason `json:"reason"`
	CurrentBooking *domain.Booking   `json:"current_booking,omitempty"`
}

// Result partitions every asset into exactly one of three lists.
type Result struct {
	Date        domain.Date        `json:"date"`
	Available   []AvailableAsset   `json:"available"`
	Upcoming    []UpcomingAsset    `json:"upcoming"`
	Unavailable []UnavailableAsset `json:"unavailable"`
}

// Find returns the partition that holds assetID.
func (r Result) Find(assetID string) (available *AvailableAsset, upcoming *UpcomingAsset, unavailable *UnavailableAsset) {
	for i := range r.Available {
		if r.Available[i].Asset.ID == assetID {
			return &r.Available[i], nil, nil
		}
	}
	for i := range r.Upcoming {
		if r.Upcoming[i].Asset.ID == assetID {
			return nil, &r.Upcoming[i], nil
		}
	}
	for i := range r.Unavailable {
		if r.Unavailable[i].Asset.ID == assetID {
			return nil, nil, &r.Unavailable[i]
		}
	}
	return nil, nil, nil
}

// Resolve classifies every asset for q.Date.
func Resolve(q Query, assets []domain.Asset, bookings []domain.Booking) Result {
	byAsset := groupByAsset(bookings)

	res := Result{
		Date:        q.Date,
		Available:   []AvailableAsset{},
		Upcoming:    []UpcomingAsset{},
		Unavailable: []UnavailableAsset{},
	}

	sorted := make([]domain.Asset, len(assets))
	copy(sorted, assets)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	for _, asset := range sorted {
		if asset.Status == domain.AssetStatusMaintenance {
			res.Unavailable = append(res.Unavailable, UnavailableAsset{Asset: asset, Reason: ReasonMaintenance})
			continue
		}
		classify(&res, q, asset, byAsset[asset.ID])
	}
	return res
}

func classify(res *Result, q Query, asset domain.Asset, bookings []domain.Booking) {
	var blocking *domain.Booking
	transition := false

	for i := range bookings {
		b := &bookings[i]
		if !domain.Covers(b.Interval(), q.Date) {
			continue
		}
		if pickup, ok := b.End.PickupDate(); ok && pickup.Equal(q.Date) {
			// Still formally on site until end of day, but a new placement may start.
			transition = true
			continue
		}
		blocking = pickLongerBlock(blocking, b)
	}

	if blocking == nil {
		next := NextBookingAfter(bookings, q.Date, "")
		av := AvailableAsset{
			Asset:           asset,
			NextBooking:     next,
			IsTransitionDay: transition,
		}
		if next != nil {
			until := next.PlacementDate
			av.AvailableUntil = &until
			av.ConflictsWithPickup = runsInto(q.End, next.PlacementDate)
		}
		res.Available = append(res.Available, av)
		return
	}

	pickup, ok := blocking.End.PickupDate()
	if !ok {
		current := *blocking
		res.Unavailable = append(res.Unavailable, UnavailableAsset{
			Asset:          asset,
			Reason:         ReasonOngoing,
			CurrentBooking: &current,
		})
		return
	}

	res.Upcoming = append(res.Upcoming, UpcomingAsset{
		Asset:          asset,
		AvailableAfter: pickup,
		CurrentBooking: *blocking,
		NextBooking:    NextBookingAfter(bookings, q.Date, blocking.ID),
	})
}

// pickLongerBlock keeps whichever booking holds the asset longest; ongoing wins.
// Only matters for snapshots that already violate the overlap invariant.
func pickLongerBlock(cur, cand *domain.Booking) *domain.Booking {
	if cur == nil {
		return cand
	}
	curPickup, curDone := cur.End.PickupDate()
	candPickup, candDone := cand.End.PickupDate()
	switch {
	case !curDone:
		return cur
	case !candDone:
		return cand
	case candPickup.After(curPickup):
		return cand
	default:
		return cur
	}
}

// runsInto reports whether a rental ending with end would still be on site
// when a booking placed on nextPlacement begins.
func runsInto(end domain.RentalEnd, nextPlacement domain.Date) bool {
	pickup, ok := end.PickupDate()
	if !ok {
		return true
	}
	return nextPlacement.Before(pickup)
}

// NextBookingAfter returns the earliest booking placed strictly after d, skipping excludeID.
func NextBookingAfter(bookings []domain.Booking, d domain.Date, excludeID string) *domain.Booking {
	var next *domain.Booking
	for i := range bookings {
		b := bookings[i]
		if excludeID != "" && b.ID == excludeID {
			continue
		}
		if !b.PlacementDate.After(d) {
			continue
		}
		if next == nil || b.PlacementDate.Before(next.PlacementDate) {
			found := b
			next = &found
		}
	}
	return next
}

func groupByAsset(bookings []domain.Booking) map[string][]domain.Booking {
	out := make(map[string][]domain.Booking)
	for _, b := range bookings {
		out[b.AssetID] = append(out[b.AssetID], b)
	}
	return out
}
