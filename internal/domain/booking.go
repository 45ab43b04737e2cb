package domain

import "time"

// Booking is a rental of one asset to one customer.
type Booking struct {
	ID            string    `json:"id"`
	AssetID       string    `json:"asset_id"`
	CustomerID    string    `json:"customer_id"`
	PlacementDate Date      `json:"placement_date"`
	End           RentalEnd `json:"pickup_date"`
	Address       string    `json:"address"`
	Notes         string    `json:"notes"`
	CreatedOn     time.Time `json:"created_on"`
	UpdatedOn     time.Time `json:"updated_on"`
}

func (b Booking) Interval() Interval {
	return Interval{Start: b.PlacementDate, End: b.End}
}

// BookingFilter narrows ListBookings. Zero fields match everything.
type BookingFilter struct {
	AssetID    string
	CustomerID string
	// ActiveOn keeps bookings whose interval covers the date or starts after it.
	ActiveOn *Date
}
