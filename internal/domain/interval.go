package domain

import "encoding/json"

// RentalEnd says whether a rental is still out or when it was (or will be) picked up.
// The zero value is Ongoing.
type RentalEnd struct {
	pickup    Date
	completed bool
}

// Ongoing is a rental with no pickup date yet.
func Ongoing() RentalEnd { return RentalEnd{} }

// CompletedOn is a rental picked up on the given day.
func CompletedOn(pickup Date) RentalEnd {
	return RentalEnd{pickup: pickup, completed: true}
}

// EndFromPointer maps a nullable pickup date to a RentalEnd.
func EndFromPointer(pickup *Date) RentalEnd {
	if pickup == nil || pickup.IsZero() {
		return Ongoing()
	}
	return CompletedOn(*pickup)
}

func (e RentalEnd) IsOngoing() bool { return !e.completed }

// PickupDate returns the pickup day and true, or false when the rental is ongoing.
func (e RentalEnd) PickupDate() (Date, bool) {
	return e.pickup, e.completed
}

// Pointer returns the pickup date as a nullable value for persistence and JSON.
func (e RentalEnd) Pointer() *Date {
	if !e.completed {
		return nil
	}
	d := e.pickup
	return &d
}

func (e RentalEnd) Equal(o RentalEnd) bool {
	if e.completed != o.completed {
		return false
	}
	return !e.completed || e.pickup.Equal(o.pickup)
}

func (e RentalEnd) String() string {
	if !e.completed {
		return "ongoing"
	}
	return e.pickup.String()
}

// MarshalJSON encodes the pickup date, or null while ongoing.
func (e RentalEnd) MarshalJSON() ([]byte, error) {
	if !e.completed {
		return []byte("null"), nil
	}
	return json.Marshal(e.pickup.String())
}

func (e *RentalEnd) UnmarshalJSON(b []byte) error {
	var d Date
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}
	if d.IsZero() {
		*e = Ongoing()
		return nil
	}
	*e = CompletedOn(d)
	return nil
}

// Interval is the occupied range [Start, pickup] inclusive, or [Start, +inf) while ongoing.
type Interval struct {
	Start Date
	End   RentalEnd
}

// Covers reports whether d falls inside the interval.
func Covers(iv Interval, d Date) bool {
	if d.Before(iv.Start) {
		return false
	}
	pickup, ok := iv.End.PickupDate()
	if !ok {
		return true
	}
	return !d.After(pickup)
}

// Overlaps reports whether two intervals on the same asset collide.
// Sharing a single transition day (one pickup equals the other placement) is not a collision.
func Overlaps(a, b Interval) bool {
	// Two ranges intersect iff the later start lies inside both.
	start := laterOf(a.Start, b.Start)
	if !Covers(a, start) || !Covers(b, start) {
		return false
	}
	if p, ok := a.End.PickupDate(); ok && p.Equal(b.Start) {
		return false
	}
	if p, ok := b.End.PickupDate(); ok && p.Equal(a.Start) {
		return false
	}
	return true
}

func laterOf(a, b Date) Date {
	if a.After(b) {
		return a
	}
	return b
}
