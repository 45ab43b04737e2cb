package utils

import (
	"fmt"
	"time"

	"dumpster-backoffice/internal/domain"
)

// DateDifference is the inclusive span between two dates as whole months plus leftover days.
type DateDifference struct {
	Months int
	Days   int
}

// RentalQuote is the tiered price of a rental period.
type RentalQuote struct {
	From       domain.Date `json:"from"`
	To         domain.Date `json:"to"`
	Ongoing    bool        `json:"ongoing"`
	Months     int         `json:"months"`
	Weeks      int         `json:"weeks"`
	Days       int         `json:"days"`
	MonthsCost int64       `json:"months_cost_cents"`
	WeeksCost  int64       `json:"weeks_cost_cents"`
	DaysCost   int64       `json:"days_cost_cents"`
	TotalCost  int64       `json:"total_cost_cents"`
}

// DaysInMonth returns the number of days in a given month
func DaysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// CalculateDateDifference computes the difference between two dates.
// Both the start and end dates are included, so a same-day rental is one day.
func CalculateDateDifference(start, end domain.Date) (DateDifference, error) {
	if end.Before(start) {
		return DateDifference{}, fmt.Errorf("end date must be >= start date")
	}

	years := end.Year() - start.Year()
	months := int(end.Month()) - int(start.Month())
	days := end.Day() - start.Day() + 1

	// Borrow the previous month's length when the day count goes negative.
	if days < 0 {
		months--
		prevMonth := end.Month() - 1
		prevYear := end.Year()
		if prevMonth < time.January {
			prevMonth = time.December
			prevYear--
		}
		days += DaysInMonth(prevYear, prevMonth)
	}

	if months < 0 {
		years--
		months += 12
	}
	months += 12 * years

	return DateDifference{Months: months, Days: days}, nil
}

// QuoteRental prices a booking with the asset's month/week/day tiers.
// Ongoing rentals are priced through asOf.
func QuoteRental(placement domain.Date, end domain.RentalEnd, asOf domain.Date, asset *domain.Asset) (RentalQuote, error) {
	to := asOf
	pickup, completed := end.PickupDate()
	if completed {
		to = pickup
	}

	diff, err := CalculateDateDifference(placement, to)
	if err != nil {
		return RentalQuote{}, err
	}

	const daysPerWeek = 7
	weeks := diff.Days / daysPerWeek
	days := diff.Days % daysPerWeek

	q := RentalQuote{
		From:       placement,
		To:         to,
		Ongoing:    !completed,
		Months:     diff.Months,
		Weeks:      weeks,
		Days:       days,
		MonthsCost: int64(diff.Months) * asset.MonthlyRateCents,
		WeeksCost:  int64(weeks) * asset.WeeklyRateCents,
		DaysCost:   int64(days) * asset.DailyRateCents,
	}
	q.TotalCost = SumCents(q.MonthsCost, q.WeeksCost, q.DaysCost)
	return q, nil
}
