package service

import (
	"context"
	"errors"

	"dumpster-backoffice/internal/availability"
	"dumpster-backoffice/internal/domain"
	"dumpster-backoffice/internal/logger"
	"dumpster-backoffice/internal/metrics"
	"dumpster-backoffice/internal/repository"
	"dumpster-backoffice/internal/utils"
)

type rentalService struct {
	assetRepo   repository.AssetRepository
	bookingRepo repository.BookingRepository
	invoiceRepo repository.InvoiceRepository
}

func NewRentalService(
	assetRepo repository.AssetRepository,
	bookingRepo repository.BookingRepository,
	invoiceRepo repository.InvoiceRepository,
) RentalService {
	return &rentalService{
		assetRepo:   assetRepo,
		bookingRepo: bookingRepo,
		invoiceRepo: invoiceRepo,
	}
}

func (s *rentalService) CheckAvailability(ctx context.Context, q availability.Query) (*availability.Result, error) {
	logger.EnterMethod("rentalService.CheckAvailability", "date", q.Date, "pickup", q.End)
	if q.Date.IsZero() {
		err := domain.NewValidationError("date", "a date is required")
		logger.ExitMethodWithError("rentalService.CheckAvailability", err)
		return nil, err
	}

	assets, err := s.assetRepo.List(ctx)
	if err != nil {
		logger.ExitMethodWithError("rentalService.CheckAvailability", err)
		return nil, err
	}
	// Bookings already picked up before the date can neither cover it nor follow it.
	bookings, err := s.bookingRepo.List(ctx, domain.BookingFilter{ActiveOn: &q.Date})
	if err != nil {
		logger.ExitMethodWithError("rentalService.CheckAvailability", err)
		return nil, err
	}

	res := availability.Resolve(q, assets, bookings)
	logger.ExitMethod("rentalService.CheckAvailability",
		"available", len(res.Available), "upcoming", len(res.Upcoming), "unavailable", len(res.Unavailable))
	return &res, nil
}

func (s *rentalService) GetBooking(ctx context.Context, id string) (*domain.Booking, error) {
	return s.bookingRepo.GetByID(ctx, id)
}

func (s *rentalService) CreateBooking(ctx context.Context, b *domain.Booking) error {
	logger.EnterMethod("rentalService.CreateBooking", "assetID", b.AssetID, "placement", b.PlacementDate, "pickup", b.End)
	if err := checkShape(b); err != nil {
		return s.reject("rentalService.CreateBooking", err)
	}

	if err := s.admit(ctx, availability.Proposal{
		AssetID:       b.AssetID,
		PlacementDate: b.PlacementDate,
		End:           b.End,
	}); err != nil {
		return s.reject("rentalService.CreateBooking", err)
	}

	if err := s.bookingRepo.Create(ctx, b); err != nil {
		return s.reject("rentalService.CreateBooking", err)
	}
	logger.ExitMethod("rentalService.CreateBooking", "bookingID", b.ID)
	return nil
}

func (s *rentalService) UpdateBooking(ctx context.Context, b *domain.Booking) error {
	logger.EnterMethod("rentalService.UpdateBooking", "bookingID", b.ID, "assetID", b.AssetID)
	existing, err := s.bookingRepo.GetByID(ctx, b.ID)
	if err != nil {
		return s.reject("rentalService.UpdateBooking", err)
	}
	if b.CustomerID == "" {
		b.CustomerID = existing.CustomerID
	}
	if err := checkShape(b); err != nil {
		return s.reject("rentalService.UpdateBooking", err)
	}

	if err := s.admit(ctx, availability.Proposal{
		AssetID:       b.AssetID,
		PlacementDate: b.PlacementDate,
		End:           b.End,
		Editing:       existing,
	}); err != nil {
		return s.reject("rentalService.UpdateBooking", err)
	}

	b.CreatedOn = existing.CreatedOn
	if err := s.bookingRepo.Update(ctx, b); err != nil {
		return s.reject("rentalService.UpdateBooking", err)
	}
	logger.ExitMethod("rentalService.UpdateBooking", "bookingID", b.ID)
	return nil
}

// MarkPickedUp closes an ongoing rental on the given day.
func (s *rentalService) MarkPickedUp(ctx context.Context, bookingID string, pickup domain.Date) (*domain.Booking, error) {
	logger.EnterMethod("rentalService.MarkPickedUp", "bookingID", bookingID, "pickup", pickup)
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, s.reject("rentalService.MarkPickedUp", err)
	}
	if done, ok := b.End.PickupDate(); ok {
		return nil, s.reject("rentalService.MarkPickedUp",
			domain.NewValidationError("pickup_date", "booking %s was already picked up on %s", bookingID, done))
	}
	if pickup.IsZero() {
		return nil, s.reject("rentalService.MarkPickedUp", domain.NewValidationError("pickup_date", "a pickup date is required"))
	}

	b.End = domain.CompletedOn(pickup)
	if err := checkShape(b); err != nil {
		return nil, s.reject("rentalService.MarkPickedUp", err)
	}
	if err := s.bookingRepo.Update(ctx, b); err != nil {
		return nil, s.reject("rentalService.MarkPickedUp", err)
	}
	logger.ExitMethod("rentalService.MarkPickedUp", "bookingID", bookingID)
	return b, nil
}

func (s *rentalService) DeleteBooking(ctx context.Context, bookingID string) error {
	logger.EnterMethod("rentalService.DeleteBooking", "bookingID", bookingID)
	n, err := s.invoiceRepo.CountByBooking(ctx, bookingID)
	if err != nil {
		return s.reject("rentalService.DeleteBooking", err)
	}
	if n > 0 {
		return s.reject("rentalService.DeleteBooking",
			domain.NewValidationError("booking", "booking %s is referenced by %d invoice(s)", bookingID, n))
	}
	if err := s.bookingRepo.Delete(ctx, bookingID); err != nil {
		return s.reject("rentalService.DeleteBooking", err)
	}
	logger.ExitMethod("rentalService.DeleteBooking", "bookingID", bookingID)
	return nil
}

// QuoteRental prices a booking; ongoing rentals are priced up to asOf.
func (s *rentalService) QuoteRental(ctx context.Context, bookingID string, asOf domain.Date) (*utils.RentalQuote, error) {
	logger.EnterMethod("rentalService.QuoteRental", "bookingID", bookingID, "asOf", asOf)
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, s.reject("rentalService.QuoteRental", err)
	}
	asset, err := s.assetRepo.GetByID(ctx, b.AssetID)
	if err != nil {
		return nil, s.reject("rentalService.QuoteRental", err)
	}
	quote, err := utils.QuoteRental(b.PlacementDate, b.End, asOf, asset)
	if err != nil {
		return nil, s.reject("rentalService.QuoteRental", err)
	}
	logger.ExitMethod("rentalService.QuoteRental", "bookingID", bookingID, "totalCents", quote.TotalCost)
	return &quote, nil
}

// admit runs the conflict validator against a fresh snapshot of the proposal's asset.
func (s *rentalService) admit(ctx context.Context, p availability.Proposal) error {
	assets, err := s.assetRepo.List(ctx)
	if err != nil {
		return err
	}
	bookings, err := s.bookingRepo.List(ctx, domain.BookingFilter{AssetID: p.AssetID})
	if err != nil {
		return err
	}
	return availability.Validate(p, assets, bookings)
}

func (s *rentalService) reject(method string, err error) error {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		metrics.BookingsRejected.WithLabelValues(ve.Field).Inc()
	case errors.Is(err, domain.ErrBookingConflict):
		metrics.BookingConflicts.Inc()
	}
	logger.ExitMethodWithError(method, err)
	return err
}

func checkShape(b *domain.Booking) error {
	if b.AssetID == "" {
		return domain.NewValidationError("asset_id", "an asset is required")
	}
	if b.CustomerID == "" {
		return domain.NewValidationError("customer_id", "a customer is required")
	}
	if b.PlacementDate.IsZero() {
		return domain.NewValidationError("placement_date", "a placement date is required")
	}
	if pickup, ok := b.End.PickupDate(); ok && pickup.Before(b.PlacementDate) {
		return domain.NewValidationError("pickup_date",
			"pickup %s is before placement %s", pickup, b.PlacementDate)
	}
	return nil
}
