package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"dumpster-backoffice/internal/allocation"
	"dumpster-backoffice/internal/availability"
	"dumpster-backoffice/internal/config"
	"dumpster-backoffice/internal/domain"
	"dumpster-backoffice/internal/reference"
	"dumpster-backoffice/internal/service"
	"dumpster-backoffice/internal/utils"
)

type MockRentalService struct {
	mock.Mock
}

func (m *MockRentalService) CheckAvailability(ctx context.Context, q availability.Query) (*availability.Result, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*availability.Result), args.Error(1)
}
func (m *MockRentalService) GetBooking(ctx context.Context, id string) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *MockRentalService) CreateBooking(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}
func (m *MockRentalService) UpdateBooking(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}
func (m *MockRentalService) MarkPickedUp(ctx context.Context, id string, pickup domain.Date) (*domain.Booking, error) {
	args := m.Called(ctx, id, pickup)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *MockRentalService) DeleteBooking(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockRentalService) QuoteRental(ctx context.Context, id string, asOf domain.Date) (*utils.RentalQuote, error) {
	args := m.Called(ctx, id, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*utils.RentalQuote), args.Error(1)
}

type MockCustomerService struct {
	mock.Mock
}

func (m *MockCustomerService) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Customer), args.Error(1)
}
func (m *MockCustomerService) CreateCustomer(ctx context.Context, c *domain.Customer) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}
func (m *MockCustomerService) UpdateCustomer(ctx context.Context, c *domain.Customer) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) PreviewPayment(ctx context.Context, req service.PaymentRequest) (*allocation.Allocation, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*allocation.Allocation), args.Error(1)
}
func (m *MockPaymentService) SubmitPayment(ctx context.Context, req service.PaymentRequest) (*service.PaymentResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PaymentResult), args.Error(1)
}
func (m *MockPaymentService) CancelPayment(ctx context.Context, id string) (*domain.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}
func (m *MockPaymentService) NextReference(ctx context.Context, policy reference.Policy, day domain.Date) (string, error) {
	args := m.Called(ctx, policy, day)
	return args.String(0), args.Error(1)
}

type fixedClock struct{}

func (fixedClock) Now() time.Time { return time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC) }

type fixture struct {
	rentals   *MockRentalService
	customers *MockCustomerService
	payments  *MockPaymentService
	router    http.Handler
}

func newFixture(ping func(context.Context) error) *fixture {
	f := &fixture{
		rentals:   new(MockRentalService),
		customers: new(MockCustomerService),
		payments:  new(MockPaymentService),
	}
	h := NewHandler(f.rentals, f.customers, f.payments, fixedClock{}, ping)
	f.router = NewRouter(h, config.ServerConfig{CorsAllowedOrigins: []string{"*"}})
	return f
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestAvailabilityHandler(t *testing.T) {
	t.Run("Passes date and pickup", func(t *testing.T) {
		f := newFixture(nil)
		want := availability.Query{Date: domain.MustParseDate("2024-03-05"), End: domain.CompletedOn(domain.MustParseDate("2024-03-09"))}
		f.rentals.On("CheckAvailability", mock.Anything, want).Return(&availability.Result{Date: want.Date}, nil)

		rec := f.do(http.MethodGet, "/api/v1/availability?date=2024-03-05&pickup=2024-03-09", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"date":"2024-03-05"`)
	})

	t.Run("Bad date", func(t *testing.T) {
		f := newFixture(nil)
		rec := f.do(http.MethodGet, "/api/v1/availability?date=03/05/2024", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		f.rentals.AssertNotCalled(t, "CheckAvailability", mock.Anything, mock.Anything)
	})
}

func TestBookingHandlers(t *testing.T) {
	t.Run("Create ongoing booking", func(t *testing.T) {
		f := newFixture(nil)
		f.rentals.On("CreateBooking", mock.Anything, mock.MatchedBy(func(b *domain.Booking) bool {
			return b.AssetID == "a1" && b.End.IsOngoing() && b.PlacementDate.String() == "2024-03-10"
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Booking).ID = "b1"
		}).Return(nil)

		rec := f.do(http.MethodPost, "/api/v1/bookings", `{"asset_id":"a1","customer_id":"c1","placement_date":"2024-03-10","pickup_date":null}`)
		require.Equal(t, http.StatusCreated, rec.Code)
		var got map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "b1", got["id"])
		assert.Nil(t, got["pickup_date"])
	})

	t.Run("Validation rejection is 422", func(t *testing.T) {
		f := newFixture(nil)
		f.rentals.On("CreateBooking", mock.Anything, mock.Anything).
			Return(domain.NewValidationError("asset_id", "dumpster a1 is under maintenance"))

		rec := f.do(http.MethodPost, "/api/v1/bookings", `{"asset_id":"a1","customer_id":"c1","placement_date":"2024-03-10"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), "under maintenance")
		assert.Contains(t, rec.Body.String(), `"field":"asset_id"`)
	})

	t.Run("Concurrent conflict is 409", func(t *testing.T) {
		f := newFixture(nil)
		f.rentals.On("UpdateBooking", mock.Anything, mock.MatchedBy(func(b *domain.Booking) bool { return b.ID == "b1" })).
			Return(fmt.Errorf("update booking: %w", domain.ErrBookingConflict))

		rec := f.do(http.MethodPut, "/api/v1/bookings/b1", `{"asset_id":"a1","customer_id":"c1","placement_date":"2024-03-10","pickup_date":"2024-03-12"}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("Delete missing is 404", func(t *testing.T) {
		f := newFixture(nil)
		f.rentals.On("DeleteBooking", mock.Anything, "nope").Return(domain.ErrNotFound)

		rec := f.do(http.MethodDelete, "/api/v1/bookings/nope", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Quote defaults to today", func(t *testing.T) {
		f := newFixture(nil)
		f.rentals.On("QuoteRental", mock.Anything, "b1", domain.MustParseDate("2024-03-05")).
			Return(&utils.RentalQuote{Days: 5, TotalCost: 22500}, nil)

		rec := f.do(http.MethodGet, "/api/v1/bookings/b1/quote", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"total_cost_cents":22500`)
	})

	t.Run("Pickup", func(t *testing.T) {
		f := newFixture(nil)
		f.rentals.On("MarkPickedUp", mock.Anything, "b1", domain.MustParseDate("2024-03-20")).
			Return(&domain.Booking{ID: "b1", End: domain.CompletedOn(domain.MustParseDate("2024-03-20"))}, nil)

		rec := f.do(http.MethodPost, "/api/v1/bookings/b1/pickup", `{"pickup_date":"2024-03-20"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"pickup_date":"2024-03-20"`)
	})
}

func TestPaymentHandlers(t *testing.T) {
	t.Run("Decimal amounts become cents", func(t *testing.T) {
		f := newFixture(nil)
		want := service.PaymentRequest{
			Lines:             []service.PaymentLine{{InvoiceID: "inv1", AmountCents: 3006}},
			ExternalReference: "CHK-9",
		}
		f.payments.On("PreviewPayment", mock.Anything, want).Return(&allocation.Allocation{
			Splits:            []allocation.Split{{InvoiceID: "inv1", BalanceCents: 2000, ProposedCents: 3006, RegularCents: 2000, OverpaidCents: 1006}},
			TotalRegularCents: 2000, TotalOverpaidCents: 1006, HasAnyOverpayment: true, ExternalReference: "CHK-9",
		}, nil)

		rec := f.do(http.MethodPost, "/api/v1/payments/preview", `{"lines":[{"invoice_id":"inv1","amount":"30.06"}],"payment_reference":"CHK-9"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"overpaid":"10.06"`)
		assert.Contains(t, rec.Body.String(), `"total_regular":"20.00"`)
	})

	t.Run("Sub-cent amount is 422", func(t *testing.T) {
		f := newFixture(nil)
		rec := f.do(http.MethodPost, "/api/v1/payments", `{"lines":[{"invoice_id":"inv1","amount":"10.005"}]}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		f.payments.AssertNotCalled(t, "SubmitPayment", mock.Anything, mock.Anything)
	})

	t.Run("Unconfirmed overpayment is 409 with split", func(t *testing.T) {
		f := newFixture(nil)
		alloc := allocation.Allocation{
			Splits:             []allocation.Split{{InvoiceID: "inv1", ProposedCents: 500, OverpaidCents: 500}},
			TotalOverpaidCents: 500, HasAnyOverpayment: true,
		}
		f.payments.On("SubmitPayment", mock.Anything, mock.Anything).Return(nil, &allocation.ConfirmationError{Allocation: alloc})

		rec := f.do(http.MethodPost, "/api/v1/payments", `{"lines":[{"invoice_id":"inv1","amount":"5"}]}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), `"total_overpaid":"5.00"`)
	})

	t.Run("Transient is 503", func(t *testing.T) {
		f := newFixture(nil)
		f.payments.On("SubmitPayment", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("submit: %w", domain.ErrTransient))

		rec := f.do(http.MethodPost, "/api/v1/payments", `{"lines":[{"invoice_id":"inv1","amount":"5"}]}`)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("Submit returns records", func(t *testing.T) {
		f := newFixture(nil)
		f.payments.On("SubmitPayment", mock.Anything, mock.Anything).Return(&service.PaymentResult{
			Allocation: allocation.Allocation{Splits: []allocation.Split{{InvoiceID: "inv1", RegularCents: 500}}, TotalRegularCents: 500},
			Payments: []domain.Payment{{
				ID: "p1", InvoiceID: "inv1", AmountCents: 500, Status: domain.PaymentStatusActive,
				InternalReference: "RV24/03/01", PaidOn: domain.MustParseDate("2024-03-05"),
			}},
		}, nil)

		rec := f.do(http.MethodPost, "/api/v1/payments", `{"lines":[{"invoice_id":"inv1","amount":"5.00"}]}`)
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), `"internal_reference":"RV24/03/01"`)
		assert.Contains(t, rec.Body.String(), `"amount":"5.00"`)
	})

	t.Run("Next reference", func(t *testing.T) {
		f := newFixture(nil)
		f.payments.On("NextReference", mock.Anything, reference.PolicyMaxPlusOne, domain.MustParseDate("2024-01-31")).Return("RV24/01/08", nil)

		rec := f.do(http.MethodGet, "/api/v1/references/next?policy=max-plus-one&date=2024-01-31", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "RV24/01/08")
	})

	t.Run("Unknown policy", func(t *testing.T) {
		f := newFixture(nil)
		rec := f.do(http.MethodGet, "/api/v1/references/next?policy=random", "")
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestHealthAndMetrics(t *testing.T) {
	t.Run("Healthy", func(t *testing.T) {
		f := newFixture(func(context.Context) error { return nil })
		assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/healthz", "").Code)
	})

	t.Run("Database down", func(t *testing.T) {
		f := newFixture(func(context.Context) error { return fmt.Errorf("dial tcp: refused") })
		assert.Equal(t, http.StatusServiceUnavailable, f.do(http.MethodGet, "/healthz", "").Code)
	})

	t.Run("Metrics exposed", func(t *testing.T) {
		f := newFixture(nil)
		f.do(http.MethodGet, "/healthz", "")
		rec := f.do(http.MethodGet, "/metrics", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "dumpster_http_requests_total")
	})
}

func TestPanicRecovery(t *testing.T) {
	h := PanicRecovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
