package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"dumpster-backoffice/internal/availability"
	"dumpster-backoffice/internal/domain"
	"dumpster-backoffice/internal/reference"
	"dumpster-backoffice/internal/service"
	"dumpster-backoffice/internal/utils"
)

// Handler serves the back-office JSON API.
type Handler struct {
	rentals   service.RentalService
	customers service.CustomerService
	payments  service.PaymentService
	clock     service.Clock
	ping      func(ctx context.Context) error
}

func NewHandler(
	rentals service.RentalService,
	customers service.CustomerService,
	payments service.PaymentService,
	clock service.Clock,
	ping func(ctx context.Context) error,
) *Handler {
	return &Handler{
		rentals:   rentals,
		customers: customers,
		payments:  payments,
		clock:     clock,
		ping:      ping,
	}
}

func (h *Handler) today() domain.Date {
	return domain.DateOf(h.clock.Now())
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		badRequest(w, "", "invalid request body: "+err.Error())
		return false
	}
	return true
}

// queryDate parses an optional YYYY-MM-DD query parameter; ok is false after a 400 was written.
func queryDate(w http.ResponseWriter, r *http.Request, name string) (domain.Date, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return domain.Date{}, true
	}
	d, err := domain.ParseDate(raw)
	if err != nil {
		badRequest(w, name, err.Error())
		return domain.Date{}, false
	}
	return d, true
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.ping != nil {
		if err := h.ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	date, ok := queryDate(w, r, "date")
	if !ok {
		return
	}
	pickup, ok := queryDate(w, r, "pickup")
	if !ok {
		return
	}
	q := availability.Query{Date: date}
	if !pickup.IsZero() {
		q.End = domain.CompletedOn(pickup)
	}

	res, err := h.rentals.CheckAvailability(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	b, err := h.rentals.GetBooking(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req bookingRequest
	if !decode(w, r, &req) {
		return
	}
	b := req.toBooking("")
	if err := h.rentals.CreateBooking(r.Context(), b); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (h *Handler) UpdateBooking(w http.ResponseWriter, r *http.Request) {
	var req bookingRequest
	if !decode(w, r, &req) {
		return
	}
	b := req.toBooking(mux.Vars(r)["id"])
	if err := h.rentals.UpdateBooking(r.Context(), b); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *Handler) MarkPickedUp(w http.ResponseWriter, r *http.Request) {
	var req pickupRequest
	if !decode(w, r, &req) {
		return
	}
	b, err := h.rentals.MarkPickedUp(r.Context(), mux.Vars(r)["id"], req.PickupDate)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *Handler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	if err := h.rentals.DeleteBooking(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) QuoteRental(w http.ResponseWriter, r *http.Request) {
	asOf, ok := queryDate(w, r, "as_of")
	if !ok {
		return
	}
	if asOf.IsZero() {
		asOf = h.today()
	}
	quote, err := h.rentals.QuoteRental(r.Context(), mux.Vars(r)["id"], asOf)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customers.ListCustomers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, customers)
}

func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if !decode(w, r, &req) {
		return
	}
	c := &domain.Customer{Name: req.Name, Email: req.Email, Phone: req.Phone, Address: req.Address}
	if err := h.customers.CreateCustomer(r.Context(), c); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if !decode(w, r, &req) {
		return
	}
	c := &domain.Customer{ID: mux.Vars(r)["id"], Name: req.Name, Email: req.Email, Phone: req.Phone, Address: req.Address}
	if err := h.customers.UpdateCustomer(r.Context(), c); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// paymentRequestFrom converts decimal amounts; a bad amount is answered with 422.
func paymentRequestFrom(w http.ResponseWriter, req paymentRequest) (service.PaymentRequest, bool) {
	out := service.PaymentRequest{
		ExternalReference: req.PaymentReference,
		PaidOn:            req.PaidOn,
		Confirmed:         req.Confirmed,
	}
	for _, l := range req.Lines {
		cents, err := utils.ParseMoney(l.Amount)
		if err != nil {
			writeError(w, domain.NewValidationError("amount", "invoice %s: %v", l.InvoiceID, err))
			return out, false
		}
		out.Lines = append(out.Lines, service.PaymentLine{InvoiceID: l.InvoiceID, AmountCents: cents})
	}
	return out, true
}

func (h *Handler) PreviewPayment(w http.ResponseWriter, r *http.Request) {
	var body paymentRequest
	if !decode(w, r, &body) {
		return
	}
	req, ok := paymentRequestFrom(w, body)
	if !ok {
		return
	}
	alloc, err := h.payments.PreviewPayment(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, allocationResponseFrom(*alloc))
}

func (h *Handler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	var body paymentRequest
	if !decode(w, r, &body) {
		return
	}
	req, ok := paymentRequestFrom(w, body)
	if !ok {
		return
	}
	res, err := h.payments.SubmitPayment(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	out := submitResponse{
		Allocation: allocationResponseFrom(res.Allocation),
		Payments:   make([]paymentResponse, 0, len(res.Payments)),
	}
	for _, p := range res.Payments {
		out.Payments = append(out.Payments, paymentResponseFrom(p))
	}
	writeJSON(w, http.StatusCreated, out)
}

func (h *Handler) CancelPayment(w http.ResponseWriter, r *http.Request) {
	p, err := h.payments.CancelPayment(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, paymentResponseFrom(*p))
}

func (h *Handler) NextReference(w http.ResponseWriter, r *http.Request) {
	var policy reference.Policy
	if raw := r.URL.Query().Get("policy"); raw != "" {
		p, err := reference.ParsePolicy(raw)
		if err != nil {
			writeError(w, err)
			return
		}
		policy = p
	}
	day, ok := queryDate(w, r, "date")
	if !ok {
		return
	}

	code, err := h.payments.NextReference(r.Context(), policy, day)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"reference": code})
}
