package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dumpster-backoffice/internal/config"
)

// NewRouter wires every API route plus /healthz and /metrics.
func NewRouter(h *Handler, cfg config.ServerConfig) http.Handler {
	r := mux.NewRouter()
	r.Use(PanicRecovery, MetricsMiddleware)

	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/availability", h.CheckAvailability).Methods(http.MethodGet)

	api.HandleFunc("/bookings", h.CreateBooking).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{id}", h.GetBooking).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{id}", h.UpdateBooking).Methods(http.MethodPut)
	api.HandleFunc("/bookings/{id}", h.DeleteBooking).Methods(http.MethodDelete)
	api.HandleFunc("/bookings/{id}/pickup", h.MarkPickedUp).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{id}/quote", h.QuoteRental).Methods(http.MethodGet)

	api.HandleFunc("/customers", h.ListCustomers).Methods(http.MethodGet)
	api.HandleFunc("/customers", h.CreateCustomer).Methods(http.MethodPost)
	api.HandleFunc("/customers/{id}", h.UpdateCustomer).Methods(http.MethodPut)

	api.HandleFunc("/payments/preview", h.PreviewPayment).Methods(http.MethodPost)
	api.HandleFunc("/payments", h.SubmitPayment).Methods(http.MethodPost)
	api.HandleFunc("/payments/{id}/cancel", h.CancelPayment).Methods(http.MethodPost)

	api.HandleFunc("/references/next", h.NextReference).Methods(http.MethodGet)

	return NewCORS(cfg)(r)
}
