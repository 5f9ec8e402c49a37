// Package handler exposes the ledger operations as a JSON HTTP API.
// The chat or web surface driving the ledger is an external collaborator;
// this layer only decodes requests, calls the services and maps domain
// errors to status codes.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/tabkeeper/tabkeeper/internal/models"
	"github.com/tabkeeper/tabkeeper/internal/service"
)

// Handler bundles the three services behind the HTTP routes.
type Handler struct {
	orders   *service.OrderService
	ledger   *service.LedgerService
	payments *service.PaymentService
}

// New creates a Handler over the given services.
func New(orders *service.OrderService, ledger *service.LedgerService, payments *service.PaymentService) *Handler {
	return &Handler{orders: orders, ledger: ledger, payments: payments}
}

// Register attaches all API routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/orders", h.createOrder)
	mux.HandleFunc("GET /api/v1/orders", h.listOrders)
	mux.HandleFunc("GET /api/v1/orders/{id}", h.getBill)
	mux.HandleFunc("POST /api/v1/orders/{id}/items", h.addItem)
	mux.HandleFunc("DELETE /api/v1/items/{id}", h.removeItem)
	mux.HandleFunc("GET /api/v1/orders/{id}/subtotals", h.subtotals)
	mux.HandleFunc("POST /api/v1/orders/{id}/discount", h.setDiscount)
	mux.HandleFunc("POST /api/v1/orders/{id}/adjustment", h.setAdjustment)
	mux.HandleFunc("POST /api/v1/orders/{id}/settle", h.settle)
	mux.HandleFunc("POST /api/v1/orders/{id}/lock", h.lock)
	mux.HandleFunc("POST /api/v1/orders/{id}/cancel", h.cancel)
	mux.HandleFunc("POST /api/v1/orders/{id}/payments", h.markPaid)
	mux.HandleFunc("DELETE /api/v1/orders/{id}/payments/{user}", h.markUnpaid)
	mux.HandleFunc("GET /api/v1/orders/{id}/settled", h.allSettled)
	mux.HandleFunc("GET /api/v1/users/{id}/debt", h.userDebt)
	mux.HandleFunc("GET /api/v1/users/{id}/overview", h.userOverview)
}

// pathID parses the {id} path segment as an integer identifier.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		return 0, models.ErrInvalidInput
	}
	return id, nil
}

func queryLimit(r *http.Request) int {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return limit
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return models.ErrInvalidInput
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps domain errors to HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrInvalidInput),
		errors.Is(err, models.ErrInvalidAmount),
		errors.Is(err, models.ErrInvalidDiscount):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, models.ErrOrderNotOpen),
		errors.Is(err, models.ErrOrderNotLocked):
		status = http.StatusConflict
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
