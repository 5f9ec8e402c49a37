package handler

import (
	"net/http"

	"github.com/tabkeeper/tabkeeper/internal/calculator"
	"github.com/tabkeeper/tabkeeper/internal/models"
)

type createOrderRequest struct {
	Vendor    string `json:"vendor"`
	Note      string `json:"note"`
	CreatorID string `json:"creator_id"`
	PayerID   string `json:"payer_id"`
}

type orderResponse struct {
	OrderID       int64   `json:"order_id"`
	CreatedAt     int64   `json:"created_at"`
	Vendor        string  `json:"vendor"`
	Note          string  `json:"note,omitempty"`
	CreatorID     string  `json:"creator_id"`
	PayerID       string  `json:"payer_id"`
	DiscountType  string  `json:"discount_type"`
	DiscountValue float64 `json:"discount_value"`
	Adjustment    int64   `json:"adjustment"`
	Status        string  `json:"status"`
}

func toOrderResponse(o *models.Order) orderResponse {
	return orderResponse{
		OrderID:       o.ID,
		CreatedAt:     o.CreatedAt,
		Vendor:        o.Vendor,
		Note:          o.Note,
		CreatorID:     o.CreatorID,
		PayerID:       o.PayerID,
		DiscountType:  string(o.DiscountType),
		DiscountValue: o.DiscountValue,
		Adjustment:    o.Adjustment,
		Status:        string(o.Status),
	}
}

// settlementResponse carries the settlement result. total_due is clamped
// at zero for display; final_total keeps its sign for auditing.
type settlementResponse struct {
	Subtotal   int64            `json:"subtotal"`
	FinalTotal int64            `json:"final_total"`
	TotalDue   int64            `json:"total_due"`
	Dues       map[string]int64 `json:"dues"`
}

func toSettlementResponse(s *calculator.Settlement) settlementResponse {
	due := s.FinalTotal
	if due < 0 {
		due = 0
	}
	return settlementResponse{
		Subtotal:   s.Subtotal,
		FinalTotal: s.FinalTotal,
		TotalDue:   due,
		Dues:       s.Dues,
	}
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	order, err := h.orders.CreateOrder(r.Context(), req.Vendor, req.Note, req.CreatorID, req.PayerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderResponse(order))
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	var (
		summaries []models.OrderSummary
		err       error
	)
	if keyword := r.URL.Query().Get("q"); keyword != "" {
		summaries, err = h.orders.SearchOrders(r.Context(), keyword, queryLimit(r))
	} else {
		summaries, err = h.orders.ListOrders(r.Context(), queryLimit(r))
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": summaries})
}

func (h *Handler) getBill(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	bill, err := h.orders.GetBill(r.Context(), orderID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bill)
}

type addItemRequest struct {
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Qty       int64  `json:"qty"`
	Note      string `json:"note"`
	ActorID   string `json:"actor_id"`
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req addItemRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	item, err := h.ledger.AddItem(r.Context(), orderID, req.UserID, req.Name, req.UnitPrice, req.Qty, req.Note, req.ActorID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"item_id": item.ID})
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.ledger.RemoveItem(r.Context(), itemID, r.URL.Query().Get("actor_id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) subtotals(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	subtotals, err := h.ledger.SubtotalByParticipant(r.Context(), orderID)
	if err != nil {
		writeError(w, err)
		return
	}
	var total int64
	for _, subtotal := range subtotals {
		total += subtotal
	}
	writeJSON(w, http.StatusOK, map[string]any{"subtotals": subtotals, "order_subtotal": total})
}

type setDiscountRequest struct {
	Type    string  `json:"type"`
	Value   float64 `json:"value"`
	ActorID string  `json:"actor_id"`
}

func (h *Handler) setDiscount(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req setDiscountRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	settlement, err := h.orders.SetDiscount(r.Context(), orderID, models.DiscountType(req.Type), req.Value, req.ActorID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettlementResponse(settlement))
}

type setAdjustmentRequest struct {
	Adjustment int64  `json:"adjustment"`
	ActorID    string `json:"actor_id"`
}

func (h *Handler) setAdjustment(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req setAdjustmentRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	settlement, err := h.orders.SetAdjustment(r.Context(), orderID, req.Adjustment, req.ActorID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettlementResponse(settlement))
}

func (h *Handler) settle(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	settlement, err := h.ledger.Settle(r.Context(), orderID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettlementResponse(settlement))
}

type actorRequest struct {
	ActorID string `json:"actor_id"`
}

func (h *Handler) lock(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req actorRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	settlement, err := h.orders.Lock(r.Context(), orderID, req.ActorID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettlementResponse(settlement))
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req actorRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.orders.Cancel(r.Context(), orderID, req.ActorID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
