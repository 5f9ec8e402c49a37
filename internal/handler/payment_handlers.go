package handler

import (
	"net/http"
)

type markPaidRequest struct {
	UserID  string `json:"user_id"`
	PaidTo  string `json:"paid_to"`
	ActorID string `json:"actor_id"`
}

func (h *Handler) markPaid(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req markPaidRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.payments.MarkPaid(r.Context(), orderID, req.UserID, req.PaidTo, req.ActorID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) markUnpaid(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	err = h.payments.MarkUnpaid(r.Context(), orderID, r.PathValue("user"), r.URL.Query().Get("actor_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) allSettled(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	settled, err := h.payments.AllSettled(r.Context(), orderID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"all_settled": settled})
}

func (h *Handler) userDebt(w http.ResponseWriter, r *http.Request) {
	report, err := h.payments.UserDebt(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) userOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.payments.UserOverview(r.Context(), r.PathValue("id"), queryLimit(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}
