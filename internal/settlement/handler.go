package settlement

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/quotelink/referral-api/internal/apperr"
	"github.com/quotelink/referral-api/internal/utils"
)

type Handler struct {
	Reconciler *Reconciler
}

func NewHandler(rec *Reconciler) *Handler {
	return &Handler{Reconciler: rec}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, apperr.ErrStorage) {
		slog.Error("falha no acerto", "op", op, "err", err)
	}
	apperr.Write(w, err)
}

// GET /api/admin/settlement?month=YYYY-MM
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	if month == "" {
		http.Error(w, "month é obrigatório", http.StatusBadRequest)
		return
	}
	view, err := h.Reconciler.PeriodStats(r.Context(), month)
	if err != nil {
		writeErr(w, "visão do mês", err)
		return
	}
	writeJSON(w, view)
}

// POST /api/admin/settlement/complete
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	var req CompleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}
	if err := utils.Validate(req); err != nil {
		apperr.Write(w, err)
		return
	}

	var (
		n   int64
		err error
	)
	if req.IsBulk {
		n, err = h.Reconciler.SettleAll(r.Context(), req.Month)
	} else {
		n, err = h.Reconciler.SettleAgent(r.Context(), req.AgentID, req.Month)
	}
	if err != nil {
		writeErr(w, "concluir acerto", err)
		return
	}

	slog.Info("acerto concluído", "month", req.Month, "agent_id", req.AgentID, "bulk", req.IsBulk, "rows", n)
	writeJSON(w, CompleteResponse{Success: true, SettledCount: n})
}

// PATCH /api/admin/settlement/update-commission
func (h *Handler) UpdateCommission(w http.ResponseWriter, r *http.Request) {
	var req UpdateCommissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}
	if err := utils.Validate(req); err != nil {
		apperr.Write(w, err)
		return
	}

	n, err := h.Reconciler.AdjustUnitPrice(r.Context(), req.AgentID, req.Month, req.CommissionAmount)
	if err != nil {
		writeErr(w, "ajustar comissão", err)
		return
	}

	slog.Info("preço unitário ajustado", "month", req.Month, "agent_id", req.AgentID, "amount", req.CommissionAmount, "rows", n)
	writeJSON(w, UpdateCommissionResponse{Success: true, UpdatedCount: n})
}

// GET /api/admin/settlement/history?month=YYYY-MM
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	if month == "" {
		http.Error(w, "month é obrigatório", http.StatusBadRequest)
		return
	}
	list, err := h.Reconciler.History(r.Context(), month)
	if err != nil {
		writeErr(w, "histórico", err)
		return
	}
	writeJSON(w, list)
}
