package analytics

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/quotelink/referral-api/internal/apperr"
)

type Handler struct {
	Engine *Engine
}

func NewHandler(engine *Engine) *Handler {
	return &Handler{Engine: engine}
}

// GET /api/admin/analytics?startDate=YYYY-MM-DD&endDate=YYYY-MM-DD
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	startDate, endDate := q.Get("startDate"), q.Get("endDate")
	if startDate == "" || endDate == "" {
		http.Error(w, "startDate e endDate são obrigatórios", http.StatusBadRequest)
		return
	}

	report, err := h.Engine.Compute(r.Context(), startDate, endDate)
	if err != nil {
		if errors.Is(err, apperr.ErrStorage) {
			slog.Error("falha ao calcular relatório", "start", startDate, "end", endDate, "err", err)
		}
		apperr.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(report)
}
