package conversion

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/quotelink/referral-api/internal/apperr"
	"github.com/quotelink/referral-api/internal/metrics"
	"github.com/quotelink/referral-api/internal/utils"
)

type Handler struct {
	Recorder *Recorder
}

func NewHandler(rec *Recorder) *Handler {
	return &Handler{Recorder: rec}
}

// POST /api/conversion
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req ConversionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.Conversions.WithLabelValues("rejected").Inc()
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}
	if err := utils.Validate(req); err != nil {
		metrics.Conversions.WithLabelValues("rejected").Inc()
		apperr.Write(w, err)
		return
	}

	res, err := h.Recorder.Record(r.Context(), Input{
		AgentID:        req.AgentID,
		SessionID:      req.SessionID,
		FormData:       req.FormData,
		ConversionType: req.ConversionType,
	})
	if err != nil {
		if errors.Is(err, apperr.ErrStorage) {
			metrics.Conversions.WithLabelValues("error").Inc()
			slog.Error("falha ao registrar conversão", "agent_id", req.AgentID, "err", err)
		} else {
			metrics.Conversions.WithLabelValues("rejected").Inc()
		}
		apperr.Write(w, err)
		return
	}

	status := http.StatusCreated
	if res.IsDuplicate {
		status = http.StatusOK
		metrics.Conversions.WithLabelValues("duplicate").Inc()
		slog.Info("conversão repetida ignorada", "agent_id", req.AgentID, "quote_id", res.QuoteID)
	} else {
		metrics.Conversions.WithLabelValues("created").Inc()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ConversionResponse{
		Success:     true,
		QuoteID:     res.QuoteID,
		IsDuplicate: res.IsDuplicate,
	})
}
