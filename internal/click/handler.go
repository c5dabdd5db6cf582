package click

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/quotelink/referral-api/internal/agent"
	"github.com/quotelink/referral-api/internal/apperr"
	"github.com/quotelink/referral-api/internal/metrics"
	"github.com/quotelink/referral-api/internal/middleware"
	"github.com/quotelink/referral-api/internal/session"
	"github.com/quotelink/referral-api/internal/utils"
	"gorm.io/gorm"
)

// Handler recebe os eventos de clique do beacon.
type Handler struct {
	DB       *gorm.DB
	Repo     Repository
	Agents   agent.Repository
	Sessions session.Repository
	Now      func() time.Time

	TrustProxyHeaders bool
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{
		DB:       db,
		Repo:     NewRepository(),
		Agents:   agent.NewRepository(),
		Sessions: session.NewRepository(),
		Now:      time.Now,
	}
}

// POST /api/track/click
func (h *Handler) Track(w http.ResponseWriter, r *http.Request) {
	var req TrackClickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}

	c, err := h.Record(req, r.Referer(), r.UserAgent(), middleware.ClientIP(r, h.TrustProxyHeaders))
	if err != nil {
		metrics.Clicks.WithLabelValues("rejected").Inc()
		apperr.Write(w, err)
		return
	}
	metrics.Clicks.WithLabelValues("created").Inc()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(TrackClickResponse{Success: true, ClickID: c.ID})
}

// Record valida o agente, garante a sessão e grava o clique. O referrer do
// corpo (página anterior à landing) tem prioridade sobre o cabeçalho.
func (h *Handler) Record(req TrackClickRequest, headerReferrer, userAgent, ip string) (*Click, error) {
	if err := utils.Validate(req); err != nil {
		return nil, err
	}
	if _, err := h.Agents.FindActive(h.DB, req.AgentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("agente %s inexistente ou inativo", req.AgentID)
		}
		return nil, apperr.Storage("buscar agente", err)
	}

	now := h.Now().UTC()
	if err := h.Sessions.Ensure(h.DB, req.SessionID, req.AgentID, now); err != nil {
		// a sessão é só apoio; o clique continua valendo
		slog.Warn("falha ao registrar sessão", "session_id", req.SessionID, "err", err)
	}

	referrer := req.Referrer
	if referrer == "" {
		referrer = headerReferrer
	}
	c := Click{
		AgentID:     req.AgentID,
		SessionID:   req.SessionID,
		LandingURL:  req.LandingURL,
		Referrer:    referrer,
		UserAgent:   userAgent,
		IPAddress:   ip,
		UTMSource:   req.UTMSource,
		UTMMedium:   req.UTMMedium,
		UTMCampaign: req.UTMCampaign,
		CreatedAt:   now,
	}
	if err := h.Repo.Create(h.DB, &c); err != nil {
		return nil, apperr.Storage("salvar clique", err)
	}
	return &c, nil
}
