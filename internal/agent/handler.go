package agent

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/quotelink/referral-api/internal/apperr"
	"github.com/quotelink/referral-api/internal/utils"
	"gorm.io/gorm"
)

// Handler encapsula DB e repository
type Handler struct {
	DB         *gorm.DB
	Repository Repository
	SiteURL    string
}

func NewHandler(db *gorm.DB, siteURL string) *Handler {
	return &Handler{
		DB:         db,
		Repository: NewRepository(),
		SiteURL:    siteURL,
	}
}

func (h *Handler) toResponse(a Agent) AgentResponse {
	return AgentResponse{Agent: a, TrackingURL: h.SiteURL + "/?ref=" + a.ID}
}

// POST /api/admin/agents
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}
	if err := utils.Validate(req); err != nil {
		apperr.Write(w, err)
		return
	}

	id, err := h.Repository.GenerateUniqueID(h.DB)
	if err != nil {
		slog.Error("falha ao gerar id de agente", "err", err)
		http.Error(w, "erro ao gerar id do agente", http.StatusInternalServerError)
		return
	}

	a := Agent{
		ID:       id,
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    req.Email,
		Account:  req.Account,
		Memo:     req.Memo,
		IsActive: true,
	}
	if err := h.Repository.Create(h.DB, &a); err != nil {
		slog.Error("falha ao salvar agente", "err", err)
		http.Error(w, "erro ao salvar agente", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(h.toResponse(a))
}

// GET /api/admin/agents?active=true
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var (
		list []Agent
		err  error
	)
	if r.URL.Query().Get("active") == "true" {
		list, err = h.Repository.ListActive(h.DB)
	} else {
		list, err = h.Repository.ListAll(h.DB)
	}
	if err != nil {
		http.Error(w, "erro ao listar agentes", http.StatusInternalServerError)
		return
	}

	out := make([]AgentResponse, 0, len(list))
	for _, a := range list {
		out = append(out, h.toResponse(a))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

// GET /api/admin/agents/{id}
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	a, err := h.Repository.FindByID(h.DB, mux.Vars(r)["id"])
	if err != nil {
		writeLookupError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h.toResponse(*a))
}

// PUT /api/admin/agents/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}
	if err := utils.Validate(req); err != nil {
		apperr.Write(w, err)
		return
	}

	a, err := h.Repository.Update(h.DB, mux.Vars(r)["id"], &req)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h.toResponse(*a))
}

// DELETE /api/admin/agents/{id} apenas desativa o agente.
func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	if err := h.Repository.Deactivate(h.DB, mux.Vars(r)["id"]); err != nil {
		writeLookupError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		http.Error(w, "agente não encontrado", http.StatusNotFound)
		return
	}
	slog.Error("falha ao acessar agentes", "err", err)
	http.Error(w, "erro ao acessar agente", http.StatusInternalServerError)
}
