package conversion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/quotelink/referral-api/internal/agent"
	"github.com/quotelink/referral-api/internal/apperr"
	"github.com/quotelink/referral-api/internal/click"
	"github.com/quotelink/referral-api/internal/notification"
	"github.com/quotelink/referral-api/internal/quote"
	"github.com/quotelink/referral-api/internal/session"
	"github.com/quotelink/referral-api/internal/utils"
	"gorm.io/gorm"
)

// DefaultDedupWindow é a janela em que envios repetidos da mesma sessão
// viram um único registro.
const DefaultDedupWindow = 60 * time.Second

const notifyTimeout = 3 * time.Second

// Chaves do formulário aceitas para cada campo, em ordem de preferência.
var (
	phoneKeys   = []string{"phone", "customerPhone", "customer_phone", "tel", "mobile", "contact"}
	nameKeys    = []string{"name", "customerName", "customer_name"}
	serviceKeys = []string{"serviceType", "service_type", "service", "category"}
	addressKeys = []string{"address", "location", "area"}
	messageKeys = []string{"message", "memo", "request", "details", "content"}
)

type Input struct {
	AgentID        string
	SessionID      string
	FormData       map[string]any
	ConversionType string
}

type Result struct {
	QuoteID     uint
	IsDuplicate bool
}

// Recorder grava conversões com deduplicação por sessão/telefone e vincula
// o clique mais recente da sessão.
type Recorder struct {
	DB          *gorm.DB
	Agents      agent.Repository
	Clicks      click.Repository
	Sessions    session.Repository
	Quotes      quote.Repository
	Notifier    notification.Notifier
	DedupWindow time.Duration
	Now         func() time.Time
}

func NewRecorder(db *gorm.DB, notifier notification.Notifier, dedupWindow time.Duration) *Recorder {
	if notifier == nil {
		notifier = notification.Noop{}
	}
	if dedupWindow <= 0 {
		dedupWindow = DefaultDedupWindow
	}
	return &Recorder{
		DB:          db,
		Agents:      agent.NewRepository(),
		Clicks:      click.NewRepository(),
		Sessions:    session.NewRepository(),
		Quotes:      quote.NewRepository(),
		Notifier:    notifier,
		DedupWindow: dedupWindow,
		Now:         time.Now,
	}
}

func (r *Recorder) Record(ctx context.Context, in Input) (Result, error) {
	in.AgentID = strings.TrimSpace(in.AgentID)
	in.SessionID = strings.TrimSpace(in.SessionID)
	if in.AgentID == "" {
		return Result{}, apperr.Validation("agentId é obrigatório")
	}
	if len(in.FormData) == 0 {
		return Result{}, apperr.Validation("formData é obrigatório")
	}
	switch in.ConversionType {
	case "":
		in.ConversionType = quote.TypeQuoteRequest
	case quote.TypeQuoteRequest:
	default:
		return Result{}, apperr.Validation("conversionType %q não suportado", in.ConversionType)
	}

	db := r.DB.WithContext(ctx)
	ag, err := r.Agents.FindActive(db, in.AgentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Result{}, apperr.NotFound("agente %s inexistente ou inativo", in.AgentID)
		}
		return Result{}, apperr.Storage("buscar agente", err)
	}

	now := r.Now().UTC()
	phone := utils.NormalizePhone(formString(in.FormData, phoneKeys...))

	// sem sessão não há como deduplicar
	if in.SessionID != "" {
		dup, err := r.Quotes.FindRecentDuplicate(db, quote.DuplicateQuery{
			AgentID:   in.AgentID,
			SessionID: in.SessionID,
			Phone:     phone,
			Since:     now.Add(-r.DedupWindow),
		})
		if err != nil {
			return Result{}, apperr.Storage("buscar conversão repetida", err)
		}
		if dup != nil {
			return Result{QuoteID: dup.ID, IsDuplicate: true}, nil
		}
	}

	q := quote.QuoteRequest{
		AgentID:        in.AgentID,
		CustomerName:   formString(in.FormData, nameKeys...),
		CustomerPhone:  phone,
		ServiceType:    formString(in.FormData, serviceKeys...),
		Address:        formString(in.FormData, addressKeys...),
		Message:        formString(in.FormData, messageKeys...),
		ConversionType: in.ConversionType,
		Status:         quote.StatusPending,
		FormData:       in.FormData,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if in.SessionID != "" {
		q.SessionID = &in.SessionID
		c, err := r.Clicks.LatestForSession(db, in.AgentID, in.SessionID)
		if err != nil {
			return Result{}, apperr.Storage("buscar clique da sessão", err)
		}
		if c != nil {
			q.ClickID = &c.ID
		}
	}

	if err := r.Quotes.Create(db, &q); err != nil {
		return Result{}, apperr.Storage("salvar conversão", err)
	}

	r.afterCreate(ctx, ag, &q, now)
	return Result{QuoteID: q.ID}, nil
}

// afterCreate roda os efeitos colaterais que nunca podem derrubar a requisição.
func (r *Recorder) afterCreate(ctx context.Context, ag *agent.Agent, q *quote.QuoteRequest, now time.Time) {
	if q.SessionID != nil {
		if err := r.Sessions.MarkConverted(r.DB.WithContext(ctx), *q.SessionID, now); err != nil {
			slog.Warn("falha ao marcar sessão convertida", "session_id", *q.SessionID, "err", err)
		}
	}

	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	ev := notification.Event{
		Type:          notification.EventQuoteCreated,
		QuoteID:       q.ID,
		AgentID:       ag.ID,
		AgentName:     ag.Name,
		CustomerName:  q.CustomerName,
		CustomerPhone: q.CustomerPhone,
		ServiceType:   q.ServiceType,
		CreatedAt:     q.CreatedAt,
	}
	if q.SessionID != nil {
		ev.SessionID = *q.SessionID
	}
	if err := r.Notifier.Notify(nctx, ev); err != nil {
		slog.Warn("falha ao publicar notificação de conversão", "quote_id", q.ID, "err", err)
	}
}

// formString devolve o primeiro valor não vazio entre as chaves informadas.
func formString(form map[string]any, keys ...string) string {
	for _, k := range keys {
		v, ok := form[k]
		if !ok || v == nil {
			continue
		}
		var s string
		switch t := v.(type) {
		case string:
			s = t
		case float64:
			s = fmt.Sprintf("%.0f", t)
		default:
			s = fmt.Sprint(t)
		}
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}
