// Package beacon modela o script de rastreamento que roda no navegador do
// visitante: atribuição por ?ref=, cookie de sessão e detecção de conversões.
// O acesso a cookies, relógio e rede é injetado para que a lógica rode sem
// navegador.
package beacon

import (
	"encoding/json"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/quotelink/referral-api/internal/utils"
)

const (
	AttributionCookie = "ql_ref"
	SessionCookie     = "ql_sid"

	EventClick      = "click"
	EventConversion = "conversion"
)

// Config traz os parâmetros do script. Zero values viram os padrões.
type Config struct {
	AttributionTTL time.Duration
	SessionTTL     time.Duration
	SuppressWindow time.Duration
	Keywords       []string
	CTAButtonID    string
}

func (c Config) withDefaults() Config {
	if c.AttributionTTL <= 0 {
		c.AttributionTTL = 30 * 24 * time.Hour
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = 24 * time.Hour
	}
	if c.SuppressWindow <= 0 {
		c.SuppressWindow = 500 * time.Millisecond
	}
	if len(c.Keywords) == 0 {
		c.Keywords = []string{"quote", "estimate", "견적"}
	}
	if c.CTAButtonID == "" {
		c.CTAButtonID = "quote-cta"
	}
	return c
}

type CookieStore interface {
	Get(name string) (string, bool)
	Set(name, value string, ttl time.Duration)
	Delete(name string)
}

// Transport entrega um evento sem bloquear quem chamou. Erros são ignorados pelo Tracker.
type Transport interface {
	Send(ev Event) error
}

type Clock func() time.Time

// Attribution é o conteúdo do cookie de atribuição.
type Attribution struct {
	AgentID     string    `json:"agentId"`
	LandedAt    time.Time `json:"landedAt"`
	LandingURL  string    `json:"landingUrl"`
	Referrer    string    `json:"referrer,omitempty"`
	UTMSource   string    `json:"utmSource,omitempty"`
	UTMMedium   string    `json:"utmMedium,omitempty"`
	UTMCampaign string    `json:"utmCampaign,omitempty"`
}

type Event struct {
	Type        string
	AgentID     string
	SessionID   string
	LandingURL  string
	Referrer    string
	UTMSource   string
	UTMMedium   string
	UTMCampaign string
	FormData    map[string]any
}

// Form descreve um formulário no momento do submit.
type Form struct {
	Action     string
	Attributes map[string]string // id, class, name, data-*
	Fields     map[string]any
}

type Button struct {
	ID string
	// nil quando o botão não está dentro de um formulário
	Form *Form
}

type SubmitState int

const (
	StateIdle SubmitState = iota
	StatePending
)

func (s SubmitState) String() string {
	if s == StatePending {
		return "pending"
	}
	return "idle"
}

// Tracker substitui o singleton da página: um por carregamento, passado por referência.
type Tracker struct {
	cfg       Config
	cookies   CookieStore
	clock     Clock
	transport Transport

	mu           sync.Mutex
	attribution  *Attribution
	state        SubmitState
	pendingUntil time.Time
}

func NewTracker(cfg Config, cookies CookieStore, clock Clock, transport Transport) *Tracker {
	if clock == nil {
		clock = time.Now
	}
	return &Tracker{
		cfg:       cfg.withDefaults(),
		cookies:   cookies,
		clock:     clock,
		transport: transport,
	}
}

// guard impede que qualquer pânico interno chegue à página hospedeira.
func guard(op string) {
	if r := recover(); r != nil {
		slog.Debug("beacon: erro interno ignorado", "op", op, "panic", r)
	}
}

// Init roda no carregamento da página.
func (t *Tracker) Init(pageURL, referrer string) {
	defer guard("init")
	t.mu.Lock()
	defer t.mu.Unlock()

	u, err := url.Parse(pageURL)
	if err == nil {
		q := u.Query()
		if ref := strings.TrimSpace(q.Get("ref")); utils.IsValidAgentID(ref) {
			a := Attribution{
				AgentID:     ref,
				LandedAt:    t.clock().UTC(),
				LandingURL:  pageURL,
				Referrer:    referrer,
				UTMSource:   q.Get("utm_source"),
				UTMMedium:   q.Get("utm_medium"),
				UTMCampaign: q.Get("utm_campaign"),
			}
			raw, err := json.Marshal(a)
			if err != nil {
				return
			}
			t.cookies.Set(AttributionCookie, string(raw), t.cfg.AttributionTTL)
			t.attribution = &a
			t.emit(Event{
				Type:        EventClick,
				AgentID:     a.AgentID,
				SessionID:   t.sessionID(),
				LandingURL:  a.LandingURL,
				Referrer:    a.Referrer,
				UTMSource:   a.UTMSource,
				UTMMedium:   a.UTMMedium,
				UTMCampaign: a.UTMCampaign,
			})
			return
		}
	}

	raw, ok := t.cookies.Get(AttributionCookie)
	if !ok {
		return
	}
	var a Attribution
	if err := json.Unmarshal([]byte(raw), &a); err != nil || !utils.IsValidAgentID(a.AgentID) {
		t.cookies.Delete(AttributionCookie)
		return
	}
	t.attribution = &a
}

// AgentID devolve "" quando a visita não tem atribuição.
func (t *Tracker) AgentID() string {
	defer guard("agent")
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.attribution == nil {
		return ""
	}
	return t.attribution.AgentID
}

func (t *Tracker) SessionID() string {
	defer guard("session")
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sessionID()
}

// sessionID reaproveita o cookie enquanto ele viver; exige t.mu.
func (t *Tracker) sessionID() string {
	if id, ok := t.cookies.Get(SessionCookie); ok && id != "" {
		return id
	}
	id := uuid.NewString()
	t.cookies.Set(SessionCookie, id, t.cfg.SessionTTL)
	return id
}

func (t *Tracker) State() SubmitState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.currentState(t.clock())
}

// currentState aplica a expiração do estado pending; exige t.mu.
func (t *Tracker) currentState(now time.Time) SubmitState {
	if t.state == StatePending && !now.Before(t.pendingUntil) {
		t.state = StateIdle
		t.pendingUntil = time.Time{}
	}
	return t.state
}

func (t *Tracker) matches(f *Form) bool {
	if f == nil {
		return false
	}
	hay := []string{strings.ToLower(f.Action)}
	for _, v := range f.Attributes {
		hay = append(hay, strings.ToLower(v))
	}
	for _, kw := range t.cfg.Keywords {
		kw = strings.ToLower(kw)
		for _, h := range hay {
			if strings.Contains(h, kw) {
				return true
			}
		}
	}
	return false
}

// FormSubmitted emite a conversão de um formulário de orçamento e abre a
// janela em que cliques no botão CTA não contam de novo.
func (t *Tracker) FormSubmitted(f Form) bool {
	defer guard("form")
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.attribution == nil || !t.matches(&f) {
		return false
	}
	now := t.clock()
	t.state = StatePending
	t.pendingUntil = now.Add(t.cfg.SuppressWindow)

	data := make(map[string]any, len(f.Fields)+1)
	for k, v := range f.Fields {
		data[k] = v
	}
	if len(data) == 0 {
		data["formAction"] = f.Action
	}
	t.emit(Event{Type: EventConversion, AgentID: t.attribution.AgentID, SessionID: t.sessionID(), FormData: data})
	return true
}

// ButtonClicked trata o clique no CTA fora de formulário de orçamento.
func (t *Tracker) ButtonClicked(b Button) bool {
	defer guard("button")
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.attribution == nil || b.ID != t.cfg.CTAButtonID || t.matches(b.Form) {
		return false
	}
	if t.currentState(t.clock()) == StatePending {
		return false
	}
	t.emit(Event{
		Type:      EventConversion,
		AgentID:   t.attribution.AgentID,
		SessionID: t.sessionID(),
		FormData:  map[string]any{"source": "cta_button", "buttonId": b.ID},
	})
	return true
}

func (t *Tracker) emit(ev Event) {
	if t.transport == nil {
		return
	}
	if err := t.transport.Send(ev); err != nil {
		slog.Debug("beacon: envio descartado", "type", ev.Type, "err", err)
	}
}
