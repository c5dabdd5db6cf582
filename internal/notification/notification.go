// Package notification publica eventos de novas conversões para canais
// externos. Toda entrega é best-effort: quem chama apenas registra a falha.
package notification

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/quotelink/referral-api/internal/metrics"
)

const EventQuoteCreated = "quote.created"

type Event struct {
	Type          string    `json:"type"`
	QuoteID       uint      `json:"quoteId"`
	AgentID       string    `json:"agentId"`
	AgentName     string    `json:"agentName"`
	SessionID     string    `json:"sessionId,omitempty"`
	CustomerName  string    `json:"customerName,omitempty"`
	CustomerPhone string    `json:"customerPhone,omitempty"`
	ServiceType   string    `json:"serviceType,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (e Event) payload() ([]byte, error) {
	return json.Marshal(e)
}

type Notifier interface {
	Name() string
	Notify(ctx context.Context, e Event) error
}

// Noop é usado quando nenhum canal está configurado.
type Noop struct{}

func (Noop) Name() string                        { return "noop" }
func (Noop) Notify(context.Context, Event) error { return nil }

// Multi entrega o evento a todos os canais e junta os erros.
type Multi []Notifier

func (m Multi) Name() string { return "multi" }

func (m Multi) Notify(ctx context.Context, e Event) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, e); err != nil {
			metrics.NotificationFailures.WithLabelValues(n.Name()).Inc()
			slog.Warn("falha ao notificar", "sink", n.Name(), "quote_id", e.QuoteID, "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
