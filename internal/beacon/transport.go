package beacon

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/quotelink/referral-api/internal/click"
	"github.com/quotelink/referral-api/internal/conversion"
	"github.com/quotelink/referral-api/internal/quote"
)

const sendTimeout = 3 * time.Second

// HTTPTransport publica os eventos na API em segundo plano, sem retry.
type HTTPTransport struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPTransport(baseURL string) *HTTPTransport {
	return &HTTPTransport{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: sendTimeout},
	}
}

// Send monta o corpo na hora e dispara a requisição numa goroutine.
func (h *HTTPTransport) Send(ev Event) error {
	var (
		path string
		body any
	)
	switch ev.Type {
	case EventClick:
		path = "/api/track/click"
		body = click.TrackClickRequest{
			AgentID:     ev.AgentID,
			SessionID:   ev.SessionID,
			LandingURL:  ev.LandingURL,
			Referrer:    ev.Referrer,
			UTMSource:   ev.UTMSource,
			UTMMedium:   ev.UTMMedium,
			UTMCampaign: ev.UTMCampaign,
		}
	case EventConversion:
		path = "/api/conversion"
		body = conversion.ConversionRequest{
			AgentID:        ev.AgentID,
			SessionID:      ev.SessionID,
			FormData:       ev.FormData,
			ConversionType: quote.TypeQuoteRequest,
		}
	default:
		return errors.New("tipo de evento desconhecido: " + ev.Type)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.BaseURL+path, bytes.NewReader(payload))
		if err != nil {
			return
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := h.Client.Do(req)
		if err != nil {
			slog.Debug("beacon: falha de rede", "path", path, "err", err)
			return
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()
	return nil
}
