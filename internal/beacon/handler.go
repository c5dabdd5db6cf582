package beacon

import (
	"encoding/json"
	"net/http"
)

type configResponse struct {
	AttributionTTLSeconds int      `json:"attributionTtlSeconds"`
	SessionTTLSeconds     int      `json:"sessionTtlSeconds"`
	SuppressWindowMs      int64    `json:"suppressWindowMs"`
	Keywords              []string `json:"keywords"`
	CTAButtonID           string   `json:"ctaButtonId"`
}

// GET /api/track/config
//
// Parâmetros que o script carrega antes de registrar os listeners.
func ConfigHandler(cfg Config) http.HandlerFunc {
	cfg = cfg.withDefaults()
	resp := configResponse{
		AttributionTTLSeconds: int(cfg.AttributionTTL.Seconds()),
		SessionTTLSeconds:     int(cfg.SessionTTL.Seconds()),
		SuppressWindowMs:      cfg.SuppressWindow.Milliseconds(),
		Keywords:              cfg.Keywords,
		CTAButtonID:           cfg.CTAButtonID,
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "public, max-age=300")
		_ = json.NewEncoder(w).Encode(resp)
	}
}
