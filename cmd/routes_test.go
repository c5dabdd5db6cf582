package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/quotelink/referral-api/internal/agent"
	"github.com/quotelink/referral-api/internal/auth"
	"github.com/quotelink/referral-api/internal/click"
	"github.com/quotelink/referral-api/internal/config"
	"github.com/quotelink/referral-api/internal/middleware"
	"github.com/quotelink/referral-api/internal/notification"
	"github.com/quotelink/referral-api/internal/quote"
	"github.com/quotelink/referral-api/internal/session"
	"github.com/quotelink/referral-api/internal/settlement"
	"github.com/quotelink/referral-api/internal/utils"
	"github.com/quotelink/referral-api/internal/utils/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var kst = time.FixedZone("KST", 9*3600)

type api struct {
	t       *testing.T
	handler http.Handler
	token   string
}

func newAPI(t *testing.T) *api {
	db := dbtest.Open(t, &agent.Agent{}, &click.Click{}, &session.Session{}, &quote.QuoteRequest{}, &settlement.SettlementRecord{})

	hash, err := utils.HashSenha("painel-123")
	require.NoError(t, err)
	cfg := &config.Config{
		SiteURL:            "https://example.com",
		Timezone:           kst,
		DedupWindow:        time.Minute,
		SessionTTL:         24 * time.Hour,
		AggregationWorkers: 2,
		AdminPasswordHash:  hash,
		CORSAllowedOrigins: []string{"*"},
	}
	tokens, err := auth.NewTokens("segredo", time.Hour)
	require.NoError(t, err)

	return &api{
		t:       t,
		handler: newRouter(cfg, db, tokens, notification.Noop{}, middleware.NewRateLimiter(1000, 1000)),
	}
}

func (a *api) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *api) decode(rec *httptest.ResponseRecorder, v any) {
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestHealthAndMetrics(t *testing.T) {
	a := newAPI(t)
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/metrics", "").Code)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	a := newAPI(t)
	for _, path := range []string{"/api/admin/agents", "/api/admin/analytics", "/api/admin/settlement?month=2025-11"} {
		assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, path, "").Code, path)
	}
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodPost, "/api/admin/login", `{"password":"errada"}`).Code)
}

func TestCORSPreflight(t *testing.T) {
	a := newAPI(t)
	preflight := func(reqHeaders string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/api/conversion", nil)
		req.Header.Set("Origin", "https://partner.example.com")
		req.Header.Set("Access-Control-Request-Method", "POST")
		req.Header.Set("Access-Control-Request-Headers", reqHeaders)
		rec := httptest.NewRecorder()
		a.handler.ServeHTTP(rec, req)
		return rec
	}

	// navegadores enviam os nomes em minúsculas
	rec := preflight("content-type")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = preflight("authorization,content-type")
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	// rs/cors só aceita nomes em minúsculas e ordenados
	rec = preflight("Content-Type")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestReferralFlow(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodPost, "/api/admin/login", `{"password":"painel-123"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var login auth.LoginResponse
	a.decode(rec, &login)
	a.token = login.AccessToken

	rec = a.do(http.MethodPost, "/api/admin/agents", `{"name":"Kim","phone":"010-1111-2222"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created agent.AgentResponse
	a.decode(rec, &created)
	require.True(t, utils.IsValidAgentID(created.ID))
	assert.Equal(t, "https://example.com/?ref="+created.ID, created.TrackingURL)

	rec = a.do(http.MethodPost, "/api/track/click", `{"agentId":"`+created.ID+`","sessionId":"sess-1","utmSource":"naver"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	conv := `{"agentId":"` + created.ID + `","sessionId":"sess-1","formData":{"phone":"010-1234-5678","name":"Hong"}}`
	rec = a.do(http.MethodPost, "/api/conversion", conv)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = a.do(http.MethodPost, "/api/conversion", conv)
	require.Equal(t, http.StatusOK, rec.Code)

	today := time.Now().In(kst)
	day, month := today.Format("2006-01-02"), today.Format("2006-01")

	rec = a.do(http.MethodGet, "/api/admin/analytics?startDate="+day+"&endDate="+day, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var report struct {
		TotalQuotes     int   `json:"totalQuotes"`
		TotalCommission int64 `json:"totalCommission"`
		AgentStats      []struct {
			Clicks         int64   `json:"clicks"`
			ConversionRate float64 `json:"conversionRate"`
		} `json:"agentStats"`
	}
	a.decode(rec, &report)
	assert.Equal(t, 1, report.TotalQuotes)
	assert.Equal(t, quote.DefaultCommission, report.TotalCommission)
	require.Len(t, report.AgentStats, 1)
	assert.Equal(t, 100.0, report.AgentStats[0].ConversionRate)

	rec = a.do(http.MethodPatch, "/api/admin/settlement/update-commission",
		`{"agentId":"`+created.ID+`","month":"`+month+`","commissionAmount":12000}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = a.do(http.MethodPost, "/api/admin/settlement/complete", `{"month":"`+month+`","isBulk":true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var done settlement.CompleteResponse
	a.decode(rec, &done)
	assert.Equal(t, int64(1), done.SettledCount)

	rec = a.do(http.MethodGet, "/api/admin/settlement?month="+month, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var view settlement.View
	a.decode(rec, &view)
	require.Len(t, view.SettlementData, 1)
	assert.True(t, view.SettlementData[0].IsSettled)
	assert.Equal(t, int64(12000), view.SettlementData[0].Commission)

	rec = a.do(http.MethodDelete, "/api/admin/agents/"+created.ID, "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = a.do(http.MethodPost, "/api/conversion", `{"agentId":"`+created.ID+`","formData":{"name":"x"}}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
