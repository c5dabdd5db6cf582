package beacon

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type received struct {
	path string
	body map[string]any
}

func TestHTTPTransportPostsInBackground(t *testing.T) {
	release := make(chan struct{})
	got := make(chan received, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)
		got <- received{path: r.URL.Path, body: body}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()
	defer close(release)

	tr := NewHTTPTransport(srv.URL + "/")

	start := time.Now()
	require.NoError(t, tr.Send(Event{Type: EventClick, AgentID: "Ab3kM9", SessionID: "sid", UTMSource: "naver"}))
	require.NoError(t, tr.Send(Event{Type: EventConversion, AgentID: "Ab3kM9", SessionID: "sid", FormData: map[string]any{"phone": "01012345678"}}))
	assert.Less(t, time.Since(start), time.Second, "Send não pode esperar a resposta")

	release <- struct{}{}
	release <- struct{}{}

	byPath := map[string]map[string]any{}
	for i := 0; i < 2; i++ {
		select {
		case r := <-got:
			byPath[r.path] = r.body
		case <-time.After(2 * time.Second):
			t.Fatal("evento não chegou")
		}
	}
	assert.Equal(t, "naver", byPath["/api/track/click"]["utmSource"])
	assert.Equal(t, "quote_request", byPath["/api/conversion"]["conversionType"])
	assert.Equal(t, map[string]any{"phone": "01012345678"}, byPath["/api/conversion"]["formData"])
}

func TestHTTPTransportRejectsUnknownEvent(t *testing.T) {
	assert.Error(t, NewHTTPTransport("http://localhost").Send(Event{Type: "scroll"}))
}

func TestConfigHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	ConfigHandler(Config{SessionTTL: 2 * time.Hour})(rec, httptest.NewRequest(http.MethodGet, "/api/track/config", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got configResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 7200, got.SessionTTLSeconds)
	assert.Equal(t, 30*24*3600, got.AttributionTTLSeconds)
	assert.Equal(t, int64(500), got.SuppressWindowMs)
	assert.Equal(t, []string{"quote", "estimate", "견적"}, got.Keywords)
}
