package beacon

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTransport struct {
	events []Event
	err    error
	panics bool
}

func (r *recordingTransport) Send(ev Event) error {
	if r.panics {
		panic("rede indisponível")
	}
	r.events = append(r.events, ev)
	return r.err
}

type clock struct{ now time.Time }

func newClock() *clock {
	return &clock{now: time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time { return c.now }

func (c *clock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func landing(query string) string {
	return "https://example.com/cleaning?" + query
}

func quoteForm(fields map[string]any) Form {
	return Form{Action: "/quote/submit", Fields: fields}
}

func ctaButton() Button {
	return Button{ID: "quote-cta"}
}

func newTracker(c *clock, tr Transport) (*Tracker, *MemoryCookies) {
	cookies := NewMemoryCookies(c.Now)
	return NewTracker(Config{}, cookies, c.Now, tr), cookies
}

func TestInitWithRefPersistsAttributionAndEmitsClick(t *testing.T) {
	c := newClock()
	tr := &recordingTransport{}
	tk, cookies := newTracker(c, tr)

	tk.Init(landing("ref=Ab3kM9&utm_source=naver&utm_campaign=fall"), "https://blog.example.com/post")

	assert.Equal(t, "Ab3kM9", tk.AgentID())
	_, ok := cookies.Get(AttributionCookie)
	assert.True(t, ok)

	require.Len(t, tr.events, 1)
	ev := tr.events[0]
	assert.Equal(t, EventClick, ev.Type)
	assert.Equal(t, "Ab3kM9", ev.AgentID)
	assert.Equal(t, "naver", ev.UTMSource)
	assert.Equal(t, "fall", ev.UTMCampaign)
	assert.Equal(t, "https://blog.example.com/post", ev.Referrer)
	assert.NotEmpty(t, ev.SessionID)
	assert.Equal(t, ev.SessionID, tk.SessionID())
}

func TestAttributionSurvivesNextPageView(t *testing.T) {
	c := newClock()
	tr := &recordingTransport{}
	cookies := NewMemoryCookies(c.Now)

	first := NewTracker(Config{}, cookies, c.Now, tr)
	first.Init(landing("ref=Ab3kM9"), "")
	sid := first.SessionID()

	c.Advance(2 * time.Hour)
	second := NewTracker(Config{}, cookies, c.Now, tr)
	second.Init("https://example.com/contact", "")

	assert.Equal(t, "Ab3kM9", second.AgentID())
	assert.Equal(t, sid, second.SessionID())
	assert.Len(t, tr.events, 1, "sem ref não há novo clique")
}

func TestCookieLifetimes(t *testing.T) {
	c := newClock()
	tk, cookies := newTracker(c, &recordingTransport{})
	tk.Init(landing("ref=Ab3kM9"), "")
	sid := tk.SessionID()

	c.Advance(25 * time.Hour)
	assert.NotEqual(t, sid, tk.SessionID(), "sessão dura um dia")

	c.Advance(30 * 24 * time.Hour)
	_, ok := cookies.Get(AttributionCookie)
	assert.False(t, ok, "atribuição dura trinta dias")
}

func TestCorruptAttributionCookieIsDropped(t *testing.T) {
	c := newClock()
	tr := &recordingTransport{}
	tk, cookies := newTracker(c, tr)
	cookies.Set(AttributionCookie, "{not json", time.Hour)

	tk.Init("https://example.com/", "")

	assert.Equal(t, "", tk.AgentID())
	_, ok := cookies.Get(AttributionCookie)
	assert.False(t, ok)
	assert.False(t, tk.FormSubmitted(quoteForm(map[string]any{"phone": "01012345678"})))
	assert.False(t, tk.ButtonClicked(ctaButton()))
	assert.Empty(t, tr.events)
}

func TestInvalidRefIsIgnored(t *testing.T) {
	c := newClock()
	tr := &recordingTransport{}
	tk, _ := newTracker(c, tr)

	tk.Init(landing("ref=O0lI1x"), "")
	assert.Equal(t, "", tk.AgentID())
	assert.Empty(t, tr.events)
}

func TestFormMatching(t *testing.T) {
	c := newClock()
	tr := &recordingTransport{}
	tk, _ := newTracker(c, tr)
	tk.Init(landing("ref=Ab3kM9"), "")
	tr.events = nil

	assert.False(t, tk.FormSubmitted(Form{Action: "/newsletter", Fields: map[string]any{"email": "a@b.c"}}))
	assert.True(t, tk.FormSubmitted(Form{Action: "/submit", Attributes: map[string]string{"class": "견적-form"}}))
	assert.True(t, tk.FormSubmitted(Form{Action: "/Request-ESTIMATE", Fields: map[string]any{"phone": "010"}}))

	require.Len(t, tr.events, 2)
	assert.Equal(t, EventConversion, tr.events[0].Type)
	assert.Equal(t, map[string]any{"formAction": "/submit"}, tr.events[0].FormData)
	assert.Equal(t, map[string]any{"phone": "010"}, tr.events[1].FormData)
}

func TestButtonSuppressedWhileSubmitPending(t *testing.T) {
	c := newClock()
	tr := &recordingTransport{}
	tk, _ := newTracker(c, tr)
	tk.Init(landing("ref=Ab3kM9"), "")
	tr.events = nil

	require.True(t, tk.FormSubmitted(quoteForm(map[string]any{"name": "Hong"})))
	assert.Equal(t, StatePending, tk.State())

	c.Advance(200 * time.Millisecond)
	assert.False(t, tk.ButtonClicked(ctaButton()))
	assert.Len(t, tr.events, 1)

	c.Advance(300 * time.Millisecond)
	assert.Equal(t, StateIdle, tk.State())
	assert.True(t, tk.ButtonClicked(ctaButton()))
	require.Len(t, tr.events, 2)
	assert.Equal(t, "cta_button", tr.events[1].FormData["source"])
}

func TestButtonRules(t *testing.T) {
	c := newClock()
	tr := &recordingTransport{}
	tk, _ := newTracker(c, tr)
	tk.Init(landing("ref=Ab3kM9"), "")
	tr.events = nil

	form := quoteForm(nil)
	assert.False(t, tk.ButtonClicked(Button{ID: "quote-cta", Form: &form}), "dentro de formulário de orçamento")
	assert.False(t, tk.ButtonClicked(Button{ID: "other"}))
	assert.True(t, tk.ButtonClicked(Button{ID: "quote-cta", Form: &Form{Action: "/search"}}))
	assert.Len(t, tr.events, 1)
}

func TestFailuresNeverReachThePage(t *testing.T) {
	c := newClock()
	tk, _ := newTracker(c, &recordingTransport{err: errors.New("offline")})
	assert.NotPanics(t, func() { tk.Init(landing("ref=Ab3kM9"), "") })
	assert.True(t, tk.ButtonClicked(ctaButton()))

	broken, _ := newTracker(c, &recordingTransport{panics: true})
	assert.NotPanics(t, func() {
		broken.Init(landing("ref=Ab3kM9"), "")
		broken.FormSubmitted(quoteForm(map[string]any{"a": 1}))
		broken.ButtonClicked(ctaButton())
	})

	nilCookies := NewTracker(Config{}, nil, c.Now, nil)
	assert.NotPanics(t, func() {
		nilCookies.Init(landing("ref=Ab3kM9"), "")
		_ = nilCookies.SessionID()
	})
}
