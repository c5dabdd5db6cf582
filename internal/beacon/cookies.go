package beacon

import (
	"sync"
	"time"
)

// MemoryCookies é um CookieStore em memória que respeita a validade dos cookies.
type MemoryCookies struct {
	mu    sync.Mutex
	clock Clock
	items map[string]memoryCookie
}

type memoryCookie struct {
	value   string
	expires time.Time
}

func NewMemoryCookies(clock Clock) *MemoryCookies {
	if clock == nil {
		clock = time.Now
	}
	return &MemoryCookies{clock: clock, items: map[string]memoryCookie{}}
}

func (m *MemoryCookies) Get(name string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.items[name]
	if !ok {
		return "", false
	}
	if !m.clock().Before(c.expires) {
		delete(m.items, name)
		return "", false
	}
	return c.value, true
}

func (m *MemoryCookies) Set(name, value string, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[name] = memoryCookie{value: value, expires: m.clock().Add(ttl)}
}

func (m *MemoryCookies) Delete(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, name)
}
