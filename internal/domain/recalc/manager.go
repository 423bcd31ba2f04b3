package recalc

import (
	"errors"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

const DefaultMaxSessions = 1024

var ErrClientIDRequired = errors.New("client id required")

// Manager guarda una Session por cliente. Las menos usadas se descartan;
// lo persistido sigue en el store y se recarga en el próximo pedido.
type Manager struct {
	deps Deps

	mu       sync.Mutex
	sessions *lru.Cache[string, *Session]
}

func NewManager(deps Deps, maxSessions int) (*Manager, error) {
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	c, err := lru.New[string, *Session](maxSessions)
	if err != nil {
		return nil, err
	}
	return &Manager{deps: deps, sessions: c}, nil
}

func (m *Manager) Session(clientID string) (*Session, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return nil, ErrClientIDRequired
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions.Get(clientID); ok {
		return s, nil
	}
	s := NewSession(clientID, m.deps)
	m.sessions.Add(clientID, s)
	return s, nil
}

func (m *Manager) Len() int {
	return m.sessions.Len()
}
