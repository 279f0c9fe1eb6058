package push

import (
	"log/slog"
	"sync"

	"github.com/coder/websocket"
)

// ConnManager tracks the active WebSocket connection per learner.
type ConnManager struct {
	mu     sync.RWMutex
	active map[string]*websocket.Conn
}

// NewConnManager creates a new connection manager.
func NewConnManager() *ConnManager {
	return &ConnManager{active: make(map[string]*websocket.Conn)}
}

// GetActive returns the active connection for a learner, or nil.
func (m *ConnManager) GetActive(identity string) *websocket.Conn {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active[identity]
}

// Register adds a connection for a learner, closing any previous one.
func (m *ConnManager) Register(identity string, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.active[identity]; ok && existing != conn {
		_ = existing.Close(websocket.StatusNormalClosure, "connection replaced")
	}
	m.active[identity] = conn
	slog.Info("Push connection registered", "identity", identity)
}

// Unregister removes a connection if it is still the active one.
func (m *ConnManager) Unregister(identity string, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if current, ok := m.active[identity]; ok && current == conn {
		delete(m.active, identity)
		slog.Info("Push connection unregistered", "identity", identity)
	}
}

// CloseAll terminates every active connection.
func (m *ConnManager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for identity, conn := range m.active {
		_ = conn.Close(websocket.StatusNormalClosure, "server shutting down")
		delete(m.active, identity)
	}
}
