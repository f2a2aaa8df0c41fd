package websocket

import (
	"sync"

	"campusmarket/pkg/errors"
	"campusmarket/pkg/logger"
)

// Manager is the live connection registry. One instance is created at
// process start and shared by the chat and notification use cases.
type Manager struct {
	clients map[string]*Client
	byUser  map[string]map[string]*Client
	// fan-out holds the write lock so every client sees frames in one order
	mutex sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		clients: make(map[string]*Client),
		byUser:  make(map[string]map[string]*Client),
	}
}

func (m *Manager) Register(client *Client) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.clients[client.ID] = client
	if _, ok := m.byUser[client.UserID()]; !ok {
		m.byUser[client.UserID()] = make(map[string]*Client)
	}
	m.byUser[client.UserID()][client.ID] = client

	logger.Info("Client registered: %s (user %s)", client.ID, client.UserID())
}

// Unregister removes client and closes its send buffer. Unknown clients are ignored.
func (m *Manager) Unregister(client *Client) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.remove(client) {
		logger.Info("Client unregistered: %s (user %s)", client.ID, client.UserID())
	}
}

func (m *Manager) remove(client *Client) bool {
	if _, ok := m.clients[client.ID]; !ok {
		return false
	}
	delete(m.clients, client.ID)
	if userClients, ok := m.byUser[client.UserID()]; ok {
		delete(userClients, client.ID)
		if len(userClients) == 0 {
			delete(m.byUser, client.UserID())
		}
	}
	close(client.Send)
	return true
}

// deliver must be called with the write lock held.
func (m *Manager) deliver(client *Client, frame []byte) bool {
	select {
	case client.Send <- frame:
		return true
	default:
		err := errors.TransportFailure(nil)
		logger.Warn("Pruning client %s (user %s): %v", client.ID, client.UserID(), err)
		m.remove(client)
		return false
	}
}

// Broadcast sends frame to every live connection.
func (m *Manager) Broadcast(frame []byte) {
	m.BroadcastExcept("", frame)
}

// BroadcastExcept sends frame to every live connection except the one with clientID.
func (m *Manager) BroadcastExcept(clientID string, frame []byte) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for id, client := range m.clients {
		if id == clientID {
			continue
		}
		m.deliver(client, frame)
	}
}

// SendTo delivers frame to a single connection and reports whether it was queued.
func (m *Manager) SendTo(client *Client, frame []byte) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, ok := m.clients[client.ID]; !ok {
		return false
	}
	return m.deliver(client, frame)
}

// SendToUsers delivers frame to every connection of the given users.
func (m *Manager) SendToUsers(userIDs []string, frame []byte) int {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	sent := 0
	for _, userID := range userIDs {
		for _, client := range m.byUser[userID] {
			if m.deliver(client, frame) {
				sent++
			}
		}
	}
	return sent
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.clients)
}
