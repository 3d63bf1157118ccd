package gameserver

import (
	"sync"

	"github.com/udisondev/rs2go/internal/model"
)

// ClientManager maps players in the world to their connections.
// Thread-safe for concurrent access.
type ClientManager struct {
	mu      sync.RWMutex
	clients map[*model.Player]*GameClient
	// connected counts live connections, including ones still in the handshake.
	connected int
}

// NewClientManager creates a new client manager.
func NewClientManager() *ClientManager {
	return &ClientManager{
		clients: make(map[*model.Player]*GameClient, 256),
	}
}

// Register associates a Player with a GameClient.
// Called by the engine when the player enters the world.
func (cm *ClientManager) Register(player *model.Player, client *GameClient) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.clients[player] = client
}

// Unregister removes the Player→Client association.
func (cm *ClientManager) Unregister(player *model.Player) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	delete(cm.clients, player)
}

// Client returns the client for given player.
// Returns nil if not found.
func (cm *ClientManager) Client(player *model.Player) *GameClient {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.clients[player]
}

// PlayerCount returns number of players bound to a connection.
func (cm *ClientManager) PlayerCount() int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.clients)
}

// Connected returns the number of open connections.
func (cm *ClientManager) Connected() int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.connected
}

func (cm *ClientManager) connOpened() {
	cm.mu.Lock()
	cm.connected++
	cm.mu.Unlock()
}

func (cm *ClientManager) connClosed() {
	cm.mu.Lock()
	cm.connected--
	cm.mu.Unlock()
}

// ForEachClient iterates over all players with a connection.
// If fn returns false, iteration stops.
func (cm *ClientManager) ForEachClient(fn func(*model.Player, *GameClient) bool) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	for player, client := range cm.clients {
		if !fn(player, client) {
			return
		}
	}
}
