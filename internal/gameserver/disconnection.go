package gameserver

import (
	"log/slog"
)

// OnDisconnection handles a closed connection (TCP loss, logout button,
// kick). The player leaves the world at the next tick; until then every
// viewer still sees it, then each pass evicts it.
func OnDisconnection(engine *Engine, client *GameClient) {
	player := client.Player()
	if player == nil {
		// Never entered the world or already removed by the engine
		return
	}

	slog.Info("player disconnected",
		"character", player.Name(),
		"slot", player.Slot(),
		"client", client.IP(),
	)
	engine.Logout(player)
}
