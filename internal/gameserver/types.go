package gameserver

// ClientConnectionState represents the state machine for a game client connection.
type ClientConnectionState int32

const (
	ClientStateConnected    ClientConnectionState = iota // TCP connected, waiting for the login request
	ClientStateHandshake                                 // server key sent, waiting for the login block
	ClientStateEntering                                  // login accepted, queued for the next tick
	ClientStateInGame                                    // player registered, receives view updates
	ClientStateDisconnected                              // connection closed
)

func (s ClientConnectionState) String() string {
	switch s {
	case ClientStateConnected:
		return "CONNECTED"
	case ClientStateHandshake:
		return "HANDSHAKE"
	case ClientStateEntering:
		return "ENTERING"
	case ClientStateInGame:
		return "IN_GAME"
	case ClientStateDisconnected:
		return "DISCONNECTED"
	default:
		return "UNKNOWN"
	}
}
