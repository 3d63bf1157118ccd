package world

import "errors"

// ErrAlreadyOnline is returned when a player with the same name is logged in.
var ErrAlreadyOnline = errors.New("player already online")
