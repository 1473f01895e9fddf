package core

import "time"

// RuntimeConfig is what the terminal host needs besides the game
// configuration.
type RuntimeConfig struct {
	ScreenW    int           // Screen width in cells
	ScreenH    int           // Screen height in cells
	TickRate   int           // Host ticks per second
	HoldWindow time.Duration // How long a key counts as held after its last repeat
}

// DefaultConfig returns a RuntimeConfig for an 80x24 terminal.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:    80,
		ScreenH:    24,
		TickRate:   60,
		HoldWindow: DefaultHoldWindow,
	}
}
