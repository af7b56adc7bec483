package bot

import (
	"time"
)

// Config represents the configuration for the bot
type Config struct {
	Token string
	// Long-poll timeout for getUpdates
	UpdateTimeout time.Duration
	// Debug enables request logging inside the telegram client
	Debug bool
}

// DefaultConfig returns the default bot configuration
func DefaultConfig(token string) Config {
	return Config{
		Token:         token,
		UpdateTimeout: 60 * time.Second,
	}
}
