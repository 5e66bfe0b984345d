package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/randomchat.yaml
var defaultYAML []byte

// Default returns the hardcoded fallback configuration, used when the
// embedded YAML cannot be parsed.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Address: ":6000",
			DBPath:  "~/.randomchat/chats.db",
			KeepAlive: KeepAliveConfig{
				Enabled:  true,
				Idle:     10 * time.Second,
				Interval: 5 * time.Second,
				Count:    5,
			},
		},
		Rooms: []RoomConfig{
			{Name: "Climate change", Description: "Melting ice caps, weather and what to do about it"},
			{Name: "Travel related", Description: "Trips, destinations and stories from the road"},
			{Name: "Horror movies", Description: "Scary films, classics and new releases"},
		},
	}
}

// DefaultYAML returns the embedded default YAML configuration.
func DefaultYAML() []byte {
	return defaultYAML
}
