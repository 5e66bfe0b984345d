// Package config provides YAML-based server configuration loading
// for the randomchat matchmaking server.
package config

import (
	"fmt"
	"time"
)

// Config contains the full server configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Rooms  []RoomConfig `yaml:"rooms"`
}

// ServerConfig defines listener and persistence parameters.
type ServerConfig struct {
	Address   string          `yaml:"address"`
	DBPath    string          `yaml:"db_path"`
	KeepAlive KeepAliveConfig `yaml:"keep_alive"`
}

// KeepAliveConfig defines TCP keep-alive probing for client connections.
// A dead peer is declared after Idle + Count*Interval without a reply.
type KeepAliveConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Idle     time.Duration `yaml:"idle"`
	Interval time.Duration `yaml:"interval"`
	Count    int           `yaml:"count"`
}

// RoomConfig describes a single topic room offered to clients.
type RoomConfig struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Validate checks the configuration for values the server cannot run with.
func (c Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server.address must not be empty")
	}
	if len(c.Rooms) == 0 {
		return fmt.Errorf("at least one room must be configured")
	}
	seen := make(map[string]bool, len(c.Rooms))
	for i, r := range c.Rooms {
		if r.Name == "" {
			return fmt.Errorf("rooms[%d]: name must not be empty", i)
		}
		if seen[r.Name] {
			return fmt.Errorf("rooms[%d]: duplicate room name %q", i, r.Name)
		}
		seen[r.Name] = true
	}
	if c.Server.KeepAlive.Enabled {
		if c.Server.KeepAlive.Idle <= 0 || c.Server.KeepAlive.Interval <= 0 || c.Server.KeepAlive.Count <= 0 {
			return fmt.Errorf("keep_alive: idle, interval and count must be positive when enabled")
		}
	}
	return nil
}
