package config

import "time"

// Snapshot is an immutable, versioned view of a loaded configuration.
type Snapshot struct {
	Generation int64     `json:"generation"`
	ReceivedAt time.Time `json:"receivedAt"`
	Path       string    `json:"path"`
	Config     *Config   `json:"config"`
}
