package config

import (
	"time"
)

// Config holds the application configuration.
type Config struct {
	MongoURI      string
	MongoDatabase string
	// RemoteEnabled is set when a MongoDB location was configured explicitly.
	RemoteEnabled      bool
	CachePath          string
	UserID             string
	UnprocessedDir     string
	ProcessedDir       string
	MoveProcessedFiles bool
	SyntheticDataDir   string
	SyntheticDataRows  int
	Timeout            time.Duration
}
