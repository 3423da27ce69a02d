// Package config holds the already-resolved settings the core components
// need. Full multi-source config-file loading is an external collaborator
// (SPEC_FULL.md AMBIENT STACK); Load here only covers local/dev use from
// the environment, mirroring the teacher's envOrDefault convention.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the values the manager, server, and remote client need.
type Config struct {
	RemoteURL          string
	TokenID            string
	Token              string
	InsecureSkipVerify bool

	RootDirectory   string
	BackupDirectory string

	BootServersPerPage int
	CheckpointInterval time.Duration
	BootGracePeriod    time.Duration

	ArchivePoolSize int
}

// Load builds a Config from environment variables, applying the same
// defaults a fresh install would want.
func Load() Config {
	return Config{
		RemoteURL:          envOrDefault("NODECORE_REMOTE_URL", "http://localhost"),
		TokenID:            envOrDefault("NODECORE_TOKEN_ID", ""),
		Token:              envOrDefault("NODECORE_TOKEN", ""),
		InsecureSkipVerify: envOrDefaultBool("NODECORE_INSECURE_SKIP_VERIFY", false),

		RootDirectory:   envOrDefault("NODECORE_ROOT_DIRECTORY", "/var/lib/nodecore"),
		BackupDirectory: envOrDefault("NODECORE_BACKUP_DIRECTORY", "/var/lib/nodecore/backups"),

		BootServersPerPage: envOrDefaultInt("NODECORE_BOOT_SERVERS_PER_PAGE", 4),
		CheckpointInterval: time.Duration(envOrDefaultInt("NODECORE_CHECKPOINT_INTERVAL_SECONDS", 10)) * time.Second,
		BootGracePeriod:    time.Duration(envOrDefaultInt("NODECORE_BOOT_GRACE_SECONDS", 5)) * time.Second,

		ArchivePoolSize: envOrDefaultInt("NODECORE_ARCHIVE_POOL_SIZE", 4),
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envOrDefaultBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
