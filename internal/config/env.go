package config

import (
	"os"
	"strconv"
)

// FromEnv overlays LEDGERDB_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("LEDGERDB_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("LEDGERDB_SLOT_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.SlotSize = n
		}
	}
	if v := os.Getenv("LEDGERDB_FSYNC"); v != "" {
		cfg.Fsync = v
	}
	if v := os.Getenv("LEDGERDB_TRUNCATE_TORN_PAGE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.TruncateTornPage = b
		}
	}
	if v := os.Getenv("LEDGERDB_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}
