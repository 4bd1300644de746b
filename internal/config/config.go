package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

const (
	defaultDBFileName    = "lms.db"
	defaultArchiveDir    = "archives"
	defaultEnvironment   = "development"
	defaultRetentionDays = 30
	defaultListenAddr    = ":8085"
)

// Config holds resolved configuration for the database, archive store, and
// HTTP server. Values come from CLASSVAULT_* environment variables with
// working-directory defaults.
type Config struct {
	DBPath        string // path to the LMS SQLite database
	ArchiveDir    string // root directory of the blob store
	Environment   string // environment label stamped into snapshot metadata
	RetentionDays int    // archives older than this are swept
	Secret        string // bearer token for the HTTP trigger/status endpoints
	DevMode       bool   // when true, HTTP endpoints accept unauthenticated requests
	ListenAddr    string // address for the HTTP server
}

// Resolve returns the current configuration from the environment, falling
// back to defaults rooted in the working directory.
func Resolve() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DBPath:        filepath.Join(cwd, defaultDBFileName),
		ArchiveDir:    filepath.Join(cwd, defaultArchiveDir),
		Environment:   defaultEnvironment,
		RetentionDays: defaultRetentionDays,
		Secret:        os.Getenv("CLASSVAULT_SECRET"),
		ListenAddr:    defaultListenAddr,
	}

	if v := os.Getenv("CLASSVAULT_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("CLASSVAULT_ARCHIVE_DIR"); v != "" {
		cfg.ArchiveDir = v
	}
	if v := os.Getenv("CLASSVAULT_ENV"); v != "" {
		cfg.Environment = v
	}
	if v := os.Getenv("CLASSVAULT_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("CLASSVAULT_RETENTION_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil || days < 0 {
			return nil, fmt.Errorf("invalid CLASSVAULT_RETENTION_DAYS %q: must be a non-negative integer", v)
		}
		cfg.RetentionDays = days
	}
	if v := os.Getenv("CLASSVAULT_DEV_MODE"); v != "" {
		mode, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid CLASSVAULT_DEV_MODE %q: must be a boolean", v)
		}
		cfg.DevMode = mode
	}

	return cfg, nil
}
