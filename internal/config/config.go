package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds server configuration.
type Config struct {
	// Addr is the listen address for the TCP server.
	Addr         string
	DatabasePath string
	UploadDir    string
	// ReadTimeout bounds idle time between client frames so a stalled peer
	// cannot hold its session and presence entry open forever. Set
	// READ_TIMEOUT=0 to disable it.
	ReadTimeout time.Duration
	Debug       bool
	// SendgridAPIKey enables email notifications. Empty means notifications
	// are logged instead of mailed.
	SendgridAPIKey string
	MailFrom       string
}

// Overrides optionally overrides values from environment variables.
//
// A nil pointer means "use the environment/default value".
type Overrides struct {
	Addr         *string
	DatabasePath *string
	UploadDir    *string
	ReadTimeout  *time.Duration
	Debug        *bool
}

// Load loads server configuration from environment variables and applies any
// explicit overrides.
func Load(overrides Overrides) (*Config, error) {
	port := 5555
	if portStr := os.Getenv("PORT"); portStr != "" {
		if p, err := strconv.Atoi(portStr); err == nil {
			port = p
		}
	}

	addr := fmt.Sprintf(":%d", port)
	if overrides.Addr != nil {
		addr = *overrides.Addr
	}

	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "./learnlive.db"
	}
	if overrides.DatabasePath != nil {
		dbPath = *overrides.DatabasePath
	}

	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "./uploads"
	}
	if overrides.UploadDir != nil {
		uploadDir = *overrides.UploadDir
	}

	readTimeout := 10 * time.Minute
	if timeoutStr := os.Getenv("READ_TIMEOUT"); timeoutStr != "" {
		d, err := time.ParseDuration(timeoutStr)
		if err != nil {
			return nil, fmt.Errorf("invalid READ_TIMEOUT %q: %w", timeoutStr, err)
		}
		readTimeout = d
	}
	if overrides.ReadTimeout != nil {
		readTimeout = *overrides.ReadTimeout
	}

	debug := false
	if debugStr := os.Getenv("DEBUG"); debugStr == "true" || debugStr == "1" {
		debug = true
	}
	if overrides.Debug != nil {
		debug = *overrides.Debug
	}

	mailFrom := os.Getenv("MAIL_FROM")
	if mailFrom == "" {
		mailFrom = "no-reply@learnlive.local"
	}

	return &Config{
		Addr:           addr,
		DatabasePath:   dbPath,
		UploadDir:      uploadDir,
		ReadTimeout:    readTimeout,
		Debug:          debug,
		SendgridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		MailFrom:       mailFrom,
	}, nil
}
