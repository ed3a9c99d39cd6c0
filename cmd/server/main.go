package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/learnlive/server/internal/config"
	"github.com/learnlive/server/internal/handlers"
	"github.com/learnlive/server/internal/mail"
	"github.com/learnlive/server/internal/notify"
	"github.com/learnlive/server/internal/presence"
	"github.com/learnlive/server/internal/router"
	"github.com/learnlive/server/internal/server"
	"github.com/learnlive/server/internal/session"
	"github.com/learnlive/server/internal/store"
	"github.com/learnlive/server/internal/transfer"
	"github.com/learnlive/server/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load(config.Overrides{})
	if err != nil {
		logger.Errorf("Failed to load config: %v", err)
		os.Exit(1)
	}

	if cfg.Debug {
		logger.SetLevel(logger.LevelDebug)
	}

	// Open database
	logger.Infof("Opening database: %s", cfg.DatabasePath)
	db, err := store.Open(cfg.DatabasePath)
	if err != nil {
		logger.Errorf("Failed to open database: %v", err)
		os.Exit(1)
	}
	defer db.Close()

	// Chunked transfer state and upload storage
	tracker, err := transfer.NewTracker(cfg.UploadDir)
	if err != nil {
		logger.Errorf("Failed to prepare upload directory: %v", err)
		os.Exit(1)
	}

	// Registries shared by every connection
	sessions := session.NewRegistry()
	online := presence.NewRegistry()

	// Outbound email: Sendgrid when configured, console otherwise
	var sender mail.Sender = mail.ConsoleSender{}
	if cfg.SendgridAPIKey != "" {
		sender = mail.NewSendgridSender(cfg.SendgridAPIKey, "LearnLive", cfg.MailFrom)
		logger.Infof("Email notifications enabled via Sendgrid")
	}
	notifier := notify.New(online, db, sender)

	// Wire message handlers
	deps := handlers.NewDeps(db, db, db, db, db, db, notifier, sessions, online, tracker, cfg.UploadDir)
	routes := router.New(sessions)
	handlers.Register(routes, deps)

	// Stop accepting on SIGINT/SIGTERM; in-flight connections finish their
	// current frame and clean up.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(server.Options{
		Addr:        cfg.Addr,
		ReadTimeout: cfg.ReadTimeout,
	}, sessions, online, tracker, routes)

	logger.Infof("LearnLive server starting on %s", cfg.Addr)
	logger.Infof("Upload directory: %s", cfg.UploadDir)

	if err := srv.ListenAndServe(ctx); err != nil {
		logger.Errorf("Server failed: %v", err)
		os.Exit(1)
	}
	logger.Infof("Server stopped")
}
