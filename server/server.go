package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Daskott/folio/server/contact"
	"github.com/Daskott/folio/server/logger"
	"github.com/Daskott/folio/server/models"
	"github.com/Daskott/folio/server/twilio"
	"github.com/Daskott/folio/shared"
	"go.uber.org/zap"
)

// MessageStore is what the web layer needs from the message store.
type MessageStore interface {
	contact.MessageStore
	Ping(ctx context.Context) error
}

// Deps holds everything NewRouter wires into the handlers.
type Deps struct {
	Store    MessageStore
	Notifier contact.Notifier
	Config   *shared.ServerConfig
	DevMode  bool
	Logger   *zap.SugaredLogger
}

// Start opens the message store, serves the site on the configured listener and
// blocks until SIGINT or SIGTERM, then shuts down gracefully.
func Start(config *shared.ServerConfig, devMode bool) {
	logg := logger.NewLogger(devMode)
	defer logg.Sync()

	store, err := models.OpenStore(config.Store, logg)
	fatalOnError(logg, err)

	if config.Store.AutoMigrate {
		fatalOnError(logg, store.AutoMigrate())
	}

	var notifier contact.Notifier
	if config.Twilio.Enabled() {
		notifier = twilio.NewClient(config.Twilio, config.Site.Name)
		logg.Infof("Owner notifications enabled for %v", config.Twilio.OwnerNumber)
	}

	router, err := NewRouter(Deps{
		Store:    store,
		Notifier: notifier,
		Config:   config,
		DevMode:  devMode,
		Logger:   logg,
	})
	fatalOnError(logg, err)

	server := &http.Server{
		Addr:              config.Listener.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go serve(logg, server)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	cleanup(logg, server, store)
}
