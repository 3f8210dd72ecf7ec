package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/tunelog/tunelog/config"
	"github.com/tunelog/tunelog/db"
	"github.com/tunelog/tunelog/service/enrich"
	"github.com/tunelog/tunelog/service/nowplaying"
	"github.com/tunelog/tunelog/service/versions"
	"github.com/tunelog/tunelog/service/ytmusic"
)

type application struct {
	logger   *slog.Logger
	store    *db.DB
	provider *ytmusic.Client
	tracker  *nowplaying.Tracker
	enricher *enrich.Service
	versions *versions.Service
}

func main() {
	config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	store, err := db.New(viper.GetString("db.path"))
	if err != nil {
		logger.Error("connecting to database", "error", err.Error())
		os.Exit(1)
	}
	if err := store.Initialize(); err != nil {
		logger.Error("initializing database", "error", err.Error())
		os.Exit(1)
	}

	provider := ytmusic.New(viper.GetString("auth.headers_path"))

	settings, err := store.LoadSettings()
	if err != nil {
		logger.Error("loading settings", "error", err.Error())
		os.Exit(1)
	}

	tracker := nowplaying.NewTracker(provider, store, settings.MaxRecent)

	app := &application{
		logger:   logger,
		store:    store,
		provider: provider,
		tracker:  tracker,
		enricher: enrich.New(provider),
		versions: versions.New(provider),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	interval := time.Duration(viper.GetInt("tracker.interval")) * time.Second
	go tracker.Run(ctx, interval)

	addr := fmt.Sprintf("%s:%s", viper.GetString("server.host"), viper.GetString("server.port"))
	srv := &http.Server{
		Addr:         addr,
		Handler:      app.routes(),
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	logger.Info("starting server", "addr", addr)
	err = srv.ListenAndServe()
	logger.Error(err.Error())
	os.Exit(1)
}
