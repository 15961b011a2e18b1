package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/render"
	"github.com/joho/godotenv"
	"github.com/mediastash/photoshare/pkg/photoshare/api"
	"github.com/mediastash/photoshare/pkg/photoshare/config"
	"github.com/tendant/chi-demo/app"
)

func main() {
	// A .env file is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to read configuration", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()
	rt, err := cfg.BuildService(ctx)
	if err != nil {
		slog.Error("Failed to build service", "err", err)
		os.Exit(1)
	}

	server := app.DefaultApp()

	app.RoutesHealthz(server.R)
	app.RoutesHealthzReady(server.R)

	server.R.Get("/", func(w http.ResponseWriter, r *http.Request) {
		render.PlainText(w, r, "Photo share API")
	})

	photosHandler := api.NewPhotosHandler(rt.Service, cfg.Server.MaxUploadBytes)
	server.R.Mount("/photos", photosHandler.Routes())

	if cfg.Reconciler.Enabled {
		sweepCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		rt.Sweeper.RunPeriodic(sweepCtx, cfg.Reconciler.Interval)
		slog.Info("Reconciler enabled",
			"interval", cfg.Reconciler.Interval, "grace", cfg.Reconciler.Grace)
	}

	defer rt.Close()

	server.Run()
}
