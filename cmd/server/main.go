package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	appservices "object-detection-demo/internal/application/services"
	"object-detection-demo/internal/bootstrap"
	"object-detection-demo/internal/config"
	"object-detection-demo/internal/infrastructure/api"
	infraservices "object-detection-demo/internal/infrastructure/services"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		zerolog.New(os.Stderr).Fatal().Err(err).Msg("Failed to load config")
	}
	log := cfg.Log.NewLogger(os.Stderr)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Gallery images arrive with each /pick request.
	media := infraservices.NewFileMediaService(cfg.Capture.CameraDir, nil, log)
	dialogs := infraservices.NewRecordingDialogService()

	app, err := bootstrap.New(ctx, cfg, bootstrap.Collaborators{
		Media:     media,
		Dialogs:   dialogs,
		SpeechOut: os.Stdout,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize")
	}
	defer app.Close()

	handler := api.NewCaptureHandler(app.UseCase, appservices.NewParameterService(), app.State, dialogs, log)

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           api.NewRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	log.Info().
		Str("port", cfg.Server.Port).
		Str("detector", app.Detector.Name()).
		Str("speech", cfg.Speech.Backend).
		Str("camera_dir", cfg.Capture.CameraDir).
		Msg("Starting server")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Failed to start server")
	}
}
