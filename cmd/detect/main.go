package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"object-detection-demo/internal/application/usecases"
	"object-detection-demo/internal/bootstrap"
	"object-detection-demo/internal/config"
	"object-detection-demo/internal/domain/valueobjects"
	infraservices "object-detection-demo/internal/infrastructure/services"
)

var validExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp"}

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the YAML config file")
	photoSize := flag.String("size", string(valueobjects.PhotoSizeFull), "photo size: small, medium, large or full")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <image or directory>\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		zerolog.New(os.Stderr).Fatal().Err(err).Msg("Failed to load config")
	}
	cfg.Capture.PhotoSize = *photoSize
	// Running the command is the user's consent.
	cfg.Permissions.Camera = valueobjects.PermissionGranted.String()
	cfg.Permissions.Storage = valueobjects.PermissionGranted.String()

	log := cfg.Log.NewLogger(os.Stderr)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid config")
	}

	files, err := collect(flag.Arg(0))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read input")
	}

	queue := make(chan string, len(files))
	for _, file := range files {
		queue <- file
	}
	close(queue)

	chooser := func(ctx context.Context) (string, error) {
		return <-queue, nil
	}

	ctx := context.Background()
	app, err := bootstrap.New(ctx, cfg, bootstrap.Collaborators{
		Media:   infraservices.NewFileMediaService("", chooser, log),
		Dialogs: infraservices.NewConsoleDialogService(os.Stderr),
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize")
	}

	failed := false
	for _, file := range files {
		output, err := app.UseCase.Execute(ctx, usecases.CaptureInput{Source: valueobjects.SourceGallery})
		if err != nil {
			log.Error().Err(err).Str("file", file).Msg("Detection could not run")
			failed = true
			continue
		}

		if len(files) > 1 {
			fmt.Printf("== %s\n", file)
		}
		fmt.Print(output.ResultText)

		if output.Outcome != usecases.OutcomeCompleted {
			failed = true
		}
	}

	app.Close()
	if failed {
		os.Exit(1)
	}
}

// collect returns the image itself or the images directly inside a directory.
func collect(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && slices.Contains(validExtensions, strings.ToLower(filepath.Ext(entry.Name()))) {
			files = append(files, filepath.Join(path, entry.Name()))
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no images in %s", path)
	}
	return files, nil
}
