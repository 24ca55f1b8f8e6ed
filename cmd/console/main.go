package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/rs/zerolog"

	"object-detection-demo/internal/application/usecases"
	"object-detection-demo/internal/bootstrap"
	"object-detection-demo/internal/config"
	"object-detection-demo/internal/domain/valueobjects"
	infraservices "object-detection-demo/internal/infrastructure/services"
)

const help = `commands:
  take         take a photo with the camera
  pick [path]  pick a photo from the gallery
  state        show the current screen
  quit         exit`

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		zerolog.New(os.Stderr).Fatal().Err(err).Msg("Failed to load config")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
		AutoComplete: readline.NewPrefixCompleter(
			readline.PcItem("take"),
			readline.PcItem("pick"),
			readline.PcItem("state"),
			readline.PcItem("quit"),
		),
	})
	if err != nil {
		zerolog.New(os.Stderr).Fatal().Err(err).Msg("Failed to open terminal")
	}
	defer rl.Close()

	log := cfg.Log.NewLogger(rl.Stderr())
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid config")
	}

	prompter := infraservices.NewReadlinePrompter(rl)
	chooser := &pathChooser{prompter: prompter}

	ctx := context.Background()
	app, err := bootstrap.New(ctx, cfg, bootstrap.Collaborators{
		Permissions: infraservices.NewPromptPermissionService(prompter, log),
		Media:       infraservices.NewFileMediaService(cfg.Capture.CameraDir, chooser.Choose, log),
		Dialogs:     infraservices.NewConsoleDialogService(rl.Stdout()),
		SpeechOut:   rl.Stdout(),
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize")
	}
	defer app.Close()

	out := rl.Stdout()
	fmt.Fprintln(out, help)

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if len(line) == 0 {
				return
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			return
		}

		command, argument, _ := strings.Cut(strings.TrimSpace(line), " ")
		switch strings.ToLower(command) {
		case "":
		case "take":
			run(ctx, app.UseCase, valueobjects.SourceCamera, out)
		case "pick":
			chooser.pending = strings.TrimSpace(argument)
			run(ctx, app.UseCase, valueobjects.SourceGallery, out)
		case "state":
			printState(out, app.UseCase)
		case "quit", "exit":
			return
		default:
			fmt.Fprintln(out, help)
		}
	}
}

func run(ctx context.Context, useCase *usecases.CaptureAnalysisUseCase, source valueobjects.Source, out io.Writer) {
	output, err := useCase.Execute(ctx, usecases.CaptureInput{Source: source})
	if err != nil {
		fmt.Fprintln(out, err)
		return
	}

	if output.Outcome == usecases.OutcomeCompleted {
		fmt.Fprint(out, output.ResultText)
	} else {
		fmt.Fprintf(out, "(%s)\n", output.Outcome)
	}
}

func printState(out io.Writer, useCase *usecases.CaptureAnalysisUseCase) {
	state := useCase.State()
	if state.IsPlaceholderVisible() {
		fmt.Fprintln(out, "[no photo]")
	} else {
		image := state.CurrentImage
		fmt.Fprintf(out, "[%s photo %dx%d]\n", image.Format(), image.Width(), image.Height())
	}
	fmt.Fprint(out, state.ResultText)
}

// pathChooser uses the path typed with the pick command or asks for one.
type pathChooser struct {
	prompter *infraservices.ReadlinePrompter
	pending  string
}

func (c *pathChooser) Choose(ctx context.Context) (string, error) {
	if path := c.pending; path != "" {
		c.pending = ""
		return path, nil
	}

	path, err := c.prompter.Prompt("photo path (empty to cancel): ")
	if errors.Is(err, readline.ErrInterrupt) {
		return "", nil
	}
	return path, err
}
