package bootstrap

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"object-detection-demo/internal/application/usecases"
	"object-detection-demo/internal/config"
	"object-detection-demo/internal/domain/repositories"
	domainservices "object-detection-demo/internal/domain/services"
	"object-detection-demo/internal/infrastructure/external"
	infrarepos "object-detection-demo/internal/infrastructure/repositories"
	infraservices "object-detection-demo/internal/infrastructure/services"
)

// App holds the assembled pipeline and the resources that must be closed.
type App struct {
	UseCase  *usecases.CaptureAnalysisUseCase
	State    repositories.UIStateRepository
	Detector repositories.ObjectDetectionService
	Pools    repositories.ClientPoolService
}

// Collaborators are the surface-specific providers each command supplies.
type Collaborators struct {
	Permissions repositories.PermissionProvider
	Media       repositories.MediaProvider
	Dialogs     repositories.DialogService
	SpeechOut   io.Writer
}

func New(ctx context.Context, cfg *config.Config, collab Collaborators, log zerolog.Logger) (*App, error) {
	pools := infraservices.NewClientPoolService(repositories.AIClientConfig{
		ProjectID:    cfg.AI.ProjectID,
		Location:     cfg.AI.Location,
		GeminiAPIKey: cfg.AI.GeminiAPIKey,
	})

	detector, err := NewDetector(ctx, cfg, pools, log)
	if err != nil {
		pools.Close()
		return nil, err
	}

	speech, err := NewSpeech(cfg, pools, collab.SpeechOut, log)
	if err != nil {
		detector.Close()
		pools.Close()
		return nil, err
	}

	permissions := collab.Permissions
	if permissions == nil {
		permissions = infraservices.NewStaticPermissionService(cfg.PermissionStatuses(), cfg.Permissions.GrantOnRequest)
	}

	state := infrarepos.NewMemoryUIStateRepository()

	useCase := usecases.NewCaptureAnalysisUseCase(
		domainservices.NewPermissionDomainService(permissions, log),
		collab.Media,
		domainservices.NewDetectionDomainService(detector),
		domainservices.NewNarrationDomainService(speech, log),
		collab.Dialogs,
		state,
		usecases.CaptureOptions{
			PhotoSize:         cfg.PhotoSize(),
			Narrate:           cfg.Capture.Narrate,
			OrderByConfidence: cfg.Capture.OrderByConfidence,
		},
		log,
	)

	return &App{
		UseCase:  useCase,
		State:    state,
		Detector: detector,
		Pools:    pools,
	}, nil
}

func (a *App) Close() error {
	detectorErr := a.Detector.Close()
	poolErr := a.Pools.Close()
	if detectorErr != nil {
		return detectorErr
	}
	return poolErr
}

func NewDetector(ctx context.Context, cfg *config.Config, pools repositories.ClientPoolService, log zerolog.Logger) (repositories.ObjectDetectionService, error) {
	log = log.With().Str("detector", cfg.Detector.Backend).Logger()

	switch cfg.Detector.Backend {
	case config.BackendAzure:
		return external.NewAzureVisionService(cfg.Detector.Endpoint, cfg.Detector.APIKey, cfg.Detector.Timeout, log)
	case config.BackendCloudVision:
		return external.NewCloudVisionService(ctx, cfg.Detector.Endpoint, cfg.Detector.APIKey, cfg.Detector.MaxResults, cfg.Detector.Timeout, log)
	case config.BackendGemini:
		return external.NewGeminiVisionService(pools.GenAIPool(), cfg.Detector.Model, log), nil
	case config.BackendVertex:
		return external.NewVertexVisionService(pools.VertexAIPool(), cfg.Detector.Model, log), nil
	default:
		return nil, fmt.Errorf("unknown detector backend: %q", cfg.Detector.Backend)
	}
}

func NewSpeech(cfg *config.Config, pools repositories.ClientPoolService, out io.Writer, log zerolog.Logger) (repositories.SpeechService, error) {
	switch cfg.Speech.Backend {
	case config.SpeechConsole:
		if out == nil {
			return infraservices.NopSpeechService{}, nil
		}
		return infraservices.NewConsoleSpeechService(out), nil
	case config.SpeechGemini:
		return external.NewGeminiSpeechService(pools.GenAIPool(), cfg.Speech.Model, cfg.Speech.Voice, cfg.Speech.OutputDir, log)
	case config.SpeechNone:
		return infraservices.NopSpeechService{}, nil
	default:
		return nil, fmt.Errorf("unknown speech backend: %q", cfg.Speech.Backend)
	}
}
