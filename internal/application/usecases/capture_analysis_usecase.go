package usecases

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"object-detection-demo/internal/domain/entities"
	"object-detection-demo/internal/domain/repositories"
	"object-detection-demo/internal/domain/services"
	"object-detection-demo/internal/domain/valueobjects"
)

var (
	ErrCaptureInProgress = errors.New("a capture is already in progress")
	ErrPermissionDenied  = errors.New("camera and storage permissions are required")
)

const (
	permissionDeniedTitle = "Permissions Denied"
	alertButtonLabel      = "Ok"
	loadingTitle          = "Analyzing"
)

var permissionDeniedMessages = map[valueobjects.Source]string{
	valueobjects.SourceCamera:  "Unable to take photos",
	valueobjects.SourceGallery: "Unable to pick photos",
}

type CaptureOptions struct {
	PhotoSize         valueobjects.PhotoSize
	Narrate           bool
	OrderByConfidence bool
}

func DefaultCaptureOptions() CaptureOptions {
	return CaptureOptions{
		PhotoSize:         valueobjects.PhotoSizeMedium,
		Narrate:           true,
		OrderByConfidence: true,
	}
}

type CaptureInput struct {
	Source valueobjects.Source
}

type CaptureOutput struct {
	RunID      string
	Source     valueobjects.Source
	Outcome    Outcome
	Result     *entities.AnalysisResult
	ResultText string
	State      entities.UIState
	Err        error
}

type CaptureAnalysisUseCase struct {
	permissions *services.PermissionDomainService
	media       repositories.MediaProvider
	detection   *services.DetectionDomainService
	narration   *services.NarrationDomainService
	formatter   *services.ResultFormatter
	dialogs     repositories.DialogService
	state       repositories.UIStateRepository
	options     CaptureOptions
	log         zerolog.Logger

	running atomic.Bool
	phase   atomic.Value
}

func NewCaptureAnalysisUseCase(
	permissions *services.PermissionDomainService,
	media repositories.MediaProvider,
	detection *services.DetectionDomainService,
	narration *services.NarrationDomainService,
	dialogs repositories.DialogService,
	state repositories.UIStateRepository,
	options CaptureOptions,
	log zerolog.Logger,
) *CaptureAnalysisUseCase {
	if options.PhotoSize == "" {
		options.PhotoSize = valueobjects.PhotoSizeMedium
	}

	uc := &CaptureAnalysisUseCase{
		permissions: permissions,
		media:       media,
		detection:   detection,
		narration:   narration,
		formatter:   services.NewResultFormatter(options.OrderByConfidence),
		dialogs:     dialogs,
		state:       state,
		options:     options,
		log:         log,
	}
	uc.phase.Store(PhaseIdle)
	return uc
}

func (uc *CaptureAnalysisUseCase) Phase() Phase {
	return uc.phase.Load().(Phase)
}

func (uc *CaptureAnalysisUseCase) Busy() bool {
	return uc.running.Load()
}

func (uc *CaptureAnalysisUseCase) State() entities.UIState {
	return uc.state.Current()
}

// Execute drives one capture cycle. A concurrent call is rejected with
// ErrCaptureInProgress; every other failure is reported through the
// returned output and an alert, never as an error.
func (uc *CaptureAnalysisUseCase) Execute(ctx context.Context, input CaptureInput) (*CaptureOutput, error) {
	if _, ok := permissionDeniedMessages[input.Source]; !ok {
		return nil, fmt.Errorf("unknown capture source: %q", input.Source)
	}
	if !uc.running.CompareAndSwap(false, true) {
		return nil, ErrCaptureInProgress
	}
	defer func() {
		uc.phase.Store(PhaseIdle)
		uc.running.Store(false)
	}()

	output := &CaptureOutput{
		RunID:  uuid.NewString(),
		Source: input.Source,
	}
	log := uc.log.With().Str("run_id", output.RunID).Str("source", string(input.Source)).Logger()

	uc.enter(log, PhaseCheckingPermissions)
	if !uc.permissions.EnsureGranted(ctx, valueobjects.CaptureCapabilities) {
		uc.alert(ctx, log, permissionDeniedMessages[input.Source], permissionDeniedTitle)
		return uc.finish(log, output, OutcomeDenied, ErrPermissionDenied), nil
	}

	uc.enter(log, PhaseAcquiring)
	handle, err := uc.acquire(ctx, input.Source)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return uc.finish(log, output, OutcomeCancelled, nil), nil
		}
		uc.alert(ctx, log, err.Error(), "")
		return uc.finish(log, output, OutcomeFailed, fmt.Errorf("image acquisition failed: %w", err)), nil
	}
	if handle == nil {
		return uc.finish(log, output, OutcomeCancelled, nil), nil
	}

	uc.enter(log, PhaseLoading)
	uc.dialogs.ShowLoading(loadingTitle)
	defer uc.dialogs.HideLoading()

	preview, err := readImage(handle)
	if err != nil {
		uc.alert(ctx, log, err.Error(), "")
		output.State = uc.state.Publish(uc.state.Current().WithResultText(""))
		return uc.finish(log, output, OutcomeFailed, err), nil
	}
	output.State = uc.state.Publish(uc.state.Current().WithImage(preview))

	uc.enter(log, PhaseAnalyzing)
	result, err := uc.analyze(ctx, handle)
	if err != nil {
		uc.alert(ctx, log, detectorMessage(err), "")
		output.State = uc.state.Publish(uc.state.Current().WithResultText(""))
		return uc.finish(log, output, OutcomeFailed, err), nil
	}

	uc.enter(log, PhaseFormatting)
	if uc.options.Narrate && uc.narration != nil {
		uc.narration.Narrate(ctx, uc.formatter.Objects(result))
	}
	text := uc.formatter.Format(result)
	output.State = uc.state.Publish(uc.state.Current().WithResultText(text))
	output.Result = result
	output.ResultText = text

	return uc.finish(log, output, OutcomeCompleted, nil), nil
}

func (uc *CaptureAnalysisUseCase) acquire(ctx context.Context, source valueobjects.Source) (repositories.ImageHandle, error) {
	options := repositories.MediaOptions{PhotoSize: uc.options.PhotoSize}
	if source == valueobjects.SourceCamera {
		return uc.media.CapturePhoto(ctx, options)
	}
	return uc.media.PickPhoto(ctx, options)
}

// analyze re-opens the handle so the upload does not share the preview stream.
func (uc *CaptureAnalysisUseCase) analyze(ctx context.Context, handle repositories.ImageHandle) (*entities.AnalysisResult, error) {
	image, err := readImage(handle)
	if err != nil {
		return nil, err
	}
	return uc.detection.Detect(ctx, image)
}

func (uc *CaptureAnalysisUseCase) enter(log zerolog.Logger, phase Phase) {
	uc.phase.Store(phase)
	log.Debug().Str("phase", string(phase)).Msg("Capture phase")
}

func (uc *CaptureAnalysisUseCase) alert(ctx context.Context, log zerolog.Logger, message, title string) {
	if err := uc.dialogs.Alert(ctx, message, title, alertButtonLabel); err != nil {
		log.Warn().Err(err).Str("message", message).Msg("Failed to show alert")
	}
}

func (uc *CaptureAnalysisUseCase) finish(log zerolog.Logger, output *CaptureOutput, outcome Outcome, err error) *CaptureOutput {
	output.Outcome = outcome
	output.Err = err

	event := log.Info()
	if outcome == OutcomeFailed {
		event = log.Warn().Err(err)
	}
	if output.Result != nil {
		event = event.Str("result_id", string(output.Result.ID())).Int("objects", len(output.Result.Objects()))
	}
	event.Str("outcome", string(outcome)).Msg("Capture finished")

	return output
}

// detectorMessage is the text shown to the user: the detector's own message
// when there is one, without the context added for logs.
func detectorMessage(err error) string {
	var detectionErr *services.DetectionError
	if errors.As(err, &detectionErr) {
		return detectionErr.Cause.Error()
	}
	return err.Error()
}

func readImage(handle repositories.ImageHandle) (*valueobjects.ImageData, error) {
	stream, err := handle.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer stream.Close()

	data, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	image, err := valueobjects.NewImageData(data)
	if err != nil {
		return nil, fmt.Errorf("invalid image: %w", err)
	}
	return image, nil
}
