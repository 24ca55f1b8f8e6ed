package repositories

import (
	"context"
	"io"

	"object-detection-demo/internal/domain/valueobjects"
)

type PermissionProvider interface {
	CheckStatus(ctx context.Context, capability valueobjects.Capability) (valueobjects.PermissionStatus, error)

	// Request asks for every capability at once and reports the resulting statuses.
	Request(ctx context.Context, capabilities []valueobjects.Capability) (map[valueobjects.Capability]valueobjects.PermissionStatus, error)
}

type MediaOptions struct {
	PhotoSize valueobjects.PhotoSize
}

// ImageHandle is re-openable; every Open returns a fresh stream over the same image.
type ImageHandle interface {
	Open() (io.ReadCloser, error)
}

// MediaProvider returns a nil handle when the user cancels the picker.
type MediaProvider interface {
	CapturePhoto(ctx context.Context, options MediaOptions) (ImageHandle, error)
	PickPhoto(ctx context.Context, options MediaOptions) (ImageHandle, error)
}

type SpeechService interface {
	Speak(ctx context.Context, text string) error
}

type DialogService interface {
	Alert(ctx context.Context, message, title, buttonLabel string) error
	ShowLoading(title string)
	HideLoading()
}
