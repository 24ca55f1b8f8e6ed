package entities

import (
	"time"

	"object-detection-demo/internal/domain/valueobjects"
)

// UIState is what the screen binds to. The placeholder is derived from the image.
type UIState struct {
	CurrentImage *valueobjects.ImageData
	ResultText   string
	Revision     uint64
	UpdatedAt    time.Time
}

func (s UIState) IsPlaceholderVisible() bool {
	return s.CurrentImage == nil
}

func (s UIState) WithImage(image *valueobjects.ImageData) UIState {
	s.CurrentImage = image
	return s
}

func (s UIState) WithResultText(text string) UIState {
	s.ResultText = text
	return s
}
