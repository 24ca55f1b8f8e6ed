package valueobjects

import (
	"fmt"
	"strings"
)

// Source selects where the pipeline acquires its image from.
type Source string

const (
	SourceCamera  Source = "camera"
	SourceGallery Source = "gallery"
)

func ParseSource(value string) (Source, error) {
	switch Source(strings.ToLower(strings.TrimSpace(value))) {
	case SourceCamera:
		return SourceCamera, nil
	case SourceGallery, "pick":
		return SourceGallery, nil
	default:
		return "", fmt.Errorf("unknown capture source: %q", value)
	}
}

// PhotoSize is the resolution preference handed to the media provider.
type PhotoSize string

const (
	PhotoSizeSmall  PhotoSize = "small"
	PhotoSizeMedium PhotoSize = "medium"
	PhotoSizeLarge  PhotoSize = "large"
	PhotoSizeFull   PhotoSize = "full"
)

func ParsePhotoSize(value string) (PhotoSize, error) {
	switch size := PhotoSize(strings.ToLower(strings.TrimSpace(value))); size {
	case PhotoSizeSmall, PhotoSizeMedium, PhotoSizeLarge, PhotoSizeFull:
		return size, nil
	case "":
		return PhotoSizeMedium, nil
	default:
		return "", fmt.Errorf("unknown photo size: %q", value)
	}
}

// ScaleFactor is the fraction of the original dimensions a provider keeps.
func (s PhotoSize) ScaleFactor() float64 {
	switch s {
	case PhotoSizeSmall:
		return 0.25
	case PhotoSizeMedium:
		return 0.5
	case PhotoSizeLarge:
		return 0.75
	default:
		return 1
	}
}
