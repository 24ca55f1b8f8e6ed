package valueobjects

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

type ImageFormat string

const (
	JPEG ImageFormat = "jpeg"
	PNG  ImageFormat = "png"
	GIF  ImageFormat = "gif"
	WEBP ImageFormat = "webp"
	BMP  ImageFormat = "bmp"
)

type ImageData struct {
	data   []byte
	format ImageFormat
	width  int
	height int
}

func NewImageData(data []byte) (*ImageData, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("image data cannot be empty")
	}

	config, format, err := detectFormat(data)
	if err != nil {
		return nil, fmt.Errorf("unsupported image format: %w", err)
	}

	return &ImageData{
		data:   data,
		format: format,
		width:  config.Width,
		height: config.Height,
	}, nil
}

func (i *ImageData) Data() []byte {
	return i.data
}

func (i *ImageData) Format() ImageFormat {
	return i.format
}

func (i *ImageData) Width() int {
	return i.width
}

func (i *ImageData) Height() int {
	return i.height
}

func (i *ImageData) Size() int {
	return len(i.data)
}

func (i *ImageData) MimeType() string {
	return "image/" + string(i.format)
}

func (i *ImageData) IsJPEG() bool {
	return i.format == JPEG
}

// ToJPEG re-encodes the image for backends that only accept JPEG input.
func (i *ImageData) ToJPEG() (*ImageData, error) {
	if i.IsJPEG() {
		return i, nil
	}

	img, _, err := image.Decode(bytes.NewReader(i.data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("failed to encode to JPEG: %w", err)
	}

	return &ImageData{
		data:   buf.Bytes(),
		format: JPEG,
		width:  i.width,
		height: i.height,
	}, nil
}

func (i *ImageData) ToBase64() string {
	return base64.StdEncoding.EncodeToString(i.data)
}

func detectFormat(data []byte) (image.Config, ImageFormat, error) {
	config, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return image.Config{}, "", err
	}

	switch format {
	case "jpeg":
		return config, JPEG, nil
	case "png":
		return config, PNG, nil
	case "gif":
		return config, GIF, nil
	case "webp":
		return config, WEBP, nil
	case "bmp":
		return config, BMP, nil
	default:
		return image.Config{}, "", fmt.Errorf("unsupported format: %s", format)
	}
}
