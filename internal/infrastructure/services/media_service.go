package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/nfnt/resize"
	"github.com/rs/zerolog"

	"object-detection-demo/internal/domain/repositories"
	"object-detection-demo/internal/domain/valueobjects"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
}

// Chooser asks the user for a gallery file. An empty path means the user cancelled.
type Chooser func(ctx context.Context) (string, error)

type pickedImageKey struct{}

// WithPickedImage attaches an already uploaded gallery image to the request context.
func WithPickedImage(ctx context.Context, data []byte) context.Context {
	return context.WithValue(ctx, pickedImageKey{}, data)
}

func pickedImage(ctx context.Context) ([]byte, bool) {
	data, ok := ctx.Value(pickedImageKey{}).([]byte)
	return data, ok
}

// FileMediaService serves the camera from a directory of photos taken in turn and
// the gallery from an upload or a chooser.
type FileMediaService struct {
	cameraDir string
	chooser   Chooser
	log       zerolog.Logger

	mutex sync.Mutex
	next  int
}

func NewFileMediaService(cameraDir string, chooser Chooser, log zerolog.Logger) *FileMediaService {
	return &FileMediaService{
		cameraDir: cameraDir,
		chooser:   chooser,
		log:       log,
	}
}

func (s *FileMediaService) CapturePhoto(ctx context.Context, options repositories.MediaOptions) (repositories.ImageHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := s.nextCameraFile()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read photo: %w", err)
	}

	s.log.Debug().Str("file", path).Str("photo_size", string(options.PhotoSize)).Msg("Photo captured")
	return s.handle(data, options.PhotoSize)
}

func (s *FileMediaService) PickPhoto(ctx context.Context, options repositories.MediaOptions) (repositories.ImageHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if data, ok := pickedImage(ctx); ok {
		if len(data) == 0 {
			return nil, nil
		}
		return s.handle(data, options.PhotoSize)
	}

	if s.chooser == nil {
		return nil, nil
	}

	path, err := s.chooser(ctx)
	if err != nil {
		return nil, err
	}
	if path = strings.TrimSpace(path); path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read picked photo: %w", err)
	}

	s.log.Debug().Str("file", path).Str("photo_size", string(options.PhotoSize)).Msg("Photo picked")
	return s.handle(data, options.PhotoSize)
}

func (s *FileMediaService) nextCameraFile() (string, error) {
	if s.cameraDir == "" {
		return "", fmt.Errorf("camera is not available")
	}

	entries, err := os.ReadDir(s.cameraDir)
	if err != nil {
		return "", fmt.Errorf("failed to read camera directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		files = append(files, filepath.Join(s.cameraDir, entry.Name()))
	}
	if len(files) == 0 {
		return "", fmt.Errorf("no photos in camera directory %s", s.cameraDir)
	}
	sort.Strings(files)

	s.mutex.Lock()
	defer s.mutex.Unlock()

	path := files[s.next%len(files)]
	s.next++
	return path, nil
}

func (s *FileMediaService) handle(data []byte, size valueobjects.PhotoSize) (repositories.ImageHandle, error) {
	scaled, err := scaleImage(data, size.ScaleFactor())
	if err != nil {
		return nil, err
	}
	return &memoryHandle{data: scaled}, nil
}

// scaleImage shrinks the image by factor. PNG stays PNG, everything else becomes JPEG.
func scaleImage(data []byte, factor float64) ([]byte, error) {
	if factor >= 1 {
		return data, nil
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode photo: %w", err)
	}

	width := uint(float64(img.Bounds().Dx()) * factor)
	if width == 0 {
		width = 1
	}
	resized := resize.Resize(width, 0, img, resize.Lanczos3)

	var buf bytes.Buffer
	if format == string(valueobjects.PNG) {
		err = png.Encode(&buf, resized)
	} else {
		err = jpeg.Encode(&buf, resized, &jpeg.Options{Quality: 90})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode photo: %w", err)
	}
	return buf.Bytes(), nil
}

type memoryHandle struct {
	data []byte
}

func (h *memoryHandle) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(h.data)), nil
}

var _ repositories.MediaProvider = (*FileMediaService)(nil)
