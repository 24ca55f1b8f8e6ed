package services

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"object-detection-demo/internal/domain/repositories"
	"object-detection-demo/internal/domain/valueobjects"
)

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height))); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, width, height int) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height)), nil); err != nil {
		t.Fatalf("jpeg.Encode() error = %v", err)
	}
	return buf.Bytes()
}

func readHandle(t *testing.T, handle repositories.ImageHandle) *valueobjects.ImageData {
	t.Helper()

	rc, err := handle.Open()
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}

	imageData, err := valueobjects.NewImageData(data)
	if err != nil {
		t.Fatalf("NewImageData() error = %v", err)
	}
	return imageData
}

func TestFileMediaService_CapturePhoto(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "a.png"), encodePNG(t, 40, 20), 0o644)
	os.WriteFile(filepath.Join(dir, "b.jpg"), encodeJPEG(t, 80, 40), 0o644)
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not a photo"), 0o644)

	service := NewFileMediaService(dir, nil, zerolog.Nop())
	full := repositories.MediaOptions{PhotoSize: valueobjects.PhotoSizeFull}

	first, err := service.CapturePhoto(context.Background(), full)
	if err != nil {
		t.Fatalf("CapturePhoto() error = %v", err)
	}
	if img := readHandle(t, first); img.Width() != 40 || img.Format() != valueobjects.PNG {
		t.Errorf("first photo = %dpx %s, want a.png", img.Width(), img.Format())
	}

	second, _ := service.CapturePhoto(context.Background(), full)
	if img := readHandle(t, second); img.Width() != 80 {
		t.Errorf("second photo width = %d, want 80", img.Width())
	}

	third, _ := service.CapturePhoto(context.Background(), full)
	if img := readHandle(t, third); img.Width() != 40 {
		t.Errorf("camera should wrap around, got width %d", img.Width())
	}
}

func TestFileMediaService_PhotoSize(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "photo.png"), encodePNG(t, 100, 60), 0o644)

	tests := []struct {
		size      valueobjects.PhotoSize
		wantWidth int
	}{
		{valueobjects.PhotoSizeSmall, 25},
		{valueobjects.PhotoSizeMedium, 50},
		{valueobjects.PhotoSizeLarge, 75},
		{valueobjects.PhotoSizeFull, 100},
	}

	for _, tt := range tests {
		t.Run(string(tt.size), func(t *testing.T) {
			service := NewFileMediaService(dir, nil, zerolog.Nop())

			handle, err := service.CapturePhoto(context.Background(), repositories.MediaOptions{PhotoSize: tt.size})
			if err != nil {
				t.Fatalf("CapturePhoto() error = %v", err)
			}

			img := readHandle(t, handle)
			if img.Width() != tt.wantWidth {
				t.Errorf("width = %d, want %d", img.Width(), tt.wantWidth)
			}
			if img.Format() != valueobjects.PNG {
				t.Errorf("format = %s, want png", img.Format())
			}
		})
	}
}

func TestFileMediaService_CameraErrors(t *testing.T) {
	options := repositories.MediaOptions{PhotoSize: valueobjects.PhotoSizeFull}

	if _, err := NewFileMediaService("", nil, zerolog.Nop()).CapturePhoto(context.Background(), options); err == nil {
		t.Error("missing camera directory should fail")
	}
	if _, err := NewFileMediaService(t.TempDir(), nil, zerolog.Nop()).CapturePhoto(context.Background(), options); err == nil {
		t.Error("empty camera directory should fail")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewFileMediaService(t.TempDir(), nil, zerolog.Nop()).CapturePhoto(ctx, options); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled context error = %v, want context.Canceled", err)
	}
}

func TestFileMediaService_PickPhoto(t *testing.T) {
	options := repositories.MediaOptions{PhotoSize: valueobjects.PhotoSizeFull}

	t.Run("upload from context", func(t *testing.T) {
		service := NewFileMediaService("", nil, zerolog.Nop())
		ctx := WithPickedImage(context.Background(), encodePNG(t, 12, 12))

		handle, err := service.PickPhoto(ctx, options)
		if err != nil {
			t.Fatalf("PickPhoto() error = %v", err)
		}
		if img := readHandle(t, handle); img.Width() != 12 {
			t.Errorf("width = %d, want 12", img.Width())
		}
	})

	t.Run("chooser path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "picked.png")
		os.WriteFile(path, encodePNG(t, 7, 7), 0o644)

		service := NewFileMediaService("", func(ctx context.Context) (string, error) {
			return path, nil
		}, zerolog.Nop())

		handle, err := service.PickPhoto(context.Background(), options)
		if err != nil {
			t.Fatalf("PickPhoto() error = %v", err)
		}
		if img := readHandle(t, handle); img.Width() != 7 {
			t.Errorf("width = %d, want 7", img.Width())
		}
	})

	t.Run("empty chooser answer cancels", func(t *testing.T) {
		service := NewFileMediaService("", func(ctx context.Context) (string, error) {
			return "  ", nil
		}, zerolog.Nop())

		handle, err := service.PickPhoto(context.Background(), options)
		if err != nil || handle != nil {
			t.Errorf("PickPhoto() = %v, %v, want nil, nil", handle, err)
		}
	})

	t.Run("no chooser cancels", func(t *testing.T) {
		handle, err := NewFileMediaService("", nil, zerolog.Nop()).PickPhoto(context.Background(), options)
		if err != nil || handle != nil {
			t.Errorf("PickPhoto() = %v, %v, want nil, nil", handle, err)
		}
	})

	t.Run("missing file fails", func(t *testing.T) {
		service := NewFileMediaService("", func(ctx context.Context) (string, error) {
			return filepath.Join(t.TempDir(), "missing.png"), nil
		}, zerolog.Nop())

		if _, err := service.PickPhoto(context.Background(), options); err == nil {
			t.Error("PickPhoto() should fail")
		}
	})
}

func TestMemoryHandle_Reopen(t *testing.T) {
	handle := &memoryHandle{data: []byte("abc")}

	for i := 0; i < 2; i++ {
		rc, err := handle.Open()
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		data, _ := io.ReadAll(rc)
		rc.Close()
		if string(data) != "abc" {
			t.Errorf("Open() #%d = %q, want abc", i, data)
		}
	}
}
