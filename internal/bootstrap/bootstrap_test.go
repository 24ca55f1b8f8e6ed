package bootstrap

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"

	"object-detection-demo/internal/config"
	"object-detection-demo/internal/domain/repositories"
	infraservices "object-detection-demo/internal/infrastructure/services"
)

func TestNewDetector(t *testing.T) {
	tests := []struct {
		name     string
		modify   func(c *config.Config)
		wantName string
		wantErr  bool
	}{
		{
			name: "azure",
			modify: func(c *config.Config) {
				c.Detector.Endpoint = "https://example.cognitiveservices.azure.com"
				c.Detector.APIKey = "key"
			},
			wantName: "azure",
		},
		{
			name: "cloudvision with key",
			modify: func(c *config.Config) {
				c.Detector.Backend = config.BackendCloudVision
				c.Detector.APIKey = "key"
			},
			wantName: "cloudvision",
		},
		{
			name: "gemini",
			modify: func(c *config.Config) {
				c.Detector.Backend = config.BackendGemini
				c.AI.GeminiAPIKey = "key"
			},
			wantName: "gemini",
		},
		{
			name: "vertex",
			modify: func(c *config.Config) {
				c.Detector.Backend = config.BackendVertex
				c.AI.ProjectID = "demo"
			},
			wantName: "vertex",
		},
		{
			name:    "unknown",
			modify:  func(c *config.Config) { c.Detector.Backend = "onnx" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.modify(cfg)

			pools := infraservices.NewClientPoolService(repositories.AIClientConfig{
				ProjectID:    cfg.AI.ProjectID,
				GeminiAPIKey: cfg.AI.GeminiAPIKey,
			})
			defer pools.Close()

			detector, err := NewDetector(context.Background(), cfg, pools, zerolog.Nop())
			if tt.wantErr {
				if err == nil {
					t.Error("NewDetector() should fail")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewDetector() error = %v", err)
			}
			defer detector.Close()

			if detector.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", detector.Name(), tt.wantName)
			}
		})
	}
}

func TestNewSpeech(t *testing.T) {
	pools := infraservices.NewClientPoolService(repositories.AIClientConfig{})
	defer pools.Close()

	cfg := config.Default()

	var out bytes.Buffer
	speech, err := NewSpeech(cfg, pools, &out, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewSpeech() error = %v", err)
	}
	speech.Speak(context.Background(), "objects found")
	if out.Len() == 0 {
		t.Error("console speech should write to the output")
	}

	cfg.Speech.Backend = config.SpeechNone
	if speech, err := NewSpeech(cfg, pools, &out, zerolog.Nop()); err != nil {
		t.Errorf("NewSpeech(none) error = %v", err)
	} else if _, ok := speech.(infraservices.NopSpeechService); !ok {
		t.Errorf("NewSpeech(none) = %T, want NopSpeechService", speech)
	}

	cfg.Speech.Backend = "espeak"
	if _, err := NewSpeech(cfg, pools, &out, zerolog.Nop()); err == nil {
		t.Error("unknown speech backend should fail")
	}
}

func TestNew(t *testing.T) {
	cfg := config.Default()
	cfg.Detector.Backend = config.BackendCloudVision
	cfg.Detector.APIKey = "key"
	cfg.Speech.Backend = config.SpeechNone

	app, err := New(context.Background(), cfg, Collaborators{
		Media:   infraservices.NewFileMediaService(t.TempDir(), nil, zerolog.Nop()),
		Dialogs: infraservices.NewRecordingDialogService(),
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer app.Close()

	if app.UseCase.Busy() {
		t.Error("new use case should be idle")
	}
	if !app.State.Current().IsPlaceholderVisible() {
		t.Error("initial state should show the placeholder")
	}
}
