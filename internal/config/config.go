package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"object-detection-demo/internal/domain/valueobjects"
)

const DefaultPath = "config.yaml"

const (
	BackendAzure       = "azure"
	BackendCloudVision = "cloudvision"
	BackendGemini      = "gemini"
	BackendVertex      = "vertex"

	SpeechConsole = "console"
	SpeechGemini  = "gemini"
	SpeechNone    = "none"
)

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Detector    DetectorConfig    `yaml:"detector"`
	AI          AIConfig          `yaml:"ai"`
	Speech      SpeechConfig      `yaml:"speech"`
	Capture     CaptureConfig     `yaml:"capture"`
	Permissions PermissionsConfig `yaml:"permissions"`
	Log         LogConfig         `yaml:"log"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type DetectorConfig struct {
	Backend    string        `yaml:"backend"`
	Endpoint   string        `yaml:"endpoint"`
	APIKey     string        `yaml:"api_key"`
	Model      string        `yaml:"model"`
	MaxResults int           `yaml:"max_results"`
	Timeout    time.Duration `yaml:"timeout"`
}

// AIConfig holds the Google Cloud settings shared by the genai clients.
type AIConfig struct {
	ProjectID    string `yaml:"project_id"`
	Location     string `yaml:"location"`
	GeminiAPIKey string `yaml:"gemini_api_key"`
}

type SpeechConfig struct {
	Backend   string `yaml:"backend"`
	Model     string `yaml:"model"`
	Voice     string `yaml:"voice"`
	OutputDir string `yaml:"output_dir"`
}

type CaptureConfig struct {
	PhotoSize         string `yaml:"photo_size"`
	Narrate           bool   `yaml:"narrate"`
	OrderByConfidence bool   `yaml:"order_by_confidence"`
	CameraDir         string `yaml:"camera_dir"`
}

// PermissionsConfig seeds the static permission provider.
type PermissionsConfig struct {
	Camera         string `yaml:"camera"`
	Storage        string `yaml:"storage"`
	GrantOnRequest bool   `yaml:"grant_on_request"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080"},
		Detector: DetectorConfig{
			Backend:    BackendAzure,
			MaxResults: 10,
			Timeout:    30 * time.Second,
		},
		AI: AIConfig{Location: "us-central1"},
		Speech: SpeechConfig{
			Backend: SpeechConsole,
			Voice:   "Kore",
		},
		Capture: CaptureConfig{
			PhotoSize:         string(valueobjects.PhotoSizeMedium),
			Narrate:           true,
			OrderByConfidence: true,
			CameraDir:         "camera",
		},
		Permissions: PermissionsConfig{
			Camera:         "not_determined",
			Storage:        "not_determined",
			GrantOnRequest: true,
		},
		Log: LogConfig{Level: "info", Pretty: true},
	}
}

// Load reads the YAML file over the defaults and then applies environment
// overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv(os.Getenv)
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	setString := func(dst *string, keys ...string) {
		for _, key := range keys {
			if v := getenv(key); v != "" {
				*dst = v
				return
			}
		}
	}

	setString(&c.Detector.Backend, "DETECTOR_BACKEND")
	setString(&c.Detector.Endpoint, "DETECTOR_ENDPOINT")
	setString(&c.Detector.APIKey, "DETECTOR_API_KEY")
	setString(&c.Detector.Model, "DETECTOR_MODEL")
	setString(&c.AI.ProjectID, "PROJECT_ID", "GOOGLE_CLOUD_PROJECT")
	setString(&c.AI.Location, "LOCATION")
	setString(&c.AI.GeminiAPIKey, "GEMINI_API_KEY")
	setString(&c.Speech.Backend, "SPEECH_BACKEND")
	setString(&c.Capture.CameraDir, "CAMERA_DIR")
	setString(&c.Server.Port, "PORT")
	setString(&c.Log.Level, "LOG_LEVEL")

	if v, err := strconv.ParseBool(getenv("NARRATE")); err == nil {
		c.Capture.Narrate = v
	}
}

func (c *Config) Validate() error {
	var errs []error

	c.Detector.Backend = strings.ToLower(strings.TrimSpace(c.Detector.Backend))
	switch c.Detector.Backend {
	case BackendAzure:
		if c.Detector.Endpoint == "" {
			errs = append(errs, fmt.Errorf("detector.endpoint (DETECTOR_ENDPOINT) is required for azure"))
		}
		if c.Detector.APIKey == "" {
			errs = append(errs, fmt.Errorf("detector.api_key (DETECTOR_API_KEY) is required for azure"))
		}
	case BackendCloudVision:
		// Falls back to Application Default Credentials without a key.
	case BackendGemini:
		if c.AI.GeminiAPIKey == "" && c.AI.ProjectID == "" {
			errs = append(errs, fmt.Errorf("ai.gemini_api_key (GEMINI_API_KEY) or ai.project_id (PROJECT_ID) is required for gemini"))
		}
	case BackendVertex:
		if c.AI.ProjectID == "" {
			errs = append(errs, fmt.Errorf("ai.project_id (PROJECT_ID) is required for vertex"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown detector backend: %q", c.Detector.Backend))
	}

	c.Speech.Backend = strings.ToLower(strings.TrimSpace(c.Speech.Backend))
	switch c.Speech.Backend {
	case SpeechConsole, SpeechNone:
	case SpeechGemini:
		if c.AI.GeminiAPIKey == "" && c.AI.ProjectID == "" {
			errs = append(errs, fmt.Errorf("gemini speech needs ai.gemini_api_key or ai.project_id"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown speech backend: %q", c.Speech.Backend))
	}

	if _, err := valueobjects.ParsePhotoSize(c.Capture.PhotoSize); err != nil {
		errs = append(errs, err)
	}
	if _, err := valueobjects.ParsePermissionStatus(c.Permissions.Camera); err != nil {
		errs = append(errs, fmt.Errorf("permissions.camera: %w", err))
	}
	if _, err := valueobjects.ParsePermissionStatus(c.Permissions.Storage); err != nil {
		errs = append(errs, fmt.Errorf("permissions.storage: %w", err))
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if c.Detector.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("detector.timeout must be positive"))
	}

	return errors.Join(errs...)
}

// PhotoSize returns the parsed resolution preference. Call after Validate.
func (c *Config) PhotoSize() valueobjects.PhotoSize {
	size, _ := valueobjects.ParsePhotoSize(c.Capture.PhotoSize)
	return size
}

// PermissionStatuses returns the configured initial statuses. Call after Validate.
func (c *Config) PermissionStatuses() map[valueobjects.Capability]valueobjects.PermissionStatus {
	camera, _ := valueobjects.ParsePermissionStatus(c.Permissions.Camera)
	storage, _ := valueobjects.ParsePermissionStatus(c.Permissions.Storage)
	return map[valueobjects.Capability]valueobjects.PermissionStatus{
		valueobjects.CapabilityCamera:  camera,
		valueobjects.CapabilityStorage: storage,
	}
}

// NewLogger builds the process logger: console output when pretty, JSON otherwise.
func (c LogConfig) NewLogger(out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(c.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	if c.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly}
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
