package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"object-detection-demo/internal/domain/entities"
	"object-detection-demo/internal/domain/repositories"
	"object-detection-demo/internal/domain/valueobjects"
	"object-detection-demo/model"
)

const azureDetectPath = "/vision/v3.2/detect"

type AzureVisionService struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	log        zerolog.Logger
}

func NewAzureVisionService(endpoint, apiKey string, timeout time.Duration, log zerolog.Logger) (repositories.ObjectDetectionService, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("azure endpoint is required")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("azure subscription key is required")
	}

	return &AzureVisionService{
		endpoint:   strings.TrimRight(endpoint, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}, nil
}

func (s *AzureVisionService) Name() string {
	return "azure"
}

func (s *AzureVisionService) DetectObjects(ctx context.Context, image *valueobjects.ImageData) (*entities.AnalysisResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint+azureDetectPath, bytes.NewReader(image.Data()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Ocp-Apim-Subscription-Key", s.apiKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	s.log.Debug().Str("format", string(image.Format())).Int("bytes", image.Size()).Msg("Sending detect request")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("detect request failed with status %d: %s", resp.StatusCode, s.errorMessage(respBody))
	}

	var detectResp model.AzureDetectResponse
	if err := json.Unmarshal(respBody, &detectResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	objects := make([]entities.DetectedObject, 0, len(detectResp.Objects))
	for _, obj := range detectResp.Objects {
		objects = append(objects, entities.NewDetectedObject(
			[]string{obj.Object},
			obj.Confidence,
			entities.Rectangle{X: obj.Rectangle.X, Y: obj.Rectangle.Y, W: obj.Rectangle.W, H: obj.Rectangle.H},
		).WithAncestors(obj.Ancestors()))
	}

	s.log.Debug().Str("request_id", detectResp.RequestID).Int("objects", len(objects)).Msg("Detect response received")

	return entities.NewAnalysisResult(s.Name(), objects), nil
}

// errorMessage prefers the service's own message over the raw body.
func (s *AzureVisionService) errorMessage(body []byte) string {
	var errResp model.AzureErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		return errResp.Error.Message
	}
	return strings.TrimSpace(string(body))
}

func (s *AzureVisionService) Close() error {
	s.httpClient.CloseIdleConnections()
	return nil
}
