package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"object-detection-demo/internal/domain/entities"
	"object-detection-demo/internal/domain/repositories"
	"object-detection-demo/internal/domain/valueobjects"
	"object-detection-demo/model"
)

const (
	DefaultCloudVisionEndpoint = "https://vision.googleapis.com"
	cloudVisionAnnotatePath    = "/v1/images:annotate"
	cloudPlatformScope         = "https://www.googleapis.com/auth/cloud-platform"
)

// CloudVisionService calls the REST images:annotate endpoint with OBJECT_LOCALIZATION.
// It authenticates with an API key when one is configured and with Application
// Default Credentials otherwise.
type CloudVisionService struct {
	endpoint    string
	apiKey      string
	maxResults  int
	tokenSource oauth2.TokenSource
	httpClient  *http.Client
	log         zerolog.Logger
}

func NewCloudVisionService(
	ctx context.Context,
	endpoint string,
	apiKey string,
	maxResults int,
	timeout time.Duration,
	log zerolog.Logger,
) (repositories.ObjectDetectionService, error) {
	if endpoint == "" {
		endpoint = DefaultCloudVisionEndpoint
	}

	s := &CloudVisionService{
		endpoint:   strings.TrimRight(endpoint, "/"),
		apiKey:     apiKey,
		maxResults: maxResults,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}

	if apiKey == "" {
		creds, err := google.FindDefaultCredentials(ctx, cloudPlatformScope)
		if err != nil {
			return nil, fmt.Errorf("failed to find default credentials: %w", err)
		}
		s.tokenSource = creds.TokenSource
	}

	return s, nil
}

func (s *CloudVisionService) Name() string {
	return "cloudvision"
}

func (s *CloudVisionService) DetectObjects(ctx context.Context, image *valueobjects.ImageData) (*entities.AnalysisResult, error) {
	apiRequest := model.CloudVisionRequest{
		Requests: []model.CloudVisionAnnotateRequest{
			{
				Image: model.CloudVisionImage{Content: image.ToBase64()},
				Features: []model.CloudVisionFeature{
					{Type: "OBJECT_LOCALIZATION", MaxResults: s.maxResults},
				},
			},
		},
	}

	reqBody, err := json.Marshal(apiRequest)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	requestURL := s.endpoint + cloudVisionAnnotatePath
	if s.apiKey != "" {
		requestURL += "?" + url.Values{"key": {s.apiKey}}.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if s.tokenSource != nil {
		token, err := s.tokenSource.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to get access token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("annotate request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var annotateResp model.CloudVisionResponse
	if err := json.Unmarshal(respBody, &annotateResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(annotateResp.Responses) == 0 {
		return entities.NewAnalysisResult(s.Name(), nil), nil
	}

	first := annotateResp.Responses[0]
	if first.Error != nil && first.Error.Message != "" {
		return nil, fmt.Errorf("annotate request failed with code %d: %s", first.Error.Code, first.Error.Message)
	}

	objects := make([]entities.DetectedObject, 0, len(first.LocalizedObjectAnnotations))
	for _, annotation := range first.LocalizedObjectAnnotations {
		objects = append(objects, entities.NewDetectedObject(
			[]string{annotation.Name},
			annotation.Score,
			toPixelRectangle(annotation.BoundingPoly.NormalizedVertices, image.Width(), image.Height()),
		))
	}

	s.log.Debug().Int("objects", len(objects)).Msg("Annotate response received")

	return entities.NewAnalysisResult(s.Name(), objects), nil
}

func (s *CloudVisionService) Close() error {
	s.httpClient.CloseIdleConnections()
	return nil
}

// toPixelRectangle converts the normalized polygon to its pixel bounding box.
func toPixelRectangle(vertices []model.NormalizedVertex, width, height int) entities.Rectangle {
	if len(vertices) == 0 {
		return entities.Rectangle{}
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, v := range vertices {
		minX = math.Min(minX, v.X)
		minY = math.Min(minY, v.Y)
		maxX = math.Max(maxX, v.X)
		maxY = math.Max(maxY, v.Y)
	}

	return entities.Rectangle{
		X: int(math.Round(minX * float64(width))),
		Y: int(math.Round(minY * float64(height))),
		W: int(math.Round((maxX - minX) * float64(width))),
		H: int(math.Round((maxY - minY) * float64(height))),
	}
}
