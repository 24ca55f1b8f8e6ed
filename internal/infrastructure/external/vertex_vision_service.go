package external

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"github.com/rs/zerolog"

	"object-detection-demo/internal/domain/entities"
	"object-detection-demo/internal/domain/repositories"
	"object-detection-demo/internal/domain/valueobjects"
)

const DefaultVertexVisionModel = "gemini-2.0-flash-001"

type VertexVisionService struct {
	pool  repositories.VertexAIClientPool
	model string
	log   zerolog.Logger
}

func NewVertexVisionService(pool repositories.VertexAIClientPool, model string, log zerolog.Logger) repositories.ObjectDetectionService {
	if model == "" {
		model = DefaultVertexVisionModel
	}

	return &VertexVisionService{
		pool:  pool,
		model: model,
		log:   log,
	}
}

func (s *VertexVisionService) Name() string {
	return "vertex"
}

func (s *VertexVisionService) DetectObjects(ctx context.Context, image *valueobjects.ImageData) (*entities.AnalysisResult, error) {
	client, err := s.pool.GetVertexAIClient(ctx)
	if err != nil {
		return nil, err
	}

	if image.Format() == valueobjects.GIF || image.Format() == valueobjects.BMP {
		image, err = image.ToJPEG()
		if err != nil {
			return nil, err
		}
	}

	model := client.GenerativeModel(s.model)
	model.SetTemperature(0)
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx,
		genai.ImageData(string(image.Format()), image.Data()),
		genai.Text(detectionPrompt),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return nil, fmt.Errorf("no content in response")
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	s.log.Debug().Str("model", s.model).Int("response_bytes", sb.Len()).Msg("Vertex detection response")

	objects, err := parseGenerativeDetections(sb.String(), image.Width(), image.Height())
	if err != nil {
		return nil, err
	}

	return entities.NewAnalysisResult(s.Name(), objects), nil
}

// The client belongs to the pool.
func (s *VertexVisionService) Close() error {
	return nil
}
