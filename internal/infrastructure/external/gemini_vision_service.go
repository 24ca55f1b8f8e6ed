package external

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	genai_std "google.golang.org/genai"

	"object-detection-demo/internal/domain/entities"
	"object-detection-demo/internal/domain/repositories"
	"object-detection-demo/internal/domain/valueobjects"
)

const DefaultGeminiVisionModel = "gemini-2.5-flash"

type GeminiVisionService struct {
	pool  repositories.GenAIClientPool
	model string
	log   zerolog.Logger
}

func NewGeminiVisionService(pool repositories.GenAIClientPool, model string, log zerolog.Logger) repositories.ObjectDetectionService {
	if model == "" {
		model = DefaultGeminiVisionModel
	}

	return &GeminiVisionService{
		pool:  pool,
		model: model,
		log:   log,
	}
}

func (s *GeminiVisionService) Name() string {
	return "gemini"
}

func (s *GeminiVisionService) DetectObjects(ctx context.Context, image *valueobjects.ImageData) (*entities.AnalysisResult, error) {
	client, err := s.pool.GetGenAIClient(ctx)
	if err != nil {
		return nil, err
	}

	// Gemini does not take GIF or BMP input.
	if image.Format() == valueobjects.GIF || image.Format() == valueobjects.BMP {
		image, err = image.ToJPEG()
		if err != nil {
			return nil, err
		}
	}

	parts := []*genai_std.Part{
		genai_std.NewPartFromBytes(image.Data(), image.MimeType()),
		genai_std.NewPartFromText(detectionPrompt),
	}
	contents := []*genai_std.Content{
		genai_std.NewContentFromParts(parts, genai_std.RoleUser),
	}

	temperature := float32(0)
	resp, err := client.Models.GenerateContent(ctx, s.model, contents, &genai_std.GenerateContentConfig{
		Temperature:      &temperature,
		ResponseMIMEType: "application/json",
		ResponseSchema:   detectionSchema(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	text := resp.Text()
	s.log.Debug().Str("model", s.model).Int("response_bytes", len(text)).Msg("Gemini detection response")

	objects, err := parseGenerativeDetections(text, image.Width(), image.Height())
	if err != nil {
		return nil, err
	}

	return entities.NewAnalysisResult(s.Name(), objects), nil
}

func (s *GeminiVisionService) Close() error {
	return nil
}

func detectionSchema() *genai_std.Schema {
	return &genai_std.Schema{
		Type: genai_std.TypeArray,
		Items: &genai_std.Schema{
			Type: genai_std.TypeObject,
			Properties: map[string]*genai_std.Schema{
				"labels": {
					Type:  genai_std.TypeArray,
					Items: &genai_std.Schema{Type: genai_std.TypeString},
				},
				"confidence": {Type: genai_std.TypeNumber},
				"box_2d": {
					Type:  genai_std.TypeArray,
					Items: &genai_std.Schema{Type: genai_std.TypeInteger},
				},
			},
			Required: []string{"labels", "confidence"},
		},
	}
}
