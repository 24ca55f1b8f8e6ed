package repositories

import (
	"context"

	"object-detection-demo/internal/domain/entities"
	"object-detection-demo/internal/domain/valueobjects"
)

// 物体検出サービス
type ObjectDetectionService interface {
	DetectObjects(ctx context.Context, image *valueobjects.ImageData) (*entities.AnalysisResult, error)

	// Name identifies the backend in logs and results.
	Name() string

	Close() error
}
