package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"object-detection-demo/internal/domain/entities"
	"object-detection-demo/internal/domain/repositories"
	"object-detection-demo/internal/domain/valueobjects"
)

var ErrQuotaExceeded = errors.New("service temporarily unavailable due to high demand")

// DetectionError wraps a detector failure. Error adds context for logs while
// Cause keeps the detector's own message.
type DetectionError struct {
	Cause error
	Quota bool
}

func (e *DetectionError) Error() string {
	if e.Quota {
		return ErrQuotaExceeded.Error() + ": " + e.Cause.Error()
	}
	return "object detection failed: " + e.Cause.Error()
}

func (e *DetectionError) Unwrap() []error {
	if e.Quota {
		return []error{ErrQuotaExceeded, e.Cause}
	}
	return []error{e.Cause}
}

type DetectionDomainService struct {
	detector repositories.ObjectDetectionService
}

func NewDetectionDomainService(detector repositories.ObjectDetectionService) *DetectionDomainService {
	return &DetectionDomainService{
		detector: detector,
	}
}

func (s *DetectionDomainService) Backend() string {
	return s.detector.Name()
}

// Detect returns an empty result, not an error, when nothing was found.
func (s *DetectionDomainService) Detect(ctx context.Context, image *valueobjects.ImageData) (*entities.AnalysisResult, error) {
	if err := s.validateImage(image); err != nil {
		return nil, fmt.Errorf("request validation failed: %w", err)
	}

	result, err := s.detector.DetectObjects(ctx, image)
	if err != nil {
		return nil, &DetectionError{Cause: err, Quota: s.isQuotaError(err)}
	}

	if result == nil {
		return nil, &DetectionError{Cause: fmt.Errorf("%s returned no result", s.detector.Name())}
	}

	return result, nil
}

func (s *DetectionDomainService) validateImage(image *valueobjects.ImageData) error {
	if image == nil {
		return fmt.Errorf("image is required")
	}

	if image.Size() == 0 {
		return fmt.Errorf("image is empty")
	}

	return nil
}

func (s *DetectionDomainService) isQuotaError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "quota exceeded") ||
		strings.Contains(errStr, "resourceexhausted") ||
		strings.Contains(errStr, "resource_exhausted") ||
		strings.Contains(errStr, "error 429") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "status 429")
}
