package entities

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

type AnalysisResultID string

// AnalysisResult is produced once per analysis call and never mutated afterwards.
type AnalysisResult struct {
	id        AnalysisResultID
	backend   string
	objects   []DetectedObject
	createdAt time.Time
}

func NewAnalysisResult(backend string, objects []DetectedObject) *AnalysisResult {
	copied := make([]DetectedObject, len(objects))
	copy(copied, objects)

	return &AnalysisResult{
		id:        AnalysisResultID(uuid.NewString()),
		backend:   backend,
		objects:   copied,
		createdAt: time.Now(),
	}
}

func (r *AnalysisResult) ID() AnalysisResultID {
	return r.id
}

func (r *AnalysisResult) Backend() string {
	return r.backend
}

// Objects returns the objects in the order the detector reported them.
func (r *AnalysisResult) Objects() []DetectedObject {
	copied := make([]DetectedObject, len(r.objects))
	copy(copied, r.objects)
	return copied
}

func (r *AnalysisResult) CreatedAt() time.Time {
	return r.createdAt
}

func (r *AnalysisResult) HasObjects() bool {
	return len(r.objects) > 0
}

// SortedByConfidence orders by descending confidence; ties keep the detector's order.
func (r *AnalysisResult) SortedByConfidence() []DetectedObject {
	sorted := r.Objects()
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence() > sorted[j].Confidence()
	})
	return sorted
}
