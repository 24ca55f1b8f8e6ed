package model

// CloudVisionRequest is the body of images:annotate
type CloudVisionRequest struct {
	Requests []CloudVisionAnnotateRequest `json:"requests"`
}

type CloudVisionAnnotateRequest struct {
	Image    CloudVisionImage     `json:"image"`
	Features []CloudVisionFeature `json:"features"`
}

type CloudVisionImage struct {
	Content string `json:"content"`
}

type CloudVisionFeature struct {
	Type       string `json:"type"`
	MaxResults int    `json:"maxResults,omitempty"`
}

// CloudVisionResponse represents the response structure of images:annotate
type CloudVisionResponse struct {
	Responses []CloudVisionAnnotateResponse `json:"responses"`
}

type CloudVisionAnnotateResponse struct {
	LocalizedObjectAnnotations []LocalizedObjectAnnotation `json:"localizedObjectAnnotations"`
	Error                      *CloudVisionStatus          `json:"error,omitempty"`
}

type LocalizedObjectAnnotation struct {
	Mid          string       `json:"mid"`
	Name         string       `json:"name"`
	Score        float64      `json:"score"`
	BoundingPoly BoundingPoly `json:"boundingPoly"`
}

type BoundingPoly struct {
	NormalizedVertices []NormalizedVertex `json:"normalizedVertices"`
}

// NormalizedVertex coordinates are in [0,1]; omitted fields are zero.
type NormalizedVertex struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type CloudVisionStatus struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
