package model

// GenerativeDetection is the JSON shape the generative backends are asked to return
type GenerativeDetection struct {
	Labels      []string `json:"labels"`
	Confidence  float64  `json:"confidence"`
	BoundingBox []int    `json:"box_2d,omitempty"`
}
