package external

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"object-detection-demo/internal/domain/entities"
	"object-detection-demo/model"
)

const detectionPrompt = "Detect every distinct physical object in the image. " +
	"Return a JSON array. For each object return \"labels\": the object class name first, followed by its broader categories from specific to general; " +
	"\"confidence\": a number between 0 and 1; " +
	"\"box_2d\": [ymin, xmin, ymax, xmax] normalized to 0-1000. " +
	"Return an empty array when no object is visible."

// box_2d coordinates are normalized to this range.
const boxScale = 1000.0

// parseGenerativeDetections decodes the model's JSON answer into detected objects.
// Code fences around the JSON are tolerated.
func parseGenerativeDetections(text string, width, height int) ([]entities.DetectedObject, error) {
	text = stripCodeFence(text)
	if text == "" {
		return nil, fmt.Errorf("empty response from model")
	}

	var detections []model.GenerativeDetection
	if err := json.Unmarshal([]byte(text), &detections); err != nil {
		return nil, fmt.Errorf("failed to parse model response: %w", err)
	}

	objects := make([]entities.DetectedObject, 0, len(detections))
	for _, d := range detections {
		labels := make([]string, 0, len(d.Labels))
		for _, label := range d.Labels {
			if label = strings.TrimSpace(label); label != "" {
				labels = append(labels, label)
			}
		}
		if len(labels) == 0 {
			continue
		}

		confidence := math.Min(math.Max(d.Confidence, 0), 1)
		object := entities.NewDetectedObject(labels[:1], confidence, boxToRectangle(d.BoundingBox, width, height))
		objects = append(objects, object.WithAncestors(labels[1:]))
	}

	return objects, nil
}

func boxToRectangle(box []int, width, height int) entities.Rectangle {
	if len(box) != 4 {
		return entities.Rectangle{}
	}

	ymin, xmin, ymax, xmax := float64(box[0]), float64(box[1]), float64(box[2]), float64(box[3])
	return entities.Rectangle{
		X: int(math.Round(xmin / boxScale * float64(width))),
		Y: int(math.Round(ymin / boxScale * float64(height))),
		W: int(math.Round((xmax - xmin) / boxScale * float64(width))),
		H: int(math.Round((ymax - ymin) / boxScale * float64(height))),
	}
}

func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimPrefix(text, "json")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
