package entities

// Rectangle is the bounding box reported by the detector, in pixels of the analysed image.
type Rectangle struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type DetectedObject struct {
	labels     []string
	ancestors  []string
	confidence float64
	rectangle  Rectangle
}

// NewDetectedObject takes the label path printed for the object. Detectors
// report a single class name; broader categories go through WithAncestors.
func NewDetectedObject(labels []string, confidence float64, rectangle Rectangle) DetectedObject {
	copied := make([]string, len(labels))
	copy(copied, labels)

	return DetectedObject{
		labels:     copied,
		confidence: confidence,
		rectangle:  rectangle,
	}
}

// WithAncestors returns a copy carrying the broader categories of the class,
// most specific first. They are not part of the printed label path.
func (o DetectedObject) WithAncestors(ancestors []string) DetectedObject {
	o.ancestors = nil
	if len(ancestors) > 0 {
		o.ancestors = make([]string, len(ancestors))
		copy(o.ancestors, ancestors)
	}
	return o
}

func (o DetectedObject) Labels() []string {
	return o.labels
}

func (o DetectedObject) Ancestors() []string {
	return o.ancestors
}

// Label is the most specific class name, or "" when the detector reported none.
func (o DetectedObject) Label() string {
	if len(o.labels) == 0 {
		return ""
	}
	return o.labels[0]
}

func (o DetectedObject) Confidence() float64 {
	return o.confidence
}

func (o DetectedObject) Rectangle() Rectangle {
	return o.rectangle
}
