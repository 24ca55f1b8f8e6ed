package model

// AzureDetectResponse represents the response structure of the Azure Computer Vision detect operation
type AzureDetectResponse struct {
	Objects      []AzureDetectedObject `json:"objects"`
	RequestID    string                `json:"requestId"`
	ModelVersion string                `json:"modelVersion"`
	Metadata     *AzureImageMetadata   `json:"metadata,omitempty"`
}

type AzureDetectedObject struct {
	Rectangle  AzureRectangle        `json:"rectangle"`
	Object     string                `json:"object"`
	Confidence float64               `json:"confidence"`
	Parent     *AzureObjectHierarchy `json:"parent,omitempty"`
}

// AzureObjectHierarchy is the parent chain of a detected object class
type AzureObjectHierarchy struct {
	Object     string                `json:"object"`
	Confidence float64               `json:"confidence"`
	Parent     *AzureObjectHierarchy `json:"parent,omitempty"`
}

type AzureRectangle struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type AzureImageMetadata struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
}

// AzureErrorResponse is returned with non-2xx status codes
type AzureErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Ancestors walks the parent chain, nearest category first.
func (o AzureDetectedObject) Ancestors() []string {
	var ancestors []string
	for parent := o.Parent; parent != nil; parent = parent.Parent {
		if parent.Object != "" {
			ancestors = append(ancestors, parent.Object)
		}
	}
	return ancestors
}
