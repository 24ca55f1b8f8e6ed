package services

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"object-detection-demo/internal/domain/valueobjects"
)

const MaxUploadSize = 10 * 1024 * 1024 // 10MB

type ParameterService struct{}

func NewParameterService() *ParameterService {
	return &ParameterService{}
}

// ParseSource reads the source from the route variable, then the "source" query
// parameter, falling back to defaultSource. The body is left unread so the
// upload limit can still be applied to it.
func (s *ParameterService) ParseSource(r *http.Request, defaultSource valueobjects.Source) (valueobjects.Source, error) {
	value := mux.Vars(r)["source"]
	if value == "" {
		value = s.getQueryString(r, "source", string(defaultSource))
	}
	return valueobjects.ParseSource(value)
}

// ParseUpload reads the multipart "image" field. The request body must already be
// limited by the caller.
func (s *ParameterService) ParseUpload(r *http.Request) ([]byte, error) {
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		return nil, fmt.Errorf("failed to parse form: %w", err)
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		return nil, fmt.Errorf("no image file provided, use 'image' as the form field name: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("image file is empty")
	}
	return data, nil
}

func (s *ParameterService) getQueryString(r *http.Request, key, defaultValue string) string {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}
	return value
}
