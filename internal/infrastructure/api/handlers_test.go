package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"object-detection-demo/internal/application/services"
	"object-detection-demo/internal/application/usecases"
	"object-detection-demo/internal/domain/entities"
	domainservices "object-detection-demo/internal/domain/services"
	"object-detection-demo/internal/domain/valueobjects"
	"object-detection-demo/internal/infrastructure/repositories"
	infraservices "object-detection-demo/internal/infrastructure/services"
)

type stubDetector struct {
	result  *entities.AnalysisResult
	err     error
	started chan struct{}
	release chan struct{}
}

func (d *stubDetector) DetectObjects(ctx context.Context, image *valueobjects.ImageData) (*entities.AnalysisResult, error) {
	if d.started != nil {
		close(d.started)
		<-d.release
	}
	return d.result, d.err
}

func (d *stubDetector) Name() string { return "stub" }

func (d *stubDetector) Close() error { return nil }

func pngBytes(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 16, 8))); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return buf.Bytes()
}

func cupAndTable() *entities.AnalysisResult {
	return entities.NewAnalysisResult("stub", []entities.DetectedObject{
		entities.NewDetectedObject([]string{"table"}, 0.76, entities.Rectangle{X: 20, Y: 300, W: 900, H: 400}),
		entities.NewDetectedObject([]string{"cup"}, 0.91, entities.Rectangle{X: 730, Y: 66, W: 135, H: 85}).WithAncestors([]string{"tableware"}),
	})
}

type testServer struct {
	router  http.Handler
	handler *CaptureHandler
	dialogs *infraservices.RecordingDialogService
	useCase *usecases.CaptureAnalysisUseCase
}

func newTestServer(t *testing.T, detector *stubDetector, granted bool) *testServer {
	t.Helper()

	cameraDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(cameraDir, "photo.png"), pngBytes(t), 0o644); err != nil {
		t.Fatal(err)
	}

	status := valueobjects.PermissionDenied
	if granted {
		status = valueobjects.PermissionGranted
	}
	permissions := infraservices.NewStaticPermissionService(map[valueobjects.Capability]valueobjects.PermissionStatus{
		valueobjects.CapabilityCamera:  status,
		valueobjects.CapabilityStorage: status,
	}, false)

	dialogs := infraservices.NewRecordingDialogService()
	state := repositories.NewMemoryUIStateRepository()
	options := usecases.DefaultCaptureOptions()
	options.PhotoSize = valueobjects.PhotoSizeFull

	useCase := usecases.NewCaptureAnalysisUseCase(
		domainservices.NewPermissionDomainService(permissions, zerolog.Nop()),
		infraservices.NewFileMediaService(cameraDir, nil, zerolog.Nop()),
		domainservices.NewDetectionDomainService(detector),
		domainservices.NewNarrationDomainService(infraservices.NopSpeechService{}, zerolog.Nop()),
		dialogs,
		state,
		options,
		zerolog.Nop(),
	)

	handler := NewCaptureHandler(useCase, services.NewParameterService(), state, dialogs, zerolog.Nop())
	return &testServer{
		router:  NewRouter(handler),
		handler: handler,
		dialogs: dialogs,
		useCase: useCase,
	}
}

func (s *testServer) do(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var body map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("invalid JSON response: %v", err)
		}
	}
	return rec, body
}

func multipartRequest(t *testing.T, url string, data []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if data != nil {
		part, err := writer.CreateFormFile("image", "photo.png")
		if err != nil {
			t.Fatal(err)
		}
		part.Write(data)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, url, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestHandleCapture_Completed(t *testing.T) {
	server := newTestServer(t, &stubDetector{result: cupAndTable()}, true)

	rec, body := server.do(t, httptest.NewRequest(http.MethodPost, "/capture", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if body["outcome"] != "completed" {
		t.Errorf("outcome = %v, want completed", body["outcome"])
	}
	if body["result_text"] != "cup Confidence: 91\ntable Confidence: 76\n\n" {
		t.Errorf("result_text = %q", body["result_text"])
	}
	if objects := body["objects"].([]any); len(objects) != 2 {
		t.Errorf("objects = %d, want 2", len(objects))
	}

	rec, body = server.do(t, httptest.NewRequest(http.MethodGet, "/state", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /state status = %d", rec.Code)
	}
	if body["placeholder_visible"] != false || body["image_format"] != "png" {
		t.Errorf("state = %v", body)
	}
	if body["busy"] != false || body["loading"] != false {
		t.Errorf("pipeline should be idle after the run: %v", body)
	}

	rec, _ = server.do(t, httptest.NewRequest(http.MethodGet, "/state/image", nil))
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/png" {
		t.Errorf("GET /state/image = %d %s", rec.Code, rec.Header().Get("Content-Type"))
	}
}

func TestHandlePick(t *testing.T) {
	t.Run("upload is analysed", func(t *testing.T) {
		server := newTestServer(t, &stubDetector{result: entities.NewAnalysisResult("stub", nil)}, true)

		rec, body := server.do(t, multipartRequest(t, "/pick", pngBytes(t)))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		if body["outcome"] != "completed" || body["result_text"] != "\n" {
			t.Errorf("body = %v", body)
		}
	})

	t.Run("missing file is a cancelled pick", func(t *testing.T) {
		server := newTestServer(t, &stubDetector{result: cupAndTable()}, true)

		rec, body := server.do(t, multipartRequest(t, "/pick", nil))
		if rec.Code != http.StatusOK || body["outcome"] != "cancelled" {
			t.Errorf("status = %d, body = %v", rec.Code, body)
		}
		if len(server.dialogs.Alerts()) != 0 {
			t.Error("cancel should not alert")
		}
	})

	t.Run("oversized upload", func(t *testing.T) {
		server := newTestServer(t, &stubDetector{result: cupAndTable()}, true)

		rec, _ := server.do(t, multipartRequest(t, "/pick", make([]byte, maxFileSize+1)))
		if rec.Code != http.StatusRequestEntityTooLarge {
			t.Errorf("status = %d, want 413", rec.Code)
		}
	})

	t.Run("oversized chunked upload on capture route", func(t *testing.T) {
		server := newTestServer(t, &stubDetector{result: cupAndTable()}, true)

		req := multipartRequest(t, "/capture?source=gallery", make([]byte, maxFileSize+1))
		req.ContentLength = -1
		rec, _ := server.do(t, req)
		if rec.Code != http.StatusRequestEntityTooLarge {
			t.Errorf("status = %d, want 413", rec.Code)
		}
		if len(server.dialogs.Alerts()) != 0 {
			t.Error("rejected upload should not reach the pipeline")
		}
	})

	t.Run("source gallery on capture route", func(t *testing.T) {
		server := newTestServer(t, &stubDetector{result: cupAndTable()}, true)

		rec, body := server.do(t, multipartRequest(t, "/capture/gallery", pngBytes(t)))
		if rec.Code != http.StatusOK || body["source"] != "gallery" {
			t.Errorf("status = %d, body = %v", rec.Code, body)
		}
	})
}

func TestHandleCapture_Failures(t *testing.T) {
	tests := []struct {
		name       string
		detector   *stubDetector
		granted    bool
		wantStatus int
		wantAlert  string
	}{
		{
			name:       "permission denied",
			detector:   &stubDetector{result: cupAndTable()},
			granted:    false,
			wantStatus: http.StatusForbidden,
			wantAlert:  "Unable to take photos",
		},
		{
			name:       "remote failure",
			detector:   &stubDetector{err: errors.New("connection reset")},
			granted:    true,
			wantStatus: http.StatusBadGateway,
			wantAlert:  "connection reset",
		},
		{
			name:       "quota exceeded",
			detector:   &stubDetector{err: errors.New("Error 429, Status: RESOURCE_EXHAUSTED")},
			granted:    true,
			wantStatus: http.StatusTooManyRequests,
			wantAlert:  "Error 429, Status: RESOURCE_EXHAUSTED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newTestServer(t, tt.detector, tt.granted)

			rec, body := server.do(t, httptest.NewRequest(http.MethodPost, "/capture", nil))
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d, body = %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if body["result_text"] != "" {
				t.Errorf("result_text = %q, want empty", body["result_text"])
			}

			_, alerts := server.do(t, httptest.NewRequest(http.MethodGet, "/alerts", nil))
			list := alerts["alerts"].([]any)
			if len(list) != 1 {
				t.Fatalf("alerts = %d, want 1", len(list))
			}
			if msg := list[0].(map[string]any)["message"].(string); !strings.Contains(msg, tt.wantAlert) {
				t.Errorf("alert = %q, want it to contain %q", msg, tt.wantAlert)
			}
		})
	}
}

func TestHandleCapture_Busy(t *testing.T) {
	detector := &stubDetector{
		result:  cupAndTable(),
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	server := newTestServer(t, detector, true)

	done := make(chan int)
	go func() {
		rec := httptest.NewRecorder()
		server.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/capture", nil))
		done <- rec.Code
	}()

	<-detector.started

	rec, _ := server.do(t, httptest.NewRequest(http.MethodPost, "/capture", nil))
	if rec.Code != http.StatusConflict {
		t.Errorf("concurrent capture status = %d, want 409", rec.Code)
	}

	_, state := server.do(t, httptest.NewRequest(http.MethodGet, "/state", nil))
	if state["busy"] != true || state["loading"] != true || state["phase"] != "analyzing" {
		t.Errorf("state while analysing = %v", state)
	}
	if state["placeholder_visible"] != false || state["result_text"] != "" {
		t.Errorf("preview should be published before the result: %v", state)
	}

	close(detector.release)
	if code := <-done; code != http.StatusOK {
		t.Errorf("first capture status = %d, want 200", code)
	}
}

func TestHandleStateImage_NoImage(t *testing.T) {
	server := newTestServer(t, &stubDetector{}, true)

	rec, _ := server.do(t, httptest.NewRequest(http.MethodGet, "/state/image", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandleHealthAndIndex(t *testing.T) {
	server := newTestServer(t, &stubDetector{}, true)

	rec, _ := server.do(t, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("GET /healthz = %d %q", rec.Code, rec.Body.String())
	}

	rec, _ = server.do(t, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Take Photo") {
		t.Errorf("GET / = %d", rec.Code)
	}

	rec, _ = server.do(t, httptest.NewRequest(http.MethodOptions, "/capture", nil))
	if rec.Code != http.StatusOK || rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("OPTIONS /capture = %d", rec.Code)
	}
}

func TestHandleWebSocket(t *testing.T) {
	server := newTestServer(t, &stubDetector{result: cupAndTable()}, true)

	httpServer := httptest.NewServer(server.router)
	defer httpServer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(httpServer.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.CloseNow()

	var first stateResponse
	if err := wsjson.Read(ctx, conn, &first); err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if first.Revision != 0 || !first.PlaceholderVisible {
		t.Errorf("first snapshot = %+v", first)
	}

	resp, err := http.Post(httpServer.URL+"/capture", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /capture error = %v", err)
	}
	resp.Body.Close()

	// Preview then result.
	var last stateResponse
	for i := 0; i < 2; i++ {
		if err := wsjson.Read(ctx, conn, &last); err != nil {
			t.Fatalf("Read() #%d error = %v", i, err)
		}
	}
	if last.Revision != 2 || last.ResultText != "cup Confidence: 91\ntable Confidence: 76\n\n" {
		t.Errorf("last snapshot = %+v", last)
	}

	conn.Close(websocket.StatusNormalClosure, "")
}
