package services

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"object-detection-demo/internal/domain/repositories"
)

const maxRecordedAlerts = 50

// 端末に出力するダイアログ
type ConsoleDialogService struct {
	mutex sync.Mutex
	out   io.Writer
}

func NewConsoleDialogService(out io.Writer) *ConsoleDialogService {
	return &ConsoleDialogService{out: out}
}

func (s *ConsoleDialogService) Alert(ctx context.Context, message, title, buttonLabel string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	_, err := fmt.Fprintf(s.out, "[%s] %s (%s)\n", title, message, buttonLabel)
	return err
}

func (s *ConsoleDialogService) ShowLoading(title string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	fmt.Fprintf(s.out, "%s...\n", title)
}

func (s *ConsoleDialogService) HideLoading() {}

type Alert struct {
	Message     string    `json:"message"`
	Title       string    `json:"title"`
	ButtonLabel string    `json:"button_label"`
	ShownAt     time.Time `json:"shown_at"`
}

// RecordingDialogService keeps alerts and the loading indicator so that remote
// clients can render them. Only the most recent alerts are kept.
type RecordingDialogService struct {
	mutex        sync.RWMutex
	alerts       []Alert
	loading      bool
	loadingTitle string
}

func NewRecordingDialogService() *RecordingDialogService {
	return &RecordingDialogService{}
}

func (s *RecordingDialogService) Alert(ctx context.Context, message, title, buttonLabel string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.alerts = append(s.alerts, Alert{
		Message:     message,
		Title:       title,
		ButtonLabel: buttonLabel,
		ShownAt:     time.Now(),
	})
	if len(s.alerts) > maxRecordedAlerts {
		s.alerts = s.alerts[len(s.alerts)-maxRecordedAlerts:]
	}
	return nil
}

func (s *RecordingDialogService) ShowLoading(title string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.loading = true
	s.loadingTitle = title
}

func (s *RecordingDialogService) HideLoading() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.loading = false
	s.loadingTitle = ""
}

// Alerts returns the recorded alerts, oldest first.
func (s *RecordingDialogService) Alerts() []Alert {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	alerts := make([]Alert, len(s.alerts))
	copy(alerts, s.alerts)
	return alerts
}

func (s *RecordingDialogService) Loading() (bool, string) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.loading, s.loadingTitle
}

var (
	_ repositories.DialogService = (*ConsoleDialogService)(nil)
	_ repositories.DialogService = (*RecordingDialogService)(nil)
)
