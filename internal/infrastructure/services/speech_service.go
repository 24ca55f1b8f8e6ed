package services

import (
	"context"
	"fmt"
	"io"
	"sync"

	"object-detection-demo/internal/domain/repositories"
)

// ConsoleSpeechService writes each phrase instead of playing it.
type ConsoleSpeechService struct {
	mutex sync.Mutex
	out   io.Writer
}

func NewConsoleSpeechService(out io.Writer) *ConsoleSpeechService {
	return &ConsoleSpeechService{out: out}
}

func (s *ConsoleSpeechService) Speak(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	_, err := fmt.Fprintf(s.out, "(speaking) %s\n", text)
	return err
}

type NopSpeechService struct{}

func (NopSpeechService) Speak(ctx context.Context, text string) error {
	return nil
}

var (
	_ repositories.SpeechService = (*ConsoleSpeechService)(nil)
	_ repositories.SpeechService = NopSpeechService{}
)
