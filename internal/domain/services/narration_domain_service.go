package services

import (
	"context"

	"github.com/rs/zerolog"

	"object-detection-demo/internal/domain/entities"
	"object-detection-demo/internal/domain/repositories"
)

const ObjectsFoundPhrase = "objects found"

type NarrationDomainService struct {
	speech repositories.SpeechService
	log    zerolog.Logger
}

func NewNarrationDomainService(speech repositories.SpeechService, log zerolog.Logger) *NarrationDomainService {
	return &NarrationDomainService{
		speech: speech,
		log:    log,
	}
}

// Narrate speaks the announcement and then each label, one utterance at a time.
// Failed utterances are logged and skipped.
func (s *NarrationDomainService) Narrate(ctx context.Context, objects []entities.DetectedObject) {
	if len(objects) == 0 {
		return
	}

	s.say(ctx, ObjectsFoundPhrase)
	for _, obj := range objects {
		if obj.Label() == "" {
			continue
		}
		s.say(ctx, obj.Label())
	}
}

func (s *NarrationDomainService) say(ctx context.Context, text string) {
	if err := s.speech.Speak(ctx, text); err != nil {
		s.log.Warn().Err(err).Str("text", text).Msg("Narration failed")
	}
}
