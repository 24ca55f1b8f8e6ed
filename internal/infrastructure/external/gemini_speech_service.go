package external

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	genai_std "google.golang.org/genai"

	"object-detection-demo/internal/domain/repositories"
)

const (
	DefaultSpeechModel = "gemini-2.5-flash-preview-tts"
	DefaultSpeechVoice = "Kore"

	// Gemini TTS returns 16-bit mono PCM at 24kHz.
	speechSampleRate    = 24000
	speechChannels      = 1
	speechBitsPerSample = 16
)

// GeminiSpeechService synthesizes each phrase with Gemini TTS and writes it as a WAV file.
type GeminiSpeechService struct {
	pool      repositories.GenAIClientPool
	model     string
	voice     string
	outputDir string
	log       zerolog.Logger
}

func NewGeminiSpeechService(pool repositories.GenAIClientPool, model, voice, outputDir string, log zerolog.Logger) (repositories.SpeechService, error) {
	if model == "" {
		model = DefaultSpeechModel
	}
	if voice == "" {
		voice = DefaultSpeechVoice
	}
	if outputDir == "" {
		outputDir = os.TempDir()
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create speech output directory: %w", err)
	}

	return &GeminiSpeechService{
		pool:      pool,
		model:     model,
		voice:     voice,
		outputDir: outputDir,
		log:       log,
	}, nil
}

func (s *GeminiSpeechService) Speak(ctx context.Context, text string) error {
	client, err := s.pool.GetGenAIClient(ctx)
	if err != nil {
		return err
	}

	resp, err := client.Models.GenerateContent(ctx, s.model, genai_std.Text(text), &genai_std.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai_std.SpeechConfig{
			VoiceConfig: &genai_std.VoiceConfig{
				PrebuiltVoiceConfig: &genai_std.PrebuiltVoiceConfig{
					VoiceName: s.voice,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to synthesize speech: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return fmt.Errorf("no audio in response")
	}

	var pcm []byte
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.InlineData != nil {
			pcm = append(pcm, part.InlineData.Data...)
		}
	}
	if len(pcm) == 0 {
		return fmt.Errorf("no audio in response")
	}

	path := filepath.Join(s.outputDir, fmt.Sprintf("speech-%d.wav", time.Now().UnixNano()))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create audio file: %w", err)
	}
	defer f.Close()

	if err := writeWAV(f, pcm, speechSampleRate, speechChannels, speechBitsPerSample); err != nil {
		return fmt.Errorf("failed to write audio file: %w", err)
	}

	s.log.Info().Str("text", text).Str("file", path).Int("bytes", len(pcm)).Msg("Speech synthesized")
	return nil
}

// writeWAV wraps raw little-endian PCM samples in a canonical RIFF header.
func writeWAV(w io.Writer, pcm []byte, sampleRate, channels, bitsPerSample int) error {
	blockAlign := channels * bitsPerSample / 8
	byteRate := sampleRate * blockAlign

	header := []any{
		[4]byte{'R', 'I', 'F', 'F'},
		uint32(36 + len(pcm)),
		[4]byte{'W', 'A', 'V', 'E'},
		[4]byte{'f', 'm', 't', ' '},
		uint32(16),
		uint16(1), // PCM
		uint16(channels),
		uint32(sampleRate),
		uint32(byteRate),
		uint16(blockAlign),
		uint16(bitsPerSample),
		[4]byte{'d', 'a', 't', 'a'},
		uint32(len(pcm)),
	}
	for _, field := range header {
		if err := binary.Write(w, binary.LittleEndian, field); err != nil {
			return err
		}
	}

	_, err := w.Write(pcm)
	return err
}
