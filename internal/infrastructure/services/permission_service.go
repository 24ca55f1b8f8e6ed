package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"object-detection-demo/internal/domain/repositories"
	"object-detection-demo/internal/domain/valueobjects"
)

// 設定で決まる権限状態を返すプロバイダ
type StaticPermissionService struct {
	mutex          sync.RWMutex
	statuses       map[valueobjects.Capability]valueobjects.PermissionStatus
	grantOnRequest bool
}

// grantOnRequest が true の場合、リクエストされた権限はすべて許可される
func NewStaticPermissionService(
	statuses map[valueobjects.Capability]valueobjects.PermissionStatus,
	grantOnRequest bool,
) *StaticPermissionService {
	copied := make(map[valueobjects.Capability]valueobjects.PermissionStatus, len(statuses))
	for capability, status := range statuses {
		copied[capability] = status
	}

	return &StaticPermissionService{
		statuses:       copied,
		grantOnRequest: grantOnRequest,
	}
}

func (s *StaticPermissionService) CheckStatus(ctx context.Context, capability valueobjects.Capability) (valueobjects.PermissionStatus, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.statuses[capability], nil
}

func (s *StaticPermissionService) Request(ctx context.Context, capabilities []valueobjects.Capability) (map[valueobjects.Capability]valueobjects.PermissionStatus, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	result := make(map[valueobjects.Capability]valueobjects.PermissionStatus, len(capabilities))
	for _, capability := range capabilities {
		status := s.statuses[capability]
		if status != valueobjects.PermissionGranted {
			if s.grantOnRequest {
				status = valueobjects.PermissionGranted
			} else {
				status = valueobjects.PermissionDenied
			}
			s.statuses[capability] = status
		}
		result[capability] = status
	}

	return result, nil
}

// LinePrompter reads one line of user input after showing a prompt.
type LinePrompter interface {
	Prompt(prompt string) (string, error)
}

// 端末でユーザーに権限を尋ねるプロバイダ
// 一度回答された権限はプロセス終了まで記憶する
type PromptPermissionService struct {
	mutex    sync.Mutex
	prompter LinePrompter
	statuses map[valueobjects.Capability]valueobjects.PermissionStatus
	log      zerolog.Logger
}

func NewPromptPermissionService(prompter LinePrompter, log zerolog.Logger) *PromptPermissionService {
	return &PromptPermissionService{
		prompter: prompter,
		statuses: make(map[valueobjects.Capability]valueobjects.PermissionStatus),
		log:      log,
	}
}

func (s *PromptPermissionService) CheckStatus(ctx context.Context, capability valueobjects.Capability) (valueobjects.PermissionStatus, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.statuses[capability], nil
}

// Request asks a single yes/no question covering every capability not yet granted.
func (s *PromptPermissionService) Request(ctx context.Context, capabilities []valueobjects.Capability) (map[valueobjects.Capability]valueobjects.PermissionStatus, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	var pending []string
	for _, capability := range capabilities {
		if s.statuses[capability] != valueobjects.PermissionGranted {
			pending = append(pending, string(capability))
		}
	}

	if len(pending) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		answer, err := s.prompter.Prompt(fmt.Sprintf("Allow access to %s? [y/N] ", strings.Join(pending, " and ")))
		if err != nil {
			return nil, fmt.Errorf("failed to read permission answer: %w", err)
		}

		status := valueobjects.PermissionDenied
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			status = valueobjects.PermissionGranted
		}

		for _, capability := range capabilities {
			if s.statuses[capability] != valueobjects.PermissionGranted {
				s.statuses[capability] = status
			}
		}

		s.log.Info().Strs("capabilities", pending).Str("status", status.String()).Msg("Permission answered")
	}

	result := make(map[valueobjects.Capability]valueobjects.PermissionStatus, len(capabilities))
	for _, capability := range capabilities {
		result[capability] = s.statuses[capability]
	}
	return result, nil
}

var (
	_ repositories.PermissionProvider = (*StaticPermissionService)(nil)
	_ repositories.PermissionProvider = (*PromptPermissionService)(nil)
)
