package services

import (
	"context"

	"github.com/rs/zerolog"

	"object-detection-demo/internal/domain/repositories"
	"object-detection-demo/internal/domain/valueobjects"
)

type PermissionDomainService struct {
	provider repositories.PermissionProvider
	log      zerolog.Logger
}

func NewPermissionDomainService(provider repositories.PermissionProvider, log zerolog.Logger) *PermissionDomainService {
	return &PermissionDomainService{
		provider: provider,
		log:      log,
	}
}

// EnsureGranted re-queries every capability. When any is missing a single combined
// request is issued for all of them. A failed check counts as not determined and a
// failed request as denied.
func (s *PermissionDomainService) EnsureGranted(ctx context.Context, capabilities []valueobjects.Capability) bool {
	statuses := make(map[valueobjects.Capability]valueobjects.PermissionStatus, len(capabilities))
	for _, capability := range capabilities {
		status, err := s.provider.CheckStatus(ctx, capability)
		if err != nil {
			s.log.Warn().Err(err).Str("capability", string(capability)).Msg("Permission check failed")
			status = valueobjects.PermissionNotDetermined
		}
		statuses[capability] = status
	}

	if allGranted(capabilities, statuses) {
		return true
	}

	requested, err := s.provider.Request(ctx, capabilities)
	if err != nil {
		s.log.Warn().Err(err).Msg("Permission request failed")
		return false
	}

	for _, capability := range capabilities {
		statuses[capability] = requested[capability]
	}

	granted := allGranted(capabilities, statuses)
	if !granted {
		event := s.log.Info()
		for _, capability := range capabilities {
			event = event.Str(string(capability), statuses[capability].String())
		}
		event.Msg("Permissions not granted")
	}
	return granted
}

func allGranted(capabilities []valueobjects.Capability, statuses map[valueobjects.Capability]valueobjects.PermissionStatus) bool {
	for _, capability := range capabilities {
		if !statuses[capability].IsGranted() {
			return false
		}
	}
	return true
}
