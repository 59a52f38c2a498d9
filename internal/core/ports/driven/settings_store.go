package driven

import (
	"context"

	"github.com/lexcraft-labs/lexcraft-core/internal/core/domain"
)

// SettingsStore persists AI provider settings. API keys are stored encrypted
// by the implementation and returned decrypted.
type SettingsStore interface {
	// GetAISettings retrieves the current AI settings.
	// Returns domain.ErrNotFound when none have been saved.
	GetAISettings(ctx context.Context) (*domain.AISettings, error)

	// SaveAISettings persists AI settings
	SaveAISettings(ctx context.Context, settings *domain.AISettings) error
}
