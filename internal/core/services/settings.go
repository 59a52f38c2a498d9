package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/lexcraft-labs/lexcraft-core/internal/core/domain"
	"github.com/lexcraft-labs/lexcraft-core/internal/core/ports/driven"
	"github.com/lexcraft-labs/lexcraft-core/internal/core/ports/driving"
	"github.com/lexcraft-labs/lexcraft-core/internal/runtime"
)

// Ensure settingsService implements SettingsService
var _ driving.SettingsService = (*settingsService)(nil)

// settingsService implements the SettingsService interface
type settingsService struct {
	settingsStore driven.SettingsStore
	aiFactory     driven.AIServiceFactory
	services      *runtime.Services
	logger        *slog.Logger
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(
	settingsStore driven.SettingsStore,
	aiFactory driven.AIServiceFactory,
	services *runtime.Services,
	logger *slog.Logger,
) driving.SettingsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &settingsService{
		settingsStore: settingsStore,
		aiFactory:     aiFactory,
		services:      services,
		logger:        logger,
	}
}

// GetAISettings retrieves the current AI configuration
func (s *settingsService) GetAISettings(ctx context.Context) (*domain.AISettings, error) {
	settings, err := s.settingsStore.GetAISettings(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &domain.AISettings{}, nil
		}
		return nil, err
	}
	return settings, nil
}

// UpdateAISettings updates AI configuration and hot-reloads services
func (s *settingsService) UpdateAISettings(ctx context.Context, req driving.UpdateAISettingsRequest) (*driving.AISettingsStatus, error) {
	// Get current settings or start fresh
	aiSettings, err := s.settingsStore.GetAISettings(ctx)
	if err != nil {
		aiSettings = &domain.AISettings{}
	}

	// Update embedding settings if provided
	if req.Embedding != nil {
		aiSettings.Embedding = domain.EmbeddingSettings{
			Provider: req.Embedding.Provider,
			Model:    req.Embedding.Model,
			APIKey:   req.Embedding.APIKey,
			BaseURL:  req.Embedding.BaseURL,
		}
	}

	// Update LLM settings if provided
	if req.LLM != nil {
		aiSettings.LLM = domain.LLMSettings{
			Provider: req.LLM.Provider,
			Model:    req.LLM.Model,
			APIKey:   req.LLM.APIKey,
			BaseURL:  req.LLM.BaseURL,
		}
	}

	// Validate
	if err := aiSettings.Validate(); err != nil {
		return nil, err
	}

	aiSettings.UpdatedAt = time.Now()

	// Save to persistent store
	if err := s.settingsStore.SaveAISettings(ctx, aiSettings); err != nil {
		return nil, err
	}

	// Hot-reload services
	status := &driving.AISettingsStatus{}

	// Create and set embedding service
	if aiSettings.Embedding.IsConfigured() {
		embSvc, err := s.aiFactory.CreateEmbeddingService(&aiSettings.Embedding)
		if err != nil {
			s.logger.Warn("embedding service creation failed", "provider", aiSettings.Embedding.Provider, "error", err)
			status.Embedding = driving.AIServiceStatus{Available: false}
		} else if err := s.services.ValidateAndSetEmbedding(ctx, embSvc); err != nil {
			s.logger.Warn("embedding service validation failed", "provider", aiSettings.Embedding.Provider, "error", err)
			status.Embedding = driving.AIServiceStatus{Available: false}
		} else {
			status.Embedding = driving.AIServiceStatus{
				Available:    true,
				Provider:     aiSettings.Embedding.Provider,
				Model:        aiSettings.Embedding.Model,
				EmbeddingDim: embSvc.Dimensions(),
			}
		}
	} else {
		// Explicitly disable
		s.services.SetEmbeddingService(nil)
		status.Embedding = driving.AIServiceStatus{Available: false}
	}

	// Create and set LLM service
	if aiSettings.LLM.IsConfigured() {
		llmSvc, err := s.aiFactory.CreateLLMService(&aiSettings.LLM)
		if err != nil {
			s.logger.Warn("llm service creation failed", "provider", aiSettings.LLM.Provider, "error", err)
			status.LLM = driving.AIServiceStatus{Available: false}
		} else if err := s.services.ValidateAndSetLLM(ctx, llmSvc); err != nil {
			s.logger.Warn("llm service validation failed", "provider", aiSettings.LLM.Provider, "error", err)
			status.LLM = driving.AIServiceStatus{Available: false}
		} else {
			status.LLM = driving.AIServiceStatus{
				Available: true,
				Provider:  aiSettings.LLM.Provider,
				Model:     aiSettings.LLM.Model,
			}
		}
	} else {
		s.services.SetLLMService(nil)
		status.LLM = driving.AIServiceStatus{Available: false}
	}

	status.VectorStore = s.storeStatus()

	return status, nil
}

// GetAIStatus returns the current status of AI services
func (s *settingsService) GetAIStatus(ctx context.Context) (*driving.AISettingsStatus, error) {
	aiSettings, _ := s.settingsStore.GetAISettings(ctx)

	status := &driving.AISettingsStatus{
		VectorStore: s.storeStatus(),
	}

	// Embedding status
	embSvc := s.services.EmbeddingService()
	if embSvc != nil {
		status.Embedding = driving.AIServiceStatus{
			Available:    true,
			Model:        embSvc.Model(),
			EmbeddingDim: embSvc.Dimensions(),
		}
		if aiSettings != nil {
			status.Embedding.Provider = aiSettings.Embedding.Provider
		}
	}

	// LLM status
	llmSvc := s.services.LLMService()
	if llmSvc != nil {
		status.LLM = driving.AIServiceStatus{
			Available: true,
			Model:     llmSvc.Model(),
		}
		if aiSettings != nil {
			status.LLM.Provider = aiSettings.LLM.Provider
		}
	}

	return status, nil
}

func (s *settingsService) storeStatus() driving.StoreStatus {
	cfg := s.services.Config()
	return driving.StoreStatus{
		Available: cfg.VectorStoreAvailable(),
		Backend:   cfg.VectorStoreBackend,
	}
}
