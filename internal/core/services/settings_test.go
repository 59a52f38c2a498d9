package services

import (
	"context"
	"testing"

	"github.com/lexcraft-labs/lexcraft-core/internal/core/domain"
	"github.com/lexcraft-labs/lexcraft-core/internal/core/ports/driven/mocks"
	"github.com/lexcraft-labs/lexcraft-core/internal/core/ports/driving"
	"github.com/lexcraft-labs/lexcraft-core/internal/runtime"
)

func newTestSettings() (driving.SettingsService, *runtime.Services, *mocks.MockSettingsStore, *mocks.MockAIServiceFactory) {
	store := mocks.NewMockSettingsStore()
	factory := mocks.NewMockAIServiceFactory()
	config := domain.NewRuntimeConfig("chromem", "redis")
	config.SetVectorStoreAvailable(true)
	services := runtime.NewServices(config)
	svc := NewSettingsService(store, factory, services, nil)
	return svc, services, store, factory
}

func TestSettingsService_GetAISettings_Unset(t *testing.T) {
	svc, _, _, _ := newTestSettings()

	settings, err := svc.GetAISettings(context.Background())
	if err != nil {
		t.Fatalf("unset settings must not error: %v", err)
	}
	if settings.Embedding.IsConfigured() || settings.LLM.IsConfigured() {
		t.Error("fresh settings should be unconfigured")
	}
}

func TestSettingsService_UpdateAISettings_HotReload(t *testing.T) {
	svc, services, store, _ := newTestSettings()

	status, err := svc.UpdateAISettings(context.Background(), driving.UpdateAISettingsRequest{
		Embedding: &driving.EmbeddingSettingsInput{
			Provider: domain.AIProviderOllama,
			Model:    "nomic-embed-text",
			BaseURL:  "http://localhost:11434",
		},
		LLM: &driving.LLMSettingsInput{
			Provider: domain.AIProviderOllama,
			Model:    "llama3",
			BaseURL:  "http://localhost:11434",
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !status.Embedding.Available {
		t.Error("embedding should be available after update")
	}
	if !status.LLM.Available {
		t.Error("llm should be available after update")
	}
	if status.VectorStore.Backend != "chromem" {
		t.Errorf("vector store backend %q", status.VectorStore.Backend)
	}

	// Services were actually swapped in.
	if services.EmbeddingService() == nil {
		t.Error("embedding service not hot-reloaded")
	}
	if services.LLMService() == nil {
		t.Error("llm service not hot-reloaded")
	}
	if !services.Config().CanGenerate() {
		t.Error("generation capability flag not raised")
	}

	// And persisted.
	saved, err := store.GetAISettings(context.Background())
	if err != nil {
		t.Fatalf("settings not persisted: %v", err)
	}
	if saved.LLM.Model != "llama3" {
		t.Errorf("persisted model %q", saved.LLM.Model)
	}
}

func TestSettingsService_UpdateAISettings_InvalidProvider(t *testing.T) {
	svc, _, _, _ := newTestSettings()

	_, err := svc.UpdateAISettings(context.Background(), driving.UpdateAISettingsRequest{
		LLM: &driving.LLMSettingsInput{Provider: "clippy", Model: "v1", APIKey: "k"},
	})
	if err == nil {
		t.Fatal("unknown provider should be rejected")
	}
}

func TestSettingsService_UpdateAISettings_MissingAPIKey(t *testing.T) {
	svc, services, _, _ := newTestSettings()

	// OpenAI without a key is unconfigured: saved, but not activated.
	status, err := svc.UpdateAISettings(context.Background(), driving.UpdateAISettingsRequest{
		Embedding: &driving.EmbeddingSettingsInput{
			Provider: domain.AIProviderOpenAI,
			Model:    "text-embedding-3-small",
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.Embedding.Available {
		t.Error("embedding without API key must not activate")
	}
	if services.EmbeddingService() != nil {
		t.Error("unconfigured embedding should be disabled")
	}
}

func TestSettingsService_UpdateAISettings_FactoryFailure(t *testing.T) {
	svc, services, _, factory := newTestSettings()
	factory.SetFailLLM(true)

	status, err := svc.UpdateAISettings(context.Background(), driving.UpdateAISettingsRequest{
		LLM: &driving.LLMSettingsInput{
			Provider: domain.AIProviderOllama,
			Model:    "llama3",
		},
	})
	if err != nil {
		t.Fatalf("factory failure must not fail the update: %v", err)
	}
	if status.LLM.Available {
		t.Error("llm should be unavailable after factory failure")
	}
	if services.LLMService() != nil {
		t.Error("failed service must not be installed")
	}
}

func TestSettingsService_UpdateAISettings_Disable(t *testing.T) {
	svc, services, _, _ := newTestSettings()

	// Enable, then disable by clearing the provider.
	if _, err := svc.UpdateAISettings(context.Background(), driving.UpdateAISettingsRequest{
		LLM: &driving.LLMSettingsInput{Provider: domain.AIProviderOllama, Model: "llama3"},
	}); err != nil {
		t.Fatal(err)
	}
	status, err := svc.UpdateAISettings(context.Background(), driving.UpdateAISettingsRequest{
		LLM: &driving.LLMSettingsInput{},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.LLM.Available {
		t.Error("cleared llm should be unavailable")
	}
	if services.LLMService() != nil {
		t.Error("cleared llm service still installed")
	}
	if services.Config().CanGenerate() {
		t.Error("generation capability flag not lowered")
	}
}

func TestSettingsService_GetAIStatus(t *testing.T) {
	svc, _, _, _ := newTestSettings()

	status, err := svc.GetAIStatus(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.Embedding.Available || status.LLM.Available {
		t.Error("fresh runtime should report both services unavailable")
	}
	if !status.VectorStore.Available {
		t.Error("vector store marked unavailable")
	}

	if _, err := svc.UpdateAISettings(context.Background(), driving.UpdateAISettingsRequest{
		Embedding: &driving.EmbeddingSettingsInput{Provider: domain.AIProviderOllama, Model: "nomic-embed-text"},
	}); err != nil {
		t.Fatal(err)
	}

	status, err = svc.GetAIStatus(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !status.Embedding.Available {
		t.Error("embedding should be reported available")
	}
	if status.Embedding.EmbeddingDim == 0 {
		t.Error("embedding dimension missing from status")
	}
}
