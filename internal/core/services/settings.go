package services

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/custodia-labs/kassist/internal/core/domain"
	"github.com/custodia-labs/kassist/internal/core/ports/driven"
	"github.com/custodia-labs/kassist/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider = "embedding.provider"
	keyEmbedModel    = "embedding.model"
	keyEmbedBaseURL  = "embedding.base_url"
	keyEmbedAPIKey   = "embedding.api_key"
	keyEmbedRPS      = "embedding.requests_per_second"
	keyLLMProvider   = "llm.provider"
	keyLLMModel      = "llm.model"
	keyLLMBaseURL    = "llm.base_url"
	keyLLMAPIKey     = "llm.api_key"
	keyLLMTimeout    = "llm.timeout_seconds"
	keyTopK          = "retrieval.top_k"
	keyDataDir       = "data.dir"
)

// Environment variables consulted when no API key is configured.
//
//nolint:gosec // G101: These are variable names, not credentials.
const (
	envOpenAIKey    = "OPENAI_API_KEY"
	envAnthropicKey = "ANTHROPIC_API_KEY"
)

const defaultOllamaURL = "http://localhost:11434"

// SettingKeys lists the keys accepted by Set, in display order.
func SettingKeys() []string {
	return []string{
		keyEmbedProvider, keyEmbedModel, keyEmbedBaseURL, keyEmbedAPIKey, keyEmbedRPS,
		keyLLMProvider, keyLLMModel, keyLLMBaseURL, keyLLMAPIKey, keyLLMTimeout,
		keyTopK, keyDataDir,
	}
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings.
// Unset API keys are filled from the provider's environment variable.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	settings := s.stored()
	if settings.Embedding.APIKey == "" {
		settings.Embedding.APIKey = s.envAPIKey(settings.Embedding.Provider)
	}
	if settings.LLM.APIKey == "" {
		settings.LLM.APIKey = s.envAPIKey(settings.LLM.Provider)
	}
	return settings, nil
}

// stored returns the settings held by the config store alone.
func (s *SettingsService) stored() *domain.AppSettings {
	defaults := domain.DefaultAppSettings()

	return &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider:          s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:             s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:           s.configStore.GetString(keyEmbedBaseURL), // empty is valid for cloud providers
			APIKey:            s.configStore.GetString(keyEmbedAPIKey),
			RequestsPerSecond: s.configStore.GetFloat(keyEmbedRPS),
		},
		LLM: domain.LLMSettings{
			Provider:       s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:          s.getString(keyLLMModel, defaults.LLM.Model),
			BaseURL:        s.configStore.GetString(keyLLMBaseURL),
			APIKey:         s.configStore.GetString(keyLLMAPIKey),
			TimeoutSeconds: s.getInt(keyLLMTimeout, defaults.LLM.TimeoutSeconds),
		},
		Retrieval: domain.RetrievalSettings{
			TopK: s.getInt(keyTopK, defaults.Retrieval.TopK),
		},
		DataDir: s.configStore.GetString(keyDataDir),
	}
}

// Save persists application settings.
// Empty API keys are not written.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
		skip  bool
	}{
		{keyEmbedProvider, settings.Embedding.Provider.String(), false},
		{keyEmbedModel, settings.Embedding.Model, false},
		{keyEmbedBaseURL, settings.Embedding.BaseURL, false},
		{keyEmbedAPIKey, settings.Embedding.APIKey, settings.Embedding.APIKey == ""},
		{keyEmbedRPS, settings.Embedding.RequestsPerSecond, false},
		{keyLLMProvider, settings.LLM.Provider.String(), false},
		{keyLLMModel, settings.LLM.Model, false},
		{keyLLMBaseURL, settings.LLM.BaseURL, false},
		{keyLLMAPIKey, settings.LLM.APIKey, settings.LLM.APIKey == ""},
		{keyLLMTimeout, settings.LLM.TimeoutSeconds, false},
		{keyTopK, settings.Retrieval.TopK, false},
		{keyDataDir, settings.DataDir, settings.DataDir == ""},
	}

	for _, v := range values {
		if v.skip {
			continue
		}
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// Set updates a single setting from its string form.
func (s *SettingsService) Set(key, value string) error {
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)

	var parsed any
	switch key {
	case keyEmbedProvider:
		p := domain.AIProvider(value)
		if !p.SupportsEmbedding() {
			return fmt.Errorf("%w: provider %q does not support embeddings", domain.ErrInvalidInput, value)
		}
		parsed = value
	case keyLLMProvider:
		if !domain.AIProvider(value).IsValid() {
			return fmt.Errorf("%w: unknown LLM provider %q", domain.ErrInvalidInput, value)
		}
		parsed = value
	case keyEmbedModel, keyEmbedBaseURL, keyEmbedAPIKey,
		keyLLMModel, keyLLMBaseURL, keyLLMAPIKey, keyDataDir:
		parsed = value
	case keyEmbedRPS:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number", domain.ErrInvalidInput, key)
		}
		parsed = f
	case keyLLMTimeout, keyTopK:
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("%w: %s must be a positive integer", domain.ErrInvalidInput, key)
		}
		parsed = n
	default:
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	return s.configStore.Set(key, parsed)
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}
	if !slices.Contains(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" && s.envAPIKey(provider) == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings := s.stored()
	settings.Embedding.Provider = provider
	settings.Embedding.Model = pickModel(model, domain.DefaultEmbeddingModels()[provider])
	settings.Embedding.BaseURL = baseURLFor(provider, settings.Embedding.BaseURL)
	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" && s.envAPIKey(provider) == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings := s.stored()
	settings.LLM.Provider = provider
	settings.LLM.Model = pickModel(model, domain.DefaultLLMModels()[provider])
	settings.LLM.BaseURL = baseURLFor(provider, settings.LLM.BaseURL)
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// Validate checks that the current settings can run ingestion and retrieval.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider %q is not configured",
			domain.ErrEmbeddingUnavailable, settings.Embedding.Provider)
	}
	if !settings.LLM.IsConfigured() {
		return fmt.Errorf("%w: LLM provider %q is not configured",
			domain.ErrLLMUnavailable, settings.LLM.Provider)
	}
	if settings.Retrieval.TopK < 1 {
		return fmt.Errorf("%w: retrieval.top_k must be positive", domain.ErrInvalidInput)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) envAPIKey(provider domain.AIProvider) string {
	switch provider {
	case domain.AIProviderOpenAI:
		return s.getenv(envOpenAIKey)
	case domain.AIProviderAnthropic:
		return s.getenv(envAnthropicKey)
	default:
		return ""
	}
}

func pickModel(model, defaultModel string) string {
	if model != "" {
		return model
	}
	return defaultModel
}

// baseURLFor keeps a custom local endpoint and clears it for cloud providers.
func baseURLFor(provider domain.AIProvider, current string) string {
	if provider != domain.AIProviderOllama {
		return ""
	}
	if current == "" {
		return defaultOllamaURL
	}
	return current
}
