package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (SITECHAT_*). Nested keys use
// underscores doubled as separators: SITECHAT_AI__API_KEY -> ai.api_key.
func Load(path string) (*Settings, error) {
	k := koanf.New(".")

	cfg := DefaultSettings()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider("SITECHAT_", ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, "SITECHAT_"))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (s *Settings) Save(path string) error {
	data, err := yamlv3.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// validProviders is the set of recognized provider values.
var validProviders = map[ProviderType]bool{
	ProviderOpenRouter: true,
	ProviderCustom:     true,
}

// validLocales is the set of supported response locales.
var validLocales = map[Locale]bool{
	LocaleEnglish: true,
	LocaleChinese: true,
}

// Validate checks that the configuration contains valid values.
func (s *Settings) Validate() error {
	if s.AI.Provider == "" {
		return fmt.Errorf("ai.provider is required")
	}
	if !validProviders[s.AI.Provider] {
		return fmt.Errorf("invalid ai.provider %q: must be one of openrouter, custom", s.AI.Provider)
	}
	if s.AI.Provider == ProviderCustom {
		if s.AI.Endpoint == "" {
			return fmt.Errorf("ai.endpoint is required for the custom provider")
		}
		if _, err := url.ParseRequestURI(s.AI.Endpoint); err != nil {
			return fmt.Errorf("invalid ai.endpoint %q: %w", s.AI.Endpoint, err)
		}
	}

	if s.Site.DefaultLocale != "" && !validLocales[s.Site.DefaultLocale] {
		return fmt.Errorf("invalid site.default_locale %q: must be one of en, zh", s.Site.DefaultLocale)
	}

	if s.Server.Port <= 0 || s.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535")
	}

	if s.Prompt.MaxPromptChars < 1000 {
		return fmt.Errorf("prompt.max_prompt_chars must be at least 1000")
	}
	if s.Prompt.MaxHistoryTurns < 0 {
		return fmt.Errorf("prompt.max_history_turns must be non-negative")
	}

	if s.Harvest.MaxArticles < 0 || s.Harvest.MaxPages < 0 || s.Harvest.MaxProducts < 0 {
		return fmt.Errorf("harvest limits must be non-negative")
	}
	if s.Harvest.ImportantThreshold < 1 {
		return fmt.Errorf("harvest.important_threshold must be at least 1")
	}

	if s.Retention.Days < 1 {
		return fmt.Errorf("retention.days must be at least 1")
	}

	return nil
}

// APIKeyEnvVar is the conventional environment variable consulted when
// ai.api_key is not set in the config file.
const APIKeyEnvVar = "SITECHAT_AI__API_KEY"

// ResolveAPIKey returns the configured API key, falling back to the
// provider-conventional environment variable.
func (s *Settings) ResolveAPIKey() string {
	if s.AI.APIKey != "" {
		return s.AI.APIKey
	}
	return os.Getenv("OPENROUTER_API_KEY")
}
