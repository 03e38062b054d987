package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"cellar/internal/enrich"
)

const envPrefix = "CELLAR"

// Config holds CLI configuration.
type Config struct {
	DBPath    string `envconfig:"DB"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"console"`

	AIProvider      string        `envconfig:"AI_PROVIDER"`
	AITimeout       time.Duration `envconfig:"AI_TIMEOUT" default:"60s"`
	AnthropicAPIKey string        `envconfig:"ANTHROPIC_API_KEY"`
	AnthropicModel  string        `envconfig:"ANTHROPIC_MODEL"`
	AnthropicURL    string        `envconfig:"ANTHROPIC_URL"`
	OpenAIAPIKey    string        `envconfig:"OPENAI_API_KEY"`
	OpenAIModel     string        `envconfig:"OPENAI_MODEL"`
	OpenAIURL       string        `envconfig:"OPENAI_URL"`

	ConfigDir   string `ignored:"true"`
	ScanEnabled bool   `ignored:"true"`
}

// LoadConfig reads .env files and the environment. Explicit flag values win
// over both.
func LoadConfig(dbFlag, logLevelFlag string) (*Config, error) {
	loadDotEnv(".env", ".env.local")

	cfg := &Config{}
	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if v := strings.TrimSpace(dbFlag); v != "" {
		cfg.DBPath = v
	}
	if v := strings.TrimSpace(logLevelFlag); v != "" {
		cfg.LogLevel = v
	}

	if cfg.DBPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		cfg.ConfigDir = filepath.Join(home, ".cellar")
		cfg.DBPath = filepath.Join(cfg.ConfigDir, "cellar.db")
	} else {
		cfg.ConfigDir = filepath.Dir(cfg.DBPath)
	}

	settings, err := loadOnboardingSettings(cfg.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load onboarding settings: %w", err)
	}
	if err := cfg.applySettings(settings); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applySettings fills the provider and key from onboarding when the
// environment leaves them unset.
func (c *Config) applySettings(settings OnboardingSettings) error {
	c.ScanEnabled = true
	if settings.Completed && !settings.ScanEnabled && !c.hasEnvKey() {
		c.ScanEnabled = false
		return nil
	}
	if c.AIProvider == "" {
		c.AIProvider = settings.Provider
	}

	provider := c.AIProvider
	if provider == "" {
		provider = providerAnthropic
	}
	switch provider {
	case providerAnthropic:
		if c.AnthropicAPIKey != "" {
			return nil
		}
	case providerOpenAI:
		if c.OpenAIAPIKey != "" {
			return nil
		}
	default:
		return nil
	}

	key, err := loadSecureAPIKey(c.ConfigDir, provider)
	if err != nil {
		return fmt.Errorf("failed to load secure %s API key: %w", provider, err)
	}
	if provider == providerOpenAI {
		c.OpenAIAPIKey = key
	} else {
		c.AnthropicAPIKey = key
	}
	return nil
}

func (c *Config) hasEnvKey() bool {
	return strings.TrimSpace(c.AnthropicAPIKey) != "" || strings.TrimSpace(c.OpenAIAPIKey) != ""
}

// ProviderConfig is the enrichment backend configuration.
func (c *Config) ProviderConfig() enrich.ProviderConfig {
	return enrich.ProviderConfig{
		Provider:        c.AIProvider,
		Timeout:         c.AITimeout,
		AnthropicAPIKey: c.AnthropicAPIKey,
		AnthropicModel:  c.AnthropicModel,
		AnthropicURL:    c.AnthropicURL,
		OpenAIAPIKey:    c.OpenAIAPIKey,
		OpenAIModel:     c.OpenAIModel,
		OpenAIURL:       c.OpenAIURL,
	}
}

// LogPath is where the TUI writes its log.
func (c *Config) LogPath() string {
	return filepath.Join(c.ConfigDir, "cellar.log")
}

// loadDotEnv loads env files that exist. Variables already set are kept.
func loadDotEnv(paths ...string) {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		_ = godotenv.Load(path)
	}
}
