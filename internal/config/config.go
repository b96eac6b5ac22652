package config

import (
	"fmt"
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Port              string `mapstructure:"PORT"`
	Env               string `mapstructure:"ENV"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DBMaxConns        int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns        int32  `mapstructure:"DB_MIN_CONNS"`
	DefaultTenant     string `mapstructure:"DEFAULT_TENANT"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	LLMProvider       string `mapstructure:"LLM_PROVIDER"`
	LLMModel          string `mapstructure:"LLM_MODEL"`
	LLMAPIKey         string `mapstructure:"LLM_API_KEY"`
	LLMBaseURL        string `mapstructure:"LLM_BASE_URL"`
	LLMTimeoutSecs    int    `mapstructure:"LLM_TIMEOUT_SECS"`
	DedupeSampleSize  int    `mapstructure:"DEDUPE_SAMPLE_SIZE"`
	SuggestSampleSize int    `mapstructure:"SUGGEST_SAMPLE_SIZE"`
	ValidationLocale  string `mapstructure:"VALIDATION_LOCALE"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("DEFAULT_TENANT", "default")
	v.SetDefault("LLM_PROVIDER", "")
	v.SetDefault("LLM_MODEL", "")
	v.SetDefault("LLM_TIMEOUT_SECS", 30)
	v.SetDefault("DEDUPE_SAMPLE_SIZE", 50)
	v.SetDefault("SUGGEST_SAMPLE_SIZE", 20)
	v.SetDefault("VALIDATION_LOCALE", "uk")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("DEFAULT_TENANT")
	v.BindEnv("JWT_SECRET")
	v.BindEnv("LLM_PROVIDER")
	v.BindEnv("LLM_MODEL")
	v.BindEnv("LLM_API_KEY")
	v.BindEnv("LLM_BASE_URL")
	v.BindEnv("LLM_TIMEOUT_SECS")
	v.BindEnv("DEDUPE_SAMPLE_SIZE")
	v.BindEnv("SUGGEST_SAMPLE_SIZE")
	v.BindEnv("VALIDATION_LOCALE")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.IsDev() {
		log.Println("WARNING: ============================================================")
		log.Println("WARNING: Server is running in DEVELOPMENT mode (ENV=development).")
		log.Println("WARNING: DevAuthMiddleware is active — all requests get admin access.")
		log.Println("WARNING: Do NOT use this configuration in production.")
		log.Println("WARNING: Set ENV=production and configure JWT_SECRET for production.")
		log.Println("WARNING: ============================================================")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// LLMEnabled reports whether a language model provider has been configured.
// When false the import pipeline runs entirely on deterministic fallbacks.
func (c *Config) LLMEnabled() bool {
	return c.LLMProvider != "" && c.LLMAPIKey != ""
}

// Validate checks that the configuration is safe to run. In non-development
// modes JWT_SECRET must be set so that real token authentication is enforced.
func (c *Config) Validate() error {
	if !c.IsDev() && c.JWTSecret == "" {
		return fmt.Errorf(
			"JWT_SECRET must be set when ENV is %q. "+
				"Refusing to start without authentication configuration", c.Env)
	}
	if c.LLMProvider != "" && c.LLMAPIKey == "" {
		return fmt.Errorf("LLM_API_KEY is required when LLM_PROVIDER is set")
	}
	if c.DedupeSampleSize < 2 {
		return fmt.Errorf("DEDUPE_SAMPLE_SIZE must be at least 2, got %d", c.DedupeSampleSize)
	}
	if c.SuggestSampleSize < 1 {
		return fmt.Errorf("SUGGEST_SAMPLE_SIZE must be at least 1, got %d", c.SuggestSampleSize)
	}
	return nil
}
