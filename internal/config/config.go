package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all runtime configuration. Every field maps to an env var of
// the same name; a local .env file is loaded first when present.
type Config struct {
	Port    int    `mapstructure:"PORT"`
	BaseURL string `mapstructure:"BASE_URL"`
	Env     string `mapstructure:"APP_ENV"` // development | production

	DBDriver string `mapstructure:"DB_DRIVER"` // mysql | postgres | sqlite
	DBDSN    string `mapstructure:"DB_DSN"`

	// Empty keeps checkout sessions in process memory.
	RedisURL string `mapstructure:"REDIS_URL"`

	JWTSecret          string `mapstructure:"JWT_SECRET"`
	JWTExpirationHours int    `mapstructure:"JWT_EXPIRATION_HOURS"`
	AllowRegistration  bool   `mapstructure:"ALLOW_REGISTRATION"`
	CORSOrigins        string `mapstructure:"CORS_ORIGINS"`

	GeminiAPIKey string `mapstructure:"GEMINI_API_KEY"`
	GeminiModel  string `mapstructure:"GEMINI_MODEL"`

	StoreName string `mapstructure:"STORE_NAME"`

	GroupIdenticalItems bool    `mapstructure:"PDV_GROUP_IDENTICAL_ITEMS"`
	BalanceTolerance    float64 `mapstructure:"PDV_BALANCE_TOLERANCE"`
	FinalizeRetries     int     `mapstructure:"PDV_FINALIZE_RETRIES"`
	SessionTTLHours     int     `mapstructure:"PDV_SESSION_TTL_HOURS"`
}

func (c *Config) IsProduction() bool { return c.Env == "production" }

// Tolerance is the balance tolerance as a decimal.
func (c *Config) Tolerance() decimal.Decimal {
	return decimal.NewFromFloat(c.BalanceTolerance)
}

func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Load reads the .env file (if any) and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("no .env file found, using environment only")
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", 8080)
	v.SetDefault("BASE_URL", "http://localhost:8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DB_DRIVER", "mysql")
	v.SetDefault("DB_DSN", "")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_EXPIRATION_HOURS", 24)
	v.SetDefault("ALLOW_REGISTRATION", false)
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173")
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_MODEL", "gemini-2.0-flash-001")
	v.SetDefault("STORE_NAME", "PDV")
	v.SetDefault("PDV_GROUP_IDENTICAL_ITEMS", false)
	v.SetDefault("PDV_BALANCE_TOLERANCE", 0.01)
	v.SetDefault("PDV_FINALIZE_RETRIES", 3)
	v.SetDefault("PDV_SESSION_TTL_HOURS", 12)

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
