// Package config reads the process configuration from the environment and
// an optional .env file.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds every setting the server needs.
type Config struct {
	Port          string
	MongoURI      string
	MongoDatabase string

	JWTSecret string
	// JWTSecretGenerated is set when no JWT_SECRET was configured and a random
	// one was created for this process. Tokens do not survive a restart.
	JWTSecretGenerated bool
	JWTTTL             time.Duration

	UploadDir   string
	CORSOrigins []string
	GinMode     string
	AppEnv      string

	RedisURL        string
	LoginRateLimit  int
	LoginRateWindow time.Duration

	TextbeltAPIKey string
	TextbeltURL    string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "5000")
	v.SetDefault("MONGO_URI", "")
	v.SetDefault("MONGO_DATABASE", "parishrama")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("APP_ENV", EnvProduction)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("LOGIN_RATE_LIMIT", 5)
	v.SetDefault("LOGIN_RATE_WINDOW", "15m")
	v.SetDefault("TEXTBELT_API_KEY", "")
	v.SetDefault("TEXTBELT_URL", "https://textbelt.com/text")
}

// Load reads .env files (when present) into the environment and builds a
// Config from it. Missing values fall back to defaults; nothing is fatal.
func Load(envFiles ...string) (*Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load(envFiles...)

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		Port:            v.GetString("PORT"),
		MongoURI:        v.GetString("MONGO_URI"),
		MongoDatabase:   v.GetString("MONGO_DATABASE"),
		JWTSecret:       v.GetString("JWT_SECRET"),
		JWTTTL:          v.GetDuration("JWT_TTL"),
		UploadDir:       v.GetString("UPLOAD_DIR"),
		CORSOrigins:     splitList(v.GetString("CORS_ORIGINS")),
		GinMode:         v.GetString("GIN_MODE"),
		AppEnv:          v.GetString("APP_ENV"),
		RedisURL:        v.GetString("REDIS_URL"),
		LoginRateLimit:  v.GetInt("LOGIN_RATE_LIMIT"),
		LoginRateWindow: v.GetDuration("LOGIN_RATE_WINDOW"),
		TextbeltAPIKey:  v.GetString("TEXTBELT_API_KEY"),
		TextbeltURL:     v.GetString("TEXTBELT_URL"),
	}

	if cfg.JWTTTL <= 0 {
		cfg.JWTTTL = 24 * time.Hour
	}
	if cfg.LoginRateLimit <= 0 {
		cfg.LoginRateLimit = 5
	}
	if cfg.LoginRateWindow <= 0 {
		cfg.LoginRateWindow = 15 * time.Minute
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}
	if cfg.JWTSecret == "" {
		secret, err := randomSecret()
		if err != nil {
			return nil, err
		}
		cfg.JWTSecret = secret
		cfg.JWTSecretGenerated = true
	}
	return cfg, nil
}

func (c *Config) IsDevelopment() bool { return c.AppEnv == EnvDevelopment }

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string { return ":" + c.Port }

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
