package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	AppName      string `env:"AUTH_APP_NAME" envDefault:"codecave-auth"`
	AppEnv       string `env:"AUTH_APP_ENV" envDefault:"local"`
	HTTPHost     string `env:"AUTH_HTTP_HOST" envDefault:"0.0.0.0"`
	HTTPPort     string `env:"AUTH_HTTP_PORT" envDefault:"8081"`
	HTTPBasePath string `env:"AUTH_HTTP_BASE_PATH" envDefault:"/api/v1"`

	DBHost     string `env:"AUTH_DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"AUTH_DB_PORT" envDefault:"5432"`
	DBUser     string `env:"AUTH_DB_USER" envDefault:"app"`
	DBPassword string `env:"AUTH_DB_PASSWORD" envDefault:"app_password"`
	DBName     string `env:"AUTH_DB_NAME" envDefault:"codecave"`
	DBSSLMode  string `env:"AUTH_DB_SSLMODE" envDefault:"disable"`

	JWTSecret        string        `env:"AUTH_JWT_SECRET"`
	JWTRefreshSecret string        `env:"AUTH_JWT_REFRESH_SECRET"`
	JWTAudience      string        `env:"AUTH_JWT_AUDIENCE" envDefault:"codecave"`
	JWTIssuer        string        `env:"AUTH_JWT_ISSUER" envDefault:"codecave-auth"`
	AccessTTL        time.Duration `env:"AUTH_JWT_ACCESS_TTL" envDefault:"24h"`
	RefreshTTL       time.Duration `env:"AUTH_JWT_REFRESH_TTL" envDefault:"168h"`

	SessionCookieName string `env:"AUTH_SESSION_COOKIE" envDefault:"codecave_session"`
	SessionAuthority  string `env:"AUTH_SESSION_AUTHORITY" envDefault:"nats"`

	NATSURL                  string `env:"NATS_URL" envDefault:"nats://localhost:4222"`
	NATSSessionVerifySubject string `env:"NATS_SUBJECT_SESSION_VERIFY" envDefault:"session.verify"`
	NATSTokenVerifySubject   string `env:"NATS_SUBJECT_VERIFY_JWT" envDefault:"auth.verifyJWT"`

	RedisAddr     string `env:"AUTH_REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"AUTH_REDIS_PASSWORD"`
	RedisDB       int    `env:"AUTH_REDIS_DB" envDefault:"0"`

	SupabaseURL        string `env:"SUPABASE_URL"`
	SupabaseServiceKey string `env:"SUPABASE_SERVICE_KEY"`

	GitHubClientID     string `env:"OAUTH_GITHUB_CLIENT_ID"`
	GitHubClientSecret string `env:"OAUTH_GITHUB_CLIENT_SECRET"`
	GitHubCallbackURL  string `env:"OAUTH_GITHUB_CALLBACK_URL"`

	GoogleClientID     string `env:"OAUTH_GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"OAUTH_GOOGLE_CLIENT_SECRET"`
	GoogleCallbackURL  string `env:"OAUTH_GOOGLE_CALLBACK_URL"`

	LinkedInClientID     string `env:"OAUTH_LINKEDIN_CLIENT_ID"`
	LinkedInClientSecret string `env:"OAUTH_LINKEDIN_CLIENT_SECRET"`
	LinkedInCallbackURL  string `env:"OAUTH_LINKEDIN_CALLBACK_URL"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) IsProduction() bool { return c.AppEnv == "production" }

// MissingCredentials lists required external-service settings that are
// unset. Missing entries are fatal in production and a logged warning
// everywhere else.
func (c *Config) MissingCredentials() []string {
	var missing []string
	if c.JWTSecret == "" {
		missing = append(missing, "AUTH_JWT_SECRET")
	}
	if c.SupabaseURL == "" {
		missing = append(missing, "SUPABASE_URL")
	}
	if c.SupabaseServiceKey == "" {
		missing = append(missing, "SUPABASE_SERVICE_KEY")
	}
	for _, p := range []struct{ name, id, secret string }{
		{"GITHUB", c.GitHubClientID, c.GitHubClientSecret},
		{"GOOGLE", c.GoogleClientID, c.GoogleClientSecret},
		{"LINKEDIN", c.LinkedInClientID, c.LinkedInClientSecret},
	} {
		if p.id == "" || p.secret == "" {
			missing = append(missing, fmt.Sprintf("OAUTH_%s_CLIENT_ID/SECRET", p.name))
		}
	}
	return missing
}

// Validate enforces the startup contract for external credentials.
func (c *Config) Validate() error {
	if missing := c.MissingCredentials(); len(missing) > 0 && c.IsProduction() {
		return fmt.Errorf("missing required credentials: %s", strings.Join(missing, ", "))
	}
	return nil
}
