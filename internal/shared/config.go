package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
//
// Environment variables override file values (see the env tags), so a
// deployment can run without a config file at all.
type Config struct {
	Server      ServerConfig      `toml:"server"`
	Database    DatabaseConfig    `toml:"database"`
	Catalog     CatalogConfig     `toml:"catalog"`
	Auth        AuthConfig        `toml:"auth"`
	Credentials CredentialsConfig `toml:"credentials"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host       string `toml:"host" env:"STREAMTUNES_HOST"`
	Port       int    `toml:"port" env:"PORT"`
	CORSOrigin string `toml:"cors_origin" env:"CORS_ORIGIN"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path" env:"STREAMTUNES_DB_PATH"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// CatalogConfig contains settings for the upstream Audius catalog client.
type CatalogConfig struct {
	DirectoryURL      string  `toml:"directory_url" env:"AUDIUS_DIRECTORY_URL"`
	AppName           string  `toml:"app_name" env:"AUDIUS_APP_NAME"`
	TimeoutSeconds    int     `toml:"timeout_seconds" env:"AUDIUS_TIMEOUT_SECONDS"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// AuthConfig contains token issuance settings.
type AuthConfig struct {
	JWTSecret     string `toml:"jwt_secret" env:"JWT_SECRET"`
	TokenTTLHours int    `toml:"token_ttl_hours" env:"JWT_TTL_HOURS"`
}

// CredentialsConfig contains third-party OAuth credentials.
type CredentialsConfig struct {
	Google GoogleConfig `toml:"google"`
}

// GoogleConfig contains Google OAuth2 credentials for social sign-in.
type GoogleConfig struct {
	ClientID     string `toml:"client_id" env:"GOOGLE_CLIENT_ID"`
	ClientSecret string `toml:"client_secret" env:"GOOGLE_CLIENT_SECRET"`
	RedirectURI  string `toml:"redirect_uri" env:"GOOGLE_REDIRECT_URI"`
}

// LoadConfig reads and parses a TOML configuration file from the specified
// path, then applies environment variable overrides.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := env.Parse(&config); err != nil {
		return nil, fmt.Errorf("failed to apply env overrides: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the
// embedded example config, with environment variable overrides applied.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	if err := env.Parse(&config); err != nil {
		panic(fmt.Sprintf("failed to apply env overrides: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
