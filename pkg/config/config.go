package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

// Config is the application configuration
type Config struct {
	// Environment
	Environment string
	Port        string

	// Database: exactly one backend is used, chosen Postgres > Supabase > SQLite
	PostgresDSN string
	SupabaseURL string
	SupabaseKey string
	SQLitePath  string

	// JWT secret shared with the identity provider
	JWTSecret string

	// CORS
	AllowedOrigins []string

	// Settings defaults used when a user has no settings row yet
	DefaultCompanyName string
	DefaultTimezone    string

	Debug    bool
	LogLevel string
}

// FileConfig is the optional workspace.yaml layout. Environment variables win over it.
type FileConfig struct {
	Environment string `yaml:"environment"`
	Port        string `yaml:"port"`

	Database struct {
		PostgresDSN string `yaml:"postgres_dsn"`
		SupabaseURL string `yaml:"supabase_url"`
		SupabaseKey string `yaml:"supabase_service_key"`
		SQLitePath  string `yaml:"sqlite_path"`
	} `yaml:"database"`

	Auth struct {
		JWTSecret string `yaml:"jwt_secret"`
	} `yaml:"auth"`

	AllowedOrigins []string `yaml:"allowed_origins"`

	Defaults struct {
		CompanyName string `yaml:"company_name"`
		Timezone    string `yaml:"timezone"`
	} `yaml:"defaults"`

	Debug    bool   `yaml:"debug"`
	LogLevel string `yaml:"log_level"`
}

// LoadConfig loads configuration from the optional yaml file, the .env file
// matching ENVIRONMENT and the process environment, in increasing priority.
func LoadConfig() *Config {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	switch env {
	case "production":
		loadEnvFile(".env.production")
	default:
		loadEnvFile(".env.local")
	}

	file, err := LoadFileConfig(GetConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: ignoring config file: %v\n", err)
	}
	if file == nil {
		file = &FileConfig{}
	}

	config := &Config{
		Environment:        getEnvWithDefault("ENVIRONMENT", firstNonEmpty(file.Environment, "development")),
		Port:               getEnvWithDefault("PORT", firstNonEmpty(file.Port, "3000")),
		JWTSecret:          getEnvWithDefault("JWT_SECRET", firstNonEmpty(file.Auth.JWTSecret, defaultJWTSecret)),
		DefaultCompanyName: getEnvWithDefault("DEFAULT_COMPANY_NAME", firstNonEmpty(file.Defaults.CompanyName, "My Company")),
		DefaultTimezone:    getEnvWithDefault("TZ", file.Defaults.Timezone),
		Debug:              getEnvBool("DEBUG", file.Debug),
		LogLevel:           getEnvWithDefault("LOG_LEVEL", firstNonEmpty(file.LogLevel, "info")),
	}

	// Trim whitespace to avoid trailing spaces/newlines from env sources
	config.PostgresDSN = strings.TrimSpace(getEnvWithDefault("POSTGRES_DSN", file.Database.PostgresDSN))
	config.SupabaseURL = strings.TrimSpace(getEnvWithDefault("SUPABASE_URL", file.Database.SupabaseURL))
	config.SupabaseKey = strings.TrimSpace(getEnvWithDefault("SUPABASE_SERVICE_KEY", file.Database.SupabaseKey))
	config.SQLitePath = strings.TrimSpace(getEnvWithDefault("SQLITE_PATH", file.Database.SQLitePath))

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	switch {
	case allowedOrigins != "":
		config.AllowedOrigins = splitList(allowedOrigins)
	case len(file.AllowedOrigins) > 0:
		config.AllowedOrigins = file.AllowedOrigins
	default:
		config.AllowedOrigins = []string{"*"}
	}

	if config.Environment == "production" {
		config.Debug = false
	} else if !config.hasExternalDatabase() && config.SQLitePath == "" {
		// Local development falls back to a SQLite file
		config.SQLitePath = "workspace.db"
	}

	return config
}

// Cached config (initialized once per cold start)
var (
	cachedConfig *Config
	configOnce   sync.Once
)

// GetCached returns the process-wide cached Config.
// On serverless platforms it initializes once per cold start and
// is reused across warm invocations.
func GetCached() *Config {
	configOnce.Do(func() {
		cachedConfig = LoadConfig()
	})
	return cachedConfig
}

// Validate checks the configuration for missing or unsafe values
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.JWTSecret == "" || c.JWTSecret == defaultJWTSecret {
		if c.IsProduction() {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
	}

	if c.SupabaseURL != "" && c.SupabaseKey == "" {
		return fmt.Errorf("SUPABASE_SERVICE_KEY is required when SUPABASE_URL is set")
	}

	if !c.hasExternalDatabase() && c.SQLitePath == "" {
		return fmt.Errorf("database configuration incomplete: set POSTGRES_DSN, SUPABASE_URL+SUPABASE_SERVICE_KEY or SQLITE_PATH")
	}

	return nil
}

// IsProduction reports whether this is the production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsDevelopment reports whether this is the development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// String returns a printable summary with secrets masked
func (c *Config) String() string {
	return fmt.Sprintf("Config{env: %s, port: %s, postgres: %t, supabase: %t, sqlite: %q, jwt: ***}",
		c.Environment, c.Port, c.PostgresDSN != "", c.SupabaseURL != "", c.SQLitePath)
}

func (c *Config) hasExternalDatabase() bool {
	return c.PostgresDSN != "" || (c.SupabaseURL != "" && c.SupabaseKey != "")
}

// GetConfigPath returns the yaml config file to load, or "" when there is none
func GetConfigPath() string {
	if path := os.Getenv("WORKSPACE_CONFIG"); path != "" {
		return path
	}
	for _, loc := range []string{"workspace.yaml", "workspace.yml", ".workspace.yaml"} {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}
	return ""
}

// LoadFileConfig parses the yaml config file. An empty path yields (nil, nil).
func LoadFileConfig(path string) (*FileConfig, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &fc, nil
}

// getEnvWithDefault returns the environment variable or defaultValue when unset
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns the environment variable parsed as a bool
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// loadEnvFile loads a .env file without overriding variables that are already set
func loadEnvFile(filename string) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return
	}
	if err := godotenv.Load(filename); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", filename, err)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
