package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	Server   ServerConfig
	GitHub   GitHubConfig
	Owners   OwnerConfig
	Calendar CalendarConfig
	DueDate  DueDateConfig
	Assembly AssemblyAIConfig
	LLM      LLMConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Storage  StorageConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string   `envconfig:"PORT" default:"8080"`
	Host            string   `envconfig:"HOST" default:"0.0.0.0"`
	Environment     string   `envconfig:"ENVIRONMENT" default:"development"`
	AllowedOrigins  []string `envconfig:"ALLOWED_ORIGINS" default:"*"`
	ShutdownTimeout int      `envconfig:"SHUTDOWN_TIMEOUT" default:"10"`
	DataDir         string   `envconfig:"DATA_DIR" default:"data"`
}

// GitHubConfig holds the issue tracker target and credential.
// Token or Repo left empty puts the dispatcher in mock mode.
type GitHubConfig struct {
	Token         string        `split_words:"true"`
	Repo          string        `split_words:"true"`
	BaseURL       string        `split_words:"true" default:"https://api.github.com"`
	DefaultLabels []string      `split_words:"true" default:"meeting,action-item"`
	Timeout       time.Duration `split_words:"true" default:"30s"`
}

// OwnerConfig holds the owner name -> tracker handle table
type OwnerConfig struct {
	Map     map[string]string `split_words:"true"`
	MapFile string            `split_words:"true"`
}

// CalendarConfig holds calendar artifact configuration
type CalendarConfig struct {
	OutputDir       string `split_words:"true" default:"tmp"`
	DurationMinutes int    `split_words:"true" default:"30"`
	EventTimezone   string `split_words:"true" default:"UTC"`
}

// DueDateConfig holds the zone used for relative due-date phrases
type DueDateConfig struct {
	Timezone string `split_words:"true" default:"Asia/Kolkata"`
}

// AssemblyAIConfig holds transcription configuration
type AssemblyAIConfig struct {
	APIKey       string        `split_words:"true"`
	BaseURL      string        `split_words:"true"`
	Language     string        `split_words:"true" default:"en"`
	PollInterval time.Duration `split_words:"true" default:"3s"`
	Timeout      time.Duration `split_words:"true" default:"10m"`
}

// LLMConfig holds insight extraction configuration
type LLMConfig struct {
	Provider   string `default:"azure"` // "azure" or "openai"
	APIKey     string `split_words:"true"`
	BaseURL    string `split_words:"true"`
	Model      string `split_words:"true" default:"o4-mini"`
	APIVersion string `split_words:"true" default:"2025-01-01-preview"`
	MaxTokens  int    `split_words:"true" default:"20000"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Enabled     bool   `split_words:"true" default:"false"`
	Host        string `split_words:"true" default:"localhost"`
	Port        string `split_words:"true" default:"5432"`
	User        string `split_words:"true" default:"postgres"`
	Password    string `split_words:"true" default:"postgres"`
	Name        string `split_words:"true" default:"post_meeting_agent"`
	SSLMode     string `envconfig:"SSLMODE" default:"disable"`
	MaxConns    int    `split_words:"true" default:"25"`
	MinConns    int    `split_words:"true" default:"5"`
	AutoMigrate bool   `split_words:"true" default:"false"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool          `split_words:"true" default:"false"`
	Host     string        `split_words:"true" default:"localhost"`
	Port     string        `split_words:"true" default:"6379"`
	Password string        `split_words:"true"`
	DB       int           `split_words:"true" default:"0"`
	CacheTTL time.Duration `split_words:"true" default:"24h"`
}

// StorageConfig holds storage configuration
type StorageConfig struct {
	Enabled         bool          `split_words:"true" default:"false"`
	Endpoint        string        `split_words:"true" default:"localhost:9000"`
	AccessKeyID     string        `split_words:"true" default:"minioadmin"`
	SecretAccessKey string        `split_words:"true" default:"minioadmin"`
	BucketName      string        `split_words:"true" default:"post-meeting-agent"`
	Region          string        `split_words:"true" default:"us-east-1"`
	UseSSL          bool          `split_words:"true" default:"false"`
	PublicURL       string        `split_words:"true"`
	URLExpiry       time.Duration `split_words:"true" default:"168h"`
}

// sections maps each envconfig prefix to the struct it populates
func (c *Config) sections() map[string]interface{} {
	return map[string]interface{}{
		"":           &c.Server,
		"github":     &c.GitHub,
		"owner":      &c.Owners,
		"calendar":   &c.Calendar,
		"due_date":   &c.DueDate,
		"assemblyai": &c.Assembly,
		"llm":        &c.LLM,
		"db":         &c.Database,
		"redis":      &c.Redis,
		"storage":    &c.Storage,
	}
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	config := &Config{}
	for prefix, section := range config.sections() {
		if err := envconfig.Process(prefix, section); err != nil {
			return nil, fmt.Errorf("failed to load %q configuration: %w", prefix, err)
		}
	}

	owners, err := buildOwnerTable(config.Owners)
	if err != nil {
		return nil, err
	}
	config.Owners.Map = owners

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.GitHub.Repo != "" {
		parts := strings.Split(c.GitHub.Repo, "/")
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return fmt.Errorf("GITHUB_REPO must look like owner/name, got %q", c.GitHub.Repo)
		}
	}
	if c.Calendar.DurationMinutes <= 0 {
		return fmt.Errorf("CALENDAR_DURATION_MINUTES must be positive")
	}
	if _, err := time.LoadLocation(c.Calendar.EventTimezone); err != nil {
		return fmt.Errorf("CALENDAR_EVENT_TIMEZONE is invalid: %w", err)
	}
	if _, err := time.LoadLocation(c.DueDate.Timezone); err != nil {
		return fmt.Errorf("DUE_DATE_TIMEZONE is invalid: %w", err)
	}
	switch c.LLM.Provider {
	case "azure", "openai":
	default:
		return fmt.Errorf("LLM_PROVIDER must be azure or openai, got %q", c.LLM.Provider)
	}
	return nil
}

// TrackerConfigured reports whether real issue creation is possible
func (c *Config) TrackerConfigured() bool {
	return c.GitHub.Token != "" && c.GitHub.Repo != ""
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// DefaultOwnerTable returns the documented name -> handle mappings.
// The first two handles come from OWNER_NAME_1 and OWNER_NAME_2.
func DefaultOwnerTable() map[string]string {
	return map[string]string{
		"mrinali": getEnv("OWNER_NAME_1", ""),
		"alice":   getEnv("OWNER_NAME_2", ""),
		"bob":     "bob-real-github-username",
	}
}

// buildOwnerTable merges defaults, the YAML file and OWNER_MAP, later sources winning.
// Keys are lower-cased; entries with an empty handle are dropped so the name passes through.
func buildOwnerTable(cfg OwnerConfig) (map[string]string, error) {
	table := make(map[string]string)
	merge := func(src map[string]string) {
		for name, handle := range src {
			key := strings.ToLower(strings.TrimSpace(name))
			handle = strings.TrimSpace(handle)
			if key == "" {
				continue
			}
			if handle == "" {
				delete(table, key)
				continue
			}
			table[key] = handle
		}
	}

	merge(DefaultOwnerTable())

	if cfg.MapFile != "" {
		fromFile, err := LoadOwnerFile(cfg.MapFile)
		if err != nil {
			return nil, err
		}
		merge(fromFile)
	}

	merge(cfg.Map)
	return table, nil
}

// LoadOwnerFile reads a YAML document of the form:
//
//	owners:
//	  alice: alice-gh
//	  bob: bob-gh
func LoadOwnerFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read owner map file: %w", err)
	}
	var doc struct {
		Owners map[string]string `yaml:"owners"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse owner map file: %w", err)
	}
	return doc.Owners, nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
