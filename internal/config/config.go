package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Model    ModelConfig    `mapstructure:"model"`
	Acquire  AcquireConfig  `mapstructure:"acquire"`
	Forge    ForgeConfig    `mapstructure:"forge"`
	Sentinel SentinelConfig `mapstructure:"sentinel"`
	Mail     MailConfig     `mapstructure:"mail"`
	Archive  ArchiveConfig  `mapstructure:"archive"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port"`
	Mode string     `mapstructure:"mode"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // postgres or sqlite
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	Path            string        `mapstructure:"path"` // sqlite file path
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// DSN builds the driver-specific connection string.
func (c *DatabaseConfig) DSN() string {
	if c.Driver == "postgres" {
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
	}
	return c.Path
}

type ModelConfig struct {
	APIKey     string `mapstructure:"api_key"`
	BaseURL    string `mapstructure:"base_url"`
	ScoutModel string `mapstructure:"scout_model"` // fast/cheap tier, one call per chunk
	SynthModel string `mapstructure:"synth_model"` // strong tier, synthesis and repair
}

type AcquireConfig struct {
	Origin       string        `mapstructure:"origin"`        // base for resolving relative document links
	UserAgent    string        `mapstructure:"user_agent"`    // outbound identity for the scraped site
	LocaleMarker string        `mapstructure:"locale_marker"` // selects the English-language PDF variant
	PageTimeout  time.Duration `mapstructure:"page_timeout"`
	DocTimeout   time.Duration `mapstructure:"doc_timeout"`
}

type ForgeConfig struct {
	Workers          int           `mapstructure:"workers"`    // scout fan-out cap
	ChunkSize        int           `mapstructure:"chunk_size"` // max characters per scout chunk
	Budget           time.Duration `mapstructure:"budget"`     // wall-clock budget per batch invocation
	RetryAttempts    int           `mapstructure:"retry_attempts"`
	RetryInitialWait time.Duration `mapstructure:"retry_initial_wait"`
}

type SentinelConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	FeedURL string `mapstructure:"feed_url"`
	MaxNew  int    `mapstructure:"max_new"` // cap on rows enqueued per run
}

type MailConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	APIKey    string `mapstructure:"api_key"`
	BaseURL   string `mapstructure:"base_url"`
	From      string `mapstructure:"from"`
	Recipient string `mapstructure:"recipient"`
}

type ArchiveConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	PublicURL string `mapstructure:"public_url"`
}

func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	// Set config file path
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// Enable environment variable override
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors.allow_all_origins", true)
	v.SetDefault("server.cors.allowed_origins", []string{})
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/lexalpha.db")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("model.base_url", "https://api.openai.com/v1")
	v.SetDefault("model.scout_model", "gpt-4o-mini")
	v.SetDefault("model.synth_model", "gpt-4o")
	v.SetDefault("acquire.origin", "https://www.fedlex.admin.ch")
	v.SetDefault("acquire.user_agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36")
	v.SetDefault("acquire.locale_marker", "-en")
	v.SetDefault("acquire.page_timeout", 30*time.Second)
	v.SetDefault("acquire.doc_timeout", 60*time.Second)
	v.SetDefault("forge.workers", 5)
	v.SetDefault("forge.chunk_size", 12000)
	v.SetDefault("forge.budget", 4*time.Minute)
	v.SetDefault("forge.retry_attempts", 5)
	v.SetDefault("forge.retry_initial_wait", time.Second)
	v.SetDefault("sentinel.enabled", false)
	v.SetDefault("sentinel.max_new", 20)
	v.SetDefault("mail.enabled", false)
	v.SetDefault("mail.base_url", "https://api.resend.com")
	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.use_ssl", true)
	v.SetDefault("archive.bucket", "lexalpha-documents")

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Bind environment variables explicitly for sensitive data
	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("model.api_key", "OPENAI_API_KEY")
	v.BindEnv("model.base_url", "OPENAI_BASE_URL")
	v.BindEnv("mail.api_key", "RESEND_API_KEY")
	v.BindEnv("mail.recipient", "ALERT_RECIPIENT")
	v.BindEnv("archive.access_key", "ARCHIVE_ACCESS_KEY")
	v.BindEnv("archive.secret_key", "ARCHIVE_SECRET_KEY")
	v.BindEnv("archive.endpoint", "ARCHIVE_ENDPOINT")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the presence of credentials the pipeline cannot run
// without. A missing key here is a fatal startup error, never a per-job one.
func (c *Config) Validate() error {
	if c.Model.APIKey == "" {
		return fmt.Errorf("config: model.api_key is required (set OPENAI_API_KEY)")
	}
	if c.Database.Driver == "postgres" {
		if c.Database.Host == "" || c.Database.Name == "" {
			return fmt.Errorf("config: database.host and database.name are required for postgres")
		}
	}
	if c.Mail.Enabled {
		if c.Mail.APIKey == "" || c.Mail.Recipient == "" || c.Mail.From == "" {
			return fmt.Errorf("config: mail.api_key, mail.from and mail.recipient are required when mail is enabled")
		}
	}
	if c.Archive.Enabled {
		if c.Archive.AccessKey == "" || c.Archive.SecretKey == "" {
			return fmt.Errorf("config: archive credentials are required when archiving is enabled")
		}
	}
	if c.Sentinel.Enabled && c.Sentinel.FeedURL == "" {
		return fmt.Errorf("config: sentinel.feed_url is required when the sentinel is enabled")
	}
	return nil
}
