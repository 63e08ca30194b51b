package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Standard REST PKI policy and security context used by default
const (
	PolicyPadesBasic         = "78d20b33-014d-440e-ad07-929f05d00cdf"
	SecurityContextPkiBrazil = "201856ce-273c-4058-a872-8937bd547d36"
)

const (
	MinPositionPreset = 1
	MaxPositionPreset = 6
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	RestPKI   RestPKIConfig   `mapstructure:"restpki"`
	Signature SignatureConfig `mapstructure:"signature"`
	Document  DocumentConfig  `mapstructure:"document"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type AppConfig struct {
	Name    string `mapstructure:"name"`
	Port    int    `mapstructure:"port"`
	Env     string `mapstructure:"env"`
	BaseURL string `mapstructure:"base_url"`
}

type RestPKIConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	AccessToken string        `mapstructure:"access_token"`
	Timeout     time.Duration `mapstructure:"timeout"` // seconds in the yaml file
}

type SignatureConfig struct {
	PolicyID          string `mapstructure:"policy_id"`
	SecurityContextID string `mapstructure:"security_context_id"`
	PositionPreset    int    `mapstructure:"position_preset"`
	FirstDocument     int    `mapstructure:"first_document"`
	LastDocument      int    `mapstructure:"last_document"`
	StampMimeType     string `mapstructure:"stamp_mime_type"`
	TextTemplate      string `mapstructure:"text_template"`
}

type DocumentConfig struct {
	DocumentsDir string `mapstructure:"documents_dir"` // Folder with the NN.pdf inputs
	StampPath    string `mapstructure:"stamp_path"`    // Image drawn behind the signature text
	OutputDir    string `mapstructure:"output_dir"`    // Publicly served folder for signed files
}

type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TokenTTL time.Duration `mapstructure:"token_ttl"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func NewConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Enable environment variable override
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	return load(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "restpki-batch")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.env", "development")
	v.SetDefault("restpki.base_url", "https://pki.rest/")
	v.SetDefault("restpki.timeout", 30)
	v.SetDefault("signature.policy_id", PolicyPadesBasic)
	v.SetDefault("signature.security_context_id", SecurityContextPkiBrazil)
	v.SetDefault("signature.position_preset", 1)
	v.SetDefault("signature.first_document", 1)
	v.SetDefault("signature.last_document", 30)
	v.SetDefault("signature.stamp_mime_type", "image/png")
	v.SetDefault("signature.text_template", "Signed by {{signerName}} ({{signerNationalId}})")
	v.SetDefault("document.documents_dir", "static")
	v.SetDefault("document.stamp_path", "static/PdfStamp.png")
	v.SetDefault("document.output_dir", "app-data")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.token_ttl", 1800)
	v.SetDefault("logging.level", "info")
}

func load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Convert timeouts to duration
	cfg.RestPKI.Timeout = cfg.RestPKI.Timeout * time.Second
	cfg.Redis.TokenTTL = cfg.Redis.TokenTTL * time.Second

	// REST PKI paths are appended to the base URL without a leading slash
	if cfg.RestPKI.BaseURL != "" && !strings.HasSuffix(cfg.RestPKI.BaseURL, "/") {
		cfg.RestPKI.BaseURL += "/"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects configurations that would only fail deep inside a signature call.
func (c *Config) Validate() error {
	if c.RestPKI.AccessToken == "" || strings.Contains(c.RestPKI.AccessToken, " API ") {
		return fmt.Errorf("restpki.access_token is not set")
	}
	if c.RestPKI.BaseURL == "" {
		return fmt.Errorf("restpki.base_url is not set")
	}
	if c.Signature.PositionPreset < MinPositionPreset || c.Signature.PositionPreset > MaxPositionPreset {
		return fmt.Errorf("signature.position_preset must be between %d and %d, got %d",
			MinPositionPreset, MaxPositionPreset, c.Signature.PositionPreset)
	}
	if c.Signature.FirstDocument < 1 || c.Signature.LastDocument > 99 || c.Signature.FirstDocument > c.Signature.LastDocument {
		return fmt.Errorf("invalid document range %d..%d", c.Signature.FirstDocument, c.Signature.LastDocument)
	}
	if c.Signature.PolicyID == "" || c.Signature.SecurityContextID == "" {
		return fmt.Errorf("signature.policy_id and signature.security_context_id are required")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
