// Package config provides Viper-based hierarchical configuration management.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"fjacquet/camp-registration/internal/receipt"
)

// EnvPrefix is prepended to every environment override, e.g. CAMP_LOG_LEVEL.
const EnvPrefix = "CAMP"

// DefaultReceiverAccount is the camp's CBE account used when a receipt does
// not name a receiving account.
const DefaultReceiverAccount = receipt.DefaultReceiverAccount

// DefaultCheckoutURL is the hosted Chapa page where the camp fee is paid.
const DefaultCheckoutURL = "https://checkout.chapa.co/checkout/web/payment/PL-WplnfYJznXBH"

// Config is the complete application configuration. Secrets are bound from
// unprefixed environment variables and never serialized.
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Server struct {
		Addr                string `mapstructure:"addr" yaml:"addr"`
		MaxUploadMB         int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`
		ReadTimeoutSeconds  int    `mapstructure:"read_timeout_seconds" yaml:"read_timeout_seconds"`
		WriteTimeoutSeconds int    `mapstructure:"write_timeout_seconds" yaml:"write_timeout_seconds"`
		PreviewChars        int    `mapstructure:"preview_chars" yaml:"preview_chars"`
	} `mapstructure:"server" yaml:"server"`

	Upload struct {
		Provider  string `mapstructure:"provider" yaml:"provider"`
		GCSBucket string `mapstructure:"gcs_bucket" yaml:"gcs_bucket"`
	} `mapstructure:"upload" yaml:"upload"`

	ImgBB struct {
		Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
		APIKey   string `mapstructure:"api_key" yaml:"-"`
	} `mapstructure:"imgbb" yaml:"imgbb"`

	Verify struct {
		BaseURL        string `mapstructure:"base_url" yaml:"base_url"`
		APIKey         string `mapstructure:"api_key" yaml:"-"`
		TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
		AutoVerify     bool   `mapstructure:"auto_verify" yaml:"auto_verify"`
		Suffix         string `mapstructure:"suffix" yaml:"suffix"`
	} `mapstructure:"verify" yaml:"verify"`

	Store struct {
		Driver              string `mapstructure:"driver" yaml:"driver"`
		SQLitePath          string `mapstructure:"sqlite_path" yaml:"sqlite_path"`
		FirestoreProject    string `mapstructure:"firestore_project" yaml:"firestore_project"`
		FirestoreCollection string `mapstructure:"firestore_collection" yaml:"firestore_collection"`
	} `mapstructure:"store" yaml:"store"`

	PDF struct {
		Extractor string `mapstructure:"extractor" yaml:"extractor"`
	} `mapstructure:"pdf" yaml:"pdf"`

	AI struct {
		Enabled        bool   `mapstructure:"enabled" yaml:"enabled"`
		Model          string `mapstructure:"model" yaml:"model"`
		TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
		APIKey         string `mapstructure:"api_key" yaml:"-"`
	} `mapstructure:"ai" yaml:"ai"`

	Payment struct {
		CheckoutURL string `mapstructure:"checkout_url" yaml:"checkout_url"`
	} `mapstructure:"payment" yaml:"payment"`

	Receipt struct {
		DefaultReceiverAccount string `mapstructure:"default_receiver_account" yaml:"default_receiver_account"`
	} `mapstructure:"receipt" yaml:"receipt"`

	Export struct {
		Delimiter       string `mapstructure:"delimiter" yaml:"delimiter"`
		BigQueryProject string `mapstructure:"bigquery_project" yaml:"bigquery_project"`
		BigQueryDataset string `mapstructure:"bigquery_dataset" yaml:"bigquery_dataset"`
		BigQueryTable   string `mapstructure:"bigquery_table" yaml:"bigquery_table"`
	} `mapstructure:"export" yaml:"export"`
}

// InitializeConfig loads configuration from the standard locations.
func InitializeConfig() (*Config, error) {
	return Load("")
}

// Load reads configuration in increasing priority: defaults, config file,
// environment. When configFile is empty the file is searched for as
// config.yaml in $HOME/.camp-registration, ./.camp-registration and ./;
// a missing file is not an error.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.camp-registration")
		v.AddConfigPath(".camp-registration")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	secrets := map[string]string{
		"imgbb.api_key":  "IMGBB_API_KEY",
		"verify.api_key": "VERIFY_API_KEY",
		"ai.api_key":     "GEMINI_API_KEY",
	}
	for key, env := range secrets {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("server.addr", ":3001")
	v.SetDefault("server.max_upload_mb", 5)
	v.SetDefault("server.read_timeout_seconds", 30)
	v.SetDefault("server.write_timeout_seconds", 60)
	v.SetDefault("server.preview_chars", 1000)

	v.SetDefault("upload.provider", "imgbb")
	v.SetDefault("upload.gcs_bucket", "")

	v.SetDefault("imgbb.endpoint", "https://api.imgbb.com/1/upload")
	v.SetDefault("imgbb.api_key", "")

	v.SetDefault("verify.base_url", "https://verifyapi.leulzenebe.pro")
	v.SetDefault("verify.api_key", "")
	v.SetDefault("verify.timeout_seconds", 30)
	v.SetDefault("verify.auto_verify", true)
	v.SetDefault("verify.suffix", "12345678")

	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "registrations.db")
	v.SetDefault("store.firestore_project", "")
	v.SetDefault("store.firestore_collection", "registration-public")

	v.SetDefault("pdf.extractor", "library")

	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.model", "gemini-1.5-flash")
	v.SetDefault("ai.timeout_seconds", 30)
	v.SetDefault("ai.api_key", "")

	v.SetDefault("payment.checkout_url", DefaultCheckoutURL)

	v.SetDefault("receipt.default_receiver_account", DefaultReceiverAccount)

	v.SetDefault("export.delimiter", ",")
	v.SetDefault("export.bigquery_project", "")
	v.SetDefault("export.bigquery_dataset", "camp")
	v.SetDefault("export.bigquery_table", "registrations")
}

func validateConfig(cfg *Config) error {
	if _, err := logrus.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", cfg.Log.Level)
	}
	if cfg.Log.Format != "text" && cfg.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", cfg.Log.Format)
	}

	if cfg.Server.MaxUploadMB < 1 || cfg.Server.MaxUploadMB > 100 {
		return fmt.Errorf("server.max_upload_mb must be between 1 and 100, got: %d", cfg.Server.MaxUploadMB)
	}
	if cfg.Server.PreviewChars < 0 {
		return fmt.Errorf("server.preview_chars must not be negative, got: %d", cfg.Server.PreviewChars)
	}

	switch cfg.Upload.Provider {
	case "imgbb":
	case "gcs":
		if cfg.Upload.GCSBucket == "" {
			return fmt.Errorf("upload.gcs_bucket required when upload.provider is 'gcs'")
		}
	default:
		return fmt.Errorf("invalid upload provider: %s (must be 'imgbb' or 'gcs')", cfg.Upload.Provider)
	}

	switch cfg.Store.Driver {
	case "sqlite":
		if cfg.Store.SQLitePath == "" {
			return fmt.Errorf("store.sqlite_path required when store.driver is 'sqlite'")
		}
	case "firestore":
		if cfg.Store.FirestoreProject == "" {
			return fmt.Errorf("store.firestore_project required when store.driver is 'firestore'")
		}
	default:
		return fmt.Errorf("invalid store driver: %s (must be 'sqlite' or 'firestore')", cfg.Store.Driver)
	}

	if cfg.PDF.Extractor != "library" && cfg.PDF.Extractor != "pdftotext" {
		return fmt.Errorf("invalid pdf extractor: %s (must be 'library' or 'pdftotext')", cfg.PDF.Extractor)
	}

	if cfg.Verify.TimeoutSeconds < 1 || cfg.Verify.TimeoutSeconds > 300 {
		return fmt.Errorf("verify.timeout_seconds must be between 1 and 300, got: %d", cfg.Verify.TimeoutSeconds)
	}

	if cfg.AI.Enabled && cfg.AI.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY required when AI is enabled")
	}

	if u := cfg.Payment.CheckoutURL; u != "" {
		parsed, err := url.Parse(u)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			return fmt.Errorf("payment.checkout_url must be an http(s) URL, got: %q", u)
		}
	}

	if cfg.Receipt.DefaultReceiverAccount == "" {
		return fmt.Errorf("receipt.default_receiver_account must not be empty")
	}

	if utf8.RuneCountInString(cfg.Export.Delimiter) != 1 {
		return fmt.Errorf("export.delimiter must be a single character, got: %q", cfg.Export.Delimiter)
	}

	return nil
}

// MaxUploadBytes returns the upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Server.MaxUploadMB) * 1024 * 1024
}

// VerifyTimeout returns the remote verification timeout.
func (c *Config) VerifyTimeout() time.Duration {
	return time.Duration(c.Verify.TimeoutSeconds) * time.Second
}

// AITimeout returns the transcription timeout.
func (c *Config) AITimeout() time.Duration {
	return time.Duration(c.AI.TimeoutSeconds) * time.Second
}

// BigQueryEnabled reports whether a BigQuery export target is configured.
func (c *Config) BigQueryEnabled() bool {
	return c.Export.BigQueryProject != "" && c.Export.BigQueryDataset != "" && c.Export.BigQueryTable != ""
}
