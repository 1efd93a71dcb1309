package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/flexprice/notebilling/internal/types"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Configuration struct {
	Server      ServerConfig      `validate:"required"`
	Logging     LoggingConfig     `validate:"required"`
	Postgres    PostgresConfig    `validate:"required"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Billing     BillingConfig     `mapstructure:"billing" validate:"required"`
	Recognition RecognitionConfig `mapstructure:"recognition" validate:"required"`
	OpenAI      OpenAIConfig      `mapstructure:"openai"`
	S3          S3Config          `mapstructure:"s3"`
	Sentry      SentryConfig      `mapstructure:"sentry"`
	Pyroscope   PyroscopeConfig   `mapstructure:"pyroscope"`
}

type ServerConfig struct {
	Address string `validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

type PostgresConfig struct {
	Host                   string `mapstructure:"host"`
	Port                   int    `mapstructure:"port"`
	User                   string `mapstructure:"user"`
	Password               string `mapstructure:"password"`
	DBName                 string `mapstructure:"dbname"`
	SSLMode                string `mapstructure:"sslmode"`
	MaxOpenConns           int    `mapstructure:"max_open_conns"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes"`
	ConnectRetries         uint64 `mapstructure:"connect_retries"`
}

type CacheConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type BillingConfig struct {
	// RegistrationNumber is the issuer's qualified invoice registration number printed on every invoice
	RegistrationNumber string `mapstructure:"registration_number" validate:"required"`
	ReceiptDay         int    `mapstructure:"receipt_day" validate:"required,min=1,max=28"`
}

type RecognitionConfig struct {
	Recognizer      types.RecognizerKind    `mapstructure:"recognizer" validate:"required,oneof=openai disabled"`
	Store           types.SnapshotStoreKind `mapstructure:"store" validate:"required,oneof=memory file s3"`
	SnapshotPath    string                  `mapstructure:"snapshot_path"`
	HistoryPath     string                  `mapstructure:"history_path"`
	HistoryLimit    int                     `mapstructure:"history_limit" validate:"required,min=1"`
	CompletionTopic string                  `mapstructure:"completion_topic" validate:"required"`
	RatePerSecond   float64                 `mapstructure:"rate_per_second"`
	Burst           int                     `mapstructure:"burst"`
	Timeout         time.Duration           `mapstructure:"timeout" validate:"required"`
	MaxUploadBytes  int64                   `mapstructure:"max_upload_bytes" validate:"required,min=1"`
	CommitRemarks   string                  `mapstructure:"commit_remarks"`
}

type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

type S3Config struct {
	Enabled               bool   `mapstructure:"enabled"`
	Region                string `mapstructure:"region"`
	Bucket                string `mapstructure:"bucket"`
	ImageKeyPrefix        string `mapstructure:"image_key_prefix"`
	SnapshotKeyPrefix     string `mapstructure:"snapshot_key_prefix"`
	PresignExpiryDuration string `mapstructure:"presign_expiry_duration"`
}

type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate" validate:"min=0,max=1"`
}

type PyroscopeConfig struct {
	Enabled         bool     `mapstructure:"enabled"`
	ServerAddress   string   `mapstructure:"server_address"`
	ApplicationName string   `mapstructure:"application_name"`
	BasicAuthUser   string   `mapstructure:"basic_auth_user"`
	BasicAuthPass   string   `mapstructure:"basic_auth_pass"`
	SampleRate      uint32   `mapstructure:"sample_rate"`
	ProfileTypes    []string `mapstructure:"profile_types"`
}

// NewConfig reads config.yaml from the usual locations, overlays NOTEBILLING_* environment
// variables and validates the result. A missing file is not an error.
func NewConfig() (*Configuration, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, dir := range []string{"./internal/config", ".", "./config", "/etc/notebilling"} {
		v.AddConfigPath(dir)
	}
	v.SetEnvPrefix("NOTEBILLING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var defaults = map[string]any{
	"server.address":                     ":8080",
	"logging.level":                      string(types.LogLevelInfo),
	"postgres.port":                      5432,
	"postgres.sslmode":                   "disable",
	"postgres.max_open_conns":            10,
	"postgres.max_idle_conns":            5,
	"postgres.conn_max_lifetime_minutes": 30,
	"postgres.connect_retries":           5,
	"cache.enabled":                      true,
	"billing.registration_number":        DefaultRegistrationNumber,
	"billing.receipt_day":                DefaultReceiptDay,
	"recognition.recognizer":             string(types.RecognizerOpenAI),
	"recognition.store":                  string(types.SnapshotStoreFile),
	"recognition.snapshot_path":          "data/recognition_queue.json",
	"recognition.history_path":           "data/recognition_history.json",
	"recognition.history_limit":          DefaultHistoryLimit,
	"recognition.completion_topic":       "recognition.completed",
	"recognition.rate_per_second":        1,
	"recognition.burst":                  2,
	"recognition.timeout":                "60s",
	"recognition.max_upload_bytes":       10 << 20,
	"recognition.commit_remarks":         DefaultCommitRemarks,
	"openai.model":                       "gpt-4o-mini",
	"sentry.environment":                 "development",
	"sentry.sample_rate":                 0.1,
	"pyroscope.application_name":         "notebilling",
	"pyroscope.sample_rate":              100,
	"s3.presign_expiry_duration":         "30m",
}

func (c Configuration) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Recognition.Store == types.SnapshotStoreS3 && !c.S3.Enabled {
		return errors.New("recognition.store=s3 requires s3.enabled")
	}
	if c.Sentry.Enabled && c.Sentry.DSN == "" {
		return errors.New("sentry.enabled requires sentry.dsn")
	}
	if c.Pyroscope.Enabled && c.Pyroscope.ServerAddress == "" {
		return errors.New("pyroscope.enabled requires pyroscope.server_address")
	}
	if c.Recognition.Store == types.SnapshotStoreFile &&
		(c.Recognition.SnapshotPath == "" || c.Recognition.HistoryPath == "") {
		return errors.New("recognition.store=file requires snapshot_path and history_path")
	}
	return nil
}

const (
	DefaultRegistrationNumber = "T5810180900550"
	DefaultReceiptDay         = 25
	DefaultHistoryLimit       = 100
	DefaultCommitRemarks      = "registered from image recognition"
)

// GetDefaultConfig returns a configuration usable by tests and scripts without any file
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Server:  ServerConfig{Address: ":8080"},
		Logging: LoggingConfig{Level: types.LogLevelDebug},
		Cache:   CacheConfig{Enabled: true},
		Billing: BillingConfig{
			RegistrationNumber: DefaultRegistrationNumber,
			ReceiptDay:         DefaultReceiptDay,
		},
		Recognition: RecognitionConfig{
			Recognizer:      types.RecognizerDisabled,
			Store:           types.SnapshotStoreMemory,
			HistoryLimit:    DefaultHistoryLimit,
			CompletionTopic: "recognition.completed",
			Timeout:         time.Minute,
			MaxUploadBytes:  10 << 20,
			CommitRemarks:   DefaultCommitRemarks,
		},
	}
}

func (c PostgresConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
