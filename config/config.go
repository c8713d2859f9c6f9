// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	validLogLevels  = []string{"debug", "info", "warn", "error", "fatal"}
	validDBDrivers  = []string{"sqlite", "postgres"}
	validCacheTypes = []string{"memory", "redis"}
)

const defaultConfigPath = "config.toml"

type Config struct {
	App       App       `mapstructure:"app"`
	Host      Host      `mapstructure:"host"`
	Database  Database  `mapstructure:"database"`
	Storage   Storage   `mapstructure:"storage"`
	Upload    Upload    `mapstructure:"upload"`
	Session   Session   `mapstructure:"session"`
	OTP       OTP       `mapstructure:"otp"`
	Mail      Mail      `mapstructure:"mail"`
	Cache     Cache     `mapstructure:"cache"`
	Security  Security  `mapstructure:"security"`
	Turnstile Turnstile `mapstructure:"turnstile"`
	Cleanup   Cleanup   `mapstructure:"cleanup"`
}

type App struct {
	Name     string `mapstructure:"name"`
	LogLevel string `mapstructure:"log_level"`
}

type Host struct {
	Port        int      `mapstructure:"port"`
	Domain      string   `mapstructure:"domain"`
	CORSOrigins []string `mapstructure:"cors_origins"`
	SSL         SSL      `mapstructure:"ssl"`
}

type SSL struct {
	Enabled            bool   `mapstructure:"enabled"`
	CertificatePath    string `mapstructure:"certificate_path"`
	CertificateKeyPath string `mapstructure:"certificate_key_path"`
}

type Database struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// Storage holds the object store connection and the values public file
// links are built from
type Storage struct {
	Endpoint        string `mapstructure:"endpoint"` // Public base URL of this API
	Bucket          string `mapstructure:"bucket"`
	Project         string `mapstructure:"project"`
	Region          string `mapstructure:"region"`
	S3Endpoint      string `mapstructure:"s3_endpoint"` // Custom S3 endpoint, R2 or MinIO
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	Quota           int64  `mapstructure:"quota"` // MB, display only
}

type Upload struct {
	MaxSize int64 `mapstructure:"max_size"` // MB
}

type Session struct {
	Secret     string        `mapstructure:"secret"`
	CookieName string        `mapstructure:"cookie_name"`
	TTL        time.Duration `mapstructure:"ttl"`
}

type OTP struct {
	TTL         time.Duration `mapstructure:"ttl"`
	Cooldown    time.Duration `mapstructure:"cooldown"`
	MaxAttempts int           `mapstructure:"max_attempts"`
	PendingTTL  time.Duration `mapstructure:"pending_ttl"`
}

type Mail struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Sender   string `mapstructure:"sender"`
	Password string `mapstructure:"password"`
}

type Cache struct {
	Type          string        `mapstructure:"type"`
	TTL           time.Duration `mapstructure:"ttl"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
}

type Security struct {
	RateLimit   float64 `mapstructure:"rate_limit"` // Requests per second per client
	RateBurst   int     `mapstructure:"rate_burst"`
	MaxBodySize int64   `mapstructure:"max_body_size"` // MB, non-upload routes
}

type Turnstile struct {
	Enabled     bool   `mapstructure:"enabled"`
	SecretToken string `mapstructure:"secret_token"`
}

type Cleanup struct {
	Interval time.Duration `mapstructure:"interval"`
}

// MaxUploadBytes returns the upload limit in bytes
func (c *Config) MaxUploadBytes() int64 {
	return c.Upload.MaxSize << 20
}

// QuotaBytes returns the displayed storage quota in bytes
func (c *Config) QuotaBytes() int64 {
	return c.Storage.Quota << 20
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func genSecret() string {
	b := make([]byte, 64)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Flags returns the command line flags understood by Load
func Flags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("my-space", pflag.ContinueOnError)

	flags.StringP("config", "c", defaultConfigPath, "Path to the config file")
	flags.Int("host.port", 8080, "Port to listen on")
	flags.String("app.log_level", "info", "Log level (debug, info, warn, error, fatal)")

	return flags
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "My Space")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.domain", "localhost")
	v.SetDefault("host.cors_origins", []string{"http://localhost:3000"})
	v.SetDefault("host.ssl.enabled", false)
	v.SetDefault("host.ssl.certificate_path", "")
	v.SetDefault("host.ssl.certificate_key_path", "")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "database.db")

	v.SetDefault("storage.endpoint", "http://localhost:8080")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.project", "")
	v.SetDefault("storage.region", "auto")
	v.SetDefault("storage.s3_endpoint", "")
	v.SetDefault("storage.access_key_id", "")
	v.SetDefault("storage.secret_access_key", "")
	v.SetDefault("storage.quota", 2048)

	v.SetDefault("upload.max_size", 50)

	v.SetDefault("session.secret", "")
	v.SetDefault("session.cookie_name", "appwrite-session")
	v.SetDefault("session.ttl", "720h")

	v.SetDefault("otp.ttl", "15m")
	v.SetDefault("otp.cooldown", "30s")
	v.SetDefault("otp.max_attempts", 5)
	v.SetDefault("otp.pending_ttl", "168h")

	v.SetDefault("mail.host", "")
	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.sender", "")
	v.SetDefault("mail.password", "")

	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.ttl", "1m")
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)

	v.SetDefault("security.rate_limit", 5)
	v.SetDefault("security.rate_burst", 10)
	v.SetDefault("security.max_body_size", 1)

	v.SetDefault("turnstile.enabled", false)
	v.SetDefault("turnstile.secret_token", "")

	v.SetDefault("cleanup.interval", "1h")
}

// Load reads the config file named by the "config" flag, environment
// variables (host.port -> HOST_PORT) and the remaining flags, in increasing
// order of precedence. A missing config file is fine when it was not asked
// for explicitly.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path := defaultConfigPath
	explicit := false

	if flags != nil {
		for _, key := range []string{"app.log_level", "host.port"} {
			if f := flags.Lookup(key); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}

		if f := flags.Lookup("config"); f != nil {
			path = f.Value.String()
			explicit = f.Changed
		}
	}

	v.SetConfigFile(path)
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !(errors.As(err, &notFound) || isNotExist(err)) {
			return nil, fmt.Errorf("failed to read config file, %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config, %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate returns an error if something is critically wrong and the
// application can't run because of that
func (c *Config) Validate() error {
	if !slices.Contains(validLogLevels, c.App.LogLevel) {
		return errors.New("invalid log level provided")
	}

	if c.Host.Port <= 0 || c.Host.Port > 65535 {
		return errors.New("invalid port provided")
	}

	if c.Host.SSL.Enabled {
		if c.Host.SSL.CertificatePath == "" {
			return errors.New("no ssl certificate path provided")
		}

		if c.Host.SSL.CertificateKeyPath == "" {
			return errors.New("no ssl certificate key path provided")
		}
	}

	if !slices.Contains(validDBDrivers, c.Database.Driver) {
		return errors.New("invalid database driver provided")
	}

	if c.Database.DSN == "" {
		return errors.New("database dsn can't be empty")
	}

	if c.Storage.Bucket == "" {
		return errors.New("bucket can't be empty")
	}

	if c.Storage.Endpoint == "" {
		return errors.New("storage endpoint can't be empty")
	}

	if c.Storage.Quota <= 0 {
		return errors.New("storage quota must be bigger than 0")
	}

	if c.Upload.MaxSize <= 0 {
		return errors.New("upload.max_size must be bigger than 0")
	}

	if c.Session.Secret == "" {
		return fmt.Errorf("no session secret set, use this random one in config.toml or SESSION_SECRET:\n\n%s", genSecret())
	}

	if c.Session.CookieName == "" {
		return errors.New("session cookie name can't be empty")
	}

	if c.Session.TTL <= 0 || c.OTP.TTL <= 0 || c.OTP.PendingTTL <= 0 {
		return errors.New("session and passcode lifetimes must be positive")
	}

	if c.OTP.MaxAttempts <= 0 {
		return errors.New("otp.max_attempts must be bigger than 0")
	}

	if c.Mail.Host == "" || c.Mail.Sender == "" {
		return errors.New("mail host and sender are required to send passcodes")
	}

	if !slices.Contains(validCacheTypes, c.Cache.Type) {
		return errors.New("invalid cache type provided")
	}

	if c.Cache.Type == "redis" && c.Cache.RedisAddr == "" {
		return errors.New("redis address can't be empty")
	}

	if c.Security.RateLimit <= 0 || c.Security.RateBurst <= 0 {
		return errors.New("rate limit and burst must be bigger than 0")
	}

	if c.Turnstile.Enabled && c.Turnstile.SecretToken == "" {
		return errors.New("turnstile secret token is missing")
	}

	if c.Cleanup.Interval <= 0 {
		return errors.New("cleanup interval must be positive")
	}

	return nil
}
