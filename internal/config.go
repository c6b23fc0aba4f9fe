package internal

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Environment variables read at startup.
const (
	EnvSecretKey     = "SECRET_KEY"
	EnvAdminPassword = "ADMIN_PASSWORD"
	EnvContentPath   = "CONTENT_PATH"
	EnvUploadFolder  = "UPLOAD_FOLDER"
	EnvThumbFolder   = "THUMB_FOLDER"
	EnvPort          = "PORT"
	EnvLogLevel      = "LOG_LEVEL"
	EnvCookieSecure  = "COOKIE_SECURE"
)

// Config represents the application configuration. It is built once at
// startup and not modified afterwards.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Content ContentConfig     `yaml:"content"`
	Media   MediaConfig       `yaml:"media"`
	Auth    AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Content.Validate(); err != nil {
		return err
	}
	if err := c.Media.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplyEnv overrides fields from the environment. lookup is usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvSecretKey); ok && v != "" {
		c.Auth.SessionSecret = v
	}
	if v, ok := lookup(EnvAdminPassword); ok && v != "" {
		c.Auth.Password = v
	}
	if v, ok := lookup(EnvContentPath); ok && v != "" {
		c.Content.Path = v
	}
	if v, ok := lookup(EnvUploadFolder); ok && v != "" {
		c.Media.UploadDir = v
	}
	if v, ok := lookup(EnvThumbFolder); ok && v != "" {
		c.Media.ThumbDir = v
	}
	if v, ok := lookup(EnvPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %q is not a port number", EnvPort, v)
		}
		c.App.HTTP.Port = port
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		if err := c.App.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("%s: %w", EnvLogLevel, err)
		}
	}
	if v, ok := lookup(EnvCookieSecure); ok && v != "" {
		secure, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvCookieSecure, err)
		}
		c.Auth.CookieSecure = secure
	}
	return nil
}

// Finalize fills values derived from other fields. It reports whether a
// random session secret had to be generated.
func (c *Config) Finalize() (generatedSecret bool, err error) {
	if c.Media.ThumbDir == "" {
		c.Media.ThumbDir = filepath.Join(c.Media.UploadDir, "thumbs")
	}
	if c.Auth.SessionSecret == "" {
		b := make([]byte, 16)
		if _, err := rand.Read(b); err != nil {
			return false, fmt.Errorf("generate session secret: %w", err)
		}
		c.Auth.SessionSecret = hex.EncodeToString(b)
		generatedSecret = true
	}
	return generatedSecret, nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// ContentConfig locates the content document.
type ContentConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the content configuration.
func (c *ContentConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// MediaConfig holds the upload and thumbnail directories.
type MediaConfig struct {
	UploadDir string `yaml:"upload_dir"`
	ThumbDir  string `yaml:"thumb_dir"`
}

// Validate validates the media configuration.
func (c *MediaConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.UploadDir, validation.Required),
		validation.Field(&c.ThumbDir, validation.Required),
	); err != nil {
		return err
	}
	if filepath.Clean(c.UploadDir) == filepath.Clean(c.ThumbDir) {
		return fmt.Errorf("media: upload_dir and thumb_dir must differ")
	}
	return nil
}

// AuthConfig holds the shared admin password and session settings.
type AuthConfig struct {
	Password      string `yaml:"password"`
	SessionSecret string `yaml:"session_secret"`
	CookieSecure  bool   `yaml:"cookie_secure"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Password, validation.Required),
		validation.Field(&c.SessionSecret, validation.Required, validation.Length(16, 0)),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 5000,
			},
		},
		Content: ContentConfig{
			Path: "content.json",
		},
		Media: MediaConfig{
			UploadDir: filepath.Join("static", "uploads"),
		},
		Auth: AuthConfig{
			Password: "admin123",
		},
	}
}
