package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Markdown converters selectable under extract.converter.
const (
	ConverterBuiltin    = "builtin"
	ConverterCommonMark = "commonmark"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	Auth      AuthConfig        `yaml:"auth"`
	Vault     VaultConfig       `yaml:"vault"`
	Templates TemplatesConfig   `yaml:"templates"`
	Fetch     FetchConfig       `yaml:"fetch"`
	Extract   ExtractConfig     `yaml:"extract"`
	SSE       SSEConfig         `yaml:"sse"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	for _, v := range []validation.Validatable{
		&c.App, &c.Auth, &c.Vault, &c.Templates, &c.Fetch, &c.Extract, &c.SSE,
	} {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
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
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	// CORSOrigins lists origins allowed to call the API from a browser,
	// typically the clipper extension. Empty disables CORS handling.
	CORSOrigins []string `yaml:"cors_origins"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.ReadTimeout, validation.Min(time.Duration(0))),
		validation.Field(&c.WriteTimeout, validation.Min(time.Duration(0))),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local use.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// VaultConfig describes the Markdown vault clips are written into.
type VaultConfig struct {
	Path string `yaml:"path"`
	// Name is the Obsidian vault name used in obsidian:// links when a
	// template does not set its own.
	Name        string `yaml:"name"`
	DailyFolder string `yaml:"daily_folder"`
}

// Validate validates the vault configuration.
func (c *VaultConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// TemplatesConfig holds template store configuration.
type TemplatesConfig struct {
	// Dir holds template JSON files that are synced into the store.
	// Empty disables file sync.
	Dir        string `yaml:"dir"`
	Watch      bool   `yaml:"watch"`
	SQLitePath string `yaml:"sqlite_path"`
}

// Validate validates the templates configuration.
func (c *TemplatesConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.SQLitePath, validation.Required),
		validation.Field(&c.Watch, validation.When(c.Dir == "", validation.Empty.Error("requires templates.dir"))),
	)
}

// FetchConfig holds page fetcher configuration.
type FetchConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	UserAgent    string        `yaml:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
}

// Validate validates the fetch configuration.
func (c *FetchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Timeout, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.MaxBodyBytes, validation.Required, validation.Min(int64(1024))),
	)
}

// ExtractConfig selects the markdown converter and readability override.
type ExtractConfig struct {
	Converter   string `yaml:"converter"`
	Readability bool   `yaml:"readability"`
}

// Validate validates the extract configuration.
func (c *ExtractConfig) Validate() error {
	if c.Converter == "" {
		c.Converter = ConverterBuiltin
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Converter, validation.In(ConverterBuiltin, ConverterCommonMark)),
	)
}

// SSEConfig holds event broker configuration.
type SSEConfig struct {
	// Throttle is the minimum interval between templates.changed events.
	Throttle time.Duration `yaml:"throttle"`
}

// Validate validates the SSE configuration.
func (c *SSEConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Throttle, validation.Min(time.Duration(0))),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port:         8080,
				ReadTimeout:  30 * time.Second,
				WriteTimeout: 60 * time.Second,
			},
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Vault: VaultConfig{
			Path: "./vault",
		},
		Templates: TemplatesConfig{
			SQLitePath: "./vaultclip.db",
		},
		Fetch: FetchConfig{
			Timeout:      30 * time.Second,
			UserAgent:    "vaultclip/1.0",
			MaxBodyBytes: 10 << 20,
		},
		Extract: ExtractConfig{
			Converter: ConverterBuiltin,
		},
		SSE: SSEConfig{
			Throttle: 2 * time.Second,
		},
	}
}
