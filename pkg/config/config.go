// Package config loads admin dashboard settings from defaults and
// NEARBYTASK_-prefixed environment variables.
package config

import (
	"time"

	"github.com/nearbytask/admin-dashboard/components/listing"
	"github.com/nearbytask/admin-dashboard/pkg/logger"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "NEARBYTASK_"

// Config is the complete application configuration.
type Config struct {
	API     APIConfig     `koanf:"api"     validate:"required"`
	Server  ServerConfig  `koanf:"server"  validate:"required"`
	Listing ListingConfig `koanf:"listing" validate:"required"`
	Export  ExportConfig  `koanf:"export"`
	Log     LogConfig     `koanf:"log"`
	Notify  NotifyConfig  `koanf:"notify"`
	Screens ScreensConfig `koanf:"screens"`
}

// APIConfig points at the NearByTask backend.
type APIConfig struct {
	BaseURL string        `koanf:"base_url" validate:"required,url" env:"API_BASE_URL"`
	Token   string        `koanf:"token"                            env:"API_TOKEN"`
	Timeout time.Duration `koanf:"timeout"  validate:"min=0"        env:"API_TIMEOUT"`
}

// ServerConfig configures the admin HTTP server.
type ServerConfig struct {
	Addr     string `koanf:"addr"      validate:"required"  env:"SERVER_ADDR"`
	BasePath string `koanf:"base_path" validate:"url_path"  env:"SERVER_BASE_PATH"`
}

// ListingConfig holds the default page size and pagination policy.
type ListingConfig struct {
	PageSize int  `koanf:"page_size" validate:"min=1"     env:"LISTING_PAGE_SIZE"`
	Window   int  `koanf:"window"    validate:"oneof=3 5" env:"LISTING_WINDOW"`
	Ellipsis bool `koanf:"ellipsis"                       env:"LISTING_ELLIPSIS"`
}

// Pagination converts the listing settings into a policy.
func (c ListingConfig) Pagination() listing.PaginationPolicy {
	return listing.PaginationPolicy{Width: c.Window, Ellipsis: c.Ellipsis}
}

// ExportConfig controls CSV/PDF output.
type ExportConfig struct {
	Placeholder string `koanf:"placeholder" env:"EXPORT_PLACEHOLDER"`
	// Brand labels the logo slots of PDF reports.
	Brand string `koanf:"brand" env:"EXPORT_BRAND"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level string `koanf:"level" validate:"oneof=debug info warn error" env:"LOG_LEVEL"`
	JSON  bool   `koanf:"json"                                         env:"LOG_JSON"`
}

// Logger builds the configured logger.
func (c LogConfig) Logger() logger.Logger {
	cfg := logger.DefaultConfig()
	cfg.Level = logger.LogLevel(c.Level)
	cfg.JSON = c.JSON
	return logger.NewLogger(cfg)
}

// NotifyConfig configures the push notification forwarder.
type NotifyConfig struct {
	Addr            string `koanf:"addr"             env:"NOTIFY_ADDR"`
	ProjectID       string `koanf:"project_id"       env:"NOTIFY_PROJECT_ID"`
	TokenURL        string `koanf:"token_url"        validate:"omitempty,url" env:"NOTIFY_TOKEN_URL"`
	SendURL         string `koanf:"send_url"         validate:"omitempty,url" env:"NOTIFY_SEND_URL"`
	CredentialsFile string `koanf:"credentials_file" env:"NOTIFY_CREDENTIALS_FILE"`
}

// ScreensConfig locates the optional screen manifest.
type ScreensConfig struct {
	Manifest string `koanf:"manifest" env:"SCREENS_MANIFEST"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "http://localhost:8080/api",
			Timeout: 10 * time.Second,
		},
		Server: ServerConfig{
			Addr:     ":9090",
			BasePath: "/admin",
		},
		Listing: ListingConfig{
			PageSize: 10,
			Window:   5,
			Ellipsis: true,
		},
		Export: ExportConfig{
			Placeholder: "Empty",
			Brand:       "NearByTask",
		},
		Log: LogConfig{
			Level: "info",
		},
		Notify: NotifyConfig{
			Addr:     ":9191",
			TokenURL: "https://oauth2.googleapis.com/token",
		},
	}
}
