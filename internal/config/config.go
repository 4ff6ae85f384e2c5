package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/goliatone/go-invoicedoc/pkg/render"
)

// AppConfig collects every runtime setting of the invoicedoc binaries.
type AppConfig struct {
	App    AppSettings
	HTTP   HTTPSettings
	Log    LogSettings
	Render RenderSettings
	Export ExportSettings
}

type AppSettings struct {
	Name        string
	Version     string
	Environment string
}

type HTTPSettings struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	// MaxBodyBytes caps request payloads on the document routes.
	MaxBodyBytes int64
}

type LogSettings struct {
	Level string
}

type RenderSettings struct {
	DefaultLocale string
	CurrencyGlyph string
	Calendar      render.Calendar
	// CatalogPath points at a YAML/JSON catalog that replaces the embedded one.
	CatalogPath string
	// TemplatesDir holds on-disk templates that shadow the embedded ones.
	TemplatesDir string
	BatchLimit   int
	BrandName    string
	BrandEmail   string
	// NotifyAppName is printed in notification subjects.
	NotifyAppName string
}

type ExportSettings struct {
	SettleDelay time.Duration
	Timeout     time.Duration
	ChromePath  string
}

// Load resolves the configuration from the environment. A .env file in the
// working directory is read first when present; real environment variables
// win over it.
func Load() (AppConfig, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv resolves the configuration without touching .env files.
func FromEnv() (AppConfig, error) {
	cfg := AppConfig{
		App: AppSettings{
			Name:        getEnv("APP_NAME", "invoicedoc"),
			Version:     getEnv("APP_VERSION", "0.1.0"),
			Environment: getEnv("APP_ENV", "local"),
		},
		HTTP: HTTPSettings{
			Port:            getEnvAsInt("APP_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("HTTP_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("HTTP_WRITE_TIMEOUT", 60*time.Second),
			IdleTimeout:     getEnvAsDuration("HTTP_IDLE_TIMEOUT", 120*time.Second),
			ShutdownTimeout: getEnvAsDuration("HTTP_SHUTDOWN_TIMEOUT", 15*time.Second),
			MaxBodyBytes:    int64(getEnvAsInt("HTTP_MAX_BODY_BYTES", 1<<20)),
		},
		Log: LogSettings{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Render: RenderSettings{
			DefaultLocale: strings.TrimSpace(os.Getenv("DEFAULT_LOCALE")),
			CurrencyGlyph: getEnv("CURRENCY_GLYPH", render.DefaultCurrencyGlyph),
			CatalogPath:   strings.TrimSpace(os.Getenv("TEMPLATE_CATALOG_PATH")),
			TemplatesDir:  strings.TrimSpace(os.Getenv("TEMPLATES_DIR")),
			BatchLimit:    getEnvAsInt("RENDER_BATCH_LIMIT", render.DefaultBatchLimit),
			BrandName:     getEnv("BRAND_NAME", render.DefaultBrand.Name),
			BrandEmail:    getEnv("BRAND_SUPPORT_EMAIL", render.DefaultBrand.SupportEmail),
			NotifyAppName: getEnv("NOTIFY_APP_NAME", "Invoice App"),
		},
		Export: ExportSettings{
			SettleDelay: getEnvAsDuration("PDF_SETTLE_DELAY", 250*time.Millisecond),
			Timeout:     getEnvAsDuration("PDF_TIMEOUT", 30*time.Second),
			ChromePath:  strings.TrimSpace(os.Getenv("CHROME_PATH")),
		},
	}

	calendar, err := render.ParseCalendar(os.Getenv("CALENDAR"))
	if err != nil {
		return cfg, fmt.Errorf("invalid config: CALENDAR: %w", err)
	}
	cfg.Render.Calendar = calendar

	if cfg.HTTP.Port <= 0 || cfg.HTTP.Port > 65535 {
		return cfg, errors.New("invalid config: APP_PORT must be between 1 and 65535")
	}
	if cfg.HTTP.MaxBodyBytes <= 0 {
		return cfg, errors.New("invalid config: HTTP_MAX_BODY_BYTES must be greater than 0")
	}
	if cfg.Render.BatchLimit <= 0 {
		return cfg, errors.New("invalid config: RENDER_BATCH_LIMIT must be greater than 0")
	}
	if cfg.Export.Timeout <= 0 {
		return cfg, errors.New("invalid config: PDF_TIMEOUT must be greater than 0")
	}
	if cfg.Export.SettleDelay < 0 {
		return cfg, errors.New("invalid config: PDF_SETTLE_DELAY cannot be negative")
	}

	return cfg, nil
}

// Address returns the HTTP listen address in host:port form.
func (h HTTPSettings) Address() string {
	return fmt.Sprintf(":%d", h.Port)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
