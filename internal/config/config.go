package config

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/cockroachdb/errors"
)

type Config struct {
	TelegramToken string `env:"BOT_TOKEN"`

	AdminIDsRaw string `env:"ADMIN_IDS"`
	AdminTGIDs  map[int64]bool

	DatabasePath string `env:"DATABASE_PATH" envDefault:"deadlines.db"`

	Port          int    `env:"PORT" envDefault:"10000"`
	BasePublicURL string `env:"BASE_PUBLIC_URL"`
	ExportSecret  string `env:"EXPORT_SECRET" envDefault:"change-me"`

	Timezone   string        `env:"TIMEZONE" envDefault:"Local"`
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"30m"`
	Workers    int           `env:"WORKERS" envDefault:"8"`
	LogLevel   string        `env:"LOG_LEVEL" envDefault:"info"`

	// Optional Google Sheets order mirror.
	SpreadsheetID            string `env:"GOOGLE_SHEETS_SPREADSHEET_ID"`
	GoogleServiceAccountJSON string `env:"GOOGLE_SERVICE_ACCOUNT_JSON"`
}

func FromEnv() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return c, errors.Wrap(err, "parse env")
	}

	c.TelegramToken = strings.TrimSpace(c.TelegramToken)
	c.BasePublicURL = strings.TrimRight(strings.TrimSpace(c.BasePublicURL), "/")
	c.SpreadsheetID = strings.TrimSpace(c.SpreadsheetID)
	c.GoogleServiceAccountJSON = strings.TrimSpace(c.GoogleServiceAccountJSON)

	if c.TelegramToken == "" {
		return c, errors.New("BOT_TOKEN is empty")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return c, errors.Newf("PORT out of range: %d", c.Port)
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.SessionTTL <= 0 {
		return c, errors.New("SESSION_TTL must be positive")
	}
	if _, err := c.Location(); err != nil {
		return c, err
	}
	if (c.SpreadsheetID == "") != (c.GoogleServiceAccountJSON == "") {
		return c, errors.New("GOOGLE_SHEETS_SPREADSHEET_ID and GOOGLE_SERVICE_ACCOUNT_JSON must be set together")
	}
	c.AdminTGIDs = parseAdminIDs(c.AdminIDsRaw)

	return c, nil
}

func parseAdminIDs(raw string) map[int64]bool {
	m := map[int64]bool{}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return m
	}
	parts := strings.Split(raw, ",")
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			continue
		}
		m[v] = true
	}
	return m
}

// HTTPAddr is the listen address of the liveness/export server.
func (c Config) HTTPAddr() string {
	return ":" + strconv.Itoa(c.Port)
}

// Location resolves TIMEZONE; deadlines typed by admins are read in this zone.
func (c Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.Timezone)
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, errors.Wrap(err, "TIMEZONE")
	}
	return loc, nil
}

func (c Config) SheetsEnabled() bool {
	return c.SpreadsheetID != "" && c.GoogleServiceAccountJSON != ""
}

func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
