package commands

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"refuel/lib/configutil"
	"time"

	"dario.cat/mergo"
	"github.com/joho/godotenv"
)

const defaultUrl = "https://mehr-tanken.de/tankstellen?searchText=Berlin&brand=0&fuel=1&range=15&order=date"

type Config struct {
	// Url is the price list page that is scraped.
	Url string `json:"url"`
	// Database is a sqlite file path or a libsql url.
	Database string `json:"database"`
	// AuthToken is only used for libsql urls.
	AuthToken string `json:"auth_token"`
	// Timezone the price list shows its timestamps in, ex. "Europe/Berlin".
	// The local timezone is used if empty.
	Timezone string `json:"timezone"`

	// nil uses the default, an explicit 0 is kept when merging.
	IntervalMinutes         *int `json:"interval_minutes"`
	MaxJitterSeconds        *int `json:"max_jitter_seconds"`
	CycleTimeoutSeconds     *int `json:"cycle_timeout_seconds"`
	ShutdownGraceSeconds    *int `json:"shutdown_grace_seconds"`
	MinFetchIntervalSeconds *int `json:"min_fetch_interval_seconds"`

	UserAgent               string `json:"user_agent"`
	DisableCloudflareBypass bool   `json:"disable_cloudflare_bypass"`
	// HttpDumpDir receives every http message of the fetcher when logging verbosely.
	HttpDumpDir string `json:"http_dump_dir"`

	Port int `json:"port"`
	// AccessToken protects the api of `serve`, empty disables the check.
	AccessToken string `json:"access_token"`
}

const (
	defaultInterval      = time.Minute * 20
	defaultMaxJitter     = time.Minute * 10
	defaultCycleTimeout  = time.Minute * 5
	defaultShutdownGrace = time.Second * 30
)

func defaultConfig() Config {
	return Config{
		Url:      defaultUrl,
		Database: "refuel.db",
		Port:     8080,
	}
}

func durationOr(value *int, unit, fallback time.Duration) time.Duration {
	if value == nil {
		return fallback
	}
	return time.Duration(*value) * unit
}

func (c Config) Interval() time.Duration {
	return durationOr(c.IntervalMinutes, time.Minute, defaultInterval)
}

func (c Config) MaxJitter() time.Duration {
	return durationOr(c.MaxJitterSeconds, time.Second, defaultMaxJitter)
}

// CycleTimeout of 0 falls back to the default of the ingest loop.
func (c Config) CycleTimeout() time.Duration {
	return durationOr(c.CycleTimeoutSeconds, time.Second, defaultCycleTimeout)
}

// ShutdownGrace is how long an in-flight cycle may keep running after an
// interrupt before it is cancelled, 0 waits for the cycle timeout.
func (c Config) ShutdownGrace() time.Duration {
	return durationOr(c.ShutdownGraceSeconds, time.Second, defaultShutdownGrace)
}

func (c Config) MinFetchInterval() time.Duration {
	return durationOr(c.MinFetchIntervalSeconds, time.Second, 0)
}

type configOverrides struct {
	url      string
	database string
}

func readConfigFile(path string) (Config, error) {
	if filepath.Base(path) != path {
		return configutil.ReadConfig[Config](path)
	}
	config, found, err := configutil.ReadRecursively[Config](path)
	if err == nil {
		slog.Debug("read config", "path", found)
	}
	return config, err
}

// loadConfig layers the defaults, the config file, the environment (after loading
// .env) and finally the command line flags.
func loadConfig(path string, overrides configOverrides) (Config, error) {
	config := defaultConfig()

	fromFile, err := readConfigFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}
	err = mergo.Merge(&config, fromFile, mergo.WithOverride)
	if err != nil {
		return Config{}, err
	}

	err = godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}
	if database := os.Getenv("DATABASE_URL"); database != "" {
		config.Database = database
	}
	if token := os.Getenv("DATABASE_AUTH_TOKEN"); token != "" {
		config.AuthToken = token
	}

	if overrides.url != "" {
		config.Url = overrides.url
	}
	if overrides.database != "" {
		config.Database = overrides.database
	}
	return config, nil
}
