package commands

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/onair/pkg/invalidation"
	"github.com/dmitrymomot/onair/pkg/logger"
	"github.com/dmitrymomot/onair/pkg/redis"
	"github.com/dmitrymomot/onair/pkg/store"
)

// Config is the process configuration, read from the environment.
type Config struct {
	StorageMode      string        `env:"ONAIR_STORAGE_MODE" envDefault:"database"`
	DefaultLocale    string        `env:"ONAIR_DEFAULT_LOCALE" envDefault:"en"`
	Fallback         bool          `env:"ONAIR_FALLBACK" envDefault:"true"`
	SharedTTL        time.Duration `env:"ONAIR_SHARED_TTL" envDefault:"1h"`
	LoadTimeout      time.Duration `env:"ONAIR_LOAD_TIMEOUT" envDefault:"10s"`
	RaiseOnLoadError bool          `env:"ONAIR_RAISE_ON_LOAD_ERROR" envDefault:"false"`

	LocalesDir string `env:"ONAIR_LOCALES_DIR" envDefault:"locales"`
	SeedDir    string `env:"ONAIR_SEED_DIR"`

	// Cron expression or descriptor; empty disables scheduled reloads.
	RefreshSchedule string `env:"ONAIR_REFRESH_SCHEDULE"`

	HTTPAddr            string `env:"ONAIR_HTTP_ADDR" envDefault:":8080"`
	InvalidationChannel string `env:"ONAIR_INVALIDATION_CHANNEL" envDefault:"onair:invalidate"`

	Database store.Config
	Redis    redis.Config
	Log      logger.Config
}

// LoadConfig parses the configuration from environ, or from the process
// environment when environ is nil.
func LoadConfig(environ map[string]string) (Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](env.Options{Environment: environ})
	if err != nil {
		return Config{}, err
	}
	if cfg.InvalidationChannel == "" {
		cfg.InvalidationChannel = invalidation.DefaultChannel
	}
	return cfg, nil
}

// config loads the configuration and applies persistent flag overrides.
func (c *CLI) config(cmd *cobra.Command) (Config, error) {
	cfg, err := LoadConfig(c.environ)
	if err != nil {
		return Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("mode") {
		cfg.StorageMode, _ = flags.GetString("mode")
	}
	if flags.Changed("locales-dir") {
		cfg.LocalesDir, _ = flags.GetString("locales-dir")
	}
	if flags.Changed("default-locale") {
		cfg.DefaultLocale, _ = flags.GetString("default-locale")
	}
	if flags.Changed("seed") {
		cfg.SeedDir, _ = flags.GetString("seed")
	}
	if c.logOut != nil {
		cfg.Log.Output = c.logOut
	}

	return cfg, nil
}
