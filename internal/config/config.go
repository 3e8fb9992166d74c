// Package config loads the process configuration of the cfgym binaries.
package config

import (
	"cfgym-backend/internal/pagecache"
	"cfgym-backend/internal/scrapers/codeforces"
	"cfgym-backend/lib/configutil"
	"cfgym-backend/lib/telemetry"
	"cfgym-backend/lib/timezone"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvHandle   = "CODEFORCES_HANDLE"
	EnvPassword = "CODEFORCES_PASSWORD"

	DefaultPort = 8000
)

type CodeforcesConfig struct {
	BaseUrl               string `json:"base_url"`
	HandleOrEmail         string `json:"handle_or_email"`
	Password              string `json:"password"`
	OriginTimezone        string `json:"origin_timezone"`
	RequestTimeoutSeconds int    `json:"request_timeout_seconds"`
	StandingsConcurrency  int    `json:"standings_concurrency"`
}

type ServerConfig struct {
	Port int `json:"port"`
}

type Config struct {
	Codeforces CodeforcesConfig `json:"codeforces"`
	Cache      pagecache.Config `json:"cache"`
	Server     ServerConfig     `json:"server"`
	Telemetry  telemetry.Config `json:"telemetry"`
}

func (c *Config) setDefaults() {
	if c.Codeforces.BaseUrl == "" {
		c.Codeforces.BaseUrl = codeforces.DefaultBaseUrl
	}
	if c.Codeforces.OriginTimezone == "" {
		c.Codeforces.OriginTimezone = timezone.DefaultOrigin
	}
	if c.Codeforces.RequestTimeoutSeconds <= 0 {
		c.Codeforces.RequestTimeoutSeconds = int(codeforces.DefaultTimeout / time.Second)
	}
	if c.Codeforces.StandingsConcurrency <= 0 {
		c.Codeforces.StandingsConcurrency = codeforces.DefaultConcurrency
	}
	if c.Server.Port <= 0 {
		c.Server.Port = DefaultPort
	}
}

// Load reads the json5 config at path (and its .local override), a missing
// file is not an error. Credentials may also come from the environment or a
// .env file next to the config, which take priority over the file.
func Load(path string) (Config, error) {
	cfg, err := configutil.ReadConfig[Config](path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	err = godotenv.Load(filepath.Join(filepath.Dir(path), ".env"))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("read .env: %w", err)
	}
	if handle := os.Getenv(EnvHandle); handle != "" {
		cfg.Codeforces.HandleOrEmail = handle
	}
	if password := os.Getenv(EnvPassword); password != "" {
		cfg.Codeforces.Password = password
	}

	cfg.setDefaults()
	return cfg, nil
}

// ClientOptions converts the codeforces section into session options, the
// cache and telemetry are left for the caller to attach.
func (c CodeforcesConfig) ClientOptions() (codeforces.Options, error) {
	origin, err := timezone.Load(c.OriginTimezone)
	if err != nil {
		return codeforces.Options{}, err
	}
	return codeforces.Options{
		BaseUrl:       c.BaseUrl,
		HandleOrEmail: c.HandleOrEmail,
		Password:      c.Password,
		Timeout:       time.Duration(c.RequestTimeoutSeconds) * time.Second,
		Origin:        origin,
		Concurrency:   c.StandingsConcurrency,
	}, nil
}

// Login opens a new authenticated session with the configured credentials.
func (c Config) Login(ctx context.Context, cache pagecache.Cache, tel telemetry.API) (*codeforces.Client, error) {
	opts, err := c.Codeforces.ClientOptions()
	if err != nil {
		return nil, err
	}
	opts.Cache = cache
	opts.Telemetry = tel
	return codeforces.Login(ctx, opts)
}
