package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Subha2009/kamun-software/internal/domain"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	configName = "config"
	configType = "toml"
	configDir  = ".kamun"
	envPrefix  = "KAMUN"

	MinRemoteKeyLength = 20

	CacheDriverFile   = "file"
	CacheDriverSQLite = "sqlite"
)

const (
	keyRemoteURL      = "remote.url"
	keyRemoteKey      = "remote.key"
	keyRemoteTimeout  = "remote.timeout"
	keyCacheDriver    = "cache.driver"
	keyCachePath      = "cache.path"
	keyRosterSeedPath = "roster.seed_path"
	keySyncDebounce   = "sync.debounce"
	keyTimerTick      = "timer.tick"
	keyPassphraseHash = "auth.passphrase_hash"
	keyLogLevel       = "log.level"
	keyLogFormat      = "log.format"
)

type Config struct {
	Dir            string
	Remote         RemoteConfig
	Cache          CacheConfig
	RosterSeedPath string
	Debounce       time.Duration
	TimerTick      time.Duration
	PassphraseHash string
	Log            LogConfig
}

type RemoteConfig struct {
	URL     string
	Key     string
	Timeout time.Duration
}

type CacheConfig struct {
	Driver string
	Path   string
}

type LogConfig struct {
	Level  string
	Format string
}

// Load reads ~/.kamun/config.toml, KAMUN_* environment variables and a .env
// file in the working directory, in increasing order of precedence for the
// environment.
func Load(v *viper.Viper) (Config, error) {
	if v == nil {
		v = viper.New()
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env file: %w", err)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("resolve home directory: %w", err)
	}
	dir := filepath.Join(homeDir, configDir)

	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath(dir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(keyRemoteURL, "")
	v.SetDefault(keyRemoteKey, "")
	v.SetDefault(keyRemoteTimeout, 10*time.Second)
	v.SetDefault(keyCacheDriver, CacheDriverFile)
	v.SetDefault(keyCachePath, filepath.Join(dir, "cache"))
	v.SetDefault(keyRosterSeedPath, "")
	v.SetDefault(keySyncDebounce, 500*time.Millisecond)
	v.SetDefault(keyTimerTick, time.Second)
	v.SetDefault(keyPassphraseHash, "")
	v.SetDefault(keyLogLevel, "warn")
	v.SetDefault(keyLogFormat, "text")

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := Config{
		Dir: dir,
		Remote: RemoteConfig{
			URL:     strings.TrimSpace(v.GetString(keyRemoteURL)),
			Key:     strings.TrimSpace(v.GetString(keyRemoteKey)),
			Timeout: v.GetDuration(keyRemoteTimeout),
		},
		Cache: CacheConfig{
			Driver: strings.ToLower(strings.TrimSpace(v.GetString(keyCacheDriver))),
			Path:   v.GetString(keyCachePath),
		},
		RosterSeedPath: strings.TrimSpace(v.GetString(keyRosterSeedPath)),
		Debounce:       v.GetDuration(keySyncDebounce),
		TimerTick:      v.GetDuration(keyTimerTick),
		PassphraseHash: strings.TrimSpace(v.GetString(keyPassphraseHash)),
		Log: LogConfig{
			Level:  v.GetString(keyLogLevel),
			Format: v.GetString(keyLogFormat),
		},
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	switch c.Cache.Driver {
	case CacheDriverFile, CacheDriverSQLite:
	default:
		return fmt.Errorf("unsupported cache driver %q", c.Cache.Driver)
	}
	if strings.TrimSpace(c.Cache.Path) == "" {
		return errors.New("cache path is empty")
	}
	if c.Debounce < 0 {
		return errors.New("sync debounce must not be negative")
	}
	if c.TimerTick <= 0 {
		return errors.New("timer tick must be positive")
	}
	return nil
}

// RemoteSettings decides once whether a remote store may be used. Any
// *domain.ConfigurationError means the process runs cache-only.
func (c Config) RemoteSettings() (RemoteConfig, error) {
	if c.Remote.URL == "" {
		return RemoteConfig{}, &domain.ConfigurationError{Key: keyRemoteURL, Reason: "not set"}
	}

	parsed, err := url.Parse(c.Remote.URL)
	if err != nil || parsed.Host == "" {
		return RemoteConfig{}, &domain.ConfigurationError{Key: keyRemoteURL, Reason: "not a valid url"}
	}
	if parsed.Scheme != "https" {
		return RemoteConfig{}, &domain.ConfigurationError{Key: keyRemoteURL, Reason: "must use https"}
	}
	if len(c.Remote.Key) <= MinRemoteKeyLength {
		return RemoteConfig{}, &domain.ConfigurationError{
			Key:    keyRemoteKey,
			Reason: fmt.Sprintf("must be longer than %d characters", MinRemoteKeyLength),
		}
	}

	return c.Remote, nil
}
