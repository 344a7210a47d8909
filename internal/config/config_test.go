package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Subha2009/kamun-software/internal/domain"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".kamun"), cfg.Dir)
	assert.Equal(t, CacheDriverFile, cfg.Cache.Driver)
	assert.Equal(t, filepath.Join(home, ".kamun", "cache"), cfg.Cache.Path)
	assert.Equal(t, 500*time.Millisecond, cfg.Debounce)
	assert.Equal(t, time.Second, cfg.TimerTick)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadReadsConfigFileAndEnvironment(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("KAMUN_REMOTE_KEY", "from-environment-key-0123456789")

	dir := filepath.Join(home, ".kamun")
	require.NoError(t, os.MkdirAll(dir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(`
[remote]
url = "https://example.supabase.co"

[cache]
driver = "sqlite"
path = "/tmp/kamun.db"

[sync]
debounce = "250ms"
`), 0o600))

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "https://example.supabase.co", cfg.Remote.URL)
	assert.Equal(t, "from-environment-key-0123456789", cfg.Remote.Key)
	assert.Equal(t, CacheDriverSQLite, cfg.Cache.Driver)
	assert.Equal(t, "/tmp/kamun.db", cfg.Cache.Path)
	assert.Equal(t, 250*time.Millisecond, cfg.Debounce)

	remote, err := cfg.RemoteSettings()
	require.NoError(t, err)
	assert.Equal(t, cfg.Remote, remote)
}

func TestLoadRejectsUnknownCacheDriver(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	v := viper.New()
	v.Set("cache.driver", "redis")

	_, err := Load(v)
	assert.ErrorContains(t, err, `unsupported cache driver "redis"`)
}

func TestRemoteSettingsValidation(t *testing.T) {
	t.Parallel()

	longKey := "0123456789abcdefghijk"
	testCases := []struct {
		name    string
		remote  RemoteConfig
		wantKey string
	}{
		{name: "unset", remote: RemoteConfig{}, wantKey: "remote.url"},
		{name: "plain http", remote: RemoteConfig{URL: "http://example.com", Key: longKey}, wantKey: "remote.url"},
		{name: "no host", remote: RemoteConfig{URL: "https://", Key: longKey}, wantKey: "remote.url"},
		{name: "short key", remote: RemoteConfig{URL: "https://example.com", Key: "01234567890123456789"}, wantKey: "remote.key"},
		{name: "valid", remote: RemoteConfig{URL: "https://example.com", Key: longKey}},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := Config{Remote: tc.remote}.RemoteSettings()
			if tc.wantKey == "" {
				assert.NoError(t, err)
				return
			}

			var configErr *domain.ConfigurationError
			require.ErrorAs(t, err, &configErr)
			assert.Equal(t, tc.wantKey, configErr.Key)
		})
	}
}
