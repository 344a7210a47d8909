package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/Subha2009/kamun-software/internal/adapters/audio/terminal"
	"github.com/Subha2009/kamun-software/internal/adapters/backend/cacheonly"
	remotebackend "github.com/Subha2009/kamun-software/internal/adapters/backend/remote"
	filecache "github.com/Subha2009/kamun-software/internal/adapters/cache/file"
	sqlitecache "github.com/Subha2009/kamun-software/internal/adapters/cache/sqlite"
	"github.com/Subha2009/kamun-software/internal/adapters/credentials/chain"
	"github.com/Subha2009/kamun-software/internal/adapters/credentials/pass"
	"github.com/Subha2009/kamun-software/internal/adapters/remote/supabase"
	dashboardadapter "github.com/Subha2009/kamun-software/internal/adapters/render/dashboard"
	rostertoml "github.com/Subha2009/kamun-software/internal/adapters/roster/toml"
	"github.com/Subha2009/kamun-software/internal/application"
	"github.com/Subha2009/kamun-software/internal/config"
	"github.com/Subha2009/kamun-software/internal/domain"
	"github.com/Subha2009/kamun-software/internal/logging"
	"github.com/Subha2009/kamun-software/internal/ports"
	"github.com/spf13/viper"
)

const (
	rosterFileName = "roster.toml"
	sqliteFileName = "kamun.db"
	credentialsDir = "credentials"
	remoteKeyName  = "remote-key"
	passphraseEnv  = "KAMUN_PASSPHRASE"
)

var errLocked = errors.New("dashboard is locked: pass --passphrase or set " + passphraseEnv)

type app struct {
	cfg          config.Config
	logger       *slog.Logger
	cache        ports.Cache
	backend      ports.SyncBackend
	secrets      ports.SecretStore
	roster       *rostertoml.Repository
	renderer     func(application.Dashboard, dashboardadapter.RenderOptions) (string, error)
	closeBackend func() error
}

type openOptions struct {
	realtime   bool
	passphrase string
	cues       io.Writer
}

func wireApp(v *viper.Viper) (*app, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("configure logging: %w", err)
	}

	a := &app{
		cfg:          cfg,
		logger:       logger,
		renderer:     dashboardadapter.Render,
		closeBackend: func() error { return nil },
	}

	if err := a.wireCache(); err != nil {
		return nil, err
	}
	a.secrets, err = chain.NewPassWithFileFallback(pass.DefaultPrefix, filepath.Join(cfg.Dir, credentialsDir))
	if err != nil {
		return nil, fmt.Errorf("wire credential store: %w", err)
	}
	a.wireBackend()

	rosterPath := cfg.RosterSeedPath
	if rosterPath == "" {
		rosterPath = filepath.Join(cfg.Dir, rosterFileName)
	}
	a.roster, err = rostertoml.NewRepository(rosterPath)
	if err != nil {
		return nil, fmt.Errorf("wire roster file: %w", err)
	}

	return a, nil
}

func (a *app) wireCache() error {
	switch a.cfg.Cache.Driver {
	case config.CacheDriverSQLite:
		store, err := sqlitecache.Open(context.Background(), filepath.Join(a.cfg.Cache.Path, sqliteFileName))
		if err != nil {
			return fmt.Errorf("wire sqlite cache: %w", err)
		}
		a.cache = store
		a.closeBackend = store.Close
	default:
		a.cache = filecache.NewStore(a.cfg.Cache.Path)
	}
	return nil
}

// wireBackend picks the storage mode once for the process lifetime.
func (a *app) wireBackend() {
	local := cacheonly.New(a.cache)

	if a.cfg.Remote.URL != "" && a.cfg.Remote.Key == "" {
		key, err := a.secrets.Get(context.Background(), remoteKeyName)
		switch {
		case err == nil:
			a.cfg.Remote.Key = key
		case !errors.Is(err, domain.ErrCacheMiss):
			a.logger.Debug("stored remote key unavailable", "error", err)
		}
	}

	remote, err := a.cfg.RemoteSettings()
	if err != nil {
		a.logger.Info("remote store disabled, running on the local cache", "reason", err)
		a.backend = local
		return
	}

	client, err := supabase.New(supabase.Config{
		URL:     remote.URL,
		Key:     remote.Key,
		Timeout: remote.Timeout,
	}, &http.Client{Timeout: remote.Timeout}, a.logger)
	if err != nil {
		a.logger.Info("remote store disabled, running on the local cache", "reason", err)
		a.backend = local
		return
	}

	a.backend = remotebackend.New(client, local, a.logger)
}

// open builds the services for one command and resolves the session stage.
func (a *app) open(ctx context.Context, opts openOptions) (*application.Service, error) {
	delegations, err := a.roster.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load roster seed: %w", err)
	}

	var cues ports.CuePlayer = terminal.Silent{}
	if opts.cues != nil {
		cues = terminal.NewPlayer(opts.cues)
	}

	svc, err := application.NewService(a.backend, application.ServiceOptions{
		Delegations:    delegations,
		Realtime:       opts.realtime,
		PassphraseHash: a.cfg.PassphraseHash,
		NameDebounce:   a.cfg.Debounce,
		TimerInterval:  a.cfg.TimerTick,
		Cues:           cues,
		Logger:         a.logger,
	})
	if err != nil {
		return nil, err
	}

	if err := svc.Sessions.Init(ctx); err != nil {
		_ = svc.Close(ctx)
		return nil, fmt.Errorf("load sessions: %w", err)
	}

	if svc.Sessions.Stage() == domain.StageLocked {
		passphrase := opts.passphrase
		if passphrase == "" {
			passphrase = os.Getenv(passphraseEnv)
		}
		if passphrase == "" {
			_ = svc.Close(ctx)
			return nil, errLocked
		}
		if err := svc.Sessions.Unlock(ctx, passphrase); err != nil {
			_ = svc.Close(ctx)
			return nil, err
		}
	}

	return svc, nil
}

// finish flushes the service and reports persistence failures on errOut.
func (a *app) finish(ctx context.Context, svc *application.Service, errOut io.Writer) error {
	closeErr := svc.Close(ctx)
	for _, err := range svc.Errors() {
		_, _ = fmt.Fprintf(errOut, "warning: %v\n", err)
	}
	return closeErr
}

func (a *app) close() error {
	return a.closeBackend()
}
