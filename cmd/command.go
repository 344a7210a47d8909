package cmd

import (
	"fmt"
	"io"
	"sync"

	"github.com/Subha2009/kamun-software/internal/application"
	"github.com/Subha2009/kamun-software/internal/domain"
	"github.com/spf13/cobra"
)

type serviceFunc func(cmd *cobra.Command, svc *application.Service, args []string) error

// withService opens the services for one command run and flushes them
// afterwards, so every write reaches the cache before the process exits.
func (a *app) withService(realtime bool, fn serviceFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cmd.SetErr(&syncWriter{w: cmd.ErrOrStderr()})
		passphrase, _ := cmd.Flags().GetString(passphraseFlag)

		svc, err := a.open(ctx, openOptions{
			realtime:   realtime,
			passphrase: passphrase,
			cues:       cmd.ErrOrStderr(),
		})
		if err != nil {
			return err
		}

		runErr := fn(cmd, svc, args)
		if err := a.finish(ctx, svc, cmd.ErrOrStderr()); err != nil && runErr == nil {
			runErr = err
		}
		return runErr
	}
}

// requireSession fails commands that edit session data before a session exists.
func requireSession(svc *application.Service) (domain.Session, error) {
	active, ok := svc.Sessions.Active()
	if !ok {
		return domain.Session{}, fmt.Errorf("%w: create one with `kamun session new <name>`", domain.ErrNoActiveSession)
	}
	return active, nil
}

func printf(cmd *cobra.Command, format string, args ...any) {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}

// syncWriter serializes writes from the cue player and the live timer view,
// which share stderr.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
