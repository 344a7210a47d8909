package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/Subha2009/kamun-software/internal/application"
	"github.com/Subha2009/kamun-software/internal/domain"
	"github.com/spf13/cobra"
)

func newWatchCmd(app *app) *cobra.Command {
	var (
		flags    renderFlags
		interval time.Duration
		duration time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow the dashboard live, repainting when another screen changes it",
		RunE: app.withService(true, func(cmd *cobra.Command, svc *application.Service, _ []string) error {
			if interval <= 0 {
				return fmt.Errorf("interval must be positive")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			if duration > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, duration)
				defer cancel()
			}

			if svc.Sessions.Stage() == domain.StageAdmin {
				for svc.Sessions.Stage() != domain.StageDashboard {
					if _, err := svc.Sessions.Advance(); err != nil {
						return err
					}
				}
			}

			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			last := ""
			for {
				rendered, err := app.renderer(svc.Dashboard(), flags.options())
				if err != nil {
					return fmt.Errorf("render dashboard: %w", err)
				}
				if rendered != last {
					if _, err := fmt.Fprintln(cmd.OutOrStdout(), rendered); err != nil {
						return err
					}
					last = rendered
				}
				for _, err := range svc.Errors() {
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
				}

				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
				}
			}
		}),
	}

	flags.register(cmd)
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "How often to repaint")
	cmd.Flags().DurationVar(&duration, "for", 0, "Stop after this long (0 runs until interrupted)")
	return cmd
}
