package cmd

import (
	"strings"

	"github.com/Subha2009/kamun-software/internal/application"
	"github.com/Subha2009/kamun-software/internal/domain"
	"github.com/spf13/cobra"
)

func newSpeakersCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "speakers",
		Short: "Run the general speakers list",
	}

	cmd.AddCommand(newSpeakersRunCmd(app))
	return cmd
}

func newSpeakersRunCmd(app *app) *cobra.Command {
	var flags timerFlags

	cmd := &cobra.Command{
		Use:   "run <country>...",
		Short: "Give each country the floor in turn and mark them as spoken",
		Args:  cobra.MinimumNArgs(1),
		RunE: app.withService(false, func(cmd *cobra.Command, svc *application.Service, args []string) error {
			if _, err := requireSession(svc); err != nil {
				return err
			}

			if err := svc.Speakers.Configure(flags.config(domain.TimerSpeaker)); err != nil {
				return err
			}
			for _, country := range args {
				if err := svc.Speakers.Add(country); err != nil {
					return err
				}
			}

			updates := make(chan timerStateMsg, liveTimerBuffer)
			expired := make(chan struct{}, 1)
			stop := svc.Speakers.Observe(func(update application.TimerUpdate) {
				forward(updates, timerStateMsg{label: speakerLabel(svc.Speakers.Current()), state: update.State})
				for _, event := range update.Events {
					if event == domain.EventExpired {
						select {
						case expired <- struct{}{}:
						default:
						}
					}
				}
			})
			defer stop()

			if err := svc.Speakers.Start(); err != nil {
				return err
			}
			spoke := []string{svc.Speakers.Current()}

			ctx := cmd.Context()
			done := make(chan struct{})
			errs := make(chan error, 1)
			go func() {
				defer close(done)
				for {
					select {
					case <-expired:
					case <-ctx.Done():
						return
					}
					if svc.Speakers.Timer().Phase != domain.PhaseIdle {
						return
					}
					spoke = append(spoke, svc.Speakers.Current())
					if err := svc.Speakers.Start(); err != nil {
						errs <- err
						return
					}
				}
			}()

			if err := runLiveTimer(ctx, cmd.ErrOrStderr(), speakerLabel(svc.Speakers.Current()), svc.Speakers.Timer(), updates, done); err != nil {
				return err
			}
			<-done
			select {
			case err := <-errs:
				return err
			default:
			}

			printf(cmd, "spoke: %s\n", strings.Join(spoke, ", "))
			return nil
		}),
	}

	flags.register(cmd, false)
	return cmd
}

func speakerLabel(country string) string {
	if country == "" {
		return "Speaker"
	}
	return "Speaker: " + country
}
