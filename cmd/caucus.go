package cmd

import (
	"encoding/json"
	"fmt"
	"sync"

	dashboardadapter "github.com/Subha2009/kamun-software/internal/adapters/render/dashboard"
	"github.com/Subha2009/kamun-software/internal/application"
	"github.com/Subha2009/kamun-software/internal/domain"
	"github.com/spf13/cobra"
)

type timerFlags struct {
	total   int
	speaker int
	warnAt  int
}

func (f *timerFlags) register(cmd *cobra.Command, withSpeaker bool) {
	cmd.Flags().IntVar(&f.total, "total", 0, "Total duration in seconds (default depends on the timer)")
	cmd.Flags().IntVar(&f.warnAt, "warn", domain.KeepWarning, "Seconds left when the warning cue sounds (0 turns it off)")
	if withSpeaker {
		cmd.Flags().IntVar(&f.speaker, "speaker", 0, "Per speaker duration in seconds for moderated caucuses")
	}
}

func (f timerFlags) config(kind domain.TimerKind) domain.TimerConfig {
	cfg := domain.DefaultTimerConfig(kind)
	if f.total > 0 {
		cfg.Total = f.total
		if cfg.Speaker > cfg.Total {
			cfg.Speaker = cfg.Total
		}
		if cfg.WarnAt >= cfg.Total {
			cfg.WarnAt = 0
		}
	}
	if f.speaker > 0 {
		cfg.Speaker = f.speaker
	}
	if f.warnAt != domain.KeepWarning {
		cfg.WarnAt = f.warnAt
	}
	return cfg
}

func newCaucusCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "caucus",
		Short: "Run caucus and right of reply timers",
	}

	cmd.AddCommand(
		newCaucusRunCmd(app),
		newCaucusLogCmd(app),
		newCaucusClearCmd(app),
	)

	return cmd
}

func newCaucusRunCmd(app *app) *cobra.Command {
	var (
		flags   timerFlags
		topic   string
		country string
	)

	cmd := &cobra.Command{
		Use:   "run <moderated|unmoderated|reply>",
		Short: "Run a caucus or right of reply timer until it expires",
		Args:  cobra.ExactArgs(1),
		RunE: app.withService(false, func(cmd *cobra.Command, svc *application.Service, args []string) error {
			if _, err := requireSession(svc); err != nil {
				return err
			}

			kind, err := domain.ParseTimerKind(args[0])
			if err != nil {
				return err
			}
			if kind == domain.TimerSpeaker {
				return fmt.Errorf("the speaker timer runs with `kamun speakers run`")
			}
			if kind == domain.TimerReply && country != "" {
				entry, err := svc.Roster.Find(country)
				if err != nil {
					return err
				}
				country = entry.Country
			}

			if err := svc.Caucus.Configure(kind, flags.config(kind)); err != nil {
				return err
			}
			svc.Caucus.SetTopic(topic)
			svc.Caucus.SetReplyTarget(country)

			label := caucusLabel(kind, topic, country)
			updates := make(chan timerStateMsg, liveTimerBuffer)
			done := make(chan struct{})
			var once sync.Once
			stop := svc.Caucus.Observe(func(k domain.TimerKind, update application.TimerUpdate) {
				if k != kind {
					return
				}
				forward(updates, timerStateMsg{state: update.State})
				if update.State.Phase == domain.PhaseExpired {
					once.Do(func() { close(done) })
				}
			})
			defer stop()

			if err := svc.Caucus.Start(kind); err != nil {
				return err
			}
			state, err := svc.Caucus.State(kind)
			if err != nil {
				return err
			}

			if err := runLiveTimer(cmd.Context(), cmd.ErrOrStderr(), label, state, updates, done); err != nil {
				return err
			}

			printf(cmd, "%s ended after %s\n", label, dashboardadapter.FormatClock(state.Total))
			return nil
		}),
	}

	flags.register(cmd, true)
	cmd.Flags().StringVar(&topic, "topic", "", "Topic of a moderated caucus")
	cmd.Flags().StringVar(&country, "country", "", "Country granted a right of reply")
	return cmd
}

func caucusLabel(kind domain.TimerKind, topic, country string) string {
	switch kind {
	case domain.TimerModerated:
		if topic == "" {
			return "Moderated caucus"
		}
		return "Moderated caucus: " + topic
	case domain.TimerUnmoderated:
		return domain.UnmoderatedCaucusTopic
	default:
		return "Right of reply: " + country
	}
}

func newCaucusLogCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "log",
		Short: "List the caucuses and rights of reply of the active session",
		RunE: app.withService(false, func(cmd *cobra.Command, svc *application.Service, _ []string) error {
			if _, err := requireSession(svc); err != nil {
				return err
			}

			caucuses := svc.Caucus.Caucuses()
			replies := svc.Caucus.Replies()
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(map[string][]domain.CaucusLogEntry{
					"caucuses": caucuses,
					"replies":  replies,
				})
			}

			printf(cmd, "caucuses: %d\n", len(caucuses))
			for _, entry := range caucuses {
				printf(cmd, "  %s  %-12s %s  %s\n", entry.Timestamp.Local().Format("15:04"), entry.CaucusType, dashboardadapter.FormatClock(entry.Duration), entry.Topic)
			}
			printf(cmd, "rights of reply: %d\n", len(replies))
			for _, entry := range replies {
				printf(cmd, "  %s  %s\n", entry.Timestamp.Local().Format("15:04"), entry.Country)
			}
			return nil
		}),
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render the log as JSON")
	return cmd
}

func newCaucusClearCmd(app *app) *cobra.Command {
	var replies bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear the caucus history",
		RunE: app.withService(false, func(cmd *cobra.Command, svc *application.Service, _ []string) error {
			if _, err := requireSession(svc); err != nil {
				return err
			}

			if replies {
				printf(cmd, "%d rights of reply cleared\n", svc.Caucus.ClearReplies())
				return nil
			}
			printf(cmd, "%d caucuses cleared\n", svc.Caucus.ClearCaucuses())
			return nil
		}),
	}

	cmd.Flags().BoolVar(&replies, "replies", false, "Clear the rights of reply instead")
	return cmd
}
