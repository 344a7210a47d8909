package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Subha2009/kamun-software/internal/application"
	"github.com/Subha2009/kamun-software/internal/domain"
	"github.com/spf13/cobra"
)

func newSessionCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Create, switch and delete committee sessions",
	}

	cmd.AddCommand(
		newSessionNewCmd(app),
		newSessionListCmd(app),
		newSessionSwitchCmd(app),
		newSessionEndCmd(app),
		newSessionDeleteCmd(app),
		newSessionShowCmd(app),
	)

	return cmd
}

func newSessionNewCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "new <name>",
		Short: "Create a session, make it active and seed its roster",
		Args:  cobra.MinimumNArgs(1),
		RunE: app.withService(false, func(cmd *cobra.Command, svc *application.Service, args []string) error {
			session, err := svc.Sessions.CreateSession(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}

			printf(cmd, "Created session %s (%s)\n", session.Name, session.ID)
			printf(cmd, "roster: %d delegations\n", len(svc.Roster.Entries()))
			return nil
		}),
	}
}

func newSessionListCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sessions, newest first",
		RunE: app.withService(false, func(cmd *cobra.Command, svc *application.Service, _ []string) error {
			sessions := svc.Sessions.Sessions()
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(sessions)
			}

			if len(sessions) == 0 {
				printf(cmd, "no sessions\n")
				return nil
			}
			for _, session := range sessions {
				marker := " "
				if session.Active {
					marker = "*"
				}
				printf(cmd, "%s %s  %s  %s\n", marker, session.ID, session.CreatedAt.Local().Format("2006-01-02 15:04"), session.Name)
			}
			return nil
		}),
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render sessions as JSON")
	return cmd
}

func newSessionSwitchCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "switch <id|name>",
		Short: "Make another session the active one",
		Args:  cobra.MinimumNArgs(1),
		RunE: app.withService(false, func(cmd *cobra.Command, svc *application.Service, args []string) error {
			session, err := findSession(svc, strings.Join(args, " "))
			if err != nil {
				return err
			}
			if err := svc.Sessions.SwitchSession(cmd.Context(), session.ID); err != nil {
				return err
			}

			printf(cmd, "Switched to session %s (%s)\n", session.Name, session.ID)
			return nil
		}),
	}
}

func newSessionEndCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "end",
		Short: "End the active session and keep its records",
		RunE: app.withService(false, func(cmd *cobra.Command, svc *application.Service, _ []string) error {
			active, ok := svc.Sessions.Active()
			if err := svc.Sessions.EndSession(cmd.Context()); err != nil {
				return err
			}
			if !ok {
				printf(cmd, "no active session\n")
				return nil
			}

			printf(cmd, "Ended session %s\n", active.Name)
			return nil
		}),
	}
}

func newSessionDeleteCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id|name>",
		Short: "Delete a session and everything recorded in it",
		Args:  cobra.MinimumNArgs(1),
		RunE: app.withService(false, func(cmd *cobra.Command, svc *application.Service, args []string) error {
			session, err := findSession(svc, strings.Join(args, " "))
			if err != nil {
				return err
			}
			if err := svc.Sessions.DeleteSession(cmd.Context(), session.ID); err != nil {
				return err
			}

			printf(cmd, "Deleted session %s (%s)\n", session.Name, session.ID)
			return nil
		}),
	}
}

func newSessionShowCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the active session",
		RunE: app.withService(false, func(cmd *cobra.Command, svc *application.Service, _ []string) error {
			active, err := requireSession(svc)
			if err != nil {
				return err
			}

			stats := svc.Roster.Stats()
			printf(cmd, "session: %s\n", active.Name)
			printf(cmd, "id: %s\n", active.ID)
			printf(cmd, "created: %s\n", active.CreatedAt.Local().Format("2006-01-02 15:04"))
			printf(cmd, "storage: %s\n", svc.Mode())
			printf(cmd, "present: %d of %d\n", stats.TotalPresent(), stats.Total)
			printf(cmd, "resolutions: %d\n", len(svc.Resolutions.List()))
			return nil
		}),
	}
}

// findSession matches an id first, then a case-insensitive name.
func findSession(svc *application.Service, ref string) (domain.Session, error) {
	ref = strings.TrimSpace(ref)
	sessions := svc.Sessions.Sessions()
	for _, session := range sessions {
		if session.ID == ref {
			return session, nil
		}
	}

	var matches []domain.Session
	for _, session := range sessions {
		if strings.EqualFold(session.Name, ref) {
			matches = append(matches, session)
		}
	}
	switch len(matches) {
	case 0:
		return domain.Session{}, fmt.Errorf("session %q: %w", ref, domain.ErrSessionNotFound)
	case 1:
		return matches[0], nil
	default:
		return domain.Session{}, fmt.Errorf("%d sessions are named %q, use the id", len(matches), ref)
	}
}
