package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Subha2009/kamun-software/internal/application"
	"github.com/Subha2009/kamun-software/internal/domain"
	"github.com/spf13/cobra"
)

func newRosterCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Take roll call for the active session",
	}

	cmd.AddCommand(
		newRosterListCmd(app),
		newRosterToggleCmd(app),
		newRosterSetCmd(app),
		newRosterNameCmd(app),
		newRosterSpokenCmd(app),
		newRosterResetCmd(app),
		newRosterStatsCmd(app),
		newRosterSeedCmd(app),
	)

	return cmd
}

func newRosterListCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List delegations and their attendance",
		RunE: app.withService(false, func(cmd *cobra.Command, svc *application.Service, _ []string) error {
			if _, err := requireSession(svc); err != nil {
				return err
			}

			entries := svc.Roster.Entries()
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}

			for _, entry := range entries {
				spoken := ""
				if entry.HasSpoken {
					spoken = " (spoken)"
				}
				name := ""
				if entry.DelegateName != "" {
					name = " - " + entry.DelegateName
				}
				printf(cmd, "%-34s %-18s%s%s\n", entry.Country, entry.Status, name, spoken)
			}
			return nil
		}),
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render the roster as JSON")
	return cmd
}

func newRosterToggleCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <country>...",
		Short: "Advance delegations through absent, present, present and voting",
		Args:  cobra.MinimumNArgs(1),
		RunE: app.withService(false, func(cmd *cobra.Command, svc *application.Service, args []string) error {
			if _, err := requireSession(svc); err != nil {
				return err
			}

			for _, country := range args {
				status, err := svc.Roster.ToggleStatus(country)
				if err != nil {
					return err
				}
				printf(cmd, "%s: %s\n", country, status)
			}
			return nil
		}),
	}
}

func newRosterSetCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set <status> <country>...",
		Short: "Set the attendance of delegations (absent, present, present_and_voting)",
		Args:  cobra.MinimumNArgs(2),
		RunE: app.withService(false, func(cmd *cobra.Command, svc *application.Service, args []string) error {
			if _, err := requireSession(svc); err != nil {
				return err
			}

			status, err := domain.ParseAttendanceStatus(args[0])
			if err != nil {
				return err
			}
			for _, country := range args[1:] {
				if err := svc.Roster.SetStatus(country, status); err != nil {
					return err
				}
			}

			printf(cmd, "%d marked %s\n", len(args)-1, status)
			return nil
		}),
	}
}

func newRosterNameCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "name <country> [delegate name]",
		Short: "Set or clear the delegate name of a delegation",
		Args:  cobra.MinimumNArgs(1),
		RunE: app.withService(false, func(cmd *cobra.Command, svc *application.Service, args []string) error {
			if _, err := requireSession(svc); err != nil {
				return err
			}

			name := strings.TrimSpace(strings.Join(args[1:], " "))
			if err := svc.Roster.SetDelegateName(args[0], name); err != nil {
				return err
			}

			if name == "" {
				printf(cmd, "%s: delegate name cleared\n", args[0])
				return nil
			}
			printf(cmd, "%s: %s\n", args[0], name)
			return nil
		}),
	}
}

func newRosterSpokenCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "spoken <country>...",
		Short: "Mark delegations as having spoken",
		Args:  cobra.MinimumNArgs(1),
		RunE: app.withService(false, func(cmd *cobra.Command, svc *application.Service, args []string) error {
			if _, err := requireSession(svc); err != nil {
				return err
			}

			for _, country := range args {
				if err := svc.Roster.MarkSpoken(country); err != nil {
					return err
				}
			}
			printf(cmd, "%d marked as spoken\n", len(args))
			return nil
		}),
	}
}

func newRosterResetCmd(app *app) *cobra.Command {
	var spokenOnly bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Mark every delegation absent",
		RunE: app.withService(false, func(cmd *cobra.Command, svc *application.Service, _ []string) error {
			if _, err := requireSession(svc); err != nil {
				return err
			}

			if spokenOnly {
				printf(cmd, "%d spoken flags cleared\n", svc.Roster.ResetSpoken())
				return nil
			}
			printf(cmd, "%d delegations marked absent\n", svc.Roster.ResetAll())
			return nil
		}),
	}

	cmd.Flags().BoolVar(&spokenOnly, "spoken", false, "Clear the spoken flags instead of attendance")
	return cmd
}

func newRosterStatsCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show attendance counts and majorities",
		RunE: app.withService(false, func(cmd *cobra.Command, svc *application.Service, _ []string) error {
			if _, err := requireSession(svc); err != nil {
				return err
			}

			stats := svc.Roster.Stats()
			printf(cmd, "delegations: %d\n", stats.Total)
			printf(cmd, "present: %d\n", stats.Present)
			printf(cmd, "present and voting: %d\n", stats.PresentAndVoting)
			printf(cmd, "absent: %d\n", stats.Absent)
			printf(cmd, "spoken: %d\n", stats.Spoken)
			printf(cmd, "simple majority: %d\n", stats.SimpleMajority())
			printf(cmd, "two thirds majority: %d\n", stats.TwoThirdsMajority())
			return nil
		}),
	}
}

func newRosterSeedCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Show the delegations new sessions are seeded with",
		RunE: func(cmd *cobra.Command, _ []string) error {
			delegations, err := app.roster.Load(cmd.Context())
			if err != nil {
				return err
			}

			printf(cmd, "file: %s\n", app.roster.Path())
			for _, d := range delegations {
				printf(cmd, "%s (%s)\n", d.Country, d.Code)
			}
			return nil
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the built-in delegations to the roster file for editing",
		RunE: func(cmd *cobra.Command, _ []string) error {
			current, err := app.roster.Load(cmd.Context())
			if err != nil && !force {
				return err
			}
			if err == nil && !force && !sameDelegations(current, domain.DefaultDelegations) {
				return fmt.Errorf("roster file %s is customized, pass --force to overwrite it", app.roster.Path())
			}

			if err := app.roster.Save(cmd.Context(), domain.DefaultDelegations); err != nil {
				return err
			}
			printf(cmd, "Wrote %d delegations to %s\n", len(domain.DefaultDelegations), app.roster.Path())
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite a customized roster file")

	cmd.AddCommand(initCmd)
	return cmd
}

func sameDelegations(a, b []domain.Delegation) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !strings.EqualFold(a[i].Country, b[i].Country) || !strings.EqualFold(a[i].Code, b[i].Code) {
			return false
		}
	}
	return true
}
