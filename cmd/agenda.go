package cmd

import (
	"strings"

	"github.com/Subha2009/kamun-software/internal/application"
	"github.com/spf13/cobra"
)

func newAgendaCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agenda",
		Short: "Show or change the agenda of the active session",
		RunE: app.withService(false, func(cmd *cobra.Command, svc *application.Service, _ []string) error {
			if _, err := requireSession(svc); err != nil {
				return err
			}
			printAgenda(cmd, svc.Agenda.Current())
			return nil
		}),
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "set <agenda>",
			Short: "Set the agenda",
			Args:  cobra.MinimumNArgs(1),
			RunE: app.withService(false, func(cmd *cobra.Command, svc *application.Service, args []string) error {
				if _, err := requireSession(svc); err != nil {
					return err
				}
				if err := svc.Agenda.Set(strings.Join(args, " ")); err != nil {
					return err
				}
				printAgenda(cmd, svc.Agenda.Current())
				return nil
			}),
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Clear the agenda",
			RunE: app.withService(false, func(cmd *cobra.Command, svc *application.Service, _ []string) error {
				if _, err := requireSession(svc); err != nil {
					return err
				}
				if err := svc.Agenda.Clear(); err != nil {
					return err
				}
				printf(cmd, "Agenda cleared\n")
				return nil
			}),
		},
	)

	return cmd
}

func printAgenda(cmd *cobra.Command, agenda string) {
	if agenda == "" {
		printf(cmd, "agenda: none\n")
		return
	}
	printf(cmd, "agenda: %s\n", agenda)
}
