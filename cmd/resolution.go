package cmd

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/Subha2009/kamun-software/internal/application"
	"github.com/Subha2009/kamun-software/internal/domain"
	"github.com/spf13/cobra"
)

func newResolutionCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "resolution",
		Aliases: []string{"res"},
		Short:   "Track working papers, draft resolutions and their outcomes",
	}

	cmd.AddCommand(
		newResolutionAddCmd(app),
		newResolutionListCmd(app),
		newResolutionMoveCmd(app),
		newResolutionReorderCmd(app),
		newResolutionPartyCmd(app, "sponsor", "Add or remove a sponsor", (*application.ResolutionService).ToggleSponsor),
		newResolutionPartyCmd(app, "signatory", "Add or remove a signatory", (*application.ResolutionService).ToggleSignatory),
		newResolutionDeleteCmd(app),
	)

	return cmd
}

func newResolutionAddCmd(app *app) *cobra.Command {
	var (
		title       string
		sponsors    []string
		signatories []string
	)

	cmd := &cobra.Command{
		Use:   "add <code>",
		Short: "File a working paper",
		Args:  cobra.ExactArgs(1),
		RunE: app.withService(false, func(cmd *cobra.Command, svc *application.Service, args []string) error {
			if _, err := requireSession(svc); err != nil {
				return err
			}

			r, err := svc.Resolutions.Add(args[0], title, sponsors, signatories)
			if err != nil {
				return err
			}
			printf(cmd, "Filed %s as %s (position %d)\n", r.Code, r.Status, r.Position+1)
			return nil
		}),
	}

	cmd.Flags().StringVar(&title, "title", "", "Resolution title")
	cmd.Flags().StringSliceVar(&sponsors, "sponsor", nil, "Sponsoring country (repeatable)")
	cmd.Flags().StringSliceVar(&signatories, "signatory", nil, "Signatory country (repeatable)")
	return cmd
}

func newResolutionListCmd(app *app) *cobra.Command {
	var (
		asJSON bool
		status string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List resolutions in order",
		RunE: app.withService(false, func(cmd *cobra.Command, svc *application.Service, _ []string) error {
			if _, err := requireSession(svc); err != nil {
				return err
			}

			resolutions := svc.Resolutions.List()
			if status != "" {
				parsed, err := domain.ParseResolutionStatus(status)
				if err != nil {
					return err
				}
				resolutions = svc.Resolutions.ByStatus(parsed)
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(resolutions)
			}
			if len(resolutions) == 0 {
				printf(cmd, "no resolutions\n")
				return nil
			}
			for _, r := range resolutions {
				printf(cmd, "%d. %-10s %-14s %s\n", r.Position+1, r.Code, r.Status, r.Title)
				if len(r.Sponsors) > 0 {
					printf(cmd, "   sponsors: %s\n", strings.Join(r.Sponsors, ", "))
				}
				if len(r.Signatories) > 0 {
					printf(cmd, "   signatories: %s\n", strings.Join(r.Signatories, ", "))
				}
			}
			return nil
		}),
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render resolutions as JSON")
	cmd.Flags().StringVar(&status, "status", "", "Only list working_paper, draft, passed or failed")
	return cmd
}

func newResolutionMoveCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "move <code> <working_paper|draft>",
		Short: "Move a resolution between working paper and draft",
		Args:  cobra.ExactArgs(2),
		RunE: app.withService(false, func(cmd *cobra.Command, svc *application.Service, args []string) error {
			r, err := findResolution(svc, args[0])
			if err != nil {
				return err
			}
			status, err := domain.ParseResolutionStatus(args[1])
			if err != nil {
				return err
			}
			if err := svc.Resolutions.Move(r.ID, status); err != nil {
				return err
			}

			printf(cmd, "%s is now %s\n", r.Code, status)
			return nil
		}),
	}
}

func newResolutionReorderCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <code> <position>",
		Short: "Move a resolution to a 1-based position in the list",
		Args:  cobra.ExactArgs(2),
		RunE: app.withService(false, func(cmd *cobra.Command, svc *application.Service, args []string) error {
			r, err := findResolution(svc, args[0])
			if err != nil {
				return err
			}
			position, err := strconv.Atoi(args[1])
			if err != nil || position < 1 {
				return domain.Required("position")
			}
			if err := svc.Resolutions.Reorder(r.ID, position-1); err != nil {
				return err
			}

			moved, err := svc.Resolutions.Get(r.ID)
			if err != nil {
				return err
			}
			printf(cmd, "%s is now at position %d\n", moved.Code, moved.Position+1)
			return nil
		}),
	}
}

type partyToggle func(*application.ResolutionService, string, string) (domain.Resolution, error)

func newResolutionPartyCmd(app *app, use, short string, toggle partyToggle) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <code> <country>",
		Short: short,
		Args:  cobra.MinimumNArgs(2),
		RunE: app.withService(false, func(cmd *cobra.Command, svc *application.Service, args []string) error {
			r, err := findResolution(svc, args[0])
			if err != nil {
				return err
			}
			updated, err := toggle(svc.Resolutions, r.ID, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}

			printf(cmd, "%s sponsors: %s\n", updated.Code, joinOrNone(updated.Sponsors))
			printf(cmd, "%s signatories: %s\n", updated.Code, joinOrNone(updated.Signatories))
			return nil
		}),
	}
}

func newResolutionDeleteCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <code>",
		Short: "Withdraw a resolution that has not been voted on",
		Args:  cobra.ExactArgs(1),
		RunE: app.withService(false, func(cmd *cobra.Command, svc *application.Service, args []string) error {
			r, err := findResolution(svc, args[0])
			if err != nil {
				return err
			}
			if err := svc.Resolutions.Delete(r.ID); err != nil {
				return err
			}

			printf(cmd, "Withdrew %s\n", r.Code)
			return nil
		}),
	}
}

func findResolution(svc *application.Service, code string) (domain.Resolution, error) {
	if _, err := requireSession(svc); err != nil {
		return domain.Resolution{}, err
	}
	return svc.Resolutions.FindByCode(code)
}

func joinOrNone(list []string) string {
	if len(list) == 0 {
		return "none"
	}
	return strings.Join(list, ", ")
}
