package cmd

import (
	"github.com/Subha2009/kamun-software/internal/application"
	"github.com/Subha2009/kamun-software/internal/domain"
	"github.com/spf13/cobra"
)

func newVoteCmd(app *app) *cobra.Command {
	var (
		yes     []string
		no      []string
		abstain []string
	)

	cmd := &cobra.Command{
		Use:   "vote <code>",
		Short: "Hold a roll call vote on a draft resolution and record the outcome",
		Long:  "vote opens a roll call on a draft resolution, casts the given votes, and records passed or failed. Only delegations present at roll call may vote; present and voting delegations may not abstain.",
		Args:  cobra.ExactArgs(1),
		RunE: app.withService(false, func(cmd *cobra.Command, svc *application.Service, args []string) error {
			r, err := findResolution(svc, args[0])
			if err != nil {
				return err
			}
			if err := svc.Voting.Open(r.ID); err != nil {
				return err
			}

			ballots := []struct {
				choice    domain.VoteChoice
				countries []string
			}{
				{domain.VoteYes, yes},
				{domain.VoteNo, no},
				{domain.VoteAbstain, abstain},
			}
			for _, ballot := range ballots {
				for _, country := range ballot.countries {
					if err := svc.Voting.Cast(country, ballot.choice); err != nil {
						svc.Voting.Cancel()
						return err
					}
				}
			}

			result, err := svc.Voting.Close()
			if err != nil {
				return err
			}

			tally := result.Tally
			printf(cmd, "%s: yes %d | no %d | abstain %d\n", result.Resolution.Code, tally.Yes, tally.No, tally.Abstain)
			printf(cmd, "cast %d of %d, %d needed\n", tally.Cast(), tally.Eligible, tally.Required())
			printf(cmd, "%s %s\n", result.Resolution.Code, result.Resolution.Status)
			return nil
		}),
	}

	cmd.Flags().StringSliceVar(&yes, "yes", nil, "Countries voting yes")
	cmd.Flags().StringSliceVar(&no, "no", nil, "Countries voting no")
	cmd.Flags().StringSliceVar(&abstain, "abstain", nil, "Countries abstaining")
	return cmd
}
