package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const passphraseFlag = "passphrase"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "kamun",
		Short:         "Kamun: chair dashboard for Model UN committee sessions",
		Long:          "kamun runs a Model UN committee from the terminal: sessions, roll call, caucus and speaker timers, resolutions and roll call votes, stored in a shared remote store or in a local cache when none is configured.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().String(passphraseFlag, "", "dashboard passphrase when auth.passphrase_hash is set (or "+passphraseEnv+")")

	app, err := wireApp(viper.New())
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}
	rootCmd.PersistentPostRunE = func(_ *cobra.Command, _ []string) error {
		return app.close()
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newAuthCmd(app),
		newSessionCmd(app),
		newStageCmd(app),
		newAgendaCmd(app),
		newRosterCmd(app),
		newResolutionCmd(app),
		newVoteCmd(app),
		newCaucusCmd(app),
		newSpeakersCmd(app),
		newStatusCmd(app),
		newWatchCmd(app),
	)

	return rootCmd
}
