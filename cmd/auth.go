package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/Subha2009/kamun-software/internal/application"
	"github.com/Subha2009/kamun-software/internal/domain"
	"github.com/spf13/cobra"
)

func newAuthCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the dashboard passphrase and remote credentials",
	}

	cmd.AddCommand(newAuthHashCmd(), newRemoteKeyCmd(app))
	return cmd
}

func newAuthHashCmd() *cobra.Command {
	var fromStdin bool

	cmd := &cobra.Command{
		Use:   "hash [passphrase]",
		Short: "Print the argon2id hash to store as auth.passphrase_hash",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			passphrase := ""
			switch {
			case fromStdin:
				read, err := readPassphrase(cmd.InOrStdin())
				if err != nil {
					return err
				}
				passphrase = read
			case len(args) == 1:
				passphrase = args[0]
			default:
				return domain.Required("passphrase")
			}

			hash, err := application.HashPassphrase(passphrase, application.DefaultArgon2Params)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return err
		},
	}

	cmd.Flags().BoolVar(&fromStdin, "stdin", false, "Read the passphrase from the first line of stdin")
	return cmd
}

func newRemoteKeyCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remote-key",
		Short: "Store the remote API key outside the config file",
		Long:  "The stored key is used when remote.url is set and remote.key is empty. It lives in pass when available, otherwise in a private file under the config directory.",
	}

	var fromStdin bool
	setCmd := &cobra.Command{
		Use:   "set [key]",
		Short: "Store the remote API key",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := ""
			switch {
			case fromStdin:
				read, err := readPassphrase(cmd.InOrStdin())
				if err != nil {
					return err
				}
				key = read
			case len(args) == 1:
				key = args[0]
			}
			key = strings.TrimSpace(key)
			if key == "" {
				return domain.Required("remote key")
			}

			if err := app.secrets.Put(cmd.Context(), remoteKeyName, key); err != nil {
				return fmt.Errorf("store remote key: %w", err)
			}
			printf(cmd, "Stored remote key\n")
			return nil
		},
	}
	setCmd.Flags().BoolVar(&fromStdin, "stdin", false, "Read the key from the first line of stdin")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Forget the stored remote API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.secrets.Delete(cmd.Context(), remoteKeyName); err != nil {
				return fmt.Errorf("clear remote key: %w", err)
			}
			printf(cmd, "Cleared remote key\n")
			return nil
		},
	}

	cmd.AddCommand(setCmd, clearCmd)
	return cmd
}

func readPassphrase(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read passphrase: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
