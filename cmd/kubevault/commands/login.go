package commands

import (
	"bufio"
	"strings"

	"github.com/spf13/cobra"
	dserrors "github.com/systmms/kubevault/internal/errors"
	"github.com/systmms/kubevault/internal/vault"
)

// NewLoginCommand creates the login command, which stores a Vault token in the
// OS keyring so later runs need no VAULT_TOKEN in the environment.
func NewLoginCommand(opts *Options) *cobra.Command {
	var (
		token string
		clear bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store a Vault token in the system keyring",
		Long: `Save a Vault client token in the operating system keyring. Commands that
talk to the store use it when no VAULT_* credentials are set in the
environment.

Examples:
  kubevault login --token s.xxxxxxxx
  vault print token | kubevault login
  kubevault login --clear`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if clear {
				if err := vault.ClearToken(); err != nil {
					return dserrors.UserError{
						Message: "Failed to clear the stored token",
						Details: err.Error(),
						Err:     err,
					}
				}
				opts.Logger.Info("Stored Vault token cleared")
				return nil
			}

			if token == "" {
				// Read a single line from stdin so tokens can be piped in.
				scanner := bufio.NewScanner(cmd.InOrStdin())
				if scanner.Scan() {
					token = strings.TrimSpace(scanner.Text())
				}
			}
			if token == "" {
				return dserrors.UserError{
					Message:    "No token provided",
					Suggestion: "Pass --token or pipe the token on stdin",
				}
			}

			if err := vault.StoreToken(token); err != nil {
				return dserrors.UserError{
					Message:    "Failed to store the token in the keyring",
					Details:    err.Error(),
					Suggestion: "Check that a keyring service is available on this system",
					Err:        err,
				}
			}
			opts.Logger.Info("Vault token stored in system keyring")
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Vault client token to store (read from stdin when omitted)")
	cmd.Flags().BoolVar(&clear, "clear", false, "Remove the stored token")

	return cmd
}
