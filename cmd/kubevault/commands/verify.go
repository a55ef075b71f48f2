package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	dserrors "github.com/systmms/kubevault/internal/errors"
	"github.com/systmms/kubevault/internal/verify"
)

// NewVerifyCommand creates the verify command, which checks every referenced
// secret against the store.
func NewVerifyCommand(opts *Options) *cobra.Command {
	var (
		mappingFlags []string
		storePath    string
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify that referenced secrets exist in the store",
		Long: `Scan the manifest stream and verify every referenced secret against Vault.

Secret names are mapped to store locations with repeated -m flags. Without
explicit mappings, --store-path lists the child keys under a store path and
maps each referenced secret to the child of the same name.

Examples:
  helm template ./chart | kubevault verify -m my-secrets=kv:/apps/my-app
  helm template ./chart | kubevault verify --store-path kv:/apps`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := readCorpus(cmd, opts)
			if err != nil {
				return err
			}

			client, err := newStoreClient()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			mappings, err := resolveMappings(ctx, client, c, mappingFlags, storePath)
			if err != nil {
				return err
			}

			report := verify.Secrets(ctx, client, c, mappings)
			for _, msg := range report.Verified {
				opts.Logger.Info("Verified %s", msg)
			}
			for _, msg := range report.Problems {
				opts.Logger.Error("%s", msg)
			}
			if !report.OK() {
				return dserrors.UserError{
					Message:    fmt.Sprintf("%d secret reference(s) could not be verified", len(report.Problems)),
					Suggestion: "Add the missing secrets to the store or fix the -m mappings",
				}
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&mappingFlags, "mapping", "m", nil,
		"Map a k8s secret name to a store path (ex. my-secrets=engine-name:/apps/my-app)")
	cmd.Flags().StringVar(&storePath, "store-path", "",
		"Discover mappings by listing child keys under engine-name:/path")

	return cmd
}
