package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	dserrors "github.com/systmms/kubevault/internal/errors"
	"github.com/systmms/kubevault/internal/generate"
	"github.com/systmms/kubevault/internal/verify"
)

// NewGenerateCommand creates the generate command, which renders Secret
// manifests from store data.
func NewGenerateCommand(opts *Options) *cobra.Command {
	var (
		mappingFlags []string
		storePath    string
		namespace    string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate k8s Secret manifests from the store",
		Long: `Verify the manifest stream's secret references against Vault, then render
one Secret manifest per mapping with the store's data, base64 encoded.

Examples:
  helm template ./chart | kubevault generate -N my-namespace -m my-secrets=kv:/apps/my-app
  helm template ./chart | kubevault generate -N my-namespace --store-path kv:/apps > secrets.yaml`,
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

			// Never emit manifests for a store state that fails verification.
			report := verify.Secrets(ctx, client, c, mappings)
			for _, msg := range report.Verified {
				opts.Logger.Debug("Verified %s", msg)
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

			return generate.FromStore(ctx, cmd.OutOrStdout(), client, client.Address(), namespace, mappings)
		},
	}

	cmd.Flags().StringArrayVarP(&mappingFlags, "mapping", "m", nil,
		"Map a k8s secret name to a store path (ex. my-secrets=engine-name:/apps/my-app)")
	cmd.Flags().StringVar(&storePath, "store-path", "",
		"Discover mappings by listing child keys under engine-name:/path")
	cmd.Flags().StringVarP(&namespace, "namespace", "N", "", "k8s namespace for generated secrets (required)")
	_ = cmd.MarkFlagRequired("namespace")

	return cmd
}
