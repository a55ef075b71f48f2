package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/systmms/kubevault/cmd/kubevault/commands"
	"github.com/systmms/kubevault/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		manifestFile string
		noColor      bool
		debug        bool
	)

	opts := &commands.Options{}

	rootCmd := &cobra.Command{
		Use:   "kubevault",
		Short: "Manage Kubernetes secrets with Vault as the source of truth",
		Long: `kubevault scans rendered Kubernetes manifests for secret references,
verifies them against a Vault KV store, and generates Secret manifests
from the store's contents.

Manifests are read from stdin (pipe 'helm template' or 'kubectl kustomize'
output in) or from a file with --file.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts.Logger = logging.New(debug, noColor)
			opts.File = manifestFile
		},
	}

	rootCmd.PersistentFlags().StringVarP(&manifestFile, "file", "f", "", "Read manifests from a file instead of stdin")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(
		commands.NewListCommand(opts),
		commands.NewVerifyCommand(opts),
		commands.NewGenerateCommand(opts),
		commands.NewLoginCommand(opts),
		commands.NewCompletionCommand(opts),
	)

	return rootCmd.Execute()
}
