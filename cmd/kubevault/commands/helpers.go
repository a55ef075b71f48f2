package commands

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"
	"github.com/systmms/kubevault/internal/corpus"
	dserrors "github.com/systmms/kubevault/internal/errors"
	"github.com/systmms/kubevault/internal/logging"
	"github.com/systmms/kubevault/internal/manifest"
	"github.com/systmms/kubevault/internal/mapping"
	"github.com/systmms/kubevault/internal/vault"
)

// Options carries state shared by all commands, populated by the root command's
// persistent flags.
type Options struct {
	Logger *logging.Logger
	// File is the manifest source; empty means stdin.
	File string
}

// readCorpus parses the manifest stream from the configured file or stdin.
func readCorpus(cmd *cobra.Command, opts *Options) (*corpus.Corpus, error) {
	reader := cmd.InOrStdin()
	if opts.File != "" {
		f, err := os.Open(opts.File)
		if err != nil {
			return nil, dserrors.UserError{
				Message:    "Failed to open manifest file",
				Details:    err.Error(),
				Suggestion: "Check that the path exists and is readable",
				Err:        err,
			}
		}
		defer func() { _ = f.Close() }()
		reader = f
	}

	c, err := corpus.New(reader)
	if err != nil {
		var parseErr *corpus.ParseError
		if errors.As(err, &parseErr) {
			return nil, dserrors.UserError{
				Message:    "Failed to parse manifest stream",
				Details:    parseErr.Error(),
				Suggestion: "Make sure the input is rendered YAML, e.g. the output of 'helm template'",
				Err:        err,
			}
		}
		return nil, err
	}
	return c, nil
}

// resolveMappings turns the -m flags into secret mappings, or discovers them by
// listing the store path and keeping the entries the manifest actually references.
func resolveMappings(ctx context.Context, kv vault.KV, c *corpus.Corpus, mappingFlags []string, storePath string) ([]mapping.SecretMapping, error) {
	if len(mappingFlags) > 0 {
		return mapping.ParseAll(mappingFlags)
	}
	if storePath == "" {
		return nil, nil
	}

	engine, path, err := mapping.ParseLocation(storePath)
	if err != nil {
		return nil, err
	}
	discovered, err := mapping.DiscoverFromPath(ctx, kv, engine, path)
	if err != nil {
		return nil, err
	}

	referenced := make(map[string]struct{})
	for _, name := range manifest.ReferencedSecretNames(c) {
		referenced[name] = struct{}{}
	}
	var mappings []mapping.SecretMapping
	for _, m := range discovered {
		if _, ok := referenced[m.KubernetesName]; ok {
			mappings = append(mappings, m)
		}
	}
	return mappings, nil
}

// newStoreClient builds the Vault client from the environment.
func newStoreClient() (*vault.Client, error) {
	cfg, err := vault.ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	return vault.NewClient(cfg)
}
