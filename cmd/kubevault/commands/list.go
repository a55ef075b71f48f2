package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"
	"github.com/systmms/kubevault/internal/manifest"
)

// NewListCommand creates the list command, which reports every secret reference
// found in the manifest stream.
func NewListCommand(opts *Options) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the secrets a manifest set references",
		Long: `Scan the manifest stream and report every secret reference: environment
variables drawn from secret keys, whole-secret environment sources, and
volume-mounted secrets together with where their mount paths are used.

Examples:
  helm template ./chart | kubevault list
  kubevault list -f rendered.yaml --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := readCorpus(cmd, opts)
			if err != nil {
				return err
			}

			envGroups := manifest.GroupEnvKeysBySecret(manifest.FindEnvKeyRefs(c))
			refNames := manifest.SecretRefNames(manifest.FindSecretRefs(c))
			volSecrets := manifest.FindVolumeSecrets(c)
			volGroups := manifest.GroupUsagesBySecret(manifest.FindAllVolumeUsages(c, volSecrets))

			out := cmd.OutOrStdout()
			if jsonOutput {
				return printListJSON(out, envGroups, refNames, volGroups)
			}
			printListText(out, envGroups, refNames, volGroups)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	return cmd
}

func printListText(w io.Writer, envGroups map[string][]string, refNames []string, volGroups map[string][]manifest.VolumeUsage) {
	fmt.Fprintln(w, "ENVIRONMENT SECRETS")
	for _, name := range sortedKeys(envGroups) {
		fmt.Fprintf(w, "  Secret '%s'\n", name)
		for _, key := range envGroups[name] {
			fmt.Fprintf(w, "    %s\n", key)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "SECRET REFERENCES")
	for _, name := range refNames {
		fmt.Fprintf(w, "  Secret '%s'\n", name)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "VOLUME SECRETS")
	for _, name := range sortedKeys(volGroups) {
		fmt.Fprintf(w, "  Secret '%s'\n", name)
		for _, usage := range volGroups[name] {
			fmt.Fprintf(w, "    Container: %s\n", usage.MountedIn)
			fmt.Fprintf(w, "    Volume Name: %s\n", usage.VolumeName)
			fmt.Fprintln(w, "    Mount Paths:")
			for _, p := range usage.MountPaths {
				fmt.Fprintf(w, "      %s\n", p)
			}
			fmt.Fprintln(w, "    Usages in deployment:")
			for _, u := range usage.Usages {
				fmt.Fprintf(w, "      %s\n", u)
			}
		}
	}
}

func printListJSON(w io.Writer, envGroups map[string][]string, refNames []string, volGroups map[string][]manifest.VolumeUsage) error {
	type usageJSON struct {
		VolumeName string   `json:"volumeName"`
		MountedIn  string   `json:"mountedIn"`
		MountPaths []string `json:"mountPaths"`
		Usages     []string `json:"usages"`
	}

	volumes := make(map[string][]usageJSON, len(volGroups))
	for name, usages := range volGroups {
		for _, u := range usages {
			volumes[name] = append(volumes[name], usageJSON{
				VolumeName: u.VolumeName,
				MountedIn:  u.MountedIn,
				MountPaths: u.MountPaths,
				Usages:     u.Usages,
			})
		}
	}

	output := struct {
		EnvSecrets    map[string][]string    `json:"envSecrets"`
		SecretRefs    []string               `json:"secretRefs"`
		VolumeSecrets map[string][]usageJSON `json:"volumeSecrets"`
	}{
		EnvSecrets:    envGroups,
		SecretRefs:    refNames,
		VolumeSecrets: volumes,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
