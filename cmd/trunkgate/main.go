// trunkgate gates package publication in CI: it resolves the release tag
// for the commit that triggered the workflow and verifies that the tag
// descends from the trunk branch before a publish step may run.
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/sergeknystautas/trunkgate/internal/config"
	"github.com/sergeknystautas/trunkgate/internal/version"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "trunkgate",
		Short:        "Release tag resolution and trunk-ancestry gating for publish pipelines",
		Long:         "trunkgate finds the highest MAJOR.MINOR.PATCH tag reachable from a commit and\nverifies the tag's commit and the trunk head share a fast-forward relationship.\nIt exits non-zero on any fatal condition so CI fails closed.",
		Version:      version.String(),
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.String("config", config.DefaultPath, "Path to config file")
	flags.String("repo-path", "", "Path to the local repository checkout")
	flags.String("trunk", "", "Trunk branch name (default main)")
	flags.String("remote", "", "Remote name for trunk resolution (default origin)")
	flags.String("provider", "", "History backend: git | gogit | github")
	flags.Bool("fetch", true, "Fetch the trunk branch before resolving its head")
	flags.String("github-repo", os.Getenv("GITHUB_REPOSITORY"), "GitHub repo (owner/repo) for the github provider")
	flags.String("github-token", os.Getenv("GITHUB_TOKEN"), "GitHub token for API access")
	flags.Bool("strict", false, "Reject release tags the trunk head has not reached")
	flags.String("output", "", "Report format: text | json")
	flags.BoolP("verbose", "v", false, "Enable debug logging")

	root.AddCommand(newRunCmd())
	root.AddCommand(newResolveCmd())
	root.AddCommand(newVerifyCmd())
	root.AddCommand(newSchemaCmd())
	return root
}

// newLogger builds the run logger on stderr so stdout stays machine-readable.
func newLogger(verbose bool) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "trunkgate",
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// triggerSHA returns the commit under test: the --sha flag, or the SHA the
// CI platform provides for the triggering event.
func triggerSHA(cmd *cobra.Command) (string, error) {
	sha, _ := cmd.Flags().GetString("sha")
	if sha == "" {
		sha = os.Getenv("GITHUB_SHA")
	}
	if sha == "" {
		return "", fmt.Errorf("commit SHA required: pass --sha or set GITHUB_SHA")
	}
	return sha, nil
}
