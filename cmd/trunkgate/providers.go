package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/go-github/v60/github"
	"github.com/spf13/cobra"

	"github.com/sergeknystautas/trunkgate/internal/config"
	"github.com/sergeknystautas/trunkgate/internal/history"
)

// loadConfig layers the config file, defaults, and flags, then validates.
// A missing config file is fine; an unreadable or invalid one is not.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		if !errors.Is(err, config.ErrConfigNotFound) {
			return nil, err
		}
		cfg = config.Default()
	}
	cfg = config.MergeFlags(cfg, cmd.Flags())
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildProvider constructs the history backend the config selects.
func buildProvider(cfg *config.Config) (history.Provider, error) {
	switch cfg.Provider {
	case config.ProviderGit:
		return history.NewGitCLI(cfg.RepoPath, cfg.Remote), nil
	case config.ProviderGoGit:
		return history.OpenGoGit(cfg.RepoPath, cfg.Remote)
	case config.ProviderGitHub:
		owner, repo, err := history.ParseRepo(cfg.GitHubRepo)
		if err != nil {
			return nil, err
		}
		client := github.NewClient(nil)
		if cfg.Token != "" {
			client = client.WithAuthToken(cfg.Token)
		}
		return history.NewGitHub(client, owner, repo), nil
	}
	return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
}

// freshenTrunk fetches the trunk branch when the provider supports it, so
// the head resolved afterwards is live. A repository without a usable remote
// (local runs) logs and continues; the resolve step still fails if no trunk
// ref exists at all.
func freshenTrunk(ctx context.Context, logger *log.Logger, cfg *config.Config, p history.Provider) {
	if !cfg.Fetch {
		return
	}
	f, ok := p.(history.Fetcher)
	if !ok {
		return
	}
	if err := f.Fetch(ctx, cfg.Trunk); err != nil {
		logger.Warn("could not fetch trunk, using local refs", "trunk", cfg.Trunk, "err", err)
		return
	}
	logger.Debug("fetched trunk", "remote", cfg.Remote, "trunk", cfg.Trunk)
}
