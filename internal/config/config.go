// Package config loads and validates the gate configuration. Settings come
// from .trunkgate.yml in the repository root, overridden by command-line
// flags; the GitHub token only ever comes from the environment or a flag.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrInvalidConfig  = errors.New("invalid config")
)

// DefaultPath is where the config file lives relative to the repo root.
const DefaultPath = ".trunkgate.yml"

// Provider names accepted in config.
const (
	ProviderGit    = "git"
	ProviderGoGit  = "gogit"
	ProviderGitHub = "github"
)

// Config is the gate configuration document.
type Config struct {
	// Trunk is the integration branch publication is gated against.
	Trunk string `yaml:"trunk" json:"trunk" description:"Trunk branch name publication is gated against."`
	// Remote is the remote whose tracking refs resolve the trunk head.
	Remote string `yaml:"remote" json:"remote" description:"Remote name used to fetch and resolve the trunk head."`
	// Provider selects the history backend: git, gogit, or github.
	Provider string `yaml:"provider" json:"provider" enum:"git,gogit,github" description:"History backend."`
	// Fetch refreshes the trunk head from the remote before gating.
	Fetch bool `yaml:"fetch" json:"fetch" description:"Fetch the trunk branch before resolving its head."`
	// GitHubRepo is the owner/repo the github provider queries.
	GitHubRepo string `yaml:"github_repo" json:"github_repo,omitempty" description:"GitHub repository (owner/repo) for the github provider."`
	// RequireTagReachableFromTrunk rejects tags trunk has not reached yet.
	// Off by default: a tag at or ahead of trunk passes the gate.
	RequireTagReachableFromTrunk bool `yaml:"require_tag_reachable_from_trunk" json:"require_tag_reachable_from_trunk" description:"Reject release tags the trunk head has not reached."`

	// Flag-only settings, never read from or written to the file.
	RepoPath string `yaml:"-" json:"-"`
	Token    string `yaml:"-" json:"-"`
	Output   string `yaml:"-" json:"-"`
	Verbose  bool   `yaml:"-" json:"-"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Trunk:    "main",
		Remote:   "origin",
		Provider: ProviderGit,
		Fetch:    true,
		RepoPath: ".",
		Output:   "text",
	}
}

// Load reads the config file at path over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return cfg, nil
}

// MergeFlags overlays set command-line flags onto the config.
func MergeFlags(cfg *Config, flags *pflag.FlagSet) *Config {
	if v, err := flags.GetString("trunk"); err == nil && v != "" {
		cfg.Trunk = v
	}
	if v, err := flags.GetString("remote"); err == nil && v != "" {
		cfg.Remote = v
	}
	if v, err := flags.GetString("provider"); err == nil && v != "" {
		cfg.Provider = v
	}
	if flags.Changed("fetch") {
		if v, err := flags.GetBool("fetch"); err == nil {
			cfg.Fetch = v
		}
	}
	if v, err := flags.GetString("github-repo"); err == nil && v != "" {
		cfg.GitHubRepo = v
	}
	if v, err := flags.GetString("github-token"); err == nil && v != "" {
		cfg.Token = v
	}
	if v, err := flags.GetString("repo-path"); err == nil && v != "" {
		cfg.RepoPath = v
	}
	if v, err := flags.GetString("output"); err == nil && v != "" {
		cfg.Output = v
	}
	if flags.Changed("strict") {
		if v, err := flags.GetBool("strict"); err == nil {
			cfg.RequireTagReachableFromTrunk = v
		}
	}
	if v, err := flags.GetBool("verbose"); err == nil {
		cfg.Verbose = v
	}
	return cfg
}

// Validate checks the merged configuration before a run starts.
func (c *Config) Validate() error {
	if c.Trunk == "" {
		return fmt.Errorf("%w: trunk branch is required", ErrInvalidConfig)
	}
	if c.Remote == "" {
		return fmt.Errorf("%w: remote is required", ErrInvalidConfig)
	}
	switch c.Provider {
	case ProviderGit, ProviderGoGit:
	case ProviderGitHub:
		if c.GitHubRepo == "" {
			return fmt.Errorf("%w: github provider requires github_repo", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown provider %q (want git, gogit, or github)", ErrInvalidConfig, c.Provider)
	}
	switch c.Output {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: unknown output %q (want text or json)", ErrInvalidConfig, c.Output)
	}
	return nil
}
