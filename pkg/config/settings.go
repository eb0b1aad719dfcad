package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/arthur-debert/autosys/pkg/errors"
	"github.com/arthur-debert/autosys/pkg/types"
)

// Duration is a time.Duration that reads and writes as "1s" style text
type Duration time.Duration

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Settings is the layered, user-facing configuration
type Settings struct {
	Variant     string `koanf:"variant" toml:"variant" validate:"required,oneof=minimal full"`
	RepoURL     string `koanf:"repo_url" toml:"repo_url"`
	Branch      string `koanf:"branch" toml:"branch" validate:"required,excludesall= "`
	RemoteName  string `koanf:"remote_name" toml:"remote_name" validate:"required,excludesall= /"`
	Prefix      string `koanf:"prefix" toml:"prefix" validate:"required"`
	SkipPrompts bool   `koanf:"skip_prompts" toml:"skip_prompts"`
	DryRun      bool   `koanf:"dry_run" toml:"dry_run"`

	Features Features        `koanf:"features" toml:"features"`
	Service  ServiceSettings `koanf:"service" toml:"service"`
	Tools    ToolSettings    `koanf:"tools" toml:"tools"`
}

// Features toggles the optional steps
type Features struct {
	Dependencies bool `koanf:"dependencies" toml:"dependencies"`
	GitHooks     bool `koanf:"git_hooks" toml:"git_hooks"`
	Indexing     bool `koanf:"indexing" toml:"indexing"`
}

// ServiceSettings configures the auxiliary service
type ServiceSettings struct {
	Enabled        bool     `koanf:"enabled" toml:"enabled"`
	Start          bool     `koanf:"start" toml:"start"`
	Port           int      `koanf:"port" toml:"port" validate:"min=1,max=65535"`
	Dir            string   `koanf:"dir" toml:"dir" validate:"required"`
	HealthPath     string   `koanf:"health_path" toml:"health_path" validate:"required,startswith=/"`
	MaxAttempts    int      `koanf:"max_attempts" toml:"max_attempts" validate:"min=1,max=600"`
	Interval       Duration `koanf:"interval" toml:"interval" validate:"gt=0"`
	InstallCommand []string `koanf:"install_command" toml:"install_command" validate:"min=1,dive,required"`
	StartCommand   []string `koanf:"start_command" toml:"start_command" validate:"min=1,dive,required"`
}

// ToolSettings names the external binaries
type ToolSettings struct {
	Git           string `koanf:"git" toml:"git" validate:"required"`
	GitMinVersion string `koanf:"git_min_version" toml:"git_min_version" validate:"omitempty,semver"`
	Pip           string `koanf:"pip" toml:"pip" validate:"required"`
	Python        string `koanf:"python" toml:"python" validate:"required"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and reports every violation at once
func (s *Settings) Validate() error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var problems []string
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			problems = append(problems, fmt.Sprintf("%s fails %q (got %v)", fe.Namespace(), fe.Tag(), fe.Value()))
		}
	} else {
		problems = append(problems, err.Error())
	}

	return errors.Wrap(err, errors.ErrConfigInvalid, "invalid configuration").
		WithDetail("problems", problems)
}

// Plan converts settings into an installation plan for target.
// CreateInitialCommit and RunID are left for Resolve to decide.
func (s *Settings) Plan(target string) types.InstallationPlan {
	return types.InstallationPlan{
		TargetDir:           target,
		RepoURL:             s.RepoURL,
		Branch:              s.Branch,
		RemoteName:          s.RemoteName,
		Prefix:              s.Prefix,
		Variant:             types.Variant(s.Variant),
		InstallDependencies: s.Features.Dependencies,
		InstallGitHooks:     s.Features.GitHooks,
		RunIndexing:         s.Features.Indexing,
		Service: types.ServiceOptions{
			Enabled:        s.Service.Enabled,
			Start:          s.Service.Start,
			Port:           s.Service.Port,
			Dir:            s.Service.Dir,
			HealthPath:     s.Service.HealthPath,
			MaxAttempts:    s.Service.MaxAttempts,
			Interval:       time.Duration(s.Service.Interval),
			InstallCommand: append([]string(nil), s.Service.InstallCommand...),
			StartCommand:   append([]string(nil), s.Service.StartCommand...),
		},
		Tools: types.ToolOptions{
			Git:           s.Tools.Git,
			GitMinVersion: s.Tools.GitMinVersion,
			Pip:           s.Tools.Pip,
			Python:        s.Tools.Python,
		},
		NonInteractive: s.SkipPrompts,
		DryRun:         s.DryRun,
	}
}
