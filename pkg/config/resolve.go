package config

import (
	"context"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/arthur-debert/autosys/pkg/errors"
	"github.com/arthur-debert/autosys/pkg/logging"
	"github.com/arthur-debert/autosys/pkg/prompt"
	"github.com/arthur-debert/autosys/pkg/types"
)

// Questions asked during resolution
const (
	QuestionRepoURL       = "Component repository URL"
	QuestionVariant       = "Configuration variant"
	QuestionDependencies  = "Install Python dependencies?"
	QuestionGitHooks      = "Install git hooks?"
	QuestionIndexing      = "Build the initial project index?"
	QuestionService       = "Set up the auxiliary service?"
	QuestionInitialCommit = "The repository has no commits. Create an initial commit?"
	QuestionProceed       = "Proceed with the installation?"
)

// History is the slice of git the resolver needs
type History interface {
	IsRepository(ctx context.Context) bool
	HasCommits(ctx context.Context) (bool, error)
}

// ResolveTarget turns a user supplied path into a clean absolute directory
func ResolveTarget(path string) (string, error) {
	if path == "" {
		path = "."
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrInvalidInput, "cannot resolve target %q", path)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrInvalidInput, "target %s is not accessible", abs)
	}
	if !info.IsDir() {
		return "", errors.Newf(errors.ErrInvalidInput, "target %s is not a directory", abs)
	}
	return abs, nil
}

// Resolve produces the immutable plan for one run. Every question is asked
// here so no prompt can interrupt a step once mutation starts.
func Resolve(ctx context.Context, loaded *Loaded, target string, p prompt.Prompter, history History) (types.InstallationPlan, error) {
	logger := logging.GetLogger("config")

	s := loaded.Settings
	interactive := !s.SkipPrompts && p != nil && p.Interactive()

	if interactive {
		if err := ask(&s, loaded, p); err != nil {
			return types.InstallationPlan{}, err
		}
	}

	if s.RepoURL == "" {
		return types.InstallationPlan{}, errors.New(errors.ErrConfigInvalid, "no component repository URL configured").
			WithRemediation("autosys --repo-url <url>")
	}
	if err := s.Validate(); err != nil {
		return types.InstallationPlan{}, err
	}

	plan := s.Plan(target)
	plan.RunID = uuid.NewString()
	plan.NonInteractive = !interactive

	if history != nil && history.IsRepository(ctx) {
		hasCommits, err := history.HasCommits(ctx)
		if err != nil {
			return types.InstallationPlan{}, errors.Wrap(err, errors.ErrPrerequisiteMissing, "cannot inspect repository history")
		}
		if !hasCommits {
			create := true
			if interactive && !s.DryRun {
				if create, err = p.Confirm(QuestionInitialCommit, true); err != nil {
					return types.InstallationPlan{}, aborted(err)
				}
			}
			if !create {
				return types.InstallationPlan{}, errors.New(errors.ErrAborted, "a subtree needs at least one commit").
					WithRemediation("git commit --allow-empty -m 'Initial commit'")
			}
			plan.CreateInitialCommit = true
		}
	}

	if interactive && !s.DryRun {
		proceed, err := p.Confirm(QuestionProceed, true)
		if err != nil {
			return types.InstallationPlan{}, aborted(err)
		}
		if !proceed {
			return types.InstallationPlan{}, errors.New(errors.ErrAborted, "installation cancelled")
		}
	}

	logger.Debug().
		Str("run_id", plan.RunID).
		Str("variant", string(plan.Variant)).
		Bool("initial_commit", plan.CreateInitialCommit).
		Msg("plan resolved")
	return plan, nil
}

func ask(s *Settings, loaded *Loaded, p prompt.Prompter) error {
	var err error
	if s.RepoURL == "" {
		if s.RepoURL, err = p.Text(QuestionRepoURL, ""); err != nil {
			return aborted(err)
		}
	}

	if !loaded.Explicit("variant") {
		options := make([]string, len(types.Variants))
		for i, v := range types.Variants {
			options[i] = string(v)
		}
		if s.Variant, err = p.Select(QuestionVariant, options, s.Variant); err != nil {
			return aborted(err)
		}
	}

	toggles := []struct {
		key      string
		question string
		value    *bool
	}{
		{"features.dependencies", QuestionDependencies, &s.Features.Dependencies},
		{"features.git_hooks", QuestionGitHooks, &s.Features.GitHooks},
		{"features.indexing", QuestionIndexing, &s.Features.Indexing},
		{"service.enabled", QuestionService, &s.Service.Enabled},
	}
	for _, tg := range toggles {
		if loaded.Explicit(tg.key) {
			continue
		}
		if *tg.value, err = p.Confirm(tg.question, *tg.value); err != nil {
			return aborted(err)
		}
	}
	return nil
}

func aborted(err error) error {
	return errors.Wrap(err, errors.ErrAborted, "prompt interrupted")
}
