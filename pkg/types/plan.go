package types

import (
	"path/filepath"
	"time"
)

// Variant selects which integration points and hook assets are installed
type Variant string

const (
	// VariantMinimal wires the three core integration points
	VariantMinimal Variant = "minimal"
	// VariantFull adds learning extraction, design checks and subagent lifecycle hooks
	VariantFull Variant = "full"
)

// Variants lists the supported configuration variants in display order
var Variants = []Variant{VariantMinimal, VariantFull}

// Valid reports whether v is a supported variant
func (v Variant) Valid() bool {
	return v == VariantMinimal || v == VariantFull
}

// ServiceOptions configures the optional auxiliary service
type ServiceOptions struct {
	Enabled        bool
	Start          bool
	Port           int
	Dir            string
	HealthPath     string
	MaxAttempts    int
	Interval       time.Duration
	InstallCommand []string
	StartCommand   []string
}

// ToolOptions names the external binaries the installer shells out to
type ToolOptions struct {
	Git           string
	GitMinVersion string
	Pip           string
	Python        string
}

// InstallationPlan is the fully resolved, immutable input of one installation run.
// It is created once by plan resolution and passed by value afterwards.
type InstallationPlan struct {
	RunID string

	TargetDir  string
	RepoURL    string
	Branch     string
	RemoteName string
	Prefix     string

	Variant Variant

	InstallDependencies bool
	InstallGitHooks     bool
	RunIndexing         bool
	Service             ServiceOptions
	Tools               ToolOptions

	// CreateInitialCommit is decided up front when the target has no commits yet.
	CreateInitialCommit bool
	NonInteractive      bool
	DryRun              bool
}

// Target-side layout, relative to the project root
const (
	ClaudeDirName        = ".claude"
	SettingsFileName     = "settings.json"
	InstructionsFileName = "CLAUDE.md"
	PlaceholderFileName  = ".gitkeep"
	IndexDirName         = "index"
)

// ScaffoldDirs are created under the project root in this order
var ScaffoldDirs = []string{
	ClaudeDirName,
	filepath.Join(ClaudeDirName, "hooks"),
	filepath.Join(ClaudeDirName, "agents"),
	filepath.Join(ClaudeDirName, "commands"),
	filepath.Join(ClaudeDirName, "skills"),
	filepath.Join(ClaudeDirName, "logs"),
}

// ClaudeDir returns the absolute .claude directory of the target
func (p InstallationPlan) ClaudeDir() string {
	return filepath.Join(p.TargetDir, ClaudeDirName)
}

// SettingsPath returns the generated settings file path
func (p InstallationPlan) SettingsPath() string {
	return filepath.Join(p.ClaudeDir(), SettingsFileName)
}

// HooksDir returns the directory receiving hook symlinks
func (p InstallationPlan) HooksDir() string {
	return filepath.Join(p.ClaudeDir(), "hooks")
}

// AgentsDir returns the directory receiving agent definitions
func (p InstallationPlan) AgentsDir() string {
	return filepath.Join(p.ClaudeDir(), "agents")
}

// CommandsDir returns the directory receiving slash-command definitions
func (p InstallationPlan) CommandsDir() string {
	return filepath.Join(p.ClaudeDir(), "commands")
}

// SkillsDir returns the directory receiving skill bundles
func (p InstallationPlan) SkillsDir() string {
	return filepath.Join(p.ClaudeDir(), "skills")
}

// IndexDir returns the directory produced by initial indexing
func (p InstallationPlan) IndexDir() string {
	return filepath.Join(p.ClaudeDir(), IndexDirName)
}

// InstructionsPath returns the project-root instruction file path
func (p InstallationPlan) InstructionsPath() string {
	return filepath.Join(p.TargetDir, InstructionsFileName)
}

// SubtreeDir returns the absolute directory the component tree is fetched into
func (p InstallationPlan) SubtreeDir() string {
	return filepath.Join(p.TargetDir, p.Prefix)
}

// ServiceDir returns the absolute auxiliary service project directory
func (p InstallationPlan) ServiceDir() string {
	if filepath.IsAbs(p.Service.Dir) {
		return p.Service.Dir
	}
	return filepath.Join(p.TargetDir, p.Service.Dir)
}
