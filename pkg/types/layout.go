package types

import "path/filepath"

// LayoutKind describes the shape of the fetched component tree
type LayoutKind string

const (
	// LayoutNested means the components live one level down, under NestedMarker
	LayoutNested LayoutKind = "nested"
	// LayoutFlat means the components live directly at the subtree root
	LayoutFlat LayoutKind = "flat"
)

// Source-side layout, relative to the layout base
const (
	NestedMarker = "autonomous-system"

	SourceHooksDir        = "hooks"
	SourceAgentsDir       = "agents"
	SourceCommandsDir     = "commands"
	SourceSkillsDir       = "skills"
	SourceTemplatesDir    = "templates"
	SourceServiceTemplate = "service"
	SourceInstructions    = "CLAUDE.md"
	SourceRequirements    = "requirements.txt"
	SourceGitHooksScript  = "scripts/install-git-hooks.sh"
	SourceIndexScript     = "scripts/build_index.py"
)

// SourceLayout is the detected shape of the component tree and the base path
// every source asset is resolved from. Computed once, read-only afterwards.
type SourceLayout struct {
	Kind LayoutKind
	Root string
	Base string

	// Provisional is set in dry-run when the tree has not been fetched yet.
	Provisional bool
}

func (l SourceLayout) HooksDir() string     { return filepath.Join(l.Base, SourceHooksDir) }
func (l SourceLayout) AgentsDir() string    { return filepath.Join(l.Base, SourceAgentsDir) }
func (l SourceLayout) CommandsDir() string  { return filepath.Join(l.Base, SourceCommandsDir) }
func (l SourceLayout) SkillsDir() string    { return filepath.Join(l.Base, SourceSkillsDir) }
func (l SourceLayout) TemplatesDir() string { return filepath.Join(l.Base, SourceTemplatesDir) }

// InstructionsTemplate is the project-root instruction file template
func (l SourceLayout) InstructionsTemplate() string {
	return filepath.Join(l.TemplatesDir(), SourceInstructions)
}

// ServiceTemplateDir is the auxiliary service project template
func (l SourceLayout) ServiceTemplateDir() string {
	return filepath.Join(l.TemplatesDir(), SourceServiceTemplate)
}

// RequirementsFile is the optional dependency manifest
func (l SourceLayout) RequirementsFile() string {
	return filepath.Join(l.Base, SourceRequirements)
}

// GitHooksInstaller is the auxiliary git hooks installer script
func (l SourceLayout) GitHooksInstaller() string {
	return filepath.Join(l.Base, filepath.FromSlash(SourceGitHooksScript))
}

// IndexEntryPoint is the initial indexing script
func (l SourceLayout) IndexEntryPoint() string {
	return filepath.Join(l.Base, filepath.FromSlash(SourceIndexScript))
}
