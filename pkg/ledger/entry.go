// Package ledger records, in application order, every mutation an installation
// run has actually performed, so the rollback engine can compensate them.
package ledger

import "fmt"

// Kind tags the variant of an Entry
type Kind string

const (
	RemoteAdded           Kind = "remote_added"
	SubtreeAdded          Kind = "subtree_added"
	DirectoryCreated      Kind = "directory_created"
	TreeCopied            Kind = "tree_copied"
	SettingsWritten       Kind = "settings_written"
	SymlinkCreated        Kind = "symlink_created"
	FileCreated           Kind = "file_created"
	FileCreatedWithBackup Kind = "file_created_with_backup"
	DependenciesInstalled Kind = "dependencies_installed"
	HooksInstalled        Kind = "hooks_installed"
	IndexCreated          Kind = "index_created"
	AuxServiceStarted     Kind = "aux_service_started"
)

// Entry describes one reversible mutation already applied.
// Which fields are meaningful depends on Kind.
type Entry struct {
	Kind Kind

	// Path is the mutated path (directory, file, link, subtree prefix, service dir)
	Path string
	// Backup is where the previous content was moved, if any
	Backup string
	// PreviousTarget is the replaced symlink destination, if any
	PreviousTarget string
	// Name is the remote name, dependency manifest or installer script
	Name string
	// PID is the started background process
	PID int
}

func NewRemoteAdded(name string) Entry { return Entry{Kind: RemoteAdded, Name: name} }

func NewSubtreeAdded(prefixDir string) Entry { return Entry{Kind: SubtreeAdded, Path: prefixDir} }

func NewDirectoryCreated(path string) Entry { return Entry{Kind: DirectoryCreated, Path: path} }

func NewTreeCopied(path string) Entry { return Entry{Kind: TreeCopied, Path: path} }

// NewSettingsWritten records a generated settings file; backup may be empty
func NewSettingsWritten(path, backup string) Entry {
	return Entry{Kind: SettingsWritten, Path: path, Backup: backup}
}

// NewSymlinkCreated records a link; previousTarget is set when an older link was replaced
func NewSymlinkCreated(path, previousTarget string) Entry {
	return Entry{Kind: SymlinkCreated, Path: path, PreviousTarget: previousTarget}
}

func NewFileCreated(path string) Entry { return Entry{Kind: FileCreated, Path: path} }

func NewFileCreatedWithBackup(path, backup string) Entry {
	return Entry{Kind: FileCreatedWithBackup, Path: path, Backup: backup}
}

func NewDependenciesInstalled(manifest string) Entry {
	return Entry{Kind: DependenciesInstalled, Name: manifest}
}

func NewHooksInstalled(script string) Entry { return Entry{Kind: HooksInstalled, Name: script} }

func NewIndexCreated(path string) Entry { return Entry{Kind: IndexCreated, Path: path} }

func NewAuxServiceStarted(pid int, path string) Entry {
	return Entry{Kind: AuxServiceStarted, PID: pid, Path: path}
}

// String renders the entry for logs and the rollback transcript
func (e Entry) String() string {
	switch e.Kind {
	case RemoteAdded:
		return fmt.Sprintf("remote %q added", e.Name)
	case SubtreeAdded:
		return fmt.Sprintf("subtree fetched into %s", e.Path)
	case DirectoryCreated:
		return fmt.Sprintf("directory %s created", e.Path)
	case TreeCopied:
		return fmt.Sprintf("tree %s copied", e.Path)
	case SettingsWritten:
		if e.Backup != "" {
			return fmt.Sprintf("settings %s written (backup %s)", e.Path, e.Backup)
		}
		return fmt.Sprintf("settings %s written", e.Path)
	case SymlinkCreated:
		if e.PreviousTarget != "" {
			return fmt.Sprintf("symlink %s created (replaced -> %s)", e.Path, e.PreviousTarget)
		}
		return fmt.Sprintf("symlink %s created", e.Path)
	case FileCreated:
		return fmt.Sprintf("file %s created", e.Path)
	case FileCreatedWithBackup:
		return fmt.Sprintf("file %s written (backup %s)", e.Path, e.Backup)
	case DependenciesInstalled:
		return fmt.Sprintf("dependencies from %s installed", e.Name)
	case HooksInstalled:
		return fmt.Sprintf("git hooks installed by %s", e.Name)
	case IndexCreated:
		return fmt.Sprintf("index %s created", e.Path)
	case AuxServiceStarted:
		return fmt.Sprintf("service in %s started (pid %d)", e.Path, e.PID)
	default:
		return fmt.Sprintf("%s %s", e.Kind, e.Path)
	}
}
