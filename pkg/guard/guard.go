// Package guard decides, before any mutation, whether a target already has
// the desired state. It only reads; the step executors act on its verdicts.
package guard

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/arthur-debert/autosys/pkg/internal/hashutil"
	"github.com/arthur-debert/autosys/pkg/logging"
	"github.com/arthur-debert/autosys/pkg/types"
	"github.com/rs/zerolog"
)

// Decision is the guard's answer for one target
type Decision int

const (
	// Apply means the mutation should be performed
	Apply Decision = iota
	// SkipAlreadySatisfied means the target already has the desired state
	SkipAlreadySatisfied
	// SkipConflict means something the installer must not touch occupies the target
	SkipConflict
)

func (d Decision) String() string {
	switch d {
	case Apply:
		return "apply"
	case SkipAlreadySatisfied:
		return "already-satisfied"
	case SkipConflict:
		return "conflict"
	default:
		return fmt.Sprintf("decision(%d)", int(d))
	}
}

// Kind is the type of target being guarded
type Kind int

const (
	KindDirectory Kind = iota
	KindSymlink
	KindGeneratedFile
)

// Target describes the desired end state of one path
type Target struct {
	Path string
	Kind Kind

	// LinkTo is the desired symlink content (KindSymlink)
	LinkTo string
	// Content is the desired file content (KindGeneratedFile)
	Content []byte
}

// Verdict is the full outcome of ShouldApply
type Verdict struct {
	Decision Decision

	// Replace is set when an existing symlink points elsewhere and must be removed first
	Replace        bool
	PreviousTarget string

	// Backup is set when an existing file with different content must be moved aside first
	Backup bool

	Reason string
}

// Guard answers ShouldApply against a filesystem
type Guard struct {
	fs     types.FS
	logger zerolog.Logger
}

// New creates a guard reading through fs
func New(fs types.FS) *Guard {
	return &Guard{fs: fs, logger: logging.GetLogger("guard")}
}

// ShouldApply decides what to do with target
func (g *Guard) ShouldApply(target Target) (Verdict, error) {
	var (
		v   Verdict
		err error
	)
	switch target.Kind {
	case KindDirectory:
		v, err = g.directory(target)
	case KindSymlink:
		v, err = g.symlink(target)
	case KindGeneratedFile:
		v, err = g.generated(target)
	default:
		return Verdict{}, fmt.Errorf("unknown target kind %d for %s", target.Kind, target.Path)
	}
	if err != nil {
		return Verdict{}, err
	}

	event := g.logger.Debug()
	if v.Decision == SkipConflict {
		event = g.logger.Warn()
	}
	event.Str("path", target.Path).
		Str("decision", v.Decision.String()).
		Bool("replace", v.Replace).
		Bool("backup", v.Backup).
		Str("reason", v.Reason).
		Msg("Guard verdict")

	return v, nil
}

func (g *Guard) directory(target Target) (Verdict, error) {
	info, err := g.fs.Stat(target.Path)
	if os.IsNotExist(err) {
		return Verdict{Decision: Apply}, nil
	}
	if err != nil {
		return Verdict{}, fmt.Errorf("stat %s: %w", target.Path, err)
	}
	if info.IsDir() {
		return Verdict{Decision: SkipAlreadySatisfied, Reason: "directory exists"}, nil
	}
	return Verdict{Decision: SkipConflict, Reason: "a non-directory occupies the path"}, nil
}

func (g *Guard) symlink(target Target) (Verdict, error) {
	info, err := g.fs.Lstat(target.Path)
	if os.IsNotExist(err) {
		return Verdict{Decision: Apply}, nil
	}
	if err != nil {
		return Verdict{}, fmt.Errorf("lstat %s: %w", target.Path, err)
	}

	if info.Mode()&fs.ModeSymlink == 0 {
		return Verdict{Decision: SkipConflict, Reason: "a regular file occupies the link path"}, nil
	}

	current, err := g.fs.Readlink(target.Path)
	if err != nil {
		return Verdict{}, fmt.Errorf("readlink %s: %w", target.Path, err)
	}
	if current == target.LinkTo {
		return Verdict{Decision: SkipAlreadySatisfied, Reason: "link already points at " + current}, nil
	}
	return Verdict{
		Decision:       Apply,
		Replace:        true,
		PreviousTarget: current,
		Reason:         "link points at " + current,
	}, nil
}

func (g *Guard) generated(target Target) (Verdict, error) {
	info, err := g.fs.Lstat(target.Path)
	if os.IsNotExist(err) {
		return Verdict{Decision: Apply}, nil
	}
	if err != nil {
		return Verdict{}, fmt.Errorf("lstat %s: %w", target.Path, err)
	}
	if info.IsDir() {
		return Verdict{Decision: SkipConflict, Reason: "a directory occupies the file path"}, nil
	}

	existing, err := g.fs.ReadFile(target.Path)
	if err != nil && info.Mode()&fs.ModeSymlink == 0 {
		return Verdict{}, fmt.Errorf("read %s: %w", target.Path, err)
	}
	if err == nil && bytes.Equal(existing, target.Content) {
		return Verdict{Decision: SkipAlreadySatisfied, Reason: "content unchanged"}, nil
	}

	// Dangling symlinks fall through here too: moved aside like any other file.
	return Verdict{
		Decision: Apply,
		Backup:   true,
		Reason:   fmt.Sprintf("content differs (%s -> %s)", hashutil.Checksum(existing), hashutil.Checksum(target.Content)),
	}, nil
}

// BackupTimeFormat is the timestamp suffix used for backups
const BackupTimeFormat = "20060102-150405"

// BackupPath returns a free path next to path for moving the current file aside.
func BackupPath(fsys types.FS, path string, now time.Time) string {
	base := fmt.Sprintf("%s.backup.%s", path, now.Format(BackupTimeFormat))
	candidate := base
	for i := 1; ; i++ {
		if _, err := fsys.Lstat(candidate); err != nil {
			return candidate
		}
		candidate = fmt.Sprintf("%s.%d", base, i)
	}
}
