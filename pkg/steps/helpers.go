package steps

import (
	"io/fs"
	"path/filepath"

	"github.com/arthur-debert/autosys/pkg/errors"
	"github.com/arthur-debert/autosys/pkg/guard"
	"github.com/arthur-debert/autosys/pkg/ledger"
)

// rel renders path relative to the target for actions and logs
func (e *Env) rel(path string) string {
	if r, err := filepath.Rel(e.Plan.TargetDir, path); err == nil {
		return r
	}
	return path
}

func (e *Env) exists(path string) bool {
	_, err := e.FS.Lstat(path)
	return err == nil
}

func stepError(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, errors.ErrStepFailed, format, args...)
}

// ensureDir creates one directory level at path
func ensureDir(env *Env, res *Result, path string) error {
	v, err := env.Guard.ShouldApply(guard.Target{Path: path, Kind: guard.KindDirectory})
	if err != nil {
		return stepError(err, "inspect %s", env.rel(path))
	}

	switch v.Decision {
	case guard.SkipAlreadySatisfied:
		res.act(env.rel(path), StatusSkipped, "exists")
		return nil
	case guard.SkipConflict:
		res.act(env.rel(path), StatusConflict, "%s", v.Reason)
		res.warn("%s: %s, left untouched", env.rel(path), v.Reason)
		return nil
	}

	if env.Plan.DryRun {
		res.act(env.rel(path), StatusPlanned, "create directory")
		return nil
	}
	if err := env.FS.Mkdir(path, 0755); err != nil {
		return stepError(err, "create directory %s", env.rel(path))
	}
	res.record(ledger.NewDirectoryCreated(path))
	res.act(env.rel(path), StatusApplied, "created")
	env.Logger.Info().Str("path", path).Msg("Directory created")
	return nil
}

// ensureParents creates, one recorded level at a time, every missing directory
// between base (which must exist) and the parent of base/rel
func ensureParents(env *Env, res *Result, base, rel string) error {
	dir := filepath.Dir(rel)
	if dir == "." {
		return nil
	}
	current := base
	for _, part := range splitPath(dir) {
		current = filepath.Join(current, part)
		if err := ensureDir(env, res, current); err != nil {
			return err
		}
	}
	return nil
}

func splitPath(p string) []string {
	var parts []string
	for p != "." && p != string(filepath.Separator) && p != "" {
		parts = append([]string{filepath.Base(p)}, parts...)
		p = filepath.Dir(p)
	}
	return parts
}

type entryFunc func(path, backup string) ledger.Entry

// fileEntry is the entry for a copied or generated file
func fileEntry(path, backup string) ledger.Entry {
	if backup == "" {
		return ledger.NewFileCreated(path)
	}
	return ledger.NewFileCreatedWithBackup(path, backup)
}

// writeGenerated writes content to path unless it already holds it, moving a
// different existing file aside first
func writeGenerated(env *Env, res *Result, path string, content []byte, perm fs.FileMode, entry entryFunc) error {
	v, err := env.Guard.ShouldApply(guard.Target{Path: path, Kind: guard.KindGeneratedFile, Content: content})
	if err != nil {
		return stepError(err, "inspect %s", env.rel(path))
	}

	switch v.Decision {
	case guard.SkipAlreadySatisfied:
		res.act(env.rel(path), StatusSkipped, "up to date")
		return nil
	case guard.SkipConflict:
		res.act(env.rel(path), StatusConflict, "%s", v.Reason)
		res.warn("%s: %s, left untouched", env.rel(path), v.Reason)
		return nil
	}

	if env.Plan.DryRun {
		if v.Backup {
			res.act(env.rel(path), StatusPlanned, "back up and rewrite")
		} else {
			res.act(env.rel(path), StatusPlanned, "write")
		}
		return nil
	}

	var backup string
	if v.Backup {
		backup = guard.BackupPath(env.FS, path, env.now())
		if err := env.FS.Rename(path, backup); err != nil {
			return stepError(err, "back up %s", env.rel(path))
		}
		env.Logger.Info().Str("path", path).Str("backup", backup).Msg("Existing file backed up")
	}

	if err := env.FS.WriteFile(path, content, perm); err != nil {
		// Leave the target as we found it; nothing is recorded for this file.
		_ = env.FS.Remove(path)
		if backup != "" {
			if rerr := env.FS.Rename(backup, path); rerr != nil {
				env.Logger.Error().Err(rerr).Str("backup", backup).Msg("Failed to restore backup")
			}
		}
		return stepError(err, "write %s", env.rel(path))
	}

	res.record(entry(path, backup))
	if backup != "" {
		res.act(env.rel(path), StatusApplied, "written, previous version at %s", filepath.Base(backup))
	} else {
		res.act(env.rel(path), StatusApplied, "written")
	}
	return nil
}

// copyAsset copies src to dst through writeGenerated
func copyAsset(env *Env, res *Result, src, dst string) error {
	info, err := env.FS.Stat(src)
	if err != nil {
		return stepError(err, "stat %s", env.rel(src))
	}
	content, err := env.FS.ReadFile(src)
	if err != nil {
		return stepError(err, "read %s", env.rel(src))
	}
	return writeGenerated(env, res, dst, content, info.Mode().Perm(), fileEntry)
}

// link points path at linkTo, replacing a symlink that points elsewhere
func link(env *Env, res *Result, path, linkTo string) error {
	v, err := env.Guard.ShouldApply(guard.Target{Path: path, Kind: guard.KindSymlink, LinkTo: linkTo})
	if err != nil {
		return stepError(err, "inspect %s", env.rel(path))
	}

	switch v.Decision {
	case guard.SkipAlreadySatisfied:
		res.act(env.rel(path), StatusSkipped, "linked")
		return nil
	case guard.SkipConflict:
		res.act(env.rel(path), StatusConflict, "%s", v.Reason)
		res.warn("%s: %s, left untouched", env.rel(path), v.Reason)
		return nil
	}

	if env.Plan.DryRun {
		if v.Replace {
			res.act(env.rel(path), StatusPlanned, "relink -> %s (was %s)", linkTo, v.PreviousTarget)
		} else {
			res.act(env.rel(path), StatusPlanned, "link -> %s", linkTo)
		}
		return nil
	}

	if v.Replace {
		if err := env.FS.Remove(path); err != nil {
			return stepError(err, "remove stale link %s", env.rel(path))
		}
	}
	if err := env.FS.Symlink(linkTo, path); err != nil {
		if v.Replace {
			if rerr := env.FS.Symlink(v.PreviousTarget, path); rerr != nil {
				env.Logger.Error().Err(rerr).Str("path", path).Msg("Failed to restore previous link")
			}
		}
		return stepError(err, "link %s", env.rel(path))
	}

	res.record(ledger.NewSymlinkCreated(path, v.PreviousTarget))
	res.act(env.rel(path), StatusApplied, "-> %s", linkTo)
	env.Logger.Info().Str("path", path).Str("target", linkTo).Msg("Symlink created")
	return nil
}
