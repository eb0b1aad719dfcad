// Package assets discovers the copyable components of the fetched tree and
// copies them into the target. Discovery is lazy and always re-reads the
// source directories, so components added upstream are picked up without
// any change here.
package assets

import (
	"fmt"
	"io/fs"
	"iter"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/autosys/pkg/logging"
	"github.com/arthur-debert/autosys/pkg/types"
)

// Matcher selects directory entries by name
type Matcher func(name string) bool

// Markdown matches agent and command definitions
func Markdown(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".md")
}

// Any matches every entry
func Any(string) bool { return true }

// Enumerate yields the regular files directly under dir whose names match,
// in lexical order. A missing dir yields nothing.
func Enumerate(fsys types.FS, dir string, match Matcher) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, e := range readDir(fsys, dir) {
			if e.IsDir() || !match(e.Name()) {
				continue
			}
			if !yield(e.Name()) {
				return
			}
		}
	}
}

// Bundles yields the names of the subdirectories of dir (skill bundles)
func Bundles(fsys types.FS, dir string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, e := range readDir(fsys, dir) {
			if !e.IsDir() {
				continue
			}
			if !yield(e.Name()) {
				return
			}
		}
	}
}

// Walk yields every regular file under root as a path relative to root,
// depth first in lexical order
func Walk(fsys types.FS, root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		walk(fsys, root, "", yield)
	}
}

func walk(fsys types.FS, root, rel string, yield func(string) bool) bool {
	for _, e := range readDir(fsys, filepath.Join(root, rel)) {
		child := filepath.Join(rel, e.Name())
		if e.IsDir() {
			if !walk(fsys, root, child, yield) {
				return false
			}
			continue
		}
		if !yield(child) {
			return false
		}
	}
	return true
}

func readDir(fsys types.FS, dir string) []fs.DirEntry {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		logger := logging.GetLogger("assets")
		logger.Debug().Err(err).Str("dir", dir).Msg("Source directory not readable")
		return nil
	}
	return entries
}

// CopyFile copies src to dst, keeping the source permission bits
func CopyFile(fsys types.FS, src, dst string) error {
	info, err := fsys.Stat(src)
	if err != nil {
		return fmt.Errorf("stat %s: %w", src, err)
	}
	data, err := fsys.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read %s: %w", src, err)
	}
	if err := fsys.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("create parent of %s: %w", dst, err)
	}
	if err := fsys.WriteFile(dst, data, info.Mode().Perm()); err != nil {
		return fmt.Errorf("write %s: %w", dst, err)
	}
	return nil
}

// CopyTree copies the directory src to dst, which must not exist yet.
// On failure the partially copied dst is removed.
func CopyTree(fsys types.FS, src, dst string) error {
	if _, err := fsys.Lstat(dst); err == nil {
		return fmt.Errorf("copy %s: destination %s already exists", src, dst)
	}
	info, err := fsys.Stat(src)
	if err != nil {
		return fmt.Errorf("stat %s: %w", src, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("copy %s: not a directory", src)
	}

	if err := copyDir(fsys, src, dst, info.Mode().Perm()); err != nil {
		_ = fsys.RemoveAll(dst)
		return err
	}
	return nil
}

func copyDir(fsys types.FS, src, dst string, perm fs.FileMode) error {
	if err := fsys.MkdirAll(dst, perm|0700); err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	entries, err := fsys.ReadDir(src)
	if err != nil {
		return fmt.Errorf("read %s: %w", src, err)
	}
	for _, e := range entries {
		s := filepath.Join(src, e.Name())
		d := filepath.Join(dst, e.Name())
		if e.IsDir() {
			info, err := e.Info()
			if err != nil {
				return err
			}
			if err := copyDir(fsys, s, d, info.Mode().Perm()); err != nil {
				return err
			}
			continue
		}
		if err := CopyFile(fsys, s, d); err != nil {
			return err
		}
	}
	return nil
}
