// pkg/testutil/snapshot.go
// DEPENDENCIES: hashutil
// PURPOSE: Capture directory state for byte-for-byte before/after comparisons

package testutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/autosys/pkg/internal/hashutil"
)

// Snapshot maps every path under root (relative, slash separated) to a
// description of its type, mode and content. The .git directory is skipped.
type Snapshot map[string]string

// TakeSnapshot walks root without following symlinks
func TakeSnapshot(t *testing.T, root string) Snapshot {
	t.Helper()

	snap := Snapshot{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		if d.IsDir() && d.Name() == ".git" {
			return filepath.SkipDir
		}
		rel = filepath.ToSlash(rel)

		info, err := os.Lstat(path)
		if err != nil {
			return err
		}
		switch {
		case info.Mode()&fs.ModeSymlink != 0:
			target, err := os.Readlink(path)
			if err != nil {
				return err
			}
			snap[rel] = "link:" + target
		case info.IsDir():
			snap[rel] = fmt.Sprintf("dir:%o", info.Mode().Perm())
		default:
			sum, err := hashutil.CalculateFileChecksum(path)
			if err != nil {
				return err
			}
			snap[rel] = fmt.Sprintf("file:%o:%s", info.Mode().Perm(), sum)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to snapshot %s: %v", root, err)
	}
	return snap
}
