package testutil

import (
	"io/fs"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

// FileExists reports whether path exists (without following a final symlink)
func FileExists(t *testing.T, path string) bool {
	t.Helper()
	_, err := os.Lstat(path)
	return err == nil
}

// DirExists reports whether path is a directory
func DirExists(t *testing.T, path string) bool {
	t.Helper()
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// AssertFileContent checks that path is a regular file holding want
func AssertFileContent(t *testing.T, path, want string, msgAndArgs ...interface{}) {
	t.Helper()
	data, err := os.ReadFile(path)
	if assert.NoError(t, err, msgAndArgs...) {
		assert.Equal(t, want, string(data), msgAndArgs...)
	}
}

// AssertSymlink checks that path is a symlink whose content is target
func AssertSymlink(t *testing.T, path, target string, msgAndArgs ...interface{}) {
	t.Helper()
	info, err := os.Lstat(path)
	if !assert.NoError(t, err, msgAndArgs...) {
		return
	}
	if !assert.True(t, info.Mode()&fs.ModeSymlink != 0, "%s is not a symlink", path) {
		return
	}
	got, err := os.Readlink(path)
	if assert.NoError(t, err, msgAndArgs...) {
		assert.Equal(t, target, got, msgAndArgs...)
	}
}

// AssertNotExists checks that nothing occupies path
func AssertNotExists(t *testing.T, path string, msgAndArgs ...interface{}) {
	t.Helper()
	_, err := os.Lstat(path)
	assert.True(t, os.IsNotExist(err), "expected %s to be absent (err=%v)", path, err)
}
