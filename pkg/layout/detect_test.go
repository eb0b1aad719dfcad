package layout

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/autosys/pkg/errors"
	"github.com/arthur-debert/autosys/pkg/filesystem"
	"github.com/arthur-debert/autosys/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	fs := filesystem.NewReadOnly()

	t.Run("nested_layout", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(root, "autonomous-system", "hooks"), 0755))

		got, err := Detect(fs, root)
		require.NoError(t, err)
		assert.Equal(t, types.LayoutNested, got.Kind)
		assert.Equal(t, filepath.Join(root, "autonomous-system"), got.Base)
		assert.Equal(t, filepath.Join(root, "autonomous-system", "hooks"), got.HooksDir())
		assert.False(t, got.Provisional)
	})

	t.Run("flat_layout", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(root, "hooks"), 0755))

		got, err := Detect(fs, root)
		require.NoError(t, err)
		assert.Equal(t, types.LayoutFlat, got.Kind)
		assert.Equal(t, root, got.Base)
	})

	t.Run("nested_wins_when_both_exist", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(root, "hooks"), 0755))
		require.NoError(t, os.MkdirAll(filepath.Join(root, "autonomous-system", "hooks"), 0755))

		got, err := Detect(fs, root)
		require.NoError(t, err)
		assert.Equal(t, types.LayoutNested, got.Kind)
	})

	t.Run("marker_must_be_directory", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(root, "hooks"), []byte("not a dir"), 0644))

		_, err := Detect(fs, root)
		assert.True(t, errors.IsErrorCode(err, errors.ErrLayoutNotFound))
	})

	t.Run("neither_layout", func(t *testing.T) {
		root := t.TempDir()

		_, err := Detect(fs, root)
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrLayoutNotFound))
	})

	t.Run("missing_root", func(t *testing.T) {
		_, err := Detect(fs, filepath.Join(t.TempDir(), "nope"))
		assert.True(t, errors.IsErrorCode(err, errors.ErrLayoutNotFound))
	})
}

func TestProvisional(t *testing.T) {
	got := Provisional("/work/.autonomous-system")
	assert.True(t, got.Provisional)
	assert.Equal(t, "/work/.autonomous-system/hooks", got.HooksDir())
}
