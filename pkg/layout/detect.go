// Package layout detects the shape of the fetched component tree.
package layout

import (
	"path/filepath"

	"github.com/arthur-debert/autosys/pkg/errors"
	"github.com/arthur-debert/autosys/pkg/logging"
	"github.com/arthur-debert/autosys/pkg/types"
)

type candidate struct {
	kind   types.LayoutKind
	marker string
	base   string
}

// candidates in priority order: nested first, then flat.
func candidates(root string) []candidate {
	nestedBase := filepath.Join(root, types.NestedMarker)
	return []candidate{
		{kind: types.LayoutNested, marker: filepath.Join(nestedBase, types.SourceHooksDir), base: nestedBase},
		{kind: types.LayoutFlat, marker: filepath.Join(root, types.SourceHooksDir), base: root},
	}
}

// Detect probes root for the nested and then the flat marker and returns the
// first layout whose marker exists. It never mutates anything.
func Detect(fs types.FS, root string) (types.SourceLayout, error) {
	logger := logging.GetLogger("layout")

	for _, c := range candidates(root) {
		info, err := fs.Stat(c.marker)
		if err != nil || !info.IsDir() {
			logger.Trace().Str("marker", c.marker).Msg("Layout marker absent")
			continue
		}
		logger.Debug().
			Str("kind", string(c.kind)).
			Str("base", c.base).
			Msg("Detected source layout")
		return types.SourceLayout{Kind: c.kind, Root: root, Base: c.base}, nil
	}

	return types.SourceLayout{}, errors.Newf(errors.ErrLayoutNotFound,
		"no component tree found under %s (expected %s/%s or %s)",
		root, types.NestedMarker, types.SourceHooksDir, types.SourceHooksDir).
		WithDetail("root", root)
}

// Provisional returns the layout a dry-run assumes before the tree has been fetched.
func Provisional(root string) types.SourceLayout {
	return types.SourceLayout{Kind: types.LayoutFlat, Root: root, Base: root, Provisional: true}
}
