// pkg/testutil/filetree.go
// DEPENDENCIES: None (base test utilities)
// PURPOSE: Declarative file trees and the component tree fixture

package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// FileTree represents a directory structure for testing.
// Values are either string (file content) or FileTree (subdirectory).
type FileTree map[string]interface{}

// Executable marks a file that must be created with the executable bit
type Executable string

// CreateFileTree recursively creates tree under basePath
func CreateFileTree(t *testing.T, basePath string, tree FileTree) {
	t.Helper()

	for name, content := range tree {
		fullPath := filepath.Join(basePath, name)

		switch v := content.(type) {
		case string:
			writeFile(t, fullPath, v, 0644)
		case Executable:
			writeFile(t, fullPath, string(v), 0755)
		case FileTree:
			if err := os.MkdirAll(fullPath, 0755); err != nil {
				t.Fatalf("Failed to create directory %s: %v", fullPath, err)
			}
			CreateFileTree(t, fullPath, v)
		default:
			t.Fatalf("Invalid file tree content type for %s: %T", name, content)
		}
	}
}

func writeFile(t *testing.T, path, content string, perm os.FileMode) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), perm); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
}

// AllHooks is every hook script a component tree ships, across both variants
var AllHooks = []string{
	"session-start.sh",
	"prompt-context.sh",
	"post-tool-log.sh",
	"extract-learnings.sh",
	"design-check.sh",
	"subagent-lifecycle.sh",
}

// ComponentTree returns the contents of a complete component tree (flat shape)
func ComponentTree() FileTree {
	hooks := FileTree{}
	for _, h := range AllHooks {
		hooks[h] = Executable("#!/bin/sh\necho " + h + "\n")
	}
	return FileTree{
		"hooks": hooks,
		"agents": FileTree{
			"architect.md": "# Architect\n",
			"reviewer.md":  "# Reviewer\n",
			"notes.txt":    "not an agent\n",
		},
		"commands": FileTree{
			"learn.md":  "Extract learnings.\n",
			"status.md": "Show system status.\n",
		},
		"skills": FileTree{
			"debugging": FileTree{
				"SKILL.md": "# Debugging\n",
				"scripts": FileTree{
					"trace.sh": Executable("#!/bin/sh\n"),
				},
			},
			"refactoring": FileTree{
				"SKILL.md": "# Refactoring\n",
			},
		},
		"templates": FileTree{
			"CLAUDE.md": "# Project instructions\n",
			"service": FileTree{
				"package.json": `{"name":"autonomous-service","scripts":{"start":"node server.js"}}` + "\n",
				"server.js":    "require('http').createServer((q, s) => s.end('ok')).listen(process.env.PORT)\n",
			},
		},
		"requirements.txt": "pyyaml\n",
		"scripts": FileTree{
			"install-git-hooks.sh": Executable("#!/bin/sh\n"),
			"build_index.py":       "print('indexing')\n",
		},
	}
}

// NestedComponentTree wraps ComponentTree one level down, the way the
// upstream repository lays it out
func NestedComponentTree() FileTree {
	return FileTree{
		"autonomous-system": ComponentTree(),
		"README.md":         "# autonomous system\n",
	}
}
