// Package testutil provides the shared fixtures for installer tests.
//
// Key components:
//   - TestEnvironment: a throwaway target repository plus a component tree fixture
//   - FileTree: declarative directory/file setup on the real filesystem
//   - Snapshot: byte-level capture of a directory for before/after comparisons
//   - FakeGit, FakeRunner, FakeService: scripted collaborators recording every call
//
// Usage guidelines:
//   - Steps and the pipeline run against real temp directories, never the user's tree
//   - External tools are always faked; only pkg/git and pkg/execx shell out in tests
//   - All test data is defined inline, not in external files
package testutil
