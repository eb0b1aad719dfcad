// Package filesystem provides the afero-backed implementations of types.FS:
// the OS filesystem for real runs and a read-only view for dry-runs.
package filesystem
