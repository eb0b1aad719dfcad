// Package config resolves installer settings and turns them into an
// InstallationPlan.
//
// Settings are layered with koanf, later sources winning:
//
//  1. embedded defaults (embedded/defaults.toml)
//  2. <target>/.autosys.toml
//  3. AUTOSYS_* environment variables, "__" separating sections
//     (AUTOSYS_SERVICE__PORT=9000)
//  4. command-line flags the user actually set
//
// Resolve then fills the remaining gaps interactively, unless prompts are
// disabled, and decides everything the pipeline needs before any step runs.
package config
