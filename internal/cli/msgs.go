package cli

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort    = "Install the autonomous system into a git repository"
	MsgRootLong     = `autosys fetches the autonomous system component tree into the target
repository as a squashed git subtree, scaffolds .claude/, writes settings.json
for the chosen variant and links or copies hooks, agents, commands and skills.

Every change is recorded; if a mandatory step fails the run is rolled back and
the target is left as it was found.`
	MsgVerifyShort  = "Check an existing installation"
	MsgVerifyLong   = "Verify checks hook links, copied assets, settings and integration points without changing anything."
	MsgConfigShort  = "Print the resolved configuration as TOML"
	MsgVersionShort = "Print version information"

	// Status messages
	MsgInstallTitle   = "Installing the autonomous system into %s"
	MsgDryRunTitle    = "Planning the autonomous system installation into %s (dry run)"
	MsgDryRunNotice   = "Dry run: nothing was changed."
	MsgInstallDone    = "Installation complete (%d changes)"
	MsgNothingChanged = "Already installed; nothing changed."
	MsgVerifyFailed   = "installation has %d failing check(s)"

	// Version output
	MsgVersionFormat = "autosys version %s\n"
	MsgCommitFormat  = "Commit: %s\n"
	MsgBuiltFormat   = "Built:  %s\n"

	// Flag descriptions
	MsgFlagVerbose      = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagTarget       = "Repository to install into"
	MsgFlagConfig       = "Configuration variant (minimal or full)"
	MsgFlagRepoURL      = "Component repository URL"
	MsgFlagBranch       = "Component repository branch"
	MsgFlagSkipPrompts  = "Never prompt; use flags, configuration and defaults"
	MsgFlagDryRun       = "Show what would change without changing anything"
	MsgFlagWithDeps     = "Install Python dependencies"
	MsgFlagWithHooks    = "Install git hooks"
	MsgFlagWithIndex    = "Build the initial project index"
	MsgFlagService      = "Set up the auxiliary service"
	MsgFlagNoService    = "Do not set up the auxiliary service"
	MsgFlagServiceStart = "Start the auxiliary service after installing it"
	MsgFlagNoStart      = "Install the auxiliary service without starting it"
	MsgFlagServicePort  = "Port the auxiliary service listens on"
	MsgFlagFormat       = "Output format: auto, text, term, json or yaml"
	MsgFlagDefaults     = "Print the built-in defaults instead"
)
