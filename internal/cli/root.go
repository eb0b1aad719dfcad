package cli

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/autosys/internal/version"
	"github.com/arthur-debert/autosys/pkg/config"
)

// flagKeys maps install flags to configuration keys
var flagKeys = map[string]string{
	"config":         "variant",
	"repo-url":       "repo_url",
	"branch":         "branch",
	"skip-prompts":   "skip_prompts",
	"dry-run":        "dry_run",
	"with-deps":      "features.dependencies",
	"with-git-hooks": "features.git_hooks",
	"with-index":     "features.indexing",
	"service":        "service.enabled",
	"service-start":  "service.start",
	"service-port":   "service.port",
}

// negations turn a --no-x flag into x=false
var negations = map[string]string{
	"no-service":       "service.enabled",
	"no-service-start": "service.start",
}

type rootOptions struct {
	verbosity int
	target    string
	variant   string
}

// NewRootCmd creates and returns the root command. The root command itself
// performs the installation.
func NewRootCmd(app *App) *cobra.Command {
	app.defaults()
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "autosys",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		Args:    cobra.NoArgs,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			app.SetupLogging(opts.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(cmd, app, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		DisableAutoGenTag: true,
	}
	rootCmd.SetOut(app.Out)
	rootCmd.SetErr(app.Err)

	// Global flags
	pf := rootCmd.PersistentFlags()
	pf.CountVarP(&opts.verbosity, "verbose", "v", MsgFlagVerbose)
	pf.StringVar(&opts.target, "target", ".", MsgFlagTarget)
	pf.StringVar(&opts.variant, "config", "", MsgFlagConfig)

	// Install flags
	f := rootCmd.Flags()
	f.String("repo-url", "", MsgFlagRepoURL)
	f.String("branch", "main", MsgFlagBranch)
	f.Bool("skip-prompts", false, MsgFlagSkipPrompts)
	f.Bool("dry-run", false, MsgFlagDryRun)
	f.Bool("with-deps", false, MsgFlagWithDeps)
	f.Bool("with-git-hooks", false, MsgFlagWithHooks)
	f.Bool("with-index", false, MsgFlagWithIndex)
	f.Bool("service", false, MsgFlagService)
	f.Bool("no-service", false, MsgFlagNoService)
	f.Bool("service-start", true, MsgFlagServiceStart)
	f.Bool("no-service-start", false, MsgFlagNoStart)
	f.Int("service-port", 8765, MsgFlagServicePort)
	rootCmd.MarkFlagsMutuallyExclusive("service", "no-service")
	rootCmd.MarkFlagsMutuallyExclusive("service-start", "no-service-start")

	rootCmd.AddCommand(newVerifyCmd(app, opts))
	rootCmd.AddCommand(newConfigCmd(app, opts))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// changedFlags collects the flags the user actually set as dotted
// configuration keys, so unset flags never shadow file or env values
func changedFlags(cmd *cobra.Command) (map[string]interface{}, error) {
	out := make(map[string]interface{})
	flags := cmd.Flags()

	if flags.Changed("config") {
		v, err := flags.GetString("config")
		if err != nil {
			return nil, err
		}
		out["variant"] = v
	}

	for name, key := range flagKeys {
		if name == "config" || flags.Lookup(name) == nil || !flags.Changed(name) {
			continue
		}
		var (
			v   interface{}
			err error
		)
		switch flags.Lookup(name).Value.Type() {
		case "bool":
			v, err = flags.GetBool(name)
		case "int":
			v, err = flags.GetInt(name)
		default:
			v, err = flags.GetString(name)
		}
		if err != nil {
			return nil, err
		}
		out[key] = v
	}

	for name, key := range negations {
		if flags.Lookup(name) == nil || !flags.Changed(name) {
			continue
		}
		set, err := flags.GetBool(name)
		if err != nil {
			return nil, err
		}
		if set {
			out[key] = false
		}
	}
	return out, nil
}

// loadSettings resolves the target and layers configuration for it
func loadSettings(cmd *cobra.Command, opts *rootOptions) (string, *config.Loaded, error) {
	target, err := config.ResolveTarget(opts.target)
	if err != nil {
		return "", nil, err
	}
	flags, err := changedFlags(cmd)
	if err != nil {
		return "", nil, err
	}
	loaded, err := config.Load(target, flags)
	if err != nil {
		return "", nil, err
	}
	return target, loaded, nil
}
