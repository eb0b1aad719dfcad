package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/autosys/pkg/errors"
	"github.com/arthur-debert/autosys/pkg/logging"
)

const (
	// ProjectFileName is the per-project override file looked up in the target
	ProjectFileName = ".autosys.toml"
	// EnvPrefix prefixes every environment override
	EnvPrefix = "AUTOSYS_"
)

// Loaded is the outcome of layering every configuration source
type Loaded struct {
	Settings Settings
	// explicit holds every key set by something other than the defaults
	explicit *koanf.Koanf
}

// Explicit reports whether key was set by the project file, the
// environment or a flag
func (l *Loaded) Explicit(key string) bool {
	return l.explicit != nil && l.explicit.Exists(key)
}

// Load layers defaults, the target's project file, environment overrides and
// flags. flags holds dotted keys ("service.port") for flags the user changed.
func Load(target string, flags map[string]interface{}) (*Loaded, error) {
	logger := logging.GetLogger("config")

	k := koanf.New(".")
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load embedded defaults")
	}

	over := koanf.New(".")

	projectFile := filepath.Join(target, ProjectFileName)
	if _, err := os.Stat(projectFile); err == nil {
		if err := over.Load(file.Provider(projectFile), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to load %s", projectFile).
				WithRemediation(fmt.Sprintf("fix or remove %s", projectFile))
		}
		logger.Debug().Str("path", projectFile).Msg("loaded project configuration")
	}

	if err := over.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment overrides")
	}

	if len(flags) > 0 {
		if err := over.Load(confmap.Provider(flags, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load flag overrides")
		}
	}

	if err := k.Merge(over); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to merge configuration")
	}

	var s Settings
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &s,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.TextUnmarshallerHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &s, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigInvalid, "failed to unmarshal configuration")
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}

	logger.Trace().Strs("explicit", over.Keys()).Msg("configuration layered")
	return &Loaded{Settings: s, explicit: over}, nil
}

// envKey maps AUTOSYS_SERVICE__HEALTH_PATH to service.health_path
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}
