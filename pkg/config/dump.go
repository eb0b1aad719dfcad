package config

import (
	"bytes"

	"github.com/pelletier/go-toml/v2"

	"github.com/arthur-debert/autosys/pkg/errors"
)

// Dump renders settings as TOML in the same shape as the project file
func Dump(s Settings) (string, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(s); err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "failed to encode configuration")
	}
	return buf.String(), nil
}
