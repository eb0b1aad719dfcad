// Package templates holds the embedded settings templates for each variant,
// the hook set each variant links, and the post-install guide.
package templates

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"
	"text/template"

	"github.com/arthur-debert/autosys/pkg/types"
)

//go:embed settings/minimal.json
var minimalSettings []byte

//go:embed settings/full.json
var fullSettings []byte

//go:embed guide/next-steps.md
var nextStepsGuide string

// HookCommandPrefix is how generated settings refer to linked hooks
const HookCommandPrefix = "$CLAUDE_PROJECT_DIR/.claude/hooks/"

var minimalHooks = []string{
	"session-start.sh",
	"prompt-context.sh",
	"post-tool-log.sh",
}

var fullHooks = append(append([]string{}, minimalHooks...),
	"extract-learnings.sh",
	"design-check.sh",
	"subagent-lifecycle.sh",
)

// Settings returns the settings file content for v
func Settings(v types.Variant) ([]byte, error) {
	switch v {
	case types.VariantMinimal:
		return bytes.Clone(minimalSettings), nil
	case types.VariantFull:
		return bytes.Clone(fullSettings), nil
	default:
		return nil, fmt.Errorf("unknown configuration variant %q", v)
	}
}

// Hooks returns the hook executables linked for v
func Hooks(v types.Variant) []string {
	if v == types.VariantFull {
		return append([]string{}, fullHooks...)
	}
	return append([]string{}, minimalHooks...)
}

// Point is one hook command registered on a lifecycle event
type Point struct {
	Event   string
	Matcher string
	Command string
}

// Hook returns the hook file name the command runs, if it is one of ours
func (p Point) Hook() (string, bool) {
	if !strings.HasPrefix(p.Command, HookCommandPrefix) {
		return "", false
	}
	return path.Base(strings.TrimPrefix(p.Command, HookCommandPrefix)), true
}

type settingsFile struct {
	Hooks map[string][]struct {
		Matcher string `json:"matcher,omitempty"`
		Hooks   []struct {
			Type    string `json:"type"`
			Command string `json:"command"`
		} `json:"hooks"`
	} `json:"hooks"`
}

// IntegrationPoints parses settings content and lists its hook commands,
// ordered by event name
func IntegrationPoints(data []byte) ([]Point, error) {
	var s settingsFile
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse settings: %w", err)
	}

	events := make([]string, 0, len(s.Hooks))
	for e := range s.Hooks {
		events = append(events, e)
	}
	sort.Strings(events)

	var points []Point
	for _, e := range events {
		for _, group := range s.Hooks[e] {
			for _, h := range group.Hooks {
				if h.Type != "command" {
					continue
				}
				points = append(points, Point{Event: e, Matcher: group.Matcher, Command: h.Command})
			}
		}
	}
	return points, nil
}

// ExpectedPoints is the integration point count of v's template
func ExpectedPoints(v types.Variant) int {
	return len(Hooks(v))
}

// GuideData fills the post-install guide
type GuideData struct {
	Variant           types.Variant
	SettingsPath      string
	IntegrationPoints int
	Prefix            string
	RemoteName        string
	Branch            string
	APIKeySet         bool
	ServiceURL        string
}

var guide = template.Must(template.New("next-steps").Parse(nextStepsGuide))

// NextSteps renders the markdown guide shown after a successful install
func NextSteps(data GuideData) (string, error) {
	var buf bytes.Buffer
	if err := guide.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render guide: %w", err)
	}
	return buf.String(), nil
}
