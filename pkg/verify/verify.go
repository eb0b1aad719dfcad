// Package verify inspects an installed target without changing it and
// reports what is missing or broken.
package verify

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/arthur-debert/autosys/pkg/assets"
	"github.com/arthur-debert/autosys/pkg/logging"
	"github.com/arthur-debert/autosys/pkg/templates"
	"github.com/arthur-debert/autosys/pkg/types"
	"gopkg.in/yaml.v3"
)

// Check is one verified item
type Check struct {
	Name   string `json:"name" yaml:"name"`
	Passed bool   `json:"passed" yaml:"passed"`
	Note   string `json:"note,omitempty" yaml:"note,omitempty"`
}

// Report is the immutable outcome of a verification pass
type Report struct {
	Target string  `json:"target" yaml:"target"`
	Checks []Check `json:"checks" yaml:"checks"`
}

// Failures counts failed checks
func (r Report) Failures() int {
	n := 0
	for _, c := range r.Checks {
		if !c.Passed {
			n++
		}
	}
	return n
}

// OK reports whether every check passed
func (r Report) OK() bool { return r.Failures() == 0 }

func (r Report) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

func (r Report) YAML() ([]byte, error) {
	return yaml.Marshal(r)
}

type verifier struct {
	fs     types.FS
	plan   types.InstallationPlan
	layout types.SourceLayout
	checks []Check
}

func (v *verifier) add(name string, passed bool, format string, args ...interface{}) {
	v.checks = append(v.checks, Check{Name: name, Passed: passed, Note: fmt.Sprintf(format, args...)})
}

// Run verifies the target described by plan against the component tree at l
func Run(fsys types.FS, plan types.InstallationPlan, l types.SourceLayout) Report {
	v := &verifier{fs: fsys, plan: plan, layout: l}

	v.hookLinks()
	v.copies("agents", l.AgentsDir(), plan.AgentsDir())
	v.copies("commands", l.CommandsDir(), plan.CommandsDir())
	v.skills()
	v.instructions()
	v.settings()

	report := Report{Target: plan.TargetDir, Checks: v.checks}
	logger := logging.GetLogger("verify")
	logger.Debug().
		Int("checks", len(report.Checks)).
		Int("failures", report.Failures()).
		Msg("Verification finished")
	return report
}

// Failed builds a report for a target that could not be inspected at all
func Failed(plan types.InstallationPlan, name string, err error) Report {
	return Report{Target: plan.TargetDir, Checks: []Check{{Name: name, Passed: false, Note: err.Error()}}}
}

func (v *verifier) hookLinks() {
	dir := v.plan.HooksDir()
	entries, err := v.fs.ReadDir(dir)
	if err != nil {
		v.add("hooks", false, "cannot read %s: %v", dir, err)
		return
	}

	expected := templates.Hooks(v.plan.Variant)
	linked := 0
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		info, err := v.fs.Lstat(path)
		if err != nil || info.Mode()&fs.ModeSymlink == 0 {
			continue
		}
		if _, err := v.fs.Stat(path); err != nil {
			v.add("hook "+e.Name(), false, "dangling link")
			continue
		}
		v.add("hook "+e.Name(), true, "resolves")
		if slices.Contains(expected, e.Name()) {
			linked++
		}
	}
	v.add("hook count", linked == len(expected), "%d of %d %s hooks linked", linked, len(expected), v.plan.Variant)
}

func (v *verifier) copies(category, srcDir, dstDir string) {
	total := 0
	var missing []string
	for name := range assets.Enumerate(v.fs, srcDir, assets.Markdown) {
		total++
		if _, err := v.fs.Stat(filepath.Join(dstDir, name)); err != nil {
			missing = append(missing, name)
		}
	}
	v.add(category, len(missing) == 0, "%d of %d present%s", total-len(missing), total, missingNote(missing))
}

func (v *verifier) skills() {
	srcRoot := v.layout.SkillsDir()
	dstRoot := v.plan.SkillsDir()
	total := 0
	var missing []string
	for bundle := range assets.Bundles(v.fs, srcRoot) {
		for rel := range assets.Walk(v.fs, filepath.Join(srcRoot, bundle)) {
			total++
			if _, err := v.fs.Stat(filepath.Join(dstRoot, bundle, rel)); err != nil {
				missing = append(missing, filepath.Join(bundle, rel))
			}
		}
	}
	v.add("skills", len(missing) == 0, "%d of %d files present%s", total-len(missing), total, missingNote(missing))
}

func (v *verifier) instructions() {
	if _, err := v.fs.Stat(v.layout.InstructionsTemplate()); err != nil {
		v.add(types.InstructionsFileName, true, "no template")
		return
	}
	path := v.plan.InstructionsPath()
	if _, err := v.fs.Stat(path); err != nil {
		v.add(types.InstructionsFileName, false, "missing")
		return
	}
	v.add(types.InstructionsFileName, true, "present")
}

func (v *verifier) settings() {
	path := v.plan.SettingsPath()
	data, err := v.fs.ReadFile(path)
	if err != nil {
		v.add("settings", false, "cannot read: %v", err)
		return
	}
	points, err := templates.IntegrationPoints(data)
	if err != nil {
		v.add("settings", false, "%v", err)
		return
	}
	v.add("settings", true, "valid JSON")

	want := templates.ExpectedPoints(v.plan.Variant)
	v.add("integration points", len(points) == want, "%d of %d expected for %s", len(points), want, v.plan.Variant)

	var broken []string
	for _, p := range points {
		name, ours := p.Hook()
		if !ours {
			continue
		}
		if _, err := v.fs.Stat(filepath.Join(v.plan.HooksDir(), name)); err != nil {
			broken = append(broken, p.Event+":"+name)
		}
	}
	v.add("hook commands", len(broken) == 0, "%d commands checked%s", len(points), missingNote(broken))
}

func missingNote(missing []string) string {
	if len(missing) == 0 {
		return ""
	}
	return "; missing " + strings.Join(missing, ", ")
}
