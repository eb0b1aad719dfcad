// pkg/testutil/fakes.go
// DEPENDENCIES: git, execx, service interfaces
// PURPOSE: Scripted collaborators for steps, prerequisites and the pipeline

package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/arthur-debert/autosys/pkg/execx"
	"github.com/arthur-debert/autosys/pkg/git"
	"github.com/arthur-debert/autosys/pkg/service"
)

// FakeGit is an in-memory git.Client. SubtreeAdd materializes Source under
// the prefix on the real filesystem, the way a fetch would.
type FakeGit struct {
	t   *testing.T
	mu  sync.Mutex
	Dir string

	Repository bool
	Top        string
	Ver        string
	Remotes    map[string]string
	Commits    []string
	Clean      bool
	Source     FileTree

	// Errors injects a failure for the named method (e.g. "SubtreeAdd")
	Errors map[string]error
	Calls  []string
}

var _ git.Client = (*FakeGit)(nil)

// NewFakeGit returns a clean repository at dir with one commit
func NewFakeGit(t *testing.T, dir string) *FakeGit {
	return &FakeGit{
		t:          t,
		Dir:        dir,
		Repository: true,
		Top:        dir,
		Ver:        "2.43.0",
		Remotes:    map[string]string{},
		Commits:    []string{"Initial commit"},
		Clean:      true,
		Source:     ComponentTree(),
		Errors:     map[string]error{},
	}
}

func (g *FakeGit) record(call string, args ...string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Calls = append(g.Calls, strings.TrimSpace(call+" "+strings.Join(args, " ")))
	return g.Errors[call]
}

// Called reports whether method was invoked at least once
func (g *FakeGit) Called(method string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, c := range g.Calls {
		if c == method || strings.HasPrefix(c, method+" ") {
			return true
		}
	}
	return false
}

func (g *FakeGit) IsRepository(ctx context.Context) bool {
	_ = g.record("IsRepository")
	return g.Repository
}

func (g *FakeGit) TopLevel(ctx context.Context) (string, error) {
	if err := g.record("TopLevel"); err != nil {
		return "", err
	}
	return g.Top, nil
}

func (g *FakeGit) Version(ctx context.Context) (string, error) {
	if err := g.record("Version"); err != nil {
		return "", err
	}
	return g.Ver, nil
}

func (g *FakeGit) HasRemote(ctx context.Context, name string) (bool, error) {
	if err := g.record("HasRemote", name); err != nil {
		return false, err
	}
	_, ok := g.Remotes[name]
	return ok, nil
}

func (g *FakeGit) AddRemote(ctx context.Context, name, url string) error {
	if err := g.record("AddRemote", name, url); err != nil {
		return err
	}
	if _, ok := g.Remotes[name]; ok {
		return fmt.Errorf("remote %s already exists", name)
	}
	g.Remotes[name] = url
	return nil
}

func (g *FakeGit) RemoveRemote(ctx context.Context, name string) error {
	if err := g.record("RemoveRemote", name); err != nil {
		return err
	}
	if _, ok := g.Remotes[name]; !ok {
		return fmt.Errorf("no such remote %s", name)
	}
	delete(g.Remotes, name)
	return nil
}

func (g *FakeGit) HasCommits(ctx context.Context) (bool, error) {
	if err := g.record("HasCommits"); err != nil {
		return false, err
	}
	return len(g.Commits) > 0, nil
}

func (g *FakeGit) IsClean(ctx context.Context) (bool, error) {
	if err := g.record("IsClean"); err != nil {
		return false, err
	}
	return g.Clean, nil
}

func (g *FakeGit) CommitFile(ctx context.Context, path, message string) error {
	if err := g.record("CommitFile", path, message); err != nil {
		return err
	}
	g.Commits = append(g.Commits, message)
	return nil
}

func (g *FakeGit) SubtreeAdd(ctx context.Context, prefix, remote, branch string) error {
	if err := g.record("SubtreeAdd", prefix, remote, branch); err != nil {
		return err
	}
	if _, ok := g.Remotes[remote]; !ok {
		return fmt.Errorf("'%s' does not appear to be a git repository", remote)
	}
	root := filepath.Join(g.Dir, prefix)
	if _, err := os.Stat(root); err == nil {
		return fmt.Errorf("prefix '%s' already exists", prefix)
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return err
	}
	CreateFileTree(g.t, root, g.Source)
	g.Commits = append(g.Commits, "Squashed '"+prefix+"/' content")
	return nil
}

// FakeRunner is a scripted execx.Runner. Handlers are matched on the command
// name, then on the full command line.
type FakeRunner struct {
	mu       sync.Mutex
	Handlers map[string]func(execx.Command) (execx.Result, error)
	Commands []execx.Command
}

var _ execx.Runner = (*FakeRunner)(nil)

func NewFakeRunner() *FakeRunner {
	return &FakeRunner{Handlers: map[string]func(execx.Command) (execx.Result, error){}}
}

// On registers a handler for commands named (or rendered as) key
func (r *FakeRunner) On(key string, fn func(execx.Command) (execx.Result, error)) {
	r.Handlers[key] = fn
}

// Fail makes commands matching key exit non-zero
func (r *FakeRunner) Fail(key, stderr string) {
	r.On(key, func(c execx.Command) (execx.Result, error) {
		return execx.Result{Stderr: stderr, ExitCode: 1}, fmt.Errorf("%s failed: exit status 1: %s", c.String(), stderr)
	})
}

func (r *FakeRunner) Run(ctx context.Context, c execx.Command) (execx.Result, error) {
	r.mu.Lock()
	r.Commands = append(r.Commands, c)
	fn, ok := r.Handlers[c.String()]
	if !ok {
		fn, ok = r.Handlers[c.Name]
	}
	r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return execx.Result{ExitCode: -1}, err
	}
	if ok {
		return fn(c)
	}
	return execx.Result{}, nil
}

// Ran reports whether a command with the given name was executed
func (r *FakeRunner) Ran(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.Commands {
		if c.Name == name {
			return true
		}
	}
	return false
}

// FakeService is a scripted service.Controller
type FakeService struct {
	mu       sync.Mutex
	NextPID  int
	Running  map[int]string
	Stopped  []int
	StartErr error
	Probes   int

	// Ready makes the probe answer once a process has been started
	Ready bool
	// AlreadyRunning makes the probe answer before anything is started
	AlreadyRunning bool
}

var _ service.Controller = (*FakeService)(nil)

func NewFakeService() *FakeService {
	return &FakeService{NextPID: 4242, Running: map[int]string{}, Ready: true}
}

func (s *FakeService) Start(ctx context.Context, dir string, command []string, port int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// the real controller opens its log before launching the command
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		if f, err := os.OpenFile(filepath.Join(dir, service.LogFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err == nil {
			_ = f.Close()
		}
	}
	if s.StartErr != nil {
		return 0, s.StartErr
	}
	pid := s.NextPID
	s.NextPID++
	s.Running[pid] = dir
	return pid, nil
}

func (s *FakeService) Stop(pid int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Running[pid]; !ok {
		return nil
	}
	delete(s.Running, pid)
	s.Stopped = append(s.Stopped, pid)
	return nil
}

func (s *FakeService) Probe(ctx context.Context, url string, attempts int, interval time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Probes++
	if s.AlreadyRunning || (s.Ready && len(s.Running) > 0) {
		return nil
	}
	return fmt.Errorf("service at %s not ready after %d attempts", url, attempts)
}
