// Package service manages the optional auxiliary HTTP service shipped with the
// component tree: background start, stop by PID and the readiness probe.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"github.com/arthur-debert/autosys/pkg/execx"
	"github.com/arthur-debert/autosys/pkg/logging"
	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"
)

// LogFileName is written inside the service directory
const LogFileName = "service.log"

// Controller starts, stops and probes the auxiliary service
type Controller interface {
	Start(ctx context.Context, dir string, command []string, port int) (int, error)
	Stop(pid int) error
	Probe(ctx context.Context, url string, attempts int, interval time.Duration) error
}

// ProcessController runs the service as a detached child process
type ProcessController struct {
	client *http.Client
	logger zerolog.Logger
}

var _ Controller = (*ProcessController)(nil)

func NewProcessController() *ProcessController {
	return &ProcessController{
		client: &http.Client{Timeout: 2 * time.Second},
		logger: logging.GetLogger("service"),
	}
}

// Start launches command in dir with PORT set, detached from the installer's
// process group, and returns its PID. Output goes to dir/service.log.
func (p *ProcessController) Start(ctx context.Context, dir string, command []string, port int) (int, error) {
	if len(command) == 0 {
		return 0, errors.New("service start command is empty")
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	logFile, err := os.OpenFile(filepath.Join(dir, LogFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return 0, fmt.Errorf("open service log: %w", err)
	}
	defer logFile.Close()

	// Not CommandContext: the service must outlive the installer.
	cmd := exec.Command(command[0], command[1:]...)
	cmd.Dir = dir
	cmd.Env = execx.MergeEnv(os.Environ(), map[string]string{"PORT": fmt.Sprint(port)})
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	logging.LogCommand(command[0], command[1:])
	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("start service: %w", err)
	}
	pid := cmd.Process.Pid
	if err := cmd.Process.Release(); err != nil {
		p.logger.Debug().Err(err).Int("pid", pid).Msg("Failed to release service process")
	}

	p.logger.Info().Int("pid", pid).Str("dir", dir).Int("port", port).Msg("Service started")
	return pid, nil
}

// Stop sends SIGTERM to the process group led by pid, or to pid alone when
// it no longer leads a group. A process that is already gone is not an error.
func (p *ProcessController) Stop(pid int) error {
	if pid <= 0 {
		return fmt.Errorf("invalid pid %d", pid)
	}
	err := syscall.Kill(-pid, syscall.SIGTERM)
	if errors.Is(err, syscall.ESRCH) {
		err = syscall.Kill(pid, syscall.SIGTERM)
	}
	if errors.Is(err, syscall.ESRCH) {
		p.logger.Debug().Int("pid", pid).Msg("Service process already gone")
		return nil
	}
	if err != nil {
		return fmt.Errorf("signal pid %d: %w", pid, err)
	}
	p.logger.Info().Int("pid", pid).Msg("Service stopped")
	return nil
}

// Probe polls url until it answers 2xx, giving up after attempts tries spaced by interval.
func (p *ProcessController) Probe(ctx context.Context, url string, attempts int, interval time.Duration) error {
	if attempts < 1 {
		attempts = 1
	}
	_, err := backoff.Retry(ctx, func() (int, error) {
		return p.probeOnce(ctx, url)
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(interval)),
		backoff.WithMaxTries(uint(attempts)),
		backoff.WithNotify(func(err error, next time.Duration) {
			p.logger.Debug().Err(err).Dur("next", next).Str("url", url).Msg("Service not ready")
		}),
	)
	if err != nil {
		return fmt.Errorf("service at %s not ready after %d attempts: %w", url, attempts, err)
	}
	return nil
}

func (p *ProcessController) probeOnce(ctx context.Context, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, backoff.Permanent(err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Errorf("health check returned %s", resp.Status)
	}
	return resp.StatusCode, nil
}

// HealthURL builds the loopback URL probed for readiness
func HealthURL(port int, path string) string {
	if path == "" || path[0] != '/' {
		path = "/" + path
	}
	return fmt.Sprintf("http://127.0.0.1:%d%s", port, path)
}
