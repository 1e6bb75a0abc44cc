// Package execenv runs child processes with credential material injected into
// their environment, inherited standard streams, and signals forwarded.
package execenv

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	cverrors "github.com/systmms/credvault/internal/errors"
	"github.com/systmms/credvault/internal/logging"
)

// Executor handles running commands with ephemeral environment variables.
type Executor struct {
	logger *logging.Logger
}

// New creates a new executor
func New(logger *logging.Logger) *Executor {
	return &Executor{
		logger: logger,
	}
}

// Options configures command execution
type Options struct {
	Command     []string          // Command and arguments to run
	Environment map[string]string // Variables layered over the current environment
	WorkingDir  string            // Working directory for the command
}

// Run executes the command and returns its exit status. The child inherits
// stdin/stdout/stderr; SIGINT, SIGTERM and SIGHUP delivered to credvault are
// forwarded to the child instead of killing this process, so deferred cleanup
// (the session restore in particular) always gets to run. A signal-terminated
// child reports exit status 128+signal, shell-style.
func (e *Executor) Run(ctx context.Context, opts Options) (int, error) {
	if len(opts.Command) == 0 {
		return 0, cverrors.UserError{
			Message:    "no command specified",
			Suggestion: "Provide a command after -- (e.g., credvault exec -- claude)",
		}
	}

	cmdName := opts.Command[0]
	if _, err := exec.LookPath(cmdName); err != nil {
		return 0, cverrors.UserError{
			Message:    fmt.Sprintf("command '%s' not found", cmdName),
			Suggestion: fmt.Sprintf("Make sure '%s' is installed and in your PATH", cmdName),
			Err:        err,
		}
	}

	cmd := exec.CommandContext(ctx, cmdName, opts.Command[1:]...)
	cmd.Env = buildEnvironment(opts.Environment)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if opts.WorkingDir != "" {
		cmd.Dir = opts.WorkingDir
	}

	e.logger.Debug("executing: %s", strings.Join(opts.Command, " "))
	e.logger.Debug("injected variables: %s", strings.Join(sortedKeys(opts.Environment), ", "))

	if err := cmd.Start(); err != nil {
		return 0, cverrors.UserError{
			Message: fmt.Sprintf("failed to start '%s'", cmdName),
			Err:     err,
		}
	}

	// Forward termination signals to the child for the duration of the run.
	sigCh := make(chan os.Signal, 4)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case sig := <-sigCh:
				_ = cmd.Process.Signal(sig)
			case <-done:
				return
			}
		}
	}()

	err := cmd.Wait()
	close(done)
	signal.Stop(sigCh)

	if err == nil {
		return 0, nil
	}

	if exitErr, ok := err.(*exec.ExitError); ok {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
			return 128 + int(status.Signal()), nil
		}
		return exitErr.ExitCode(), nil
	}

	return 0, cverrors.UserError{
		Message: fmt.Sprintf("command '%s' failed", strings.Join(opts.Command, " ")),
		Err:     err,
	}
}

// buildEnvironment layers the injected variables over the current environment,
// sorted for consistent ordering.
func buildEnvironment(extra map[string]string) []string {
	envMap := make(map[string]string)
	for _, kv := range os.Environ() {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) == 2 {
			envMap[parts[0]] = parts[1]
		}
	}
	for key, value := range extra {
		envMap[key] = value
	}

	result := make([]string, 0, len(envMap))
	for key, value := range envMap {
		result = append(result, fmt.Sprintf("%s=%s", key, value))
	}
	sort.Strings(result)
	return result
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MaskValue masks a secret value for display.
func MaskValue(value string) string {
	if len(value) == 0 {
		return "(empty)"
	}
	if len(value) <= 3 {
		return strings.Repeat("*", len(value))
	}
	if len(value) <= 8 {
		return value[:1] + strings.Repeat("*", len(value)-2) + value[len(value)-1:]
	}
	return value[:3] + strings.Repeat("*", 8) + value[len(value)-2:]
}
