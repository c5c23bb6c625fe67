package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/shinji-kodama/venv-bootstrap/internal/logging"
)

// DefaultTimeout bounds a single command when no timeout is configured.
const DefaultTimeout = 300 * time.Second

// waitDelay is how long Wait keeps collecting output after the process
// has been killed. Grandchildren that inherited stdout/stderr would
// otherwise keep the pipes open and block Wait indefinitely.
const waitDelay = 2 * time.Second

// Result is the outcome of a successful command.
type Result struct {
	// Command is the full argument vector, including the program name.
	Command []string

	// ExitCode is always 0 for a returned Result.
	ExitCode int

	// Stdout and Stderr hold the captured output streams.
	Stdout string
	Stderr string

	// Duration is the wall-clock time the command took.
	Duration time.Duration
}

// CommandError reports a command that could not be started or exited
// with a non-zero status.
type CommandError struct {
	// Command is the full argument vector, including the program name.
	Command []string

	// ExitCode is the status reported by the process. It is -1 both when
	// the process never started and when it was terminated by a signal;
	// Started tells the two apart.
	ExitCode int

	// Started is true when the process ran, regardless of how it ended.
	Started bool

	// Stdout and Stderr hold whatever the process wrote before exiting.
	Stdout string
	Stderr string

	// Err is the underlying os/exec error.
	Err error
}

// Error includes the trimmed stderr since that is where both python and
// pip put their diagnostics.
func (e *CommandError) Error() string {
	var msg string
	switch {
	case e.ExitCode >= 0:
		msg = fmt.Sprintf("command %s exited with code %d", FormatCommand(e.Command), e.ExitCode)
	case e.Started:
		msg = fmt.Sprintf("command %s did not exit cleanly: %v", FormatCommand(e.Command), e.Err)
	default:
		msg = fmt.Sprintf("command %s could not be started: %v", FormatCommand(e.Command), e.Err)
	}
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

// Unwrap returns the underlying os/exec error.
func (e *CommandError) Unwrap() error {
	return e.Err
}

// TimeoutError reports a command that was killed after exceeding its
// timeout. Output produced before the kill is deliberately not kept.
type TimeoutError struct {
	Command []string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("command %s timed out after %s", FormatCommand(e.Command), e.Timeout)
}

// Unwrap lets callers match timeouts with errors.Is(err, context.DeadlineExceeded).
func (e *TimeoutError) Unwrap() error {
	return context.DeadlineExceeded
}

// Runner executes commands with a per-command timeout and logs their
// output. The zero value is usable and applies DefaultTimeout.
type Runner struct {
	// Timeout bounds each Run call. Zero or negative means DefaultTimeout.
	Timeout time.Duration

	// Logger receives command output. Nil discards.
	Logger *slog.Logger

	// Env, when non-nil, replaces the environment of the child process.
	// Nil inherits the current process environment.
	Env []string
}

// New creates a Runner with the given timeout and logger.
func New(timeout time.Duration, logger *slog.Logger) *Runner {
	return &Runner{Timeout: timeout, Logger: logger}
}

func (r *Runner) timeout() time.Duration {
	if r.Timeout <= 0 {
		return DefaultTimeout
	}
	return r.Timeout
}

// Run executes name with args in dir (the current directory when dir is
// empty) and waits for it to finish.
//
// Logging follows the command outcome:
//   - stderr is logged whenever it is non-empty: at error level when the
//     command failed, at warn level when it succeeded
//   - stdout is logged at info level only when the command succeeded
//
// A zero exit status with stderr output is still a success. pip routinely
// writes deprecation and cache warnings to stderr.
func (r *Runner) Run(ctx context.Context, dir, name string, args ...string) (*Result, error) {
	log := logging.OrDiscard(r.Logger)
	argv := append([]string{name}, args...)
	timeout := r.timeout()

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// #nosec G204 -- argv is assembled by the bootstrapper, not passed to a shell
	cmd := exec.CommandContext(runCtx, name, args...)
	cmd.Dir = dir
	cmd.WaitDelay = waitDelay
	if r.Env != nil {
		cmd.Env = r.Env
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Debug("running command", "command", FormatCommand(argv), "dir", dir, "timeout", timeout)
	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if err != nil {
		// The parent context takes precedence: if the caller cancelled, the
		// deadline of runCtx is irrelevant.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("command %s: %w", FormatCommand(argv), ctxErr)
		}
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			log.Error("command timed out", "command", FormatCommand(argv), "timeout", timeout)
			return nil, &TimeoutError{Command: argv, Timeout: timeout}
		}

		// ProcessState is set whenever the process was started and waited
		// for, so it is the source of truth for the exit status.
		state := cmd.ProcessState
		if state != nil && state.Success() && errors.Is(err, exec.ErrWaitDelay) {
			// The command itself exited 0; a background child it spawned
			// kept stdout/stderr open past waitDelay. Output written by the
			// command is already in the buffers.
			log.Warn("command exited but its output pipes stayed open",
				"command", FormatCommand(argv), "wait_delay", waitDelay)
		} else {
			exitCode := -1
			if state != nil {
				exitCode = state.ExitCode()
			}
			if stderr.Len() > 0 {
				log.Error("command error", "command", FormatCommand(argv), "stderr", strings.TrimSpace(stderr.String()))
			}
			return nil, &CommandError{
				Command:  argv,
				ExitCode: exitCode,
				Started:  state != nil,
				Stdout:   stdout.String(),
				Stderr:   stderr.String(),
				Err:      err,
			}
		}
	}

	if stderr.Len() > 0 {
		log.Warn("command wrote to stderr", "command", FormatCommand(argv), "stderr", strings.TrimSpace(stderr.String()))
	} else if stdout.Len() > 0 {
		log.Info("command output", "command", FormatCommand(argv), "stdout", strings.TrimSpace(stdout.String()))
	}
	log.Debug("command finished", "command", FormatCommand(argv), "duration", elapsed)

	return &Result{
		Command:  argv,
		ExitCode: 0,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: elapsed,
	}, nil
}

// FormatCommand renders an argument vector for logs and error messages.
// Arguments containing whitespace or quotes are Go-quoted so the output
// is unambiguous; it is not meant to be pasted into a shell.
func FormatCommand(argv []string) string {
	parts := make([]string, len(argv))
	for i, arg := range argv {
		if arg == "" || strings.ContainsAny(arg, " \t\n\"'") {
			parts[i] = strconv.Quote(arg)
		} else {
			parts[i] = arg
		}
	}
	return strings.Join(parts, " ")
}
