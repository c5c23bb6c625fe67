package venv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"

	"github.com/shinji-kodama/venv-bootstrap/internal/config"
	"github.com/shinji-kodama/venv-bootstrap/internal/logging"
	"github.com/shinji-kodama/venv-bootstrap/internal/model"
	"github.com/shinji-kodama/venv-bootstrap/internal/runner"
)

// CommandRunner runs one external command to completion.
// *runner.Runner is the production implementation.
type CommandRunner interface {
	Run(ctx context.Context, dir, name string, args ...string) (*runner.Result, error)
}

// Config is the explicit input of a Bootstrapper.
type Config struct {
	// BaseDir is the directory that holds per-project environments. It is
	// required; an empty value fails the bootstrap before any command runs.
	BaseDir string

	// Python is the interpreter that creates the environment.
	// Empty means config.DefaultPython.
	Python string

	// PipArgs are appended to the pip install command.
	PipArgs []string
}

// Bootstrapper creates and populates virtual environments. It holds no
// per-project state, so one value can bootstrap several projects in turn.
type Bootstrapper struct {
	// cfg has Python defaulted; BaseDir is checked on every Bootstrap call.
	cfg Config

	// runner executes "python -m venv" and then pip. Tests substitute a
	// recorder that never spawns a process.
	runner CommandRunner

	log *slog.Logger
}

// NewBootstrapper creates a Bootstrapper. A nil logger discards output.
func NewBootstrapper(cfg Config, r CommandRunner, logger *slog.Logger) *Bootstrapper {
	if cfg.Python == "" {
		cfg.Python = config.DefaultPython
	}
	return &Bootstrapper{cfg: cfg, runner: r, log: logging.OrDiscard(logger)}
}

// Path computes the environment path for projectDir: the project's
// directory name joined onto baseDir. baseDir is used as given, so callers
// pass an absolute one (config.FromEnv resolves a relative
// PYTHON_VENV_PATH against the invocation directory).
//
// Returns a model.CLIError with ExitConfigError when baseDir is empty.
func Path(baseDir, projectDir string) (string, error) {
	if baseDir == "" {
		return "", model.NewCLIError(
			model.ExitConfigError,
			fmt.Sprintf("no virtual env path available: %s is not set", config.VenvPathEnv),
		)
	}
	return filepath.Join(baseDir, filepath.Base(filepath.Clean(projectDir))), nil
}

// binDir returns the directory holding the environment's executables.
func binDir(venvPath string) string {
	if runtime.GOOS == "windows" {
		return filepath.Join(venvPath, "Scripts")
	}
	return filepath.Join(venvPath, "bin")
}

// PipPath returns the pip executable inside the environment.
func PipPath(venvPath string) string {
	return filepath.Join(binDir(venvPath), "pip")
}

// ActivateCommand returns the shell command that activates the environment.
func ActivateCommand(venvPath string) string {
	return "source " + filepath.Join(binDir(venvPath), "activate")
}

// Bootstrap recreates the environment for projectDir and installs the
// given dependency group into it in editable mode.
//
// Commands run with projectDir as working directory so that the editable
// install resolves "." to the project. A failing command is returned as a
// model.CLIError wrapping the runner error; the remaining steps are
// skipped.
func (b *Bootstrapper) Bootstrap(ctx context.Context, projectDir string, group model.DepsGroup) (*model.BootstrapResult, error) {
	// Flag parsing already rejects bad groups; this guards library callers.
	if !group.IsValid() {
		return nil, model.NewCLIError(model.ExitUsage, fmt.Sprintf("invalid dependency group %q", string(group)))
	}

	venvPath, err := Path(b.cfg.BaseDir, projectDir)
	if err != nil {
		return nil, err
	}

	// --clear wipes an existing environment at venvPath, so every run
	// starts from the interpreter's bare site-packages.
	b.log.Info("creating virtual environment", "path", venvPath, "python", b.cfg.Python)
	if _, err := b.runner.Run(ctx, projectDir, b.cfg.Python, "-m", "venv", "--clear", venvPath); err != nil {
		return nil, commandFailure("failed to create virtual environment", err)
	}

	// pip comes from inside the new environment; the system pip would
	// install into the wrong site-packages. Extras resolves to ".[group]".
	b.log.Info("installing dependencies", "group", string(group))
	pipArgs := append([]string{"install", "-e", group.Extras()}, b.cfg.PipArgs...)
	if _, err := b.runner.Run(ctx, projectDir, PipPath(venvPath), pipArgs...); err != nil {
		return nil, commandFailure("failed to install dependencies", err)
	}

	activate := ActivateCommand(venvPath)
	b.log.Info("virtual environment created", "path", venvPath)
	b.log.Info("to activate the virtual environment, run: " + activate)

	return &model.BootstrapResult{
		ProjectDir:      projectDir,
		VenvPath:        venvPath,
		DepsGroup:       group,
		ActivateCommand: activate,
	}, nil
}

// commandFailure maps runner errors onto exit codes. Cancellation and
// unknown errors fall back to ExitGeneralError.
func commandFailure(message string, err error) error {
	var timeoutErr *runner.TimeoutError
	if errors.As(err, &timeoutErr) {
		return model.WrapCLIError(model.ExitCommandTimeout, message, err)
	}
	var cmdErr *runner.CommandError
	if errors.As(err, &cmdErr) {
		return model.WrapCLIError(model.ExitCommandFailed, message, err)
	}
	return model.WrapCLIError(model.ExitGeneralError, message, err)
}
