package model

import (
	"fmt"
	"strings"
)

// DepsGroup selects which optional-dependency extras of the project are
// installed into the virtual environment. It maps directly to the extras
// selector in `pip install -e ".[<group>]"`.
type DepsGroup string

const (
	// DepsDev installs the development extras (linters, test runners).
	// This is the default group.
	DepsDev DepsGroup = "dev"

	// DepsIntegration installs the extras needed for integration tests.
	DepsIntegration DepsGroup = "integration"

	// DepsFull installs every optional extra the project declares.
	DepsFull DepsGroup = "full"
)

// DefaultDepsGroup is used when --deps is omitted.
const DefaultDepsGroup = DepsDev

// DepsGroups lists the valid groups in the order they are shown in help output.
var DepsGroups = []DepsGroup{DepsDev, DepsIntegration, DepsFull}

// String returns the string representation of DepsGroup.
// It also satisfies the pflag.Value interface together with Set and Type.
func (g DepsGroup) String() string {
	if g == "" {
		return string(DefaultDepsGroup)
	}
	return string(g)
}

// Set parses and stores a group name. It is called by pflag while the
// command line is parsed, so an invalid --deps value is rejected before
// any other step of the run executes.
func (g *DepsGroup) Set(s string) error {
	parsed, err := ParseDepsGroup(s)
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// Type returns the type name shown in cobra's usage output.
func (g *DepsGroup) Type() string {
	return "group"
}

// IsValid checks whether the DepsGroup value is one of the predefined groups.
func (g DepsGroup) IsValid() bool {
	switch g {
	case DepsDev, DepsIntegration, DepsFull:
		return true
	default:
		return false
	}
}

// Extras returns the pip extras selector for this group, e.g. ".[dev]".
func (g DepsGroup) Extras() string {
	return fmt.Sprintf(".[%s]", string(g))
}

// ParseDepsGroup converts a string to a DepsGroup.
// Matching is exact and case-sensitive.
func ParseDepsGroup(s string) (DepsGroup, error) {
	group := DepsGroup(s)
	if !group.IsValid() {
		return "", fmt.Errorf("invalid dependency group: %q (valid: %s)", s, JoinDepsGroups("|"))
	}
	return group, nil
}

// JoinDepsGroups renders the valid group names joined by sep.
func JoinDepsGroups(sep string) string {
	names := make([]string, len(DepsGroups))
	for i, g := range DepsGroups {
		names[i] = string(g)
	}
	return strings.Join(names, sep)
}

// BootstrapResult summarizes a completed bootstrap run. It is printed as
// the final output of the CLI in text or JSON form.
type BootstrapResult struct {
	// ProjectDir is the absolute path of the resolved project root.
	ProjectDir string `json:"projectDir"`

	// VenvPath is the absolute path of the created virtual environment.
	VenvPath string `json:"venvPath"`

	// DepsGroup is the dependency group that was installed.
	DepsGroup DepsGroup `json:"depsGroup"`

	// ReadmeCreated reports whether the run scaffolded a new README.md.
	ReadmeCreated bool `json:"readmeCreated"`

	// ActivateCommand is the shell command that activates the environment.
	ActivateCommand string `json:"activateCommand"`
}

// ExitCode defines the CLI exit codes. Each fatal error kind has its own
// code so that scripts and CI systems can tell failures apart.
type ExitCode int

const (
	// ExitSuccess indicates the bootstrap completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitUsage indicates an invalid flag or argument.
	ExitUsage ExitCode = 2

	// ExitManifestNotFound indicates pyproject.toml is missing from the
	// resolved project directory.
	ExitManifestNotFound ExitCode = 3

	// ExitConfigError indicates missing or malformed configuration, such as
	// an unset PYTHON_VENV_PATH or an unparsable config file.
	ExitConfigError ExitCode = 4

	// ExitCommandFailed indicates an external command exited non-zero.
	ExitCommandFailed ExitCode = 5

	// ExitCommandTimeout indicates an external command exceeded its timeout.
	ExitCommandTimeout ExitCode = 6
)

// CLIError is a bootstrap failure annotated with the exit code the
// process should end with. Steps such as Locate, Path and Bootstrap return
// one so that, for example, a missing pyproject.toml (3) stays
// distinguishable from a failed pip install (5).
type CLIError struct {
	Code ExitCode

	// Message names the step that failed, e.g. "pip install failed".
	Message string

	// Err is the cause: a *runner.CommandError, a *runner.TimeoutError,
	// a filesystem error, or nil when Message says it all.
	Err error
}

// Error renders "message: cause", or just the message without a cause.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError reports a failed precondition, such as an unset
// PYTHON_VENV_PATH, that has no underlying error.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError attaches an exit code to err. errors.As still reaches the
// runner error types through the result.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
