// Package cli implements the cobra-based command line of venv-bootstrap.
//
// The tool has a single root command: running it performs the whole
// bootstrap (see bootstrap.go). This file defines the root command, its
// flags, and the Execute entry point that maps errors onto exit codes.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/shinji-kodama/venv-bootstrap/internal/config"
	"github.com/shinji-kodama/venv-bootstrap/internal/model"
	"github.com/shinji-kodama/venv-bootstrap/internal/project"
	"github.com/shinji-kodama/venv-bootstrap/internal/runner"
	"github.com/shinji-kodama/venv-bootstrap/internal/venv"
)

// Build information, copied in by cmd/venv-bootstrap from its ldflags and
// shown by --version.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// --deps is validated by DepsGroup.Set during flag parsing.
var _ pflag.Value = (*model.DepsGroup)(nil)

// options holds the flag values of the root command. Zero values are never
// read: every field is registered with a default in newRootCommand, and
// --timeout and --python only override the config file when the user set
// them explicitly (see Flags().Changed in runBootstrap).
type options struct {
	deps       model.DepsGroup // --deps: dependency group to install
	timeout    time.Duration   // --timeout: per-command timeout
	python     string          // --python: interpreter creating the venv
	configPath string          // --config: explicit project config file
	jsonOutput bool            // --json: machine-readable output
	verbose    bool            // --verbose: debug logging
}

// environment is every process-level input and output of a bootstrap run.
// Tests build one with a temporary project tree and a recording runner.
type environment struct {
	// getwd returns the directory the user invoked the tool from.
	getwd func() (string, error)

	// toolDir returns the directory holding the executable. When it equals
	// the working directory, the project is its parent.
	toolDir func() (string, error)

	// getenv is consulted once per run, for PYTHON_VENV_PATH.
	getenv func(string) string

	// newRunner is called after config and flags are merged, so it receives
	// the final per-command timeout.
	newRunner func(timeout time.Duration, logger *slog.Logger) venv.CommandRunner

	// stdout receives only the final summary; logs and errors go to stderr.
	stdout io.Writer
	stderr io.Writer
}

// processEnvironment wires the real process: working directory, executable
// location, environment variables, and os/exec.
func processEnvironment() environment {
	return environment{
		getwd:   os.Getwd,
		toolDir: project.ToolDir,
		getenv:  os.Getenv,
		newRunner: func(timeout time.Duration, logger *slog.Logger) venv.CommandRunner {
			return runner.New(timeout, logger)
		},
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
}

// NewRootCommand creates and configures the root cobra command.
func NewRootCommand() *cobra.Command {
	return newRootCommand(processEnvironment())
}

func newRootCommand(env environment) *cobra.Command {
	opts := &options{deps: model.DefaultDepsGroup}

	rootCmd := &cobra.Command{
		Use:   "venv-bootstrap",
		Short: "Bootstrap a Python virtual environment for a project",
		Long: `venv-bootstrap prepares a Python project for development.

It locates the project (the current directory, or its parent when run from
the directory the tool itself lives in), requires a pyproject.toml there,
creates a README.md if none exists, then recreates the virtual environment
at $` + config.VenvPathEnv + `/<project-name> and installs the project in
editable mode with the selected dependency group.

Examples:
  venv-bootstrap
  venv-bootstrap --deps integration
  venv-bootstrap --deps full --timeout 15m`,

		// The project is found from the working directory, so a stray
		// positional argument (a path, most likely) is a usage error rather
		// than something silently ignored.
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.NoArgs(cmd, args); err != nil {
				return model.WrapCLIError(model.ExitUsage, "invalid usage", err)
			}
			return nil
		},

		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBootstrap(cmd, opts, env)
		},

		// cobra prints nothing on failure; run reports the CLIError in the
		// requested format and adds the --help hint for usage errors only.
		SilenceUsage:  true,
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),
	}

	rootCmd.SetOut(env.stdout)
	rootCmd.SetErr(env.stderr)

	// Flag parse errors carry the usage exit code. That includes an invalid
	// --deps value: DepsGroup.Set rejects it while flags are parsed, so no
	// directory lookup, README write or subprocess happens first.
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return model.WrapCLIError(model.ExitUsage, "invalid usage", err)
	})

	// Local flags configure the bootstrap itself.
	flags := rootCmd.Flags()
	flags.Var(&opts.deps, "deps", "Dependency group to install ("+model.JoinDepsGroups("|")+")")
	flags.DurationVar(&opts.timeout, "timeout", runner.DefaultTimeout, "Timeout for each external command")
	flags.StringVar(&opts.python, "python", config.DefaultPython, "Python interpreter used to create the environment")
	flags.StringVar(&opts.configPath, "config", "", "Config file (default: .venv-bootstrap.{yaml,yml,json} in the project)")

	// --json and --verbose are persistent so run can read --json back from
	// the root command after Execute returns, whatever the parse outcome.
	rootCmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose output")

	return rootCmd
}

// Execute runs the bootstrap and terminates the process with its exit
// code: 0 on success, otherwise the Code of the returned CLIError, or 1 for
// an error that carries none.
func Execute(rootCmd *cobra.Command) {
	os.Exit(int(run(rootCmd, os.Stderr)))
}

// run is Execute without os.Exit. Failures are reported on errOut: a line
// naming the failed step and its cause, or a JSON error object with --json.
// Usage errors in text mode are followed by a pointer to --help.
func run(rootCmd *cobra.Command, errOut io.Writer) model.ExitCode {
	err := rootCmd.Execute()
	if err == nil {
		return model.ExitSuccess
	}

	jsonOutput, _ := rootCmd.PersistentFlags().GetBool("json")

	var cliErr *model.CLIError
	if errors.As(err, &cliErr) {
		printError(errOut, jsonOutput, cliErr.Message, cliErr.Err)
		if cliErr.Code == model.ExitUsage && !jsonOutput {
			fmt.Fprintf(errOut, "Run '%s --help' for usage.\n", rootCmd.Name())
		}
		return cliErr.Code
	}

	printError(errOut, jsonOutput, err.Error(), nil)
	return model.ExitGeneralError
}

// errorReport is the --json form of a failed run. Detail holds the cause,
// typically the failing command line with its exit code and stderr.
type errorReport struct {
	Error struct {
		Message string `json:"message"`
		Detail  string `json:"detail,omitempty"`
	} `json:"error"`
}

// printError writes a failed run to w, which is stderr even with --json:
// stdout carries only the BootstrapResult of a successful run.
func printError(w io.Writer, jsonOutput bool, message string, cause error) {
	if jsonOutput {
		var report errorReport
		report.Error.Message = message
		if cause != nil {
			report.Error.Detail = cause.Error()
		}
		data, _ := json.MarshalIndent(report, "", "  ")
		fmt.Fprintln(w, string(data))
		return
	}

	if cause != nil {
		fmt.Fprintf(w, "Error: %s: %v\n", message, cause)
		return
	}
	fmt.Fprintf(w, "Error: %s\n", message)
}
