// bootstrap.go implements the bootstrap run performed by
// the root command.
//
// Orchestration steps:
//  1. Build the logger and read PYTHON_VENV_PATH (once)
//  2. Locate the project root and require pyproject.toml
//  3. Load the optional project config file and apply flag overrides
//  4. Create README.md if missing
//  5. Recreate the virtual environment and install the dependency group
//  6. Output results (text or JSON)
//
// Any failing step aborts the run. Earlier side effects (the README, a
// partially created environment) are left in place.
package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/venv-bootstrap/internal/config"
	"github.com/shinji-kodama/venv-bootstrap/internal/logging"
	"github.com/shinji-kodama/venv-bootstrap/internal/model"
	"github.com/shinji-kodama/venv-bootstrap/internal/project"
	"github.com/shinji-kodama/venv-bootstrap/internal/venv"
)

func runBootstrap(cmd *cobra.Command, opts *options, env environment) error {
	log := logging.New(env.stderr, opts.verbose)

	cwd, err := env.getwd()
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to get current directory", err)
	}

	// Step 1: the environment is read here and nowhere else. A relative
	// PYTHON_VENV_PATH is anchored at cwd.
	settings := config.FromEnv(env.getenv, cwd)

	// Step 2: resolve the project root.
	toolDir, err := env.toolDir()
	if err != nil {
		// Without the executable's location the tool cannot be "in its own
		// directory", so cwd is used as the project root.
		log.Debug("could not resolve tool directory", "error", err)
		toolDir = ""
	}

	projectDir, err := project.Locate(cwd, toolDir)
	if err != nil {
		return err // Locate already returns CLIError
	}
	log.Debug("project located", "dir", projectDir)

	// Step 3: project config file, then flags on top.
	settings, err = config.Load(settings, projectDir, opts.configPath)
	if err != nil {
		return err
	}
	if settings.Source != "" {
		log.Debug("loaded config file", "path", settings.Source)
	}
	if cmd.Flags().Changed("timeout") {
		if opts.timeout <= 0 {
			return model.NewCLIError(model.ExitUsage, "--timeout must be positive")
		}
		settings.Timeout = opts.timeout
	}
	if cmd.Flags().Changed("python") {
		settings.Python = opts.python
	}

	// Step 4: README scaffolding.
	created, err := project.EnsureReadme(projectDir)
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to create README.md", err)
	}
	if created {
		log.Info("README.md not found, created a basic README.md", "path", filepath.Join(projectDir, project.ReadmeFile))
	} else {
		log.Info("README.md found in the project directory")
	}

	// Step 5: environment bootstrap.
	log.Info("installing with dependency group", "group", string(opts.deps))
	b := venv.NewBootstrapper(venv.Config{
		BaseDir: settings.VenvBase,
		Python:  settings.Python,
		PipArgs: settings.PipArgs,
	}, env.newRunner(settings.Timeout, log), log)

	result, err := b.Bootstrap(cmd.Context(), projectDir, opts.deps)
	if err != nil {
		return err
	}
	result.ReadmeCreated = created

	// Step 6: output.
	return printResult(env.stdout, opts.jsonOutput, result)
}
