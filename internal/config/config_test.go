package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/venv-bootstrap/internal/model"
	"github.com/shinji-kodama/venv-bootstrap/internal/runner"
)

// writeTempFile writes content to name inside a fresh temp dir and returns
// the directory and full file path.
func writeTempFile(t *testing.T, name, content string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return dir, path
}

func requireConfigError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr), "expected CLIError, got %T", err)
	assert.Equal(t, model.ExitConfigError, cliErr.Code)
}

// TestFromEnv verifies that the base directory comes from PYTHON_VENV_PATH
// and everything else from defaults.
func TestFromEnv(t *testing.T) {
	env := map[string]string{VenvPathEnv: " /tmp/envs "}
	s := FromEnv(func(k string) string { return env[k] }, "/home/me/src/myproj")

	assert.Equal(t, "/tmp/envs", s.VenvBase)
	assert.Equal(t, DefaultPython, s.Python)
	assert.Equal(t, runner.DefaultTimeout, s.Timeout)
	assert.Empty(t, s.PipArgs)
}

// TestFromEnv_Unset verifies that an unset variable yields an empty base
// rather than a default.
func TestFromEnv_Unset(t *testing.T) {
	s := FromEnv(func(string) string { return "" }, "")
	assert.Empty(t, s.VenvBase)
}

// TestFromEnv_RelativeBase verifies that a relative base directory is
// anchored at the working directory, not at the project directory.
func TestFromEnv_RelativeBase(t *testing.T) {
	cwd := filepath.FromSlash("/home/me/src/myproj/scripts")
	s := FromEnv(func(string) string { return "../.venvs" }, cwd)

	assert.Equal(t, filepath.FromSlash("/home/me/src/myproj/.venvs"), s.VenvBase)
	assert.True(t, filepath.IsAbs(s.VenvBase))
}

// TestFromEnv_RelativeBaseWithoutCwd verifies the process working directory
// is used when no cwd is supplied.
func TestFromEnv_RelativeBaseWithoutCwd(t *testing.T) {
	s := FromEnv(func(string) string { return "envs" }, "")

	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, "envs"), s.VenvBase)
}

// TestLoadFile_YAML verifies decoding of a complete YAML config.
func TestLoadFile_YAML(t *testing.T) {
	_, path := writeTempFile(t, ".venv-bootstrap.yaml", `
python: python3.12
timeout: 90s
pipArgs:
  - --index-url
  - https://mirror.example/simple
`)

	f, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "python3.12", f.Python)
	assert.Equal(t, "90s", f.Timeout)
	assert.Equal(t, []string{"--index-url", "https://mirror.example/simple"}, f.PipArgs)
}

// TestLoadFile_JSONC verifies that comments and trailing commas are
// accepted in JSON config files.
func TestLoadFile_JSONC(t *testing.T) {
	_, path := writeTempFile(t, ".venv-bootstrap.json", `{
  // interpreter pinned for this project
  "python": "python3.11",
  /* generous timeout for the full extras */
  "timeout": "10m",
  "pipArgs": ["--no-cache-dir",],
}`)

	f, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "python3.11", f.Python)
	assert.Equal(t, "10m", f.Timeout)
	assert.Equal(t, []string{"--no-cache-dir"}, f.PipArgs)
}

// TestLoadFile_Empty verifies that empty files are valid in both formats.
func TestLoadFile_Empty(t *testing.T) {
	for _, name := range []string{".venv-bootstrap.yaml", ".venv-bootstrap.json"} {
		t.Run(name, func(t *testing.T) {
			_, path := writeTempFile(t, name, "")
			f, err := LoadFile(path)
			require.NoError(t, err)
			assert.Equal(t, &File{}, f)
		})
	}
}

// TestLoadFile_Errors verifies that malformed or unknown content is a
// configuration error.
func TestLoadFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"unknown yaml key", ".venv-bootstrap.yaml", "pip_args: [-q]\n"},
		{"malformed yaml", ".venv-bootstrap.yaml", "python: [unterminated\n"},
		{"unknown json key", ".venv-bootstrap.json", `{"interpreter": "python3"}`},
		{"malformed json", ".venv-bootstrap.json", `{"python": }`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, path := writeTempFile(t, tt.file, tt.content)
			_, err := LoadFile(path)
			requireConfigError(t, err)
		})
	}
}

// TestLoadFile_Missing verifies that an explicit path that does not exist
// is a configuration error.
func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	requireConfigError(t, err)
}

// TestFindProjectFile verifies probing order: .yaml wins over .json.
func TestFindProjectFile(t *testing.T) {
	dir := t.TempDir()
	assert.Empty(t, FindProjectFile(dir))

	jsonPath := filepath.Join(dir, ".venv-bootstrap.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte("{}"), 0o644))
	assert.Equal(t, jsonPath, FindProjectFile(dir))

	yamlPath := filepath.Join(dir, ".venv-bootstrap.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(""), 0o644))
	assert.Equal(t, yamlPath, FindProjectFile(dir))
}

// TestLoad_NoFile verifies that a project without a config file keeps the
// base settings untouched.
func TestLoad_NoFile(t *testing.T) {
	base := FromEnv(func(string) string { return "/tmp/envs" }, "")

	s, err := Load(base, t.TempDir(), "")
	require.NoError(t, err)
	assert.Equal(t, base, s)
}

// TestLoad_ProjectFile verifies that a discovered file overrides defaults
// but never the environment-provided base directory.
func TestLoad_ProjectFile(t *testing.T) {
	dir, path := writeTempFile(t, ".venv-bootstrap.yml", "python: pypy3\ntimeout: 2m\n")
	base := FromEnv(func(string) string { return "/tmp/envs" }, "")

	s, err := Load(base, dir, "")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/envs", s.VenvBase)
	assert.Equal(t, "pypy3", s.Python)
	assert.Equal(t, 2*time.Minute, s.Timeout)
	assert.Equal(t, path, s.Source)
}

// TestLoad_ExplicitPath verifies that an explicit --config path is used
// even when the project directory has its own file.
func TestLoad_ExplicitPath(t *testing.T) {
	dir, _ := writeTempFile(t, ".venv-bootstrap.yaml", "python: from-project\n")
	_, explicit := writeTempFile(t, "custom.yaml", "python: from-explicit\n")

	s, err := Load(FromEnv(func(string) string { return "" }, ""), dir, explicit)
	require.NoError(t, err)
	assert.Equal(t, "from-explicit", s.Python)
}

// TestLoad_InvalidTimeout verifies that a bad duration is reported as a
// configuration error.
func TestLoad_InvalidTimeout(t *testing.T) {
	for _, v := range []string{"soon", "0s", "-5m"} {
		t.Run(v, func(t *testing.T) {
			dir, _ := writeTempFile(t, ".venv-bootstrap.yaml", "timeout: "+v+"\n")
			_, err := Load(FromEnv(func(string) string { return "" }, ""), dir, "")
			requireConfigError(t, err)
		})
	}
}

// TestParseTimeout checks accepted and rejected durations.
func TestParseTimeout(t *testing.T) {
	d, err := ParseTimeout("300s")
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, d)

	_, err = ParseTimeout("0")
	assert.Error(t, err)
}
