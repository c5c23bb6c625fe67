package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/shinji-kodama/venv-bootstrap/internal/model"
	"github.com/shinji-kodama/venv-bootstrap/internal/runner"
)

// VenvPathEnv names the environment variable holding the base directory
// under which per-project virtual environments are created.
const VenvPathEnv = "PYTHON_VENV_PATH"

// DefaultPython is the interpreter used to create the environment.
const DefaultPython = "python3"

// projectFiles lists the config file names probed in the project root,
// in priority order.
var projectFiles = []string{
	".venv-bootstrap.yaml",
	".venv-bootstrap.yml",
	".venv-bootstrap.json",
}

// File is the on-disk shape of a project config file. Every field is
// optional; zero values defer to flags or defaults.
type File struct {
	// Python is the interpreter that creates the venv (e.g. "python3.12").
	Python string `yaml:"python" json:"python"`

	// Timeout is a Go duration string ("90s", "10m") bounding each command.
	Timeout string `yaml:"timeout" json:"timeout"`

	// PipArgs are extra arguments appended to the pip install command,
	// e.g. ["--index-url", "https://mirror.example/simple"].
	PipArgs []string `yaml:"pipArgs" json:"pipArgs"`
}

// Settings is the resolved configuration of a run.
type Settings struct {
	// VenvBase is the value of PYTHON_VENV_PATH. Empty when unset; the
	// bootstrapper rejects an empty base.
	VenvBase string

	// Python is the interpreter that creates the venv.
	Python string

	// Timeout bounds each external command.
	Timeout time.Duration

	// PipArgs are extra arguments for pip install.
	PipArgs []string

	// Source is the config file the settings were loaded from, if any.
	Source string
}

// FromEnv reads the environment-backed settings through getenv and fills
// in defaults for everything else. It is the only place the process
// environment is consulted.
//
// A relative PYTHON_VENV_PATH is resolved against cwd, the directory the
// tool was started from. Commands later run in the project directory, so
// the base must be absolute before it reaches them.
func FromEnv(getenv func(string) string, cwd string) Settings {
	return Settings{
		VenvBase: absBase(strings.TrimSpace(getenv(VenvPathEnv)), cwd),
		Python:   DefaultPython,
		Timeout:  runner.DefaultTimeout,
	}
}

// absBase makes base absolute relative to cwd. Empty stays empty so the
// bootstrapper can still report the variable as unset.
func absBase(base, cwd string) string {
	if base == "" || filepath.IsAbs(base) {
		return base
	}
	if cwd == "" {
		if abs, err := filepath.Abs(base); err == nil {
			return abs
		}
		return base
	}
	return filepath.Join(cwd, base)
}

// FindProjectFile returns the first config file present in projectDir, or
// an empty string when there is none.
func FindProjectFile(projectDir string) string {
	for _, name := range projectFiles {
		path := filepath.Join(projectDir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// LoadFile reads and decodes a config file. The format is chosen by
// extension: .json is JSONC, anything else is YAML.
//
// Returns a model.CLIError with ExitConfigError if the file cannot be
// read or decoded.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, model.WrapCLIError(model.ExitConfigError, fmt.Sprintf("config file %s not found", path), err)
		}
		return nil, model.WrapCLIError(model.ExitConfigError, fmt.Sprintf("failed to read config file %s", path), err)
	}

	var f File
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = decodeJSONC(data, &f)
	} else {
		err = decodeYAML(data, &f)
	}
	if err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError, fmt.Sprintf("invalid config file %s", path), err)
	}
	return &f, nil
}

// decodeYAML rejects unknown keys so that typos like "pip_args" are
// reported instead of silently ignored. An empty document is valid.
func decodeYAML(data []byte, out *File) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// decodeJSONC strips comments and trailing commas, then decodes strictly.
func decodeJSONC(data []byte, out *File) error {
	clean := jsonc.ToJSON(data)
	if len(bytes.TrimSpace(clean)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(clean))
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}

// Apply merges a project file into s. Fields set in f override s.
func (s *Settings) Apply(f *File, source string) error {
	if f == nil {
		return nil
	}
	if p := strings.TrimSpace(f.Python); p != "" {
		s.Python = p
	}
	if f.Timeout != "" {
		d, err := ParseTimeout(f.Timeout)
		if err != nil {
			return model.WrapCLIError(model.ExitConfigError, fmt.Sprintf("invalid timeout in %s", source), err)
		}
		s.Timeout = d
	}
	if len(f.PipArgs) > 0 {
		s.PipArgs = append([]string(nil), f.PipArgs...)
	}
	s.Source = source
	return nil
}

// ParseTimeout parses a positive Go duration string.
func ParseTimeout(v string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("timeout must be positive, got %s", d)
	}
	return d, nil
}

// Load resolves the settings for projectDir. explicitPath, when set, must
// exist; otherwise the project directory is probed for a config file and
// its absence is not an error.
func Load(base Settings, projectDir, explicitPath string) (Settings, error) {
	path := explicitPath
	if path == "" {
		path = FindProjectFile(projectDir)
	}
	if path == "" {
		return base, nil
	}

	f, err := LoadFile(path)
	if err != nil {
		return base, err
	}
	s := base
	if err := s.Apply(f, path); err != nil {
		return base, err
	}
	return s, nil
}
