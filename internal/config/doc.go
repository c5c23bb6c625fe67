// Package config gathers the settings of a bootstrap run.
//
// Two sources feed it:
//   - the PYTHON_VENV_PATH environment variable, read exactly once at the
//     process entry point and passed down as a value
//   - an optional per-project file (.venv-bootstrap.yaml, .yml or .json)
//
// YAML files are decoded with gopkg.in/yaml.v3. JSON files may contain
// comments (JSONC); they are normalized with github.com/tidwall/jsonc
// before being handed to encoding/json.
//
// Precedence is: command-line flag > project file > built-in default.
package config
