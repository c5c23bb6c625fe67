package project

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shinji-kodama/venv-bootstrap/internal/model"
)

// ManifestFile is the project descriptor whose presence gates the bootstrap.
const ManifestFile = "pyproject.toml"

// Locate returns the absolute project root for a run started in cwd.
//
// The tool is commonly kept in a scripts/ directory inside the project.
// When it is invoked from that directory (cwd and toolDir are the same
// directory) the project root is the parent of cwd. Otherwise cwd itself
// is the project root.
//
// Returns a model.CLIError with ExitManifestNotFound if the resolved root
// has no pyproject.toml. Nothing is written before this check.
func Locate(cwd, toolDir string) (string, error) {
	absCwd, err := filepath.Abs(cwd)
	if err != nil {
		return "", model.WrapCLIError(model.ExitGeneralError, "failed to resolve current directory", err)
	}

	root := absCwd
	if toolDir != "" && sameDir(absCwd, toolDir) {
		root = filepath.Dir(absCwd)
	}

	manifest := filepath.Join(root, ManifestFile)
	info, err := os.Stat(manifest)
	if err != nil || info.IsDir() {
		return "", model.NewCLIError(
			model.ExitManifestNotFound,
			fmt.Sprintf("%s not found in %s; cannot proceed with virtual environment setup", ManifestFile, root),
		)
	}
	return root, nil
}

// ToolDir returns the directory that contains the running executable,
// with symlinks resolved. This is the directory Locate compares against
// the working directory.
func ToolDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(exe)
	if err != nil {
		return "", err
	}
	return filepath.Dir(resolved), nil
}

// sameDir reports whether a and b refer to the same directory.
// os.SameFile compares device and inode, so a symlinked path to the
// same directory still matches. Paths that cannot be stat'ed never match.
func sameDir(a, b string) bool {
	ai, err := os.Stat(a)
	if err != nil {
		return false
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}
