// Package project resolves the Python project a bootstrap run operates on
// and scaffolds its documentation.
//
// Locate decides which directory is the project root and enforces that it
// contains the pyproject.toml manifest. EnsureReadme creates a templated
// README.md when the project has none. Both work purely on the filesystem;
// neither runs external commands.
package project
