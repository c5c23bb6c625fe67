// Package venv creates a project's Python virtual environment and installs
// its dependencies into it.
//
// The environment lives at <base>/<project-name>, where base comes from
// configuration rather than from the process environment directly. Two
// external commands do all the work:
//
//	<python> -m venv --clear <venv>
//	<venv>/bin/pip install -e .[<group>]
//
// Both run through a CommandRunner so tests can substitute a fake. The
// first failure aborts the bootstrap; nothing is rolled back.
package venv
