package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEnsureReadme_Creates verifies that a missing README is scaffolded
// with the project name as heading and all fixed sections.
func TestEnsureReadme_Creates(t *testing.T) {
	dir, _ := setupProject(t, "myproj")

	created, err := EnsureReadme(dir)
	require.NoError(t, err)
	assert.True(t, created)

	data, err := os.ReadFile(filepath.Join(dir, ReadmeFile))
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "# myproj\n")
	assert.Contains(t, content, "## Description\n")
	assert.Contains(t, content, "## Installation\n")
	assert.Contains(t, content, "pip install -e .\n")
	assert.Contains(t, content, "## Usage\n")
}

// TestEnsureReadme_Idempotent verifies that an existing README is left
// byte-for-byte unchanged.
func TestEnsureReadme_Idempotent(t *testing.T) {
	dir, _ := setupProject(t, "myproj")
	path := filepath.Join(dir, ReadmeFile)
	writeFile(t, path, "hand-written docs\n")

	created, err := EnsureReadme(dir)
	require.NoError(t, err)
	assert.False(t, created)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hand-written docs\n", string(data))
}

// TestEnsureReadme_SecondRun verifies that running twice writes once.
func TestEnsureReadme_SecondRun(t *testing.T) {
	dir, _ := setupProject(t, "myproj")

	first, err := EnsureReadme(dir)
	require.NoError(t, err)
	second, err := EnsureReadme(dir)
	require.NoError(t, err)

	assert.True(t, first)
	assert.False(t, second)
}

// TestEnsureReadme_MissingDirectory verifies that write failures surface
// as errors.
func TestEnsureReadme_MissingDirectory(t *testing.T) {
	_, err := EnsureReadme(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Error(t, err)
}

// TestRenderReadme checks the exact template output.
func TestRenderReadme(t *testing.T) {
	got, err := RenderReadme("demo")
	require.NoError(t, err)

	want := "# demo\n\n" +
		"## Description\n\n" +
		"Add your project description here.\n\n" +
		"## Installation\n\n" +
		"\n" +
		"pip install -e .\n" +
		"\n\n" +
		"## Usage\n\n" +
		"Add usage examples here.\n"
	assert.Equal(t, want, string(got))
}
