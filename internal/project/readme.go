package project

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"text/template"
)

// ReadmeFile is the documentation file EnsureReadme scaffolds.
const ReadmeFile = "README.md"

// readmeTemplate is the fixed README layout. The blank lines around the
// install command are part of the template.
var readmeTemplate = template.Must(template.New("readme").Parse(`# {{.Name}}

## Description

Add your project description here.

## Installation


pip install -e .


## Usage

Add usage examples here.
`))

// RenderReadme returns the README content for a project with the given name.
func RenderReadme(name string) ([]byte, error) {
	var buf bytes.Buffer
	if err := readmeTemplate.Execute(&buf, struct{ Name string }{Name: name}); err != nil {
		return nil, fmt.Errorf("render README template: %w", err)
	}
	return buf.Bytes(), nil
}

// EnsureReadme creates README.md in projectDir when it does not already
// exist, using the directory's base name as the title. It reports whether
// a file was written.
//
// An existing README is never touched. The file is opened with O_EXCL so
// a README created between the check and the write is not overwritten.
func EnsureReadme(projectDir string) (bool, error) {
	path := filepath.Join(projectDir, ReadmeFile)

	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("check %s: %w", path, err)
	}

	content, err := RenderReadme(filepath.Base(projectDir))
	if err != nil {
		return false, err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return false, nil
		}
		return false, fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return false, fmt.Errorf("close %s: %w", path, err)
	}
	return true, nil
}
