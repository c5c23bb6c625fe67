// Package model defines the domain types and value objects for the
// venv-bootstrap CLI.
//
// This package contains pure data structures with no I/O. Every entity
// (DepsGroup, BootstrapResult) is transient and lives only for the
// duration of a single run; nothing is persisted between invocations.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model
