// Package runner executes external commands on behalf of the bootstrapper.
//
// Commands are always argument vectors handed to os/exec, never shell
// strings, so paths containing spaces or quotes need no escaping. Each
// invocation runs under its own timeout (DefaultTimeout unless configured)
// and captures stdout and stderr separately.
//
// Failures are reported through two typed errors:
//   - *CommandError when the process could not start or exited non-zero
//   - *TimeoutError when the process outlived its timeout and was killed
//
// There is no retry logic. Every failure is returned to the caller.
package runner
