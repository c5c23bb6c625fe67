// Package logging builds the structured logger used by every other
// package. Output is slog text on stderr so that stdout stays reserved
// for the bootstrap summary (text or JSON).
package logging
