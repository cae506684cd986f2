// Package logging provides slog-based structured logging for lessonlink.
//
// It exposes a console handler for interactive use, a JSON handler for
// machine consumption, attribute helper aliases, and standardized field
// keys shared across components.
package logging
