// Package logging provides the application-wide structured logging setup.
//
// It wraps log/slog with subsystem-tagged helpers so call sites read as
// logging.Info("SubSystem", "message %s", arg). InitForCLI must be called
// once at startup; before that, log output falls back to slog's default
// handler.
package logging
