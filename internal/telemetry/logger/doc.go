// Package logger provides structured logging for the TrakJobs client.
//
// Loggers wrap log/slog. All of them share one level, which the browse
// command changes when the config file is edited. Records logged with a
// context pick up the API request id and the active trace and span ids;
// bearer tokens and password-like attributes are masked before output.
//
// The CLI logs to stderr at warn level by default; --verbose switches to
// debug, which includes one line per API request.
package logger
