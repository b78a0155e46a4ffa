// Package logger provides structured logging functionality for the application.
//
// It utilizes Go's standard library log/slog package to implement structured JSON logging
// with configurable log levels. Every record is annotated with the identity of the
// emitting host process so logs from the separately deployed API hosts can be told
// apart once aggregated.
package logger
