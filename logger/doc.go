// Package logger provides structured logging on top of zerolog.
//
// It supports console and JSON output, level configuration, and
// component-scoped loggers with structured fields. Output defaults to
// stderr so stdout stays free for program output.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("resource")
//	log.Info("request completed", logger.Fields("status", 200))
package logger
