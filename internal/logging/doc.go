// Package logging builds the slog loggers used by specval.
//
// Console output is either the terminal [Handler] or slog's JSON handler;
// a log file, when configured, always receives JSON. Code that logs about
// schemas and documents attaches the shared attribute keys so the text
// handler can show what each line is about:
//
//	log := logging.WithSchema(logger, "workspace.json", "1.0.0")
//	log.Warn("schema version is not the latest")
//	// 3:04PM WARN  [workspace.json@1.0.0] schema version is not the latest
//
// [LevelTrace] sits below Debug and is enabled by -vvv.
package logging
