// Package logging configures the structured loggers used across stubdb.
//
// It is a thin layer over log/slog so every component logs with the same
// level and format settings:
//
//	log := logging.New(logging.Config{
//	    Level:  logging.LevelInfo,
//	    Format: logging.FormatJSON,
//	})
//	log.Info("dataset loaded", "dataset", "users", "rows", 42)
//
// Components take a *slog.Logger through their constructor or a setter and
// fall back to Nop when none is given.
package logging
