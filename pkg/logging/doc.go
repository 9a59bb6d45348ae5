// Package logging provides subsystem-tagged structured logging for telltales.
//
// It is a thin layer over log/slog. The CLI initialises it once at startup and
// every other package logs through the package-level helpers:
//
//	logging.InitForCLI(logging.LevelWarn, os.Stderr)
//
//	logging.Info("Credentials", "Loaded credentials from %s", path)
//	logging.Debug("Flow", "Transition %s -> %s", from, to)
//	logging.Error("API", err, "Profile request failed")
//
// Each entry carries a "subsystem" attribute, and an "error" attribute when one
// is supplied. Secret values (private keys, token secrets, verifiers) must never
// be passed to these helpers.
package logging
