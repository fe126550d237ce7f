// Package logging constructs the slog loggers used across genecrawler.
//
// Two output formats are supported: a compact console handler for interactive
// runs and a JSON handler for log files and machine consumption. Loggers can
// fan out to several destinations (stdout plus a run log under the configured
// log directory). NewNop returns a discard logger for components constructed
// without one.
package logging
