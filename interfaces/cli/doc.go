// Package cli implements the dailytens operator command line.
//
// The commands resolve a date through the same resolver the HTTP API uses,
// run a dry extraction against the live page, and validate or add game files
// through the authoring write path. Commands that need the store or the
// browser obtain them from a Loader so the wiring stays in cmd/.
package cli
