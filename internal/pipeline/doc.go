// Package pipeline orchestrates a publication run end to end: snapshot the
// locale projects, register their layers, consolidate the vector container,
// rewrite datasources, write the control file, zip, and invoke the remote
// operation. Restore and cleanup always run, and every failure surfaces as a
// classified outcome rather than an escaping error.
package pipeline
