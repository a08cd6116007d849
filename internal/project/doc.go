// Package project models the publication-relevant subset of QGIS .qgs
// project files: the layer list with names, short names, providers, and
// datasources.
//
// It owns the shared project context (the analog of the host application's
// single open project) and the snapshot extractor that drops isolated
// per-locale working copies into a fresh temp directory at the start of a
// publication run. The extractor deliberately refuses dirty projects rather
// than silently saving over user state.
package project
