// Package archive assembles the upload package for a publication run: the
// consolidated vector container, the rewritten locale project copies, the
// JSON control file, and the zip that wraps them all under fixed names.
package archive
