// Package testsupport provides shared fixtures for package tests: generated
// .qgs project files, minimal GeoPackage sources, and preconfigured configs
// rooted in temp directories.
package testsupport
