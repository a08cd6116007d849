// Command ddrpub packages bilingual QGIS project files and drives the DDR
// Publication API: login, validate, publish, unpublish, and the remote
// catalog lookups that feed them.
package main
