// Package registry tracks the layers selected for publication and the
// remote catalogs fetched once per session.
//
// Layer short names are folded to lowercase ASCII at registration and must
// be unique within a locale: they become table names inside the consolidated
// vector container, where a collision would silently overwrite data. The
// registry therefore rejects duplicates at insertion time rather than in a
// later validation pass.
//
// Catalogs (departments, CSZ themes, user email) are populated from the DDR
// lookup endpoints after login and held read-only for the session.
package registry
