// Package ddr implements the client side of the DDR publication protocol:
// login and token lifecycle, the catalog lookups (departments, CSZ themes,
// user email), and the three archive operations (validate, publish,
// unpublish).
//
// Responses are normalized into Result values: the documented bilingual
// error body on a 4xx/5xx, the pretty-printed report document on a
// successful validate. Transport failures are wrapped uniformly with the
// operation and URL; an error body that does not parse as the documented
// shape escalates to a protocol error instead of being swallowed.
package ddr
