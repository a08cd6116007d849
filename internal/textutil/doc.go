// Package textutil provides text processing utilities for short-name folding
// and filename sanitization.
//
// Layer short names become keys inside the consolidated vector container and
// entry names inside the publication archive, so FoldASCII reduces them to a
// predictable lowercase ASCII form: accents are decomposed and stripped,
// spaces become underscores, and anything without an ASCII equivalent is
// dropped.
package textutil
