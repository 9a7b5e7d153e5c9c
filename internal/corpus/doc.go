// Package corpus discovers photos under an input tree and orders them by
// capture time.
//
// Discovery goes through the Walker interface so tests can supply fixed
// listings; DirWalker visits entries in lexical order, which makes the
// discovery sequence (and therefore tie-breaking) deterministic.
package corpus
