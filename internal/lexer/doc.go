// Package lexer turns Vela source into a flat stream of classified tokens.
//
// Scanning is table driven: at every offset the rows of a fixed,
// priority-ordered pattern table are tried top to bottom and the first
// anchored match wins. Whitespace, newlines and comments are matched like any
// other row and then dropped, or kept as leading trivia with
// Options.KeepTrivia. An offset where no row matches stops the scan with a
// *LexicalError.
package lexer
