// Package token defines the closed set of lexical token kinds for Vela.
// Invariants:
//   - Token.Text is exactly the source bytes covered by Token.Span.
//   - Primitive type names (i8 … u64, f32, f64, bool, char, str) are reserved
//     words with their own kinds, never identifiers.
//   - '*' has a single lexical kind (PointerDeref). Multiply is part of the
//     taxonomy but the lexer never produces it; the parser decides between
//     dereference and multiplication by syntactic position.
//   - Trivia kinds (Skip, Newline, Comment, CommentBlock) are recognized by the
//     lexer but only surface as Token.Leading when trivia is kept.
package token
