// Package token defines lexical token kinds for the analyzed C subset.
// Invariants:
//   - Token.Text is a slice of the original source (no copies).
//   - Token.Span matches Text exactly (Begin..End).
//   - Comments and whitespace never reach the token stream; the lexer drops
//     them while scanning.
//   - Type keywords (int, unsigned, ...) are real keywords here, unlike
//     identifiers: the analyzed language has a closed builtin type set and the
//     declaration parser keys off them.
package token
