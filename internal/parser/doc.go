// Package parser turns one C translation unit into the program graph the
// value-flow engine works on. Parsing runs in two phases: first every
// significant token becomes a stream node (with bracket links), then a
// recursive-descent pass overlays the expression tree, registers symbols and
// scopes, and computes expression types bottom-up.
//
// The accepted language is the analysis subset of C: declarations, functions,
// the usual statements and expressions, enums, structs, plus library
// containers (vector<int>, string) spelled as template types. Anything else
// is reported and resynchronized past; the parser never gives up on the rest
// of the file because of one bad construct.
package parser
