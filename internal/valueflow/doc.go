// Package valueflow computes, for every node of a parsed program graph, the
// set of runtime values the node can or must take.
//
// The engine is an abstract interpreter over the expression graph built by
// internal/parser. Facts (value.Value) enter the corpus through leaf passes
// (literals, enum constants, sizeof) and spread three ways:
//
//   - upward through the expression tree: Publish recomputes parent facts
//     through arithmetic, casts, ternaries, container-yield calls and
//     indexing (publish.go, calc.go);
//   - lexically forward and backward along the token stream, driven by a
//     capability object (Analyzer) that classifies what each visited node
//     does to the tracked entity (analyzer.go, entity.go, multi.go, walk.go);
//   - across branch boundaries, where the condition framework splits a
//     boolean condition into true/false fact sets and routes them into the
//     then/else/after regions (condition.go).
//
// A fixed pipeline of passes repeats up to Budgets.Cycles times until the
// corpus stops growing (engine.go). Every recursion carries an explicit depth
// budget; exhausting one means fewer facts, never an error. The engine's one
// correctness contract: a Known fact is true on every path that reaches its
// node. When in doubt it publishes nothing, degrades to Possible, or reports
// a bailout through the injected tracer, which must never change the outcome.
package valueflow
