package valueflow

import (
	"vigil/internal/library"
	"vigil/internal/prog"
	"vigil/internal/token"
)

// Direction tells an analyzer which way the walk is moving through the
// token stream.
type Direction uint8

const (
	Forward Direction = iota
	Reverse
)

// Action is what a visited node does to a tracked entity, as a bitset: an
// increment both reads and writes, an idempotent assignment writes without
// changing anything.
type Action uint8

const (
	ActNone Action = 0

	ActRead Action = 1 << iota
	ActWrite
	ActInvalidate  // entity lost: aliased, passed by address, arbitrary call effect
	ActIncremental // write is a computable delta on the current value
	ActIdempotent  // write stores the value the entity already has
)

func (a Action) Has(bit Action) bool { return a&bit != 0 }

// Analyzer is the capability object a walk consults at every node. The
// walker owns control flow (branches, loops, escapes); the analyzer owns
// meaning (does this node read, write or destroy what I track). One analyzer
// instance tracks one entity or one batch of entities.
type Analyzer interface {
	// Invalid reports that the entity was lost and the walk should stop.
	Invalid() bool
	// Classify reports what the node does to the tracked entity.
	Classify(id prog.NodeID, dir Direction) Action
	// Update applies a classified action: publish at a read, advance the
	// carried value through an increment, drop the entity on a write.
	Update(id prog.NodeID, act Action, dir Direction)
	// Evaluate resolves an expression to an exact integer under current
	// knowledge, including branch assumptions made during this walk.
	Evaluate(id prog.NodeID) (int64, bool)
	// Assume pins the outcome of a condition for the rest of the walk.
	// quiet suppresses the derivation step on the carried value.
	Assume(cond prog.NodeID, truth, quiet bool)
	// ShouldDescend reports whether entering the block at the opening brace
	// can still refine anything for this entity.
	ShouldDescend(open prog.NodeID) bool
	// Lower weakens the carried value after a partially-written merge point.
	Lower()
	// Fork clones the analyzer for a hypothetical branch.
	Fork() Analyzer
}

// isWriteTarget reports whether the occurrence at id is written through its
// parent: assignment target, increment operand, address-of operand (a taken
// address means arbitrary later writes), or the receiver of a modifying
// container method.
func (cx *Context) isWriteTarget(id prog.NodeID) bool {
	n := cx.node(id)
	if n == nil {
		return false
	}
	p := cx.node(n.Parent)
	if p == nil {
		return false
	}
	switch {
	case p.IsAssign() && p.Left == id:
		return true
	case p.IsIncDec():
		return true
	case p.Kind == prog.NodeOp && p.Tok == token.Amp && p.IsUnaryOp():
		return true
	case p.Tok == token.Dot && p.Left == id:
		call := cx.node(p.Parent)
		if call == nil || !call.IsCall() {
			return false
		}
		cont, ok := cx.containerOf(id)
		if !ok {
			return true
		}
		m := cx.Graph.Text(p.Right)
		if !cont.KnowsMethod(m) {
			return true
		}
		return cont.ActionOf(m) != library.ActionNone
	default:
		return false
	}
}
