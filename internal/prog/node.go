package prog

import (
	"vigil/internal/source"
	"vigil/internal/token"
	"vigil/internal/types"
)

// NodeKind classifies what a node contributes to the program.
type NodeKind uint8

const (
	NodeInvalid NodeKind = iota
	NodeName             // identifier use: variable, function, member
	NodeNumber           // integer literal
	NodeFloat            // floating literal
	NodeString           // string literal
	NodeChar             // character literal
	NodeBool             // true/false
	NodeNull             // NULL
	NodeOp               // operator carrying AST operands
	NodeKeyword          // statement keyword (if, while, return, ...)
	NodePunct            // structural punctuation ({, }, ;, ...)
)

func (k NodeKind) String() string {
	switch k {
	case NodeInvalid:
		return "invalid"
	case NodeName:
		return "name"
	case NodeNumber:
		return "number"
	case NodeFloat:
		return "float"
	case NodeString:
		return "string"
	case NodeChar:
		return "char"
	case NodeBool:
		return "bool"
	case NodeNull:
		return "null"
	case NodeOp:
		return "op"
	case NodeKeyword:
		return "keyword"
	case NodePunct:
		return "punct"
	default:
		return "NodeKind(?)"
	}
}

// NodeFlags carry orthogonal node properties.
type NodeFlags uint8

const (
	FlagNone      NodeFlags = 0
	FlagFromMacro NodeFlags = 1 << iota // spliced in by macro expansion
	FlagPostfix                         // x++ rather than ++x
	FlagCast                            // '(' node acting as a C cast
	FlagImplicit                        // node synthesized by the parser
	FlagParens                          // expression root explicitly parenthesized
)

func (f NodeFlags) Has(bit NodeFlags) bool { return f&bit != 0 }

// Node is one record in the program graph. Every significant token becomes a
// node; Next/Prev thread the token stream in program order while
// Parent/Left/Right form the expression tree over the same records. A node
// with no Left is a leaf; a node with Left but no Right is a unary operator.
type Node struct {
	Next   NodeID
	Prev   NodeID
	Parent NodeID
	Left   NodeID
	Right  NodeID
	Link   NodeID // matching bracket for ( { [

	Var   VarID        // non-zero on variable name nodes
	Scope ScopeID      // innermost enclosing scope
	Func  FuncID       // called/defined function on its name node
	Expr  ExprKey      // structural identity of the subexpression
	Type  types.TypeID // value type of the expression rooted here

	Span source.Span
	Text source.StringID // spelling of names and literals

	Tok   token.Kind
	Kind  NodeKind
	Flags NodeFlags
}

// IsLeaf reports whether the node has no AST operands.
func (n *Node) IsLeaf() bool { return n.Left == NoNodeID && n.Right == NoNodeID }

// IsUnaryOp reports whether the node applies its token to exactly one operand.
func (n *Node) IsUnaryOp() bool { return n.Left != NoNodeID && n.Right == NoNodeID }

// IsBinaryOp reports whether the node has both operands.
func (n *Node) IsBinaryOp() bool { return n.Left != NoNodeID && n.Right != NoNodeID }

// IsLiteral reports whether the node is a constant of some literal form.
func (n *Node) IsLiteral() bool {
	switch n.Kind {
	case NodeNumber, NodeFloat, NodeString, NodeChar, NodeBool, NodeNull:
		return true
	default:
		return false
	}
}

// IsName reports whether the node is an identifier use.
func (n *Node) IsName() bool { return n.Kind == NodeName }

// IsAssign reports whether the node is any assignment operator.
func (n *Node) IsAssign() bool {
	return n.Kind == NodeOp && n.Tok.IsAssignOp()
}

// IsCompoundAssign reports += style assignments, excluding plain =.
func (n *Node) IsCompoundAssign() bool {
	return n.IsAssign() && n.Tok != token.Assign
}

// IsComparison reports whether the node compares its operands.
func (n *Node) IsComparison() bool {
	return n.Kind == NodeOp && n.Tok.IsComparisonOp()
}

// IsIncDec reports ++ and -- in either position.
func (n *Node) IsIncDec() bool {
	return n.Kind == NodeOp && (n.Tok == token.PlusPlus || n.Tok == token.MinusMinus)
}

// IsCall reports whether the node is a call site: a '(' operator whose left
// operand names the callee.
func (n *Node) IsCall() bool {
	return n.Kind == NodeOp && n.Tok == token.LParen && !n.Flags.Has(FlagCast) && n.Left != NoNodeID
}

// IsCast reports whether the node is a C-style cast.
func (n *Node) IsCast() bool {
	return n.Kind == NodeOp && n.Flags.Has(FlagCast)
}

// IsTernaryHead reports the '?' node of cond ? a : b.
func (n *Node) IsTernaryHead() bool {
	return n.Kind == NodeOp && n.Tok == token.Question
}
