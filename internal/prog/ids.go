package prog

// VarID, ScopeID and FuncID are declared here rather than in the symbols
// package so that Node can carry them without an import cycle; the symbols
// package owns the arenas they index.
type (
	NodeID  uint32
	VarID   uint32
	ScopeID uint32
	FuncID  uint32
	// ExprKey identifies structurally equal subexpressions: two nodes with
	// the same non-zero key spell the same value-producing expression.
	ExprKey uint32
)

const (
	NoNodeID  NodeID  = 0
	NoVarID   VarID   = 0
	NoScopeID ScopeID = 0
	NoFuncID  FuncID  = 0
	NoExprKey ExprKey = 0
)

func (id NodeID) IsValid() bool  { return id != NoNodeID }
func (id VarID) IsValid() bool   { return id != NoVarID }
func (id ScopeID) IsValid() bool { return id != NoScopeID }
func (id FuncID) IsValid() bool  { return id != NoFuncID }
func (k ExprKey) IsValid() bool  { return k != NoExprKey }
