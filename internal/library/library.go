package library

// Yield classifies what a container method returns.
type Yield uint8

const (
	YieldNone Yield = iota
	YieldAtIndex
	YieldItem
	YieldBuffer
	YieldStartIterator
	YieldEndIterator
	YieldSize
	YieldEmpty
)

func (y Yield) String() string {
	switch y {
	case YieldNone:
		return "none"
	case YieldAtIndex:
		return "at-index"
	case YieldItem:
		return "item"
	case YieldBuffer:
		return "buffer"
	case YieldStartIterator:
		return "start-iterator"
	case YieldEndIterator:
		return "end-iterator"
	case YieldSize:
		return "size"
	case YieldEmpty:
		return "empty"
	default:
		return "Yield(?)"
	}
}

// Action classifies how a container method changes the container.
type Action uint8

const (
	ActionNone Action = iota
	ActionResize
	ActionClear
	ActionPush
	ActionPop
	ActionInsert
	ActionErase
	ActionChange        // replaces the contents wholesale
	ActionChangeContent // writes elements without changing the size
	ActionFind
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionResize:
		return "resize"
	case ActionClear:
		return "clear"
	case ActionPush:
		return "push"
	case ActionPop:
		return "pop"
	case ActionInsert:
		return "insert"
	case ActionErase:
		return "erase"
	case ActionChange:
		return "change"
	case ActionChangeContent:
		return "change-content"
	case ActionFind:
		return "find"
	default:
		return "Action(?)"
	}
}

// AllocSize tells how an allocation function's buffer size derives from its
// arguments.
type AllocSize uint8

const (
	AllocNone AllocSize = iota
	// AllocArg: the size is the value of argument Arg (malloc).
	AllocArg
	// AllocArgProduct: the size is Arg times Arg2 (calloc).
	AllocArgProduct
	// AllocStrDup: the size is the length of the string argument plus one.
	AllocStrDup
)

// AllocInfo describes an allocation function's size formula. Argument
// positions are 1-based.
type AllocInfo struct {
	Size AllocSize
	Arg  int
	Arg2 int
}

// Function is what the knowledge base knows about one free function.
type Function struct {
	Name     string
	Pure     bool // result depends only on the arguments, no writes
	NoReturn bool // never returns to the caller (exit, abort)
	Alloc    *AllocInfo
}

// Container describes one container type's method semantics: what each method
// returns and how it changes the container.
type Container struct {
	Name       string
	StringLike bool
	Yields     map[string]Yield
	Actions    map[string]Action
}

// YieldOf returns what the method returns, or YieldNone for unknown methods.
func (c Container) YieldOf(method string) Yield {
	return c.Yields[method]
}

// ActionOf returns how the method changes the container, or ActionNone.
func (c Container) ActionOf(method string) Action {
	return c.Actions[method]
}

// KnowsMethod reports whether the method is described at all, as a yield or
// an action. Unknown methods must be treated as arbitrary writes.
func (c Container) KnowsMethod(method string) bool {
	if _, ok := c.Yields[method]; ok {
		return true
	}
	_, ok := c.Actions[method]
	return ok
}

// Library is the knowledge base the engine consults about functions and
// container types. Lookups only; nothing here is ever mutated during a run.
type Library struct {
	functions  map[string]Function
	containers map[string]Container
}

// New returns an empty knowledge base.
func New() *Library {
	return &Library{
		functions:  make(map[string]Function),
		containers: make(map[string]Container),
	}
}

// Function looks up a free function by name.
func (l *Library) Function(name string) (Function, bool) {
	f, ok := l.functions[name]
	return f, ok
}

// IsNoReturn reports whether calling name never returns.
func (l *Library) IsNoReturn(name string) bool {
	f, ok := l.functions[name]
	return ok && f.NoReturn
}

// IsPure reports whether name is known to be free of side effects.
func (l *Library) IsPure(name string) bool {
	f, ok := l.functions[name]
	return ok && f.Pure
}

// Alloc returns the allocation size formula of name, if it has one.
func (l *Library) Alloc(name string) (AllocInfo, bool) {
	f, ok := l.functions[name]
	if !ok || f.Alloc == nil {
		return AllocInfo{}, false
	}
	return *f.Alloc, true
}

// Container looks up a container type by its base name.
func (l *Library) Container(name string) (Container, bool) {
	c, ok := l.containers[name]
	return c, ok
}

// YieldOf returns what the container's method returns. ok is false when
// either the container or the method is unknown; unknown methods must be
// treated as arbitrary writes.
func (l *Library) YieldOf(container, method string) (Yield, bool) {
	c, ok := l.containers[container]
	if !ok {
		return YieldNone, false
	}
	y, ok := c.Yields[method]
	return y, ok
}

// ActionOf returns how the container's method changes the container.
func (l *Library) ActionOf(container, method string) (Action, bool) {
	c, ok := l.containers[container]
	if !ok {
		return ActionNone, false
	}
	a, ok := c.Actions[method]
	return a, ok
}

// KnowsMethod reports whether the method is described at all for the
// container, as a yield or an action.
func (l *Library) KnowsMethod(container, method string) bool {
	c, ok := l.containers[container]
	if !ok {
		return false
	}
	if _, ok := c.Yields[method]; ok {
		return true
	}
	_, ok = c.Actions[method]
	return ok
}
