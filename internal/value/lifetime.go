package value

// MoveKind is the payload of a DomainMoved fact: how the object left its
// variable.
type MoveKind uint8

const (
	NotMoved MoveKind = iota
	Moved
	Forwarded
)

func (m MoveKind) String() string {
	switch m {
	case NotMoved:
		return "not-moved"
	case Moved:
		return "moved"
	case Forwarded:
		return "forwarded"
	default:
		return "MoveKind(?)"
	}
}

// LifetimeKind says what part of the referenced storage a lifetime fact
// depends on.
type LifetimeKind uint8

const (
	// LifetimeObject depends on the whole referenced object.
	LifetimeObject LifetimeKind = iota
	// LifetimeSubObject depends on a member inside the referenced object.
	LifetimeSubObject
	// LifetimeLambda depends on state captured by a function value.
	LifetimeLambda
	// LifetimeIterator depends on a container's iteration state.
	LifetimeIterator
	// LifetimeAddress depends on the address of the referenced object.
	LifetimeAddress
)

func (k LifetimeKind) String() string {
	switch k {
	case LifetimeObject:
		return "object"
	case LifetimeSubObject:
		return "sub-object"
	case LifetimeLambda:
		return "lambda"
	case LifetimeIterator:
		return "iterator"
	case LifetimeAddress:
		return "address"
	default:
		return "LifetimeKind(?)"
	}
}

// LifetimeScope says where the storage a lifetime fact depends on lives.
// Facts over LifetimeScopeLocal storage die at the end of the owning
// variable's scope.
type LifetimeScope uint8

const (
	LifetimeScopeLocal LifetimeScope = iota
	LifetimeScopeArgument
	LifetimeScopeSubFunction
	LifetimeScopeThisPointer
	LifetimeScopeThisValue
)

func (s LifetimeScope) String() string {
	switch s {
	case LifetimeScopeLocal:
		return "local"
	case LifetimeScopeArgument:
		return "argument"
	case LifetimeScopeSubFunction:
		return "sub-function"
	case LifetimeScopeThisPointer:
		return "this-pointer"
	case LifetimeScopeThisValue:
		return "this-value"
	default:
		return "LifetimeScope(?)"
	}
}
