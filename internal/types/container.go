package types

import (
	"fmt"
	"slices"

	"fortio.org/safecast"

	"vigil/internal/source"
)

// ContainerInfo describes a library container instance (vector<int>, string).
// Behavioral knowledge (which methods yield the size, which invalidate
// iterators) lives in the library model; the type only records identity.
type ContainerInfo struct {
	Name     source.StringID // template name as spelled: "vector", "string"
	Elem     TypeID          // element type, NoTypeID for string-like
	TypeArgs []TypeID        // full argument list, Elem is TypeArgs[0] when present
}

// NewContainer interns a container instance. Identical (name, args) pairs
// return the same TypeID.
func (in *Interner) NewContainer(info ContainerInfo) TypeID {
	if id, ok := in.FindContainer(info.Name, info.TypeArgs); ok {
		return id
	}
	payload, err := safecast.Conv[uint32](len(in.containers))
	if err != nil {
		panic(fmt.Errorf("len(containers) overflow: %w", err))
	}
	in.containers = append(in.containers, info)
	return in.internRaw(Type{Kind: KindContainer, Elem: info.Elem, Payload: payload})
}

// ContainerInfo returns the info record for a container TypeID.
func (in *Interner) ContainerInfo(id TypeID) (*ContainerInfo, bool) {
	t, ok := in.Lookup(id)
	if !ok || t.Kind != KindContainer || int(t.Payload) >= len(in.containers) {
		return nil, false
	}
	return &in.containers[t.Payload], true
}

// FindContainer returns a container TypeID whose name and type arguments match.
func (in *Interner) FindContainer(name source.StringID, args []TypeID) (TypeID, bool) {
	if in == nil || name == source.NoStringID {
		return NoTypeID, false
	}
	for id := TypeID(1); int(id) < len(in.types); id++ {
		if in.types[id].Kind != KindContainer {
			continue
		}
		info, ok := in.ContainerInfo(id)
		if !ok || info == nil {
			continue
		}
		if info.Name != name {
			continue
		}
		if slices.Equal(info.TypeArgs, args) {
			return id, true
		}
	}
	return NoTypeID, false
}

// Iterator interns the iterator type for a container.
func (in *Interner) Iterator(container TypeID) TypeID {
	return in.Intern(MakeIterator(container))
}
