package types

import (
	"fmt"

	"fortio.org/safecast"

	"vigil/internal/source"
)

// Builtins stores TypeIDs for the primitive C types.
type Builtins struct {
	Invalid   TypeID
	Void      TypeID
	Bool      TypeID
	Char      TypeID
	SChar     TypeID
	UChar     TypeID
	Short     TypeID
	UShort    TypeID
	Int       TypeID
	UInt      TypeID
	Long      TypeID
	ULong     TypeID
	LongLong  TypeID
	ULongLong TypeID
	Float     TypeID
	Double    TypeID
}

// Interner provides stable TypeIDs by hashing structural descriptors.
type Interner struct {
	types      []Type
	index      map[typeKey]TypeID
	builtins   Builtins
	structs    []StructInfo
	enums      []EnumInfo
	containers []ContainerInfo
}

// NewInterner constructs an interner seeded with built-in primitives.
func NewInterner() *Interner {
	in := &Interner{
		index: make(map[typeKey]TypeID, 64),
	}
	in.structs = append(in.structs, StructInfo{}) // reserve 0 as invalid sentinel
	in.enums = append(in.enums, EnumInfo{})
	in.containers = append(in.containers, ContainerInfo{})
	in.builtins.Invalid = in.internRaw(Type{Kind: KindInvalid})
	in.builtins.Void = in.Intern(Type{Kind: KindVoid})
	in.builtins.Bool = in.Intern(Type{Kind: KindBool, Rank: RankBool})
	in.builtins.Char = in.Intern(MakeChar())
	in.builtins.SChar = in.Intern(MakeInt(RankChar))
	in.builtins.UChar = in.Intern(MakeUint(RankChar))
	in.builtins.Short = in.Intern(MakeInt(RankShort))
	in.builtins.UShort = in.Intern(MakeUint(RankShort))
	in.builtins.Int = in.Intern(MakeInt(RankInt))
	in.builtins.UInt = in.Intern(MakeUint(RankInt))
	in.builtins.Long = in.Intern(MakeInt(RankLong))
	in.builtins.ULong = in.Intern(MakeUint(RankLong))
	in.builtins.LongLong = in.Intern(MakeInt(RankLongLong))
	in.builtins.ULongLong = in.Intern(MakeUint(RankLongLong))
	in.builtins.Float = in.Intern(MakeFloat(RankFloat))
	in.builtins.Double = in.Intern(MakeFloat(RankDouble))
	return in
}

// Builtins returns TypeIDs for primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	key := typeKey(t)
	if id, ok := in.index[key]; ok {
		return id
	}
	return in.internRaw(t)
}

// internRaw adds the descriptor to the storage without consulting the map.
func (in *Interner) internRaw(t Type) TypeID {
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(lenTypes)
	in.types = append(in.types, t)
	key := typeKey(t)
	in.index[key] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// Pointer interns a pointer to elem.
func (in *Interner) Pointer(elem TypeID) TypeID {
	return in.Intern(MakePointer(elem))
}

// StructField describes one named member of a struct.
type StructField struct {
	Name source.StringID
	Type TypeID
}

// StructInfo carries the declared shape of a struct type.
type StructInfo struct {
	Name   source.StringID
	Fields []StructField
}

// NewStruct interns a fresh struct type with the given info.
func (in *Interner) NewStruct(info StructInfo) TypeID {
	payload, err := safecast.Conv[uint32](len(in.structs))
	if err != nil {
		panic(fmt.Errorf("len(structs) overflow: %w", err))
	}
	in.structs = append(in.structs, info)
	return in.internRaw(Type{Kind: KindStruct, Payload: payload})
}

// StructInfo returns the info record for a struct TypeID.
func (in *Interner) StructInfo(id TypeID) (*StructInfo, bool) {
	t, ok := in.Lookup(id)
	if !ok || t.Kind != KindStruct || int(t.Payload) >= len(in.structs) {
		return nil, false
	}
	return &in.structs[t.Payload], true
}

// FieldType resolves a struct member by name.
func (in *Interner) FieldType(id TypeID, name source.StringID) (TypeID, bool) {
	info, ok := in.StructInfo(id)
	if !ok {
		return NoTypeID, false
	}
	for _, f := range info.Fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return NoTypeID, false
}

// EnumInfo carries the declared name of an enum type.
type EnumInfo struct {
	Name source.StringID
}

// NewEnum interns a fresh enum type.
func (in *Interner) NewEnum(info EnumInfo) TypeID {
	payload, err := safecast.Conv[uint32](len(in.enums))
	if err != nil {
		panic(fmt.Errorf("len(enums) overflow: %w", err))
	}
	in.enums = append(in.enums, info)
	return in.internRaw(Type{Kind: KindEnum, Rank: RankInt, Payload: payload})
}

// EnumInfo returns the info record for an enum TypeID.
func (in *Interner) EnumInfo(id TypeID) (*EnumInfo, bool) {
	t, ok := in.Lookup(id)
	if !ok || t.Kind != KindEnum || int(t.Payload) >= len(in.enums) {
		return nil, false
	}
	return &in.enums[t.Payload], true
}

type typeKey struct {
	Kind    Kind
	Rank    Rank
	Elem    TypeID
	Count   uint32
	Payload uint32
	Const   bool
}
