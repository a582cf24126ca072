package token

var keywords = map[string]Kind{
	"if":       KwIf,
	"else":     KwElse,
	"while":    KwWhile,
	"do":       KwDo,
	"for":      KwFor,
	"return":   KwReturn,
	"break":    KwBreak,
	"continue": KwContinue,
	"switch":   KwSwitch,
	"case":     KwCase,
	"default":  KwDefault,
	"goto":     KwGoto,
	"sizeof":   KwSizeof,
	"struct":   KwStruct,
	"enum":     KwEnum,
	"const":    KwConst,
	"static":   KwStatic,
	"extern":   KwExtern,
	"unsigned": KwUnsigned,
	"signed":   KwSigned,
	"void":     KwVoid,
	"bool":     KwBool,
	"char":     KwChar,
	"short":    KwShort,
	"int":      KwInt,
	"long":     KwLong,
	"float":    KwFloat,
	"double":   KwDouble,
	"true":     KwTrue,
	"false":    KwFalse,
	"NULL":     KwNull,
}

// LookupKeyword maps an identifier spelling to its keyword kind, or Ident.
func LookupKeyword(s string) Kind {
	if k, ok := keywords[s]; ok {
		return k
	}
	return Ident
}

// IsTypeKeyword reports whether the kind starts a type specifier.
func IsTypeKeyword(k Kind) bool {
	switch k {
	case KwVoid, KwBool, KwChar, KwShort, KwInt, KwLong, KwFloat, KwDouble,
		KwUnsigned, KwSigned, KwConst, KwStruct, KwEnum:
		return true
	default:
		return false
	}
}
