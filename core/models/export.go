package models

// DeclarationKind identifies one of the six top-level declaration forms the
// extractor recognises.
type DeclarationKind int

const (
	KindClass DeclarationKind = iota
	KindFunction
	KindInterface
	KindTypeAlias
	KindEnum
	KindVariable
)

func (k DeclarationKind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindFunction:
		return "function"
	case KindInterface:
		return "interface"
	case KindTypeAlias:
		return "type-alias"
	case KindEnum:
		return "enum"
	case KindVariable:
		return "variable"
	default:
		return "unknown"
	}
}

// KindInfo describes how a declaration kind is named and re-exported.
type KindInfo struct {
	// IsType marks constructs that only exist in the type system and must be
	// forwarded through an import plus a type alias.
	IsType bool
	// NameFromDeclarator is set when the bound name comes from the statement's
	// declarators rather than the declaration itself.
	NameFromDeclarator bool
}

var kindTable = [...]KindInfo{
	KindClass:     {IsType: false},
	KindFunction:  {IsType: false},
	KindInterface: {IsType: true},
	KindTypeAlias: {IsType: true},
	KindEnum:      {IsType: false},
	KindVariable:  {IsType: false, NameFromDeclarator: true},
}

// KindInfoFor returns the table entry for kind. Unknown kinds are value-level.
func KindInfoFor(kind DeclarationKind) KindInfo {
	if kind < 0 || int(kind) >= len(kindTable) {
		return KindInfo{}
	}
	return kindTable[kind]
}

// ExportDeclaration is one exported binding of a module as the composer sees it.
type ExportDeclaration struct {
	Name           string
	Kind           DeclarationKind
	IsType         bool
	IsDefault      bool
	TypeParameters []string
}

func newExport(name string, kind DeclarationKind, isDefault bool, typeParams []string) ExportDeclaration {
	return ExportDeclaration{
		Name:           name,
		Kind:           kind,
		IsType:         KindInfoFor(kind).IsType,
		IsDefault:      isDefault,
		TypeParameters: typeParams,
	}
}

// Partition splits decls into type-level and value-level declarations while
// keeping their relative order.
func Partition(decls []ExportDeclaration) (types, values []ExportDeclaration) {
	for _, d := range decls {
		if d.IsType {
			types = append(types, d)
		} else {
			values = append(values, d)
		}
	}
	return types, values
}
