package models

// Declaration is one exported top-level statement. The set of implementations
// is closed: ClassDecl, FunctionDecl, InterfaceDecl, TypeAliasDecl, EnumDecl
// and VariableDecl.
type Declaration interface {
	Kind() DeclarationKind
	// Exports returns the bindings this statement contributes to the barrel.
	Exports() []ExportDeclaration
	declaration()
}

type ClassDecl struct {
	Name           string
	Default        bool
	Abstract       bool
	TypeParameters []string
}

type FunctionDecl struct {
	Name           string
	Default        bool
	TypeParameters []string
}

type InterfaceDecl struct {
	Name           string
	Default        bool
	TypeParameters []string
}

type TypeAliasDecl struct {
	Name           string
	TypeParameters []string
}

type EnumDecl struct {
	Name  string
	Const bool
}

// VariableDecl is a const/let/var statement. Every declarator name is exported.
type VariableDecl struct {
	Keyword string
	Names   []string
}

// DefaultAliasDecl stands in for an anonymous default export that the
// configuration bound to an explicit name.
type DefaultAliasDecl struct {
	Alias string
}

func (ClassDecl) declaration()        {}
func (FunctionDecl) declaration()     {}
func (InterfaceDecl) declaration()    {}
func (TypeAliasDecl) declaration()    {}
func (EnumDecl) declaration()         {}
func (VariableDecl) declaration()     {}
func (DefaultAliasDecl) declaration() {}

func (ClassDecl) Kind() DeclarationKind        { return KindClass }
func (FunctionDecl) Kind() DeclarationKind     { return KindFunction }
func (InterfaceDecl) Kind() DeclarationKind    { return KindInterface }
func (TypeAliasDecl) Kind() DeclarationKind    { return KindTypeAlias }
func (EnumDecl) Kind() DeclarationKind         { return KindEnum }
func (VariableDecl) Kind() DeclarationKind     { return KindVariable }
func (DefaultAliasDecl) Kind() DeclarationKind { return KindVariable }

func (d ClassDecl) Exports() []ExportDeclaration {
	return []ExportDeclaration{newExport(d.Name, KindClass, d.Default, d.TypeParameters)}
}

func (d FunctionDecl) Exports() []ExportDeclaration {
	return []ExportDeclaration{newExport(d.Name, KindFunction, d.Default, d.TypeParameters)}
}

func (d InterfaceDecl) Exports() []ExportDeclaration {
	return []ExportDeclaration{newExport(d.Name, KindInterface, d.Default, d.TypeParameters)}
}

func (d TypeAliasDecl) Exports() []ExportDeclaration {
	return []ExportDeclaration{newExport(d.Name, KindTypeAlias, false, d.TypeParameters)}
}

func (d EnumDecl) Exports() []ExportDeclaration {
	return []ExportDeclaration{newExport(d.Name, KindEnum, false, nil)}
}

func (d VariableDecl) Exports() []ExportDeclaration {
	out := make([]ExportDeclaration, 0, len(d.Names))
	for _, name := range d.Names {
		out = append(out, newExport(name, KindVariable, false, nil))
	}
	return out
}

func (d DefaultAliasDecl) Exports() []ExportDeclaration {
	return []ExportDeclaration{newExport(d.Alias, KindVariable, true, nil)}
}

// ExportsOf flattens decls into export bindings, dropping repeated
// (name, type-level) pairs such as function overload signatures.
func ExportsOf(decls []Declaration) []ExportDeclaration {
	type key struct {
		name   string
		isType bool
	}
	seen := make(map[key]bool)
	var out []ExportDeclaration
	for _, d := range decls {
		for _, e := range d.Exports() {
			k := key{e.Name, e.IsType}
			if seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, e)
		}
	}
	return out
}
