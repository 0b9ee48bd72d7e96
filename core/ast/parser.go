package ast

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
	"github.com/tristendillon/barrel/core/logger"
	"github.com/tristendillon/barrel/core/models"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Extractor finds the exported top-level declarations of TypeScript modules.
// It is not safe for concurrent use.
type Extractor struct {
	// DefaultAliases names anonymous default exports, keyed by module RelPath.
	DefaultAliases map[string]string
	parser         *sitter.Parser
}

func NewExtractor(defaultAliases map[string]string) *Extractor {
	return &Extractor{
		DefaultAliases: defaultAliases,
		parser:         sitter.NewParser(),
	}
}

func (e *Extractor) Close() {
	e.parser.Close()
}

func languageFor(path string) *sitter.Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsx", ".jsx":
		return tsx.GetLanguage()
	default:
		return typescript.GetLanguage()
	}
}

// Extract parses module and returns its exported declarations in source
// order. Any failure is a *models.ParseError.
func (e *Extractor) Extract(module models.SourceModule) ([]models.Declaration, error) {
	src := bytes.TrimPrefix(module.Content, utf8BOM)

	e.parser.SetLanguage(languageFor(module.Path))
	tree, err := e.parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, &models.ParseError{Path: module.Path, Err: err}
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		bad := firstErrorNode(root)
		point := bad.StartPoint()
		return nil, &models.ParseError{
			Path:   module.Path,
			Line:   int(point.Row) + 1,
			Column: int(point.Column) + 1,
			Err:    fmt.Errorf("%w near %q", models.ErrSyntax, snippet(bad.Content(src))),
		}
	}

	var decls []models.Declaration
	for i := 0; i < int(root.NamedChildCount()); i++ {
		node := root.NamedChild(i)
		if node.Type() != "export_statement" {
			continue
		}
		found, err := e.exportStatement(node, src, module)
		if err != nil {
			point := node.StartPoint()
			return nil, &models.ParseError{
				Path:   module.Path,
				Line:   int(point.Row) + 1,
				Column: int(point.Column) + 1,
				Err:    err,
			}
		}
		decls = append(decls, found...)
	}

	logger.Debug("Extracted %d declarations from %s", len(decls), module.RelPath)
	return decls, nil
}

func (e *Extractor) exportStatement(node *sitter.Node, src []byte, module models.SourceModule) ([]models.Declaration, error) {
	isDefault := false
	for i := 0; i < int(node.ChildCount()); i++ {
		if node.Child(i).Type() == "default" {
			isDefault = true
			break
		}
	}

	decl := node.ChildByFieldName("declaration")
	if decl == nil {
		if !isDefault {
			// export { a } from "./x", export * from "./y", export = z
			return nil, nil
		}
		alias, ok := e.DefaultAliases[module.RelPath]
		if !ok {
			return nil, models.ErrAnonymousDefault
		}
		logger.Debug("Binding anonymous default export of %s to %s", module.RelPath, alias)
		return []models.Declaration{models.DefaultAliasDecl{Alias: alias}}, nil
	}

	d, err := declaration(decl, src, isDefault)
	if err != nil || d == nil {
		return nil, err
	}
	return []models.Declaration{d}, nil
}

func declaration(node *sitter.Node, src []byte, isDefault bool) (models.Declaration, error) {
	switch node.Type() {
	case "class_declaration", "abstract_class_declaration":
		name, err := declaredName(node, src, isDefault)
		if err != nil {
			return nil, err
		}
		return models.ClassDecl{
			Name:           name,
			Default:        isDefault,
			Abstract:       node.Type() == "abstract_class_declaration",
			TypeParameters: typeParameters(node, src),
		}, nil

	case "function_declaration", "generator_function_declaration", "function_signature":
		name, err := declaredName(node, src, isDefault)
		if err != nil {
			return nil, err
		}
		return models.FunctionDecl{
			Name:           name,
			Default:        isDefault,
			TypeParameters: typeParameters(node, src),
		}, nil

	case "interface_declaration":
		name, err := declaredName(node, src, isDefault)
		if err != nil {
			return nil, err
		}
		return models.InterfaceDecl{
			Name:           name,
			Default:        isDefault,
			TypeParameters: typeParameters(node, src),
		}, nil

	case "type_alias_declaration":
		name, err := declaredName(node, src, isDefault)
		if err != nil {
			return nil, err
		}
		return models.TypeAliasDecl{Name: name, TypeParameters: typeParameters(node, src)}, nil

	case "enum_declaration":
		name, err := declaredName(node, src, isDefault)
		if err != nil {
			return nil, err
		}
		return models.EnumDecl{Name: name, Const: hasToken(node, "const")}, nil

	case "lexical_declaration", "variable_declaration":
		return variableStatement(node, src)

	case "ambient_declaration":
		// export declare <declaration>
		for i := 0; i < int(node.NamedChildCount()); i++ {
			d, err := declaration(node.NamedChild(i), src, isDefault)
			if err != nil || d != nil {
				return d, err
			}
		}
		return nil, nil
	}

	logger.Debug("Ignoring exported %s", node.Type())
	return nil, nil
}

func declaredName(node *sitter.Node, src []byte, isDefault bool) (string, error) {
	name := node.ChildByFieldName("name")
	if name == nil {
		if isDefault {
			return "", models.ErrAnonymousDefault
		}
		return "", fmt.Errorf("%w: %s without a name", models.ErrSyntax, node.Type())
	}
	return name.Content(src), nil
}

func variableStatement(node *sitter.Node, src []byte) (models.Declaration, error) {
	v := models.VariableDecl{}
	if node.ChildCount() > 0 {
		v.Keyword = node.Child(0).Type()
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		declarator := node.NamedChild(i)
		if declarator.Type() != "variable_declarator" {
			continue
		}
		name := declarator.ChildByFieldName("name")
		if name == nil {
			return nil, fmt.Errorf("%w: declarator without a name", models.ErrSyntax)
		}
		if name.Type() != "identifier" {
			return nil, fmt.Errorf("%w: %s", models.ErrUnsupportedBinding, snippet(name.Content(src)))
		}
		v.Names = append(v.Names, name.Content(src))
	}
	if len(v.Names) == 0 {
		return nil, nil
	}
	return v, nil
}

func typeParameters(node *sitter.Node, src []byte) []string {
	params := node.ChildByFieldName("type_parameters")
	if params == nil {
		return nil
	}
	var names []string
	for i := 0; i < int(params.NamedChildCount()); i++ {
		param := params.NamedChild(i)
		if param.Type() != "type_parameter" {
			continue
		}
		name := param.ChildByFieldName("name")
		if name == nil && param.NamedChildCount() > 0 {
			name = param.NamedChild(0)
		}
		if name != nil {
			names = append(names, name.Content(src))
		}
	}
	return names
}

func hasToken(node *sitter.Node, token string) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		if node.Child(i).Type() == token {
			return true
		}
	}
	return false
}

// firstErrorNode descends into the leftmost subtree carrying an error.
func firstErrorNode(node *sitter.Node) *sitter.Node {
	if node.Type() == "ERROR" || node.IsMissing() {
		return node
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.HasError() || child.IsMissing() {
			return firstErrorNode(child)
		}
	}
	return node
}

func snippet(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 40 {
		s = s[:40] + "..."
	}
	return s
}
