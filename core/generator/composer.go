package generator

import (
	"fmt"
	"strings"

	"github.com/tristendillon/barrel/core/models"
)

// ComposeEntry renders the statements for one module: the type import and
// its aliases first, then the value re-export. A module without exports
// renders nothing.
func ComposeEntry(entry models.BarrelEntry) []string {
	types, values := models.Partition(entry.Declarations)
	var lines []string

	if len(types) > 0 {
		names := make([]string, len(types))
		for i, d := range types {
			names[i] = specifier(d)
		}
		lines = append(lines, fmt.Sprintf("import { %s } from %q;", strings.Join(names, ", "), entry.RelPath))
		for _, d := range types {
			generic := genericList(d.TypeParameters)
			lines = append(lines, fmt.Sprintf("export type %s%s = %s%s;", d.Name, generic, d.Name, generic))
		}
	}

	if len(values) > 0 {
		names := make([]string, len(values))
		for i, d := range values {
			names[i] = specifier(d)
		}
		lines = append(lines, fmt.Sprintf("export { %s } from %q;", strings.Join(names, ", "), entry.RelPath))
	}

	return lines
}

// Compose joins the statements of every entry in visitation order with a
// single newline and no trailing newline.
func Compose(entries []models.BarrelEntry) string {
	var lines []string
	for _, entry := range entries {
		lines = append(lines, ComposeEntry(entry)...)
	}
	return strings.Join(lines, "\n")
}

// Conflicts lists names the barrel would bind twice: a name exported by
// more than one module, or a type and a value of the same name merged in
// one module.
func Conflicts(entries []models.BarrelEntry) []string {
	var conflicts []string
	owners := make(map[string]string)
	for _, entry := range entries {
		kinds := make(map[string]bool)
		for _, d := range entry.Declarations {
			if isType, ok := kinds[d.Name]; ok {
				if isType != d.IsType {
					conflicts = append(conflicts, fmt.Sprintf("%s is both a type and a value in %s", d.Name, entry.RelPath))
				}
				continue
			}
			kinds[d.Name] = d.IsType

			if prev, ok := owners[d.Name]; ok && prev != entry.RelPath {
				conflicts = append(conflicts, fmt.Sprintf("%s is exported by both %s and %s", d.Name, prev, entry.RelPath))
				continue
			}
			owners[d.Name] = entry.RelPath
		}
	}
	return conflicts
}

func specifier(d models.ExportDeclaration) string {
	if d.IsDefault {
		return "default as " + d.Name
	}
	return d.Name
}

func genericList(params []string) string {
	if len(params) == 0 {
		return ""
	}
	return "<" + strings.Join(params, ", ") + ">"
}
