package generator

import (
	"slices"
	"testing"

	"github.com/tristendillon/barrel/core/models"
)

func TestComposeEntry(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		entry models.BarrelEntry
		want  []string
	}{
		{
			name:  "no declarations",
			entry: models.BarrelEntry{RelPath: "./empty"},
			want:  nil,
		},
		{
			name: "types keep generic lists",
			entry: models.BarrelEntry{RelPath: "./shapes", Declarations: []models.ExportDeclaration{
				{Name: "Box", Kind: models.KindInterface, IsType: true, TypeParameters: []string{"T"}},
				{Name: "Pair", Kind: models.KindTypeAlias, IsType: true, TypeParameters: []string{"K", "V"}},
				{Name: "Id", Kind: models.KindTypeAlias, IsType: true},
			}},
			want: []string{
				`import { Box, Pair, Id } from "./shapes";`,
				`export type Box<T> = Box<T>;`,
				`export type Pair<K, V> = Pair<K, V>;`,
				`export type Id = Id;`,
			},
		},
		{
			name: "default type is imported by name",
			entry: models.BarrelEntry{RelPath: "./props", Declarations: []models.ExportDeclaration{
				{Name: "Props", Kind: models.KindInterface, IsType: true, IsDefault: true},
			}},
			want: []string{
				`import { default as Props } from "./props";`,
				`export type Props = Props;`,
			},
		},
		{
			name: "types precede values",
			entry: models.BarrelEntry{RelPath: "./mixed", Declarations: []models.ExportDeclaration{
				{Name: "render", Kind: models.KindFunction},
				{Name: "Props", Kind: models.KindInterface, IsType: true},
				{Name: "View", Kind: models.KindClass, IsDefault: true},
			}},
			want: []string{
				`import { Props } from "./mixed";`,
				`export type Props = Props;`,
				`export { render, default as View } from "./mixed";`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ComposeEntry(tt.entry); !slices.Equal(got, tt.want) {
				t.Errorf("ComposeEntry() = %q\nwant %q", got, tt.want)
			}
		})
	}
}

func TestComposeJoinsWithoutTrailingNewline(t *testing.T) {
	t.Parallel()

	entries := []models.BarrelEntry{
		{RelPath: "./a", Declarations: []models.ExportDeclaration{{Name: "a", Kind: models.KindVariable}}},
		{RelPath: "./empty"},
		{RelPath: "./b", Declarations: []models.ExportDeclaration{{Name: "B", Kind: models.KindEnum}}},
	}
	want := "export { a } from \"./a\";\nexport { B } from \"./b\";"
	if got := Compose(entries); got != want {
		t.Errorf("Compose() = %q, want %q", got, want)
	}
	if got := Compose(nil); got != "" {
		t.Errorf("Compose(nil) = %q, want empty", got)
	}
}

func TestConflicts(t *testing.T) {
	t.Parallel()

	entries := []models.BarrelEntry{
		{RelPath: "./foo", Declarations: []models.ExportDeclaration{
			{Name: "Foo", Kind: models.KindInterface, IsType: true},
			{Name: "Foo", Kind: models.KindClass},
			{Name: "make", Kind: models.KindFunction},
		}},
		{RelPath: "./bar", Declarations: []models.ExportDeclaration{
			{Name: "make", Kind: models.KindFunction},
			{Name: "Bar", Kind: models.KindEnum},
		}},
	}
	want := []string{
		"Foo is both a type and a value in ./foo",
		"make is exported by both ./foo and ./bar",
	}
	if got := Conflicts(entries); !slices.Equal(got, want) {
		t.Errorf("Conflicts() = %q\nwant %q", got, want)
	}
}

func TestConflictsFromMergedDeclarations(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{"foo.ts": "export interface Foo { id: string }\nexport class Foo {}"})

	result, err := NewBarrelGenerator(testConfig(root)).Render()
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	want := "import { Foo } from \"./foo\";\nexport type Foo = Foo;\nexport { Foo } from \"./foo\";"
	if result.Text != want {
		t.Errorf("Text = %q, want %q", result.Text, want)
	}
	if !slices.Equal(result.Conflicts, []string{"Foo is both a type and a value in ./foo"}) {
		t.Errorf("Conflicts = %q", result.Conflicts)
	}
}
