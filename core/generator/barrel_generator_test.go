package generator

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/tristendillon/barrel/core/cache"
	"github.com/tristendillon/barrel/core/config"
	"github.com/tristendillon/barrel/core/models"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
}

func testConfig(root string) *config.Config {
	cfg := config.Default()
	cfg.Root = root
	cfg.Ordering = config.OrderLexical
	return cfg
}

func generate(t *testing.T, cfg *config.Config) string {
	t.Helper()
	if _, err := NewBarrelGenerator(cfg).Generate(); err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	data, err := os.ReadFile(cfg.OutputPath())
	if err != nil {
		t.Fatalf("read barrel: %v", err)
	}
	return string(data)
}

func TestGenerateOutputs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		files map[string]string
		want  string
	}{
		{
			name:  "type export round trip",
			files: map[string]string{"shapes.ts": "export interface Box<T> { value: T }"},
			want:  "import { Box } from \"./shapes\";\nexport type Box<T> = Box<T>;",
		},
		{
			name:  "value export aggregation",
			files: map[string]string{"util.ts": "export function add(a,b){}\nexport default class Logger{}"},
			want:  "export { add, default as Logger } from \"./util\";",
		},
		{
			name:  "recursive inclusion",
			files: map[string]string{"widgets/button.ts": "export class Button{}"},
			want:  "export { Button } from \"./widgets/button\";",
		},
		{
			name: "mixed module",
			files: map[string]string{"view.ts": `export function render() {}
export interface Props { title: string }
`},
			want: "import { Props } from \"./view\";\nexport type Props = Props;\nexport { render } from \"./view\";",
		},
		{
			name: "zero-export modules produce zero lines",
			files: map[string]string{
				"a.ts": "const local = 1;\nfunction helper() {}",
				"b.ts": "export const b = 2;",
				"c.ts": "",
			},
			want: "export { b } from \"./b\";",
		},
		{
			name: "depth-first visitation order",
			files: map[string]string{
				"a.ts":     "export const a = 1;",
				"m/x.ts":   "export const x = 1;",
				"m/n/y.ts": "export type Y = string;",
				"z.ts":     "export enum Z { One }",
			},
			want: "export { a } from \"./a\";\n" +
				"export { x } from \"./m/x\";\n" +
				"import { Y } from \"./m/n/y\";\nexport type Y = Y;\n" +
				"export { Z } from \"./z\";",
		},
		{
			name:  "empty tree writes an empty barrel",
			files: map[string]string{},
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			root := t.TempDir()
			writeTree(t, root, tt.files)
			if got := generate(t, testConfig(root)); got != tt.want {
				t.Errorf("barrel =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestGenerateIsDeterministicAndSelfExcluding(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"index.ts":       "export const stale = 1;",
		"api/index.ts":   "export const nested = 1;",
		"api/client.ts":  "export class Client {}",
		"models/user.ts": "export interface User { id: string }",
	})
	cfg := testConfig(root)

	first := generate(t, cfg)
	second := generate(t, cfg)
	if first != second {
		t.Fatalf("passes differ:\n%s\n---\n%s", first, second)
	}
	want := "export { Client } from \"./api/client\";\nimport { User } from \"./models/user\";\nexport type User = User;"
	if first != want {
		t.Errorf("barrel =\n%s\nwant\n%s", first, want)
	}
}

func TestGenerateAbortsOnParseError(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"index.ts":  "previous",
		"good.ts":   "export const good = 1;",
		"broken.ts": "export class Broken {",
	})

	_, err := NewBarrelGenerator(testConfig(root)).Generate()
	var parseErr *models.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("Generate() error = %v, want *models.ParseError", err)
	}
	if filepath.Base(parseErr.Path) != "broken.ts" {
		t.Errorf("ParseError.Path = %q", parseErr.Path)
	}

	data, err := os.ReadFile(filepath.Join(root, "index.ts"))
	if err != nil {
		t.Fatalf("read barrel: %v", err)
	}
	if string(data) != "previous" {
		t.Errorf("barrel was rewritten after a failed pass: %q", data)
	}
}

func TestGenerateSkipPolicy(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"good.ts":   "export const good = 1;",
		"broken.ts": "export class Broken {",
		"anon.ts":   "export default 42;",
	})
	cfg := testConfig(root)
	cfg.OnParseError = config.ParseSkip

	result, err := NewBarrelGenerator(cfg).Generate()
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if !slices.Equal(result.Skipped, []string{"./anon", "./broken"}) {
		t.Errorf("Skipped = %v", result.Skipped)
	}
	if result.Modules != 3 || result.Contributing != 1 || result.Declarations != 1 {
		t.Errorf("result = %+v", result)
	}
	if result.Text != "export { good } from \"./good\";" {
		t.Errorf("Text = %q", result.Text)
	}
}

func TestGenerateDefaultAlias(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{"settings.ts": "export default { port: 80 };"})
	cfg := testConfig(root)
	cfg.DefaultAliases = map[string]string{"./settings": "settings"}

	if got := generate(t, cfg); got != "export { default as settings } from \"./settings\";" {
		t.Errorf("barrel = %q", got)
	}
}

func TestGenerateScanError(t *testing.T) {
	t.Parallel()

	err := Generate(filepath.Join(t.TempDir(), "missing"))
	var scanErr *models.ScanError
	if !errors.As(err, &scanErr) {
		t.Fatalf("Generate() error = %v, want *models.ScanError", err)
	}
}

func TestGenerateScanErrorMidWalkKeepsBarrel(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"index.ts": "previous",
		"a.ts":     "export const a = 1;",
		"sub/b.ts": "export const b = 1;",
	})
	dangling := filepath.Join(root, "sub", "c.ts")
	if err := os.Symlink(filepath.Join(root, "gone.ts"), dangling); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	_, err := NewBarrelGenerator(testConfig(root)).Generate()
	var scanErr *models.ScanError
	if !errors.As(err, &scanErr) {
		t.Fatalf("Generate() error = %v, want *models.ScanError", err)
	}
	if scanErr.Path != dangling {
		t.Errorf("ScanError.Path = %q, want %q", scanErr.Path, dangling)
	}

	data, err := os.ReadFile(filepath.Join(root, "index.ts"))
	if err != nil {
		t.Fatalf("read barrel: %v", err)
	}
	if string(data) != "previous" {
		t.Errorf("barrel was rewritten after a failed scan: %q", data)
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".index.ts.") {
			t.Errorf("temporary file %s left behind", e.Name())
		}
	}
}

func TestGenerateWriteError(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.ts": "export const a = 1;", "index.ts/keep": ""})

	_, err := NewBarrelGenerator(testConfig(root)).Generate()
	var writeErr *models.WriteError
	if !errors.As(err, &writeErr) {
		t.Fatalf("Generate() error = %v, want *models.WriteError", err)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if e.Name() != "a.ts" && e.Name() != "index.ts" {
			t.Errorf("leftover file %s", e.Name())
		}
	}
}

func TestRenderDoesNotWrite(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.ts": "export const a = 1;"})

	result, err := NewBarrelGenerator(testConfig(root)).Render()
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if result.Text != "export { a } from \"./a\";" {
		t.Errorf("Text = %q", result.Text)
	}
	if _, err := os.Stat(filepath.Join(root, "index.ts")); !os.IsNotExist(err) {
		t.Errorf("Render() created the barrel file: %v", err)
	}
}

func TestGenerateRecordsContent(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.ts": "export const a = 1;"})

	cc, err := cache.NewContentCache(10)
	if err != nil {
		t.Fatalf("NewContentCache() error: %v", err)
	}
	bg := NewBarrelGenerator(testConfig(root))
	bg.Cache = cc
	if _, err := bg.Generate(); err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	changed, err := cc.Changed(filepath.Join(root, "a.ts"))
	if err != nil || changed {
		t.Errorf("Changed() = %v, %v; want false after a pass", changed, err)
	}
}
