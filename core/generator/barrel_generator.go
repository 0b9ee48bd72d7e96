package generator

import (
	"errors"
	"fmt"
	"time"

	"github.com/tristendillon/barrel/core/ast"
	"github.com/tristendillon/barrel/core/cache"
	"github.com/tristendillon/barrel/core/config"
	"github.com/tristendillon/barrel/core/logger"
	"github.com/tristendillon/barrel/core/models"
	"github.com/tristendillon/barrel/core/walker"
)

// Result summarises one generation pass.
type Result struct {
	OutputPath   string
	Text         string
	Modules      int
	Contributing int
	Declarations int
	Skipped      []string
	Duration     time.Duration
	// Conflicts lists names the barrel binds twice.
	Conflicts []string
}

// BarrelGenerator runs scan, extract, compose and write as one synchronous
// pass. Callers must not run two passes over the same root concurrently.
type BarrelGenerator struct {
	cfg *config.Config
	// Cache, when set, records the content hash of every scanned module.
	Cache *cache.ContentCache
}

func NewBarrelGenerator(cfg *config.Config) *BarrelGenerator {
	return &BarrelGenerator{cfg: cfg}
}

// Generate writes <root>/index.<ext> with default settings.
func Generate(root string) error {
	cfg := config.Default()
	cfg.Root = root
	_, err := NewBarrelGenerator(cfg).Generate()
	return err
}

// Generate renders the barrel and overwrites the output file. Nothing is
// written when scanning or parsing fails.
func (bg *BarrelGenerator) Generate() (*Result, error) {
	result, err := bg.Render()
	if err != nil {
		return nil, err
	}

	if err := WriteBarrel(result.OutputPath, result.Text); err != nil {
		return nil, fmt.Errorf("failed to write barrel: %w", err)
	}

	logger.Info("Generated %s: %d declarations from %d of %d modules in %v",
		result.OutputPath, result.Declarations, result.Contributing, result.Modules, result.Duration.Round(time.Millisecond))
	return result, nil
}

// Render computes the barrel text without touching the output file.
func (bg *BarrelGenerator) Render() (*Result, error) {
	if err := bg.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	start := time.Now()
	result := &Result{OutputPath: bg.cfg.OutputPath()}

	sourceWalker := walker.NewSourceWalker(bg.cfg.Root, walker.Options{
		Reserved: bg.cfg.OutputName(),
		Ordering: bg.cfg.Ordering,
		Exclude:  bg.cfg.Exclude,
	})
	extractor := ast.NewExtractor(bg.cfg.DefaultAliases)
	defer extractor.Close()

	var entries []models.BarrelEntry
	for module, err := range sourceWalker.Walk() {
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", bg.cfg.Root, err)
		}
		result.Modules++
		if bg.Cache != nil {
			bg.Cache.Record(module.Path, module.Content)
		}

		decls, err := extractor.Extract(module)
		if err != nil {
			var parseErr *models.ParseError
			if bg.cfg.OnParseError == config.ParseSkip && errors.As(err, &parseErr) {
				logger.Warn("Skipping %s: %v", module.RelPath, err)
				result.Skipped = append(result.Skipped, module.RelPath)
				continue
			}
			return nil, fmt.Errorf("failed to extract exports: %w", err)
		}

		exports := models.ExportsOf(decls)
		if len(exports) == 0 {
			logger.Debug("No exports in %s", module.RelPath)
			continue
		}
		result.Contributing++
		result.Declarations += len(exports)
		entries = append(entries, models.BarrelEntry{RelPath: module.RelPath, Declarations: exports})
	}

	result.Conflicts = Conflicts(entries)
	for _, conflict := range result.Conflicts {
		logger.Warn("%s; the barrel will not compile", conflict)
	}
	result.Text = Compose(entries)
	result.Duration = time.Since(start)
	return result, nil
}
