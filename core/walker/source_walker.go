package walker

import (
	"errors"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/tristendillon/barrel/core/config"
	"github.com/tristendillon/barrel/core/logger"
	"github.com/tristendillon/barrel/core/models"
)

var errWalked = errors.New("source walker already consumed")

type Options struct {
	// Reserved is the barrel file name skipped in every directory.
	Reserved string
	Ordering config.Ordering
	// Exclude holds doublestar globs matched against root-relative slash paths.
	Exclude []string
}

// SourceWalker enumerates the modules under a root directory depth-first.
type SourceWalker struct {
	root   string
	opts   Options
	walked bool
}

func NewSourceWalker(root string, opts Options) *SourceWalker {
	return &SourceWalker{root: root, opts: opts}
}

// Walk returns a single-use sequence of modules. Iteration stops after the
// first *models.ScanError; a second call yields errWalked.
func (w *SourceWalker) Walk() iter.Seq2[models.SourceModule, error] {
	return func(yield func(models.SourceModule, error) bool) {
		if w.walked {
			yield(models.SourceModule{}, &models.ScanError{Path: w.root, Err: errWalked})
			return
		}
		w.walked = true

		root, err := filepath.Abs(w.root)
		if err != nil {
			yield(models.SourceModule{}, &models.ScanError{Path: w.root, Err: err})
			return
		}
		info, err := os.Stat(root)
		if err != nil {
			yield(models.SourceModule{}, &models.ScanError{Path: root, Err: err})
			return
		}
		if !info.IsDir() {
			yield(models.SourceModule{}, &models.ScanError{Path: root, Err: errors.New("not a directory")})
			return
		}

		w.walkDir(root, root, yield)
	}
}

// walkDir reports false once the consumer stopped or an error was yielded.
func (w *SourceWalker) walkDir(root, dir string, yield func(models.SourceModule, error) bool) bool {
	names, err := w.readDirNames(dir)
	if err != nil {
		yield(models.SourceModule{}, &models.ScanError{Path: dir, Err: err})
		return false
	}

	for _, name := range names {
		if name == w.opts.Reserved {
			continue
		}
		path := filepath.Join(dir, name)
		relPath, err := filepath.Rel(root, path)
		if err != nil {
			yield(models.SourceModule{}, &models.ScanError{Path: path, Err: err})
			return false
		}
		if w.isExcluded(relPath) {
			logger.Debug("Excluding %s", relPath)
			continue
		}

		info, err := os.Stat(path)
		if err != nil {
			yield(models.SourceModule{}, &models.ScanError{Path: path, Err: err})
			return false
		}

		if info.IsDir() {
			if !w.walkDir(root, path, yield) {
				return false
			}
			continue
		}
		if !info.Mode().IsRegular() {
			logger.Debug("Skipping non-regular file %s", relPath)
			continue
		}

		content, err := os.ReadFile(path)
		if err != nil {
			yield(models.SourceModule{}, &models.ScanError{Path: path, Err: err})
			return false
		}

		module := models.SourceModule{
			Path:    path,
			RelPath: ModulePath(relPath),
			Content: content,
		}
		logger.Debug("Discovered module: %s", module.RelPath)
		if !yield(module, nil) {
			return false
		}
	}
	return true
}

func (w *SourceWalker) readDirNames(dir string) ([]string, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// (*os.File).Readdirnames keeps the order the filesystem returns.
	names, err := f.Readdirnames(-1)
	if err != nil {
		return nil, err
	}
	if w.opts.Ordering == config.OrderLexical {
		slices.Sort(names)
	}
	return names, nil
}

func (w *SourceWalker) isExcluded(relPath string) bool {
	normalized := filepath.ToSlash(relPath)
	for _, pattern := range w.opts.Exclude {
		if matched, err := doublestar.Match(pattern, normalized); err == nil && matched {
			return true
		}
	}
	return false
}

// ModulePath turns a root-relative file path into the barrel import
// specifier: forward slashes, last extension removed, "./" prefix.
func ModulePath(relPath string) string {
	slashed := filepath.ToSlash(relPath)
	base := slashed[strings.LastIndex(slashed, "/")+1:]
	if dot := strings.LastIndex(base, "."); dot >= 0 && dot < len(base)-1 {
		slashed = slashed[:len(slashed)-len(base)+dot]
	}
	return "./" + slashed
}
