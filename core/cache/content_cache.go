package cache

import (
	"crypto/md5"
	"fmt"
	"os"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/tristendillon/barrel/core/logger"
)

const defaultMaxEntries = 1000

// ContentEntry is the last known content state of a module.
type ContentEntry struct {
	FilePath    string
	ContentHash string
	Size        int64
	RecordedAt  time.Time
}

type CacheStats struct {
	TotalFiles int
	Hits       int64
	Misses     int64
	HitRate    float64
}

// ContentCache remembers module content hashes between generation passes so
// the watcher can tell real edits from metadata-only events. It never holds
// module text or declarations.
type ContentCache struct {
	entries *lru.Cache[string, ContentEntry]
	mutex   sync.Mutex
	hits    int64
	misses  int64
}

func NewContentCache(maxEntries int) (*ContentCache, error) {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	entries, err := lru.New[string, ContentEntry](maxEntries)
	if err != nil {
		return nil, fmt.Errorf("failed to create content cache: %w", err)
	}
	logger.Debug("Created content cache with MaxEntries=%d", maxEntries)
	return &ContentCache{entries: entries}, nil
}

// Record stores the hash of content as the current state of filePath.
func (cc *ContentCache) Record(filePath string, content []byte) {
	cc.entries.Add(filePath, ContentEntry{
		FilePath:    filePath,
		ContentHash: hashContent(content),
		Size:        int64(len(content)),
		RecordedAt:  time.Now(),
	})
}

// Changed reports whether filePath differs from its recorded state. Files
// that were never recorded, or were evicted, count as changed, as do
// recorded files that no longer exist.
func (cc *ContentCache) Changed(filePath string) (bool, error) {
	entry, known := cc.entries.Get(filePath)

	content, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			if known {
				logger.Debug("ContentCache: File deleted: %s", filePath)
				cc.entries.Remove(filePath)
			}
			cc.count(!known)
			return known, nil
		}
		return false, fmt.Errorf("failed to read %s: %w", filePath, err)
	}

	if !known {
		logger.Debug("ContentCache: New file detected: %s", filePath)
		cc.count(false)
		return true, nil
	}

	if int64(len(content)) == entry.Size && hashContent(content) == entry.ContentHash {
		logger.Debug("ContentCache: Content unchanged for %s", filePath)
		cc.count(true)
		return false, nil
	}

	logger.Debug("ContentCache: Content changed for %s", filePath)
	cc.count(false)
	return true, nil
}

func (cc *ContentCache) Remove(filePath string) {
	cc.entries.Remove(filePath)
}

func (cc *ContentCache) Clear() {
	cc.entries.Purge()
	cc.mutex.Lock()
	defer cc.mutex.Unlock()
	cc.hits = 0
	cc.misses = 0
	logger.Debug("ContentCache: Cleared all entries")
}

func (cc *ContentCache) GetStats() CacheStats {
	cc.mutex.Lock()
	defer cc.mutex.Unlock()

	stats := CacheStats{
		TotalFiles: cc.entries.Len(),
		Hits:       cc.hits,
		Misses:     cc.misses,
	}
	if total := cc.hits + cc.misses; total > 0 {
		stats.HitRate = float64(cc.hits) / float64(total) * 100
	}
	return stats
}

func (cc *ContentCache) LogStats() {
	stats := cc.GetStats()
	logger.Debug("Cache stats: Hits=%d, Misses=%d, Hit Rate=%.1f%%, Total Entries=%d",
		stats.Hits, stats.Misses, stats.HitRate, stats.TotalFiles)
}

func (cc *ContentCache) count(hit bool) {
	cc.mutex.Lock()
	defer cc.mutex.Unlock()
	if hit {
		cc.hits++
	} else {
		cc.misses++
	}
}

func hashContent(content []byte) string {
	return fmt.Sprintf("%x", md5.Sum(content))
}
