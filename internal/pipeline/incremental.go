package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lbermudezd2020/appgasolinabueno/internal/prices"
	"github.com/lbermudezd2020/appgasolinabueno/internal/store"

	"go.uber.org/zap"
)

// LoadWithCache returns the cached table when the source's mtime and size
// are unchanged since it was cached, and otherwise parses the source and
// refreshes the cache. Cache failures fall back to a full parse.
func LoadWithCache(src Source, cache *store.Cache, logger *zap.Logger) (*LoadResult, error) {
	start := time.Now()

	info, err := os.Stat(src.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", prices.ErrMissingFile, src.Path)
	}
	key := cacheKey(src)
	mtime, size := info.ModTime().UnixNano(), info.Size()

	tracked, ok, err := cache.GetTrackedSource(key)
	switch {
	case err != nil:
		logger.Warn("reading cache", zap.Error(err))
	case ok && tracked.Matches(mtime, size):
		records, err := cache.LoadRecords(key)
		if err == nil {
			result := &LoadResult{
				Table:     prices.NewTable(src.Path, records, tracked.Dropped),
				Mode:      src.Mode,
				FromCache: true,
				Elapsed:   time.Since(start),
			}
			logger.Debug("loaded price table from cache",
				zap.String("path", src.Path),
				zap.String("sheet", src.Sheet),
				zap.Int("rows", result.Table.Len()),
				zap.Time("parsed_at", tracked.ParsedAt),
			)
			return result, nil
		}
		logger.Warn("loading cached rows", zap.Error(err))
	}

	result, err := Load(src, logger)
	if err != nil {
		return nil, err
	}
	t := result.Table
	if err := cache.SaveTable(key, t.Records(), t.Dropped(), mtime, size); err != nil {
		logger.Warn("saving table to cache", zap.Error(err))
	}
	return result, nil
}

// cacheKey identifies src in the cache by absolute path, worksheet and mode.
func cacheKey(src Source) store.Key {
	path := src.Path
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return store.Key{Path: path, Sheet: src.Sheet, Mode: src.Mode}
}

func openCache(path string) (*store.Cache, error) {
	if path == "" {
		path = CachePath()
	}
	return store.Open(path)
}

// CacheDir returns the platform-appropriate cache directory.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "gasolina")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "gasolina")
}

// CachePath returns the full path to the cache database.
func CachePath() string {
	return filepath.Join(CacheDir(), "prices.db")
}
