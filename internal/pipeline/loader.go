// Package pipeline orchestrates price table loading, caching, model fitting
// and query evaluation.
package pipeline

import (
	"time"

	"github.com/lbermudezd2020/appgasolinabueno/internal/config"
	"github.com/lbermudezd2020/appgasolinabueno/internal/model"
	"github.com/lbermudezd2020/appgasolinabueno/internal/prices"

	"go.uber.org/zap"
)

// DefaultFile is the spreadsheet read when no source is configured.
const DefaultFile = "gasolina_mexico_completo.xlsx"

// Source describes where and how to load a price table.
type Source struct {
	Path  string
	Mode  model.Mode
	Sheet string // xlsx worksheet; empty means the first

	UseCache  bool
	CachePath string // empty means CachePath()
}

// SourceFor builds a Source from the [data] section of cfg.
func SourceFor(cfg config.Config) Source {
	return Source{
		Path:     cfg.Data.File,
		Mode:     cfg.Mode(),
		Sheet:    cfg.Data.Sheet,
		UseCache: cfg.Data.UseCache,
	}
}

// LoadOptions returns the prices options for the source's mode.
func (s Source) LoadOptions() prices.LoadOptions {
	opts := prices.OptionsFor(s.Mode)
	opts.Sheet = s.Sheet
	return opts
}

// LoadResult holds the output of the loading pipeline.
type LoadResult struct {
	Table     *prices.Table
	Mode      model.Mode
	FromCache bool
	Elapsed   time.Duration
}

// Load parses the source without consulting the cache.
func Load(src Source, logger *zap.Logger) (*LoadResult, error) {
	start := time.Now()
	table, err := prices.Load(src.Path, src.LoadOptions())
	if err != nil {
		return nil, err
	}

	result := &LoadResult{Table: table, Mode: src.Mode, Elapsed: time.Since(start)}
	if table.Dropped() > 0 {
		logger.Info("dropped incomplete rows",
			zap.String("path", src.Path),
			zap.Int("dropped", table.Dropped()),
		)
	}
	logger.Debug("parsed price source",
		zap.String("path", src.Path),
		zap.String("mode", string(src.Mode)),
		zap.Int("rows", table.Len()),
		zap.Duration("elapsed", result.Elapsed),
	)
	return result, nil
}

// LoadSource loads through the SQLite cache when src.UseCache is set. A cache
// that cannot be opened is logged and skipped.
func LoadSource(src Source, logger *zap.Logger) (*LoadResult, error) {
	if !src.UseCache {
		return Load(src, logger)
	}

	cache, err := openCache(src.CachePath)
	if err != nil {
		logger.Warn("cache unavailable, parsing source", zap.Error(err))
		return Load(src, logger)
	}
	defer func() { _ = cache.Close() }()

	return LoadWithCache(src, cache, logger)
}
