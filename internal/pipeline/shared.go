package pipeline

import (
	"sync"

	"github.com/lbermudezd2020/appgasolinabueno/internal/estimator"
	"github.com/lbermudezd2020/appgasolinabueno/internal/model"
	"github.com/lbermudezd2020/appgasolinabueno/internal/prices"

	"go.uber.org/zap"
)

// Shared is the process-wide price table and fitted model. The table is
// loaded on first access and the model fitted on first use; both are
// read-only afterwards and safe for concurrent readers.
type Shared struct {
	src    Source
	logger *zap.Logger

	loadOnce sync.Once
	result   *LoadResult
	loadErr  error

	fitOnce sync.Once
	model   *estimator.Model
	fitErr  error
}

// NewShared returns a Shared that loads src lazily.
func NewShared(src Source, logger *zap.Logger) *Shared {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Shared{src: src, logger: logger}
}

// SharedFromTable wraps an already loaded table.
func SharedFromTable(t *prices.Table, mode model.Mode) *Shared {
	s := &Shared{
		src:    Source{Path: t.Path(), Mode: mode},
		logger: zap.NewNop(),
		result: &LoadResult{Table: t, Mode: mode},
	}
	s.loadOnce.Do(func() {})
	return s
}

// Mode returns the dashboard mode of the source.
func (s *Shared) Mode() model.Mode { return s.src.Mode }

// Source returns the load configuration.
func (s *Shared) Source() Source { return s.src }

// Result returns the load result, loading on first call.
func (s *Shared) Result() (*LoadResult, error) {
	s.loadOnce.Do(func() {
		s.result, s.loadErr = LoadSource(s.src, s.logger)
	})
	return s.result, s.loadErr
}

// Table returns the loaded table.
func (s *Shared) Table() (*prices.Table, error) {
	r, err := s.Result()
	if err != nil {
		return nil, err
	}
	return r.Table, nil
}

// Model returns the model fitted on the table, fitting on first call.
func (s *Shared) Model() (*estimator.Model, error) {
	s.fitOnce.Do(func() {
		t, err := s.Table()
		if err != nil {
			s.fitErr = err
			return
		}
		s.model, s.fitErr = estimator.Fit(t.Records())
		if s.fitErr != nil {
			return
		}
		s.logger.Debug("fitted price model",
			zap.Int("samples", s.model.Samples),
			zap.Int("features", s.model.Schema.Width()),
			zap.Int("rank", s.model.Rank),
			zap.Float64("r2", s.model.R2),
		)
		if s.model.RankDeficient {
			s.logger.Warn("price model is rank deficient; using minimum-norm solution",
				zap.Int("rank", s.model.Rank),
				zap.Int("features", s.model.Schema.Width()),
			)
		}
	})
	return s.model, s.fitErr
}

// Evaluate answers q with the shared table, fitting the model only in
// estimate mode.
func (s *Shared) Evaluate(q model.Query) (Result, error) {
	t, err := s.Table()
	if err != nil {
		return Result{}, err
	}
	var m *estimator.Model
	if s.Mode() == model.ModeEstimate {
		if m, err = s.Model(); err != nil {
			return Result{}, err
		}
	}
	return Evaluate(t, m, q, s.Mode())
}

// Options returns the filter choices for the shared table.
func (s *Shared) Options() (Options, error) {
	t, err := s.Table()
	if err != nil {
		return Options{}, err
	}
	return BuildOptions(t), nil
}
