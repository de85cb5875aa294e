package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/lbermudezd2020/appgasolinabueno/internal/cli"
	"github.com/lbermudezd2020/appgasolinabueno/internal/estimator"
	"github.com/lbermudezd2020/appgasolinabueno/internal/model"
	"github.com/lbermudezd2020/appgasolinabueno/internal/pipeline"
	"github.com/lbermudezd2020/appgasolinabueno/internal/prices"

	"go.uber.org/zap"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type healthResponse struct {
	Status    string `json:"status"`
	UptimeSec int64  `json:"uptime_sec"`
}

type optionsResponse struct {
	pipeline.Options
	Mode      model.Mode  `json:"mode"`
	Source    string      `json:"source"`
	Rows      int         `json:"rows"`
	Dropped   int         `json:"dropped"`
	FromCache bool        `json:"from_cache"`
	Default   model.Query `json:"default_query"`
}

type pointJSON struct {
	Date  string `json:"date"`
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Price string `json:"price"`
}

type statsJSON struct {
	Points      int     `json:"points"`
	Min         string  `json:"min,omitempty"`
	Max         string  `json:"max,omitempty"`
	Mean        string  `json:"mean,omitempty"`
	Change      string  `json:"change,omitempty"`
	ChangeRatio float64 `json:"change_ratio"`
}

type priceResponse struct {
	Query     model.Query `json:"query"`
	Mode      model.Mode  `json:"mode"`
	Price     string      `json:"price"`
	Formatted string      `json:"formatted"`
	Observed  *string     `json:"observed"`
	Estimate  *float64    `json:"estimate,omitempty"`
	Estimated bool        `json:"estimated"`
}

type historyResponse struct {
	State    string      `json:"state"`
	FuelType string      `json:"fuel_type"`
	Points   []pointJSON `json:"points"`
	Stats    statsJSON   `json:"stats"`
}

type rankingEntry struct {
	State    string `json:"state"`
	Price    string `json:"price"`
	Observed bool   `json:"observed"`
}

type modelResponse struct {
	Features      []string                `json:"features"`
	Coefficients  []estimator.Coefficient `json:"coefficients"`
	Intercept     float64                 `json:"intercept"`
	Samples       int                     `json:"samples"`
	Rank          int                     `json:"rank"`
	RankDeficient bool                    `json:"rank_deficient"`
	R2            float64                 `json:"r2"`
	RefState      string                  `json:"reference_state"`
	RefFuelType   string                  `json:"reference_fuel_type"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: code, Message: msg})
}

// writeLoadError reports a table or model failure.
func (s *Server) writeLoadError(w http.ResponseWriter, err error) {
	s.logger.Error("price source unavailable", zap.Error(err))
	switch {
	case errors.Is(err, prices.ErrMissingFile), errors.Is(err, prices.ErrMissingColumns):
		writeError(w, http.StatusServiceUnavailable, "source_unavailable", err.Error())
	case errors.Is(err, prices.ErrUnreadable):
		writeError(w, http.StatusServiceUnavailable, "source_unreadable", err.Error())
	case errors.Is(err, estimator.ErrEmptyTable):
		writeError(w, http.StatusServiceUnavailable, "empty_table", err.Error())
	case errors.Is(err, pipeline.ErrNonFiniteEstimate):
		writeError(w, http.StatusServiceUnavailable, "estimate_unavailable", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		UptimeSec: int64(time.Since(s.started).Seconds()),
	})
}

func (s *Server) handleOptions(w http.ResponseWriter, _ *http.Request) {
	res, err := s.shared.Result()
	if err != nil {
		s.writeLoadError(w, err)
		return
	}
	opts := pipeline.BuildOptions(res.Table)
	writeJSON(w, http.StatusOK, optionsResponse{
		Options:   opts,
		Mode:      s.shared.Mode(),
		Source:    res.Table.Path(),
		Rows:      res.Table.Len(),
		Dropped:   res.Table.Dropped(),
		FromCache: res.FromCache,
		Default:   opts.DefaultQuery(),
	})
}

func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_query", err.Error())
		return
	}
	if err := q.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_query", err.Error())
		return
	}

	res, err := s.shared.Evaluate(q)
	switch {
	case errors.Is(err, prices.ErrNoMatch):
		writeError(w, http.StatusNotFound, "no_match", err.Error())
		return
	case err != nil:
		s.writeLoadError(w, err)
		return
	}

	price, _ := res.Display()
	resp := priceResponse{
		Query:     res.Query,
		Mode:      res.Mode,
		Price:     price.StringFixed(2),
		Formatted: cli.FormatMXN(price),
		Estimated: res.Estimated,
	}
	if res.Observed.Valid {
		obs := res.Observed.Decimal.StringFixed(2)
		resp.Observed = &obs
	}
	if _, ok := res.EstimateDecimal(); ok {
		est := res.Estimate
		resp.Estimate = &est
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	state, fuel := r.URL.Query().Get("state"), r.URL.Query().Get("fuel")
	if state == "" || fuel == "" {
		writeError(w, http.StatusBadRequest, "invalid_query", "state and fuel are required")
		return
	}
	year, err := optionalInt(r, "year")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_query", err.Error())
		return
	}

	t, err := s.shared.Table()
	if err != nil {
		s.writeLoadError(w, err)
		return
	}

	points := pipeline.FilterByYear(t.History(state, fuel), year)
	stats := pipeline.SummarizeHistory(points)
	resp := historyResponse{
		State:    state,
		FuelType: fuel,
		Points:   make([]pointJSON, len(points)),
		Stats:    statsJSON{Points: stats.Points, ChangeRatio: stats.ChangeRatio()},
	}
	for i, p := range points {
		resp.Points[i] = pointJSON{
			Date:  p.Date.Format("2006-01-02"),
			Year:  p.Year,
			Month: p.Month,
			Price: p.Price.StringFixed(2),
		}
	}
	if stats.Points > 0 {
		resp.Stats.Min = stats.Min.StringFixed(2)
		resp.Stats.Max = stats.Max.StringFixed(2)
		resp.Stats.Mean = stats.Mean.StringFixed(2)
		resp.Stats.Change = stats.Change.StringFixed(2)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRanking(w http.ResponseWriter, r *http.Request) {
	fuel := r.URL.Query().Get("fuel")
	year, yerr := requiredInt(r, "year")
	month, merr := requiredInt(r, "month")
	switch {
	case fuel == "":
		writeError(w, http.StatusBadRequest, "invalid_query", "fuel is required")
		return
	case yerr != nil:
		writeError(w, http.StatusBadRequest, "invalid_query", yerr.Error())
		return
	case merr != nil:
		writeError(w, http.StatusBadRequest, "invalid_query", merr.Error())
		return
	case month < 1 || month > 12:
		writeError(w, http.StatusBadRequest, "invalid_query", fmt.Sprintf("month %d out of range 1-12", month))
		return
	}

	t, err := s.shared.Table()
	if err != nil {
		s.writeLoadError(w, err)
		return
	}
	var m *estimator.Model
	if s.shared.Mode() == model.ModeEstimate {
		if m, err = s.shared.Model(); err != nil {
			s.writeLoadError(w, err)
			return
		}
	}

	ranked := pipeline.RankStates(t, m, fuel, year, month)
	out := make([]rankingEntry, len(ranked))
	for i, sp := range ranked {
		out[i] = rankingEntry{State: sp.State, Price: sp.Price.StringFixed(2), Observed: sp.Observed}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleModel(w http.ResponseWriter, _ *http.Request) {
	m, err := s.shared.Model()
	if err != nil {
		s.writeLoadError(w, err)
		return
	}
	refState, refFuel := m.Schema.Reference()
	writeJSON(w, http.StatusOK, modelResponse{
		Features:      m.Schema.Features,
		Coefficients:  m.Coefficients(),
		Intercept:     m.Intercept,
		Samples:       m.Samples,
		Rank:          m.Rank,
		RankDeficient: m.RankDeficient,
		R2:            m.R2,
		RefState:      refState,
		RefFuelType:   refFuel,
	})
}

func parseQuery(r *http.Request) (model.Query, error) {
	year, err := requiredInt(r, "year")
	if err != nil {
		return model.Query{}, err
	}
	month, err := requiredInt(r, "month")
	if err != nil {
		return model.Query{}, err
	}
	return model.Query{
		State:    r.URL.Query().Get("state"),
		FuelType: r.URL.Query().Get("fuel"),
		Year:     year,
		Month:    month,
	}, nil
}

func requiredInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, fmt.Errorf("%s is required", name)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", name, raw)
	}
	return n, nil
}

func optionalInt(r *http.Request, name string) (int, error) {
	if r.URL.Query().Get(name) == "" {
		return 0, nil
	}
	return requiredInt(r, name)
}
