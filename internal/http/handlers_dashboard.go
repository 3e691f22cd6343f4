package http

import (
	"net/http"

	"github.com/shopspring/decimal"
)

// TrendPoint is one day of the spending trend.
type TrendPoint struct {
	Date   string          `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	store, _ := s.current()
	JSON(http.StatusOK, store.GetStats(r.Context(), ParsePeriod(r.URL.Query()))).Write(w)
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	days, bad := ParseDays(r.URL.Query())
	if bad != nil {
		bad.Write(w)
		return
	}
	store, _ := s.current()
	trend := store.GetSpendingTrend(days)
	points := make([]TrendPoint, 0, len(trend))
	for _, d := range trend.Dates() {
		points = append(points, TrendPoint{Date: d, Amount: trend[d]})
	}
	JSON(http.StatusOK, points).Write(w)
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	e, _ := s.engine()
	JSON(http.StatusOK, e.Generate(r.Context())).Write(w)
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	e, _ := s.engine()
	JSON(http.StatusOK, e.CategoryProgress(r.Context())).Write(w)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	e, user := s.engine()
	JSON(http.StatusOK, e.Dashboard(r.Context(), user)).Write(w)
}
