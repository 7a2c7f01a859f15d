package http

import (
	"context"
	"net/http"
	"strings"

	"tally/internal/core"
)

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	u, ok := s.user(w, r)
	if !ok {
		return
	}

	month := strings.TrimSpace(r.URL.Query().Get("month"))
	if month != "" && !core.ValidMonthKey(month) {
		writeError(w, http.StatusUnprocessableEntity, "invalid month: expected YYYY-MM")
		return
	}
	category := strings.TrimSpace(r.URL.Query().Get("category"))

	s.serveCached(w, r, u.ID, func(ctx context.Context) (any, error) {
		sum, err := s.analytics.Summary(ctx, u.ID, month, category)
		if err != nil {
			return nil, err
		}
		shown := month
		if shown == "" && len(sum.Expenses) > 0 {
			shown = sum.Expenses[0].Date.MonthKey()
		}
		return summaryResponse{
			Month:    shown,
			Total:    sum.Total,
			Expenses: buildExpenses(sum.Expenses),
		}, nil
	})
}

func (s *Server) handleReportByCategory(w http.ResponseWriter, r *http.Request) {
	u, ok := s.user(w, r)
	if !ok {
		return
	}

	month := strings.TrimSpace(r.URL.Query().Get("month"))
	if month != "" && !core.ValidMonthKey(month) {
		writeError(w, http.StatusUnprocessableEntity, "invalid month: expected YYYY-MM")
		return
	}

	s.serveCached(w, r, u.ID, func(ctx context.Context) (any, error) {
		return s.analytics.ReportByCategory(ctx, u.ID, month)
	})
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	u, ok := s.user(w, r)
	if !ok {
		return
	}
	s.serveCached(w, r, u.ID, func(ctx context.Context) (any, error) {
		return s.analytics.Insights(ctx, u.ID)
	})
}

func (s *Server) handleBudgetRisk(w http.ResponseWriter, r *http.Request) {
	u, ok := s.user(w, r)
	if !ok {
		return
	}
	s.serveCached(w, r, u.ID, func(ctx context.Context) (any, error) {
		return s.analytics.BudgetRisk(ctx, u.ID)
	})
}

func (s *Server) handleSpendingProfile(w http.ResponseWriter, r *http.Request) {
	u, ok := s.user(w, r)
	if !ok {
		return
	}
	s.serveCached(w, r, u.ID, func(ctx context.Context) (any, error) {
		return s.analytics.SpendingProfile(ctx, u.ID)
	})
}

// handleSimulate is a POST but never mutates state; it is not cached because
// the scenario arrives in the body.
func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	u, ok := s.user(w, r)
	if !ok {
		return
	}

	scenario, err := parseScenario(r)
	if err != nil {
		writeParseError(w, err)
		return
	}

	sim, err := s.analytics.Simulate(r.Context(), u.ID, scenario)
	if err != nil {
		s.writeComputeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sim)
}

func (s *Server) handleWrapped(w http.ResponseWriter, r *http.Request) {
	u, ok := s.user(w, r)
	if !ok {
		return
	}
	s.serveCached(w, r, u.ID, func(ctx context.Context) (any, error) {
		return s.analytics.Wrapped(ctx, u.ID)
	})
}

func (s *Server) handleMonthlyDiff(w http.ResponseWriter, r *http.Request) {
	u, ok := s.user(w, r)
	if !ok {
		return
	}
	s.serveCached(w, r, u.ID, func(ctx context.Context) (any, error) {
		return s.analytics.MonthlyDiff(ctx, u.ID)
	})
}

func (s *Server) handleAnomalies(w http.ResponseWriter, r *http.Request) {
	u, ok := s.user(w, r)
	if !ok {
		return
	}
	s.serveCached(w, r, u.ID, func(ctx context.Context) (any, error) {
		anomalies, err := s.analytics.Anomalies(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		return buildExpenses(anomalies), nil
	})
}
