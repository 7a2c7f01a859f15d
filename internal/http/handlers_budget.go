package http

import (
	"errors"
	"net/http"

	"tally/internal/core"
	"tally/internal/storage"
)

func (s *Server) handleUpsertBudget(w http.ResponseWriter, r *http.Request) {
	u, ok := s.user(w, r)
	if !ok {
		return
	}

	b, err := parseBudget(r)
	if err != nil {
		writeParseError(w, err)
		return
	}

	saved, err := s.budgets.UpsertBudget(r.Context(), u.ID, b)
	if err != nil {
		s.writeComputeError(w, r, err)
		return
	}
	s.invalidateUser(u.ID)

	writeJSON(w, http.StatusCreated, buildBudget(saved))
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	u, ok := s.user(w, r)
	if !ok {
		return
	}

	month := r.PathValue("month")
	if !core.ValidMonthKey(month) {
		writeError(w, http.StatusUnprocessableEntity, "invalid month: expected YYYY-MM")
		return
	}

	b, err := s.budgets.GetBudget(r.Context(), u.ID, month)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Budget not found")
		return
	}
	if err != nil {
		s.writeComputeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, buildBudget(b))
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	u, ok := s.user(w, r)
	if !ok {
		return
	}

	budgets, err := s.budgets.ListBudgets(r.Context(), u.ID)
	if err != nil {
		s.writeComputeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, buildBudgets(budgets))
}
