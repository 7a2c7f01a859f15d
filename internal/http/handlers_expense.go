package http

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"tally/internal/core"
	"tally/internal/storage"
)

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	u, ok := s.user(w, r)
	if !ok {
		return
	}

	e, err := parseExpense(r)
	if err != nil {
		writeParseError(w, err)
		return
	}

	created, err := s.expenses.Create(r.Context(), u.ID, e)
	if err != nil {
		s.writeComputeError(w, r, err)
		return
	}
	s.invalidateUser(u.ID)

	writeJSON(w, http.StatusCreated, buildExpense(created))
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	u, ok := s.user(w, r)
	if !ok {
		return
	}

	expenses, err := s.expenses.List(r.Context(), u.ID)
	if err != nil {
		s.writeComputeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, buildExpenses(expenses))
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	u, ok := s.user(w, r)
	if !ok {
		return
	}

	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	e, err := parseExpense(r)
	if err != nil {
		writeParseError(w, err)
		return
	}
	e.ID = id

	updated, err := s.expenses.Update(r.Context(), u.ID, e)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Expense not found")
		return
	}
	if err != nil {
		s.writeComputeError(w, r, err)
		return
	}
	s.invalidateUser(u.ID)

	writeJSON(w, http.StatusOK, buildExpense(updated))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	u, ok := s.user(w, r)
	if !ok {
		return
	}

	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := s.expenses.Delete(r.Context(), u.ID, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Expense not found")
			return
		}
		s.writeComputeError(w, r, err)
		return
	}
	s.invalidateUser(u.ID)

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleExportCSV streams every expense of the user as CSV.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	u, ok := s.user(w, r)
	if !ok {
		return
	}

	expenses, err := s.expenses.List(r.Context(), u.ID)
	if err != nil {
		s.writeComputeError(w, r, err)
		return
	}

	if month := r.URL.Query().Get("month"); month != "" {
		if !core.ValidMonthKey(month) {
			writeError(w, http.StatusUnprocessableEntity, "invalid month, expected YYYY-MM")
			return
		}
		kept := make([]core.Expense, 0, len(expenses))
		for _, e := range expenses {
			if e.Date.MonthKey() == month {
				kept = append(kept, e)
			}
		}
		expenses = kept
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="expenses.csv"`)

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"id", "date", "description", "amount", "category", "is_anomaly"})
	for _, e := range expenses {
		_ = cw.Write(csvRow(e))
	}
	cw.Flush()
}

func csvRow(e core.Expense) []string {
	return []string{
		strconv.FormatInt(e.ID, 10),
		e.Date.Key(),
		e.Description,
		strconv.FormatFloat(e.Amount.Float64(), 'f', 2, 64),
		e.Category,
		strconv.FormatBool(e.Anomaly),
	}
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid expense id %q", r.PathValue("id"))
	}
	return id, nil
}

// writeParseError maps body parsing failures to FastAPI-style status codes:
// unreadable JSON is a 400, readable but invalid data a 422.
func writeParseError(w http.ResponseWriter, err error) {
	if errors.Is(err, errMalformedBody) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeError(w, http.StatusUnprocessableEntity, err.Error())
}
