package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"tally/internal/analytics"
	"tally/internal/core"
	"tally/internal/services"
	"tally/internal/storage"
)

// defaultUserEmail scopes requests that carry no X-User-Email header. The
// tracker is single-tenant by default but keeps per-user rows from day one.
const defaultUserEmail = "demo@tally.local"

// UserDirectory resolves the request's email header to a stored user.
type UserDirectory interface {
	GetOrCreateUser(ctx context.Context, email string) (storage.User, error)
}

// ExpenseAPI is the expense lifecycle surface the handlers call.
type ExpenseAPI interface {
	Create(ctx context.Context, userID int64, e core.Expense) (core.Expense, error)
	Update(ctx context.Context, userID int64, e core.Expense) (core.Expense, error)
	Delete(ctx context.Context, userID, id int64) error
	List(ctx context.Context, userID int64) ([]core.Expense, error)
}

// BudgetStore is the budget persistence surface the handlers call.
type BudgetStore interface {
	UpsertBudget(ctx context.Context, userID int64, b core.Budget) (core.Budget, error)
	GetBudget(ctx context.Context, userID int64, month string) (core.Budget, error)
	ListBudgets(ctx context.Context, userID int64) ([]core.Budget, error)
}

// AnalyticsAPI is the read-side analytics surface the handlers call.
type AnalyticsAPI interface {
	BudgetRisk(ctx context.Context, userID int64) (services.BudgetRisk, error)
	Insights(ctx context.Context, userID int64) ([]analytics.Insight, error)
	SpendingProfile(ctx context.Context, userID int64) (analytics.Profile, error)
	Simulate(ctx context.Context, userID int64, scenario string) (services.Simulation, error)
	Wrapped(ctx context.Context, userID int64) (analytics.Wrapped, error)
	MonthlyDiff(ctx context.Context, userID int64) ([]services.CategoryDiff, error)
	Anomalies(ctx context.Context, userID int64) ([]core.Expense, error)
	Summary(ctx context.Context, userID int64, month, category string) (services.MonthSummary, error)
	ReportByCategory(ctx context.Context, userID int64, month string) (map[string]float64, error)
}

// errorResponse is the uniform error body.
type errorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

// user resolves the caller from the X-User-Email header, writing the error
// response itself when resolution fails.
func (s *Server) user(w http.ResponseWriter, r *http.Request) (storage.User, bool) {
	email := r.Header.Get("X-User-Email")
	if email == "" {
		email = defaultUserEmail
	}
	u, err := s.users.GetOrCreateUser(r.Context(), email)
	if err != nil {
		slog.ErrorContext(r.Context(), "User resolution failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return storage.User{}, false
	}
	return u, true
}

// serveCached answers an analytics GET from the per-user response cache,
// computing and storing the body on a miss.
func (s *Server) serveCached(w http.ResponseWriter, r *http.Request, userID int64, compute func(ctx context.Context) (any, error)) {
	key := cacheKey(userID, r)
	if body, ok := s.responseCache.Get(key); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
		return
	}

	v, err := compute(r.Context())
	if err != nil {
		s.writeComputeError(w, r, err)
		return
	}
	body, err := json.Marshal(v)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to marshal response", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.responseCache.Set(key, body)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) writeComputeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, analytics.ErrUnknownScenario):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		slog.ErrorContext(r.Context(), "Request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// invalidateUser drops all of a user's cached analytics after a write.
func (s *Server) invalidateUser(userID int64) {
	s.responseCache.DeletePrefix(userPrefix(userID))
}

func cacheKey(userID int64, r *http.Request) string {
	return fmt.Sprintf("%s%s?%s", userPrefix(userID), r.URL.Path, r.URL.RawQuery)
}

func userPrefix(userID int64) string {
	return fmt.Sprintf("user:%d:", userID)
}
