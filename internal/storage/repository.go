// Package storage is the SQLite persistence layer: users, expenses and
// monthly budgets. Amounts live as integer cents; dates as YYYY-MM-DD text.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"tally/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound marks lookups for rows that do not exist or belong to another
// user.
var ErrNotFound = errors.New("not found")

// User is an account row. Identity verification happens upstream; the
// repository only maps verified emails to ids.
type User struct {
	ID    int64
	Email string
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// GetOrCreateUser resolves an email to a user row, creating it on first
// contact.
func (r *SQLiteRepository) GetOrCreateUser(ctx context.Context, email string) (User, error) {
	var u User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email FROM users WHERE email = ?`, email).Scan(&u.ID, &u.Email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return User{}, fmt.Errorf("get user: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `INSERT INTO users (email) VALUES (?)`, email)
	if err != nil {
		return User{}, fmt.Errorf("create user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return User{}, fmt.Errorf("user insert id: %w", err)
	}

	slog.InfoContext(ctx, "User created", "id", id, "email", email)
	return User{ID: id, Email: email}, nil
}

// CreateExpense inserts a new expense, anomaly flag included, and returns
// its id.
func (r *SQLiteRepository) CreateExpense(ctx context.Context, userID int64, e core.Expense) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (user_id, date, description, amount_cents, category, is_anomaly)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		userID, e.Date.Key(), e.Description, e.Amount.Cents, e.Category, e.Anomaly)
	if err != nil {
		return 0, fmt.Errorf("create expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("expense insert id: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"id", id,
		"description", e.Description,
		"amount_cents", e.Amount.Cents,
		"category", e.Category,
		"anomaly", e.Anomaly)

	return id, nil
}

// GetExpense loads one expense scoped to its owner.
func (r *SQLiteRepository) GetExpense(ctx context.Context, userID, id int64) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, date, description, amount_cents, category, is_anomaly
		 FROM expenses WHERE id = ? AND user_id = ?`, id, userID)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, ErrNotFound
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

// UpdateExpense replaces the mutable fields of an expense. The anomaly flag
// is deliberately left alone: it was decided at creation time.
func (r *SQLiteRepository) UpdateExpense(ctx context.Context, userID int64, e core.Expense) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET date = ?, description = ?, amount_cents = ?, category = ?
		 WHERE id = ? AND user_id = ?`,
		e.Date.Key(), e.Description, e.Amount.Cents, e.Category, e.ID, userID)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	return requireRow(res)
}

// DeleteExpense removes an expense owned by the user.
func (r *SQLiteRepository) DeleteExpense(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM expenses WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return requireRow(res)
}

// ListExpenses returns every expense for a user, oldest first.
func (r *SQLiteRepository) ListExpenses(ctx context.Context, userID int64) ([]core.Expense, error) {
	return r.queryExpenses(ctx,
		`SELECT id, date, description, amount_cents, category, is_anomaly
		 FROM expenses WHERE user_id = ? ORDER BY date, id`, userID)
}

// ListExpensesByMonth returns a user's expenses within one YYYY-MM month.
func (r *SQLiteRepository) ListExpensesByMonth(ctx context.Context, userID int64, month string) ([]core.Expense, error) {
	return r.queryExpenses(ctx,
		`SELECT id, date, description, amount_cents, category, is_anomaly
		 FROM expenses WHERE user_id = ? AND date LIKE ? ORDER BY date, id`,
		userID, month+"-%")
}

// ListExpensesByMonthAndCategory narrows a month listing to one category.
func (r *SQLiteRepository) ListExpensesByMonthAndCategory(ctx context.Context, userID int64, month, category string) ([]core.Expense, error) {
	return r.queryExpenses(ctx,
		`SELECT id, date, description, amount_cents, category, is_anomaly
		 FROM expenses WHERE user_id = ? AND date LIKE ? AND category = ? ORDER BY date, id`,
		userID, month+"-%", category)
}

// CategoryHistory returns the amounts already recorded in one category,
// feeding the write-time anomaly check.
func (r *SQLiteRepository) CategoryHistory(ctx context.Context, userID int64, category string) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT amount_cents FROM expenses WHERE user_id = ? AND category = ?`,
		userID, category)
	if err != nil {
		return nil, fmt.Errorf("category history: %w", err)
	}
	defer rows.Close()

	var amounts []int64
	for rows.Next() {
		var cents int64
		if err := rows.Scan(&cents); err != nil {
			return nil, fmt.Errorf("scan amount: %w", err)
		}
		amounts = append(amounts, cents)
	}
	return amounts, rows.Err()
}

// CategoryTotalsByMonth sums a month's spend per category, in cents.
func (r *SQLiteRepository) CategoryTotalsByMonth(ctx context.Context, userID int64, month string) (map[string]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category, SUM(amount_cents) FROM expenses
		 WHERE user_id = ? AND date LIKE ? GROUP BY category`,
		userID, month+"-%")
	if err != nil {
		return nil, fmt.Errorf("category totals: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]int64)
	for rows.Next() {
		var category string
		var cents int64
		if err := rows.Scan(&category, &cents); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		totals[category] = cents
	}
	return totals, rows.Err()
}

// ListAnomalies returns the user's most recent anomalous expenses, newest
// first.
func (r *SQLiteRepository) ListAnomalies(ctx context.Context, userID int64, limit int) ([]core.Expense, error) {
	return r.queryExpenses(ctx,
		`SELECT id, date, description, amount_cents, category, is_anomaly
		 FROM expenses WHERE user_id = ? AND is_anomaly = 1
		 ORDER BY date DESC, id DESC LIMIT ?`, userID, limit)
}

// UpsertBudget creates or replaces the budget for a month. One budget per
// user per month is enforced by the unique index.
func (r *SQLiteRepository) UpsertBudget(ctx context.Context, userID int64, b core.Budget) (core.Budget, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (user_id, month, amount_cents) VALUES (?, ?, ?)
		 ON CONFLICT(user_id, month) DO UPDATE SET amount_cents = excluded.amount_cents`,
		userID, b.Month, b.Amount.Cents)
	if err != nil {
		return core.Budget{}, fmt.Errorf("upsert budget: %w", err)
	}
	return r.GetBudget(ctx, userID, b.Month)
}

// GetBudget loads the budget for one month, ErrNotFound when unset.
func (r *SQLiteRepository) GetBudget(ctx context.Context, userID int64, month string) (core.Budget, error) {
	var b core.Budget
	err := r.db.QueryRowContext(ctx,
		`SELECT id, month, amount_cents FROM budgets WHERE user_id = ? AND month = ?`,
		userID, month).Scan(&b.ID, &b.Month, &b.Amount.Cents)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, ErrNotFound
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget: %w", err)
	}
	return b, nil
}

// ListBudgets returns all of a user's budgets ordered by month.
func (r *SQLiteRepository) ListBudgets(ctx context.Context, userID int64) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, month, amount_cents FROM budgets WHERE user_id = ? ORDER BY month`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []core.Budget
	for rows.Next() {
		var b core.Budget
		if err := rows.Scan(&b.ID, &b.Month, &b.Amount.Cents); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var e core.Expense
	var date string
	if err := row.Scan(&e.ID, &date, &e.Description, &e.Amount.Cents, &e.Category, &e.Anomaly); err != nil {
		return core.Expense{}, err
	}
	parsed, err := core.ParseDate(date)
	if err != nil {
		return core.Expense{}, fmt.Errorf("parse stored date %q: %w", date, err)
	}
	e.Date = parsed
	return e, nil
}

func (r *SQLiteRepository) queryExpenses(ctx context.Context, query string, args ...any) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
