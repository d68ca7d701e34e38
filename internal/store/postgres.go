package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/dzenfone819-debug/neko-finance/internal/errs"
	"github.com/dzenfone819-debug/neko-finance/internal/models"
)

type postgresStore struct {
	db    *sql.DB
	newID func() string
}

func NewPostgresStore(db *sql.DB) *postgresStore {
	return &postgresStore{db: db, newID: uuid.NewString}
}

// RunMigrations creates the finance tables when they are missing.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			name TEXT NOT NULL,
			balance DOUBLE PRECISION NOT NULL DEFAULT 0,
			type TEXT NOT NULL DEFAULT 'cash',
			color TEXT NOT NULL DEFAULT '',
			currency TEXT NOT NULL DEFAULT 'RUB',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS savings_goals (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			name TEXT NOT NULL,
			target_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
			current_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
			category TEXT NOT NULL DEFAULT '',
			icon TEXT NOT NULL DEFAULT '',
			color TEXT NOT NULL DEFAULT '',
			deadline TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS budget_settings (
			user_id TEXT PRIMARY KEY,
			budget_limit DOUBLE PRECISION NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS custom_categories (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			name TEXT NOT NULL,
			icon TEXT NOT NULL DEFAULT '',
			color TEXT NOT NULL DEFAULT '',
			type TEXT NOT NULL DEFAULT 'expense',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS category_limits (
			user_id TEXT NOT NULL,
			category_id TEXT NOT NULL,
			limit_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
			PRIMARY KEY (user_id, category_id)
		)`,

		`CREATE TABLE IF NOT EXISTS transactions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			amount DOUBLE PRECISION NOT NULL,
			category TEXT NOT NULL,
			date TEXT NOT NULL,
			type TEXT NOT NULL DEFAULT 'expense',
			account_id TEXT,
			target_type TEXT NOT NULL DEFAULT 'account',
			note TEXT NOT NULL DEFAULT '',
			tags TEXT[] NOT NULL DEFAULT '{}',
			photo_urls TEXT[] NOT NULL DEFAULT '{}'
		)`,

		`CREATE INDEX IF NOT EXISTS idx_transactions_user_date ON transactions(user_id, date DESC)`,
	}

	for _, m := range migrations {
		if _, err := db.ExecContext(ctx, m); err != nil {
			return errs.NewDatabaseError("migrate", "failed to run migration", err)
		}
	}
	return nil
}

func (s *postgresStore) CreateAccount(ctx context.Context, uid string, a models.Account) (models.ID, error) {
	id := s.newID()
	if a.Currency == "" {
		a.Currency = models.DefaultCurrency
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (id, user_id, name, balance, type, color, currency) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, uid, a.Name, a.Balance, a.Type, a.Color, a.Currency)
	if err != nil {
		return "", errs.NewDatabaseError("create", "failed to create account", err)
	}
	return models.ID(id), nil
}

func (s *postgresStore) CreateGoal(ctx context.Context, uid string, g models.Goal) (models.ID, error) {
	id := s.newID()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO savings_goals (id, user_id, name, target_amount, current_amount, category, icon, color, deadline)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		id, uid, g.Name, g.TargetAmount, g.CurrentAmount, g.Category, g.Icon, g.Color, nullString(g.Deadline))
	if err != nil {
		return "", errs.NewDatabaseError("create", "failed to create goal", err)
	}
	return models.ID(id), nil
}

func (s *postgresStore) UpdateGoalProgress(ctx context.Context, uid string, goalID models.ID, currentAmount float64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE savings_goals SET current_amount = $1 WHERE id = $2 AND user_id = $3`,
		currentAmount, goalID.String(), uid)
	if err != nil {
		return errs.NewDatabaseError("update", "failed to update goal progress", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errs.NewNotFoundError("goal not found")
	}
	return nil
}

func (s *postgresStore) UpsertBudgetSettings(ctx context.Context, uid string, limit float64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO budget_settings (user_id, budget_limit) VALUES ($1, $2)
		 ON CONFLICT (user_id) DO UPDATE SET budget_limit = EXCLUDED.budget_limit, updated_at = NOW()`,
		uid, limit)
	if err != nil {
		return errs.NewDatabaseError("upsert", "failed to save budget settings", err)
	}
	return nil
}

// CreateCustomCategory inserts the category and its limit, if any, in one
// transaction.
func (s *postgresStore) CreateCustomCategory(ctx context.Context, uid string, c models.Category) (string, error) {
	id := models.CustomCategoryPrefix + s.newID()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", errs.NewDatabaseError("create", "failed to begin transaction", err)
	}
	defer tx.Rollback()

	categoryType := c.Type
	if categoryType == "" {
		categoryType = models.TransactionExpense
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO custom_categories (id, user_id, name, icon, color, type) VALUES ($1, $2, $3, $4, $5, $6)`,
		id, uid, c.Name, c.Icon, c.Color, categoryType); err != nil {
		return "", errs.NewDatabaseError("create", "failed to create custom category", err)
	}
	if c.Limit != nil {
		if err := upsertLimit(ctx, tx, uid, id, *c.Limit); err != nil {
			return "", err
		}
	}
	if err := tx.Commit(); err != nil {
		return "", errs.NewDatabaseError("create", "failed to commit custom category", err)
	}
	return id, nil
}

func (s *postgresStore) CreateCategoryLimit(ctx context.Context, uid, categoryID string, limit float64) error {
	return upsertLimit(ctx, s.db, uid, categoryID, limit)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertLimit(ctx context.Context, db execer, uid, categoryID string, limit float64) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO category_limits (user_id, category_id, limit_amount) VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, category_id) DO UPDATE SET limit_amount = EXCLUDED.limit_amount`,
		uid, categoryID, limit)
	if err != nil {
		return errs.NewDatabaseError("create", "failed to save category limit", err)
	}
	return nil
}

func (s *postgresStore) CreateTransaction(ctx context.Context, uid string, t models.Transaction) (models.ID, error) {
	id := s.newID()
	var accountID *string
	if t.AccountID != nil {
		v := t.AccountID.String()
		accountID = &v
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (id, user_id, amount, category, date, type, account_id, target_type, note, tags, photo_urls)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		id, uid, t.Amount, t.Category, t.Date, t.Type, nullString(accountID), t.Target(), t.Note,
		pq.Array(nonNil(t.Tags)), pq.Array(nonNil(t.PhotoURLs)))
	if err != nil {
		return "", errs.NewDatabaseError("create", "failed to create transaction", err)
	}
	return models.ID(id), nil
}

func (s *postgresStore) ListTransactions(ctx context.Context, uid string) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, amount, category, date, type, account_id, target_type, note, tags, photo_urls
		 FROM transactions WHERE user_id = $1 ORDER BY date DESC, id DESC`, uid)
	if err != nil {
		return nil, errs.NewDatabaseError("read", "failed to list transactions", err)
	}
	defer rows.Close()

	out := []models.Transaction{}
	for rows.Next() {
		var (
			t         models.Transaction
			id        string
			accountID sql.NullString
			tags      []string
			photos    []string
		)
		if err := rows.Scan(&id, &t.Amount, &t.Category, &t.Date, &t.Type, &accountID, &t.TargetType, &t.Note,
			pq.Array(&tags), pq.Array(&photos)); err != nil {
			return nil, errs.NewDatabaseError("read", "failed to scan transaction", err)
		}
		t.ID = models.ID(id)
		if accountID.Valid {
			t.AccountID = models.IDPtr(models.ID(accountID.String))
		}
		if len(tags) > 0 {
			t.Tags = tags
		}
		if len(photos) > 0 {
			t.PhotoURLs = photos
		}
		out = append(out, t)
	}
	return out, rowsErr(rows, "transactions")
}

func (s *postgresStore) ListAccounts(ctx context.Context, uid string) ([]models.Account, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, balance, type, color, currency FROM accounts WHERE user_id = $1 ORDER BY created_at`, uid)
	if err != nil {
		return nil, errs.NewDatabaseError("read", "failed to list accounts", err)
	}
	defer rows.Close()

	out := []models.Account{}
	for rows.Next() {
		var (
			a  models.Account
			id string
		)
		if err := rows.Scan(&id, &a.Name, &a.Balance, &a.Type, &a.Color, &a.Currency); err != nil {
			return nil, errs.NewDatabaseError("read", "failed to scan account", err)
		}
		a.ID = models.ID(id)
		out = append(out, a)
	}
	return out, rowsErr(rows, "accounts")
}

func (s *postgresStore) ListGoals(ctx context.Context, uid string) ([]models.Goal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, target_amount, current_amount, category, icon, color, deadline
		 FROM savings_goals WHERE user_id = $1 ORDER BY created_at`, uid)
	if err != nil {
		return nil, errs.NewDatabaseError("read", "failed to list goals", err)
	}
	defer rows.Close()

	out := []models.Goal{}
	for rows.Next() {
		var (
			g        models.Goal
			id       string
			deadline sql.NullString
		)
		if err := rows.Scan(&id, &g.Name, &g.TargetAmount, &g.CurrentAmount, &g.Category, &g.Icon, &g.Color, &deadline); err != nil {
			return nil, errs.NewDatabaseError("read", "failed to scan goal", err)
		}
		g.ID = models.ID(id)
		if deadline.Valid {
			g.Deadline = &deadline.String
		}
		out = append(out, g)
	}
	return out, rowsErr(rows, "goals")
}

func (s *postgresStore) GetBudgetSettings(ctx context.Context, uid string) (*models.BudgetSettings, error) {
	var limit float64
	err := s.db.QueryRowContext(ctx, `SELECT budget_limit FROM budget_settings WHERE user_id = $1`, uid).Scan(&limit)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.NewDatabaseError("read", "failed to get budget settings", err)
	}
	return &models.BudgetSettings{BudgetLimit: &limit}, nil
}

func (s *postgresStore) ListCustomCategories(ctx context.Context, uid string) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.id, c.name, c.icon, c.color, c.type, l.limit_amount
		 FROM custom_categories c
		 LEFT JOIN category_limits l ON l.user_id = c.user_id AND l.category_id = c.id
		 WHERE c.user_id = $1 ORDER BY c.created_at`, uid)
	if err != nil {
		return nil, errs.NewDatabaseError("read", "failed to list custom categories", err)
	}
	defer rows.Close()

	out := []models.Category{}
	for rows.Next() {
		var (
			c     models.Category
			limit sql.NullFloat64
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.Icon, &c.Color, &c.Type, &limit); err != nil {
			return nil, errs.NewDatabaseError("read", "failed to scan custom category", err)
		}
		if limit.Valid {
			c.Limit = &limit.Float64
		}
		out = append(out, c)
	}
	return out, rowsErr(rows, "custom categories")
}

func (s *postgresStore) ListCategoryLimits(ctx context.Context, uid string) (models.CategoryLimits, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT category_id, limit_amount FROM category_limits WHERE user_id = $1`, uid)
	if err != nil {
		return nil, errs.NewDatabaseError("read", "failed to list category limits", err)
	}
	defer rows.Close()

	out := models.CategoryLimits{}
	for rows.Next() {
		var (
			categoryID string
			limit      float64
		)
		if err := rows.Scan(&categoryID, &limit); err != nil {
			return nil, errs.NewDatabaseError("read", "failed to scan category limit", err)
		}
		out[categoryID] = limit
	}
	return out, rowsErr(rows, "category limits")
}

func rowsErr(rows *sql.Rows, what string) error {
	if err := rows.Err(); err != nil {
		return errs.NewDatabaseError("read", "failed to iterate "+what, err)
	}
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
