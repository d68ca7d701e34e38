package store

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dzenfone819-debug/neko-finance/internal/errs"
	"github.com/dzenfone819-debug/neko-finance/internal/models"
)

// Layout
// users/{uid}/accounts/{id}
// users/{uid}/goals/{id}
// users/{uid}/transactions/{id}
// users/{uid}/custom_categories/{id}
// users/{uid}/category_limits/{categoryId}
// users/{uid}/settings/budget

type financeStore struct {
	client *firestore.Client
	newID  func() string
}

func NewFinanceStore(client *firestore.Client) *financeStore {
	return &financeStore{client: client, newID: uuid.NewString}
}

type categoryLimitDoc struct {
	CategoryID string  `firestore:"categoryId"`
	Limit      float64 `firestore:"limit"`
}

func (s *financeStore) collection(uid, name string) *firestore.CollectionRef {
	return s.client.Collection("users").Doc(uid).Collection(name)
}

func (s *financeStore) budgetDoc(uid string) *firestore.DocumentRef {
	return s.client.Collection("users").Doc(uid).Collection("settings").Doc("budget")
}

func (s *financeStore) CreateAccount(ctx context.Context, uid string, a models.Account) (models.ID, error) {
	a.ID = models.ID(s.newID())
	if a.Currency == "" {
		a.Currency = models.DefaultCurrency
	}
	if _, err := s.collection(uid, "accounts").Doc(a.ID.String()).Set(ctx, a); err != nil {
		return "", errs.NewDatabaseError("create", "failed to create account", err)
	}
	return a.ID, nil
}

func (s *financeStore) CreateGoal(ctx context.Context, uid string, g models.Goal) (models.ID, error) {
	g.ID = models.ID(s.newID())
	if _, err := s.collection(uid, "goals").Doc(g.ID.String()).Set(ctx, g); err != nil {
		return "", errs.NewDatabaseError("create", "failed to create goal", err)
	}
	return g.ID, nil
}

func (s *financeStore) UpdateGoalProgress(ctx context.Context, uid string, goalID models.ID, currentAmount float64) error {
	_, err := s.collection(uid, "goals").Doc(goalID.String()).Update(ctx, []firestore.Update{
		{Path: "currentAmount", Value: currentAmount},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errs.NewNotFoundError("goal not found")
		}
		return errs.NewDatabaseError("update", "failed to update goal progress", err)
	}
	return nil
}

func (s *financeStore) UpsertBudgetSettings(ctx context.Context, uid string, limit float64) error {
	if _, err := s.budgetDoc(uid).Set(ctx, models.BudgetSettings{BudgetLimit: &limit}); err != nil {
		return errs.NewDatabaseError("upsert", "failed to save budget settings", err)
	}
	return nil
}

// CreateCustomCategory stores the category and, when it carries a limit,
// the matching limit document in one transaction.
func (s *financeStore) CreateCustomCategory(ctx context.Context, uid string, c models.Category) (string, error) {
	c.ID = models.CustomCategoryPrefix + s.newID()
	catRef := s.collection(uid, "custom_categories").Doc(c.ID)
	limitRef := s.collection(uid, "category_limits").Doc(c.ID)

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := tx.Set(catRef, c); err != nil {
			return err
		}
		if c.Limit == nil {
			return nil
		}
		return tx.Set(limitRef, categoryLimitDoc{CategoryID: c.ID, Limit: *c.Limit})
	})
	if err != nil {
		return "", errs.NewDatabaseError("create", "failed to create custom category", err)
	}
	return c.ID, nil
}

func (s *financeStore) CreateCategoryLimit(ctx context.Context, uid, categoryID string, limit float64) error {
	doc := categoryLimitDoc{CategoryID: categoryID, Limit: limit}
	if _, err := s.collection(uid, "category_limits").Doc(categoryID).Set(ctx, doc); err != nil {
		return errs.NewDatabaseError("create", "failed to save category limit", err)
	}
	return nil
}

func (s *financeStore) CreateTransaction(ctx context.Context, uid string, t models.Transaction) (models.ID, error) {
	t.ID = models.ID(s.newID())
	if _, err := s.collection(uid, "transactions").Doc(t.ID.String()).Set(ctx, t); err != nil {
		return "", errs.NewDatabaseError("create", "failed to create transaction", err)
	}
	return t.ID, nil
}

func (s *financeStore) ListTransactions(ctx context.Context, uid string) ([]models.Transaction, error) {
	iter := s.collection(uid, "transactions").OrderBy("date", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	out := []models.Transaction{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errs.NewDatabaseError("read", "failed to list transactions", err)
		}
		var t models.Transaction
		if err := doc.DataTo(&t); err != nil {
			return nil, errs.NewDatabaseError("read", "failed to parse transaction data", err)
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *financeStore) ListAccounts(ctx context.Context, uid string) ([]models.Account, error) {
	docs, err := s.collection(uid, "accounts").Documents(ctx).GetAll()
	if err != nil {
		return nil, errs.NewDatabaseError("read", "failed to list accounts", err)
	}
	return decodeAll[models.Account](docs, "account")
}

func (s *financeStore) ListGoals(ctx context.Context, uid string) ([]models.Goal, error) {
	docs, err := s.collection(uid, "goals").Documents(ctx).GetAll()
	if err != nil {
		return nil, errs.NewDatabaseError("read", "failed to list goals", err)
	}
	return decodeAll[models.Goal](docs, "goal")
}

func (s *financeStore) GetBudgetSettings(ctx context.Context, uid string) (*models.BudgetSettings, error) {
	doc, err := s.budgetDoc(uid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, errs.NewDatabaseError("read", "failed to get budget settings", err)
	}
	var b models.BudgetSettings
	if err := doc.DataTo(&b); err != nil {
		return nil, errs.NewDatabaseError("read", "failed to parse budget settings", err)
	}
	return &b, nil
}

func (s *financeStore) ListCustomCategories(ctx context.Context, uid string) ([]models.Category, error) {
	docs, err := s.collection(uid, "custom_categories").Documents(ctx).GetAll()
	if err != nil {
		return nil, errs.NewDatabaseError("read", "failed to list custom categories", err)
	}
	return decodeAll[models.Category](docs, "custom category")
}

func (s *financeStore) ListCategoryLimits(ctx context.Context, uid string) (models.CategoryLimits, error) {
	docs, err := s.collection(uid, "category_limits").Documents(ctx).GetAll()
	if err != nil {
		return nil, errs.NewDatabaseError("read", "failed to list category limits", err)
	}
	limits := make(models.CategoryLimits, len(docs))
	for _, d := range docs {
		var l categoryLimitDoc
		if err := d.DataTo(&l); err != nil {
			return nil, errs.NewDatabaseError("read", "failed to parse category limit", err)
		}
		limits[l.CategoryID] = l.Limit
	}
	return limits, nil
}

func decodeAll[T any](docs []*firestore.DocumentSnapshot, kind string) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		var v T
		if err := d.DataTo(&v); err != nil {
			return nil, errs.NewDatabaseError("read", "failed to parse "+kind+" data", err)
		}
		out = append(out, v)
	}
	return out, nil
}
