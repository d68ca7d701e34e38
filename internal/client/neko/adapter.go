// Package nekoclient talks to the legacy neko-finance REST backend.
package nekoclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dzenfone819-debug/neko-finance/internal/errs"
	"github.com/dzenfone819-debug/neko-finance/internal/models"
	"github.com/dzenfone819-debug/neko-finance/pkg/helpers"
)

const (
	serviceName = "neko-api"
	userHeader  = "X-User-ID"
)

type Adapter struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewAdapter returns an adapter for the backend at baseURL. token is sent
// as a bearer token when set.
func NewAdapter(baseURL, token string) *Adapter {
	return &Adapter{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type createdResponse struct {
	ID models.ID `json:"id"`
}

func (a *Adapter) CreateAccount(ctx context.Context, uid string, acc models.Account) (models.ID, error) {
	var resp createdResponse
	if err := a.do(ctx, http.MethodPost, "/accounts", uid, acc, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

func (a *Adapter) CreateGoal(ctx context.Context, uid string, g models.Goal) (models.ID, error) {
	var resp createdResponse
	if err := a.do(ctx, http.MethodPost, "/goals", uid, g, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

func (a *Adapter) UpdateGoalProgress(ctx context.Context, uid string, goalID models.ID, currentAmount float64) error {
	body := map[string]float64{"current_amount": currentAmount}
	return a.do(ctx, http.MethodPut, "/goals/"+url.PathEscape(goalID.String()), uid, body, nil)
}

func (a *Adapter) UpsertBudgetSettings(ctx context.Context, uid string, limit float64) error {
	body := map[string]float64{"budget": limit}
	return a.do(ctx, http.MethodPost, "/settings", uid, body, nil)
}

// CreateCustomCategory creates the category and then writes its limit.
// The backend records a zero limit for new categories whatever the
// request carries. When only the limit write fails the new id is returned
// together with the error.
func (a *Adapter) CreateCustomCategory(ctx context.Context, uid string, c models.Category) (string, error) {
	var resp struct {
		ID string `json:"id"`
	}
	if err := a.do(ctx, http.MethodPost, "/custom-categories", uid, c, &resp); err != nil {
		return "", err
	}
	if limit := helpers.ValueOr(c.Limit, 0); limit > 0 && resp.ID != "" {
		if err := a.CreateCategoryLimit(ctx, uid, resp.ID, limit); err != nil {
			return resp.ID, err
		}
	}
	return resp.ID, nil
}

func (a *Adapter) CreateCategoryLimit(ctx context.Context, uid, categoryID string, limit float64) error {
	body := struct {
		Category string  `json:"category"`
		Limit    float64 `json:"limit"`
	}{categoryID, limit}
	return a.do(ctx, http.MethodPost, "/limits", uid, body, nil)
}

// CreateTransaction posts to /add-expense, which also moves the balance
// of the referenced account or goal.
func (a *Adapter) CreateTransaction(ctx context.Context, uid string, t models.Transaction) (models.ID, error) {
	var resp createdResponse
	if err := a.do(ctx, http.MethodPost, "/add-expense", uid, t, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

func (a *Adapter) ListTransactions(ctx context.Context, uid string) ([]models.Transaction, error) {
	var rows []wireTransaction
	if err := a.do(ctx, http.MethodGet, "/transactions?limit=all", uid, nil, &rows); err != nil {
		return nil, err
	}
	out := make([]models.Transaction, 0, len(rows))
	for _, r := range rows {
		t := r.Transaction
		t.Tags = decodeList(r.Tags)
		t.PhotoURLs = decodeList(r.PhotoURLs)
		out = append(out, t)
	}
	return out, nil
}

func (a *Adapter) ListAccounts(ctx context.Context, uid string) ([]models.Account, error) {
	var out []models.Account
	if err := a.do(ctx, http.MethodGet, "/accounts", uid, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *Adapter) ListGoals(ctx context.Context, uid string) ([]models.Goal, error) {
	var out []models.Goal
	if err := a.do(ctx, http.MethodGet, "/goals", uid, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *Adapter) GetBudgetSettings(ctx context.Context, uid string) (*models.BudgetSettings, error) {
	var resp struct {
		Budget *float64 `json:"budget"`
	}
	if err := a.do(ctx, http.MethodGet, "/settings", uid, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Budget == nil {
		return nil, nil
	}
	return &models.BudgetSettings{Budget: resp.Budget}, nil
}

func (a *Adapter) ListCustomCategories(ctx context.Context, uid string) ([]models.Category, error) {
	var out []models.Category
	if err := a.do(ctx, http.MethodGet, "/custom-categories", uid, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *Adapter) ListCategoryLimits(ctx context.Context, uid string) (models.CategoryLimits, error) {
	out := models.CategoryLimits{}
	if err := a.do(ctx, http.MethodGet, "/limits", uid, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *Adapter) do(ctx context.Context, method, path, uid string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set(userHeader, uid)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return errs.NewExternalServiceError(serviceName, method+" "+path+" failed", 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		msg := fmt.Sprintf("%s %s returned %d", method, path, resp.StatusCode)
		if len(detail) > 0 {
			msg += ": " + strings.TrimSpace(string(detail))
		}
		return errs.NewExternalServiceError(serviceName, msg, resp.StatusCode, nil)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errs.NewExternalServiceError(serviceName, "invalid response from "+path, resp.StatusCode, err)
	}
	return nil
}
