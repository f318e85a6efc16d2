package apiclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"budget/internal/models"

	"github.com/shopspring/decimal"
)

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResult struct {
	User  models.PublicUser `json:"user"`
	Token string            `json:"token"`
}

type ScopeInput struct {
	Name         string            `json:"name"`
	DailyLimit   decimal.Decimal   `json:"dailyLimit"`
	MonthlyLimit *decimal.Decimal  `json:"monthlyLimit,omitempty"`
	Icon         models.ScopeIcon  `json:"icon,omitempty"`
	Color        models.ScopeColor `json:"color,omitempty"`
}

type TransactionInput struct {
	ScopeID     string          `json:"scopeId"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
	Date        *time.Time      `json:"date,omitempty"`
}

type BillInput struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
	Paid   bool            `json:"paid"`
}

type Health struct {
	Status string    `json:"status"`
	Seeded bool      `json:"seeded"`
	Time   time.Time `json:"time"`
}

type deleteResult struct {
	Deleted bool `json:"deleted"`
}

func (c *Client) Register(ctx context.Context, email, password string) (AuthResult, error) {
	return do[AuthResult](ctx, c, http.MethodPost, "/api/auth/register", Credentials{Email: email, Password: password})
}

func (c *Client) Login(ctx context.Context, email, password string) (AuthResult, error) {
	return do[AuthResult](ctx, c, http.MethodPost, "/api/auth/login", Credentials{Email: email, Password: password})
}

func (c *Client) Me(ctx context.Context) (models.PublicUser, error) {
	return do[models.PublicUser](ctx, c, http.MethodGet, "/api/auth/me", nil)
}

func (c *Client) Health(ctx context.Context) (Health, error) {
	return do[Health](ctx, c, http.MethodGet, "/api/health", nil)
}

func (c *Client) ListScopes(ctx context.Context) ([]models.Scope, error) {
	return do[[]models.Scope](ctx, c, http.MethodGet, "/api/scopes", nil)
}

func (c *Client) CreateScope(ctx context.Context, input ScopeInput) (models.Scope, error) {
	return do[models.Scope](ctx, c, http.MethodPost, "/api/scopes", input)
}

func (c *Client) UpdateScope(ctx context.Context, id string, patch models.ScopePatch) (models.Scope, error) {
	return do[models.Scope](ctx, c, http.MethodPut, "/api/scopes/"+url.PathEscape(id), patch)
}

func (c *Client) DeleteScope(ctx context.Context, id string) (bool, error) {
	res, err := do[deleteResult](ctx, c, http.MethodDelete, "/api/scopes/"+url.PathEscape(id), nil)
	return res.Deleted, err
}

func (c *Client) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	return do[[]models.Transaction](ctx, c, http.MethodGet, "/api/transactions", nil)
}

func (c *Client) CreateTransaction(ctx context.Context, input TransactionInput) (models.Transaction, error) {
	return do[models.Transaction](ctx, c, http.MethodPost, "/api/transactions", input)
}

func (c *Client) UpdateTransaction(ctx context.Context, id string, patch models.TransactionPatch) (models.Transaction, error) {
	return do[models.Transaction](ctx, c, http.MethodPut, "/api/transactions/"+url.PathEscape(id), patch)
}

func (c *Client) DeleteTransaction(ctx context.Context, id string) (bool, error) {
	res, err := do[deleteResult](ctx, c, http.MethodDelete, "/api/transactions/"+url.PathEscape(id), nil)
	return res.Deleted, err
}

func (c *Client) ListBills(ctx context.Context) ([]models.Bill, error) {
	return do[[]models.Bill](ctx, c, http.MethodGet, "/api/bills", nil)
}

func (c *Client) CreateBill(ctx context.Context, input BillInput) (models.Bill, error) {
	return do[models.Bill](ctx, c, http.MethodPost, "/api/bills", input)
}

func (c *Client) UpdateBill(ctx context.Context, id string, patch models.BillPatch) (models.Bill, error) {
	return do[models.Bill](ctx, c, http.MethodPut, "/api/bills/"+url.PathEscape(id), patch)
}

func (c *Client) DeleteBill(ctx context.Context, id string) (bool, error) {
	res, err := do[deleteResult](ctx, c, http.MethodDelete, "/api/bills/"+url.PathEscape(id), nil)
	return res.Deleted, err
}

func (c *Client) GetSettings(ctx context.Context) (models.UserSettings, error) {
	return do[models.UserSettings](ctx, c, http.MethodGet, "/api/user-settings", nil)
}

func (c *Client) UpdateSettings(ctx context.Context, patch models.SettingsPatch) (models.UserSettings, error) {
	return do[models.UserSettings](ctx, c, http.MethodPut, "/api/user-settings", patch)
}

// Export copies the server-rendered file for format ("csv" or "xlsx") to w.
func (c *Client) Export(ctx context.Context, format string, w io.Writer) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/export?format="+url.QueryEscape(format), nil)
	if err != nil {
		return err
	}
	resp, err := c.send(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		var env envelope
		_ = decodeEnvelope(resp.Body, &env)
		return &APIError{Status: resp.StatusCode, Message: failureMessage(resp.StatusCode, env.Error)}
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("read export: %w", err)
	}
	return nil
}
