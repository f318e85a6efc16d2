package budget

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"budget/internal/apiclient"
	"budget/internal/models"

	"github.com/shopspring/decimal"
)

var errBoom = errors.New("boom")

// fakeAPI behaves like a tiny server: bills moved to paid adjust the balance.
type fakeAPI struct {
	mu           sync.Mutex
	token        string
	settings     models.UserSettings
	scopes       []models.Scope
	transactions []models.Transaction
	bills        []models.Bill

	calls atomic.Int32

	failList       error
	updateSettings func(patch models.SettingsPatch) (models.UserSettings, error)
	createTx       func(input apiclient.TransactionInput) (models.Transaction, error)
	getSettingsErr error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{settings: models.DefaultSettings("user-1")}
}

func (f *fakeAPI) SetToken(token string) {
	f.mu.Lock()
	f.token = token
	f.mu.Unlock()
}

func (f *fakeAPI) Token() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeAPI) auth(email string) (apiclient.AuthResult, error) {
	if email == "" {
		return apiclient.AuthResult{}, &apiclient.APIError{Status: 401, Message: "invalid credentials"}
	}
	return apiclient.AuthResult{User: models.PublicUser{ID: "user-1", Email: email}, Token: "tok-1"}, nil
}

func (f *fakeAPI) Register(_ context.Context, email, _ string) (apiclient.AuthResult, error) {
	return f.auth(email)
}

func (f *fakeAPI) Login(_ context.Context, email, _ string) (apiclient.AuthResult, error) {
	return f.auth(email)
}

func (f *fakeAPI) ListScopes(context.Context) ([]models.Scope, error) {
	f.calls.Add(1)
	if f.failList != nil {
		return nil, f.failList
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Scope(nil), f.scopes...), nil
}

func (f *fakeAPI) CreateScope(_ context.Context, input apiclient.ScopeInput) (models.Scope, error) {
	return models.Scope{ID: "scope-new", Name: input.Name, DailyLimit: input.DailyLimit}, nil
}

func (f *fakeAPI) UpdateScope(_ context.Context, id string, patch models.ScopePatch) (models.Scope, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.scopes {
		if f.scopes[i].ID == id {
			patch.Apply(&f.scopes[i])
			return f.scopes[i], nil
		}
	}
	return models.Scope{}, &apiclient.APIError{Status: 404, Message: "scope not found"}
}

func (f *fakeAPI) DeleteScope(context.Context, string) (bool, error) {
	return true, nil
}

func (f *fakeAPI) ListTransactions(context.Context) ([]models.Transaction, error) {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Transaction(nil), f.transactions...), nil
}

func (f *fakeAPI) CreateTransaction(_ context.Context, input apiclient.TransactionInput) (models.Transaction, error) {
	if f.createTx != nil {
		return f.createTx(input)
	}
	return models.Transaction{ID: "tx-new", ScopeID: input.ScopeID, Amount: input.Amount}, nil
}

func (f *fakeAPI) UpdateTransaction(_ context.Context, id string, patch models.TransactionPatch) (models.Transaction, error) {
	t := models.Transaction{ID: id}
	patch.Apply(&t)
	return t, nil
}

// DeleteTransaction reports nothing deleted so callers must still drop the row.
func (f *fakeAPI) DeleteTransaction(context.Context, string) (bool, error) {
	return false, nil
}

func (f *fakeAPI) ListBills(context.Context) ([]models.Bill, error) {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Bill(nil), f.bills...), nil
}

func (f *fakeAPI) CreateBill(_ context.Context, input apiclient.BillInput) (models.Bill, error) {
	return models.Bill{ID: "bill-new", Name: input.Name, Amount: input.Amount, Paid: input.Paid}, nil
}

func (f *fakeAPI) UpdateBill(_ context.Context, id string, patch models.BillPatch) (models.Bill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.bills {
		if f.bills[i].ID != id {
			continue
		}
		next := f.bills[i]
		patch.Apply(&next)
		delta := models.Bill{Amount: next.Amount, Paid: f.bills[i].Paid}.PaidDelta(next.Paid)
		f.settings.CurrentBalance = f.settings.CurrentBalance.Add(delta)
		f.bills[i] = next
		return next, nil
	}
	return models.Bill{}, &apiclient.APIError{Status: 404, Message: "bill not found"}
}

func (f *fakeAPI) DeleteBill(context.Context, string) (bool, error) {
	return true, nil
}

func (f *fakeAPI) GetSettings(context.Context) (models.UserSettings, error) {
	f.calls.Add(1)
	if f.getSettingsErr != nil {
		return models.UserSettings{}, f.getSettingsErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.settings, nil
}

func (f *fakeAPI) UpdateSettings(_ context.Context, patch models.SettingsPatch) (models.UserSettings, error) {
	if f.updateSettings != nil {
		return f.updateSettings(patch)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	patch.Apply(&f.settings)
	return f.settings, nil
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
