package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"budget/internal/auth"
	"budget/internal/config"
	"budget/internal/logging"
	"budget/internal/models"
	"budget/internal/services"
	"budget/internal/store"
	"budget/internal/websocket"

	"github.com/jmoiron/sqlx"
)

const testSecret = "secret"

type fakeTxRunner struct {
	withTxFn func(ctx context.Context, fn func(*sqlx.Tx) error) error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.withTxFn != nil {
		return f.withTxFn(ctx, fn)
	}
	return fn(nil)
}

type stubUserStore struct {
	createFn      func(ctx context.Context, tx store.Getter, id, email, passwordHash string) (models.User, error)
	getByEmailFn  func(ctx context.Context, email string) (models.User, error)
	getByIDFn     func(ctx context.Context, userID string) (models.User, error)
	emailExistsFn func(ctx context.Context, email string) (bool, error)
	updateHashFn  func(ctx context.Context, userID, passwordHash string) error
}

func (s stubUserStore) Create(ctx context.Context, tx store.Getter, id, email, passwordHash string) (models.User, error) {
	if s.createFn == nil {
		return models.User{ID: id, Email: email, PasswordHash: passwordHash}, nil
	}
	return s.createFn(ctx, tx, id, email, passwordHash)
}

func (s stubUserStore) GetByEmail(ctx context.Context, email string) (models.User, error) {
	if s.getByEmailFn == nil {
		return models.User{}, store.ErrNotFound
	}
	return s.getByEmailFn(ctx, email)
}

func (s stubUserStore) GetByID(ctx context.Context, userID string) (models.User, error) {
	if s.getByIDFn == nil {
		return models.User{}, store.ErrNotFound
	}
	return s.getByIDFn(ctx, userID)
}

func (s stubUserStore) EmailExists(ctx context.Context, email string) (bool, error) {
	if s.emailExistsFn == nil {
		return false, nil
	}
	return s.emailExistsFn(ctx, email)
}

func (s stubUserStore) UpdatePasswordHash(ctx context.Context, userID, passwordHash string) error {
	if s.updateHashFn == nil {
		return nil
	}
	return s.updateHashFn(ctx, userID, passwordHash)
}

type stubScopeStore struct {
	listFn     func(ctx context.Context, userID string) ([]models.Scope, error)
	getOwnedFn func(ctx context.Context, id, userID string) (models.Scope, error)
	createFn   func(ctx context.Context, tx store.Getter, scope models.Scope) (models.Scope, error)
	updateFn   func(ctx context.Context, scope models.Scope, userID string) (models.Scope, error)
	deleteFn   func(ctx context.Context, id, userID string) (bool, error)
}

func (s stubScopeStore) ListVisible(ctx context.Context, userID string) ([]models.Scope, error) {
	if s.listFn == nil {
		return []models.Scope{}, nil
	}
	return s.listFn(ctx, userID)
}

func (s stubScopeStore) GetOwned(ctx context.Context, id, userID string) (models.Scope, error) {
	if s.getOwnedFn == nil {
		return models.Scope{}, store.ErrNotFound
	}
	return s.getOwnedFn(ctx, id, userID)
}

func (s stubScopeStore) Create(ctx context.Context, tx store.Getter, scope models.Scope) (models.Scope, error) {
	if s.createFn == nil {
		return scope, nil
	}
	return s.createFn(ctx, tx, scope)
}

func (s stubScopeStore) Update(ctx context.Context, scope models.Scope, userID string) (models.Scope, error) {
	if s.updateFn == nil {
		return scope, nil
	}
	return s.updateFn(ctx, scope, userID)
}

func (s stubScopeStore) Delete(ctx context.Context, id, userID string) (bool, error) {
	if s.deleteFn == nil {
		return false, nil
	}
	return s.deleteFn(ctx, id, userID)
}

type stubTransactionStore struct {
	listFn     func(ctx context.Context, userID string) ([]models.Transaction, error)
	getOwnedFn func(ctx context.Context, id, userID string) (models.Transaction, error)
	updateFn   func(ctx context.Context, transaction models.Transaction) (models.Transaction, error)
	deleteFn   func(ctx context.Context, id, userID string) (bool, error)
}

func (s stubTransactionStore) ListByUser(ctx context.Context, userID string) ([]models.Transaction, error) {
	if s.listFn == nil {
		return []models.Transaction{}, nil
	}
	return s.listFn(ctx, userID)
}

func (s stubTransactionStore) GetOwned(ctx context.Context, id, userID string) (models.Transaction, error) {
	if s.getOwnedFn == nil {
		return models.Transaction{}, store.ErrNotFound
	}
	return s.getOwnedFn(ctx, id, userID)
}

func (s stubTransactionStore) Update(ctx context.Context, transaction models.Transaction) (models.Transaction, error) {
	if s.updateFn == nil {
		return transaction, nil
	}
	return s.updateFn(ctx, transaction)
}

func (s stubTransactionStore) Delete(ctx context.Context, id, userID string) (bool, error) {
	if s.deleteFn == nil {
		return false, nil
	}
	return s.deleteFn(ctx, id, userID)
}

type stubBillStore struct {
	listFn   func(ctx context.Context, userID string) ([]models.Bill, error)
	createFn func(ctx context.Context, tx store.Getter, bill models.Bill) (models.Bill, error)
	deleteFn func(ctx context.Context, id, userID string) (bool, error)
}

func (s stubBillStore) ListVisible(ctx context.Context, userID string) ([]models.Bill, error) {
	if s.listFn == nil {
		return []models.Bill{}, nil
	}
	return s.listFn(ctx, userID)
}

func (s stubBillStore) Create(ctx context.Context, tx store.Getter, bill models.Bill) (models.Bill, error) {
	if s.createFn == nil {
		return bill, nil
	}
	return s.createFn(ctx, tx, bill)
}

func (s stubBillStore) Delete(ctx context.Context, id, userID string) (bool, error) {
	if s.deleteFn == nil {
		return false, nil
	}
	return s.deleteFn(ctx, id, userID)
}

type stubSettingsStore struct {
	getFn       func(ctx context.Context, userID string) (models.UserSettings, error)
	lockedGetFn func(ctx context.Context, tx store.Getter, userID string) (models.UserSettings, error)
	upsertFn    func(ctx context.Context, tx store.Getter, settings models.UserSettings) (models.UserSettings, error)
}

func (s stubSettingsStore) GetOrDefault(ctx context.Context, userID string) (models.UserSettings, error) {
	if s.getFn == nil {
		return models.DefaultSettings(userID), nil
	}
	return s.getFn(ctx, userID)
}

// GetForUpdate falls back to getFn so tests that only care about the
// merged result can stub a single read.
func (s stubSettingsStore) GetForUpdate(ctx context.Context, tx store.Getter, userID string) (models.UserSettings, error) {
	if s.lockedGetFn != nil {
		return s.lockedGetFn(ctx, tx, userID)
	}
	return s.GetOrDefault(ctx, userID)
}

func (s stubSettingsStore) Upsert(ctx context.Context, tx store.Getter, settings models.UserSettings) (models.UserSettings, error) {
	if s.upsertFn == nil {
		return settings, nil
	}
	return s.upsertFn(ctx, tx, settings)
}

type stubTransactionService struct {
	createFn func(ctx context.Context, input models.Transaction) (models.Transaction, error)
}

func (s stubTransactionService) Create(ctx context.Context, input models.Transaction) (models.Transaction, error) {
	if s.createFn == nil {
		input.ID = "t-new"
		return input, nil
	}
	return s.createFn(ctx, input)
}

type stubBillService struct {
	updateFn func(ctx context.Context, userID, billID string, patch models.BillPatch) (services.BillUpdate, error)
}

func (s stubBillService) Update(ctx context.Context, userID, billID string, patch models.BillPatch) (services.BillUpdate, error) {
	return s.updateFn(ctx, userID, billID, patch)
}

type stubSeeder struct {
	seedFn func(ctx context.Context) (bool, error)
}

func (s stubSeeder) EnsureDemoData(ctx context.Context) (bool, error) {
	if s.seedFn == nil {
		return false, nil
	}
	return s.seedFn(ctx)
}

// testDeps starts from harmless defaults; tests override what they exercise.
type testDeps struct {
	txRunner fakeTxRunner
	stores   Stores
	services Services
	cfg      config.Config
}

func defaultDeps() testDeps {
	return testDeps{
		stores: Stores{
			Users:        stubUserStore{},
			Scopes:       stubScopeStore{},
			Transactions: stubTransactionStore{},
			Bills:        stubBillStore{},
			Settings:     stubSettingsStore{},
		},
		services: Services{
			Transactions: stubTransactionService{},
			Bills:        stubBillService{},
			Seeder:       stubSeeder{},
		},
		cfg: config.Config{JWTSecret: testSecret, TokenTTL: time.Hour, AllowedOrigins: "*"},
	}
}

func newTestHandler(d testDeps) *Handler {
	h := New(d.txRunner, d.cfg, d.stores, d.services, websocket.NewHub(), logging.Discard())
	h.loc = time.UTC
	h.now = func() time.Time { return time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC) }
	return h
}

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func doRequest(t *testing.T, h *Handler, method, path, userID string, body any) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	var reader *bytes.Reader
	switch v := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(v))
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		token, err := auth.GenerateToken(testSecret, userID, time.Minute)
		if err != nil {
			t.Fatalf("failed to generate token: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.Routes().ServeHTTP(rr, req)
	var resp apiResponse
	if rr.Header().Get("Content-Type") == "application/json" {
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode envelope: %v (%s)", err, rr.Body.String())
		}
	}
	return rr, resp
}

func decodeData(t *testing.T, resp apiResponse, dest any) {
	t.Helper()
	if err := json.Unmarshal(resp.Data, dest); err != nil {
		t.Fatalf("decode data: %v (%s)", err, string(resp.Data))
	}
}

func expectError(t *testing.T, rr *httptest.ResponseRecorder, resp apiResponse, status int, message string) {
	t.Helper()
	if rr.Code != status {
		t.Fatalf("expected %d, got %d (%s)", status, rr.Code, rr.Body.String())
	}
	if resp.Success || resp.Error != message {
		t.Fatalf("expected error %q, got %+v", message, resp)
	}
}
