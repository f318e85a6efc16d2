// Package budget holds the client-side view of a user's data. All writes go
// through the API; derived figures come from the selectors in this package.
package budget

import (
	"context"
	"slices"
	"sync"
	"time"

	"budget/internal/apiclient"
	"budget/internal/logging"
	"budget/internal/models"
	"budget/internal/session"

	"golang.org/x/sync/errgroup"
)

type API interface {
	SetToken(token string)
	Register(ctx context.Context, email, password string) (apiclient.AuthResult, error)
	Login(ctx context.Context, email, password string) (apiclient.AuthResult, error)

	ListScopes(ctx context.Context) ([]models.Scope, error)
	CreateScope(ctx context.Context, input apiclient.ScopeInput) (models.Scope, error)
	UpdateScope(ctx context.Context, id string, patch models.ScopePatch) (models.Scope, error)
	DeleteScope(ctx context.Context, id string) (bool, error)

	ListTransactions(ctx context.Context) ([]models.Transaction, error)
	CreateTransaction(ctx context.Context, input apiclient.TransactionInput) (models.Transaction, error)
	UpdateTransaction(ctx context.Context, id string, patch models.TransactionPatch) (models.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) (bool, error)

	ListBills(ctx context.Context) ([]models.Bill, error)
	CreateBill(ctx context.Context, input apiclient.BillInput) (models.Bill, error)
	UpdateBill(ctx context.Context, id string, patch models.BillPatch) (models.Bill, error)
	DeleteBill(ctx context.Context, id string) (bool, error)

	GetSettings(ctx context.Context) (models.UserSettings, error)
	UpdateSettings(ctx context.Context, patch models.SettingsPatch) (models.UserSettings, error)
}

type SessionStorage interface {
	Load() (session.Data, error)
	Save(data session.Data) error
	Clear() error
}

// State is a copy of the store's contents.
type State struct {
	Token        string
	User         *models.PublicUser
	Scopes       []models.Scope
	Transactions []models.Transaction
	Bills        []models.Bill
	Settings     models.UserSettings
	Loading      bool
}

func (s State) clone() State {
	s.Scopes = slices.Clone(s.Scopes)
	s.Transactions = slices.Clone(s.Transactions)
	s.Bills = slices.Clone(s.Bills)
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

type Store struct {
	api    API
	sess   SessionStorage
	logger *logging.Logger
	loc    *time.Location
	now    func() time.Time

	mu    sync.RWMutex
	state State
}

type Option func(*Store)

// WithLocation sets the zone that defines "today" and "this month".
func WithLocation(loc *time.Location) Option {
	return func(s *Store) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLogger(logger *logging.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger.WithComponent(logging.ComponentClient)
		}
	}
}

// New restores any saved session into the store and the API client.
func New(api API, sess SessionStorage, opts ...Option) *Store {
	s := &Store{
		api:    api,
		sess:   sess,
		logger: logging.Discard(),
		loc:    time.Local,
		now:    time.Now,
		state:  State{Settings: models.DefaultSettings("")},
	}
	for _, opt := range opts {
		opt(s)
	}
	data, err := sess.Load()
	if err != nil {
		s.logger.Warn("could not restore session", "error", err)
		return s
	}
	if !data.Empty() {
		s.state.Token = data.Token
		s.state.User = data.User
		if data.User != nil {
			s.state.Settings.UserID = data.User.ID
		}
		api.SetToken(data.Token)
	}
	return s
}

func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Loading
}

func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Token != ""
}

// View returns the selectors evaluated at the store's current time.
func (s *Store) View() View {
	return View{State: s.Snapshot(), Now: s.now(), Loc: s.loc}
}

func (s *Store) Location() *time.Location {
	return s.loc
}

func (s *Store) setLoading(loading bool) {
	s.mu.Lock()
	s.state.Loading = loading
	s.mu.Unlock()
}

// LoadData fetches settings, scopes, transactions and bills concurrently
// and replaces the local lists. Without a token it does nothing. On
// failure the previous state is kept and the error is logged and returned.
func (s *Store) LoadData(ctx context.Context) error {
	if !s.Authenticated() {
		return nil
	}
	s.setLoading(true)
	defer s.setLoading(false)

	var (
		settings     models.UserSettings
		scopes       []models.Scope
		transactions []models.Transaction
		bills        []models.Bill
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		settings, err = s.api.GetSettings(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		scopes, err = s.api.ListScopes(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		transactions, err = s.api.ListTransactions(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		bills, err = s.api.ListBills(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "failed to load data", "error", err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Settings = settings
	s.state.Scopes = scopes
	s.state.Transactions = transactions
	s.state.Bills = bills
	return nil
}

func (s *Store) Login(ctx context.Context, email, password string) error {
	res, err := s.api.Login(ctx, email, password)
	if err != nil {
		return err
	}
	return s.signIn(ctx, res)
}

func (s *Store) Register(ctx context.Context, email, password string) error {
	res, err := s.api.Register(ctx, email, password)
	if err != nil {
		return err
	}
	return s.signIn(ctx, res)
}

// signIn persists the session and loads data. A failed load is logged by
// LoadData and does not undo the sign-in.
func (s *Store) signIn(ctx context.Context, res apiclient.AuthResult) error {
	user := res.User
	if err := s.sess.Save(session.Data{Token: res.Token, User: &user}); err != nil {
		return err
	}
	s.api.SetToken(res.Token)
	s.mu.Lock()
	s.state.Token = res.Token
	s.state.User = &user
	s.state.Settings.UserID = user.ID
	s.mu.Unlock()
	_ = s.LoadData(ctx)
	return nil
}

// Logout forgets the session locally. Tokens are not revoked server-side.
func (s *Store) Logout() error {
	err := s.sess.Clear()
	s.api.SetToken("")
	s.mu.Lock()
	s.state = State{Settings: models.DefaultSettings("")}
	s.mu.Unlock()
	return err
}

func (s *Store) AddTransaction(ctx context.Context, input apiclient.TransactionInput) (models.Transaction, error) {
	created, err := s.api.CreateTransaction(ctx, input)
	if err != nil {
		return models.Transaction{}, err
	}
	s.mu.Lock()
	s.state.Transactions = append(s.state.Transactions, created)
	s.mu.Unlock()
	return created, nil
}

func (s *Store) UpdateTransaction(ctx context.Context, id string, patch models.TransactionPatch) (models.Transaction, error) {
	updated, err := s.api.UpdateTransaction(ctx, id, patch)
	if err != nil {
		return models.Transaction{}, err
	}
	s.mu.Lock()
	s.state.Transactions = replaceByID(s.state.Transactions, updated, func(t models.Transaction) string { return t.ID })
	s.mu.Unlock()
	return updated, nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	if _, err := s.api.DeleteTransaction(ctx, id); err != nil {
		return err
	}
	s.mu.Lock()
	s.state.Transactions = removeByID(s.state.Transactions, id, func(t models.Transaction) string { return t.ID })
	s.mu.Unlock()
	return nil
}

func (s *Store) AddScope(ctx context.Context, input apiclient.ScopeInput) (models.Scope, error) {
	created, err := s.api.CreateScope(ctx, input)
	if err != nil {
		return models.Scope{}, err
	}
	s.mu.Lock()
	s.state.Scopes = append(s.state.Scopes, created)
	s.mu.Unlock()
	return created, nil
}

func (s *Store) UpdateScope(ctx context.Context, id string, patch models.ScopePatch) (models.Scope, error) {
	updated, err := s.api.UpdateScope(ctx, id, patch)
	if err != nil {
		return models.Scope{}, err
	}
	s.mu.Lock()
	s.state.Scopes = replaceByID(s.state.Scopes, updated, func(sc models.Scope) string { return sc.ID })
	s.mu.Unlock()
	return updated, nil
}

// DeleteScope keeps the scope's transactions; they show as uncategorized.
func (s *Store) DeleteScope(ctx context.Context, id string) error {
	if _, err := s.api.DeleteScope(ctx, id); err != nil {
		return err
	}
	s.mu.Lock()
	s.state.Scopes = removeByID(s.state.Scopes, id, func(sc models.Scope) string { return sc.ID })
	s.mu.Unlock()
	return nil
}

func (s *Store) AddBill(ctx context.Context, input apiclient.BillInput) (models.Bill, error) {
	created, err := s.api.CreateBill(ctx, input)
	if err != nil {
		return models.Bill{}, err
	}
	s.mu.Lock()
	s.state.Bills = append(s.state.Bills, created)
	s.mu.Unlock()
	return created, nil
}

// UpdateBill sends the patch. The server moves the balance when paid
// flips, so in that case settings are re-read afterwards.
func (s *Store) UpdateBill(ctx context.Context, id string, patch models.BillPatch) (models.Bill, error) {
	s.mu.RLock()
	current, known := findByID(s.state.Bills, id, func(b models.Bill) string { return b.ID })
	s.mu.RUnlock()

	updated, err := s.api.UpdateBill(ctx, id, patch)
	if err != nil {
		return models.Bill{}, err
	}
	s.mu.Lock()
	s.state.Bills = replaceByID(s.state.Bills, updated, func(b models.Bill) string { return b.ID })
	s.mu.Unlock()

	if patch.Paid != nil && (!known || current.Paid != *patch.Paid) {
		s.refreshSettings(ctx)
	}
	return updated, nil
}

func (s *Store) refreshSettings(ctx context.Context) {
	settings, err := s.api.GetSettings(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to refresh settings", "error", err)
		return
	}
	s.mu.Lock()
	s.state.Settings = settings
	s.mu.Unlock()
}

func (s *Store) DeleteBill(ctx context.Context, id string) error {
	if _, err := s.api.DeleteBill(ctx, id); err != nil {
		return err
	}
	s.mu.Lock()
	s.state.Bills = removeByID(s.state.Bills, id, func(b models.Bill) string { return b.ID })
	s.mu.Unlock()
	return nil
}

// UpdateSettings shows the patch locally before the server confirms it and
// restores the previous settings if the request fails.
func (s *Store) UpdateSettings(ctx context.Context, patch models.SettingsPatch) (models.UserSettings, error) {
	return optimistic(s,
		func(st *State) *models.UserSettings { return &st.Settings },
		patch.Apply,
		func() (models.UserSettings, error) { return s.api.UpdateSettings(ctx, patch) },
	)
}

// optimistic applies local to the selected field, runs remote, then either
// stores the authoritative result or puts the snapshot back.
func optimistic[T any](s *Store, field func(*State) *T, local func(*T), remote func() (T, error)) (T, error) {
	s.mu.Lock()
	target := field(&s.state)
	snapshot := *target
	local(target)
	s.mu.Unlock()

	result, err := remote()

	s.mu.Lock()
	defer s.mu.Unlock()
	target = field(&s.state)
	if err != nil {
		*target = snapshot
		var zero T
		return zero, err
	}
	*target = result
	return result, nil
}

func findByID[T any](items []T, id string, key func(T) string) (T, bool) {
	for _, item := range items {
		if key(item) == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

func replaceByID[T any](items []T, updated T, key func(T) string) []T {
	id := key(updated)
	out := slices.Clone(items)
	for i := range out {
		if key(out[i]) == id {
			out[i] = updated
		}
	}
	return out
}

func removeByID[T any](items []T, id string, key func(T) string) []T {
	return slices.DeleteFunc(slices.Clone(items), func(item T) bool { return key(item) == id })
}
