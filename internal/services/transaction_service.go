package services

import (
	"context"
	"errors"
	"time"

	"budget/internal/db"
	"budget/internal/logging"
	"budget/internal/models"
	"budget/internal/money"
	"budget/internal/notify"
	"budget/internal/store"
	"budget/internal/websocket"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

var ErrScopeRequired = errors.New("scopeId is required")

type TransactionService struct {
	txRunner     db.TxRunner
	transactions TransactionStore
	scopes       ScopeStore
	publisher    AlertPublisher
	hub          ChangeHub
	logger       *logging.Logger
	loc          *time.Location
	now          func() time.Time
}

type TransactionServiceOption func(*TransactionService)

// WithLocation sets the zone that decides which calendar month a
// transaction is counted in.
func WithLocation(loc *time.Location) TransactionServiceOption {
	return func(s *TransactionService) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithClock(now func() time.Time) TransactionServiceOption {
	return func(s *TransactionService) {
		if now != nil {
			s.now = now
		}
	}
}

func NewTransactionService(txRunner db.TxRunner, transactions TransactionStore, scopes ScopeStore, publisher AlertPublisher, hub ChangeHub, logger *logging.Logger, opts ...TransactionServiceOption) *TransactionService {
	if publisher == nil {
		publisher = notify.NoopPublisher{}
	}
	s := &TransactionService{
		txRunner:     txRunner,
		transactions: transactions,
		scopes:       scopes,
		publisher:    publisher,
		hub:          hubOrNoop(hub),
		logger:       logger.WithComponent(logging.ComponentServices),
		loc:          time.Local,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create stores a new transaction for the user. When the scope's
// month-to-date spend approaches or passes its monthly limit a budget
// alert is published; publishing failures are logged only.
func (s *TransactionService) Create(ctx context.Context, input models.Transaction) (models.Transaction, error) {
	if input.ScopeID == "" {
		return models.Transaction{}, ErrScopeRequired
	}
	if err := money.RequirePositive(input.Amount); err != nil {
		return models.Transaction{}, err
	}
	if input.ID == "" {
		input.ID = uuid.NewString()
	}
	if input.Date.IsZero() {
		input.Date = s.now()
	}
	from, to := monthBounds(input.Date, s.loc)
	var created models.Transaction
	var spent decimal.Decimal
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		created, err = s.transactions.Create(ctx, tx, input)
		if err != nil {
			return err
		}
		spent, err = s.transactions.SumForScope(ctx, tx, created.UserID, created.ScopeID, from, to)
		return err
	})
	if err != nil {
		return models.Transaction{}, err
	}
	s.hub.Broadcast(created.UserID, websocket.ChangeEvent{
		Entity: websocket.EntityTransaction,
		Action: websocket.ActionCreated,
		ID:     created.ID,
		Data:   created,
	})
	s.checkBudget(ctx, created, spent, from)
	return created, nil
}

func (s *TransactionService) checkBudget(ctx context.Context, created models.Transaction, spent decimal.Decimal, month time.Time) {
	scope, err := s.scopes.GetVisible(ctx, created.ScopeID, created.UserID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.WarnContext(ctx, "budget check skipped", "scope_id", created.ScopeID, "error", err)
		}
		return
	}
	limit := scope.EffectiveMonthlyLimit()
	level := notify.Evaluate(spent, limit)
	if level == notify.LevelNone {
		return
	}
	alert := notify.BudgetAlert{
		UserID:    created.UserID,
		ScopeID:   scope.ID,
		ScopeName: scope.Name,
		Level:     level,
		Spent:     spent,
		Limit:     limit,
		Month:     month.Format("2006-01"),
		Message:   notify.MessageFor(level, scope.Name),
		Timestamp: s.now(),
	}
	if err := s.publisher.PublishBudgetAlert(ctx, alert); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish budget alert",
			"user_id", created.UserID,
			"scope_id", scope.ID,
			"error", err)
	}
}

// monthBounds returns [first of month, first of next month) for t in loc.
func monthBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	local := t.In(loc)
	from := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
	return from, from.AddDate(0, 1, 0)
}
