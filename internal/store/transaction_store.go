package store

import (
	"context"
	"time"

	"budget/internal/models"

	"github.com/shopspring/decimal"
)

type TransactionStore struct {
	db DB
}

func NewTransactionStore(db DB) *TransactionStore {
	return &TransactionStore{db: db}
}

const transactionColumns = `id, user_id, scope_id, amount, description, date, created_at`

func (s *TransactionStore) ListByUser(ctx context.Context, userID string) ([]models.Transaction, error) {
	transactions := []models.Transaction{}
	err := s.db.SelectContext(ctx, &transactions, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE user_id = $1
		ORDER BY date DESC, created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return transactions, nil
}

func (s *TransactionStore) GetOwned(ctx context.Context, id, userID string) (models.Transaction, error) {
	var transaction models.Transaction
	err := s.db.GetContext(ctx, &transaction, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return models.Transaction{}, notFound(err)
	}
	return transaction, nil
}

func (s *TransactionStore) Create(ctx context.Context, tx Getter, input models.Transaction) (models.Transaction, error) {
	var created models.Transaction
	err := tx.GetContext(ctx, &created, `
		INSERT INTO transactions (id, user_id, scope_id, amount, description, date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+transactionColumns,
		input.ID, input.UserID, input.ScopeID, input.Amount, input.Description, input.Date,
	)
	if err != nil {
		return models.Transaction{}, err
	}
	return created, nil
}

func (s *TransactionStore) Update(ctx context.Context, transaction models.Transaction) (models.Transaction, error) {
	var updated models.Transaction
	err := s.db.GetContext(ctx, &updated, `
		UPDATE transactions
		SET scope_id = $1, amount = $2, description = $3, date = $4
		WHERE id = $5 AND user_id = $6
		RETURNING `+transactionColumns,
		transaction.ScopeID, transaction.Amount, transaction.Description, transaction.Date, transaction.ID, transaction.UserID,
	)
	if err != nil {
		return models.Transaction{}, notFound(err)
	}
	return updated, nil
}

func (s *TransactionStore) Delete(ctx context.Context, id, userID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, err
	}
	return affected(res)
}

// SumForScope totals a user's spend in one scope over [from, to).
func (s *TransactionStore) SumForScope(ctx context.Context, tx Getter, userID, scopeID string, from, to time.Time) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := tx.GetContext(ctx, &sum, `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE user_id = $1 AND scope_id = $2 AND date >= $3 AND date < $4
	`, userID, scopeID, from, to)
	return sum, err
}
