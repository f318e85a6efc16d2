package store

import (
	"context"

	"budget/internal/models"
)

type BillStore struct {
	db DB
}

func NewBillStore(db DB) *BillStore {
	return &BillStore{db: db}
}

const billColumns = `id, user_id, name, amount, paid, created_at`

// ListVisible returns the user's bills plus shared demo bills.
func (s *BillStore) ListVisible(ctx context.Context, userID string) ([]models.Bill, error) {
	bills := []models.Bill{}
	err := s.db.SelectContext(ctx, &bills, `
		SELECT `+billColumns+`
		FROM bills
		WHERE user_id = $1 OR user_id IS NULL
		ORDER BY created_at, name
	`, userID)
	if err != nil {
		return nil, err
	}
	return bills, nil
}

func (s *BillStore) Create(ctx context.Context, tx Getter, bill models.Bill) (models.Bill, error) {
	var created models.Bill
	err := tx.GetContext(ctx, &created, `
		INSERT INTO bills (id, user_id, name, amount, paid)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+billColumns,
		bill.ID, bill.UserID, bill.Name, bill.Amount, bill.Paid,
	)
	if err != nil {
		return models.Bill{}, err
	}
	return created, nil
}

func (s *BillStore) GetForUpdate(ctx context.Context, tx Getter, id, userID string) (models.Bill, error) {
	var bill models.Bill
	err := tx.GetContext(ctx, &bill, `
		SELECT `+billColumns+`
		FROM bills
		WHERE id = $1 AND user_id = $2
		FOR UPDATE
	`, id, userID)
	if err != nil {
		return models.Bill{}, notFound(err)
	}
	return bill, nil
}

func (s *BillStore) Update(ctx context.Context, tx Getter, bill models.Bill, userID string) (models.Bill, error) {
	var updated models.Bill
	err := tx.GetContext(ctx, &updated, `
		UPDATE bills
		SET name = $1, amount = $2, paid = $3
		WHERE id = $4 AND user_id = $5
		RETURNING `+billColumns,
		bill.Name, bill.Amount, bill.Paid, bill.ID, userID,
	)
	if err != nil {
		return models.Bill{}, notFound(err)
	}
	return updated, nil
}

func (s *BillStore) Delete(ctx context.Context, id, userID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM bills WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, err
	}
	return affected(res)
}
