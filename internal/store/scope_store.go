package store

import (
	"context"

	"budget/internal/models"
)

type ScopeStore struct {
	db DB
}

func NewScopeStore(db DB) *ScopeStore {
	return &ScopeStore{db: db}
}

const scopeColumns = `id, user_id, name, daily_limit, monthly_limit, icon, color, created_at`

// ListVisible returns the user's scopes plus shared demo scopes.
func (s *ScopeStore) ListVisible(ctx context.Context, userID string) ([]models.Scope, error) {
	scopes := []models.Scope{}
	err := s.db.SelectContext(ctx, &scopes, `
		SELECT `+scopeColumns+`
		FROM scopes
		WHERE user_id = $1 OR user_id IS NULL
		ORDER BY created_at, name
	`, userID)
	if err != nil {
		return nil, err
	}
	return scopes, nil
}

// GetVisible finds a scope the user can read, owned or shared.
func (s *ScopeStore) GetVisible(ctx context.Context, id, userID string) (models.Scope, error) {
	var scope models.Scope
	err := s.db.GetContext(ctx, &scope, `
		SELECT `+scopeColumns+`
		FROM scopes
		WHERE id = $1 AND (user_id = $2 OR user_id IS NULL)
	`, id, userID)
	if err != nil {
		return models.Scope{}, notFound(err)
	}
	return scope, nil
}

func (s *ScopeStore) GetOwned(ctx context.Context, id, userID string) (models.Scope, error) {
	var scope models.Scope
	err := s.db.GetContext(ctx, &scope, `SELECT `+scopeColumns+` FROM scopes WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return models.Scope{}, notFound(err)
	}
	return scope, nil
}

func (s *ScopeStore) Create(ctx context.Context, tx Getter, scope models.Scope) (models.Scope, error) {
	var created models.Scope
	err := tx.GetContext(ctx, &created, `
		INSERT INTO scopes (id, user_id, name, daily_limit, monthly_limit, icon, color)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+scopeColumns,
		scope.ID, scope.UserID, scope.Name, scope.DailyLimit, scope.MonthlyLimit, scope.Icon, scope.Color,
	)
	if err != nil {
		return models.Scope{}, err
	}
	return created, nil
}

// Update writes every mutable column of an owned scope.
func (s *ScopeStore) Update(ctx context.Context, scope models.Scope, userID string) (models.Scope, error) {
	var updated models.Scope
	err := s.db.GetContext(ctx, &updated, `
		UPDATE scopes
		SET name = $1, daily_limit = $2, monthly_limit = $3, icon = $4, color = $5
		WHERE id = $6 AND user_id = $7
		RETURNING `+scopeColumns,
		scope.Name, scope.DailyLimit, scope.MonthlyLimit, scope.Icon, scope.Color, scope.ID, userID,
	)
	if err != nil {
		return models.Scope{}, notFound(err)
	}
	return updated, nil
}

// Delete removes an owned scope. Transactions that reference it are kept.
func (s *ScopeStore) Delete(ctx context.Context, id, userID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM scopes WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, err
	}
	return affected(res)
}
