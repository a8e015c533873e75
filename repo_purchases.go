package portal

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Purchases reads purchase history written by the payment backend.
type Purchases interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Purchase, error)
}

type purchases struct {
	db *bun.DB
}

func NewPurchasesRepository(db *bun.DB) Purchases {
	return &purchases{db: db}
}

func (r *purchases) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Purchase, error) {
	records := []*Purchase{}
	err := r.db.NewSelect().
		Model(&records).
		Where("?TableAlias.user_id = ?", userID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}
