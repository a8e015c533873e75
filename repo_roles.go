package portal

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Roles reads and grants user_roles rows.
type Roles interface {
	RoleLookup
	Grant(ctx context.Context, userID uuid.UUID, role Role) error
	Revoke(ctx context.Context, userID uuid.UUID, role Role) error
}

type roles struct {
	db *bun.DB
}

func NewRolesRepository(db *bun.DB) Roles {
	return &roles{db: db}
}

func (r *roles) HasRole(ctx context.Context, userID string, role Role) (bool, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return false, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid user id").
			WithMetadata(map[string]any{"user_id": userID})
	}
	return r.db.NewSelect().
		Model((*UserRole)(nil)).
		Where("?TableAlias.user_id = ?", id).
		Where("?TableAlias.role = ?", role).
		Exists(ctx)
}

func (r *roles) Grant(ctx context.Context, userID uuid.UUID, role Role) error {
	if !role.IsValid() {
		return goerrors.New("unknown role", goerrors.CategoryBadInput).
			WithCode(goerrors.CodeBadRequest).
			WithMetadata(map[string]any{"role": role})
	}
	now := time.Now()
	_, err := r.db.NewInsert().
		Model(&UserRole{UserID: userID, Role: role, CreatedAt: &now}).
		On("CONFLICT (user_id, role) DO NOTHING").
		Exec(ctx)
	return err
}

func (r *roles) Revoke(ctx context.Context, userID uuid.UUID, role Role) error {
	_, err := r.db.NewDelete().
		Model((*UserRole)(nil)).
		Where("user_id = ?", userID).
		Where("role = ?", role).
		Exec(ctx)
	return err
}
