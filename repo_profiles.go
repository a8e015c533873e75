package portal

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Profiles stores the per identity profile rows.
type Profiles interface {
	PhoneDirectory
	GetByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	Ensure(ctx context.Context, profile *Profile) (*Profile, error)
	UpdateDetails(ctx context.Context, id uuid.UUID, username, bio string) error
}

type profiles struct {
	db *bun.DB
}

var _ Profiles = (*profiles)(nil)

func NewProfilesRepository(db *bun.DB) Profiles {
	return &profiles{db: db}
}

func (r *profiles) GetByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	record := &Profile{}
	err := r.db.NewSelect().Model(record).Where("?TableAlias.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.NewRecordNotFound().WithMetadata(map[string]any{
			"table": "profiles",
			"id":    id.String(),
		})
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *profiles) PhoneRegistered(ctx context.Context, variants []string) (bool, error) {
	if len(variants) == 0 {
		return false, nil
	}
	return r.db.NewSelect().
		Model((*Profile)(nil)).
		Where("?TableAlias.phone IN (?)", bun.In(variants)).
		Exists(ctx)
}

// Ensure inserts the profile when missing and fills empty username/phone
// columns when it already exists.
func (r *profiles) Ensure(ctx context.Context, profile *Profile) (*Profile, error) {
	now := time.Now()
	if profile.CreatedAt == nil {
		profile.CreatedAt = &now
	}
	profile.UpdatedAt = &now

	_, err := r.db.NewInsert().
		Model(profile).
		On("CONFLICT (id) DO UPDATE").
		Set("username = COALESCE(NULLIF(?TableAlias.username, ''), EXCLUDED.username)").
		Set("phone = COALESCE(NULLIF(?TableAlias.phone, ''), EXCLUDED.phone)").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, profile.ID)
}

func (r *profiles) UpdateDetails(ctx context.Context, id uuid.UUID, username, bio string) error {
	res, err := r.db.NewUpdate().
		Model((*Profile)(nil)).
		Set("username = ?", username).
		Set("bio = ?", bio).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	return expectAffected(res, "profiles", id.String())
}
