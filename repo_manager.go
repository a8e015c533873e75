package portal

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	repository.Validator
	repository.TransactionManager
	Articles() Articles
	Profiles() Profiles
	Purchases() Purchases
	Roles() Roles
}

type mngr struct {
	db        *bun.DB
	articles  Articles
	profiles  Profiles
	purchases Purchases
	roles     Roles
}

func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:        db,
		articles:  NewArticlesRepository(db),
		profiles:  NewProfilesRepository(db),
		purchases: NewPurchasesRepository(db),
		roles:     NewRolesRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.articles == nil {
		return errors.New("repository articles should be initialized")
	}
	if m.profiles == nil {
		return errors.New("repository profiles should be initialized")
	}
	if m.purchases == nil {
		return errors.New("repository purchases should be initialized")
	}
	if m.roles == nil {
		return errors.New("repository roles should be initialized")
	}
	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Articles() Articles {
	return m.articles
}

func (m mngr) Profiles() Profiles {
	return m.profiles
}

func (m mngr) Purchases() Purchases {
	return m.purchases
}

func (m mngr) Roles() Roles {
	return m.roles
}
