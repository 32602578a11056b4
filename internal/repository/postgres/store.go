package postgres

import (
	"context"

	"github.com/lonepengu/backend/internal/repository"
	"gorm.io/gorm"
)

// Store implements repository.Store over a gorm connection pool.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Users() repository.UserRepository {
	return NewUserRepository(s.db)
}

func (s *Store) Sessions() repository.SessionRepository {
	return NewSessionRepository(s.db)
}

func (s *Store) Preferences() repository.PreferencesRepository {
	return NewPreferencesRepository(s.db)
}

// Begin opens a transaction scoped to ctx. Cancelling the context aborts
// in-flight statements; the deferred Rollback releases the connection on
// every exit path.
func (s *Store) Begin(ctx context.Context) (repository.Tx, error) {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &storeTx{db: tx}, nil
}

type storeTx struct {
	db        *gorm.DB
	committed bool
}

func (t *storeTx) Users() repository.UserRepository {
	return NewUserRepository(t.db)
}

func (t *storeTx) Sessions() repository.SessionRepository {
	return NewSessionRepository(t.db)
}

func (t *storeTx) Preferences() repository.PreferencesRepository {
	return NewPreferencesRepository(t.db)
}

func (t *storeTx) Commit() error {
	if err := t.db.Commit().Error; err != nil {
		return err
	}
	t.committed = true
	return nil
}

func (t *storeTx) Rollback() error {
	if t.committed {
		return nil
	}
	return t.db.Rollback().Error
}
