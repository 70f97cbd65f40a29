package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repositories groups repositories bound to the same database handle.
type Repositories struct {
	Users      *UserRepository
	Properties *PropertyRepository
	Tasks      *TaskRepository
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Users:      NewUserRepository(db),
		Properties: NewPropertyRepository(db),
		Tasks:      NewTaskRepository(db),
	}
}

// TxRunner runs callbacks with repositories bound to one transaction.
type TxRunner struct {
	db *gorm.DB
}

func NewTxRunner(db *gorm.DB) *TxRunner {
	return &TxRunner{db: db}
}

// Run commits when fn returns nil and rolls back otherwise.
func (r *TxRunner) Run(ctx context.Context, fn func(repos Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
