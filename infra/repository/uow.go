package repository

import (
	"context"

	"github.com/amirasaad/pos/pkg/repository"
	"gorm.io/gorm"
)

// UoW provides transaction boundary and repository access in one
// abstraction. Repositories are handed out by the UoW so every operation
// inside Do shares one DB session, which is what makes the draft-registry
// insert-then-select race resolution atomic.
type UoW struct {
	db *gorm.DB
	tx *gorm.DB
}

// NewUoW creates a new UoW for the given *gorm.DB.
func NewUoW(db *gorm.DB) *UoW {
	return &UoW{db: db}
}

// Do runs the given function in a transaction boundary, providing a UoW
// bound to the transaction session.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&UoW{db: u.db, tx: tx})
	})
}

func (u *UoW) session() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

// Sales returns the sale repository bound to the current session.
func (u *UoW) Sales() (repository.SaleRepository, error) {
	return NewSaleRepository(u.session()), nil
}

// Versions returns the version repository bound to the current session.
func (u *UoW) Versions() (repository.VersionRepository, error) {
	return NewVersionRepository(u.session()), nil
}
