package repository

import (
	"errors"

	"github.com/amirasaad/pos/pkg/repository"
	"gorm.io/gorm"
)

// MapGormErrorToDomain converts GORM errors to domain errors so the layers
// above never see driver types. Traverses the error chain because GORM
// wraps database errors.
func MapGormErrorToDomain(err error, notFound error) error {
	if err == nil {
		return nil
	}

	currentErr := err
	for currentErr != nil {
		switch {
		case errors.Is(currentErr, gorm.ErrDuplicatedKey):
			return repository.ErrDraftExists
		case errors.Is(currentErr, gorm.ErrRecordNotFound):
			return notFound
		}
		currentErr = errors.Unwrap(currentErr)
	}

	return err
}
