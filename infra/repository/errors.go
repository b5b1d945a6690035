package repository

import (
	"errors"

	"github.com/amirasaad/transfers/pkg/domain"
	"gorm.io/gorm"
)

// MapGormErrorToDomain converts GORM errors to domain errors, walking the
// error chain. Constraint errors are only produced by gorm when the
// connection was opened with TranslateError.
//
//   - duplicate key (accounts.email, primary keys) -> ErrAlreadyExists
//   - missing record -> ErrNotFound
//   - foreign key (transfer referencing an unknown account) -> ErrNotFound
//   - check constraint (accounts.balance >= 0) -> ErrInsufficientFunds
func MapGormErrorToDomain(err error) error {
	if err == nil {
		return nil
	}
	for current := err; current != nil; current = errors.Unwrap(current) {
		switch {
		case errors.Is(current, gorm.ErrDuplicatedKey):
			return domain.ErrAlreadyExists
		case errors.Is(current, gorm.ErrRecordNotFound),
			errors.Is(current, gorm.ErrForeignKeyViolated):
			return domain.ErrNotFound
		case errors.Is(current, gorm.ErrCheckConstraintViolated):
			return domain.ErrInsufficientFunds
		}
	}
	return err
}

// WrapError runs a GORM operation and maps its error.
//
//	err := WrapError(func() error {
//	    return r.db.WithContext(ctx).Create(m).Error
//	})
func WrapError(op func() error) error {
	return MapGormErrorToDomain(op())
}
