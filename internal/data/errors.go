package data

import (
	"errors"

	apperrors "github.com/target/vms-jobdist/internal/errors"
)

// Shared sentinel errors for data-layer repositories.
var (
	ErrTxRequired      = errors.New("transaction is required")
	ErrEmptyCacheKey   = errors.New("key cannot be empty")
	ErrProgramRequired = errors.New("program_id is required")
)

// mapErr converts driver errors and labels not-found results.
func mapErr(err error, notFound string) error {
	if err == nil {
		return nil
	}
	mapped := apperrors.MapDBError(err)
	if apperrors.IsNotFound(mapped) && notFound != "" {
		return apperrors.Wrap(err, apperrors.ErrCodeNotFound, notFound)
	}
	return mapped
}
