package database

import (
	"errors"

	"gorm.io/gorm"

	apperrors "github.com/Yaocool/code-simplify/errors"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = apperrors.OtherInternal(404, "record not found")

// IsNotFound reports whether err signals a missing row.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || apperrors.CodeOf(err) == 404
}

// wrapErr translates engine failures into the typed error taxonomy. Missing
// rows map to ErrNotFound, everything else to an internal error carrying the
// original cause.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.Internalf("%s failed, error: %v", op, err).WithCause(err)
}
