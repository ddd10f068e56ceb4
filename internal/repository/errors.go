package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/d60-Lab/tierlist/pkg/database"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate key")
)

// translate maps driver errors to repository sentinels, keeping the cause.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case database.IsUniqueViolation(err):
		return errors.Join(ErrDuplicate, err)
	default:
		return err
	}
}
