package database

import (
	"errors"
	"fmt"

	"fixerhub/apperrors"

	"go.mongodb.org/mongo-driver/mongo"
)

// TranslateError turns driver errors into AppErrors. Missing documents become NotFound and
// duplicate keys become Conflict; anything else is wrapped with op for context.
func TranslateError(err error, op, entity, id string) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperrors.NotFound(entity, id)
	}
	if mongo.IsDuplicateKeyError(err) {
		return &apperrors.AppError{
			Kind:    apperrors.KindConflict,
			Message: fmt.Sprintf("%s already exists", entity),
			Details: id,
			Err:     err,
		}
	}
	return fmt.Errorf("%s %s %s: %w", op, entity, id, err)
}
