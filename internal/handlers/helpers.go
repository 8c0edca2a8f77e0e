// internal/handlers/helpers.go
package handlers

import (
	"errors"

	"go_5_replay_keep/internal/model"
	"go_5_replay_keep/internal/webutil"

	"github.com/go-playground/validator/v10"
)

// validateStruct はリクエストDTOを検証し、最初のエラーを日本語メッセージの
// AppErrorとして返します。問題なければ nil を返します。
func validateStruct(req interface{}) error {
	err := webutil.Validator.Struct(req)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		firstErr := validationErrors[0]
		return model.NewAppError(
			"VALIDATION_ERROR",
			firstErr.Translate(webutil.Trans),
			firstErr.Field(),
			model.ErrInvalidInput,
		)
	}
	return err
}
