// internal/model/error.go
package model

import "errors"

// アプリケーション固有のエラー
var (
	ErrNotFound        = errors.New("resource not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrInternalServer  = errors.New("internal server error")
	ErrForbidden       = errors.New("forbidden")
	ErrLicenseRequired = errors.New("license not activated or trial expired")
	ErrConflict        = errors.New("resource conflict")  // 重複エラー用
	ErrMediaMissing    = errors.New("media file missing") // ファイルがブロブストアに存在しない
	ErrRetryExhausted  = errors.New("retry limit exceeded")
)

// ErrorDetail はAPIエラーレスポンスのボディに含める詳細情報です
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// APIErrorResponse はAPIエラーレスポンスの構造体
type APIErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// AppError はエラーコードとユーザー向けメッセージを持つアプリケーションエラーです。
// errors.Is / errors.As で根本原因(Err)まで辿れるようにラップします。
type AppError struct {
	Detail ErrorDetail
	Err    error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Detail.Code + ": " + e.Detail.Message + ": " + e.Err.Error()
	}
	return e.Detail.Code + ": " + e.Detail.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError はAppErrorを生成します。errには根本原因のセンチネルエラーを渡します。
func NewAppError(code, message, field string, err error) *AppError {
	return &AppError{
		Detail: ErrorDetail{
			Code:    code,
			Message: message,
			Field:   field,
		},
		Err: err,
	}
}
