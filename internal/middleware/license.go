package middleware

import (
	"context"
	"net/http"
	"strings"

	"go_5_replay_keep/internal/model"
	"go_5_replay_keep/internal/webutil"

	"github.com/google/uuid"
)

// LicenseGate はライセンス/試用の判定を行うインターフェースです。
// service.LicenseService が実装します。
type LicenseGate interface {
	// Authorize は Bearer トークン (無い場合は空文字) を検証し、
	// スケジューラの呼び出しを許可するかを判定します。
	// 試用期間内はトークン無しでも許可されます。
	Authorize(ctx context.Context, bearerToken string) (uuid.UUID, error)
}

// LicenseGateMiddleware はスケジューラ系ルートへのアクセスを
// 試用期間または有効なライセンストークンでゲートするミドルウェアです。
func LicenseGateMiddleware(gate LicenseGate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := GetLogger(r.Context())

			var tokenString string
			authHeader := r.Header.Get("Authorization")
			if authHeader != "" {
				headerParts := strings.Split(authHeader, " ")
				if len(headerParts) != 2 || strings.ToLower(headerParts[0]) != "bearer" {
					logger.Warn("License gate failed: Invalid Authorization header format")
					appErr := model.NewAppError("UNAUTHORIZED", "Authorizationヘッダーの形式が正しくありません。", "", model.ErrForbidden)
					webutil.HandleError(w, logger, appErr)
					return
				}
				tokenString = headerParts[1]
			}

			licenseID, err := gate.Authorize(r.Context(), tokenString)
			if err != nil {
				logger.Warn("License gate rejected request", "error", err)
				webutil.HandleError(w, logger, err)
				return
			}

			ctx := context.WithValue(r.Context(), model.LicenseIDKey, licenseID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetLicenseIDFromContext はコンテキストからライセンスIDを取得します。
func GetLicenseIDFromContext(ctx context.Context) (uuid.UUID, error) {
	value, ok := ctx.Value(model.LicenseIDKey).(uuid.UUID)
	if !ok {
		return uuid.Nil, model.NewAppError("INTERNAL_SERVER_ERROR", "コンテキストからライセンス情報を取得できませんでした。", "", model.ErrInternalServer)
	}
	return value, nil
}
