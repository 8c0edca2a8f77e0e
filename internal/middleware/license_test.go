// internal/middleware/license_test.go
package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go_5_replay_keep/internal/middleware"
	"go_5_replay_keep/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockGate struct {
	mock.Mock
}

func (m *mockGate) Authorize(ctx context.Context, bearerToken string) (uuid.UUID, error) {
	args := m.Called(ctx, bearerToken)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func TestLicenseGateMiddleware(t *testing.T) {
	licenseID := uuid.New()

	newHandler := func(gate middleware.LicenseGate, gotID *uuid.UUID) http.Handler {
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := middleware.GetLicenseIDFromContext(r.Context())
			require.NoError(t, err)
			*gotID = id
			w.WriteHeader(http.StatusOK)
		})
		return middleware.LicenseGateMiddleware(gate)(next)
	}

	t.Run("正常系: トークン無しでもゲートが許可すれば通過する", func(t *testing.T) {
		gate := new(mockGate)
		gate.On("Authorize", mock.Anything, "").Return(licenseID, nil).Once()

		var gotID uuid.UUID
		req := httptest.NewRequest(http.MethodGet, "/api/v1/playlists/preview", nil)
		rec := httptest.NewRecorder()
		newHandler(gate, &gotID).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, licenseID, gotID)
		gate.AssertExpectations(t)
	})

	t.Run("正常系: Bearerトークンがゲートへ渡る", func(t *testing.T) {
		gate := new(mockGate)
		gate.On("Authorize", mock.Anything, "some-token").Return(licenseID, nil).Once()

		var gotID uuid.UUID
		req := httptest.NewRequest(http.MethodGet, "/api/v1/playlists/preview", nil)
		req.Header.Set("Authorization", "Bearer some-token")
		rec := httptest.NewRecorder()
		newHandler(gate, &gotID).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		gate.AssertExpectations(t)
	})

	t.Run("異常系: ゲートの拒否は403", func(t *testing.T) {
		gate := new(mockGate)
		gate.On("Authorize", mock.Anything, "").
			Return(uuid.Nil, model.NewAppError("LICENSE_REQUIRED", "試用期間が終了しています。", "", model.ErrLicenseRequired)).Once()

		var gotID uuid.UUID
		req := httptest.NewRequest(http.MethodGet, "/api/v1/playlists/preview", nil)
		rec := httptest.NewRecorder()
		newHandler(gate, &gotID).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("異常系: 不正なAuthorizationヘッダー形式は403", func(t *testing.T) {
		gate := new(mockGate)

		var gotID uuid.UUID
		req := httptest.NewRequest(http.MethodGet, "/api/v1/playlists/preview", nil)
		req.Header.Set("Authorization", "Basic abc")
		rec := httptest.NewRecorder()
		newHandler(gate, &gotID).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		gate.AssertNotCalled(t, "Authorize", mock.Anything, mock.Anything)
	})
}
