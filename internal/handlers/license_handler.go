// internal/handlers/license_handler.go
package handlers

import (
	"log/slog"
	"net/http"

	"go_5_replay_keep/internal/model"
	"go_5_replay_keep/internal/service"
	"go_5_replay_keep/internal/webutil"
)

type LicenseHandler struct {
	service service.LicenseService
	logger  *slog.Logger
}

func NewLicenseHandler(s service.LicenseService, logger *slog.Logger) *LicenseHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LicenseHandler{service: s, logger: logger}
}

// GetStatus は試用期間と有効化の状態を返します。ゲートの外に置かれます
func (h *LicenseHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetStatus"))

	status, err := h.service.GetStatus(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, status)
}

// PostActivate は認証コードを検証し、ゲート通過用のトークンを発行します
func (h *LicenseHandler) PostActivate(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostActivate"))

	var req model.ActivateLicenseRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		logger.Warn("Failed to decode request body", slog.String("error", err.Error()))
		webutil.HandleError(w, logger, err)
		return
	}
	if err := validateStruct(req); err != nil {
		logger.Warn("Validation failed", slog.String("error", err.Error()))
		webutil.HandleError(w, logger, err)
		return
	}

	response, err := h.service.Activate(r.Context(), req.Code)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger.Info("License activated")
	webutil.RespondWithJSON(w, http.StatusOK, response)
}

// Deactivate は有効化状態を取り消します
func (h *LicenseHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "Deactivate"))

	if err := h.service.Deactivate(r.Context()); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger.Info("License deactivated")
	w.WriteHeader(http.StatusNoContent)
}
