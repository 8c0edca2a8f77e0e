// internal/handlers/collection_handler.go
package handlers

import (
	"log/slog"
	"net/http"

	"go_5_replay_keep/internal/model"
	"go_5_replay_keep/internal/service"
	"go_5_replay_keep/internal/webutil"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type CollectionHandler struct {
	service service.CollectionService
	logger  *slog.Logger
}

func NewCollectionHandler(s service.CollectionService, logger *slog.Logger) *CollectionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CollectionHandler{service: s, logger: logger}
}

func (h *CollectionHandler) PostCollection(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostCollection"))

	var req model.PostCollectionRequest
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

	collection, err := h.service.CreateCollection(r.Context(), req.Name, req.Description)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger.Info("Collection created", slog.String("collection_id", collection.CollectionID.String()))
	webutil.RespondWithJSON(w, http.StatusCreated, collection)
}

func (h *CollectionHandler) GetCollections(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetCollections"))

	collections, err := h.service.ListCollections(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	if collections == nil {
		collections = []*model.Collection{}
	}
	webutil.RespondWithJSON(w, http.StatusOK, collections)
}

func (h *CollectionHandler) GetCollection(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetCollection"))

	collectionID, err := uuid.Parse(chi.URLParam(r, "collection_id"))
	if err != nil {
		webutil.HandleError(w, logger, model.NewAppError("INVALID_INPUT", "コレクションIDの形式が正しくありません。", "collection_id", model.ErrInvalidInput))
		return
	}
	collection, err := h.service.GetCollection(r.Context(), collectionID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, collection)
}

func (h *CollectionHandler) PutCollection(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PutCollection"))

	collectionID, err := uuid.Parse(chi.URLParam(r, "collection_id"))
	if err != nil {
		webutil.HandleError(w, logger, model.NewAppError("INVALID_INPUT", "コレクションIDの形式が正しくありません。", "collection_id", model.ErrInvalidInput))
		return
	}

	var req model.PutCollectionRequest
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

	collection, err := h.service.UpdateCollection(r.Context(), collectionID, req.Name, req.Description)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, collection)
}

// PostToggle はスケジューリング対象のオン/オフを切り替えます
func (h *CollectionHandler) PostToggle(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostToggle"))

	collectionID, err := uuid.Parse(chi.URLParam(r, "collection_id"))
	if err != nil {
		webutil.HandleError(w, logger, model.NewAppError("INVALID_INPUT", "コレクションIDの形式が正しくありません。", "collection_id", model.ErrInvalidInput))
		return
	}
	collection, err := h.service.ToggleActive(r.Context(), collectionID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, collection)
}

func (h *CollectionHandler) DeleteCollection(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "DeleteCollection"))

	collectionID, err := uuid.Parse(chi.URLParam(r, "collection_id"))
	if err != nil {
		webutil.HandleError(w, logger, model.NewAppError("INVALID_INPUT", "コレクションIDの形式が正しくありません。", "collection_id", model.ErrInvalidInput))
		return
	}
	if err := h.service.DeleteCollection(r.Context(), collectionID); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger.Info("Collection deleted", slog.String("collection_id", collectionID.String()))
	w.WriteHeader(http.StatusNoContent)
}
