// internal/handlers/playback_handler.go
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

type PlaybackHandler struct {
	tracker service.TrackerService
	logger  *slog.Logger
}

func NewPlaybackHandler(tracker service.TrackerService, logger *slog.Logger) *PlaybackHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlaybackHandler{tracker: tracker, logger: logger}
}

func parseVideoID(r *http.Request) (uuid.UUID, error) {
	videoID, err := uuid.Parse(chi.URLParam(r, "video_id"))
	if err != nil {
		return uuid.Nil, model.NewAppError("INVALID_INPUT", "動画IDの形式が正しくありません。", "video_id", model.ErrInvalidInput)
	}
	return videoID, nil
}

// GetResume は保存済みの再開位置と自動シーク判定を返します
func (h *PlaybackHandler) GetResume(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetResume"))

	videoID, err := parseVideoID(r)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	resume, err := h.tracker.GetResumePoint(r.Context(), videoID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, resume)
}

// PutCheckpoint は再開位置を保存します。?final=true でレート制限を通過します
func (h *PlaybackHandler) PutCheckpoint(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PutCheckpoint"))

	videoID, err := parseVideoID(r)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	var req model.SaveCheckpointRequest
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
	isFinal := r.URL.Query().Get("final") == "true"

	if err := h.tracker.SaveCheckpoint(r.Context(), videoID, req.Title, *req.Seconds, isFinal); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteCheckpoint は再開位置を破棄します (恒久スキップ時など)
func (h *PlaybackHandler) DeleteCheckpoint(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "DeleteCheckpoint"))

	videoID, err := parseVideoID(r)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	if err := h.tracker.ClearCheckpoint(r.Context(), videoID); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetCheckpoints は保存済みの再開位置の一覧を返します
func (h *PlaybackHandler) GetCheckpoints(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetCheckpoints"))

	checkpoints, err := h.tracker.ListCheckpoints(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	if checkpoints == nil {
		checkpoints = []*model.PlaybackCheckpoint{}
	}
	webutil.RespondWithJSON(w, http.StatusOK, checkpoints)
}

// PostEvent は再生サーフェスからのイベントを受け取り、次の動作指示を返します
func (h *PlaybackHandler) PostEvent(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostEvent"))

	videoID, err := parseVideoID(r)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	var req model.MediaEventRequest
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

	state, err := h.tracker.HandleMediaEvent(r.Context(), videoID, model.MediaEventType(req.Event))
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, state)
}
