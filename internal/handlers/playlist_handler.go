// internal/handlers/playlist_handler.go
package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"go_5_replay_keep/internal/model"
	"go_5_replay_keep/internal/service"
	"go_5_replay_keep/internal/webutil"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type PlaylistHandler struct {
	scheduler service.SchedulerService
	playlists service.PlaylistService
	logger    *slog.Logger
}

func NewPlaylistHandler(scheduler service.SchedulerService, playlists service.PlaylistService, logger *slog.Logger) *PlaylistHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlaylistHandler{scheduler: scheduler, playlists: playlists, logger: logger}
}

// GetPreview は本日のタスクのプレビューを返します。?extra=true で加餐分を含めます
func (h *PlaylistHandler) GetPreview(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetPreview"))

	isExtra := r.URL.Query().Get("extra") == "true"
	preview, err := h.scheduler.GeneratePreview(r.Context(), isExtra)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, preview)
}

// PostMaterialize は本日のプレイリストを再利用または作成します
func (h *PlaylistHandler) PostMaterialize(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostMaterialize"))

	var req model.MaterializePlaylistRequest
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

	playlist, err := h.scheduler.MaterializePlaylist(r.Context(), model.PlaylistType(req.PlaylistType), req.IsExtraSession, req.ForceRebuild)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger.Info("Playlist materialized", slog.String("playlist_id", playlist.PlaylistID.String()))
	webutil.RespondWithJSON(w, http.StatusOK, playlist)
}

// GetTodayUnfinished は本日の未完了プレイリストを検索します
func (h *PlaylistHandler) GetTodayUnfinished(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetTodayUnfinished"))

	playlistType := model.PlaylistType(r.URL.Query().Get("type"))
	if !playlistType.Valid() {
		webutil.HandleError(w, logger, model.NewAppError("INVALID_INPUT", "プレイリスト種別が不正です。", "type", model.ErrInvalidInput))
		return
	}
	isExtra := r.URL.Query().Get("extra") == "true"

	playlist, err := h.scheduler.FindTodayUnfinished(r.Context(), playlistType, isExtra)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, playlist)
}

func (h *PlaylistHandler) GetPlaylist(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetPlaylist"))

	playlistID, err := uuid.Parse(chi.URLParam(r, "playlist_id"))
	if err != nil {
		webutil.HandleError(w, logger, model.NewAppError("INVALID_INPUT", "プレイリストIDの形式が正しくありません。", "playlist_id", model.ErrInvalidInput))
		return
	}
	playlist, err := h.playlists.GetPlaylist(r.Context(), playlistID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, playlist)
}

// GetHistory は完了済みを含む履歴を新しい順に返します。?limit= で件数を絞れます
func (h *PlaylistHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetHistory"))

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			webutil.HandleError(w, logger, model.NewAppError("INVALID_INPUT", "limitの形式が正しくありません。", "limit", model.ErrInvalidInput))
			return
		}
		limit = parsed
	}

	playlists, err := h.playlists.ListHistory(r.Context(), limit)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	if playlists == nil {
		playlists = []*model.DailyPlaylist{}
	}
	webutil.RespondWithJSON(w, http.StatusOK, playlists)
}

// PutCursor は再生カーソル (しおり) を保存します
func (h *PlaylistHandler) PutCursor(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PutCursor"))

	playlistID, err := uuid.Parse(chi.URLParam(r, "playlist_id"))
	if err != nil {
		webutil.HandleError(w, logger, model.NewAppError("INVALID_INPUT", "プレイリストIDの形式が正しくありません。", "playlist_id", model.ErrInvalidInput))
		return
	}

	var req model.AdvanceCursorRequest
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

	if err := h.playlists.AdvanceCursor(r.Context(), playlistID, *req.LastPlayedIndex); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PostComplete はプレイリストを完了にします (完了済みならno-op)
func (h *PlaylistHandler) PostComplete(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostComplete"))

	playlistID, err := uuid.Parse(chi.URLParam(r, "playlist_id"))
	if err != nil {
		webutil.HandleError(w, logger, model.NewAppError("INVALID_INPUT", "プレイリストIDの形式が正しくありません。", "playlist_id", model.ErrInvalidInput))
		return
	}

	var req model.CompletePlaylistRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		logger.Warn("Failed to decode request body", slog.String("error", err.Error()))
		webutil.HandleError(w, logger, err)
		return
	}

	response, err := h.playlists.CompletePlaylist(r.Context(), playlistID, req.ChainToReview)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger.Info("Playlist completed", slog.String("playlist_id", playlistID.String()), slog.Bool("chained", response.NextPlaylist != nil))
	webutil.RespondWithJSON(w, http.StatusOK, response)
}
