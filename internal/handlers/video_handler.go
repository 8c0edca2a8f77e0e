// internal/handlers/video_handler.go
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

// アップロードのメモリバッファ上限 (超過分は一時ファイルに逃がされる)
const maxUploadMemory = 32 << 20

type VideoHandler struct {
	service service.VideoService
	logger  *slog.Logger
}

func NewVideoHandler(s service.VideoService, logger *slog.Logger) *VideoHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &VideoHandler{service: s, logger: logger}
}

// PostVideo は multipart/form-data でメディアファイルを取り込みます。
// フィールド: collection_id, name, media_type (任意), duration_sec (任意), file
func (h *VideoHandler) PostVideo(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostVideo"))

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		logger.Warn("Failed to parse multipart form", slog.String("error", err.Error()))
		webutil.HandleError(w, logger, model.NewAppError("INVALID_BODY", "マルチパートフォームの解析に失敗しました。", "", model.ErrInvalidInput))
		return
	}

	collectionID, err := uuid.Parse(r.FormValue("collection_id"))
	if err != nil {
		webutil.HandleError(w, logger, model.NewAppError("INVALID_INPUT", "コレクションIDの形式が正しくありません。", "collection_id", model.ErrInvalidInput))
		return
	}
	name := r.FormValue("name")
	if name == "" {
		webutil.HandleError(w, logger, model.NewAppError("VALIDATION_ERROR", "名前は必須項目です。", "name", model.ErrInvalidInput))
		return
	}
	mediaType := model.MediaType(r.FormValue("media_type"))
	if mediaType != "" && mediaType != model.MediaTypeVideo && mediaType != model.MediaTypeAudio {
		webutil.HandleError(w, logger, model.NewAppError("VALIDATION_ERROR", "メディア種別に指定できない値が設定されています。", "media_type", model.ErrInvalidInput))
		return
	}
	var durationSec float64
	if v := r.FormValue("duration_sec"); v != "" {
		durationSec, err = strconv.ParseFloat(v, 64)
		if err != nil || durationSec < 0 {
			webutil.HandleError(w, logger, model.NewAppError("VALIDATION_ERROR", "再生時間の形式が正しくありません。", "duration_sec", model.ErrInvalidInput))
			return
		}
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		webutil.HandleError(w, logger, model.NewAppError("INVALID_INPUT", "ファイルが添付されていません。", "file", model.ErrInvalidInput))
		return
	}
	defer file.Close()

	input := service.AddVideoInput{
		CollectionID: collectionID,
		Name:         name,
		MediaType:    mediaType,
		MimeType:     header.Header.Get("Content-Type"),
		DurationSec:  durationSec,
	}
	video, err := h.service.AddVideo(r.Context(), input, file)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger.Info("Video uploaded", slog.String("video_id", video.VideoID.String()), slog.Int64("file_size", video.FileSize))
	webutil.RespondWithJSON(w, http.StatusCreated, video)
}

// GetVideos は ?collection_id= でコレクションに絞った一覧を返します
func (h *VideoHandler) GetVideos(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetVideos"))

	var collectionID *uuid.UUID
	if v := r.URL.Query().Get("collection_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			webutil.HandleError(w, logger, model.NewAppError("INVALID_INPUT", "コレクションIDの形式が正しくありません。", "collection_id", model.ErrInvalidInput))
			return
		}
		collectionID = &id
	}

	videos, err := h.service.ListVideos(r.Context(), collectionID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	if videos == nil {
		videos = []*model.Video{}
	}
	webutil.RespondWithJSON(w, http.StatusOK, videos)
}

func (h *VideoHandler) GetVideo(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetVideo"))

	videoID, err := uuid.Parse(chi.URLParam(r, "video_id"))
	if err != nil {
		webutil.HandleError(w, logger, model.NewAppError("INVALID_INPUT", "動画IDの形式が正しくありません。", "video_id", model.ErrInvalidInput))
		return
	}
	video, err := h.service.GetVideo(r.Context(), videoID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, video)
}

func (h *VideoHandler) PatchVideo(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PatchVideo"))

	videoID, err := uuid.Parse(chi.URLParam(r, "video_id"))
	if err != nil {
		webutil.HandleError(w, logger, model.NewAppError("INVALID_INPUT", "動画IDの形式が正しくありません。", "video_id", model.ErrInvalidInput))
		return
	}

	var req model.PatchVideoRequest
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

	video, err := h.service.PatchVideo(r.Context(), videoID, &req)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, video)
}

func (h *VideoHandler) DeleteVideo(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "DeleteVideo"))

	videoID, err := uuid.Parse(chi.URLParam(r, "video_id"))
	if err != nil {
		webutil.HandleError(w, logger, model.NewAppError("INVALID_INPUT", "動画IDの形式が正しくありません。", "video_id", model.ErrInvalidInput))
		return
	}
	if err := h.service.DeleteVideo(r.Context(), videoID); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger.Info("Video deleted", slog.String("video_id", videoID.String()))
	w.WriteHeader(http.StatusNoContent)
}

// GetMedia はメディアファイル本体を配信します。Rangeリクエスト対応は
// http.ServeFile に任せます
func (h *VideoHandler) GetMedia(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetMedia"))

	videoID, err := uuid.Parse(chi.URLParam(r, "video_id"))
	if err != nil {
		webutil.HandleError(w, logger, model.NewAppError("INVALID_INPUT", "動画IDの形式が正しくありません。", "video_id", model.ErrInvalidInput))
		return
	}
	path, video, err := h.service.GetMediaPath(r.Context(), videoID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	if video.MimeType != "" {
		w.Header().Set("Content-Type", video.MimeType)
	}
	http.ServeFile(w, r, path)
}
