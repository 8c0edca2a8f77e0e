// internal/handlers/stats_handler.go
package handlers

import (
	"log/slog"
	"net/http"

	"go_5_replay_keep/internal/service"
	"go_5_replay_keep/internal/webutil"
)

type StatsHandler struct {
	service service.StatsService
	logger  *slog.Logger
}

func NewStatsHandler(s service.StatsService, logger *slog.Logger) *StatsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatsHandler{service: s, logger: logger}
}

// GetStats は学習ダッシュボード用の統計スナップショットを返します
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetStats"))

	stats, err := h.service.GetStats(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, stats)
}
