package handler

import (
	"net/http"

	"github.com/mtlprog/tasktrack/internal/handler/dto"
)

// handleGetStats returns task counts across the store.
// @Summary Get statistics
// @Description Task counts by status and priority, plus the number of overdue tasks
// @Tags stats
// @Produce json
// @Success 200 {object} dto.StatsResponse
// @Failure 401 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /stats [get]
func (h *Handler) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.taskService.GetStats(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToStatsResponse(stats))
}
