package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go_code_tuner/pkg/log"
)

func (h *Handler) startRun(c *gin.Context) {
	status, err := h.runs.Start()
	if err != nil {
		h.handleErrorApiResponse(c, err, "failed to start run")
		return
	}

	log.GetLogger().WithField("run_id", status.ID).Info("pipeline run started")
	h.handleSuccessfulApiResponse(c, http.StatusAccepted, status)
}

func (h *Handler) currentRun(c *gin.Context) {
	status, ok := h.runs.Current()
	if !ok {
		c.JSON(http.StatusNotFound, &ErrorResponse{
			Ok:        false,
			ErrorCode: http.StatusNotFound,
			Message:   "no run has been started",
		})
		return
	}
	h.handleSuccessfulApiResponse(c, http.StatusOK, status)
}
