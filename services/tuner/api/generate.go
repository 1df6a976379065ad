package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	serviceErrors "go_code_tuner/services/tuner/internal/errors"
)

type GenerateRequest struct {
	Prompt       string `json:"prompt"`
	MaxNewTokens int    `json:"max_new_tokens"`
}

type GenerateResponse struct {
	Completion string `json:"completion"`
	Backend    string `json:"backend"`
}

func (h *Handler) maxNewTokens(requested int) int {
	if requested > 0 {
		return requested
	}
	return h.config.Generation.MaxNewTokens
}

func (h *Handler) generate(c *gin.Context) {
	var request GenerateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		h.handleErrorApiResponse(c, badRequest(err), "invalid generate request")
		return
	}
	if strings.TrimSpace(request.Prompt) == "" {
		h.handleErrorApiResponse(c, serviceErrors.ErrEmptyPrompt, "empty prompt")
		return
	}

	completion, err := h.generator.Generate(c.Request.Context(), request.Prompt, h.maxNewTokens(request.MaxNewTokens))
	if err != nil {
		h.handleErrorApiResponse(c, err, "failed to generate completion")
		return
	}

	h.handleSuccessfulApiResponse(c, http.StatusOK, &GenerateResponse{
		Completion: completion,
		Backend:    h.generator.Backend(),
	})
}

func badRequest(err error) error {
	return &serviceErrors.HttpError{
		IsUserError: true,
		Description: err.Error(),
		StatusCode:  http.StatusBadRequest,
	}
}
