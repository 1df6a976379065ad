package api

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go_code_tuner/pkg/log"
	"go_code_tuner/services/tuner/internal/config"
	serviceErrors "go_code_tuner/services/tuner/internal/errors"
	"go_code_tuner/services/tuner/internal/generation"
	"go_code_tuner/services/tuner/internal/metrics"
	"go_code_tuner/services/tuner/internal/models"
)

type RunManager interface {
	Start() (models.RunStatus, error)
	Current() (models.RunStatus, bool)
}

type Handler struct {
	config    *config.Config
	runs      RunManager
	generator generation.Generator
}

func NewHandler(config *config.Config, runs RunManager, generator generation.Generator) *Handler {
	return &Handler{
		config:    config,
		runs:      runs,
		generator: generator,
	}
}

func (h *Handler) liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": 1})
}

func (h *Handler) readiness(c *gin.Context) {
	loaded := true
	if local, ok := h.generator.(interface{ Ready() bool }); ok {
		loaded = local.Ready()
	}
	c.JSON(http.StatusOK, gin.H{"status": 1, "model_loaded": loaded})
}

// authorize requires "Authorization: Bearer <workspace password>". An empty password disables the check.
func (h *Handler) authorize(c *gin.Context) {
	password := h.config.Server.Password
	if password == "" {
		c.Next()
		return
	}

	token, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	if !found || subtle.ConstantTimeCompare([]byte(token), []byte(password)) != 1 {
		h.handleErrorApiResponse(c, serviceErrors.ErrUnauthorized, "unauthorized request")
		return
	}
	c.Next()
}

func (h *Handler) RegisterRoutes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/liveness", h.liveness)
	r.GET("/readiness", h.readiness)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	authorized := r.Group("/", h.authorize)
	authorized.POST("/generate", h.generate)
	authorized.POST("/runs", h.startRun)
	authorized.GET("/runs/current", h.currentRun)
	authorized.POST("/v1/chat/completions", h.chatCompletions)

	return r
}

type SuccessResponse struct {
	Ok     bool            `json:"ok"`
	Result json.RawMessage `json:"result"`
}

func (h *Handler) handleSuccessfulApiResponse(c *gin.Context, status int, response interface{}) {
	marshalled, err := json.Marshal(response)
	if err != nil {
		h.handleErrorApiResponse(c, err, "failed to marshal response")
		return
	}

	resp := &SuccessResponse{
		Ok:     true,
		Result: marshalled,
	}
	c.JSON(status, resp)
	c.Abort()
}

type ErrorResponse struct {
	Ok        bool   `json:"ok"`
	ErrorCode int    `json:"error_code"`
	Message   string `json:"message"`
}

func (h *Handler) handleErrorApiResponse(c *gin.Context, err error, prompt string) {
	logger := log.GetLogger()

	var httpErr *serviceErrors.HttpError
	if errors.As(err, &httpErr) {
		if !httpErr.IsUserError {
			logger.WithError(err).Error(prompt)
		}
		resp := &ErrorResponse{
			Ok:        false,
			ErrorCode: httpErr.StatusCode,
			Message:   httpErr.Error(),
		}
		c.JSON(httpErr.StatusCode, resp)
		c.Abort()
		return
	}

	logger.WithError(err).Error(prompt)
	resp := &ErrorResponse{
		Ok:        false,
		ErrorCode: http.StatusInternalServerError,
		Message:   "Internal Server Error",
	}
	c.JSON(http.StatusInternalServerError, resp)
	c.Abort()
}
