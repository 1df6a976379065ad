package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"
	serviceErrors "go_code_tuner/services/tuner/internal/errors"
)

// chatCompletions serves the OpenAI chat completions shape so OpenAI clients can query the tuned adapter.
// The last user message is the prompt; sampling parameters other than max_tokens are ignored.
func (h *Handler) chatCompletions(c *gin.Context) {
	var request openai.ChatCompletionRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		h.openAIError(c, badRequest(err))
		return
	}

	prompt := ""
	for i := len(request.Messages) - 1; i >= 0; i-- {
		if request.Messages[i].Role == openai.ChatMessageRoleUser {
			prompt = request.Messages[i].Content
			break
		}
	}
	if prompt == "" {
		h.openAIError(c, serviceErrors.ErrEmptyPrompt)
		return
	}

	maxTokens := request.MaxTokens
	if maxTokens == 0 {
		maxTokens = request.MaxCompletionTokens
	}
	completion, err := h.generator.Generate(c.Request.Context(), prompt, h.maxNewTokens(maxTokens))
	if err != nil {
		h.openAIError(c, err)
		return
	}

	c.JSON(http.StatusOK, openai.ChatCompletionResponse{
		ID:      fmt.Sprintf("chatcmpl-%s", uuid.New().String()),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   request.Model,
		Choices: []openai.ChatCompletionChoice{{
			Index: 0,
			Message: openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: completion,
			},
			FinishReason: openai.FinishReasonStop,
		}},
	})
}

func (h *Handler) openAIError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "Internal Server Error"
	var httpErr *serviceErrors.HttpError
	if errors.As(err, &httpErr) {
		status = httpErr.StatusCode
		message = httpErr.Error()
	}
	c.AbortWithStatusJSON(status, openai.ErrorResponse{
		Error: &openai.APIError{
			Message:        message,
			HTTPStatusCode: status,
		},
	})
}
