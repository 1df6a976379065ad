package parser

import (
	"fmt"

	"github.com/tmc/langchaingo/prompts"
	"go_code_tuner/services/tuner/internal/models"
)

var templateVariables = []string{"name", "code", "language", "filename"}

// SnippetTemplate wraps extracted function source in a fixed textual frame.
type SnippetTemplate struct {
	template prompts.PromptTemplate
}

func NewSnippetTemplate(template string) (*SnippetTemplate, error) {
	t := &SnippetTemplate{
		template: prompts.NewPromptTemplate(template, templateVariables),
	}

	// fail on a broken template before any file is parsed
	if _, err := t.Render(&models.Snippet{Name: "check", Content: "check", Language: "go", Filename: "check.go"}); err != nil {
		return nil, fmt.Errorf("invalid snippet template: %w", err)
	}
	return t, nil
}

func (t *SnippetTemplate) Render(snippet *models.Snippet) (string, error) {
	return t.template.Format(map[string]any{
		"name":     snippet.Name,
		"code":     snippet.Content,
		"language": snippet.Language,
		"filename": snippet.Filename,
	})
}
