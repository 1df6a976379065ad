package parser

import (
	"context"
	"path/filepath"
	"strings"

	"go_code_tuner/pkg/log"
	"go_code_tuner/services/tuner/internal/models"
	"go_code_tuner/services/tuner/internal/vsc"
)

type ProjectParser struct {
	parsers  map[string]*CodeParser
	template *SnippetTemplate
}

func NewProjectParser(parsers map[string]*CodeParser, template *SnippetTemplate) *ProjectParser {
	return &ProjectParser{
		parsers:  parsers,
		template: template,
	}
}

// NewProjectParserForLanguages registers a CodeParser for every extension of each language.
func NewProjectParserForLanguages(languages []string, limits Limits, template *SnippetTemplate) (*ProjectParser, error) {
	parsers := make(map[string]*CodeParser)
	for _, language := range languages {
		codeParser, err := NewCodeParser(Language(language), limits)
		if err != nil {
			return nil, err
		}
		for _, ext := range Extensions(codeParser.Language()) {
			parsers[ext] = codeParser
		}
	}
	return NewProjectParser(parsers, template), nil
}

func (pp *ProjectParser) accepts(path string) bool {
	_, supported := pp.parsers[strings.ToLower(filepath.Ext(path))]
	return supported
}

func (pp *ProjectParser) ParseProject(ctx context.Context, tree vsc.Tree) ([]*models.Snippet, error) {
	logger := log.GetLogger()
	var allSnippets []*models.Snippet
	err := tree.Walk(ctx, pp.accepts, func(path string, content []byte) error {
		parser := pp.parsers[strings.ToLower(filepath.Ext(path))]
		filename := relativeTo(tree.Root(), path)

		fileSnippets, err := parser.ParseFile(ctx, content, filename)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.WithError(err).WithField("file", filename).Warn("skipping unparsable file")
			return nil
		}

		for _, snippet := range fileSnippets {
			if pp.template != nil {
				text, err := pp.template.Render(snippet)
				if err != nil {
					return err
				}
				snippet.Text = text
			} else {
				snippet.Text = snippet.Content
			}
		}
		allSnippets = append(allSnippets, fileSnippets...)
		return nil
	})
	if err != nil {
		logger.WithError(err).Error("failed to walk project")
		return nil, err
	}

	return allSnippets, nil
}

func relativeTo(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
