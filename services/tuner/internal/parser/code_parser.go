package parser

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/python"
	"go_code_tuner/services/tuner/internal/models"
)

type CodeParser struct {
	language   *sitter.Language
	nodeTypes  []string
	langString Language
	limits     Limits
}

func NewCodeParser(language Language, limits Limits) (*CodeParser, error) {
	switch language {
	case LanguagePython:
		return &CodeParser{
			language:   python.GetLanguage(),
			nodeTypes:  []string{"function_definition"},
			langString: language,
			limits:     limits,
		}, nil
	case LanguageGo:
		return &CodeParser{
			language:   golang.GetLanguage(),
			nodeTypes:  []string{"function_declaration", "method_declaration"},
			langString: language,
			limits:     limits,
		}, nil
	}
	return nil, fmt.Errorf("unsupported language %q", language)
}

func (p *CodeParser) Language() Language {
	return p.langString
}

func (p *CodeParser) isTargetType(nodeType string) bool {
	for _, t := range p.nodeTypes {
		if t == nodeType {
			return true
		}
	}
	return false
}

// ParseFile returns one snippet per function definition, nested ones included, in source order.
func (p *CodeParser) ParseFile(ctx context.Context, content []byte, filename string) ([]*models.Snippet, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(p.language)

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}
	defer tree.Close()

	var snippets []*models.Snippet
	p.collect(tree.RootNode(), content, filename, &snippets)
	return snippets, nil
}

func (p *CodeParser) collect(node *sitter.Node, content []byte, filename string, snippets *[]*models.Snippet) {
	if p.isTargetType(node.Type()) {
		if snippet := p.newSnippet(node, content, filename); snippet != nil {
			*snippets = append(*snippets, snippet)
		}
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		p.collect(node.NamedChild(i), content, filename, snippets)
	}
}

func (p *CodeParser) newSnippet(node *sitter.Node, content []byte, filename string) *models.Snippet {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}

	code := normalize(node.Content(content), indentationAt(content, node.StartByte()))
	lines := strings.Count(code, "\n") + 1
	if p.limits.MinLines > 0 && lines < p.limits.MinLines {
		return nil
	}
	if p.limits.MaxChars > 0 && len(code) > p.limits.MaxChars {
		return nil
	}

	snippet := models.NewSnippet(uuid.New().String(), nameNode.Content(content), code, filename, string(p.langString))
	snippet.StartLine = int(node.StartPoint().Row) + 1
	snippet.EndLine = int(node.EndPoint().Row) + 1
	return snippet
}

// indentationAt returns the whitespace between the start of the line and offset.
func indentationAt(content []byte, offset uint32) string {
	start := int(offset)
	for start > 0 && content[start-1] != '\n' {
		start--
	}
	prefix := string(content[start:offset])
	if strings.TrimLeft(prefix, " \t") != "" {
		return ""
	}
	return prefix
}

// normalize strips trailing whitespace and removes the definition's own indentation
// from continuation lines.
func normalize(code, indent string) string {
	lines := strings.Split(code, "\n")
	for i, line := range lines {
		if i > 0 && indent != "" {
			line = strings.TrimPrefix(line, indent)
		}
		lines[i] = strings.TrimRight(line, " \t\r")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}
