package dataset

import (
	"go_code_tuner/services/tuner/internal/models"
	"go_code_tuner/services/tuner/internal/tokenizer"
)

// Tokenize encodes each snippet's text into a sequence whose labels mirror its inputs.
func Tokenize(tok tokenizer.Tokenizer, snippets []*models.Snippet, appendEOS bool) []models.TokenSequence {
	sequences := make([]models.TokenSequence, 0, len(snippets))
	for _, snippet := range snippets {
		text := snippet.Text
		if text == "" {
			text = snippet.Content
		}
		ids := tok.Encode(text)
		if appendEOS {
			ids = append(ids, tok.EOSTokenID())
		}
		if len(ids) == 0 {
			continue
		}
		sequences = append(sequences, models.NewTokenSequence(ids))
	}
	return sequences
}

// Texts returns the text each snippet is tokenized from.
func Texts(snippets []*models.Snippet) []string {
	texts := make([]string, 0, len(snippets))
	for _, snippet := range snippets {
		if snippet.Text != "" {
			texts = append(texts, snippet.Text)
		} else {
			texts = append(texts, snippet.Content)
		}
	}
	return texts
}
