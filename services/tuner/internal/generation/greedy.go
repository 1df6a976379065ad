package generation

import (
	"context"

	"go_code_tuner/services/tuner/internal/lm"
	"go_code_tuner/services/tuner/internal/tokenizer"
	"gonum.org/v1/gonum/floats"
)

// Greedy appends the most likely next token to the prompt until end-of-text or maxNewTokens,
// and returns only the generated text.
func Greedy(ctx context.Context, model lm.LanguageModel, tok tokenizer.Tokenizer, prompt string, maxNewTokens int) (string, error) {
	ids := tok.Encode(prompt)
	promptLen := len(ids)
	eos := tok.EOSTokenID()

	for i := 0; i < maxNewTokens; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		logits := model.NextTokenLogits(ids)
		if len(logits) == 0 {
			break
		}
		next := floats.MaxIdx(logits)
		if next == eos {
			break
		}
		ids = append(ids, next)
	}

	return tok.Decode(ids[promptLen:]), nil
}
