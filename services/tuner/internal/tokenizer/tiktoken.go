package tokenizer

import (
	"fmt"
	"strings"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

const (
	DefaultEncoding = "cl100k_base"
	EndOfText       = "<|endoftext|>"
)

// Tiktoken is a byte-level BPE tokenizer. Encoding files are cached under TIKTOKEN_CACHE_DIR.
type Tiktoken struct {
	encoding string
	bpe      *tiktoken.Tiktoken
	eos      int
	size     int
}

func NewTiktoken(encoding string) (*Tiktoken, error) {
	encoding = strings.TrimSpace(encoding)
	if encoding == "" {
		encoding = DefaultEncoding
	}

	bpe, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to load encoding %s: %w", encoding, err)
	}

	eos := bpe.Encode(EndOfText, []string{EndOfText}, nil)
	if len(eos) != 1 {
		return nil, fmt.Errorf("encoding %s has no %s token", encoding, EndOfText)
	}

	return &Tiktoken{
		encoding: encoding,
		bpe:      bpe,
		eos:      eos[0],
		size:     eos[0] + 1,
	}, nil
}

func (t *Tiktoken) Encoding() string {
	return t.encoding
}

// Encode treats special-token text literally.
func (t *Tiktoken) Encode(text string) []int {
	return t.bpe.EncodeOrdinary(text)
}

func (t *Tiktoken) Decode(ids []int) string {
	return t.bpe.Decode(ids)
}

func (t *Tiktoken) EOSTokenID() int {
	return t.eos
}

// VocabSize is an upper bound on the ordinary ids this encoding emits.
func (t *Tiktoken) VocabSize() int {
	return t.size
}
