package tokenizer

import "fmt"

const ByteEncoding = "bytes"

// Bytes tokenizes text as raw UTF-8 bytes, with end-of-text as id 256. It needs no encoding files.
type Bytes struct{}

func NewBytes() *Bytes {
	return &Bytes{}
}

func (Bytes) Encode(text string) []int {
	ids := make([]int, len(text))
	for i := 0; i < len(text); i++ {
		ids[i] = int(text[i])
	}
	return ids
}

func (Bytes) Decode(ids []int) string {
	out := make([]byte, 0, len(ids))
	for _, id := range ids {
		if id >= 0 && id < 256 {
			out = append(out, byte(id))
		}
	}
	return string(out)
}

func (Bytes) EOSTokenID() int {
	return 256
}

func (Bytes) VocabSize() int {
	return 257
}

// New returns the base tokenizer for an encoding name.
func New(encoding string) (Tokenizer, error) {
	switch encoding {
	case ByteEncoding:
		return NewBytes(), nil
	case "":
		return nil, fmt.Errorf("empty tokenizer encoding")
	}
	return NewTiktoken(encoding)
}
