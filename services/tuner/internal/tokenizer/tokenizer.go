package tokenizer

//go:generate mockgen -destination=mocks/tokenizer_mock.go -package=mocks . Tokenizer

// Tokenizer maps text to token ids and back.
type Tokenizer interface {
	Encode(text string) []int
	Decode(ids []int) string
	EOSTokenID() int
	VocabSize() int
}
