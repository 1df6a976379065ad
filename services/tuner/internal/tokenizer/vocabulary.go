package tokenizer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

const (
	VocabularyFile = "vocab.json"

	EOSLocalID     = 0
	UnknownLocalID = 1
	reservedIDs    = 2
)

// Vocabulary is a dense local id space over the base ids seen in a corpus.
// Local id 0 is end-of-text (also used as padding), 1 is unknown.
type Vocabulary struct {
	base        Tokenizer
	encoding    string
	localToBase []int
	baseToLocal map[int]int
}

type vocabularyFile struct {
	Encoding    string `json:"encoding"`
	EOSID       int    `json:"eos_id"`
	UnknownID   int    `json:"unk_id"`
	BaseTokenID []int  `json:"base_token_ids"`
}

func newVocabulary(base Tokenizer, encoding string, localToBase []int) *Vocabulary {
	baseToLocal := make(map[int]int, len(localToBase))
	for i, id := range localToBase {
		baseToLocal[id] = i + reservedIDs
	}
	return &Vocabulary{
		base:        base,
		encoding:    encoding,
		localToBase: localToBase,
		baseToLocal: baseToLocal,
	}
}

// Compact builds a vocabulary from every base id appearing in texts, ordered by base id.
func Compact(base Tokenizer, encoding string, texts []string) *Vocabulary {
	seen := make(map[int]struct{})
	for _, text := range texts {
		for _, id := range base.Encode(text) {
			seen[id] = struct{}{}
		}
	}
	delete(seen, base.EOSTokenID())

	ids := make([]int, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return newVocabulary(base, encoding, ids)
}

func (v *Vocabulary) Encode(text string) []int {
	raw := v.base.Encode(text)
	out := make([]int, 0, len(raw))
	for _, id := range raw {
		if local, ok := v.baseToLocal[id]; ok {
			out = append(out, local)
		} else {
			out = append(out, UnknownLocalID)
		}
	}
	return out
}

// Decode drops end-of-text and unknown ids.
func (v *Vocabulary) Decode(ids []int) string {
	raw := make([]int, 0, len(ids))
	for _, local := range ids {
		i := local - reservedIDs
		if i >= 0 && i < len(v.localToBase) {
			raw = append(raw, v.localToBase[i])
		}
	}
	return v.base.Decode(raw)
}

func (v *Vocabulary) EOSTokenID() int {
	return EOSLocalID
}

func (v *Vocabulary) VocabSize() int {
	return len(v.localToBase) + reservedIDs
}

func (v *Vocabulary) Encoding() string {
	return v.encoding
}

func (v *Vocabulary) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(vocabularyFile{
		Encoding:    v.encoding,
		EOSID:       EOSLocalID,
		UnknownID:   UnknownLocalID,
		BaseTokenID: v.localToBase,
	})
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, VocabularyFile), data, 0o644)
}

// LoadVocabulary restores a vocabulary saved next to a checkpoint. The base tokenizer must use the saved encoding.
func LoadVocabulary(dir string, base Tokenizer) (*Vocabulary, error) {
	data, err := os.ReadFile(filepath.Join(dir, VocabularyFile))
	if err != nil {
		return nil, err
	}

	var file vocabularyFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", VocabularyFile, err)
	}
	if file.EOSID != EOSLocalID || file.UnknownID != UnknownLocalID {
		return nil, fmt.Errorf("unsupported %s layout", VocabularyFile)
	}
	return newVocabulary(base, file.Encoding, file.BaseTokenID), nil
}

// ReadEncoding returns the base encoding name recorded in dir's vocabulary.
func ReadEncoding(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, VocabularyFile))
	if err != nil {
		return "", err
	}
	var file vocabularyFile
	if err := json.Unmarshal(data, &file); err != nil {
		return "", fmt.Errorf("invalid %s: %w", VocabularyFile, err)
	}
	return file.Encoding, nil
}
