package tokenizer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go_code_tuner/services/tuner/internal/tokenizer/mocks"
)

func TestBytes(t *testing.T) {
	tok := NewBytes()
	ids := tok.Encode("héllo")
	assert.Len(t, ids, 6)
	assert.Equal(t, "héllo", tok.Decode(ids))
	assert.Equal(t, "hi", tok.Decode([]int{'h', tok.EOSTokenID(), 'i'}))
	assert.Equal(t, 257, tok.VocabSize())
}

func TestNew(t *testing.T) {
	tok, err := New(ByteEncoding)
	require.NoError(t, err)
	assert.IsType(t, &Bytes{}, tok)

	_, err = New("")
	require.Error(t, err)
}

func TestCompactVocabulary(t *testing.T) {
	vocab := Compact(NewBytes(), ByteEncoding, []string{"abba", "cab"})

	assert.Equal(t, 5, vocab.VocabSize())
	assert.Equal(t, EOSLocalID, vocab.EOSTokenID())
	assert.Equal(t, []int{2, 3, 3, 2}, vocab.Encode("abba"))
	assert.Equal(t, []int{4, 2, UnknownLocalID}, vocab.Encode("caz"))
	assert.Equal(t, "ca", vocab.Decode([]int{4, 2, UnknownLocalID, EOSLocalID}))
}

func TestCompactVocabulary_DropsBaseEOS(t *testing.T) {
	ctrl := gomock.NewController(t)
	base := mocks.NewMockTokenizer(ctrl)
	base.EXPECT().Encode("x").Return([]int{7, 99})
	base.EXPECT().EOSTokenID().Return(99)

	vocab := Compact(base, "mock", []string{"x"})
	assert.Equal(t, 3, vocab.VocabSize())

	base.EXPECT().Encode("x").Return([]int{7, 99})
	assert.Equal(t, []int{2, UnknownLocalID}, vocab.Encode("x"))
}

func TestVocabularySaveLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "epoch_1")
	vocab := Compact(NewBytes(), ByteEncoding, []string{"func main() {}"})
	require.NoError(t, vocab.Save(dir))

	encoding, err := ReadEncoding(dir)
	require.NoError(t, err)
	assert.Equal(t, ByteEncoding, encoding)

	loaded, err := LoadVocabulary(dir, NewBytes())
	require.NoError(t, err)
	assert.Equal(t, vocab.VocabSize(), loaded.VocabSize())
	assert.Equal(t, vocab.Encode("main"), loaded.Encode("main"))
	assert.Equal(t, "main", loaded.Decode(loaded.Encode("main")))
}

func TestLoadVocabulary_Errors(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadVocabulary(dir, NewBytes())
	require.Error(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, VocabularyFile), []byte(`{"eos_id":3,"unk_id":1}`), 0o644))
	_, err = LoadVocabulary(dir, NewBytes())
	require.Error(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, VocabularyFile), []byte(`{`), 0o644))
	_, err = LoadVocabulary(dir, NewBytes())
	require.Error(t, err)
}

func TestTiktoken(t *testing.T) {
	tok, err := NewTiktoken(DefaultEncoding)
	if err != nil {
		t.Skipf("encoding unavailable: %v", err)
	}

	ids := tok.Encode("def add(a, b):\n    return a + b")
	require.NotEmpty(t, ids)
	assert.Equal(t, "def add(a, b):\n    return a + b", tok.Decode(ids))
	assert.Equal(t, 100257, tok.EOSTokenID())
	assert.NotContains(t, tok.Encode(EndOfText), tok.EOSTokenID())
}
