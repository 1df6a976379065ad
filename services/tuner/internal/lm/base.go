package lm

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"

	"gonum.org/v1/gonum/mat"
)

// Base holds the frozen weights: a token embedding (V x d) and an output head (d x V).
type Base struct {
	Embedding *mat.Dense
	Head      *mat.Dense
	Path      string
	Seed      int64
}

type baseFile struct {
	VocabSize    int         `json:"vocab_size"`
	EmbeddingDim int         `json:"embedding_dim"`
	Embedding    [][]float64 `json:"embedding"`
	Head         [][]float64 `json:"head"`
}

func (b *Base) VocabSize() int {
	v, _ := b.Embedding.Dims()
	return v
}

func (b *Base) EmbeddingDim() int {
	_, d := b.Embedding.Dims()
	return d
}

// RandomBase draws a base from a seeded source. The same arguments always yield the same weights.
func RandomBase(vocabSize, dim int, seed int64) (*Base, error) {
	if vocabSize <= 0 || dim <= 0 {
		return nil, fmt.Errorf("invalid base shape %dx%d", vocabSize, dim)
	}

	rng := rand.New(rand.NewSource(seed))
	embedding := mat.NewDense(vocabSize, dim, normal(rng, vocabSize*dim, 1))
	head := mat.NewDense(dim, vocabSize, normal(rng, dim*vocabSize, 1/math.Sqrt(float64(dim))))
	return &Base{Embedding: embedding, Head: head, Seed: seed}, nil
}

func LoadBase(path string) (*Base, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file baseFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("invalid base model %s: %w", path, err)
	}

	embedding, err := fromRows(file.Embedding, file.VocabSize, file.EmbeddingDim)
	if err != nil {
		return nil, fmt.Errorf("embedding: %w", err)
	}
	head, err := fromRows(file.Head, file.EmbeddingDim, file.VocabSize)
	if err != nil {
		return nil, fmt.Errorf("head: %w", err)
	}
	return &Base{Embedding: embedding, Head: head, Path: path}, nil
}

func (b *Base) Save(path string) error {
	data, err := json.Marshal(baseFile{
		VocabSize:    b.VocabSize(),
		EmbeddingDim: b.EmbeddingDim(),
		Embedding:    toRows(b.Embedding),
		Head:         toRows(b.Head),
	})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func normal(rng *rand.Rand, n int, std float64) []float64 {
	data := make([]float64, n)
	for i := range data {
		data[i] = rng.NormFloat64() * std
	}
	return data
}

func toRows(m *mat.Dense) [][]float64 {
	r, _ := m.Dims()
	rows := make([][]float64, r)
	for i := range rows {
		rows[i] = append([]float64(nil), m.RawRowView(i)...)
	}
	return rows
}

func fromRows(rows [][]float64, r, c int) (*mat.Dense, error) {
	if r <= 0 || c <= 0 || len(rows) != r {
		return nil, fmt.Errorf("expected %d rows, got %d", r, len(rows))
	}
	data := make([]float64, 0, r*c)
	for i, row := range rows {
		if len(row) != c {
			return nil, fmt.Errorf("row %d has %d columns, expected %d", i, len(row), c)
		}
		data = append(data, row...)
	}
	return mat.NewDense(r, c, data), nil
}
