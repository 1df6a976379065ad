package lm

import (
	"fmt"
	"math"
	"math/rand"
	"sync"

	"go_code_tuner/services/tuner/internal/models"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

type LoRAOptions struct {
	Rank  int
	Alpha float64
	Seed  int64
	Adam  AdamOptions
}

// LoRAModel predicts the next token from the current one with logits E[x]·(H + scale·A·B).
// E and H are frozen; only the low-rank adapter A (d x r) and B (r x V) is trained.
type LoRAModel struct {
	mu sync.RWMutex

	base  *Base
	rank  int
	alpha float64
	scale float64

	a, b   *mat.Dense
	gradA  *mat.Dense
	gradB  *mat.Dense
	adamA  *adam
	adamB  *adam
	steps  int
	merged *mat.Dense
}

var _ LanguageModel = (*LoRAModel)(nil)

func NewLoRAModel(base *Base, opts LoRAOptions) (*LoRAModel, error) {
	if opts.Rank <= 0 {
		return nil, fmt.Errorf("lora rank must be positive, got %d", opts.Rank)
	}
	if opts.Alpha <= 0 {
		opts.Alpha = float64(opts.Rank)
	}
	if opts.Adam == (AdamOptions{}) {
		opts.Adam = DefaultAdamOptions()
	}

	v, d := base.VocabSize(), base.EmbeddingDim()
	rng := rand.New(rand.NewSource(opts.Seed))
	m := &LoRAModel{
		base:  base,
		rank:  opts.Rank,
		alpha: opts.Alpha,
		scale: opts.Alpha / float64(opts.Rank),
		a:     mat.NewDense(d, opts.Rank, normal(rng, d*opts.Rank, 1/math.Sqrt(float64(d)))),
		b:     mat.NewDense(opts.Rank, v, nil),
		gradA: mat.NewDense(d, opts.Rank, nil),
		gradB: mat.NewDense(opts.Rank, v, nil),
		adamA: newAdam(d*opts.Rank, opts.Adam),
		adamB: newAdam(opts.Rank*v, opts.Adam),
	}
	m.merge()
	return m, nil
}

func (m *LoRAModel) VocabSize() int {
	return m.base.VocabSize()
}

func (m *LoRAModel) Rank() int {
	return m.rank
}

func (m *LoRAModel) Alpha() float64 {
	return m.alpha
}

func (m *LoRAModel) Base() *Base {
	return m.base
}

// merge recomputes H + scale·A·B after the adapter changes. Callers hold the write lock.
func (m *LoRAModel) merge() {
	var delta mat.Dense
	delta.Mul(m.a, m.b)
	delta.Scale(m.scale, &delta)

	var merged mat.Dense
	merged.Add(m.base.Head, &delta)
	m.merged = &merged
}

func (m *LoRAModel) hidden(id int) *mat.VecDense {
	if id < 0 || id >= m.base.VocabSize() {
		id = 0
	}
	return mat.NewVecDense(m.base.EmbeddingDim(), m.base.Embedding.RawRowView(id))
}

func (m *LoRAModel) logits(w *mat.Dense, h *mat.VecDense) []float64 {
	var z mat.VecDense
	z.MulVec(w.T(), h)
	return z.RawVector().Data
}

func (m *LoRAModel) validTarget(label int) bool {
	return label != models.IgnoreIndex && label >= 0 && label < m.base.VocabSize()
}

func (m *LoRAModel) TrainStep(batch []models.Block) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	w := m.merged
	stepGradA := mat.NewDense(m.base.EmbeddingDim(), m.rank, nil)
	stepGradB := mat.NewDense(m.rank, m.base.VocabSize(), nil)

	total, count := 0.0, 0
	for _, block := range batch {
		for t := 0; t+1 < len(block.InputIDs) && t+1 < len(block.Labels); t++ {
			target := block.Labels[t+1]
			if !m.validTarget(target) {
				continue
			}

			h := m.hidden(block.InputIDs[t])
			z := m.logits(w, h)
			lse := floats.LogSumExp(z)
			total += lse - z[target]
			count++

			// z becomes softmax(z) - onehot(target)
			for i := range z {
				z[i] = math.Exp(z[i] - lse)
			}
			z[target]--
			g := mat.NewVecDense(len(z), z)

			var u mat.VecDense
			u.MulVec(m.a.T(), h)
			stepGradB.RankOne(stepGradB, m.scale, &u, g)

			var bg mat.VecDense
			bg.MulVec(m.b, g)
			stepGradA.RankOne(stepGradA, m.scale, h, &bg)
		}
	}
	if count == 0 {
		return 0, fmt.Errorf("batch of %d blocks has no trainable positions", len(batch))
	}

	inv := 1 / float64(count)
	stepGradA.Scale(inv, stepGradA)
	stepGradB.Scale(inv, stepGradB)
	m.gradA.Add(m.gradA, stepGradA)
	m.gradB.Add(m.gradB, stepGradB)
	return total * inv, nil
}

func (m *LoRAModel) EvalLoss(batch []models.Block) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	w := m.merged
	total, count := 0.0, 0
	for _, block := range batch {
		for t := 0; t+1 < len(block.InputIDs) && t+1 < len(block.Labels); t++ {
			target := block.Labels[t+1]
			if !m.validTarget(target) {
				continue
			}
			z := m.logits(w, m.hidden(block.InputIDs[t]))
			total += floats.LogSumExp(z) - z[target]
			count++
		}
	}
	if count == 0 {
		return 0, fmt.Errorf("batch of %d blocks has no scored positions", len(batch))
	}
	return total / float64(count), nil
}

// NextTokenLogits scores every vocabulary entry as the successor of the last id.
func (m *LoRAModel) NextTokenLogits(ids []int) []float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	last := 0
	if len(ids) > 0 {
		last = ids[len(ids)-1]
	}
	z := m.logits(m.merged, m.hidden(last))
	return append([]float64(nil), z...)
}

func (m *LoRAModel) Step(learningRate float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.steps++
	m.adamA.update(m.a.RawMatrix().Data, m.gradA.RawMatrix().Data, learningRate, m.steps)
	m.adamB.update(m.b.RawMatrix().Data, m.gradB.RawMatrix().Data, learningRate, m.steps)
	m.merge()
}

func (m *LoRAModel) ZeroGrad() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gradA.Zero()
	m.gradB.Zero()
}
