package lm

import "math"

type AdamOptions struct {
	Beta1       float64
	Beta2       float64
	Epsilon     float64
	WeightDecay float64
}

func DefaultAdamOptions() AdamOptions {
	return AdamOptions{
		Beta1:   0.9,
		Beta2:   0.999,
		Epsilon: 1e-8,
	}
}

// adam keeps first and second moment estimates for one parameter tensor.
type adam struct {
	opts AdamOptions
	m    []float64
	v    []float64
}

func newAdam(n int, opts AdamOptions) *adam {
	return &adam{
		opts: opts,
		m:    make([]float64, n),
		v:    make([]float64, n),
	}
}

// update applies one bias-corrected step with decoupled weight decay. step starts at 1.
func (a *adam) update(params, grads []float64, lr float64, step int) {
	b1, b2 := a.opts.Beta1, a.opts.Beta2
	c1 := 1 - math.Pow(b1, float64(step))
	c2 := 1 - math.Pow(b2, float64(step))
	for i, g := range grads {
		a.m[i] = b1*a.m[i] + (1-b1)*g
		a.v[i] = b2*a.v[i] + (1-b2)*g*g
		mHat := a.m[i] / c1
		vHat := a.v[i] / c2
		params[i] -= lr * (mHat/(math.Sqrt(vHat)+a.opts.Epsilon) + a.opts.WeightDecay*params[i])
	}
}
