package trainer

// LinearSchedule warms up linearly from 0 to base over warmup steps, then decays linearly to 0 at total.
type LinearSchedule struct {
	Base   float64
	Warmup int
	Total  int
}

// At returns the learning rate for the step-th optimizer step, counting from 0.
func (s LinearSchedule) At(step int) float64 {
	if step < s.Warmup {
		return s.Base * float64(step) / float64(max(1, s.Warmup))
	}
	remaining := float64(s.Total-step) / float64(max(1, s.Total-s.Warmup))
	return s.Base * max(0, remaining)
}
