package tracing

import "math/rand/v2"

// Sampler decides which requests are traced.
type Sampler struct {
	rate float64
}

// NewSampler traces the given fraction of requests. Rates at or below zero
// disable tracing; rates at or above one trace everything.
func NewSampler(rate float64) *Sampler {
	return &Sampler{rate: rate}
}

func (s *Sampler) Sample() bool {
	if s == nil || s.rate <= 0 {
		return false
	}
	if s.rate >= 1 {
		return true
	}
	return rand.Float64() < s.rate
}
