package trainparam

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r1"

	"github.com/ydlu/l2rpn-baselines/utils/floatutils"
)

// ClipValueGrad clamps each gradient component to the interval
// [-MaxValueGrad, MaxValueGrad] in place. It is a no-op when
// MaxValueGrad is nil.
func (p *TrainingParam) ClipValueGrad(grads []float64) {
	if p.MaxValueGrad == nil {
		return
	}

	bound := r1.Interval{Min: -*p.MaxValueGrad, Max: *p.MaxValueGrad}
	for i, grad := range grads {
		grads[i] = floatutils.ClipInterval(grad, bound)
	}
}

// ClipGlobalNormGrad rescales the gradient in place so that its L2
// norm does not exceed MaxGlobalNormGrad. Gradients already within
// the limit are left untouched. It is a no-op when MaxGlobalNormGrad
// is nil.
func (p *TrainingParam) ClipGlobalNormGrad(grads []float64) {
	if p.MaxGlobalNormGrad == nil {
		return
	}

	norm := floats.Norm(grads, 2)
	if norm == 0 || norm <= *p.MaxGlobalNormGrad {
		return
	}
	floats.Scale(*p.MaxGlobalNormGrad/norm, grads)
}

// ClipLoss caps a loss value at MaxLoss.
func (p *TrainingParam) ClipLoss(loss float64) float64 {
	return floatutils.Min(loss, p.MaxLoss)
}
