package trainparam

import "math"

// DefaultMaxIterFun is the default episode length schedule: the
// allowed length grows in discrete steps of StepIncreaseNbIter, one
// step every UpdateNbIter successful scenarios. A StepIncreaseNbIter
// of 0 disables the schedule and every call returns 0.
func (p *TrainingParam) DefaultMaxIterFun(nbSuccess int) int {
	return p.StepIncreaseNbIter * int(float64(nbSuccess)*p.invUpdateNbIter)
}

// SqrtMaxIterFun returns an episode length schedule that grows with
// the square root of the success count, floor(sqrt(scale*nbSuccess)).
// Assign the result to MaxIterFun to replace the default stepwise
// schedule.
func SqrtMaxIterFun(scale float64) func(nbSuccess int) int {
	return func(nbSuccess int) int {
		return int(math.Sqrt(scale * float64(nbSuccess)))
	}
}

// LearningRate returns the learning rate scheduled for step: the
// initial Lr decayed by a factor of LrDecayRate every LrDecaySteps
// steps.
func (p *TrainingParam) LearningRate(step int) float64 {
	return p.Lr * math.Pow(p.LrDecayRate, float64(step)/p.LrDecaySteps)
}

// OversamplingProba returns the probability with which a scenario
// that was survived for timeStepsLived steps is selected at the next
// reset. Harder scenarios (short lifetimes) are selected more often.
// When OversamplingRate is nil the feature is disabled and selection
// is uniform, so the probability is 1.
func (p *TrainingParam) OversamplingProba(timeStepsLived int) float64 {
	if p.OversamplingRate == nil {
		return 1.0
	}
	return 1.0 / (math.Pow(float64(timeStepsLived), *p.OversamplingRate) + 1.0)
}
