// Package trainparam implements the numeric training schedule of a
// reinforcement learning agent: replay buffer sizing, the
// epsilon-greedy exploration schedule, the learning rate schedule, the
// adaptive episode length schedule, gradient clipping limits, and the
// cadence at which the training loop updates, logs, and saves its
// model. A TrainingParam is consumed once per training step by an
// external training loop and is JSON serializable.
package trainparam

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// TrainingParam stores the training schedule hyperparameters of an
// agent. All fields may be set directly; after mutating the epsilon
// schedule fields or UpdateNbIter, call Recompute so that the derived
// coefficients stay consistent (Default, SetUpdateNbIter and FromMap
// do this on your behalf).
type TrainingParam struct {
	BufferSize    int // Size of the experience replay buffer
	MinibatchSize int // Size of each training minibatch

	// UpdateFreq is the number of steps between two gradient updates.
	// The training loop trains once every UpdateFreq steps using
	// MinibatchSize samples from the replay buffer. Must be positive.
	UpdateFreq int

	// MinObservation is the number of observations collected before
	// training starts. Before this many steps the agent only
	// interacts with the environment.
	MinObservation int

	// Epsilon-greedy exploration schedule. The exploration rate decays
	// exponentially from InitialEpsilon at step 0 to FinalEpsilon at
	// StepForFinalEpsilon, and stays at FinalEpsilon afterwards.
	InitialEpsilon      float64
	FinalEpsilon        float64
	StepForFinalEpsilon int

	// Learning rate schedule: Lr decays by a factor of LrDecayRate
	// every LrDecaySteps steps.
	Lr           float64
	LrDecaySteps float64
	LrDecayRate  float64

	NumFrames int // Currently unused by the schedule

	DiscountFactor float64 // The discount factor, often called gamma
	Tau            float64 // Polyak averaging constant for target nets

	// Episode length schedule. Episodes may count as at most
	// MaxEpisodeLength(nbSuccess) steps for the current epoch; the
	// default schedule grows by StepIncreaseNbIter every UpdateNbIter
	// successful scenarios. MinIter and MaxIter bound the schedule on
	// the training loop side.
	MinIter            int
	MaxIter            int
	UpdateNbIter       int
	StepIncreaseNbIter int

	// MaxIterFun computes the maximum number of time steps an episode
	// may count as, given the number of scenarios succeeded so far.
	// Replace it to use a custom growth curve, for example
	// SqrtMaxIterFun(50). Defaults to the stepwise DefaultMaxIterFun.
	MaxIterFun func(nbSuccess int) int

	// Gradient clipping limits. A nil limit disables the
	// corresponding clip.
	MaxGlobalNormGrad *float64
	MaxValueGrad      *float64
	MaxLoss           float64

	// OversamplingRate controls the oversampling of hard scenarios at
	// reset time; nil disables it and scenarios are selected
	// uniformly.
	OversamplingRate *float64

	// RandomSampleDatetimeStart, when non-nil, makes the training
	// scheme skip between 0 and this many time steps when loading the
	// next scenario, so the agent does not overfit to the hour of day.
	RandomSampleDatetimeStart *int

	UpdateTensorboardFreq int // Steps between two tensorboard updates
	SaveModelEach         int // Steps between two model checkpoints

	// LastStep is the most recent step recorded through TellStep or
	// GetNextEpsilon.
	LastStep int

	// Derived coefficients, recomputed by Recompute
	expFactor       float64
	invUpdateNbIter float64
}

// Default returns a TrainingParam with the default training schedule.
func Default() *TrainingParam {
	p := &TrainingParam{
		BufferSize:          40000,
		MinibatchSize:       64,
		UpdateFreq:          256,
		MinObservation:      5000,
		InitialEpsilon:      0.4,
		FinalEpsilon:        1.0 / (7.0 * 288.0), // one random action per week of 7*288 steps on average
		StepForFinalEpsilon: 100000,
		Lr:                  1e-4,
		LrDecaySteps:        10000,
		LrDecayRate:         0.999,
		NumFrames:           1,
		DiscountFactor:      0.99,
		Tau:                 0.1,
		MinIter:             50,
		MaxIter:             8064, // 1 month at 5 minute steps
		UpdateNbIter:        10,
		StepIncreaseNbIter:  0, // 0 disables the episode length schedule
		MaxLoss:             1e3,

		UpdateTensorboardFreq: 1000,
		SaveModelEach:         10000,
	}
	p.Recompute()
	return p
}

// Recompute re-derives the coefficients that depend on other fields.
// When FinalEpsilon is not positive the exponent factor falls back to
// 1.0; when UpdateNbIter is not positive its inverse falls back to
// 1.0. Callers mutating InitialEpsilon, FinalEpsilon or UpdateNbIter
// directly must call Recompute before querying the schedules.
func (p *TrainingParam) Recompute() {
	if p.FinalEpsilon > 0 {
		p.expFactor = math.Log(p.InitialEpsilon / p.FinalEpsilon)
	} else {
		p.expFactor = 1.0
	}

	if p.UpdateNbIter > 0 {
		p.invUpdateNbIter = 1.0 / float64(p.UpdateNbIter)
	} else {
		p.invUpdateNbIter = 1.0
	}

	if p.MaxIterFun == nil {
		p.MaxIterFun = p.DefaultMaxIterFun
	}
}

// SetUpdateNbIter sets the number of successful scenarios required
// before the episode length schedule takes its next step, re-deriving
// the dependent coefficient.
func (p *TrainingParam) SetUpdateNbIter(n int) {
	p.UpdateNbIter = n
	if p.UpdateNbIter > 0 {
		p.invUpdateNbIter = 1.0 / float64(p.UpdateNbIter)
	} else {
		p.invUpdateNbIter = 1.0
	}
}

// TellStep records currentStep as the last step seen without
// computing the exploration rate.
func (p *TrainingParam) TellStep(currentStep int) {
	p.LastStep = currentStep
}

// GetNextEpsilon records currentStep as the last step seen and
// returns the exploration rate scheduled for it: FinalEpsilon once
// the step budget is spent, and otherwise an exponential decay curve
// passing through (0, InitialEpsilon) and reaching FinalEpsilon at
// StepForFinalEpsilon.
func (p *TrainingParam) GetNextEpsilon(currentStep int) float64 {
	p.LastStep = currentStep
	return p.epsilonAt(float64(currentStep))
}

// epsilonAt evaluates the decay curve without recording the step.
func (p *TrainingParam) epsilonAt(step float64) float64 {
	if step > float64(p.StepForFinalEpsilon) {
		return p.FinalEpsilon
	}
	frac := step / float64(p.StepForFinalEpsilon)
	return p.InitialEpsilon * math.Exp(-frac*p.expFactor)
}

// EpsilonCurve samples the exploration schedule at numPoints evenly
// spaced steps across [0, StepForFinalEpsilon], for logging
// dashboards. It does not record any step. numPoints must be at
// least 2.
func (p *TrainingParam) EpsilonCurve(numPoints int) []float64 {
	steps := floats.Span(make([]float64, numPoints), 0,
		float64(p.StepForFinalEpsilon))

	curve := make([]float64, numPoints)
	for i, step := range steps {
		curve[i] = p.epsilonAt(step)
	}
	return curve
}

// MaxEpisodeLength returns the maximum number of time steps an
// episode may count as for the current epoch, given the number of
// scenarios succeeded so far. It delegates to MaxIterFun.
func (p *TrainingParam) MaxEpisodeLength(nbSuccess int) int {
	return p.MaxIterFun(nbSuccess)
}

// DoTrain returns whether a gradient update is due at the last
// recorded step.
func (p *TrainingParam) DoTrain() bool {
	return p.LastStep%p.UpdateFreq == 0
}

// DoUpdateTensorboard returns whether tensorboard summaries are due
// at the last recorded step.
func (p *TrainingParam) DoUpdateTensorboard() bool {
	return p.LastStep%p.UpdateTensorboardFreq == 0
}

// DoSaveModel returns whether a model checkpoint is due at the last
// recorded step.
func (p *TrainingParam) DoSaveModel() bool {
	return p.LastStep%p.SaveModelEach == 0
}
