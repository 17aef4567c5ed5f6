package trainparam

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/ydlu/l2rpn-baselines/utils/floatutils"
)

// Explorer samples the explore/exploit decision of an epsilon greedy
// policy at the exploration rate scheduled for the current step.
type Explorer struct {
	params *TrainingParam
	seed   rand.Source // Seed for random number generation
}

// NewExplorer returns a new Explorer drawing its decisions from the
// exploration schedule of p.
func NewExplorer(p *TrainingParam, seed uint64) *Explorer {
	return &Explorer{params: p, seed: rand.NewSource(seed)}
}

// Explore returns whether a random action should be taken at
// currentStep. It records currentStep on the underlying parameters,
// just like GetNextEpsilon.
func (e *Explorer) Explore(currentStep int) bool {
	epsilon := e.params.GetNextEpsilon(currentStep)

	// Construct a Bernoulli distribution at the scheduled rate and
	// sample the decision
	dist := distuv.Bernoulli{
		P:   floatutils.Clip(epsilon, 0.0, 1.0),
		Src: e.seed,
	}
	return dist.Rand() == 1.0
}
