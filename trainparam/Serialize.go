package trainparam

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultFileName is the file name used by SaveAsJSON when none is
// given.
const DefaultFileName = "training_parameters.json"

// Errors returned by the (de)serialization functions. Missing paths
// surface as the wrapped filesystem error, so
// errors.Is(err, os.ErrNotExist) reports them.
var (
	ErrNotAMapping   = errors.New("expected a flat key-value mapping")
	ErrNotADirectory = errors.New("not a directory")
)

// Serialized field names, by type. A field that appears in neither
// list is never serialized. The key names keep the snake_case layout
// of existing parameter files, so files written by older tooling load
// unchanged.
var intAttrs = []string{
	"buffer_size", "minibatch_size", "step_for_final_epsilon",
	"min_observation", "last_step", "num_frames", "update_freq",
	"min_iter", "max_iter", "update_tensorboard_freq", "save_model_each",
	"update_nb_iter_", "step_increase_nb_iter",
}

var floatAttrs = []string{
	"final_epsilon", "initial_epsilon", "lr", "lr_decay_steps",
	"lr_decay_rate", "discount_factor", "tau", "oversampling_rate",
	"max_global_norm_grad", "max_value_grad", "max_loss",
}

// ToMap returns the serializable fields of p as a flat mapping from
// field name to value. Unset optional fields map to nil.
func (p *TrainingParam) ToMap() map[string]interface{} {
	res := make(map[string]interface{}, len(intAttrs)+len(floatAttrs))
	for _, name := range intAttrs {
		res[name] = p.intAttr(name)
	}
	for _, name := range floatAttrs {
		res[name] = p.floatAttr(name)
	}
	return res
}

// FromMap builds a TrainingParam from a flat mapping such as one
// produced by ToMap. Fields absent from the mapping keep their
// defaults; nil values leave optional fields unset. The derived
// coefficients are recomputed from the loaded fields. FromMap fails
// wrapping ErrNotAMapping when data is not a mapping.
func FromMap(data interface{}) (*TrainingParam, error) {
	m, ok := data.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("fromMap: %w, got %T", ErrNotAMapping, data)
	}

	p := Default()
	for _, name := range intAttrs {
		value, present := m[name]
		if !present {
			continue
		}
		if err := p.setIntAttr(name, value); err != nil {
			return nil, fmt.Errorf("fromMap: %v", err)
		}
	}
	for _, name := range floatAttrs {
		value, present := m[name]
		if !present {
			continue
		}
		if err := p.setFloatAttr(name, value); err != nil {
			return nil, fmt.Errorf("fromMap: %v", err)
		}
	}

	p.Recompute()
	return p, nil
}

// FromJSON loads a TrainingParam from the JSON file at path.
func FromJSON(path string) (*TrainingParam, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("fromJSON: %w", err)
	}
	defer file.Close()

	var m map[string]interface{}
	if err := json.NewDecoder(file).Decode(&m); err != nil {
		return nil, fmt.Errorf("fromJSON: decoding %q: %v", path, err)
	}
	return FromMap(m)
}

// SaveAsJSON writes p into directory dir under the given file name as
// an indented JSON document with sorted keys. An empty name uses
// DefaultFileName. It fails wrapping os.ErrNotExist when dir does not
// exist and wrapping ErrNotADirectory when dir is not a directory.
func (p *TrainingParam) SaveAsJSON(dir, name string) error {
	if name == "" {
		name = DefaultFileName
	}

	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("saveAsJSON: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("saveAsJSON: %q: %w", dir, ErrNotADirectory)
	}

	data, err := json.MarshalIndent(p.ToMap(), "", "    ")
	if err != nil {
		return fmt.Errorf("saveAsJSON: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return fmt.Errorf("saveAsJSON: %w", err)
	}
	return nil
}

// intAttr returns the value of the named integer field, as an int or
// nil.
func (p *TrainingParam) intAttr(name string) interface{} {
	switch name {
	case "buffer_size":
		return p.BufferSize
	case "minibatch_size":
		return p.MinibatchSize
	case "step_for_final_epsilon":
		return p.StepForFinalEpsilon
	case "min_observation":
		return p.MinObservation
	case "last_step":
		return p.LastStep
	case "num_frames":
		return p.NumFrames
	case "update_freq":
		return p.UpdateFreq
	case "min_iter":
		return p.MinIter
	case "max_iter":
		return p.MaxIter
	case "update_tensorboard_freq":
		return p.UpdateTensorboardFreq
	case "save_model_each":
		return p.SaveModelEach
	case "update_nb_iter_":
		return p.UpdateNbIter
	case "step_increase_nb_iter":
		return p.StepIncreaseNbIter
	}
	panic(fmt.Sprintf("intAttr: no integer field named %q", name))
}

// floatAttr returns the value of the named float field, as a float64
// or nil.
func (p *TrainingParam) floatAttr(name string) interface{} {
	switch name {
	case "final_epsilon":
		return p.FinalEpsilon
	case "initial_epsilon":
		return p.InitialEpsilon
	case "lr":
		return p.Lr
	case "lr_decay_steps":
		return p.LrDecaySteps
	case "lr_decay_rate":
		return p.LrDecayRate
	case "discount_factor":
		return p.DiscountFactor
	case "tau":
		return p.Tau
	case "oversampling_rate":
		return floatOrNil(p.OversamplingRate)
	case "max_global_norm_grad":
		return floatOrNil(p.MaxGlobalNormGrad)
	case "max_value_grad":
		return floatOrNil(p.MaxValueGrad)
	case "max_loss":
		return p.MaxLoss
	}
	panic(fmt.Sprintf("floatAttr: no float field named %q", name))
}

// setIntAttr sets the named integer field from a deserialized value.
// A nil value leaves the field at its default.
func (p *TrainingParam) setIntAttr(name string, value interface{}) error {
	if value == nil {
		return nil
	}

	n, ok := toInt(value)
	if !ok {
		return fmt.Errorf("field %q: cannot use %v (%T) as an integer",
			name, value, value)
	}

	switch name {
	case "buffer_size":
		p.BufferSize = n
	case "minibatch_size":
		p.MinibatchSize = n
	case "step_for_final_epsilon":
		p.StepForFinalEpsilon = n
	case "min_observation":
		p.MinObservation = n
	case "last_step":
		p.LastStep = n
	case "num_frames":
		p.NumFrames = n
	case "update_freq":
		p.UpdateFreq = n
	case "min_iter":
		p.MinIter = n
	case "max_iter":
		p.MaxIter = n
	case "update_tensorboard_freq":
		p.UpdateTensorboardFreq = n
	case "save_model_each":
		p.SaveModelEach = n
	case "update_nb_iter_":
		p.UpdateNbIter = n
	case "step_increase_nb_iter":
		p.StepIncreaseNbIter = n
	default:
		return fmt.Errorf("no integer field named %q", name)
	}
	return nil
}

// setFloatAttr sets the named float field from a deserialized value.
// A nil value unsets the optional fields and leaves the others at
// their defaults.
func (p *TrainingParam) setFloatAttr(name string, value interface{}) error {
	if value == nil {
		switch name {
		case "oversampling_rate":
			p.OversamplingRate = nil
		case "max_global_norm_grad":
			p.MaxGlobalNormGrad = nil
		case "max_value_grad":
			p.MaxValueGrad = nil
		}
		return nil
	}

	f, ok := toFloat(value)
	if !ok {
		return fmt.Errorf("field %q: cannot use %v (%T) as a float",
			name, value, value)
	}

	switch name {
	case "final_epsilon":
		p.FinalEpsilon = f
	case "initial_epsilon":
		p.InitialEpsilon = f
	case "lr":
		p.Lr = f
	case "lr_decay_steps":
		p.LrDecaySteps = f
	case "lr_decay_rate":
		p.LrDecayRate = f
	case "discount_factor":
		p.DiscountFactor = f
	case "tau":
		p.Tau = f
	case "oversampling_rate":
		p.OversamplingRate = &f
	case "max_global_norm_grad":
		p.MaxGlobalNormGrad = &f
	case "max_value_grad":
		p.MaxValueGrad = &f
	case "max_loss":
		p.MaxLoss = f
	default:
		return fmt.Errorf("no float field named %q", name)
	}
	return nil
}

func floatOrNil(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

// toInt converts the numeric types produced by construction or JSON
// decoding. JSON numbers arrive as float64.
func toInt(value interface{}) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}

func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}
