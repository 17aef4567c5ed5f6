package trainparam

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestToMapFromMapRoundTrip(t *testing.T) {
	p := Default()
	p.BufferSize = 123
	p.FinalEpsilon = 0.001
	p.SetUpdateNbIter(5)
	p.StepIncreaseNbIter = 20
	p.TellStep(512)
	oversampling := 0.8
	p.OversamplingRate = &oversampling
	maxNorm := 5.0
	p.MaxGlobalNormGrad = &maxNorm
	p.Recompute()

	q, err := FromMap(p.ToMap())
	if err != nil {
		t.Fatalf("FromMap: %v", err)
	}

	if q.BufferSize != 123 {
		t.Errorf("BufferSize: got %v, want 123", q.BufferSize)
	}
	if q.FinalEpsilon != 0.001 {
		t.Errorf("FinalEpsilon: got %v, want 0.001", q.FinalEpsilon)
	}
	if q.UpdateNbIter != 5 {
		t.Errorf("UpdateNbIter: got %v, want 5", q.UpdateNbIter)
	}
	if q.LastStep != 512 {
		t.Errorf("LastStep: got %v, want 512", q.LastStep)
	}
	if q.OversamplingRate == nil || *q.OversamplingRate != 0.8 {
		t.Errorf("OversamplingRate: got %v, want 0.8", q.OversamplingRate)
	}
	if q.MaxGlobalNormGrad == nil || *q.MaxGlobalNormGrad != 5.0 {
		t.Errorf("MaxGlobalNormGrad: got %v, want 5", q.MaxGlobalNormGrad)
	}
	if q.MaxValueGrad != nil {
		t.Errorf("MaxValueGrad: got %v, want nil", *q.MaxValueGrad)
	}

	// Derived coefficients must come out as if constructed directly
	if got, want := q.GetNextEpsilon(50000), p.GetNextEpsilon(50000); got != want {
		t.Errorf("epsilon after round trip: got %v, want %v", got, want)
	}
	if got, want := q.MaxEpisodeLength(12), p.MaxEpisodeLength(12); got != want {
		t.Errorf("episode length after round trip: got %v, want %v", got, want)
	}
}

func TestToMapPreservesNil(t *testing.T) {
	p := Default()
	m := p.ToMap()

	for _, name := range []string{
		"oversampling_rate", "max_global_norm_grad", "max_value_grad",
	} {
		value, present := m[name]
		if !present {
			t.Errorf("key %q missing from mapping", name)
		} else if value != nil {
			t.Errorf("key %q: got %v, want nil", name, value)
		}
	}
}

func TestToMapExcludesUnlistedFields(t *testing.T) {
	p := Default()
	start := 12
	p.RandomSampleDatetimeStart = &start

	if _, present := p.ToMap()["random_sample_datetime_start"]; present {
		t.Error("random_sample_datetime_start serialized, want excluded")
	}
}

func TestFromMapNotAMapping(t *testing.T) {
	for _, data := range []interface{}{42, "parameters", []int{1, 2}, nil} {
		_, err := FromMap(data)
		if !errors.Is(err, ErrNotAMapping) {
			t.Errorf("FromMap(%v): got %v, want ErrNotAMapping", data, err)
		}
	}
}

func TestFromMapJSONNumbers(t *testing.T) {
	// JSON decoding produces float64 values for every number
	q, err := FromMap(map[string]interface{}{
		"buffer_size":   float64(100),
		"final_epsilon": float64(0.25),
	})
	if err != nil {
		t.Fatalf("FromMap: %v", err)
	}

	if q.BufferSize != 100 {
		t.Errorf("BufferSize: got %v, want 100", q.BufferSize)
	}
	if q.FinalEpsilon != 0.25 {
		t.Errorf("FinalEpsilon: got %v, want 0.25", q.FinalEpsilon)
	}
	// Fields absent from the mapping keep their defaults
	if q.MinibatchSize != 64 {
		t.Errorf("MinibatchSize: got %v, want 64", q.MinibatchSize)
	}
}

func TestFromMapRecomputesFallback(t *testing.T) {
	q, err := FromMap(map[string]interface{}{"final_epsilon": -1.0})
	if err != nil {
		t.Fatalf("FromMap: %v", err)
	}

	// The fallback exponent factor of 1 must be in effect
	want := Default()
	want.FinalEpsilon = -1.0
	want.Recompute()
	if got := q.GetNextEpsilon(50000); got != want.GetNextEpsilon(50000) {
		t.Errorf("epsilon with fallback factor: got %v", got)
	}
}

func TestFromJSONMissingPath(t *testing.T) {
	_, err := FromJSON(filepath.Join(t.TempDir(), "nonexistent.json"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("FromJSON on missing path: got %v, want os.ErrNotExist", err)
	}
}

func TestSaveAsJSONAndLoad(t *testing.T) {
	p := Default()
	p.BufferSize = 321
	rate := 0.7
	p.OversamplingRate = &rate

	dir := t.TempDir()
	if err := p.SaveAsJSON(dir, ""); err != nil {
		t.Fatalf("SaveAsJSON: %v", err)
	}

	path := filepath.Join(dir, DefaultFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %q: %v", path, err)
	}

	// Sorted keys, 4-space indentation
	if !strings.HasPrefix(string(data), "{\n    \"buffer_size\": 321,") {
		t.Errorf("unexpected document layout:\n%s", data)
	}

	q, err := FromJSON(path)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if q.BufferSize != 321 {
		t.Errorf("BufferSize after load: got %v, want 321", q.BufferSize)
	}
	if q.OversamplingRate == nil || *q.OversamplingRate != 0.7 {
		t.Errorf("OversamplingRate after load: got %v, want 0.7",
			q.OversamplingRate)
	}
	if q.MaxValueGrad != nil {
		t.Errorf("MaxValueGrad after load: got %v, want nil", *q.MaxValueGrad)
	}
}

func TestSaveAsJSONMissingDirectory(t *testing.T) {
	p := Default()
	err := p.SaveAsJSON(filepath.Join(t.TempDir(), "missing"), "")
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("SaveAsJSON to missing dir: got %v, want os.ErrNotExist", err)
	}
}

func TestSaveAsJSONNotADirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "a_file")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := Default().SaveAsJSON(file, "")
	if !errors.Is(err, ErrNotADirectory) {
		t.Errorf("SaveAsJSON to a file: got %v, want ErrNotADirectory", err)
	}
}
