package fashion

import (
	"testing"

	"github.com/AshleyDelph84/fashion-designer-ai/internal/platform/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func TestTierParamsKnownTiers(t *testing.T) {
	log := testLogger(t)

	name, params := TierParams(log, "standard")
	if name != "standard" {
		t.Fatalf("tier name: want=standard got=%q", name)
	}
	if params.NumInferenceSteps != 30 || params.GuidanceScale != 3.0 || params.OutputQuality != 85 {
		t.Fatalf("standard params: got=%+v", params)
	}
	if params.PromptUpsampling || params.UpscalingEnabled {
		t.Fatalf("standard tier must not upsample or upscale: got=%+v", params)
	}

	name, params = TierParams(log, "ultra")
	if name != "ultra" {
		t.Fatalf("tier name: want=ultra got=%q", name)
	}
	if params.NumInferenceSteps != 75 || params.GuidanceScale != 4.0 || params.OutputQuality != 100 {
		t.Fatalf("ultra params: got=%+v", params)
	}
	if !params.PromptUpsampling || !params.UpscalingEnabled {
		t.Fatalf("ultra tier must upsample and upscale: got=%+v", params)
	}
}

func TestTierParamsUnknownFallsBackToDefault(t *testing.T) {
	log := testLogger(t)

	name, params := TierParams(log, "cinematic")
	if name != DefaultQualityTier {
		t.Fatalf("unknown tier: want=%q got=%q", DefaultQualityTier, name)
	}
	if params.NumInferenceSteps != 50 || params.GuidanceScale != 3.5 || params.OutputQuality != 95 {
		t.Fatalf("default params: got=%+v", params)
	}

	emptyName, emptyParams := TierParams(log, "")
	if emptyName != name || emptyParams != params {
		t.Fatalf("empty tier must resolve like unknown: got=%q %+v", emptyName, emptyParams)
	}
}

func TestTierNamesSorted(t *testing.T) {
	log := testLogger(t)
	names := TierNames(log)
	if len(names) != 3 {
		t.Fatalf("tier count: want=3 got=%d (%v)", len(names), names)
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("tier names not sorted: %v", names)
		}
	}
}
