package fashion

import (
	"embed"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/AshleyDelph84/fashion-designer-ai/internal/platform/logger"
)

const qualityTiersEnv = "FASHION_QUALITY_TIERS_YAML"

//go:embed tiers.yaml
var tiersFS embed.FS

// RenderParams are the image-generation inference parameters for one tier.
type RenderParams struct {
	NumInferenceSteps int     `yaml:"num_inference_steps"`
	GuidanceScale     float64 `yaml:"guidance_scale"`
	OutputQuality     int     `yaml:"output_quality"`
	PromptUpsampling  bool    `yaml:"prompt_upsampling"`
	UpscalingEnabled  bool    `yaml:"upscaling_enabled"`
}

type tierSpec struct {
	Tiers       map[string]RenderParams `yaml:"tiers"`
	DefaultTier string                  `yaml:"default_tier"`
}

const DefaultQualityTier = "high"

// fallback table used when the YAML is missing or invalid
var fallbackTiers = map[string]RenderParams{
	"standard": {NumInferenceSteps: 30, GuidanceScale: 3.0, OutputQuality: 85, PromptUpsampling: false, UpscalingEnabled: false},
	"high":     {NumInferenceSteps: 50, GuidanceScale: 3.5, OutputQuality: 95, PromptUpsampling: true, UpscalingEnabled: true},
	"ultra":    {NumInferenceSteps: 75, GuidanceScale: 4.0, OutputQuality: 100, PromptUpsampling: true, UpscalingEnabled: true},
}

var (
	tierOnce   sync.Once
	tierTable  map[string]RenderParams
	tierDef    string
	tierSource string
)

func loadTiers(log *logger.Logger) {
	tierOnce.Do(func() {
		tierTable = fallbackTiers
		tierDef = DefaultQualityTier
		tierSource = "fallback"

		raw, source := readTiersYAML()
		if raw == nil {
			return
		}
		var spec tierSpec
		if err := yaml.Unmarshal(raw, &spec); err != nil || len(spec.Tiers) == 0 {
			if log != nil {
				log.Warn("quality tier yaml invalid; using fallback table", "source", source, "error", err)
			}
			return
		}
		tierTable = spec.Tiers
		tierSource = source
		if d := strings.TrimSpace(spec.DefaultTier); d != "" {
			if _, ok := tierTable[d]; ok {
				tierDef = d
			}
		}
		if log != nil {
			log.Info("quality tiers loaded", "source", tierSource, "tiers", len(tierTable), "default", tierDef)
		}
	})
}

func readTiersYAML() ([]byte, string) {
	if path := strings.TrimSpace(os.Getenv(qualityTiersEnv)); path != "" {
		if raw, err := os.ReadFile(path); err == nil {
			return raw, "env"
		}
	}
	raw, err := tiersFS.ReadFile("tiers.yaml")
	if err != nil {
		return nil, ""
	}
	return raw, "embedded"
}

// TierParams resolves a tier name to its render parameters. Unknown or empty
// tiers fall back to the default tier; the resolved name is returned so the
// record reflects what actually ran.
func TierParams(log *logger.Logger, tier string) (string, RenderParams) {
	loadTiers(log)
	name := strings.ToLower(strings.TrimSpace(tier))
	if p, ok := tierTable[name]; ok {
		return name, p
	}
	return tierDef, tierTable[tierDef]
}

// TierNames lists the configured tiers, sorted, for diagnostics.
func TierNames(log *logger.Logger) []string {
	loadTiers(log)
	names := make([]string, 0, len(tierTable))
	for k := range tierTable {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
