// 指示: miu200521358
package bodyconf

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/miu200521358/mu_shape_resolver/pkg/domain/model"
)

// writeBoneScalingForTest は試験用のボーンスケーリングYAMLを書き出す。
func writeBoneScalingForTest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bone_scaling.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("fixture write should succeed: %v", err)
	}
	return path
}

const validBoneScalingYAML = `
config_version: "9.9"
gate:
  value: 1.05
  clamp: {min: 0.9, max: 1.1}
derived_masses:
  - key: hip
    formula: "(thigh * 0.6) + (torso * 0.4)"
    clamp: {min: 0.6, max: 1.6}
bone_groups:
  - name: arms
    selector_patterns: ["arm"]
    source_mass: arm
    axis_scale: {x: 1.0, y: 0.2, z: 1.0}
    distribution: uniform
    clamp: {min: 0.75, max: 1.5}
    enabled: false
    interplay: "bodybuilderSize >= 0.5 || pearFigure >= 0.6"
  - name: torso
    selector_patterns: ["spine"]
    source_mass: torso
    distribution: tanh
    clamp: {min: 0.8, max: 1.4}
    enabled: true
`

func TestBoneScalingRepositoryLoad(t *testing.T) {
	path := writeBoneScalingForTest(t, validBoneScalingYAML)
	config, err := NewBoneScalingRepository().Load(path)
	if err != nil {
		t.Fatalf("load should succeed: %v", err)
	}
	if config.ConfigVersion != "9.9" {
		t.Fatalf("version mismatch: got=%s", config.ConfigVersion)
	}
	if len(config.BoneGroups) != 2 {
		t.Fatalf("bone group count mismatch: got=%d", len(config.BoneGroups))
	}
	// 省略された axis_scale は中立 (1,1,1) に補われる。
	if config.BoneGroups[1].AxisScale != (AxisScaleConfig{X: 1, Y: 1, Z: 1}) {
		t.Fatalf("omitted axis scale should default to neutral: got=%+v", config.BoneGroups[1].AxisScale)
	}
}

func TestBoneScalingDerivedMassFormulaEvaluates(t *testing.T) {
	config, err := ParseBoneScaling([]byte(validBoneScalingYAML))
	if err != nil {
		t.Fatalf("parse should succeed: %v", err)
	}
	derived := &config.DerivedMasses[0]
	value, err := derived.Evaluate(map[string]any{"thigh": 1.0, "torso": 1.5})
	if err != nil {
		t.Fatalf("formula should evaluate: %v", err)
	}
	if want := 1.0*0.6 + 1.5*0.4; math.Abs(value-want) > 1e-9 {
		t.Fatalf("formula result mismatch: got=%v want=%v", value, want)
	}
}

func TestBoneScalingInterplayPredicateEvaluates(t *testing.T) {
	config, err := ParseBoneScaling([]byte(validBoneScalingYAML))
	if err != nil {
		t.Fatalf("parse should succeed: %v", err)
	}
	arms := &config.BoneGroups[0]
	if arms.IsEnabledFor(map[string]any{"bodybuilderSize": 0.2, "pearFigure": 0.1}) {
		t.Fatalf("predicate below thresholds should stay disabled")
	}
	if !arms.IsEnabledFor(map[string]any{"bodybuilderSize": 0.6, "pearFigure": 0.0}) {
		t.Fatalf("bodybuilderSize over threshold should enable")
	}
	if !arms.IsEnabledFor(map[string]any{"bodybuilderSize": 0.0, "pearFigure": 0.7}) {
		t.Fatalf("pearFigure over threshold should enable")
	}
	// 条件式が参照する値の欠損は 0.0 として代入される。
	// 供給済みの項だけで成立する式を欠損が殺してはならない。
	if !arms.IsEnabledFor(map[string]any{"pearFigure": 0.7}) {
		t.Fatalf("partial input over threshold should enable")
	}
	if arms.IsEnabledFor(map[string]any{}) {
		t.Fatalf("all-zero predicate inputs should stay disabled")
	}
	torso := &config.BoneGroups[1]
	if !torso.IsEnabledFor(map[string]any{}) {
		t.Fatalf("enabled-by-default group should not consult the predicate")
	}
}

func TestBoneScalingValidateFailsAtLoadTime(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"missing version", "bone_groups: []"},
		{"broken formula", `
config_version: "1"
derived_masses:
  - key: hip
    formula: "thigh +* torso"
    clamp: {min: 0, max: 1}
`},
		{"broken predicate", `
config_version: "1"
bone_groups:
  - name: arms
    selector_patterns: ["arm"]
    source_mass: arm
    clamp: {min: 0.5, max: 1.5}
    interplay: "bodybuilderSize >="
`},
		{"bad distribution", `
config_version: "1"
bone_groups:
  - name: arms
    selector_patterns: ["arm"]
    source_mass: arm
    distribution: gaussian
    clamp: {min: 0.5, max: 1.5}
`},
		{"inverted clamp", `
config_version: "1"
bone_groups:
  - name: arms
    selector_patterns: ["arm"]
    source_mass: arm
    clamp: {min: 1.5, max: 0.5}
`},
		{"duplicate group name", `
config_version: "1"
bone_groups:
  - name: arms
    selector_patterns: ["arm"]
    source_mass: arm
    clamp: {min: 0.5, max: 1.5}
  - name: arms
    selector_patterns: ["forearm"]
    source_mass: forearm
    clamp: {min: 0.5, max: 1.5}
`},
	}
	for _, c := range cases {
		var configError *model.ConfigError
		if _, err := ParseBoneScaling([]byte(c.content)); !errors.As(err, &configError) {
			t.Fatalf("%s should be ConfigError: got=%v", c.name, err)
		}
	}
}

func TestLoadDefaultBoneScaling(t *testing.T) {
	config, err := LoadDefaultBoneScaling()
	if err != nil {
		t.Fatalf("embedded default should load: %v", err)
	}
	if len(config.BoneGroups) == 0 {
		t.Fatalf("embedded default should carry bone groups")
	}
	hasInterplay := false
	for _, group := range config.BoneGroups {
		if group.Interplay != "" {
			hasInterplay = true
		}
	}
	if !hasInterplay {
		t.Fatalf("embedded default should carry at least one interplay predicate")
	}
	if config.Gate.Value != 1.0 {
		t.Fatalf("default gate should be neutral: got=%v", config.Gate.Value)
	}
}
