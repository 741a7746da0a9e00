// 指示: miu200521358
package io_result

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/miu200521358/mu_shape_resolver/pkg/domain/model"
)

func buildResultDocumentForTest(t *testing.T) *ResultDocument {
	t.Helper()
	parameters := model.NewValidatedParameterSet()
	parameters.ShapeValues[model.CanonicalKey("bustSize")] = 0.4
	parameters.LimbMasses[model.LimbKey("thigh")] = 1.1
	parameters.ClampedKeys = []model.CanonicalKey{"waistWidth", "bustSize"}
	parameters.BannedKeysForced = []model.CanonicalKey{"nippleSize"}

	return BuildResultDocument(
		"res-0001",
		model.GenderFemale,
		parameters,
		[]model.BlendWeight{{CandidateID: "arch-01", Weight: 0.87}, {CandidateID: "arch-02", Weight: 0.13}},
		0.82,
		0.9,
		true,
		"",
		"measurements",
		[]model.BoneScaleTarget{{BoneName: "左足", ScaleFactor: 1.2, AxisScale: r3.Vec{X: 1.1, Y: 1.2, Z: 1.1}}},
	)
}

func TestBuildResultDocument(t *testing.T) {
	document := buildResultDocumentForTest(t)

	if document.ResolutionID != "res-0001" || document.Gender != "female" {
		t.Errorf("基本情報: got=%+v", document)
	}
	if !document.Refined || document.EnvelopeSource != "measurements" {
		t.Errorf("補正情報: refined=%t source=%s", document.Refined, document.EnvelopeSource)
	}
	if got := document.ShapeValues["bustSize"]; got != 0.4 {
		t.Errorf("shape_values: got=%v want=0.4", got)
	}
	// 警告キーはソート済みで出力される。
	if len(document.Warnings.ClampedKeys) != 2 || document.Warnings.ClampedKeys[0] != "bustSize" {
		t.Errorf("clamped_keys: got=%v", document.Warnings.ClampedKeys)
	}
	if len(document.BoneScales) != 1 || document.BoneScales[0].AxisScale != [3]float64{1.1, 1.2, 1.1} {
		t.Errorf("bone_scales: got=%+v", document.BoneScales)
	}
}

func TestResultDocumentRepository_Save(t *testing.T) {
	document := buildResultDocumentForTest(t)
	path := filepath.Join(t.TempDir(), "result.json")

	if err := NewResultDocumentRepository().Save(path, document); err != nil {
		t.Fatalf("Save に失敗: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("結果ファイル読み取りに失敗: %v", err)
	}
	loaded := ResultDocument{}
	if err := json.Unmarshal(b, &loaded); err != nil {
		t.Fatalf("結果JSON解析に失敗: %v", err)
	}
	if loaded.ResolutionID != document.ResolutionID {
		t.Errorf("resolution_id: got=%s want=%s", loaded.ResolutionID, document.ResolutionID)
	}
	if len(loaded.BlendWeights) != 2 {
		t.Errorf("blend_weights: got=%v", loaded.BlendWeights)
	}
}

func TestResultDocumentRepository_SaveRejectsExtension(t *testing.T) {
	document := buildResultDocumentForTest(t)
	path := filepath.Join(t.TempDir(), "result.txt")
	if err := NewResultDocumentRepository().Save(path, document); err == nil {
		t.Fatal("拡張子不正でエラーになるべき")
	}
}
