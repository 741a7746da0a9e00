// 指示: miu200521358
// Package io_result は体型解決結果のJSON書き出しを提供する。
package io_result

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/miu200521358/mu_shape_resolver/pkg/domain/model"
	"github.com/miu200521358/mu_shape_resolver/pkg/shared/base/logging"
)

// ResultDocument は体型解決結果の書き出し形式を表す。
type ResultDocument struct {
	ResolutionID            string              `json:"resolution_id"`
	Gender                  string              `json:"gender"`
	Refined                 bool                `json:"refined"`
	RefinementSkippedReason string              `json:"refinement_skipped_reason,omitempty"`
	EnvelopeSource          string              `json:"envelope_source"`
	Confidence              float64             `json:"confidence"`
	QualityScore            float64             `json:"quality_score"`
	BlendWeights            []blendWeightJSON   `json:"blend_weights"`
	ShapeValues             map[string]float64  `json:"shape_values"`
	LimbMasses              map[string]float64  `json:"limb_masses"`
	Warnings                validationWarnsJSON `json:"warnings"`
	BoneScales              []boneScaleJSON     `json:"bone_scales"`
}

type blendWeightJSON struct {
	CandidateID string  `json:"candidate_id"`
	Weight      float64 `json:"weight"`
}

type validationWarnsJSON struct {
	RejectedKeys     []string `json:"rejected_keys,omitempty"`
	BannedKeysForced []string `json:"banned_keys_forced,omitempty"`
	ClampedKeys      []string `json:"clamped_keys,omitempty"`
	DefaultedKeys    []string `json:"defaulted_keys,omitempty"`
	RejectedLimbKeys []string `json:"rejected_limb_keys,omitempty"`
	ClampedLimbKeys  []string `json:"clamped_limb_keys,omitempty"`
}

type boneScaleJSON struct {
	BoneName    string     `json:"bone_name"`
	ScaleFactor float64    `json:"scale_factor"`
	AxisScale   [3]float64 `json:"axis_scale"`
}

// BuildResultDocument は解決結果から書き出し形式を組み立てる。
func BuildResultDocument(
	resolutionID string,
	gender model.Gender,
	parameters *model.ValidatedParameterSet,
	weights []model.BlendWeight,
	confidence float64,
	qualityScore float64,
	refined bool,
	skippedReason string,
	envelopeSource string,
	boneScales []model.BoneScaleTarget,
) *ResultDocument {
	document := &ResultDocument{
		ResolutionID:            resolutionID,
		Gender:                  gender.String(),
		Refined:                 refined,
		RefinementSkippedReason: skippedReason,
		EnvelopeSource:          envelopeSource,
		Confidence:              confidence,
		QualityScore:            qualityScore,
		ShapeValues:             map[string]float64{},
		LimbMasses:              map[string]float64{},
	}
	for _, weight := range weights {
		document.BlendWeights = append(document.BlendWeights, blendWeightJSON{
			CandidateID: weight.CandidateID,
			Weight:      weight.Weight,
		})
	}
	if parameters != nil {
		for key, value := range parameters.ShapeValues {
			document.ShapeValues[string(key)] = value
		}
		for key, value := range parameters.LimbMasses {
			document.LimbMasses[string(key)] = value
		}
		document.Warnings = validationWarnsJSON{
			RejectedKeys:     canonicalKeysToStrings(parameters.RejectedKeys),
			BannedKeysForced: canonicalKeysToStrings(parameters.BannedKeysForced),
			ClampedKeys:      canonicalKeysToStrings(parameters.ClampedKeys),
			DefaultedKeys:    canonicalKeysToStrings(parameters.DefaultedKeys),
			RejectedLimbKeys: limbKeysToStrings(parameters.RejectedLimbKeys),
			ClampedLimbKeys:  limbKeysToStrings(parameters.ClampedLimbKeys),
		}
	}
	for _, target := range boneScales {
		document.BoneScales = append(document.BoneScales, boneScaleJSON{
			BoneName:    target.BoneName,
			ScaleFactor: target.ScaleFactor,
			AxisScale:   [3]float64{target.AxisScale.X, target.AxisScale.Y, target.AxisScale.Z},
		})
	}
	return document
}

func canonicalKeysToStrings(keys []model.CanonicalKey) []string {
	if len(keys) == 0 {
		return nil
	}
	converted := make([]string, 0, len(keys))
	for _, key := range keys {
		converted = append(converted, string(key))
	}
	sort.Strings(converted)
	return converted
}

func limbKeysToStrings(keys []model.LimbKey) []string {
	if len(keys) == 0 {
		return nil
	}
	converted := make([]string, 0, len(keys))
	for _, key := range keys {
		converted = append(converted, string(key))
	}
	sort.Strings(converted)
	return converted
}

// ResultDocumentRepository は解決結果の書き出し契約を表す。
type ResultDocumentRepository struct{}

// NewResultDocumentRepository はResultDocumentRepositoryを生成する。
func NewResultDocumentRepository() *ResultDocumentRepository {
	return &ResultDocumentRepository{}
}

// CanSave は拡張子に応じて書き出し可否を判定する。
func (r *ResultDocumentRepository) CanSave(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// Save は解決結果をJSONとして書き出す。
func (r *ResultDocumentRepository) Save(path string, document *ResultDocument) error {
	if !r.CanSave(path) {
		return fmt.Errorf("結果出力の拡張子が不正です: %s", path)
	}
	if document == nil {
		return fmt.Errorf("結果文書が未指定です")
	}
	b, err := json.MarshalIndent(document, "", "  ")
	if err != nil {
		return fmt.Errorf("結果文書の変換に失敗しました: %w", err)
	}
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("結果文書の書き込みに失敗しました: %w", err)
	}
	logResultInfo("解決結果書き出し完了: file=%s resolution=%s refined=%t",
		filepath.Base(path), document.ResolutionID, document.Refined)
	return nil
}

// logResultInfo は結果書き出しのINFOログを出力する。
func logResultInfo(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Info(format, params...)
}
