// 指示: miu200521358
package minteractor

import (
	"math"

	"github.com/google/uuid"

	"github.com/miu200521358/mu_shape_resolver/pkg/domain/model"
)

const refinePayloadInfoFormat = "補正依頼作成完了: request=%s envelope=%s keys=%d"

// envelopeMeasurementMargin は実測値由来エンベロープの許容幅を表す。
const envelopeMeasurementMargin = 0.15

// EnvelopeInput はエンベロープ解決に使える材料一式を表す。
type EnvelopeInput struct {
	Candidates   []model.ArchetypeCandidate
	Measurements map[string]float64
	Policy       *model.GenderPolicy
}

// IEnvelopeResolver は構造エンベロープ解決戦略の契約を表す。
// 優先度順に試行され、最初に成功した戦略の結果と名前が採用される。
type IEnvelopeResolver interface {
	// Name は戦略名を返す。結果メタデータへ記録される。
	Name() string
	// Resolve はエンベロープの解決を試み、成否を返す。
	Resolve(input EnvelopeInput) (map[string]model.ValueRange, bool)
}

// measurementEnvelopeResolver は実測値からエンベロープを組み立てる戦略を表す。
// 実測シェイプ推定値の前後に固定マージンを取る。
type measurementEnvelopeResolver struct{}

// Name は戦略名を返す。
func (r measurementEnvelopeResolver) Name() string { return "measurements" }

// Resolve は実測値が1件以上ある場合にエンベロープを構築する。
func (r measurementEnvelopeResolver) Resolve(input EnvelopeInput) (map[string]model.ValueRange, bool) {
	if len(input.Measurements) == 0 {
		return nil, false
	}
	envelope := make(map[string]model.ValueRange, len(input.Measurements))
	for rawKey, value := range input.Measurements {
		key := CanonicalizeShapeKey(rawKey)
		if key == "" || math.IsNaN(value) || math.IsInf(value, 0) {
			continue
		}
		envelope[key.String()] = model.ValueRange{
			Min: value - envelopeMeasurementMargin,
			Max: value + envelopeMeasurementMargin,
		}
	}
	if len(envelope) == 0 {
		return nil, false
	}
	return envelope, true
}

// candidateSpreadEnvelopeResolver は候補値の広がりからエンベロープを
// 組み立てる戦略を表す。キーごとに候補間の最小・最大を取る。
type candidateSpreadEnvelopeResolver struct{}

// Name は戦略名を返す。
func (r candidateSpreadEnvelopeResolver) Name() string { return "candidate_spread" }

// Resolve は候補が2件以上ある場合にエンベロープを構築する。
// 1件では広がりが定義できないため不成立とする。
func (r candidateSpreadEnvelopeResolver) Resolve(input EnvelopeInput) (map[string]model.ValueRange, bool) {
	if len(input.Candidates) < 2 {
		return nil, false
	}
	envelope := map[string]model.ValueRange{}
	for _, candidate := range input.Candidates {
		for key, value := range candidate.ShapeValues {
			current, exists := envelope[key.String()]
			if !exists {
				envelope[key.String()] = model.ValueRange{Min: value, Max: value}
				continue
			}
			if value < current.Min {
				current.Min = value
			}
			if value > current.Max {
				current.Max = value
			}
			envelope[key.String()] = current
		}
	}
	if len(envelope) == 0 {
		return nil, false
	}
	return envelope, true
}

// policyRangeEnvelopeResolver はポリシーレンジをそのままエンベロープに
// 使う最終フォールバック戦略を表す。
type policyRangeEnvelopeResolver struct{}

// Name は戦略名を返す。
func (r policyRangeEnvelopeResolver) Name() string { return "policy_ranges" }

// Resolve は対象性別ポリシーの非禁止レンジをエンベロープとして返す。
func (r policyRangeEnvelopeResolver) Resolve(input EnvelopeInput) (map[string]model.ValueRange, bool) {
	if input.Policy == nil {
		return nil, false
	}
	envelope := map[string]model.ValueRange{}
	for _, key := range input.Policy.SortedShapeKeys() {
		valueRange, exists := input.Policy.ShapeRange(key)
		if !exists || valueRange.IsBanned() {
			continue
		}
		envelope[key.String()] = valueRange
	}
	if len(envelope) == 0 {
		return nil, false
	}
	return envelope, true
}

// defaultEnvelopeResolvers は既定の戦略列を優先度順に返す。
func defaultEnvelopeResolvers() []IEnvelopeResolver {
	return []IEnvelopeResolver{
		measurementEnvelopeResolver{},
		candidateSpreadEnvelopeResolver{},
		policyRangeEnvelopeResolver{},
	}
}

// ResolveStructuralEnvelope は戦略列を優先度順に試行し、最初に成功した
// エンベロープと戦略名を返す。全滅時はエンベロープなし("none")とする。
func ResolveStructuralEnvelope(input EnvelopeInput, resolvers []IEnvelopeResolver) (map[string]model.ValueRange, string) {
	if len(resolvers) == 0 {
		resolvers = defaultEnvelopeResolvers()
	}
	for _, resolver := range resolvers {
		if envelope, resolved := resolver.Resolve(input); resolved {
			return envelope, resolver.Name()
		}
	}
	return nil, "none"
}

// BuildRefinementRequest はブレンド結果から補正依頼を組み立てる。
// エンベロープは戦略列で解決し、採用戦略名を依頼へ添付する。
func BuildRefinementRequest(
	blend *model.BlendResult,
	gender model.Gender,
	mappingVersion string,
	input EnvelopeInput,
	classificationHints []string,
) *model.RefinementRequest {
	request := &model.RefinementRequest{
		RequestID:           uuid.NewString(),
		Gender:              gender,
		BlendedShapeValues:  make(map[string]float64, len(blend.ShapeValues)),
		BlendedLimbMasses:   make(map[string]float64, len(blend.LimbMasses)),
		MappingVersion:      mappingVersion,
		ClassificationHints: classificationHints,
		Measurements:        input.Measurements,
	}
	for key, value := range blend.ShapeValues {
		request.BlendedShapeValues[key.String()] = value
	}
	for key, value := range blend.LimbMasses {
		request.BlendedLimbMasses[key.String()] = value
	}
	request.StructuralEnvelope, request.EnvelopeSource = ResolveStructuralEnvelope(input, nil)
	logResolveDebug(refinePayloadInfoFormat, request.RequestID, request.EnvelopeSource, len(request.BlendedShapeValues))
	return request
}
