// 指示: miu200521358
package minteractor

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/miu200521358/mu_shape_resolver/pkg/domain/model"
)

const (
	// blendDistanceEpsilon は距離0の候補でも発散しないための微小量を表す。
	blendDistanceEpsilon = 1e-6
	// blendSoftmaxTemperature は重み平滑化の温度定数を表す。
	// 正規化済み逆距離重みに対して、最近傍1件の独占を避ける程度に均す。
	blendSoftmaxTemperature = 0.35
	// blendWeightFloor はこの値未満の重みを切り捨てる閾値を表す。
	blendWeightFloor = 0.01
	// blendExtremeMagnitude は品質減点対象となるブレンド値の絶対値閾値を表す。
	blendExtremeMagnitude = 3.0
	// blendDiversityWeight は多様性判定で有効とみなす重みの下限を表す。
	blendDiversityWeight = 0.10

	blendInfoDoneFormat = "候補ブレンド完了: candidates=%d effective=%d confidence=%.3f quality=%.3f"
)

// BlendArchetypeCandidates はN件の候補体型を1組のシェイプ値・部位質量へ合成する。
// 候補が空の場合は model.EmptyCandidatesError を返す。
func BlendArchetypeCandidates(candidates []model.ArchetypeCandidate) (*model.BlendResult, error) {
	if len(candidates) == 0 {
		return nil, model.NewEmptyCandidates("ブレンド対象の候補がありません", nil)
	}
	if len(candidates) == 1 {
		return blendSingleCandidate(candidates[0]), nil
	}

	weights := computeBlendWeights(candidates)
	result := &model.BlendResult{
		ShapeValues: blendShapeValues(candidates, weights),
		LimbMasses:  blendLimbMasses(candidates, weights),
		Weights:     collectEffectiveWeights(candidates, weights),
	}
	result.Confidence = computeBlendConfidence(candidates, weights)
	result.QualityScore = computeBlendQuality(result.ShapeValues, weights)

	logResolveInfo(blendInfoDoneFormat, len(candidates), len(result.Weights), result.Confidence, result.QualityScore)
	return result, nil
}

// blendSingleCandidate は候補1件の短絡合成を行う。重みは常に1.0とする。
func blendSingleCandidate(candidate model.ArchetypeCandidate) *model.BlendResult {
	shapeValues := make(map[model.CanonicalKey]float64, len(candidate.ShapeValues))
	for key, value := range candidate.ShapeValues {
		shapeValues[key] = value
	}
	limbMasses := make(map[model.LimbKey]float64, len(candidate.LimbMasses))
	for key, value := range candidate.LimbMasses {
		limbMasses[key] = value
	}
	result := &model.BlendResult{
		ShapeValues: shapeValues,
		LimbMasses:  limbMasses,
		Weights:     []model.BlendWeight{{CandidateID: candidate.ID, Weight: 1.0}},
		// 候補1件は比較対象がないため、距離のみで確信度を見積もる。
		Confidence:   1.0 / (1.0 + math.Max(candidate.Distance, 0)),
		QualityScore: computeBlendQuality(shapeValues, []float64{1.0}),
	}
	return result
}

// computeBlendWeights は逆距離→正規化→softmax平滑化→1%切り捨て→再正規化の
// 3段重み付けを行う。この段数は仕様上の契約であり省略しない。
func computeBlendWeights(candidates []model.ArchetypeCandidate) []float64 {
	weights := make([]float64, len(candidates))
	for i, candidate := range candidates {
		weights[i] = 1.0 / (blendDistanceEpsilon + math.Max(candidate.Distance, 0))
	}
	normalizeWeights(weights)

	// softmax平滑化。最近傍1件が重みをほぼ独占する状態を均す。
	for i, weight := range weights {
		weights[i] = math.Exp(weight / blendSoftmaxTemperature)
	}
	normalizeWeights(weights)

	for i, weight := range weights {
		if weight < blendWeightFloor {
			weights[i] = 0
			logBlendVerbose("微小重み切り捨て: candidate=%s weight=%.4f", candidates[i].ID, weight)
		}
	}
	normalizeWeights(weights)
	return weights
}

// normalizeWeights は重み列を合計1へ正規化する。合計0の場合は均等割りにする。
func normalizeWeights(weights []float64) {
	total := floats.Sum(weights)
	if total <= 0 {
		for i := range weights {
			weights[i] = 1.0 / float64(len(weights))
		}
		return
	}
	floats.Scale(1.0/total, weights)
}

// blendShapeValues は全候補に出現するシェイプキーごとに重み付き平均を計算する。
// キー未定義の候補は0寄与として扱う(ゼロ方向への希釈は意図的な仕様)。
func blendShapeValues(candidates []model.ArchetypeCandidate, weights []float64) map[model.CanonicalKey]float64 {
	blended := map[model.CanonicalKey]float64{}
	for i, candidate := range candidates {
		for key, value := range candidate.ShapeValues {
			blended[key] += value * weights[i]
		}
	}
	return blended
}

// blendLimbMasses は部位質量の重み付き平均を計算する。希釈規則はシェイプ値と同じ。
func blendLimbMasses(candidates []model.ArchetypeCandidate, weights []float64) map[model.LimbKey]float64 {
	blended := map[model.LimbKey]float64{}
	for i, candidate := range candidates {
		for key, value := range candidate.LimbMasses {
			blended[key] += value * weights[i]
		}
	}
	return blended
}

// collectEffectiveWeights は切り捨て後に残った重みを候補順で収集する。
func collectEffectiveWeights(candidates []model.ArchetypeCandidate, weights []float64) []model.BlendWeight {
	collected := make([]model.BlendWeight, 0, len(candidates))
	for i, candidate := range candidates {
		if weights[i] <= 0 {
			continue
		}
		collected = append(collected, model.BlendWeight{CandidateID: candidate.ID, Weight: weights[i]})
	}
	return collected
}

// computeBlendConfidence は確信度を見積もる。
// 平均距離が小さいほど、候補数が多いほど、重み分布が均衡しているほど高くする。
func computeBlendConfidence(candidates []model.ArchetypeCandidate, weights []float64) float64 {
	totalDistance := 0.0
	for _, candidate := range candidates {
		totalDistance += math.Max(candidate.Distance, 0)
	}
	meanDistance := totalDistance / float64(len(candidates))
	distanceScore := 1.0 / (1.0 + meanDistance)

	countScore := math.Min(float64(len(candidates))/3.0, 1.0)

	// 重みエントロピーを最大エントロピー log(n) で正規化する。
	effective := make([]float64, 0, len(weights))
	for _, weight := range weights {
		if weight > 0 {
			effective = append(effective, weight)
		}
	}
	entropyScore := 1.0
	if len(effective) > 1 {
		entropyScore = stat.Entropy(effective) / math.Log(float64(len(effective)))
	}

	confidence := 0.5*distanceScore + 0.2*countScore + 0.3*entropyScore
	return clampUnit(confidence)
}

// computeBlendQuality は品質スコアを見積もる。
// 極端なブレンド値を減点し、10%超の重みを持つ候補が2件以上あれば加点する。
func computeBlendQuality(shapeValues map[model.CanonicalKey]float64, weights []float64) float64 {
	quality := 0.9
	extremeKeys := make([]string, 0)
	for key, value := range shapeValues {
		if math.Abs(value) > blendExtremeMagnitude {
			extremeKeys = append(extremeKeys, key.String())
		}
	}
	sort.Strings(extremeKeys)
	for _, key := range extremeKeys {
		logBlendVerbose("極端なブレンド値: key=%s", key)
		quality -= 0.1
	}

	diverseCount := 0
	for _, weight := range weights {
		if weight > blendDiversityWeight {
			diverseCount++
		}
	}
	if diverseCount >= 2 {
		quality += 0.1
	}
	return clampUnit(quality)
}

// clampUnit は値を [0,1] へ丸める。
func clampUnit(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
