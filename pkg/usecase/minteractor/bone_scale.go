// 指示: miu200521358
package minteractor

import (
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/miu200521358/mu_shape_resolver/pkg/adapter/io_config/bodyconf"
	"github.com/miu200521358/mu_shape_resolver/pkg/domain/model"
)

const boneScaleInfoDoneFormat = "骨格スケール計算完了: groups=%d enabled=%d bones=%d gate=%.3f"

// boneScaleRequest は1ボーンへの適用候補を表す。同一ボーンを複数グループが
// 指す場合は最大スケールの候補を採用する(乗算合成はしない)。
type boneScaleRequest struct {
	scale float64
	group *bodyconf.BoneGroupConfig
}

// ComputeBoneScales は部位質量と現在シェイプ値からボーン別スケールを計算する。
// メッシュ入出力は行わない純関数で、適用は mapply 側の責務とする。
func ComputeBoneScales(
	limbMasses map[model.LimbKey]float64,
	shapeValues map[model.CanonicalKey]float64,
	boneNames []string,
	config *bodyconf.BoneScalingConfig,
) ([]model.BoneScaleTarget, error) {
	if config == nil {
		return nil, model.NewConfigError("ボーンスケーリング設定が未指定です", nil)
	}
	masses := supplementDerivedMasses(limbMasses, config)
	shapeParameters := buildShapeParameters(shapeValues)

	requests := map[string]boneScaleRequest{}
	enabledCount := 0
	for i := range config.BoneGroups {
		group := &config.BoneGroups[i]
		if !group.IsEnabledFor(shapeParameters) {
			continue
		}
		enabledCount++
		mass, exists := masses[group.SourceLimbKey()]
		if !exists {
			continue
		}
		scale := computeGroupScale(mass, group)
		for _, boneName := range selectBones(boneNames, group.SelectorPatterns) {
			current, claimed := requests[boneName]
			if !claimed || scale > current.scale {
				requests[boneName] = boneScaleRequest{scale: scale, group: group}
			}
		}
	}

	gateFactor := resolveGateFactor(config)
	targets := make([]model.BoneScaleTarget, 0, len(requests))
	for boneName, request := range requests {
		gated := request.scale * gateFactor
		targets = append(targets, model.BoneScaleTarget{
			BoneName:    boneName,
			ScaleFactor: gated,
			AxisScale:   applyAxisWeights(gated, request.group.AxisScale),
		})
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i].BoneName < targets[j].BoneName })

	logResolveInfo(boneScaleInfoDoneFormat, len(config.BoneGroups), enabledCount, len(targets), gateFactor)
	return targets, nil
}

// supplementDerivedMasses は直接入力されなかった導出質量を式で補う。
// 入力側の値が既にある場合は導出しない。
func supplementDerivedMasses(
	limbMasses map[model.LimbKey]float64,
	config *bodyconf.BoneScalingConfig,
) map[model.LimbKey]float64 {
	masses := make(map[model.LimbKey]float64, len(limbMasses))
	parameters := make(map[string]any, len(limbMasses))
	for key, value := range limbMasses {
		masses[key] = value
		parameters[key.String()] = value
	}
	for i := range config.DerivedMasses {
		derived := &config.DerivedMasses[i]
		if _, exists := masses[derived.LimbKey()]; exists {
			continue
		}
		value, err := derived.Evaluate(parameters)
		if err != nil {
			logResolveWarn("導出質量の計算に失敗したため除外します: key=%s error=%v", derived.Key, err)
			continue
		}
		masses[derived.LimbKey()] = derived.Clamp.ToValueRange().Clamp(value)
	}
	return masses
}

// buildShapeParameters は条件式評価用にシェイプ値を名前引きへ写す。
func buildShapeParameters(shapeValues map[model.CanonicalKey]float64) map[string]any {
	parameters := make(map[string]any, len(shapeValues))
	for key, value := range shapeValues {
		parameters[key.String()] = value
	}
	return parameters
}

// computeGroupScale は質量値からグループのスケール係数を計算する。
// tanh分布は中立値1.0周りを平滑化し、胴体シルエットの急変を防ぐ。
func computeGroupScale(mass float64, group *bodyconf.BoneGroupConfig) float64 {
	clampRange := group.Clamp.ToValueRange()
	scale := clampRange.Clamp(mass)
	if group.Distribution == bodyconf.BoneScaleDistributionTanh {
		scale = 1.0 + math.Tanh(scale-1.0)
		scale = clampRange.Clamp(scale)
	}
	return scale
}

// selectBones はセレクタパターンに部分一致するボーン名を抽出する。照合は大文字小文字を区別しない。
func selectBones(boneNames []string, patterns []string) []string {
	selected := make([]string, 0)
	for _, boneName := range boneNames {
		lowered := strings.ToLower(boneName)
		for _, pattern := range patterns {
			if strings.Contains(lowered, strings.ToLower(pattern)) {
				selected = append(selected, boneName)
				break
			}
		}
	}
	return selected
}

// resolveGateFactor はゲート乗数を自身のレンジへ丸めて返す。
func resolveGateFactor(config *bodyconf.BoneScalingConfig) float64 {
	gateRange := config.Gate.Clamp.ToValueRange()
	if gateRange.IsBanned() {
		// ゲートレンジ未定義は中立として扱う。
		return config.Gate.Value
	}
	clamped := gateRange.Clamp(config.Gate.Value)
	if clamped != config.Gate.Value {
		logResolveWarn("%s: value=%v clamped=%v", model.ShapeWarningGateClamped, config.Gate.Value, clamped)
	}
	return clamped
}

// applyAxisWeights は軸重みで軸別スケールを整形する。重み0の軸は中立1.0に留まる。
func applyAxisWeights(scale float64, axis bodyconf.AxisScaleConfig) r3.Vec {
	return r3.Vec{
		X: 1.0 + (scale-1.0)*axis.X,
		Y: 1.0 + (scale-1.0)*axis.Y,
		Z: 1.0 + (scale-1.0)*axis.Z,
	}
}
