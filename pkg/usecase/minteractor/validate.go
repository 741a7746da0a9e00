// 指示: miu200521358
package minteractor

import (
	"sort"

	"github.com/miu200521358/mu_shape_resolver/pkg/domain/model"
)

const validateInfoDoneFormat = "体型値検証完了: gender=%s keys=%d rejected=%d banned=%d clamped=%d defaulted=%d"

// ValidateParameterSet はシェイプ値・部位質量を許可リスト・値域で検証・丸めする。
// 範囲外や未知キーは想定内の回復可能条件であり、エラーにはせず結果メタデータへ記録する。
//
// 許可判定は性別横断の和集合で行う。どの性別が選択されていても同じキー集合が
// 通過するため、性別切替のたびに却下キーが変わることはない。値域の適用だけを
// 対象性別のポリシーで行う。
func ValidateParameterSet(
	shapeValues map[model.CanonicalKey]float64,
	limbMasses map[model.LimbKey]float64,
	policies *model.PolicySet,
	gender model.Gender,
) *model.ValidatedParameterSet {
	validated := model.NewValidatedParameterSet()
	if policies == nil {
		return validated
	}
	policy, exists := policies.ForGender(gender)
	if !exists {
		return validated
	}

	validateShapeValues(validated, shapeValues, policies, policy)
	validateLimbMasses(validated, limbMasses, policies, policy)
	fillMissingShapeDefaults(validated, policy)
	sortValidationMetadata(validated)

	logResolveInfo(validateInfoDoneFormat, gender, len(validated.ShapeValues),
		len(validated.RejectedKeys), len(validated.BannedKeysForced),
		len(validated.ClampedKeys), len(validated.DefaultedKeys))
	return validated
}

// validateShapeValues はシェイプ値の許可判定と値域適用を行う。
func validateShapeValues(
	validated *model.ValidatedParameterSet,
	shapeValues map[model.CanonicalKey]float64,
	policies *model.PolicySet,
	policy *model.GenderPolicy,
) {
	for key, value := range shapeValues {
		// 第1段: 性別横断和集合での許可判定。リスト外キーは残さず却下する。
		if !policies.UnionAllowsShapeKey(key) {
			validated.RejectedKeys = append(validated.RejectedKeys, key)
			logResolveDebug("%s: key=%s", model.ShapeWarningKeyRejected, key)
			continue
		}
		// 第2段: 対象性別の値域適用。和集合では許可されても対象性別に
		// レンジ定義がないキーは禁止扱いで 0.0 へ強制する。
		valueRange, hasRange := policy.ShapeRange(key)
		if !hasRange || valueRange.IsBanned() {
			validated.ShapeValues[key] = 0.0
			validated.BannedKeysForced = append(validated.BannedKeysForced, key)
			logResolveDebug("%s: key=%s value=%v", model.ShapeWarningBannedKeyForced, key, value)
			continue
		}
		clamped := valueRange.Clamp(value)
		if clamped != value {
			validated.ClampedKeys = append(validated.ClampedKeys, key)
			logResolveDebug("%s: key=%s value=%v clamped=%v", model.ShapeWarningValueClamped, key, value, clamped)
		}
		validated.ShapeValues[key] = clamped
	}
}

// validateLimbMasses は部位質量の許可判定と値域適用を行う。
func validateLimbMasses(
	validated *model.ValidatedParameterSet,
	limbMasses map[model.LimbKey]float64,
	policies *model.PolicySet,
	policy *model.GenderPolicy,
) {
	for key, value := range limbMasses {
		if !policies.UnionAllowsLimbKey(key) {
			validated.RejectedLimbKeys = append(validated.RejectedLimbKeys, key)
			logResolveDebug("%s: limb=%s", model.ShapeWarningKeyRejected, key)
			continue
		}
		valueRange, hasRange := policy.LimbRange(key)
		if !hasRange {
			validated.LimbMasses[key] = value
			continue
		}
		clamped := valueRange.Clamp(value)
		if clamped != value {
			validated.ClampedLimbKeys = append(validated.ClampedLimbKeys, key)
			logResolveDebug("%s: limb=%s value=%v clamped=%v", model.ShapeWarningValueClamped, key, value, clamped)
		}
		validated.LimbMasses[key] = clamped
	}
}

// fillMissingShapeDefaults は対象性別の許可キーのうち欠損しているものへ
// ポリシー既定値(値域内で0に最も近い値)を補う。
func fillMissingShapeDefaults(validated *model.ValidatedParameterSet, policy *model.GenderPolicy) {
	for _, key := range policy.SortedShapeKeys() {
		if _, exists := validated.ShapeValues[key]; exists {
			continue
		}
		valueRange, hasRange := policy.ShapeRange(key)
		if !hasRange || valueRange.IsBanned() {
			continue
		}
		validated.ShapeValues[key] = valueRange.NearestToZero()
		validated.DefaultedKeys = append(validated.DefaultedKeys, key)
		logResolveDebug("%s: key=%s default=%v", model.ShapeWarningOptionalKeyDefaulted, key, validated.ShapeValues[key])
	}
}

// sortValidationMetadata はメタデータ各リストを昇順で安定化する。
func sortValidationMetadata(validated *model.ValidatedParameterSet) {
	sortCanonicalKeys(validated.RejectedKeys)
	sortCanonicalKeys(validated.BannedKeysForced)
	sortCanonicalKeys(validated.ClampedKeys)
	sortCanonicalKeys(validated.DefaultedKeys)
	sortLimbKeys(validated.RejectedLimbKeys)
	sortLimbKeys(validated.ClampedLimbKeys)
}

// sortCanonicalKeys は正規キー列を昇順整列する。
func sortCanonicalKeys(keys []model.CanonicalKey) {
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
}

// sortLimbKeys は部位質量キー列を昇順整列する。
func sortLimbKeys(keys []model.LimbKey) {
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
}
