// 指示: miu200521358
package minteractor

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/width"

	"github.com/miu200521358/mu_shape_resolver/pkg/domain/model"
)

// sourceShapeKeyPrefixes は入力元固有の接頭辞を保持する。
// 正規キー自体の先頭語と衝突する綴り(body_ 等)はここに置かず、
// 誤綴り対応表で個別に吸収する。bodyFat の同一性を壊さないため。
var sourceShapeKeyPrefixes = []string{
	"blendshape.",
	"blendshapes.",
	"shapekey_",
	"shape_",
	"morph_",
	"avatar_",
	"scan_",
}

// sourceLimbKeyPrefixes は部位質量キーの入力元固有接頭辞を保持する。
var sourceLimbKeyPrefixes = []string{
	"limbmass_",
	"limb_",
	"mass_",
	"bone_",
}

// shapeKeySpellingCorrections は過去版の誤綴りから正規形への対応表を保持する。
// 正規化(接頭辞除去・ケース変換)後の形で照合する。
var shapeKeySpellingCorrections = map[string]model.CanonicalKey{
	"bodybuildersize":  model.CanonicalKeyBodybuilderSize,
	"bodyBuilderSize":  model.CanonicalKeyBodybuilderSize,
	"hourGlassFigure":  model.CanonicalKeyHourglassFigure,
	"hourglasFigure":   model.CanonicalKeyHourglassFigure,
	"pearShape":        model.CanonicalKeyPearFigure,
	"appleShape":       model.CanonicalKeyAppleFigure,
	"sholderWidth":     model.CanonicalKeyShoulderWidth,
	"waistSize":        model.CanonicalKeyWaistWidth,
	"hipSize":          model.CanonicalKeyHipWidth,
	"bellyBig":         model.CanonicalKeyBellySize,
	"bodyfat":          model.CanonicalKeyBodyFat,
	"breastsSize":      model.CanonicalKeyBreastSize,
	"neckThick":        model.CanonicalKeyNeckThickness,
	"armThick":         model.CanonicalKeyArmThickness,
	"legThick":         model.CanonicalKeyLegThickness,
	"muscleDefinision": model.CanonicalKeyMuscleDefinition,
}

// limbKeySpellingCorrections は部位質量キーの誤綴り対応表を保持する。
var limbKeySpellingCorrections = map[string]model.LimbKey{
	"upperArm": model.LimbKeyArm,
	"foreArm":  model.LimbKeyForearm,
	"lowerArm": model.LimbKeyForearm,
	"upperLeg": model.LimbKeyThigh,
	"lowerLeg": model.LimbKeyCalf,
	"shin":     model.LimbKeyCalf,
	"body":     model.LimbKeyTorso,
	"chest":    model.LimbKeyTorso,
	"waist":    model.LimbKeyHip,
	"pelvis":   model.LimbKeyHip,
}

// shapeKeyTargetNames は正規キーからレンダラー側モーフ名への直接対応表を保持する。
// 逆引きと合わせて全単射であること。
var shapeKeyTargetNames = map[model.CanonicalKey]string{
	model.CanonicalKeyBodybuilderSize:  "筋肉質",
	model.CanonicalKeyPearFigure:       "洋梨体型",
	model.CanonicalKeyHourglassFigure:  "砂時計体型",
	model.CanonicalKeyAppleFigure:      "リンゴ体型",
	model.CanonicalKeyShoulderWidth:    "肩幅",
	model.CanonicalKeyWaistWidth:       "ウエスト幅",
	model.CanonicalKeyHipWidth:         "腰幅",
	model.CanonicalKeyBellySize:        "お腹",
	model.CanonicalKeyBodyFat:          "体脂肪",
	model.CanonicalKeyBreastSize:       "胸の大きさ",
	model.CanonicalKeyNeckThickness:    "首の太さ",
	model.CanonicalKeyArmThickness:     "腕の太さ",
	model.CanonicalKeyLegThickness:     "脚の太さ",
	model.CanonicalKeyMuscleDefinition: "筋肉の彫り",
	model.CanonicalKeyNipples:          "乳首",
	model.CanonicalKeyFaceWidth:        "顔幅",
	model.CanonicalKeyJawWidth:         "あご幅",
	model.CanonicalKeyCheekFullness:    "頬ふくらみ",
	model.CanonicalKeyEyeSize:          "目の大きさ",
	model.CanonicalKeyLipFullness:      "唇の厚さ",
}

// shapeKeyTargetNameReverse はモーフ名から正規キーへの逆引き表を保持する。
var shapeKeyTargetNameReverse = buildShapeKeyTargetNameReverse()

// buildShapeKeyTargetNameReverse は直接対応表から逆引き表を構築する。
func buildShapeKeyTargetNameReverse() map[string]model.CanonicalKey {
	reverse := make(map[string]model.CanonicalKey, len(shapeKeyTargetNames))
	for key, targetName := range shapeKeyTargetNames {
		reverse[targetName] = key
	}
	return reverse
}

// shapeKeyPriorityTiers は正規キーの適用優先度階層表を保持する。
// 体型骨格を決める主要キーが先、名前付き二次キーが次、残りは最下層とする。
var shapeKeyPriorityTiers = map[model.CanonicalKey]model.StreamPriority{
	model.CanonicalKeyBodybuilderSize: model.StreamPriorityStructural,
	model.CanonicalKeyPearFigure:      model.StreamPriorityStructural,
	model.CanonicalKeyHourglassFigure: model.StreamPriorityStructural,
	model.CanonicalKeyAppleFigure:     model.StreamPriorityStructural,
	model.CanonicalKeyShoulderWidth:   model.StreamPriorityStructural,
	model.CanonicalKeyWaistWidth:      model.StreamPriorityStructural,
	model.CanonicalKeyHipWidth:        model.StreamPriorityStructural,
	model.CanonicalKeyBodyFat:         model.StreamPriorityStructural,

	model.CanonicalKeyBellySize:        model.StreamPriorityDetail,
	model.CanonicalKeyBreastSize:       model.StreamPriorityDetail,
	model.CanonicalKeyNeckThickness:    model.StreamPriorityDetail,
	model.CanonicalKeyArmThickness:     model.StreamPriorityDetail,
	model.CanonicalKeyLegThickness:     model.StreamPriorityDetail,
	model.CanonicalKeyMuscleDefinition: model.StreamPriorityDetail,
}

// CanonicalizeShapeKey は任意綴りのシェイプキーを正規キーへ変換する。
// 純関数で、未知キーも正規化後の形のまま返す(破棄は許可リスト判定側で行う)。
func CanonicalizeShapeKey(raw string) model.CanonicalKey {
	folded := normalizeKeyText(raw, sourceShapeKeyPrefixes)
	if folded == "" {
		return ""
	}
	if corrected, exists := shapeKeySpellingCorrections[folded]; exists {
		return corrected
	}
	return model.CanonicalKey(folded)
}

// CanonicalizeLimbKey は任意綴りの部位質量キーを正規キーへ変換する。
func CanonicalizeLimbKey(raw string) model.LimbKey {
	folded := normalizeKeyText(raw, sourceLimbKeyPrefixes)
	if folded == "" {
		return ""
	}
	if corrected, exists := limbKeySpellingCorrections[folded]; exists {
		return corrected
	}
	return model.LimbKey(folded)
}

// CanonicalKeyToTargetName は正規キーからレンダラー側モーフ名を返す。
// 対応表にないキーは名前を作らず false を返す。
func CanonicalKeyToTargetName(key model.CanonicalKey) (string, bool) {
	targetName, exists := shapeKeyTargetNames[key]
	return targetName, exists
}

// CanonicalKeyFromTargetName はレンダラー側モーフ名から正規キーを返す。
func CanonicalKeyFromTargetName(targetName string) (model.CanonicalKey, bool) {
	key, exists := shapeKeyTargetNameReverse[width.Fold.String(strings.TrimSpace(targetName))]
	return key, exists
}

// KnownMorphTargetNames は直接対応表にある全モーフ名を昇順で返す。
// メモリ内メッシュの初期化に使う。
func KnownMorphTargetNames() []string {
	names := make([]string, 0, len(shapeKeyTargetNames))
	for _, targetName := range shapeKeyTargetNames {
		names = append(names, targetName)
	}
	sort.Strings(names)
	return names
}

// ShapeKeyPriority は正規キーの適用優先度階層を返す。未登録キーは最下層とする。
func ShapeKeyPriority(key model.CanonicalKey) model.StreamPriority {
	if priority, exists := shapeKeyPriorityTiers[key]; exists {
		return priority
	}
	return model.StreamPriorityFine
}

// normalizeKeyText は幅寄せ・接頭辞除去・区切り変換を行う共通正規化処理。
func normalizeKeyText(raw string, prefixes []string) string {
	folded := width.Fold.String(strings.TrimSpace(raw))
	if folded == "" {
		return ""
	}
	lowered := strings.ToLower(folded)
	for _, prefix := range prefixes {
		if strings.HasPrefix(lowered, prefix) {
			folded = folded[len(prefix):]
			break
		}
	}
	return toLowerCamel(folded)
}

// toLowerCamel はsnake_case・kebab-case・空白区切りをlowerCamelCaseへ変換する。
// 区切りのない入力は先頭だけ小文字化し、途中の大文字は保持する。
func toLowerCamel(text string) string {
	tokens := strings.FieldsFunc(text, func(r rune) bool {
		return r == '_' || r == '-' || r == ' ' || r == '.'
	})
	if len(tokens) == 0 {
		return ""
	}
	var builder strings.Builder
	for i, token := range tokens {
		runes := []rune(token)
		if i == 0 {
			runes[0] = unicode.ToLower(runes[0])
		} else {
			runes[0] = unicode.ToUpper(runes[0])
		}
		builder.WriteString(string(runes))
	}
	return builder.String()
}
