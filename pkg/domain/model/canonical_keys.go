// 指示: miu200521358
package model

import "fmt"

// CanonicalKey は体型パラメータの正規キーを表す。
// 入力元の綴りに依存しない内部表記で、未知キーも正規化後の形で保持される。
type CanonicalKey string

// String は正規キーの文字列表現を返す。
func (k CanonicalKey) String() string {
	return string(k)
}

// 既知の正規シェイプキー集合。
const (
	// CanonicalKeyBodybuilderSize は筋肉質体型の度合いを表す。
	CanonicalKeyBodybuilderSize CanonicalKey = "bodybuilderSize"
	// CanonicalKeyPearFigure は洋梨体型の度合いを表す。
	CanonicalKeyPearFigure CanonicalKey = "pearFigure"
	// CanonicalKeyHourglassFigure は砂時計体型の度合いを表す。
	CanonicalKeyHourglassFigure CanonicalKey = "hourglassFigure"
	// CanonicalKeyAppleFigure はリンゴ体型の度合いを表す。
	CanonicalKeyAppleFigure CanonicalKey = "appleFigure"
	// CanonicalKeyShoulderWidth は肩幅を表す。
	CanonicalKeyShoulderWidth CanonicalKey = "shoulderWidth"
	// CanonicalKeyWaistWidth はウエスト幅を表す。
	CanonicalKeyWaistWidth CanonicalKey = "waistWidth"
	// CanonicalKeyHipWidth は腰幅を表す。
	CanonicalKeyHipWidth CanonicalKey = "hipWidth"
	// CanonicalKeyBellySize は腹部の大きさを表す。
	CanonicalKeyBellySize CanonicalKey = "bellySize"
	// CanonicalKeyBodyFat は体脂肪量を表す。
	CanonicalKeyBodyFat CanonicalKey = "bodyFat"
	// CanonicalKeyBreastSize は胸部の大きさを表す。
	CanonicalKeyBreastSize CanonicalKey = "breastSize"
	// CanonicalKeyNeckThickness は首の太さを表す。
	CanonicalKeyNeckThickness CanonicalKey = "neckThickness"
	// CanonicalKeyArmThickness は腕の太さを表す。
	CanonicalKeyArmThickness CanonicalKey = "armThickness"
	// CanonicalKeyLegThickness は脚の太さを表す。
	CanonicalKeyLegThickness CanonicalKey = "legThickness"
	// CanonicalKeyMuscleDefinition は筋肉の彫りの深さを表す。
	CanonicalKeyMuscleDefinition CanonicalKey = "muscleDefinition"
	// CanonicalKeyNipples は乳首形状を表す。性別ポリシーにより禁止され得る。
	CanonicalKeyNipples CanonicalKey = "nipples"
	// CanonicalKeyFaceWidth は顔幅を表す。
	CanonicalKeyFaceWidth CanonicalKey = "faceWidth"
	// CanonicalKeyJawWidth はあご幅を表す。
	CanonicalKeyJawWidth CanonicalKey = "jawWidth"
	// CanonicalKeyCheekFullness は頬のふくらみを表す。
	CanonicalKeyCheekFullness CanonicalKey = "cheekFullness"
	// CanonicalKeyEyeSize は目の大きさを表す。
	CanonicalKeyEyeSize CanonicalKey = "eyeSize"
	// CanonicalKeyLipFullness は唇の厚さを表す。
	CanonicalKeyLipFullness CanonicalKey = "lipFullness"
)

// LimbKey は骨格スケーリングを駆動する部位質量キーを表す。
type LimbKey string

// String は部位質量キーの文字列表現を返す。
func (k LimbKey) String() string {
	return string(k)
}

// 既知の部位質量キー集合。
const (
	// LimbKeyArm は上腕質量を表す。
	LimbKeyArm LimbKey = "arm"
	// LimbKeyForearm は前腕質量を表す。
	LimbKeyForearm LimbKey = "forearm"
	// LimbKeyHand は手部質量を表す。
	LimbKeyHand LimbKey = "hand"
	// LimbKeyThigh は大腿質量を表す。
	LimbKeyThigh LimbKey = "thigh"
	// LimbKeyCalf は下腿質量を表す。
	LimbKeyCalf LimbKey = "calf"
	// LimbKeyFoot は足部質量を表す。
	LimbKeyFoot LimbKey = "foot"
	// LimbKeyTorso は胴体質量を表す。
	LimbKeyTorso LimbKey = "torso"
	// LimbKeyNeck は頸部質量を表す。
	LimbKeyNeck LimbKey = "neck"
	// LimbKeyHip は腰部質量を表す。thigh と torso から導出され得る。
	LimbKeyHip LimbKey = "hip"
)

// Gender は体型ポリシーの対象性別を表す。
type Gender string

const (
	// GenderMale は男性向けポリシーを表す。
	GenderMale Gender = "male"
	// GenderFemale は女性向けポリシーを表す。
	GenderFemale Gender = "female"
)

// String は性別の文字列表現を返す。
func (g Gender) String() string {
	return string(g)
}

// ParseGender は性別文字列を解析する。
func ParseGender(value string) (Gender, error) {
	switch Gender(value) {
	case GenderMale:
		return GenderMale, nil
	case GenderFemale:
		return GenderFemale, nil
	default:
		return "", fmt.Errorf("未対応の性別指定です: %s", value)
	}
}

// StreamPriority はストリーム適用の優先度階層を表す。値が小さいほど先に適用される。
type StreamPriority int

const (
	// StreamPriorityStructural は体型骨格に関わる主要キー階層を表す。
	StreamPriorityStructural StreamPriority = iota
	// StreamPriorityDetail は名前付き二次シェイプキー階層を表す。
	StreamPriorityDetail
	// StreamPriorityFine はその他の微調整キー階層を表す。
	StreamPriorityFine
)

// String は優先度階層の表示名を返す。
func (p StreamPriority) String() string {
	switch p {
	case StreamPriorityStructural:
		return "structural"
	case StreamPriorityDetail:
		return "detail"
	default:
		return "fine"
	}
}
