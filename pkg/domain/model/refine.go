// 指示: miu200521358
package model

// RefinementRequest は外部補正サービスへ渡す依頼内容を表す。
// キーは正規化済みキーを文字列化したもので、応答側のキーと同じ表現を使う。
type RefinementRequest struct {
	RequestID          string
	Gender             Gender
	BlendedShapeValues map[string]float64
	BlendedLimbMasses  map[string]float64
	MappingVersion     string
	// StructuralEnvelope は補正中に許容する値域の上書き。省略可。
	StructuralEnvelope map[string]ValueRange
	// ClassificationHints は体型分類の参考情報。省略可。
	ClassificationHints []string
	// Measurements は実測値(cm単位等)。省略可。
	Measurements map[string]float64
	// EnvelopeSource は StructuralEnvelope の算出元の名前。ログ用。
	EnvelopeSource string
}

// RefinementResponse は外部補正サービスの応答を表す。
// スキーマ検証済みの値のみがこの型に載る。キーの正規化と値域検証は
// 受領後に改めて通常の検証手順で行う。
type RefinementResponse struct {
	Refined          bool
	FinalShapeValues map[string]float64
	FinalLimbMasses  map[string]float64
	ClampedKeys      []string
	OutOfRangeCount  int
	ActiveKeysCount  int
	MappingVersion   string
	// Confidence は省略可能な確信度。未設定時は nil。
	Confidence *float64
}
