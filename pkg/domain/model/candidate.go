// 指示: miu200521358
package model

// ArchetypeCandidate はボディスキャン由来の候補体型を表す。
// 解決要求ごとに生成され、ブレンド後は破棄される。
type ArchetypeCandidate struct {
	ID          string
	Name        string
	ShapeValues map[CanonicalKey]float64
	LimbMasses  map[LimbKey]float64
	Distance    float64
}

// BlendWeight は1候補分のブレンド重みを表す。
type BlendWeight struct {
	CandidateID string
	Weight      float64
}

// BlendResult は候補ブレンドの結果を表す。
// 重みは合計 1±1e-6 を満たし、1% 未満の重みは除外のうえ再正規化済みである。
type BlendResult struct {
	ShapeValues  map[CanonicalKey]float64
	LimbMasses   map[LimbKey]float64
	Weights      []BlendWeight
	Confidence   float64
	QualityScore float64
}
