// 指示: miu200521358
package model

import "github.com/tiendc/go-deepcopy"

// ValidatedParameterSet は検証・丸め済みの体型パラメータ一式を表す。
// 下流(骨格スケーリング・モーフストリーム)が消費する唯一の正規状態で、
// 解決のたびに丸ごと置き換えられ、部分的に書き換えられることはない。
type ValidatedParameterSet struct {
	ShapeValues map[CanonicalKey]float64
	LimbMasses  map[LimbKey]float64

	// RejectedKeys は許可リスト外として除外されたキー。
	RejectedKeys []CanonicalKey
	// BannedKeysForced は禁止レンジ (0,0) により 0.0 へ強制されたキー。
	BannedKeysForced []CanonicalKey
	// ClampedKeys はレンジ内へ丸められたキー。
	ClampedKeys []CanonicalKey
	// DefaultedKeys は欠損のためポリシー既定値で補完されたキー。
	DefaultedKeys []CanonicalKey
	// RejectedLimbKeys は許可リスト外として除外された部位質量キー。
	RejectedLimbKeys []LimbKey
	// ClampedLimbKeys はレンジ内へ丸められた部位質量キー。
	ClampedLimbKeys []LimbKey
}

// NewValidatedParameterSet は空のパラメータ一式を生成する。
func NewValidatedParameterSet() *ValidatedParameterSet {
	return &ValidatedParameterSet{
		ShapeValues: map[CanonicalKey]float64{},
		LimbMasses:  map[LimbKey]float64{},
	}
}

// Clone はパラメータ一式の深い複製を返す。
// 呼び出し側へ渡す結果と内部保持状態の共有を断つために使う。
func (s *ValidatedParameterSet) Clone() (*ValidatedParameterSet, error) {
	if s == nil {
		return nil, nil
	}
	cloned := &ValidatedParameterSet{}
	if err := deepcopy.Copy(cloned, s); err != nil {
		return nil, err
	}
	return cloned, nil
}

// WarningCount は記録済みの回復可能条件の総数を返す。
func (s *ValidatedParameterSet) WarningCount() int {
	if s == nil {
		return 0
	}
	return len(s.RejectedKeys) + len(s.BannedKeysForced) + len(s.ClampedKeys) +
		len(s.DefaultedKeys) + len(s.RejectedLimbKeys) + len(s.ClampedLimbKeys)
}
