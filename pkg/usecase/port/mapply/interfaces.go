// 指示: miu200521358
package mapply

import "github.com/miu200521358/mu_shape_resolver/pkg/domain/model"

// IMorphTargetHandle は生体メッシュ側のモーフターゲット書き込み契約を表す。
// 書き込みは単一書き手規律で行われる前提であり、実装側でロックは要求しない。
type IMorphTargetHandle interface {
	// ContainsMorphTarget は対象名のモーフターゲットが存在するかを返す。
	ContainsMorphTarget(targetName string) bool
	// ApplyMorphInfluence はモーフ影響度を書き込む。対象が存在しない場合は false を返す。
	ApplyMorphInfluence(targetName string, influence float64) bool
	// MorphTargetNames は存在するモーフターゲット名を返す。
	MorphTargetNames() []string
}

// IBoneTransformWriter は骨格側のスケール書き込み契約を表す。
type IBoneTransformWriter interface {
	// ApplyBoneScale はボーンへ軸別スケールを書き込む。対象が存在しない場合は false を返す。
	ApplyBoneScale(target model.BoneScaleTarget) bool
	// BoneNames は存在するボーン名を返す。セレクタ照合に使う。
	BoneNames() []string
}
