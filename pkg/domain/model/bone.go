// 指示: miu200521358
package model

import "gonum.org/v1/gonum/spatial/r3"

// BoneScaleTarget は1ボーン分のスケール適用指示を表す。
// パラメータ更新のたびに再計算され、フレームをまたいで保持されない。
type BoneScaleTarget struct {
	BoneName    string
	ScaleFactor float64
	// AxisScale は軸重み適用後の軸別スケール値。
	AxisScale r3.Vec
}
