// 指示: miu200521358
package model

// StreamTask は1モーフターゲット分の適用タスクを表す。
// 順序は優先度階層が先、同一階層内は元キー順で安定とする。
type StreamTask struct {
	Key         CanonicalKey
	TargetName  string
	TargetValue float64
	Priority    StreamPriority
}
