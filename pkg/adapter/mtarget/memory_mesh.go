// 指示: miu200521358
// Package mtarget は生体メッシュ・骨格境界のメモリ内実装を提供する。
// CLI・結合ハーネス・テストが実レンダラーなしで適用結果を観測するために使う。
package mtarget

import (
	"sort"
	"sync"

	"github.com/miu200521358/mu_shape_resolver/pkg/domain/model"
	"github.com/miu200521358/mu_shape_resolver/pkg/usecase/port/mapply"
)

// defaultHumanoidBoneNames は標準的な人型ボーン構成のボーン名一覧。
var defaultHumanoidBoneNames = []string{
	"上半身",
	"上半身2",
	"下半身",
	"首",
	"頭",
	"左肩",
	"右肩",
	"左腕",
	"右腕",
	"左ひじ",
	"右ひじ",
	"左手首",
	"右手首",
	"左足",
	"右足",
	"左ひざ",
	"右ひざ",
	"左足首",
	"右足首",
}

// DefaultHumanoidBoneNames は標準的な人型ボーン名一覧の複製を返す。
func DefaultHumanoidBoneNames() []string {
	return append([]string(nil), defaultHumanoidBoneNames...)
}

// MorphWriteRecord は1回のモーフ書き込みの記録を表す。
type MorphWriteRecord struct {
	TargetName string
	Influence  float64
}

// MemoryAvatarMesh はモーフ影響度と骨格スケールの書き込みをメモリ内で受ける
// アバターメッシュを表す。書き込みは到着順に全件記録する。
type MemoryAvatarMesh struct {
	mu          sync.Mutex
	morphNames  map[string]bool
	boneNames   []string
	influences  map[string]float64
	boneScales  map[string]model.BoneScaleTarget
	morphWrites []MorphWriteRecord
}

var _ mapply.IMorphTargetHandle = (*MemoryAvatarMesh)(nil)
var _ mapply.IBoneTransformWriter = (*MemoryAvatarMesh)(nil)

// NewMemoryAvatarMesh はモーフターゲット名とボーン名を持つメッシュを生成する。
func NewMemoryAvatarMesh(morphTargetNames []string, boneNames []string) *MemoryAvatarMesh {
	morphNames := make(map[string]bool, len(morphTargetNames))
	for _, name := range morphTargetNames {
		morphNames[name] = true
	}
	return &MemoryAvatarMesh{
		morphNames: morphNames,
		boneNames:  append([]string(nil), boneNames...),
		influences: map[string]float64{},
		boneScales: map[string]model.BoneScaleTarget{},
	}
}

// ContainsMorphTarget は対象名のモーフターゲットが存在するかを返す。
func (m *MemoryAvatarMesh) ContainsMorphTarget(targetName string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.morphNames[targetName]
}

// ApplyMorphInfluence はモーフ影響度を書き込み、記録する。
func (m *MemoryAvatarMesh) ApplyMorphInfluence(targetName string, influence float64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.morphNames[targetName] {
		return false
	}
	m.influences[targetName] = influence
	m.morphWrites = append(m.morphWrites, MorphWriteRecord{TargetName: targetName, Influence: influence})
	return true
}

// MorphTargetNames は存在するモーフターゲット名を昇順で返す。
func (m *MemoryAvatarMesh) MorphTargetNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.morphNames))
	for name := range m.morphNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ApplyBoneScale はボーンスケールを書き込む。
func (m *MemoryAvatarMesh) ApplyBoneScale(target model.BoneScaleTarget) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	found := false
	for _, name := range m.boneNames {
		if name == target.BoneName {
			found = true
			break
		}
	}
	if !found {
		return false
	}
	m.boneScales[target.BoneName] = target
	return true
}

// BoneNames は存在するボーン名を返す。
func (m *MemoryAvatarMesh) BoneNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.boneNames...)
}

// Influence は現在のモーフ影響度を返す。
func (m *MemoryAvatarMesh) Influence(targetName string) (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	influence, exists := m.influences[targetName]
	return influence, exists
}

// BoneScale は現在のボーンスケールを返す。
func (m *MemoryAvatarMesh) BoneScale(boneName string) (model.BoneScaleTarget, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	target, exists := m.boneScales[boneName]
	return target, exists
}

// MorphWrites はモーフ書き込み記録の複製を到着順で返す。
func (m *MemoryAvatarMesh) MorphWrites() []MorphWriteRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MorphWriteRecord(nil), m.morphWrites...)
}

// MorphWriteCount はモーフ書き込み記録数を返す。
func (m *MemoryAvatarMesh) MorphWriteCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.morphWrites)
}
