// 指示: miu200521358
package mtarget

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/miu200521358/mu_shape_resolver/pkg/domain/model"
)

func TestMemoryAvatarMeshMorphWrites(t *testing.T) {
	mesh := NewMemoryAvatarMesh([]string{"肩幅", "胸の大きさ"}, nil)

	if !mesh.ContainsMorphTarget("肩幅") {
		t.Fatal("登録済みモーフが見つからない")
	}
	if mesh.ContainsMorphTarget("存在しない") {
		t.Fatal("未登録モーフが見つかってしまう")
	}
	if !mesh.ApplyMorphInfluence("肩幅", 0.4) {
		t.Fatal("登録済みモーフへの書き込みに失敗")
	}
	if mesh.ApplyMorphInfluence("存在しない", 0.4) {
		t.Fatal("未登録モーフへの書き込みが成功してしまう")
	}
	if !mesh.ApplyMorphInfluence("肩幅", 0.8) {
		t.Fatal("再書き込みに失敗")
	}

	influence, exists := mesh.Influence("肩幅")
	if !exists || influence != 0.8 {
		t.Errorf("最終影響度: got=%v want=0.8", influence)
	}
	writes := mesh.MorphWrites()
	if len(writes) != 2 {
		t.Fatalf("書き込み記録数: got=%d want=2", len(writes))
	}
	if writes[0].Influence != 0.4 || writes[1].Influence != 0.8 {
		t.Errorf("書き込み記録順: got=%+v", writes)
	}
}

func TestMemoryAvatarMeshBoneScales(t *testing.T) {
	mesh := NewMemoryAvatarMesh(nil, []string{"左足", "右足"})

	target := model.BoneScaleTarget{BoneName: "左足", ScaleFactor: 1.2, AxisScale: r3.Vec{X: 1.2, Y: 1.05, Z: 1.2}}
	if !mesh.ApplyBoneScale(target) {
		t.Fatal("登録済みボーンへの書き込みに失敗")
	}
	if mesh.ApplyBoneScale(model.BoneScaleTarget{BoneName: "頭"}) {
		t.Fatal("未登録ボーンへの書き込みが成功してしまう")
	}

	stored, exists := mesh.BoneScale("左足")
	if !exists || stored.ScaleFactor != 1.2 {
		t.Errorf("ボーンスケール: got=%+v", stored)
	}
	names := mesh.BoneNames()
	if len(names) != 2 || names[0] != "左足" {
		t.Errorf("ボーン名一覧: got=%v", names)
	}
}

func TestDefaultHumanoidBoneNamesReturnsCopy(t *testing.T) {
	names := DefaultHumanoidBoneNames()
	if len(names) == 0 {
		t.Fatal("既定ボーン名が空")
	}
	names[0] = "書き換え"
	if DefaultHumanoidBoneNames()[0] == "書き換え" {
		t.Fatal("内部一覧が書き換わってしまう")
	}
}
