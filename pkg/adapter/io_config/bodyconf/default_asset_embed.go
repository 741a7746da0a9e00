// 指示: miu200521358
package bodyconf

import (
	"embed"
)

const (
	defaultGenderMappingAssetPath = "assets/gender_mapping_default.json"
	defaultBoneScalingAssetPath   = "assets/bone_scaling_default.yaml"
)

// defaultConfigFiles は既定設定文書の組み込みリソースを保持する。
//
//go:embed assets/gender_mapping_default.json assets/bone_scaling_default.yaml
var defaultConfigFiles embed.FS

// LoadDefaultGenderMapping は組み込みの既定性別マッピング表を読み込む。
// 外部ファイル未指定時の起動既定として使う。
func LoadDefaultGenderMapping() (*GenderMappingTable, error) {
	b, err := defaultConfigFiles.ReadFile(defaultGenderMappingAssetPath)
	if err != nil {
		return nil, err
	}
	table, err := parseGenderMapping(b)
	if err != nil {
		return nil, err
	}
	logBodyconfDebug("組み込み性別マッピング表読込完了: version=%s", table.MappingVersion)
	return table, nil
}

// LoadDefaultBoneScaling は組み込みの既定ボーンスケーリング設定を読み込む。
func LoadDefaultBoneScaling() (*BoneScalingConfig, error) {
	b, err := defaultConfigFiles.ReadFile(defaultBoneScalingAssetPath)
	if err != nil {
		return nil, err
	}
	config, err := ParseBoneScaling(b)
	if err != nil {
		return nil, err
	}
	logBodyconfDebug("組み込みボーンスケーリング設定読込完了: version=%s groups=%d",
		config.ConfigVersion, len(config.BoneGroups))
	return config, nil
}
