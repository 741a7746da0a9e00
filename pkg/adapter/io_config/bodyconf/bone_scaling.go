// 指示: miu200521358
package bodyconf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	govaluate "gopkg.in/Knetic/govaluate.v3"
	"gopkg.in/yaml.v3"

	"github.com/miu200521358/mu_shape_resolver/pkg/domain/model"
)

// boneScalingDistribution の許容値一覧。
const (
	// BoneScaleDistributionUniform は質量値をそのままスケールへ写す分布を表す。
	BoneScaleDistributionUniform = "uniform"
	// BoneScaleDistributionTanh は中立値1.0周りで双曲線正接平滑化する分布を表す。
	BoneScaleDistributionTanh = "tanh"
)

// RangeConfig はYAML上のレンジ表現を表す。
type RangeConfig struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// ToValueRange はドメインのValueRangeへ変換する。
func (r RangeConfig) ToValueRange() model.ValueRange {
	return model.ValueRange{Min: r.Min, Max: r.Max}
}

// AxisScaleConfig は軸別スケール重みを表す。
type AxisScaleConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

// DerivedMassConfig は導出質量の定義を表す。
// 直接入力されなかった質量を既存質量から式で計算する。
type DerivedMassConfig struct {
	Key     string      `yaml:"key"`
	Formula string      `yaml:"formula"`
	Clamp   RangeConfig `yaml:"clamp"`

	// parsedFormula は読込時に構文検証済みの式。実行時の再解析は行わない。
	parsedFormula *govaluate.EvaluableExpression
}

// LimbKey は導出先の部位質量キーを返す。
func (c *DerivedMassConfig) LimbKey() model.LimbKey {
	return model.LimbKey(c.Key)
}

// Evaluate は既存質量を式へ代入して導出値を計算する。
func (c *DerivedMassConfig) Evaluate(masses map[string]any) (float64, error) {
	raw, err := c.parsedFormula.Evaluate(masses)
	if err != nil {
		return 0, model.NewConfigError("導出質量式の評価に失敗しました: key=%s", err, c.Key)
	}
	value, ok := raw.(float64)
	if !ok {
		return 0, model.NewConfigError("導出質量式が数値を返しませんでした: key=%s", nil, c.Key)
	}
	return value, nil
}

// BoneGroupConfig は1ボーングループ分のスケーリング定義を表す。
type BoneGroupConfig struct {
	Name             string          `yaml:"name"`
	SelectorPatterns []string        `yaml:"selector_patterns"`
	SourceMass       string          `yaml:"source_mass"`
	AxisScale        AxisScaleConfig `yaml:"axis_scale"`
	Distribution     string          `yaml:"distribution"`
	Clamp            RangeConfig     `yaml:"clamp"`
	Enabled          bool            `yaml:"enabled"`
	// Interplay は現在シェイプ値に対する有効化条件式。空文字は条件なし。
	Interplay string `yaml:"interplay"`

	// parsedInterplay は読込時に構文検証済みの条件式。空条件の場合はnil。
	parsedInterplay *govaluate.EvaluableExpression
}

// SourceLimbKey はスケール元の部位質量キーを返す。
func (c *BoneGroupConfig) SourceLimbKey() model.LimbKey {
	return model.LimbKey(c.SourceMass)
}

// IsEnabledFor は既定有効か、条件式が現在シェイプ値で成立するかを返す。
// 条件式が参照するシェイプ値の欠損は 0.0 を代入して評価する。
// 欠損参照で式全体を不成立にすると、供給済みの他項まで殺してしまう。
func (c *BoneGroupConfig) IsEnabledFor(shapeValues map[string]any) bool {
	if c.Enabled {
		return true
	}
	if c.parsedInterplay == nil {
		return false
	}
	parameters := make(map[string]any, len(shapeValues))
	for _, name := range c.parsedInterplay.Vars() {
		parameters[name] = 0.0
	}
	for name, value := range shapeValues {
		parameters[name] = value
	}
	raw, err := c.parsedInterplay.Evaluate(parameters)
	if err != nil {
		return false
	}
	enabled, ok := raw.(bool)
	return ok && enabled
}

// GateConfig は全ボーン一律の最終乗数を表す。
type GateConfig struct {
	Value float64     `yaml:"value"`
	Clamp RangeConfig `yaml:"clamp"`
}

// BoneScalingConfig はボーンスケーリング設定文書を表す。
// 起動時に読込・全量検証され、以後は不変値として注入される。
type BoneScalingConfig struct {
	ConfigVersion string              `yaml:"config_version"`
	Gate          GateConfig          `yaml:"gate"`
	DerivedMasses []DerivedMassConfig `yaml:"derived_masses"`
	BoneGroups    []BoneGroupConfig   `yaml:"bone_groups"`
}

// Validate は設定全体を検証し、式の構文解析まで読込時に済ませる。
func (c *BoneScalingConfig) Validate() error {
	if strings.TrimSpace(c.ConfigVersion) == "" {
		return model.NewConfigError("config_version が未指定です", nil)
	}
	if err := c.Gate.Clamp.ToValueRange().Validate(); err != nil {
		return model.NewConfigError("gate.clamp が不正です", err)
	}
	if c.Gate.Value == 0 {
		// ゲート未指定は中立の1.0として扱う。
		c.Gate.Value = 1.0
	}
	for i := range c.DerivedMasses {
		derived := &c.DerivedMasses[i]
		if strings.TrimSpace(derived.Key) == "" {
			return model.NewConfigError("derived_masses[%d].key が未指定です", nil, i)
		}
		if err := derived.Clamp.ToValueRange().Validate(); err != nil {
			return model.NewConfigError("derived_masses[%s].clamp が不正です", err, derived.Key)
		}
		parsed, err := govaluate.NewEvaluableExpression(derived.Formula)
		if err != nil {
			return model.NewConfigError("導出質量式の構文が不正です: key=%s formula=%s", err, derived.Key, derived.Formula)
		}
		derived.parsedFormula = parsed
	}
	names := map[string]bool{}
	for i := range c.BoneGroups {
		group := &c.BoneGroups[i]
		if strings.TrimSpace(group.Name) == "" {
			return model.NewConfigError("bone_groups[%d].name が未指定です", nil, i)
		}
		if names[group.Name] {
			return model.NewConfigError("bone_groups の name が重複しています: %s", nil, group.Name)
		}
		names[group.Name] = true
		if len(group.SelectorPatterns) == 0 {
			return model.NewConfigError("selector_patterns が空です: group=%s", nil, group.Name)
		}
		if strings.TrimSpace(group.SourceMass) == "" {
			return model.NewConfigError("source_mass が未指定です: group=%s", nil, group.Name)
		}
		switch group.Distribution {
		case BoneScaleDistributionUniform, BoneScaleDistributionTanh:
		case "":
			group.Distribution = BoneScaleDistributionUniform
		default:
			return model.NewConfigError("distribution が不正です: group=%s distribution=%s", nil, group.Name, group.Distribution)
		}
		if err := group.Clamp.ToValueRange().Validate(); err != nil {
			return model.NewConfigError("clamp が不正です: group=%s", err, group.Name)
		}
		if group.AxisScale == (AxisScaleConfig{}) {
			group.AxisScale = AxisScaleConfig{X: 1.0, Y: 1.0, Z: 1.0}
		}
		if strings.TrimSpace(group.Interplay) != "" {
			parsed, err := govaluate.NewEvaluableExpression(group.Interplay)
			if err != nil {
				return model.NewConfigError("有効化条件式の構文が不正です: group=%s interplay=%s", err, group.Name, group.Interplay)
			}
			group.parsedInterplay = parsed
		}
	}
	return nil
}

// BoneScalingRepository はボーンスケーリング設定の読み込み契約を表す。
type BoneScalingRepository struct{}

// NewBoneScalingRepository はBoneScalingRepositoryを生成する。
func NewBoneScalingRepository() *BoneScalingRepository {
	return &BoneScalingRepository{}
}

// CanLoad は拡張子に応じて読み込み可否を判定する。
func (r *BoneScalingRepository) CanLoad(path string) bool {
	ext := filepath.Ext(path)
	return strings.EqualFold(ext, ".yaml") || strings.EqualFold(ext, ".yml")
}

// Load はボーンスケーリング設定を読み込み、全量検証する。
// 構文不正・構造不正は model.ConfigError として読込時に返す。
func (r *BoneScalingRepository) Load(path string) (*BoneScalingConfig, error) {
	if !r.CanLoad(path) {
		return nil, model.NewConfigError("ボーンスケーリング設定の拡張子が不正です: %s", nil, path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, model.NewConfigError("ボーンスケーリング設定の読み取りに失敗しました: %s", err, path)
	}
	config, err := ParseBoneScaling(b)
	if err != nil {
		return nil, err
	}
	logBodyconfInfo("ボーンスケーリング設定読込完了: file=%s version=%s groups=%d",
		filepath.Base(path), config.ConfigVersion, len(config.BoneGroups))
	return config, nil
}

// ParseBoneScaling はYAML文書を解析・検証してボーンスケーリング設定を返す。
func ParseBoneScaling(data []byte) (*BoneScalingConfig, error) {
	config := &BoneScalingConfig{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, model.NewConfigError("ボーンスケーリング設定の解析に失敗しました", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("ボーンスケーリング設定の検証に失敗しました: %w", err)
	}
	return config, nil
}
