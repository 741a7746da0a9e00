// 指示: miu200521358
package bodyconf

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/miu200521358/mu_shape_resolver/pkg/domain/model"
	"github.com/miu200521358/mu_shape_resolver/pkg/shared/base/logging"
)

// GenderMappingTable は性別マッピング表の読込結果を表す。
// キーは入力綴りのまま保持し、正規化は利用側で行う。
type GenderMappingTable struct {
	MappingVersion string
	MorphRanges    map[model.Gender]map[string]model.ValueRange
	LimbRanges     map[model.Gender]map[string]model.ValueRange
}

// genderMappingDocument は性別マッピングJSONのトップレベル要素を表す。
type genderMappingDocument struct {
	MappingVersion string                        `json:"mapping_version"`
	Genders        map[string]genderMappingEntry `json:"genders"`
}

// genderMappingEntry は1性別分のマッピング要素を表す。
type genderMappingEntry struct {
	MorphValues map[string]mappingRange `json:"morph_values"`
	LimbMasses  map[string]mappingRange `json:"limb_masses"`
}

// mappingRange はJSON上のレンジ表現を表す。欠落検出のためポインタで受ける。
type mappingRange struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

// GenderMappingRepository は性別マッピング表の読み込み契約を表す。
type GenderMappingRepository struct{}

// NewGenderMappingRepository はGenderMappingRepositoryを生成する。
func NewGenderMappingRepository() *GenderMappingRepository {
	return &GenderMappingRepository{}
}

// CanLoad は拡張子に応じて読み込み可否を判定する。
func (r *GenderMappingRepository) CanLoad(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// Load は性別マッピング表を読み込む。
// 構造不正は model.InvalidMappingError として返し、既定値では補わない。
func (r *GenderMappingRepository) Load(path string) (*GenderMappingTable, error) {
	if !r.CanLoad(path) {
		return nil, model.NewInvalidMapping("性別マッピング表の拡張子が不正です: %s", nil, path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, model.NewInvalidMapping("性別マッピング表の読み取りに失敗しました: %s", err, path)
	}
	table, err := parseGenderMapping(b)
	if err != nil {
		return nil, err
	}
	logBodyconfInfo("性別マッピング表読込完了: file=%s version=%s", filepath.Base(path), table.MappingVersion)
	return table, nil
}

// parseGenderMapping は性別マッピングJSONを解析・検証する。
func parseGenderMapping(data []byte) (*GenderMappingTable, error) {
	doc := genderMappingDocument{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, model.NewInvalidMapping("性別マッピング表の解析に失敗しました", err)
	}
	if strings.TrimSpace(doc.MappingVersion) == "" {
		return nil, model.NewInvalidMapping("mapping_version が未指定です", nil)
	}

	table := &GenderMappingTable{
		MappingVersion: doc.MappingVersion,
		MorphRanges:    map[model.Gender]map[string]model.ValueRange{},
		LimbRanges:     map[model.Gender]map[string]model.ValueRange{},
	}
	for _, gender := range []model.Gender{model.GenderMale, model.GenderFemale} {
		entry, exists := doc.Genders[string(gender)]
		if !exists {
			return nil, model.NewInvalidMapping("性別マッピング表に %s が存在しません", nil, gender)
		}
		if len(entry.MorphValues) == 0 {
			return nil, model.NewInvalidMapping("morph_values が空です: gender=%s", nil, gender)
		}
		morphRanges, err := convertMappingRanges(gender, "morph_values", entry.MorphValues)
		if err != nil {
			return nil, err
		}
		limbRanges, err := convertMappingRanges(gender, "limb_masses", entry.LimbMasses)
		if err != nil {
			return nil, err
		}
		if len(limbRanges) == 0 {
			logBodyconfWarn("limb_masses が空のため骨格スケーリングは無効になります: gender=%s", gender)
		}
		table.MorphRanges[gender] = morphRanges
		table.LimbRanges[gender] = limbRanges
	}
	return table, nil
}

// convertMappingRanges はレンジ群を検証しつつ変換する。
func convertMappingRanges(gender model.Gender, section string, source map[string]mappingRange) (map[string]model.ValueRange, error) {
	converted := make(map[string]model.ValueRange, len(source))
	for key, rawRange := range source {
		if rawRange.Min == nil || rawRange.Max == nil {
			return nil, model.NewInvalidMapping("%s のレンジ端が欠落しています: gender=%s key=%s", nil, section, gender, key)
		}
		valueRange := model.ValueRange{Min: *rawRange.Min, Max: *rawRange.Max}
		if err := valueRange.Validate(); err != nil {
			return nil, model.NewInvalidMapping("%s のレンジが不正です: gender=%s key=%s", err, section, gender, key)
		}
		converted[key] = valueRange
	}
	return converted, nil
}

// logBodyconfInfo は設定読込のINFOログを出力する。
func logBodyconfInfo(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Info(format, params...)
}

// logBodyconfDebug は設定読込のデバッグログを出力する。
func logBodyconfDebug(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Debug(format, params...)
}

// logBodyconfWarn は設定読込の警告ログを出力する。
func logBodyconfWarn(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Warn(format, params...)
}
