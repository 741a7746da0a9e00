// 指示: miu200521358
package minteractor

import (
	"fmt"
	"sync"

	"github.com/miu200521358/mu_shape_resolver/pkg/adapter/io_config/bodyconf"
	"github.com/miu200521358/mu_shape_resolver/pkg/domain/model"
)

const policyInfoDoneFormat = "体型ポリシー構築完了: version=%s gender=%s required=%d optional=%d banned=%d"

// cosmeticShapeKeyDefaultRange は補助キー既定の対称レンジを表す。
var cosmeticShapeKeyDefaultRange = model.ValueRange{Min: -1.0, Max: 1.0}

// supplementaryCosmeticShapeKeys は常に任意キーとして補うフェイス系キーを保持する。
// メッシュによっては存在しないため、マッピング表の欠落を不正としない。
var supplementaryCosmeticShapeKeys = []model.CanonicalKey{
	model.CanonicalKeyFaceWidth,
	model.CanonicalKeyJawWidth,
	model.CanonicalKeyCheekFullness,
	model.CanonicalKeyEyeSize,
	model.CanonicalKeyLipFullness,
}

// BuildGenderPolicies は性別マッピング表から両性別分のポリシー集合を構築する。
// morph_values の欠落・不正は model.InvalidMappingError として返す。
func BuildGenderPolicies(table *bodyconf.GenderMappingTable) (*model.PolicySet, error) {
	if table == nil {
		return nil, model.NewInvalidMapping("性別マッピング表が未指定です", nil)
	}
	policies := map[model.Gender]*model.GenderPolicy{}
	for _, gender := range []model.Gender{model.GenderMale, model.GenderFemale} {
		policy, err := buildGenderPolicy(table, gender)
		if err != nil {
			return nil, err
		}
		policies[gender] = policy
		logPolicyInfo(policyInfoDoneFormat, table.MappingVersion, gender,
			len(policy.RequiredKeys), len(policy.OptionalKeys), countBannedKeys(policy))
	}
	return model.NewPolicySet(table.MappingVersion, policies)
}

// buildGenderPolicy は1性別分のポリシーを構築する。
func buildGenderPolicy(table *bodyconf.GenderMappingTable, gender model.Gender) (*model.GenderPolicy, error) {
	morphRanges, exists := table.MorphRanges[gender]
	if !exists || len(morphRanges) == 0 {
		return nil, model.NewInvalidMapping("morph_values が未定義です: gender=%s", nil, gender)
	}
	policy := &model.GenderPolicy{
		Gender:         gender,
		MappingVersion: table.MappingVersion,
		RequiredKeys:   map[model.CanonicalKey]bool{},
		OptionalKeys:   map[model.CanonicalKey]bool{},
		Ranges:         map[model.CanonicalKey]model.ValueRange{},
		LimbRanges:     map[model.LimbKey]model.ValueRange{},
	}
	for rawKey, valueRange := range morphRanges {
		key := CanonicalizeShapeKey(rawKey)
		if key == "" {
			return nil, model.NewInvalidMapping("morph_values に空キーが含まれています: gender=%s", nil, gender)
		}
		if _, duplicated := policy.Ranges[key]; duplicated {
			return nil, model.NewInvalidMapping("morph_values のキーが正規化後に重複しています: gender=%s key=%s", nil, gender, key)
		}
		policy.Ranges[key] = valueRange
		// 禁止レンジ (0,0) は構造的無効化の表明であり、必須にはしない。
		if valueRange.IsBanned() {
			policy.OptionalKeys[key] = true
		} else {
			policy.RequiredKeys[key] = true
		}
	}
	for _, key := range supplementaryCosmeticShapeKeys {
		if _, exists := policy.Ranges[key]; !exists {
			policy.Ranges[key] = cosmeticShapeKeyDefaultRange
		}
		if !policy.RequiredKeys[key] {
			policy.OptionalKeys[key] = true
		}
	}
	for rawKey, valueRange := range table.LimbRanges[gender] {
		key := CanonicalizeLimbKey(rawKey)
		if key == "" {
			return nil, model.NewInvalidMapping("limb_masses に空キーが含まれています: gender=%s", nil, gender)
		}
		policy.LimbRanges[key] = valueRange
	}
	return policy, nil
}

// countBannedKeys は禁止レンジのキー数を数える。ログ用。
func countBannedKeys(policy *model.GenderPolicy) int {
	count := 0
	for _, valueRange := range policy.Ranges {
		if valueRange.IsBanned() {
			count++
		}
	}
	return count
}

// PolicyCache はマッピング版数ごとのポリシー集合キャッシュを表す。
// 取得時は深い複製を返し、呼び出し側での書き換えがキャッシュへ波及しないようにする。
type PolicyCache struct {
	mu      sync.Mutex
	entries map[string]*model.PolicySet
}

// NewPolicyCache はPolicyCacheを生成する。
func NewPolicyCache() *PolicyCache {
	return &PolicyCache{entries: map[string]*model.PolicySet{}}
}

// Resolve は版数一致のキャッシュ済みポリシー集合を返し、なければ構築して保持する。
func (c *PolicyCache) Resolve(table *bodyconf.GenderMappingTable) (*model.PolicySet, error) {
	if table == nil {
		return nil, model.NewInvalidMapping("性別マッピング表が未指定です", nil)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	cached, exists := c.entries[table.MappingVersion]
	if !exists {
		built, err := BuildGenderPolicies(table)
		if err != nil {
			return nil, err
		}
		c.entries[table.MappingVersion] = built
		cached = built
	}
	cloned, err := cached.Clone()
	if err != nil {
		return nil, fmt.Errorf("体型ポリシーの複製に失敗しました: %w", err)
	}
	return cloned, nil
}

// CachedVersions は保持中のマッピング版数一覧を返す。
func (c *PolicyCache) CachedVersions() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	versions := make([]string, 0, len(c.entries))
	for version := range c.entries {
		versions = append(versions, version)
	}
	return versions
}
