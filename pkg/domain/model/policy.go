// 指示: miu200521358
package model

import (
	"math"
	"sort"

	"github.com/tiendc/go-deepcopy"
)

// ValueRange は体型値の許容範囲を表す。Min と Max が共に 0 のキーは
// その性別で構造的に無効化(禁止)されていることを示す。
type ValueRange struct {
	Min float64
	Max float64
}

// IsBanned は禁止レンジ (0,0) かを返す。
func (r ValueRange) IsBanned() bool {
	return r.Min == 0 && r.Max == 0
}

// Contains は値が範囲内かを返す。
func (r ValueRange) Contains(value float64) bool {
	return value >= r.Min && value <= r.Max
}

// Clamp は値を範囲内へ丸める。
func (r ValueRange) Clamp(value float64) float64 {
	if value < r.Min {
		return r.Min
	}
	if value > r.Max {
		return r.Max
	}
	return value
}

// NearestToZero は範囲内で 0 に最も近い値を返す。欠損キーの既定値に使う。
func (r ValueRange) NearestToZero() float64 {
	if r.Contains(0) {
		return 0
	}
	if math.Abs(r.Min) <= math.Abs(r.Max) {
		return r.Min
	}
	return r.Max
}

// Validate は Min <= Max かつ両端が有限値であることを検証する。
func (r ValueRange) Validate() error {
	if math.IsNaN(r.Min) || math.IsInf(r.Min, 0) || math.IsNaN(r.Max) || math.IsInf(r.Max, 0) {
		return NewInvalidMapping("レンジ端が有限値ではありません: min=%v max=%v", nil, r.Min, r.Max)
	}
	if r.Min > r.Max {
		return NewInvalidMapping("レンジの大小関係が不正です: min=%v max=%v", nil, r.Min, r.Max)
	}
	return nil
}

// GenderPolicy は1性別分の体型ポリシーを表す。
type GenderPolicy struct {
	Gender         Gender
	MappingVersion string
	RequiredKeys   map[CanonicalKey]bool
	OptionalKeys   map[CanonicalKey]bool
	Ranges         map[CanonicalKey]ValueRange
	LimbRanges     map[LimbKey]ValueRange
}

// AllowsShapeKey は必須または任意キーとして許可されているかを返す。
func (p *GenderPolicy) AllowsShapeKey(key CanonicalKey) bool {
	if p == nil {
		return false
	}
	return p.RequiredKeys[key] || p.OptionalKeys[key]
}

// ShapeRange はシェイプキーの許容範囲を返す。
func (p *GenderPolicy) ShapeRange(key CanonicalKey) (ValueRange, bool) {
	if p == nil {
		return ValueRange{}, false
	}
	valueRange, ok := p.Ranges[key]
	return valueRange, ok
}

// LimbRange は部位質量キーの許容範囲を返す。
func (p *GenderPolicy) LimbRange(key LimbKey) (ValueRange, bool) {
	if p == nil {
		return ValueRange{}, false
	}
	valueRange, ok := p.LimbRanges[key]
	return valueRange, ok
}

// SortedShapeKeys は必須・任意を合わせたシェイプキーを昇順で返す。
func (p *GenderPolicy) SortedShapeKeys() []CanonicalKey {
	if p == nil {
		return nil
	}
	keys := make([]CanonicalKey, 0, len(p.RequiredKeys)+len(p.OptionalKeys))
	for key := range p.RequiredKeys {
		keys = append(keys, key)
	}
	for key := range p.OptionalKeys {
		if !p.RequiredKeys[key] {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// PolicySet は全性別分のポリシーと性別横断の許可キー集合を表す。
// 許可判定は性別横断の和集合で行い、レンジ適用は対象性別のポリシーで行う。
type PolicySet struct {
	MappingVersion string
	Policies       map[Gender]*GenderPolicy
	ShapeKeyUnion  map[CanonicalKey]bool
	LimbKeyUnion   map[LimbKey]bool
}

// NewPolicySet は両性別のポリシーから PolicySet を構築する。
// どちらかの性別が欠けている場合はマッピング不正として失敗する。
func NewPolicySet(mappingVersion string, policies map[Gender]*GenderPolicy) (*PolicySet, error) {
	for _, gender := range []Gender{GenderMale, GenderFemale} {
		if policies[gender] == nil {
			return nil, NewInvalidMapping("性別ポリシーが不足しています: gender=%s", nil, gender)
		}
	}
	set := &PolicySet{
		MappingVersion: mappingVersion,
		Policies:       policies,
		ShapeKeyUnion:  map[CanonicalKey]bool{},
		LimbKeyUnion:   map[LimbKey]bool{},
	}
	for _, policy := range policies {
		for key := range policy.RequiredKeys {
			set.ShapeKeyUnion[key] = true
		}
		for key := range policy.OptionalKeys {
			set.ShapeKeyUnion[key] = true
		}
		for key := range policy.LimbRanges {
			set.LimbKeyUnion[key] = true
		}
	}
	return set, nil
}

// ForGender は対象性別のポリシーを返す。
func (s *PolicySet) ForGender(gender Gender) (*GenderPolicy, bool) {
	if s == nil {
		return nil, false
	}
	policy, ok := s.Policies[gender]
	return policy, ok
}

// UnionAllowsShapeKey は性別横断の和集合でシェイプキーが許可されているかを返す。
func (s *PolicySet) UnionAllowsShapeKey(key CanonicalKey) bool {
	if s == nil {
		return false
	}
	return s.ShapeKeyUnion[key]
}

// UnionAllowsLimbKey は性別横断の和集合で部位質量キーが許可されているかを返す。
func (s *PolicySet) UnionAllowsLimbKey(key LimbKey) bool {
	if s == nil {
		return false
	}
	return s.LimbKeyUnion[key]
}

// Clone は PolicySet の深い複製を返す。キャッシュ返却時の共有破壊を防ぐ。
func (s *PolicySet) Clone() (*PolicySet, error) {
	if s == nil {
		return nil, nil
	}
	cloned := &PolicySet{}
	if err := deepcopy.Copy(cloned, s); err != nil {
		return nil, err
	}
	return cloned, nil
}
