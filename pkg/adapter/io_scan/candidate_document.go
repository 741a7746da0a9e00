// 指示: miu200521358
// Package io_scan はスキャンパイプラインが出力する候補体型文書の読込を提供する。
package io_scan

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/miu200521358/mu_shape_resolver/pkg/domain/model"
	"github.com/miu200521358/mu_shape_resolver/pkg/shared/base/logging"
)

// CandidateDocument は候補体型文書の読込結果を表す。
// キーは入力綴りのまま保持し、正規化は利用側で行う。
type CandidateDocument struct {
	Gender              model.Gender
	Candidates          []model.ArchetypeCandidate
	Measurements        map[string]float64
	ClassificationHints []string
}

// candidateDocumentJSON は候補体型文書JSONのトップレベル要素を表す。
type candidateDocumentJSON struct {
	Gender              string               `json:"gender"`
	Candidates          []candidateEntryJSON `json:"candidates"`
	Measurements        map[string]float64   `json:"measurements"`
	ClassificationHints []string             `json:"classification_hints"`
}

// candidateEntryJSON は1候補分のJSON要素を表す。
type candidateEntryJSON struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Distance    float64            `json:"distance"`
	ShapeValues map[string]float64 `json:"shape_values"`
	LimbMasses  map[string]float64 `json:"limb_masses"`
}

// CandidateDocumentRepository は候補体型文書の読み込み契約を表す。
type CandidateDocumentRepository struct{}

// NewCandidateDocumentRepository はCandidateDocumentRepositoryを生成する。
func NewCandidateDocumentRepository() *CandidateDocumentRepository {
	return &CandidateDocumentRepository{}
}

// CanLoad は拡張子に応じて読み込み可否を判定する。
func (r *CandidateDocumentRepository) CanLoad(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// Load は候補体型文書を読み込む。
func (r *CandidateDocumentRepository) Load(path string) (*CandidateDocument, error) {
	if !r.CanLoad(path) {
		return nil, fmt.Errorf("候補体型文書の拡張子が不正です: %s", path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("候補体型文書の読み取りに失敗しました: %w", err)
	}
	document, err := ParseCandidateDocument(b)
	if err != nil {
		return nil, err
	}
	logScanInfo("候補体型文書読込完了: file=%s gender=%s candidates=%d",
		filepath.Base(path), document.Gender, len(document.Candidates))
	return document, nil
}

// ParseCandidateDocument は候補体型文書JSONを解析・検証する。
func ParseCandidateDocument(data []byte) (*CandidateDocument, error) {
	doc := candidateDocumentJSON{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("候補体型文書の解析に失敗しました: %w", err)
	}
	gender, err := model.ParseGender(doc.Gender)
	if err != nil {
		return nil, err
	}
	if len(doc.Candidates) == 0 {
		return nil, model.NewEmptyCandidates("候補体型文書に候補がありません", nil)
	}
	document := &CandidateDocument{
		Gender:              gender,
		Candidates:          make([]model.ArchetypeCandidate, 0, len(doc.Candidates)),
		Measurements:        doc.Measurements,
		ClassificationHints: doc.ClassificationHints,
	}
	for i, entry := range doc.Candidates {
		if strings.TrimSpace(entry.ID) == "" {
			return nil, fmt.Errorf("候補IDが未指定です: index=%d", i)
		}
		if entry.Distance < 0 || math.IsNaN(entry.Distance) || math.IsInf(entry.Distance, 0) {
			return nil, fmt.Errorf("候補距離が不正です: id=%s distance=%v", entry.ID, entry.Distance)
		}
		candidate := model.ArchetypeCandidate{
			ID:          entry.ID,
			Name:        entry.Name,
			Distance:    entry.Distance,
			ShapeValues: make(map[model.CanonicalKey]float64, len(entry.ShapeValues)),
			LimbMasses:  make(map[model.LimbKey]float64, len(entry.LimbMasses)),
		}
		for key, value := range entry.ShapeValues {
			candidate.ShapeValues[model.CanonicalKey(key)] = value
		}
		for key, value := range entry.LimbMasses {
			candidate.LimbMasses[model.LimbKey(key)] = value
		}
		document.Candidates = append(document.Candidates, candidate)
	}
	return document, nil
}

// logScanInfo は候補文書読込のINFOログを出力する。
func logScanInfo(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Info(format, params...)
}
