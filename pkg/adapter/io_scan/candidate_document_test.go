// 指示: miu200521358
package io_scan

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/miu200521358/mu_shape_resolver/pkg/domain/model"
)

func writeCandidateDocumentFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("フィクスチャ書き込みに失敗: %v", err)
	}
	return path
}

const validCandidateDocumentJSON = `{
	"gender": "female",
	"candidates": [
		{
			"id": "arch-01",
			"name": "標準体型",
			"distance": 0.12,
			"shape_values": {"BustSize": 0.4, "waistWidth": -0.2},
			"limb_masses": {"thigh": 1.1}
		},
		{
			"id": "arch-02",
			"name": "細身体型",
			"distance": 0.35,
			"shape_values": {"bustSize": 0.1},
			"limb_masses": {"calf": 0.9}
		}
	],
	"measurements": {"height_cm": 158.0, "bust_cm": 84.0},
	"classification_hints": ["slim", "athletic"]
}`

func TestCandidateDocumentRepository_CanLoad(t *testing.T) {
	r := NewCandidateDocumentRepository()
	cases := []struct {
		path string
		want bool
	}{
		{path: "scan/candidates.json", want: true},
		{path: "scan/CANDIDATES.JSON", want: true},
		{path: "scan/candidates.yaml", want: false},
		{path: "scan/candidates", want: false},
	}
	for _, c := range cases {
		if got := r.CanLoad(c.path); got != c.want {
			t.Errorf("CanLoad(%s): got=%v want=%v", c.path, got, c.want)
		}
	}
}

func TestCandidateDocumentRepository_Load(t *testing.T) {
	path := writeCandidateDocumentFixture(t, "candidates.json", validCandidateDocumentJSON)

	document, err := NewCandidateDocumentRepository().Load(path)
	if err != nil {
		t.Fatalf("Load に失敗: %v", err)
	}
	if document.Gender != model.GenderFemale {
		t.Errorf("Gender: got=%s want=%s", document.Gender, model.GenderFemale)
	}
	if len(document.Candidates) != 2 {
		t.Fatalf("候補数: got=%d want=2", len(document.Candidates))
	}
	first := document.Candidates[0]
	if first.ID != "arch-01" || first.Distance != 0.12 {
		t.Errorf("先頭候補: got=%+v", first)
	}
	// キーは入力綴りのまま保持される。正規化は利用側の責務。
	if _, ok := first.ShapeValues[model.CanonicalKey("BustSize")]; !ok {
		t.Errorf("入力綴りのキーが保持されていない: %v", first.ShapeValues)
	}
	if got := document.Measurements["height_cm"]; got != 158.0 {
		t.Errorf("measurements: got=%v want=158.0", got)
	}
	if len(document.ClassificationHints) != 2 {
		t.Errorf("classification_hints: got=%v", document.ClassificationHints)
	}
}

func TestCandidateDocumentRepository_LoadRejectsExtension(t *testing.T) {
	path := writeCandidateDocumentFixture(t, "candidates.txt", validCandidateDocumentJSON)
	if _, err := NewCandidateDocumentRepository().Load(path); err == nil {
		t.Fatal("拡張子不正でエラーになるべき")
	}
}

func TestParseCandidateDocument_EmptyCandidates(t *testing.T) {
	_, err := ParseCandidateDocument([]byte(`{"gender": "male", "candidates": []}`))
	if err == nil {
		t.Fatal("候補空でエラーになるべき")
	}
	emptyCandidates := &model.EmptyCandidatesError{}
	if !errors.As(err, &emptyCandidates) {
		t.Errorf("EmptyCandidatesError であるべき: got=%v", err)
	}
}

func TestParseCandidateDocument_InvalidStructure(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{
			name: "JSON破損",
			data: `{"gender": "female"`,
		},
		{
			name: "性別不正",
			data: `{"gender": "unknown", "candidates": [{"id": "a", "distance": 0.1}]}`,
		},
		{
			name: "候補ID空",
			data: `{"gender": "female", "candidates": [{"id": "  ", "distance": 0.1}]}`,
		},
		{
			name: "距離が負",
			data: `{"gender": "female", "candidates": [{"id": "a", "distance": -0.5}]}`,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := ParseCandidateDocument([]byte(c.data)); err == nil {
				t.Fatal("エラーになるべき")
			}
		})
	}
}
