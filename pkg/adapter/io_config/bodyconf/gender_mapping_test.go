// 指示: miu200521358
package bodyconf

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/miu200521358/mu_shape_resolver/pkg/domain/model"
)

// writeGenderMappingForTest は試験用のマッピングJSONを書き出す。
func writeGenderMappingForTest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gender_mapping.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("fixture write should succeed: %v", err)
	}
	return path
}

const validGenderMappingJSON = `{
  "mapping_version": "9.9",
  "genders": {
    "male": {
      "morph_values": {"shoulder_width": {"min": -1, "max": 1}, "nipples": {"min": 0, "max": 0}},
      "limb_masses": {"arm": {"min": 0.5, "max": 1.8}}
    },
    "female": {
      "morph_values": {"shoulder_width": {"min": -1, "max": 0.8}},
      "limb_masses": {"arm": {"min": 0.5, "max": 1.6}}
    }
  }
}`

func TestGenderMappingRepositoryLoad(t *testing.T) {
	path := writeGenderMappingForTest(t, validGenderMappingJSON)
	table, err := NewGenderMappingRepository().Load(path)
	if err != nil {
		t.Fatalf("load should succeed: %v", err)
	}
	if table.MappingVersion != "9.9" {
		t.Fatalf("version mismatch: got=%s", table.MappingVersion)
	}
	if got := table.MorphRanges[model.GenderMale]["nipples"]; !got.IsBanned() {
		t.Fatalf("(0,0) range should load as banned: got=%+v", got)
	}
	if got := table.LimbRanges[model.GenderFemale]["arm"]; got.Max != 1.6 {
		t.Fatalf("female limb range mismatch: got=%+v", got)
	}
}

func TestGenderMappingRepositoryRejectsWrongExtension(t *testing.T) {
	var invalidMapping *model.InvalidMappingError
	if _, err := NewGenderMappingRepository().Load("mapping.yaml"); !errors.As(err, &invalidMapping) {
		t.Fatalf("wrong extension should be InvalidMappingError: got=%v", err)
	}
}

func TestGenderMappingRepositoryFailClosedOnStructure(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"missing gender", `{"mapping_version":"1","genders":{"male":{"morph_values":{"a":{"min":0,"max":1}}}}}`},
		{"missing version", `{"genders":{}}`},
		{"empty morph values", `{"mapping_version":"1","genders":{"male":{"morph_values":{}},"female":{"morph_values":{"a":{"min":0,"max":1}}}}}`},
		{"missing range edge", `{"mapping_version":"1","genders":{"male":{"morph_values":{"a":{"min":0}}},"female":{"morph_values":{"a":{"min":0,"max":1}}}}}`},
		{"inverted range", `{"mapping_version":"1","genders":{"male":{"morph_values":{"a":{"min":2,"max":1}}},"female":{"morph_values":{"a":{"min":0,"max":1}}}}}`},
		{"broken json", `{`},
	}
	for _, c := range cases {
		path := writeGenderMappingForTest(t, c.content)
		var invalidMapping *model.InvalidMappingError
		if _, err := NewGenderMappingRepository().Load(path); !errors.As(err, &invalidMapping) {
			t.Fatalf("%s should be InvalidMappingError: got=%v", c.name, err)
		}
	}
}

func TestLoadDefaultGenderMapping(t *testing.T) {
	table, err := LoadDefaultGenderMapping()
	if err != nil {
		t.Fatalf("embedded default should load: %v", err)
	}
	for _, gender := range []model.Gender{model.GenderMale, model.GenderFemale} {
		if len(table.MorphRanges[gender]) == 0 {
			t.Fatalf("embedded default should carry morph ranges: gender=%s", gender)
		}
		if len(table.LimbRanges[gender]) == 0 {
			t.Fatalf("embedded default should carry limb ranges: gender=%s", gender)
		}
	}
	if !table.MorphRanges[model.GenderMale]["nipples"].IsBanned() {
		t.Fatalf("male nipples should default to a banned range")
	}
}
