// 指示: miu200521358
package model

import "testing"

func TestValidatedParameterSetCloneIsIndependent(t *testing.T) {
	parameterSet := NewValidatedParameterSet()
	parameterSet.ShapeValues[CanonicalKeyWaistWidth] = 0.4
	parameterSet.LimbMasses[LimbKeyThigh] = 1.1
	parameterSet.ClampedKeys = append(parameterSet.ClampedKeys, CanonicalKeyWaistWidth)

	cloned, err := parameterSet.Clone()
	if err != nil {
		t.Fatalf("clone failed: %v", err)
	}
	cloned.ShapeValues[CanonicalKeyWaistWidth] = -0.9
	cloned.LimbMasses[LimbKeyThigh] = 2.0
	cloned.ClampedKeys = append(cloned.ClampedKeys, CanonicalKeyHipWidth)

	if got := parameterSet.ShapeValues[CanonicalKeyWaistWidth]; got != 0.4 {
		t.Fatalf("clone should not share shape values: got=%v want=%v", got, 0.4)
	}
	if got := parameterSet.LimbMasses[LimbKeyThigh]; got != 1.1 {
		t.Fatalf("clone should not share limb masses: got=%v want=%v", got, 1.1)
	}
	if got := len(parameterSet.ClampedKeys); got != 1 {
		t.Fatalf("clone should not share clamped keys: got=%d want=1", got)
	}
}

func TestValidatedParameterSetWarningCount(t *testing.T) {
	parameterSet := NewValidatedParameterSet()
	if got := parameterSet.WarningCount(); got != 0 {
		t.Fatalf("empty set warning count: got=%d want=0", got)
	}
	parameterSet.RejectedKeys = []CanonicalKey{"unknownKey"}
	parameterSet.BannedKeysForced = []CanonicalKey{CanonicalKeyNipples}
	parameterSet.ClampedLimbKeys = []LimbKey{LimbKeyArm, LimbKeyCalf}
	if got := parameterSet.WarningCount(); got != 4 {
		t.Fatalf("warning count mismatch: got=%d want=4", got)
	}
}

func TestParseGender(t *testing.T) {
	if gender, err := ParseGender("female"); err != nil || gender != GenderFemale {
		t.Fatalf("female parse failed: gender=%s err=%v", gender, err)
	}
	if _, err := ParseGender("other"); err == nil {
		t.Fatalf("unknown gender should fail")
	}
}
