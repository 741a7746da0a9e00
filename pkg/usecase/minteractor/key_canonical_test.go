// 指示: miu200521358
package minteractor

import (
	"testing"

	"github.com/miu200521358/mu_shape_resolver/pkg/domain/model"
)

func TestCanonicalizeShapeKeyConvertsSeparatorStyles(t *testing.T) {
	cases := []struct {
		raw  string
		want model.CanonicalKey
	}{
		{"shoulder_width", model.CanonicalKeyShoulderWidth},
		{"shoulder-width", model.CanonicalKeyShoulderWidth},
		{"Shoulder Width", model.CanonicalKeyShoulderWidth},
		{"shoulderWidth", model.CanonicalKeyShoulderWidth},
		{"ShoulderWidth", model.CanonicalKeyShoulderWidth},
	}
	for _, c := range cases {
		if got := CanonicalizeShapeKey(c.raw); got != c.want {
			t.Fatalf("canonicalize %q: got=%s want=%s", c.raw, got, c.want)
		}
	}
}

func TestCanonicalizeShapeKeyStripsSourcePrefixes(t *testing.T) {
	cases := []struct {
		raw  string
		want model.CanonicalKey
	}{
		{"shape_waist_width", model.CanonicalKeyWaistWidth},
		{"blendShape.waistWidth", model.CanonicalKeyWaistWidth},
		{"scan_hip_width", model.CanonicalKeyHipWidth},
		{"avatar_belly_size", model.CanonicalKeyBellySize},
	}
	for _, c := range cases {
		if got := CanonicalizeShapeKey(c.raw); got != c.want {
			t.Fatalf("canonicalize %q: got=%s want=%s", c.raw, got, c.want)
		}
	}
}

func TestCanonicalizeShapeKeyAppliesSpellingCorrections(t *testing.T) {
	cases := []struct {
		raw  string
		want model.CanonicalKey
	}{
		{"bodybuildersize", model.CanonicalKeyBodybuilderSize},
		{"body_builder_size", model.CanonicalKeyBodybuilderSize},
		{"hour_glass_figure", model.CanonicalKeyHourglassFigure},
		{"sholder_width", model.CanonicalKeyShoulderWidth},
		{"waist_size", model.CanonicalKeyWaistWidth},
	}
	for _, c := range cases {
		if got := CanonicalizeShapeKey(c.raw); got != c.want {
			t.Fatalf("canonicalize %q: got=%s want=%s", c.raw, got, c.want)
		}
	}
}

func TestCanonicalizeShapeKeyKeepsBodyPrefixedIdentity(t *testing.T) {
	// body_ は正規キー自体の先頭語であり、接頭辞として剥がしてはならない。
	cases := []struct {
		raw  string
		want model.CanonicalKey
	}{
		{"body_fat", model.CanonicalKeyBodyFat},
		{"bodyFat", model.CanonicalKeyBodyFat},
		{"bodyfat", model.CanonicalKeyBodyFat},
		{"body_builder_size", model.CanonicalKeyBodybuilderSize},
		{"bodybuilder_size", model.CanonicalKeyBodybuilderSize},
	}
	for _, c := range cases {
		if got := CanonicalizeShapeKey(c.raw); got != c.want {
			t.Fatalf("canonicalize %q: got=%s want=%s", c.raw, got, c.want)
		}
	}
}

func TestCanonicalizeShapeKeyFoldsFullWidthInput(t *testing.T) {
	if got := CanonicalizeShapeKey("ｓｈｏｕｌｄｅｒ＿ｗｉｄｔｈ"); got != model.CanonicalKeyShoulderWidth {
		t.Fatalf("full-width input should fold: got=%s", got)
	}
}

func TestCanonicalizeShapeKeyKeepsUnknownKeysBestEffort(t *testing.T) {
	if got := CanonicalizeShapeKey("mystery_slider_42"); got != model.CanonicalKey("mysterySlider42") {
		t.Fatalf("unknown key should pass through in canonical form: got=%s", got)
	}
	if got := CanonicalizeShapeKey("   "); got != model.CanonicalKey("") {
		t.Fatalf("blank input should canonicalize to empty: got=%q", got)
	}
}

func TestCanonicalizeLimbKeyCorrectionsAndPrefixes(t *testing.T) {
	cases := []struct {
		raw  string
		want model.LimbKey
	}{
		{"limb_upper_arm", model.LimbKeyArm},
		{"mass_fore_arm", model.LimbKeyForearm},
		{"upper_leg", model.LimbKeyThigh},
		{"shin", model.LimbKeyCalf},
		{"chest", model.LimbKeyTorso},
		{"pelvis", model.LimbKeyHip},
		{"thigh", model.LimbKeyThigh},
	}
	for _, c := range cases {
		if got := CanonicalizeLimbKey(c.raw); got != c.want {
			t.Fatalf("canonicalize limb %q: got=%s want=%s", c.raw, got, c.want)
		}
	}
}

func TestCanonicalKeyTargetNameRoundTrip(t *testing.T) {
	for key := range shapeKeyTargetNames {
		canonical := CanonicalizeShapeKey(key.String())
		targetName, ok := CanonicalKeyToTargetName(canonical)
		if !ok {
			t.Fatalf("mapped key should resolve a target name: key=%s", canonical)
		}
		back, ok := CanonicalKeyFromTargetName(targetName)
		if !ok {
			t.Fatalf("target name should resolve back: name=%s", targetName)
		}
		if back != canonical {
			t.Fatalf("round trip mismatch: key=%s name=%s back=%s", canonical, targetName, back)
		}
	}
}

func TestCanonicalKeyToTargetNameUnknownKeyReturnsFalse(t *testing.T) {
	if name, ok := CanonicalKeyToTargetName(model.CanonicalKey("mysterySlider42")); ok {
		t.Fatalf("unknown key must not fabricate a target name: got=%s", name)
	}
	if key, ok := CanonicalKeyFromTargetName("存在しないモーフ"); ok {
		t.Fatalf("unknown target name must not resolve: got=%s", key)
	}
}

func TestShapeKeyPriorityTiers(t *testing.T) {
	if got := ShapeKeyPriority(model.CanonicalKeyShoulderWidth); got != model.StreamPriorityStructural {
		t.Fatalf("shoulderWidth should be structural: got=%s", got)
	}
	if got := ShapeKeyPriority(model.CanonicalKeyBreastSize); got != model.StreamPriorityDetail {
		t.Fatalf("breastSize should be detail: got=%s", got)
	}
	if got := ShapeKeyPriority(model.CanonicalKeyEyeSize); got != model.StreamPriorityFine {
		t.Fatalf("eyeSize should be fine: got=%s", got)
	}
	if got := ShapeKeyPriority(model.CanonicalKey("mysterySlider42")); got != model.StreamPriorityFine {
		t.Fatalf("unknown key should be fine tier: got=%s", got)
	}
}
