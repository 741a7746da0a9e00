// 指示: miu200521358
package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseOptionsWithFlags(t *testing.T) {
	errBuf := bytes.NewBuffer(nil)
	opts, err := parseOptions([]string{"-in", "candidates.json", "-out", "result.json", "-skip-refine"}, errBuf)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if opts.candidatePath != "candidates.json" {
		t.Fatalf("candidatePath mismatch: %s", opts.candidatePath)
	}
	if opts.outputPath != "result.json" {
		t.Fatalf("outputPath mismatch: %s", opts.outputPath)
	}
	if !opts.skipRefine {
		t.Fatalf("skipRefine should be true")
	}
}

func TestParseOptionsWithPositionals(t *testing.T) {
	errBuf := bytes.NewBuffer(nil)
	opts, err := parseOptions([]string{"candidates.json", "result.json"}, errBuf)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if opts.candidatePath != "candidates.json" {
		t.Fatalf("candidatePath mismatch: %s", opts.candidatePath)
	}
	if opts.outputPath != "result.json" {
		t.Fatalf("outputPath mismatch: %s", opts.outputPath)
	}
}

func TestParseOptionsRequireJSONExt(t *testing.T) {
	errBuf := bytes.NewBuffer(nil)
	_, err := parseOptions([]string{"-in", "candidates.yaml"}, errBuf)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), ".json") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestResolveOutputPathDefault(t *testing.T) {
	out, err := resolveOutputPath(filepath.Join("work", "candidates.json"), "")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if out != filepath.Join("work", "candidates_result.json") {
		t.Fatalf("unexpected output path: %s", out)
	}
}

func TestResolveOutputPathRejectsExt(t *testing.T) {
	if _, err := resolveOutputPath("candidates.json", "result.yaml"); err == nil {
		t.Fatalf("expected error")
	}
}

const cliCandidateFixture = `{
	"gender": "female",
	"candidates": [
		{
			"id": "arch-01",
			"name": "標準体型",
			"distance": 0.1,
			"shape_values": {"breast_size": 0.6, "waist_width": -0.3, "pear_figure": 0.5},
			"limb_masses": {"thigh": 1.2, "torso": 1.1}
		},
		{
			"id": "arch-02",
			"name": "細身体型",
			"distance": 0.5,
			"shape_values": {"breast_size": 0.2, "waist_width": -0.6, "pear_figure": 0.2},
			"limb_masses": {"thigh": 0.9, "torso": 0.95}
		}
	],
	"measurements": {"height_cm": 160.0}
}`

func TestRunResolvesCandidateDocument(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "candidates.json")
	if err := os.WriteFile(inputPath, []byte(cliCandidateFixture), 0o644); err != nil {
		t.Fatalf("fixture write failed: %v", err)
	}
	outputPath := filepath.Join(dir, "result.json")

	outBuf := bytes.NewBuffer(nil)
	errBuf := bytes.NewBuffer(nil)
	if err := run([]string{"-in", inputPath, "-out", outputPath, "-skip-refine"}, outBuf, errBuf); err != nil {
		t.Fatalf("run failed: %v (stderr=%s)", err, errBuf.String())
	}

	if !strings.Contains(outBuf.String(), "解決完了") {
		t.Fatalf("summary missing: %s", outBuf.String())
	}
	b, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("result read failed: %v", err)
	}
	result := map[string]any{}
	if err := json.Unmarshal(b, &result); err != nil {
		t.Fatalf("result parse failed: %v", err)
	}
	if result["gender"] != "female" {
		t.Fatalf("gender mismatch: %v", result["gender"])
	}
	if refined, ok := result["refined"].(bool); !ok || refined {
		t.Fatalf("refined should be false when skipped: %v", result["refined"])
	}
	weights, ok := result["blend_weights"].([]any)
	if !ok || len(weights) == 0 {
		t.Fatalf("blend_weights missing: %v", result["blend_weights"])
	}
}

func TestRunRejectsMissingInput(t *testing.T) {
	outBuf := bytes.NewBuffer(nil)
	errBuf := bytes.NewBuffer(nil)
	if err := run([]string{}, outBuf, errBuf); err == nil {
		t.Fatalf("expected error")
	}
}
