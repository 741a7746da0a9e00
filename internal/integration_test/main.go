// 指示: miu200521358
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/miu200521358/mu_shape_resolver/pkg/adapter/io_config/bodyconf"
	"github.com/miu200521358/mu_shape_resolver/pkg/adapter/io_result"
	"github.com/miu200521358/mu_shape_resolver/pkg/adapter/io_scan"
	"github.com/miu200521358/mu_shape_resolver/pkg/adapter/mtarget"
	"github.com/miu200521358/mu_shape_resolver/pkg/usecase/minteractor"
)

const (
	batchOutputDirMode = 0o755
)

var targetDocumentPaths = []string{
	"fixtures/female_standard.json",
	"fixtures/male_bodybuilder.json",
	// "E:/MMD_E/202101_scan/candidates/female_pear_01.json",
	// "E:/MMD_E/202101_scan/candidates/female_hourglass_02.json",
	// "E:/MMD_E/202101_scan/candidates/male_apple_01.json",
}

// batchConfig はバッチ解決の実行設定を表す。
type batchConfig struct {
	OutputRoot string
	DryRun     bool
	FailFast   bool
}

// resolutionEntry は1文書分の解決入力情報を表す。
type resolutionEntry struct {
	Index      int
	SourcePath string
	CaseName   string
	CaseDir    string
	OutputPath string
}

// resolutionResult は1文書分の解決結果を表す。
type resolutionResult struct {
	Entry         resolutionEntry
	Status        string
	Duration      time.Duration
	Err           error
	StageInfo     string
	MorphApplied  int
	BoneTargets   int
	WarningCount  int
	EnvelopeUsed  string
	StreamBatches int
}

// resolveProgressCollector は Resolve の進捗イベントを収集する。
type resolveProgressCollector struct {
	eventCounts  map[minteractor.ResolveProgressEventType]int
	warningMax   int
	boneTotal    int
	taskTotal    int
	skipReasons  []string
	candidateMax int
}

// main は候補体型文書の一括解決を実行する。
func main() {
	os.Exit(run())
}

// run は実行設定を解決して一括解決を実行し、終了コードを返す。
func run() int {
	config, err := parseBatchConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "設定解析に失敗しました: %v\n", err)
		return 2
	}
	entries := buildResolutionEntries(config.OutputRoot, targetDocumentPaths)
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "解決対象文書がありません")
		return 2
	}

	results := executeBatchResolution(config, entries)
	printBatchSummary(results)

	hasFailed := false
	for _, result := range results {
		if result.Status == "failed" {
			hasFailed = true
			break
		}
	}
	if hasFailed {
		return 1
	}
	return 0
}

// parseBatchConfig はコマンドライン引数から実行設定を構築する。
func parseBatchConfig() (batchConfig, error) {
	defaultOutputRoot, err := resolveDefaultOutputRoot()
	if err != nil {
		return batchConfig{}, err
	}
	outputRoot := flag.String("output-root", defaultOutputRoot, "解決結果の出力ルートディレクトリ")
	dryRun := flag.Bool("dry-run", false, "実解決せず、入力解決と出力先計画のみ表示する")
	failFast := flag.Bool("fail-fast", false, "失敗時に即時終了する")
	flag.Parse()

	trimmedOutputRoot := strings.TrimSpace(*outputRoot)
	if trimmedOutputRoot == "" {
		return batchConfig{}, errors.New("output-root が空です")
	}
	return batchConfig{
		OutputRoot: filepath.Clean(trimmedOutputRoot),
		DryRun:     *dryRun,
		FailFast:   *failFast,
	}, nil
}

// resolveDefaultOutputRoot はスクリプト配置ディレクトリ基準の既定出力先を返す。
func resolveDefaultOutputRoot() (string, error) {
	_, currentFilePath, _, ok := runtime.Caller(0)
	if !ok {
		return "", errors.New("実行ファイル位置を取得できません")
	}
	currentDir := filepath.Dir(currentFilePath)
	return filepath.Join(currentDir, "output"), nil
}

// resolveScriptRelativePath は相対パスをスクリプト配置ディレクトリ基準で解決する。
func resolveScriptRelativePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	_, currentFilePath, _, ok := runtime.Caller(0)
	if !ok {
		return path
	}
	return filepath.Join(filepath.Dir(currentFilePath), path)
}

// buildResolutionEntries は入力パス一覧から解決対象エントリを生成する。
func buildResolutionEntries(outputRoot string, inputPaths []string) []resolutionEntry {
	entries := make([]resolutionEntry, 0, len(inputPaths))
	for i, rawPath := range inputPaths {
		resolvedInputPath := normalizeInputPath(rawPath)
		caseName := resolveCaseName(rawPath)
		safeCaseName := sanitizePathComponent(caseName)
		caseDirName := fmt.Sprintf("%03d_%s", i+1, safeCaseName)
		caseDir := filepath.Join(outputRoot, caseDirName)
		outputPath := filepath.Join(caseDir, safeCaseName+"_result.json")
		entries = append(entries, resolutionEntry{
			Index:      i + 1,
			SourcePath: resolvedInputPath,
			CaseName:   caseName,
			CaseDir:    caseDir,
			OutputPath: outputPath,
		})
	}
	return entries
}

// executeBatchResolution は全文書の解決処理を順次実行する。
func executeBatchResolution(config batchConfig, entries []resolutionEntry) []resolutionResult {
	usecase, err := buildBatchUsecase()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ユースケース構築に失敗しました: %v\n", err)
		return nil
	}

	results := make([]resolutionResult, 0, len(entries))
	total := len(entries)
	for _, entry := range entries {
		fmt.Printf("[%d/%d] 解決開始: case=%s\n", entry.Index, total, entry.CaseName)
		result := resolveDocumentEntry(usecase, config, entry)
		results = append(results, result)
		switch result.Status {
		case "succeeded":
			fmt.Printf("[%d/%d] 解決成功: case=%s output=%s elapsed=%s\n", entry.Index, total, entry.CaseName, entry.OutputPath, result.Duration.Round(time.Millisecond))
			fmt.Printf("[%d/%d] 適用結果: morphs=%d bones=%d warnings=%d envelope=%s batches=%d\n", entry.Index, total, result.MorphApplied, result.BoneTargets, result.WarningCount, result.EnvelopeUsed, result.StreamBatches)
			if strings.TrimSpace(result.StageInfo) != "" {
				fmt.Printf("[%d/%d] Resolve進捗: %s\n", entry.Index, total, result.StageInfo)
			}
		case "dry_run":
			fmt.Printf("[%d/%d] DRY-RUN: case=%s input=%s output=%s\n", entry.Index, total, entry.CaseName, entry.SourcePath, entry.OutputPath)
		case "skipped_missing":
			fmt.Printf("[%d/%d] 入力不足でスキップ: case=%s input=%s reason=%v\n", entry.Index, total, entry.CaseName, entry.SourcePath, result.Err)
		default:
			fmt.Printf("[%d/%d] 解決失敗: case=%s reason=%v\n", entry.Index, total, entry.CaseName, result.Err)
			if config.FailFast {
				return results
			}
		}
	}
	return results
}

// buildBatchUsecase は内蔵既定設定でShapeResolveUsecaseを構築する。
func buildBatchUsecase() (*minteractor.ShapeResolveUsecase, error) {
	table, err := bodyconf.LoadDefaultGenderMapping()
	if err != nil {
		return nil, err
	}
	policies, err := minteractor.BuildGenderPolicies(table)
	if err != nil {
		return nil, err
	}
	boneConfig, err := bodyconf.LoadDefaultBoneScaling()
	if err != nil {
		return nil, err
	}
	// 補正サービスはバッチ検証では使わない。常にブレンド結果で確定する。
	return minteractor.NewShapeResolveUsecase(policies, boneConfig, nil,
		minteractor.MorphStreamOptions{BatchSize: 4, SmoothingSteps: 2})
}

// resolveDocumentEntry は1文書分の解決を実行する。
func resolveDocumentEntry(usecase *minteractor.ShapeResolveUsecase, config batchConfig, entry resolutionEntry) resolutionResult {
	result := resolutionResult{
		Entry:  entry,
		Status: "failed",
	}
	if _, err := os.Stat(entry.SourcePath); err != nil {
		result.Status = "skipped_missing"
		result.Err = err
		return result
	}
	if config.DryRun {
		result.Status = "dry_run"
		return result
	}
	if err := os.MkdirAll(entry.CaseDir, batchOutputDirMode); err != nil {
		result.Err = fmt.Errorf("出力ディレクトリ作成に失敗しました: %w", err)
		return result
	}

	startedAt := time.Now()
	document, err := io_scan.NewCandidateDocumentRepository().Load(entry.SourcePath)
	if err != nil {
		result.Err = fmt.Errorf("候補体型文書読み込みに失敗しました: %w", err)
		return result
	}

	progressCollector := newResolveProgressCollector()
	mesh := mtarget.NewMemoryAvatarMesh(minteractor.KnownMorphTargetNames(), mtarget.DefaultHumanoidBoneNames())
	resolved, err := usecase.Resolve(context.Background(), minteractor.ResolveRequest{
		Gender:              document.Gender,
		Candidates:          document.Candidates,
		Measurements:        document.Measurements,
		ClassificationHints: document.ClassificationHints,
		Mesh:                mesh,
		BoneWriter:          mesh,
		SkipRefinement:      true,
		ProgressReporter:    progressCollector,
	})
	if err != nil {
		result.Err = fmt.Errorf("Resolveに失敗しました: %w", err)
		return result
	}
	if resolved == nil || resolved.Parameters == nil {
		result.Err = errors.New("Resolve結果が空です")
		return result
	}
	if resolved.StreamSession != nil {
		for resolved.StreamSession.Tick() {
		}
		result.StreamBatches = resolved.StreamSession.BatchCount()
	}

	resultDocument := io_result.BuildResultDocument(
		resolved.ResolutionID,
		resolved.Gender,
		resolved.Parameters,
		resolved.BlendWeights,
		resolved.Confidence,
		resolved.QualityScore,
		resolved.Refined,
		resolved.RefinementSkippedReason,
		resolved.EnvelopeSource,
		resolved.BoneScales,
	)
	if err := io_result.NewResultDocumentRepository().Save(entry.OutputPath, resultDocument); err != nil {
		result.Err = fmt.Errorf("結果書き出しに失敗しました: %w", err)
		return result
	}

	result.Status = "succeeded"
	result.Duration = time.Since(startedAt)
	result.StageInfo = progressCollector.Summary()
	result.MorphApplied = mesh.MorphWriteCount()
	result.BoneTargets = len(resolved.BoneScales)
	result.WarningCount = resolved.Parameters.WarningCount()
	result.EnvelopeUsed = resolved.EnvelopeSource
	return result
}

// printBatchSummary は解決結果の集計を標準出力へ表示する。
func printBatchSummary(results []resolutionResult) {
	succeeded := 0
	failed := 0
	skipped := 0
	dryRun := 0
	for _, result := range results {
		switch result.Status {
		case "succeeded":
			succeeded++
		case "dry_run":
			dryRun++
		case "skipped_missing":
			skipped++
		default:
			failed++
		}
	}
	fmt.Printf(
		"バッチ解決サマリ: total=%d succeeded=%d failed=%d skipped_missing=%d dry_run=%d\n",
		len(results),
		succeeded,
		failed,
		skipped,
		dryRun,
	)
}

// resolveCaseName は入力パスから拡張子を除いたケース名を返す。
func resolveCaseName(path string) string {
	base := strings.TrimSpace(filepath.Base(path))
	ext := filepath.Ext(base)
	name := strings.TrimSpace(strings.TrimSuffix(base, ext))
	if name == "" {
		return "case"
	}
	return name
}

// normalizeInputPath は入力パスを実行環境向けに正規化する。
func normalizeInputPath(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return ""
	}
	converted := convertWindowsPathToWsl(trimmed)
	if !filepath.IsAbs(converted) && !strings.Contains(converted, ":") {
		converted = resolveScriptRelativePath(converted)
	}
	return filepath.Clean(converted)
}

// convertWindowsPathToWsl は Linux 実行時に Windows パスを WSL パスへ変換する。
func convertWindowsPathToWsl(path string) string {
	trimmed := strings.TrimSpace(path)
	if runtime.GOOS != "linux" {
		return trimmed
	}
	if len(trimmed) < 2 || trimmed[1] != ':' {
		return trimmed
	}
	drive := strings.ToLower(trimmed[:1])
	rest := strings.ReplaceAll(trimmed[2:], "\\", "/")
	if rest == "" {
		return filepath.ToSlash(filepath.Join("/mnt", drive))
	}
	if !strings.HasPrefix(rest, "/") {
		rest = "/" + rest
	}
	return filepath.ToSlash(filepath.Join("/mnt", drive) + rest)
}

// sanitizePathComponent は出力ディレクトリ/ファイル名に使えない文字を置換する。
func sanitizePathComponent(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "case"
	}
	replaced := strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', ':', '"', '/', '\\', '|', '?', '*':
			return '_'
		default:
			if r < 0x20 {
				return '_'
			}
			return r
		}
	}, trimmed)
	replaced = strings.Trim(replaced, " .")
	if replaced == "" {
		return "case"
	}
	return replaced
}

// newResolveProgressCollector は Resolve 進捗収集器を生成する。
func newResolveProgressCollector() *resolveProgressCollector {
	return &resolveProgressCollector{
		eventCounts: map[minteractor.ResolveProgressEventType]int{},
	}
}

// ReportResolveProgress は Resolve の進捗イベントを収集する。
func (collector *resolveProgressCollector) ReportResolveProgress(event minteractor.ResolveProgressEvent) {
	if collector == nil {
		return
	}
	if collector.eventCounts == nil {
		collector.eventCounts = map[minteractor.ResolveProgressEventType]int{}
	}
	collector.eventCounts[event.Type]++
	if event.WarningCount > collector.warningMax {
		collector.warningMax = event.WarningCount
	}
	if event.CandidateCount > collector.candidateMax {
		collector.candidateMax = event.CandidateCount
	}
	collector.boneTotal += event.BoneCount
	collector.taskTotal += event.TaskCount
	if strings.TrimSpace(event.Reason) != "" {
		collector.skipReasons = append(collector.skipReasons, event.Reason)
	}
}

// Summary は収集した Resolve 進捗の要約文字列を返す。
func (collector *resolveProgressCollector) Summary() string {
	if collector == nil || len(collector.eventCounts) == 0 {
		return ""
	}
	types := make([]string, 0, len(collector.eventCounts))
	for stageType := range collector.eventCounts {
		types = append(types, string(stageType))
	}
	sort.Strings(types)
	summary := fmt.Sprintf(
		"events=%d candidates=%d warningMax=%d bones=%d tasks=%d stages=%s",
		len(collector.eventCounts),
		collector.candidateMax,
		collector.warningMax,
		collector.boneTotal,
		collector.taskTotal,
		strings.Join(types, ","),
	)
	if len(collector.skipReasons) > 0 {
		summary += " skips=" + strings.Join(collector.skipReasons, ",")
	}
	return summary
}
