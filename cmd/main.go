// 指示: miu200521358
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/miu200521358/mu_shape_resolver/pkg/adapter/io_config/bodyconf"
	"github.com/miu200521358/mu_shape_resolver/pkg/adapter/io_result"
	"github.com/miu200521358/mu_shape_resolver/pkg/adapter/io_scan"
	"github.com/miu200521358/mu_shape_resolver/pkg/adapter/mgateway"
	"github.com/miu200521358/mu_shape_resolver/pkg/adapter/mpresenter/messages"
	"github.com/miu200521358/mu_shape_resolver/pkg/adapter/mtarget"
	"github.com/miu200521358/mu_shape_resolver/pkg/infra/base/mlogging"
	"github.com/miu200521358/mu_shape_resolver/pkg/shared/base/logging"
	"github.com/miu200521358/mu_shape_resolver/pkg/usecase/minteractor"
	"github.com/miu200521358/mu_shape_resolver/pkg/usecase/port/mrefine"
)

// options はCLI引数を保持する。
type options struct {
	candidatePath  string
	mappingPath    string
	boneConfigPath string
	outputPath     string
	refineEndpoint string
	refineTimeout  time.Duration
	skipRefine     bool
	batchSize      int
	smoothingSteps int
}

// main は候補体型文書の解決を実行する。
func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run はCLI処理全体を実行する。
func run(args []string, out io.Writer, errOut io.Writer) error {
	opts, err := parseOptions(args, errOut)
	if err != nil {
		return err
	}
	logging.SetDefaultLogger(mlogging.NewLogger(errOut))

	document, err := io_scan.NewCandidateDocumentRepository().Load(opts.candidatePath)
	if err != nil {
		return fmt.Errorf("%s: %w", messages.MessageLoadFailed, err)
	}
	fmt.Fprintf(out, "[mu_shape_resolver] 候補読み込み完了: %s (gender=%s candidates=%d)\n",
		opts.candidatePath, document.Gender, len(document.Candidates))

	table, err := loadGenderMapping(opts.mappingPath)
	if err != nil {
		return fmt.Errorf("%s: %w", messages.MessageConfigFailed, err)
	}
	policies, err := minteractor.BuildGenderPolicies(table)
	if err != nil {
		return fmt.Errorf("%s: %w", messages.MessageConfigFailed, err)
	}
	boneConfig, err := loadBoneScaling(opts.boneConfigPath)
	if err != nil {
		return fmt.Errorf("%s: %w", messages.MessageConfigFailed, err)
	}

	var refiner mrefine.IRefinementService
	if opts.refineEndpoint != "" {
		refiner = mgateway.NewRefineClient(opts.refineEndpoint, opts.refineTimeout)
	}

	usecase, err := minteractor.NewShapeResolveUsecase(policies, boneConfig, refiner,
		minteractor.MorphStreamOptions{
			BatchSize:      opts.batchSize,
			SmoothingSteps: opts.smoothingSteps,
		})
	if err != nil {
		return err
	}

	mesh := mtarget.NewMemoryAvatarMesh(minteractor.KnownMorphTargetNames(), mtarget.DefaultHumanoidBoneNames())
	result, err := usecase.Resolve(context.Background(), minteractor.ResolveRequest{
		Gender:              document.Gender,
		Candidates:          document.Candidates,
		Measurements:        document.Measurements,
		ClassificationHints: document.ClassificationHints,
		Mesh:                mesh,
		BoneWriter:          mesh,
		SkipRefinement:      opts.skipRefine,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", messages.MessageResolveFailed, err)
	}
	if result.RefinementSkippedReason == "service_unreachable" {
		fmt.Fprintf(out, "[mu_shape_resolver] %s\n", messages.MessageRefinementSkipped)
	}

	if result.StreamSession != nil {
		for result.StreamSession.Tick() {
		}
	}

	outputPath, err := resolveOutputPath(opts.candidatePath, opts.outputPath)
	if err != nil {
		return err
	}
	if err := ensureOutputDir(outputPath); err != nil {
		return err
	}
	resultDocument := io_result.BuildResultDocument(
		result.ResolutionID,
		result.Gender,
		result.Parameters,
		result.BlendWeights,
		result.Confidence,
		result.QualityScore,
		result.Refined,
		result.RefinementSkippedReason,
		result.EnvelopeSource,
		result.BoneScales,
	)
	if err := io_result.NewResultDocumentRepository().Save(outputPath, resultDocument); err != nil {
		return fmt.Errorf("%s: %w", messages.MessageSaveFailed, err)
	}

	fmt.Fprintf(out, "[mu_shape_resolver] 解決完了: resolution=%s refined=%t warnings=%d morphs=%d bones=%d\n",
		result.ResolutionID, result.Refined, result.Parameters.WarningCount(),
		mesh.MorphWriteCount(), len(result.BoneScales))
	fmt.Fprintf(out, "[mu_shape_resolver] 結果出力: %s\n", outputPath)
	return nil
}

// parseOptions はCLI引数を解析する。
func parseOptions(args []string, errOut io.Writer) (options, error) {
	fs := flag.NewFlagSet("mu_shape_resolver", flag.ContinueOnError)
	fs.SetOutput(errOut)

	in := fs.String("in", "", "候補体型文書(JSON)のパス")
	mapping := fs.String("mapping", "", "性別マッピング設定のパス(省略時は内蔵既定)")
	bones := fs.String("bones", "", "ボーンスケーリング設定のパス(省略時は内蔵既定)")
	out := fs.String("out", "", "解決結果JSONの出力パス")
	endpoint := fs.String("refine-endpoint", "", "補正サービスのエンドポイントURL(省略時は補正なし)")
	timeout := fs.Duration("refine-timeout", 15*time.Second, "補正サービスのタイムアウト")
	skip := fs.Bool("skip-refine", false, "補正サービスを呼ばずブレンド結果で確定する")
	batch := fs.Int("batch", 0, "モーフストリームの1ティック適用数(0は既定値)")
	smoothing := fs.Int("smoothing", 0, "モーフストリームの補間ティック数")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	if *in == "" && fs.NArg() > 0 {
		*in = fs.Arg(0)
	}
	if *out == "" && fs.NArg() > 1 {
		*out = fs.Arg(1)
	}
	if *in == "" {
		return options{}, fmt.Errorf("%s (-in)", messages.MessageInputRequired)
	}
	if !strings.EqualFold(filepath.Ext(*in), ".json") {
		return options{}, fmt.Errorf("入力拡張子が .json ではありません: %s", *in)
	}

	return options{
		candidatePath:  *in,
		mappingPath:    *mapping,
		boneConfigPath: *bones,
		outputPath:     *out,
		refineEndpoint: *endpoint,
		refineTimeout:  *timeout,
		skipRefine:     *skip,
		batchSize:      *batch,
		smoothingSteps: *smoothing,
	}, nil
}

// loadGenderMapping は性別マッピング設定を読み込む。パス未指定時は内蔵既定を使う。
func loadGenderMapping(path string) (*bodyconf.GenderMappingTable, error) {
	if strings.TrimSpace(path) == "" {
		return bodyconf.LoadDefaultGenderMapping()
	}
	return bodyconf.NewGenderMappingRepository().Load(path)
}

// loadBoneScaling はボーンスケーリング設定を読み込む。パス未指定時は内蔵既定を使う。
func loadBoneScaling(path string) (*bodyconf.BoneScalingConfig, error) {
	if strings.TrimSpace(path) == "" {
		return bodyconf.LoadDefaultBoneScaling()
	}
	return bodyconf.NewBoneScalingRepository().Load(path)
}

// resolveOutputPath は解決結果の出力パスを解決する。
func resolveOutputPath(inputPath string, outputPath string) (string, error) {
	if strings.TrimSpace(outputPath) == "" {
		dir := filepath.Dir(inputPath)
		base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
		return filepath.Join(dir, base+"_result.json"), nil
	}
	if !strings.EqualFold(filepath.Ext(outputPath), ".json") {
		return "", fmt.Errorf("出力拡張子が .json ではありません: %s", outputPath)
	}
	return outputPath, nil
}

// ensureOutputDir は出力先ディレクトリを作成する。
func ensureOutputDir(outputPath string) error {
	dir := filepath.Dir(outputPath)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("出力先ディレクトリの作成に失敗しました: %w", err)
	}
	return nil
}
