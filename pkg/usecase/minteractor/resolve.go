// 指示: miu200521358
package minteractor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/miu200521358/mu_shape_resolver/pkg/adapter/io_config/bodyconf"
	"github.com/miu200521358/mu_shape_resolver/pkg/domain/model"
	"github.com/miu200521358/mu_shape_resolver/pkg/usecase/port/mapply"
	"github.com/miu200521358/mu_shape_resolver/pkg/usecase/port/mrefine"
)

const (
	resolveInfoStartFormat = "体型解決開始: resolution=%s gender=%s candidates=%d"
	resolveInfoDoneFormat  = "体型解決完了: resolution=%s refined=%t warnings=%d boneTargets=%d"
)

// ResolveProgressEventType は解決処理の進捗イベント種別を表す。
type ResolveProgressEventType string

const (
	// ResolveProgressEventTypeBlendCompleted は候補ブレンド完了イベントを表す。
	ResolveProgressEventTypeBlendCompleted ResolveProgressEventType = "blend_completed"
	// ResolveProgressEventTypeValidateCompleted はブレンド結果検証完了イベントを表す。
	ResolveProgressEventTypeValidateCompleted ResolveProgressEventType = "validate_completed"
	// ResolveProgressEventTypeRefineRequested は補正依頼送信イベントを表す。
	ResolveProgressEventTypeRefineRequested ResolveProgressEventType = "refine_requested"
	// ResolveProgressEventTypeRefineCompleted は補正応答の再検証完了イベントを表す。
	ResolveProgressEventTypeRefineCompleted ResolveProgressEventType = "refine_completed"
	// ResolveProgressEventTypeRefineSkipped は補正スキップ(フォールバック)イベントを表す。
	ResolveProgressEventTypeRefineSkipped ResolveProgressEventType = "refine_skipped"
	// ResolveProgressEventTypeBoneScalesComputed は骨格スケール計算完了イベントを表す。
	ResolveProgressEventTypeBoneScalesComputed ResolveProgressEventType = "bone_scales_computed"
	// ResolveProgressEventTypeStreamStarted はモーフストリーム開始イベントを表す。
	ResolveProgressEventTypeStreamStarted ResolveProgressEventType = "stream_started"
)

// ResolveProgressEvent は解決処理の進捗イベントを表す。
type ResolveProgressEvent struct {
	Type           ResolveProgressEventType
	CandidateCount int
	WarningCount   int
	BoneCount      int
	TaskCount      int
	Reason         string
}

// IResolveProgressReporter は解決処理の進捗通知契約を表す。
type IResolveProgressReporter interface {
	// ReportResolveProgress は解決処理進捗を通知する。
	ReportResolveProgress(event ResolveProgressEvent)
}

// reportResolveProgress は解決処理の進捗を通知する。
func reportResolveProgress(reporter IResolveProgressReporter, event ResolveProgressEvent) {
	if reporter == nil {
		return
	}
	reporter.ReportResolveProgress(event)
}

// ResolveRequest は1回の体型解決要求を表す。
type ResolveRequest struct {
	Gender     model.Gender
	Candidates []model.ArchetypeCandidate
	// Measurements は実測値。エンベロープ解決と補正依頼に使う。省略可。
	Measurements map[string]float64
	// ClassificationHints は体型分類の参考情報。省略可。
	ClassificationHints []string
	// Mesh はモーフストリームの適用先。nil の場合はストリームを開始しない。
	Mesh mapply.IMorphTargetHandle
	// BoneWriter は骨格スケールの適用先。nil の場合は計算のみ行う。
	BoneWriter mapply.IBoneTransformWriter
	// SkipRefinement は補正サービスを呼ばずにブレンド結果で確定させる。
	SkipRefinement   bool
	ProgressReporter IResolveProgressReporter
	StreamObserver   IMorphStreamObserver
}

// ResolveResult は1回の体型解決結果を表す。
type ResolveResult struct {
	ResolutionID string
	Gender       model.Gender
	// Parameters は最終確定のパラメータ一式。呼び出し側専有の複製。
	Parameters *model.ValidatedParameterSet
	// BlendWeights はブレンドの採用重み。
	BlendWeights []model.BlendWeight
	Confidence   float64
	QualityScore float64
	// Refined は補正サービスの結果が採用されたかを表す。
	Refined bool
	// RefinementSkippedReason は補正スキップ時の理由。採用時は空。
	RefinementSkippedReason string
	// EnvelopeSource は採用されたエンベロープ解決戦略名。
	EnvelopeSource string
	BoneScales     []model.BoneScaleTarget
	// StreamSession は開始済みモーフストリーム。Mesh未指定時は nil。
	StreamSession *MorphStreamSession
}

// ShapeResolveUsecase は体型解決パイプライン全体を協調させるユースケースを表す。
// 後続の解決開始が先行解決を打ち切る last-writer-wins 方式で動く。
type ShapeResolveUsecase struct {
	policies     *model.PolicySet
	boneConfig   *bodyconf.BoneScalingConfig
	refiner      mrefine.IRefinementService
	orchestrator *StreamOrchestrator
	streamOpts   MorphStreamOptions

	mu           sync.Mutex
	generation   uint64
	cancelActive context.CancelFunc
}

// NewShapeResolveUsecase はShapeResolveUsecaseを生成する。
// refiner は省略可能で、nil の場合は常にブレンド結果で確定する。
func NewShapeResolveUsecase(
	policies *model.PolicySet,
	boneConfig *bodyconf.BoneScalingConfig,
	refiner mrefine.IRefinementService,
	streamOpts MorphStreamOptions,
) (*ShapeResolveUsecase, error) {
	if policies == nil {
		return nil, model.NewInvalidMapping("体型ポリシーが未指定です", nil)
	}
	if boneConfig == nil {
		return nil, model.NewConfigError("ボーンスケーリング設定が未指定です", nil)
	}
	return &ShapeResolveUsecase{
		policies:     policies,
		boneConfig:   boneConfig,
		refiner:      refiner,
		orchestrator: NewStreamOrchestrator(),
		streamOpts:   streamOpts,
	}, nil
}

// beginGeneration は新世代を開始し、先行解決の補正待ちとストリームを打ち切る。
func (uc *ShapeResolveUsecase) beginGeneration(ctx context.Context) (uint64, context.Context, context.CancelFunc) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if uc.cancelActive != nil {
		uc.cancelActive()
	}
	uc.generation++
	generationCtx, cancel := context.WithCancel(ctx)
	uc.cancelActive = cancel
	return uc.generation, generationCtx, cancel
}

// isSuperseded は指定世代より新しい解決が始まっているかを返す。
func (uc *ShapeResolveUsecase) isSuperseded(generation uint64) bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.generation != generation
}

// canonicalizeCandidates は候補の形状キー・肢体キーを正準表記へ寄せた複製を返す。
// スキャン由来の別名・表記揺れをここで吸収し、以降の段は正準キーのみを扱う。
func canonicalizeCandidates(candidates []model.ArchetypeCandidate) []model.ArchetypeCandidate {
	canonicalized := make([]model.ArchetypeCandidate, 0, len(candidates))
	for _, candidate := range candidates {
		converted := model.ArchetypeCandidate{
			ID:          candidate.ID,
			Name:        candidate.Name,
			Distance:    candidate.Distance,
			ShapeValues: make(map[model.CanonicalKey]float64, len(candidate.ShapeValues)),
			LimbMasses:  make(map[model.LimbKey]float64, len(candidate.LimbMasses)),
		}
		for rawKey, value := range candidate.ShapeValues {
			converted.ShapeValues[CanonicalizeShapeKey(string(rawKey))] = value
		}
		for rawKey, value := range candidate.LimbMasses {
			converted.LimbMasses[CanonicalizeLimbKey(string(rawKey))] = value
		}
		canonicalized = append(canonicalized, converted)
	}
	return canonicalized
}

// Resolve は候補ブレンド→検証→(補正→再検証)→骨格・モーフ配信の順で
// 体型解決を実行する。段階順序は固定で、補正呼び出しだけが中断点になる。
func (uc *ShapeResolveUsecase) Resolve(ctx context.Context, request ResolveRequest) (*ResolveResult, error) {
	if _, err := model.ParseGender(request.Gender.String()); err != nil {
		return nil, err
	}
	generation, generationCtx, cancel := uc.beginGeneration(ctx)
	defer cancel()

	resolutionID := uuid.NewString()
	logResolveInfo(resolveInfoStartFormat, resolutionID, request.Gender, len(request.Candidates))

	candidates := canonicalizeCandidates(request.Candidates)
	blend, err := BlendArchetypeCandidates(candidates)
	if err != nil {
		return nil, err
	}
	reportResolveProgress(request.ProgressReporter, ResolveProgressEvent{
		Type:           ResolveProgressEventTypeBlendCompleted,
		CandidateCount: len(request.Candidates),
	})

	validated := ValidateParameterSet(blend.ShapeValues, blend.LimbMasses, uc.policies, request.Gender)
	reportResolveProgress(request.ProgressReporter, ResolveProgressEvent{
		Type:         ResolveProgressEventTypeValidateCompleted,
		WarningCount: validated.WarningCount(),
	})

	result := &ResolveResult{
		ResolutionID: resolutionID,
		Gender:       request.Gender,
		BlendWeights: blend.Weights,
		Confidence:   blend.Confidence,
		QualityScore: blend.QualityScore,
	}
	refined, err := uc.applyRefinement(generationCtx, generation, request, candidates, blend, validated, result)
	if err != nil {
		return nil, err
	}
	validated = refined

	if uc.isSuperseded(generation) {
		return nil, model.NewResolutionSuperseded("後続の解決開始により破棄されました: resolution=%s", resolutionID)
	}

	boneScales, err := ComputeBoneScales(validated.LimbMasses, validated.ShapeValues, uc.resolveBoneNames(request), uc.boneConfig)
	if err != nil {
		return nil, err
	}
	result.BoneScales = boneScales
	reportResolveProgress(request.ProgressReporter, ResolveProgressEvent{
		Type:      ResolveProgressEventTypeBoneScalesComputed,
		BoneCount: len(boneScales),
	})
	if request.BoneWriter != nil {
		for _, target := range boneScales {
			request.BoneWriter.ApplyBoneScale(target)
		}
	}

	if request.Mesh != nil {
		session := uc.orchestrator.Start(validated.ShapeValues, request.Mesh, uc.streamOpts, request.StreamObserver)
		result.StreamSession = session
		reportResolveProgress(request.ProgressReporter, ResolveProgressEvent{
			Type:      ResolveProgressEventTypeStreamStarted,
			TaskCount: len(validated.ShapeValues),
		})
	}

	cloned, err := validated.Clone()
	if err != nil {
		return nil, fmt.Errorf("解決結果の複製に失敗しました: %w", err)
	}
	result.Parameters = cloned
	logResolveInfo(resolveInfoDoneFormat, resolutionID, result.Refined, validated.WarningCount(), len(boneScales))
	return result, nil
}

// applyRefinement は補正サービス呼び出しと応答の再検証を行う。
// スキーマ違反は致命、転送障害はブレンド結果へのフォールバックとする。
func (uc *ShapeResolveUsecase) applyRefinement(
	ctx context.Context,
	generation uint64,
	request ResolveRequest,
	candidates []model.ArchetypeCandidate,
	blend *model.BlendResult,
	validated *model.ValidatedParameterSet,
	result *ResolveResult,
) (*model.ValidatedParameterSet, error) {
	if uc.refiner == nil || request.SkipRefinement {
		result.RefinementSkippedReason = "refinement_disabled"
		result.EnvelopeSource = "none"
		return validated, nil
	}

	policy, _ := uc.policies.ForGender(request.Gender)
	refineRequest := BuildRefinementRequest(blend, request.Gender, uc.policies.MappingVersion,
		EnvelopeInput{
			Candidates:   candidates,
			Measurements: request.Measurements,
			Policy:       policy,
		},
		request.ClassificationHints)
	result.EnvelopeSource = refineRequest.EnvelopeSource
	reportResolveProgress(request.ProgressReporter, ResolveProgressEvent{
		Type: ResolveProgressEventTypeRefineRequested,
	})

	response, err := uc.refiner.Refine(ctx, refineRequest)
	if uc.isSuperseded(generation) {
		// 遅れて届いた応答は成否に関わらず破棄する。
		return nil, model.NewResolutionSuperseded("後続の解決開始により補正応答を破棄しました: request=%s", refineRequest.RequestID)
	}
	if err != nil {
		var schemaValidation *model.SchemaValidationError
		if errors.As(err, &schemaValidation) {
			// 契約違反応答は部分適用せず解決ごと失敗させる。
			return nil, err
		}
		// 転送障害は回復可能。ブレンド検証結果のまま「非AI補正」で続行する。
		result.RefinementSkippedReason = "service_unreachable"
		logResolveWarn("%s: error=%v", model.ShapeWarningRefinementSkipped, err)
		reportResolveProgress(request.ProgressReporter, ResolveProgressEvent{
			Type:   ResolveProgressEventTypeRefineSkipped,
			Reason: result.RefinementSkippedReason,
		})
		return validated, nil
	}

	// 補正サービスは値の提案者であり、生理的妥当性の判定者ではない。
	// 採用前にブレンド結果と同一の検証を必ず通す。
	refinedShapes := make(map[model.CanonicalKey]float64, len(response.FinalShapeValues))
	for rawKey, value := range response.FinalShapeValues {
		refinedShapes[CanonicalizeShapeKey(rawKey)] = value
	}
	refinedLimbs := make(map[model.LimbKey]float64, len(response.FinalLimbMasses))
	for rawKey, value := range response.FinalLimbMasses {
		refinedLimbs[CanonicalizeLimbKey(rawKey)] = value
	}
	revalidated := ValidateParameterSet(refinedShapes, refinedLimbs, uc.policies, request.Gender)
	result.Refined = true
	if response.Confidence != nil {
		result.Confidence = *response.Confidence
	}
	reportResolveProgress(request.ProgressReporter, ResolveProgressEvent{
		Type:         ResolveProgressEventTypeRefineCompleted,
		WarningCount: revalidated.WarningCount(),
	})
	return revalidated, nil
}

// resolveBoneNames は骨格スケール対象のボーン名一覧を解決する。
func (uc *ShapeResolveUsecase) resolveBoneNames(request ResolveRequest) []string {
	if request.BoneWriter == nil {
		return nil
	}
	return request.BoneWriter.BoneNames()
}

// AbortActiveStream は進行中のモーフストリームを明示的に中断する。
func (uc *ShapeResolveUsecase) AbortActiveStream() {
	uc.orchestrator.Abort()
}

// ActiveStream は現在のアクティブストリームセッションを返す。
func (uc *ShapeResolveUsecase) ActiveStream() *MorphStreamSession {
	return uc.orchestrator.Active()
}
