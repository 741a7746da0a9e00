// 指示: miu200521358
package minteractor

import (
	"sort"
	"sync"

	"github.com/miu200521358/mu_shape_resolver/pkg/domain/model"
	"github.com/miu200521358/mu_shape_resolver/pkg/usecase/port/mapply"
)

const (
	// streamDefaultBatchSize は1ティックあたりの既定適用タスク数を表す。
	streamDefaultBatchSize = 8

	streamInfoStartFormat = "モーフストリーム開始: tasks=%d batches=%d batchSize=%d smoothing=%d"
	streamInfoDoneFormat  = "モーフストリーム完了: applied=%d batches=%d"
)

// MorphStreamState はストリームセッションの状態を表す。
type MorphStreamState int

const (
	// MorphStreamStateIdle は開始前状態を表す。
	MorphStreamStateIdle MorphStreamState = iota
	// MorphStreamStateStreaming は適用進行中状態を表す。
	MorphStreamStateStreaming
	// MorphStreamStateCompleted は全タスク適用済み状態を表す。
	MorphStreamStateCompleted
	// MorphStreamStateAborted は中断済み状態を表す。
	MorphStreamStateAborted
)

// String はストリーム状態の表示名を返す。
func (s MorphStreamState) String() string {
	switch s {
	case MorphStreamStateIdle:
		return "idle"
	case MorphStreamStateStreaming:
		return "streaming"
	case MorphStreamStateCompleted:
		return "completed"
	default:
		return "aborted"
	}
}

// MorphStreamOptions はストリーム適用の調整項目を表す。
type MorphStreamOptions struct {
	// BatchSize は1ティックで適用するタスク数。0以下は既定値8。
	BatchSize int
	// SmoothingSteps は各バッチを目標値まで補間するティック数。
	// 1以下は補間なしで即時適用する。
	SmoothingSteps int
}

// IMorphStreamObserver はストリーム進行の観測契約を表す。
// これ以外の副作用チャネルはない。
type IMorphStreamObserver interface {
	// OnProgress は適用済みタスク数の進行を通知する。
	OnProgress(applied int, total int)
	// OnBatchComplete はバッチ完了を通知する。
	OnBatchComplete(batchIndex int, batchCount int)
	// OnComplete は全タスク適用完了を通知する。中断時は呼ばれない。
	OnComplete()
}

// morphSmoothingState は1キー分の補間進行状態を表す。
type morphSmoothingState struct {
	targetName  string
	targetValue float64
	step        int
}

// MorphStreamSession は1回のストリーム適用セッションを表す。
// タスク列はこのセッションが専有し、後続セッション開始時は丸ごと破棄される。
type MorphStreamSession struct {
	mu             sync.Mutex
	mesh           mapply.IMorphTargetHandle
	observer       IMorphStreamObserver
	tasks          []model.StreamTask
	batchSize      int
	smoothingSteps int
	state          MorphStreamState
	applied        int
	batchIndex     int
	batchCount     int
	smoothing      []morphSmoothingState
}

// BuildStreamTasks は目標値集合からストリームタスク列を構築する。
// メッシュに存在しないキーは積まずに落とす。順序は優先度階層が先、
// 同一階層内はキー昇順で安定とする。
func BuildStreamTasks(
	targetValues map[model.CanonicalKey]float64,
	mesh mapply.IMorphTargetHandle,
) []model.StreamTask {
	keys := make([]model.CanonicalKey, 0, len(targetValues))
	for key := range targetValues {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	tasks := make([]model.StreamTask, 0, len(keys))
	for _, key := range keys {
		targetName, mapped := CanonicalKeyToTargetName(key)
		if !mapped || !mesh.ContainsMorphTarget(targetName) {
			logStreamVerbose("対象外キーを除外: key=%s mapped=%t", key, mapped)
			continue
		}
		tasks = append(tasks, model.StreamTask{
			Key:         key,
			TargetName:  targetName,
			TargetValue: targetValues[key],
			Priority:    ShapeKeyPriority(key),
		})
	}
	sort.SliceStable(tasks, func(i, j int) bool { return tasks[i].Priority < tasks[j].Priority })
	return tasks
}

// StartMorphStream はストリームセッションを生成して開始状態にする。
// 進行は呼び出し側が1フレーム1回 Tick を呼ぶことで進む。
func StartMorphStream(
	targetValues map[model.CanonicalKey]float64,
	mesh mapply.IMorphTargetHandle,
	options MorphStreamOptions,
	observer IMorphStreamObserver,
) *MorphStreamSession {
	batchSize := options.BatchSize
	if batchSize <= 0 {
		batchSize = streamDefaultBatchSize
	}
	smoothingSteps := options.SmoothingSteps
	if smoothingSteps < 1 {
		smoothingSteps = 1
	}
	tasks := BuildStreamTasks(targetValues, mesh)
	session := &MorphStreamSession{
		mesh:           mesh,
		observer:       observer,
		tasks:          tasks,
		batchSize:      batchSize,
		smoothingSteps: smoothingSteps,
		state:          MorphStreamStateStreaming,
		batchCount:     (len(tasks) + batchSize - 1) / batchSize,
	}
	if len(tasks) == 0 {
		// 適用対象なしは即完了。観測側には完了のみ通知する。
		session.state = MorphStreamStateCompleted
		if observer != nil {
			observer.OnComplete()
		}
		return session
	}
	logResolveInfo(streamInfoStartFormat, len(tasks), session.batchCount, batchSize, smoothingSteps)
	return session
}

// State は現在のセッション状態を返す。
func (s *MorphStreamSession) State() MorphStreamState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// AppliedCount は適用済みタスク数を返す。
func (s *MorphStreamSession) AppliedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applied
}

// BatchCount は総バッチ数を返す。
func (s *MorphStreamSession) BatchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.batchCount
}

// Tick は協調スケジューリングの1刻み分を進める。レンダーフレームごとに
// 1回呼ぶ想定で、1バッチ(補間時は1補間ステップ)だけ適用する。
// 戻り値は継続要否で、完了・中断後は false を返す。
func (s *MorphStreamSession) Tick() bool {
	s.mu.Lock()
	// 中断トークンの確認はバッチ先頭の1箇所のみ。
	if s.state != MorphStreamStateStreaming {
		s.mu.Unlock()
		return false
	}

	if s.smoothing == nil {
		s.beginBatchLocked()
	}
	finished := s.applySmoothingStepLocked()
	if !finished {
		s.mu.Unlock()
		return true
	}

	batchTaskCount := len(s.smoothing)
	s.smoothing = nil
	s.applied += batchTaskCount
	s.batchIndex++
	applied := s.applied
	total := len(s.tasks)
	batchIndex := s.batchIndex
	batchCount := s.batchCount
	completed := applied >= total
	if completed {
		s.state = MorphStreamStateCompleted
	}
	observer := s.observer
	s.mu.Unlock()

	if observer != nil {
		observer.OnProgress(applied, total)
		observer.OnBatchComplete(batchIndex-1, batchCount)
		if completed {
			observer.OnComplete()
		}
	}
	if completed {
		logResolveInfo(streamInfoDoneFormat, applied, batchCount)
		return false
	}
	return true
}

// beginBatchLocked は次バッチの補間状態を用意する。
func (s *MorphStreamSession) beginBatchLocked() {
	start := s.applied
	end := start + s.batchSize
	if end > len(s.tasks) {
		end = len(s.tasks)
	}
	s.smoothing = make([]morphSmoothingState, 0, end-start)
	for _, task := range s.tasks[start:end] {
		s.smoothing = append(s.smoothing, morphSmoothingState{
			targetName:  task.TargetName,
			targetValue: task.TargetValue,
		})
	}
}

// applySmoothingStepLocked は現在バッチを1補間ステップ進める。
// 最終ステップは丸め誤差を残さないよう目標値そのものを書き込む。
func (s *MorphStreamSession) applySmoothingStepLocked() bool {
	for i := range s.smoothing {
		state := &s.smoothing[i]
		state.step++
		value := state.targetValue
		if state.step < s.smoothingSteps {
			value = state.targetValue * float64(state.step) / float64(s.smoothingSteps)
		}
		s.mesh.ApplyMorphInfluence(state.targetName, value)
		logStreamVerbose("モーフ適用: target=%s value=%.4f step=%d/%d",
			state.targetName, value, state.step, s.smoothingSteps)
	}
	return len(s.smoothing) == 0 || s.smoothing[0].step >= s.smoothingSteps
}

// Abort はセッションを中断する。何度呼んでも安全で、バッチ途中でも
// タスク列と補間状態を即時解放する。以後 OnComplete は呼ばれない。
func (s *MorphStreamSession) Abort() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == MorphStreamStateCompleted || s.state == MorphStreamStateAborted {
		return
	}
	s.state = MorphStreamStateAborted
	s.tasks = nil
	s.smoothing = nil
	logResolveDebug("%s: applied=%d", model.ShapeWarningStreamSuperseded, s.applied)
}

// StreamOrchestrator は常に1本のアクティブセッションを管理する。
// 新規開始は先行セッションの暗黙中断を伴い、ストリームの待ち行列は持たない。
type StreamOrchestrator struct {
	mu     sync.Mutex
	active *MorphStreamSession
}

// NewStreamOrchestrator はStreamOrchestratorを生成する。
func NewStreamOrchestrator() *StreamOrchestrator {
	return &StreamOrchestrator{}
}

// Start は新しいストリームセッションを開始する。
// 先行セッションが進行中の場合は先に中断してから開始する。
func (o *StreamOrchestrator) Start(
	targetValues map[model.CanonicalKey]float64,
	mesh mapply.IMorphTargetHandle,
	options MorphStreamOptions,
	observer IMorphStreamObserver,
) *MorphStreamSession {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.active != nil {
		o.active.Abort()
	}
	o.active = StartMorphStream(targetValues, mesh, options, observer)
	return o.active
}

// Active は現在のアクティブセッションを返す。
func (o *StreamOrchestrator) Active() *MorphStreamSession {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.active
}

// Abort は現在のアクティブセッションを中断する。
func (o *StreamOrchestrator) Abort() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.active != nil {
		o.active.Abort()
	}
}
