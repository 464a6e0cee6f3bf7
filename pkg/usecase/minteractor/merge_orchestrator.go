// 指示: miu200521358
package minteractor

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/miu200521358/mu_armature_cleanup/pkg/domain/model"
	"github.com/miu200521358/mu_armature_cleanup/pkg/domain/scene"
	"github.com/miu200521358/mu_armature_cleanup/pkg/usecase/port/moutput"
)

// MERGE_GROUP_NAME は整理1回分の取り消しグループ名。
const MERGE_GROUP_NAME = "Armature Cleanup"

// DEFAULT_ARMATURE_NAME はスケルトンルートの既定名。
const DEFAULT_ARMATURE_NAME = "Armature"

// MergeState は整理処理の状態を表す。
type MergeState string

const (
	MergeStateIdle        MergeState = "Idle"
	MergeStateDetecting   MergeState = "Detecting"
	MergeStateReattaching MergeState = "Reattaching"
	MergeStateMerging     MergeState = "Merging"
	MergeStateRewriting   MergeState = "Rewriting"
	MergeStateRemoving    MergeState = "Removing"
	MergeStateDone        MergeState = "Done"
	MergeStateFailed      MergeState = "Failed"
)

// MergeProgressEventType は整理処理の進捗イベント種別を表す。
type MergeProgressEventType string

const (
	// MergeProgressEventTypeDetected は重複検出完了イベントを表す。
	MergeProgressEventTypeDetected MergeProgressEventType = "detected"
	// MergeProgressEventTypeReattached は子ノード付け替え完了イベントを表す。
	MergeProgressEventTypeReattached MergeProgressEventType = "reattached"
	// MergeProgressEventTypeMerged はコンポーネント複製完了イベントを表す。
	MergeProgressEventTypeMerged MergeProgressEventType = "merged"
	// MergeProgressEventTypeRewritten は参照付け替え完了イベントを表す。
	MergeProgressEventTypeRewritten MergeProgressEventType = "rewritten"
	// MergeProgressEventTypeRemoved は重複ノード破棄完了イベントを表す。
	MergeProgressEventTypeRemoved MergeProgressEventType = "removed"
	// MergeProgressEventTypeCompleted は整理完了イベントを表す。
	MergeProgressEventTypeCompleted MergeProgressEventType = "completed"
)

// MergeProgressEvent は整理処理の進捗イベントを表す。
type MergeProgressEvent struct {
	Type      MergeProgressEventType
	RunID     string
	PairCount int
	Count     int
}

// IMergeProgressReporter は整理処理の進捗通知契約を表す。
type IMergeProgressReporter interface {
	// ReportMergeProgress は整理処理進捗を通知する。
	ReportMergeProgress(event MergeProgressEvent)
}

// CleanupOptions は整理処理の設定を表す。
type CleanupOptions struct {
	ArmatureName            string
	RequireAvatarDescriptor bool
	KeepWorldTransform      bool
	ClearSelfReferences     bool
	CopyKinds               []scene.ComponentKind
	DryRun                  bool
}

// DefaultCleanupOptions は既定の整理設定を返す。
func DefaultCleanupOptions() CleanupOptions {
	return CleanupOptions{
		ArmatureName:            DEFAULT_ARMATURE_NAME,
		RequireAvatarDescriptor: true,
		KeepWorldTransform:      true,
		ClearSelfReferences:     true,
	}
}

// MergeRequest は整理要求を表す。
type MergeRequest struct {
	// Avatar はアバターのルートノード。NilNode の場合は Root の指定が必須。
	Avatar scene.NodeID
	// Root はスケルトンルート。NilNode の場合はアバター記述子から RootPath で探す。
	Root scene.NodeID
	// RootPath はアバター記述子ノードからの相対パス。空の場合は ArmatureName。
	RootPath         string
	Options          CleanupOptions
	ProgressReporter IMergeProgressReporter
}

// MergePairInfo は検出した組のパス表現を表す。
type MergePairInfo struct {
	Duplicate     string
	Target        string
	Survivor      string
	DuplicateNode scene.NodeID
	TargetNode    scene.NodeID
}

// MergeResult は整理結果を表す。
// 失敗して巻き戻した場合、各段階の集計は空になり Warnings のみ失敗までの内容を残す。
type MergeResult struct {
	RunID      string
	State      MergeState
	DryRun     bool
	Pairs      []MergePairInfo
	Reattach   ReattachSummary
	Merge      MergeSummary
	Rewrite    RewriteSummary
	Remove     RemoveSummary
	Warnings   []model.CleanupWarning
	HashBefore uint64
	HashAfter  uint64
}

// MergeOrchestrator は重複ボーン整理の各段階を1つの取り消し単位として順に実行する。
type MergeOrchestrator struct {
	graph moutput.ISceneGraph
	tx    moutput.ITransaction

	runMu   sync.Mutex
	stateMu sync.RWMutex
	state   MergeState
}

// NewMergeOrchestrator は整理処理を生成する。
func NewMergeOrchestrator(graph moutput.ISceneGraph, tx moutput.ITransaction) *MergeOrchestrator {
	return &MergeOrchestrator{graph: graph, tx: tx, state: MergeStateIdle}
}

// State は現在の状態を返す。
func (o *MergeOrchestrator) State() MergeState {
	o.stateMu.RLock()
	defer o.stateMu.RUnlock()
	return o.state
}

// setState は状態を遷移する。
func (o *MergeOrchestrator) setState(state MergeState) {
	o.stateMu.Lock()
	defer o.stateMu.Unlock()
	o.state = state
}

// Run は整理を実行する。同時に2つの実行はできない。
func (o *MergeOrchestrator) Run(ctx context.Context, request MergeRequest) (*MergeResult, error) {
	if !o.runMu.TryLock() {
		return nil, model.NewAlreadyRunning()
	}
	defer o.runMu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}

	result := &MergeResult{
		RunID:    uuid.NewString(),
		DryRun:   request.Options.DryRun,
		Warnings: make([]model.CleanupWarning, 0),
	}
	o.setState(MergeStateIdle)
	logMergeInfo("アーマチュア整理開始: run=%s", result.RunID)

	// 検出 (変更なし)
	o.setState(MergeStateDetecting)
	scope, root, err := o.resolveTargets(request)
	if err != nil {
		return o.failBeforeMutation(result, err)
	}
	index, err := BuildNodeIndex(o.graph, scope, root)
	if err != nil {
		return o.failBeforeMutation(result, err)
	}
	if hash, err := o.graph.Hash(); err == nil {
		result.HashBefore = hash
	}
	dups := DetectDuplicates(o.graph, index)
	result.Pairs = o.describePairs(dups)
	reportMergeProgress(request.ProgressReporter, MergeProgressEvent{
		Type: MergeProgressEventTypeDetected, RunID: result.RunID, PairCount: dups.Len(), Count: dups.Len(),
	})

	if dups.Len() == 0 || request.Options.DryRun {
		result.HashAfter = result.HashBefore
		return o.complete(request, result, dups)
	}
	if err := ctx.Err(); err != nil {
		return o.failBeforeMutation(result, model.NewCanceled(string(MergeStateDetecting), err))
	}

	group := 0
	if o.tx != nil {
		group, err = o.tx.BeginGroup(MERGE_GROUP_NAME)
		if err != nil {
			return o.failBeforeMutation(result, err)
		}
	}

	// 子ノード付け替え
	o.setState(MergeStateReattaching)
	logMergeInfo("子ボーンを移動します...")
	result.Reattach = ReattachChildren(o.graph, o.tx, dups, ReattachOptions{
		KeepWorldTransform: request.Options.KeepWorldTransform,
	})
	result.Warnings = append(result.Warnings, result.Reattach.Warnings...)
	reportMergeProgress(request.ProgressReporter, MergeProgressEvent{
		Type: MergeProgressEventTypeReattached, RunID: result.RunID, PairCount: dups.Len(), Count: result.Reattach.Reparented,
	})
	if err := ctx.Err(); err != nil {
		return o.fail(result, group, model.NewCanceled(string(MergeStateReattaching), err))
	}

	// コンポーネント複製
	o.setState(MergeStateMerging)
	logMergeInfo("ボーンのコンポーネントを複製します...")
	result.Merge = MergeComponents(o.graph, o.tx, dups, ComponentMergeOptions{
		CopyKinds:           request.Options.CopyKinds,
		ClearSelfReferences: request.Options.ClearSelfReferences,
	})
	result.Warnings = append(result.Warnings, result.Merge.Warnings...)
	reportMergeProgress(request.ProgressReporter, MergeProgressEvent{
		Type: MergeProgressEventTypeMerged, RunID: result.RunID, PairCount: dups.Len(), Count: result.Merge.Copied,
	})
	if err := ctx.Err(); err != nil {
		return o.fail(result, group, model.NewCanceled(string(MergeStateMerging), err))
	}

	// 参照付け替え
	o.setState(MergeStateRewriting)
	logMergeInfo("コンポーネントの参照を更新します...")
	result.Rewrite = RewriteReferences(o.graph, o.tx, dups)
	result.Warnings = append(result.Warnings, result.Rewrite.Warnings...)
	reportMergeProgress(request.ProgressReporter, MergeProgressEvent{
		Type: MergeProgressEventTypeRewritten, RunID: result.RunID, PairCount: dups.Len(), Count: result.Rewrite.Redirected,
	})
	if err := ctx.Err(); err != nil {
		return o.fail(result, group, model.NewCanceled(string(MergeStateRewriting), err))
	}

	// 破棄
	o.setState(MergeStateRemoving)
	result.Remove, err = RemoveDuplicates(o.graph, o.tx, index, dups)
	if err != nil {
		return o.fail(result, group, err)
	}
	reportMergeProgress(request.ProgressReporter, MergeProgressEvent{
		Type: MergeProgressEventTypeRemoved, RunID: result.RunID, PairCount: dups.Len(), Count: result.Remove.Destroyed,
	})

	if o.tx != nil {
		o.tx.CollapseGroup(group)
	}
	if hash, err := o.graph.Hash(); err == nil {
		result.HashAfter = hash
	}
	return o.complete(request, result, dups)
}

// resolveTargets は走査範囲とスケルトンルートを解決する。
func (o *MergeOrchestrator) resolveTargets(request MergeRequest) (scene.NodeID, scene.NodeID, error) {
	avatar := request.Avatar
	if avatar.IsNil() {
		if request.Root.IsNil() {
			return scene.NilNode, scene.NilNode, model.NewAvatarMissing()
		}
		if !o.graph.Contains(request.Root) {
			return scene.NilNode, scene.NilNode, model.NewRootNotFound(request.Root.String())
		}
		return scene.NilNode, request.Root, nil
	}
	if !o.graph.Contains(avatar) {
		return scene.NilNode, scene.NilNode, model.NewAvatarMissing()
	}

	if !request.Root.IsNil() {
		if !o.graph.Contains(request.Root) {
			return scene.NilNode, scene.NilNode, model.NewRootNotFound(request.Root.String())
		}
		if !o.graph.IsAncestor(avatar, request.Root) {
			return scene.NilNode, scene.NilNode, model.NewRootOutsideAvatar(o.graph.Path(request.Root), o.graph.Path(avatar))
		}
		return avatar, request.Root, nil
	}

	descriptorNode, descriptor := o.findDescriptor(avatar)
	if descriptorNode.IsNil() {
		if request.Options.RequireAvatarDescriptor {
			return scene.NilNode, scene.NilNode, model.NewDescriptorMissing(o.graph.Path(avatar))
		}
		descriptorNode = avatar
	}

	rootPath := strings.TrimSpace(request.RootPath)
	if rootPath == "" && descriptor != nil {
		rootPath = descriptor.ArmaturePath
	}
	if rootPath == "" {
		rootPath = request.Options.ArmatureName
	}
	if rootPath == "" {
		rootPath = DEFAULT_ARMATURE_NAME
	}
	root, ok := o.graph.Find(descriptorNode, rootPath)
	if !ok {
		return scene.NilNode, scene.NilNode, model.NewRootNotFound(o.graph.Path(descriptorNode) + "/" + rootPath)
	}
	return avatar, root, nil
}

// findDescriptor はアバター配下で最初の AvatarDescriptor とそのノードを返す。
func (o *MergeOrchestrator) findDescriptor(avatar scene.NodeID) (scene.NodeID, *scene.AvatarDescriptor) {
	for _, attached := range o.graph.ComponentsInChildren(avatar) {
		if descriptor, ok := attached.Component.(*scene.AvatarDescriptor); ok {
			return attached.Node, descriptor
		}
	}
	return scene.NilNode, nil
}

// describePairs は組のパス表現を作る。
func (o *MergeOrchestrator) describePairs(dups *DuplicateMap) []MergePairInfo {
	infos := make([]MergePairInfo, 0, dups.Len())
	for _, pair := range dups.Pairs() {
		infos = append(infos, MergePairInfo{
			Duplicate:     o.graph.Path(pair.Duplicate),
			Target:        o.graph.Path(pair.Target),
			Survivor:      o.graph.Path(dups.Survivor(pair.Duplicate)),
			DuplicateNode: pair.Duplicate,
			TargetNode:    pair.Target,
		})
	}
	return infos
}

// complete は完了状態へ遷移する。
func (o *MergeOrchestrator) complete(request MergeRequest, result *MergeResult, dups *DuplicateMap) (*MergeResult, error) {
	o.setState(MergeStateDone)
	result.State = MergeStateDone
	reportMergeProgress(request.ProgressReporter, MergeProgressEvent{
		Type: MergeProgressEventTypeCompleted, RunID: result.RunID, PairCount: dups.Len(), Count: result.Remove.Destroyed,
	})
	logMergeInfo("アーマチュア整理完了: run=%s pairs=%d reparented=%d copied=%d redirected=%d destroyed=%d warnings=%d dryRun=%t",
		result.RunID, dups.Len(), result.Reattach.Reparented, result.Merge.Copied,
		result.Rewrite.Redirected, result.Remove.Destroyed, len(result.Warnings), result.DryRun)
	return result, nil
}

// failBeforeMutation は変更前の失敗として終了する。
func (o *MergeOrchestrator) failBeforeMutation(result *MergeResult, err error) (*MergeResult, error) {
	o.setState(MergeStateFailed)
	result.State = MergeStateFailed
	logMergeError("アーマチュア整理を開始できません: run=%s err=%v", result.RunID, err)
	return result, err
}

// fail はグループを巻き戻して失敗として終了する。
func (o *MergeOrchestrator) fail(result *MergeResult, group int, err error) (*MergeResult, error) {
	o.setState(MergeStateFailed)
	result.State = MergeStateFailed
	logMergeError("アーマチュア整理に失敗したため巻き戻します: run=%s err=%v", result.RunID, err)
	if o.tx != nil {
		if revertErr := o.tx.RevertGroup(group); revertErr != nil {
			logMergeError("巻き戻しに失敗しました: run=%s err=%v", result.RunID, revertErr)
		}
	}
	result.Reattach = ReattachSummary{}
	result.Merge = MergeSummary{}
	result.Rewrite = RewriteSummary{}
	result.Remove = RemoveSummary{}
	result.HashAfter = result.HashBefore
	return result, err
}

// reportMergeProgress は整理処理の進捗を通知する。
func reportMergeProgress(reporter IMergeProgressReporter, event MergeProgressEvent) {
	if reporter == nil {
		return
	}
	reporter.ReportMergeProgress(event)
}
