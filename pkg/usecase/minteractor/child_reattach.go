// 指示: miu200521358
package minteractor

import (
	"fmt"

	"github.com/miu200521358/mu_armature_cleanup/pkg/domain/model"
	"github.com/miu200521358/mu_armature_cleanup/pkg/usecase/port/moutput"
)

// ReattachOptions は子ノード付け替えの設定を表す。
type ReattachOptions struct {
	// KeepWorldTransform が true の場合、付け替え後もワールド姿勢を維持する。
	KeepWorldTransform bool
}

// ReattachSummary は子ノード付け替えの結果を表す。
type ReattachSummary struct {
	Reparented int
	Warnings   []model.CleanupWarning
}

// ReattachChildren は重複ノード直下の子のうち、自身が重複でないものを統合先へ付け替える。
// 重複である子は自身の組で処理されるため付け替えない。
func ReattachChildren(
	graph moutput.ISceneGraph,
	tx moutput.ITransaction,
	dups *DuplicateMap,
	opts ReattachOptions,
) ReattachSummary {
	summary := ReattachSummary{Warnings: make([]model.CleanupWarning, 0)}
	for _, pair := range dups.Pairs() {
		survivor := dups.Survivor(pair.Duplicate)
		for _, child := range graph.Children(pair.Duplicate) {
			if dups.IsDuplicate(child) {
				logMergeDebug("子ボーン付け替えスキップ(重複): %s", graph.Path(child))
				continue
			}

			childPath := graph.Path(child)
			if tx != nil {
				tx.RecordObject(child, "Reparent bone "+childPath)
			}
			if err := graph.SetParent(child, survivor, opts.KeepWorldTransform); err != nil {
				logMergeWarn("子ボーン付け替えに失敗しました: bone=%s target=%s err=%v", childPath, graph.Path(survivor), err)
				summary.Warnings = append(summary.Warnings, model.CleanupWarning{
					ID:      model.CleanupWarningReparentFailed,
					Path:    childPath,
					Message: fmt.Sprintf("付け替え先=%s: %v", graph.Path(survivor), err),
				})
				continue
			}
			summary.Reparented++
			logMergeInfo("子ボーン付け替え: %s -> %s", childPath, graph.Path(child))
		}
	}
	return summary
}
