// 指示: miu200521358
package minteractor

import (
	"sort"

	"github.com/miu200521358/mu_armature_cleanup/pkg/domain/model"
	"github.com/miu200521358/mu_armature_cleanup/pkg/domain/scene"
	"github.com/miu200521358/mu_armature_cleanup/pkg/usecase/port/moutput"
)

// RemoveSummary は重複ノード破棄の結果を表す。
type RemoveSummary struct {
	Destroyed      int
	DestroyedNodes int
	Skipped        int
}

// RemoveDuplicates は全重複ノードを深い組から順に破棄する。
// 破棄前に、グラフ全体で破棄対象の外から破棄対象を指す参照が残っていないこと、
// および重複でない子が重複ノードの下に残っていないことを検証する。
func RemoveDuplicates(
	graph moutput.ISceneGraph,
	tx moutput.ITransaction,
	index *NodeIndex,
	dups *DuplicateMap,
) (RemoveSummary, error) {
	summary := RemoveSummary{}
	if dups.Len() == 0 {
		return summary, nil
	}

	doomed := collectDoomedNodes(graph, dups)
	if err := verifyNoDanglingReferences(graph, doomed); err != nil {
		return summary, err
	}
	if err := verifyChildrenReattached(graph, dups); err != nil {
		return summary, err
	}

	pairs := dups.Pairs()
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairDepth(graph, index, pairs[i].Duplicate) > pairDepth(graph, index, pairs[j].Duplicate)
	})

	for _, pair := range pairs {
		if !graph.Contains(pair.Duplicate) {
			summary.Skipped++
			logMergeDebug("破棄済みのためスキップ: %s", pair.Duplicate)
			continue
		}
		path := graph.Path(pair.Duplicate)
		if tx != nil {
			tx.RecordObject(pair.Duplicate, "Destroy "+path)
		}
		count, err := graph.Destroy(pair.Duplicate)
		if err != nil {
			return summary, err
		}
		summary.Destroyed++
		summary.DestroyedNodes += count
		logMergeInfo("重複ボーン破棄: %s (nodes=%d)", path, count)
	}
	return summary, nil
}

// collectDoomedNodes は破棄される全ノード (重複ノードの配下を含む) を返す。
func collectDoomedNodes(graph moutput.ISceneGraph, dups *DuplicateMap) map[scene.NodeID]struct{} {
	doomed := make(map[scene.NodeID]struct{})
	for _, pair := range dups.Pairs() {
		graph.Walk(pair.Duplicate, func(id scene.NodeID, _ int) bool {
			doomed[id] = struct{}{}
			return true
		})
	}
	return doomed
}

// verifyNoDanglingReferences は破棄対象外のコンポーネントが破棄対象を参照していないか検証する。
func verifyNoDanglingReferences(graph moutput.ISceneGraph, doomed map[scene.NodeID]struct{}) error {
	for _, attached := range graph.ComponentsInChildren(scene.NilNode) {
		if _, ok := doomed[attached.Node]; ok {
			continue
		}
		for _, ref := range scene.References(attached.Component) {
			if _, ok := doomed[ref.Node]; !ok {
				continue
			}
			holder := graph.Path(attached.Node) + "/" + string(attached.Component.Kind())
			logMergeError("破棄対象への参照が残っています: %s.%s -> %s", holder, ref.Field, graph.Path(ref.Node))
			return model.NewDanglingReference(holder, ref.Field, graph.Path(ref.Node))
		}
	}
	return nil
}

// verifyChildrenReattached は重複ノードの直下に重複でない子が残っていないか検証する。
func verifyChildrenReattached(graph moutput.ISceneGraph, dups *DuplicateMap) error {
	for _, pair := range dups.Pairs() {
		for _, child := range graph.Children(pair.Duplicate) {
			if dups.IsDuplicate(child) {
				continue
			}
			logMergeError("重複ボーンの下に子ボーンが残っています: %s", graph.Path(child))
			return model.NewChildNotReattached(graph.Path(child), graph.Path(pair.Duplicate))
		}
	}
	return nil
}

// pairDepth は破棄順の判定に使う深さを返す。
func pairDepth(graph moutput.ISceneGraph, index *NodeIndex, id scene.NodeID) int {
	if index != nil {
		if depth := index.Depth(id); depth >= 0 {
			return depth
		}
	}
	depth := 0
	for current := graph.Parent(id); !current.IsNil(); current = graph.Parent(current) {
		depth++
	}
	return depth
}
