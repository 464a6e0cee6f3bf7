// 指示: miu200521358
package minteractor

import (
	"fmt"

	"github.com/miu200521358/mu_armature_cleanup/pkg/domain/model"
	"github.com/miu200521358/mu_armature_cleanup/pkg/domain/scene"
	"github.com/miu200521358/mu_armature_cleanup/pkg/usecase/port/moutput"
)

// RewriteSummary は参照付け替えの結果を表す。
type RewriteSummary struct {
	Redirected         int
	ComponentsUpdated  int
	ConstraintsUpdated int
	Stale              int
	Warnings           []model.CleanupWarning
}

// referenceRewriter は1回の参照付け替えの状態を保持する。
type referenceRewriter struct {
	graph   moutput.ISceneGraph
	tx      moutput.ITransaction
	dups    *DuplicateMap
	summary RewriteSummary

	holder   scene.NodeID
	label    string
	recorded bool
}

// RewriteReferences はグラフ全体の全コンポーネントについて、重複ノードを指す参照を統合先へ付け替える。
// アバター外のノードが持つ参照や複製直後のコンポーネントも対象となる。存在しないノードへの参照は読み飛ばす。
func RewriteReferences(
	graph moutput.ISceneGraph,
	tx moutput.ITransaction,
	dups *DuplicateMap,
) RewriteSummary {
	r := &referenceRewriter{
		graph:   graph,
		tx:      tx,
		dups:    dups,
		summary: RewriteSummary{Warnings: make([]model.CleanupWarning, 0)},
	}
	if dups.Len() == 0 {
		return r.summary
	}

	for _, attached := range graph.ComponentsInChildren(scene.NilNode) {
		if !scene.IsReferenceBearing(attached.Component) {
			continue
		}
		r.holder = attached.Node
		r.label = graph.Path(attached.Node) + "/" + string(attached.Component.Kind())
		r.recorded = false
		if r.rewriteComponent(attached.Component) {
			r.summary.ComponentsUpdated++
		}
	}
	return r.summary
}

// rewriteComponent は種別ごとに参照を付け替え、変更があれば true を返す。
func (r *referenceRewriter) rewriteComponent(component scene.Component) bool {
	changed := false
	switch c := component.(type) {
	case *scene.SkinnedMesh:
		// ルートボーンとボーン一覧はそれぞれ独立して付け替える
		changed = r.redirect("rootBone", &c.RootBone) || changed
		changed = r.redirectList("bones", c.Bones) || changed
	case *scene.PhysBone:
		changed = r.redirect("rootTransform", &c.RootTransform) || changed
		for i := range c.Colliders {
			field := fmt.Sprintf("colliders[%d]", i)
			if r.redirect(field, &c.Colliders[i]) {
				changed = true
				r.warnIfColliderMissing(field, c.Colliders[i])
			}
		}
		changed = r.redirectList("ignoreTransforms", c.IgnoreTransforms) || changed
	case *scene.PhysBoneCollider:
		changed = r.redirect("rootTransform", &c.RootTransform)
	case *scene.Contact:
		changed = r.redirect("rootTransform", &c.RootTransform)
	case *scene.Constraint:
		changed = r.rewriteConstraint(c)
	case *scene.Station:
		changed = r.redirect("enterLocation", &c.EnterLocation) || changed
		changed = r.redirect("exitLocation", &c.ExitLocation) || changed
	case *scene.SpringBone:
		for i := range c.Joints {
			changed = r.redirect(fmt.Sprintf("joints[%d]", i), &c.Joints[i].Node) || changed
		}
		changed = r.redirect("center", &c.Center) || changed
	case *scene.NodeBindings:
		for _, key := range c.SortedKeys() {
			ref := c.Bindings[key]
			if r.redirect(key, &ref) {
				c.Bindings[key] = ref
				changed = true
			}
		}
	}
	return changed
}

// rewriteConstraint はソース一覧を一括で読み出して付け替え、変更があった場合のみ書き戻す。
func (r *referenceRewriter) rewriteConstraint(c *scene.Constraint) bool {
	sources := c.Sources()
	changed := false
	for i := range sources {
		changed = r.redirect(fmt.Sprintf("sources[%d]", i), &sources[i].Node) || changed
	}
	if !changed {
		return false
	}
	c.SetSources(sources)
	r.summary.ConstraintsUpdated++
	return true
}

// redirectList はリスト要素を順序と件数を保ったまま付け替える。
func (r *referenceRewriter) redirectList(field string, refs []scene.NodeID) bool {
	changed := false
	for i := range refs {
		changed = r.redirect(fmt.Sprintf("%s[%d]", field, i), &refs[i]) || changed
	}
	return changed
}

// redirect は参照1件が重複ノードを指す場合に統合先へ書き換える。
func (r *referenceRewriter) redirect(field string, ref *scene.NodeID) bool {
	if ref.IsNil() {
		return false
	}
	if !r.graph.Contains(*ref) {
		r.summary.Stale++
		logMergeDebug("参照先が存在しないため読み飛ばします: %s.%s -> %s", r.label, field, ref)
		return false
	}
	if !r.dups.IsDuplicate(*ref) {
		return false
	}

	survivor := r.dups.Survivor(*ref)
	if !r.recorded && r.tx != nil {
		r.tx.RecordObject(r.holder, "Changing "+r.label)
		r.recorded = true
	}
	logMergeInfo("参照付け替え: %s.%s %s -> %s", r.label, field, r.graph.Path(*ref), r.graph.Path(survivor))
	*ref = survivor
	r.summary.Redirected++
	return true
}

// warnIfColliderMissing は付け替え先にコライダーが無い場合に警告を記録する。
func (r *referenceRewriter) warnIfColliderMissing(field string, target scene.NodeID) {
	for _, component := range r.graph.Components(target) {
		if component.Kind() == scene.KIND_PHYS_BONE_COLLIDER {
			return
		}
	}
	logMergeWarn("付け替え先にコライダーがありません: %s.%s -> %s", r.label, field, r.graph.Path(target))
	r.summary.Warnings = append(r.summary.Warnings, model.CleanupWarning{
		ID:      model.CleanupWarningColliderTargetMissing,
		Path:    r.label,
		Message: fmt.Sprintf("%s -> %s", field, r.graph.Path(target)),
	})
}
