// 指示: miu200521358
package minteractor

import (
	"testing"

	"github.com/miu200521358/mu_armature_cleanup/pkg/domain/mmath"
	"github.com/miu200521358/mu_armature_cleanup/pkg/domain/scene"
	"github.com/miu200521358/mu_armature_cleanup/pkg/infra/history"
)

// mergeFixture は Avatar/Armature/Hips/Hips/Spine 構成のテスト用グラフを表す。
type mergeFixture struct {
	graph     *scene.Graph
	journal   *history.Journal
	avatar    scene.NodeID
	body      scene.NodeID
	armature  scene.NodeID
	hips      scene.NodeID
	innerHips scene.NodeID
	spine     scene.NodeID
}

func addTestNode(t *testing.T, graph *scene.Graph, name string, parent scene.NodeID) scene.NodeID {
	t.Helper()
	id, err := graph.AddNode(name, parent)
	if err != nil {
		t.Fatalf("AddNode failed: name=%s err=%v", name, err)
	}
	return id
}

func addTestComponent(t *testing.T, graph *scene.Graph, id scene.NodeID, component scene.Component) {
	t.Helper()
	if err := graph.AddComponent(id, component); err != nil {
		t.Fatalf("AddComponent failed: %v", err)
	}
}

func setTestTranslation(t *testing.T, graph *scene.Graph, id scene.NodeID, x, y, z float64) {
	t.Helper()
	local := mmath.NewTransform()
	local.Translation = mmath.NewVec3(x, y, z)
	if err := graph.SetLocalTransform(id, local); err != nil {
		t.Fatalf("SetLocalTransform failed: %v", err)
	}
}

func newMergeFixture(t *testing.T) *mergeFixture {
	t.Helper()
	graph := scene.NewGraph()
	f := &mergeFixture{graph: graph, journal: history.NewJournal(graph)}
	f.avatar = addTestNode(t, graph, "Avatar", scene.NilNode)
	addTestComponent(t, graph, f.avatar, &scene.AvatarDescriptor{ViewPosition: mmath.NewVec3(0, 1.4, 0.1)})
	f.body = addTestNode(t, graph, "Body", f.avatar)
	f.armature = addTestNode(t, graph, "Armature", f.avatar)
	f.hips = addTestNode(t, graph, "Hips", f.armature)
	setTestTranslation(t, graph, f.hips, 0, 0.9, 0)
	f.innerHips = addTestNode(t, graph, "Hips", f.hips)
	setTestTranslation(t, graph, f.innerHips, 0, 0.05, 0)
	f.spine = addTestNode(t, graph, "Spine", f.innerHips)
	setTestTranslation(t, graph, f.spine, 0, 0.1, 0)
	return f
}

func (f *mergeFixture) orchestrator() *MergeOrchestrator {
	return NewMergeOrchestrator(f.graph, f.journal)
}

func (f *mergeFixture) request() MergeRequest {
	return MergeRequest{Avatar: f.avatar, Options: DefaultCleanupOptions()}
}

// progressRecorder は進捗イベントを記録し、任意の処理を差し込む。
type progressRecorder struct {
	events []MergeProgressEvent
	hook   func(event MergeProgressEvent)
}

func (r *progressRecorder) ReportMergeProgress(event MergeProgressEvent) {
	r.events = append(r.events, event)
	if r.hook != nil {
		r.hook(event)
	}
}

// failingReparentGraph は指定ノードの付け替えを失敗させる。
type failingReparentGraph struct {
	*scene.Graph
	failOn scene.NodeID
}

func (g *failingReparentGraph) SetParent(child scene.NodeID, parent scene.NodeID, keepWorld bool) error {
	if child == g.failOn {
		return errTestReparent
	}
	return g.Graph.SetParent(child, parent, keepWorld)
}

type testError string

func (e testError) Error() string { return string(e) }

const errTestReparent = testError("reparent refused")

// assertNoDestroyedReferences は全参照が生存ノードを指すことを検証する。
func assertNoDestroyedReferences(t *testing.T, graph *scene.Graph) {
	t.Helper()
	for _, attached := range graph.ComponentsInChildren(scene.NilNode) {
		for _, ref := range scene.References(attached.Component) {
			if !graph.Contains(ref.Node) {
				t.Fatalf("dangling reference: holder=%s field=%s", graph.Path(attached.Node), ref.Field)
			}
		}
	}
}
