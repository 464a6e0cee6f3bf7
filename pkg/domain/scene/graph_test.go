// 指示: miu200521358
package scene

import (
	"errors"
	"math"
	"testing"

	"github.com/miu200521358/mu_armature_cleanup/pkg/domain/mmath"
)

func mustAdd(t *testing.T, g *Graph, name string, parent NodeID) NodeID {
	t.Helper()
	id, err := g.AddNode(name, parent)
	if err != nil {
		t.Fatalf("AddNode failed: %v", err)
	}
	return id
}

func TestGraphDestroyInvalidatesStaleID(t *testing.T) {
	g := NewGraph()
	root := mustAdd(t, g, "Avatar", NilNode)
	hips := mustAdd(t, g, "Hips", root)
	spine := mustAdd(t, g, "Spine", hips)

	count, err := g.Destroy(hips)
	if err != nil {
		t.Fatalf("Destroy failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("destroyed count mismatch: got=%d want=2", count)
	}
	if g.Contains(hips) || g.Contains(spine) {
		t.Fatalf("destroyed nodes should not resolve")
	}

	reused := mustAdd(t, g, "Other", root)
	if reused.Index != spine.Index && reused.Index != hips.Index {
		t.Fatalf("slot should be recycled: got=%v", reused)
	}
	if g.Contains(hips) || g.Contains(spine) {
		t.Fatalf("stale id resolved after slot reuse")
	}
	if g.Len() != 2 {
		t.Fatalf("live count mismatch: got=%d want=2", g.Len())
	}
}

func TestGraphSetParentKeepsWorldPlacement(t *testing.T) {
	g := NewGraph()
	root := mustAdd(t, g, "Avatar", NilNode)
	a := mustAdd(t, g, "A", root)
	b := mustAdd(t, g, "B", root)
	leaf := mustAdd(t, g, "Leaf", a)

	_ = g.SetLocalTransform(a, mmath.Transform{
		Translation: mmath.NewVec3(0, 1, 0),
		Rotation:    mmath.NewQuaternionFromAxisAngle(mmath.NewVec3(0, 0, 1), math.Pi/2),
		Scale:       mmath.ONE_VEC3,
	})
	_ = g.SetLocalTransform(b, mmath.Transform{
		Translation: mmath.NewVec3(2, 0, 0),
		Rotation:    mmath.NewQuaternion(),
		Scale:       mmath.NewVec3(2, 2, 2),
	})
	local := mmath.NewTransform()
	local.Translation = mmath.NewVec3(1, 0, 0)
	_ = g.SetLocalTransform(leaf, local)

	before := g.WorldMatrix(leaf)
	if err := g.SetParent(leaf, b, true); err != nil {
		t.Fatalf("SetParent failed: %v", err)
	}
	after := g.WorldMatrix(leaf)
	if !after.NearEquals(before, 1e-9) {
		t.Fatalf("world matrix changed: got=%v want=%v", after, before)
	}
	if g.Parent(leaf) != b {
		t.Fatalf("parent mismatch: got=%v want=%v", g.Parent(leaf), b)
	}
	if len(g.Children(a)) != 0 {
		t.Fatalf("old parent should lose child: %v", g.Children(a))
	}
}

func TestGraphSetParentRejectsCycle(t *testing.T) {
	g := NewGraph()
	root := mustAdd(t, g, "Avatar", NilNode)
	child := mustAdd(t, g, "Child", root)

	err := g.SetParent(root, child, false)
	if !errors.Is(err, ErrCyclicParent) {
		t.Fatalf("expected cyclic error: got=%v", err)
	}
}

func TestGraphFindAndPath(t *testing.T) {
	g := NewGraph()
	root := mustAdd(t, g, "Avatar", NilNode)
	armature := mustAdd(t, g, "Armature", root)
	hips := mustAdd(t, g, "Hips", armature)
	mustAdd(t, g, "Hips", hips)

	found, ok := g.Find(root, "Armature/Hips")
	if !ok || found != hips {
		t.Fatalf("find mismatch: got=%v ok=%v want=%v", found, ok, hips)
	}
	if _, ok := g.Find(root, "Armature/Spine"); ok {
		t.Fatalf("missing path should not be found")
	}
	fromRoot, ok := g.Find(NilNode, "/Avatar/Armature")
	if !ok || fromRoot != armature {
		t.Fatalf("root find mismatch: got=%v", fromRoot)
	}
	if got := g.Path(hips); got != "/Avatar/Armature/Hips" {
		t.Fatalf("path mismatch: got=%s", got)
	}
}

func TestGraphCopyComponentIsValueCopy(t *testing.T) {
	g := NewGraph()
	root := mustAdd(t, g, "Avatar", NilNode)
	a := mustAdd(t, g, "A", root)
	b := mustAdd(t, g, "B", root)

	src := &PhysBone{RootTransform: a, Colliders: []NodeID{root}}
	if err := g.AddComponent(a, src); err != nil {
		t.Fatalf("AddComponent failed: %v", err)
	}
	copied, err := g.CopyComponent(src, b)
	if err != nil {
		t.Fatalf("CopyComponent failed: %v", err)
	}
	pb := copied.(*PhysBone)
	pb.Colliders[0] = b
	if src.Colliders[0] != root {
		t.Fatalf("copy should not share slices")
	}
	if len(g.Components(a)) != 1 || len(g.Components(b)) != 1 {
		t.Fatalf("component count mismatch: a=%d b=%d", len(g.Components(a)), len(g.Components(b)))
	}
}

func TestConstraintSourcesAreCopied(t *testing.T) {
	c := NewConstraint(KIND_PARENT_CONSTRAINT, 1, []ConstraintSource{{Node: NodeID{Index: 1, Generation: 1}, Weight: 0.5}})
	sources := c.Sources()
	sources[0].Weight = 1
	if c.Sources()[0].Weight != 0.5 {
		t.Fatalf("Sources should return a copy")
	}
	c.SetSources(sources)
	if c.Revision() != 1 || c.Sources()[0].Weight != 1 {
		t.Fatalf("SetSources mismatch: rev=%d", c.Revision())
	}

	cloned, err := c.Clone()
	if err != nil {
		t.Fatalf("Clone failed: %v", err)
	}
	if cloned.Kind() != KIND_PARENT_CONSTRAINT || len(cloned.(*Constraint).Sources()) != 1 {
		t.Fatalf("clone mismatch: %#v", cloned)
	}
}

func TestGraphCloneAndRestoreKeepIDs(t *testing.T) {
	g := NewGraph()
	root := mustAdd(t, g, "Avatar", NilNode)
	hips := mustAdd(t, g, "Hips", root)
	_ = g.AddComponent(hips, &Station{EnterLocation: hips})

	snapshot, err := g.Clone()
	if err != nil {
		t.Fatalf("Clone failed: %v", err)
	}
	before, _ := g.Hash()

	if _, err := g.Destroy(hips); err != nil {
		t.Fatalf("Destroy failed: %v", err)
	}
	if err := g.Restore(snapshot); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if !g.Contains(hips) {
		t.Fatalf("restored graph should resolve old id")
	}
	after, _ := g.Hash()
	if before != after {
		t.Fatalf("hash mismatch after restore: got=%d want=%d", after, before)
	}
	station := g.Components(hips)[0].(*Station)
	if station.EnterLocation != hips {
		t.Fatalf("reference mismatch: got=%v", station.EnterLocation)
	}
}

func TestGraphHashReflectsReferences(t *testing.T) {
	g := NewGraph()
	root := mustAdd(t, g, "Avatar", NilNode)
	a := mustAdd(t, g, "A", root)
	b := mustAdd(t, g, "B", root)
	station := &Station{EnterLocation: a}
	_ = g.AddComponent(root, station)

	before, err := g.Hash()
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	station.EnterLocation = b
	after, _ := g.Hash()
	if before == after {
		t.Fatalf("hash should change when a reference changes")
	}
}

func TestReferencesListsNonNilFields(t *testing.T) {
	mesh := &SkinnedMesh{RootBone: NilNode, Bones: []NodeID{{Index: 1, Generation: 1}, NilNode, {Index: 2, Generation: 1}}}
	refs := References(mesh)
	if len(refs) != 2 {
		t.Fatalf("reference count mismatch: got=%d want=2", len(refs))
	}
	if refs[1].Field != "bones[2]" {
		t.Fatalf("field mismatch: got=%s", refs[1].Field)
	}
	if IsReferenceBearing(&Generic{Type: "MeshFilter"}) {
		t.Fatalf("generic should not bear references")
	}
}
