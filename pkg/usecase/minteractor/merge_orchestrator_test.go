// 指示: miu200521358
package minteractor

import (
	"context"
	"testing"

	"github.com/miu200521358/mu_armature_cleanup/pkg/domain/model"
	"github.com/miu200521358/mu_armature_cleanup/pkg/domain/scene"
	"github.com/miu200521358/mu_armature_cleanup/pkg/shared/merr"
)

func runFixture(t *testing.T, f *mergeFixture, request MergeRequest) *MergeResult {
	t.Helper()
	result, err := f.orchestrator().Run(context.Background(), request)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.State != MergeStateDone {
		t.Fatalf("state mismatch: got=%s want=%s", result.State, MergeStateDone)
	}
	return result
}

func TestMergeOrchestratorScenarioAFlattensDuplicateHips(t *testing.T) {
	f := newMergeFixture(t)
	spineWorld := f.graph.WorldMatrix(f.spine)

	result := runFixture(t, f, f.request())
	if len(result.Pairs) != 1 || result.Remove.Destroyed != 1 {
		t.Fatalf("result mismatch: pairs=%d destroyed=%d", len(result.Pairs), result.Remove.Destroyed)
	}
	if f.graph.Contains(f.innerHips) {
		t.Fatalf("duplicate should be destroyed")
	}
	if got, ok := f.graph.Find(f.avatar, "Armature/Hips/Spine"); !ok || got != f.spine {
		t.Fatalf("Armature/Hips/Spine not found: got=%v", got)
	}
	if f.graph.Parent(f.spine) != f.hips {
		t.Fatalf("spine parent mismatch: got=%v want=%v", f.graph.Parent(f.spine), f.hips)
	}
	if !f.graph.WorldMatrix(f.spine).NearEquals(spineWorld, 1e-9) {
		t.Fatalf("spine world placement changed")
	}
	if result.RunID == "" || result.HashBefore == result.HashAfter {
		t.Fatalf("run id / hash mismatch: id=%s before=%d after=%d", result.RunID, result.HashBefore, result.HashAfter)
	}
}

func TestMergeOrchestratorScenarioBRedirectsPhysBoneRoot(t *testing.T) {
	f := newMergeFixture(t)
	physBone := &scene.PhysBone{RootTransform: f.innerHips, IgnoreTransforms: []scene.NodeID{f.innerHips, f.spine}}
	addTestComponent(t, f.graph, f.body, physBone)

	runFixture(t, f, f.request())
	if physBone.RootTransform != f.hips {
		t.Fatalf("root transform mismatch: got=%v want=%v", physBone.RootTransform, f.hips)
	}
	if physBone.IgnoreTransforms[0] != f.hips || physBone.IgnoreTransforms[1] != f.spine {
		t.Fatalf("ignore transforms mismatch: %v", physBone.IgnoreTransforms)
	}
	assertNoDestroyedReferences(t, f.graph)
}

func TestMergeOrchestratorScenarioCRedirectsOnlyDuplicateSource(t *testing.T) {
	f := newMergeFixture(t)
	other := addTestNode(t, f.graph, "Prop", f.avatar)
	constraint := scene.NewConstraint(scene.KIND_ROTATION_CONSTRAINT, 1, []scene.ConstraintSource{
		{Node: f.innerHips, Weight: 0.3},
		{Node: other, Weight: 0.7},
	})
	addTestComponent(t, f.graph, other, constraint)

	runFixture(t, f, f.request())
	sources := constraint.Sources()
	if len(sources) != 2 {
		t.Fatalf("source count mismatch: got=%d", len(sources))
	}
	if sources[0].Node != f.hips || sources[0].Weight != 0.3 {
		t.Fatalf("source[0] mismatch: %+v", sources[0])
	}
	if sources[1].Node != other || sources[1].Weight != 0.7 {
		t.Fatalf("source[1] mismatch: %+v", sources[1])
	}
}

func TestMergeOrchestratorScenarioDReparentsNonDuplicateChild(t *testing.T) {
	f := newMergeFixture(t)
	foot := addTestNode(t, f.graph, "LeftFoot", f.armature)
	innerFoot := addTestNode(t, f.graph, "LeftFoot", foot)
	toe := addTestNode(t, f.graph, "LeftToe", innerFoot)
	setTestTranslation(t, f.graph, toe, 0, -0.05, 0.1)
	toeWorld := f.graph.WorldMatrix(toe)

	runFixture(t, f, f.request())
	if f.graph.Parent(toe) != foot {
		t.Fatalf("toe parent mismatch: got=%s", f.graph.Path(f.graph.Parent(toe)))
	}
	if f.graph.Contains(innerFoot) {
		t.Fatalf("duplicate foot should be destroyed")
	}
	if !f.graph.WorldMatrix(toe).NearEquals(toeWorld, 1e-9) {
		t.Fatalf("toe world placement changed")
	}
}

func TestMergeOrchestratorIsIdempotent(t *testing.T) {
	f := newMergeFixture(t)
	addTestComponent(t, f.graph, f.innerHips, &scene.Station{EnterLocation: f.innerHips})
	first := runFixture(t, f, f.request())

	second := runFixture(t, f, f.request())
	if len(second.Pairs) != 0 {
		t.Fatalf("second run should find no duplicates: got=%d", len(second.Pairs))
	}
	if second.HashBefore != first.HashAfter || second.HashAfter != second.HashBefore {
		t.Fatalf("second run should not change the graph")
	}
}

func TestMergeOrchestratorComponentUnion(t *testing.T) {
	f := newMergeFixture(t)
	addTestComponent(t, f.graph, f.hips, &scene.Contact{Receiver: true})
	addTestComponent(t, f.graph, f.innerHips, &scene.Contact{Receiver: true})
	addTestComponent(t, f.graph, f.innerHips, &scene.Contact{})
	addTestComponent(t, f.graph, f.innerHips, scene.NewConstraint(scene.KIND_PARENT_CONSTRAINT, 1, nil))

	before := map[scene.ComponentKind]int{}
	for _, c := range f.graph.Components(f.innerHips) {
		before[c.Kind()]++
	}
	targetBefore := map[scene.ComponentKind]int{}
	for _, c := range f.graph.Components(f.hips) {
		targetBefore[c.Kind()]++
	}

	runFixture(t, f, f.request())
	after := map[scene.ComponentKind]int{}
	for _, c := range f.graph.Components(f.hips) {
		after[c.Kind()]++
	}
	for kind, count := range before {
		if after[kind] < count+targetBefore[kind] {
			t.Fatalf("component union violated: kind=%s got=%d want>=%d", kind, after[kind], count+targetBefore[kind])
		}
	}
}

func TestMergeOrchestratorChainCollapsesIntoOutermost(t *testing.T) {
	f := newMergeFixture(t)
	innermost := addTestNode(t, f.graph, "Hips", f.innerHips)
	leg := addTestNode(t, f.graph, "LeftUpLeg", innermost)
	mesh := &scene.SkinnedMesh{RootBone: innermost, Bones: []scene.NodeID{innermost, f.innerHips, leg}}
	addTestComponent(t, f.graph, f.body, mesh)
	addTestComponent(t, f.graph, innermost, &scene.PhysBone{RootTransform: innermost})

	result := runFixture(t, f, f.request())
	if result.Remove.Destroyed != 2 || result.Remove.Skipped != 0 {
		t.Fatalf("remove summary mismatch: %+v", result.Remove)
	}
	if f.graph.Parent(leg) != f.hips || f.graph.Parent(f.spine) != f.hips {
		t.Fatalf("children should land on outermost hips")
	}
	if mesh.RootBone != f.hips || mesh.Bones[0] != f.hips || mesh.Bones[1] != f.hips || mesh.Bones[2] != leg {
		t.Fatalf("mesh mismatch: root=%v bones=%v", mesh.RootBone, mesh.Bones)
	}
	if got := len(f.graph.ComponentsOfKind(f.hips, scene.KIND_PHYS_BONE)); got != 1 {
		t.Fatalf("phys bone count mismatch: got=%d want=1", got)
	}
	assertNoDestroyedReferences(t, f.graph)
}

func TestMergeOrchestratorPreconditionFailuresDoNotMutate(t *testing.T) {
	testCases := []struct {
		name    string
		prepare func(t *testing.T, f *mergeFixture) MergeRequest
		wantID  string
	}{
		{
			name: "no avatar",
			prepare: func(t *testing.T, f *mergeFixture) MergeRequest {
				return MergeRequest{Options: DefaultCleanupOptions()}
			},
			wantID: model.ErrIDAvatarMissing,
		},
		{
			name: "no descriptor",
			prepare: func(t *testing.T, f *mergeFixture) MergeRequest {
				return MergeRequest{Avatar: f.armature, Options: DefaultCleanupOptions()}
			},
			wantID: model.ErrIDDescriptorMissing,
		},
		{
			name: "root not found",
			prepare: func(t *testing.T, f *mergeFixture) MergeRequest {
				request := f.request()
				request.RootPath = "Skeleton"
				return request
			},
			wantID: model.ErrIDRootNotFound,
		},
		{
			name: "root outside avatar",
			prepare: func(t *testing.T, f *mergeFixture) MergeRequest {
				other := addTestNode(t, f.graph, "Other", scene.NilNode)
				request := f.request()
				request.Root = addTestNode(t, f.graph, "Armature", other)
				return request
			},
			wantID: model.ErrIDRootOutsideAvatar,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			f := newMergeFixture(t)
			request := tc.prepare(t, f)
			before, _ := f.graph.Hash()

			orchestrator := f.orchestrator()
			result, err := orchestrator.Run(context.Background(), request)
			if merr.ExtractErrorID(err) != tc.wantID {
				t.Fatalf("error id mismatch: got=%v want=%s", err, tc.wantID)
			}
			if result.State != MergeStateFailed || orchestrator.State() != MergeStateFailed {
				t.Fatalf("state mismatch: got=%s", result.State)
			}
			after, _ := f.graph.Hash()
			if before != after {
				t.Fatalf("graph should not be mutated")
			}
			if f.journal.CanUndo() {
				t.Fatalf("no undo group should be recorded")
			}
		})
	}
}

func TestMergeOrchestratorWithoutDescriptorRequirementUsesAvatar(t *testing.T) {
	f := newMergeFixture(t)
	request := MergeRequest{Avatar: f.armature, RootPath: "Hips", Options: DefaultCleanupOptions()}
	request.Options.RequireAvatarDescriptor = false

	result := runFixture(t, f, request)
	if result.Remove.Destroyed != 1 {
		t.Fatalf("destroyed mismatch: got=%d", result.Remove.Destroyed)
	}
}

func TestMergeOrchestratorRevertsOnDanglingReference(t *testing.T) {
	f := newMergeFixture(t)
	addTestComponent(t, f.graph, f.body, &scene.Station{EnterLocation: f.spine})
	addTestComponent(t, f.graph, f.innerHips, &scene.PhysBone{})
	graph := &failingReparentGraph{Graph: f.graph, failOn: f.spine}
	before, _ := f.graph.Hash()

	orchestrator := NewMergeOrchestrator(graph, f.journal)
	result, err := orchestrator.Run(context.Background(), f.request())
	if merr.ExtractErrorID(err) != model.ErrIDDanglingReference {
		t.Fatalf("error id mismatch: got=%v", err)
	}
	if result.State != MergeStateFailed {
		t.Fatalf("state mismatch: got=%s", result.State)
	}
	after, _ := f.graph.Hash()
	if before != after {
		t.Fatalf("graph should be reverted")
	}
	if !f.graph.Contains(f.innerHips) || len(f.graph.Components(f.hips)) != 0 {
		t.Fatalf("revert should restore the duplicate and drop copies")
	}
}

func TestMergeOrchestratorCancellationRevertsAtPhaseBoundary(t *testing.T) {
	f := newMergeFixture(t)
	addTestComponent(t, f.graph, f.innerHips, &scene.PhysBone{})
	before, _ := f.graph.Hash()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	recorder := &progressRecorder{hook: func(event MergeProgressEvent) {
		if event.Type == MergeProgressEventTypeMerged {
			cancel()
		}
	}}
	request := f.request()
	request.ProgressReporter = recorder

	_, err := f.orchestrator().Run(ctx, request)
	if merr.ExtractErrorID(err) != model.ErrIDCanceled {
		t.Fatalf("error id mismatch: got=%v", err)
	}
	after, _ := f.graph.Hash()
	if before != after {
		t.Fatalf("graph should be reverted after cancellation")
	}
	if got := recorder.events[len(recorder.events)-1].Type; got != MergeProgressEventTypeMerged {
		t.Fatalf("last event mismatch: got=%s", got)
	}
}

func TestMergeOrchestratorRejectsReentrantRun(t *testing.T) {
	f := newMergeFixture(t)
	orchestrator := f.orchestrator()
	var nestedErr error
	recorder := &progressRecorder{hook: func(event MergeProgressEvent) {
		if event.Type == MergeProgressEventTypeDetected {
			_, nestedErr = orchestrator.Run(context.Background(), f.request())
		}
	}}
	request := f.request()
	request.ProgressReporter = recorder

	if _, err := orchestrator.Run(context.Background(), request); err != nil {
		t.Fatalf("outer run failed: %v", err)
	}
	if merr.ExtractErrorID(nestedErr) != model.ErrIDAlreadyRunning {
		t.Fatalf("nested run should be rejected: got=%v", nestedErr)
	}
}

func TestMergeOrchestratorDryRunDoesNotMutate(t *testing.T) {
	f := newMergeFixture(t)
	request := f.request()
	request.Options.DryRun = true

	result := runFixture(t, f, request)
	if len(result.Pairs) != 1 || result.Pairs[0].Duplicate != "/Avatar/Armature/Hips/Hips" {
		t.Fatalf("pairs mismatch: %+v", result.Pairs)
	}
	if !f.graph.Contains(f.innerHips) || result.HashBefore != result.HashAfter {
		t.Fatalf("dry run should not mutate")
	}
}

func TestMergeOrchestratorUndoRestoresDuplicates(t *testing.T) {
	f := newMergeFixture(t)
	before, _ := f.graph.Hash()
	runFixture(t, f, f.request())

	name, err := f.journal.Undo()
	if err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if name != MERGE_GROUP_NAME {
		t.Fatalf("group name mismatch: got=%s", name)
	}
	after, _ := f.graph.Hash()
	if before != after || !f.graph.Contains(f.innerHips) {
		t.Fatalf("undo should restore the original graph")
	}
}

func TestMergeOrchestratorReportsEveryPhase(t *testing.T) {
	f := newMergeFixture(t)
	recorder := &progressRecorder{}
	request := f.request()
	request.ProgressReporter = recorder

	result := runFixture(t, f, request)
	want := []MergeProgressEventType{
		MergeProgressEventTypeDetected,
		MergeProgressEventTypeReattached,
		MergeProgressEventTypeMerged,
		MergeProgressEventTypeRewritten,
		MergeProgressEventTypeRemoved,
		MergeProgressEventTypeCompleted,
	}
	if len(recorder.events) != len(want) {
		t.Fatalf("event count mismatch: got=%d want=%d", len(recorder.events), len(want))
	}
	for i, event := range recorder.events {
		if event.Type != want[i] || event.RunID != result.RunID {
			t.Fatalf("event[%d] mismatch: got=%s/%s", i, event.Type, event.RunID)
		}
	}
}

func TestMergeOrchestratorRedirectsReferencesOutsideAvatar(t *testing.T) {
	f := newMergeFixture(t)
	prop := addTestNode(t, f.graph, "Prop", scene.NilNode)
	physBone := &scene.PhysBone{RootTransform: f.innerHips}
	addTestComponent(t, f.graph, prop, physBone)

	result := runFixture(t, f, f.request())
	if result.Remove.Destroyed != 1 {
		t.Fatalf("destroyed mismatch: got=%d", result.Remove.Destroyed)
	}
	if physBone.RootTransform != f.hips {
		t.Fatalf("prop reference should point at surviving hips: got=%v want=%v", physBone.RootTransform, f.hips)
	}
	assertNoDestroyedReferences(t, f.graph)
}

func TestMergeOrchestratorRevertsWhenChildCannotBeReattached(t *testing.T) {
	f := newMergeFixture(t)
	addTestComponent(t, f.graph, f.innerHips, &scene.PhysBone{Pull: 0.3})
	graph := &failingReparentGraph{Graph: f.graph, failOn: f.spine}
	before, _ := f.graph.Hash()

	orchestrator := NewMergeOrchestrator(graph, f.journal)
	result, err := orchestrator.Run(context.Background(), f.request())
	if merr.ExtractErrorID(err) != model.ErrIDChildNotReattached {
		t.Fatalf("error id mismatch: got=%v", err)
	}
	if result.State != MergeStateFailed {
		t.Fatalf("state mismatch: got=%s", result.State)
	}
	if !f.graph.Contains(f.spine) || f.graph.Parent(f.spine) != f.innerHips {
		t.Fatalf("spine should survive under the restored duplicate")
	}
	after, _ := f.graph.Hash()
	if before != after {
		t.Fatalf("graph should be reverted")
	}
	if result.Reattach.Reparented != 0 || result.Merge.Copied != 0 || result.Rewrite.Redirected != 0 || result.Remove.Destroyed != 0 {
		t.Fatalf("reverted run should not report applied work: %+v %+v %+v %+v",
			result.Reattach, result.Merge, result.Rewrite, result.Remove)
	}
	if result.HashAfter != result.HashBefore {
		t.Fatalf("hash after revert mismatch: before=%d after=%d", result.HashBefore, result.HashAfter)
	}
	if len(result.Warnings) == 0 || result.Warnings[0].ID != model.CleanupWarningReparentFailed {
		t.Fatalf("reparent warning should be kept: %+v", result.Warnings)
	}
}
