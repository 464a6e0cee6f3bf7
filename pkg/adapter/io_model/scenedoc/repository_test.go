// 指示: miu200521358
package scenedoc

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/miu200521358/mu_armature_cleanup/pkg/domain/model"
	"github.com/miu200521358/mu_armature_cleanup/pkg/domain/scene"
	"github.com/miu200521358/mu_armature_cleanup/pkg/infra/history"
	"github.com/miu200521358/mu_armature_cleanup/pkg/shared/merr"
	"github.com/miu200521358/mu_armature_cleanup/pkg/usecase/minteractor"
	"github.com/miu200521358/mu_armature_cleanup/pkg/usecase/port/moutput"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const duplicatedHipsYAML = `kind: mu_armature_cleanup/scene
version: 1
nodes:
  - name: Avatar
    components:
      - type: VRCAvatarDescriptor
        viewPosition: [0, 1.5, 0.1]
    children:
      - name: Body
        components:
          - type: SkinnedMeshRenderer
            name: Body
            rootBone: hips
            bones: [hips, hips_dup, /Avatar/Armature/Hips/Hips/Spine]
          - type: MeshFilter
            properties:
              mesh: body
      - name: Armature
        children:
          - id: hips
            name: Hips
            translation: [0, 1, 0]
            children:
              - id: hips_dup
                name: Hips
                translation: [0, 0.1, 0]
                components:
                  - type: VRCPhysBone
                    rootTransform: hips_dup
                    colliders: [hips_dup]
                    pull: 0.2
                children:
                  - name: Spine
                    translation: [0, 0.2, 0]
                    components:
                      - type: ParentConstraint
                        weight: 1
                        sources:
                          - node: hips_dup
                            weight: 0.5
`

func writeSceneFileForTest(t *testing.T, name string, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestSceneDocRepositoryCanLoad(t *testing.T) {
	repository := NewSceneDocRepository()

	assert.True(t, repository.CanLoad("scene.yaml"))
	assert.True(t, repository.CanLoad("scene.YML"))
	assert.False(t, repository.CanLoad("scene.vrm"))
	assert.Equal(t, "scene", repository.InferName("/tmp/scene.yaml"))
}

func TestSceneDocRepositoryLoadErrors(t *testing.T) {
	repository := NewSceneDocRepository()
	ctx := context.Background()

	_, err := repository.Load(ctx, "scene.vrm")
	assert.Equal(t, "14102", merr.ExtractErrorID(err))

	_, err = repository.Load(ctx, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, "14101", merr.ExtractErrorID(err))

	path := writeSceneFileForTest(t, "dangling.yaml", `nodes:
  - name: Avatar
    components:
      - type: VRCStation
        enterLocation: nowhere
`)
	_, err = repository.Load(ctx, path)
	assert.Equal(t, "14103", merr.ExtractErrorID(err))

	path = writeSceneFileForTest(t, "kind.yaml", "kind: other/scene\nnodes: []\n")
	_, err = repository.Load(ctx, path)
	assert.Equal(t, "14104", merr.ExtractErrorID(err))

	path = writeSceneFileForTest(t, "dup.yaml", `nodes:
  - id: a
    name: A
  - id: a
    name: B
`)
	_, err = repository.Load(ctx, path)
	assert.Equal(t, "14103", merr.ExtractErrorID(err))
}

func TestSceneDocRepositoryLoadResolvesReferences(t *testing.T) {
	path := writeSceneFileForTest(t, "avatar.yaml", duplicatedHipsYAML)

	modelData, err := NewSceneDocRepository().Load(context.Background(), path)
	require.NoError(t, err)
	graph := modelData.Graph
	assert.Equal(t, FORMAT_SCENE_DOC, modelData.Format)

	avatars := modelData.AvatarRoots()
	require.Len(t, avatars, 1)
	outer, ok := graph.Find(avatars[0], "Armature/Hips")
	require.True(t, ok)
	inner, ok := graph.Find(outer, "Hips")
	require.True(t, ok)
	spine, ok := graph.Find(inner, "Spine")
	require.True(t, ok)

	body, _ := graph.Find(avatars[0], "Body")
	mesh := graph.ComponentsOfKind(body, scene.KIND_SKINNED_MESH)[0].(*scene.SkinnedMesh)
	assert.Equal(t, outer, mesh.RootBone)
	assert.Equal(t, []scene.NodeID{outer, inner, spine}, mesh.Bones)

	physBone := graph.ComponentsOfKind(inner, scene.KIND_PHYS_BONE)[0].(*scene.PhysBone)
	assert.Equal(t, inner, physBone.RootTransform)
	assert.InDelta(t, 0.2, physBone.Pull, 1e-9)

	constraint := graph.ComponentsOfKind(spine, scene.KIND_PARENT_CONSTRAINT)[0].(*scene.Constraint)
	assert.Equal(t, []scene.ConstraintSource{{Node: inner, Weight: 0.5}}, constraint.Sources())

	filter := graph.ComponentsOfKind(body, "MeshFilter")[0].(*scene.Generic)
	assert.Equal(t, "body", filter.Properties["mesh"])
}

func TestSceneDocRepositorySaveRoundTripAfterCleanup(t *testing.T) {
	ctx := context.Background()
	repository := NewSceneDocRepository()
	inputPath := writeSceneFileForTest(t, "avatar.yaml", duplicatedHipsYAML)
	outputPath := filepath.Join(filepath.Dir(inputPath), "avatar_cleanup.yaml")

	modelData, err := repository.Load(ctx, inputPath)
	require.NoError(t, err)
	avatars := modelData.AvatarRoots()
	orchestrator := minteractor.NewMergeOrchestrator(modelData.Graph, history.NewJournal(modelData.Graph))
	result, err := orchestrator.Run(ctx, minteractor.MergeRequest{Avatar: avatars[0], Options: minteractor.DefaultCleanupOptions()})
	require.NoError(t, err)
	require.Len(t, result.Pairs, 1)

	require.NoError(t, repository.Save(ctx, outputPath, modelData, moutput.SaveOptions{Overwrite: true}))
	saved, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(saved), "kind: mu_armature_cleanup/scene"))
	assert.NotContains(t, string(saved), "hips_dup")

	reloaded, err := repository.Load(ctx, outputPath)
	require.NoError(t, err)
	graph := reloaded.Graph
	avatar := reloaded.AvatarRoots()[0]
	hips, ok := graph.Find(avatar, "Armature/Hips")
	require.True(t, ok)
	_, nested := graph.Find(hips, "Hips")
	assert.False(t, nested)
	spine, ok := graph.Find(hips, "Spine")
	require.True(t, ok)
	assert.InDelta(t, 0.3, graph.LocalTransform(spine).Translation.Y, 1e-9)

	physBones := graph.ComponentsOfKind(hips, scene.KIND_PHYS_BONE)
	require.Len(t, physBones, 1)
	physBone := physBones[0].(*scene.PhysBone)
	assert.True(t, physBone.RootTransform.IsNil())
	assert.Equal(t, []scene.NodeID{hips}, physBone.Colliders)

	constraint := graph.ComponentsOfKind(spine, scene.KIND_PARENT_CONSTRAINT)[0].(*scene.Constraint)
	assert.Equal(t, hips, constraint.Sources()[0].Node)

	body, _ := graph.Find(avatar, "Body")
	mesh := graph.ComponentsOfKind(body, scene.KIND_SKINNED_MESH)[0].(*scene.SkinnedMesh)
	assert.Equal(t, []scene.NodeID{hips, hips, spine}, mesh.Bones)
}

func TestSceneDocRepositorySaveAssignsIDsToReferencedNodes(t *testing.T) {
	graph := scene.NewGraph()
	avatar, _ := graph.AddNode("Avatar", scene.NilNode)
	seat, _ := graph.AddNode("Seat Point", avatar)
	require.NoError(t, graph.AddComponent(avatar, &scene.Station{EnterLocation: seat, ExitLocation: seat}))
	modelData := model.NewSceneModel("", "vrm", graph)

	path := filepath.Join(t.TempDir(), "export.yml")
	require.NoError(t, NewSceneDocRepository().Save(context.Background(), path, modelData, moutput.SaveOptions{}))
	saved, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(saved), "id: Seat_Point")
	assert.Contains(t, string(saved), "enterLocation: Seat_Point")

	err = NewSceneDocRepository().Save(context.Background(), path, modelData, moutput.SaveOptions{})
	assert.Equal(t, "14105", merr.ExtractErrorID(err))
}
