// 指示: miu200521358
package vrm

import (
	"github.com/miu200521358/mu_armature_cleanup/pkg/adapter/io_common"
	"github.com/miu200521358/mu_armature_cleanup/pkg/domain/scene"
	"github.com/tiendc/go-deepcopy"
)

// sceneWriter はシーングラフの現在状態を読込元glTF文書へ書き戻す。
type sceneWriter struct {
	graph    *scene.Graph
	source   *vrmSource
	doc      map[string]any
	order    []scene.NodeID
	newIndex map[scene.NodeID]int
	oldIndex map[scene.NodeID]int
}

// writeDocument は書き戻し済みのglTF文書を返す。読込元文書は変更しない。
func writeDocument(graph *scene.Graph, source *vrmSource) (map[string]any, error) {
	doc := map[string]any{}
	if err := deepcopy.Copy(&doc, source.document); err != nil {
		return nil, io_common.NewIoSaveFailed("glTF文書の複製に失敗しました", err)
	}
	w := &sceneWriter{
		graph:    graph,
		source:   source,
		doc:      doc,
		newIndex: map[scene.NodeID]int{},
		oldIndex: map[scene.NodeID]int{},
	}
	w.buildOrder()
	if err := w.writeNodes(); err != nil {
		return nil, err
	}
	if err := w.writeSkins(); err != nil {
		return nil, err
	}
	w.writeScenes()
	w.writeBindings()
	collapsed := w.writeSprings()
	logVrmStep("VRM保存ステップ: 書き戻し完了 nodes=%d collapsedJoints=%d", len(w.order), collapsed)
	return doc, nil
}

// buildOrder は残存ノードを元のnode順、続いて新規ノードを走査順に並べる。
func (w *sceneWriter) buildOrder() {
	for oldIndex, id := range w.source.nodeIDs {
		if !w.graph.Contains(id) {
			continue
		}
		w.oldIndex[id] = oldIndex
		w.newIndex[id] = len(w.order)
		w.order = append(w.order, id)
	}
	w.graph.Walk(w.source.avatar, func(id scene.NodeID, _ int) bool {
		if id == w.source.avatar {
			return true
		}
		if _, ok := w.newIndex[id]; !ok {
			w.newIndex[id] = len(w.order)
			w.order = append(w.order, id)
		}
		return true
	})
}

// ref は残存ノードの新しいインデックスを返す。
func (w *sceneWriter) ref(id scene.NodeID) (int, bool) {
	index, ok := w.newIndex[id]
	return index, ok
}

// remapOld は元のインデックスを新しいインデックスへ変換する。
// 破棄されたノードは元の親をたどり、最も近い残存祖先とする。
func (w *sceneWriter) remapOld(oldIndex int) (int, bool) {
	for oldIndex >= 0 && oldIndex < len(w.source.nodeIDs) {
		if index, ok := w.ref(w.source.nodeIDs[oldIndex]); ok {
			return index, true
		}
		oldIndex = w.source.parents[oldIndex]
	}
	return 0, false
}

// writeNodes は nodes 配列を再構築する。
func (w *sceneWriter) writeNodes() error {
	rawNodes, _ := asSlice(w.doc["nodes"])
	nodes := make([]any, 0, len(w.order))
	for _, id := range w.order {
		node := map[string]any{}
		if oldIndex, ok := w.oldIndex[id]; ok && oldIndex < len(rawNodes) {
			if raw, ok := asMap(rawNodes[oldIndex]); ok {
				node = raw
			}
		}
		node["name"] = w.graph.Name(id)

		local := w.graph.LocalTransform(id)
		delete(node, "matrix")
		node["translation"] = local.Translation.Slice()
		node["rotation"] = local.Rotation.Normalized().Slice()
		node["scale"] = local.Scale.Slice()

		children := make([]any, 0)
		for _, child := range w.graph.Children(id) {
			if index, ok := w.ref(child); ok {
				children = append(children, index)
			}
		}
		if len(children) > 0 {
			node["children"] = children
		} else {
			delete(node, "children")
		}

		w.writeMeshFilter(id, node)
		if err := w.writeConstraint(id, node); err != nil {
			return err
		}
		nodes = append(nodes, node)
	}
	w.doc["nodes"] = nodes
	return nil
}

// writeMeshFilter は複製されたメッシュ参照をメッシュ未設定ノードへ反映する。
func (w *sceneWriter) writeMeshFilter(id scene.NodeID, node map[string]any) {
	if _, ok := node["mesh"]; ok {
		return
	}
	for _, c := range w.graph.ComponentsOfKind(id, meshFilterType) {
		generic, ok := c.(*scene.Generic)
		if !ok {
			continue
		}
		if mesh, ok := asIndex(generic.Properties[meshFilterProperty]); ok {
			node["mesh"] = mesh
			return
		}
	}
}

// writeConstraint はノード上の拘束を VRMC_node_constraint として書き戻す。
func (w *sceneWriter) writeConstraint(id scene.NodeID, node map[string]any) error {
	extensions, _ := asMap(node["extensions"])
	if extensions != nil {
		delete(extensions, "VRMC_node_constraint")
	}

	for _, c := range w.graph.Components(id) {
		constraint, ok := c.(*scene.Constraint)
		if !ok {
			continue
		}
		typ, _ := constraint.Properties[constraintPropertyType].(string)
		if typ == "" {
			continue
		}
		sources := constraint.Sources()
		if len(sources) == 0 {
			return io_common.NewIoSaveFailed("拘束のソースがありません: %s", nil, w.graph.Path(id))
		}
		source, ok := w.ref(sources[0].Node)
		if !ok {
			return io_common.NewIoSaveFailed("拘束のソースが見つかりません: %s", nil, w.graph.Path(id))
		}

		definition := map[string]any{}
		if settings, ok := asMap(constraint.Properties[constraintPropertySettings]); ok {
			for key, value := range settings {
				definition[key] = value
			}
		}
		definition["source"] = source
		definition["weight"] = constraint.Weight

		body := map[string]any{"constraint": map[string]any{typ: definition}}
		if version, ok := constraint.Properties[constraintPropertyVersion].(string); ok {
			body["specVersion"] = version
		}
		if extensions == nil {
			extensions = map[string]any{}
		}
		extensions["VRMC_node_constraint"] = body
		break
	}

	if len(extensions) > 0 {
		node["extensions"] = extensions
	} else {
		delete(node, "extensions")
	}
	return nil
}

// writeSkins はスキンメッシュのボーン割り当てを skins へ書き戻す。
func (w *sceneWriter) writeSkins() error {
	skins, ok := asSlice(w.doc["skins"])
	if !ok {
		return nil
	}
	meshes := map[int]*scene.SkinnedMesh{}
	for _, id := range w.order {
		for _, c := range w.graph.ComponentsOfKind(id, scene.KIND_SKINNED_MESH) {
			mesh := c.(*scene.SkinnedMesh)
			if _, exists := meshes[mesh.Skin]; !exists {
				meshes[mesh.Skin] = mesh
			}
		}
	}

	for skinIndex, raw := range skins {
		skin, ok := asMap(raw)
		if !ok {
			continue
		}
		mesh, ok := meshes[skinIndex]
		if !ok {
			w.remapSkinByIndex(skin)
			continue
		}
		joints := make([]any, 0, len(mesh.Bones))
		for _, bone := range mesh.Bones {
			index, ok := w.ref(bone)
			if !ok {
				return io_common.NewIoSaveFailed("skins[%d] のjointが見つかりません: %s", nil, skinIndex, w.graph.Path(bone))
			}
			joints = append(joints, index)
		}
		skin["joints"] = joints
		if index, ok := w.ref(mesh.RootBone); ok {
			skin["skeleton"] = index
		} else {
			delete(skin, "skeleton")
		}
	}
	return nil
}

// remapSkinByIndex は参照するメッシュが残っていないスキンを元インデックスから変換する。
func (w *sceneWriter) remapSkinByIndex(skin map[string]any) {
	joints, _ := asSlice(skin["joints"])
	for i, raw := range joints {
		if oldIndex, ok := asIndex(raw); ok {
			if index, ok := w.remapOld(oldIndex); ok {
				joints[i] = index
			}
		}
	}
	if oldIndex, ok := asIndex(skin["skeleton"]); ok {
		if index, ok := w.remapOld(oldIndex); ok {
			skin["skeleton"] = index
		} else {
			delete(skin, "skeleton")
		}
	}
}

// writeScenes は scenes のルート一覧を書き戻す。
func (w *sceneWriter) writeScenes() {
	scenes, ok := asSlice(w.doc["scenes"])
	if !ok || len(scenes) == 0 {
		return
	}
	defaultScene := 0
	if index, ok := asIndex(w.doc["scene"]); ok && index < len(scenes) {
		defaultScene = index
	}
	for sceneIndex, raw := range scenes {
		sc, ok := asMap(raw)
		if !ok {
			continue
		}
		roots := make([]any, 0)
		seen := map[int]struct{}{}
		appendRoot := func(index int) {
			if _, exists := seen[index]; !exists {
				seen[index] = struct{}{}
				roots = append(roots, index)
			}
		}
		list, _ := asSlice(sc["nodes"])
		for _, rawRoot := range list {
			oldIndex, ok := asIndex(rawRoot)
			if !ok || oldIndex >= len(w.source.nodeIDs) {
				continue
			}
			id := w.source.nodeIDs[oldIndex]
			if w.graph.Parent(id) != w.source.avatar {
				continue
			}
			if index, ok := w.ref(id); ok {
				appendRoot(index)
			}
		}
		if sceneIndex == defaultScene {
			for _, child := range w.graph.Children(w.source.avatar) {
				if index, ok := w.ref(child); ok {
					appendRoot(index)
				}
			}
		}
		sc["nodes"] = roots
	}
}

// writeBindings は単一ノード参照をJSONポインタ位置へ書き戻す。
func (w *sceneWriter) writeBindings() {
	for _, c := range w.graph.ComponentsOfKind(w.source.avatar, scene.KIND_NODE_BINDINGS) {
		bindings := c.(*scene.NodeBindings)
		for _, pointer := range bindings.SortedKeys() {
			if index, ok := w.ref(bindings.Bindings[pointer]); ok {
				setPointer(w.doc, pointer, index)
				continue
			}
			if !deletePointer(w.doc, pointer) {
				logVrmWarn("VRM保存: 参照を削除できないため残します: %s", pointer)
			}
		}
	}
}

// writeSprings は揺れものチェーンを書き戻す。連続する同一関節は1つにまとめる。
func (w *sceneWriter) writeSprings() int {
	collapsed := 0
	for _, c := range w.graph.ComponentsOfKind(w.source.avatar, scene.KIND_SPRING_BONE) {
		spring := c.(*scene.SpringBone)
		pointer, _ := spring.Properties[springPropertyPointer].(string)
		raw, ok := getPointer(w.doc, pointer)
		if !ok {
			continue
		}
		target, ok := asMap(raw)
		if !ok {
			continue
		}

		indices := make([]int, 0, len(spring.Joints))
		joints := make([]scene.SpringJoint, 0, len(spring.Joints))
		for _, joint := range spring.Joints {
			index, ok := w.ref(joint.Node)
			if !ok {
				collapsed++
				continue
			}
			if len(indices) > 0 && indices[len(indices)-1] == index {
				collapsed++
				continue
			}
			indices = append(indices, index)
			joints = append(joints, joint)
		}
		center, hasCenter := w.ref(spring.Center)

		switch spring.Properties[springPropertyLayout] {
		case springLayoutVrm0:
			bones := make([]any, len(indices))
			for i, index := range indices {
				bones[i] = index
			}
			target["bones"] = bones
			if hasCenter {
				target["center"] = center
			} else {
				target["center"] = -1
			}
		default:
			list := make([]any, len(indices))
			for i, index := range indices {
				joint := map[string]any{}
				for key, value := range joints[i].Properties {
					joint[key] = value
				}
				joint["node"] = index
				list[i] = joint
			}
			target["joints"] = list
			if hasCenter {
				target["center"] = center
			} else {
				delete(target, "center")
			}
		}
	}
	return collapsed
}
