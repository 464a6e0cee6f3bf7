// 指示: miu200521358
package vrm

import (
	"fmt"
	"sort"

	"github.com/miu200521358/mu_armature_cleanup/pkg/adapter/io_common"
	"github.com/miu200521358/mu_armature_cleanup/pkg/domain/mmath"
	"github.com/miu200521358/mu_armature_cleanup/pkg/domain/scene"
)

const (
	springLayoutVrmc = "vrmc"
	springLayoutVrm0 = "vrm0"

	springPropertyPointer = "pointer"
	springPropertyLayout  = "layout"

	constraintPropertyType     = "vrmcType"
	constraintPropertySettings = "settings"
	constraintPropertyVersion  = "specVersion"

	meshFilterType     = scene.ComponentKind("MeshFilter")
	meshFilterProperty = "mesh"
)

// vrmSource は保存時にglTFへ書き戻すための読込元情報を表す。
type vrmSource struct {
	document map[string]any
	bin      []byte
	avatar   scene.NodeID
	nodeIDs  []scene.NodeID
	parents  []int
}

// sceneBuilder はglTF文書からシーングラフを構築する。
type sceneBuilder struct {
	doc      map[string]any
	nodes    []map[string]any
	graph    *scene.Graph
	nodeIDs  []scene.NodeID
	parents  []int
	avatar   scene.NodeID
	bindings map[string]scene.NodeID
}

// buildSceneGraph はglTF文書をアバターノード配下のシーングラフへ変換する。
func buildSceneGraph(doc map[string]any, avatarName string) (*scene.Graph, *vrmSource, error) {
	b := &sceneBuilder{doc: doc, graph: scene.NewGraph(), bindings: map[string]scene.NodeID{}}
	if err := b.collectNodes(); err != nil {
		return nil, nil, err
	}
	if err := b.buildParents(); err != nil {
		return nil, nil, err
	}

	avatar, err := b.graph.AddNode(avatarName, scene.NilNode)
	if err != nil {
		return nil, nil, err
	}
	b.avatar = avatar
	if err := b.buildNodes(); err != nil {
		return nil, nil, err
	}
	logVrmStep("VRM読込ステップ: ノード構築完了 nodes=%d", len(b.nodes))

	if err := b.buildNodeComponents(); err != nil {
		return nil, nil, err
	}
	if err := b.collectBindings(); err != nil {
		return nil, nil, err
	}
	springs, err := b.buildSpringBones()
	if err != nil {
		return nil, nil, err
	}

	descriptor := &scene.AvatarDescriptor{
		ViewPosition: b.viewPosition(),
		ArmaturePath: b.armaturePath(),
	}
	if err := b.graph.AddComponent(avatar, descriptor); err != nil {
		return nil, nil, err
	}
	if len(b.bindings) > 0 {
		if err := b.graph.AddComponent(avatar, &scene.NodeBindings{Bindings: b.bindings}); err != nil {
			return nil, nil, err
		}
	}
	for _, spring := range springs {
		if err := b.graph.AddComponent(avatar, spring); err != nil {
			return nil, nil, err
		}
	}
	logVrmStep("VRM読込ステップ: 参照構築完了 bindings=%d springs=%d armature=%s",
		len(b.bindings), len(springs), descriptor.ArmaturePath)

	return b.graph, &vrmSource{
		document: doc,
		avatar:   avatar,
		nodeIDs:  b.nodeIDs,
		parents:  b.parents,
	}, nil
}

// collectNodes は nodes 配列を取り出す。
func (b *sceneBuilder) collectNodes() error {
	raw, ok := b.doc["nodes"]
	if !ok {
		return nil
	}
	values, ok := asSlice(raw)
	if !ok {
		return io_common.NewIoParseFailed("nodes が配列ではありません", nil)
	}
	b.nodes = make([]map[string]any, len(values))
	for i, v := range values {
		node, ok := asMap(v)
		if !ok {
			return io_common.NewIoParseFailed("nodes[%d] がオブジェクトではありません", nil, i)
		}
		b.nodes[i] = node
	}
	return nil
}

// buildParents は children から親インデックスを求める。
func (b *sceneBuilder) buildParents() error {
	b.parents = make([]int, len(b.nodes))
	for i := range b.parents {
		b.parents[i] = -1
	}
	for parentIndex, node := range b.nodes {
		children, _ := asSlice(node["children"])
		for _, c := range children {
			childIndex, ok := asIndex(c)
			if !ok || childIndex >= len(b.nodes) {
				return io_common.NewIoParseFailed("node.children のindexが不正です: %v", nil, c)
			}
			if b.parents[childIndex] != -1 {
				return io_common.NewIoParseFailed("node が複数の親を持っています: %d", nil, childIndex)
			}
			b.parents[childIndex] = parentIndex
		}
	}
	return nil
}

// buildNodes は親を持たないノードから順にグラフへ追加する。
func (b *sceneBuilder) buildNodes() error {
	b.nodeIDs = make([]scene.NodeID, len(b.nodes))
	for i := range b.nodes {
		if b.parents[i] != -1 {
			continue
		}
		if err := b.addNode(i, b.avatar); err != nil {
			return err
		}
	}
	for i, id := range b.nodeIDs {
		if id.IsNil() {
			return io_common.NewIoParseFailed("node親子関係に循環があります: %d", nil, i)
		}
	}
	return nil
}

// addNode はノードと子孫をグラフへ追加する。
func (b *sceneBuilder) addNode(index int, parent scene.NodeID) error {
	node := b.nodes[index]
	name, _ := node["name"].(string)
	if name == "" {
		name = fmt.Sprintf("node_%d", index)
	}
	id, err := b.graph.AddNode(name, parent)
	if err != nil {
		return err
	}
	b.nodeIDs[index] = id

	local, err := nodeLocalTransform(node, index)
	if err != nil {
		return err
	}
	if err := b.graph.SetLocalTransform(id, local); err != nil {
		return err
	}

	children, _ := asSlice(node["children"])
	for _, c := range children {
		childIndex, _ := asIndex(c)
		if err := b.addNode(childIndex, id); err != nil {
			return err
		}
	}
	return nil
}

// nodeLocalTransform は matrix または TRS からローカル姿勢を求める。
func nodeLocalTransform(node map[string]any, index int) (mmath.Transform, error) {
	local := mmath.NewTransform()
	if raw, ok := node["matrix"]; ok {
		values, ok := asFloats(raw)
		if !ok || len(values) != 16 {
			return local, io_common.NewIoParseFailed("nodes[%d].matrix の要素数が不正です", nil, index)
		}
		var mat mmath.Mat4
		copy(mat[:], values)
		return mmath.NewTransformFromMat4(mat), nil
	}
	if raw, ok := node["translation"]; ok {
		values, ok := asFloats(raw)
		if !ok || len(values) != 3 {
			return local, io_common.NewIoParseFailed("nodes[%d].translation の要素数が不正です", nil, index)
		}
		local.Translation = mmath.NewVec3(values[0], values[1], values[2])
	}
	if raw, ok := node["rotation"]; ok {
		values, ok := asFloats(raw)
		if !ok || len(values) != 4 {
			return local, io_common.NewIoParseFailed("nodes[%d].rotation の要素数が不正です", nil, index)
		}
		local.Rotation = mmath.NewQuaternionByValues(values[0], values[1], values[2], values[3]).Normalized()
	}
	if raw, ok := node["scale"]; ok {
		values, ok := asFloats(raw)
		if !ok || len(values) != 3 {
			return local, io_common.NewIoParseFailed("nodes[%d].scale の要素数が不正です", nil, index)
		}
		local.Scale = mmath.NewVec3(values[0], values[1], values[2])
	}
	return local, nil
}

// nodeRef はnodeインデックスをNodeIDへ変換する。
func (b *sceneBuilder) nodeRef(value any, label string) (scene.NodeID, error) {
	index, ok := asIndex(value)
	if !ok || index >= len(b.nodeIDs) {
		return scene.NilNode, io_common.NewIoParseFailed("%s のnode indexが不正です: %v", nil, label, value)
	}
	return b.nodeIDs[index], nil
}

// buildNodeComponents はスキン・メッシュ・ノード拘束をコンポーネント化する。
func (b *sceneBuilder) buildNodeComponents() error {
	skins, _ := asSlice(b.doc["skins"])
	meshes, _ := asSlice(b.doc["meshes"])

	for i, node := range b.nodes {
		id := b.nodeIDs[i]
		meshIndex, hasMesh := asIndex(node["mesh"])
		if skinIndex, ok := asIndex(node["skin"]); ok {
			mesh, err := b.skinnedMesh(skins, meshes, skinIndex, meshIndex)
			if err != nil {
				return err
			}
			if err := b.graph.AddComponent(id, mesh); err != nil {
				return err
			}
		} else if hasMesh {
			filter := &scene.Generic{Type: meshFilterType, Properties: map[string]any{meshFilterProperty: meshIndex}}
			if err := b.graph.AddComponent(id, filter); err != nil {
				return err
			}
		}

		constraint, err := b.nodeConstraint(node, i)
		if err != nil {
			return err
		}
		if constraint != nil {
			if err := b.graph.AddComponent(id, constraint); err != nil {
				return err
			}
		}
	}
	return nil
}

// skinnedMesh は skins[skinIndex] からスキンメッシュを生成する。
func (b *sceneBuilder) skinnedMesh(skins []any, meshes []any, skinIndex int, meshIndex int) (*scene.SkinnedMesh, error) {
	if skinIndex >= len(skins) {
		return nil, io_common.NewIoParseFailed("node.skin のindexが不正です: %d", nil, skinIndex)
	}
	skin, _ := asMap(skins[skinIndex])
	mesh := &scene.SkinnedMesh{Skin: skinIndex, Bones: make([]scene.NodeID, 0)}
	if meshIndex < len(meshes) {
		if m, ok := asMap(meshes[meshIndex]); ok {
			mesh.Name, _ = m["name"].(string)
		}
	}
	if raw, ok := skin["skeleton"]; ok {
		root, err := b.nodeRef(raw, fmt.Sprintf("skins[%d].skeleton", skinIndex))
		if err != nil {
			return nil, err
		}
		mesh.RootBone = root
	}
	joints, _ := asSlice(skin["joints"])
	for j, raw := range joints {
		joint, err := b.nodeRef(raw, fmt.Sprintf("skins[%d].joints[%d]", skinIndex, j))
		if err != nil {
			return nil, err
		}
		mesh.Bones = append(mesh.Bones, joint)
	}
	return mesh, nil
}

// nodeConstraint は VRMC_node_constraint を拘束コンポーネントへ変換する。
func (b *sceneBuilder) nodeConstraint(node map[string]any, index int) (*scene.Constraint, error) {
	ext, ok := lookup(node, "extensions", "VRMC_node_constraint")
	if !ok {
		return nil, nil
	}
	body, _ := asMap(ext)
	definitions, _ := asMap(body["constraint"])
	for _, typ := range []string{"roll", "aim", "rotation"} {
		definition, ok := asMap(definitions[typ])
		if !ok {
			continue
		}
		source, err := b.nodeRef(definition["source"], fmt.Sprintf("nodes[%d].VRMC_node_constraint.%s.source", index, typ))
		if err != nil {
			return nil, err
		}
		weight := 1.0
		if w, ok := asFloat(definition["weight"]); ok {
			weight = w
		}
		settings := map[string]any{}
		for key, value := range definition {
			if key != "source" && key != "weight" {
				settings[key] = value
			}
		}
		kind := scene.KIND_ROTATION_CONSTRAINT
		if typ == "aim" {
			kind = scene.KIND_AIM_CONSTRAINT
		}
		constraint := scene.NewConstraint(kind, weight, []scene.ConstraintSource{{Node: source, Weight: 1}})
		constraint.Properties = map[string]any{
			constraintPropertyType:     typ,
			constraintPropertySettings: settings,
		}
		if version, ok := body["specVersion"].(string); ok {
			constraint.Properties[constraintPropertyVersion] = version
		}
		return constraint, nil
	}
	return nil, nil
}

// collectBindings は単一ノード参照をJSONポインタ名で束縛する。
func (b *sceneBuilder) collectBindings() error {
	bind := func(pointer string) error {
		value, ok := getPointer(b.doc, pointer)
		if !ok {
			return nil
		}
		id, err := b.nodeRef(value, pointer)
		if err != nil {
			return err
		}
		b.bindings[pointer] = id
		return nil
	}

	pointers := make([]string, 0)
	if bones, ok := lookup(b.doc, "extensions", "VRMC_vrm", "humanoid", "humanBones"); ok {
		boneMap, _ := asMap(bones)
		names := make([]string, 0, len(boneMap))
		for name := range boneMap {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			pointers = append(pointers, pointerOf("extensions", "VRMC_vrm", "humanoid", "humanBones", name, "node"))
		}
	}
	if annotations, ok := lookup(b.doc, "extensions", "VRMC_vrm", "firstPerson", "meshAnnotations"); ok {
		list, _ := asSlice(annotations)
		for i := range list {
			pointers = append(pointers, pointerOf("extensions", "VRMC_vrm", "firstPerson", "meshAnnotations", i, "node"))
		}
	}
	if bones, ok := lookup(b.doc, "extensions", "VRM", "humanoid", "humanBones"); ok {
		list, _ := asSlice(bones)
		for i := range list {
			pointers = append(pointers, pointerOf("extensions", "VRM", "humanoid", "humanBones", i, "node"))
		}
	}
	if bone, ok := lookup(b.doc, "extensions", "VRM", "firstPerson", "firstPersonBone"); ok {
		if index, ok := asIndex(bone); ok && index < len(b.nodeIDs) {
			pointers = append(pointers, pointerOf("extensions", "VRM", "firstPerson", "firstPersonBone"))
		}
	}
	if groups, ok := lookup(b.doc, "extensions", "VRM", "secondaryAnimation", "colliderGroups"); ok {
		list, _ := asSlice(groups)
		for i := range list {
			pointers = append(pointers, pointerOf("extensions", "VRM", "secondaryAnimation", "colliderGroups", i, "node"))
		}
	}
	if colliders, ok := lookup(b.doc, "extensions", "VRMC_springBone", "colliders"); ok {
		list, _ := asSlice(colliders)
		for i := range list {
			pointers = append(pointers, pointerOf("extensions", "VRMC_springBone", "colliders", i, "node"))
		}
	}
	animations, _ := asSlice(b.doc["animations"])
	for i, animation := range animations {
		channels, _ := lookup(animation, "channels")
		list, _ := asSlice(channels)
		for j := range list {
			pointers = append(pointers, pointerOf("animations", i, "channels", j, "target", "node"))
		}
	}

	for _, pointer := range pointers {
		if err := bind(pointer); err != nil {
			return err
		}
	}
	return nil
}

// buildSpringBones は揺れものチェーンをコンポーネント化する。
func (b *sceneBuilder) buildSpringBones() ([]*scene.SpringBone, error) {
	springs := make([]*scene.SpringBone, 0)

	if raw, ok := lookup(b.doc, "extensions", "VRMC_springBone", "springs"); ok {
		list, _ := asSlice(raw)
		for i, item := range list {
			spring, _ := asMap(item)
			pointer := pointerOf("extensions", "VRMC_springBone", "springs", i)
			bone := &scene.SpringBone{
				Joints:     make([]scene.SpringJoint, 0),
				Properties: map[string]any{springPropertyPointer: pointer, springPropertyLayout: springLayoutVrmc},
			}
			bone.Name, _ = spring["name"].(string)
			joints, _ := asSlice(spring["joints"])
			for j, rawJoint := range joints {
				joint, _ := asMap(rawJoint)
				id, err := b.nodeRef(joint["node"], fmt.Sprintf("%s/joints/%d", pointer, j))
				if err != nil {
					return nil, err
				}
				props := map[string]any{}
				for key, value := range joint {
					if key != "node" {
						props[key] = value
					}
				}
				bone.Joints = append(bone.Joints, scene.SpringJoint{Node: id, Properties: props})
			}
			if center, ok := spring["center"]; ok {
				id, err := b.nodeRef(center, pointer+"/center")
				if err != nil {
					return nil, err
				}
				bone.Center = id
			}
			springs = append(springs, bone)
		}
	}

	if raw, ok := lookup(b.doc, "extensions", "VRM", "secondaryAnimation", "boneGroups"); ok {
		list, _ := asSlice(raw)
		for i, item := range list {
			group, _ := asMap(item)
			pointer := pointerOf("extensions", "VRM", "secondaryAnimation", "boneGroups", i)
			bone := &scene.SpringBone{
				Joints:     make([]scene.SpringJoint, 0),
				Properties: map[string]any{springPropertyPointer: pointer, springPropertyLayout: springLayoutVrm0},
			}
			bone.Name, _ = group["comment"].(string)
			bones, _ := asSlice(group["bones"])
			for j, rawBone := range bones {
				id, err := b.nodeRef(rawBone, fmt.Sprintf("%s/bones/%d", pointer, j))
				if err != nil {
					return nil, err
				}
				bone.Joints = append(bone.Joints, scene.SpringJoint{Node: id})
			}
			// VRM0 は center 未使用を -1 で表す。
			if index, ok := asIndex(group["center"]); ok {
				id, err := b.nodeRef(index, pointer+"/center")
				if err != nil {
					return nil, err
				}
				bone.Center = id
			}
			springs = append(springs, bone)
		}
	}
	return springs, nil
}

// hipsNode はヒューマノイドのhipsノードを返す。
func (b *sceneBuilder) hipsNode() scene.NodeID {
	if id, ok := b.bindings[pointerOf("extensions", "VRMC_vrm", "humanoid", "humanBones", "hips", "node")]; ok {
		return id
	}
	bones, _ := lookup(b.doc, "extensions", "VRM", "humanoid", "humanBones")
	list, _ := asSlice(bones)
	for i, item := range list {
		if name, _ := lookup(item, "bone"); name == "hips" {
			return b.bindings[pointerOf("extensions", "VRM", "humanoid", "humanBones", i, "node")]
		}
	}
	return scene.NilNode
}

// armaturePath はhips (なければ最初のスキンのルート) を含む最上位ノード名を返す。
func (b *sceneBuilder) armaturePath() string {
	anchor := b.hipsNode()
	if anchor.IsNil() {
		for _, attached := range b.graph.ComponentsInChildren(b.avatar) {
			if mesh, ok := attached.Component.(*scene.SkinnedMesh); ok {
				anchor = mesh.RootBone
				if anchor.IsNil() && len(mesh.Bones) > 0 {
					anchor = mesh.Bones[0]
				}
				break
			}
		}
	}
	if anchor.IsNil() {
		return ""
	}
	top := anchor
	for {
		parent := b.graph.Parent(top)
		if parent.IsNil() || parent == b.avatar {
			break
		}
		top = parent
	}
	return b.graph.Name(top)
}

// viewPosition は一人称オフセットを視点位置として返す。
func (b *sceneBuilder) viewPosition() mmath.Vec3 {
	if raw, ok := lookup(b.doc, "extensions", "VRMC_vrm", "lookAt", "offsetFromHeadBone"); ok {
		if values, ok := asFloats(raw); ok && len(values) == 3 {
			return mmath.NewVec3(values[0], values[1], values[2])
		}
	}
	if raw, ok := lookup(b.doc, "extensions", "VRM", "firstPerson", "firstPersonBoneOffset"); ok {
		x, _ := lookup(raw, "x")
		y, _ := lookup(raw, "y")
		z, _ := lookup(raw, "z")
		fx, _ := asFloat(x)
		fy, _ := asFloat(y)
		fz, _ := asFloat(z)
		return mmath.NewVec3(fx, fy, fz)
	}
	return mmath.ZERO_VEC3
}
