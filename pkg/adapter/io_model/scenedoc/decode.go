// 指示: miu200521358
package scenedoc

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"github.com/miu200521358/mu_armature_cleanup/pkg/adapter/io_common"
	"github.com/miu200521358/mu_armature_cleanup/pkg/domain/mmath"
	"github.com/miu200521358/mu_armature_cleanup/pkg/domain/scene"
	"gopkg.in/yaml.v3"
)

// sceneSource は保存時にノードIDを引き継ぐための読込元情報を表す。
type sceneSource struct {
	ids map[scene.NodeID]string
}

// pendingComponents はノードに付与前のコンポーネント定義を表す。
type pendingComponents struct {
	node  scene.NodeID
	items []yaml.Node
}

// documentDecoder はYAML文書からシーングラフを構築する。
type documentDecoder struct {
	graph   *scene.Graph
	ids     map[string]scene.NodeID
	names   map[scene.NodeID]string
	pending []pendingComponents
}

// decodeDocument はYAML文書をシーングラフへ変換する。
func decodeDocument(data []byte) (*scene.Graph, *sceneSource, error) {
	doc := sceneDocument{}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, nil, io_common.NewIoParseFailed("シーン文書の解析に失敗しました", err)
	}
	if doc.Kind != "" && doc.Kind != DOCUMENT_KIND {
		return nil, nil, io_common.NewIoFormatNotSupported("シーン文書の種別が未対応です: %s", nil, doc.Kind)
	}
	if doc.Version > DOCUMENT_VERSION {
		return nil, nil, io_common.NewIoFormatNotSupported("シーン文書の版が未対応です: %d", nil, doc.Version)
	}

	d := &documentDecoder{
		graph: scene.NewGraph(),
		ids:   map[string]scene.NodeID{},
		names: map[scene.NodeID]string{},
	}
	for _, node := range doc.Nodes {
		if err := d.addNode(node, scene.NilNode); err != nil {
			return nil, nil, err
		}
	}
	for _, pending := range d.pending {
		for i := range pending.items {
			component, err := d.decodeComponent(&pending.items[i])
			if err != nil {
				return nil, nil, err
			}
			if err := d.graph.AddComponent(pending.node, component); err != nil {
				return nil, nil, err
			}
		}
	}
	logSceneDocStep("シーン文書読込ステップ: nodes=%d ids=%d", d.graph.Len(), len(d.ids))
	return d.graph, &sceneSource{ids: d.names}, nil
}

// addNode はノードと子孫をグラフへ追加する。
func (d *documentDecoder) addNode(doc *nodeDoc, parent scene.NodeID) error {
	if doc == nil {
		return io_common.NewIoParseFailed("空のノード定義があります", nil)
	}
	if strings.TrimSpace(doc.Name) == "" {
		return io_common.NewIoParseFailed("ノード名が空です: id=%s", nil, doc.ID)
	}
	id, err := d.graph.AddNode(doc.Name, parent)
	if err != nil {
		return err
	}
	if doc.ID != "" {
		if _, exists := d.ids[doc.ID]; exists {
			return io_common.NewIoParseFailed("ノードIDが重複しています: %s", nil, doc.ID)
		}
		d.ids[doc.ID] = id
		d.names[id] = doc.ID
	}

	local, err := decodeTransform(doc)
	if err != nil {
		return err
	}
	if err := d.graph.SetLocalTransform(id, local); err != nil {
		return err
	}
	if len(doc.Components) > 0 {
		d.pending = append(d.pending, pendingComponents{node: id, items: doc.Components})
	}
	for _, child := range doc.Children {
		if err := d.addNode(child, id); err != nil {
			return err
		}
	}
	return nil
}

// decodeTransform はローカル姿勢を読み取る。省略した要素は恒等値とする。
func decodeTransform(doc *nodeDoc) (mmath.Transform, error) {
	local := mmath.NewTransform()
	if doc.Translation != nil {
		v, err := decodeVec3(doc.Translation, "translation", doc.Name)
		if err != nil {
			return local, err
		}
		local.Translation = v
	}
	if doc.Rotation != nil {
		if len(doc.Rotation) != 4 {
			return local, io_common.NewIoParseFailed("rotation の要素数が不正です: %s", nil, doc.Name)
		}
		r := doc.Rotation
		local.Rotation = mmath.NewQuaternionByValues(r[0], r[1], r[2], r[3]).Normalized()
	}
	if doc.Scale != nil {
		v, err := decodeVec3(doc.Scale, "scale", doc.Name)
		if err != nil {
			return local, err
		}
		local.Scale = v
	}
	return local, nil
}

func decodeVec3(values []float64, label string, owner string) (mmath.Vec3, error) {
	if len(values) != 3 {
		return mmath.ZERO_VEC3, io_common.NewIoParseFailed("%s の要素数が不正です: %s", nil, label, owner)
	}
	return mmath.NewVec3(values[0], values[1], values[2]), nil
}

// ref は参照文字列をノードへ解決する。ID を優先し、"/" で始まる場合はパスとして探す。
func (d *documentDecoder) ref(value string) (scene.NodeID, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return scene.NilNode, nil
	}
	if id, ok := d.ids[value]; ok {
		return id, nil
	}
	if strings.HasPrefix(value, "/") {
		if id, ok := d.graph.Find(scene.NilNode, value); ok {
			return id, nil
		}
	}
	return scene.NilNode, io_common.NewIoParseFailed("参照先ノードが見つかりません: %s", nil, value)
}

func (d *documentDecoder) refs(values []string) ([]scene.NodeID, error) {
	ids := make([]scene.NodeID, 0, len(values))
	for _, value := range values {
		id, err := d.ref(value)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// decodeComponent は type に応じてコンポーネントを復元する。
func (d *documentDecoder) decodeComponent(node *yaml.Node) (scene.Component, error) {
	head := componentHead{}
	if err := node.Decode(&head); err != nil {
		return nil, io_common.NewIoParseFailed("コンポーネント定義の解析に失敗しました", err)
	}
	kind := scene.ComponentKind(strings.TrimSpace(head.Type))
	if kind == "" {
		return nil, io_common.NewIoParseFailed("コンポーネントの type が未指定です: line=%d", nil, node.Line)
	}

	var err error
	decode := func(out any) bool {
		if err = node.Decode(out); err != nil {
			err = io_common.NewIoParseFailed("コンポーネント %s の解析に失敗しました: line=%d", err, kind, node.Line)
			return false
		}
		return true
	}

	switch {
	case kind == scene.KIND_SKINNED_MESH:
		doc := skinnedMeshDoc{}
		if !decode(&doc) {
			return nil, err
		}
		c := &scene.SkinnedMesh{Name: doc.Name, Skin: doc.Skin}
		if c.RootBone, err = d.ref(doc.RootBone); err != nil {
			return nil, err
		}
		if c.Bones, err = d.refs(doc.Bones); err != nil {
			return nil, err
		}
		return c, nil
	case kind == scene.KIND_PHYS_BONE:
		doc := physBoneDoc{}
		if !decode(&doc) {
			return nil, err
		}
		c := &scene.PhysBone{Pull: doc.Pull, Spring: doc.Spring, Stiffness: doc.Stiffness, Gravity: doc.Gravity, Radius: doc.Radius}
		if c.RootTransform, err = d.ref(doc.RootTransform); err != nil {
			return nil, err
		}
		if c.Colliders, err = d.refs(doc.Colliders); err != nil {
			return nil, err
		}
		if c.IgnoreTransforms, err = d.refs(doc.IgnoreTransforms); err != nil {
			return nil, err
		}
		return c, nil
	case kind == scene.KIND_PHYS_BONE_COLLIDER:
		doc := physBoneColliderDoc{}
		if !decode(&doc) {
			return nil, err
		}
		c := &scene.PhysBoneCollider{Shape: doc.Shape, Radius: doc.Radius, Height: doc.Height}
		if doc.Position != nil {
			if c.Position, err = decodeVec3(doc.Position, "position", string(kind)); err != nil {
				return nil, err
			}
		}
		if c.RootTransform, err = d.ref(doc.RootTransform); err != nil {
			return nil, err
		}
		return c, nil
	case kind == scene.KIND_CONTACT_SENDER || kind == scene.KIND_CONTACT_RECEIVER:
		doc := contactDoc{}
		if !decode(&doc) {
			return nil, err
		}
		c := &scene.Contact{Receiver: kind == scene.KIND_CONTACT_RECEIVER, Radius: doc.Radius, CollisionTags: doc.CollisionTags}
		if c.RootTransform, err = d.ref(doc.RootTransform); err != nil {
			return nil, err
		}
		return c, nil
	case scene.IsConstraintKind(kind):
		doc := constraintDoc{Weight: 1}
		if !decode(&doc) {
			return nil, err
		}
		sources := make([]scene.ConstraintSource, 0, len(doc.Sources))
		for _, source := range doc.Sources {
			id, err := d.ref(source.Node)
			if err != nil {
				return nil, err
			}
			sources = append(sources, scene.ConstraintSource{Node: id, Weight: source.Weight})
		}
		c := scene.NewConstraint(kind, doc.Weight, sources)
		c.Properties = doc.Properties
		return c, nil
	case kind == scene.KIND_STATION:
		doc := stationDoc{}
		if !decode(&doc) {
			return nil, err
		}
		c := &scene.Station{Seated: doc.Seated}
		if c.EnterLocation, err = d.ref(doc.EnterLocation); err != nil {
			return nil, err
		}
		if c.ExitLocation, err = d.ref(doc.ExitLocation); err != nil {
			return nil, err
		}
		return c, nil
	case kind == scene.KIND_SPRING_BONE:
		doc := springBoneDoc{}
		if !decode(&doc) {
			return nil, err
		}
		c := &scene.SpringBone{Name: doc.Name, Properties: doc.Properties, Joints: make([]scene.SpringJoint, 0, len(doc.Joints))}
		for _, joint := range doc.Joints {
			id, err := d.ref(joint.Node)
			if err != nil {
				return nil, err
			}
			c.Joints = append(c.Joints, scene.SpringJoint{Node: id, Properties: joint.Properties})
		}
		if c.Center, err = d.ref(doc.Center); err != nil {
			return nil, err
		}
		return c, nil
	case kind == scene.KIND_NODE_BINDINGS:
		doc := nodeBindingsDoc{}
		if !decode(&doc) {
			return nil, err
		}
		c := &scene.NodeBindings{Bindings: map[string]scene.NodeID{}}
		for key, value := range doc.Bindings {
			id, err := d.ref(value)
			if err != nil {
				return nil, err
			}
			c.Bindings[key] = id
		}
		return c, nil
	case kind == scene.KIND_AVATAR_DESCRIPTOR:
		doc := avatarDescriptorDoc{}
		if !decode(&doc) {
			return nil, err
		}
		c := &scene.AvatarDescriptor{ArmaturePath: doc.ArmaturePath}
		if doc.ViewPosition != nil {
			if c.ViewPosition, err = decodeVec3(doc.ViewPosition, "viewPosition", string(kind)); err != nil {
				return nil, err
			}
		}
		return c, nil
	default:
		doc := genericDoc{}
		if !decode(&doc) {
			return nil, err
		}
		return &scene.Generic{Type: kind, Properties: doc.Properties}, nil
	}
}
