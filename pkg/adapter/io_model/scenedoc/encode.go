// 指示: miu200521358
package scenedoc

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/miu200521358/mu_armature_cleanup/pkg/adapter/io_common"
	"github.com/miu200521358/mu_armature_cleanup/pkg/domain/mmath"
	"github.com/miu200521358/mu_armature_cleanup/pkg/domain/scene"
	"gopkg.in/yaml.v3"
)

const transformEpsilon = 1e-12

// documentEncoder はシーングラフをYAML文書へ変換する。
type documentEncoder struct {
	graph *scene.Graph
	ids   map[scene.NodeID]string
	used  map[string]struct{}
}

// encodeDocument はシーングラフをYAMLへ変換する。source が nil の場合はIDを新規に採番する。
func encodeDocument(graph *scene.Graph, source *sceneSource) ([]byte, error) {
	e := &documentEncoder{graph: graph, ids: map[scene.NodeID]string{}, used: map[string]struct{}{}}
	if source != nil {
		for id, name := range source.ids {
			if graph.Contains(id) {
				e.ids[id] = name
				e.used[name] = struct{}{}
			}
		}
	}
	e.assignReferencedIDs()

	doc := sceneDocument{Kind: DOCUMENT_KIND, Version: DOCUMENT_VERSION, Nodes: make([]*nodeDoc, 0)}
	for _, root := range graph.Roots() {
		node, err := e.encodeNode(root)
		if err != nil {
			return nil, err
		}
		doc.Nodes = append(doc.Nodes, node)
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&doc); err != nil {
		return nil, io_common.NewIoSaveFailed("シーン文書の生成に失敗しました", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, io_common.NewIoSaveFailed("シーン文書の生成に失敗しました", err)
	}
	return buf.Bytes(), nil
}

// assignReferencedIDs は参照されているがIDを持たないノードへIDを採番する。
func (e *documentEncoder) assignReferencedIDs() {
	for _, attached := range e.graph.ComponentsInChildren(scene.NilNode) {
		for _, reference := range scene.References(attached.Component) {
			if _, ok := e.ids[reference.Node]; ok || !e.graph.Contains(reference.Node) {
				continue
			}
			base := strings.ReplaceAll(e.graph.Name(reference.Node), " ", "_")
			name := base
			for suffix := 2; ; suffix++ {
				if _, exists := e.used[name]; !exists {
					break
				}
				name = fmt.Sprintf("%s_%d", base, suffix)
			}
			e.ids[reference.Node] = name
			e.used[name] = struct{}{}
		}
	}
}

// ref はノード参照を文字列化する。
func (e *documentEncoder) ref(id scene.NodeID) (string, error) {
	if id.IsNil() {
		return "", nil
	}
	name, ok := e.ids[id]
	if !ok {
		return "", io_common.NewIoSaveFailed("参照先ノードが存在しません: %s", nil, id)
	}
	return name, nil
}

func (e *documentEncoder) refs(ids []scene.NodeID) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	values := make([]string, 0, len(ids))
	for _, id := range ids {
		value, err := e.ref(id)
		if err != nil {
			return nil, err
		}
		values = append(values, value)
	}
	return values, nil
}

// encodeNode はノードと子孫を文書化する。
func (e *documentEncoder) encodeNode(id scene.NodeID) (*nodeDoc, error) {
	local := e.graph.LocalTransform(id)
	doc := &nodeDoc{ID: e.ids[id], Name: e.graph.Name(id)}
	if !local.Translation.NearEquals(mmath.ZERO_VEC3, transformEpsilon) {
		doc.Translation = local.Translation.Slice()
	}
	if !local.Rotation.NearEquals(mmath.NewQuaternion(), transformEpsilon) {
		doc.Rotation = local.Rotation.Slice()
	}
	if !local.Scale.NearEquals(mmath.ONE_VEC3, transformEpsilon) {
		doc.Scale = local.Scale.Slice()
	}

	for _, component := range e.graph.Components(id) {
		value, err := e.encodeComponent(component)
		if err != nil {
			return nil, err
		}
		item := yaml.Node{}
		if err := item.Encode(value); err != nil {
			return nil, io_common.NewIoSaveFailed("コンポーネント %s の生成に失敗しました", err, component.Kind())
		}
		doc.Components = append(doc.Components, item)
	}
	for _, child := range e.graph.Children(id) {
		childDoc, err := e.encodeNode(child)
		if err != nil {
			return nil, err
		}
		doc.Children = append(doc.Children, childDoc)
	}
	return doc, nil
}

// encodeComponent はコンポーネントを文書要素へ変換する。
func (e *documentEncoder) encodeComponent(component scene.Component) (any, error) {
	kind := string(component.Kind())
	var err error
	switch c := component.(type) {
	case *scene.SkinnedMesh:
		doc := skinnedMeshDoc{Type: kind, Name: c.Name, Skin: c.Skin}
		if doc.RootBone, err = e.ref(c.RootBone); err != nil {
			return nil, err
		}
		if doc.Bones, err = e.refs(c.Bones); err != nil {
			return nil, err
		}
		return doc, nil
	case *scene.PhysBone:
		doc := physBoneDoc{Type: kind, Pull: c.Pull, Spring: c.Spring, Stiffness: c.Stiffness, Gravity: c.Gravity, Radius: c.Radius}
		if doc.RootTransform, err = e.ref(c.RootTransform); err != nil {
			return nil, err
		}
		if doc.Colliders, err = e.refs(c.Colliders); err != nil {
			return nil, err
		}
		if doc.IgnoreTransforms, err = e.refs(c.IgnoreTransforms); err != nil {
			return nil, err
		}
		return doc, nil
	case *scene.PhysBoneCollider:
		doc := physBoneColliderDoc{Type: kind, Shape: c.Shape, Radius: c.Radius, Height: c.Height}
		if !c.Position.NearEquals(mmath.ZERO_VEC3, transformEpsilon) {
			doc.Position = c.Position.Slice()
		}
		if doc.RootTransform, err = e.ref(c.RootTransform); err != nil {
			return nil, err
		}
		return doc, nil
	case *scene.Contact:
		doc := contactDoc{Type: kind, Radius: c.Radius, CollisionTags: c.CollisionTags}
		if doc.RootTransform, err = e.ref(c.RootTransform); err != nil {
			return nil, err
		}
		return doc, nil
	case *scene.Constraint:
		doc := constraintDoc{Type: kind, Weight: c.Weight, Properties: c.Properties}
		for _, source := range c.Sources() {
			node, err := e.ref(source.Node)
			if err != nil {
				return nil, err
			}
			doc.Sources = append(doc.Sources, constraintSourceDoc{Node: node, Weight: source.Weight})
		}
		return doc, nil
	case *scene.Station:
		doc := stationDoc{Type: kind, Seated: c.Seated}
		if doc.EnterLocation, err = e.ref(c.EnterLocation); err != nil {
			return nil, err
		}
		if doc.ExitLocation, err = e.ref(c.ExitLocation); err != nil {
			return nil, err
		}
		return doc, nil
	case *scene.SpringBone:
		doc := springBoneDoc{Type: kind, Name: c.Name, Properties: c.Properties}
		for _, joint := range c.Joints {
			node, err := e.ref(joint.Node)
			if err != nil {
				return nil, err
			}
			doc.Joints = append(doc.Joints, springJointDoc{Node: node, Properties: joint.Properties})
		}
		if doc.Center, err = e.ref(c.Center); err != nil {
			return nil, err
		}
		return doc, nil
	case *scene.NodeBindings:
		doc := nodeBindingsDoc{Type: kind, Bindings: map[string]string{}}
		for _, key := range c.SortedKeys() {
			if doc.Bindings[key], err = e.ref(c.Bindings[key]); err != nil {
				return nil, err
			}
		}
		return doc, nil
	case *scene.AvatarDescriptor:
		doc := avatarDescriptorDoc{Type: kind, ArmaturePath: c.ArmaturePath}
		if !c.ViewPosition.NearEquals(mmath.ZERO_VEC3, transformEpsilon) {
			doc.ViewPosition = c.ViewPosition.Slice()
		}
		return doc, nil
	case *scene.Generic:
		return genericDoc{Type: kind, Properties: c.Properties}, nil
	default:
		return nil, io_common.NewIoFormatNotSupported("文書化できないコンポーネントです: %s", nil, kind)
	}
}
