// 指示: miu200521358
package scene

import (
	"github.com/miu200521358/mu_armature_cleanup/pkg/domain/mmath"
	"github.com/tiendc/go-deepcopy"
)

// cloneByValue は deepcopy で値複製する。
func cloneByValue[T any](src *T) (*T, error) {
	dst := new(T)
	if err := deepcopy.Copy(dst, *src); err != nil {
		return nil, err
	}
	return dst, nil
}

// Rooted はルートトランスフォーム参照を持つコンポーネントを表す。
// NilNode は付与先ノード自身を意味する。
type Rooted interface {
	Component
	Root() NodeID
	SetRoot(root NodeID)
}

// SkinnedMesh はスキンメッシュのボーン割り当てを表す。
type SkinnedMesh struct {
	Name     string
	Skin     int
	RootBone NodeID
	Bones    []NodeID
}

func (c *SkinnedMesh) Kind() ComponentKind { return KIND_SKINNED_MESH }

func (c *SkinnedMesh) Clone() (Component, error) { return cloneByValue(c) }

// PhysBone は揺れものボーン設定を表す。
type PhysBone struct {
	RootTransform    NodeID
	Colliders        []NodeID
	IgnoreTransforms []NodeID
	Pull             float64
	Spring           float64
	Stiffness        float64
	Gravity          float64
	Radius           float64
}

func (c *PhysBone) Kind() ComponentKind { return KIND_PHYS_BONE }

func (c *PhysBone) Clone() (Component, error) { return cloneByValue(c) }

func (c *PhysBone) Root() NodeID { return c.RootTransform }

func (c *PhysBone) SetRoot(root NodeID) { c.RootTransform = root }

// PhysBoneCollider は揺れもの用コライダーを表す。
type PhysBoneCollider struct {
	RootTransform NodeID
	Shape         string
	Radius        float64
	Height        float64
	Position      mmath.Vec3
}

func (c *PhysBoneCollider) Kind() ComponentKind { return KIND_PHYS_BONE_COLLIDER }

func (c *PhysBoneCollider) Clone() (Component, error) { return cloneByValue(c) }

func (c *PhysBoneCollider) Root() NodeID { return c.RootTransform }

func (c *PhysBoneCollider) SetRoot(root NodeID) { c.RootTransform = root }

// Contact は接触判定 (送信側/受信側) を表す。
type Contact struct {
	Receiver      bool
	RootTransform NodeID
	Radius        float64
	CollisionTags []string
}

func (c *Contact) Kind() ComponentKind {
	if c.Receiver {
		return KIND_CONTACT_RECEIVER
	}
	return KIND_CONTACT_SENDER
}

func (c *Contact) Clone() (Component, error) { return cloneByValue(c) }

func (c *Contact) Root() NodeID { return c.RootTransform }

func (c *Contact) SetRoot(root NodeID) { c.RootTransform = root }

// ConstraintSource は拘束の重み付きソースを表す。
type ConstraintSource struct {
	Node   NodeID
	Weight float64
}

// Constraint は拘束を表す。ソース一覧は一括でのみ読み書きできる。
type Constraint struct {
	kind     ComponentKind
	sources  []ConstraintSource
	revision int

	Weight     float64
	Properties map[string]any
}

// NewConstraint は拘束を生成する。
func NewConstraint(kind ComponentKind, weight float64, sources []ConstraintSource) *Constraint {
	return &Constraint{
		kind:    kind,
		sources: append([]ConstraintSource(nil), sources...),
		Weight:  weight,
	}
}

func (c *Constraint) Kind() ComponentKind { return c.kind }

// Sources はソース一覧の複製を返す。
func (c *Constraint) Sources() []ConstraintSource {
	return append([]ConstraintSource(nil), c.sources...)
}

// SetSources はソース一覧を置き換える。
func (c *Constraint) SetSources(sources []ConstraintSource) {
	c.sources = append([]ConstraintSource(nil), sources...)
	c.revision++
}

// Revision はソース一覧の書き戻し回数を返す。
func (c *Constraint) Revision() int {
	return c.revision
}

func (c *Constraint) Clone() (Component, error) {
	cloned := &Constraint{
		kind:     c.kind,
		sources:  append([]ConstraintSource(nil), c.sources...),
		revision: c.revision,
		Weight:   c.Weight,
	}
	if c.Properties != nil {
		if err := deepcopy.Copy(&cloned.Properties, c.Properties); err != nil {
			return nil, err
		}
	}
	return cloned, nil
}

// Station は乗り降り位置を持つステーションを表す。
type Station struct {
	EnterLocation NodeID
	ExitLocation  NodeID
	Seated        bool
}

func (c *Station) Kind() ComponentKind { return KIND_STATION }

func (c *Station) Clone() (Component, error) { return cloneByValue(c) }

// SpringJoint は揺れものチェーンの1関節を表す。
type SpringJoint struct {
	Node       NodeID
	Properties map[string]any
}

// SpringBone は揺れものチェーンを表す。
type SpringBone struct {
	Name       string
	Joints     []SpringJoint
	Center     NodeID
	Properties map[string]any
}

func (c *SpringBone) Kind() ComponentKind { return KIND_SPRING_BONE }

func (c *SpringBone) Clone() (Component, error) { return cloneByValue(c) }

// NodeBindings は名前付きの単一ノード参照群を表す。
type NodeBindings struct {
	Bindings map[string]NodeID
}

func (c *NodeBindings) Kind() ComponentKind { return KIND_NODE_BINDINGS }

func (c *NodeBindings) Clone() (Component, error) { return cloneByValue(c) }

// AvatarDescriptor はアバタールートを表す。
type AvatarDescriptor struct {
	ViewPosition mmath.Vec3
	// ArmaturePath は記述子ノードからスケルトンルートへの相対パス。空の場合は既定名で探す。
	ArmaturePath string
}

func (c *AvatarDescriptor) Kind() ComponentKind { return KIND_AVATAR_DESCRIPTOR }

func (c *AvatarDescriptor) Clone() (Component, error) { return cloneByValue(c) }

// Generic はノード参照を持たない任意のコンポーネントを表す。
type Generic struct {
	Type       ComponentKind
	Properties map[string]any
}

func (c *Generic) Kind() ComponentKind { return c.Type }

func (c *Generic) Clone() (Component, error) { return cloneByValue(c) }
