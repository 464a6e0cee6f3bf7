// 指示: miu200521358
package scene

// ComponentKind はコンポーネント種別名を表す。
type ComponentKind string

const (
	// KIND_SKINNED_MESH はスキンメッシュ (ルートボーン + ボーン一覧) を表す。
	KIND_SKINNED_MESH ComponentKind = "SkinnedMeshRenderer"
	// KIND_PHYS_BONE は揺れものボーンを表す。
	KIND_PHYS_BONE ComponentKind = "VRCPhysBone"
	// KIND_PHYS_BONE_COLLIDER は揺れもの用コライダーを表す。
	KIND_PHYS_BONE_COLLIDER ComponentKind = "VRCPhysBoneCollider"
	// KIND_CONTACT_SENDER は接触送信側を表す。
	KIND_CONTACT_SENDER ComponentKind = "VRCContactSender"
	// KIND_CONTACT_RECEIVER は接触受信側を表す。
	KIND_CONTACT_RECEIVER ComponentKind = "VRCContactReceiver"
	// 拘束系。
	KIND_AIM_CONSTRAINT      ComponentKind = "AimConstraint"
	KIND_LOOK_AT_CONSTRAINT  ComponentKind = "LookAtConstraint"
	KIND_PARENT_CONSTRAINT   ComponentKind = "ParentConstraint"
	KIND_POSITION_CONSTRAINT ComponentKind = "PositionConstraint"
	KIND_ROTATION_CONSTRAINT ComponentKind = "RotationConstraint"
	KIND_SCALE_CONSTRAINT    ComponentKind = "ScaleConstraint"
	// KIND_STATION は乗り降り位置を持つステーションを表す。
	KIND_STATION ComponentKind = "VRCStation"
	// KIND_SPRING_BONE は VRM の揺れものチェーンを表す。
	KIND_SPRING_BONE ComponentKind = "VRMSpringBone"
	// KIND_NODE_BINDINGS は名前付きの単一ノード参照群 (ヒューマノイド等) を表す。
	KIND_NODE_BINDINGS ComponentKind = "NodeBindings"
	// KIND_AVATAR_DESCRIPTOR はアバタールートの目印を表す。
	KIND_AVATAR_DESCRIPTOR ComponentKind = "VRCAvatarDescriptor"
)

// IsConstraintKind は拘束系の種別か判定する。
func IsConstraintKind(kind ComponentKind) bool {
	switch kind {
	case KIND_AIM_CONSTRAINT, KIND_LOOK_AT_CONSTRAINT, KIND_PARENT_CONSTRAINT,
		KIND_POSITION_CONSTRAINT, KIND_ROTATION_CONSTRAINT, KIND_SCALE_CONSTRAINT:
		return true
	default:
		return false
	}
}

// Component はノードに付与されるデータを表す。
type Component interface {
	// Kind は種別名を返す。
	Kind() ComponentKind
	// Clone は値複製した新しいコンポーネントを返す。
	Clone() (Component, error)
}

// AttachedComponent は付与先ノードとコンポーネントの組を表す。
type AttachedComponent struct {
	Node      NodeID
	Component Component
}
