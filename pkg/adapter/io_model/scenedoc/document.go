// 指示: miu200521358
// Package scenedoc はシーングラフをYAML文書として読み書きする。
package scenedoc

import "gopkg.in/yaml.v3"

const (
	// FORMAT_SCENE_DOC はYAMLシーン文書の形式名。
	FORMAT_SCENE_DOC = "yaml"
	// DOCUMENT_KIND は文書種別の識別子。
	DOCUMENT_KIND = "mu_armature_cleanup/scene"
	// DOCUMENT_VERSION は文書の版。
	DOCUMENT_VERSION = 1
)

// sceneDocument はYAMLシーン文書のトップレベル。
type sceneDocument struct {
	Kind    string     `yaml:"kind"`
	Version int        `yaml:"version"`
	Nodes   []*nodeDoc `yaml:"nodes"`
}

// nodeDoc はノード1件。参照される場合は id を持つ。
type nodeDoc struct {
	ID          string      `yaml:"id,omitempty"`
	Name        string      `yaml:"name"`
	Translation []float64   `yaml:"translation,omitempty,flow"`
	Rotation    []float64   `yaml:"rotation,omitempty,flow"`
	Scale       []float64   `yaml:"scale,omitempty,flow"`
	Components  []yaml.Node `yaml:"components,omitempty"`
	Children    []*nodeDoc  `yaml:"children,omitempty"`
}

// componentHead はコンポーネント種別の判定に使う。
type componentHead struct {
	Type string `yaml:"type"`
}

type skinnedMeshDoc struct {
	Type     string   `yaml:"type"`
	Name     string   `yaml:"name,omitempty"`
	Skin     int      `yaml:"skin,omitempty"`
	RootBone string   `yaml:"rootBone,omitempty"`
	Bones    []string `yaml:"bones,omitempty"`
}

type physBoneDoc struct {
	Type             string   `yaml:"type"`
	RootTransform    string   `yaml:"rootTransform,omitempty"`
	Colliders        []string `yaml:"colliders,omitempty"`
	IgnoreTransforms []string `yaml:"ignoreTransforms,omitempty"`
	Pull             float64  `yaml:"pull,omitempty"`
	Spring           float64  `yaml:"spring,omitempty"`
	Stiffness        float64  `yaml:"stiffness,omitempty"`
	Gravity          float64  `yaml:"gravity,omitempty"`
	Radius           float64  `yaml:"radius,omitempty"`
}

type physBoneColliderDoc struct {
	Type          string    `yaml:"type"`
	RootTransform string    `yaml:"rootTransform,omitempty"`
	Shape         string    `yaml:"shape,omitempty"`
	Radius        float64   `yaml:"radius,omitempty"`
	Height        float64   `yaml:"height,omitempty"`
	Position      []float64 `yaml:"position,omitempty,flow"`
}

type contactDoc struct {
	Type          string   `yaml:"type"`
	RootTransform string   `yaml:"rootTransform,omitempty"`
	Radius        float64  `yaml:"radius,omitempty"`
	CollisionTags []string `yaml:"collisionTags,omitempty,flow"`
}

type constraintSourceDoc struct {
	Node   string  `yaml:"node"`
	Weight float64 `yaml:"weight"`
}

type constraintDoc struct {
	Type       string                `yaml:"type"`
	Weight     float64               `yaml:"weight"`
	Sources    []constraintSourceDoc `yaml:"sources,omitempty"`
	Properties map[string]any        `yaml:"properties,omitempty"`
}

type stationDoc struct {
	Type          string `yaml:"type"`
	EnterLocation string `yaml:"enterLocation,omitempty"`
	ExitLocation  string `yaml:"exitLocation,omitempty"`
	Seated        bool   `yaml:"seated,omitempty"`
}

type springJointDoc struct {
	Node       string         `yaml:"node"`
	Properties map[string]any `yaml:"properties,omitempty"`
}

type springBoneDoc struct {
	Type       string           `yaml:"type"`
	Name       string           `yaml:"name,omitempty"`
	Joints     []springJointDoc `yaml:"joints,omitempty"`
	Center     string           `yaml:"center,omitempty"`
	Properties map[string]any   `yaml:"properties,omitempty"`
}

type nodeBindingsDoc struct {
	Type     string            `yaml:"type"`
	Bindings map[string]string `yaml:"bindings,omitempty"`
}

type avatarDescriptorDoc struct {
	Type         string    `yaml:"type"`
	ViewPosition []float64 `yaml:"viewPosition,omitempty,flow"`
	ArmaturePath string    `yaml:"armaturePath,omitempty"`
}

type genericDoc struct {
	Type       string         `yaml:"type"`
	Properties map[string]any `yaml:"properties,omitempty"`
}
