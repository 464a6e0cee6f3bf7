// 指示: miu200521358
package scene

import (
	"fmt"
	"sort"
)

// Reference はコンポーネント上のノード参照1件を表す。
type Reference struct {
	Field string
	Node  NodeID
}

// IsReferenceBearing はノード参照を持ちうるコンポーネントか判定する。
func IsReferenceBearing(component Component) bool {
	switch component.(type) {
	case *SkinnedMesh, *PhysBone, *PhysBoneCollider, *Contact, *Constraint,
		*Station, *SpringBone, *NodeBindings:
		return true
	default:
		return false
	}
}

// References はコンポーネントが保持する非nilのノード参照を列挙する。
func References(component Component) []Reference {
	refs := make([]Reference, 0)
	add := func(field string, id NodeID) {
		if !id.IsNil() {
			refs = append(refs, Reference{Field: field, Node: id})
		}
	}

	switch c := component.(type) {
	case *SkinnedMesh:
		add("rootBone", c.RootBone)
		for i, bone := range c.Bones {
			add(fmt.Sprintf("bones[%d]", i), bone)
		}
	case *PhysBone:
		add("rootTransform", c.RootTransform)
		for i, collider := range c.Colliders {
			add(fmt.Sprintf("colliders[%d]", i), collider)
		}
		for i, ignore := range c.IgnoreTransforms {
			add(fmt.Sprintf("ignoreTransforms[%d]", i), ignore)
		}
	case *PhysBoneCollider:
		add("rootTransform", c.RootTransform)
	case *Contact:
		add("rootTransform", c.RootTransform)
	case *Constraint:
		for i, source := range c.sources {
			add(fmt.Sprintf("sources[%d]", i), source.Node)
		}
	case *Station:
		add("enterLocation", c.EnterLocation)
		add("exitLocation", c.ExitLocation)
	case *SpringBone:
		for i, joint := range c.Joints {
			add(fmt.Sprintf("joints[%d]", i), joint.Node)
		}
		add("center", c.Center)
	case *NodeBindings:
		for _, key := range c.SortedKeys() {
			add(key, c.Bindings[key])
		}
	}
	return refs
}

// SortedKeys は束縛名を昇順で返す。
func (c *NodeBindings) SortedKeys() []string {
	keys := make([]string, 0, len(c.Bindings))
	for key := range c.Bindings {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
