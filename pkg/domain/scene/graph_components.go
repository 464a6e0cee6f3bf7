// 指示: miu200521358
package scene

import "fmt"

// AddComponent はノードの末尾にコンポーネントを付与する。
func (g *Graph) AddComponent(id NodeID, component Component) error {
	if component == nil {
		return ErrNilComponent
	}
	n, ok := g.Node(id)
	if !ok {
		return fmt.Errorf("%s: %w", id, ErrNodeNotFound)
	}
	n.components = append(n.components, component)
	return nil
}

// RemoveComponent はノードから指定コンポーネントを外す。外した場合は true。
func (g *Graph) RemoveComponent(id NodeID, component Component) bool {
	n, ok := g.Node(id)
	if !ok {
		return false
	}
	for i, c := range n.components {
		if c == component {
			n.components = append(n.components[:i:i], n.components[i+1:]...)
			return true
		}
	}
	return false
}

// Components はノードのコンポーネント一覧の複製を返す。
func (g *Graph) Components(id NodeID) []Component {
	if n, ok := g.Node(id); ok {
		return n.Components()
	}
	return nil
}

// ComponentsOfKind はノードの指定種別コンポーネントを返す。
func (g *Graph) ComponentsOfKind(id NodeID, kind ComponentKind) []Component {
	components := make([]Component, 0)
	for _, c := range g.Components(id) {
		if c.Kind() == kind {
			components = append(components, c)
		}
	}
	return components
}

// ComponentsInChildren は root 配下 (root 自身を含む) の全コンポーネントを走査順で返す。
// root が NilNode の場合はグラフ全体を対象とする。
func (g *Graph) ComponentsInChildren(root NodeID) []AttachedComponent {
	attached := make([]AttachedComponent, 0)
	g.Walk(root, func(id NodeID, _ int) bool {
		n, _ := g.Node(id)
		for _, c := range n.components {
			attached = append(attached, AttachedComponent{Node: id, Component: c})
		}
		return true
	})
	return attached
}

// CopyComponent は src を値複製して target に付与し、付与した複製を返す。
func (g *Graph) CopyComponent(src Component, target NodeID) (Component, error) {
	if src == nil {
		return nil, ErrNilComponent
	}
	if !g.Contains(target) {
		return nil, fmt.Errorf("%s: %w", target, ErrNodeNotFound)
	}
	cloned, err := src.Clone()
	if err != nil {
		return nil, fmt.Errorf("コンポーネント複製に失敗しました: kind=%s: %w", src.Kind(), err)
	}
	if err := g.AddComponent(target, cloned); err != nil {
		return nil, err
	}
	return cloned, nil
}
