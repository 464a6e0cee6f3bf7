// 指示: miu200521358
// Package scene はアバターのノード階層 (シーングラフ) と、ノードに付与されるコンポーネントを表す。
//
// ノードは世代付きアリーナで管理され、NodeID は破棄後に再利用されたスロットを
// 指すことがない。コンポーネントが保持するノード参照は全て NodeID で表す。
package scene

import (
	"fmt"

	"github.com/miu200521358/mu_armature_cleanup/pkg/domain/mmath"
)

// NodeID はノードの世代付き識別子を表す。ゼロ値は参照なしを表す。
type NodeID struct {
	Index      uint32
	Generation uint32
}

// NilNode は参照なしを表す。
var NilNode = NodeID{}

// IsNil は参照なしか判定する。
func (id NodeID) IsNil() bool {
	return id.Generation == 0
}

// String は表示用文字列を返す。
func (id NodeID) String() string {
	if id.IsNil() {
		return "node(nil)"
	}
	return fmt.Sprintf("node(%d#%d)", id.Index, id.Generation)
}

// Node はシーングラフ上の1要素 (ボーン) を表す。
type Node struct {
	id         NodeID
	name       string
	parent     NodeID
	children   []NodeID
	components []Component

	// Local は親から見たローカル姿勢。
	Local mmath.Transform
}

// ID はノードの識別子を返す。
func (n *Node) ID() NodeID {
	return n.id
}

// Name はノード名を返す。
func (n *Node) Name() string {
	return n.name
}

// Parent は親ノードの識別子を返す。ルートの場合は NilNode。
func (n *Node) Parent() NodeID {
	return n.parent
}

// Children は子ノード識別子の複製を返す。
func (n *Node) Children() []NodeID {
	return append([]NodeID(nil), n.children...)
}

// ChildCount は子ノード数を返す。
func (n *Node) ChildCount() int {
	return len(n.children)
}

// Components は付与済みコンポーネントの複製スライスを返す。
func (n *Node) Components() []Component {
	return append([]Component(nil), n.components...)
}

// clone はコンポーネントを値複製したノードを返す。
func (n *Node) clone() (*Node, error) {
	cloned := &Node{
		id:       n.id,
		name:     n.name,
		parent:   n.parent,
		children: append([]NodeID(nil), n.children...),
		Local:    n.Local,
	}
	for _, component := range n.components {
		c, err := component.Clone()
		if err != nil {
			return nil, fmt.Errorf("コンポーネント複製に失敗しました: node=%s kind=%s: %w", n.name, component.Kind(), err)
		}
		cloned.components = append(cloned.components, c)
	}
	return cloned, nil
}
