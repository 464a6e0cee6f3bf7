// 指示: miu200521358
package scene

import (
	"errors"
	"fmt"
	"strings"

	"github.com/miu200521358/mu_armature_cleanup/pkg/domain/mmath"
)

var (
	// ErrNodeNotFound は指定ノードが存在しない (破棄済みを含む) ことを表す。
	ErrNodeNotFound = errors.New("ノードが存在しません")
	// ErrCyclicParent は親子付けが循環を作ることを表す。
	ErrCyclicParent = errors.New("親子関係が循環します")
	// ErrNilComponent はコンポーネントが未指定であることを表す。
	ErrNilComponent = errors.New("コンポーネントが未指定です")
)

// slot はアリーナの1区画を表す。
type slot struct {
	node       *Node
	generation uint32
}

// Graph はノードの世代付きアリーナと階層を保持する。
type Graph struct {
	slots []slot
	free  []uint32
	roots []NodeID
	live  int
}

// NewGraph は空のグラフを生成する。
func NewGraph() *Graph {
	return &Graph{}
}

// Len は生存ノード数を返す。
func (g *Graph) Len() int {
	return g.live
}

// AddNode はノードを追加する。parent が NilNode の場合はルートとして追加する。
func (g *Graph) AddNode(name string, parent NodeID) (NodeID, error) {
	var parentNode *Node
	if !parent.IsNil() {
		p, ok := g.Node(parent)
		if !ok {
			return NilNode, fmt.Errorf("親ノード %s: %w", parent, ErrNodeNotFound)
		}
		parentNode = p
	}

	var index uint32
	if n := len(g.free); n > 0 {
		index = g.free[n-1]
		g.free = g.free[:n-1]
	} else {
		index = uint32(len(g.slots))
		g.slots = append(g.slots, slot{})
	}
	g.slots[index].generation++
	id := NodeID{Index: index, Generation: g.slots[index].generation}
	g.slots[index].node = &Node{
		id:     id,
		name:   name,
		parent: parent,
		Local:  mmath.NewTransform(),
	}
	g.live++

	if parentNode == nil {
		g.roots = append(g.roots, id)
	} else {
		parentNode.children = append(parentNode.children, id)
	}
	return id, nil
}

// Node は識別子からノードを取得する。破棄済みの場合は false。
func (g *Graph) Node(id NodeID) (*Node, bool) {
	if id.IsNil() || int(id.Index) >= len(g.slots) {
		return nil, false
	}
	s := g.slots[id.Index]
	if s.node == nil || s.generation != id.Generation {
		return nil, false
	}
	return s.node, true
}

// Contains はノードが生存しているか判定する。
func (g *Graph) Contains(id NodeID) bool {
	_, ok := g.Node(id)
	return ok
}

// Roots はルートノード一覧の複製を返す。
func (g *Graph) Roots() []NodeID {
	return append([]NodeID(nil), g.roots...)
}

// Name はノード名を返す。存在しない場合は空文字。
func (g *Graph) Name(id NodeID) string {
	if n, ok := g.Node(id); ok {
		return n.name
	}
	return ""
}

// SetName はノード名を変更する。
func (g *Graph) SetName(id NodeID, name string) error {
	n, ok := g.Node(id)
	if !ok {
		return fmt.Errorf("%s: %w", id, ErrNodeNotFound)
	}
	n.name = name
	return nil
}

// Parent は親ノードの識別子を返す。
func (g *Graph) Parent(id NodeID) NodeID {
	if n, ok := g.Node(id); ok {
		return n.parent
	}
	return NilNode
}

// Children は子ノード識別子の複製を返す。
func (g *Graph) Children(id NodeID) []NodeID {
	if n, ok := g.Node(id); ok {
		return n.Children()
	}
	return nil
}

// IsAncestor は ancestor が id の祖先 (自身を含む) か判定する。
func (g *Graph) IsAncestor(ancestor NodeID, id NodeID) bool {
	for current := id; !current.IsNil(); current = g.Parent(current) {
		if current == ancestor {
			return true
		}
	}
	return false
}

// LocalTransform はローカル姿勢を返す。
func (g *Graph) LocalTransform(id NodeID) mmath.Transform {
	if n, ok := g.Node(id); ok {
		return n.Local
	}
	return mmath.NewTransform()
}

// SetLocalTransform はローカル姿勢を設定する。
func (g *Graph) SetLocalTransform(id NodeID, local mmath.Transform) error {
	n, ok := g.Node(id)
	if !ok {
		return fmt.Errorf("%s: %w", id, ErrNodeNotFound)
	}
	n.Local = local
	return nil
}

// WorldMatrix はルートからのワールド行列を返す。
func (g *Graph) WorldMatrix(id NodeID) mmath.Mat4 {
	n, ok := g.Node(id)
	if !ok {
		return mmath.NewMat4()
	}
	local := n.Local.ToMat4()
	if n.parent.IsNil() {
		return local
	}
	return g.WorldMatrix(n.parent).Muled(local)
}

// SetParent は child を parent の末尾の子として付け替える。
// keepWorld が true の場合はワールド姿勢が変わらないようローカル姿勢を再計算する。
func (g *Graph) SetParent(child NodeID, parent NodeID, keepWorld bool) error {
	childNode, ok := g.Node(child)
	if !ok {
		return fmt.Errorf("子ノード %s: %w", child, ErrNodeNotFound)
	}
	if !parent.IsNil() {
		if !g.Contains(parent) {
			return fmt.Errorf("親ノード %s: %w", parent, ErrNodeNotFound)
		}
		if g.IsAncestor(child, parent) {
			return fmt.Errorf("%s -> %s: %w", g.Path(child), g.Path(parent), ErrCyclicParent)
		}
	}
	if childNode.parent == parent {
		return nil
	}

	world := g.WorldMatrix(child)
	g.detach(childNode)
	childNode.parent = parent
	if parent.IsNil() {
		g.roots = append(g.roots, child)
	} else {
		parentNode, _ := g.Node(parent)
		parentNode.children = append(parentNode.children, child)
	}

	if keepWorld {
		parentWorld := mmath.NewMat4()
		if !parent.IsNil() {
			parentWorld = g.WorldMatrix(parent)
		}
		childNode.Local = mmath.NewTransformFromMat4(parentWorld.Inverted().Muled(world))
	}
	return nil
}

// detach はノードを親の子一覧 (またはルート一覧) から外す。
func (g *Graph) detach(n *Node) {
	if n.parent.IsNil() {
		g.roots = removeNodeID(g.roots, n.id)
		return
	}
	if parentNode, ok := g.Node(n.parent); ok {
		parentNode.children = removeNodeID(parentNode.children, n.id)
	}
}

// removeNodeID はスライスから最初の一致要素を除いたスライスを返す。
func removeNodeID(ids []NodeID, target NodeID) []NodeID {
	for i, id := range ids {
		if id == target {
			return append(ids[:i:i], ids[i+1:]...)
		}
	}
	return ids
}

// Destroy はノードと配下の全ノードを破棄し、破棄したノード数を返す。
func (g *Graph) Destroy(id NodeID) (int, error) {
	n, ok := g.Node(id)
	if !ok {
		return 0, fmt.Errorf("%s: %w", id, ErrNodeNotFound)
	}
	g.detach(n)

	subtree := g.Subtree(id)
	for _, target := range subtree {
		g.slots[target.Index].node = nil
		g.free = append(g.free, target.Index)
		g.live--
	}
	return len(subtree), nil
}

// Subtree は id を起点とした配下ノードを深さ優先 (先行順) で返す。
func (g *Graph) Subtree(id NodeID) []NodeID {
	ids := make([]NodeID, 0)
	g.Walk(id, func(current NodeID, _ int) bool {
		ids = append(ids, current)
		return true
	})
	return ids
}

// Walk は id を起点に深さ優先 (先行順) で走査する。id が NilNode の場合は全ルートを走査する。
// fn が false を返した場合、そのノードの子は走査しない。
func (g *Graph) Walk(id NodeID, fn func(id NodeID, depth int) bool) {
	if id.IsNil() {
		for _, root := range g.Roots() {
			g.walk(root, 0, fn)
		}
		return
	}
	g.walk(id, 0, fn)
}

// walk はWalkの再帰本体。
func (g *Graph) walk(id NodeID, depth int, fn func(id NodeID, depth int) bool) {
	n, ok := g.Node(id)
	if !ok {
		return
	}
	if !fn(id, depth) {
		return
	}
	for _, child := range n.Children() {
		g.walk(child, depth+1, fn)
	}
}

// Find は from からの相対パス ("Armature/Hips") でノードを探す。
// 各階層では最初に名前が一致した子を採用する。from が NilNode の場合は先頭要素をルートから探す。
func (g *Graph) Find(from NodeID, path string) (NodeID, bool) {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	current := from
	for i, segment := range segments {
		if segment == "" {
			continue
		}
		candidates := g.Children(current)
		if i == 0 && from.IsNil() {
			candidates = g.Roots()
		}
		found := NilNode
		for _, candidate := range candidates {
			if g.Name(candidate) == segment {
				found = candidate
				break
			}
		}
		if found.IsNil() {
			return NilNode, false
		}
		current = found
	}
	if current.IsNil() || !g.Contains(current) {
		return NilNode, false
	}
	return current, true
}

// Path はルートからのパス文字列 ("/Avatar/Armature/Hips") を返す。
func (g *Graph) Path(id NodeID) string {
	n, ok := g.Node(id)
	if !ok {
		return "<destroyed " + id.String() + ">"
	}
	if n.parent.IsNil() {
		return "/" + n.name
	}
	return g.Path(n.parent) + "/" + n.name
}

// Clone はコンポーネントまで値複製したグラフを返す。NodeID は維持される。
func (g *Graph) Clone() (*Graph, error) {
	cloned := &Graph{
		slots: make([]slot, len(g.slots)),
		free:  append([]uint32(nil), g.free...),
		roots: append([]NodeID(nil), g.roots...),
		live:  g.live,
	}
	for i, s := range g.slots {
		cloned.slots[i].generation = s.generation
		if s.node == nil {
			continue
		}
		n, err := s.node.clone()
		if err != nil {
			return nil, err
		}
		cloned.slots[i].node = n
	}
	return cloned, nil
}

// Restore はスナップショットの内容でグラフを置き換える。
// スナップショット側は以後も再利用できるよう複製してから取り込む。
func (g *Graph) Restore(snapshot *Graph) error {
	if snapshot == nil {
		return errors.New("スナップショットが未指定です")
	}
	restored, err := snapshot.Clone()
	if err != nil {
		return err
	}
	*g = *restored
	return nil
}
