// 指示: miu200521358
package minteractor

import (
	"github.com/miu200521358/mu_armature_cleanup/pkg/domain/model"
	"github.com/miu200521358/mu_armature_cleanup/pkg/domain/scene"
	"github.com/miu200521358/mu_armature_cleanup/pkg/usecase/port/moutput"
)

// NodeIndex は1回の整理で使うノード識別子の索引を表す。
// 構築時点の走査順と深さを保持し、以降の段階はこの索引をキー空間として使う。
type NodeIndex struct {
	scope scene.NodeID
	root  scene.NodeID
	ids   []scene.NodeID
	order map[scene.NodeID]int
	depth map[scene.NodeID]int
}

// BuildNodeIndex は scope 配下 (NilNode の場合はグラフ全体) の索引を構築する。
// root はスケルトンルートで、scope 配下に存在しなければならない。
func BuildNodeIndex(graph moutput.ISceneGraph, scope scene.NodeID, root scene.NodeID) (*NodeIndex, error) {
	if !scope.IsNil() && !graph.Contains(scope) {
		return nil, model.NewAvatarMissing()
	}
	if root.IsNil() || !graph.Contains(root) {
		return nil, model.NewRootNotFound(root.String())
	}
	if !scope.IsNil() && !graph.IsAncestor(scope, root) {
		return nil, model.NewRootOutsideAvatar(graph.Path(root), graph.Path(scope))
	}

	index := &NodeIndex{
		scope: scope,
		root:  root,
		ids:   make([]scene.NodeID, 0),
		order: make(map[scene.NodeID]int),
		depth: make(map[scene.NodeID]int),
	}
	graph.Walk(scope, func(id scene.NodeID, depth int) bool {
		index.order[id] = len(index.ids)
		index.depth[id] = depth
		index.ids = append(index.ids, id)
		return true
	})
	return index, nil
}

// Scope は走査範囲のノードを返す。NilNode はグラフ全体を表す。
func (x *NodeIndex) Scope() scene.NodeID {
	return x.scope
}

// Root はスケルトンルートを返す。
func (x *NodeIndex) Root() scene.NodeID {
	return x.root
}

// Len は索引済みノード数を返す。
func (x *NodeIndex) Len() int {
	return len(x.ids)
}

// Contains は索引済みノードか判定する。
func (x *NodeIndex) Contains(id scene.NodeID) bool {
	_, ok := x.order[id]
	return ok
}

// Order は走査順の番号を返す。索引外は -1。
func (x *NodeIndex) Order(id scene.NodeID) int {
	if order, ok := x.order[id]; ok {
		return order
	}
	return -1
}

// Depth は走査範囲の起点からの深さを返す。索引外は -1。
func (x *NodeIndex) Depth(id scene.NodeID) int {
	if depth, ok := x.depth[id]; ok {
		return depth
	}
	return -1
}

// IDs は走査順のノード一覧の複製を返す。
func (x *NodeIndex) IDs() []scene.NodeID {
	return append([]scene.NodeID(nil), x.ids...)
}
