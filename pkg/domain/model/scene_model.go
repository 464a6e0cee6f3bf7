// 指示: miu200521358
// Package model はアーマチュア整理で扱うモデル・エラー・警告を定義する。
package model

import "github.com/miu200521358/mu_armature_cleanup/pkg/domain/scene"

// SceneModel は読み込んだアバターモデルを表す。
type SceneModel struct {
	path string

	// Graph はノード階層とコンポーネント。
	Graph *scene.Graph
	// Format は読み込み元の形式名 ("vrm", "yaml")。
	Format string
	// Source は保存時に読み込み元形式へ書き戻すための形式固有データ。
	Source any
}

// NewSceneModel はモデルを生成する。
func NewSceneModel(path string, format string, graph *scene.Graph) *SceneModel {
	if graph == nil {
		graph = scene.NewGraph()
	}
	return &SceneModel{path: path, Format: format, Graph: graph}
}

// Path は読み込み元 (または保存先) パスを返す。
func (m *SceneModel) Path() string {
	return m.path
}

// SetPath はパスを設定する。
func (m *SceneModel) SetPath(path string) {
	m.path = path
}

// AvatarRoots は AvatarDescriptor を持つノードを走査順で返す。
func (m *SceneModel) AvatarRoots() []scene.NodeID {
	avatars := make([]scene.NodeID, 0)
	if m == nil || m.Graph == nil {
		return avatars
	}
	for _, attached := range m.Graph.ComponentsInChildren(scene.NilNode) {
		if attached.Component.Kind() != scene.KIND_AVATAR_DESCRIPTOR {
			continue
		}
		if len(avatars) > 0 && avatars[len(avatars)-1] == attached.Node {
			continue
		}
		avatars = append(avatars, attached.Node)
	}
	return avatars
}
