// 指示: miu200521358
package moutput

import (
	"context"

	"github.com/miu200521358/mu_armature_cleanup/pkg/domain/model"
	"github.com/miu200521358/mu_armature_cleanup/pkg/domain/scene"
)

// IFileReader はモデル読み込みの契約を表す。
type IFileReader interface {
	// CanLoad は読み込み可能な拡張子か判定する。
	CanLoad(path string) bool
	// InferName はパスからモデル名を推定する。
	InferName(path string) string
	// Load はモデルを読み込む。
	Load(ctx context.Context, path string) (*model.SceneModel, error)
}

// IFileWriter はモデル保存の契約を表す。
type IFileWriter interface {
	// Save はモデルを保存する。
	Save(ctx context.Context, path string, modelData *model.SceneModel, opts SaveOptions) error
}

// SaveOptions は保存時のオプションを表す。
type SaveOptions struct {
	// Overwrite が false の場合、既存ファイルへの上書きを拒否する。
	Overwrite bool
}

// ISceneGraph はアーマチュア整理が利用するシーングラフ操作の契約を表す。
type ISceneGraph interface {
	Contains(id scene.NodeID) bool
	Name(id scene.NodeID) string
	Parent(id scene.NodeID) scene.NodeID
	Children(id scene.NodeID) []scene.NodeID
	IsAncestor(ancestor scene.NodeID, id scene.NodeID) bool
	// SetParent は keepWorld が true の場合ワールド姿勢を保って付け替える。
	SetParent(child scene.NodeID, parent scene.NodeID, keepWorld bool) error
	// Destroy はノードを配下ごと破棄する。
	Destroy(id scene.NodeID) (int, error)
	Components(id scene.NodeID) []scene.Component
	ComponentsInChildren(root scene.NodeID) []scene.AttachedComponent
	// CopyComponent は src を値複製して target に付与する。
	CopyComponent(src scene.Component, target scene.NodeID) (scene.Component, error)
	Find(from scene.NodeID, path string) (scene.NodeID, bool)
	Path(id scene.NodeID) string
	Walk(id scene.NodeID, fn func(id scene.NodeID, depth int) bool)
	Hash() (uint64, error)
}

// ITransaction は取り消し可能な編集単位の契約を表す。
type ITransaction interface {
	// BeginGroup は名前付きグループを開始し、グループ番号を返す。
	BeginGroup(name string) (int, error)
	// RecordObject は変更対象を記録する。
	RecordObject(id scene.NodeID, label string)
	// CollapseGroup はグループを1件の取り消し単位として確定する。
	CollapseGroup(group int)
	// RevertGroup はグループ開始時点へ戻す。
	RevertGroup(group int) error
}
