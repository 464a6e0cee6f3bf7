// 指示: miu200521358
package scenedoc

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"

	"github.com/miu200521358/mu_armature_cleanup/pkg/adapter/io_common"
	"github.com/miu200521358/mu_armature_cleanup/pkg/domain/model"
	"github.com/miu200521358/mu_armature_cleanup/pkg/shared/logging"
	"github.com/miu200521358/mu_armature_cleanup/pkg/usecase/port/moutput"
	"github.com/viant/afs"
)

const sceneDocFileMode = 0o644

// SceneDocRepository はYAMLシーン文書の読み書き契約を表す。
type SceneDocRepository struct {
	fs afs.Service
}

// NewSceneDocRepository はSceneDocRepositoryを生成する。
func NewSceneDocRepository() *SceneDocRepository {
	return NewSceneDocRepositoryWithService(nil)
}

// NewSceneDocRepositoryWithService はファイルサービスを指定して生成する。
func NewSceneDocRepositoryWithService(fs afs.Service) *SceneDocRepository {
	if fs == nil {
		fs = afs.New()
	}
	return &SceneDocRepository{fs: fs}
}

// CanLoad は拡張子に応じて読み込み可否を判定する。
func (r *SceneDocRepository) CanLoad(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// InferName はパスから表示名を推定する。
func (r *SceneDocRepository) InferName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Load はYAMLシーン文書を読み込む。
func (r *SceneDocRepository) Load(ctx context.Context, path string) (*model.SceneModel, error) {
	if !r.CanLoad(path) {
		return nil, io_common.NewIoExtInvalid(path, nil)
	}
	exists, err := r.fs.Exists(ctx, path)
	if err != nil {
		return nil, io_common.NewIoParseFailed("シーン文書の確認に失敗しました: %s", err, path)
	}
	if !exists {
		return nil, io_common.NewIoFileNotFound(path, nil)
	}
	data, err := r.fs.DownloadWithURL(ctx, path)
	if err != nil {
		return nil, io_common.NewIoParseFailed("シーン文書の読み取りに失敗しました", err)
	}

	graph, source, err := decodeDocument(data)
	if err != nil {
		return nil, err
	}
	modelData := model.NewSceneModel(path, FORMAT_SCENE_DOC, graph)
	modelData.Source = source
	logSceneDocInfo("シーン文書読込完了: file=%s nodes=%d", filepath.Base(path), graph.Len())
	return modelData, nil
}

// Save はシーングラフをYAMLシーン文書として保存する。読込元の形式は問わない。
func (r *SceneDocRepository) Save(ctx context.Context, path string, modelData *model.SceneModel, opts moutput.SaveOptions) error {
	if !r.CanLoad(path) {
		return io_common.NewIoExtInvalid(path, nil)
	}
	if modelData == nil || modelData.Graph == nil {
		return io_common.NewIoSaveFailed("保存対象モデルが未設定です", nil)
	}
	if !opts.Overwrite {
		exists, err := r.fs.Exists(ctx, path)
		if err != nil {
			return io_common.NewIoSaveFailed("保存先の確認に失敗しました: %s", err, path)
		}
		if exists {
			return io_common.NewIoSaveFailed("保存先が既に存在します: %s", nil, path)
		}
	}

	source, _ := modelData.Source.(*sceneSource)
	data, err := encodeDocument(modelData.Graph, source)
	if err != nil {
		return err
	}
	if err := r.fs.Upload(ctx, path, sceneDocFileMode, bytes.NewReader(data)); err != nil {
		return io_common.NewIoSaveFailed("シーン文書の書き込みに失敗しました: %s", err, path)
	}
	logSceneDocInfo("シーン文書保存完了: file=%s bytes=%d", filepath.Base(path), len(data))
	return nil
}

// logSceneDocInfo はシーン文書入出力のINFOログを出力する。
func logSceneDocInfo(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Info(format, params...)
}

// logSceneDocStep はシーン文書入出力の進捗デバッグログを出力する。
func logSceneDocStep(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Debug(format, params...)
}
