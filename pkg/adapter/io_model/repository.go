// 指示: miu200521358
// Package io_model は拡張子に応じてモデル入出力を振り分ける。
package io_model

import (
	"context"
	"path/filepath"

	"github.com/miu200521358/mu_armature_cleanup/pkg/adapter/io_common"
	"github.com/miu200521358/mu_armature_cleanup/pkg/adapter/io_model/scenedoc"
	"github.com/miu200521358/mu_armature_cleanup/pkg/adapter/io_model/vrm"
	"github.com/miu200521358/mu_armature_cleanup/pkg/domain/model"
	"github.com/miu200521358/mu_armature_cleanup/pkg/usecase/port/moutput"
	"github.com/viant/afs"
)

// IModelRepository は読み書き両方を担うリポジトリを表す。
type IModelRepository interface {
	moutput.IFileReader
	moutput.IFileWriter
}

// ModelRepository は登録済みリポジトリから拡張子で選んで委譲する。
type ModelRepository struct {
	repositories []IModelRepository
}

// NewModelRepository は VRM/GLB とYAMLシーン文書を扱うリポジトリを生成する。
func NewModelRepository(fs afs.Service) *ModelRepository {
	if fs == nil {
		fs = afs.New()
	}
	return NewModelRepositoryWith(
		vrm.NewVrmRepositoryWithService(fs),
		scenedoc.NewSceneDocRepositoryWithService(fs),
	)
}

// NewModelRepositoryWith は指定リポジトリで生成する。
func NewModelRepositoryWith(repositories ...IModelRepository) *ModelRepository {
	return &ModelRepository{repositories: repositories}
}

// resolve はパスを扱えるリポジトリを返す。
func (r *ModelRepository) resolve(path string) (IModelRepository, bool) {
	for _, repository := range r.repositories {
		if repository.CanLoad(path) {
			return repository, true
		}
	}
	return nil, false
}

// CanLoad はいずれかのリポジトリで扱えるか判定する。
func (r *ModelRepository) CanLoad(path string) bool {
	_, ok := r.resolve(path)
	return ok
}

// InferName はパスから表示名を推定する。
func (r *ModelRepository) InferName(path string) string {
	if repository, ok := r.resolve(path); ok {
		return repository.InferName(path)
	}
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}

// Load は拡張子に応じたリポジトリで読み込む。
func (r *ModelRepository) Load(ctx context.Context, path string) (*model.SceneModel, error) {
	repository, ok := r.resolve(path)
	if !ok {
		return nil, io_common.NewIoExtInvalid(path, nil)
	}
	return repository.Load(ctx, path)
}

// Save は拡張子に応じたリポジトリで保存する。
func (r *ModelRepository) Save(ctx context.Context, path string, modelData *model.SceneModel, opts moutput.SaveOptions) error {
	repository, ok := r.resolve(path)
	if !ok {
		return io_common.NewIoExtInvalid(path, nil)
	}
	return repository.Save(ctx, path, modelData, opts)
}
