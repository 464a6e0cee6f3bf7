// 指示: miu200521358
package minteractor

import (
	"context"
	"fmt"

	"github.com/miu200521358/mu_armature_cleanup/pkg/usecase/port/moutput"
)

// LoadModel はモデルを読み込む。
func (uc *ArmatureCleanupUsecase) LoadModel(ctx context.Context, rep moutput.IFileReader, path string) (*ModelData, error) {
	repo := rep
	if repo == nil {
		repo = uc.modelReader
	}
	if repo == nil {
		return nil, fmt.Errorf("モデル読み込みリポジトリが設定されていません")
	}
	return repo.Load(ctx, path)
}
