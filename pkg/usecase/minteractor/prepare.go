// 指示: miu200521358
package minteractor

import (
	"context"
	"fmt"
	"strings"
)

// PrepareCleanup はモデルを読み込み、整理対象の重複ボーンを検出する。
// グラフは変更せず、保存も行わない。
func (uc *ArmatureCleanupUsecase) PrepareCleanup(ctx context.Context, request CleanupRequest) (*CleanupResult, error) {
	if strings.TrimSpace(request.InputPath) == "" && request.ModelData == nil {
		return nil, fmt.Errorf("入力モデルパスが未指定です")
	}
	request.Options.DryRun = true
	return uc.Cleanup(ctx, request)
}
