// 指示: miu200521358
package minteractor

import (
	"context"
	"fmt"
	"strings"

	"github.com/miu200521358/mu_armature_cleanup/pkg/domain/scene"
	"github.com/miu200521358/mu_armature_cleanup/pkg/usecase/port/moutput"
)

// Cleanup はモデルを読み込み、重複ボーンを整理して保存する。
// DryRun の場合は検出結果のみを返し、保存しない。
func (uc *ArmatureCleanupUsecase) Cleanup(ctx context.Context, request CleanupRequest) (*CleanupResult, error) {
	if strings.TrimSpace(request.InputPath) == "" && request.ModelData == nil {
		return nil, fmt.Errorf("入力モデルパスが未指定です")
	}

	outputPath := ""
	if !request.Options.DryRun {
		resolved, err := resolveOutputPath(request.InputPath, request.OutputPath)
		if err != nil {
			return nil, err
		}
		outputPath = resolved
	}

	modelData, err := uc.resolveModelData(ctx, request.Reader, request.InputPath, request.ModelData)
	if err != nil {
		return nil, err
	}

	avatar, err := resolveAvatar(modelData, request.AvatarPath)
	if err != nil {
		return nil, err
	}

	var tx moutput.ITransaction
	if uc.newTransaction != nil {
		tx = uc.newTransaction(modelData.Graph)
	}
	orchestrator := NewMergeOrchestrator(modelData.Graph, tx)
	mergeResult, err := orchestrator.Run(ctx, MergeRequest{
		Avatar:           avatar,
		RootPath:         request.RootPath,
		Options:          request.Options,
		ProgressReporter: request.ProgressReporter,
	})
	if err != nil {
		return nil, err
	}

	result := &CleanupResult{
		Model:       modelData,
		OutputPath:  outputPath,
		Merge:       mergeResult,
		Transaction: tx,
	}
	if request.Options.DryRun {
		return result, nil
	}

	if err := uc.SaveModel(ctx, request.Writer, outputPath, modelData, request.SaveOptions); err != nil {
		return nil, err
	}
	modelData.SetPath(outputPath)
	result.Saved = true
	return result, nil
}

// resolveModelData は整理対象モデルを解決する。
func (uc *ArmatureCleanupUsecase) resolveModelData(
	ctx context.Context,
	rep moutput.IFileReader,
	inputPath string,
	modelData *ModelData,
) (*ModelData, error) {
	resolved := modelData
	if resolved == nil {
		loaded, err := uc.LoadModel(ctx, rep, inputPath)
		if err != nil {
			return nil, err
		}
		resolved = loaded
	}
	if resolved == nil || resolved.Graph == nil {
		return nil, fmt.Errorf("モデル読み込み結果が空です")
	}
	return resolved, nil
}

// resolveAvatar はアバターノードを解決する。
// パス未指定の場合は最初の記述子ノード、記述子が無ければ最初のルートノードを返す。
func resolveAvatar(modelData *ModelData, avatarPath string) (scene.NodeID, error) {
	if trimmed := strings.TrimSpace(avatarPath); trimmed != "" {
		avatar, ok := modelData.Graph.Find(scene.NilNode, trimmed)
		if !ok {
			return scene.NilNode, fmt.Errorf("アバターノードが見つかりません: %s", trimmed)
		}
		return avatar, nil
	}
	if avatars := modelData.AvatarRoots(); len(avatars) > 0 {
		return avatars[0], nil
	}
	if roots := modelData.Graph.Roots(); len(roots) > 0 {
		return roots[0], nil
	}
	return scene.NilNode, nil
}
