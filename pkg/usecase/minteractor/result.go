// 指示: miu200521358
package minteractor

import (
	"github.com/miu200521358/mu_armature_cleanup/pkg/domain/model"
	"github.com/miu200521358/mu_armature_cleanup/pkg/usecase/port/moutput"
)

// ModelData は整理対象モデルを表す。
type ModelData = model.SceneModel

// SaveOptions は保存時オプションを表す。
type SaveOptions = moutput.SaveOptions

// CleanupRequest はアーマチュア整理要求を表す。
type CleanupRequest struct {
	InputPath  string
	OutputPath string
	ModelData  *ModelData
	// AvatarPath はアバターノードのパス ("/Avatar")。空の場合は最初の記述子ノード。
	AvatarPath       string
	RootPath         string
	Options          CleanupOptions
	Reader           moutput.IFileReader
	Writer           moutput.IFileWriter
	SaveOptions      SaveOptions
	ProgressReporter IMergeProgressReporter
}

// CleanupResult はアーマチュア整理結果を表す。
type CleanupResult struct {
	Model       *ModelData
	OutputPath  string
	Merge       *MergeResult
	Transaction moutput.ITransaction
	Saved       bool
}
