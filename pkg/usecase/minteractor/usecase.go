// 指示: miu200521358
package minteractor

import (
	"github.com/miu200521358/mu_armature_cleanup/pkg/domain/scene"
	"github.com/miu200521358/mu_armature_cleanup/pkg/usecase/port/moutput"
)

// TransactionFactory はグラフごとの取り消し履歴を生成する。
type TransactionFactory func(graph *scene.Graph) moutput.ITransaction

// ArmatureCleanupUsecaseDeps はアーマチュア整理ユースケースの依存を表す。
type ArmatureCleanupUsecaseDeps struct {
	ModelReader    moutput.IFileReader
	ModelWriter    moutput.IFileWriter
	NewTransaction TransactionFactory
}

// ArmatureCleanupUsecase はモデルの読み込み・整理・保存をまとめたユースケースを表す。
type ArmatureCleanupUsecase struct {
	modelReader    moutput.IFileReader
	modelWriter    moutput.IFileWriter
	newTransaction TransactionFactory
}

// NewArmatureCleanupUsecase はアーマチュア整理ユースケースを生成する。
func NewArmatureCleanupUsecase(deps ArmatureCleanupUsecaseDeps) *ArmatureCleanupUsecase {
	return &ArmatureCleanupUsecase{
		modelReader:    deps.ModelReader,
		modelWriter:    deps.ModelWriter,
		newTransaction: deps.NewTransaction,
	}
}
