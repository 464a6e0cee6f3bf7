// 指示: miu200521358
package model

const (
	// CleanupWarningComponentCopyFailed はコンポーネント複製失敗警告。
	CleanupWarningComponentCopyFailed = "CleanupWarningComponentCopyFailed"
	// CleanupWarningReparentFailed は子ノード付け替え失敗警告。
	CleanupWarningReparentFailed = "CleanupWarningReparentFailed"
	// CleanupWarningColliderTargetMissing は付け替え先にコライダーが無い警告。
	CleanupWarningColliderTargetMissing = "CleanupWarningColliderTargetMissing"
)

// CleanupWarning は整理中に発生した段階内の警告を表す。
type CleanupWarning struct {
	ID      string
	Path    string
	Message string
}
