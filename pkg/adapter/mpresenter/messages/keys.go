// 指示: miu200521358
// Package messages はCLI表示に使うメッセージキーと翻訳カタログを提供する。
package messages

// メッセージキー一覧。キー自体が日本語の表示文言を兼ねる。
const (
	HelpUsageTitle = "使い方"
	HelpUsage      = "使い方説明"

	MessageLoadFailed     = "読み込み失敗"
	MessageSaveFailed     = "保存失敗"
	MessageCleanupFailed  = "整理失敗"
	MessageInputRequired  = "入力モデルを指定してください"
	MessageConfigFailed   = "設定読み込み失敗"
	MessageNoDuplicates   = "重複ボーンはありません"
	MessageDryRunNotSaved = "検出のみのため保存しません"

	LogLoadSuccess    = "モデル読み込み成功: %s"
	LogCleanupSuccess = "整理結果保存成功: %s"
	LogPairDetected   = "重複ボーン: %s -> %s"
	LogCleanupSummary = "整理結果: 重複=%d 付け替え=%d 複製=%d 参照更新=%d 破棄=%d 警告=%d"
	LogWarning        = "警告[%s] %s: %s"
	LogProgress       = "進捗: %s (%d)"
)
