// 指示: miu200521358
package messages

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// englishMessages は英語表示の文言。
var englishMessages = map[string]string{
	HelpUsageTitle: "Usage",
	HelpUsage: "mu_armature_cleanup merges bones that were duplicated under a parent of the same name.\n" +
		"  -in <path>      input model (.vrm/.glb/.yaml/.yml)\n" +
		"  -out <path>     output model (default: <name>_cleanup_<timestamp><ext>)\n" +
		"  -avatar <path>  avatar node path (default: first avatar descriptor)\n" +
		"  -root <path>    skeleton root relative to the descriptor node (default: Armature)\n" +
		"  -config <path>  YAML config\n" +
		"  -dry-run        detect only\n" +
		"  -log-level <l>  debug/info/warn/error\n" +
		"  -lang <ja|en>   message language",
	MessageLoadFailed:     "Failed to load",
	MessageSaveFailed:     "Failed to save",
	MessageCleanupFailed:  "Cleanup failed",
	MessageInputRequired:  "Specify an input model",
	MessageConfigFailed:   "Failed to load config",
	MessageNoDuplicates:   "No duplicate bones found",
	MessageDryRunNotSaved: "Dry run: nothing saved",
	LogLoadSuccess:        "Loaded model: %s",
	LogCleanupSuccess:     "Saved cleaned model: %s",
	LogPairDetected:       "Duplicate bone: %s -> %s",
	LogCleanupSummary:     "Result: pairs=%d reparented=%d copied=%d redirected=%d destroyed=%d warnings=%d",
	LogWarning:            "Warning[%s] %s: %s",
	LogProgress:           "Progress: %s (%d)",
}

// japaneseOverrides はキーと異なる日本語文言。
var japaneseOverrides = map[string]string{
	HelpUsage: "mu_armature_cleanup は親と同名で重複したボーンを統合します。\n" +
		"  -in <path>      入力モデル (.vrm/.glb/.yaml/.yml)\n" +
		"  -out <path>     出力モデル (既定: <名前>_cleanup_<日時><拡張子>)\n" +
		"  -avatar <path>  アバターノードのパス (既定: 最初のアバター記述子)\n" +
		"  -root <path>    記述子ノードからのスケルトンルート (既定: Armature)\n" +
		"  -config <path>  YAML設定ファイル\n" +
		"  -dry-run        検出のみ\n" +
		"  -log-level <l>  debug/info/warn/error\n" +
		"  -lang <ja|en>   表示言語",
}

// allKeys はカタログへ登録する全キー。
var allKeys = []string{
	HelpUsageTitle, HelpUsage,
	MessageLoadFailed, MessageSaveFailed, MessageCleanupFailed, MessageInputRequired,
	MessageConfigFailed, MessageNoDuplicates, MessageDryRunNotSaved,
	LogLoadSuccess, LogCleanupSuccess, LogPairDetected, LogCleanupSummary, LogWarning, LogProgress,
}

// NewCatalog は日本語・英語の翻訳カタログを生成する。
func NewCatalog() (catalog.Catalog, error) {
	builder := catalog.NewBuilder(catalog.Fallback(language.Japanese))
	for _, key := range allKeys {
		ja := key
		if override, ok := japaneseOverrides[key]; ok {
			ja = override
		}
		if err := builder.SetString(language.Japanese, key, ja); err != nil {
			return nil, err
		}
		if en, ok := englishMessages[key]; ok {
			if err := builder.SetString(language.English, key, en); err != nil {
				return nil, err
			}
		}
	}
	return builder, nil
}

// ParseLanguage は言語指定を解決する。未知の値は日本語とする。
func ParseLanguage(value string) language.Tag {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "en", "en-us", "english":
		return language.English
	default:
		return language.Japanese
	}
}

// NewPrinter は言語指定に応じたプリンタを生成する。
func NewPrinter(lang string) (*message.Printer, error) {
	cat, err := NewCatalog()
	if err != nil {
		return nil, err
	}
	return message.NewPrinter(ParseLanguage(lang), message.Catalog(cat)), nil
}
