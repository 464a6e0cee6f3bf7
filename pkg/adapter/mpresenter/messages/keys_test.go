// 指示: miu200521358
package messages

import (
	"strings"
	"testing"
)

func TestMessageKeysAreDefinedAndTranslated(t *testing.T) {
	seen := map[string]struct{}{}
	for _, key := range allKeys {
		if key == "" {
			t.Fatalf("key should not be empty")
		}
		if _, exists := seen[key]; exists {
			t.Fatalf("key should be unique: %s", key)
		}
		seen[key] = struct{}{}
		if _, ok := englishMessages[key]; !ok {
			t.Fatalf("english message missing: %s", key)
		}
	}
}

func TestPrinterTranslatesByLanguage(t *testing.T) {
	en, err := NewPrinter("en")
	if err != nil {
		t.Fatalf("NewPrinter failed: %v", err)
	}
	if got := en.Sprintf(LogLoadSuccess, "a.vrm"); got != "Loaded model: a.vrm" {
		t.Fatalf("english mismatch: got=%s", got)
	}

	ja, err := NewPrinter("ja")
	if err != nil {
		t.Fatalf("NewPrinter failed: %v", err)
	}
	if got := ja.Sprintf(LogLoadSuccess, "a.vrm"); got != "モデル読み込み成功: a.vrm" {
		t.Fatalf("japanese mismatch: got=%s", got)
	}
	if got := ja.Sprintf(HelpUsage); !strings.Contains(got, "-dry-run") {
		t.Fatalf("usage should list flags: got=%s", got)
	}
}
