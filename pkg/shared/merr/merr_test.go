// 指示: miu200521358
package merr

import (
	"errors"
	"fmt"
	"testing"
)

func TestExtractErrorIDThroughWrap(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("wrapped: %w", NewCommonError("15101", "アバターがありません", cause))

	if got := ExtractErrorID(err); got != "15101" {
		t.Fatalf("error id mismatch: got=%s want=15101", got)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("cause should be reachable")
	}
	if !errors.Is(err, NewCommonError("15101", "", nil)) {
		t.Fatalf("same id should match")
	}
	if errors.Is(err, NewCommonError("15102", "", nil)) {
		t.Fatalf("different id should not match")
	}
	if ExtractErrorID(cause) != "" {
		t.Fatalf("plain error should not have id")
	}
}
