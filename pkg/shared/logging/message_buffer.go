// 指示: miu200521358
package logging

import "sync"

const defaultMessageBufferLimit = 4096

// MessageBuffer は直近の出力メッセージを保持する。
type MessageBuffer struct {
	mu    sync.Mutex
	lines []string
	limit int
}

// NewMessageBuffer はMessageBufferを生成する。
func NewMessageBuffer() *MessageBuffer {
	return &MessageBuffer{limit: defaultMessageBufferLimit}
}

// Append はメッセージを追加する。上限を超えた分は古い順に捨てる。
func (b *MessageBuffer) Append(line string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = append(b.lines, line)
	if over := len(b.lines) - b.limit; over > 0 {
		b.lines = append([]string(nil), b.lines[over:]...)
	}
}

// Lines は保持中メッセージの複製を返す。
func (b *MessageBuffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.lines...)
}

// Clear は保持中メッセージを破棄する。
func (b *MessageBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = nil
}
