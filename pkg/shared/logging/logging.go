// 指示: miu200521358
// Package logging はアプリ共通のレベル付きロガーを提供する。
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// LogLevel はログ出力レベルを表す。
type LogLevel int

const (
	// LOG_LEVEL_DEBUG はデバッグレベル。
	LOG_LEVEL_DEBUG LogLevel = iota
	// LOG_LEVEL_INFO は情報レベル。
	LOG_LEVEL_INFO
	// LOG_LEVEL_WARN は警告レベル。
	LOG_LEVEL_WARN
	// LOG_LEVEL_ERROR はエラーレベル。
	LOG_LEVEL_ERROR
)

// String はレベル名を返す。
func (l LogLevel) String() string {
	switch l {
	case LOG_LEVEL_DEBUG:
		return "debug"
	case LOG_LEVEL_INFO:
		return "info"
	case LOG_LEVEL_WARN:
		return "warn"
	case LOG_LEVEL_ERROR:
		return "error"
	default:
		return "unknown"
	}
}

// ParseLogLevel は文字列からレベルを解決する。未知の値はINFOとする。
func ParseLogLevel(value string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return LOG_LEVEL_DEBUG
	case "warn", "warning":
		return LOG_LEVEL_WARN
	case "error":
		return LOG_LEVEL_ERROR
	default:
		return LOG_LEVEL_INFO
	}
}

// ILogger はアプリ共通のロガー契約を表す。
type ILogger interface {
	Debug(format string, params ...any)
	Info(format string, params ...any)
	Warn(format string, params ...any)
	Error(format string, params ...any)
	SetLevel(level LogLevel)
	Level() LogLevel
	IsEnabled(level LogLevel) bool
	MessageBuffer() *MessageBuffer
}

// Logger はslogを出力先とするILogger実装。
type Logger struct {
	handlerLevel *slog.LevelVar
	level        LogLevel
	out          *slog.Logger
	buffer       *MessageBuffer
	mu           sync.RWMutex
}

// NewLogger は出力先を指定してロガーを生成する。nil の場合は標準エラーへ出力する。
func NewLogger(w io.Writer) *Logger {
	if w == nil {
		w = os.Stderr
	}
	handlerLevel := &slog.LevelVar{}
	handlerLevel.Set(slog.LevelDebug)
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: handlerLevel})
	return &Logger{
		handlerLevel: handlerLevel,
		level:        LOG_LEVEL_INFO,
		out:          slog.New(handler),
		buffer:       NewMessageBuffer(),
	}
}

// SetLevel は出力レベルを設定する。
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
	l.handlerLevel.Set(toSlogLevel(level))
}

// Level は現在の出力レベルを返す。
func (l *Logger) Level() LogLevel {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level
}

// IsEnabled は指定レベルが出力対象か判定する。
func (l *Logger) IsEnabled(level LogLevel) bool {
	return level >= l.Level()
}

// MessageBuffer は出力済みメッセージのバッファを返す。
func (l *Logger) MessageBuffer() *MessageBuffer {
	return l.buffer
}

// Debug はDEBUGログを出力する。
func (l *Logger) Debug(format string, params ...any) {
	l.write(LOG_LEVEL_DEBUG, format, params...)
}

// Info はINFOログを出力する。
func (l *Logger) Info(format string, params ...any) {
	l.write(LOG_LEVEL_INFO, format, params...)
}

// Warn はWARNログを出力する。
func (l *Logger) Warn(format string, params ...any) {
	l.write(LOG_LEVEL_WARN, format, params...)
}

// Error はERRORログを出力する。
func (l *Logger) Error(format string, params ...any) {
	l.write(LOG_LEVEL_ERROR, format, params...)
}

// write はレベル判定後にバッファとslogへ出力する。
func (l *Logger) write(level LogLevel, format string, params ...any) {
	if !l.IsEnabled(level) {
		return
	}
	message := format
	if len(params) > 0 {
		message = fmt.Sprintf(format, params...)
	}
	l.buffer.Append(message)
	l.out.Log(context.Background(), toSlogLevel(level), message)
}

// toSlogLevel はLogLevelをslog.Levelへ変換する。
func toSlogLevel(level LogLevel) slog.Level {
	switch level {
	case LOG_LEVEL_DEBUG:
		return slog.LevelDebug
	case LOG_LEVEL_WARN:
		return slog.LevelWarn
	case LOG_LEVEL_ERROR:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var (
	defaultLoggerMu sync.RWMutex
	defaultLogger   ILogger = NewLogger(nil)
)

// DefaultLogger は既定ロガーを返す。
func DefaultLogger() ILogger {
	defaultLoggerMu.RLock()
	defer defaultLoggerMu.RUnlock()
	return defaultLogger
}

// SetDefaultLogger は既定ロガーを差し替える。
func SetDefaultLogger(logger ILogger) {
	defaultLoggerMu.Lock()
	defer defaultLoggerMu.Unlock()
	defaultLogger = logger
}
