// 指示: miu200521358
// Package merr はエラーIDを持つ共通エラーを提供する。
package merr

import (
	"errors"
	"fmt"
)

// CommonError はエラーIDとメッセージ、原因エラーを保持する。
type CommonError struct {
	id      string
	message string
	cause   error
}

// NewCommonError は共通エラーを生成する。
func NewCommonError(id string, message string, cause error) *CommonError {
	return &CommonError{id: id, message: message, cause: cause}
}

// Error はエラーメッセージを返す。
func (e *CommonError) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("[%s] %s", e.id, e.message)
	}
	return fmt.Sprintf("[%s] %s: %v", e.id, e.message, e.cause)
}

// ErrorID はエラーIDを返す。
func (e *CommonError) ErrorID() string {
	return e.id
}

// Message は原因を含まないメッセージを返す。
func (e *CommonError) Message() string {
	return e.message
}

// Unwrap は原因エラーを返す。
func (e *CommonError) Unwrap() error {
	return e.cause
}

// Is は同じエラーIDか判定する。
func (e *CommonError) Is(target error) bool {
	var other *CommonError
	if !errors.As(target, &other) {
		return false
	}
	return other.id == e.id
}

// ExtractErrorID はエラー連鎖から最初のエラーIDを取り出す。見つからない場合は空文字。
func ExtractErrorID(err error) string {
	var commonErr *CommonError
	if errors.As(err, &commonErr) {
		return commonErr.id
	}
	return ""
}
