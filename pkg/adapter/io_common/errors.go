// 指示: miu200521358
// Package io_common はモデル入出力で共通のエラーを提供する。
package io_common

import (
	"fmt"

	"github.com/miu200521358/mu_armature_cleanup/pkg/shared/merr"
)

const (
	// IO_FILE_NOT_FOUND_ERROR_ID はファイル未検出エラーID。
	IO_FILE_NOT_FOUND_ERROR_ID = "14101"
	// IO_EXT_INVALID_ERROR_ID は拡張子不正エラーID。
	IO_EXT_INVALID_ERROR_ID = "14102"
	// IO_PARSE_FAILED_ERROR_ID は解析失敗エラーID。
	IO_PARSE_FAILED_ERROR_ID = "14103"
	// IO_FORMAT_NOT_SUPPORTED_ERROR_ID は形式未対応エラーID。
	IO_FORMAT_NOT_SUPPORTED_ERROR_ID = "14104"
	// IO_SAVE_FAILED_ERROR_ID は保存失敗エラーID。
	IO_SAVE_FAILED_ERROR_ID = "14105"
)

// NewIoFileNotFound はファイル未検出エラーを生成する。
func NewIoFileNotFound(path string, cause error) error {
	return merr.NewCommonError(IO_FILE_NOT_FOUND_ERROR_ID, fmt.Sprintf("ファイルが見つかりません: %s", path), cause)
}

// NewIoExtInvalid は拡張子不正エラーを生成する。
func NewIoExtInvalid(path string, cause error) error {
	return merr.NewCommonError(IO_EXT_INVALID_ERROR_ID, fmt.Sprintf("拡張子が不正です: %s", path), cause)
}

// NewIoParseFailed は解析失敗エラーを生成する。
func NewIoParseFailed(format string, cause error, params ...any) error {
	return merr.NewCommonError(IO_PARSE_FAILED_ERROR_ID, fmt.Sprintf(format, params...), cause)
}

// NewIoFormatNotSupported は形式未対応エラーを生成する。
func NewIoFormatNotSupported(format string, cause error, params ...any) error {
	return merr.NewCommonError(IO_FORMAT_NOT_SUPPORTED_ERROR_ID, fmt.Sprintf(format, params...), cause)
}

// NewIoSaveFailed は保存失敗エラーを生成する。
func NewIoSaveFailed(format string, cause error, params ...any) error {
	return merr.NewCommonError(IO_SAVE_FAILED_ERROR_ID, fmt.Sprintf(format, params...), cause)
}
