// 指示: miu200521358
package model

import (
	"fmt"

	"github.com/miu200521358/mu_armature_cleanup/pkg/shared/merr"
)

const (
	// ErrIDAvatarMissing はアバター未指定エラーID。
	ErrIDAvatarMissing = "15101"
	// ErrIDDescriptorMissing はアバター記述子未検出エラーID。
	ErrIDDescriptorMissing = "15102"
	// ErrIDRootNotFound はスケルトンルート未検出エラーID。
	ErrIDRootNotFound = "15103"
	// ErrIDRootOutsideAvatar はスケルトンルートがアバター外にあるエラーID。
	ErrIDRootOutsideAvatar = "15104"
	// ErrIDDanglingReference は破棄対象への参照残存エラーID。
	ErrIDDanglingReference = "15201"
	// ErrIDAlreadyRunning は多重実行エラーID。
	ErrIDAlreadyRunning = "15202"
	// ErrIDCanceled は中断エラーID。
	ErrIDCanceled = "15203"
	// ErrIDChildNotReattached は重複ノード配下への子残存エラーID。
	ErrIDChildNotReattached = "15204"
)

// NewAvatarMissing はアバター未指定エラーを生成する。
func NewAvatarMissing() error {
	return merr.NewCommonError(ErrIDAvatarMissing, "アバターが指定されていません", nil)
}

// NewDescriptorMissing はアバター記述子未検出エラーを生成する。
func NewDescriptorMissing(avatarPath string) error {
	return merr.NewCommonError(ErrIDDescriptorMissing,
		fmt.Sprintf("アバター記述子が見つかりません: %s", avatarPath), nil)
}

// NewRootNotFound はスケルトンルート未検出エラーを生成する。
func NewRootNotFound(rootName string) error {
	return merr.NewCommonError(ErrIDRootNotFound,
		fmt.Sprintf("スケルトンルートが見つかりません: %s", rootName), nil)
}

// NewRootOutsideAvatar はスケルトンルートがアバター外にあるエラーを生成する。
func NewRootOutsideAvatar(rootPath string, avatarPath string) error {
	return merr.NewCommonError(ErrIDRootOutsideAvatar,
		fmt.Sprintf("スケルトンルートがアバター配下にありません: root=%s avatar=%s", rootPath, avatarPath), nil)
}

// NewDanglingReference は破棄対象への参照残存エラーを生成する。
func NewDanglingReference(holderPath string, field string, targetPath string) error {
	return merr.NewCommonError(ErrIDDanglingReference,
		fmt.Sprintf("破棄対象への参照が残っています: holder=%s field=%s target=%s", holderPath, field, targetPath), nil)
}

// NewAlreadyRunning は多重実行エラーを生成する。
func NewAlreadyRunning() error {
	return merr.NewCommonError(ErrIDAlreadyRunning, "アーマチュア整理は実行中です", nil)
}

// NewCanceled は中断エラーを生成する。
func NewCanceled(phase string, cause error) error {
	return merr.NewCommonError(ErrIDCanceled, fmt.Sprintf("アーマチュア整理を中断しました: phase=%s", phase), cause)
}

// NewChildNotReattached は重複ノード配下に付け替えられなかった子が残っているエラーを生成する。
func NewChildNotReattached(childPath string, duplicatePath string) error {
	return merr.NewCommonError(ErrIDChildNotReattached,
		fmt.Sprintf("重複ボーンの下に子ボーンが残っています: child=%s duplicate=%s", childPath, duplicatePath), nil)
}
