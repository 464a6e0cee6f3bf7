// 指示: miu200521358
package minteractor

import "github.com/miu200521358/mu_armature_cleanup/pkg/shared/logging"

// logMergeInfo はアーマチュア整理のINFOログを出力する。
func logMergeInfo(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Info(format, params...)
}

// logMergeDebug はアーマチュア整理のDEBUGログを出力する。
func logMergeDebug(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Debug(format, params...)
}

// logMergeWarn はアーマチュア整理のWARNログを出力する。
func logMergeWarn(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Warn(format, params...)
}

// logMergeError はアーマチュア整理のERRORログを出力する。
func logMergeError(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Error(format, params...)
}
