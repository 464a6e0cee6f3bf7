// 指示: miu200521358
package minteractor

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

var nowFunc = time.Now

// BuildDefaultOutputPath は入力パスから既定の出力パスを生成する。
func BuildDefaultOutputPath(inputPath string) string {
	return buildDefaultOutputPathAt(inputPath, nowFunc())
}

// buildDefaultOutputPathAt は指定時刻で既定の出力パスを生成する。
// 入力と同じディレクトリに "<名前>_cleanup_<日時><拡張子>" で出力する。
func buildDefaultOutputPathAt(inputPath string, now time.Time) string {
	dir := filepath.Dir(inputPath)
	ext := filepath.Ext(inputPath)
	base := strings.TrimSpace(strings.TrimSuffix(filepath.Base(inputPath), ext))
	if base == "" {
		return ""
	}
	stamp := now.Format("20060102150405")
	return filepath.Join(dir, fmt.Sprintf("%s_cleanup_%s%s", base, stamp, ext))
}

// resolveOutputPath は保存先パスを解決し、入力と同じ拡張子であることを検証する。
func resolveOutputPath(inputPath string, outputPath string) (string, error) {
	resolved := strings.TrimSpace(outputPath)
	if resolved == "" {
		resolved = BuildDefaultOutputPath(inputPath)
	}
	if strings.TrimSpace(resolved) == "" {
		return "", fmt.Errorf("保存先パスが未指定です")
	}
	inputExt := strings.ToLower(filepath.Ext(inputPath))
	outputExt := strings.ToLower(filepath.Ext(resolved))
	if inputExt != "" && !sameFormatExt(inputExt, outputExt) {
		return "", fmt.Errorf("保存先拡張子が入力と異なります: input=%s output=%s", inputExt, outputExt)
	}
	return resolved, nil
}

// sameFormatExt は同じ形式の拡張子か判定する。
func sameFormatExt(a string, b string) bool {
	return formatGroup(a) == formatGroup(b)
}

// formatGroup は拡張子を形式ごとにまとめる。
func formatGroup(ext string) string {
	switch ext {
	case ".vrm", ".glb":
		return "glb"
	case ".yaml", ".yml":
		return "yaml"
	default:
		return ext
	}
}
