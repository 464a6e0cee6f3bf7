// 指示: miu200521358
package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/miu200521358/mu_armature_cleanup/pkg/adapter/io_model"
	"github.com/miu200521358/mu_armature_cleanup/pkg/domain/scene"
	"github.com/miu200521358/mu_armature_cleanup/pkg/infra/history"
	"github.com/miu200521358/mu_armature_cleanup/pkg/usecase/minteractor"
	"github.com/miu200521358/mu_armature_cleanup/pkg/usecase/port/moutput"
)

const (
	batchOutputDirMode = 0o755
)

// batchConfig はバッチ整理の実行設定を表す。
type batchConfig struct {
	OutputRoot string
	ListPath   string
	DryRun     bool
	FailFast   bool
	Inputs     []string
}

// cleanupEntry は1モデル分の整理入力情報を表す。
type cleanupEntry struct {
	Index      int
	SourcePath string
	ModelName  string
	CaseDir    string
	OutputPath string
}

// cleanupResult は1モデル分の整理結果を表す。
type cleanupResult struct {
	Entry        cleanupEntry
	Status       string
	Duration     time.Duration
	Err          error
	PairCount    int
	WarningCount int
	StageInfo    string
}

// mergeProgressCollector は整理処理の進捗イベントを収集する。
type mergeProgressCollector struct {
	eventCounts map[minteractor.MergeProgressEventType]int
	pairMax     int
	countTotal  int
}

// main は重複ボーン整理を複数モデルへ一括適用する。
func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run は実行設定を解決して一括整理を実行し、終了コードを返す。
func run(ctx context.Context, args []string, out io.Writer, errOut io.Writer) int {
	config, err := parseBatchConfig(args, errOut)
	if err != nil {
		fmt.Fprintf(errOut, "設定解析に失敗しました: %v\n", err)
		return 2
	}
	inputs := append([]string(nil), config.Inputs...)
	if config.ListPath != "" {
		listed, err := readInputList(config.ListPath)
		if err != nil {
			fmt.Fprintf(errOut, "入力一覧の読み込みに失敗しました: %v\n", err)
			return 2
		}
		inputs = append(inputs, listed...)
	}
	entries := buildCleanupEntries(config.OutputRoot, inputs)
	if len(entries) == 0 {
		fmt.Fprintln(errOut, "整理対象モデルがありません")
		return 2
	}

	results := executeBatchCleanup(ctx, out, config, entries)
	printBatchSummary(out, results)

	for _, result := range results {
		if result.Status == "failed" {
			return 1
		}
	}
	return 0
}

// parseBatchConfig はコマンドライン引数から実行設定を構築する。
func parseBatchConfig(args []string, errOut io.Writer) (batchConfig, error) {
	defaultOutputRoot, err := resolveDefaultOutputRoot()
	if err != nil {
		return batchConfig{}, err
	}
	fs := flag.NewFlagSet("integration_test", flag.ContinueOnError)
	fs.SetOutput(errOut)
	outputRoot := fs.String("output-root", defaultOutputRoot, "整理結果の出力ルートディレクトリ")
	listPath := fs.String("list", "", "入力モデルパスを1行ずつ記載したファイル")
	dryRun := fs.Bool("dry-run", false, "重複検出のみ行い保存しない")
	failFast := fs.Bool("fail-fast", false, "失敗時に即時終了する")
	if err := fs.Parse(args); err != nil {
		return batchConfig{}, err
	}

	trimmedOutputRoot := strings.TrimSpace(*outputRoot)
	if trimmedOutputRoot == "" {
		return batchConfig{}, errors.New("output-root が空です")
	}
	return batchConfig{
		OutputRoot: filepath.Clean(trimmedOutputRoot),
		ListPath:   strings.TrimSpace(*listPath),
		DryRun:     *dryRun,
		FailFast:   *failFast,
		Inputs:     fs.Args(),
	}, nil
}

// readInputList は空行と # 始まりの行を除いた入力パス一覧を読み込む。
func readInputList(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		paths = append(paths, line)
	}
	return paths, scanner.Err()
}

// resolveDefaultOutputRoot はスクリプト配置ディレクトリ基準の既定出力先を返す。
func resolveDefaultOutputRoot() (string, error) {
	_, currentFilePath, _, ok := runtime.Caller(0)
	if !ok {
		return "", errors.New("実行ファイル位置を取得できません")
	}
	currentDir := filepath.Dir(currentFilePath)
	return filepath.Join(currentDir, "output"), nil
}

// buildCleanupEntries は入力パス一覧から整理対象エントリを生成する。
func buildCleanupEntries(outputRoot string, inputPaths []string) []cleanupEntry {
	entries := make([]cleanupEntry, 0, len(inputPaths))
	for _, rawPath := range inputPaths {
		resolvedInputPath := normalizeInputPath(rawPath)
		if resolvedInputPath == "" {
			continue
		}
		index := len(entries) + 1
		modelName := resolveModelName(rawPath)
		safeModelName := sanitizePathComponent(modelName)
		caseDir := filepath.Join(outputRoot, fmt.Sprintf("%03d_%s", index, safeModelName))
		ext := strings.ToLower(filepath.Ext(resolvedInputPath))
		entries = append(entries, cleanupEntry{
			Index:      index,
			SourcePath: resolvedInputPath,
			ModelName:  modelName,
			CaseDir:    caseDir,
			OutputPath: filepath.Join(caseDir, safeModelName+ext),
		})
	}
	return entries
}

// executeBatchCleanup は全モデルの整理処理を順次実行する。
func executeBatchCleanup(ctx context.Context, out io.Writer, config batchConfig, entries []cleanupEntry) []cleanupResult {
	results := make([]cleanupResult, 0, len(entries))
	repository := io_model.NewModelRepository(nil)
	usecase := minteractor.NewArmatureCleanupUsecase(minteractor.ArmatureCleanupUsecaseDeps{
		ModelReader: repository,
		ModelWriter: repository,
		NewTransaction: func(graph *scene.Graph) moutput.ITransaction {
			return history.NewJournal(graph)
		},
	})

	total := len(entries)
	for _, entry := range entries {
		fmt.Fprintf(out, "[%d/%d] 整理開始: model=%s\n", entry.Index, total, entry.ModelName)
		result := cleanupModelEntry(ctx, usecase, config, entry)
		results = append(results, result)
		switch result.Status {
		case "succeeded":
			fmt.Fprintf(out, "[%d/%d] 整理成功: model=%s output=%s pairs=%d warnings=%d elapsed=%s\n",
				entry.Index, total, entry.ModelName, entry.OutputPath, result.PairCount, result.WarningCount, result.Duration.Round(time.Millisecond))
			if strings.TrimSpace(result.StageInfo) != "" {
				fmt.Fprintf(out, "[%d/%d] 整理進捗: %s\n", entry.Index, total, result.StageInfo)
			}
		case "dry_run":
			fmt.Fprintf(out, "[%d/%d] DRY-RUN: model=%s input=%s pairs=%d\n", entry.Index, total, entry.ModelName, entry.SourcePath, result.PairCount)
		case "skipped_missing":
			fmt.Fprintf(out, "[%d/%d] 入力不足でスキップ: model=%s input=%s reason=%v\n", entry.Index, total, entry.ModelName, entry.SourcePath, result.Err)
		default:
			fmt.Fprintf(out, "[%d/%d] 整理失敗: model=%s reason=%v\n", entry.Index, total, entry.ModelName, result.Err)
			if config.FailFast {
				return results
			}
		}
	}
	return results
}

// cleanupModelEntry は1モデル分の整理を実行する。
func cleanupModelEntry(
	ctx context.Context,
	usecase *minteractor.ArmatureCleanupUsecase,
	config batchConfig,
	entry cleanupEntry,
) cleanupResult {
	result := cleanupResult{
		Entry:  entry,
		Status: "failed",
	}
	if _, err := os.Stat(entry.SourcePath); err != nil {
		result.Status = "skipped_missing"
		result.Err = err
		return result
	}

	startedAt := time.Now()
	progressCollector := newMergeProgressCollector()
	request := minteractor.CleanupRequest{
		InputPath:        entry.SourcePath,
		OutputPath:       entry.OutputPath,
		Options:          minteractor.DefaultCleanupOptions(),
		SaveOptions:      minteractor.SaveOptions{Overwrite: true},
		ProgressReporter: progressCollector,
	}
	if config.DryRun {
		prepared, err := usecase.PrepareCleanup(ctx, request)
		if err != nil {
			result.Err = fmt.Errorf("PrepareCleanupに失敗しました: %w", err)
			return result
		}
		result.Status = "dry_run"
		result.PairCount = len(prepared.Merge.Pairs)
		result.WarningCount = len(prepared.Merge.Warnings)
		return result
	}
	if err := os.MkdirAll(entry.CaseDir, batchOutputDirMode); err != nil {
		result.Err = fmt.Errorf("出力ディレクトリ作成に失敗しました: %w", err)
		return result
	}

	cleaned, err := usecase.Cleanup(ctx, request)
	if err != nil {
		result.Err = fmt.Errorf("Cleanupに失敗しました: %w", err)
		return result
	}
	if cleaned == nil || cleaned.Merge == nil {
		result.Err = errors.New("Cleanup結果が空です")
		return result
	}

	result.Status = "succeeded"
	result.Duration = time.Since(startedAt)
	result.PairCount = len(cleaned.Merge.Pairs)
	result.WarningCount = len(cleaned.Merge.Warnings)
	result.StageInfo = progressCollector.Summary()
	return result
}

// printBatchSummary は整理結果の集計を出力する。
func printBatchSummary(out io.Writer, results []cleanupResult) {
	succeeded := 0
	failed := 0
	skipped := 0
	dryRun := 0
	pairs := 0
	for _, result := range results {
		pairs += result.PairCount
		switch result.Status {
		case "succeeded":
			succeeded++
		case "dry_run":
			dryRun++
		case "skipped_missing":
			skipped++
		default:
			failed++
		}
	}
	fmt.Fprintf(
		out,
		"バッチ整理サマリ: total=%d succeeded=%d failed=%d skipped_missing=%d dry_run=%d pairs=%d\n",
		len(results),
		succeeded,
		failed,
		skipped,
		dryRun,
		pairs,
	)
}

// resolveModelName は入力パスから拡張子を除いたモデル名を返す。
func resolveModelName(path string) string {
	base := strings.TrimSpace(filepath.Base(path))
	ext := filepath.Ext(base)
	name := strings.TrimSpace(strings.TrimSuffix(base, ext))
	if name == "" {
		return "model"
	}
	return name
}

// normalizeInputPath は入力パスを実行環境向けに正規化する。
func normalizeInputPath(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return ""
	}
	return filepath.Clean(convertWindowsPathToWsl(trimmed))
}

// convertWindowsPathToWsl は Linux 実行時に Windows パスを WSL パスへ変換する。
func convertWindowsPathToWsl(path string) string {
	trimmed := strings.TrimSpace(path)
	if runtime.GOOS != "linux" {
		return trimmed
	}
	if len(trimmed) < 2 || trimmed[1] != ':' {
		return trimmed
	}
	drive := strings.ToLower(trimmed[:1])
	rest := strings.ReplaceAll(trimmed[2:], "\\", "/")
	if rest == "" {
		return filepath.ToSlash(filepath.Join("/mnt", drive))
	}
	if !strings.HasPrefix(rest, "/") {
		rest = "/" + rest
	}
	return filepath.ToSlash(filepath.Join("/mnt", drive) + rest)
}

// sanitizePathComponent は出力ディレクトリ/ファイル名に使えない文字を置換する。
func sanitizePathComponent(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "model"
	}
	replaced := strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', ':', '"', '/', '\\', '|', '?', '*':
			return '_'
		default:
			if r < 0x20 {
				return '_'
			}
			return r
		}
	}, trimmed)
	replaced = strings.Trim(replaced, " .")
	if replaced == "" {
		return "model"
	}
	return replaced
}

// newMergeProgressCollector は整理進捗収集器を生成する。
func newMergeProgressCollector() *mergeProgressCollector {
	return &mergeProgressCollector{
		eventCounts: map[minteractor.MergeProgressEventType]int{},
	}
}

// ReportMergeProgress は整理処理の進捗イベントを収集する。
func (collector *mergeProgressCollector) ReportMergeProgress(event minteractor.MergeProgressEvent) {
	if collector == nil {
		return
	}
	if collector.eventCounts == nil {
		collector.eventCounts = map[minteractor.MergeProgressEventType]int{}
	}
	collector.eventCounts[event.Type]++
	if event.PairCount > collector.pairMax {
		collector.pairMax = event.PairCount
	}
	collector.countTotal += event.Count
}

// Summary は収集した進捗の要約文字列を返す。
func (collector *mergeProgressCollector) Summary() string {
	if collector == nil || len(collector.eventCounts) == 0 {
		return ""
	}
	types := make([]string, 0, len(collector.eventCounts))
	for stageType := range collector.eventCounts {
		types = append(types, string(stageType))
	}
	sort.Strings(types)
	return fmt.Sprintf(
		"events=%d pairs=%d counted=%d stages=%s",
		len(collector.eventCounts),
		collector.pairMax,
		collector.countTotal,
		strings.Join(types, ","),
	)
}
