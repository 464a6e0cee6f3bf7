// 指示: miu200521358
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/miu200521358/mu_armature_cleanup/pkg/adapter/io_model"
	"github.com/miu200521358/mu_armature_cleanup/pkg/adapter/mpresenter/messages"
	"github.com/miu200521358/mu_armature_cleanup/pkg/domain/scene"
	"github.com/miu200521358/mu_armature_cleanup/pkg/infra/config"
	"github.com/miu200521358/mu_armature_cleanup/pkg/infra/history"
	"github.com/miu200521358/mu_armature_cleanup/pkg/shared/logging"
	"github.com/miu200521358/mu_armature_cleanup/pkg/usecase/minteractor"
	"github.com/miu200521358/mu_armature_cleanup/pkg/usecase/port/moutput"
	"golang.org/x/text/message"
)

const appName = "mu_armature_cleanup"

// options はCLI引数を保持する。
type options struct {
	inputPath  string
	outputPath string
	avatarPath string
	rootPath   string
	configPath string
	dryRun     bool
	logLevel   string
	language   string
}

// main は重複ボーン整理を実行する。
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// run はCLI処理全体を実行する。
func run(ctx context.Context, args []string, out io.Writer, errOut io.Writer) error {
	opts, err := parseOptions(args, errOut)
	if err != nil {
		return err
	}

	cfg, err := config.Load(ctx, nil, opts.configPath)
	if err != nil {
		return err
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if opts.language != "" {
		cfg.Language = opts.language
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.NewLogger(errOut)
	logger.SetLevel(cfg.Level())
	logging.SetDefaultLogger(logger)

	printer, err := messages.NewPrinter(cfg.Language)
	if err != nil {
		return err
	}

	repository := io_model.NewModelRepository(nil)
	if !repository.CanLoad(opts.inputPath) {
		return fmt.Errorf("%s: %s", printer.Sprintf(messages.MessageLoadFailed), opts.inputPath)
	}
	usecase := minteractor.NewArmatureCleanupUsecase(minteractor.ArmatureCleanupUsecaseDeps{
		ModelReader: repository,
		ModelWriter: repository,
		NewTransaction: func(graph *scene.Graph) moutput.ITransaction {
			return history.NewJournal(graph)
		},
	})

	cleanupOptions := cfg.CleanupOptions()
	cleanupOptions.DryRun = opts.dryRun
	if !opts.dryRun {
		if err := ensureOutputDir(opts.outputPath); err != nil {
			return err
		}
	}
	result, err := usecase.Cleanup(ctx, minteractor.CleanupRequest{
		InputPath:        opts.inputPath,
		OutputPath:       opts.outputPath,
		AvatarPath:       opts.avatarPath,
		RootPath:         opts.rootPath,
		Options:          cleanupOptions,
		SaveOptions:      minteractor.SaveOptions{Overwrite: cfg.Overwrite},
		ProgressReporter: &cliProgressReporter{printer: printer},
	})
	if err != nil {
		return fmt.Errorf("%s: %w", printer.Sprintf(messages.MessageCleanupFailed), err)
	}

	fmt.Fprintf(out, "[%s] %s\n", appName, printer.Sprintf(messages.LogLoadSuccess, opts.inputPath))
	printResult(out, printer, result)
	return nil
}

// ensureOutputDir は出力先ディレクトリを作成する。
func ensureOutputDir(outputPath string) error {
	if strings.TrimSpace(outputPath) == "" {
		return nil
	}
	dir := filepath.Dir(outputPath)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("出力先ディレクトリの作成に失敗しました: %w", err)
	}
	return nil
}

// printResult は整理結果を出力する。
func printResult(out io.Writer, printer *message.Printer, result *minteractor.CleanupResult) {
	merge := result.Merge
	if len(merge.Pairs) == 0 {
		fmt.Fprintf(out, "[%s] %s\n", appName, printer.Sprintf(messages.MessageNoDuplicates))
	}
	for _, pair := range merge.Pairs {
		fmt.Fprintf(out, "[%s] %s\n", appName, printer.Sprintf(messages.LogPairDetected, pair.Duplicate, pair.Survivor))
	}
	for _, warning := range merge.Warnings {
		fmt.Fprintf(out, "[%s] %s\n", appName, printer.Sprintf(messages.LogWarning, warning.ID, warning.Path, warning.Message))
	}
	fmt.Fprintf(out, "[%s] %s\n", appName, printer.Sprintf(
		messages.LogCleanupSummary,
		len(merge.Pairs),
		merge.Reattach.Reparented,
		merge.Merge.Copied,
		merge.Rewrite.Redirected,
		merge.Remove.Destroyed,
		len(merge.Warnings),
	))
	if result.Saved {
		fmt.Fprintf(out, "[%s] %s\n", appName, printer.Sprintf(messages.LogCleanupSuccess, result.OutputPath))
	} else if merge.DryRun {
		fmt.Fprintf(out, "[%s] %s\n", appName, printer.Sprintf(messages.MessageDryRunNotSaved))
	}
}

// cliProgressReporter は進捗をデバッグログへ流す。
type cliProgressReporter struct {
	printer *message.Printer
}

func (r *cliProgressReporter) ReportMergeProgress(event minteractor.MergeProgressEvent) {
	logging.DefaultLogger().Debug("%s", r.printer.Sprintf(messages.LogProgress, string(event.Type), event.Count))
}

// parseOptions はCLI引数を解析する。
func parseOptions(args []string, errOut io.Writer) (options, error) {
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.SetOutput(errOut)

	opts := options{}
	fs.StringVar(&opts.inputPath, "in", "", "入力モデルパス (.vrm/.glb/.yaml/.yml)")
	fs.StringVar(&opts.outputPath, "out", "", "出力モデルパス")
	fs.StringVar(&opts.avatarPath, "avatar", "", "アバターノードのパス")
	fs.StringVar(&opts.rootPath, "root", "", "記述子ノードからのスケルトンルートパス")
	fs.StringVar(&opts.configPath, "config", "", "YAML設定ファイル")
	fs.BoolVar(&opts.dryRun, "dry-run", false, "検出のみ行い保存しない")
	fs.StringVar(&opts.logLevel, "log-level", "", "ログレベル (debug/info/warn/error)")
	fs.StringVar(&opts.language, "lang", "", "表示言語 (ja/en)")
	fs.Usage = func() {
		printer, err := messages.NewPrinter(opts.language)
		if err != nil {
			return
		}
		fmt.Fprintf(errOut, "%s:\n%s\n", printer.Sprintf(messages.HelpUsageTitle), printer.Sprintf(messages.HelpUsage))
	}
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	if opts.inputPath == "" && fs.NArg() > 0 {
		opts.inputPath = fs.Arg(0)
	}
	if opts.outputPath == "" && fs.NArg() > 1 {
		opts.outputPath = fs.Arg(1)
	}
	if strings.TrimSpace(opts.inputPath) == "" {
		printer, err := messages.NewPrinter(opts.language)
		if err != nil {
			return options{}, err
		}
		return options{}, fmt.Errorf("%s (-in)", printer.Sprintf(messages.MessageInputRequired))
	}
	return opts, nil
}
