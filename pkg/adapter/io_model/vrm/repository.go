// 指示: miu200521358
// Package vrm はVRM/GLBモデルをシーングラフとして読み書きする。
package vrm

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"

	"github.com/miu200521358/mu_armature_cleanup/pkg/adapter/io_common"
	"github.com/miu200521358/mu_armature_cleanup/pkg/domain/model"
	"github.com/miu200521358/mu_armature_cleanup/pkg/shared/logging"
	"github.com/miu200521358/mu_armature_cleanup/pkg/usecase/port/moutput"
	"github.com/viant/afs"
)

const (
	// FORMAT_VRM はVRM/GLB形式名。
	FORMAT_VRM        = "vrm"
	vrmFileMode       = 0o644
	defaultAvatarName = "Avatar"
)

// LoadProgressEventType はVRM読込進捗イベント種別を表す。
type LoadProgressEventType string

const (
	// LoadProgressEventTypeFileReadComplete はファイル読込完了イベントを表す。
	LoadProgressEventTypeFileReadComplete LoadProgressEventType = "file_read_complete"
	// LoadProgressEventTypeJsonParsed はJSON解析完了イベントを表す。
	LoadProgressEventTypeJsonParsed LoadProgressEventType = "json_parsed"
	// LoadProgressEventTypeCompleted はVRM読込完了イベントを表す。
	LoadProgressEventTypeCompleted LoadProgressEventType = "completed"
)

// LoadProgressEvent はVRM読込進捗イベントを表す。
type LoadProgressEvent struct {
	Type          LoadProgressEventType
	FileSizeBytes int
	NodeCount     int
}

// VrmRepository はVRM/GLBの読み書き契約を表す。
type VrmRepository struct {
	fs                   afs.Service
	loadProgressReporter func(LoadProgressEvent)
}

// NewVrmRepository はVrmRepositoryを生成する。
func NewVrmRepository() *VrmRepository {
	return NewVrmRepositoryWithService(nil)
}

// NewVrmRepositoryWithService はファイルサービスを指定してVrmRepositoryを生成する。
func NewVrmRepositoryWithService(fs afs.Service) *VrmRepository {
	if fs == nil {
		fs = afs.New()
	}
	return &VrmRepository{fs: fs}
}

// SetLoadProgressReporter はVRM読込進捗受信コールバックを設定する。
func (r *VrmRepository) SetLoadProgressReporter(reporter func(LoadProgressEvent)) {
	if r == nil {
		return
	}
	r.loadProgressReporter = reporter
}

// CanLoad は拡張子に応じて読み込み可否を判定する。
func (r *VrmRepository) CanLoad(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".vrm" || ext == ".glb"
}

// InferName はパスから表示名を推定する。
func (r *VrmRepository) InferName(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	if ext == "" {
		return base
	}
	return strings.TrimSuffix(base, ext)
}

// Load はVRM/GLBを読み込み、アバターノード配下のシーングラフへ変換する。
func (r *VrmRepository) Load(ctx context.Context, path string) (*model.SceneModel, error) {
	if !r.CanLoad(path) {
		return nil, io_common.NewIoExtInvalid(path, nil)
	}
	loadTargetName := filepath.Base(path)
	logVrmInfo("VRM読込開始: file=%s", loadTargetName)

	exists, err := r.fs.Exists(ctx, path)
	if err != nil {
		return nil, io_common.NewIoParseFailed("VRMファイルの確認に失敗しました: %s", err, path)
	}
	if !exists {
		return nil, io_common.NewIoFileNotFound(path, nil)
	}
	b, err := r.fs.DownloadWithURL(ctx, path)
	if err != nil {
		return nil, io_common.NewIoParseFailed("VRMファイルの読み取りに失敗しました", err)
	}
	r.reportLoadProgress(LoadProgressEvent{Type: LoadProgressEventTypeFileReadComplete, FileSizeBytes: len(b)})
	logVrmStep("VRM読込ステップ: ファイル読み取り完了 bytes=%d", len(b))

	jsonChunk, binChunk, err := parseGLBChunks(b)
	if err != nil {
		return nil, err
	}
	doc, err := decodeDocument(jsonChunk)
	if err != nil {
		return nil, err
	}
	nodes, _ := asSlice(doc["nodes"])
	r.reportLoadProgress(LoadProgressEvent{
		Type:          LoadProgressEventTypeJsonParsed,
		FileSizeBytes: len(b),
		NodeCount:     len(nodes),
	})
	logVrmStep("VRM読込ステップ: JSON解析完了 jsonBytes=%d binBytes=%d nodes=%d", len(jsonChunk), len(binChunk), len(nodes))

	avatarName := r.InferName(path)
	if strings.TrimSpace(avatarName) == "" {
		avatarName = defaultAvatarName
	}
	graph, source, err := buildSceneGraph(doc, avatarName)
	if err != nil {
		return nil, err
	}
	source.bin = binChunk

	modelData := model.NewSceneModel(path, FORMAT_VRM, graph)
	modelData.Source = source
	r.reportLoadProgress(LoadProgressEvent{
		Type:          LoadProgressEventTypeCompleted,
		FileSizeBytes: len(b),
		NodeCount:     len(nodes),
	})
	logVrmInfo("VRM読込完了: file=%s nodes=%d", loadTargetName, len(nodes))
	return modelData, nil
}

// Save はシーングラフの現在状態を読込元VRMへ反映して保存する。
func (r *VrmRepository) Save(ctx context.Context, path string, modelData *model.SceneModel, opts moutput.SaveOptions) error {
	if !r.CanLoad(path) {
		return io_common.NewIoExtInvalid(path, nil)
	}
	if modelData == nil || modelData.Graph == nil {
		return io_common.NewIoSaveFailed("保存対象モデルが未設定です", nil)
	}
	source, ok := modelData.Source.(*vrmSource)
	if !ok || source == nil {
		return io_common.NewIoFormatNotSupported("VRMとして読み込んだモデルのみVRM保存できます: format=%s", nil, modelData.Format)
	}
	if !opts.Overwrite {
		exists, err := r.fs.Exists(ctx, path)
		if err != nil {
			return io_common.NewIoSaveFailed("保存先の確認に失敗しました: %s", err, path)
		}
		if exists {
			return io_common.NewIoSaveFailed("保存先が既に存在します: %s", nil, path)
		}
	}

	doc, err := writeDocument(modelData.Graph, source)
	if err != nil {
		return err
	}
	b, err := encodeGLB(doc, source.bin)
	if err != nil {
		return err
	}
	if err := r.fs.Upload(ctx, path, vrmFileMode, bytes.NewReader(b)); err != nil {
		return io_common.NewIoSaveFailed("VRMファイルの書き込みに失敗しました: %s", err, path)
	}
	logVrmInfo("VRM保存完了: file=%s bytes=%d", filepath.Base(path), len(b))
	return nil
}

// reportLoadProgress は読込進捗イベントを通知する。
func (r *VrmRepository) reportLoadProgress(event LoadProgressEvent) {
	if r == nil || r.loadProgressReporter == nil {
		return
	}
	r.loadProgressReporter(event)
}

// logVrmInfo はVRM入出力のINFOログを出力する。
func logVrmInfo(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Info(format, params...)
}

// logVrmStep はVRM入出力の進捗デバッグログを出力する。
func logVrmStep(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Debug(format, params...)
}

// logVrmWarn はVRM入出力の警告ログを出力する。
func logVrmWarn(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Warn(format, params...)
}
