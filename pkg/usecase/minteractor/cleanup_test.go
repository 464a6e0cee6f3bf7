// 指示: miu200521358
package minteractor

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/miu200521358/mu_armature_cleanup/pkg/domain/model"
	"github.com/miu200521358/mu_armature_cleanup/pkg/domain/scene"
	"github.com/miu200521358/mu_armature_cleanup/pkg/infra/history"
	"github.com/miu200521358/mu_armature_cleanup/pkg/usecase/port/moutput"
)

// memoryRepository はメモリ上でモデルを受け渡すテスト用リポジトリを表す。
type memoryRepository struct {
	models  map[string]*model.SceneModel
	saved   map[string]*model.SceneModel
	loadErr error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{models: map[string]*model.SceneModel{}, saved: map[string]*model.SceneModel{}}
}

func (r *memoryRepository) CanLoad(path string) bool {
	_, ok := r.models[path]
	return ok
}

func (r *memoryRepository) InferName(path string) string {
	return filepath.Base(path)
}

func (r *memoryRepository) Load(_ context.Context, path string) (*model.SceneModel, error) {
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	modelData, ok := r.models[path]
	if !ok {
		return nil, errors.New("not found")
	}
	return modelData, nil
}

func (r *memoryRepository) Save(_ context.Context, path string, modelData *model.SceneModel, _ moutput.SaveOptions) error {
	r.saved[path] = modelData
	return nil
}

func newCleanupUsecaseForTest(repository *memoryRepository) *ArmatureCleanupUsecase {
	return NewArmatureCleanupUsecase(ArmatureCleanupUsecaseDeps{
		ModelReader: repository,
		ModelWriter: repository,
		NewTransaction: func(graph *scene.Graph) moutput.ITransaction {
			return history.NewJournal(graph)
		},
	})
}

func withFixedNow(t *testing.T, now time.Time) {
	t.Helper()
	original := nowFunc
	nowFunc = func() time.Time { return now }
	t.Cleanup(func() { nowFunc = original })
}

func TestCleanupLoadsMergesAndSaves(t *testing.T) {
	withFixedNow(t, time.Date(2026, 10, 18, 9, 30, 0, 0, time.Local))
	f := newMergeFixture(t)
	inputPath := filepath.Join("work", "avatar.vrm")
	repository := newMemoryRepository()
	repository.models[inputPath] = model.NewSceneModel(inputPath, "vrm", f.graph)
	usecase := newCleanupUsecaseForTest(repository)

	result, err := usecase.Cleanup(context.Background(), CleanupRequest{
		InputPath: inputPath,
		Options:   DefaultCleanupOptions(),
	})
	if err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}

	wantPath := filepath.Join("work", "avatar_cleanup_20261018093000.vrm")
	if result.OutputPath != wantPath || !result.Saved {
		t.Fatalf("output mismatch: got=%s saved=%v want=%s", result.OutputPath, result.Saved, wantPath)
	}
	if _, ok := repository.saved[wantPath]; !ok {
		t.Fatalf("model should be saved to %s", wantPath)
	}
	if result.Model.Path() != wantPath {
		t.Fatalf("model path mismatch: got=%s", result.Model.Path())
	}
	if len(result.Merge.Pairs) != 1 || f.graph.Contains(f.innerHips) {
		t.Fatalf("duplicate should be merged: pairs=%d", len(result.Merge.Pairs))
	}
	if f.graph.Parent(f.spine) != f.hips {
		t.Fatalf("spine parent mismatch: got=%s", f.graph.Path(f.graph.Parent(f.spine)))
	}

	journal, ok := result.Transaction.(*history.Journal)
	if !ok {
		t.Fatalf("transaction should be a journal: %T", result.Transaction)
	}
	if _, err := journal.Undo(); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if !f.graph.Contains(f.innerHips) || f.graph.Parent(f.spine) != f.innerHips {
		t.Fatalf("undo should restore duplicate hierarchy")
	}
}

func TestCleanupDryRunDoesNotSaveOrMutate(t *testing.T) {
	f := newMergeFixture(t)
	repository := newMemoryRepository()
	usecase := newCleanupUsecaseForTest(repository)
	before, _ := f.graph.Hash()

	result, err := usecase.PrepareCleanup(context.Background(), CleanupRequest{
		ModelData: model.NewSceneModel("avatar.yaml", "yaml", f.graph),
		Options:   DefaultCleanupOptions(),
	})
	if err != nil {
		t.Fatalf("PrepareCleanup failed: %v", err)
	}
	if !result.Merge.DryRun || result.Saved || len(repository.saved) != 0 {
		t.Fatalf("dry run should not save: dryRun=%v saved=%v", result.Merge.DryRun, result.Saved)
	}
	if len(result.Merge.Pairs) != 1 || result.Merge.Pairs[0].Duplicate != "/Avatar/Armature/Hips/Hips" {
		t.Fatalf("pairs mismatch: %+v", result.Merge.Pairs)
	}
	after, _ := f.graph.Hash()
	if before != after {
		t.Fatalf("dry run should not mutate the graph")
	}
}

func TestCleanupRejectsInvalidRequests(t *testing.T) {
	f := newMergeFixture(t)
	repository := newMemoryRepository()
	repository.models["avatar.vrm"] = model.NewSceneModel("avatar.vrm", "vrm", f.graph)
	usecase := newCleanupUsecaseForTest(repository)

	tests := []struct {
		name    string
		request CleanupRequest
	}{
		{name: "input missing", request: CleanupRequest{Options: DefaultCleanupOptions()}},
		{name: "output format differs", request: CleanupRequest{InputPath: "avatar.vrm", OutputPath: "avatar.yaml", Options: DefaultCleanupOptions()}},
		{name: "avatar path missing", request: CleanupRequest{InputPath: "avatar.vrm", OutputPath: "out.vrm", AvatarPath: "/Nobody", Options: DefaultCleanupOptions()}},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if _, err := usecase.Cleanup(context.Background(), tc.request); err == nil {
				t.Fatalf("expected error")
			}
			if len(repository.saved) != 0 {
				t.Fatalf("nothing should be saved")
			}
			if !f.graph.Contains(f.innerHips) {
				t.Fatalf("graph should not be mutated")
			}
		})
	}
}

func TestCleanupPropagatesLoadError(t *testing.T) {
	repository := newMemoryRepository()
	repository.loadErr = errors.New("broken file")
	usecase := newCleanupUsecaseForTest(repository)

	_, err := usecase.Cleanup(context.Background(), CleanupRequest{InputPath: "avatar.vrm", OutputPath: "out.vrm", Options: DefaultCleanupOptions()})
	if !errors.Is(err, repository.loadErr) {
		t.Fatalf("load error mismatch: got=%v", err)
	}
}
