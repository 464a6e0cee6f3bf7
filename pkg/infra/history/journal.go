// 指示: miu200521358
// Package history はシーングラフ編集の取り消し履歴を提供する。
package history

import (
	"errors"
	"fmt"
	"sync"

	"github.com/miu200521358/mu_armature_cleanup/pkg/domain/scene"
	"github.com/miu200521358/mu_armature_cleanup/pkg/shared/logging"
)

var (
	// ErrGroupNotFound は指定グループが開いていないことを表す。
	ErrGroupNotFound = errors.New("取り消しグループが見つかりません")
	// ErrNothingToUndo は取り消せる履歴が無いことを表す。
	ErrNothingToUndo = errors.New("取り消せる履歴がありません")
	// ErrNothingToRedo はやり直せる履歴が無いことを表す。
	ErrNothingToRedo = errors.New("やり直せる履歴がありません")
)

// Record はグループ内で記録した変更対象を表す。
type Record struct {
	Node  scene.NodeID
	Label string
}

// entry は1グループ分の履歴を表す。
type entry struct {
	id      int
	name    string
	before  *scene.Graph
	after   *scene.Graph
	records []Record
}

// Journal はグラフのスナップショットによる取り消し履歴を表す。並行利用できる。
type Journal struct {
	mu     sync.Mutex
	graph  *scene.Graph
	nextID int
	open   []*entry
	undo   []*entry
	redo   []*entry
}

// NewJournal は graph を対象とする履歴を生成する。
func NewJournal(graph *scene.Graph) *Journal {
	return &Journal{graph: graph, nextID: 1}
}

// BeginGroup は名前付きグループを開始し、開始時点のスナップショットを取る。
func (j *Journal) BeginGroup(name string) (int, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	before, err := j.graph.Clone()
	if err != nil {
		return 0, fmt.Errorf("取り消し用スナップショットの取得に失敗しました: %w", err)
	}
	e := &entry{id: j.nextID, name: name, before: before, records: make([]Record, 0)}
	j.nextID++
	j.open = append(j.open, e)
	logging.DefaultLogger().Debug("取り消しグループ開始: id=%d name=%s", e.id, name)
	return e.id, nil
}

// RecordObject は現在開いている最新のグループへ変更対象を記録する。
func (j *Journal) RecordObject(id scene.NodeID, label string) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if len(j.open) == 0 {
		logging.DefaultLogger().Debug("開いている取り消しグループがありません: %s", label)
		return
	}
	current := j.open[len(j.open)-1]
	current.records = append(current.records, Record{Node: id, Label: label})
}

// CollapseGroup はグループを閉じ、1件の取り消し単位として履歴へ積む。
func (j *Journal) CollapseGroup(group int) {
	j.mu.Lock()
	defer j.mu.Unlock()

	e := j.takeOpen(group)
	if e == nil {
		logging.DefaultLogger().Warn("取り消しグループが見つかりません: id=%d", group)
		return
	}
	after, err := j.graph.Clone()
	if err != nil {
		logging.DefaultLogger().Warn("やり直し用スナップショットの取得に失敗しました: id=%d err=%v", group, err)
	}
	e.after = after
	j.undo = append(j.undo, e)
	j.redo = nil
	logging.DefaultLogger().Debug("取り消しグループ確定: id=%d name=%s records=%d", e.id, e.name, len(e.records))
}

// RevertGroup はグループ開始時点へグラフを戻し、グループを破棄する。
func (j *Journal) RevertGroup(group int) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	e := j.takeOpen(group)
	if e == nil {
		return fmt.Errorf("id=%d: %w", group, ErrGroupNotFound)
	}
	if err := j.graph.Restore(e.before); err != nil {
		return err
	}
	logging.DefaultLogger().Info("取り消しグループを巻き戻しました: id=%d name=%s records=%d", e.id, e.name, len(e.records))
	return nil
}

// Undo は直近の確定グループを取り消し、その名前を返す。
func (j *Journal) Undo() (string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if len(j.undo) == 0 {
		return "", ErrNothingToUndo
	}
	e := j.undo[len(j.undo)-1]
	if err := j.graph.Restore(e.before); err != nil {
		return "", err
	}
	j.undo = j.undo[:len(j.undo)-1]
	j.redo = append(j.redo, e)
	return e.name, nil
}

// Redo は直近に取り消したグループをやり直し、その名前を返す。
func (j *Journal) Redo() (string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if len(j.redo) == 0 {
		return "", ErrNothingToRedo
	}
	e := j.redo[len(j.redo)-1]
	if e.after == nil {
		return "", fmt.Errorf("やり直し用スナップショットがありません: %s", e.name)
	}
	if err := j.graph.Restore(e.after); err != nil {
		return "", err
	}
	j.redo = j.redo[:len(j.redo)-1]
	j.undo = append(j.undo, e)
	return e.name, nil
}

// CanUndo は取り消せる履歴があるか判定する。
func (j *Journal) CanUndo() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.undo) > 0
}

// CanRedo はやり直せる履歴があるか判定する。
func (j *Journal) CanRedo() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.redo) > 0
}

// Records は確定済みまたは開いているグループの記録一覧を返す。
func (j *Journal) Records(group int) []Record {
	j.mu.Lock()
	defer j.mu.Unlock()

	for _, stack := range [][]*entry{j.open, j.undo, j.redo} {
		for _, e := range stack {
			if e.id == group {
				return append([]Record(nil), e.records...)
			}
		}
	}
	return nil
}

// takeOpen は開いているグループを取り出す。
func (j *Journal) takeOpen(group int) *entry {
	for i, e := range j.open {
		if e.id == group {
			j.open = append(j.open[:i:i], j.open[i+1:]...)
			return e
		}
	}
	return nil
}
