// 指示: miu200521358
package minteractor

import (
	"github.com/miu200521358/mu_armature_cleanup/pkg/domain/scene"
	"github.com/miu200521358/mu_armature_cleanup/pkg/usecase/port/moutput"
)

// DuplicatePair は重複ノードと統合先 (検出時点の親) の組を表す。
type DuplicatePair struct {
	Duplicate scene.NodeID
	Target    scene.NodeID
	Name      string
}

// DuplicateMap は1回の整理で検出した重複の対応表を表す。検出順を保持する。
type DuplicateMap struct {
	pairs       []DuplicatePair
	byDuplicate map[scene.NodeID]int
}

// NewDuplicateMap は空の対応表を生成する。
func NewDuplicateMap() *DuplicateMap {
	return &DuplicateMap{
		pairs:       make([]DuplicatePair, 0),
		byDuplicate: make(map[scene.NodeID]int),
	}
}

// Add は組を追加する。同じ重複ノードが登録済みの場合は false。
func (m *DuplicateMap) Add(pair DuplicatePair) bool {
	if _, exists := m.byDuplicate[pair.Duplicate]; exists {
		return false
	}
	m.byDuplicate[pair.Duplicate] = len(m.pairs)
	m.pairs = append(m.pairs, pair)
	return true
}

// Len は組数を返す。
func (m *DuplicateMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.pairs)
}

// Pairs は検出順の組一覧の複製を返す。
func (m *DuplicateMap) Pairs() []DuplicatePair {
	if m == nil {
		return nil
	}
	return append([]DuplicatePair(nil), m.pairs...)
}

// IsDuplicate は重複ノードとして登録済みか判定する。
func (m *DuplicateMap) IsDuplicate(id scene.NodeID) bool {
	if m == nil {
		return false
	}
	_, ok := m.byDuplicate[id]
	return ok
}

// Lookup は重複ノードの組を返す。
func (m *DuplicateMap) Lookup(id scene.NodeID) (DuplicatePair, bool) {
	if m == nil {
		return DuplicatePair{}, false
	}
	index, ok := m.byDuplicate[id]
	if !ok {
		return DuplicatePair{}, false
	}
	return m.pairs[index], true
}

// Survivor は id の統合後に残るノードを返す。
// 重複の連鎖は、自身が重複ではない最初の統合先まで辿る。重複でない id はそのまま返す。
func (m *DuplicateMap) Survivor(id scene.NodeID) scene.NodeID {
	current := id
	for step := 0; step <= m.Len(); step++ {
		pair, ok := m.Lookup(current)
		if !ok {
			return current
		}
		current = pair.Target
	}
	return current
}

// DetectDuplicates はスケルトンルート配下を深さ優先で走査し、親と同名の子を重複として記録する。
// 重複ノードの配下も走査を続けるため、連鎖はそれぞれ1階層ずつの組として記録される。
func DetectDuplicates(graph moutput.ISceneGraph, index *NodeIndex) *DuplicateMap {
	dups := NewDuplicateMap()
	if index == nil || !graph.Contains(index.Root()) {
		return dups
	}
	detectDuplicatesFrom(graph, index.Root(), dups)
	logMergeInfo("重複ボーン検出: root=%s pairs=%d", graph.Path(index.Root()), dups.Len())
	return dups
}

// detectDuplicatesFrom は parent の直下を調べ、子へ再帰する。
func detectDuplicatesFrom(graph moutput.ISceneGraph, parent scene.NodeID, dups *DuplicateMap) {
	parentName := graph.Name(parent)
	for _, child := range graph.Children(parent) {
		if graph.Name(child) == parentName {
			dups.Add(DuplicatePair{Duplicate: child, Target: parent, Name: parentName})
			logMergeInfo("重複ボーン: %s を親 %s へ統合します", graph.Path(child), graph.Path(parent))
		}
		detectDuplicatesFrom(graph, child, dups)
	}
}
