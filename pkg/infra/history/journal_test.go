// 指示: miu200521358
package history

import (
	"testing"

	"github.com/miu200521358/mu_armature_cleanup/pkg/domain/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJournalGraph(t *testing.T) (*scene.Graph, scene.NodeID, scene.NodeID) {
	t.Helper()
	graph := scene.NewGraph()
	root, err := graph.AddNode("Avatar", scene.NilNode)
	require.NoError(t, err)
	hips, err := graph.AddNode("Hips", root)
	require.NoError(t, err)
	return graph, root, hips
}

func TestJournalRevertGroupRestoresSnapshot(t *testing.T) {
	graph, root, hips := newJournalGraph(t)
	journal := NewJournal(graph)

	group, err := journal.BeginGroup("Armature Cleanup")
	require.NoError(t, err)
	journal.RecordObject(hips, "Destroy /Avatar/Hips")
	_, err = graph.Destroy(hips)
	require.NoError(t, err)
	assert.False(t, graph.Contains(hips))

	require.NoError(t, journal.RevertGroup(group))
	assert.True(t, graph.Contains(hips))
	assert.Equal(t, []scene.NodeID{hips}, graph.Children(root))
	assert.False(t, journal.CanUndo())
	assert.ErrorIs(t, journal.RevertGroup(group), ErrGroupNotFound)
}

func TestJournalUndoRedoCollapsedGroup(t *testing.T) {
	graph, _, hips := newJournalGraph(t)
	journal := NewJournal(graph)

	group, err := journal.BeginGroup("Armature Cleanup")
	require.NoError(t, err)
	journal.RecordObject(hips, "Rename")
	require.NoError(t, graph.SetName(hips, "Pelvis"))
	journal.CollapseGroup(group)

	assert.Len(t, journal.Records(group), 1)
	require.True(t, journal.CanUndo())

	name, err := journal.Undo()
	require.NoError(t, err)
	assert.Equal(t, "Armature Cleanup", name)
	assert.Equal(t, "Hips", graph.Name(hips))

	_, err = journal.Redo()
	require.NoError(t, err)
	assert.Equal(t, "Pelvis", graph.Name(hips))

	_, err = journal.Redo()
	assert.ErrorIs(t, err, ErrNothingToRedo)
}

func TestJournalRecordWithoutGroupIsIgnored(t *testing.T) {
	graph, _, hips := newJournalGraph(t)
	journal := NewJournal(graph)

	journal.RecordObject(hips, "noop")
	_, err := journal.Undo()
	assert.ErrorIs(t, err, ErrNothingToUndo)
}
