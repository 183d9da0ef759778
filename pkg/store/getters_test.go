package store

import (
	"testing"

	"github.com/chris/forum-miniapp-store/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortedNodes(t *testing.T) {
	s, _, _ := newTestStore(t)
	s.Commit(SetNodes{Nodes: []models.Node{
		{Name: "a", Topics: 1},
		{Name: "b", Topics: 5},
		{Name: "c", Topics: 3},
	}})

	sorted := s.SortedNodes()

	var topics []int
	for _, n := range sorted {
		topics = append(topics, n.Topics)
	}
	assert.Equal(t, []int{5, 3, 1}, topics)

	// Reading sorts the stored list too.
	assert.Equal(t, "b", s.Snapshot().Nodes[0].Name)

	sorted[0].Name = "changed"
	assert.Equal(t, "b", s.Snapshot().Nodes[0].Name)
}

func TestSortedNodesNotifiesWatchers(t *testing.T) {
	s, _, _ := newTestStore(t)
	s.Commit(SetNodes{Nodes: []models.Node{{Name: "a", Topics: 1}, {Name: "b", Topics: 5}}})
	events, unsubscribe := s.Watch(4)
	defer unsubscribe()

	s.SortedNodes()
	// Already sorted; no second event.
	s.SortedNodes()

	require.Len(t, events, 1)
	ev := <-events
	assert.Equal(t, FieldNodes, ev.Mutation.Field())
	assert.Equal(t, "b", ev.State.Nodes[0].Name)
}

func TestSortedNodesEmpty(t *testing.T) {
	s, _, _ := newTestStore(t)

	assert.Empty(t, s.SortedNodes())
}

func TestGetArticle(t *testing.T) {
	s, _, _ := newTestStore(t)
	assert.Equal(t, models.Article{}, s.GetArticle())

	s.Commit(SetArticle{Article: models.Article{Title: "x", Node: "y"}})

	assert.Equal(t, models.Article{Title: "x", Node: "y"}, s.GetArticle())
}
